package product

import "errors"

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrInvalidPrice       = errors.New("product price must not be negative")
	ErrProductInvalidName = errors.New("product name is required")
	ErrInvalidStock       = errors.New("product stock must not be negative")
	ErrUnknownCategory    = errors.New("product category does not exist")
	ErrCatalogReadOnly    = errors.New("catalog is managed by the storefront backend")
)
