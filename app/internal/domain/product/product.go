package product

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int64
	CategoryID  int64
	ImageRefs   []string
	IsActive    bool
}

// PrimaryImage returns the representative image reference, or "" when the
// product has none.
func (p Product) PrimaryImage() string {
	if len(p.ImageRefs) == 0 {
		return ""
	}
	return p.ImageRefs[0]
}

// Clone returns a copy that shares no slices with p.
func (p Product) Clone() Product {
	cloned := p
	if p.ImageRefs != nil {
		cloned.ImageRefs = make([]string, len(p.ImageRefs))
		copy(cloned.ImageRefs, p.ImageRefs)
	}
	return cloned
}

// Validate checks the fields the back office may set.
func (p Product) Validate() error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return ErrProductInvalidName
	case p.Price.IsNegative():
		return ErrInvalidPrice
	case p.Stock < 0:
		return ErrInvalidStock
	case p.CategoryID <= 0:
		return ErrUnknownCategory
	}
	return nil
}

type ListFilter struct {
	CategoryID *int64
	Search     string
	OnlyActive bool
}
