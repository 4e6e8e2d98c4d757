package cart

import "errors"

var ErrNegativeQuantity = errors.New("quantity must not be negative")
