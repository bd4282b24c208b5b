package order

import (
	"errors"
	"strings"
)

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrForbidden       = errors.New("not allowed to access this order")
	ErrInvalidStatus   = errors.New("invalid order status")
	ErrOrderFinalized  = errors.New("order can no longer be modified")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidDetails  = errors.New("invalid customer details")
	ErrCheckoutFailed  = errors.New("checkout failed")
	ErrProductNotFound = errors.New("product not found")

	ErrInsufficientStock = errors.New("insufficient stock")
)

// CartChangedError blocks a checkout whose cart was corrected during
// revalidation. The corrected cart is already saved.
type CartChangedError struct {
	Warnings []string
}

func (e *CartChangedError) Error() string {
	return "cart changed during checkout: " + strings.Join(e.Warnings, " ")
}
