package cart

import (
	"context"
	"fmt"

	"abc-retailers/internal/product"
	"abc-retailers/internal/utils"
)

// ProductLookup resolves the live product for a cart line. It returns
// (nil, nil) when the product no longer exists or is inactive.
type ProductLookup interface {
	FindActive(ctx context.Context, id string) (*product.Product, error)
}

// Validate reconciles c against live product data and returns a corrected
// copy plus the user-facing warnings. c itself is not modified.
func Validate(ctx context.Context, c *Cart, lookup ProductLookup) (*Cart, []string, error) {
	out, warnings, _, err := reconcile(ctx, c, lookup)
	return out, warnings, err
}

// reconcile also reports whether anything changed, including silent stock
// snapshot refreshes that produce no warning.
func reconcile(ctx context.Context, c *Cart, lookup ProductLookup) (*Cart, []string, bool, error) {
	out := &Cart{Items: make([]CartItem, 0, len(c.Items))}
	var warnings []string
	changed := false

	for _, item := range c.Items {
		p, err := lookup.FindActive(ctx, item.ProductID)
		if err != nil {
			return nil, nil, false, fmt.Errorf("lookup product %s: %w", item.ProductID, err)
		}

		if p == nil {
			warnings = append(warnings, fmt.Sprintf(
				"'%s' is no longer available and has been removed from your cart.", item.ProductName))
			changed = true
			continue
		}

		if !item.UnitPrice.Equal(p.Price) {
			item.UnitPrice = p.Price
			item.recalculate()
			warnings = append(warnings, fmt.Sprintf(
				"The price for '%s' has changed to %s.", item.ProductName, utils.FormatMoney(p.Price)))
			changed = true
		}

		if item.StockAvailable != p.Stock {
			item.StockAvailable = p.Stock
			changed = true
		}

		if item.Quantity > p.Stock {
			changed = true
			if p.Stock == 0 {
				warnings = append(warnings, fmt.Sprintf(
					"'%s' is now out of stock and has been removed.", item.ProductName))
				continue
			}
			item.Quantity = p.Stock
			item.recalculate()
			warnings = append(warnings, fmt.Sprintf(
				"Only %d of '%s' are available. Your quantity has been updated.", p.Stock, item.ProductName))
		}

		out.Items = append(out.Items, item)
	}

	return out, warnings, changed, nil
}
