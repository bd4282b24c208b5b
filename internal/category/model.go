package category

// Category is a storefront grouping derived from the category column of
// active products.
type Category struct {
	Name         string `json:"name"`
	ProductCount int64  `json:"productCount"`
}
