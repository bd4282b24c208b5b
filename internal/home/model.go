package home

import "abc-retailers/internal/product"

// FeaturedLimit is how many of the newest active products the landing feed shows.
const FeaturedLimit = 5

type Stats struct {
	ProductCount  int64 `json:"productCount"`
	CustomerCount int64 `json:"customerCount"`
	OrderCount    int64 `json:"orderCount"`
}

type Feed struct {
	FeaturedProducts []*product.Product `json:"featuredProducts"`
	Stats
}
