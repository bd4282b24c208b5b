package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

func PtrString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// NilIfEmpty maps blank strings to nil so optional columns store NULL.
func NilIfEmpty(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// FormatMoney renders an amount as "$12.50".
func FormatMoney(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
