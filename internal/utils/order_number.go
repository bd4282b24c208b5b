package utils

import (
	"fmt"
	"time"
)

const orderNumberDateLayout = "20060102"

// OrderNumberPrefix returns "ORD-YYYYMMDD-" for the UTC day of t.
func OrderNumberPrefix(t time.Time) string {
	return "ORD-" + t.UTC().Format(orderNumberDateLayout) + "-"
}

// FormatOrderNumber builds ORD-YYYYMMDD-NNNN where seq is the 1-based
// position of the order within its day.
func FormatOrderNumber(t time.Time, seq int) string {
	return fmt.Sprintf("%s%04d", OrderNumberPrefix(t), seq)
}
