package notify

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderCreated is published once per persisted order.
type OrderCreated struct {
	OrderID      string          `json:"OrderId"`
	OrderNumber  string          `json:"OrderNumber"`
	CustomerName string          `json:"CustomerName"`
	ProductName  string          `json:"ProductName"`
	Quantity     int             `json:"Quantity"`
	TotalPrice   decimal.Decimal `json:"TotalPrice"`
}

// StatusChanged is published on every order status transition.
type StatusChanged struct {
	OrderID      string    `json:"OrderId"`
	CustomerName string    `json:"CustomerName"`
	NewStatus    string    `json:"NewStatus"`
	UpdatedDate  time.Time `json:"UpdatedDate"`
}
