package order

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "Pending"
	StatusSubmitted Status = "Submitted"
	StatusShipped   Status = "Shipped"
	StatusDelivered Status = "Delivered"
	StatusCancelled Status = "Cancelled"
	StatusCompleted Status = "Completed"
)

var allStatuses = []Status{
	StatusPending, StatusSubmitted, StatusShipped,
	StatusDelivered, StatusCancelled, StatusCompleted,
}

// ParseStatus matches s case-insensitively against the known statuses.
func ParseStatus(s string) (Status, error) {
	s = strings.TrimSpace(s)
	for _, st := range allStatuses {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", ErrInvalidStatus
}

// IsTerminal reports whether the order can no longer be edited or cancelled.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCompleted || s == StatusCancelled
}

type Order struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"userId"`
	OrderNumber     string          `json:"orderNumber"`
	OrderDate       time.Time       `json:"orderDate"`
	Status          Status          `json:"status"`
	CustomerName    string          `json:"customerName"`
	CustomerEmail   string          `json:"customerEmail"`
	ShippingAddress string          `json:"shippingAddress"`
	PhoneNumber     *string         `json:"phoneNumber,omitempty"`
	Notes           *string         `json:"notes,omitempty"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Tax             decimal.Decimal `json:"tax"`
	ShippingCost    decimal.Decimal `json:"shippingCost"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	TrackingNumber  *string         `json:"trackingNumber,omitempty"`
	ShippedDate     *time.Time      `json:"shippedDate,omitempty"`
	DeliveredDate   *time.Time      `json:"deliveredDate,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
	Items           []OrderItem     `json:"items,omitempty"`
}

// OrderItem is an immutable snapshot of a cart line at order time.
type OrderItem struct {
	ID              uuid.UUID       `json:"id"`
	OrderID         uuid.UUID       `json:"orderId"`
	ProductID       string          `json:"productId"`
	ProductName     string          `json:"productName"`
	ProductImageURL *string         `json:"productImageUrl,omitempty"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
	CreatedAt       time.Time       `json:"createdAt"`
}

func (o *Order) TotalQuantity() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

func (o *Order) ProductNames() string {
	names := make([]string, 0, len(o.Items))
	for _, it := range o.Items {
		names = append(names, it.ProductName)
	}
	return strings.Join(names, ", ")
}

// applyStatus moves o to st, stamping ShippedDate / DeliveredDate the first
// time those states are entered.
func (o *Order) applyStatus(st Status, now time.Time) {
	o.Status = st
	switch st {
	case StatusShipped:
		if o.ShippedDate == nil {
			o.ShippedDate = &now
		}
	case StatusDelivered:
		if o.DeliveredDate == nil {
			o.DeliveredDate = &now
		}
	}
	o.UpdatedAt = now
}

type CustomerDetails struct {
	CustomerName    string `json:"customerName" validate:"required,max=200"`
	CustomerEmail   string `json:"customerEmail" validate:"required,email"`
	ShippingAddress string `json:"shippingAddress" validate:"required"`
	PhoneNumber     string `json:"phoneNumber" validate:"omitempty,max=30"`
	Notes           string `json:"notes"`
}

type ManualOrderInput struct {
	UserID    uuid.UUID `json:"userId" validate:"required"`
	ProductID string    `json:"productId" validate:"required,uuid"`
	Quantity  int       `json:"quantity" validate:"gt=0"`
	CustomerDetails
}

type EditInput struct {
	Status         string  `json:"status"`
	TrackingNumber *string `json:"trackingNumber"`
}

// Viewer is the identity an order query runs as.
type Viewer struct {
	UserID uuid.UUID
	Admin  bool
}

func (v Viewer) canSee(o *Order) bool {
	return v.Admin || o.UserID == v.UserID
}
