package cart

import (
	"abc-retailers/internal/product"
	"abc-retailers/internal/utils"

	"github.com/shopspring/decimal"
)

var (
	TaxRate               = decimal.RequireFromString("0.15")
	FreeShippingThreshold = decimal.NewFromInt(100)
	FlatShippingFee       = decimal.RequireFromString("10.00")
)

type CartItem struct {
	ProductID      string          `json:"productId"`
	ProductName    string          `json:"productName"`
	ImageURL       string          `json:"imageUrl,omitempty"`
	UnitPrice      decimal.Decimal `json:"unitPrice"`
	Quantity       int             `json:"quantity"`
	TotalPrice     decimal.Decimal `json:"totalPrice"`
	StockAvailable int             `json:"stockAvailable"`
}

func (i *CartItem) recalculate() {
	i.TotalPrice = i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is the per-session basket. Line order is insertion order.
type Cart struct {
	Items []CartItem `json:"items"`
}

func NewCart() *Cart {
	return &Cart{Items: []CartItem{}}
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c *Cart) Clone() *Cart {
	out := &Cart{Items: make([]CartItem, len(c.Items))}
	copy(out.Items, c.Items)
	return out
}

func (c *Cart) Find(productID string) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

// AddItem merges qty into an existing line for the product or appends a
// new one priced from p. The stock snapshot is refreshed either way.
func (c *Cart) AddItem(p *product.Product, qty int) {
	if item := c.Find(p.ID); item != nil {
		item.Quantity += qty
		item.StockAvailable = p.Stock
		item.recalculate()
		return
	}

	item := CartItem{
		ProductID:      p.ID,
		ProductName:    p.Name,
		ImageURL:       utils.PtrString(p.ImageURL),
		UnitPrice:      p.Price,
		Quantity:       qty,
		StockAvailable: p.Stock,
	}
	item.recalculate()
	c.Items = append(c.Items, item)
}

// UpdateQuantity sets the line quantity, removing the line when qty <= 0.
// It reports whether the product was in the cart.
func (c *Cart) UpdateQuantity(productID string, qty int) bool {
	if qty <= 0 {
		return c.RemoveItem(productID)
	}
	item := c.Find(productID)
	if item == nil {
		return false
	}
	item.Quantity = qty
	item.recalculate()
	return true
}

func (c *Cart) RemoveItem(productID string) bool {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return true
		}
	}
	return false
}

func (c *Cart) Clear() {
	c.Items = []CartItem{}
}

func (c *Cart) TotalItems() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range c.Items {
		sum = sum.Add(item.TotalPrice)
	}
	return sum
}

func (c *Cart) Tax() decimal.Decimal {
	return c.Subtotal().Mul(TaxRate)
}

func (c *Cart) ShippingCost() decimal.Decimal {
	sub := c.Subtotal()
	if sub.IsZero() || sub.GreaterThanOrEqual(FreeShippingThreshold) {
		return decimal.Zero
	}
	return FlatShippingFee
}

func (c *Cart) Total() decimal.Decimal {
	return c.Subtotal().Add(c.Tax()).Add(c.ShippingCost())
}

type Summary struct {
	Items        []CartItem      `json:"items"`
	TotalItems   int             `json:"totalItems"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Tax          decimal.Decimal `json:"tax"`
	ShippingCost decimal.Decimal `json:"shippingCost"`
	Total        decimal.Decimal `json:"total"`
	Warnings     []string        `json:"warnings,omitempty"`
}

func (c *Cart) Summary() Summary {
	return Summary{
		Items:        c.Items,
		TotalItems:   c.TotalItems(),
		Subtotal:     c.Subtotal(),
		Tax:          c.Tax(),
		ShippingCost: c.ShippingCost(),
		Total:        c.Total(),
	}
}
