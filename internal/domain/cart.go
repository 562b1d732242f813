package domain

import "time"

// Product is the catalog view of an item, as returned by the product
// catalog service. Prices are integer cents.
type Product struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Price   int64  `json:"price"`
	Image   string `json:"image"`
	Country string `json:"country"`
	Culture string `json:"culture"`
	InStock *bool  `json:"in_stock,omitempty"`
}

// CartLineItem is a priced snapshot of a product taken at add-to-cart
// time. Name, image and price are NOT refreshed from the catalog on
// read; InStock may be merged in from live catalog data before
// checkout. A nil InStock means purchasable.
type CartLineItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Image     string `json:"image"`
	Country   string `json:"country,omitempty"`
	Culture   string `json:"culture,omitempty"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
	InStock   *bool  `json:"in_stock,omitempty"`
}

// Purchasable reports whether the line item may be checked out. Only
// an explicit false blocks checkout.
func (li CartLineItem) Purchasable() bool {
	return li.InStock == nil || *li.InStock
}

// Cart is the full cart aggregate for one cart key. Items keep
// insertion order: the order products were first added.
type Cart struct {
	ID        string         `json:"id"`
	Items     []CartLineItem `json:"items"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Snapshot builds a cart line item from a catalog product.
func (p Product) Snapshot(quantity int) CartLineItem {
	return CartLineItem{
		ProductID: p.ID,
		Name:      p.Name,
		Image:     p.Image,
		Country:   p.Country,
		Culture:   p.Culture,
		Price:     p.Price,
		Quantity:  quantity,
		InStock:   p.InStock,
	}
}

// Subtotal returns the sum of price times quantity over all items,
// in cents.
func (c *Cart) Subtotal() int64 {
	var total int64
	for _, li := range c.Items {
		total += li.Price * int64(li.Quantity)
	}
	return total
}

// Count returns the total number of units across all line items.
func (c *Cart) Count() int {
	var count int
	for _, li := range c.Items {
		count += li.Quantity
	}
	return count
}

// IsEmpty reports whether the cart has no line items.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Find returns a pointer to the line item for productID, or nil.
func (c *Cart) Find(productID string) *CartLineItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}
