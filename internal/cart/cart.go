// Package cart holds the shopping cart state container. Every mutation
// recomputes ItemsPrice; quantities are clamped to [1, CountInStock].
package cart

import (
	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/pricing"

	"github.com/google/uuid"
)

// LineItem is one product+variant selection in the cart.
type LineItem struct {
	ClientID     string  `json:"clientId"`
	ProductID    string  `json:"productId" validate:"required"`
	Slug         string  `json:"slug"`
	Name         string  `json:"name"`
	Image        string  `json:"image"`
	Category     string  `json:"category"`
	Color        string  `json:"color"`
	Size         string  `json:"size"`
	Price        float64 `json:"price"`
	Quantity     int     `json:"quantity"`
	CountInStock int     `json:"countInStock"`
}

func (l LineItem) sameVariant(o LineItem) bool {
	return l.ProductID == o.ProductID && l.Color == o.Color && l.Size == o.Size
}

// Cart is an ordered list of line items and their aggregate price.
type Cart struct {
	Items      []LineItem `json:"items"`
	ItemsPrice float64    `json:"itemsPrice"`
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{Items: []LineItem{}}
}

func clamp(quantity, stock int) int {
	if quantity > stock {
		quantity = stock
	}
	if quantity < 1 {
		quantity = 1
	}
	return quantity
}

// AddItem adds quantity units of item. A line with the same product, color and size is
// increased; otherwise a new line is appended. The quantity is clamped to the stock and the
// affected line's clientID and resulting quantity are returned. OutOfStock is returned only
// when the product has no stock at all.
func (c *Cart) AddItem(item LineItem, quantity int) (string, int, error) {
	if quantity < 1 {
		return "", 0, apperr.NewValidationError("quantity", "must be at least 1")
	}
	if item.CountInStock < 1 {
		return "", 0, apperr.NewOutOfStockError(item.ProductID, quantity, item.CountInStock)
	}

	for i := range c.Items {
		existing := &c.Items[i]
		if !existing.sameVariant(item) {
			continue
		}
		existing.CountInStock = item.CountInStock
		existing.Price = item.Price
		existing.Quantity = clamp(existing.Quantity+quantity, item.CountInStock)
		c.recompute()
		return existing.ClientID, existing.Quantity, nil
	}

	item.ClientID = uuid.New().String()
	item.Quantity = clamp(quantity, item.CountInStock)
	c.Items = append(c.Items, item)
	c.recompute()
	return item.ClientID, item.Quantity, nil
}

// UpdateItem sets the quantity of the line matching item. A quantity of zero or less removes it.
func (c *Cart) UpdateItem(item LineItem, quantity int) (int, error) {
	i := c.indexOf(item)
	if i < 0 {
		return 0, apperr.NewNotFoundError("cart item", itemKey(item))
	}
	if quantity <= 0 {
		c.removeAt(i)
		return 0, nil
	}
	line := &c.Items[i]
	if line.CountInStock < 1 {
		return 0, apperr.NewOutOfStockError(line.ProductID, quantity, line.CountInStock)
	}
	line.Quantity = clamp(quantity, line.CountInStock)
	c.recompute()
	return line.Quantity, nil
}

// RemoveItem deletes the line matching item.
func (c *Cart) RemoveItem(item LineItem) error {
	i := c.indexOf(item)
	if i < 0 {
		return apperr.NewNotFoundError("cart item", itemKey(item))
	}
	c.removeAt(i)
	return nil
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Items = []LineItem{}
	c.recompute()
}

// Find returns the line with clientID.
func (c *Cart) Find(clientID string) (LineItem, bool) {
	for _, l := range c.Items {
		if l.ClientID == clientID {
			return l, true
		}
	}
	return LineItem{}, false
}

// Count is the total number of units in the cart.
func (c *Cart) Count() int {
	n := 0
	for _, l := range c.Items {
		n += l.Quantity
	}
	return n
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// OrderItems converts the lines to order items.
func (c *Cart) OrderItems() []models.OrderItem {
	out := make([]models.OrderItem, 0, len(c.Items))
	for _, l := range c.Items {
		out = append(out, models.OrderItem{
			ClientID:  l.ClientID,
			ProductID: l.ProductID,
			Slug:      l.Slug,
			Name:      l.Name,
			Image:     l.Image,
			Category:  l.Category,
			Color:     l.Color,
			Size:      l.Size,
			Quantity:  l.Quantity,
			Price:     l.Price,
		})
	}
	return out
}

// Recompute restores ItemsPrice after the cart was decoded from storage.
func (c *Cart) Recompute() {
	if c.Items == nil {
		c.Items = []LineItem{}
	}
	c.recompute()
}

func (c *Cart) recompute() {
	totals := make([]float64, 0, len(c.Items))
	for _, l := range c.Items {
		totals = append(totals, pricing.LineTotal(l.Price, l.Quantity))
	}
	c.ItemsPrice = pricing.Sum(totals...)
}

func (c *Cart) indexOf(item LineItem) int {
	for i, l := range c.Items {
		if item.ClientID != "" {
			if l.ClientID == item.ClientID {
				return i
			}
			continue
		}
		if l.sameVariant(item) {
			return i
		}
	}
	return -1
}

func (c *Cart) removeAt(i int) {
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	c.recompute()
}

func itemKey(item LineItem) string {
	if item.ClientID != "" {
		return item.ClientID
	}
	return item.ProductID + "/" + item.Color + "/" + item.Size
}
