package sales

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bizops/internal/domain/inventory"
	"bizops/internal/pkg/money"
)

type Line struct {
	ProductID    *uuid.UUID      `json:"product_id"`
	Name         string          `json:"name"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	IsCustomItem bool            `json:"is_custom_item"`

	// available is the product's stock when the line was added.
	available int
}

func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart collects sales lines before an order is committed. It enforces the
// stock rules against the stock levels it was given; the commit re-checks them.
type Cart struct {
	lines []Line
}

// AddProduct adds one unit of p, or one more unit when p is already in the cart.
func (c *Cart) AddProduct(p inventory.Product) error {
	return c.AddProductQuantity(p, 1)
}

// AddProductQuantity adds qty units of p. The cart is unchanged on error.
func (c *Cart) AddProductQuantity(p inventory.Product, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if p.StockQuantity <= 0 {
		return fmt.Errorf("%w: %s", ErrOutOfStock, p.Name)
	}
	i := c.indexOf(p.ID)
	current := 0
	if i >= 0 {
		current = c.lines[i].Quantity
	}
	if current+qty > p.StockQuantity {
		return fmt.Errorf("%w: %s", ErrNotEnoughStock, p.Name)
	}
	if i >= 0 {
		c.lines[i].Quantity += qty
		c.lines[i].available = p.StockQuantity
		return nil
	}
	id := p.ID
	c.lines = append(c.lines, Line{
		ProductID: &id,
		Name:      p.Name,
		Quantity:  qty,
		UnitPrice: p.UnitPrice,
		available: p.StockQuantity,
	})
	return nil
}

func (c *Cart) AddCustom(name string, qty int, price decimal.Decimal) error {
	name = strings.TrimSpace(name)
	if name == "" || qty <= 0 || !price.IsPositive() || !money.IsCents(price) {
		return ErrInvalidCustomItem
	}
	c.lines = append(c.lines, Line{Name: name, Quantity: qty, UnitPrice: price, IsCustomItem: true})
	return nil
}

// SetQuantity changes line i. Zero or less removes the line.
func (c *Cart) SetQuantity(i, qty int) error {
	if i < 0 || i >= len(c.lines) {
		return ErrLineNotFound
	}
	if qty <= 0 {
		return c.Remove(i)
	}
	l := c.lines[i]
	if !l.IsCustomItem && qty > l.available {
		return fmt.Errorf("%w: %s", ErrNotEnoughStock, l.Name)
	}
	c.lines[i].Quantity = qty
	return nil
}

func (c *Cart) Remove(i int) error {
	if i < 0 || i >= len(c.lines) {
		return ErrLineNotFound
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	return nil
}

func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Total())
	}
	return total
}

func (c *Cart) Empty() bool {
	return len(c.lines) == 0
}

func (c *Cart) indexOf(productID uuid.UUID) int {
	for i, l := range c.lines {
		if l.ProductID != nil && *l.ProductID == productID {
			return i
		}
	}
	return -1
}
