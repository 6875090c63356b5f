package domain

import (
	"math"

	"github.com/shopspring/decimal"

	catalogdomain "github.com/Apurer/sabor-arte/internal/domains/catalog/domain"
)

// Line is one distinct menu item in the cart. Item is the snapshot taken when
// the item was first added.
type Line struct {
	Item     catalogdomain.MenuItem
	Quantity int
}

// Subtotal is price times quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.Item.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart holds at most one line per item id, each with quantity >= 1.
type Cart struct {
	lines []Line
	open  bool
}

func New() *Cart {
	return &Cart{}
}

// AddItem increments the line for item, creating it with quantity 1 when
// missing, and opens the cart view.
func (c *Cart) AddItem(item catalogdomain.MenuItem) {
	c.open = true
	if i := c.index(item.ID); i >= 0 {
		c.lines[i].Quantity = saturatingAdd(c.lines[i].Quantity, 1)
		return
	}
	c.lines = append(c.lines, Line{Item: item, Quantity: 1})
}

// RemoveItem deletes the line for id. Unknown ids are ignored.
func (c *Cart) RemoveItem(id string) {
	if i := c.index(id); i >= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
}

// ChangeQuantity adds delta to the line quantity, never going below 1. A line
// is only removed through RemoveItem.
func (c *Cart) ChangeQuantity(id string, delta int) {
	i := c.index(id)
	if i < 0 {
		return
	}
	q := saturatingAdd(c.lines[i].Quantity, delta)
	if q < 1 {
		q = 1
	}
	c.lines[i].Quantity = q
}

// Total is recomputed from the lines on every call.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// ItemCount sums the quantities.
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.lines {
		n = saturatingAdd(n, l.Quantity)
	}
	return n
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []Line {
	return append([]Line(nil), c.lines...)
}

// Line returns the line for id.
func (c *Cart) Line(id string) (Line, bool) {
	if i := c.index(id); i >= 0 {
		return c.lines[i], true
	}
	return Line{}, false
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Clear empties the cart after a successful checkout.
func (c *Cart) Clear() {
	c.lines = nil
	c.open = false
}

// Open reports whether the cart is the active view.
func (c *Cart) Open() bool {
	return c.open
}

// SetOpen shows or hides the cart view.
func (c *Cart) SetOpen(open bool) {
	c.open = open
}

func (c *Cart) index(id string) int {
	for i, l := range c.lines {
		if l.Item.ID == id {
			return i
		}
	}
	return -1
}

func saturatingAdd(a, b int) int {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return math.MaxInt
	case b < 0 && a < math.MinInt-b:
		return math.MinInt
	}
	return a + b
}
