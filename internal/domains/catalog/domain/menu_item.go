package domain

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyName        = errors.New("menu item name is required")
	ErrNegativePrice    = errors.New("menu item price must not be negative")
	ErrUnknownCategory  = errors.New("unknown menu category")
	ErrInvalidImageURL  = errors.New("menu item image must be an absolute http(s) URL")
	ErrInvalidPrecision = errors.New("menu item price supports at most two decimal places")
)

// Category groups menu items on the menu page.
type Category string

const (
	CategoryStarters Category = "entradas"
	CategoryMains    Category = "pratos principais"
	CategoryDesserts Category = "sobremesas"
	CategoryDrinks   Category = "bebidas"
)

// Categories lists every category in menu order.
func Categories() []Category {
	return []Category{CategoryStarters, CategoryMains, CategoryDesserts, CategoryDrinks}
}

// ParseCategory matches raw case-insensitively against the known categories.
func ParseCategory(raw string) (Category, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	for _, c := range Categories() {
		if string(c) == normalized {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, raw)
}

// MenuItem is an entry of the catalog.
type MenuItem struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	Category    Category
	Image       string
}

// Draft carries the editable fields of a menu item.
type Draft struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
}

// NewMenuItem validates draft and returns the item it describes.
func NewMenuItem(id string, draft Draft) (MenuItem, error) {
	item := MenuItem{ID: strings.TrimSpace(id)}
	if err := item.Apply(draft); err != nil {
		return MenuItem{}, err
	}
	return item, nil
}

// Apply replaces the editable fields after validating them.
func (m *MenuItem) Apply(draft Draft) error {
	name := strings.TrimSpace(draft.Name)
	if name == "" {
		return ErrEmptyName
	}
	if draft.Price.IsNegative() {
		return ErrNegativePrice
	}
	if !draft.Price.Equal(draft.Price.Round(2)) {
		return ErrInvalidPrecision
	}
	category, err := ParseCategory(draft.Category)
	if err != nil {
		return err
	}
	image := strings.TrimSpace(draft.Image)
	if image != "" {
		u, err := url.Parse(image)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return ErrInvalidImageURL
		}
	}
	m.Name = name
	m.Description = strings.TrimSpace(draft.Description)
	m.Price = draft.Price.Round(2)
	m.Category = category
	m.Image = image
	return nil
}

// Draft returns the editable fields of the item.
func (m MenuItem) Draft() Draft {
	return Draft{
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price,
		Category:    string(m.Category),
		Image:       m.Image,
	}
}

// DisplayPrice renders the price with two decimals.
func (m MenuItem) DisplayPrice() string {
	return m.Price.StringFixed(2)
}
