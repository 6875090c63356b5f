package mapper

import (
	"github.com/shopspring/decimal"

	catalogdomain "github.com/Apurer/sabor-arte/internal/domains/catalog/domain"
)

// MenuItem is the transport representation of a menu item.
type MenuItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Category    string `json:"category"`
	Image       string `json:"image,omitempty"`
}

// MenuItemInput is the payload for creating or editing a menu item. Price
// accepts a JSON number or a decimal string.
type MenuItemInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
}

// ToDraft converts an input payload to a domain draft.
func ToDraft(in MenuItemInput) catalogdomain.Draft {
	return catalogdomain.Draft{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		Image:       in.Image,
	}
}

// FromDomainMenuItem converts a domain item to its transport form.
func FromDomainMenuItem(item catalogdomain.MenuItem) MenuItem {
	return MenuItem{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Price:       item.DisplayPrice(),
		Category:    string(item.Category),
		Image:       item.Image,
	}
}

// FromDomainMenuItems converts a slice of items, keeping order.
func FromDomainMenuItems(items []catalogdomain.MenuItem) []MenuItem {
	result := make([]MenuItem, 0, len(items))
	for _, item := range items {
		result = append(result, FromDomainMenuItem(item))
	}
	return result
}
