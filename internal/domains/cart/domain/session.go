package domain

import catalogdomain "github.com/Apurer/sabor-arte/internal/domains/catalog/domain"

// Session is the per-visitor browsing state: the cart and the menu filter.
type Session struct {
	Cart   *Cart
	Filter catalogdomain.Filter
}

func NewSession() *Session {
	return &Session{Cart: New(), Filter: catalogdomain.AllCategories}
}
