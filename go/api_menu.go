package restaurantserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	cartmapper "github.com/Apurer/sabor-arte/internal/domains/cart/adapters/http/mapper"
	cartports "github.com/Apurer/sabor-arte/internal/domains/cart/ports"
	catalogmapper "github.com/Apurer/sabor-arte/internal/domains/catalog/adapters/http/mapper"
	catalogdomain "github.com/Apurer/sabor-arte/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/sabor-arte/internal/domains/catalog/ports"
	"github.com/Apurer/sabor-arte/internal/shared/fault"
)

// MenuAPI serves the mirrored menu and the per-session category filter.
type MenuAPI struct {
	menu    cartports.Catalog
	catalog catalogports.Service
	carts   cartports.Service
}

// NewMenuAPI wires dependencies. menu is the in-process catalog mirror;
// catalog answers lookups the mirror has not seen yet.
func NewMenuAPI(menu cartports.Catalog, catalog catalogports.Service, carts cartports.Service) MenuAPI {
	return MenuAPI{menu: menu, catalog: catalog, carts: carts}
}

// Get /v1/menu
// List the menu, optionally restricted to one category
func (api *MenuAPI) ListMenu(c *gin.Context) {
	filter, err := catalogdomain.ParseFilter(c.Query("category"))
	if err != nil {
		respondError(c, fault.Validation(err))
		return
	}
	c.JSON(http.StatusOK, catalogmapper.FromDomainMenuItems(api.menu.Filtered(filter)))
}

// Get /v1/menu/:itemId
// Find a menu item by ID
func (api *MenuAPI) GetMenuItem(c *gin.Context) {
	id := c.Param("itemId")
	if item, ok := api.menu.Item(id); ok {
		c.JSON(http.StatusOK, catalogmapper.FromDomainMenuItem(item))
		return
	}
	item, err := api.catalog.GetItem(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, catalogmapper.FromDomainMenuItem(item))
}

// Get /v1/session/filter
// Read the session's category filter
func (api *MenuAPI) GetCategoryFilter(c *gin.Context) {
	filter := api.carts.CategoryFilter(c.Request.Context(), sessionKey(c))
	c.JSON(http.StatusOK, cartmapper.CategoryFilter{Category: filter.String()})
}

// Put /v1/session/filter
// Select a category or "all"
func (api *MenuAPI) SetCategoryFilter(c *gin.Context) {
	var payload cartmapper.CategoryFilter
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, err)
		return
	}
	filter, err := api.carts.SetCategoryFilter(c.Request.Context(), sessionKey(c), payload.Category)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartmapper.CategoryFilter{Category: filter.String()})
}

// Get /v1/session/menu
// List the menu through the session's filter
func (api *MenuAPI) FilteredMenu(c *gin.Context) {
	items := api.carts.FilteredMenu(c.Request.Context(), sessionKey(c))
	c.JSON(http.StatusOK, catalogmapper.FromDomainMenuItems(items))
}
