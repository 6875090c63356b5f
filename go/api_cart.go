package restaurantserver

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	cartmapper "github.com/Apurer/sabor-arte/internal/domains/cart/adapters/http/mapper"
	cartdomain "github.com/Apurer/sabor-arte/internal/domains/cart/domain"
	cartports "github.com/Apurer/sabor-arte/internal/domains/cart/ports"
	ordermapper "github.com/Apurer/sabor-arte/internal/domains/orders/adapters/http/mapper"
	orderdomain "github.com/Apurer/sabor-arte/internal/domains/orders/domain"
	orderports "github.com/Apurer/sabor-arte/internal/domains/orders/ports"
)

// IdempotencyKeyHeader lets clients retry a checkout safely.
const IdempotencyKeyHeader = "Idempotency-Key"

// CartAPI wires HTTP transport with the session carts and order submission.
type CartAPI struct {
	carts  cartports.Service
	orders orderports.Service
}

// NewCartAPI wires dependencies.
func NewCartAPI(carts cartports.Service, orders orderports.Service) CartAPI {
	return CartAPI{carts: carts, orders: orders}
}

// Get /v1/cart
// Show the session cart
func (api *CartAPI) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, cartmapper.FromView(api.carts.View(c.Request.Context(), sessionKey(c))))
}

// Post /v1/cart/items
// Add one unit of a menu item
func (api *CartAPI) AddItem(c *gin.Context) {
	var payload cartmapper.AddItemRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, err)
		return
	}
	view, err := api.carts.AddItem(c.Request.Context(), sessionKey(c), payload.ItemID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartmapper.FromView(view))
}

// Patch /v1/cart/items/:itemId
// Change a line's quantity by delta, never below one
func (api *CartAPI) ChangeQuantity(c *gin.Context) {
	var payload cartmapper.ChangeQuantityRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, err)
		return
	}
	view := api.carts.ChangeQuantity(c.Request.Context(), sessionKey(c), c.Param("itemId"), payload.Delta)
	c.JSON(http.StatusOK, cartmapper.FromView(view))
}

// Delete /v1/cart/items/:itemId
// Remove a line from the cart
func (api *CartAPI) RemoveItem(c *gin.Context) {
	view := api.carts.RemoveItem(c.Request.Context(), sessionKey(c), c.Param("itemId"))
	c.JSON(http.StatusOK, cartmapper.FromView(view))
}

// Post /v1/checkout
// Submit the session cart as an order
func (api *CartAPI) Checkout(c *gin.Context) {
	var payload ordermapper.CheckoutRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, err)
		return
	}
	session := sessionKey(c)
	input := orderports.SubmitInput{
		Session:        session,
		Customer:       payload.Customer,
		Table:          payload.Table,
		IdempotencyKey: c.GetHeader(IdempotencyKeyHeader),
	}
	var placed *orderdomain.Order
	err := api.carts.Checkout(c.Request.Context(), session, func(ctx context.Context, cart *cartdomain.Cart) error {
		order, err := api.orders.SubmitOrder(ctx, cart, input)
		placed = order
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ordermapper.FromDomainOrder(placed))
}
