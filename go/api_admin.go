package restaurantserver

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	catalogmapper "github.com/Apurer/sabor-arte/internal/domains/catalog/adapters/http/mapper"
	catalogdomain "github.com/Apurer/sabor-arte/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/sabor-arte/internal/domains/catalog/ports"
	ordermapper "github.com/Apurer/sabor-arte/internal/domains/orders/adapters/http/mapper"
	orderports "github.com/Apurer/sabor-arte/internal/domains/orders/ports"
	apierrors "github.com/Apurer/sabor-arte/internal/shared/errors"
)

// StreamPingInterval is how often an idle order stream sends a keep-alive.
const StreamPingInterval = 25 * time.Second

// AdminMenuAPI wires HTTP transport with catalog administration.
type AdminMenuAPI struct {
	catalog  catalogports.Service
	resets   catalogports.ResetOrchestrator
	defaults []catalogdomain.Draft
}

// NewAdminMenuAPI wires dependencies. defaults is the menu a reset restores.
func NewAdminMenuAPI(catalog catalogports.Service, resets catalogports.ResetOrchestrator, defaults []catalogdomain.Draft) AdminMenuAPI {
	return AdminMenuAPI{catalog: catalog, resets: resets, defaults: defaults}
}

// ResetResponse reports a finished or partially applied catalog reset.
type ResetResponse struct {
	Report catalogdomain.ResetReport `json:"report"`
	Error  *apierrors.ProblemDetail  `json:"error,omitempty"`
}

// Post /v1/admin/menu
// Add a menu item
func (api *AdminMenuAPI) CreateMenuItem(c *gin.Context) {
	var payload catalogmapper.MenuItemInput
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, err)
		return
	}
	item, err := api.catalog.CreateItem(c.Request.Context(), catalogmapper.ToDraft(payload))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, catalogmapper.FromDomainMenuItem(item))
}

// Put /v1/admin/menu/:itemId
// Replace a menu item's fields
func (api *AdminMenuAPI) UpdateMenuItem(c *gin.Context) {
	var payload catalogmapper.MenuItemInput
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, err)
		return
	}
	item, err := api.catalog.UpdateItem(c.Request.Context(), c.Param("itemId"), catalogmapper.ToDraft(payload))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, catalogmapper.FromDomainMenuItem(item))
}

// Delete /v1/admin/menu/:itemId
// Remove a menu item
func (api *AdminMenuAPI) DeleteMenuItem(c *gin.Context) {
	if err := api.catalog.DeleteItem(c.Request.Context(), c.Param("itemId")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Post /v1/admin/menu/reset
// Replace the whole menu with the defaults. Requires confirm=true.
func (api *AdminMenuAPI) ResetCatalog(c *gin.Context) {
	cmd := catalogports.ResetCommand{
		Defaults:  api.defaults,
		Confirmed: c.Query("confirm") == "true",
		RequestID: c.GetHeader(IdempotencyKeyHeader),
	}
	report, err := api.resets.ResetCatalog(c.Request.Context(), cmd)
	if err == nil {
		c.JSON(http.StatusOK, ResetResponse{Report: report})
		return
	}
	if report.Deleted == 0 && report.Inserted == 0 && len(report.Errors) == 0 {
		respondError(c, err)
		return
	}
	// Partially applied: nothing is rolled back, so the caller gets the counts.
	problem, ok := apierrors.FaultMapper(err)
	if !ok {
		problem = apierrors.ErrInternal.WithDetail(err.Error())
	}
	c.JSON(problem.Status, ResetResponse{Report: report, Error: &problem})
}

// AdminOrdersAPI serves the staff order dashboard.
type AdminOrdersAPI struct {
	orders orderports.Service
	ping   time.Duration
}

// NewAdminOrdersAPI wires dependencies.
func NewAdminOrdersAPI(orders orderports.Service) AdminOrdersAPI {
	return AdminOrdersAPI{orders: orders, ping: StreamPingInterval}
}

// Get /v1/admin/orders
// List orders, newest first
func (api *AdminOrdersAPI) ListOrders(c *gin.Context) {
	orders, err := api.orders.ListOrders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromDomainOrders(orders))
}

// Get /v1/admin/orders/:orderId
// Find an order by ID
func (api *AdminOrdersAPI) GetOrder(c *gin.Context) {
	order, err := api.orders.GetOrder(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromDomainOrder(order))
}

// Patch /v1/admin/orders/:orderId/status
// Move an order to another status
func (api *AdminOrdersAPI) AdvanceStatus(c *gin.Context) {
	var payload ordermapper.StatusRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, err)
		return
	}
	order, err := api.orders.AdvanceStatus(c.Request.Context(), c.Param("orderId"), payload.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromDomainOrder(order))
}

// Get /v1/admin/orders/stream
// Server-sent events with the full order list, newest first, on every change
func (api *AdminOrdersAPI) StreamOrders(c *gin.Context) {
	ctx := c.Request.Context()
	feed, err := api.orders.WatchOrders(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	defer feed.Close()

	interval := api.ping
	if interval <= 0 {
		interval = StreamPingInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case orders, ok := <-feed.Updates():
			if !ok {
				return false
			}
			c.SSEvent("orders", ordermapper.FromDomainOrders(orders))
			return true
		case <-ticker.C:
			c.SSEvent("ping", gin.H{"at": time.Now().UTC()})
			return true
		}
	})
}
