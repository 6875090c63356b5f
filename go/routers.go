package restaurantserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Access is who may call a route.
type Access int

const (
	// AccessPublic needs no session.
	AccessPublic Access = iota
	// AccessSession needs any signed-in identity, anonymous included.
	AccessSession
	// AccessStaff needs a credentialed identity.
	AccessStaff
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// Access is checked before HandlerFunc runs.
	Access Access
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions)
}

// NewRouterWithGinEngine adds routes to an existing gin engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	auth := handleFunctions.AuthAPI
	router.Use(auth.Authenticate)
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		chain := []gin.HandlerFunc{}
		switch route.Access {
		case AccessSession:
			chain = append(chain, auth.RequireSession)
		case AccessStaff:
			chain = append(chain, auth.RequireStaff)
		}
		chain = append(chain, route.HandlerFunc)
		router.Handle(route.Method, route.Pattern, chain...)
	}
	return router
}

// DefaultHandleFunc answers routes without a handler.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

// ApiHandleFunctions groups the handlers of every API section.
type ApiHandleFunctions struct {
	// Routes for sign-in and the identity middleware
	AuthAPI AuthAPI
	// Routes for the public menu and the session filter
	MenuAPI MenuAPI
	// Routes for the session cart and checkout
	CartAPI CartAPI
	// Routes for catalog administration
	AdminMenuAPI AdminMenuAPI
	// Routes for the staff order dashboard
	AdminOrdersAPI AdminOrdersAPI
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	return []Route{
		{"SignInAnonymously", http.MethodPost, "/v1/auth/anonymous", AccessPublic, handleFunctions.AuthAPI.SignInAnonymously},
		{"SignInWithCredentials", http.MethodPost, "/v1/auth/login", AccessPublic, handleFunctions.AuthAPI.SignInWithCredentials},
		{"RegisterCredentials", http.MethodPost, "/v1/auth/register", AccessPublic, handleFunctions.AuthAPI.RegisterCredentials},
		{"SignOut", http.MethodPost, "/v1/auth/logout", AccessSession, handleFunctions.AuthAPI.SignOut},
		{"WhoAmI", http.MethodGet, "/v1/auth/me", AccessSession, handleFunctions.AuthAPI.WhoAmI},

		{"ListMenu", http.MethodGet, "/v1/menu", AccessPublic, handleFunctions.MenuAPI.ListMenu},
		{"GetMenuItem", http.MethodGet, "/v1/menu/:itemId", AccessPublic, handleFunctions.MenuAPI.GetMenuItem},
		{"GetCategoryFilter", http.MethodGet, "/v1/session/filter", AccessSession, handleFunctions.MenuAPI.GetCategoryFilter},
		{"SetCategoryFilter", http.MethodPut, "/v1/session/filter", AccessSession, handleFunctions.MenuAPI.SetCategoryFilter},
		{"FilteredMenu", http.MethodGet, "/v1/session/menu", AccessSession, handleFunctions.MenuAPI.FilteredMenu},

		{"GetCart", http.MethodGet, "/v1/cart", AccessSession, handleFunctions.CartAPI.GetCart},
		{"AddCartItem", http.MethodPost, "/v1/cart/items", AccessSession, handleFunctions.CartAPI.AddItem},
		{"ChangeCartQuantity", http.MethodPatch, "/v1/cart/items/:itemId", AccessSession, handleFunctions.CartAPI.ChangeQuantity},
		{"RemoveCartItem", http.MethodDelete, "/v1/cart/items/:itemId", AccessSession, handleFunctions.CartAPI.RemoveItem},
		{"Checkout", http.MethodPost, "/v1/checkout", AccessSession, handleFunctions.CartAPI.Checkout},

		{"CreateMenuItem", http.MethodPost, "/v1/admin/menu", AccessStaff, handleFunctions.AdminMenuAPI.CreateMenuItem},
		{"ResetCatalog", http.MethodPost, "/v1/admin/menu/reset", AccessStaff, handleFunctions.AdminMenuAPI.ResetCatalog},
		{"UpdateMenuItem", http.MethodPut, "/v1/admin/menu/:itemId", AccessStaff, handleFunctions.AdminMenuAPI.UpdateMenuItem},
		{"DeleteMenuItem", http.MethodDelete, "/v1/admin/menu/:itemId", AccessStaff, handleFunctions.AdminMenuAPI.DeleteMenuItem},

		{"ListOrders", http.MethodGet, "/v1/admin/orders", AccessStaff, handleFunctions.AdminOrdersAPI.ListOrders},
		{"StreamOrders", http.MethodGet, "/v1/admin/orders/stream", AccessStaff, handleFunctions.AdminOrdersAPI.StreamOrders},
		{"GetOrder", http.MethodGet, "/v1/admin/orders/:orderId", AccessStaff, handleFunctions.AdminOrdersAPI.GetOrder},
		{"AdvanceOrderStatus", http.MethodPatch, "/v1/admin/orders/:orderId/status", AccessStaff, handleFunctions.AdminOrdersAPI.AdvanceStatus},
	}
}
