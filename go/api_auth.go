package restaurantserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	identitymapper "github.com/Apurer/sabor-arte/internal/domains/identity/adapters/http/mapper"
	identitydomain "github.com/Apurer/sabor-arte/internal/domains/identity/domain"
	identityports "github.com/Apurer/sabor-arte/internal/domains/identity/ports"
	apierrors "github.com/Apurer/sabor-arte/internal/shared/errors"
)

const (
	identityContextKey = "restaurant.identity"
	tokenContextKey    = "restaurant.token"
)

// AuthAPI handles sign-in and resolves bearer tokens for the other routes.
type AuthAPI struct {
	identity identityports.Service
}

// NewAuthAPI wires dependencies.
func NewAuthAPI(identity identityports.Service) AuthAPI {
	return AuthAPI{identity: identity}
}

// Authenticate resolves an Authorization bearer token when one is sent.
// Requests without a token continue anonymously; bad tokens are rejected.
func (api *AuthAPI) Authenticate(c *gin.Context) {
	token, ok := bearerToken(c.GetHeader("Authorization"))
	if !ok {
		c.Next()
		return
	}
	who, err := api.identity.Resolve(c.Request.Context(), token)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Set(identityContextKey, who)
	c.Set(tokenContextKey, token)
	c.Next()
}

// RequireSession rejects requests without a resolved identity.
func (api *AuthAPI) RequireSession(c *gin.Context) {
	if _, ok := identityFrom(c); !ok {
		respondProblem(c, apierrors.ErrUnauthorized.WithDetail("a bearer token is required"))
		return
	}
	c.Next()
}

// RequireStaff rejects anonymous and missing identities.
func (api *AuthAPI) RequireStaff(c *gin.Context) {
	who, ok := identityFrom(c)
	if !ok {
		respondProblem(c, apierrors.ErrUnauthorized.WithDetail("a bearer token is required"))
		return
	}
	if !who.IsStaff() {
		respondProblem(c, apierrors.ErrForbidden.WithDetail("staff sign-in required"))
		return
	}
	c.Next()
}

// Post /v1/auth/anonymous
// Start an anonymous customer session
func (api *AuthAPI) SignInAnonymously(c *gin.Context) {
	session, err := api.identity.SignInAnonymously(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, identitymapper.FromDomainSession(session))
}

// Post /v1/auth/login
// Sign in with email and password
func (api *AuthAPI) SignInWithCredentials(c *gin.Context) {
	var payload identitymapper.Credentials
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, err)
		return
	}
	session, err := api.identity.SignInWithCredentials(c.Request.Context(), payload.Email, payload.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, identitymapper.FromDomainSession(session))
}

// Post /v1/auth/register
// Create a staff account and sign it in
func (api *AuthAPI) RegisterCredentials(c *gin.Context) {
	var payload identitymapper.Credentials
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, err)
		return
	}
	session, err := api.identity.RegisterCredentials(c.Request.Context(), payload.Email, payload.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, identitymapper.FromDomainSession(session))
}

// Post /v1/auth/logout
// End the current session
func (api *AuthAPI) SignOut(c *gin.Context) {
	token := c.GetString(tokenContextKey)
	if err := api.identity.SignOut(c.Request.Context(), token); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Get /v1/auth/me
// Describe the signed-in identity
func (api *AuthAPI) WhoAmI(c *gin.Context) {
	who, _ := identityFrom(c)
	c.JSON(http.StatusOK, identitymapper.FromDomainIdentity(who))
}

func identityFrom(c *gin.Context) (identitydomain.Identity, bool) {
	raw, ok := c.Get(identityContextKey)
	if !ok {
		return identitydomain.Identity{}, false
	}
	who, ok := raw.(identitydomain.Identity)
	return who, ok && who.UID != ""
}

// sessionKey is the cart session owned by the caller: its bearer token, so
// each device signed in to the same account keeps its own cart. Routes using
// it sit behind RequireSession.
func sessionKey(c *gin.Context) string {
	return c.GetString(tokenContextKey)
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
