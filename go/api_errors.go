package restaurantserver

import (
	"github.com/gin-gonic/gin"

	cartports "github.com/Apurer/sabor-arte/internal/domains/cart/ports"
	catalogports "github.com/Apurer/sabor-arte/internal/domains/catalog/ports"
	orderports "github.com/Apurer/sabor-arte/internal/domains/orders/ports"
	apierrors "github.com/Apurer/sabor-arte/internal/shared/errors"
)

// responder classifies application errors into RFC 7807 problems. Not-found
// sentinels are checked before the fault taxonomy.
var responder = apierrors.NewChainedResponder("",
	apierrors.NotFoundMapper(catalogports.ErrItemNotFound),
	apierrors.NotFoundMapper(cartports.ErrUnknownItem),
	apierrors.NotFoundMapper(orderports.ErrOrderNotFound),
	apierrors.FaultMapper,
)

// respondProblem maps a ProblemDetail through the shared responder.
func respondProblem(c *gin.Context, problem apierrors.ProblemDetail) {
	responder.Respond(c, problem)
}

// respondError maps err through the chained responder.
func respondError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	responder.RespondError(c, err)
}

func badRequest(c *gin.Context, err error) {
	respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
}
