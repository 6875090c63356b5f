package errors

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Apurer/sabor-arte/internal/shared/fault"
)

// ContentTypeProblemJSON is the media type for Problem Details responses.
const ContentTypeProblemJSON = "application/problem+json"

// Responder writes problems, prefixing relative type URIs with BaseURI.
type Responder struct {
	BaseURI string
}

// Respond aborts the request with problem as application/problem+json.
func (r *Responder) Respond(c *gin.Context, problem ProblemDetail) {
	if r.BaseURI != "" && strings.HasPrefix(problem.Type, "/") {
		problem.Type = r.BaseURI + problem.Type
	}
	if problem.Instance == "" {
		problem.Instance = c.Request.URL.Path
	}
	c.Header("Content-Type", ContentTypeProblemJSON)
	c.AbortWithStatusJSON(problem.Status, problem)
}

// RespondError sends err as is when it already is a problem, as a 500 otherwise.
func (r *Responder) RespondError(c *gin.Context, err error) {
	var problem ProblemDetail
	if errors.As(err, &problem) {
		r.Respond(c, problem)
		return
	}
	r.Respond(c, ErrInternal.WithDetail(err.Error()))
}

// ErrorMapper maps domain/application errors to ProblemDetail.
type ErrorMapper func(err error) (ProblemDetail, bool)

// ChainedResponder supports custom error mapping.
type ChainedResponder struct {
	*Responder
	mappers []ErrorMapper
}

// NewChainedResponder creates a responder with custom error mappers.
func NewChainedResponder(baseURI string, mappers ...ErrorMapper) *ChainedResponder {
	return &ChainedResponder{
		Responder: &Responder{BaseURI: baseURI},
		mappers:   mappers,
	}
}

// AddMapper adds an error mapper to the chain.
func (r *ChainedResponder) AddMapper(mapper ErrorMapper) {
	r.mappers = append(r.mappers, mapper)
}

// RespondError tries each mapper before falling back to default handling.
func (r *ChainedResponder) RespondError(c *gin.Context, err error) {
	for _, mapper := range r.mappers {
		if problem, ok := mapper(err); ok {
			r.Respond(c, problem)
			return
		}
	}
	r.Responder.RespondError(c, err)
}

// NotFoundMapper maps any error matching target to a 404.
func NotFoundMapper(target error) ErrorMapper {
	return func(err error) (ProblemDetail, bool) {
		if errors.Is(err, target) {
			return ErrNotFound.WithDetail(err.Error()), true
		}
		return ProblemDetail{}, false
	}
}

// FaultMapper classifies the shared fault taxonomy.
func FaultMapper(err error) (ProblemDetail, bool) {
	switch {
	case errors.Is(err, fault.ErrValidation):
		return ErrValidation.WithDetail(err.Error()), true
	case errors.Is(err, fault.ErrAuth):
		return ErrUnauthorized.WithDetail(err.Error()), true
	case errors.Is(err, fault.ErrForbidden):
		return ErrForbidden.WithDetail(err.Error()), true
	case errors.Is(err, fault.ErrConflict):
		return ErrConflict.WithDetail(err.Error()), true
	case errors.Is(err, fault.ErrPersistence):
		return ErrServiceUnavailable.WithDetail(err.Error()), true
	}
	return ProblemDetail{}, false
}

// HTTPStatusFromError extracts HTTP status from an error if possible.
func HTTPStatusFromError(err error) int {
	var problem ProblemDetail
	if errors.As(err, &problem) {
		return problem.Status
	}
	if problem, ok := FaultMapper(err); ok {
		return problem.Status
	}
	return http.StatusInternalServerError
}
