package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/sabor-arte/internal/shared/fault"
)

var errMissing = stderrors.New("thing not found")

func respondWith(t *testing.T, err error) (*httptest.ResponseRecorder, ProblemDetail) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	responder := NewChainedResponder("", NotFoundMapper(errMissing), FaultMapper)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/v1/things/1", nil)

	responder.RespondError(c, err)

	var problem ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	return rec, problem
}

func TestChainedResponderMapsFaults(t *testing.T) {
	cases := []struct {
		err    error
		status int
		typ    string
	}{
		{fault.Validation(stderrors.New("cart is empty")), http.StatusBadRequest, TypeValidation},
		{fault.Auth(stderrors.New("bad password")), http.StatusUnauthorized, TypeUnauthorized},
		{fault.ErrForbidden, http.StatusForbidden, TypeForbidden},
		{fault.Conflict(stderrors.New("key reused")), http.StatusConflict, TypeConflict},
		{fault.Persistence(stderrors.New("permission denied")), http.StatusServiceUnavailable, TypeServiceUnavailable},
		{errMissing, http.StatusNotFound, TypeNotFound},
		{stderrors.New("boom"), http.StatusInternalServerError, TypeInternal},
	}
	for _, tc := range cases {
		rec, problem := respondWith(t, tc.err)
		assert.Equal(t, tc.status, rec.Code, tc.err.Error())
		assert.Equal(t, tc.typ, problem.Type)
		assert.Equal(t, "/v1/things/1", problem.Instance)
		assert.Equal(t, ContentTypeProblemJSON, rec.Header().Get("Content-Type"))
	}
}

func TestHTTPStatusFromError(t *testing.T) {
	assert.Equal(t, http.StatusConflict, HTTPStatusFromError(ErrConflict))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatusFromError(fault.Persistence(stderrors.New("x"))))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatusFromError(stderrors.New("x")))
}
