package httpx

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/milletflow/milletflow/internal/shared"
)

func TestRespondErrorMapsDomainErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"not found", shared.ErrNotFound, http.StatusNotFound},
		{"invalid input", shared.Invalid("quantity must be positive"), http.StatusBadRequest},
		{"insufficient stock", shared.ErrInsufficientStock, http.StatusConflict},
		{"invalid transition", fmt.Errorf("order #1: Shipped to Pending: %w", shared.ErrInvalidTransition), http.StatusConflict},
		{"precondition failed", shared.ErrPreconditionFailed, http.StatusConflict},
		{"unexpected error", fmt.Errorf("pool exhausted"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			RespondError(rr, tc.err)
			assert.Equal(t, tc.code, rr.Code)
			assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")
		})
	}
}

func TestRespondErrorSetsProblemType(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondError(rr, shared.ErrInsufficientStock)
	assert.Contains(t, rr.Body.String(), `"type":"https://milletflow.dev/problems/insufficient-stock"`)
	assert.Contains(t, rr.Body.String(), `"title":"Insufficient Stock"`)
}

func TestRespondErrorHidesInternalDetails(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondError(rr, fmt.Errorf("dial tcp 10.0.0.5:5432: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "10.0.0.5")
}
