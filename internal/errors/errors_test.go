package errors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
)

func TestAPIError(t *testing.T) {
	err := New(http.StatusTeapot, "TEAPOT", "short and stout")
	assert.Equal(t, "short and stout", err.Error())
	assert.Nil(t, err.Details)

	withDetails := NewWithDetails(http.StatusBadRequest, "X", "bad", map[string]int{"n": 1})
	assert.Equal(t, map[string]int{"n": 1}, withDetails.Details)
}

func TestAPIError_Render(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	render.Render(rec, req, ErrServiceUnavailable)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error_code":"SERVICE_UNAVAILABLE"`)
}

func TestHelpers(t *testing.T) {
	nf := NotFoundError("source IEP")
	assert.Equal(t, http.StatusNotFound, nf.StatusCode)
	assert.Equal(t, "source IEP not found", nf.Message)

	v := ErrValidation("format", "format must be one of: csv, xlsx")
	assert.Equal(t, http.StatusBadRequest, v.StatusCode)
	details, ok := v.Details.(ValidationErrors)
	if assert.True(t, ok) {
		assert.Equal(t, []ValidationError{{Field: "format", Message: "format must be one of: csv, xlsx"}}, details.Errors)
	}

	inv := InvalidRequestWithError(assert.AnError)
	assert.Equal(t, assert.AnError.Error(), inv.Details)
}
