package respond_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/http/respond"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

func TestError(t *testing.T) {
	type testCase struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}

	tests := []testCase{
		{
			name:       "Validation",
			err:        &transaction.ValidationError{Fields: []transaction.FieldError{{Field: "title", Message: "is required"}}},
			wantStatus: http.StatusBadRequest,
			wantError:  "validation failed",
		},
		{
			name:       "SessionRequired",
			err:        transaction.ErrSessionRequired,
			wantStatus: http.StatusUnauthorized,
			wantError:  "session required",
		},
		{
			name:       "WrappedNotFound",
			err:        fmt.Errorf("get: %w", transaction.ErrNotFound),
			wantStatus: http.StatusNotFound,
			wantError:  "get: wrong session id or transaction not found",
		},
		{
			name:       "Store",
			err:        &transaction.StoreError{Op: "list", Err: errors.New("connection refused")},
			wantStatus: http.StatusInternalServerError,
			wantError:  "internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respond.Error(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantError, body["error"])
		})
	}
}

func TestBadRequest_HasFieldDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	respond.BadRequest(rec, "id", "must be a valid UUID")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"validation failed","fields":[{"field":"id","message":"must be a valid UUID"}]}`, rec.Body.String())
}
