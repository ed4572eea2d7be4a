package json

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	w := httptest.NewRecorder()
	require.NoError(t, Write(w, map[string]string{"status": "ok"}))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestWriteResponseUnencodable(t *testing.T) {
	w := httptest.NewRecorder()
	err := WriteResponse(w, http.StatusOK, map[string]any{"ch": make(chan int)})
	assert.Error(t, err)
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		write      func(http.ResponseWriter)
		wantStatus int
		wantCode   string
	}{
		{
			name:       "internal server error",
			write:      func(w http.ResponseWriter) { WriteInternalServerError(w, "boom") },
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal_server_error",
		},
		{
			name:       "too many requests",
			write:      func(w http.ResponseWriter) { WriteTooManyRequests(w, "slow down") },
			wantStatus: http.StatusTooManyRequests,
			wantCode:   "too_many_requests",
		},
		{
			name:       "bad gateway",
			write:      func(w http.ResponseWriter) { WriteBadGateway(w, "upstream down") },
			wantStatus: http.StatusBadGateway,
			wantCode:   "bad_gateway",
		},
		{
			name:       "not found",
			write:      func(w http.ResponseWriter) { WriteNotFound(w, "nope") },
			wantStatus: http.StatusNotFound,
			wantCode:   "not_found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w)

			assert.Equal(t, tt.wantStatus, w.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Error)
			assert.NotEmpty(t, resp.Message)
		})
	}
}
