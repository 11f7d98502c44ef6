package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"water-delivery/internal/apperr"
	"water-delivery/internal/logger"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperr.Validation("name", "required"), http.StatusBadRequest},
		{apperr.NegativeAmount("below zero"), http.StatusBadRequest},
		{apperr.Authentication("bad token"), http.StatusUnauthorized},
		{apperr.Permission("no"), http.StatusForbidden},
		{apperr.NotFound("order", 1), http.StatusNotFound},
		{apperr.InvalidTransition("DELIVERED", "OPEN"), http.StatusConflict},
		{apperr.Conflict("duplicate"), http.StatusConflict},
		{apperr.StorageUnavailable(errors.New("down")), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(apperr.Code(tt.err), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestWriteErrorBody(t *testing.T) {
	log := logger.NewWithWriter("test", "error", io.Discard)
	r := httptest.NewRequest(http.MethodPatch, "/orders/1/status", nil)
	r = r.WithContext(logger.WithRequestID(r.Context(), "req-1"))
	w := httptest.NewRecorder()

	WriteError(w, r, log, apperr.InvalidValue("status", "unknown status", []string{"OPEN", "CANCELED"}))

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "validation_error", body["code"])
	assert.Equal(t, "status", body["field"])
	assert.Equal(t, "req-1", body["request_id"])
	assert.Equal(t, []any{"OPEN", "CANCELED"}, body["allowed"])
}

func TestWriteErrorHidesInternalMessage(t *testing.T) {
	var logs bytes.Buffer
	log := logger.NewWithWriter("test", "info", &logs)
	r := httptest.NewRequest(http.MethodGet, "/orders", nil)
	w := httptest.NewRecorder()

	WriteError(w, r, log, errors.New("pq: secret detail"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "secret detail")
	assert.Contains(t, logs.String(), "secret detail")
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	t.Run("ok", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Ana"}`))
		r.Header.Set("Content-Type", "application/json; charset=utf-8")
		var p payload
		require.NoError(t, DecodeJSON(r, &p))
		assert.Equal(t, "Ana", p.Name)
	})

	t.Run("unknown field", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"nome":"Ana"}`))
		var p payload
		assert.ErrorIs(t, DecodeJSON(r, &p), apperr.ErrValidation)
	})

	t.Run("empty body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
		var p payload
		assert.ErrorIs(t, DecodeJSON(r, &p), apperr.ErrValidation)
	})

	t.Run("wrong content type", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Ana"}`))
		r.Header.Set("Content-Type", "text/plain")
		var p payload
		assert.ErrorIs(t, DecodeJSON(r, &p), apperr.ErrValidation)
	})
}

func TestBoolUnmarshal(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{`true`, true},
		{`false`, false},
		{`1`, true},
		{`0`, false},
		{`"sim"`, true},
		{`"não"`, false},
		{`"off"`, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var b Bool
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &b))
			assert.Equal(t, tt.want, bool(b))
		})
	}

	var b Bool
	assert.Error(t, json.Unmarshal([]byte(`"maybe"`), &b))
	assert.Error(t, json.Unmarshal([]byte(`2`), &b))

	var missing *Bool
	assert.Nil(t, missing.Ptr())
}

func TestPathIDAndQueryInt(t *testing.T) {
	rt := NewRouter()
	var gotID int64
	var gotLimit int
	rt.Handle("GET /items/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := PathID(r, "id")
		if err != nil {
			w.WriteHeader(StatusFor(err))
			return
		}
		limit, err := QueryInt(r, "limit", 20)
		if err != nil {
			w.WriteHeader(StatusFor(err))
			return
		}
		gotID, gotLimit = id, limit
		w.WriteHeader(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	rt.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/42", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, int64(42), gotID)
	assert.Equal(t, 20, gotLimit)

	w = httptest.NewRecorder()
	rt.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/0", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	rt.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/3?limit=x", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWithLoggingSetsRequestID(t *testing.T) {
	log := logger.NewWithWriter("test", "error", io.Discard)
	rt := NewRouter(WithLogging(log))
	var seen string
	rt.Handle("GET /ping", func(w http.ResponseWriter, r *http.Request) {
		seen = logger.RequestID(r.Context())
	})

	r := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.Header.Set("X-Request-ID", "abc")
	w := httptest.NewRecorder()
	rt.ServeHTTP(w, r)

	assert.Equal(t, "abc", seen)
	assert.Equal(t, "abc", w.Header().Get("X-Request-ID"))
}
