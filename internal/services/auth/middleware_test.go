package auth

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"water-delivery/internal/logger"
	"water-delivery/internal/models"
)

func TestRequire(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	log := logger.NewWithWriter("test", "error", io.Discard)
	authn := NewAuthenticator(svc, log)

	_, err := svc.CreateUser(ctx, "courier", "secret123", models.RoleCourier)
	require.NoError(t, err)
	session, _, err := svc.Login(ctx, "courier", "secret123")
	require.NoError(t, err)

	var seen models.Principal
	next := func(w http.ResponseWriter, r *http.Request) {
		seen, _ = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}

	tests := []struct {
		name   string
		header string
		roles  []models.Role
		want   int
	}{
		{"no token", "", nil, http.StatusUnauthorized},
		{"garbage token", "Bearer xyz", nil, http.StatusUnauthorized},
		{"any role", "Bearer " + session.Token, nil, http.StatusOK},
		{"matching role", "Bearer " + session.Token, []models.Role{models.RoleCourier}, http.StatusOK},
		{"wrong role", "Bearer " + session.Token, []models.Role{models.RoleAdmin}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/orders", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			authn.Require(tt.roles...)(next)(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}

	assert.Equal(t, "courier", seen.Username)
}
