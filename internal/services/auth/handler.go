package auth

import (
	"net/http"
	"time"

	"water-delivery/internal/apperr"
	"water-delivery/internal/httpx"
	"water-delivery/internal/logger"
	"water-delivery/internal/models"
)

// Handler handles HTTP requests for sessions and user administration
type Handler struct {
	service *Service
	logger  *logger.Logger
}

func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{service: service, logger: log}
}

// Register mounts the auth routes
func (h *Handler) Register(rt *httpx.Router, authn *Authenticator) {
	rt.Handle("POST /auth/login", h.Login)
	rt.Handle("POST /auth/logout", h.Logout, authn.Require())
	rt.Handle("GET /auth/me", h.Me, authn.Require())
	rt.Handle("GET /admin/users", h.ListUsers, authn.Require(models.RoleAdmin))
	rt.Handle("POST /admin/users", h.CreateUser, authn.Require(models.RoleAdmin))
	rt.Handle("PATCH /admin/users/{id}", h.UpdateUser, authn.Require(models.RoleAdmin))
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      models.User `json:"user"`
}

// Login handles POST /auth/login requests
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	session, user, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, loginResponse{Token: session.Token, ExpiresAt: session.ExpiresAt, User: user})
}

// Logout handles POST /auth/logout requests
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token, _ := bearerToken(r)
	if err := h.service.Logout(r.Context(), token); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the identity the current token resolves to
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	httpx.WriteJSON(w, http.StatusOK, principal)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, users)
}

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	role, err := models.ParseRole(req.Role)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	user, err := h.service.CreateUser(r.Context(), req.Username, req.Password, role)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, user)
}

type updateUserRequest struct {
	Role   *string     `json:"role"`
	Active *httpx.Bool `json:"active"`
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	var req updateUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	patch := UserPatch{Active: req.Active.Ptr()}
	if req.Role != nil {
		role, err := models.ParseRole(*req.Role)
		if err != nil {
			httpx.WriteError(w, r, h.logger, err)
			return
		}
		patch.Role = &role
	}

	principal, _ := PrincipalFromContext(r.Context())
	if principal.UserID == id && patch.Active != nil && !*patch.Active {
		httpx.WriteError(w, r, h.logger, apperr.Validation("active", "administrators cannot deactivate themselves"))
		return
	}

	user, err := h.service.UpdateUser(r.Context(), id, patch)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, user)
}
