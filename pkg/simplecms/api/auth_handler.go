package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth"
	"github.com/go-chi/render"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

const tokenLifetime = 24 * time.Hour

// AuthHandler handles admin authentication
type AuthHandler struct {
	service   simplecms.Service
	tokenAuth *jwtauth.JWTAuth
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(service simplecms.Service, tokenAuth *jwtauth.JWTAuth) *AuthHandler {
	return &AuthHandler{service: service, tokenAuth: tokenAuth}
}

// Routes returns the auth routes
func (h *AuthHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/login", h.Login)

	return r
}

// LoginRequest is the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued bearer token
type LoginResponse struct {
	Token  string         `json:"token"`
	Author AuthorResponse `json:"author"`
}

// AuthorResponse is the public view of an author
type AuthorResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Login verifies credentials and issues a signed JWT.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, &simplecms.InvalidPayloadError{Field: "body", Reason: "malformed JSON"})
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, r, &simplecms.InvalidPayloadError{Field: "email", Reason: "email and password are required"})
		return
	}

	author, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		slog.Warn("login rejected", "email", req.Email)
		writeError(w, r, err)
		return
	}

	claims := map[string]interface{}{
		"sub":   author.ID.String(),
		"email": author.Email,
		"name":  author.Name,
	}
	jwtauth.SetIssuedNow(claims)
	jwtauth.SetExpiryIn(claims, tokenLifetime)

	_, token, err := h.tokenAuth.Encode(claims)
	if err != nil {
		slog.Error("failed to sign token", "error", err)
		writeError(w, r, err)
		return
	}

	slog.Info("admin logged in", "author_id", author.ID)
	render.JSON(w, r, LoginResponse{
		Token: token,
		Author: AuthorResponse{
			ID:    author.ID.String(),
			Email: author.Email,
			Name:  author.Name,
		},
	})
}
