package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth"
	"github.com/go-chi/render"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

// Server bundles the HTTP handlers for the CMS API
type Server struct {
	service   simplecms.Service
	tokenAuth *jwtauth.JWTAuth
}

// NewServer creates a new API server
func NewServer(service simplecms.Service, tokenAuth *jwtauth.JWTAuth) *Server {
	return &Server{service: service, tokenAuth: tokenAuth}
}

// Router builds the full route tree.
//
// Public reads live under /api/v1; mutations require a valid bearer token
// and live under /api/v1/admin.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})

	records := NewRecordHandler(s.service)
	auth := NewAuthHandler(s.service, s.tokenAuth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/auth", auth.Routes())
		r.Mount("/", records.PublicRoutes())

		r.Route("/admin", func(r chi.Router) {
			r.Use(jwtauth.Verifier(s.tokenAuth))
			r.Use(jwtauth.Authenticator)
			r.Mount("/", records.AdminRoutes())
		})
	})

	return r
}
