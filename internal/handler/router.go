package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	adminhandler "github.com/b4bharath-source/faculty-admin-link/internal/handler/admin"
	sessionhandler "github.com/b4bharath-source/faculty-admin-link/internal/handler/session"
	middlewarePkg "github.com/b4bharath-source/faculty-admin-link/internal/middleware"
	adminmodel "github.com/b4bharath-source/faculty-admin-link/internal/model/admin"
	chatservice "github.com/b4bharath-source/faculty-admin-link/internal/service/chat"
)

// NewRouter wires HTTP routes to the session store.
func NewRouter(registry adminmodel.Registry, store *chatservice.Store) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	sessions := sessionhandler.New(store)
	admins := adminhandler.New(registry, store)

	r.Route("/api", func(api chi.Router) {
		sessions.RegisterRoutes(api)
		admins.RegisterRoutes(api)
	})

	return r
}
