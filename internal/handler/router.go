package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/BuzzLyutic/todo-api/pkg/respond"
)

// NewRouter собирает маршруты /todos и /health.
func NewRouter(h *TodoHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodPatch},
		AllowedHeaders: []string{"x-requested-with", "Access-Control-Allow-Origin", "origin", "Content-Type", "accept"},
	}))

	r.Get("/health", Health(h.ready))

	r.Route("/todos", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Delete("/", h.DeleteAll)
		r.Get("/{todoId}", h.Get)
		r.Patch("/{todoId}", h.Update)
		r.Delete("/{todoId}", h.Delete)
	})

	return r
}

func Health(ready func() bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storage := "initializing"
		if ready == nil || ready() {
			storage = "ready"
		}
		respond.JSON(w, r, http.StatusOK, map[string]string{"status": "ok", "storage": storage})
	}
}
