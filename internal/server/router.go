package server

import (
	"net/http"

	"github.com/cloo-solutions/recallai/internal/api"
	"github.com/cloo-solutions/recallai/internal/api/handlers"
	"github.com/cloo-solutions/recallai/internal/api/middleware"
	"github.com/go-chi/chi/v5"
)

type RouterConfig struct {
	PreflightHandler     *handlers.PreflightHandler
	MessageHandler       *handlers.MessageHandler
	ChannelHandler       *handlers.ChannelHandler
	ProfileHandler       *handlers.ProfileHandler
	DocumentationHandler *handlers.DocumentationHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 1 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/preflight", func(r chi.Router) {
		r.Post("/check", cfg.PreflightHandler.Check)
		r.Post("/answer", cfg.PreflightHandler.Answer)
	})

	r.Route("/messages", func(r chi.Router) {
		r.Post("/", cfg.MessageHandler.Create)
		r.Get("/{id}", cfg.MessageHandler.Get)
	})

	r.Route("/channels", func(r chi.Router) {
		r.Post("/", cfg.ChannelHandler.Create)
		r.Get("/", cfg.ChannelHandler.List)
		r.Get("/{id}", cfg.ChannelHandler.Get)
		r.Get("/{id}/messages", cfg.MessageHandler.ListByChannel)
	})

	r.Route("/profiles", func(r chi.Router) {
		r.Post("/", cfg.ProfileHandler.Create)
		r.Get("/", cfg.ProfileHandler.List)
		r.Get("/{id}", cfg.ProfileHandler.Get)
	})

	r.Route("/documentation", func(r chi.Router) {
		r.Get("/", cfg.DocumentationHandler.List)
		r.Get("/{id}", cfg.DocumentationHandler.Get)
	})

	return r
}
