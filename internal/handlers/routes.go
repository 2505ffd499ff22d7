package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Routes wires every endpoint onto a chi router
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	})

	r.Get("/", h.HandleIndex)
	r.Handle("/static/*", StaticHandler())

	r.Route("/api/auth", func(r chi.Router) {
		r.Get("/config", h.HandleAuthConfig)
		r.Post("/login", h.HandlePasswordLogin)
		r.Post("/google", h.HandleGoogleLogin)
	})

	r.Route("/api/studio", func(r chi.Router) {
		r.Use(h.gate.RequireLogin)

		r.Get("/", h.HandleStudio)
		r.Post("/image", h.HandleMainImage)
		r.Post("/attachments", h.HandleAttachment)
		r.Put("/panel", h.HandlePanel)
		r.Post("/description", h.HandleDescription)
		r.Post("/sketch", h.HandleSketch)
		r.Post("/messages", h.HandleMessage)
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.Info("Request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
