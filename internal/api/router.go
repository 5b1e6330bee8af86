package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func NewRouter(app *App) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(requestLogger(app.Logger))

	r.Get("/ping", PingHandler)

	r.Post("/api/scan", app.ScanHandler)
	r.Delete("/api/scan", app.RemoveScanHandler)
	r.Get("/preview/{token}", app.PreviewHandler)

	r.Post("/api/chat", app.ChatHandler)
	r.Get("/api/chat", app.TranscriptHandler)
	r.Get("/api/chat/stream", app.StreamHandler)

	return r
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("elapsed", time.Since(start)))
		})
	}
}
