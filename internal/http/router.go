package httpapi

import (
	"expvar"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter registers HTTP routes and returns the handler with middleware.
func NewRouter(app *App) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(WithRequestID)
	r.Use(WithLogging)
	r.Use(middleware.Recoverer)
	r.Use(WithCORS(app.Cfg.CORSAllowOrigin))
	r.NotFound(app.notFoundHandler)
	r.MethodNotAllowed(app.methodNotAllowedHandler)

	sinks := app.Deps.Dispatcher.Sinks()
	r.Route("/functions", func(r chi.Router) {
		r.Post("/append-order", app.sinkFunction(sinks[0]))
		r.Post("/send-telegram", app.sinkFunction(sinks[1]))
	})
	r.Route("/api", func(r chi.Router) {
		r.Post("/orders", app.createOrderHandler)
		r.Post("/quote", app.quoteHandler)
		r.Get("/catalog", app.catalogHandler)
		r.With(RequireAPIKey(app.Cfg.AdminAPIKey)).Get("/diagnostic", app.diagnosticHandler)
	})

	r.Get("/healthz", app.healthHandler)
	r.Get("/debug/metrics", app.metricsHandler)
	r.Handle("/debug/vars", expvar.Handler())
	r.Get("/openapi.yaml", app.openapiHandler)
	r.Get("/docs", app.docsHandler)
	return r
}
