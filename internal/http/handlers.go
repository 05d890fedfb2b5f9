package httpapi

import (
	"encoding/json"
	"expvar"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/fairyhunter13/amiral-order-service/internal/analytics"
	"github.com/fairyhunter13/amiral-order-service/internal/catalog"
	"github.com/fairyhunter13/amiral-order-service/internal/config"
	"github.com/fairyhunter13/amiral-order-service/internal/dispatch"
	httpopenapi "github.com/fairyhunter13/amiral-order-service/internal/http/openapi"
	"github.com/fairyhunter13/amiral-order-service/internal/order"
	"github.com/fairyhunter13/amiral-order-service/internal/queue"
)

// order outcome counters, also served on /debug/vars
var orderStats = expvar.NewMap("orders")

// Deps are the components the handlers call into.
type Deps struct {
	Line       catalog.ProductLine
	Orders     *order.Service
	Dispatcher *dispatch.Dispatcher
	Manager    *queue.Manager
	// Pixel may be nil.
	Pixel *analytics.Pixel
	// LimiterBackend names the rate-limit store, "memory" or "redis".
	LimiterBackend string
	KafkaEnabled   bool
}

type App struct {
	Cfg  config.Config
	Deps Deps

	closing atomic.Bool
	started time.Time
}

func NewApp(cfg config.Config, d Deps) *App {
	if d.LimiterBackend == "" {
		d.LimiterBackend = "memory"
	}
	return &App{Cfg: cfg, Deps: d, started: time.Now()}
}

// StartShutdown rejects new orders. Event intake stays open so orders
// already in flight still emit their events.
func (a *App) StartShutdown() {
	a.closing.Store(true)
}

func (a *App) isClosing() bool {
	return a.closing.Load() || a.Deps.Manager.IsShuttingDown()
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if a.isClosing() {
		status = "shutting_down"
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

func (a *App) metricsHandler(w http.ResponseWriter, r *http.Request) {
	st := a.Deps.Manager.Stats()
	m := map[string]any{
		"events_enqueued":  st.Enqueued,
		"events_processed": st.Processed,
		"events_failed":    st.Failed,
		"backlog_size":     st.Backlog,
		"queue_depth":      st.Depth,
		"worker_count":     a.Deps.Manager.WorkerCount(),
		"uptime_sec":       time.Since(a.started).Seconds(),
	}
	orderStats.Do(func(kv expvar.KeyValue) {
		m["orders_"+kv.Key] = json.RawMessage(kv.Value.String())
	})
	writeJSON(w, http.StatusOK, m)
}

type serviceStatus struct {
	Configured bool   `json:"configured"`
	Backend    string `json:"backend,omitempty"`
}

func (a *App) diagnosticHandler(w http.ResponseWriter, r *http.Request) {
	sinks := a.Deps.Dispatcher.Sinks()
	services := map[string]serviceStatus{
		"rateLimit": {Configured: true, Backend: a.Deps.LimiterBackend},
		"kafka":     {Configured: a.Deps.KafkaEnabled},
	}
	for _, s := range sinks {
		services[s.Name()] = serviceStatus{Configured: s.Configured()}
	}
	pixel := map[string]bool{"enabled": false, "initialized": false}
	if a.Deps.Pixel != nil {
		pixel["enabled"] = a.Deps.Pixel.Enabled()
		pixel["initialized"] = a.Deps.Pixel.Initialized()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"productLine":  a.Deps.Line.ID,
		"services":     services,
		"analytics":    pixel,
		"queue":        a.Deps.Manager.Stats(),
		"workerCount":  a.Deps.Manager.WorkerCount(),
		"shuttingDown": a.isClosing(),
		"uptimeSec":    time.Since(a.started).Seconds(),
	})
}

func (a *App) notFoundHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSONError(w, http.StatusNotFound, "not_found", "")
}

func (a *App) methodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
}

func (a *App) openapiHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(httpopenapi.YAML)
}

func (a *App) docsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	html := `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>Amiral Order Service API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui'
      });
    </script>
  </body>
</html>`
	_, _ = w.Write([]byte(html))
}
