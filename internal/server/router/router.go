// Package router assembles the API mux and its middleware chain
// (RequestID → CORS → Metrics → Timeout, with rate limiting on search and
// the admin-key guard on debug endpoints).
package router

import (
	"net/http"
	"time"

	"github.com/cityu-campus/tasks-api/internal/server/handler"
	"github.com/cityu-campus/tasks-api/pkg/config"
	"github.com/cityu-campus/tasks-api/pkg/health"
	"github.com/cityu-campus/tasks-api/pkg/metrics"
	"github.com/cityu-campus/tasks-api/pkg/middleware"
)

// Deps holds everything the router wires together. Metrics may be nil.
type Deps struct {
	Handler *handler.Handler
	Checker *health.Checker
	Metrics *metrics.Metrics
	Config  *config.Config
}

// New builds the full HTTP handler chain:
//
//	request → RequestID → CORS → Metrics → Timeout → mux
func New(d Deps) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", d.Handler.Root)
	mux.HandleFunc("GET /health/live", d.Checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", d.Checker.ReadyHandler())

	mux.HandleFunc("GET /api/tasks", d.Handler.Tasks)
	mux.HandleFunc("GET /api/tasks/{id}", d.Handler.TaskByID)
	mux.HandleFunc("GET /api/npcs", d.Handler.NPCs)
	mux.HandleFunc("GET /api/npcs/{id}", d.Handler.NPCByID)
	mux.HandleFunc("GET /api/knowledge", d.Handler.Knowledge)
	mux.HandleFunc("GET /api/stats", d.Handler.Stats)

	limiter := middleware.NewLimiter(d.Config.Search.RateLimit, time.Minute)
	mux.Handle("GET /api/search", middleware.RateLimit(limiter)(http.HandlerFunc(d.Handler.Search)))
	mux.Handle("POST /api/npc/{task_id}/chat", middleware.RateLimit(limiter)(http.HandlerFunc(d.Handler.Chat)))

	adminGuard := middleware.AdminKey(d.Config.Admin.APIKey)
	mux.Handle("GET /api/debug/index", adminGuard(http.HandlerFunc(d.Handler.DebugIndex)))
	mux.Handle("POST /api/debug/reload", adminGuard(http.HandlerFunc(d.Handler.DebugReload)))

	var chain http.Handler = mux
	chain = middleware.Timeout(d.Config.Server.WriteTimeout)(chain)
	if d.Metrics != nil {
		chain = middleware.Metrics(d.Metrics)(chain)
	}
	chain = middleware.CORS(middleware.DefaultCORSConfig(d.Config.CORS.AllowOrigins))(chain)
	chain = middleware.RequestID(chain)
	return chain
}
