// Package kernel assembles the storefront's HTTP handler: the global
// middleware stack, the /metrics endpoint and the application routes.
package kernel

import (
	"net/http"
	"time"

	"github.com/shashiranjanraj/storefront/app/routes"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
	"github.com/shashiranjanraj/storefront/pkg/reqid"
	"github.com/shashiranjanraj/storefront/pkg/router"
	"github.com/shashiranjanraj/storefront/pkg/session"
)

// Requests allowed per client IP per minute.
const rateLimit = 200

// NewRouter builds the router with the global middleware applied.
//
// Middleware order, outermost first:
//  1. metrics       total latency including every layer below
//  2. recovery      turns panics into the 500 envelope
//  3. request id    set before anything logs
//  4. access log
//  5. session       cookie-backed, stored in Redis or memory
//  6. CORS
//  7. rate limiter
//  8. authenticate  bearer token or session identity
func NewRouter(sessions *session.Manager, h routes.Handlers) *router.Router {
	r := router.New()

	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(sessions.Middleware())
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))
	r.Use(middleware.RateLimit(rateLimit, time.Minute))
	r.Use(middleware.Authenticate)

	r.Get("/metrics", "metrics", metrics.Handler())

	routes.Register(r, h)
	return r
}

// Handler is NewRouter's http.Handler.
func Handler(sessions *session.Manager, h routes.Handlers) http.Handler {
	return NewRouter(sessions, h).Handler()
}
