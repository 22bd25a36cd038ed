/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/accounts/*       Accounts and their sub-resources
  /api/transactions/*   Transaction mutations
  /api/invoices/*       Invoice lifecycle
  /api/admin/*          Admin operations
  /api/demo/*           Demo data seeding (dev only)

SECURITY NOTE:
  No authentication middleware. The X-User-ID header is trusted as-is.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-User-ID"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Account routes
		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", h.ListAccounts)
			r.Post("/", h.CreateAccount)
			r.Get("/{id}", h.GetAccount)
			r.Get("/{id}/transactions", h.ListAccountTransactions)
			r.Get("/{id}/open-invoice", h.GetOpenInvoice)
			r.Post("/{id}/history-invoice", h.CreateHistoryInvoice)
		})

		// Transaction routes
		r.Route("/transactions", func(r chi.Router) {
			r.Post("/", h.CreateTransaction)
			r.Put("/{id}", h.UpdateTransaction)
			r.Delete("/{id}", h.DeleteTransaction)
		})

		// Invoice routes. The fixed paths must register before /{id}.
		r.Route("/invoices", func(r chi.Router) {
			r.Get("/resolve", h.ResolveInvoice)
			r.Get("/closed-unpaid", h.ListClosedUnpaid)
			r.Get("/overdue", h.ListOverdue)
			r.Get("/{id}", h.GetInvoice)
			r.Post("/{id}/close", h.CloseInvoice)
			r.Post("/{id}/pay", h.PayInvoice)
			r.Post("/{id}/pay-partial", h.PayPartialInvoice)
			r.Post("/{id}/recalculate", h.RecalculateInvoice)
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Post("/run-closures", h.RunClosures)
		})

		// Demo routes
		r.Route("/demo", func(r chi.Router) {
			r.Post("/seed", h.SeedDemo)
		})
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Money Manager</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Money Manager API</h1>
<p>Send requests with an <code>X-User-ID</code> header.</p>
<h2>API Endpoints</h2>
<ul>
<li><code>GET /api/accounts</code> - List accounts</li>
<li><code>POST /api/transactions</code> - Record a transaction</li>
<li><code>GET /api/invoices/closed-unpaid</code> - Invoices awaiting payment</li>
</ul>
</body>
</html>`))
	})

	return r
}
