package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/api/handlers"
	custommiddleware "github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/api/middleware"
	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/config"
	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/pricefeed"
	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(systemService *service.SystemService, ledgerService *service.LedgerService, feed *pricefeed.Feed, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(systemService)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		// The entire ledger contract the presentation layer may depend on.
		r.Route("/ledger", func(r chi.Router) {
			ledgerHandler := handlers.NewLedgerHandler(ledgerService, feed)
			r.Get("/", ledgerHandler.State)
			r.Post("/buy", ledgerHandler.Buy)
			r.Post("/sell", ledgerHandler.Sell)
			r.Post("/reset", ledgerHandler.Reset)
			r.Get("/transactions", ledgerHandler.Transactions)
			r.Get("/valuation", ledgerHandler.Valuation)
		})

		r.Route("/prices", func(r chi.Router) {
			pricesHandler := handlers.NewPricesHandler(feed)
			r.Get("/", pricesHandler.List)
			r.Post("/refresh", pricesHandler.Refresh)
			r.Route("/{symbol}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateSymbolMiddleware)
				r.Get("/", pricesHandler.Quote)
			})
		})
	})

	return r
}
