// Package middleware provides HTTP middleware for request validation and processing.
package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/api/response"
	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/validation"
)

// ValidateSymbolMiddleware validates that the symbol URL parameter is a
// well-formed asset identifier before the handler runs.
//
// Example usage in router:
//
//	r.Route("/{symbol}", func(r chi.Router) {
//	    r.Use(middleware.ValidateSymbolMiddleware)
//	    r.Get("/", handler.Quote)
//	})
func ValidateSymbolMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		symbol := chi.URLParam(r, "symbol")

		if err := validation.ValidateAssetID(symbol); err != nil {
			response.Error(w, http.StatusBadRequest, "invalid symbol", err.Error())
			return
		}

		next.ServeHTTP(w, r)
	})
}
