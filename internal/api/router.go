// internal/api/router.go
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"bike-wallet/internal/api/handler"
)

// NewRouter sets up and returns a new HTTP router.
// allowedOrigins feeds the CORS middleware; empty disables cross-origin access.
func NewRouter(walletHandler *handler.WalletHandler, clientHandler *handler.ClientHandler, logger *slog.Logger, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(handler.DefaultTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/clients", func(r chi.Router) {
		r.Post("/", clientHandler.RegisterClient)
		r.Get("/{clientId}", clientHandler.GetClient)
	})

	r.Route("/wallet", func(r chi.Router) {
		r.Post("/add", walletHandler.CreateWallet)
		r.Post("/add/{clientId}", walletHandler.CreateWallet)
		r.Post("/deposit", walletHandler.Deposit)
		r.Post("/payment", walletHandler.MakePayment)
		r.Get("/{clientId}", walletHandler.GetWallet)
		r.Get("/{clientId}/transactions", walletHandler.GetTransactions)
		r.Delete("/{clientId}", walletHandler.DeleteWallet)
	})

	logger.Debug("Routes registered")
	return r
}
