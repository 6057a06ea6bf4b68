package router

import (
	"net/http"

	"bookmart/internal/handler"
	"bookmart/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(
	bookHandler *handler.BookHandler,
	cartHandler *handler.CartHandler,
	walletHandler *handler.WalletHandler,
	checkoutHandler *handler.CheckoutHandler,
	orderHandler *handler.OrderHandler,
	apiKey string,
	logger zerolog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Middleware in order: Recovery -> Logging -> CORS -> APIKeyAuth
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS)
	r.Use(middleware.APIKeyAuth(apiKey, logger))

	// Health check endpoint (auth is bypassed in the middleware)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/books", bookHandler.GetAll)
		r.Get("/books/{id}", bookHandler.GetByID)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.Get)
			r.Delete("/", cartHandler.Clear)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items", cartHandler.UpdateQuantity)
			r.Delete("/items", cartHandler.RemoveItem)
			r.Post("/items/save", cartHandler.SaveForLater)
			r.Post("/items/activate", cartHandler.MoveToCart)
		})

		r.Route("/wallet", func(r chi.Router) {
			r.Get("/", walletHandler.Get)
			r.Post("/deposits", walletHandler.Deposit)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", checkoutHandler.Pay)
			r.Get("/quote", checkoutHandler.Quote)
			r.Get("/state", checkoutHandler.State)
		})

		r.Get("/orders", orderHandler.List)
		r.Get("/orders/{id}", orderHandler.GetByID)

		r.Get("/rentals", orderHandler.ListRentals)
		r.Post("/rentals/{id}/return", orderHandler.ReturnRental)
	})

	return r
}
