package router

import (
	"net/http"

	"tea-kart/internal/config"
	"tea-kart/internal/handler"
	"tea-kart/internal/middleware"
	"tea-kart/internal/payment"
	"tea-kart/internal/session"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Handlers groups the HTTP handlers served by the router.
type Handlers struct {
	Products *handler.ProductHandler
	Cart     *handler.CartHandler
	Checkout *handler.CheckoutHandler
	Payments *handler.PaymentHandler
}

// New creates a new HTTP router with all routes and middleware configured.
func New(
	h Handlers,
	sessions *session.Manager,
	cfg *config.Config,
	logger zerolog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Recovery -> Logging -> CORS -> Session
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.RequestID)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))

	// Health check endpoint (no session required)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.Products.GetAll)
		r.Get("/category/{category}", h.Products.GetByCategory)
		r.Get("/{id}", h.Products.GetByID)
	})

	r.Get("/api/payments/status/{transaction_id}", h.Payments.Status)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Session(sessions, cfg.Session, logger))

		r.Route("/api/cart", func(r chi.Router) {
			r.Get("/", h.Cart.Get)
			r.Delete("/", h.Cart.Clear)
			r.Post("/items", h.Cart.AddItem)
			r.Put("/items/{id}", h.Cart.UpdateItem)
			r.Delete("/items/{id}", h.Cart.RemoveItem)
		})

		r.Route("/api/checkout", func(r chi.Router) {
			r.Get("/", h.Checkout.Get)
			r.Post("/", h.Checkout.Submit)
			r.Delete("/", h.Checkout.Abandon)
			r.Patch("/form", h.Checkout.UpdateField)
		})

		r.Get(payment.SuccessPath, h.Payments.Landing)
		r.Get(payment.FailedPath, h.Payments.Landing)
		r.Get(payment.CancelledPath, h.Payments.Landing)
	})

	return otelhttp.NewHandler(r, "tea-kart")
}
