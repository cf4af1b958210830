package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	identityapp "github.com/gocommerce/commerce-backend/internal/identity/application"
	"github.com/gocommerce/commerce-backend/pkg/metrics"
)

// Handlers groups the per-context HTTP handlers mounted on the router.
type Handlers struct {
	Auth     *AuthHandler
	Catalog  *CatalogHandler
	Cart     *CartHandler
	Checkout *CheckoutHandler
	Orders   *OrderHandler
	Address  *AddressHandler
	Reviews  *ReviewHandler
}

func NewRouter(h Handlers, identities *identityapp.Service, m *metrics.ServerMetrics) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(Observe(m))
	r.Use(Authenticate(identities))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", metrics.Handler())

	r.Mount("/auth", h.Auth.Routes())
	r.Mount("/catalog", h.Catalog.Routes())
	r.Mount("/cart", h.Cart.Routes())
	r.Mount("/checkout", h.Checkout.Routes())
	r.Mount("/orders", h.Orders.Routes())
	r.Mount("/addresses", h.Address.Routes())
	r.Mount("/reviews", h.Reviews.Routes())

	return r
}
