package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	identityapp "github.com/gocommerce/commerce-backend/internal/identity/application"
	identity "github.com/gocommerce/commerce-backend/internal/identity/domain"
	"github.com/gocommerce/commerce-backend/pkg/metrics"
)

type ctxKey int

const principalKey ctxKey = 0

// PrincipalFrom returns the request principal, anonymous when unset.
func PrincipalFrom(ctx context.Context) identity.Principal {
	if p, ok := ctx.Value(principalKey).(identity.Principal); ok {
		return p
	}
	return identity.Principal{}
}

func withPrincipal(ctx context.Context, p identity.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// Authenticate resolves a Bearer token into the request principal. Missing
// or invalid tokens resolve to anonymous; handlers decide what anonymous
// may do.
func Authenticate(identities *identityapp.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := identity.Principal{}
			if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
				p = identities.Resolve(r.Context(), strings.TrimPrefix(h, "Bearer "))
			}
			next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), p)))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Observe records request counts and latency per route pattern.
func Observe(m *metrics.ServerMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			pattern := chi.RouteContext(r.Context()).RoutePattern()
			if pattern == "" {
				pattern = r.URL.Path
			}
			handler := r.Method + " " + pattern
			m.Requests.WithLabelValues(handler, strconv.Itoa(rec.status)).Inc()
			m.LatencyMS.WithLabelValues(handler).Observe(float64(time.Since(start).Milliseconds()))
		})
	}
}
