package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/tally/internal/http/export"
	"github.com/MrJamesThe3rd/tally/internal/http/importcsv"
	appmw "github.com/MrJamesThe3rd/tally/internal/http/middleware"
	"github.com/MrJamesThe3rd/tally/internal/http/respond"
	"github.com/MrJamesThe3rd/tally/internal/http/transaction"
	"github.com/MrJamesThe3rd/tally/internal/metrics"
)

type Options struct {
	AllowedOrigins []string
	// RateLimiter is optional; nil disables rate limiting.
	RateLimiter *appmw.RateLimiter
	// Health reports whether dependencies are reachable. Nil means always healthy.
	Health func(ctx context.Context) error
}

func New(
	opts Options,
	transactionsV1 *transaction.Handler,
	importV1 *importcsv.Handler,
	exportV1 *export.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(metrics.Instrument)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/health", health(opts.Health))
	router.Method(http.MethodGet, "/metrics", metrics.Handler())

	router.Route("/transactions", func(r chi.Router) {
		if opts.RateLimiter != nil {
			r.Use(opts.RateLimiter.Handler)
		}

		r.Route("/import", importV1.Routes)
		r.Route("/export", exportV1.Routes)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			transactionsV1.Routes(r)
		})
	})

	return router
}

func health(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				slog.Error("health check failed", "error", err)
				respond.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})

				return
			}
		}

		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
