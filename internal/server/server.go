// Package server assembles the HTTP surface and owns its lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"bookledger/internal/api"
	"bookledger/internal/audit"
	"bookledger/internal/catalog"
	"bookledger/internal/customers"
	"bookledger/internal/events"
	"bookledger/internal/reporting"
	"bookledger/internal/sales"
	"bookledger/internal/store"
)

// Options tunes the router. A zero RateLimit disables write throttling.
type Options struct {
	RateLimit rate.Limit
	Burst     int
}

// NewRouter wires every service onto one chi router under /api/v1.
func NewRouter(st store.Store, publisher events.Publisher, logger *zap.Logger, opts Options) (http.Handler, error) {
	salesService, err := sales.NewService(st, publisher, logger.Named("sales"))
	if err != nil {
		return nil, fmt.Errorf("create sales service: %w", err)
	}
	catalogService := catalog.NewService(st, st, logger.Named("catalog"))
	customerService := customers.NewService(st, logger.Named("customers"))
	reportingService := reporting.NewService(st)
	auditor := audit.NewAuditor(audit.DefaultChecks(st)...)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(api.AccessLog(logger.Named("http")))
	router.Use(middleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		api.Respond(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.Route("/api/v1", func(r chi.Router) {
		if opts.RateLimit > 0 {
			r.Use(api.RateLimit(rate.NewLimiter(opts.RateLimit, opts.Burst)))
		}
		catalog.NewHandler(catalogService, logger).RegisterRoutes(r)
		customers.NewHandler(customerService, logger).RegisterRoutes(r)
		sales.NewHandler(salesService, logger).RegisterRoutes(r)
		reporting.NewHandler(reportingService, logger).RegisterRoutes(r)
		audit.NewHandler(auditor).RegisterRoutes(r)
	})

	return router, nil
}

// Run serves handler on addr until ctx is cancelled, then drains in-flight requests for
// at most shutdownTimeout.
func Run(ctx context.Context, addr string, handler http.Handler, shutdownTimeout time.Duration, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down http server", zap.Duration("timeout", shutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}
