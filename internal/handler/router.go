package handler

import (
	"net/http"

	"github.com/boddenberg/retail-ledger-go/internal/infra/observability"
	"github.com/boddenberg/retail-ledger-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(svc *service.LedgerService, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(svc))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {
		r.Get("/metrics/ledger", ledgerMetricsHandler(metrics))

		// =============================================
		// Persons and sessions
		// =============================================
		r.Post("/persons", registerPersonHandler(svc, logger))

		r.Route("/persons/{personId}", func(r chi.Router) {
			r.Post("/sessions", startSessionHandler(svc, logger))

			// Customer routes: session subject must match {personId}
			r.Group(func(r chi.Router) {
				r.Use(SessionAuthMiddleware(svc, logger))

				r.Get("/", getPersonHandler(svc, logger))
				r.Patch("/", updatePersonHandler(svc, logger))
				r.Delete("/", closeCustomerHandler(svc, logger))

				r.Get("/accounts", listAccountsHandler(svc, logger))
				r.Post("/accounts", openAccountHandler(svc, logger))

				r.Route("/accounts/{number}", func(r chi.Router) {
					r.Get("/", getAccountHandler(svc, logger))
					r.Delete("/", closeAccountHandler(svc, logger))
					r.Post("/secrets", revealSecretsHandler(svc, logger))
					r.Put("/password", changePasswordHandler(svc, logger))

					r.Post("/deposit", depositHandler(svc, logger))
					r.Post("/withdraw", withdrawHandler(svc, logger))
					r.Post("/transfer", transferHandler(svc, logger))
					r.Post("/loans", takeLoanHandler(svc, logger))
					r.Post("/loans/payments", payLoanHandler(svc, logger))
				})

				r.Post("/loans/status", loanStatusHandler(svc, logger))
			})
		})

		// =============================================
		// Operator routes (bank fingerprint)
		// =============================================
		r.Get("/admin/bank", bankReportHandler(svc, logger))
		r.Get("/admin/persons", listPersonsHandler(svc, logger))
	})

	return r
}

func healthzHandler(svc *service.LedgerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Health(r.Context()))
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func ledgerMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetLedgerSnapshot())
	}
}
