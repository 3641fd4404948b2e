package handler

import (
	"net/http"

	"github.com/boddenberg/retail-ledger-go/internal/service"

	"go.uber.org/zap"
)

// bankFingerprintHeader carries the operator secret for /v1/admin routes.
const bankFingerprintHeader = "X-Bank-Fingerprint"

func bankReportHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/admin/bank")
		defer span.End()

		report, err := svc.BankReport(ctx, r.Header.Get(bankFingerprintHeader))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, report)
	}
}

func listPersonsHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/admin/persons")
		defer span.End()

		persons, err := svc.ListPersons(ctx, r.Header.Get(bankFingerprintHeader))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, persons)
	}
}
