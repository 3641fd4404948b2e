package handler

import (
	"context"
	"net/http"

	"github.com/boddenberg/retail-ledger-go/internal/domain"
	"github.com/boddenberg/retail-ledger-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Money & Loans Handlers
// ============================================================

// idempotencyHeader overrides the body idempotency_key when present.
const idempotencyHeader = "Idempotency-Key"

type amountOp func(ctx context.Context, personID, number string, req *domain.AmountRequest) (*domain.MovementResponse, error)

func amountHandler(spanName string, op amountOp, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), spanName)
		defer span.End()

		var req domain.AmountRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if key := r.Header.Get(idempotencyHeader); key != "" {
			req.IdempotencyKey = key
		}
		resp, err := op(ctx, PersonIDFromContext(ctx), chi.URLParam(r, "number"), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func depositHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return amountHandler("POST /accounts/{number}/deposit", svc.Deposit, logger)
}

func withdrawHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return amountHandler("POST /accounts/{number}/withdraw", svc.Withdraw, logger)
}

func takeLoanHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return amountHandler("POST /accounts/{number}/loans", svc.TakeLoan, logger)
}

func transferHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /accounts/{number}/transfer")
		defer span.End()

		var req domain.TransferRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if key := r.Header.Get(idempotencyHeader); key != "" {
			req.IdempotencyKey = key
		}
		resp, err := svc.Transfer(ctx, PersonIDFromContext(ctx), chi.URLParam(r, "number"), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func payLoanHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /accounts/{number}/loans/payments")
		defer span.End()

		var req domain.AmountRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if key := r.Header.Get(idempotencyHeader); key != "" {
			req.IdempotencyKey = key
		}
		rep, err := svc.PayLoan(ctx, PersonIDFromContext(ctx), chi.URLParam(r, "number"), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, rep)
	}
}

func loanStatusHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/persons/{personId}/loans/status")
		defer span.End()

		var req domain.FingerprintRequest
		if !decodeBody(w, r, &req) {
			return
		}
		status, err := svc.LoanStatus(ctx, PersonIDFromContext(ctx), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, status)
	}
}
