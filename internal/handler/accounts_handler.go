package handler

import (
	"net/http"

	"github.com/boddenberg/retail-ledger-go/internal/domain"
	"github.com/boddenberg/retail-ledger-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Accounts Handlers
// ============================================================

func listAccountsHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /accounts")
		defer span.End()

		accounts, err := svc.ListAccounts(ctx, PersonIDFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, accounts)
	}
}

func openAccountHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /accounts")
		defer span.End()

		var req domain.OpenAccountRequest
		if !decodeBody(w, r, &req) {
			return
		}
		account, err := svc.OpenAccount(ctx, PersonIDFromContext(ctx), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, account)
	}
}

func getAccountHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /accounts/{number}")
		defer span.End()

		account, err := svc.GetAccount(ctx, PersonIDFromContext(ctx), chi.URLParam(r, "number"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, account)
	}
}

func closeAccountHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /accounts/{number}")
		defer span.End()

		var req domain.FingerprintRequest
		if !decodeBody(w, r, &req) {
			return
		}
		number := chi.URLParam(r, "number")
		if err := svc.CloseAccount(ctx, PersonIDFromContext(ctx), number, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "account closed", ID: number})
	}
}

func revealSecretsHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /accounts/{number}/secrets")
		defer span.End()

		var req domain.FingerprintRequest
		if !decodeBody(w, r, &req) {
			return
		}
		secrets, err := svc.RevealSecrets(ctx, PersonIDFromContext(ctx), chi.URLParam(r, "number"), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, secrets)
	}
}

func changePasswordHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /accounts/{number}/password")
		defer span.End()

		var req domain.ChangePasswordRequest
		if !decodeBody(w, r, &req) {
			return
		}
		number := chi.URLParam(r, "number")
		if err := svc.ChangePassword(ctx, PersonIDFromContext(ctx), number, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "password changed", ID: number})
	}
}
