package handler

import (
	"net/http"

	"github.com/boddenberg/retail-ledger-go/internal/domain"
	"github.com/boddenberg/retail-ledger-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Persons & Sessions Handlers
// ============================================================

func registerPersonHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/persons")
		defer span.End()

		var req domain.RegisterPersonRequest
		if !decodeBody(w, r, &req) {
			return
		}
		resp, err := svc.RegisterPerson(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, resp)
	}
}

func startSessionHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/persons/{personId}/sessions")
		defer span.End()

		personID, ok := personIDParam(w, r)
		if !ok {
			return
		}
		var req domain.SessionRequest
		if !decodeBody(w, r, &req) {
			return
		}
		resp, err := svc.StartSession(ctx, personID, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func getPersonHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/persons/{personId}")
		defer span.End()

		info, err := svc.GetPerson(ctx, PersonIDFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, info)
	}
}

func updatePersonHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /v1/persons/{personId}")
		defer span.End()

		var req domain.UpdatePersonRequest
		if !decodeBody(w, r, &req) {
			return
		}
		info, err := svc.UpdatePerson(ctx, PersonIDFromContext(ctx), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, info)
	}
}

func closeCustomerHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/persons/{personId}")
		defer span.End()

		var req domain.FingerprintRequest
		if !decodeBody(w, r, &req) {
			return
		}
		personID := PersonIDFromContext(ctx)
		if err := svc.CloseCustomer(ctx, personID, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "customer accounts closed", ID: personID})
	}
}
