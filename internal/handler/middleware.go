package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/boddenberg/retail-ledger-go/internal/infra/observability"
	"github.com/boddenberg/retail-ledger-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type contextKey string

const personIDKey contextKey = "personID"

// SessionAuthMiddleware validates Bearer session tokens. The token subject
// must be the {personId} of the route; the person ID is added to the access
// log.
func SessionAuthMiddleware(svc *service.LedgerService, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("auth: missing token", zap.String("path", r.URL.Path))
				writeError(w, http.StatusUnauthorized, "missing session token")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				logger.Warn("auth: invalid token format", zap.String("path", r.URL.Path))
				writeError(w, http.StatusUnauthorized, "invalid authorization header")
				return
			}

			claims, err := svc.AuthorizeSession(parts[1], chi.URLParam(r, "personId"))
			if err != nil {
				logger.Warn("auth: session rejected",
					zap.String("path", r.URL.Path),
					zap.Error(err),
				)
				handleServiceError(w, err, logger)
				return
			}
			observability.AnnotateRequest(r.Context(), zap.String("person_id", claims.Subject))

			ctx := context.WithValue(r.Context(), personIDKey, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PersonIDFromContext extracts the authenticated person ID from context.
func PersonIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(personIDKey).(string)
	return v
}
