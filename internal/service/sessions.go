package service

import (
	"context"
	"fmt"

	"github.com/boddenberg/retail-ledger-go/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const (
	sessionIssuer    = "retail-ledger"
	sessionTokenType = "session"
)

// SessionClaims are the claims of a customer session token. The subject is
// the person ID.
type SessionClaims struct {
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// StartSession exchanges a fingerprint for a session token.
func (s *LedgerService) StartSession(ctx context.Context, personID string, req *domain.SessionRequest) (*domain.SessionResponse, error) {
	var resp *domain.SessionResponse
	err := s.run(ctx, domain.OpStartSession, func(ctx context.Context) error {
		p, err := s.person(personID)
		if err != nil {
			return err
		}
		if !p.CheckFingerprint(req.Fingerprint) {
			return &domain.ErrUnauthorized{Message: "fingerprint verification failed"}
		}

		token, err := s.signSession(p.ID())
		if err != nil {
			return fmt.Errorf("sign session: %w", err)
		}
		s.logger.Debug("session started", zap.String("person_id", p.ID()))

		resp = &domain.SessionResponse{
			AccessToken: token,
			ExpiresIn:   int(s.sessionTTL.Seconds()),
			PersonID:    p.ID(),
		}
		return nil
	})
	return resp, err
}

// ValidateSessionToken parses and verifies a session token.
func (s *LedgerService) ValidateSessionToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithIssuer(sessionIssuer))
	if err != nil {
		return nil, &domain.ErrUnauthorized{Message: "invalid or expired session token"}
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.Type != sessionTokenType || claims.Subject == "" {
		return nil, &domain.ErrUnauthorized{Message: "invalid session token"}
	}
	return claims, nil
}

// AuthorizeSession validates tokenString and checks that it was issued to
// personID. A valid token of another person yields *domain.ErrForbidden.
func (s *LedgerService) AuthorizeSession(tokenString, personID string) (*SessionClaims, error) {
	claims, err := s.ValidateSessionToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Subject != personID {
		return nil, &domain.ErrForbidden{Action: "session does not belong to this person"}
	}
	return claims, nil
}

func (s *LedgerService) signSession(personID string) (string, error) {
	now := s.now()
	claims := SessionClaims{
		Type: sessionTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   personID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.sessionTTL)),
			Issuer:    sessionIssuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
