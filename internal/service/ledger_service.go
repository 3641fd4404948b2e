// Package service provides the use cases of the retail ledger. It resolves
// person handles, enforces session ownership, applies idempotency keys and
// records traces and metrics around every call into the bank.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/boddenberg/retail-ledger-go/internal/domain"
	"github.com/boddenberg/retail-ledger-go/internal/infra/observability"
	"github.com/boddenberg/retail-ledger-go/internal/ledger"
	"github.com/boddenberg/retail-ledger-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var ledgerTracer = otel.Tracer("service/ledger")

// SessionConfig configures customer session tokens.
type SessionConfig struct {
	Secret string
	TTL    time.Duration
}

// LedgerService orchestrates persons, sessions and the bank.
type LedgerService struct {
	bank       *ledger.Bank
	people     port.PersonDirectory
	idem       port.IdempotencyStore
	jwtSecret  []byte
	sessionTTL time.Duration
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(
	bank *ledger.Bank,
	people port.PersonDirectory,
	idem port.IdempotencyStore,
	sessions SessionConfig,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *LedgerService {
	return &LedgerService{
		bank:       bank,
		people:     people,
		idem:       idem,
		jwtSecret:  []byte(sessions.Secret),
		sessionTTL: sessions.TTL,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// BankName returns the name of the served bank.
func (s *LedgerService) BankName() string { return s.bank.Name() }

// run wraps fn in a span and records its duration and outcome.
func (s *LedgerService) run(ctx context.Context, op domain.Operation, fn func(context.Context) error) error {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService."+string(op))
	defer span.End()
	span.SetAttributes(attribute.String("ledger.operation", string(op)))

	start := time.Now()
	err := fn(ctx)
	s.metrics.RecordOperation(op, time.Since(start), err)

	if err != nil {
		outcome := observability.Outcome(op, err)
		span.RecordError(err)
		span.SetAttributes(attribute.String("ledger.outcome", outcome))

		fields := []zap.Field{zap.String("operation", string(op)), zap.String("outcome", outcome), zap.Error(err)}
		if outcome == observability.OutcomeSoftFailure {
			s.logger.Info("operation refused", fields...)
		} else {
			s.logger.Warn("operation failed", fields...)
		}
	}
	return err
}

func (s *LedgerService) person(personID string) (*domain.Person, error) {
	p, err := s.people.Get(personID)
	if err != nil {
		return nil, fmt.Errorf("resolve person: %w", err)
	}
	return p, nil
}

// ownedAccount resolves number and hides accounts that belong to someone
// else behind the same not-found error.
func (s *LedgerService) ownedAccount(personID, number string) (*ledger.Account, error) {
	acct, err := s.bank.Account(number)
	if err != nil {
		return nil, err
	}
	if acct.Owner().ID() != personID {
		return nil, &domain.ErrNotFound{Resource: "account", ID: number}
	}
	return acct, nil
}

// claim reserves an idempotency key for op. An empty key is not tracked.
// The returned token must be passed to settle.
func (s *LedgerService) claim(op domain.Operation, personID, key string) (string, error) {
	if key == "" {
		return "", nil
	}
	scoped := fmt.Sprintf("%s:%s:%s", op, personID, key)
	if !s.idem.Claim(scoped) {
		s.metrics.IncrDuplicate(op)
		return "", &domain.ErrDuplicate{Key: key}
	}
	return scoped, nil
}

// settle releases a claimed key when the operation failed so the caller can
// retry with the same key.
func (s *LedgerService) settle(token string, err error) {
	if token != "" && err != nil {
		s.idem.Release(token)
	}
}
