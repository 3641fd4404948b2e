// Package ledger implements the bank: account lifecycle, money movements and
// the loan / socioeconomic-rank state machine. Every operation is atomic under
// a single mutex; the package does no I/O apart from credential issuance.
package ledger

import (
	"sync"
	"time"

	"github.com/boddenberg/retail-ledger-go/internal/domain"
	"github.com/boddenberg/retail-ledger-go/internal/port"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Bank owns every Account it issues and holds non-owning references to
// their owners. Persons are keyed by ID, accounts by account number.
type Bank struct {
	name        string
	fingerprint domain.Digest
	issuer      port.CredentialIssuer
	logger      *zap.Logger
	now         func() time.Time

	mu            sync.Mutex
	totalBalance  decimal.Decimal
	totalLoan     decimal.Decimal
	accounts      []*Account
	customers     []*domain.Person
	accountOwner  map[string]*domain.Person
	ownerAccounts map[string][]*Account
	unpaidLoan    map[string]decimal.Decimal
	paidLoan      map[string]decimal.Decimal
}

// NewBank creates an empty bank. The fingerprint is digested and discarded.
func NewBank(name, fingerprint string, issuer port.CredentialIssuer, logger *zap.Logger) *Bank {
	if issuer == nil {
		issuer = RandomIssuer{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bank{
		name:          name,
		fingerprint:   domain.NewDigest(fingerprint),
		issuer:        issuer,
		logger:        logger.With(zap.String("bank", name)),
		now:           time.Now,
		totalBalance:  decimal.Zero,
		totalLoan:     decimal.Zero,
		accountOwner:  make(map[string]*domain.Person),
		ownerAccounts: make(map[string][]*Account),
		unpaidLoan:    make(map[string]decimal.Decimal),
		paidLoan:      make(map[string]decimal.Decimal),
	}
}

// Name returns the bank name.
func (b *Bank) Name() string { return b.name }

// Account resolves an account number. Only public account fields are
// reachable without a fingerprint.
func (b *Bank) Account(number string) (*Account, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lookup(number)
}

// AccountsOf returns the owner's accounts in opening order. Only public
// account fields are reachable through them.
func (b *Bank) AccountsOf(ownerID string) []*Account {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*Account(nil), b.ownerAccounts[ownerID]...)
}

// lookup must be called with b.mu held.
func (b *Bank) lookup(number string) (*Account, error) {
	owner, ok := b.accountOwner[number]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "account", ID: number}
	}
	for _, a := range b.ownerAccounts[owner.ID()] {
		if a.number == number {
			return a, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "account", ID: number}
}

func (b *Bank) checkOwner(owner *domain.Person, fingerprint string) error {
	if owner.CheckFingerprint(fingerprint) {
		return nil
	}
	b.logger.Warn("fingerprint mismatch", zap.String("person_id", owner.ID()))
	return &domain.ErrUnauthorized{Message: "fingerprint verification failed"}
}

// VerifyOperator checks the bank's own fingerprint. Operator views kept
// outside the bank, such as the person registry, are gated with it.
func (b *Bank) VerifyOperator(fingerprint string) error {
	return b.checkBank(fingerprint)
}

func (b *Bank) checkBank(fingerprint string) error {
	if b.fingerprint.Matches(fingerprint) {
		return nil
	}
	b.logger.Warn("bank fingerprint mismatch")
	return &domain.ErrUnauthorized{Message: "bank fingerprint verification failed"}
}

func requirePositive(field string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return &domain.ErrValidation{Field: field, Message: "must be greater than zero"}
	}
	return nil
}
