// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the ledger and
// service layers from concrete implementations.
package port

import (
	"context"

	"github.com/boddenberg/retail-ledger-go/internal/domain"
)

// CredentialIssuer hands out the number, CVV2 and expiry of a new account.
// Numbers must be unlikely to collide within one bank; the bank still
// retries on collision.
type CredentialIssuer interface {
	IssueCardCredentials(ctx context.Context) (domain.CardCredentials, error)
}

// IdempotencyStore remembers operation keys for a bounded time.
type IdempotencyStore interface {
	// Claim records key and reports true if it was not already present.
	Claim(key string) bool
	// Release forgets key so a failed operation can be retried.
	Release(key string)
}

// PersonDirectory owns Person instances and resolves handles to them.
type PersonDirectory interface {
	Add(p *domain.Person) error
	Get(id string) (*domain.Person, error)
	List() []*domain.Person
}
