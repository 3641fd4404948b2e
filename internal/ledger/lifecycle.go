package ledger

import (
	"context"
	"fmt"

	"github.com/boddenberg/retail-ledger-go/internal/domain"

	"go.uber.org/zap"
)

// maxIssueAttempts bounds the retries on account-number collision.
const maxIssueAttempts = 5

// CreateAccount opens an account for owner after a fingerprint check. The
// password follows the same rule as SetPassword. The owner joins the
// customer list on their first account.
func (b *Bank) CreateAccount(ctx context.Context, owner *domain.Person, fingerprint, password string) (*Account, error) {
	if err := b.checkOwner(owner, fingerprint); err != nil {
		return nil, err
	}
	if err := checkPassword("password", password); err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxIssueAttempts; attempt++ {
		creds, err := b.issuer.IssueCardCredentials(ctx)
		if err != nil {
			return nil, fmt.Errorf("issue card credentials: %w", err)
		}
		if err := creds.Validate(); err != nil {
			return nil, fmt.Errorf("issued credentials: %w", err)
		}

		b.mu.Lock()
		if _, taken := b.accountOwner[creds.Number]; taken {
			b.mu.Unlock()
			b.logger.Debug("account number collision, reissuing", zap.Int("attempt", attempt+1))
			continue
		}
		acct := newAccount(owner, b.name, password, creds, b.now())
		b.register(acct)
		b.mu.Unlock()

		b.logger.Info("account created",
			zap.String("person_id", owner.ID()),
			zap.String("account_number", acct.number),
		)
		return acct, nil
	}
	return nil, fmt.Errorf("no unique account number after %d attempts", maxIssueAttempts)
}

// register must be called with b.mu held.
func (b *Bank) register(acct *Account) {
	id := acct.owner.ID()
	b.accounts = append(b.accounts, acct)
	b.accountOwner[acct.number] = acct.owner
	if _, known := b.ownerAccounts[id]; !known {
		b.customers = append(b.customers, acct.owner)
	}
	b.ownerAccounts[id] = append(b.ownerAccounts[id], acct)
}

// DeleteAccount closes an account. The owner must have no unpaid loan.
func (b *Bank) DeleteAccount(number, fingerprint string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	acct, err := b.lookup(number)
	if err != nil {
		return err
	}
	if err := b.checkOwner(acct.owner, fingerprint); err != nil {
		return err
	}
	if err := b.checkNoDebt(acct.owner); err != nil {
		return err
	}

	b.unregister(acct)
	b.logger.Info("account deleted",
		zap.String("person_id", acct.owner.ID()),
		zap.String("account_number", number),
	)
	return nil
}

// DeleteCustomer closes every account of owner. The loan guard is checked
// before anything is removed, so the call is all-or-nothing.
func (b *Bank) DeleteCustomer(owner *domain.Person, fingerprint string) error {
	if err := b.checkOwner(owner, fingerprint); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	accounts := append([]*Account(nil), b.ownerAccounts[owner.ID()]...)
	if len(accounts) > 0 {
		if err := b.checkNoDebt(owner); err != nil {
			return err
		}
	}
	for _, acct := range accounts {
		b.unregister(acct)
	}
	delete(b.ownerAccounts, owner.ID())

	b.logger.Info("customer deleted",
		zap.String("person_id", owner.ID()),
		zap.Int("accounts_closed", len(accounts)),
	)
	return nil
}

// checkNoDebt must be called with b.mu held.
func (b *Bank) checkNoDebt(owner *domain.Person) error {
	if unpaid, ok := b.unpaidLoan[owner.ID()]; ok && unpaid.IsPositive() {
		return &domain.ErrPrecondition{Message: "cannot delete account with unpaid loan"}
	}
	return nil
}

// unregister removes acct from every index and marks it closed. Must be
// called with b.mu held.
func (b *Bank) unregister(acct *Account) {
	id := acct.owner.ID()
	delete(b.accountOwner, acct.number)
	b.ownerAccounts[id] = without(b.ownerAccounts[id], acct)
	b.accounts = without(b.accounts, acct)
	acct.close()

	if len(b.ownerAccounts[id]) == 0 {
		delete(b.ownerAccounts, id)
		for i, c := range b.customers {
			if c == acct.owner {
				b.customers = append(b.customers[:i:i], b.customers[i+1:]...)
				break
			}
		}
	}
}

func without(accounts []*Account, target *Account) []*Account {
	out := accounts[:0:0]
	for _, a := range accounts {
		if a != target {
			out = append(out, a)
		}
	}
	return out
}
