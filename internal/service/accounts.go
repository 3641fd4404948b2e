package service

import (
	"context"
	"fmt"

	"github.com/boddenberg/retail-ledger-go/internal/domain"
	"github.com/boddenberg/retail-ledger-go/internal/ledger"
)

// ============================================================
// Accounts
// ============================================================

// OpenAccount opens a new account for the person.
func (s *LedgerService) OpenAccount(ctx context.Context, personID string, req *domain.OpenAccountRequest) (*domain.AccountInfo, error) {
	var info domain.AccountInfo
	err := s.run(ctx, domain.OpCreateAccount, func(ctx context.Context) error {
		p, err := s.person(personID)
		if err != nil {
			return err
		}
		acct, err := s.bank.CreateAccount(ctx, p, req.Fingerprint, req.Password)
		if err != nil {
			return fmt.Errorf("create account: %w", err)
		}
		info = acct.Info()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// CloseAccount deletes one of the person's accounts.
func (s *LedgerService) CloseAccount(ctx context.Context, personID, number string, req *domain.FingerprintRequest) error {
	return s.run(ctx, domain.OpDeleteAccount, func(ctx context.Context) error {
		if _, err := s.ownedAccount(personID, number); err != nil {
			return err
		}
		if err := s.bank.DeleteAccount(number, req.Fingerprint); err != nil {
			return fmt.Errorf("delete account: %w", err)
		}
		return nil
	})
}

// CloseCustomer deletes every account of the person. The person record
// stays registered.
func (s *LedgerService) CloseCustomer(ctx context.Context, personID string, req *domain.FingerprintRequest) error {
	return s.run(ctx, domain.OpDeleteCustomer, func(ctx context.Context) error {
		p, err := s.person(personID)
		if err != nil {
			return err
		}
		if err := s.bank.DeleteCustomer(p, req.Fingerprint); err != nil {
			return fmt.Errorf("delete customer: %w", err)
		}
		return nil
	})
}

// ListAccounts returns the person's accounts, sorted by account number.
func (s *LedgerService) ListAccounts(ctx context.Context, personID string) ([]domain.AccountInfo, error) {
	_, span := ledgerTracer.Start(ctx, "LedgerService.ListAccounts")
	defer span.End()

	if _, err := s.person(personID); err != nil {
		return nil, err
	}
	accounts := s.bank.AccountsOf(personID)
	ledger.SortAccounts(accounts)

	out := make([]domain.AccountInfo, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, a.Info())
	}
	return out, nil
}

// GetAccount returns the public view of one of the person's accounts.
func (s *LedgerService) GetAccount(ctx context.Context, personID, number string) (*domain.AccountInfo, error) {
	_, span := ledgerTracer.Start(ctx, "LedgerService.GetAccount")
	defer span.End()

	acct, err := s.ownedAccount(personID, number)
	if err != nil {
		return nil, err
	}
	info := acct.Info()
	return &info, nil
}

// RevealSecrets returns CVV2, password and expiry after a fingerprint check.
func (s *LedgerService) RevealSecrets(ctx context.Context, personID, number string, req *domain.FingerprintRequest) (*domain.AccountSecrets, error) {
	var secrets domain.AccountSecrets
	err := s.run(ctx, domain.OpRevealSecrets, func(ctx context.Context) error {
		acct, err := s.ownedAccount(personID, number)
		if err != nil {
			return err
		}
		secrets, err = acct.Secrets(req.Fingerprint)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &secrets, nil
}

// ChangePassword replaces the account password.
func (s *LedgerService) ChangePassword(ctx context.Context, personID, number string, req *domain.ChangePasswordRequest) error {
	return s.run(ctx, domain.OpChangePassword, func(ctx context.Context) error {
		acct, err := s.ownedAccount(personID, number)
		if err != nil {
			return err
		}
		return acct.SetPassword(req.NewPassword, req.Fingerprint)
	})
}
