package service

import (
	"context"
	"fmt"

	"github.com/boddenberg/retail-ledger-go/internal/domain"
	"github.com/boddenberg/retail-ledger-go/internal/infra/observability"
	"github.com/boddenberg/retail-ledger-go/internal/ledger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ============================================================
// Money movements and loans
// ============================================================

// bankMove applies a movement and returns the account balance it left.
type bankMove func(number, fingerprint string, amount decimal.Decimal) (decimal.Decimal, error)

// move runs one of the single-account movements under an idempotency key.
func (s *LedgerService) move(ctx context.Context, op domain.Operation, volume string, personID, number string, req *domain.AmountRequest, apply bankMove) (*domain.MovementResponse, error) {
	var resp *domain.MovementResponse
	err := s.run(ctx, op, func(ctx context.Context) (err error) {
		if _, err := s.ownedAccount(personID, number); err != nil {
			return err
		}
		token, err := s.claim(op, personID, req.IdempotencyKey)
		if err != nil {
			return err
		}
		defer func() { s.settle(token, err) }()

		balance, err := apply(number, req.Fingerprint, req.Amount)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		s.metrics.AddVolume(volume, req.Amount)

		resp = &domain.MovementResponse{
			Operation: op,
			Account:   number,
			Amount:    req.Amount,
			Balance:   balance,
			Timestamp: s.now(),
		}
		return nil
	})
	return resp, err
}

// Deposit credits one of the person's accounts.
func (s *LedgerService) Deposit(ctx context.Context, personID, number string, req *domain.AmountRequest) (*domain.MovementResponse, error) {
	return s.move(ctx, domain.OpDeposit, observability.VolumeDeposited, personID, number, req, s.bank.Deposit)
}

// Withdraw debits one of the person's accounts.
func (s *LedgerService) Withdraw(ctx context.Context, personID, number string, req *domain.AmountRequest) (*domain.MovementResponse, error) {
	return s.move(ctx, domain.OpWithdraw, observability.VolumeWithdrawn, personID, number, req, s.bank.Withdraw)
}

// TakeLoan lends against one of the person's accounts.
func (s *LedgerService) TakeLoan(ctx context.Context, personID, number string, req *domain.AmountRequest) (*domain.MovementResponse, error) {
	return s.move(ctx, domain.OpTakeLoan, observability.VolumeLoanIssued, personID, number, req, s.bank.TakeLoan)
}

// Transfer moves money from one of the person's accounts to any account of
// the bank.
func (s *LedgerService) Transfer(ctx context.Context, personID, number string, req *domain.TransferRequest) (*domain.MovementResponse, error) {
	var resp *domain.MovementResponse
	err := s.run(ctx, domain.OpTransfer, func(ctx context.Context) (err error) {
		if _, err := s.ownedAccount(personID, number); err != nil {
			return err
		}
		if req.Destination == "" {
			return &domain.ErrValidation{Field: "destination_account", Message: "destination is required"}
		}
		token, err := s.claim(domain.OpTransfer, personID, req.IdempotencyKey)
		if err != nil {
			return err
		}
		defer func() { s.settle(token, err) }()

		auth := ledger.TransferAuth{
			Fingerprint: req.Fingerprint,
			CVV2:        req.CVV2,
			Password:    req.Password,
			Expiry:      req.Expiry,
		}
		balance, err := s.bank.Transfer(number, req.Destination, auth, req.Amount)
		if err != nil {
			return fmt.Errorf("transfer: %w", err)
		}
		s.metrics.AddVolume(observability.VolumeTransfer, req.Amount)

		resp = &domain.MovementResponse{
			Operation: domain.OpTransfer,
			Account:   number,
			Amount:    req.Amount,
			Balance:   balance,
			Timestamp: s.now(),
		}
		return nil
	})
	return resp, err
}

// PayLoan repays the person's debt from one of their accounts.
func (s *LedgerService) PayLoan(ctx context.Context, personID, number string, req *domain.AmountRequest) (*domain.Repayment, error) {
	var rep domain.Repayment
	err := s.run(ctx, domain.OpPayLoan, func(ctx context.Context) (err error) {
		if _, err := s.ownedAccount(personID, number); err != nil {
			return err
		}
		token, err := s.claim(domain.OpPayLoan, personID, req.IdempotencyKey)
		if err != nil {
			return err
		}
		defer func() { s.settle(token, err) }()

		rep, err = s.bank.PayLoan(number, req.Fingerprint, req.Amount)
		if err != nil {
			return fmt.Errorf("pay loan: %w", err)
		}
		s.metrics.AddVolume(observability.VolumeLoanRepaid, req.Amount)
		if rep.Promoted {
			s.metrics.IncrRankPromotion()
			s.logger.Info("customer promoted",
				zap.String("person_id", personID),
				zap.Int("rank", rep.SocioeconomicRank),
			)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

// LoanStatus reports the person's loan position.
func (s *LedgerService) LoanStatus(ctx context.Context, personID string, req *domain.FingerprintRequest) (*domain.LoanStatus, error) {
	var status domain.LoanStatus
	err := s.run(ctx, domain.OpLoanStatus, func(ctx context.Context) error {
		p, err := s.person(personID)
		if err != nil {
			return err
		}
		status, err = s.bank.LoanStatus(p, req.Fingerprint)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &status, nil
}
