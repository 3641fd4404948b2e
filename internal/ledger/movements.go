package ledger

import (
	"github.com/boddenberg/retail-ledger-go/internal/domain"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Deposit credits the account and returns its new balance. The bank
// aggregates only follow withdrawals and loans, so a deposit leaves them
// untouched.
func (b *Bank) Deposit(number, fingerprint string, amount decimal.Decimal) (decimal.Decimal, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	acct, err := b.lookup(number)
	if err != nil {
		return decimal.Zero, err
	}
	if err := b.checkOwner(acct.owner, fingerprint); err != nil {
		return decimal.Zero, err
	}
	if err := requirePositive("amount", amount); err != nil {
		return decimal.Zero, err
	}

	return acct.credit(amount), nil
}

// Withdraw debits the account and the bank total balance, and returns the
// new account balance. No partial withdrawal: the amount must not exceed the
// balance.
func (b *Bank) Withdraw(number, fingerprint string, amount decimal.Decimal) (decimal.Decimal, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	acct, err := b.lookup(number)
	if err != nil {
		return decimal.Zero, err
	}
	if err := b.checkOwner(acct.owner, fingerprint); err != nil {
		return decimal.Zero, err
	}
	if err := requirePositive("amount", amount); err != nil {
		return decimal.Zero, err
	}
	if balance := acct.Balance(); amount.GreaterThan(balance) {
		return decimal.Zero, &domain.ErrInsufficientFunds{Available: balance, Required: amount}
	}

	balance := acct.debit(amount)
	b.totalBalance = b.totalBalance.Sub(amount)
	return balance, nil
}

// TransferAuth carries the factors checked before a transfer.
type TransferAuth struct {
	Fingerprint string
	CVV2        string
	Password    string
	Expiry      string
}

// Transfer moves amount from source to destination inside this bank. The
// factors are checked in order (fingerprint, CVV2, password, expiry, funds);
// any failure, including a fingerprint mismatch, is reported as
// *domain.ErrTransferRejected and changes nothing. The source balance after
// the debit is returned.
func (b *Bank) Transfer(source, destination string, auth TransferAuth, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.IsNegative() {
		return decimal.Zero, &domain.ErrValidation{Field: "amount", Message: "must not be negative"}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	src, err := b.lookup(source)
	if err != nil {
		return decimal.Zero, err
	}
	dst, err := b.lookup(destination)
	if err != nil {
		return decimal.Zero, err
	}

	if reason := transferGuard(src, auth, amount); reason != "" {
		b.logger.Warn("transfer rejected",
			zap.String("source", source),
			zap.String("reason", reason),
		)
		return decimal.Zero, &domain.ErrTransferRejected{Reason: reason}
	}

	balance := src.debit(amount)
	dst.credit(amount)
	return balance, nil
}

// transferGuard returns the first failing factor, or "" when all pass.
func transferGuard(src *Account, auth TransferAuth, amount decimal.Decimal) string {
	if !src.owner.CheckFingerprint(auth.Fingerprint) {
		return "fingerprint"
	}
	secrets, err := src.Secrets(auth.Fingerprint)
	if err != nil {
		return "fingerprint"
	}
	switch {
	case secrets.CVV2 != auth.CVV2:
		return "cvv2"
	case secrets.Password != auth.Password:
		return "password"
	case secrets.Expiry != auth.Expiry:
		return "expiry"
	case src.Balance().LessThan(amount):
		return "funds"
	}
	return ""
}
