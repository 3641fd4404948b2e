package ledger

import (
	"github.com/boddenberg/retail-ledger-go/internal/domain"

	"github.com/shopspring/decimal"
)

// ============================================================
// Operator getters, gated by the bank's own fingerprint.
// All collections are returned as copies.
// ============================================================

// Customers returns the distinct owners with at least one account, in the
// order they became customers.
func (b *Bank) Customers(bankFingerprint string) ([]*domain.Person, error) {
	if err := b.checkBank(bankFingerprint); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*domain.Person(nil), b.customers...), nil
}

// Accounts returns every live account in opening order.
func (b *Bank) Accounts(bankFingerprint string) ([]*Account, error) {
	if err := b.checkBank(bankFingerprint); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*Account(nil), b.accounts...), nil
}

// TotalBalance returns the aggregate balance driven by withdrawals.
func (b *Bank) TotalBalance(bankFingerprint string) (decimal.Decimal, error) {
	if err := b.checkBank(bankFingerprint); err != nil {
		return decimal.Zero, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.totalBalance, nil
}

// TotalLoan returns the aggregate outstanding loan, interest included.
func (b *Bank) TotalLoan(bankFingerprint string) (decimal.Decimal, error) {
	if err := b.checkBank(bankFingerprint); err != nil {
		return decimal.Zero, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.totalLoan, nil
}

// AccountOwners maps account number to owner ID.
func (b *Bank) AccountOwners(bankFingerprint string) (map[string]string, error) {
	if err := b.checkBank(bankFingerprint); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]string, len(b.accountOwner))
	for number, owner := range b.accountOwner {
		out[number] = owner.ID()
	}
	return out, nil
}

// CustomerAccounts maps owner ID to account numbers in opening order.
func (b *Bank) CustomerAccounts(bankFingerprint string) (map[string][]string, error) {
	if err := b.checkBank(bankFingerprint); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.customerAccountsLocked(), nil
}

func (b *Bank) customerAccountsLocked() map[string][]string {
	out := make(map[string][]string, len(b.ownerAccounts))
	for id, accounts := range b.ownerAccounts {
		numbers := make([]string, 0, len(accounts))
		for _, a := range accounts {
			numbers = append(numbers, a.number)
		}
		out[id] = numbers
	}
	return out
}

// UnpaidLoans maps owner ID to outstanding debt.
func (b *Bank) UnpaidLoans(bankFingerprint string) (map[string]decimal.Decimal, error) {
	if err := b.checkBank(bankFingerprint); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return copyAmounts(b.unpaidLoan), nil
}

// PaidLoans maps owner ID to cumulative repayments.
func (b *Bank) PaidLoans(bankFingerprint string) (map[string]decimal.Decimal, error) {
	if err := b.checkBank(bankFingerprint); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return copyAmounts(b.paidLoan), nil
}

// Report assembles every operator view from one consistent snapshot.
func (b *Bank) Report(bankFingerprint string) (domain.BankReport, error) {
	if err := b.checkBank(bankFingerprint); err != nil {
		return domain.BankReport{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	report := domain.BankReport{
		Name:             b.name,
		TotalBalance:     b.totalBalance,
		TotalLoan:        b.totalLoan,
		Customers:        make([]domain.PersonInfo, 0, len(b.customers)),
		Accounts:         make([]domain.AccountInfo, 0, len(b.accounts)),
		AccountOwners:    make(map[string]string, len(b.accountOwner)),
		CustomerAccounts: b.customerAccountsLocked(),
		UnpaidLoans:      copyAmounts(b.unpaidLoan),
		PaidLoans:        copyAmounts(b.paidLoan),
		GeneratedAt:      b.now(),
	}
	for _, c := range b.customers {
		report.Customers = append(report.Customers, c.Info())
	}
	for _, a := range b.accounts {
		report.Accounts = append(report.Accounts, a.Info())
	}
	for number, owner := range b.accountOwner {
		report.AccountOwners[number] = owner.ID()
	}
	return report, nil
}

func copyAmounts(in map[string]decimal.Decimal) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
