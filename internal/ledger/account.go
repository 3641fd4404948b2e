package ledger

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/boddenberg/retail-ledger-go/internal/domain"

	"github.com/shopspring/decimal"
)

// Account is a financial record owned by one Person and held at one Bank.
// Only the Bank constructs accounts and moves their balance.
type Account struct {
	owner     *domain.Person
	bankName  string
	number    string
	cvv2      string
	expiry    string
	createdAt time.Time

	mu       sync.RWMutex
	balance  decimal.Decimal
	active   bool
	password string
}

func newAccount(owner *domain.Person, bankName, password string, creds domain.CardCredentials, now time.Time) *Account {
	return &Account{
		owner:     owner,
		bankName:  bankName,
		number:    creds.Number,
		cvv2:      creds.CVV2,
		expiry:    creds.Expiry,
		createdAt: now,
		balance:   decimal.Zero,
		active:    true,
		password:  password,
	}
}

func (a *Account) Owner() *domain.Person { return a.owner }
func (a *Account) Number() string        { return a.number }
func (a *Account) BankName() string      { return a.bankName }
func (a *Account) CreatedAt() time.Time  { return a.createdAt }

func (a *Account) Balance() decimal.Decimal {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.balance
}

// Active reports the status flag. Accounts are marked closed when deleted.
func (a *Account) Active() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.active
}

func (a *Account) guard(fingerprint string) error {
	if !a.owner.CheckFingerprint(fingerprint) {
		return &domain.ErrUnauthorized{Message: "fingerprint verification failed"}
	}
	return nil
}

// CVV2 returns the card verification value to the owner.
func (a *Account) CVV2(fingerprint string) (string, error) {
	if err := a.guard(fingerprint); err != nil {
		return "", err
	}
	return a.cvv2, nil
}

// Password returns the account password to the owner.
func (a *Account) Password(fingerprint string) (string, error) {
	if err := a.guard(fingerprint); err != nil {
		return "", err
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.password, nil
}

// Expiry returns the "YY-MM" expiry to the owner.
func (a *Account) Expiry(fingerprint string) (string, error) {
	if err := a.guard(fingerprint); err != nil {
		return "", err
	}
	return a.expiry, nil
}

// Secrets returns CVV2, password and expiry in one guarded call.
func (a *Account) Secrets(fingerprint string) (domain.AccountSecrets, error) {
	if err := a.guard(fingerprint); err != nil {
		return domain.AccountSecrets{}, err
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	return domain.AccountSecrets{CVV2: a.cvv2, Password: a.password, Expiry: a.expiry}, nil
}

// SetPassword replaces the password. It fails with the same unauthorized
// error as the guarded getters.
func (a *Account) SetPassword(newPassword, fingerprint string) error {
	if err := a.guard(fingerprint); err != nil {
		return err
	}
	if err := checkPassword("new_password", newPassword); err != nil {
		return err
	}
	a.mu.Lock()
	a.password = newPassword
	a.mu.Unlock()
	return nil
}

func checkPassword(field, password string) error {
	if password == "" {
		return &domain.ErrValidation{Field: field, Message: "must not be empty"}
	}
	return nil
}

// Info returns the public view of the account.
func (a *Account) Info() domain.AccountInfo {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return domain.AccountInfo{
		Number:    a.number,
		OwnerID:   a.owner.ID(),
		OwnerName: a.owner.Name(),
		BankName:  a.bankName,
		Balance:   a.balance,
		Active:    a.active,
		CreatedAt: a.createdAt,
	}
}

// credit and debit return the resulting balance.
func (a *Account) credit(amount decimal.Decimal) decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.balance = a.balance.Add(amount)
	return a.balance
}

func (a *Account) debit(amount decimal.Decimal) decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.balance = a.balance.Sub(amount)
	return a.balance
}

func (a *Account) close() {
	a.mu.Lock()
	a.active = false
	a.mu.Unlock()
}

// CompareAccounts orders accounts by account number.
func CompareAccounts(a, b *Account) int {
	return strings.Compare(a.number, b.number)
}

// SortAccounts sorts in place by account number.
func SortAccounts(accounts []*Account) {
	sort.Slice(accounts, func(i, j int) bool {
		return CompareAccounts(accounts[i], accounts[j]) < 0
	})
}
