package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================
// Read views (public fields only)
// ============================================================

// PersonInfo is the public view of a Person.
type PersonInfo struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Age               uint   `json:"age"`
	Gender            Gender `json:"gender"`
	SocioeconomicRank int    `json:"socioeconomic_rank"`
	Alive             bool   `json:"alive"`
}

// AccountInfo is the public view of an account. Secrets are never included.
type AccountInfo struct {
	Number    string          `json:"account_number"`
	OwnerID   string          `json:"owner_id"`
	OwnerName string          `json:"owner_name"`
	BankName  string          `json:"bank_name"`
	Balance   decimal.Decimal `json:"balance"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"created_at"`
}

// AccountSecrets is returned only after a fingerprint check.
type AccountSecrets struct {
	CVV2     string `json:"cvv2"`
	Password string `json:"password"`
	Expiry   string `json:"expiry"`
}

// LoanStatus summarises a customer's loan position.
type LoanStatus struct {
	PersonID          string          `json:"person_id"`
	Unpaid            decimal.Decimal `json:"unpaid"`
	PaidToDate        decimal.Decimal `json:"paid_to_date"`
	SocioeconomicRank int             `json:"socioeconomic_rank"`
	InterestRate      decimal.Decimal `json:"interest_rate_percent"`
	NextPromotionAt   decimal.Decimal `json:"next_promotion_at"`
}

// Repayment is the outcome of a loan payment.
type Repayment struct {
	Amount            decimal.Decimal `json:"amount"`
	Unpaid            decimal.Decimal `json:"unpaid"`
	PaidToDate        decimal.Decimal `json:"paid_to_date"`
	SocioeconomicRank int             `json:"socioeconomic_rank"`
	Promoted          bool            `json:"promoted"`
}

// BankReport is the operator view of the bank, gated by the bank fingerprint.
type BankReport struct {
	Name             string                     `json:"name"`
	TotalBalance     decimal.Decimal            `json:"total_balance"`
	TotalLoan        decimal.Decimal            `json:"total_loan"`
	Customers        []PersonInfo               `json:"customers"`
	Accounts         []AccountInfo              `json:"accounts"`
	AccountOwners    map[string]string          `json:"account_owners"`
	CustomerAccounts map[string][]string        `json:"customer_accounts"`
	UnpaidLoans      map[string]decimal.Decimal `json:"unpaid_loans"`
	PaidLoans        map[string]decimal.Decimal `json:"paid_loans"`
	GeneratedAt      time.Time                  `json:"generated_at"`
}

// ============================================================
// Requests
// ============================================================

// RegisterPersonRequest is the body of POST /v1/persons.
type RegisterPersonRequest struct {
	Name              string `json:"name"`
	Age               uint   `json:"age"`
	Gender            string `json:"gender"`
	Fingerprint       string `json:"fingerprint"`
	SocioeconomicRank int    `json:"socioeconomic_rank"`
	Alive             *bool  `json:"alive,omitempty"`
}

// RegisterPersonResponse carries the new handle and a session token.
type RegisterPersonResponse struct {
	Person      PersonInfo `json:"person"`
	AccessToken string     `json:"access_token"`
	ExpiresIn   int        `json:"expires_in"`
}

// UpdatePersonRequest is the body of PATCH /v1/persons/{personId}.
// Nil fields are left untouched.
type UpdatePersonRequest struct {
	Age               *uint `json:"age,omitempty"`
	Alive             *bool `json:"alive,omitempty"`
	SocioeconomicRank *int  `json:"socioeconomic_rank,omitempty"`
}

// SessionRequest is the body of POST /v1/persons/{personId}/sessions.
type SessionRequest struct {
	Fingerprint string `json:"fingerprint"`
}

// SessionResponse carries a signed access token.
type SessionResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	PersonID    string `json:"person_id"`
}

// OpenAccountRequest is the body of POST /v1/persons/{personId}/accounts.
type OpenAccountRequest struct {
	Fingerprint string `json:"fingerprint"`
	Password    string `json:"password"`
}

// FingerprintRequest carries only the claimed fingerprint.
type FingerprintRequest struct {
	Fingerprint string `json:"fingerprint"`
}

// ChangePasswordRequest is the body of PUT .../accounts/{number}/password.
type ChangePasswordRequest struct {
	Fingerprint string `json:"fingerprint"`
	NewPassword string `json:"new_password"`
}

// AmountRequest is the body of deposit, withdraw, loan and repayment calls.
type AmountRequest struct {
	Fingerprint    string          `json:"fingerprint"`
	Amount         decimal.Decimal `json:"amount"`
	IdempotencyKey string          `json:"idempotency_key,omitempty"`
}

// TransferRequest is the body of POST .../accounts/{number}/transfer.
type TransferRequest struct {
	Destination    string          `json:"destination_account"`
	Fingerprint    string          `json:"fingerprint"`
	CVV2           string          `json:"cvv2"`
	Password       string          `json:"password"`
	Expiry         string          `json:"expiry"`
	Amount         decimal.Decimal `json:"amount"`
	IdempotencyKey string          `json:"idempotency_key,omitempty"`
}

// MovementResponse is returned by money-moving endpoints.
type MovementResponse struct {
	Operation Operation       `json:"operation"`
	Account   string          `json:"account_number"`
	Amount    decimal.Decimal `json:"amount"`
	Balance   decimal.Decimal `json:"balance"`
	Timestamp time.Time       `json:"timestamp"`
}
