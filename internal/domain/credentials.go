package domain

import "regexp"

// CardCredentials are the secrets issued for a new account.
type CardCredentials struct {
	Number string `json:"account_number"`
	CVV2   string `json:"cvv2"`
	Expiry string `json:"expiry"`
}

var (
	accountNumberRe = regexp.MustCompile(`^[0-9]{16}$`)
	cvv2Re          = regexp.MustCompile(`^[0-9]{4}$`)
	expiryRe        = regexp.MustCompile(`^[0-9]{2}-(0[1-9]|1[0-2])$`)
)

// Validate checks the formats: 16-digit number, 4-digit CVV2, "YY-MM" expiry.
func (c CardCredentials) Validate() error {
	if !accountNumberRe.MatchString(c.Number) {
		return &ErrValidation{Field: "account_number", Message: "must be 16 digits"}
	}
	if !cvv2Re.MatchString(c.CVV2) {
		return &ErrValidation{Field: "cvv2", Message: "must be 4 digits"}
	}
	if !expiryRe.MatchString(c.Expiry) {
		return &ErrValidation{Field: "expiry", Message: "must be YY-MM"}
	}
	return nil
}
