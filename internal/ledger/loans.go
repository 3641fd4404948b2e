package ledger

import (
	"github.com/boddenberg/retail-ledger-go/internal/domain"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	loanToBalanceRatio = decimal.NewFromFloat(0.6)
	baseInterestRate   = decimal.NewFromInt(10)
)

// InterestRate returns the loan rate in percent for rank: 10 / rank. It is
// informational; debts are computed with WithInterest.
func InterestRate(rank int) decimal.Decimal {
	return baseInterestRate.Div(decimal.NewFromInt(int64(rank)))
}

// WithInterest returns amount × (1 + (10/rank)/100), evaluated as
// amount × (100·rank + 10) / (100·rank) so a single division is performed.
func WithInterest(amount decimal.Decimal, rank int) decimal.Decimal {
	denominator := int64(100 * rank)
	return amount.Mul(decimal.NewFromInt(denominator + 10)).Div(decimal.NewFromInt(denominator))
}

// PromotionThreshold returns the cumulative repayment needed to leave rank:
// 10^rank.
func PromotionThreshold(rank int) decimal.Decimal {
	return decimal.New(1, int32(rank))
}

// TakeLoan lends amount against the account. Eligibility is 60% of the
// balance. Only the principal is credited; principal plus interest is
// recorded as debt on the owner and on the bank total loan. The balance after
// the credit is returned.
func (b *Bank) TakeLoan(number, fingerprint string, amount decimal.Decimal) (decimal.Decimal, error) {
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

	available := acct.Balance().Mul(loanToBalanceRatio)
	if amount.GreaterThan(available) {
		return decimal.Zero, &domain.ErrPrecondition{Message: "insufficient eligibility for loan"}
	}

	rank := acct.owner.SocioeconomicRank()
	withInterest := WithInterest(amount, rank)

	id := acct.owner.ID()
	balance := acct.credit(amount)
	b.unpaidLoan[id] = b.unpaidLoan[id].Add(withInterest)
	b.totalLoan = b.totalLoan.Add(withInterest)

	b.logger.Info("loan issued",
		zap.String("person_id", id),
		zap.String("account_number", number),
		zap.String("principal", amount.String()),
		zap.String("debt", withInterest.String()),
		zap.Int("rank", rank),
	)
	return balance, nil
}

// PayLoan repays amount of the owner's debt from the account. When the
// cumulative repayment reaches 10^rank (rank read before this payment) the
// owner is promoted by exactly one rank, capped at MaxRank.
func (b *Bank) PayLoan(number, fingerprint string, amount decimal.Decimal) (domain.Repayment, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	acct, err := b.lookup(number)
	if err != nil {
		return domain.Repayment{}, err
	}
	if err := b.checkOwner(acct.owner, fingerprint); err != nil {
		return domain.Repayment{}, err
	}
	if err := requirePositive("amount", amount); err != nil {
		return domain.Repayment{}, err
	}

	owner := acct.owner
	id := owner.ID()
	if b.unpaidLoan[id].LessThan(amount) {
		return domain.Repayment{}, &domain.ErrPrecondition{Message: "repayment exceeds unpaid loan"}
	}
	if balance := acct.Balance(); balance.LessThan(amount) {
		return domain.Repayment{}, &domain.ErrInsufficientFunds{Available: balance, Required: amount}
	}

	acct.debit(amount)
	b.unpaidLoan[id] = b.unpaidLoan[id].Sub(amount)
	b.paidLoan[id] = b.paidLoan[id].Add(amount)
	b.totalLoan = b.totalLoan.Sub(amount)

	rank := owner.SocioeconomicRank()
	promoted := false
	if b.paidLoan[id].GreaterThanOrEqual(PromotionThreshold(rank)) && rank < domain.MaxRank {
		if err := owner.SetSocioeconomicRank(rank + 1); err == nil {
			promoted = true
			rank++
			b.logger.Info("socioeconomic rank promoted",
				zap.String("person_id", id),
				zap.Int("rank", rank),
			)
		}
	}

	return domain.Repayment{
		Amount:            amount,
		Unpaid:            b.unpaidLoan[id],
		PaidToDate:        b.paidLoan[id],
		SocioeconomicRank: rank,
		Promoted:          promoted,
	}, nil
}

// LoanStatus reports the owner's debt, repayments and next promotion mark.
func (b *Bank) LoanStatus(owner *domain.Person, fingerprint string) (domain.LoanStatus, error) {
	if err := b.checkOwner(owner, fingerprint); err != nil {
		return domain.LoanStatus{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	rank := owner.SocioeconomicRank()
	return domain.LoanStatus{
		PersonID:          owner.ID(),
		Unpaid:            b.unpaidLoan[owner.ID()],
		PaidToDate:        b.paidLoan[owner.ID()],
		SocioeconomicRank: rank,
		InterestRate:      InterestRate(rank),
		NextPromotionAt:   PromotionThreshold(rank),
	}, nil
}
