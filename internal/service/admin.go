package service

import (
	"context"
	"time"

	"github.com/boddenberg/retail-ledger-go/internal/domain"
)

// BankReport returns the operator view of the bank.
func (s *LedgerService) BankReport(ctx context.Context, bankFingerprint string) (*domain.BankReport, error) {
	var report domain.BankReport
	err := s.run(ctx, domain.OpBankReport, func(ctx context.Context) error {
		var err error
		report, err = s.bank.Report(bankFingerprint)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// ListPersons returns every registered person sorted by name, including
// persons without accounts. Gated by the bank fingerprint.
func (s *LedgerService) ListPersons(ctx context.Context, bankFingerprint string) ([]domain.PersonInfo, error) {
	var out []domain.PersonInfo
	err := s.run(ctx, domain.OpListPersons, func(ctx context.Context) error {
		if err := s.bank.VerifyOperator(bankFingerprint); err != nil {
			return err
		}
		persons := s.people.List()
		out = make([]domain.PersonInfo, 0, len(persons))
		for _, p := range persons {
			out = append(out, p.Info())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Health reports the state of the ledger for /healthz.
func (s *LedgerService) Health(ctx context.Context) *domain.HealthStatus {
	_, span := ledgerTracer.Start(ctx, "LedgerService.Health")
	defer span.End()

	now := s.now().UTC().Format(time.RFC3339)
	return &domain.HealthStatus{
		Status: "healthy",
		Bank:   s.bank.Name(),
		Services: []domain.ServiceHealth{
			{Name: "ledger", Status: "up", LastChecked: now},
			{Name: "person_registry", Status: "up", LastChecked: now},
		},
	}
}
