package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/boddenberg/retail-ledger-go/internal/domain"
	"github.com/boddenberg/retail-ledger-go/internal/infra/cache"
	"github.com/boddenberg/retail-ledger-go/internal/infra/observability"
	"github.com/boddenberg/retail-ledger-go/internal/ledger"
	"github.com/boddenberg/retail-ledger-go/internal/registry"
	"github.com/boddenberg/retail-ledger-go/internal/service"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const bankFP = "bank-fp"

// --- Mocks ---

type mockIssuer struct {
	mu   sync.Mutex
	next int
}

func (m *mockIssuer) IssueCardCredentials(context.Context) (domain.CardCredentials, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	return domain.CardCredentials{Number: fmt.Sprintf("%016d", m.next), CVV2: "2222", Expiry: "27-03"}, nil
}

// --- Helpers ---

type fixture struct {
	svc     *service.LedgerService
	metrics *observability.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	idem := cache.NewIdempotency(time.Minute)
	t.Cleanup(idem.Close)

	metrics := observability.NewMetrics()
	bank := ledger.NewBank("B", bankFP, &mockIssuer{}, zap.NewNop())
	svc := service.NewLedgerService(
		bank,
		registry.NewPeople(),
		idem,
		service.SessionConfig{Secret: "test-secret", TTL: time.Minute},
		metrics,
		zap.NewNop(),
	)
	return &fixture{svc: svc, metrics: metrics}
}

func (f *fixture) register(t *testing.T, name, fp string, rank int) *domain.RegisterPersonResponse {
	t.Helper()
	resp, err := f.svc.RegisterPerson(context.Background(), &domain.RegisterPersonRequest{
		Name: name, Age: 30, Gender: "Female", Fingerprint: fp, SocioeconomicRank: rank,
	})
	if err != nil {
		t.Fatalf("RegisterPerson: %v", err)
	}
	return resp
}

func (f *fixture) open(t *testing.T, personID, fp string) *domain.AccountInfo {
	t.Helper()
	acct, err := f.svc.OpenAccount(context.Background(), personID, &domain.OpenAccountRequest{Fingerprint: fp, Password: "pw"})
	if err != nil {
		t.Fatalf("OpenAccount: %v", err)
	}
	return acct
}

func amount(fp string, v int64, key string) *domain.AmountRequest {
	return &domain.AmountRequest{Fingerprint: fp, Amount: decimal.NewFromInt(v), IdempotencyKey: key}
}

// --- Tests ---

func TestRegisterPerson(t *testing.T) {
	f := newFixture(t)
	resp := f.register(t, "Alice", "afp", 4)

	if resp.Person.ID == "" || resp.Person.Name != "Alice" || !resp.Person.Alive {
		t.Errorf("unexpected person: %+v", resp.Person)
	}
	if resp.AccessToken == "" || resp.ExpiresIn != 60 {
		t.Errorf("unexpected token response: %+v", resp)
	}

	claims, err := f.svc.ValidateSessionToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("ValidateSessionToken: %v", err)
	}
	if claims.Subject != resp.Person.ID {
		t.Errorf("subject = %s, want %s", claims.Subject, resp.Person.ID)
	}
}

func TestRegisterPerson_Validation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		req  domain.RegisterPersonRequest
	}{
		{"missing name", domain.RegisterPersonRequest{Gender: "Male", Fingerprint: "x", SocioeconomicRank: 1}},
		{"missing fingerprint", domain.RegisterPersonRequest{Name: "A", Gender: "Male", SocioeconomicRank: 1}},
		{"bad gender", domain.RegisterPersonRequest{Name: "A", Gender: "other", Fingerprint: "x", SocioeconomicRank: 1}},
		{"rank out of range", domain.RegisterPersonRequest{Name: "A", Gender: "Male", Fingerprint: "x", SocioeconomicRank: 11}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			if _, err := f.svc.RegisterPerson(context.Background(), &req); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestStartSession(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "Alice", "afp", 4)

	if _, err := f.svc.StartSession(context.Background(), alice.Person.ID, &domain.SessionRequest{Fingerprint: "nope"}); err == nil {
		t.Fatal("expected unauthorized")
	}
	resp, err := f.svc.StartSession(context.Background(), alice.Person.ID, &domain.SessionRequest{Fingerprint: "afp"})
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if resp.PersonID != alice.Person.ID || resp.AccessToken == "" {
		t.Errorf("unexpected session: %+v", resp)
	}
}

func TestValidateSessionToken_Rejects(t *testing.T) {
	f := newFixture(t)
	other := service.NewLedgerService(
		ledger.NewBank("B", bankFP, &mockIssuer{}, zap.NewNop()),
		registry.NewPeople(),
		cache.NewIdempotency(time.Minute),
		service.SessionConfig{Secret: "other-secret", TTL: time.Minute},
		observability.NewMetrics(),
		zap.NewNop(),
	)
	foreign, err := other.RegisterPerson(context.Background(), &domain.RegisterPersonRequest{
		Name: "Eve", Gender: "Female", Fingerprint: "e", SocioeconomicRank: 1,
	})
	if err != nil {
		t.Fatal(err)
	}

	var unauthorized *domain.ErrUnauthorized
	for _, token := range []string{"", "garbage", foreign.AccessToken} {
		if _, err := f.svc.ValidateSessionToken(token); !errors.As(err, &unauthorized) {
			t.Errorf("token %q: expected ErrUnauthorized, got %v", token, err)
		}
	}
}

func TestUpdatePerson_InvalidRankChangesNothing(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "Alice", "afp", 4)

	age := uint(50)
	rank := 0
	_, err := f.svc.UpdatePerson(context.Background(), alice.Person.ID, &domain.UpdatePersonRequest{Age: &age, SocioeconomicRank: &rank})
	var outOfRange *domain.ErrOutOfRange
	if !errors.As(err, &outOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}

	info, _ := f.svc.GetPerson(context.Background(), alice.Person.ID)
	if info.Age != 30 || info.SocioeconomicRank != 4 {
		t.Errorf("person changed: %+v", info)
	}

	rank = 6
	alive := false
	info, err = f.svc.UpdatePerson(context.Background(), alice.Person.ID, &domain.UpdatePersonRequest{Age: &age, SocioeconomicRank: &rank, Alive: &alive})
	if err != nil {
		t.Fatal(err)
	}
	if info.Age != 50 || info.SocioeconomicRank != 6 || info.Alive {
		t.Errorf("update not applied: %+v", info)
	}
}

func TestAccountsAreScopedToOwner(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "Alice", "afp", 5)
	bob := f.register(t, "Bob", "bfp", 5)
	acct := f.open(t, alice.Person.ID, "afp")

	var notFound *domain.ErrNotFound
	if _, err := f.svc.GetAccount(context.Background(), bob.Person.ID, acct.Number); !errors.As(err, &notFound) {
		t.Errorf("expected ErrNotFound for foreign account, got %v", err)
	}
	if _, err := f.svc.Deposit(context.Background(), bob.Person.ID, acct.Number, amount("bfp", 10, "")); !errors.As(err, &notFound) {
		t.Errorf("expected ErrNotFound for foreign deposit, got %v", err)
	}

	list, err := f.svc.ListAccounts(context.Background(), alice.Person.ID)
	if err != nil || len(list) != 1 || list[0].Number != acct.Number {
		t.Errorf("ListAccounts = %v, %v", list, err)
	}
}

func TestDepositWithdrawFlow(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "Alice", "afp", 5)
	acct := f.open(t, alice.Person.ID, "afp")
	ctx := context.Background()

	resp, err := f.svc.Deposit(ctx, alice.Person.ID, acct.Number, amount("afp", 100, ""))
	if err != nil {
		t.Fatal(err)
	}
	if !resp.Balance.Equal(decimal.NewFromInt(100)) || resp.Operation != domain.OpDeposit {
		t.Errorf("unexpected deposit response: %+v", resp)
	}

	_, err = f.svc.Withdraw(ctx, alice.Person.ID, acct.Number, amount("afp", 150, ""))
	var insufficient *domain.ErrInsufficientFunds
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	resp, err = f.svc.Withdraw(ctx, alice.Person.ID, acct.Number, amount("afp", 50, ""))
	if err != nil {
		t.Fatal(err)
	}
	if !resp.Balance.Equal(decimal.NewFromInt(50)) {
		t.Errorf("balance = %s", resp.Balance)
	}

	report, err := f.svc.BankReport(ctx, bankFP)
	if err != nil {
		t.Fatal(err)
	}
	if !report.TotalBalance.Equal(decimal.NewFromInt(-50)) {
		t.Errorf("total balance = %s, want -50", report.TotalBalance)
	}

	snap := f.metrics.GetLedgerSnapshot()
	if snap.DepositedVolume != 100 || snap.WithdrawnVolume != 50 {
		t.Errorf("volumes = %v / %v", snap.DepositedVolume, snap.WithdrawnVolume)
	}
	if snap.HardFailureRate == 0 {
		t.Error("overdraw should be recorded as a hard failure")
	}
}

func TestIdempotencyKey(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "Alice", "afp", 5)
	acct := f.open(t, alice.Person.ID, "afp")
	ctx := context.Background()

	if _, err := f.svc.Deposit(ctx, alice.Person.ID, acct.Number, amount("afp", 10, "k1")); err != nil {
		t.Fatal(err)
	}
	_, err := f.svc.Deposit(ctx, alice.Person.ID, acct.Number, amount("afp", 10, "k1"))
	var dup *domain.ErrDuplicate
	if !errors.As(err, &dup) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	info, _ := f.svc.GetAccount(ctx, alice.Person.ID, acct.Number)
	if !info.Balance.Equal(decimal.NewFromInt(10)) {
		t.Errorf("duplicate was applied: balance %s", info.Balance)
	}
	if f.metrics.GetLedgerSnapshot().DuplicateBlocked != 1 {
		t.Error("duplicate not counted")
	}

	// A failed attempt frees its key.
	if _, err := f.svc.Withdraw(ctx, alice.Person.ID, acct.Number, amount("afp", 500, "k2")); err == nil {
		t.Fatal("expected overdraw failure")
	}
	if _, err := f.svc.Withdraw(ctx, alice.Person.ID, acct.Number, amount("afp", 5, "k2")); err != nil {
		t.Errorf("key should be reusable after failure: %v", err)
	}
}

func TestTransfer(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "Alice", "afp", 5)
	bob := f.register(t, "Bob", "bfp", 5)
	src := f.open(t, alice.Person.ID, "afp")
	dst := f.open(t, bob.Person.ID, "bfp")
	ctx := context.Background()

	if _, err := f.svc.Deposit(ctx, alice.Person.ID, src.Number, amount("afp", 100, "")); err != nil {
		t.Fatal(err)
	}
	secrets, err := f.svc.RevealSecrets(ctx, alice.Person.ID, src.Number, &domain.FingerprintRequest{Fingerprint: "afp"})
	if err != nil {
		t.Fatal(err)
	}

	req := &domain.TransferRequest{
		Destination: dst.Number,
		Fingerprint: "afp",
		CVV2:        secrets.CVV2,
		Password:    secrets.Password,
		Expiry:      secrets.Expiry,
		Amount:      decimal.NewFromInt(30),
	}
	resp, err := f.svc.Transfer(ctx, alice.Person.ID, src.Number, req)
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if !resp.Balance.Equal(decimal.NewFromInt(70)) {
		t.Errorf("source balance = %s", resp.Balance)
	}

	req.Password = "wrong"
	_, err = f.svc.Transfer(ctx, alice.Person.ID, src.Number, req)
	var rejected *domain.ErrTransferRejected
	if !errors.As(err, &rejected) {
		t.Fatalf("expected ErrTransferRejected, got %v", err)
	}
	if f.metrics.GetLedgerSnapshot().SoftFailureRate == 0 {
		t.Error("rejected transfer should be a soft failure")
	}
}

func TestLoanLifecycle(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "Alice", "afp", 1)
	acct := f.open(t, alice.Person.ID, "afp")
	ctx := context.Background()
	id := alice.Person.ID

	if _, err := f.svc.Deposit(ctx, id, acct.Number, amount("afp", 100, "")); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.TakeLoan(ctx, id, acct.Number, amount("afp", 10, "")); err != nil {
		t.Fatal(err)
	}

	if err := f.svc.CloseAccount(ctx, id, acct.Number, &domain.FingerprintRequest{Fingerprint: "afp"}); err == nil {
		t.Fatal("expected unpaid-loan guard")
	}

	rep, err := f.svc.PayLoan(ctx, id, acct.Number, amount("afp", 11, ""))
	if err != nil {
		t.Fatal(err)
	}
	if !rep.Promoted || rep.SocioeconomicRank != 2 || !rep.Unpaid.IsZero() {
		t.Errorf("unexpected repayment: %+v", rep)
	}
	if f.metrics.GetLedgerSnapshot().RankPromotions != 1 {
		t.Error("promotion not counted")
	}

	status, err := f.svc.LoanStatus(ctx, id, &domain.FingerprintRequest{Fingerprint: "afp"})
	if err != nil {
		t.Fatal(err)
	}
	if status.SocioeconomicRank != 2 || !status.PaidToDate.Equal(decimal.NewFromInt(11)) {
		t.Errorf("unexpected status: %+v", status)
	}

	if err := f.svc.CloseAccount(ctx, id, acct.Number, &domain.FingerprintRequest{Fingerprint: "afp"}); err != nil {
		t.Fatalf("CloseAccount: %v", err)
	}
	list, _ := f.svc.ListAccounts(ctx, id)
	if len(list) != 0 {
		t.Errorf("expected no accounts, got %d", len(list))
	}
}

func TestCloseCustomerAndChangePassword(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "Alice", "afp", 5)
	acct := f.open(t, alice.Person.ID, "afp")
	f.open(t, alice.Person.ID, "afp")
	ctx := context.Background()

	if err := f.svc.ChangePassword(ctx, alice.Person.ID, acct.Number, &domain.ChangePasswordRequest{Fingerprint: "afp", NewPassword: "new"}); err != nil {
		t.Fatal(err)
	}
	secrets, _ := f.svc.RevealSecrets(ctx, alice.Person.ID, acct.Number, &domain.FingerprintRequest{Fingerprint: "afp"})
	if secrets.Password != "new" {
		t.Errorf("password = %q", secrets.Password)
	}

	if err := f.svc.CloseCustomer(ctx, alice.Person.ID, &domain.FingerprintRequest{Fingerprint: "afp"}); err != nil {
		t.Fatal(err)
	}
	list, _ := f.svc.ListAccounts(ctx, alice.Person.ID)
	if len(list) != 0 {
		t.Errorf("expected no accounts after CloseCustomer, got %d", len(list))
	}
	if _, err := f.svc.GetPerson(ctx, alice.Person.ID); err != nil {
		t.Errorf("person should remain registered: %v", err)
	}
}

func TestBankReport_RequiresBankFingerprint(t *testing.T) {
	f := newFixture(t)
	var unauthorized *domain.ErrUnauthorized
	if _, err := f.svc.BankReport(context.Background(), "guess"); !errors.As(err, &unauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthorizeSession(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "Alice", "afp", 4)
	bob := f.register(t, "Bob", "bfp", 4)

	claims, err := f.svc.AuthorizeSession(alice.AccessToken, alice.Person.ID)
	if err != nil {
		t.Fatalf("own session: %v", err)
	}
	if claims.Subject != alice.Person.ID {
		t.Errorf("subject = %s, want %s", claims.Subject, alice.Person.ID)
	}

	var forbidden *domain.ErrForbidden
	if _, err := f.svc.AuthorizeSession(bob.AccessToken, alice.Person.ID); !errors.As(err, &forbidden) {
		t.Errorf("foreign session: expected ErrForbidden, got %v", err)
	}

	var unauthorized *domain.ErrUnauthorized
	if _, err := f.svc.AuthorizeSession("garbage", alice.Person.ID); !errors.As(err, &unauthorized) {
		t.Errorf("bad token: expected ErrUnauthorized, got %v", err)
	}
}

func TestListPersons_SortedByNameAndGated(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{"Carol", "Alice", "Bob"} {
		f.register(t, name, name+"-fp", 2)
	}

	var unauthorized *domain.ErrUnauthorized
	if _, err := f.svc.ListPersons(context.Background(), "wrong"); !errors.As(err, &unauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	persons, err := f.svc.ListPersons(context.Background(), bankFP)
	if err != nil {
		t.Fatalf("ListPersons: %v", err)
	}
	want := []string{"Alice", "Bob", "Carol"}
	if len(persons) != len(want) {
		t.Fatalf("expected %d persons, got %d", len(want), len(persons))
	}
	for i, p := range persons {
		if p.Name != want[i] {
			t.Errorf("position %d: got %s, want %s", i, p.Name, want[i])
		}
	}
}
