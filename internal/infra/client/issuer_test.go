package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/boddenberg/retail-ledger-go/internal/domain"
	"github.com/boddenberg/retail-ledger-go/internal/infra/client"
	"github.com/boddenberg/retail-ledger-go/internal/infra/resilience"

	"go.uber.org/zap"
)

var validCreds = domain.CardCredentials{Number: "4000123412341234", CVV2: "4321", Expiry: "28-04"}

func newClient(url string) *client.CardIssuerClient {
	cfg := resilience.Config{MaxRetries: 2, InitialBackoff: time.Millisecond, MaxConcurrency: 4}
	cb := resilience.NewCircuitBreaker("issuer-test", resilience.BreakerSettings{}, zap.NewNop())
	return client.NewCardIssuerClient(&http.Client{Timeout: time.Second}, url, "B", cb, cfg)
}

func TestCardIssuerClient_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/cards/credentials" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["bank"] != "B" {
			t.Errorf("bank = %q", body["bank"])
		}
		_ = json.NewEncoder(w).Encode(validCreds)
	}))
	defer srv.Close()

	creds, err := newClient(srv.URL).IssueCardCredentials(context.Background())
	if err != nil {
		t.Fatalf("IssueCardCredentials: %v", err)
	}
	if creds != validCreds {
		t.Errorf("got %+v", creds)
	}
}

func TestCardIssuerClient_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(validCreds)
	}))
	defer srv.Close()

	if _, err := newClient(srv.URL).IssueCardCredentials(context.Background()); err != nil {
		t.Fatalf("expected success after retries: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestCardIssuerClient_InvalidCredentialsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_ = json.NewEncoder(w).Encode(domain.CardCredentials{Number: "123", CVV2: "1", Expiry: "x"})
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).IssueCardCredentials(context.Background())
	var ext *domain.ErrExternalService
	if !errors.As(err, &ext) {
		t.Fatalf("expected ErrExternalService, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected a single call, got %d", calls)
	}
}

type stubIssuer struct {
	creds domain.CardCredentials
	err   error
	calls int
}

func (s *stubIssuer) IssueCardCredentials(context.Context) (domain.CardCredentials, error) {
	s.calls++
	return s.creds, s.err
}

type recorder struct{ external, fallbacks int }

func (r *recorder) IncrExternalError(string) { r.external++ }
func (r *recorder) IncrIssuerFallback()      { r.fallbacks++ }

func TestFallbackIssuer(t *testing.T) {
	local := domain.CardCredentials{Number: "1111222233334444", CVV2: "1000", Expiry: "30-01"}

	t.Run("primary ok", func(t *testing.T) {
		primary := &stubIssuer{creds: validCreds}
		fallback := &stubIssuer{creds: local}
		rec := &recorder{}

		creds, err := client.NewFallbackIssuer(primary, fallback, rec, zap.NewNop()).IssueCardCredentials(context.Background())
		if err != nil || creds != validCreds || fallback.calls != 0 || rec.fallbacks != 0 {
			t.Errorf("unexpected: creds=%+v err=%v fallback=%d", creds, err, fallback.calls)
		}
	})

	t.Run("primary down", func(t *testing.T) {
		primary := &stubIssuer{err: errors.New("down")}
		fallback := &stubIssuer{creds: local}
		rec := &recorder{}

		creds, err := client.NewFallbackIssuer(primary, fallback, rec, zap.NewNop()).IssueCardCredentials(context.Background())
		if err != nil || creds != local {
			t.Fatalf("expected local credentials, got %+v, %v", creds, err)
		}
		if rec.external != 1 || rec.fallbacks != 1 {
			t.Errorf("recorder = %+v", rec)
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		primary := &stubIssuer{err: context.Canceled}
		fallback := &stubIssuer{creds: local}

		_, err := client.NewFallbackIssuer(primary, fallback, nil, zap.NewNop()).IssueCardCredentials(ctx)
		if !errors.Is(err, context.Canceled) || fallback.calls != 0 {
			t.Errorf("expected cancellation without fallback, got %v (fallback calls %d)", err, fallback.calls)
		}
	})
}
