// Package client holds HTTP clients for services the ledger depends on.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/boddenberg/retail-ledger-go/internal/domain"
	"github.com/boddenberg/retail-ledger-go/internal/infra/resilience"
	"github.com/boddenberg/retail-ledger-go/internal/port"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("client")

const issuerService = "card-issuer"

type issueRequest struct {
	Bank string `json:"bank"`
}

// CardIssuerClient requests account credentials from a remote card issuer
// (POST {base}/v1/cards/credentials).
type CardIssuerClient struct {
	httpClient *http.Client
	baseURL    string
	bankName   string
	cb         *gobreaker.CircuitBreaker
	bulkhead   *resilience.Bulkhead
	cfg        resilience.Config
}

// NewCardIssuerClient creates a new CardIssuerClient.
func NewCardIssuerClient(httpClient *http.Client, baseURL, bankName string, cb *gobreaker.CircuitBreaker, cfg resilience.Config) *CardIssuerClient {
	return &CardIssuerClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		bankName:   bankName,
		cb:         cb,
		bulkhead:   resilience.NewBulkhead(cfg.MaxConcurrency),
		cfg:        cfg,
	}
}

// IssueCardCredentials calls the issuer with bulkhead, circuit breaker,
// retry and tracing. Malformed credentials are not retried.
func (c *CardIssuerClient) IssueCardCredentials(ctx context.Context) (domain.CardCredentials, error) {
	ctx, span := tracer.Start(ctx, "CardIssuerClient.IssueCardCredentials")
	defer span.End()
	span.SetAttributes(attribute.String("bank.name", c.bankName))

	var creds domain.CardCredentials

	err := c.bulkhead.Do(ctx, func() error {
		_, err := c.cb.Execute(func() (any, error) {
			return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
				return c.issueOnce(ctx, &creds)
			})
		})
		return err
	})
	if err != nil {
		span.RecordError(err)
		return domain.CardCredentials{}, &domain.ErrExternalService{Service: issuerService, Err: err}
	}
	return creds, nil
}

func (c *CardIssuerClient) issueOnce(ctx context.Context, out *domain.CardCredentials) error {
	body, err := json.Marshal(issueRequest{Bank: c.bankName})
	if err != nil {
		return resilience.Permanent(err)
	}

	url := fmt.Sprintf("%s/v1/cards/credentials", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return resilience.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("card issuer returned status %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated:
		return resilience.Permanent(fmt.Errorf("card issuer returned status %d", resp.StatusCode))
	}

	var creds domain.CardCredentials
	if err := json.NewDecoder(resp.Body).Decode(&creds); err != nil {
		return resilience.Permanent(fmt.Errorf("decode credentials: %w", err))
	}
	if err := creds.Validate(); err != nil {
		return resilience.Permanent(err)
	}
	*out = creds
	return nil
}

// FallbackRecorder receives fallback events.
type FallbackRecorder interface {
	IncrExternalError(service string)
	IncrIssuerFallback()
}

// FallbackIssuer tries primary and, when it fails, serves the request from
// fallback. Context cancellation is returned as is.
type FallbackIssuer struct {
	primary  port.CredentialIssuer
	fallback port.CredentialIssuer
	recorder FallbackRecorder
	logger   *zap.Logger
}

// NewFallbackIssuer creates a FallbackIssuer. recorder may be nil.
func NewFallbackIssuer(primary, fallback port.CredentialIssuer, recorder FallbackRecorder, logger *zap.Logger) *FallbackIssuer {
	return &FallbackIssuer{primary: primary, fallback: fallback, recorder: recorder, logger: logger}
}

func (f *FallbackIssuer) IssueCardCredentials(ctx context.Context) (domain.CardCredentials, error) {
	creds, err := f.primary.IssueCardCredentials(ctx)
	if err == nil {
		return creds, nil
	}
	if ctx.Err() != nil {
		return domain.CardCredentials{}, ctx.Err()
	}

	f.logger.Warn("card issuer unavailable, generating credentials locally", zap.Error(err))
	if f.recorder != nil {
		f.recorder.IncrExternalError(issuerService)
		f.recorder.IncrIssuerFallback()
	}
	return f.fallback.IssueCardCredentials(ctx)
}
