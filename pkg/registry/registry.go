// Package registry resolves a company tax identifier to public registry
// data, cascading through alternate providers when one is unavailable.
package registry

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/credit-cli/internal/resilience"
)

// Company holds the registry attributes of a resolved company.
type Company struct {
	TaxID            string
	CorporateName    string
	TradeName        string
	LegalNature      string
	MainActivity     string
	RegistrationDate *time.Time
	Capital          *float64
	LegalStatus      string
	SpecialStatus    string
	Street           string
	Number           string
	Neighborhood     string
	City             string
	State            string
	ZipCode          string
}

// Provider is a single registry backend.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, taxID string) (*Company, error)
}

// Client resolves tax identifiers against an ordered provider chain.
type Client interface {
	Lookup(ctx context.Context, taxID string) (*Company, error)
}

type chainClient struct {
	providers []Provider
	retry     resilience.RetryConfig
}

// Option customizes a Client.
type Option func(*chainClient)

// WithLookupRetries retries each provider's transient failures up to n extra
// times before falling through to the next provider.
func WithLookupRetries(n int) Option {
	return func(c *chainClient) {
		if n > 0 {
			c.retry.MaxAttempts = n + 1
		}
	}
}

// NewClient creates a Client that tries providers in order and returns the
// first successful result. A nil company with nil error means every provider
// failed or had no record.
func NewClient(providers []Provider, opts ...Option) Client {
	c := &chainClient{
		providers: providers,
		retry:     resilience.RetryConfig{MaxAttempts: 1},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *chainClient) Lookup(ctx context.Context, taxID string) (*Company, error) {
	taxID = digitsOnly(taxID)

	for _, p := range c.providers {
		cfg := c.retry
		cfg.OnRetry = resilience.RetryLogger("registry", p.Name())
		company, err := resilience.DoVal(ctx, cfg, func(ctx context.Context) (*Company, error) {
			return p.Fetch(ctx, taxID)
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			zap.L().Warn("registry: provider failed, trying next",
				zap.String("provider", p.Name()),
				zap.String("tax_id", taxID),
				zap.Error(err),
			)
			continue
		}
		if company != nil {
			zap.L().Info("registry: company resolved",
				zap.String("provider", p.Name()),
				zap.String("tax_id", taxID),
			)
			return company, nil
		}
	}

	zap.L().Warn("registry: all providers exhausted", zap.String("tax_id", taxID))
	return nil, nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
