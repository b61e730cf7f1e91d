// Package billing integrates the Stripe payment provider.
package billing

import (
	"fmt"
	"strings"

	"github.com/shopfront/backend/internal/infrastructure/config"
)

// StripeConfig holds configuration for Stripe integration
type StripeConfig struct {
	// SecretKey is the Stripe secret API key (sk_test_xxx or sk_live_xxx)
	SecretKey string
	// WebhookSecret verifies webhook signatures (whsec_xxx)
	WebhookSecret string
	// DefaultCurrency is used when a request names none
	DefaultCurrency string
}

// StripeConfigFrom maps the payment section of the app configuration
func StripeConfigFrom(cfg config.PaymentConfig) *StripeConfig {
	return &StripeConfig{
		SecretKey:       cfg.SecretKey,
		WebhookSecret:   cfg.WebhookSecret,
		DefaultCurrency: cfg.DefaultCurrency,
	}
}

// Validate validates the Stripe configuration
func (c *StripeConfig) Validate() error {
	if c.SecretKey == "" {
		return fmt.Errorf("stripe: secret key is required")
	}
	if !strings.HasPrefix(c.SecretKey, "sk_") && !strings.HasPrefix(c.SecretKey, "rk_") {
		return fmt.Errorf("stripe: secret key must start with sk_ or rk_")
	}
	if c.WebhookSecret == "" {
		return fmt.Errorf("stripe: webhook secret is required")
	}
	if c.DefaultCurrency == "" {
		c.DefaultCurrency = "usd"
	}
	return nil
}

// IsTestMode reports whether the key is a test key
func (c *StripeConfig) IsTestMode() bool {
	return strings.Contains(c.SecretKey, "_test_")
}
