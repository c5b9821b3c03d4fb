package config

import "strings"

// PaymentsConfig holds the payment processor's browser-side key and price display settings.
type PaymentsConfig struct {
	// StripePublishableKey is embedded in the checkout page for Stripe.js.
	StripePublishableKey string `env:"STRIPE_PUBLISHABLE_KEY" envDefault:""`
	// Currency is the ISO 4217 code prices are shown in.
	Currency string `env:"STOREFRONT_CURRENCY" envDefault:"USD"`
	// Locale is the BCP 47 tag used for number formatting.
	Locale string `env:"STOREFRONT_LOCALE" envDefault:"en-US"`
}

// Sanitize trims the key and normalises the display settings.
func (p *PaymentsConfig) Sanitize() {
	p.StripePublishableKey = strings.TrimSpace(p.StripePublishableKey)
	if p.Currency = strings.ToUpper(strings.TrimSpace(p.Currency)); p.Currency == "" {
		p.Currency = "USD"
	}
	if p.Locale = strings.TrimSpace(p.Locale); p.Locale == "" {
		p.Locale = "en-US"
	}
}

// CheckoutEnabled reports whether the checkout page can load Stripe.js.
func (p *PaymentsConfig) CheckoutEnabled() bool {
	return p.StripePublishableKey != ""
}
