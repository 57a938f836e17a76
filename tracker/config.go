// Package tracker implements the funnel tracking core: visitor identity,
// funnel history and engagement scoring, event enrichment, and best-effort
// fan-out to analytics destinations. One Tracker instance owns one page
// session; the Manager keys instances by session.
package tracker

import "time"

// Config carries the deployment-specific tracking values. Ad destination ids
// and the conversion value are configuration, not literals, so they can be
// swapped per deployment.
type Config struct {
	// AdSendTo routes the per-event ad call emitted by the tag-manager
	// destination.
	AdSendTo string
	// AdConversionSendTo routes the dedicated checkout conversion call.
	AdConversionSendTo string
	// ConversionValue and Currency are used consistently across every
	// conversion-shaped emission.
	ConversionValue float64
	Currency        string
	// ProductID and ProductName fill the single line item of the commerce
	// begin_checkout call.
	ProductID   string
	ProductName string
	// CheckoutURL is the external payment page the offer CTA links to.
	CheckoutURL string
	// ProviderOrigin is the substring a message origin must contain to be
	// accepted as a checkout-provider notification.
	ProviderOrigin string
	// IdleTimeout is how long without activity before user_idle fires.
	IdleTimeout time.Duration
}

// DefaultConfig returns the production values.
func DefaultConfig() Config {
	return Config{
		AdSendTo:           "AW-17714282754",
		AdConversionSendTo: "AW-17714282754/GNrRCK7D58kbEIKC6v5B",
		ConversionValue:    49.90,
		Currency:           "BRL",
		ProductID:          "mamaezen_fundadora",
		ProductName:        "MamaeZen Fundadora",
		CheckoutURL:        "https://pay.cakto.com.br/c88zju2_683076",
		ProviderOrigin:     "cakto",
		IdleTimeout:        30 * time.Second,
	}
}
