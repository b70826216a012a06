package payment

import "errors"

// RazorpayConfig contains credentials for the Razorpay API
type RazorpayConfig struct {
	// KeyID is the public API key (rzp_test_... or rzp_live_...)
	KeyID string
	// KeySecret is the API secret used for authenticated calls
	KeySecret string
	// WebhookSecret signs webhook payloads. It is configured separately in
	// the Razorpay dashboard and is not the API secret.
	WebhookSecret string
}

// Errors for configuration validation
var (
	ErrRazorpayMissingKeyID         = errors.New("razorpay: missing key id")
	ErrRazorpayMissingKeySecret     = errors.New("razorpay: missing key secret")
	ErrRazorpayMissingWebhookSecret = errors.New("razorpay: missing webhook secret")
)

// Validate validates the configuration
func (c *RazorpayConfig) Validate() error {
	if c.KeyID == "" {
		return ErrRazorpayMissingKeyID
	}
	if c.KeySecret == "" {
		return ErrRazorpayMissingKeySecret
	}
	if c.WebhookSecret == "" {
		return ErrRazorpayMissingWebhookSecret
	}
	return nil
}
