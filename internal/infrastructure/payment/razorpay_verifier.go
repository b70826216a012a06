package payment

import (
	"errors"

	"github.com/razorpay/razorpay-go/utils"

	"github.com/craftline/backend/internal/domain/payment"
)

// ErrInvalidWebhookSignature is returned when the X-Razorpay-Signature
// header does not match the HMAC of the raw request body.
var ErrInvalidWebhookSignature = errors.New("razorpay: invalid webhook signature")

// RazorpayWebhookVerifier implements the SignatureVerifier port. Verification
// runs over the raw body bytes exactly as received; any re-serialization of
// the JSON would change the digest.
type RazorpayWebhookVerifier struct {
	secret string
}

// NewRazorpayWebhookVerifier creates a verifier for the given webhook secret
func NewRazorpayWebhookVerifier(secret string) (*RazorpayWebhookVerifier, error) {
	if secret == "" {
		return nil, ErrRazorpayMissingWebhookSecret
	}
	return &RazorpayWebhookVerifier{secret: secret}, nil
}

// VerifyWebhookSignature checks the HMAC-SHA256 hex signature over the raw body
func (v *RazorpayWebhookVerifier) VerifyWebhookSignature(body []byte, signature string) error {
	if signature == "" {
		return ErrInvalidWebhookSignature
	}
	if !utils.VerifyWebhookSignature(string(body), signature, v.secret) {
		return ErrInvalidWebhookSignature
	}
	return nil
}

// Ensure the verifier implements the inbound port
var _ payment.SignatureVerifier = (*RazorpayWebhookVerifier)(nil)
