package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRazorpayConfig_Validate(t *testing.T) {
	t.Run("valid config passes", func(t *testing.T) {
		cfg := &RazorpayConfig{
			KeyID:         "rzp_test_abc",
			KeySecret:     "secret",
			WebhookSecret: "whsec",
		}
		assert.NoError(t, cfg.Validate())
	})

	t.Run("missing key id", func(t *testing.T) {
		cfg := &RazorpayConfig{KeySecret: "secret", WebhookSecret: "whsec"}
		assert.ErrorIs(t, cfg.Validate(), ErrRazorpayMissingKeyID)
	})

	t.Run("missing key secret", func(t *testing.T) {
		cfg := &RazorpayConfig{KeyID: "rzp_test_abc", WebhookSecret: "whsec"}
		assert.ErrorIs(t, cfg.Validate(), ErrRazorpayMissingKeySecret)
	})

	t.Run("missing webhook secret", func(t *testing.T) {
		cfg := &RazorpayConfig{KeyID: "rzp_test_abc", KeySecret: "secret"}
		assert.ErrorIs(t, cfg.Validate(), ErrRazorpayMissingWebhookSecret)
	})
}

func TestNewRazorpayAdapter(t *testing.T) {
	t.Run("rejects invalid config", func(t *testing.T) {
		_, err := NewRazorpayAdapter(&RazorpayConfig{})
		assert.Error(t, err)
	})

	t.Run("builds client from valid config", func(t *testing.T) {
		adapter, err := NewRazorpayAdapter(&RazorpayConfig{
			KeyID:         "rzp_test_abc",
			KeySecret:     "secret",
			WebhookSecret: "whsec",
		})
		require.NoError(t, err)
		assert.NotNil(t, adapter.client)
	})
}

func TestPaiseConversion(t *testing.T) {
	t.Run("whole rupees", func(t *testing.T) {
		assert.Equal(t, int64(35000), toPaise(decimal.NewFromInt(350)))
	})

	t.Run("fractional rupees", func(t *testing.T) {
		assert.Equal(t, int64(12999), toPaise(decimal.RequireFromString("129.99")))
	})

	t.Run("sub-paise fractions round half even", func(t *testing.T) {
		assert.Equal(t, int64(10), toPaise(decimal.RequireFromString("0.105")))
		assert.Equal(t, int64(12), toPaise(decimal.RequireFromString("0.115")))
	})

	t.Run("round trips", func(t *testing.T) {
		amount := decimal.RequireFromString("499.50")
		assert.True(t, amount.Equal(fromPaise(toPaise(amount))))
	})
}

func TestRazorpayWebhookVerifier(t *testing.T) {
	const secret = "whsec_test_secret"

	sign := func(body []byte) string {
		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write(body)
		return hex.EncodeToString(mac.Sum(nil))
	}

	t.Run("requires a secret", func(t *testing.T) {
		_, err := NewRazorpayWebhookVerifier("")
		assert.ErrorIs(t, err, ErrRazorpayMissingWebhookSecret)
	})

	t.Run("accepts a valid signature", func(t *testing.T) {
		verifier, err := NewRazorpayWebhookVerifier(secret)
		require.NoError(t, err)

		body := []byte(`{"event":"payment.captured","payload":{}}`)
		assert.NoError(t, verifier.VerifyWebhookSignature(body, sign(body)))
	})

	t.Run("rejects a tampered body", func(t *testing.T) {
		verifier, err := NewRazorpayWebhookVerifier(secret)
		require.NoError(t, err)

		body := []byte(`{"event":"payment.captured","payload":{}}`)
		signature := sign(body)
		tampered := []byte(`{"event":"payment.captured","payload":{"x":1}}`)

		assert.ErrorIs(t, verifier.VerifyWebhookSignature(tampered, signature), ErrInvalidWebhookSignature)
	})

	t.Run("rejects an empty signature", func(t *testing.T) {
		verifier, err := NewRazorpayWebhookVerifier(secret)
		require.NoError(t, err)

		assert.ErrorIs(t, verifier.VerifyWebhookSignature([]byte(`{}`), ""), ErrInvalidWebhookSignature)
	})

	t.Run("rejects a signature made with another secret", func(t *testing.T) {
		verifier, err := NewRazorpayWebhookVerifier(secret)
		require.NoError(t, err)

		other := hmac.New(sha256.New, []byte("another-secret"))
		body := []byte(`{"event":"refund.processed"}`)
		other.Write(body)

		assert.Error(t, verifier.VerifyWebhookSignature(body, hex.EncodeToString(other.Sum(nil))))
	})
}
