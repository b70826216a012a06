package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

// GatewayOrder is a collection order registered with the payment provider
type GatewayOrder struct {
	ID       string
	Amount   decimal.Decimal
	Currency string
	Receipt  string
}

// GatewayRefund is a refund executed by the payment provider
type GatewayRefund struct {
	ID        string
	PaymentID string
	Amount    decimal.Decimal
	Status    string
}

// GatewayClient is the outbound port to the payment provider. The webhook
// path never calls it; it serves checkout (order registration) and
// merchant-initiated refunds.
type GatewayClient interface {
	// CreateOrder registers a collection order with the provider and returns
	// the gateway order id the storefront checkout needs
	CreateOrder(ctx context.Context, amount decimal.Decimal, currency, receipt string) (*GatewayOrder, error)

	// CreateRefund asks the provider to refund part or all of a captured payment
	CreateRefund(ctx context.Context, gatewayPaymentID string, amount decimal.Decimal) (*GatewayRefund, error)
}

// SignatureVerifier validates webhook authenticity. Implementations must use
// a constant-time comparison.
type SignatureVerifier interface {
	// VerifyWebhookSignature checks the HMAC-SHA256 hex signature over the raw body
	VerifyWebhookSignature(body []byte, signature string) error
}
