package payment

import (
	"context"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
	"github.com/shopspring/decimal"

	"github.com/craftline/backend/internal/domain/payment"
)

// RazorpayAdapter implements the GatewayClient port against the Razorpay
// Orders and Refunds APIs. Razorpay expresses all amounts in paise, so
// rupee decimals are converted at this boundary and nowhere else.
type RazorpayAdapter struct {
	config *RazorpayConfig
	client *razorpay.Client
}

// NewRazorpayAdapter creates a new Razorpay adapter
func NewRazorpayAdapter(config *RazorpayConfig) (*RazorpayAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &RazorpayAdapter{
		config: config,
		client: razorpay.NewClient(config.KeyID, config.KeySecret),
	}, nil
}

// CreateOrder registers a collection order with Razorpay. The returned
// gateway order id is what the storefront checkout widget needs.
func (a *RazorpayAdapter) CreateOrder(ctx context.Context, amount decimal.Decimal, currency, receipt string) (*payment.GatewayOrder, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("razorpay: order amount must be positive, got %s", amount)
	}

	data := map[string]interface{}{
		"amount":   toPaise(amount),
		"currency": currency,
		"receipt":  receipt,
	}

	resp, err := a.client.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay: create order: %w", err)
	}

	orderID, ok := resp["id"].(string)
	if !ok || orderID == "" {
		return nil, fmt.Errorf("razorpay: create order response missing id")
	}

	return &payment.GatewayOrder{
		ID:       orderID,
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
	}, nil
}

// CreateRefund asks Razorpay to refund part or all of a captured payment
func (a *RazorpayAdapter) CreateRefund(ctx context.Context, gatewayPaymentID string, amount decimal.Decimal) (*payment.GatewayRefund, error) {
	if gatewayPaymentID == "" {
		return nil, fmt.Errorf("razorpay: refund requires a gateway payment id")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("razorpay: refund amount must be positive, got %s", amount)
	}

	resp, err := a.client.Payment.Refund(gatewayPaymentID, int(toPaise(amount)), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay: create refund: %w", err)
	}

	refundID, ok := resp["id"].(string)
	if !ok || refundID == "" {
		return nil, fmt.Errorf("razorpay: refund response missing id")
	}

	status, _ := resp["status"].(string)

	return &payment.GatewayRefund{
		ID:        refundID,
		PaymentID: gatewayPaymentID,
		Amount:    amount,
		Status:    status,
	}, nil
}

// toPaise converts a rupee amount to the integer paise Razorpay expects.
// Half-even rounding keeps repeated conversions stable.
func toPaise(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).RoundBank(0).IntPart()
}

// fromPaise converts an integer paise amount back to rupees
func fromPaise(paise int64) decimal.Decimal {
	return decimal.NewFromInt(paise).Div(decimal.NewFromInt(100))
}

// Ensure the adapter implements the outbound port
var _ payment.GatewayClient = (*RazorpayAdapter)(nil)
