package payment

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/craftline/backend/internal/domain/payment"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreatePaymentRequest registers a gateway collection order for an order
type CreatePaymentRequest struct {
	OrderID uuid.UUID `json:"order_id" binding:"required"`
}

// RefundRequest initiates a merchant-side refund against a captured payment
type RefundRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Note   string          `json:"note" binding:"omitempty,max=255"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID               uuid.UUID       `json:"id"`
	OrderID          *uuid.UUID      `json:"order_id,omitempty"`
	Gateway          string          `json:"gateway"`
	GatewayPaymentID string          `json:"gateway_payment_id,omitempty"`
	GatewayOrderID   string          `json:"gateway_order_id,omitempty"`
	Amount           decimal.Decimal `json:"amount"`
	RefundedAmount   decimal.Decimal `json:"refunded_amount"`
	Currency         string          `json:"currency"`
	Method           string          `json:"method,omitempty"`
	Status           string          `json:"status"`
	ErrorCode        string          `json:"error_code,omitempty"`
	ErrorMessage     string          `json:"error_message,omitempty"`
	CapturedAt       *time.Time      `json:"captured_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// ToPaymentResponse converts a domain payment to a response DTO
func ToPaymentResponse(p *payment.Payment) PaymentResponse {
	return PaymentResponse{
		ID:               p.ID,
		OrderID:          p.OrderID,
		Gateway:          string(p.Gateway),
		GatewayPaymentID: p.GatewayPaymentID,
		GatewayOrderID:   p.GatewayOrderID,
		Amount:           p.Amount,
		RefundedAmount:   p.RefundedAmount,
		Currency:         p.Currency,
		Method:           p.Method,
		Status:           string(p.Status),
		ErrorCode:        p.ErrorCode,
		ErrorMessage:     p.ErrorMessage,
		CapturedAt:       p.CapturedAt,
		CreatedAt:        p.CreatedAt,
	}
}

// ToPaymentResponses converts domain payments to response DTOs
func ToPaymentResponses(payments []payment.Payment) []PaymentResponse {
	responses := make([]PaymentResponse, len(payments))
	for i := range payments {
		responses[i] = ToPaymentResponse(&payments[i])
	}
	return responses
}

// TransactionResponse represents a ledger row in API responses
type TransactionResponse struct {
	ID                   uuid.UUID       `json:"id"`
	PaymentID            uuid.UUID       `json:"payment_id"`
	OrderID              *uuid.UUID      `json:"order_id,omitempty"`
	Reference            string          `json:"reference"`
	Type                 string          `json:"type"`
	Amount               decimal.Decimal `json:"amount"`
	Currency             string          `json:"currency"`
	GatewayTransactionID string          `json:"gateway_transaction_id,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
}

// ToTransactionResponses converts ledger rows to response DTOs
func ToTransactionResponses(transactions []payment.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, len(transactions))
	for i, t := range transactions {
		responses[i] = TransactionResponse{
			ID:                   t.ID,
			PaymentID:            t.PaymentID,
			OrderID:              t.OrderID,
			Reference:            t.Reference,
			Type:                 string(t.Type),
			Amount:               t.Amount,
			Currency:             t.Currency,
			GatewayTransactionID: t.GatewayTransactionID,
			CreatedAt:            t.CreatedAt,
		}
	}
	return responses
}

// CreatePaymentResponse is the checkout handoff: the storefront needs the
// gateway order id to open the payment widget
type CreatePaymentResponse struct {
	Payment        PaymentResponse `json:"payment"`
	GatewayOrderID string          `json:"gateway_order_id"`
	GatewayKeyHint string          `json:"gateway,omitempty"`
}

// WebhookQueueStats reports the webhook queue depth per status
type WebhookQueueStats struct {
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Processed  int64 `json:"processed"`
	Failed     int64 `json:"failed"`
	Dead       int64 `json:"dead"`
}

// WebhookEventResponse represents a stored gateway delivery
type WebhookEventResponse struct {
	ID             uuid.UUID  `json:"id"`
	Gateway        string     `json:"gateway"`
	GatewayEventID string     `json:"gateway_event_id"`
	EventType      string     `json:"event_type"`
	Status         string     `json:"status"`
	RetryCount     int        `json:"retry_count"`
	LastError      string     `json:"last_error,omitempty"`
	NextRetryAt    *time.Time `json:"next_retry_at,omitempty"`
	ProcessedAt    *time.Time `json:"processed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ToWebhookEventResponse converts a stored delivery to a response DTO
func ToWebhookEventResponse(e *payment.WebhookEvent) WebhookEventResponse {
	return WebhookEventResponse{
		ID:             e.ID,
		Gateway:        string(e.Gateway),
		GatewayEventID: e.GatewayEventID,
		EventType:      e.EventType,
		Status:         string(e.Status),
		RetryCount:     e.RetryCount,
		LastError:      e.LastError,
		NextRetryAt:    e.NextRetryAt,
		ProcessedAt:    e.ProcessedAt,
		CreatedAt:      e.CreatedAt,
	}
}

// razorpayEvent is the envelope of a Razorpay webhook delivery
type razorpayEvent struct {
	Event   string          `json:"event"`
	Payload razorpayPayload `json:"payload"`
}

type razorpayPayload struct {
	Payment *razorpayEntityWrapper[razorpayPaymentEntity] `json:"payment,omitempty"`
	Refund  *razorpayEntityWrapper[razorpayRefundEntity]  `json:"refund,omitempty"`
}

type razorpayEntityWrapper[T any] struct {
	Entity T `json:"entity"`
}

// razorpayNotes is the notes object on a payment entity. The gateway
// serializes an empty notes set as [] rather than {}, so a plain map
// field would fail to unmarshal those payloads.
type razorpayNotes map[string]string

func (n *razorpayNotes) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" || trimmed[0] == '[' {
		*n = nil
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal(trimmed, &m); err != nil {
		return err
	}
	*n = m
	return nil
}

// razorpayPaymentEntity is the payment object inside a webhook payload.
// Amounts are in paise.
type razorpayPaymentEntity struct {
	ID               string        `json:"id"`
	OrderID          string        `json:"order_id"`
	Amount           int64         `json:"amount"`
	Currency         string        `json:"currency"`
	Status           string        `json:"status"`
	Method           string        `json:"method"`
	ErrorCode        string        `json:"error_code"`
	ErrorDescription string        `json:"error_description"`
	Notes            razorpayNotes `json:"notes"`
}

// razorpayRefundEntity is the refund object inside a webhook payload.
// Amounts are in paise.
type razorpayRefundEntity struct {
	ID        string `json:"id"`
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
	Status    string `json:"status"`
}

func parseRazorpayEvent(body []byte) (*razorpayEvent, error) {
	var event razorpayEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// paiseToRupees converts a gateway paise amount to a decimal rupee amount
func paiseToRupees(paise int64) decimal.Decimal {
	return decimal.NewFromInt(paise).Div(decimal.NewFromInt(100))
}
