package payment

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	domain "github.com/craftline/backend/internal/domain/order"
	"github.com/craftline/backend/internal/domain/payment"
	"github.com/craftline/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// --- in-memory repositories ---

type memPaymentRepo struct {
	payments map[uuid.UUID]*payment.Payment
}

func newMemPaymentRepo() *memPaymentRepo {
	return &memPaymentRepo{payments: make(map[uuid.UUID]*payment.Payment)}
}

func (r *memPaymentRepo) FindByID(_ context.Context, id uuid.UUID) (*payment.Payment, error) {
	p, ok := r.payments[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *memPaymentRepo) FindByGatewayRef(_ context.Context, gateway payment.Gateway, gatewayPaymentID string) (*payment.Payment, error) {
	if gatewayPaymentID == "" {
		return nil, shared.ErrNotFound
	}
	for _, p := range r.payments {
		if p.Gateway == gateway && p.GatewayPaymentID == gatewayPaymentID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memPaymentRepo) FindByGatewayOrderID(_ context.Context, gateway payment.Gateway, gatewayOrderID string) (*payment.Payment, error) {
	if gatewayOrderID == "" {
		return nil, shared.ErrNotFound
	}
	for _, p := range r.payments {
		if p.Gateway == gateway && p.GatewayOrderID == gatewayOrderID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memPaymentRepo) FindByOrder(_ context.Context, tenantID, orderID uuid.UUID) ([]payment.Payment, error) {
	var out []payment.Payment
	for _, p := range r.payments {
		if p.TenantID == tenantID && p.OrderID != nil && *p.OrderID == orderID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memPaymentRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]payment.Payment, int64, error) {
	var out []payment.Payment
	for _, p := range r.payments {
		if p.TenantID == tenantID {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memPaymentRepo) Save(_ context.Context, p *payment.Payment) error {
	copied := *p
	r.payments[p.ID] = &copied
	return nil
}

func (r *memPaymentRepo) SaveWithLock(_ context.Context, p *payment.Payment) error {
	if _, ok := r.payments[p.ID]; !ok {
		return shared.ErrNotFound
	}
	copied := *p
	r.payments[p.ID] = &copied
	return nil
}

type memTransactionRepo struct {
	transactions []payment.Transaction
}

func (r *memTransactionRepo) Save(_ context.Context, transactions ...*payment.Transaction) error {
	for _, t := range transactions {
		r.transactions = append(r.transactions, *t)
	}
	return nil
}

func (r *memTransactionRepo) FindByPayment(_ context.Context, paymentID uuid.UUID) ([]payment.Transaction, error) {
	var out []payment.Transaction
	for _, t := range r.transactions {
		if t.PaymentID == paymentID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memTransactionRepo) FindByOrder(_ context.Context, orderID uuid.UUID) ([]payment.Transaction, error) {
	var out []payment.Transaction
	for _, t := range r.transactions {
		if t.OrderID != nil && *t.OrderID == orderID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memTransactionRepo) CountByPaymentAndType(_ context.Context, paymentID uuid.UUID, txType payment.TransactionType) (int64, error) {
	var count int64
	for _, t := range r.transactions {
		if t.PaymentID == paymentID && t.Type == txType {
			count++
		}
	}
	return count, nil
}

type memWebhookRepo struct {
	events map[uuid.UUID]*payment.WebhookEvent
}

func newMemWebhookRepo() *memWebhookRepo {
	return &memWebhookRepo{events: make(map[uuid.UUID]*payment.WebhookEvent)}
}

func (r *memWebhookRepo) Save(_ context.Context, e *payment.WebhookEvent) error {
	copied := *e
	r.events[e.ID] = &copied
	return nil
}

func (r *memWebhookRepo) FindByID(_ context.Context, id uuid.UUID) (*payment.WebhookEvent, error) {
	e, ok := r.events[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *e
	return &copied, nil
}

func (r *memWebhookRepo) FindByGatewayEventID(_ context.Context, gateway payment.Gateway, gatewayEventID string) (*payment.WebhookEvent, error) {
	for _, e := range r.events {
		if e.Gateway == gateway && e.GatewayEventID == gatewayEventID {
			copied := *e
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memWebhookRepo) FindDue(_ context.Context, now time.Time, limit int) ([]*payment.WebhookEvent, error) {
	var out []*payment.WebhookEvent
	for _, e := range r.events {
		due := e.Status == payment.WebhookStatusPending ||
			(e.Status == payment.WebhookStatusFailed && e.NextRetryAt != nil && !e.NextRetryAt.After(now))
		if due {
			copied := *e
			out = append(out, &copied)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *memWebhookRepo) MarkProcessing(_ context.Context, ids []uuid.UUID) ([]*payment.WebhookEvent, error) {
	var out []*payment.WebhookEvent
	for _, id := range ids {
		e, ok := r.events[id]
		if !ok {
			continue
		}
		if err := e.MarkProcessing(); err != nil {
			continue
		}
		copied := *e
		out = append(out, &copied)
	}
	return out, nil
}

func (r *memWebhookRepo) Update(_ context.Context, e *payment.WebhookEvent) error {
	if _, ok := r.events[e.ID]; !ok {
		return shared.ErrNotFound
	}
	copied := *e
	r.events[e.ID] = &copied
	return nil
}

func (r *memWebhookRepo) FindDead(_ context.Context, _, _ int) ([]*payment.WebhookEvent, int64, error) {
	var out []*payment.WebhookEvent
	for _, e := range r.events {
		if e.Status == payment.WebhookStatusDead {
			copied := *e
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memWebhookRepo) CountByStatus(_ context.Context) (map[payment.WebhookEventStatus]int64, error) {
	counts := make(map[payment.WebhookEventStatus]int64)
	for _, e := range r.events {
		counts[e.Status]++
	}
	return counts, nil
}

func (r *memWebhookRepo) DeleteProcessedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	var deleted int64
	for id, e := range r.events {
		if e.Status == payment.WebhookStatusProcessed && e.UpdatedAt.Before(cutoff) {
			delete(r.events, id)
			deleted++
		}
	}
	return deleted, nil
}

// memOrderRepo is a minimal order store for payment-status mirroring
type memOrderRepo struct {
	orders map[uuid.UUID]*domain.Order
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[uuid.UUID]*domain.Order)}
}

func (r *memOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *o
	return &copied, nil
}

func (r *memOrderRepo) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*domain.Order, error) {
	o, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return o, nil
}

func (r *memOrderRepo) FindByOrderNumber(_ context.Context, tenantID uuid.UUID, orderNumber string) (*domain.Order, error) {
	for _, o := range r.orders {
		if o.TenantID == tenantID && o.OrderNumber == orderNumber {
			copied := *o
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memOrderRepo) FindByUser(_ context.Context, tenantID, userID uuid.UUID, _ shared.Filter) ([]domain.Order, int64, error) {
	return nil, 0, nil
}

func (r *memOrderRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]domain.Order, int64, error) {
	return nil, 0, nil
}

func (r *memOrderRepo) Save(_ context.Context, o *domain.Order) error {
	copied := *o
	r.orders[o.ID] = &copied
	return nil
}

func (r *memOrderRepo) SaveWithLock(_ context.Context, o *domain.Order) error {
	if _, ok := r.orders[o.ID]; !ok {
		return shared.ErrNotFound
	}
	copied := *o
	r.orders[o.ID] = &copied
	return nil
}

// --- fakes for the gateway ports ---

type fakeVerifier struct {
	valid bool
}

func (v *fakeVerifier) VerifyWebhookSignature(_ []byte, _ string) error {
	if !v.valid {
		return errors.New("signature mismatch")
	}
	return nil
}

// --- harness ---

type webhookFixture struct {
	ingest      *WebhookIngestService
	processor   *WebhookProcessorService
	verifier    *fakeVerifier
	paymentRepo *memPaymentRepo
	txnRepo     *memTransactionRepo
	webhookRepo *memWebhookRepo
	orderRepo   *memOrderRepo
	tenantID    uuid.UUID
}

func newWebhookFixture() *webhookFixture {
	paymentRepo := newMemPaymentRepo()
	txnRepo := &memTransactionRepo{}
	webhookRepo := newMemWebhookRepo()
	orderRepo := newMemOrderRepo()
	verifier := &fakeVerifier{valid: true}
	scope := NewNoOpTransactionScope(paymentRepo, txnRepo, orderRepo)
	return &webhookFixture{
		ingest:      NewWebhookIngestService(webhookRepo, verifier, zap.NewNop()),
		processor:   NewWebhookProcessorService(scope, webhookRepo, zap.NewNop()),
		verifier:    verifier,
		paymentRepo: paymentRepo,
		txnRepo:     txnRepo,
		webhookRepo: webhookRepo,
		orderRepo:   orderRepo,
		tenantID:    uuid.New(),
	}
}

func (f *webhookFixture) seedOrder(t *testing.T) *domain.Order {
	t.Helper()
	o, err := domain.NewOrder(f.tenantID, uuid.New(),
		[]domain.LineSpec{{
			ProductID:   uuid.New(),
			ProductName: "Turmeric Powder 250g",
			Quantity:    2,
			UnitPrice:   decimal.NewFromInt(125),
			TaxRate:     decimal.NewFromFloat(15.4),
		}},
		uuid.New(), uuid.New(), uuid.New(), decimal.NewFromInt(50))
	require.NoError(t, err)
	o.ClearDomainEvents()
	require.NoError(t, f.orderRepo.Save(context.Background(), o))
	return o
}

// seedPayment stores a checkout-time pending payment carrying a gateway order id
func (f *webhookFixture) seedPayment(t *testing.T, o *domain.Order, gatewayOrderID string) *payment.Payment {
	t.Helper()
	orderID := o.ID
	p, err := payment.NewPayment(f.tenantID, &orderID, payment.GatewayRazorpay, o.TotalAmount)
	require.NoError(t, err)
	p.AttachGatewayRefs(gatewayOrderID, "", "")
	require.NoError(t, f.paymentRepo.Save(context.Background(), p))
	return p
}

func capturedBody(t *testing.T, gatewayPaymentID, gatewayOrderID string, amountPaise int64, notes map[string]string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"event": "payment.captured",
		"payload": map[string]any{
			"payment": map[string]any{
				"entity": map[string]any{
					"id":       gatewayPaymentID,
					"order_id": gatewayOrderID,
					"amount":   amountPaise,
					"currency": "INR",
					"status":   "captured",
					"method":   "upi",
					"notes":    notes,
				},
			},
		},
	})
	require.NoError(t, err)
	return body
}

func (f *webhookFixture) ingestAndProcess(t *testing.T, eventID, eventType string, body []byte) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.ingest.Ingest(ctx, eventID, eventType, body, "sig"))
	_, err := f.processor.ProcessDue(ctx, 10)
	require.NoError(t, err)
}

func TestWebhookIngest(t *testing.T) {
	t.Run("invalid signature stores nothing", func(t *testing.T) {
		f := newWebhookFixture()
		f.verifier.valid = false

		err := f.ingest.Ingest(context.Background(), "evt_1", "payment.captured", []byte(`{}`), "bad")

		require.ErrorIs(t, err, shared.ErrSignatureInvalid)
		assert.Empty(t, f.webhookRepo.events)
	})

	t.Run("valid delivery is stored pending", func(t *testing.T) {
		f := newWebhookFixture()

		err := f.ingest.Ingest(context.Background(), "evt_1", "payment.captured", []byte(`{}`), "sig")

		require.NoError(t, err)
		require.Len(t, f.webhookRepo.events, 1)
		for _, e := range f.webhookRepo.events {
			assert.Equal(t, payment.WebhookStatusPending, e.Status)
		}
	})

	t.Run("redelivery of same event id is not stored twice", func(t *testing.T) {
		f := newWebhookFixture()
		ctx := context.Background()

		require.NoError(t, f.ingest.Ingest(ctx, "evt_1", "payment.captured", []byte(`{}`), "sig"))
		require.NoError(t, f.ingest.Ingest(ctx, "evt_1", "payment.captured", []byte(`{}`), "sig"))

		assert.Len(t, f.webhookRepo.events, 1)
	})
}

func TestWebhookProcessor_PaymentCaptured(t *testing.T) {
	t.Run("capture settles payment, ledger and order", func(t *testing.T) {
		f := newWebhookFixture()
		ctx := context.Background()
		o := f.seedOrder(t)
		p := f.seedPayment(t, o, "order_rzp1")

		body := capturedBody(t, "pay_001", "order_rzp1", 33850, nil)
		f.ingestAndProcess(t, "evt_1", "payment.captured", body)

		stored, err := f.paymentRepo.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, payment.StatusPaid, stored.Status)
		assert.Equal(t, "pay_001", stored.GatewayPaymentID)
		assert.NotNil(t, stored.CapturedAt)

		require.Len(t, f.txnRepo.transactions, 1)
		assert.Equal(t, payment.TransactionTypePayment, f.txnRepo.transactions[0].Type)

		orderAfter, err := f.orderRepo.FindByID(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentStatusPaid, orderAfter.PaymentStatus)
		assert.Equal(t, domain.OrderStatusProcessing, orderAfter.Status)
	})

	t.Run("replay writes no second ledger row", func(t *testing.T) {
		f := newWebhookFixture()
		o := f.seedOrder(t)
		f.seedPayment(t, o, "order_rzp1")

		body := capturedBody(t, "pay_001", "order_rzp1", 33850, nil)
		f.ingestAndProcess(t, "evt_1", "payment.captured", body)
		f.ingestAndProcess(t, "evt_2", "payment.captured", body)

		assert.Len(t, f.txnRepo.transactions, 1)
		assert.Len(t, f.paymentRepo.payments, 1)
	})

	t.Run("empty-array notes still settles a known payment", func(t *testing.T) {
		// Razorpay serializes an empty notes set as [] instead of {}.
		f := newWebhookFixture()
		ctx := context.Background()
		o := f.seedOrder(t)
		p := f.seedPayment(t, o, "order_rzp1")

		body := []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{` +
			`"id":"pay_007","order_id":"order_rzp1","amount":33850,"currency":"INR",` +
			`"status":"captured","notes":[]}}}}`)
		f.ingestAndProcess(t, "evt_1", "payment.captured", body)

		stored, err := f.paymentRepo.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, payment.StatusPaid, stored.Status)
	})

	t.Run("unknown payment with order note is created lazily", func(t *testing.T) {
		f := newWebhookFixture()
		ctx := context.Background()
		o := f.seedOrder(t)

		body := capturedBody(t, "pay_042", "", 33850, map[string]string{"order_id": o.ID.String()})
		f.ingestAndProcess(t, "evt_1", "payment.captured", body)

		require.Len(t, f.paymentRepo.payments, 1)
		created, err := f.paymentRepo.FindByGatewayRef(ctx, payment.GatewayRazorpay, "pay_042")
		require.NoError(t, err)
		assert.Equal(t, payment.StatusPaid, created.Status)
		// 33850 paise -> 338.50 rupees
		assert.True(t, created.Amount.Equal(decimal.NewFromFloat(338.5)))
		assert.Equal(t, f.tenantID, created.TenantID)
	})

	t.Run("unknown payment without order note goes to retry", func(t *testing.T) {
		f := newWebhookFixture()
		ctx := context.Background()

		body := capturedBody(t, "pay_099", "", 1000, nil)
		require.NoError(t, f.ingest.Ingest(ctx, "evt_1", "payment.captured", body, "sig"))
		_, err := f.processor.ProcessDue(ctx, 10)
		require.NoError(t, err)

		assert.Empty(t, f.paymentRepo.payments)
		for _, e := range f.webhookRepo.events {
			assert.Equal(t, payment.WebhookStatusFailed, e.Status)
			assert.Equal(t, 1, e.RetryCount)
			assert.NotNil(t, e.NextRetryAt)
		}
	})
}

func TestWebhookProcessor_PaymentFailed(t *testing.T) {
	failedBody := func(t *testing.T, gatewayOrderID string) []byte {
		t.Helper()
		body, err := json.Marshal(map[string]any{
			"event": "payment.failed",
			"payload": map[string]any{
				"payment": map[string]any{
					"entity": map[string]any{
						"id":                "pay_001",
						"order_id":          gatewayOrderID,
						"amount":            int64(33850),
						"error_code":        "BAD_REQUEST_ERROR",
						"error_description": "Card declined",
					},
				},
			},
		})
		require.NoError(t, err)
		return body
	}

	t.Run("failure marks payment and order", func(t *testing.T) {
		f := newWebhookFixture()
		ctx := context.Background()
		o := f.seedOrder(t)
		p := f.seedPayment(t, o, "order_rzp1")

		f.ingestAndProcess(t, "evt_1", "payment.failed", failedBody(t, "order_rzp1"))

		stored, err := f.paymentRepo.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, payment.StatusFailed, stored.Status)
		assert.Equal(t, "BAD_REQUEST_ERROR", stored.ErrorCode)
		assert.Empty(t, f.txnRepo.transactions)

		orderAfter, err := f.orderRepo.FindByID(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentStatusFailed, orderAfter.PaymentStatus)
	})

	t.Run("failure after capture is ignored", func(t *testing.T) {
		f := newWebhookFixture()
		ctx := context.Background()
		o := f.seedOrder(t)
		p := f.seedPayment(t, o, "order_rzp1")

		f.ingestAndProcess(t, "evt_1", "payment.captured", capturedBody(t, "pay_001", "order_rzp1", 33850, nil))
		f.ingestAndProcess(t, "evt_2", "payment.failed", failedBody(t, "order_rzp1"))

		stored, err := f.paymentRepo.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, payment.StatusPaid, stored.Status)
	})

	t.Run("capture after recorded failure wins", func(t *testing.T) {
		f := newWebhookFixture()
		ctx := context.Background()
		o := f.seedOrder(t)
		p := f.seedPayment(t, o, "order_rzp1")

		f.ingestAndProcess(t, "evt_1", "payment.failed", failedBody(t, "order_rzp1"))
		f.ingestAndProcess(t, "evt_2", "payment.captured", capturedBody(t, "pay_001", "order_rzp1", 33850, nil))

		stored, err := f.paymentRepo.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, payment.StatusPaid, stored.Status)
		assert.Empty(t, stored.ErrorCode)
		assert.Len(t, f.txnRepo.transactions, 1)
	})
}

func TestWebhookProcessor_RefundProcessed(t *testing.T) {
	refundBody := func(t *testing.T, refundID string, amountPaise int64) []byte {
		t.Helper()
		body, err := json.Marshal(map[string]any{
			"event": "refund.processed",
			"payload": map[string]any{
				"refund": map[string]any{
					"entity": map[string]any{
						"id":         refundID,
						"payment_id": "pay_001",
						"amount":     amountPaise,
						"status":     "processed",
					},
				},
			},
		})
		require.NoError(t, err)
		return body
	}

	setup := func(t *testing.T) (*webhookFixture, *domain.Order, *payment.Payment) {
		t.Helper()
		f := newWebhookFixture()
		o := f.seedOrder(t)
		p := f.seedPayment(t, o, "order_rzp1")
		f.ingestAndProcess(t, "evt_cap", "payment.captured", capturedBody(t, "pay_001", "order_rzp1", 33850, nil))
		return f, o, p
	}

	t.Run("partial then full refund", func(t *testing.T) {
		f, o, p := setup(t)
		ctx := context.Background()

		f.ingestAndProcess(t, "evt_r1", "refund.processed", refundBody(t, "rfnd_1", 10000))

		stored, err := f.paymentRepo.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, payment.StatusPaid, stored.Status)
		assert.True(t, stored.RefundedAmount.Equal(decimal.NewFromInt(100)))
		orderAfter, _ := f.orderRepo.FindByID(ctx, o.ID)
		assert.Equal(t, domain.PaymentStatusPartiallyPaid, orderAfter.PaymentStatus)

		f.ingestAndProcess(t, "evt_r2", "refund.processed", refundBody(t, "rfnd_2", 23850))

		stored, err = f.paymentRepo.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, payment.StatusRefunded, stored.Status)
		orderAfter, _ = f.orderRepo.FindByID(ctx, o.ID)
		assert.Equal(t, domain.PaymentStatusRefunded, orderAfter.PaymentStatus)

		// capture + two refunds
		assert.Len(t, f.txnRepo.transactions, 3)
	})

	t.Run("replayed refund id writes no second ledger row", func(t *testing.T) {
		f, _, _ := setup(t)

		f.ingestAndProcess(t, "evt_r1", "refund.processed", refundBody(t, "rfnd_1", 10000))
		f.ingestAndProcess(t, "evt_r1b", "refund.processed", refundBody(t, "rfnd_1", 10000))

		var refundRows int
		for _, txn := range f.txnRepo.transactions {
			if txn.Type == payment.TransactionTypeRefund {
				refundRows++
			}
		}
		assert.Equal(t, 1, refundRows)
	})

	t.Run("refund beyond captured amount is rejected and retried", func(t *testing.T) {
		f, _, p := setup(t)
		ctx := context.Background()

		require.NoError(t, f.ingest.Ingest(ctx, "evt_big", "refund.processed", refundBody(t, "rfnd_big", 99999999), "sig"))
		_, err := f.processor.ProcessDue(ctx, 10)
		require.NoError(t, err)

		stored, err := f.paymentRepo.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.True(t, stored.RefundedAmount.IsZero())
	})
}

func TestWebhookProcessor_DeadLetter(t *testing.T) {
	f := newWebhookFixture()
	ctx := context.Background()

	// Unknown payment without an order note can never be reconciled
	body := capturedBody(t, "pay_lost", "", 1000, nil)
	require.NoError(t, f.ingest.Ingest(ctx, "evt_lost", "payment.captured", body, "sig"))

	var eventID uuid.UUID
	for id := range f.webhookRepo.events {
		eventID = id
	}

	for i := 0; i < payment.DefaultWebhookMaxRetries; i++ {
		// Force the retry due now
		if e := f.webhookRepo.events[eventID]; e.NextRetryAt != nil {
			past := time.Now().Add(-time.Minute)
			e.NextRetryAt = &past
		}
		_, err := f.processor.ProcessDue(ctx, 10)
		require.NoError(t, err)
	}

	event := f.webhookRepo.events[eventID]
	assert.Equal(t, payment.WebhookStatusDead, event.Status)
	assert.Equal(t, payment.DefaultWebhookMaxRetries, event.RetryCount)

	t.Run("stats and requeue", func(t *testing.T) {
		stats, err := f.processor.QueueStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), stats.Dead)

		require.NoError(t, f.processor.RequeueDeadLetter(ctx, eventID))
		event := f.webhookRepo.events[eventID]
		assert.Equal(t, payment.WebhookStatusPending, event.Status)
		assert.Equal(t, 0, event.RetryCount)
	})
}

func TestParseRazorpayEvent_NotesShapes(t *testing.T) {
	tests := []struct {
		name  string
		notes string
		want  razorpayNotes
	}{
		{"object", `{"order_id":"ord-1","channel":"web"}`, razorpayNotes{"order_id": "ord-1", "channel": "web"}},
		{"empty object", `{}`, razorpayNotes{}},
		{"empty array", `[]`, nil},
		{"null", `null`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{` +
				`"id":"pay_001","amount":1000,"notes":` + tt.notes + `}}}}`)

			evt, err := parseRazorpayEvent(body)
			require.NoError(t, err)
			require.NotNil(t, evt.Payload.Payment)
			assert.Equal(t, tt.want, evt.Payload.Payment.Entity.Notes)
		})
	}
}
