package order

import (
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoLineSpecs() []LineSpec {
	return []LineSpec{
		{
			ProductID:   uuid.New(),
			ProductName: "Product A",
			Quantity:    2,
			UnitPrice:   decimal.NewFromInt(100),
			TaxRate:     decimal.NewFromInt(18),
		},
		{
			ProductID:   uuid.New(),
			ProductName: "Product B",
			Quantity:    1,
			UnitPrice:   decimal.NewFromInt(50),
			TaxRate:     decimal.NewFromInt(5),
		},
	}
}

func createTestOrder(t *testing.T) *Order {
	t.Helper()
	o, err := NewOrder(uuid.New(), uuid.New(), twoLineSpecs(),
		uuid.New(), uuid.New(), uuid.New(), decimal.NewFromInt(50))
	require.NoError(t, err)
	return o
}

func TestNewOrder(t *testing.T) {
	t.Run("computes subtotal, tax and total", func(t *testing.T) {
		o := createTestOrder(t)

		// 2*100 + 1*50 = 250
		assert.True(t, o.SubtotalAmount.Equal(decimal.NewFromInt(250)), "subtotal = %s", o.SubtotalAmount)
		// 200*0.18 + 50*0.05 = 36 + 2.5 = 38.5
		assert.True(t, o.TaxAmount.Equal(decimal.NewFromFloat(38.5)), "tax = %s", o.TaxAmount)
		// 250 + 38.5 + 50 = 338.5
		assert.True(t, o.TotalAmount.Equal(decimal.NewFromFloat(338.5)), "total = %s", o.TotalAmount)

		assert.Equal(t, OrderStatusPending, o.Status)
		assert.Equal(t, PaymentStatusPending, o.PaymentStatus)
		assert.Len(t, o.Items, 2)
	})

	t.Run("rounds per-line tax to 2 decimals", func(t *testing.T) {
		lines := []LineSpec{{
			ProductID:   uuid.New(),
			ProductName: "Product C",
			Quantity:    3,
			UnitPrice:   decimal.NewFromFloat(33.33),
			TaxRate:     decimal.NewFromInt(18),
		}}

		o, err := NewOrder(uuid.New(), uuid.New(), lines,
			uuid.New(), uuid.New(), uuid.New(), decimal.Zero)
		require.NoError(t, err)

		// 99.99 * 0.18 = 17.9982 -> 18.00
		assert.True(t, o.TaxAmount.Equal(decimal.NewFromInt(18)), "tax = %s", o.TaxAmount)
	})

	t.Run("generates order number in expected format", func(t *testing.T) {
		o := createTestOrder(t)

		assert.Regexp(t, regexp.MustCompile(`^ORD-[0-9A-F]{8}$`), o.OrderNumber)
	})

	t.Run("rejects empty cart", func(t *testing.T) {
		_, err := NewOrder(uuid.New(), uuid.New(), nil,
			uuid.New(), uuid.New(), uuid.New(), decimal.Zero)

		require.Error(t, err)
	})

	t.Run("rejects non-positive line quantity", func(t *testing.T) {
		lines := twoLineSpecs()
		lines[0].Quantity = 0

		_, err := NewOrder(uuid.New(), uuid.New(), lines,
			uuid.New(), uuid.New(), uuid.New(), decimal.Zero)

		require.Error(t, err)
	})
}

func TestOrder_StatusTransitions(t *testing.T) {
	t.Run("pending to processing to shipped to delivered", func(t *testing.T) {
		o := createTestOrder(t)

		require.NoError(t, o.UpdateStatus(OrderStatusProcessing))
		require.NoError(t, o.UpdateStatus(OrderStatusShipped))
		require.NoError(t, o.UpdateStatus(OrderStatusDelivered))
	})

	t.Run("cannot skip from pending to shipped", func(t *testing.T) {
		o := createTestOrder(t)

		err := o.UpdateStatus(OrderStatusShipped)

		require.Error(t, err)
		assert.Equal(t, OrderStatusPending, o.Status)
	})

	t.Run("cancel allowed from pending and processing only", func(t *testing.T) {
		o := createTestOrder(t)
		require.NoError(t, o.Cancel())
		assert.Equal(t, OrderStatusCancelled, o.Status)
		assert.NotNil(t, o.CancelledAt)

		shipped := createTestOrder(t)
		require.NoError(t, shipped.UpdateStatus(OrderStatusProcessing))
		require.NoError(t, shipped.UpdateStatus(OrderStatusShipped))
		require.Error(t, shipped.Cancel())
	})
}

func TestOrder_PaymentTransitions(t *testing.T) {
	t.Run("mark paid advances pending order to processing", func(t *testing.T) {
		o := createTestOrder(t)

		o.MarkPaid()

		assert.Equal(t, PaymentStatusPaid, o.PaymentStatus)
		assert.Equal(t, OrderStatusProcessing, o.Status)
	})

	t.Run("mark paid is idempotent", func(t *testing.T) {
		o := createTestOrder(t)
		o.MarkPaid()
		version := o.Version

		o.MarkPaid()

		assert.Equal(t, version, o.Version)
	})

	t.Run("payment failure only from pending", func(t *testing.T) {
		o := createTestOrder(t)
		o.MarkPaid()

		o.MarkPaymentFailed()

		assert.Equal(t, PaymentStatusPaid, o.PaymentStatus)
	})

	t.Run("refund marks partial then full", func(t *testing.T) {
		o := createTestOrder(t)
		o.MarkPaid()

		o.MarkRefunded(false)
		assert.Equal(t, PaymentStatusPartiallyPaid, o.PaymentStatus)

		o.MarkRefunded(true)
		assert.Equal(t, PaymentStatusRefunded, o.PaymentStatus)
	})
}

func TestCart(t *testing.T) {
	t.Run("add item merges duplicate product lines", func(t *testing.T) {
		cart, err := NewCart(uuid.New(), uuid.New())
		require.NoError(t, err)
		productID := uuid.New()

		require.NoError(t, cart.AddItem(productID, 2))
		require.NoError(t, cart.AddItem(productID, 3))

		require.Len(t, cart.Items, 1)
		assert.Equal(t, 5, cart.Items[0].Quantity)
	})

	t.Run("update quantity to zero removes the line", func(t *testing.T) {
		cart, err := NewCart(uuid.New(), uuid.New())
		require.NoError(t, err)
		productID := uuid.New()
		require.NoError(t, cart.AddItem(productID, 2))

		require.NoError(t, cart.UpdateItemQuantity(productID, 0))

		assert.True(t, cart.IsEmpty())
	})

	t.Run("update quantity of missing product fails", func(t *testing.T) {
		cart, err := NewCart(uuid.New(), uuid.New())
		require.NoError(t, err)

		err = cart.UpdateItemQuantity(uuid.New(), 3)

		require.Error(t, err)
	})

	t.Run("clear empties the cart", func(t *testing.T) {
		cart, err := NewCart(uuid.New(), uuid.New())
		require.NoError(t, err)
		require.NoError(t, cart.AddItem(uuid.New(), 1))
		require.NoError(t, cart.AddItem(uuid.New(), 2))

		cart.Clear()

		assert.True(t, cart.IsEmpty())
	})
}
