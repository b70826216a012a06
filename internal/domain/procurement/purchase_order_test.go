package procurement

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func approvedPO(t *testing.T, quantities ...int64) *PurchaseOrder {
	t.Helper()
	po, err := NewPurchaseOrder(uuid.New(), "Acme Spices", nil)
	require.NoError(t, err)
	for _, q := range quantities {
		require.NoError(t, po.AddItem(uuid.New(), decimal.NewFromInt(q), decimal.NewFromInt(10)))
	}
	require.NoError(t, po.Submit())
	require.NoError(t, po.Approve(uuid.New()))
	return po
}

func TestPurchaseOrder_Lifecycle(t *testing.T) {
	t.Run("draft to pending to approved", func(t *testing.T) {
		po, err := NewPurchaseOrder(uuid.New(), "Acme Spices", nil)
		require.NoError(t, err)
		require.NoError(t, po.AddItem(uuid.New(), decimal.NewFromInt(5), decimal.NewFromInt(100)))

		require.NoError(t, po.Submit())
		assert.Equal(t, POStatusPending, po.Status)

		require.NoError(t, po.Approve(uuid.New()))
		assert.Equal(t, POStatusApproved, po.Status)
	})

	t.Run("cannot submit without items", func(t *testing.T) {
		po, err := NewPurchaseOrder(uuid.New(), "Acme Spices", nil)
		require.NoError(t, err)

		require.Error(t, po.Submit())
	})

	t.Run("cannot approve a draft", func(t *testing.T) {
		po, err := NewPurchaseOrder(uuid.New(), "Acme Spices", nil)
		require.NoError(t, err)

		require.Error(t, po.Approve(uuid.New()))
	})

	t.Run("items frozen after submission", func(t *testing.T) {
		po := approvedPO(t, 5)

		err := po.AddItem(uuid.New(), decimal.NewFromInt(1), decimal.Zero)

		require.Error(t, err)
	})
}

func TestPurchaseOrder_ApplyReceipt(t *testing.T) {
	t.Run("partial receipt moves PO to partially received", func(t *testing.T) {
		po := approvedPO(t, 10)

		info, err := po.ApplyReceipt([]ReceiptLine{{
			PurchaseOrderItemID: po.Items[0].ID,
			AcceptedQuantity:    decimal.NewFromInt(4),
		}})

		require.NoError(t, err)
		require.Len(t, info, 1)
		assert.True(t, info[0].AcceptedQuantity.Equal(decimal.NewFromInt(4)))
		assert.Equal(t, POStatusPartiallyReceived, po.Status)
		assert.True(t, po.Items[0].ReceivedQuantity.Equal(decimal.NewFromInt(4)))
	})

	t.Run("received quantity accumulates and completes the PO", func(t *testing.T) {
		po := approvedPO(t, 10, 3)

		_, err := po.ApplyReceipt([]ReceiptLine{
			{PurchaseOrderItemID: po.Items[0].ID, AcceptedQuantity: decimal.NewFromInt(6)},
			{PurchaseOrderItemID: po.Items[1].ID, AcceptedQuantity: decimal.NewFromInt(3)},
		})
		require.NoError(t, err)
		assert.Equal(t, POStatusPartiallyReceived, po.Status)

		_, err = po.ApplyReceipt([]ReceiptLine{
			{PurchaseOrderItemID: po.Items[0].ID, AcceptedQuantity: decimal.NewFromInt(4)},
		})
		require.NoError(t, err)
		assert.Equal(t, POStatusReceived, po.Status)
		assert.True(t, po.Items[0].IsFullyReceived())
	})

	t.Run("over-receiving is rejected without mutating any line", func(t *testing.T) {
		po := approvedPO(t, 10, 5)

		_, err := po.ApplyReceipt([]ReceiptLine{
			{PurchaseOrderItemID: po.Items[0].ID, AcceptedQuantity: decimal.NewFromInt(8)},
			{PurchaseOrderItemID: po.Items[1].ID, AcceptedQuantity: decimal.NewFromInt(7)},
		})

		require.Error(t, err)
		assert.True(t, po.Items[0].ReceivedQuantity.IsZero())
		assert.True(t, po.Items[1].ReceivedQuantity.IsZero())
		assert.Equal(t, POStatusApproved, po.Status)
	})

	t.Run("receipts rejected before approval", func(t *testing.T) {
		po, err := NewPurchaseOrder(uuid.New(), "Acme Spices", nil)
		require.NoError(t, err)
		require.NoError(t, po.AddItem(uuid.New(), decimal.NewFromInt(5), decimal.Zero))
		require.NoError(t, po.Submit())

		_, err = po.ApplyReceipt([]ReceiptLine{{
			PurchaseOrderItemID: po.Items[0].ID,
			AcceptedQuantity:    decimal.NewFromInt(1),
		}})

		require.Error(t, err)
	})
}

func TestPurchaseOrder_Cancel(t *testing.T) {
	t.Run("cancel allowed before receiving", func(t *testing.T) {
		po := approvedPO(t, 10)

		require.NoError(t, po.Cancel())
		assert.Equal(t, POStatusCancelled, po.Status)
	})

	t.Run("cancel blocked after any goods received", func(t *testing.T) {
		po := approvedPO(t, 10)
		_, err := po.ApplyReceipt([]ReceiptLine{{
			PurchaseOrderItemID: po.Items[0].ID,
			AcceptedQuantity:    decimal.NewFromInt(1),
		}})
		require.NoError(t, err)

		require.Error(t, po.Cancel())
	})

	t.Run("cancel blocked on received PO", func(t *testing.T) {
		po := approvedPO(t, 2)
		_, err := po.ApplyReceipt([]ReceiptLine{{
			PurchaseOrderItemID: po.Items[0].ID,
			AcceptedQuantity:    decimal.NewFromInt(2),
		}})
		require.NoError(t, err)
		require.Equal(t, POStatusReceived, po.Status)

		require.Error(t, po.Cancel())
	})
}

func TestIndent_Lifecycle(t *testing.T) {
	newPendingIndent := func(t *testing.T) *Indent {
		t.Helper()
		indent, err := NewIndent(uuid.New(), uuid.New(), "restock")
		require.NoError(t, err)
		require.NoError(t, indent.AddItem(uuid.New(), decimal.NewFromInt(5), ""))
		require.NoError(t, indent.Submit())
		return indent
	}

	t.Run("approve pending indent", func(t *testing.T) {
		indent := newPendingIndent(t)

		require.NoError(t, indent.Approve(uuid.New()))
		assert.Equal(t, IndentStatusApproved, indent.Status)
		assert.NotNil(t, indent.ApprovedAt)
	})

	t.Run("approving twice fails", func(t *testing.T) {
		indent := newPendingIndent(t)
		require.NoError(t, indent.Approve(uuid.New()))

		require.Error(t, indent.Approve(uuid.New()))
	})

	t.Run("reject requires reason", func(t *testing.T) {
		indent := newPendingIndent(t)

		require.Error(t, indent.Reject("  "))
		require.NoError(t, indent.Reject("budget freeze"))
		assert.Equal(t, IndentStatusRejected, indent.Status)
	})
}

func TestNewPurchaseReceipt(t *testing.T) {
	t.Run("accepted cannot exceed received", func(t *testing.T) {
		_, err := NewPurchaseReceipt(uuid.New(), uuid.New(), uuid.New(), []ReceiptItemSpec{{
			PurchaseOrderItemID: uuid.New(),
			InventoryItemID:     uuid.New(),
			ReceivedQuantity:    decimal.NewFromInt(5),
			AcceptedQuantity:    decimal.NewFromInt(6),
		}}, "")

		require.Error(t, err)
	})

	t.Run("accepted lines exclude fully rejected deliveries", func(t *testing.T) {
		receipt, err := NewPurchaseReceipt(uuid.New(), uuid.New(), uuid.New(), []ReceiptItemSpec{
			{
				PurchaseOrderItemID: uuid.New(),
				InventoryItemID:     uuid.New(),
				ReceivedQuantity:    decimal.NewFromInt(5),
				AcceptedQuantity:    decimal.NewFromInt(5),
			},
			{
				PurchaseOrderItemID: uuid.New(),
				InventoryItemID:     uuid.New(),
				ReceivedQuantity:    decimal.NewFromInt(3),
				AcceptedQuantity:    decimal.Zero,
			},
		}, "one damaged crate")

		require.NoError(t, err)
		assert.Len(t, receipt.AcceptedLines(), 1)
		assert.True(t, receipt.Items[1].RejectedQuantity().Equal(decimal.NewFromInt(3)))
	})
}
