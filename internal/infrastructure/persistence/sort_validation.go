package persistence

import (
	"strings"
)

// ValidateSortOrder normalizes a sort direction to ASC or DESC. Anything
// that is not some spelling of "asc" becomes DESC, so user input can
// never inject into the ORDER BY clause.
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "ASC") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField checks a sort column against a whitelist, returning
// defaultField for anything empty, unknown, or hostile.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CommonSortFields are the columns every table carries.
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// InventoryItemSortFields whitelists sorting on raw material items.
var InventoryItemSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"code":          true,
	"name":          true,
	"unit":          true,
	"current_stock": true,
	"reorder_level": true,
	"unit_cost":     true,
}

// PackagedProductSortFields whitelists sorting on packaged products.
var PackagedProductSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"name":           true,
	"packaging_size": true,
	"stock_quantity": true,
	"reorder_level":  true,
}

// ProductSortFields whitelists sorting on catalog products.
var ProductSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"sku":            true,
	"name":           true,
	"price":          true,
	"tax_rate":       true,
	"status":         true,
	"stock_quantity": true,
}

// OrderSortFields whitelists sorting on sales orders.
var OrderSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"order_number":   true,
	"status":         true,
	"payment_status": true,
	"total_amount":   true,
}

// DocumentSortFields whitelists sorting on numbered documents: indents,
// purchase orders, production batches, and gate passes.
var DocumentSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"number":     true,
	"status":     true,
}
