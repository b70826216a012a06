// Package models contains GORM-specific persistence models that map to database tables.
// Most aggregates persist their domain entities directly; a separate model exists only
// where the storage shape diverges from the domain shape, such as the webhook event
// queue whose uniqueness constraint lives on gateway delivery identifiers rather than
// the primary key.
package models
