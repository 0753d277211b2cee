// Package mixin provides ready-to-use building blocks for entities.
//
// A mixin embeds schema.Schema, so an entity embeds the mixin in its place:
//
//	type Person struct{ mixin.Time }
package mixin

import "github.com/syssam/cryptcol/schema"

// Column names used by the time mixins.
const (
	CreatedAt = "created_at"
	UpdatedAt = "updated_at"
)

// CreateTime adds the created_at timestamp column.
type CreateTime struct{ schema.Schema }

// Timestamps of the create time mixin.
func (CreateTime) Timestamps() (string, string, bool) { return CreatedAt, "", true }

// create time mixin must implement `Entity` interface.
var _ schema.Entity = (*CreateTime)(nil)

// UpdateTime adds the updated_at timestamp column.
type UpdateTime struct{ schema.Schema }

// Timestamps of the update time mixin.
func (UpdateTime) Timestamps() (string, string, bool) { return "", UpdatedAt, true }

// update time mixin must implement `Entity` interface.
var _ schema.Entity = (*UpdateTime)(nil)

// Time composes CreateTime and UpdateTime.
//
// This is the most common mixin for tracking entity timestamps.
type Time struct{ schema.Schema }

// Timestamps of the time mixin.
func (Time) Timestamps() (string, string, bool) { return CreatedAt, UpdatedAt, true }

// time mixin must implement `Entity` interface.
var _ schema.Entity = (*Time)(nil)
