// Copyright (c) 2026 Meserio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package question

import (
	"context"
)

// Filter narrows admin question listings.
type Filter struct {
	// Scope filters universal vs category questions.
	Scope *Scope
	// CategoryID filters category questions by owning category.
	CategoryID *string
	// Status filters by lifecycle state.
	Status *Status
	// IncludeDeleted also returns soft-deleted questions.
	IncludeDeleted bool
}

// Repository is the persistence contract of the question package.
//
// Question sibling sets (the universal set, and one per category) keep a
// dense sort order maintained by the implementation, exactly like taxonomy
// sibling sets. Option order, in contrast, is fully determined by the
// reconciled payload, so option writes carry explicit positions.
type Repository interface {
	// Create inserts a question appended to its sibling set, together with
	// its initial options (ids and positions already assigned).
	Create(ctx context.Context, q *Question) error

	// Update persists a question's mutable fields and translation set, and
	// applies an option reconciliation in the same transaction: upserts
	// carry their final value, metadata, translations, and position;
	// deleteOptionIDs are soft-deleted before the upserts run. All or
	// nothing.
	//
	// expectedOptionIDs is the live option set the reconciliation was
	// planned against. The implementation re-reads the live set under lock
	// and fails with CONFLICT when it no longer matches, so a plan built
	// from a stale read can never renumber or delete options it did not
	// see.
	Update(ctx context.Context, q *Question, expectedOptionIDs []string, upserts []*Option, deleteOptionIDs []string) error

	// FindByID loads one question with all its options (live and, when
	// includeDeleted, soft-deleted ones too).
	FindByID(ctx context.Context, id string, includeDeleted bool) (*Question, error)

	// List loads questions matching the filter in sibling order.
	List(ctx context.Context, filter Filter) ([]*Question, error)

	// ListForForm loads the active questions a firm in categoryID answers:
	// the universal set followed by the category set, each in sibling
	// order, with live options only.
	ListForForm(ctx context.Context, categoryID string) ([]*Question, error)

	// SetStatus updates the lifecycle state of a live question.
	SetStatus(ctx context.Context, id string, status Status) error

	// SoftDelete removes a question from its sibling set, compacting the
	// survivors. Deleting an already-deleted question is a no-op.
	SoftDelete(ctx context.Context, id string) error

	// Restore re-appends a soft-deleted question at the end of its set.
	Restore(ctx context.Context, id string) error

	// Reorder applies orderedIDs as the complete new order of one sibling
	// set (scope universal ignores categoryID).
	Reorder(ctx context.Context, scope Scope, categoryID *string, orderedIDs []string) error
}
