// Copyright (c) 2026 Meserio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package answer

import (
	"context"

	"github.com/taibuivan/meserio/internal/question"
)

// Repository is the persistence contract of the answer package.
type Repository interface {
	// SaveAll upserts a batch of answers for one firm in a single
	// transaction: either every answer lands or none does. Each answer
	// replaces the firm's previous answer to the same question, including
	// its option links and translations.
	SaveAll(ctx context.Context, firmID string, answers []*Answer) error

	// ListByFirm loads every stored answer of one firm, including answers
	// to questions that have since been retired or deleted.
	ListByFirm(ctx context.Context, firmID string) ([]*Answer, error)
}

// QuestionSource is the slice of the question package the answer package
// depends on: form lookups for validation and schema lookups for display
// resolution.
type QuestionSource interface {
	// ListForForm returns the active questions of one category's form,
	// universal questions first.
	ListForForm(ctx context.Context, categoryID string) ([]*question.Question, error)

	// FindByID loads one question with its options; includeDeleted resolves
	// soft-deleted questions and options for historical answer reads.
	FindByID(ctx context.Context, id string, includeDeleted bool) (*question.Question, error)
}
