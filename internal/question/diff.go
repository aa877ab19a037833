// Copyright (c) 2026 Meserio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package question

import (
	"fmt"

	"github.com/taibuivan/meserio/internal/platform/apperr"
)

// OptionInput is one option entry in an admin question payload.
//
// An entry without an id requests a new option; an entry with an id updates
// the existing one. Live options whose ids are absent from the payload are
// soft-deleted; an entry may also request deletion explicitly by setting
// Deleted, in which case its other fields are ignored.
type OptionInput struct {
	ID           *string                  `json:"id"`
	Deleted      bool                     `json:"deleted"`
	Value        string                   `json:"value"`
	Metadata     map[string]any           `json:"metadata"`
	Translations []OptionTranslationInput `json:"translations"`
}

// OptionTranslationInput is one per-language option text in admin payloads.
type OptionTranslationInput struct {
	LanguageCode string  `json:"language_code"`
	Label        string  `json:"label"`
	Display      *string `json:"display"`
	Description  *string `json:"description"`
}

// OptionDiff is the reconciliation plan between a question's live options
// and an admin payload. Positions follow payload order across creates and
// updates, so the payload fully determines the resulting sort order.
type OptionDiff struct {
	// Create holds inputs without ids, with their target positions.
	Create []PlannedOption
	// Update holds inputs whose ids matched a live option.
	Update []PlannedOption
	// Delete holds live option ids absent from the payload.
	Delete []string
}

// PlannedOption is one create or update with its final position.
type PlannedOption struct {
	// ID is empty for creates.
	ID       string
	Position int
	Input    OptionInput
}

// Empty reports whether the diff changes nothing.
func (d OptionDiff) Empty() bool {
	return len(d.Create) == 0 && len(d.Update) == 0 && len(d.Delete) == 0
}

// DiffOptions computes the reconciliation plan between the live option ids
// of a question and an admin payload.
//
// # Rules
//   - Input without id            → create at its payload position.
//   - Input with a live id        → update in place, move to payload position.
//   - Input marked Deleted        → soft-delete (same as omitting the id).
//   - Live id absent from payload → soft-delete.
//   - Input with an unknown id    → [apperr.Conflict]; the admin edited a
//     stale view and must refresh before resubmitting.
//
// Deleted entries do not occupy a position: surviving entries are numbered
// by their order among themselves, so the result stays dense.
//
// The function is pure and deterministic: the same live set and payload
// always produce the same plan, and re-applying a payload that matches the
// current state plans only position-preserving updates.
func DiffOptions(liveIDs []string, inputs []OptionInput) (OptionDiff, error) {
	live := make(map[string]bool, len(liveIDs))
	for _, id := range liveIDs {
		live[id] = true
	}

	var diff OptionDiff
	referenced := make(map[string]bool, len(inputs))

	position := 0
	for _, input := range inputs {
		// An explicitly deleted entry is treated exactly like an omitted one:
		// skipping it here leaves its id unreferenced, so the sweep below
		// plans the soft-delete. Deleting an unknown id is a no-op.
		if input.Deleted {
			continue
		}

		if input.ID == nil {
			diff.Create = append(diff.Create, PlannedOption{Position: position, Input: input})
			position++
			continue
		}

		id := *input.ID
		if !live[id] {
			return OptionDiff{}, apperr.Conflict(
				fmt.Sprintf("Option %s does not exist on this question; refresh and retry", id))
		}
		if referenced[id] {
			return OptionDiff{}, apperr.Conflict(
				fmt.Sprintf("Option %s appears twice in the payload", id))
		}
		referenced[id] = true

		diff.Update = append(diff.Update, PlannedOption{ID: id, Position: position, Input: input})
		position++
	}

	// Stable delete order for deterministic SQL and tests.
	for _, id := range liveIDs {
		if !referenced[id] {
			diff.Delete = append(diff.Delete, id)
		}
	}

	return diff, nil
}
