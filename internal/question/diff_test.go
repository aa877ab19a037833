// Copyright (c) 2026 Meserio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package question

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/meserio/internal/platform/apperr"
	"github.com/taibuivan/meserio/pkg/pointer"
)

func TestDiffOptionsPlansCreatesUpdatesAndDeletes(t *testing.T) {
	liveIDs := []string{"opt-a", "opt-b", "opt-c"}
	inputs := []OptionInput{
		{ID: pointer.To("opt-c"), Value: "c"},    // moved to front
		{Value: "new"},                           // created in the middle
		{ID: pointer.To("opt-a"), Value: "a-v2"}, // renamed, moved last
		// opt-b omitted → soft-deleted
	}

	diff, err := DiffOptions(liveIDs, inputs)
	require.NoError(t, err)

	require.Len(t, diff.Create, 1)
	assert.Equal(t, 1, diff.Create[0].Position)
	assert.Equal(t, "new", diff.Create[0].Input.Value)

	require.Len(t, diff.Update, 2)
	assert.Equal(t, "opt-c", diff.Update[0].ID)
	assert.Equal(t, 0, diff.Update[0].Position)
	assert.Equal(t, "opt-a", diff.Update[1].ID)
	assert.Equal(t, 2, diff.Update[1].Position)

	assert.Equal(t, []string{"opt-b"}, diff.Delete)
}

func TestDiffOptionsRejectsUnknownID(t *testing.T) {
	_, err := DiffOptions([]string{"opt-a"}, []OptionInput{
		{ID: pointer.To("opt-zz"), Value: "ghost"},
	})

	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)
	assert.True(t, apperr.IsRetryable(err))
}

func TestDiffOptionsRejectsDuplicateID(t *testing.T) {
	_, err := DiffOptions([]string{"opt-a"}, []OptionInput{
		{ID: pointer.To("opt-a"), Value: "x"},
		{ID: pointer.To("opt-a"), Value: "y"},
	})

	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)
}

func TestDiffOptionsEmptyPayloadDeletesEverything(t *testing.T) {
	diff, err := DiffOptions([]string{"opt-a", "opt-b"}, nil)
	require.NoError(t, err)

	assert.Empty(t, diff.Create)
	assert.Empty(t, diff.Update)
	assert.Equal(t, []string{"opt-a", "opt-b"}, diff.Delete)
}

// A payload that matches current state plans only in-place updates; applying
// it again changes nothing structurally.
func TestDiffOptionsIsIdempotentOnMatchingPayload(t *testing.T) {
	liveIDs := []string{"opt-a", "opt-b"}
	inputs := []OptionInput{
		{ID: pointer.To("opt-a"), Value: "a"},
		{ID: pointer.To("opt-b"), Value: "b"},
	}

	first, err := DiffOptions(liveIDs, inputs)
	require.NoError(t, err)
	second, err := DiffOptions(liveIDs, inputs)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Empty(t, first.Create)
	assert.Empty(t, first.Delete)
	require.Len(t, first.Update, 2)
	assert.Equal(t, 0, first.Update[0].Position)
	assert.Equal(t, 1, first.Update[1].Position)
}

func TestDiffOptionsExplicitDeleteSkipsPosition(t *testing.T) {
	liveIDs := []string{"opt-a", "opt-b"}
	inputs := []OptionInput{
		{ID: pointer.To("opt-a"), Deleted: true},
		{ID: pointer.To("opt-b"), Value: "b"},
	}

	diff, err := DiffOptions(liveIDs, inputs)
	require.NoError(t, err)

	assert.Empty(t, diff.Create)
	require.Len(t, diff.Update, 1)
	assert.Equal(t, "opt-b", diff.Update[0].ID)
	assert.Equal(t, 0, diff.Update[0].Position)
	assert.Equal(t, []string{"opt-a"}, diff.Delete)
}

func TestDiffOptionsAllNewOnEmptyQuestion(t *testing.T) {
	diff, err := DiffOptions(nil, []OptionInput{
		{Value: "yes"},
		{Value: "no"},
	})
	require.NoError(t, err)

	require.Len(t, diff.Create, 2)
	assert.Equal(t, 0, diff.Create[0].Position)
	assert.Equal(t, 1, diff.Create[1].Position)
	assert.Empty(t, diff.Update)
	assert.Empty(t, diff.Delete)
}
