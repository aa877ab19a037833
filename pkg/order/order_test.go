// Copyright (c) 2026 Meserio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package order_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/meserio/pkg/order"
)

func TestValidatePermutation(t *testing.T) {
	tests := []struct {
		name       string
		current    []string
		proposed   []string
		missing    []string
		unknown    []string
		duplicated []string
	}{
		{
			name:     "valid_permutation",
			current:  []string{"a", "b", "c"},
			proposed: []string{"c", "a", "b"},
		},
		{
			name:     "identity",
			current:  []string{"a", "b"},
			proposed: []string{"a", "b"},
		},
		{
			name:     "empty_sets",
			current:  nil,
			proposed: nil,
		},
		{
			name:     "stale_view_missing_member",
			current:  []string{"a", "b", "d"},
			proposed: []string{"d", "a"},
			missing:  []string{"b"},
		},
		{
			name:     "foreign_id",
			current:  []string{"a", "b"},
			proposed: []string{"a", "b", "x"},
			unknown:  []string{"x"},
		},
		{
			name:       "duplicate_id",
			current:    []string{"a", "b"},
			proposed:   []string{"a", "a"},
			missing:    []string{"b"},
			duplicated: []string{"a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := order.ValidatePermutation(tt.current, tt.proposed)

			if len(tt.missing) == 0 && len(tt.unknown) == 0 && len(tt.duplicated) == 0 {
				assert.NoError(t, err)
				return
			}

			var permErr *order.PermutationError
			require.ErrorAs(t, err, &permErr)
			assert.Equal(t, tt.missing, permErr.Missing)
			assert.Equal(t, tt.unknown, permErr.Unknown)
			assert.Equal(t, tt.duplicated, permErr.Duplicated)
		})
	}
}

func TestRenumber(t *testing.T) {
	orders := order.Renumber([]string{"c", "a", "b"})

	assert.Equal(t, map[string]int{"c": 0, "a": 1, "b": 2}, orders)
	assert.Empty(t, order.Renumber(nil))
}

func TestIsDense(t *testing.T) {
	assert.True(t, order.IsDense([]int{0, 1, 2}))
	assert.True(t, order.IsDense([]int{2, 0, 1}))
	assert.True(t, order.IsDense(nil))
	assert.False(t, order.IsDense([]int{0, 2, 3}), "gap")
	assert.False(t, order.IsDense([]int{0, 1, 1}), "duplicate")
	assert.False(t, order.IsDense([]int{-1, 0}), "negative")
}
