// Copyright (c) 2026 Meserio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package order implements the pure logic behind dense sibling ordering.

Every ordered collection in the platform (clusters, categories within a
cluster, services within a category, questions, options) keeps a gapless
0-based sort order across its live members. This package validates reorder
permutations and computes renumberings; the owning repository applies the
result inside a single transaction.

A reorder request must list exactly the current live members of the sibling
set. Anything else means the caller acted on a stale view and must refresh
before retrying.
*/
package order

import (
	"fmt"
	"strings"
)

// PermutationError describes why a proposed ordering is not a permutation of
// the current sibling set. It is a structural error: retrying the same
// payload can never succeed.
type PermutationError struct {
	// Missing lists current member ids absent from the proposal.
	Missing []string
	// Unknown lists proposed ids that are not current members.
	Unknown []string
	// Duplicated lists ids appearing more than once in the proposal.
	Duplicated []string
}

// Error implements the error interface.
func (e *PermutationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing ids: %s", strings.Join(e.Missing, ", ")))
	}
	if len(e.Unknown) > 0 {
		parts = append(parts, fmt.Sprintf("unknown ids: %s", strings.Join(e.Unknown, ", ")))
	}
	if len(e.Duplicated) > 0 {
		parts = append(parts, fmt.Sprintf("duplicated ids: %s", strings.Join(e.Duplicated, ", ")))
	}
	if len(parts) == 0 {
		return "incomplete reorder"
	}
	return "incomplete reorder: " + strings.Join(parts, "; ")
}

// ValidatePermutation checks that proposed is a permutation of exactly the
// ids in current. It returns a [*PermutationError] describing every
// discrepancy at once, or nil if the proposal is valid.
func ValidatePermutation(current, proposed []string) error {
	currentSet := make(map[string]bool, len(current))
	for _, id := range current {
		currentSet[id] = true
	}

	permErr := &PermutationError{}
	seen := make(map[string]bool, len(proposed))

	for _, id := range proposed {
		if seen[id] {
			permErr.Duplicated = append(permErr.Duplicated, id)
			continue
		}
		seen[id] = true

		if !currentSet[id] {
			permErr.Unknown = append(permErr.Unknown, id)
		}
	}

	for _, id := range current {
		if !seen[id] {
			permErr.Missing = append(permErr.Missing, id)
		}
	}

	if len(permErr.Missing) > 0 || len(permErr.Unknown) > 0 || len(permErr.Duplicated) > 0 {
		return permErr
	}
	return nil
}

// Renumber maps each id in the proposed sequence to its dense 0-based sort
// order. The caller is expected to have validated the permutation first.
func Renumber(proposed []string) map[string]int {
	orders := make(map[string]int, len(proposed))
	for index, id := range proposed {
		orders[id] = index
	}
	return orders
}

// IsDense reports whether the given sort orders form a contiguous 0..n-1
// range with no gaps or duplicates.
func IsDense(orders []int) bool {
	seen := make(map[int]bool, len(orders))
	for _, o := range orders {
		if o < 0 || o >= len(orders) || seen[o] {
			return false
		}
		seen[o] = true
	}
	return true
}
