// Copyright (c) 2026 Meserio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package question owns the dynamic questionnaire schema: question
definitions, their per-language texts, and their select options.

A question is either universal (asked of every firm) or bound to one
category; both share one shape family and one table. Free-form types
(string, text, number, date) carry no options; select types (single_select,
multi_select) carry an ordered option list that is edited through
diff-based reconciliation so that existing answers keep pointing at stable
option ids.

Questions are soft-deleted and options are soft-deleted; answer rows
referencing them stay resolvable forever.
*/
package question

import (
	"time"
)

// Scope discriminates who a question is asked of.
type Scope string

const (
	// ScopeUniversal questions are part of every firm's profile form.
	ScopeUniversal Scope = "universal"
	// ScopeCategory questions are asked only of firms in one category.
	ScopeCategory Scope = "category"
)

// Type is the answer value shape of a question.
type Type string

const (
	TypeString       Type = "string"
	TypeText         Type = "text"
	TypeNumber       Type = "number"
	TypeDate         Type = "date"
	TypeSingleSelect Type = "single_select"
	TypeMultiSelect  Type = "multi_select"
)

// IsSelect reports whether the type answers by choosing among options.
func (t Type) IsSelect() bool {
	return t == TypeSingleSelect || t == TypeMultiSelect
}

// Valid reports whether t is a known question type.
func (t Type) Valid() bool {
	switch t {
	case TypeString, TypeText, TypeNumber, TypeDate, TypeSingleSelect, TypeMultiSelect:
		return true
	}
	return false
}

// Status is the lifecycle state of a question.
type Status string

const (
	// StatusDraft questions are being authored and never appear on forms.
	StatusDraft Status = "draft"
	// StatusActive questions are collected and rendered.
	StatusActive Status = "active"
	// StatusRetired questions are no longer asked; existing answers remain readable.
	StatusRetired Status = "retired"
)

// Translation is the per-language display record of a question.
type Translation struct {
	LanguageCode string  `json:"language_code"`
	Title        string  `json:"title"`
	Display      *string `json:"display,omitempty"`
	Description  *string `json:"description,omitempty"`
	Placeholder  *string `json:"placeholder,omitempty"`
}

// Language implements [i18n.Localized].
func (t Translation) Language() string { return t.LanguageCode }

// OptionTranslation is the per-language display record of a select option.
type OptionTranslation struct {
	LanguageCode string  `json:"language_code"`
	Label        string  `json:"label"`
	Display      *string `json:"display,omitempty"`
	Description  *string `json:"description,omitempty"`
}

// Language implements [i18n.Localized].
func (t OptionTranslation) Language() string { return t.LanguageCode }

// Option is one selectable choice of a select-type question.
//
// Options keep their id for the whole lifetime of the question; edits
// reconcile against existing ids instead of replacing rows, so historical
// answers never dangle while an option merely changes its wording.
type Option struct {
	ID         string `json:"id"`
	QuestionID string `json:"question_id"`
	// Value is a machine-readable key stable across renames (e.g. "yes").
	Value        string              `json:"value"`
	SortOrder    int                 `json:"sort_order"`
	Metadata     map[string]any      `json:"metadata,omitempty"`
	Translations []OptionTranslation `json:"translations"`

	CreatedAt time.Time  `json:"-"`
	UpdatedAt time.Time  `json:"-"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// IsDeleted reports whether the option has been soft-deleted.
func (o *Option) IsDeleted() bool { return o.DeletedAt != nil }

// Question is one questionnaire entry, universal or category-scoped.
type Question struct {
	ID    string `json:"id"`
	Scope Scope  `json:"scope"`
	// CategoryID is set iff Scope is [ScopeCategory].
	CategoryID *string `json:"category_id,omitempty"`
	Type       Type    `json:"question_type"`
	Icon       *string `json:"icon,omitempty"`
	SortOrder  int     `json:"sort_order"`
	// IsRequired questions must be answered before a firm profile is complete.
	IsRequired bool `json:"is_required"`
	// IsFilter questions feed the public search facets.
	IsFilter bool   `json:"is_filter"`
	Status   Status `json:"status"`

	Translations []Translation `json:"translations"`
	// Options holds the live options in sort order (select types only).
	Options []*Option `json:"options,omitempty"`

	CreatedAt time.Time  `json:"-"`
	UpdatedAt time.Time  `json:"-"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// IsDeleted reports whether the question has been soft-deleted.
func (q *Question) IsDeleted() bool { return q.DeletedAt != nil }

// LiveOptions returns the non-deleted options in sort order.
func (q *Question) LiveOptions() []*Option {
	var live []*Option
	for _, option := range q.Options {
		if !option.IsDeleted() {
			live = append(live, option)
		}
	}
	return live
}

// OptionByID returns the live option with the given id, or nil.
func (q *Question) OptionByID(id string) *Option {
	for _, option := range q.Options {
		if option.ID == id && !option.IsDeleted() {
			return option
		}
	}
	return nil
}
