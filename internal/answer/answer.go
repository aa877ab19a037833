// Copyright (c) 2026 Meserio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package answer owns firm responses to questionnaire questions.

An answer's value shape follows its question's type: scalar types carry one
text value (numbers and dates are validated, then stored canonically as
text), the free-text type carries per-language translations, and select
types reference option ids. Answers are upserted per (firm, question) pair
and a full form submission is all-or-nothing.

Reads never fail on referential decay: answers pointing at options that
were since soft-deleted resolve to a neutral "no answer" display while the
incident is logged for operators.
*/
package answer

import (
	"time"
)

// Translation is one per-language body of a free-text answer.
type Translation struct {
	LanguageCode string `json:"language_code"`
	Content      string `json:"content"`
}

// Language implements [i18n.Localized].
func (t Translation) Language() string { return t.LanguageCode }

// Answer is one firm's stored response to one question.
//
// Exactly one value carrier is populated, matching the question type:
// Value for string/number/date, Translations for text,
// SelectedOptionID for single_select, SelectedOptionIDs for multi_select.
type Answer struct {
	ID         string `json:"id"`
	FirmID     string `json:"firm_id"`
	QuestionID string `json:"question_id"`

	Value             *string       `json:"value,omitempty"`
	Translations      []Translation `json:"translations,omitempty"`
	SelectedOptionID  *string       `json:"selected_option_id,omitempty"`
	SelectedOptionIDs []string      `json:"selected_option_ids,omitempty"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
