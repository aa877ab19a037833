// Copyright (c) 2026 Meserio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package answer

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/meserio/internal/platform/constants"
	"github.com/taibuivan/meserio/internal/question"
	"github.com/taibuivan/meserio/pkg/pointer"
)

// recordingHandler captures slog records so tests can assert on the
// operator channel.
type recordingHandler struct {
	records []slog.Record
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	h.records = append(h.records, r)
	return nil
}
func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler      { return h }

func newRecordedResolver() (*Resolver, *recordingHandler) {
	handler := &recordingHandler{}
	return NewResolver(slog.New(handler)), handler
}

func selectQuestion(questionType question.Type, options ...*question.Option) *question.Question {
	return &question.Question{
		ID:      "q-select",
		Type:    questionType,
		Status:  question.StatusActive,
		Options: options,
	}
}

func option(id, value, enLabel, roLabel string) *question.Option {
	translations := []question.OptionTranslation{{LanguageCode: "en", Label: enLabel}}
	if roLabel != "" {
		translations = append(translations, question.OptionTranslation{LanguageCode: "ro", Label: roLabel})
	}
	return &question.Option{ID: id, Value: value, Translations: translations}
}

func TestDisplayScalarValue(t *testing.T) {
	resolver, _ := newRecordedResolver()
	q := &question.Question{ID: "q1", Type: question.TypeNumber}

	assert.Equal(t, "42", resolver.Display(q, &Answer{Value: pointer.To("42")}, "en"))
	assert.Equal(t, constants.NoAnswerDisplay, resolver.Display(q, nil, "en"))
	assert.Equal(t, constants.NoAnswerDisplay, resolver.Display(q, &Answer{}, "en"))
}

func TestDisplayTextFollowsFallbackChain(t *testing.T) {
	resolver, _ := newRecordedResolver()
	q := &question.Question{ID: "q1", Type: question.TypeText}
	answer := &Answer{Translations: []Translation{
		{LanguageCode: "en", Content: "Family business since 1994"},
		{LanguageCode: "ro", Content: "Afacere de familie din 1994"},
	}}

	assert.Equal(t, "Afacere de familie din 1994", resolver.Display(q, answer, "ro"))
	assert.Equal(t, "Family business since 1994", resolver.Display(q, answer, "de"))
}

func TestDisplaySingleSelectLabel(t *testing.T) {
	resolver, _ := newRecordedResolver()
	q := selectQuestion(question.TypeSingleSelect, option("opt-yes", "yes", "Yes", "Da"))
	answer := &Answer{SelectedOptionID: pointer.To("opt-yes")}

	assert.Equal(t, "Da", resolver.Display(q, answer, "ro"))
	assert.Equal(t, "Yes", resolver.Display(q, answer, "en"))
}

func TestDisplayDanglingSingleSelectDegradesAndReports(t *testing.T) {
	resolver, handler := newRecordedResolver()

	deleted := option("opt-old", "old", "Old choice", "")
	now := time.Now()
	deleted.DeletedAt = &now

	q := selectQuestion(question.TypeSingleSelect, deleted)
	answer := &Answer{ID: "a1", FirmID: "f1", SelectedOptionID: pointer.To("opt-old")}

	assert.Equal(t, constants.NoAnswerDisplay, resolver.Display(q, answer, "en"))
	require.Len(t, handler.records, 1)
	assert.Equal(t, "data_integrity_violation", handler.records[0].Message)
}

func TestDisplayMultiSelectJoinsInOptionOrder(t *testing.T) {
	resolver, _ := newRecordedResolver()
	q := selectQuestion(question.TypeMultiSelect,
		option("opt-a", "cash", "Cash", ""),
		option("opt-b", "card", "Card", ""),
		option("opt-c", "transfer", "Bank transfer", ""),
	)
	// Selection order in the answer does not matter; display follows the
	// option list's sort order.
	answer := &Answer{SelectedOptionIDs: []string{"opt-c", "opt-a"}}

	assert.Equal(t, "Cash"+constants.MultiValueSeparator+"Bank transfer", resolver.Display(q, answer, "en"))
}

func TestDisplayMultiSelectSkipsDanglingSelections(t *testing.T) {
	resolver, handler := newRecordedResolver()
	q := selectQuestion(question.TypeMultiSelect, option("opt-a", "cash", "Cash", ""))
	answer := &Answer{ID: "a1", SelectedOptionIDs: []string{"opt-a", "opt-gone"}}

	assert.Equal(t, "Cash", resolver.Display(q, answer, "en"))
	require.Len(t, handler.records, 1)

	// Every selection dangling leaves nothing to show.
	orphan := &Answer{ID: "a2", SelectedOptionIDs: []string{"opt-gone"}}
	assert.Equal(t, constants.NoAnswerDisplay, resolver.Display(q, orphan, "en"))
}
