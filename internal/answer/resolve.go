// Copyright (c) 2026 Meserio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package answer

import (
	"log/slog"
	"strings"

	"github.com/taibuivan/meserio/internal/platform/constants"
	"github.com/taibuivan/meserio/internal/question"
	"github.com/taibuivan/meserio/pkg/i18n"
)

// Resolver turns stored answers into display strings for one language.
//
// Resolution is total: whatever the state of the data, every answer
// resolves to some string. Referential decay — an answer pointing at an
// option that was soft-deleted after submission — degrades to the neutral
// no-answer display and is reported through the operator log, never to the
// visitor.
type Resolver struct {
	logger *slog.Logger
}

// NewResolver constructs a [Resolver]. A nil logger falls back to the
// process default.
func NewResolver(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{logger: logger}
}

// Display resolves one answer against its question's schema.
//
// # Per Type
//   - string/number/date : the stored value verbatim.
//   - text               : the translation for the requested language, via
//     the standard fallback chain.
//   - single_select      : the selected option's label in the requested language.
//   - multi_select       : the selected labels joined in option sort order;
//     dangling selections are skipped.
//
// A nil answer, an empty value, or a fully dangling selection resolves to
// [constants.NoAnswerDisplay].
func (resolver *Resolver) Display(q *question.Question, answer *Answer, language string) string {
	if answer == nil {
		return constants.NoAnswerDisplay
	}

	switch q.Type {
	case question.TypeString, question.TypeNumber, question.TypeDate:
		if answer.Value == nil || *answer.Value == "" {
			return constants.NoAnswerDisplay
		}
		return *answer.Value

	case question.TypeText:
		resolved := i18n.Resolve(answer.Translations, language)
		if resolved.Content == "" {
			return constants.NoAnswerDisplay
		}
		return resolved.Content

	case question.TypeSingleSelect:
		if answer.SelectedOptionID == nil {
			return constants.NoAnswerDisplay
		}
		option := q.OptionByID(*answer.SelectedOptionID)
		if option == nil {
			resolver.reportDangling(q, answer, *answer.SelectedOptionID)
			return constants.NoAnswerDisplay
		}
		return optionLabel(option, language)

	case question.TypeMultiSelect:
		labels := resolver.multiLabels(q, answer, language)
		if len(labels) == 0 {
			return constants.NoAnswerDisplay
		}
		return strings.Join(labels, constants.MultiValueSeparator)
	}

	return constants.NoAnswerDisplay
}

// multiLabels collects the labels of a multi-select answer in the option
// list's sort order, skipping and reporting dangling selections.
func (resolver *Resolver) multiLabels(q *question.Question, answer *Answer, language string) []string {
	selected := make(map[string]bool, len(answer.SelectedOptionIDs))
	for _, id := range answer.SelectedOptionIDs {
		selected[id] = true
	}

	var labels []string
	for _, option := range q.LiveOptions() {
		if selected[option.ID] {
			labels = append(labels, optionLabel(option, language))
			delete(selected, option.ID)
		}
	}

	for id := range selected {
		resolver.reportDangling(q, answer, id)
	}

	return labels
}

func optionLabel(option *question.Option, language string) string {
	return i18n.Resolve(option.Translations, language).Label
}

// reportDangling surfaces referential decay to operators without failing
// the read.
func (resolver *Resolver) reportDangling(q *question.Question, answer *Answer, optionID string) {
	resolver.logger.Error("data_integrity_violation",
		slog.String("kind", "dangling_answer_option"),
		slog.String("answer_id", answer.ID),
		slog.String("firm_id", answer.FirmID),
		slog.String("question_id", q.ID),
		slog.String("option_id", optionID),
	)
}
