// Copyright (c) 2026 Meserio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Business logic (Use Cases) of the answer package.
package answer

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/taibuivan/meserio/internal/platform/apperr"
	"github.com/taibuivan/meserio/internal/platform/validate"
	"github.com/taibuivan/meserio/internal/question"
	"github.com/taibuivan/meserio/pkg/i18n"
	"github.com/taibuivan/meserio/pkg/uuidv7"
)

// dateLayout is the wire format for date answers.
const dateLayout = "2006-01-02"

// maxValueLength bounds scalar answer values.
const maxValueLength = 500

// Service implements answer submission and profile reading use cases.
type Service struct {
	repository Repository
	questions  QuestionSource
	resolver   *Resolver
	languages  []string
}

// NewService constructs an answer [Service].
func NewService(repository Repository, questions QuestionSource, resolver *Resolver, languages []string) *Service {
	return &Service{
		repository: repository,
		questions:  questions,
		resolver:   resolver,
		languages:  languages,
	}
}

// TranslationInput is one per-language body of a free-text answer.
type TranslationInput struct {
	LanguageCode string `json:"language_code"`
	Content      string `json:"content"`
}

// SubmissionInput is one answer entry in a form submission. Exactly one
// value carrier must be set, matching the target question's type.
type SubmissionInput struct {
	QuestionID        string             `json:"question_id"`
	Value             *string            `json:"value"`
	Translations      []TranslationInput `json:"translations"`
	SelectedOptionID  *string            `json:"selected_option_id"`
	SelectedOptionIDs []string           `json:"selected_option_ids"`
}

// ── Submission ───────────────────────────────────────────────────────────────

// Submit validates and persists a firm's answers to its category form,
// all-or-nothing.
//
// # Business Rules
//   - Every entry must target an active question of the form; anything else
//     fails with INVALID_REFERENCE.
//   - Each value must match its question's type shape: scalar types take a
//     value, text takes translations, select types take option ids belonging
//     to the question. Malformed entries are all reported together as one
//     INVALID_ANSWER_SHAPE error with per-question details.
//   - Every required question of the form must be answered. Missing ones are
//     all reported together as field errors, so the firm console can mark
//     each gap in one round trip.
func (service *Service) Submit(ctx context.Context, firmID, categoryID string, inputs []SubmissionInput) ([]*Answer, error) {
	form, err := service.questions.ListForForm(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*question.Question, len(form))
	for _, q := range form {
		byID[q.ID] = q
	}

	answered := make(map[string]bool, len(inputs))
	answers := make([]*Answer, 0, len(inputs))
	var malformed []apperr.FieldError
	for _, input := range inputs {
		q, ok := byID[input.QuestionID]
		if !ok {
			return nil, apperr.InvalidReference(
				fmt.Sprintf("Question %s is not part of this form", input.QuestionID))
		}
		if answered[q.ID] {
			return nil, apperr.ValidationError("Validation failed", apperr.FieldError{
				Field:   q.ID,
				Message: "Question answered more than once",
			})
		}
		answered[q.ID] = true

		answer, err := service.buildAnswer(q, input)
		if err != nil {
			// Shape mistakes are collected across the whole submission so
			// the firm console can mark every broken entry in one round
			// trip; reference errors keep failing fast.
			if ae := apperr.As(err); ae != nil && ae.Code == "INVALID_ANSWER_SHAPE" {
				malformed = append(malformed, apperr.FieldError{Field: q.ID, Message: ae.Message})
				continue
			}
			return nil, err
		}
		answers = append(answers, answer)
	}
	if len(malformed) > 0 {
		return nil, apperr.InvalidAnswerShape(
			"One or more answers do not match their question's shape").WithDetails(malformed...)
	}

	// Required questions are checked after shape validation so a submission
	// is either structurally broken or incomplete, never reported as both.
	var missing []apperr.FieldError
	for _, q := range form {
		if q.IsRequired && !answered[q.ID] {
			missing = append(missing, apperr.FieldError{
				Field:   q.ID,
				Message: "This question is required",
			})
		}
	}
	if len(missing) > 0 {
		return nil, apperr.ValidationError("Required questions are missing", missing...)
	}

	if err := service.repository.SaveAll(ctx, firmID, answers); err != nil {
		return nil, err
	}

	return answers, nil
}

// ── Reads ────────────────────────────────────────────────────────────────────

// ListByFirm returns the firm's raw stored answers, including answers to
// questions that have since been retired or deleted.
func (service *Service) ListByFirm(ctx context.Context, firmID string) ([]*Answer, error) {
	return service.repository.ListByFirm(ctx, firmID)
}

// ProfileEntry is one resolved question/answer pair of a firm's public
// profile.
type ProfileEntry struct {
	QuestionID string        `json:"question_id"`
	Type       question.Type `json:"question_type"`
	IsFilter   bool          `json:"is_filter"`
	Title      string        `json:"title"`
	Display    string        `json:"display"`
}

// Profile renders a firm's answers against its category form for one
// language. Every active question appears; unanswered and decayed entries
// resolve to the neutral no-answer display instead of failing the page.
func (service *Service) Profile(ctx context.Context, firmID, categoryID, language string) ([]*ProfileEntry, error) {
	form, err := service.questions.ListForForm(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	answers, err := service.repository.ListByFirm(ctx, firmID)
	if err != nil {
		return nil, err
	}
	byQuestion := make(map[string]*Answer, len(answers))
	for _, answer := range answers {
		byQuestion[answer.QuestionID] = answer
	}

	profile := make([]*ProfileEntry, 0, len(form))
	for _, q := range form {
		projected := projectTitle(q, language)
		profile = append(profile, &ProfileEntry{
			QuestionID: q.ID,
			Type:       q.Type,
			IsFilter:   q.IsFilter,
			Title:      projected,
			Display:    service.resolver.Display(q, byQuestion[q.ID], language),
		})
	}

	return profile, nil
}

// ── Internals ────────────────────────────────────────────────────────────────

// buildAnswer validates one submission entry against its question's type
// and converts it into a storable [Answer].
func (service *Service) buildAnswer(q *question.Question, input SubmissionInput) (*Answer, error) {
	if err := checkCarriers(q, input); err != nil {
		return nil, err
	}

	answer := &Answer{
		ID:         uuidv7.New(),
		QuestionID: q.ID,
	}

	switch q.Type {
	case question.TypeString, question.TypeText, question.TypeNumber, question.TypeDate:
		return service.fillValueAnswer(q, input, answer)
	case question.TypeSingleSelect:
		option := q.OptionByID(*input.SelectedOptionID)
		if option == nil {
			return nil, apperr.InvalidReference(
				fmt.Sprintf("Option %s does not belong to question %s", *input.SelectedOptionID, q.ID))
		}
		answer.SelectedOptionID = input.SelectedOptionID
		return answer, nil
	case question.TypeMultiSelect:
		seen := make(map[string]bool, len(input.SelectedOptionIDs))
		for _, optionID := range input.SelectedOptionIDs {
			if seen[optionID] {
				return nil, apperr.InvalidAnswerShape(
					fmt.Sprintf("Option %s selected more than once", optionID))
			}
			seen[optionID] = true
			if q.OptionByID(optionID) == nil {
				return nil, apperr.InvalidReference(
					fmt.Sprintf("Option %s does not belong to question %s", optionID, q.ID))
			}
		}
		answer.SelectedOptionIDs = input.SelectedOptionIDs
		return answer, nil
	}

	return nil, apperr.InvalidAnswerShape("Unknown question type")
}

// fillValueAnswer handles the value-carrying types: string, text (via
// translations), number, and date.
func (service *Service) fillValueAnswer(q *question.Question, input SubmissionInput, answer *Answer) (*Answer, error) {
	if q.Type == question.TypeText {
		translations, err := service.buildTranslations(q, input.Translations)
		if err != nil {
			return nil, err
		}
		answer.Translations = translations
		return answer, nil
	}

	value := *input.Value
	if value == "" || len(value) > maxValueLength {
		return nil, apperr.InvalidAnswerShape(
			fmt.Sprintf("Question %s needs a value of 1 to %d characters", q.ID, maxValueLength))
	}

	switch q.Type {
	case question.TypeNumber:
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return nil, apperr.InvalidAnswerShape(
				fmt.Sprintf("Question %s expects a numeric value", q.ID))
		}
	case question.TypeDate:
		if _, err := time.Parse(dateLayout, value); err != nil {
			return nil, apperr.InvalidAnswerShape(
				fmt.Sprintf("Question %s expects a date in %s format", q.ID, dateLayout))
		}
	}

	answer.Value = &value
	return answer, nil
}

// checkCarriers verifies that exactly the carrier matching the question
// type is populated.
func checkCarriers(q *question.Question, input SubmissionInput) error {
	hasValue := input.Value != nil
	hasTranslations := len(input.Translations) > 0
	hasSingle := input.SelectedOptionID != nil
	hasMulti := len(input.SelectedOptionIDs) > 0

	expected := map[question.Type]bool{
		question.TypeString:       hasValue && !hasTranslations && !hasSingle && !hasMulti,
		question.TypeNumber:       hasValue && !hasTranslations && !hasSingle && !hasMulti,
		question.TypeDate:         hasValue && !hasTranslations && !hasSingle && !hasMulti,
		question.TypeText:         hasTranslations && !hasValue && !hasSingle && !hasMulti,
		question.TypeSingleSelect: hasSingle && !hasValue && !hasTranslations && !hasMulti,
		question.TypeMultiSelect:  hasMulti && !hasValue && !hasTranslations && !hasSingle,
	}

	if !expected[q.Type] {
		return apperr.InvalidAnswerShape(
			fmt.Sprintf("Answer shape does not match question %s of type %s", q.ID, q.Type))
	}

	return nil
}

func (service *Service) buildTranslations(q *question.Question, inputs []TranslationInput) ([]Translation, error) {
	v := &validate.Validator{}
	seen := make(map[string]bool, len(inputs))
	for _, input := range inputs {
		v.Language("translations.language_code", input.LanguageCode)
		v.Custom("translations.language_code",
			len(service.languages) > 0 && !service.isSupported(input.LanguageCode), "Language is not supported")
		v.Custom("translations.language_code", seen[input.LanguageCode], "Duplicate language code")
		v.Required("translations.content", input.Content)
		seen[input.LanguageCode] = true
	}
	if v.HasErrors() {
		return nil, apperr.InvalidAnswerShape(
			fmt.Sprintf("Question %s has an invalid translation set", q.ID))
	}

	translations := make([]Translation, len(inputs))
	for i, input := range inputs {
		translations[i] = Translation{LanguageCode: input.LanguageCode, Content: input.Content}
	}
	return translations, nil
}

func (service *Service) isSupported(language string) bool {
	for _, code := range service.languages {
		if code == language {
			return true
		}
	}
	return false
}

func projectTitle(q *question.Question, language string) string {
	return i18n.Resolve(q.Translations, language).Title
}
