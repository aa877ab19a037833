// Copyright (c) 2026 Meserio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package answer

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/meserio/internal/platform/apperr"
	"github.com/taibuivan/meserio/internal/platform/constants"
	"github.com/taibuivan/meserio/internal/question"
	"github.com/taibuivan/meserio/pkg/pointer"
)

const (
	testFirmID     = "018f2a5e-0000-7000-8000-0000000000f1"
	testCategoryID = "018f2a5e-0000-7000-8000-00000000aaaa"
)

// fakeQuestionSource serves a fixed form.
type fakeQuestionSource struct {
	form []*question.Question
}

func (f *fakeQuestionSource) ListForForm(context.Context, string) ([]*question.Question, error) {
	return f.form, nil
}

func (f *fakeQuestionSource) FindByID(_ context.Context, id string, _ bool) (*question.Question, error) {
	for _, q := range f.form {
		if q.ID == id {
			return q, nil
		}
	}
	return nil, apperr.NotFound("Question")
}

// fakeAnswerRepository stores answers per firm and question, upsert-style.
type fakeAnswerRepository struct {
	byFirm map[string]map[string]*Answer
}

func (f *fakeAnswerRepository) SaveAll(_ context.Context, firmID string, answers []*Answer) error {
	if f.byFirm == nil {
		f.byFirm = make(map[string]map[string]*Answer)
	}
	if f.byFirm[firmID] == nil {
		f.byFirm[firmID] = make(map[string]*Answer)
	}
	for _, answer := range answers {
		answer.FirmID = firmID
		if existing := f.byFirm[firmID][answer.QuestionID]; existing != nil {
			answer.ID = existing.ID
		}
		f.byFirm[firmID][answer.QuestionID] = answer
	}
	return nil
}

func (f *fakeAnswerRepository) ListByFirm(_ context.Context, firmID string) ([]*Answer, error) {
	var answers []*Answer
	for _, answer := range f.byFirm[firmID] {
		answers = append(answers, answer)
	}
	return answers, nil
}

// ── Fixtures ─────────────────────────────────────────────────────────────────

func activeQuestion(id string, questionType question.Type, required bool, options ...*question.Option) *question.Question {
	return &question.Question{
		ID:         id,
		Scope:      question.ScopeUniversal,
		Type:       questionType,
		Status:     question.StatusActive,
		IsRequired: required,
		Translations: []question.Translation{
			{LanguageCode: "en", Title: "Question " + id},
		},
		Options: options,
	}
}

func selectOption(id, value, label string) *question.Option {
	return &question.Option{
		ID:    id,
		Value: value,
		Translations: []question.OptionTranslation{
			{LanguageCode: "en", Label: label},
		},
	}
}

func newTestService(form ...*question.Question) (*Service, *fakeAnswerRepository) {
	repository := &fakeAnswerRepository{}
	source := &fakeQuestionSource{form: form}
	resolver := NewResolver(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewService(repository, source, resolver, []string{"en", "ro"}), repository
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestSubmitStoresEveryAnswerShape(t *testing.T) {
	service, repository := newTestService(
		activeQuestion("q-name", question.TypeString, true),
		activeQuestion("q-founded", question.TypeDate, false),
		activeQuestion("q-staff", question.TypeNumber, false),
		activeQuestion("q-about", question.TypeText, false),
		activeQuestion("q-warranty", question.TypeSingleSelect, false,
			selectOption("opt-yes", "yes", "Yes"), selectOption("opt-no", "no", "No")),
		activeQuestion("q-payment", question.TypeMultiSelect, false,
			selectOption("opt-cash", "cash", "Cash"), selectOption("opt-card", "card", "Card")),
	)

	answers, err := service.Submit(context.Background(), testFirmID, testCategoryID, []SubmissionInput{
		{QuestionID: "q-name", Value: pointer.To("Meserio SRL")},
		{QuestionID: "q-founded", Value: pointer.To("2019-03-01")},
		{QuestionID: "q-staff", Value: pointer.To("12")},
		{QuestionID: "q-about", Translations: []TranslationInput{
			{LanguageCode: "en", Content: "We renovate homes."},
			{LanguageCode: "ro", Content: "Renovăm locuințe."},
		}},
		{QuestionID: "q-warranty", SelectedOptionID: pointer.To("opt-yes")},
		{QuestionID: "q-payment", SelectedOptionIDs: []string{"opt-cash", "opt-card"}},
	})
	require.NoError(t, err)
	assert.Len(t, answers, 6)
	assert.Len(t, repository.byFirm[testFirmID], 6)

	stored := repository.byFirm[testFirmID]["q-about"]
	require.NotNil(t, stored)
	assert.Len(t, stored.Translations, 2)
	assert.Nil(t, stored.Value)
}

func TestSubmitIsUpsertPerQuestion(t *testing.T) {
	service, repository := newTestService(
		activeQuestion("q-name", question.TypeString, true),
	)
	ctx := context.Background()

	_, err := service.Submit(ctx, testFirmID, testCategoryID, []SubmissionInput{
		{QuestionID: "q-name", Value: pointer.To("First name")},
	})
	require.NoError(t, err)
	firstID := repository.byFirm[testFirmID]["q-name"].ID

	_, err = service.Submit(ctx, testFirmID, testCategoryID, []SubmissionInput{
		{QuestionID: "q-name", Value: pointer.To("Renamed")},
	})
	require.NoError(t, err)

	require.Len(t, repository.byFirm[testFirmID], 1)
	stored := repository.byFirm[testFirmID]["q-name"]
	assert.Equal(t, firstID, stored.ID, "resubmission updates the stored answer in place")
	assert.Equal(t, "Renamed", *stored.Value)
}

func TestSubmitReportsAllMissingRequiredQuestions(t *testing.T) {
	service, repository := newTestService(
		activeQuestion("q-a", question.TypeString, true),
		activeQuestion("q-b", question.TypeString, true),
		activeQuestion("q-c", question.TypeString, false),
	)

	_, err := service.Submit(context.Background(), testFirmID, testCategoryID, []SubmissionInput{
		{QuestionID: "q-c", Value: pointer.To("optional only")},
	})
	require.Error(t, err)

	appError := apperr.As(err)
	assert.Equal(t, "VALIDATION_ERROR", appError.Code)
	require.Len(t, appError.Details, 2, "every missing required question is reported at once")
	fields := []string{appError.Details[0].Field, appError.Details[1].Field}
	assert.ElementsMatch(t, []string{"q-a", "q-b"}, fields)

	assert.Empty(t, repository.byFirm, "nothing is stored on an incomplete submission")
}

func TestSubmitRejectsUnknownQuestion(t *testing.T) {
	service, _ := newTestService(activeQuestion("q-a", question.TypeString, false))

	_, err := service.Submit(context.Background(), testFirmID, testCategoryID, []SubmissionInput{
		{QuestionID: "q-ghost", Value: pointer.To("boo")},
	})
	require.Error(t, err)
	assert.Equal(t, "INVALID_REFERENCE", apperr.As(err).Code)
}

func TestSubmitRejectsMismatchedShapes(t *testing.T) {
	service, repository := newTestService(
		activeQuestion("q-select", question.TypeSingleSelect, false, selectOption("opt-a", "a", "A")),
		activeQuestion("q-number", question.TypeNumber, false),
		activeQuestion("q-date", question.TypeDate, false),
		activeQuestion("q-multi", question.TypeMultiSelect, false, selectOption("opt-b", "b", "B")),
	)
	ctx := context.Background()

	tests := []struct {
		name  string
		input SubmissionInput
	}{
		{name: "value sent to a select question", input: SubmissionInput{QuestionID: "q-select", Value: pointer.To("a")}},
		{name: "two carriers at once", input: SubmissionInput{
			QuestionID: "q-select", SelectedOptionID: pointer.To("opt-a"), Value: pointer.To("a")}},
		{name: "non-numeric number", input: SubmissionInput{QuestionID: "q-number", Value: pointer.To("twelve")}},
		{name: "malformed date", input: SubmissionInput{QuestionID: "q-date", Value: pointer.To("03/01/2019")}},
		{name: "duplicate multi selection", input: SubmissionInput{
			QuestionID: "q-multi", SelectedOptionIDs: []string{"opt-b", "opt-b"}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.Submit(ctx, testFirmID, testCategoryID, []SubmissionInput{tc.input})
			require.Error(t, err)
			assert.Equal(t, "INVALID_ANSWER_SHAPE", apperr.As(err).Code)
		})
	}

	assert.Empty(t, repository.byFirm)
}

func TestSubmitReportsAllShapeViolationsTogether(t *testing.T) {
	service, repository := newTestService(
		activeQuestion("q-staff", question.TypeNumber, false),
		activeQuestion("q-founded", question.TypeDate, false),
		activeQuestion("q-name", question.TypeString, false),
	)

	_, err := service.Submit(context.Background(), testFirmID, testCategoryID, []SubmissionInput{
		{QuestionID: "q-staff", Value: pointer.To("twelve")},
		{QuestionID: "q-founded", Value: pointer.To("03/01/2019")},
		{QuestionID: "q-name", Value: pointer.To("Meserio SRL")},
	})
	require.Error(t, err)

	appError := apperr.As(err)
	assert.Equal(t, "INVALID_ANSWER_SHAPE", appError.Code)
	require.Len(t, appError.Details, 2, "every malformed entry is reported at once")
	fields := []string{appError.Details[0].Field, appError.Details[1].Field}
	assert.ElementsMatch(t, []string{"q-staff", "q-founded"}, fields)

	assert.Empty(t, repository.byFirm, "nothing is stored on a malformed submission")
}

func TestSubmitRejectsForeignOption(t *testing.T) {
	service, _ := newTestService(
		activeQuestion("q-select", question.TypeSingleSelect, false, selectOption("opt-a", "a", "A")),
	)

	_, err := service.Submit(context.Background(), testFirmID, testCategoryID, []SubmissionInput{
		{QuestionID: "q-select", SelectedOptionID: pointer.To("opt-foreign")},
	})
	require.Error(t, err)
	assert.Equal(t, "INVALID_REFERENCE", apperr.As(err).Code)
}

func TestProfileRendersAnsweredAndUnansweredQuestions(t *testing.T) {
	service, _ := newTestService(
		activeQuestion("q-name", question.TypeString, true),
		activeQuestion("q-warranty", question.TypeSingleSelect, false,
			selectOption("opt-yes", "yes", "Yes")),
		activeQuestion("q-about", question.TypeText, false),
	)
	ctx := context.Background()

	_, err := service.Submit(ctx, testFirmID, testCategoryID, []SubmissionInput{
		{QuestionID: "q-name", Value: pointer.To("Meserio SRL")},
		{QuestionID: "q-warranty", SelectedOptionID: pointer.To("opt-yes")},
	})
	require.NoError(t, err)

	profile, err := service.Profile(ctx, testFirmID, testCategoryID, "en")
	require.NoError(t, err)
	require.Len(t, profile, 3)

	byQuestion := make(map[string]*ProfileEntry, len(profile))
	for _, entry := range profile {
		byQuestion[entry.QuestionID] = entry
	}
	assert.Equal(t, "Meserio SRL", byQuestion["q-name"].Display)
	assert.Equal(t, "Yes", byQuestion["q-warranty"].Display)
	assert.Equal(t, constants.NoAnswerDisplay, byQuestion["q-about"].Display)
}
