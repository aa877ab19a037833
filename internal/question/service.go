// Copyright (c) 2026 Meserio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Business logic (Use Cases) of the question package.
package question

import (
	"context"

	"github.com/taibuivan/meserio/internal/platform/apperr"
	"github.com/taibuivan/meserio/internal/platform/validate"
	"github.com/taibuivan/meserio/pkg/i18n"
	"github.com/taibuivan/meserio/pkg/uuidv7"
)

// Service implements question authoring and form rendering use cases.
type Service struct {
	repository Repository
	languages  []string
}

// NewService constructs a question [Service].
func NewService(repository Repository, languages []string) *Service {
	return &Service{repository: repository, languages: languages}
}

// TranslationInput is one per-language question text in admin payloads.
type TranslationInput struct {
	LanguageCode string  `json:"language_code"`
	Title        string  `json:"title"`
	Display      *string `json:"display"`
	Description  *string `json:"description"`
	Placeholder  *string `json:"placeholder"`
}

// CreateInput holds the fields of a new question definition.
type CreateInput struct {
	Scope        Scope              `json:"scope"`
	CategoryID   *string            `json:"category_id"`
	Type         Type               `json:"question_type"`
	Icon         *string            `json:"icon"`
	IsRequired   bool               `json:"is_required"`
	IsFilter     bool               `json:"is_filter"`
	Translations []TranslationInput `json:"translations"`
	Options      []OptionInput      `json:"options"`
}

// UpdateInput holds the mutable fields of an existing question. Scope,
// category, and type are fixed at create time: changing them would silently
// invalidate every answer already collected.
type UpdateInput struct {
	Icon         *string            `json:"icon"`
	IsRequired   bool               `json:"is_required"`
	IsFilter     bool               `json:"is_filter"`
	Translations []TranslationInput `json:"translations"`
	Options      []OptionInput      `json:"options"`
}

// ── Authoring ────────────────────────────────────────────────────────────────

// Create validates and persists a new draft question, appended to its
// sibling set (the universal set or one category's set).
//
// # Business Rules
//   - Category scope requires a category id; universal scope forbids one.
//   - Free-form types must not carry options; select types must carry at
//     least one (INVALID_SCHEMA).
//   - New questions always start in draft.
func (service *Service) Create(ctx context.Context, input CreateInput) (*Question, error) {
	v := &validate.Validator{}
	v.OneOf("scope", string(input.Scope), string(ScopeUniversal), string(ScopeCategory))
	v.Custom("question_type", !input.Type.Valid(), "Unknown question type")
	if input.Scope == ScopeCategory {
		if input.CategoryID == nil {
			v.Custom("category_id", true, "Category scope requires a category id")
		} else {
			v.UUID("category_id", *input.CategoryID)
		}
	}
	if input.Scope == ScopeUniversal && input.CategoryID != nil {
		v.Custom("category_id", true, "Universal questions cannot reference a category")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	translations, err := service.buildTranslations(input.Translations)
	if err != nil {
		return nil, err
	}
	if err := service.checkOptionShape(input.Type, surviving(input.Options)); err != nil {
		return nil, err
	}
	if err := service.validateOptionInputs(input.Options); err != nil {
		return nil, err
	}

	q := &Question{
		ID:           uuidv7.New(),
		Scope:        input.Scope,
		CategoryID:   input.CategoryID,
		Type:         input.Type,
		Icon:         input.Icon,
		IsRequired:   input.IsRequired,
		IsFilter:     input.IsFilter,
		Status:       StatusDraft,
		Translations: translations,
	}
	for _, optionInput := range input.Options {
		if optionInput.Deleted {
			continue
		}
		q.Options = append(q.Options, buildOption(q.ID, uuidv7.New(), len(q.Options), optionInput))
	}

	if err := service.repository.Create(ctx, q); err != nil {
		return nil, err
	}

	return q, nil
}

// Update validates and persists an edit of a question, reconciling its
// option list against the payload in one atomic write.
//
// # Option Reconciliation
//
// Payload entries without ids become new options; entries with ids update
// the existing ones in place (answers keep pointing at them); live options
// omitted from the payload are soft-deleted. An id that is not a live option
// of this question fails the whole edit with CONFLICT, and the store
// re-validates the live option set inside the write transaction, so an edit
// racing another admin's fails with CONFLICT too instead of renumbering
// options it never saw.
func (service *Service) Update(ctx context.Context, id string, input UpdateInput) (*Question, error) {
	q, err := service.repository.FindByID(ctx, id, false)
	if err != nil {
		return nil, err
	}

	translations, err := service.buildTranslations(input.Translations)
	if err != nil {
		return nil, err
	}
	if err := service.checkOptionShape(q.Type, surviving(input.Options)); err != nil {
		return nil, err
	}
	if err := service.validateOptionInputs(input.Options); err != nil {
		return nil, err
	}

	live := q.LiveOptions()
	liveIDs := make([]string, len(live))
	for i, option := range live {
		liveIDs[i] = option.ID
	}

	diff, err := DiffOptions(liveIDs, input.Options)
	if err != nil {
		return nil, err
	}

	var upserts []*Option
	for _, planned := range diff.Create {
		upserts = append(upserts, buildOption(q.ID, uuidv7.New(), planned.Position, planned.Input))
	}
	for _, planned := range diff.Update {
		upserts = append(upserts, buildOption(q.ID, planned.ID, planned.Position, planned.Input))
	}

	q.Icon = input.Icon
	q.IsRequired = input.IsRequired
	q.IsFilter = input.IsFilter
	q.Translations = translations

	if err := service.repository.Update(ctx, q, liveIDs, upserts, diff.Delete); err != nil {
		return nil, err
	}

	// Return the post-reconciliation state so the console can refresh ids.
	return service.repository.FindByID(ctx, id, false)
}

// Activate moves a draft or retired question onto live forms.
//
// # Returns
//
// Returns [apperr.InvalidSchema] when a select question has no live options:
// such a question cannot be answered and must not reach a form.
func (service *Service) Activate(ctx context.Context, id string) error {
	q, err := service.repository.FindByID(ctx, id, false)
	if err != nil {
		return err
	}
	if q.Status == StatusActive {
		return nil
	}
	if q.Type.IsSelect() && len(q.LiveOptions()) == 0 {
		return apperr.InvalidSchema("A select question needs at least one option before activation")
	}

	return service.repository.SetStatus(ctx, id, StatusActive)
}

// Retire removes an active question from forms while keeping its answers.
func (service *Service) Retire(ctx context.Context, id string) error {
	q, err := service.repository.FindByID(ctx, id, false)
	if err != nil {
		return err
	}
	if q.Status == StatusRetired {
		return nil
	}
	if q.Status != StatusActive {
		return apperr.Unprocessable("Only active questions can be retired")
	}

	return service.repository.SetStatus(ctx, id, StatusRetired)
}

// Delete soft-deletes a question; its sibling set compacts and its answers
// stay readable.
func (service *Service) Delete(ctx context.Context, id string) error {
	return service.repository.SoftDelete(ctx, id)
}

// Restore undeletes a question at the end of its sibling set.
func (service *Service) Restore(ctx context.Context, id string) error {
	return service.repository.Restore(ctx, id)
}

// Get retrieves one question; includeDeleted also resolves soft-deleted
// questions and their soft-deleted options (audit view).
func (service *Service) Get(ctx context.Context, id string, includeDeleted bool) (*Question, error) {
	return service.repository.FindByID(ctx, id, includeDeleted)
}

// List retrieves questions for the admin console.
func (service *Service) List(ctx context.Context, filter Filter) ([]*Question, error) {
	return service.repository.List(ctx, filter)
}

// Reorder applies a complete new order for one sibling set.
func (service *Service) Reorder(ctx context.Context, scope Scope, categoryID *string, orderedIDs []string) error {
	v := &validate.Validator{}
	v.OneOf("scope", string(scope), string(ScopeUniversal), string(ScopeCategory))
	v.Custom("ordered_ids", len(orderedIDs) == 0, "Ordered id list must not be empty")
	v.Custom("category_id", scope == ScopeCategory && categoryID == nil, "Category scope requires a category id")
	if err := v.Err(); err != nil {
		return err
	}

	return service.repository.Reorder(ctx, scope, categoryID, orderedIDs)
}

// ── Form Rendering ───────────────────────────────────────────────────────────

// FormQuestion is one entry of a rendered firm profile form, with every
// display text resolved for a single language.
type FormQuestion struct {
	ID          string  `json:"id"`
	Scope       Scope   `json:"scope"`
	Type        Type    `json:"question_type"`
	Icon        *string `json:"icon,omitempty"`
	IsRequired  bool    `json:"is_required"`
	IsFilter    bool    `json:"is_filter"`
	Title       string  `json:"title"`
	Display     *string `json:"display,omitempty"`
	Description *string `json:"description,omitempty"`
	Placeholder *string `json:"placeholder,omitempty"`

	Options []FormOption `json:"options,omitempty"`
}

// FormOption is one selectable choice of a rendered form question.
type FormOption struct {
	ID          string         `json:"id"`
	Value       string         `json:"value"`
	Label       string         `json:"label"`
	Display     *string        `json:"display,omitempty"`
	Description *string        `json:"description,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// FormForCategory renders the active question form for firms of one
// category: universal questions first, then category questions, in admin
// sort order, resolved for the requested language.
func (service *Service) FormForCategory(ctx context.Context, categoryID, language string) ([]*FormQuestion, error) {
	questions, err := service.repository.ListForForm(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	form := make([]*FormQuestion, 0, len(questions))
	for _, q := range questions {
		form = append(form, projectQuestion(q, language))
	}

	return form, nil
}

func projectQuestion(q *Question, language string) *FormQuestion {
	resolved := i18n.Resolve(q.Translations, language)
	projected := &FormQuestion{
		ID:          q.ID,
		Scope:       q.Scope,
		Type:        q.Type,
		Icon:        q.Icon,
		IsRequired:  q.IsRequired,
		IsFilter:    q.IsFilter,
		Title:       resolved.Title,
		Display:     resolved.Display,
		Description: resolved.Description,
		Placeholder: resolved.Placeholder,
	}

	for _, option := range q.LiveOptions() {
		optionResolved := i18n.Resolve(option.Translations, language)
		projected.Options = append(projected.Options, FormOption{
			ID:          option.ID,
			Value:       option.Value,
			Label:       optionResolved.Label,
			Display:     optionResolved.Display,
			Description: optionResolved.Description,
			Metadata:    option.Metadata,
		})
	}

	return projected
}

// ── Internals ────────────────────────────────────────────────────────────────

func buildOption(questionID, id string, position int, input OptionInput) *Option {
	option := &Option{
		ID:         id,
		QuestionID: questionID,
		Value:      input.Value,
		SortOrder:  position,
		Metadata:   input.Metadata,
	}
	for _, translation := range input.Translations {
		option.Translations = append(option.Translations, OptionTranslation{
			LanguageCode: translation.LanguageCode,
			Label:        translation.Label,
			Display:      translation.Display,
			Description:  translation.Description,
		})
	}
	return option
}

// checkOptionShape enforces the type/options invariant on writes: free-form
// questions must never carry options, select questions must always keep at
// least one.
func (service *Service) checkOptionShape(questionType Type, optionCount int) error {
	if !questionType.IsSelect() && optionCount > 0 {
		return apperr.InvalidSchema("Options are only allowed on select question types")
	}
	if questionType.IsSelect() && optionCount == 0 {
		return apperr.InvalidSchema("Select question types need at least one option")
	}
	return nil
}

// surviving counts the payload entries that will exist after reconciliation.
func surviving(inputs []OptionInput) int {
	count := 0
	for _, input := range inputs {
		if !input.Deleted {
			count++
		}
	}
	return count
}

func (service *Service) validateOptionInputs(inputs []OptionInput) error {
	v := &validate.Validator{}
	values := make(map[string]bool, len(inputs))
	for _, input := range inputs {
		// Explicit deletions carry no other meaningful fields.
		if input.Deleted {
			continue
		}
		v.Required("options.value", input.Value).MaxLen("options.value", input.Value, 100)
		v.Custom("options.value", values[input.Value], "Duplicate option value")
		values[input.Value] = true

		codes := make(map[string]bool, len(input.Translations))
		v.Custom("options.translations", len(input.Translations) == 0, "At least one translation is required")
		for _, translation := range input.Translations {
			v.Language("options.translations.language_code", translation.LanguageCode)
			v.Custom("options.translations.language_code",
				service.hasLanguages() && !service.isSupported(translation.LanguageCode), "Language is not supported")
			v.Custom("options.translations.language_code", codes[translation.LanguageCode], "Duplicate language code")
			v.Required("options.translations.label", translation.Label)
			codes[translation.LanguageCode] = true
		}
	}
	return v.Err()
}

func (service *Service) buildTranslations(inputs []TranslationInput) ([]Translation, error) {
	v := &validate.Validator{}
	v.Custom("translations", len(inputs) == 0, "At least one translation is required")

	seen := make(map[string]bool, len(inputs))
	for _, input := range inputs {
		v.Language("translations.language_code", input.LanguageCode)
		v.Custom("translations.language_code", service.hasLanguages() && !service.isSupported(input.LanguageCode),
			"Language is not supported")
		v.Custom("translations.language_code", seen[input.LanguageCode], "Duplicate language code")
		v.Required("translations.title", input.Title).MaxLen("translations.title", input.Title, 300)
		seen[input.LanguageCode] = true
	}

	if err := v.Err(); err != nil {
		return nil, err
	}

	translations := make([]Translation, len(inputs))
	for i, input := range inputs {
		translations[i] = Translation{
			LanguageCode: input.LanguageCode,
			Title:        input.Title,
			Display:      input.Display,
			Description:  input.Description,
			Placeholder:  input.Placeholder,
		}
	}

	return translations, nil
}

func (service *Service) hasLanguages() bool { return len(service.languages) > 0 }

func (service *Service) isSupported(language string) bool {
	for _, code := range service.languages {
		if code == language {
			return true
		}
	}
	return false
}
