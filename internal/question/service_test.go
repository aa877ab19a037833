// Copyright (c) 2026 Meserio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package question

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/meserio/internal/platform/apperr"
	"github.com/taibuivan/meserio/pkg/order"
	"github.com/taibuivan/meserio/pkg/pointer"
)

// fakeRepository is an in-memory [Repository] mirroring the PostgreSQL
// ordering and reconciliation semantics, including the in-transaction
// re-validation of the live option set and the live-value uniqueness rule.
type fakeRepository struct {
	questions []*Question

	// beforeUpdate runs after the caller has read its snapshot but before
	// the write applies, standing in for a concurrent committed edit.
	beforeUpdate func()
}

func sameRef(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (f *fakeRepository) siblings(scope Scope, categoryID *string) []*Question {
	var set []*Question
	for _, q := range f.questions {
		if q.DeletedAt == nil && q.Scope == scope && sameRef(q.CategoryID, categoryID) {
			set = append(set, q)
		}
	}
	sort.Slice(set, func(i, j int) bool { return set[i].SortOrder < set[j].SortOrder })
	return set
}

func (f *fakeRepository) Create(_ context.Context, q *Question) error {
	q.SortOrder = len(f.siblings(q.Scope, q.CategoryID))
	f.questions = append(f.questions, q)
	return nil
}

func (f *fakeRepository) Update(_ context.Context, q *Question, expectedOptionIDs []string, upserts []*Option, deleteOptionIDs []string) error {
	if f.beforeUpdate != nil {
		f.beforeUpdate()
	}

	stored, err := f.FindByID(context.Background(), q.ID, false)
	if err != nil {
		return err
	}

	live := stored.LiveOptions()
	expected := make(map[string]bool, len(expectedOptionIDs))
	for _, id := range expectedOptionIDs {
		expected[id] = true
	}
	if len(live) != len(expectedOptionIDs) {
		return apperr.Conflict("The question's options changed during this edit; refresh and retry")
	}
	for _, option := range live {
		if !expected[option.ID] {
			return apperr.Conflict("The question's options changed during this edit; refresh and retry")
		}
	}

	// Deletes apply first, like the store: an insert may reuse a value
	// freed in the same edit.
	now := time.Now()
	for _, id := range deleteOptionIDs {
		if option := stored.OptionByID(id); option != nil {
			option.DeletedAt = &now
		}
	}

	for _, upsert := range upserts {
		existing := stored.OptionByID(upsert.ID)
		if existing == nil {
			// Mirrors the live-value unique index.
			for _, option := range stored.LiveOptions() {
				if option.Value == upsert.Value {
					return apperr.Conflict("Duplicate live option value")
				}
			}
			stored.Options = append(stored.Options, upsert)
			continue
		}
		existing.Value = upsert.Value
		existing.SortOrder = upsert.SortOrder
		existing.Metadata = upsert.Metadata
		existing.Translations = upsert.Translations
	}

	return nil
}

func (f *fakeRepository) FindByID(_ context.Context, id string, includeDeleted bool) (*Question, error) {
	for _, q := range f.questions {
		if q.ID == id && (includeDeleted || q.DeletedAt == nil) {
			return q, nil
		}
	}
	return nil, apperr.NotFound("Question")
}

func (f *fakeRepository) List(_ context.Context, filter Filter) ([]*Question, error) {
	var matched []*Question
	for _, q := range f.questions {
		if !filter.IncludeDeleted && q.DeletedAt != nil {
			continue
		}
		if filter.Scope != nil && q.Scope != *filter.Scope {
			continue
		}
		if filter.CategoryID != nil && !sameRef(q.CategoryID, filter.CategoryID) {
			continue
		}
		if filter.Status != nil && q.Status != *filter.Status {
			continue
		}
		matched = append(matched, q)
	}
	return matched, nil
}

func (f *fakeRepository) ListForForm(_ context.Context, categoryID string) ([]*Question, error) {
	var form []*Question
	form = append(form, f.activeOf(ScopeUniversal, nil)...)
	form = append(form, f.activeOf(ScopeCategory, &categoryID)...)
	return form, nil
}

func (f *fakeRepository) activeOf(scope Scope, categoryID *string) []*Question {
	var active []*Question
	for _, q := range f.siblings(scope, categoryID) {
		if q.Status == StatusActive {
			active = append(active, q)
		}
	}
	return active
}

func (f *fakeRepository) SetStatus(_ context.Context, id string, status Status) error {
	q, err := f.FindByID(context.Background(), id, false)
	if err != nil {
		return err
	}
	q.Status = status
	return nil
}

func (f *fakeRepository) SoftDelete(_ context.Context, id string) error {
	q, err := f.FindByID(context.Background(), id, true)
	if err != nil {
		return err
	}
	if q.DeletedAt != nil {
		return nil
	}
	now := time.Now()
	q.DeletedAt = &now
	for _, sibling := range f.siblings(q.Scope, q.CategoryID) {
		if sibling.SortOrder > q.SortOrder {
			sibling.SortOrder--
		}
	}
	return nil
}

func (f *fakeRepository) Restore(_ context.Context, id string) error {
	q, err := f.FindByID(context.Background(), id, true)
	if err != nil {
		return err
	}
	if q.DeletedAt == nil {
		return nil
	}
	q.SortOrder = len(f.siblings(q.Scope, q.CategoryID))
	q.DeletedAt = nil
	return nil
}

func (f *fakeRepository) Reorder(_ context.Context, scope Scope, categoryID *string, orderedIDs []string) error {
	if scope == ScopeUniversal {
		categoryID = nil
	}
	set := f.siblings(scope, categoryID)
	current := make([]string, len(set))
	for i, q := range set {
		current[i] = q.ID
	}
	if err := order.ValidatePermutation(current, orderedIDs); err != nil {
		return apperr.IncompleteReorder(err.Error())
	}
	positions := order.Renumber(orderedIDs)
	for _, q := range set {
		q.SortOrder = positions[q.ID]
	}
	return nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

const testCategoryID = "018f2a5e-0000-7000-8000-00000000aaaa"

func newTestService() (*Service, *fakeRepository) {
	repository := &fakeRepository{}
	return NewService(repository, []string{"en", "ro"}), repository
}

func title(text string) []TranslationInput {
	return []TranslationInput{{LanguageCode: "en", Title: text}}
}

func labeled(value, label string) OptionInput {
	return OptionInput{
		Value:        value,
		Translations: []OptionTranslationInput{{LanguageCode: "en", Label: label}},
	}
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestCreateSelectQuestionStartsAsDraft(t *testing.T) {
	service, _ := newTestService()

	q, err := service.Create(context.Background(), CreateInput{
		Scope:        ScopeUniversal,
		Type:         TypeSingleSelect,
		Translations: title("Do you offer emergency callouts?"),
		Options:      []OptionInput{labeled("yes", "Yes"), labeled("no", "No")},
	})
	require.NoError(t, err)

	assert.Equal(t, StatusDraft, q.Status)
	require.Len(t, q.Options, 2)
	assert.Equal(t, 0, q.Options[0].SortOrder)
	assert.Equal(t, 1, q.Options[1].SortOrder)
	assert.NotEmpty(t, q.Options[0].ID)
}

func TestCreateFreeFormQuestionRejectsOptions(t *testing.T) {
	service, _ := newTestService()

	_, err := service.Create(context.Background(), CreateInput{
		Scope:        ScopeUniversal,
		Type:         TypeNumber,
		Translations: title("How many employees?"),
		Options:      []OptionInput{labeled("yes", "Yes")},
	})
	require.Error(t, err)
	assert.Equal(t, "INVALID_SCHEMA", apperr.As(err).Code)
}

func TestCreateCategoryScopeRequiresCategoryID(t *testing.T) {
	service, _ := newTestService()

	_, err := service.Create(context.Background(), CreateInput{
		Scope:        ScopeCategory,
		Type:         TypeString,
		Translations: title("Which brands do you install?"),
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}

func TestUpdateReconcilesOptionsAgainstPayload(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	q, err := service.Create(ctx, CreateInput{
		Scope:        ScopeUniversal,
		Type:         TypeMultiSelect,
		Translations: title("Payment methods"),
		Options:      []OptionInput{labeled("cash", "Cash"), labeled("card", "Card")},
	})
	require.NoError(t, err)
	cashID := q.Options[0].ID
	cardID := q.Options[1].ID

	// Keep card (renamed, moved first), add transfer, drop cash.
	updated, err := service.Update(ctx, q.ID, UpdateInput{
		Translations: title("Payment methods"),
		Options: []OptionInput{
			{ID: &cardID, Value: "card", Translations: []OptionTranslationInput{{LanguageCode: "en", Label: "Card payment"}}},
			labeled("transfer", "Bank transfer"),
		},
	})
	require.NoError(t, err)

	live := updated.LiveOptions()
	require.Len(t, live, 2)
	assert.Equal(t, cardID, live[0].ID, "existing option keeps its id across the edit")
	assert.Equal(t, "Card payment", live[0].Translations[0].Label)
	assert.Equal(t, 0, live[0].SortOrder)
	assert.Equal(t, "transfer", live[1].Value)
	assert.Equal(t, 1, live[1].SortOrder)

	// The dropped option is soft-deleted, not gone: answers referencing it
	// must stay resolvable in historical reads.
	dropped := updated.OptionByID(cashID)
	assert.Nil(t, dropped, "soft-deleted option is invisible to live lookups")
	full, err := service.Get(ctx, q.ID, true)
	require.NoError(t, err)
	var foundDeleted bool
	for _, option := range full.Options {
		if option.ID == cashID {
			foundDeleted = option.IsDeleted()
		}
	}
	assert.True(t, foundDeleted)
}

func TestUpdateRejectsStaleOptionID(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	q, err := service.Create(ctx, CreateInput{
		Scope:        ScopeUniversal,
		Type:         TypeSingleSelect,
		Translations: title("Warranty offered?"),
		Options:      []OptionInput{labeled("yes", "Yes")},
	})
	require.NoError(t, err)

	_, err = service.Update(ctx, q.ID, UpdateInput{
		Translations: title("Warranty offered?"),
		Options: []OptionInput{
			{ID: pointer.To("018f2a5e-dead-7000-8000-000000000000"), Value: "ghost",
				Translations: []OptionTranslationInput{{LanguageCode: "en", Label: "Ghost"}}},
		},
	})
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)

	// The failed edit changed nothing.
	current, err := service.Get(ctx, q.ID, false)
	require.NoError(t, err)
	require.Len(t, current.LiveOptions(), 1)
	assert.Equal(t, "yes", current.LiveOptions()[0].Value)
}

func TestCreateSelectQuestionRequiresOptions(t *testing.T) {
	service, _ := newTestService()

	_, err := service.Create(context.Background(), CreateInput{
		Scope:        ScopeUniversal,
		Type:         TypeSingleSelect,
		Translations: title("Region served"),
	})
	require.Error(t, err)
	assert.Equal(t, "INVALID_SCHEMA", apperr.As(err).Code)
}

func TestActivateRequiresOptionsOnSelectTypes(t *testing.T) {
	service, repository := newTestService()
	ctx := context.Background()

	// Pre-dating rows can violate the select/options invariant; activation
	// is the last gate before such a question reaches a form.
	repository.questions = append(repository.questions, &Question{
		ID:           "018f2a5e-0000-7000-8000-00000000cccc",
		Scope:        ScopeUniversal,
		Type:         TypeSingleSelect,
		Status:       StatusDraft,
		Translations: []Translation{{LanguageCode: "en", Title: "Region served"}},
	})

	err := service.Activate(ctx, "018f2a5e-0000-7000-8000-00000000cccc")
	require.Error(t, err)
	assert.Equal(t, "INVALID_SCHEMA", apperr.As(err).Code)

	_, err = service.Update(ctx, "018f2a5e-0000-7000-8000-00000000cccc", UpdateInput{
		Translations: title("Region served"),
		Options:      []OptionInput{labeled("north", "North")},
	})
	require.NoError(t, err)

	require.NoError(t, service.Activate(ctx, "018f2a5e-0000-7000-8000-00000000cccc"))
	activated, err := service.Get(ctx, "018f2a5e-0000-7000-8000-00000000cccc", false)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, activated.Status)
}

func TestUpdateConflictsWhenOptionsChangeUnderneath(t *testing.T) {
	service, repository := newTestService()
	ctx := context.Background()

	q, err := service.Create(ctx, CreateInput{
		Scope:        ScopeUniversal,
		Type:         TypeSingleSelect,
		Translations: title("Warranty offered?"),
		Options:      []OptionInput{labeled("yes", "Yes")},
	})
	require.NoError(t, err)
	yesID := q.Options[0].ID

	// Another admin's edit commits between this edit's read and its write.
	repository.beforeUpdate = func() {
		q.Options = append(q.Options, &Option{
			ID:         "018f2a5e-0000-7000-8000-00000000dddd",
			QuestionID: q.ID,
			Value:      "partial",
			SortOrder:  1,
			Translations: []OptionTranslation{
				{LanguageCode: "en", Label: "Partial"},
			},
		})
	}

	_, err = service.Update(ctx, q.ID, UpdateInput{
		Translations: title("Warranty offered?"),
		Options: []OptionInput{
			{ID: &yesID, Value: "yes", Translations: []OptionTranslationInput{{LanguageCode: "en", Label: "Yes"}}},
		},
	})
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)
	assert.True(t, apperr.IsRetryable(err))

	// The concurrently added option survived the rejected stale edit.
	repository.beforeUpdate = nil
	current, err := service.Get(ctx, q.ID, false)
	require.NoError(t, err)
	require.Len(t, current.LiveOptions(), 2)
}

func TestUpdateReusesValueOfDroppedOption(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	q, err := service.Create(ctx, CreateInput{
		Scope:        ScopeUniversal,
		Type:         TypeSingleSelect,
		Translations: title("Coverage area"),
		Options:      []OptionInput{labeled("local", "Local only")},
	})
	require.NoError(t, err)
	oldID := q.Options[0].ID

	// Rename-by-replace: drop the option and add a fresh one carrying the
	// same value in a single edit.
	updated, err := service.Update(ctx, q.ID, UpdateInput{
		Translations: title("Coverage area"),
		Options:      []OptionInput{labeled("local", "Local and surroundings")},
	})
	require.NoError(t, err)

	live := updated.LiveOptions()
	require.Len(t, live, 1)
	assert.Equal(t, "local", live[0].Value)
	assert.NotEqual(t, oldID, live[0].ID, "the replacement is a new option")

	full, err := service.Get(ctx, q.ID, true)
	require.NoError(t, err)
	var oldDeleted bool
	for _, option := range full.Options {
		if option.ID == oldID {
			oldDeleted = option.IsDeleted()
		}
	}
	assert.True(t, oldDeleted)
}

func TestUpdateAcceptsExplicitDeletedFlag(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	q, err := service.Create(ctx, CreateInput{
		Scope:        ScopeUniversal,
		Type:         TypeMultiSelect,
		Translations: title("Payment methods"),
		Options:      []OptionInput{labeled("cash", "Cash"), labeled("card", "Card")},
	})
	require.NoError(t, err)
	cashID := q.Options[0].ID
	cardID := q.Options[1].ID

	// A deleted entry needs nothing beyond its id and the flag.
	updated, err := service.Update(ctx, q.ID, UpdateInput{
		Translations: title("Payment methods"),
		Options: []OptionInput{
			{ID: &cashID, Deleted: true},
			{ID: &cardID, Value: "card", Translations: []OptionTranslationInput{{LanguageCode: "en", Label: "Card"}}},
		},
	})
	require.NoError(t, err)

	live := updated.LiveOptions()
	require.Len(t, live, 1)
	assert.Equal(t, cardID, live[0].ID)
	assert.Equal(t, 0, live[0].SortOrder, "survivor takes the first position")
	assert.Nil(t, updated.OptionByID(cashID))
}

func TestRetireOnlyAppliesToActiveQuestions(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	q, err := service.Create(ctx, CreateInput{
		Scope:        ScopeUniversal,
		Type:         TypeText,
		Translations: title("Describe your firm"),
	})
	require.NoError(t, err)

	err = service.Retire(ctx, q.ID)
	require.Error(t, err)
	assert.Equal(t, "UNPROCESSABLE", apperr.As(err).Code)

	require.NoError(t, service.Activate(ctx, q.ID))
	require.NoError(t, service.Retire(ctx, q.ID))
	retired, err := service.Get(ctx, q.ID, false)
	require.NoError(t, err)
	assert.Equal(t, StatusRetired, retired.Status)
}

func TestFormForCategoryOrdersUniversalFirst(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	otherCategory := "018f2a5e-0000-7000-8000-00000000bbbb"

	universal, err := service.Create(ctx, CreateInput{
		Scope: ScopeUniversal, Type: TypeString,
		Translations: []TranslationInput{
			{LanguageCode: "en", Title: "Company name"},
			{LanguageCode: "ro", Title: "Numele firmei"},
		},
	})
	require.NoError(t, err)

	scoped, err := service.Create(ctx, CreateInput{
		Scope: ScopeCategory, CategoryID: pointer.To(testCategoryID), Type: TypeString,
		Translations: title("Which brands do you install?"),
	})
	require.NoError(t, err)

	foreign, err := service.Create(ctx, CreateInput{
		Scope: ScopeCategory, CategoryID: &otherCategory, Type: TypeString,
		Translations: title("Irrelevant elsewhere"),
	})
	require.NoError(t, err)

	draft, err := service.Create(ctx, CreateInput{
		Scope: ScopeUniversal, Type: TypeString,
		Translations: title("Unpublished"),
	})
	require.NoError(t, err)

	for _, id := range []string{universal.ID, scoped.ID, foreign.ID} {
		require.NoError(t, service.Activate(ctx, id))
	}
	_ = draft // stays draft

	form, err := service.FormForCategory(ctx, testCategoryID, "ro")
	require.NoError(t, err)

	require.Len(t, form, 2)
	assert.Equal(t, universal.ID, form[0].ID)
	assert.Equal(t, "Numele firmei", form[0].Title, "requested language wins")
	assert.Equal(t, scoped.ID, form[1].ID)
	assert.Equal(t, "Which brands do you install?", form[1].Title, "missing translation falls back to default")
}

func TestDeleteCompactsSiblingsAndReorderChecksPermutation(t *testing.T) {
	service, repository := newTestService()
	ctx := context.Background()

	var ids []string
	for _, text := range []string{"Q1", "Q2", "Q3"} {
		q, err := service.Create(ctx, CreateInput{
			Scope: ScopeUniversal, Type: TypeString, Translations: title(text),
		})
		require.NoError(t, err)
		ids = append(ids, q.ID)
	}

	require.NoError(t, service.Delete(ctx, ids[1]))
	set := repository.siblings(ScopeUniversal, nil)
	require.Len(t, set, 2)
	assert.Equal(t, 0, set[0].SortOrder)
	assert.Equal(t, 1, set[1].SortOrder)

	// Reordering with the deleted member still listed is a stale view.
	err := service.Reorder(ctx, ScopeUniversal, nil, []string{ids[2], ids[1], ids[0]})
	require.Error(t, err)
	assert.Equal(t, "INCOMPLETE_REORDER", apperr.As(err).Code)

	require.NoError(t, service.Reorder(ctx, ScopeUniversal, nil, []string{ids[2], ids[0]}))
	set = repository.siblings(ScopeUniversal, nil)
	assert.Equal(t, ids[2], set[0].ID)
	assert.Equal(t, ids[0], set[1].ID)
}
