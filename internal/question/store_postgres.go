// Copyright (c) 2026 Meserio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// PostgreSQL implementation of the question [Repository].
//
// Question sibling sets follow the same FOR UPDATE lock / append / compact
// discipline as the taxonomy store. Option reconciliation runs inside the
// question update transaction: upserts use INSERT ... ON CONFLICT so creates
// and updates share one code path, and omitted options are soft-deleted in
// the same commit.
package question

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/meserio/internal/platform/apperr"
	"github.com/taibuivan/meserio/internal/platform/database/schema"
	"github.com/taibuivan/meserio/internal/platform/dberr"
	"github.com/taibuivan/meserio/pkg/order"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the question [Repository].
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (repository *PostgresRepository) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := repository.pool.Begin(ctx)
	if err != nil {
		return dberr.Wrap(err, "question_repo_begin_tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if err := fn(tx); err != nil {
		return err
	}

	return dberr.Wrap(tx.Commit(ctx), "question_repo_commit_tx")
}

// siblingsQuery locks the live questions of one sibling set: the universal
// set (categoryid NULL) or one category's set.
const siblingsQuery = `
	SELECT id FROM forms.question
	WHERE scope = $1 AND categoryid IS NOT DISTINCT FROM $2 AND deletedat IS NULL
	ORDER BY sortorder
	FOR UPDATE`

const questionColumns = `
	id, scope, categoryid, questiontype, icon, sortorder,
	isrequired, isfilter, status, createdat, updatedat, deletedat`

// ── Writes ───────────────────────────────────────────────────────────────────

// Create inserts a question appended to its sibling set, plus its initial
// options and all translations. A dangling category reference maps to
// INVALID_REFERENCE via the foreign key.
func (repository *PostgresRepository) Create(ctx context.Context, q *Question) error {
	return repository.inTx(ctx, func(tx pgx.Tx) error {
		siblings, err := lockSiblings(ctx, tx, siblingsQuery, q.Scope, q.CategoryID)
		if err != nil {
			return dberr.Wrap(err, "question_repo_lock_siblings")
		}

		now := time.Now()
		q.SortOrder = len(siblings)
		q.CreatedAt = now
		q.UpdatedAt = now

		const query = `
			INSERT INTO forms.question (
				id, scope, categoryid, questiontype, icon, sortorder,
				isrequired, isfilter, status, createdat, updatedat
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

		_, err = tx.Exec(ctx, query,
			q.ID, q.Scope, q.CategoryID, q.Type, q.Icon, q.SortOrder,
			q.IsRequired, q.IsFilter, q.Status, q.CreatedAt, q.UpdatedAt,
		)
		if err != nil {
			return dberr.Wrap(err, "question_repo_create")
		}

		if err := replaceQuestionTranslations(ctx, tx, q.ID, q.Translations); err != nil {
			return err
		}

		for _, option := range q.Options {
			if err := upsertOption(ctx, tx, option); err != nil {
				return err
			}
		}

		return nil
	})
}

// liveOptionsQuery locks a question's live options.
const liveOptionsQuery = `
	SELECT id FROM forms.option
	WHERE questionid = $1 AND deletedat IS NULL
	ORDER BY sortorder
	FOR UPDATE`

// Update persists question fields, translations, and the full option
// reconciliation in one transaction.
func (repository *PostgresRepository) Update(ctx context.Context, q *Question, expectedOptionIDs []string, upserts []*Option, deleteOptionIDs []string) error {
	return repository.inTx(ctx, func(tx pgx.Tx) error {
		const query = `
			UPDATE forms.question
			SET icon = $2, isrequired = $3, isfilter = $4, updatedat = $5
			WHERE id = $1 AND deletedat IS NULL`

		q.UpdatedAt = time.Now()
		tag, err := tx.Exec(ctx, query, q.ID, q.Icon, q.IsRequired, q.IsFilter, q.UpdatedAt)
		if err != nil {
			return dberr.Wrap(err, "question_repo_update")
		}
		if tag.RowsAffected() == 0 {
			return apperr.NotFound("Question")
		}

		// The reconciliation was planned against a snapshot read outside
		// this transaction. Lock the live option set and verify it is still
		// that snapshot; a concurrent edit in between means the plan would
		// renumber or delete options it never saw.
		liveIDs, err := lockSiblings(ctx, tx, liveOptionsQuery, q.ID)
		if err != nil {
			return dberr.Wrap(err, "question_repo_lock_options")
		}
		if !sameIDSet(liveIDs, expectedOptionIDs) {
			return apperr.Conflict("The question's options changed during this edit; refresh and retry")
		}

		if err := replaceQuestionTranslations(ctx, tx, q.ID, q.Translations); err != nil {
			return err
		}

		// Soft-delete before upserting: a new option may then reuse the
		// value of one dropped in the same edit without tripping the
		// live-value unique index.
		if len(deleteOptionIDs) > 0 {
			_, err = tx.Exec(ctx,
				`UPDATE forms.option SET deletedat = $2, updatedat = $2 WHERE id = ANY($1) AND deletedat IS NULL`,
				deleteOptionIDs, time.Now(),
			)
			if err != nil {
				return dberr.Wrap(err, "question_repo_delete_options")
			}
		}

		for _, option := range upserts {
			if err := upsertOption(ctx, tx, option); err != nil {
				return err
			}
		}

		return nil
	})
}

// sameIDSet reports whether two id slices hold the same set, order aside.
func sameIDSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]bool, len(a))
	for _, id := range a {
		seen[id] = true
	}
	for _, id := range b {
		if !seen[id] {
			return false
		}
	}
	return true
}

// SetStatus updates the lifecycle state of a live question.
func (repository *PostgresRepository) SetStatus(ctx context.Context, id string, status Status) error {
	const query = `
		UPDATE forms.question
		SET status = $2, updatedat = $3
		WHERE id = $1 AND deletedat IS NULL`

	tag, err := repository.pool.Exec(ctx, query, id, status, time.Now())
	if err != nil {
		return dberr.Wrap(err, "question_repo_set_status")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Question")
	}

	return nil
}

// SoftDelete marks a question deleted and compacts its sibling set.
func (repository *PostgresRepository) SoftDelete(ctx context.Context, id string) error {
	return repository.inTx(ctx, func(tx pgx.Tx) error {
		var scope Scope
		var categoryID *string
		var sortOrder int
		var deletedAt *time.Time
		err := tx.QueryRow(ctx,
			`SELECT scope, categoryid, sortorder, deletedat FROM forms.question WHERE id = $1 FOR UPDATE`,
			id,
		).Scan(&scope, &categoryID, &sortOrder, &deletedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperr.NotFound("Question")
			}
			return dberr.Wrap(err, "question_repo_lock")
		}
		if deletedAt != nil {
			return nil
		}

		if _, err := lockSiblings(ctx, tx, siblingsQuery, scope, categoryID); err != nil {
			return dberr.Wrap(err, "question_repo_lock_siblings")
		}

		now := time.Now()
		_, err = tx.Exec(ctx,
			`UPDATE forms.question SET deletedat = $2, updatedat = $2 WHERE id = $1`,
			id, now,
		)
		if err != nil {
			return dberr.Wrap(err, "question_repo_soft_delete")
		}

		_, err = tx.Exec(ctx, `
			UPDATE forms.question
			SET sortorder = sortorder - 1
			WHERE scope = $1 AND categoryid IS NOT DISTINCT FROM $2 AND deletedat IS NULL AND sortorder > $3`,
			scope, categoryID, sortOrder,
		)
		return dberr.Wrap(err, "question_repo_compact")
	})
}

// Restore undeletes a question at the end of its sibling set's current
// live order.
func (repository *PostgresRepository) Restore(ctx context.Context, id string) error {
	return repository.inTx(ctx, func(tx pgx.Tx) error {
		var scope Scope
		var categoryID *string
		var deletedAt *time.Time
		err := tx.QueryRow(ctx,
			`SELECT scope, categoryid, deletedat FROM forms.question WHERE id = $1 FOR UPDATE`,
			id,
		).Scan(&scope, &categoryID, &deletedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperr.NotFound("Question")
			}
			return dberr.Wrap(err, "question_repo_lock")
		}
		if deletedAt == nil {
			return nil
		}

		siblings, err := lockSiblings(ctx, tx, siblingsQuery, scope, categoryID)
		if err != nil {
			return dberr.Wrap(err, "question_repo_lock_siblings")
		}

		_, err = tx.Exec(ctx, `
			UPDATE forms.question
			SET deletedat = NULL, sortorder = $2, updatedat = $3
			WHERE id = $1`,
			id, len(siblings), time.Now(),
		)
		return dberr.Wrap(err, "question_repo_restore")
	})
}

// Reorder atomically applies a full permutation of one sibling set.
func (repository *PostgresRepository) Reorder(ctx context.Context, scope Scope, categoryID *string, orderedIDs []string) error {
	if scope == ScopeUniversal {
		categoryID = nil
	}

	return repository.inTx(ctx, func(tx pgx.Tx) error {
		current, err := lockSiblings(ctx, tx, siblingsQuery, scope, categoryID)
		if err != nil {
			return dberr.Wrap(err, "question_repo_lock_siblings")
		}

		if err := order.ValidatePermutation(current, orderedIDs); err != nil {
			return apperr.IncompleteReorder(err.Error())
		}

		positions := make([]int, len(orderedIDs))
		for i := range orderedIDs {
			positions[i] = i
		}

		const query = `
			UPDATE forms.question AS q
			SET sortorder = v.position, updatedat = NOW()
			FROM (SELECT unnest($1::uuid[]) AS id, unnest($2::int[]) AS position) AS v
			WHERE q.id = v.id`

		_, err = tx.Exec(ctx, query, orderedIDs, positions)
		return dberr.Wrap(err, "question_repo_apply_order")
	})
}

// ── Reads ────────────────────────────────────────────────────────────────────

// FindByID loads one question with translations and options.
func (repository *PostgresRepository) FindByID(ctx context.Context, id string, includeDeleted bool) (*Question, error) {
	query := `SELECT ` + questionColumns + ` FROM ` + schema.FormsQuestion.Table + ` WHERE id = $1`
	if !includeDeleted {
		query += ` AND deletedat IS NULL`
	}

	q := &Question{}
	err := repository.pool.QueryRow(ctx, query, id).Scan(
		&q.ID, &q.Scope, &q.CategoryID, &q.Type, &q.Icon, &q.SortOrder,
		&q.IsRequired, &q.IsFilter, &q.Status, &q.CreatedAt, &q.UpdatedAt, &q.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Question")
		}
		return nil, dberr.Wrap(err, "question_repo_find")
	}

	if err := repository.attachChildren(ctx, []*Question{q}, includeDeleted); err != nil {
		return nil, err
	}

	return q, nil
}

// List loads questions matching the filter in sibling order.
func (repository *PostgresRepository) List(ctx context.Context, filter Filter) ([]*Question, error) {
	where := "TRUE"
	args := []any{}
	if filter.Scope != nil {
		args = append(args, *filter.Scope)
		where += fmt.Sprintf(" AND scope = $%d", len(args))
	}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		where += fmt.Sprintf(" AND categoryid = $%d", len(args))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if !filter.IncludeDeleted {
		where += " AND deletedat IS NULL"
	}

	query := `SELECT ` + questionColumns + ` FROM ` + schema.FormsQuestion.Table + ` WHERE ` + where +
		` ORDER BY scope, categoryid, sortorder`

	questions, err := repository.queryQuestions(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	if err := repository.attachChildren(ctx, questions, filter.IncludeDeleted); err != nil {
		return nil, err
	}

	return questions, nil
}

// ListForForm loads the active questions a firm in categoryID answers: the
// universal set first, then the category set, each in sibling order.
func (repository *PostgresRepository) ListForForm(ctx context.Context, categoryID string) ([]*Question, error) {
	const query = `
		SELECT ` + questionColumns + `
		FROM forms.question
		WHERE deletedat IS NULL AND status = 'active'
		  AND (scope = 'universal' OR (scope = 'category' AND categoryid = $1))
		ORDER BY scope DESC, sortorder`
	// scope DESC puts 'universal' before 'category' (text ordering).

	questions, err := repository.queryQuestions(ctx, query, categoryID)
	if err != nil {
		return nil, err
	}

	if err := repository.attachChildren(ctx, questions, false); err != nil {
		return nil, err
	}

	return questions, nil
}

// ── Internals ────────────────────────────────────────────────────────────────

func (repository *PostgresRepository) queryQuestions(ctx context.Context, query string, args ...any) ([]*Question, error) {
	rows, err := repository.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "question_repo_list")
	}
	defer rows.Close()

	var questions []*Question
	for rows.Next() {
		q := &Question{}
		if err := rows.Scan(
			&q.ID, &q.Scope, &q.CategoryID, &q.Type, &q.Icon, &q.SortOrder,
			&q.IsRequired, &q.IsFilter, &q.Status, &q.CreatedAt, &q.UpdatedAt, &q.DeletedAt,
		); err != nil {
			return nil, dberr.Wrap(err, "question_repo_scan")
		}
		questions = append(questions, q)
	}

	return questions, dberr.Wrap(rows.Err(), "question_repo_list")
}

// attachChildren loads translations and options for a batch of questions.
func (repository *PostgresRepository) attachChildren(ctx context.Context, questions []*Question, includeDeletedOptions bool) error {
	if len(questions) == 0 {
		return nil
	}

	ids := make([]string, len(questions))
	byID := make(map[string]*Question, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
		byID[q.ID] = q
	}

	// Translations.
	const translationQuery = `
		SELECT questionid, languagecode, title, display, description, placeholder
		FROM forms.questiontranslation
		WHERE questionid = ANY($1)
		ORDER BY languagecode`

	rows, err := repository.pool.Query(ctx, translationQuery, ids)
	if err != nil {
		return dberr.Wrap(err, "question_repo_load_translations")
	}
	defer rows.Close()

	for rows.Next() {
		var questionID string
		var translation Translation
		if err := rows.Scan(&questionID, &translation.LanguageCode, &translation.Title,
			&translation.Display, &translation.Description, &translation.Placeholder); err != nil {
			return dberr.Wrap(err, "question_repo_scan_translation")
		}
		byID[questionID].Translations = append(byID[questionID].Translations, translation)
	}
	if err := rows.Err(); err != nil {
		return dberr.Wrap(err, "question_repo_load_translations")
	}

	// Options.
	optionQuery := `
		SELECT id, questionid, value, sortorder, metadata, createdat, updatedat, deletedat
		FROM forms.option
		WHERE questionid = ANY($1)`
	if !includeDeletedOptions {
		optionQuery += ` AND deletedat IS NULL`
	}
	optionQuery += ` ORDER BY sortorder`

	optionRows, err := repository.pool.Query(ctx, optionQuery, ids)
	if err != nil {
		return dberr.Wrap(err, "question_repo_load_options")
	}
	defer optionRows.Close()

	var options []*Option
	var optionIDs []string
	for optionRows.Next() {
		option := &Option{}
		if err := optionRows.Scan(
			&option.ID, &option.QuestionID, &option.Value, &option.SortOrder,
			&option.Metadata, &option.CreatedAt, &option.UpdatedAt, &option.DeletedAt,
		); err != nil {
			return dberr.Wrap(err, "question_repo_scan_option")
		}
		options = append(options, option)
		optionIDs = append(optionIDs, option.ID)
	}
	if err := optionRows.Err(); err != nil {
		return dberr.Wrap(err, "question_repo_load_options")
	}

	// Option translations.
	if len(optionIDs) > 0 {
		const optionTranslationQuery = `
			SELECT optionid, languagecode, label, display, description
			FROM forms.optiontranslation
			WHERE optionid = ANY($1)
			ORDER BY languagecode`

		translationRows, err := repository.pool.Query(ctx, optionTranslationQuery, optionIDs)
		if err != nil {
			return dberr.Wrap(err, "question_repo_load_option_translations")
		}
		defer translationRows.Close()

		byOptionID := make(map[string]*Option, len(options))
		for _, option := range options {
			byOptionID[option.ID] = option
		}

		for translationRows.Next() {
			var optionID string
			var translation OptionTranslation
			if err := translationRows.Scan(&optionID, &translation.LanguageCode,
				&translation.Label, &translation.Display, &translation.Description); err != nil {
				return dberr.Wrap(err, "question_repo_scan_option_translation")
			}
			byOptionID[optionID].Translations = append(byOptionID[optionID].Translations, translation)
		}
		if err := translationRows.Err(); err != nil {
			return dberr.Wrap(err, "question_repo_load_option_translations")
		}
	}

	for _, option := range options {
		byID[option.QuestionID].Options = append(byID[option.QuestionID].Options, option)
	}

	return nil
}

// upsertOption writes one option row (insert or update by id) and replaces
// its translations.
func upsertOption(ctx context.Context, tx pgx.Tx, option *Option) error {
	query := `
		INSERT INTO ` + schema.FormsOption.Table + ` (id, questionid, value, sortorder, metadata, createdat, updatedat)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (id) DO UPDATE
		SET value = EXCLUDED.value,
		    sortorder = EXCLUDED.sortorder,
		    metadata = EXCLUDED.metadata,
		    updatedat = EXCLUDED.updatedat`

	_, err := tx.Exec(ctx, query,
		option.ID, option.QuestionID, option.Value, option.SortOrder, option.Metadata, time.Now(),
	)
	if err != nil {
		return dberr.Wrap(err, "question_repo_upsert_option")
	}

	clear := `DELETE FROM ` + schema.FormsOptionTranslation.Table + ` WHERE optionid = $1`
	if _, err := tx.Exec(ctx, clear, option.ID); err != nil {
		return dberr.Wrap(err, "question_repo_clear_option_translations")
	}

	insert := `
		INSERT INTO ` + schema.FormsOptionTranslation.Table + ` (optionid, languagecode, label, display, description)
		VALUES ($1, $2, $3, $4, $5)`
	for _, translation := range option.Translations {
		_, err := tx.Exec(ctx, insert,
			option.ID, translation.LanguageCode, translation.Label, translation.Display, translation.Description,
		)
		if err != nil {
			return dberr.Wrap(err, "question_repo_insert_option_translation")
		}
	}

	return nil
}

func replaceQuestionTranslations(ctx context.Context, tx pgx.Tx, questionID string, translations []Translation) error {
	clear := `DELETE FROM ` + schema.FormsQuestionTranslation.Table + ` WHERE questionid = $1`
	if _, err := tx.Exec(ctx, clear, questionID); err != nil {
		return dberr.Wrap(err, "question_repo_clear_translations")
	}

	insert := `
		INSERT INTO ` + schema.FormsQuestionTranslation.Table + ` (questionid, languagecode, title, display, description, placeholder)
		VALUES ($1, $2, $3, $4, $5, $6)`
	for _, translation := range translations {
		_, err := tx.Exec(ctx, insert,
			questionID, translation.LanguageCode, translation.Title,
			translation.Display, translation.Description, translation.Placeholder,
		)
		if err != nil {
			return dberr.Wrap(err, "question_repo_insert_translation")
		}
	}

	return nil
}

// lockSiblings runs a FOR UPDATE query returning one id column and collects
// the ids in their current sort order.
func lockSiblings(ctx context.Context, tx pgx.Tx, query string, args ...any) ([]string, error) {
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
