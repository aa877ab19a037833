// Copyright (c) 2026 Meserio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// PostgreSQL implementation of the answer [Repository].
package answer

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/meserio/internal/platform/database/schema"
	"github.com/taibuivan/meserio/internal/platform/dberr"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the answer [Repository].
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// SaveAll upserts every answer of one submission in a single transaction.
//
// The (firmid, questionid) unique key makes resubmission an update: the
// stored answer keeps its id while its value, option links, and translations
// are replaced. A failing answer rolls back the entire submission.
func (repository *PostgresRepository) SaveAll(ctx context.Context, firmID string, answers []*Answer) error {
	tx, err := repository.pool.Begin(ctx)
	if err != nil {
		return dberr.Wrap(err, "answer_repo_begin_tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	for _, answer := range answers {
		if err := upsertAnswer(ctx, tx, firmID, answer); err != nil {
			return err
		}
	}

	return dberr.Wrap(tx.Commit(ctx), "answer_repo_commit_tx")
}

func upsertAnswer(ctx context.Context, tx pgx.Tx, firmID string, answer *Answer) error {
	query := `
		INSERT INTO ` + schema.FormsAnswer.Table + ` (id, firmid, questionid, value, selectedoptionid, createdat, updatedat)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (firmid, questionid) DO UPDATE
		SET value = EXCLUDED.value,
		    selectedoptionid = EXCLUDED.selectedoptionid,
		    updatedat = EXCLUDED.updatedat
		RETURNING id`

	answer.FirmID = firmID
	now := time.Now()

	// RETURNING hands back the surviving row id on conflict, so option and
	// translation rows always attach to the stored answer.
	var storedID string
	err := tx.QueryRow(ctx, query,
		answer.ID, firmID, answer.QuestionID, answer.Value, answer.SelectedOptionID, now,
	).Scan(&storedID)
	if err != nil {
		return dberr.Wrap(err, "answer_repo_upsert")
	}
	answer.ID = storedID
	answer.UpdatedAt = now

	clearOptions := `DELETE FROM ` + schema.FormsAnswerOption.Table + ` WHERE answerid = $1`
	if _, err := tx.Exec(ctx, clearOptions, storedID); err != nil {
		return dberr.Wrap(err, "answer_repo_clear_options")
	}
	insertOption := `INSERT INTO ` + schema.FormsAnswerOption.Table + ` (answerid, optionid) VALUES ($1, $2)`
	for _, optionID := range answer.SelectedOptionIDs {
		if _, err := tx.Exec(ctx, insertOption, storedID, optionID); err != nil {
			return dberr.Wrap(err, "answer_repo_insert_option")
		}
	}

	clearTranslations := `DELETE FROM ` + schema.FormsAnswerTranslation.Table + ` WHERE answerid = $1`
	if _, err := tx.Exec(ctx, clearTranslations, storedID); err != nil {
		return dberr.Wrap(err, "answer_repo_clear_translations")
	}
	insertTranslation := `INSERT INTO ` + schema.FormsAnswerTranslation.Table + ` (answerid, languagecode, content) VALUES ($1, $2, $3)`
	for _, translation := range answer.Translations {
		if _, err := tx.Exec(ctx, insertTranslation, storedID, translation.LanguageCode, translation.Content); err != nil {
			return dberr.Wrap(err, "answer_repo_insert_translation")
		}
	}

	return nil
}

// ListByFirm loads every stored answer of one firm with option links and
// translations attached.
func (repository *PostgresRepository) ListByFirm(ctx context.Context, firmID string) ([]*Answer, error) {
	const query = `
		SELECT id, firmid, questionid, value, selectedoptionid, createdat, updatedat
		FROM forms.answer
		WHERE firmid = $1
		ORDER BY createdat`

	rows, err := repository.pool.Query(ctx, query, firmID)
	if err != nil {
		return nil, dberr.Wrap(err, "answer_repo_list")
	}
	defer rows.Close()

	var answers []*Answer
	var ids []string
	byID := make(map[string]*Answer)
	for rows.Next() {
		answer := &Answer{}
		if err := rows.Scan(
			&answer.ID, &answer.FirmID, &answer.QuestionID,
			&answer.Value, &answer.SelectedOptionID, &answer.CreatedAt, &answer.UpdatedAt,
		); err != nil {
			return nil, dberr.Wrap(err, "answer_repo_scan")
		}
		answers = append(answers, answer)
		ids = append(ids, answer.ID)
		byID[answer.ID] = answer
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "answer_repo_list")
	}
	if len(answers) == 0 {
		return answers, nil
	}

	optionRows, err := repository.pool.Query(ctx,
		`SELECT answerid, optionid FROM forms.answeroption WHERE answerid = ANY($1)`, ids)
	if err != nil {
		return nil, dberr.Wrap(err, "answer_repo_load_options")
	}
	defer optionRows.Close()

	for optionRows.Next() {
		var answerID, optionID string
		if err := optionRows.Scan(&answerID, &optionID); err != nil {
			return nil, dberr.Wrap(err, "answer_repo_scan_option")
		}
		byID[answerID].SelectedOptionIDs = append(byID[answerID].SelectedOptionIDs, optionID)
	}
	if err := optionRows.Err(); err != nil {
		return nil, dberr.Wrap(err, "answer_repo_load_options")
	}

	translationRows, err := repository.pool.Query(ctx,
		`SELECT answerid, languagecode, content FROM forms.answertranslation WHERE answerid = ANY($1) ORDER BY languagecode`, ids)
	if err != nil {
		return nil, dberr.Wrap(err, "answer_repo_load_translations")
	}
	defer translationRows.Close()

	for translationRows.Next() {
		var answerID string
		var translation Translation
		if err := translationRows.Scan(&answerID, &translation.LanguageCode, &translation.Content); err != nil {
			return nil, dberr.Wrap(err, "answer_repo_scan_translation")
		}
		byID[answerID].Translations = append(byID[answerID].Translations, translation)
	}

	return answers, dberr.Wrap(translationRows.Err(), "answer_repo_load_translations")
}
