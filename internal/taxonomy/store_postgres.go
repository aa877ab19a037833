// Copyright (c) 2026 Meserio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// PostgreSQL implementation of the taxonomy [Repository].
//
// # Ordering Discipline
//
// Every mutation that touches a sibling set runs in one transaction and
// starts by locking the live members of that set (SELECT ... FOR UPDATE,
// ordered by sortorder). Appends use the locked count as the next position,
// deletions compact survivors with a single sortorder-shift UPDATE, and
// reorders validate the payload against the locked ids before applying a
// batched unnest UPDATE. Concurrent writers to the same set serialize on the
// row locks, so the dense 0..n-1 invariant holds without table locks.
package taxonomy

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

// NewRepository creates a new PostgreSQL implementation of the taxonomy [Repository].
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// inTx runs fn inside a transaction, committing on success and rolling back
// on error or panic.
func (repository *PostgresRepository) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := repository.pool.Begin(ctx)
	if err != nil {
		return dberr.Wrap(err, "taxonomy_repo_begin_tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if err := fn(tx); err != nil {
		return err
	}

	return dberr.Wrap(tx.Commit(ctx), "taxonomy_repo_commit_tx")
}

// ── Clusters ─────────────────────────────────────────────────────────────────

// CreateCluster appends a cluster at the end of the cluster order and stores
// its translations.
func (repository *PostgresRepository) CreateCluster(ctx context.Context, cluster *Cluster) error {
	return repository.inTx(ctx, func(tx pgx.Tx) error {
		siblings, err := lockSiblings(ctx, tx,
			`SELECT id FROM taxonomy.cluster ORDER BY sortorder FOR UPDATE`)
		if err != nil {
			return dberr.Wrap(err, "taxonomy_repo_lock_clusters")
		}

		now := time.Now()
		cluster.SortOrder = len(siblings)
		cluster.CreatedAt = now
		cluster.UpdatedAt = now

		const query = `
			INSERT INTO taxonomy.cluster (id, icon, slug, isactive, sortorder, createdat, updatedat)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`

		_, err = tx.Exec(ctx, query,
			cluster.ID, cluster.Icon, cluster.Slug, cluster.IsActive,
			cluster.SortOrder, cluster.CreatedAt, cluster.UpdatedAt,
		)
		if err != nil {
			return dberr.Wrap(err, "taxonomy_repo_create_cluster")
		}

		return replaceTranslations(ctx, tx, schema.TaxClusterTranslation.Table, schema.TaxClusterTranslation.ClusterID, cluster.ID, cluster.Translations)
	})
}

// UpdateCluster persists a cluster's mutable fields (icon, translations).
func (repository *PostgresRepository) UpdateCluster(ctx context.Context, cluster *Cluster) error {
	return repository.inTx(ctx, func(tx pgx.Tx) error {
		const query = `
			UPDATE taxonomy.cluster
			SET icon = $2, updatedat = $3
			WHERE id = $1`

		cluster.UpdatedAt = time.Now()
		tag, err := tx.Exec(ctx, query, cluster.ID, cluster.Icon, cluster.UpdatedAt)
		if err != nil {
			return dberr.Wrap(err, "taxonomy_repo_update_cluster")
		}
		if tag.RowsAffected() == 0 {
			return apperr.NotFound("Cluster")
		}

		return replaceTranslations(ctx, tx, schema.TaxClusterTranslation.Table, schema.TaxClusterTranslation.ClusterID, cluster.ID, cluster.Translations)
	})
}

// SetClusterActive toggles a cluster's public visibility.
func (repository *PostgresRepository) SetClusterActive(ctx context.Context, id string, active bool) error {
	const query = `UPDATE taxonomy.cluster SET isactive = $2, updatedat = $3 WHERE id = $1`

	tag, err := repository.pool.Exec(ctx, query, id, active, time.Now())
	if err != nil {
		return dberr.Wrap(err, "taxonomy_repo_set_cluster_active")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Cluster")
	}

	return nil
}

// FindClusterByID retrieves one cluster with its translations.
func (repository *PostgresRepository) FindClusterByID(ctx context.Context, id string) (*Cluster, error) {
	const query = `
		SELECT id, icon, slug, isactive, sortorder, createdat, updatedat
		FROM taxonomy.cluster
		WHERE id = $1`

	cluster := &Cluster{}
	err := repository.pool.QueryRow(ctx, query, id).Scan(
		&cluster.ID, &cluster.Icon, &cluster.Slug, &cluster.IsActive,
		&cluster.SortOrder, &cluster.CreatedAt, &cluster.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Cluster")
		}
		return nil, dberr.Wrap(err, "taxonomy_repo_find_cluster")
	}

	translations, err := repository.loadTranslations(ctx, schema.TaxClusterTranslation.Table, schema.TaxClusterTranslation.ClusterID, []string{id})
	if err != nil {
		return nil, err
	}
	cluster.Translations = translations[id]

	return cluster, nil
}

// ListClusters retrieves all clusters (active and inactive) in sort order.
func (repository *PostgresRepository) ListClusters(ctx context.Context) ([]*Cluster, error) {
	const query = `
		SELECT id, icon, slug, isactive, sortorder, createdat, updatedat
		FROM taxonomy.cluster
		ORDER BY sortorder`

	rows, err := repository.pool.Query(ctx, query)
	if err != nil {
		return nil, dberr.Wrap(err, "taxonomy_repo_list_clusters")
	}
	defer rows.Close()

	var clusters []*Cluster
	var ids []string
	for rows.Next() {
		cluster := &Cluster{}
		if err := rows.Scan(
			&cluster.ID, &cluster.Icon, &cluster.Slug, &cluster.IsActive,
			&cluster.SortOrder, &cluster.CreatedAt, &cluster.UpdatedAt,
		); err != nil {
			return nil, dberr.Wrap(err, "taxonomy_repo_scan_cluster")
		}
		clusters = append(clusters, cluster)
		ids = append(ids, cluster.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "taxonomy_repo_list_clusters")
	}

	translations, err := repository.loadTranslations(ctx, schema.TaxClusterTranslation.Table, schema.TaxClusterTranslation.ClusterID, ids)
	if err != nil {
		return nil, err
	}
	for _, cluster := range clusters {
		cluster.Translations = translations[cluster.ID]
	}

	return clusters, nil
}

// ReorderClusters atomically applies a full permutation of the cluster set.
func (repository *PostgresRepository) ReorderClusters(ctx context.Context, orderedIDs []string) error {
	return repository.inTx(ctx, func(tx pgx.Tx) error {
		current, err := lockSiblings(ctx, tx,
			`SELECT id FROM taxonomy.cluster ORDER BY sortorder FOR UPDATE`)
		if err != nil {
			return dberr.Wrap(err, "taxonomy_repo_lock_clusters")
		}

		if err := order.ValidatePermutation(current, orderedIDs); err != nil {
			return apperr.IncompleteReorder(err.Error())
		}

		return applyOrder(ctx, tx, schema.TaxCluster.Table, orderedIDs)
	})
}

// ── Categories ───────────────────────────────────────────────────────────────

// categorySiblingsQuery locks the live categories of one sibling set.
// IS NOT DISTINCT FROM treats the NULL (unassigned) set as a plain value.
const categorySiblingsQuery = `
	SELECT id FROM taxonomy.category
	WHERE clusterid IS NOT DISTINCT FROM $1 AND deletedat IS NULL
	ORDER BY sortorder
	FOR UPDATE`

// CreateCategory appends a category at the end of its cluster's live sibling
// set. A dangling cluster reference fails with INVALID_REFERENCE.
func (repository *PostgresRepository) CreateCategory(ctx context.Context, category *Category) error {
	return repository.inTx(ctx, func(tx pgx.Tx) error {
		if err := checkClusterRef(ctx, tx, category.ClusterID); err != nil {
			return err
		}

		siblings, err := lockSiblings(ctx, tx, categorySiblingsQuery, category.ClusterID)
		if err != nil {
			return dberr.Wrap(err, "taxonomy_repo_lock_categories")
		}

		now := time.Now()
		category.SortOrder = len(siblings)
		category.CreatedAt = now
		category.UpdatedAt = now

		const query = `
			INSERT INTO taxonomy.category (id, clusterid, icon, slug, sortorder, createdat, updatedat)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`

		_, err = tx.Exec(ctx, query,
			category.ID, category.ClusterID, category.Icon, category.Slug,
			category.SortOrder, category.CreatedAt, category.UpdatedAt,
		)
		if err != nil {
			return dberr.Wrap(err, "taxonomy_repo_create_category")
		}

		return replaceTranslations(ctx, tx, schema.TaxCategoryTranslation.Table, schema.TaxCategoryTranslation.CategoryID, category.ID, category.Translations)
	})
}

// UpdateCategory persists a category's mutable fields (icon, translations).
// Cluster membership changes go through [PostgresRepository.MoveCategory].
func (repository *PostgresRepository) UpdateCategory(ctx context.Context, category *Category) error {
	return repository.inTx(ctx, func(tx pgx.Tx) error {
		const query = `
			UPDATE taxonomy.category
			SET icon = $2, updatedat = $3
			WHERE id = $1 AND deletedat IS NULL`

		category.UpdatedAt = time.Now()
		tag, err := tx.Exec(ctx, query, category.ID, category.Icon, category.UpdatedAt)
		if err != nil {
			return dberr.Wrap(err, "taxonomy_repo_update_category")
		}
		if tag.RowsAffected() == 0 {
			return apperr.NotFound("Category")
		}

		return replaceTranslations(ctx, tx, schema.TaxCategoryTranslation.Table, schema.TaxCategoryTranslation.CategoryID, category.ID, category.Translations)
	})
}

// FindCategoryByID retrieves one category with translations and live services.
func (repository *PostgresRepository) FindCategoryByID(ctx context.Context, id string, includeDeleted bool) (*Category, error) {
	query := `
		SELECT id, clusterid, icon, slug, sortorder, createdat, updatedat, deletedat
		FROM taxonomy.category
		WHERE id = $1`
	if !includeDeleted {
		query += ` AND deletedat IS NULL`
	}

	category := &Category{}
	err := repository.pool.QueryRow(ctx, query, id).Scan(
		&category.ID, &category.ClusterID, &category.Icon, &category.Slug,
		&category.SortOrder, &category.CreatedAt, &category.UpdatedAt, &category.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Category")
		}
		return nil, dberr.Wrap(err, "taxonomy_repo_find_category")
	}

	if err := repository.attachCategoryChildren(ctx, []*Category{category}); err != nil {
		return nil, err
	}

	return category, nil
}

// FindCategoryBySlug retrieves one live category by its public slug.
func (repository *PostgresRepository) FindCategoryBySlug(ctx context.Context, slug string) (*Category, error) {
	const query = `
		SELECT id, clusterid, icon, slug, sortorder, createdat, updatedat, deletedat
		FROM taxonomy.category
		WHERE slug = $1 AND deletedat IS NULL`

	category := &Category{}
	err := repository.pool.QueryRow(ctx, query, slug).Scan(
		&category.ID, &category.ClusterID, &category.Icon, &category.Slug,
		&category.SortOrder, &category.CreatedAt, &category.UpdatedAt, &category.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Category")
		}
		return nil, dberr.Wrap(err, "taxonomy_repo_find_category_by_slug")
	}

	if err := repository.attachCategoryChildren(ctx, []*Category{category}); err != nil {
		return nil, err
	}

	return category, nil
}

// ListCategories retrieves a page of categories for the admin console,
// alongside the total count matching the filter.
func (repository *PostgresRepository) ListCategories(ctx context.Context, filter CategoryFilter, limit, offset int) ([]*Category, int, error) {
	where := "TRUE"
	args := []any{}
	if filter.HasClusterFilter {
		args = append(args, filter.ClusterID)
		where += fmt.Sprintf(" AND clusterid IS NOT DISTINCT FROM $%d", len(args))
	}
	if !filter.IncludeDeleted {
		where += " AND deletedat IS NULL"
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM taxonomy.category WHERE ` + where
	if err := repository.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "taxonomy_repo_count_categories")
	}

	args = append(args, limit, offset)
	listQuery := fmt.Sprintf(`
		SELECT id, clusterid, icon, slug, sortorder, createdat, updatedat, deletedat
		FROM taxonomy.category
		WHERE %s
		ORDER BY sortorder, createdat
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := repository.pool.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "taxonomy_repo_list_categories")
	}
	defer rows.Close()

	var categories []*Category
	for rows.Next() {
		category := &Category{}
		if err := rows.Scan(
			&category.ID, &category.ClusterID, &category.Icon, &category.Slug,
			&category.SortOrder, &category.CreatedAt, &category.UpdatedAt, &category.DeletedAt,
		); err != nil {
			return nil, 0, dberr.Wrap(err, "taxonomy_repo_scan_category")
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "taxonomy_repo_list_categories")
	}

	if err := repository.attachTranslationsOnly(ctx, categories); err != nil {
		return nil, 0, err
	}

	return categories, total, nil
}

// SoftDeleteCategory marks a category deleted and compacts the surviving
// sibling order. Deleting an already-deleted category is a no-op.
func (repository *PostgresRepository) SoftDeleteCategory(ctx context.Context, id string) error {
	return repository.inTx(ctx, func(tx pgx.Tx) error {
		var clusterID *string
		var sortOrder int
		var deletedAt *time.Time
		err := tx.QueryRow(ctx,
			`SELECT clusterid, sortorder, deletedat FROM taxonomy.category WHERE id = $1 FOR UPDATE`,
			id,
		).Scan(&clusterID, &sortOrder, &deletedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperr.NotFound("Category")
			}
			return dberr.Wrap(err, "taxonomy_repo_lock_category")
		}
		if deletedAt != nil {
			return nil
		}

		if _, err := lockSiblings(ctx, tx, categorySiblingsQuery, clusterID); err != nil {
			return dberr.Wrap(err, "taxonomy_repo_lock_categories")
		}

		now := time.Now()
		_, err = tx.Exec(ctx,
			`UPDATE taxonomy.category SET deletedat = $2, updatedat = $2 WHERE id = $1`,
			id, now,
		)
		if err != nil {
			return dberr.Wrap(err, "taxonomy_repo_soft_delete_category")
		}

		// Close the gap left by the deleted position.
		_, err = tx.Exec(ctx, `
			UPDATE taxonomy.category
			SET sortorder = sortorder - 1
			WHERE clusterid IS NOT DISTINCT FROM $1 AND deletedat IS NULL AND sortorder > $2`,
			clusterID, sortOrder,
		)
		return dberr.Wrap(err, "taxonomy_repo_compact_categories")
	})
}

// RestoreCategory undeletes a category, appending it at the end of its
// cluster's current live order. Restoring a live category is a no-op.
func (repository *PostgresRepository) RestoreCategory(ctx context.Context, id string) error {
	return repository.inTx(ctx, func(tx pgx.Tx) error {
		var clusterID *string
		var deletedAt *time.Time
		err := tx.QueryRow(ctx,
			`SELECT clusterid, deletedat FROM taxonomy.category WHERE id = $1 FOR UPDATE`,
			id,
		).Scan(&clusterID, &deletedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperr.NotFound("Category")
			}
			return dberr.Wrap(err, "taxonomy_repo_lock_category")
		}
		if deletedAt == nil {
			return nil
		}

		siblings, err := lockSiblings(ctx, tx, categorySiblingsQuery, clusterID)
		if err != nil {
			return dberr.Wrap(err, "taxonomy_repo_lock_categories")
		}

		_, err = tx.Exec(ctx, `
			UPDATE taxonomy.category
			SET deletedat = NULL, sortorder = $2, updatedat = $3
			WHERE id = $1`,
			id, len(siblings), time.Now(),
		)
		return dberr.Wrap(err, "taxonomy_repo_restore_category")
	})
}

// MoveCategory reassigns a live category to a different cluster, compacting
// the old sibling set and appending at the end of the new one.
func (repository *PostgresRepository) MoveCategory(ctx context.Context, id string, newClusterID *string) error {
	return repository.inTx(ctx, func(tx pgx.Tx) error {
		var oldClusterID *string
		var sortOrder int
		err := tx.QueryRow(ctx,
			`SELECT clusterid, sortorder FROM taxonomy.category WHERE id = $1 AND deletedat IS NULL FOR UPDATE`,
			id,
		).Scan(&oldClusterID, &sortOrder)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperr.NotFound("Category")
			}
			return dberr.Wrap(err, "taxonomy_repo_lock_category")
		}

		if sameClusterRef(oldClusterID, newClusterID) {
			return nil
		}
		if err := checkClusterRef(ctx, tx, newClusterID); err != nil {
			return err
		}

		// Lock both sets in a stable order to avoid lock inversion between
		// two concurrent opposite moves.
		first, second := oldClusterID, newClusterID
		if clusterRefKey(first) > clusterRefKey(second) {
			first, second = second, first
		}
		for _, set := range []*string{first, second} {
			if _, err := lockSiblings(ctx, tx, categorySiblingsQuery, set); err != nil {
				return dberr.Wrap(err, "taxonomy_repo_lock_categories")
			}
		}
		targetSiblings, err := lockSiblings(ctx, tx, categorySiblingsQuery, newClusterID)
		if err != nil {
			return dberr.Wrap(err, "taxonomy_repo_lock_categories")
		}

		_, err = tx.Exec(ctx, `
			UPDATE taxonomy.category
			SET clusterid = $2, sortorder = $3, updatedat = $4
			WHERE id = $1`,
			id, newClusterID, len(targetSiblings), time.Now(),
		)
		if err != nil {
			return dberr.Wrap(err, "taxonomy_repo_move_category")
		}

		_, err = tx.Exec(ctx, `
			UPDATE taxonomy.category
			SET sortorder = sortorder - 1
			WHERE clusterid IS NOT DISTINCT FROM $1 AND deletedat IS NULL AND sortorder > $2`,
			oldClusterID, sortOrder,
		)
		return dberr.Wrap(err, "taxonomy_repo_compact_categories")
	})
}

// ReorderCategories atomically applies a full permutation of one cluster's
// live category set (nil clusterID targets the unassigned set).
func (repository *PostgresRepository) ReorderCategories(ctx context.Context, clusterID *string, orderedIDs []string) error {
	return repository.inTx(ctx, func(tx pgx.Tx) error {
		current, err := lockSiblings(ctx, tx, categorySiblingsQuery, clusterID)
		if err != nil {
			return dberr.Wrap(err, "taxonomy_repo_lock_categories")
		}

		if err := order.ValidatePermutation(current, orderedIDs); err != nil {
			return apperr.IncompleteReorder(err.Error())
		}

		return applyOrder(ctx, tx, schema.TaxCategory.Table, orderedIDs)
	})
}

// ── Services ─────────────────────────────────────────────────────────────────

const serviceSiblingsQuery = `
	SELECT id FROM taxonomy.service
	WHERE categoryid = $1 AND deletedat IS NULL
	ORDER BY sortorder
	FOR UPDATE`

// CreateService appends a service at the end of its category's live order.
func (repository *PostgresRepository) CreateService(ctx context.Context, service *ServiceItem) error {
	return repository.inTx(ctx, func(tx pgx.Tx) error {
		var exists bool
		err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM taxonomy.category WHERE id = $1 AND deletedat IS NULL)`,
			service.CategoryID,
		).Scan(&exists)
		if err != nil {
			return dberr.Wrap(err, "taxonomy_repo_check_category_ref")
		}
		if !exists {
			return apperr.InvalidReference("Category does not exist")
		}

		siblings, err := lockSiblings(ctx, tx, serviceSiblingsQuery, service.CategoryID)
		if err != nil {
			return dberr.Wrap(err, "taxonomy_repo_lock_services")
		}

		now := time.Now()
		service.SortOrder = len(siblings)
		service.CreatedAt = now
		service.UpdatedAt = now

		const query = `
			INSERT INTO taxonomy.service (id, categoryid, sortorder, createdat, updatedat)
			VALUES ($1, $2, $3, $4, $5)`

		_, err = tx.Exec(ctx, query,
			service.ID, service.CategoryID, service.SortOrder, service.CreatedAt, service.UpdatedAt,
		)
		if err != nil {
			return dberr.Wrap(err, "taxonomy_repo_create_service")
		}

		return replaceTranslations(ctx, tx, schema.TaxServiceTranslation.Table, schema.TaxServiceTranslation.ServiceID, service.ID, service.Translations)
	})
}

// UpdateService persists a service's translations.
func (repository *PostgresRepository) UpdateService(ctx context.Context, service *ServiceItem) error {
	return repository.inTx(ctx, func(tx pgx.Tx) error {
		const query = `
			UPDATE taxonomy.service
			SET updatedat = $2
			WHERE id = $1 AND deletedat IS NULL`

		service.UpdatedAt = time.Now()
		tag, err := tx.Exec(ctx, query, service.ID, service.UpdatedAt)
		if err != nil {
			return dberr.Wrap(err, "taxonomy_repo_update_service")
		}
		if tag.RowsAffected() == 0 {
			return apperr.NotFound("Service")
		}

		return replaceTranslations(ctx, tx, schema.TaxServiceTranslation.Table, schema.TaxServiceTranslation.ServiceID, service.ID, service.Translations)
	})
}

// FindServiceByID retrieves one live service with its translations.
func (repository *PostgresRepository) FindServiceByID(ctx context.Context, id string) (*ServiceItem, error) {
	const query = `
		SELECT id, categoryid, sortorder, createdat, updatedat, deletedat
		FROM taxonomy.service
		WHERE id = $1 AND deletedat IS NULL`

	service := &ServiceItem{}
	err := repository.pool.QueryRow(ctx, query, id).Scan(
		&service.ID, &service.CategoryID, &service.SortOrder,
		&service.CreatedAt, &service.UpdatedAt, &service.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Service")
		}
		return nil, dberr.Wrap(err, "taxonomy_repo_find_service")
	}

	translations, err := repository.loadTranslations(ctx, schema.TaxServiceTranslation.Table, schema.TaxServiceTranslation.ServiceID, []string{id})
	if err != nil {
		return nil, err
	}
	service.Translations = translations[id]

	return service, nil
}

// SoftDeleteService marks a service deleted and compacts its siblings.
func (repository *PostgresRepository) SoftDeleteService(ctx context.Context, id string) error {
	return repository.inTx(ctx, func(tx pgx.Tx) error {
		var categoryID string
		var sortOrder int
		var deletedAt *time.Time
		err := tx.QueryRow(ctx,
			`SELECT categoryid, sortorder, deletedat FROM taxonomy.service WHERE id = $1 FOR UPDATE`,
			id,
		).Scan(&categoryID, &sortOrder, &deletedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperr.NotFound("Service")
			}
			return dberr.Wrap(err, "taxonomy_repo_lock_service")
		}
		if deletedAt != nil {
			return nil
		}

		if _, err := lockSiblings(ctx, tx, serviceSiblingsQuery, categoryID); err != nil {
			return dberr.Wrap(err, "taxonomy_repo_lock_services")
		}

		now := time.Now()
		_, err = tx.Exec(ctx,
			`UPDATE taxonomy.service SET deletedat = $2, updatedat = $2 WHERE id = $1`,
			id, now,
		)
		if err != nil {
			return dberr.Wrap(err, "taxonomy_repo_soft_delete_service")
		}

		_, err = tx.Exec(ctx, `
			UPDATE taxonomy.service
			SET sortorder = sortorder - 1
			WHERE categoryid = $1 AND deletedat IS NULL AND sortorder > $2`,
			categoryID, sortOrder,
		)
		return dberr.Wrap(err, "taxonomy_repo_compact_services")
	})
}

// ReorderServices atomically applies a full permutation of one category's
// live service set.
func (repository *PostgresRepository) ReorderServices(ctx context.Context, categoryID string, orderedIDs []string) error {
	return repository.inTx(ctx, func(tx pgx.Tx) error {
		current, err := lockSiblings(ctx, tx, serviceSiblingsQuery, categoryID)
		if err != nil {
			return dberr.Wrap(err, "taxonomy_repo_lock_services")
		}

		if err := order.ValidatePermutation(current, orderedIDs); err != nil {
			return apperr.IncompleteReorder(err.Error())
		}

		return applyOrder(ctx, tx, schema.TaxService.Table, orderedIDs)
	})
}

// ── Tree ─────────────────────────────────────────────────────────────────────

// Tree loads the full active catalog: active clusters, their live categories,
// and live services, each level in sort order with translations attached.
func (repository *PostgresRepository) Tree(ctx context.Context) ([]*Cluster, error) {
	clusters, err := repository.ListClusters(ctx)
	if err != nil {
		return nil, err
	}
	clusters = filterActive(clusters)

	const categoryQuery = `
		SELECT id, clusterid, icon, slug, sortorder, createdat, updatedat, deletedat
		FROM taxonomy.category
		WHERE deletedat IS NULL AND clusterid IS NOT NULL
		ORDER BY sortorder`

	rows, err := repository.pool.Query(ctx, categoryQuery)
	if err != nil {
		return nil, dberr.Wrap(err, "taxonomy_repo_tree_categories")
	}
	defer rows.Close()

	byCluster := make(map[string][]*Category)
	var categories []*Category
	for rows.Next() {
		category := &Category{}
		if err := rows.Scan(
			&category.ID, &category.ClusterID, &category.Icon, &category.Slug,
			&category.SortOrder, &category.CreatedAt, &category.UpdatedAt, &category.DeletedAt,
		); err != nil {
			return nil, dberr.Wrap(err, "taxonomy_repo_scan_category")
		}
		categories = append(categories, category)
		byCluster[*category.ClusterID] = append(byCluster[*category.ClusterID], category)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "taxonomy_repo_tree_categories")
	}

	if err := repository.attachCategoryChildren(ctx, categories); err != nil {
		return nil, err
	}

	for _, cluster := range clusters {
		cluster.Categories = byCluster[cluster.ID]
	}

	return clusters, nil
}

// ── Internals ────────────────────────────────────────────────────────────────

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

// applyOrder writes the 0-based positions of orderedIDs in one batched
// UPDATE. Callers must have validated the permutation first.
func applyOrder(ctx context.Context, tx pgx.Tx, table string, orderedIDs []string) error {
	positions := make([]int, len(orderedIDs))
	for i := range orderedIDs {
		positions[i] = i
	}

	query := fmt.Sprintf(`
		UPDATE %s AS t
		SET sortorder = v.position, updatedat = NOW()
		FROM (SELECT unnest($1::uuid[]) AS id, unnest($2::int[]) AS position) AS v
		WHERE t.id = v.id`, table)

	_, err := tx.Exec(ctx, query, orderedIDs, positions)
	return dberr.Wrap(err, "taxonomy_repo_apply_order")
}

// replaceTranslations swaps the full translation set of one owner row.
func replaceTranslations(ctx context.Context, tx pgx.Tx, table, ownerColumn, ownerID string, translations []Translation) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, table, ownerColumn)
	if _, err := tx.Exec(ctx, query, ownerID); err != nil {
		return dberr.Wrap(err, "taxonomy_repo_clear_translations")
	}

	insert := fmt.Sprintf(`
		INSERT INTO %s (%s, languagecode, name, description)
		VALUES ($1, $2, $3, $4)`, table, ownerColumn)
	for _, translation := range translations {
		_, err := tx.Exec(ctx, insert, ownerID, translation.LanguageCode, translation.Name, translation.Description)
		if err != nil {
			return dberr.Wrap(err, "taxonomy_repo_insert_translation")
		}
	}

	return nil
}

// loadTranslations fetches the translations of many owner rows in one query,
// keyed by owner id.
func (repository *PostgresRepository) loadTranslations(ctx context.Context, table, ownerColumn string, ownerIDs []string) (map[string][]Translation, error) {
	result := make(map[string][]Translation, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return result, nil
	}

	query := fmt.Sprintf(`
		SELECT %s, languagecode, name, description
		FROM %s
		WHERE %s = ANY($1)
		ORDER BY languagecode`, ownerColumn, table, ownerColumn)

	rows, err := repository.pool.Query(ctx, query, ownerIDs)
	if err != nil {
		return nil, dberr.Wrap(err, "taxonomy_repo_load_translations")
	}
	defer rows.Close()

	for rows.Next() {
		var ownerID string
		var translation Translation
		if err := rows.Scan(&ownerID, &translation.LanguageCode, &translation.Name, &translation.Description); err != nil {
			return nil, dberr.Wrap(err, "taxonomy_repo_scan_translation")
		}
		result[ownerID] = append(result[ownerID], translation)
	}

	return result, dberr.Wrap(rows.Err(), "taxonomy_repo_load_translations")
}

// attachTranslationsOnly fills Translations for a batch of categories.
func (repository *PostgresRepository) attachTranslationsOnly(ctx context.Context, categories []*Category) error {
	ids := make([]string, len(categories))
	for i, category := range categories {
		ids[i] = category.ID
	}

	translations, err := repository.loadTranslations(ctx, schema.TaxCategoryTranslation.Table, schema.TaxCategoryTranslation.CategoryID, ids)
	if err != nil {
		return err
	}
	for _, category := range categories {
		category.Translations = translations[category.ID]
	}

	return nil
}

// attachCategoryChildren fills Translations and live Services (with their own
// translations) for a batch of categories.
func (repository *PostgresRepository) attachCategoryChildren(ctx context.Context, categories []*Category) error {
	if len(categories) == 0 {
		return nil
	}
	if err := repository.attachTranslationsOnly(ctx, categories); err != nil {
		return err
	}

	ids := make([]string, len(categories))
	for i, category := range categories {
		ids[i] = category.ID
	}

	const query = `
		SELECT id, categoryid, sortorder, createdat, updatedat
		FROM taxonomy.service
		WHERE categoryid = ANY($1) AND deletedat IS NULL
		ORDER BY sortorder`

	rows, err := repository.pool.Query(ctx, query, ids)
	if err != nil {
		return dberr.Wrap(err, "taxonomy_repo_load_services")
	}
	defer rows.Close()

	byCategory := make(map[string][]*ServiceItem)
	var services []*ServiceItem
	var serviceIDs []string
	for rows.Next() {
		service := &ServiceItem{}
		if err := rows.Scan(
			&service.ID, &service.CategoryID, &service.SortOrder,
			&service.CreatedAt, &service.UpdatedAt,
		); err != nil {
			return dberr.Wrap(err, "taxonomy_repo_scan_service")
		}
		services = append(services, service)
		serviceIDs = append(serviceIDs, service.ID)
		byCategory[service.CategoryID] = append(byCategory[service.CategoryID], service)
	}
	if err := rows.Err(); err != nil {
		return dberr.Wrap(err, "taxonomy_repo_load_services")
	}

	translations, err := repository.loadTranslations(ctx, schema.TaxServiceTranslation.Table, schema.TaxServiceTranslation.ServiceID, serviceIDs)
	if err != nil {
		return err
	}
	for _, service := range services {
		service.Translations = translations[service.ID]
	}

	for _, category := range categories {
		category.Services = byCategory[category.ID]
	}

	return nil
}

// checkClusterRef verifies a non-nil cluster reference points at an existing
// cluster, failing with INVALID_REFERENCE otherwise.
func checkClusterRef(ctx context.Context, tx pgx.Tx, clusterID *string) error {
	if clusterID == nil {
		return nil
	}

	var exists bool
	err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM taxonomy.cluster WHERE id = $1)`, *clusterID,
	).Scan(&exists)
	if err != nil {
		return dberr.Wrap(err, "taxonomy_repo_check_cluster_ref")
	}
	if !exists {
		return apperr.InvalidReference("Cluster does not exist")
	}

	return nil
}

func sameClusterRef(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// clusterRefKey gives cluster references a total order for deterministic
// lock acquisition (nil sorts first).
func clusterRefKey(id *string) string {
	if id == nil {
		return ""
	}
	return "1" + *id
}

func filterActive(clusters []*Cluster) []*Cluster {
	var active []*Cluster
	for _, cluster := range clusters {
		if cluster.IsActive {
			active = append(active, cluster)
		}
	}
	return active
}
