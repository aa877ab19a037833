// Copyright (c) 2026 Meserio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package taxonomy

import (
	"context"
)

// CategoryFilter narrows admin category listings.
type CategoryFilter struct {
	// ClusterID filters by owning cluster; HasClusterFilter must be true for
	// it to apply (nil + true selects the unassigned set).
	ClusterID        *string
	HasClusterFilter bool

	// IncludeDeleted also returns soft-deleted categories.
	IncludeDeleted bool
}

// Repository is the persistence contract of the taxonomy package.
//
// Implementations own the sibling-order invariant: every Create appends at
// the end of the live sibling set, every soft delete compacts the survivors,
// every restore re-appends, and Reorder* replaces the order of a full set
// atomically. Callers never pass sort positions in.
type Repository interface {
	// Clusters.
	CreateCluster(ctx context.Context, c *Cluster) error
	UpdateCluster(ctx context.Context, c *Cluster) error
	SetClusterActive(ctx context.Context, id string, active bool) error
	FindClusterByID(ctx context.Context, id string) (*Cluster, error)
	ListClusters(ctx context.Context) ([]*Cluster, error)
	// ReorderClusters applies orderedIDs as the complete new order of all
	// clusters. A mismatch with the current set fails without changes.
	ReorderClusters(ctx context.Context, orderedIDs []string) error

	// Categories.
	CreateCategory(ctx context.Context, c *Category) error
	UpdateCategory(ctx context.Context, c *Category) error
	FindCategoryByID(ctx context.Context, id string, includeDeleted bool) (*Category, error)
	FindCategoryBySlug(ctx context.Context, slug string) (*Category, error)
	ListCategories(ctx context.Context, filter CategoryFilter, limit, offset int) ([]*Category, int, error)
	SoftDeleteCategory(ctx context.Context, id string) error
	RestoreCategory(ctx context.Context, id string) error
	// MoveCategory reassigns a category to a new cluster (nil = unassigned),
	// compacting the old sibling set and appending to the new one.
	MoveCategory(ctx context.Context, id string, newClusterID *string) error
	// ReorderCategories applies orderedIDs as the complete new order of the
	// live categories under clusterID (nil = unassigned set).
	ReorderCategories(ctx context.Context, clusterID *string, orderedIDs []string) error

	// Services.
	CreateService(ctx context.Context, s *ServiceItem) error
	UpdateService(ctx context.Context, s *ServiceItem) error
	FindServiceByID(ctx context.Context, id string) (*ServiceItem, error)
	SoftDeleteService(ctx context.Context, id string) error
	ReorderServices(ctx context.Context, categoryID string, orderedIDs []string) error

	// Tree loads all active clusters with their live categories and services,
	// every level ordered by sort order, translations attached.
	Tree(ctx context.Context) ([]*Cluster, error)
}
