// Copyright (c) 2026 Meserio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package taxonomy owns the Cluster → Category → Service hierarchy.

Clusters group categories; categories optionally belong to one cluster (a
NULL cluster id means the shared "unassigned" bucket); services are leaf
offerings under a category. Every sibling set keeps a dense, gapless
0-based sort order across its live members, and categories/services are
soft-deleted so that historical references stay resolvable.

All ordering invariants are enforced by the repository inside single
transactions; callers (admin console, public catalog) never own them.
*/
package taxonomy

import (
	"time"
)

// Translation is the per-language display record shared by clusters,
// categories, and services.
type Translation struct {
	LanguageCode string  `json:"language_code"`
	Name         string  `json:"name"`
	Description  *string `json:"description,omitempty"`
}

// Language implements [i18n.Localized].
func (t Translation) Language() string { return t.LanguageCode }

// Cluster is a top-level taxonomy node.
//
// Clusters are never hard-deleted: deactivation hides them from the public
// catalog while keeping their categories intact.
type Cluster struct {
	ID           string        `json:"id"`
	Icon         *string       `json:"icon"`
	Slug         string        `json:"slug"`
	IsActive     bool          `json:"is_active"`
	SortOrder    int           `json:"sort_order"`
	Translations []Translation `json:"translations"`

	// Categories contains the live child categories, populated in tree reads.
	Categories []*Category `json:"categories,omitempty"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// Category is a service domain, optionally under one cluster.
type Category struct {
	ID string `json:"id"`
	// ClusterID is nil for the "unassigned" sibling set.
	ClusterID    *string       `json:"cluster_id"`
	Icon         *string       `json:"icon"`
	Slug         string        `json:"slug"`
	SortOrder    int           `json:"sort_order"`
	Translations []Translation `json:"translations"`

	// Services contains the live child services, populated in tree reads.
	Services []*ServiceItem `json:"services,omitempty"`

	CreatedAt time.Time  `json:"-"`
	UpdatedAt time.Time  `json:"-"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// IsDeleted reports whether the category has been soft-deleted.
func (c *Category) IsDeleted() bool { return c.DeletedAt != nil }

// ServiceItem is a leaf-level offering under a category. The "Item" suffix
// keeps the entity distinct from the package's [Service] use-case type.
type ServiceItem struct {
	ID           string        `json:"id"`
	CategoryID   string        `json:"category_id"`
	SortOrder    int           `json:"sort_order"`
	Translations []Translation `json:"translations"`

	CreatedAt time.Time  `json:"-"`
	UpdatedAt time.Time  `json:"-"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// IsDeleted reports whether the service has been soft-deleted.
func (s *ServiceItem) IsDeleted() bool { return s.DeletedAt != nil }

// # Public Catalog Projection

// TreeCluster is one cluster of the public catalog tree, with texts resolved
// for a single requested language.
type TreeCluster struct {
	ID          string          `json:"id"`
	Slug        string          `json:"slug"`
	Icon        *string         `json:"icon"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Categories  []*TreeCategory `json:"categories"`
}

// TreeCategory is one category of the public catalog tree.
type TreeCategory struct {
	ID          string         `json:"id"`
	Slug        string         `json:"slug"`
	Icon        *string        `json:"icon"`
	Name        string         `json:"name"`
	Description *string        `json:"description,omitempty"`
	Services    []*TreeService `json:"services"`
}

// TreeService is one service leaf of the public catalog tree.
type TreeService struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
