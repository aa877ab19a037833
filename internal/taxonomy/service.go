// Copyright (c) 2026 Meserio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Business logic (Use Cases) of the taxonomy package.
//
// # Architecture
//
// The service validates admin input, constructs entities, and delegates all
// ordering and persistence to the [Repository]. It is technology-agnostic:
// it does not know about HTTP or SQL, only about the domain rules.
package taxonomy

import (
	"context"

	"github.com/taibuivan/meserio/internal/platform/validate"
	"github.com/taibuivan/meserio/pkg/i18n"
	"github.com/taibuivan/meserio/pkg/slice"
	"github.com/taibuivan/meserio/pkg/slug"
	"github.com/taibuivan/meserio/pkg/uuidv7"
)

// Service implements taxonomy administration and public catalog use cases.
type Service struct {
	repository Repository
	cache      *TreeCache
	// languages is the set of supported language codes; the first-configured
	// default is resolved through [i18n.DefaultLanguage].
	languages []string
}

// NewService constructs a taxonomy [Service]. The cache may be nil, which
// disables catalog tree caching (used in tests).
func NewService(repository Repository, cache *TreeCache, languages []string) *Service {
	return &Service{
		repository: repository,
		cache:      cache,
		languages:  languages,
	}
}

// TranslationInput is one per-language display record in admin payloads.
type TranslationInput struct {
	LanguageCode string  `json:"language_code"`
	Name         string  `json:"name"`
	Description  *string `json:"description"`
}

// ClusterInput holds the admin-editable fields of a cluster.
type ClusterInput struct {
	Icon         *string            `json:"icon"`
	Translations []TranslationInput `json:"translations"`
}

// CategoryInput holds the admin-editable fields of a category.
type CategoryInput struct {
	ClusterID    *string            `json:"cluster_id"`
	Icon         *string            `json:"icon"`
	Translations []TranslationInput `json:"translations"`
}

// ServiceInput holds the admin-editable fields of a service leaf.
type ServiceInput struct {
	Translations []TranslationInput `json:"translations"`
}

// ── Clusters ─────────────────────────────────────────────────────────────────

// CreateCluster validates and persists a new cluster, appended at the end of
// the cluster order. The slug is derived from the default-language name.
//
// # Business Rules
//   - At least one translation, each with a supported language code.
//   - New clusters start active.
func (service *Service) CreateCluster(ctx context.Context, input ClusterInput) (*Cluster, error) {
	translations, err := service.buildTranslations(input.Translations)
	if err != nil {
		return nil, err
	}

	cluster := &Cluster{
		ID:           uuidv7.New(),
		Icon:         input.Icon,
		Slug:         slug.From(i18n.Resolve(translations, i18n.DefaultLanguage).Name),
		IsActive:     true,
		Translations: translations,
	}

	if err := service.repository.CreateCluster(ctx, cluster); err != nil {
		return nil, err
	}

	service.invalidateTree(ctx)
	return cluster, nil
}

// UpdateCluster replaces a cluster's icon and translation set.
func (service *Service) UpdateCluster(ctx context.Context, id string, input ClusterInput) (*Cluster, error) {
	translations, err := service.buildTranslations(input.Translations)
	if err != nil {
		return nil, err
	}

	cluster, err := service.repository.FindClusterByID(ctx, id)
	if err != nil {
		return nil, err
	}

	cluster.Icon = input.Icon
	cluster.Translations = translations
	if err := service.repository.UpdateCluster(ctx, cluster); err != nil {
		return nil, err
	}

	service.invalidateTree(ctx)
	return cluster, nil
}

// SetClusterActive toggles a cluster's visibility in the public catalog.
func (service *Service) SetClusterActive(ctx context.Context, id string, active bool) error {
	if err := service.repository.SetClusterActive(ctx, id, active); err != nil {
		return err
	}

	service.invalidateTree(ctx)
	return nil
}

// GetCluster retrieves one cluster by id.
func (service *Service) GetCluster(ctx context.Context, id string) (*Cluster, error) {
	return service.repository.FindClusterByID(ctx, id)
}

// ListClusters retrieves all clusters for the admin console.
func (service *Service) ListClusters(ctx context.Context) ([]*Cluster, error) {
	return service.repository.ListClusters(ctx)
}

// ReorderClusters applies a complete new cluster order.
//
// # Returns
//
// Returns [apperr.IncompleteReorder] when orderedIDs is not an exact
// permutation of the current cluster set.
func (service *Service) ReorderClusters(ctx context.Context, orderedIDs []string) error {
	if err := validateReorderPayload(orderedIDs); err != nil {
		return err
	}
	if err := service.repository.ReorderClusters(ctx, orderedIDs); err != nil {
		return err
	}

	service.invalidateTree(ctx)
	return nil
}

// ── Categories ───────────────────────────────────────────────────────────────

// CreateCategory validates and persists a new category, appended at the end
// of its cluster's live sibling set (nil cluster = unassigned).
func (service *Service) CreateCategory(ctx context.Context, input CategoryInput) (*Category, error) {
	translations, err := service.buildTranslations(input.Translations)
	if err != nil {
		return nil, err
	}

	category := &Category{
		ID:           uuidv7.New(),
		ClusterID:    input.ClusterID,
		Icon:         input.Icon,
		Slug:         slug.From(i18n.Resolve(translations, i18n.DefaultLanguage).Name),
		Translations: translations,
	}

	if err := service.repository.CreateCategory(ctx, category); err != nil {
		return nil, err
	}

	service.invalidateTree(ctx)
	return category, nil
}

// UpdateCategory replaces a category's icon and translation set. The slug is
// fixed at create time so that public URLs stay stable.
func (service *Service) UpdateCategory(ctx context.Context, id string, input CategoryInput) (*Category, error) {
	translations, err := service.buildTranslations(input.Translations)
	if err != nil {
		return nil, err
	}

	category, err := service.repository.FindCategoryByID(ctx, id, false)
	if err != nil {
		return nil, err
	}

	category.Icon = input.Icon
	category.Translations = translations
	if err := service.repository.UpdateCategory(ctx, category); err != nil {
		return nil, err
	}

	service.invalidateTree(ctx)
	return category, nil
}

// GetCategory retrieves one category; includeDeleted also resolves
// soft-deleted ones (admin audit view).
func (service *Service) GetCategory(ctx context.Context, id string, includeDeleted bool) (*Category, error) {
	return service.repository.FindCategoryByID(ctx, id, includeDeleted)
}

// GetCategoryBySlug retrieves one live category by its public slug.
func (service *Service) GetCategoryBySlug(ctx context.Context, categorySlug string) (*Category, error) {
	return service.repository.FindCategoryBySlug(ctx, categorySlug)
}

// ListCategories retrieves a page of categories for the admin console.
func (service *Service) ListCategories(ctx context.Context, filter CategoryFilter, limit, offset int) ([]*Category, int, error) {
	return service.repository.ListCategories(ctx, filter, limit, offset)
}

// DeleteCategory soft-deletes a category; survivors keep a dense order.
// Historical answers referencing the category's questions stay readable.
func (service *Service) DeleteCategory(ctx context.Context, id string) error {
	if err := service.repository.SoftDeleteCategory(ctx, id); err != nil {
		return err
	}

	service.invalidateTree(ctx)
	return nil
}

// RestoreCategory undeletes a category at the end of its cluster's current
// live order; its original position is not remembered.
func (service *Service) RestoreCategory(ctx context.Context, id string) error {
	if err := service.repository.RestoreCategory(ctx, id); err != nil {
		return err
	}

	service.invalidateTree(ctx)
	return nil
}

// MoveCategory reassigns a category to a different cluster (nil = unassigned).
func (service *Service) MoveCategory(ctx context.Context, id string, clusterID *string) error {
	if err := service.repository.MoveCategory(ctx, id, clusterID); err != nil {
		return err
	}

	service.invalidateTree(ctx)
	return nil
}

// ReorderCategories applies a complete new order for one cluster's live
// category set.
func (service *Service) ReorderCategories(ctx context.Context, clusterID *string, orderedIDs []string) error {
	if err := validateReorderPayload(orderedIDs); err != nil {
		return err
	}
	if err := service.repository.ReorderCategories(ctx, clusterID, orderedIDs); err != nil {
		return err
	}

	service.invalidateTree(ctx)
	return nil
}

// ── Services ─────────────────────────────────────────────────────────────────

// CreateService validates and persists a new service leaf under a category.
func (service *Service) CreateService(ctx context.Context, categoryID string, input ServiceInput) (*ServiceItem, error) {
	translations, err := service.buildTranslations(input.Translations)
	if err != nil {
		return nil, err
	}

	leaf := &ServiceItem{
		ID:           uuidv7.New(),
		CategoryID:   categoryID,
		Translations: translations,
	}

	if err := service.repository.CreateService(ctx, leaf); err != nil {
		return nil, err
	}

	service.invalidateTree(ctx)
	return leaf, nil
}

// UpdateService replaces a service's translation set.
func (service *Service) UpdateService(ctx context.Context, id string, input ServiceInput) (*ServiceItem, error) {
	translations, err := service.buildTranslations(input.Translations)
	if err != nil {
		return nil, err
	}

	leaf, err := service.repository.FindServiceByID(ctx, id)
	if err != nil {
		return nil, err
	}

	leaf.Translations = translations
	if err := service.repository.UpdateService(ctx, leaf); err != nil {
		return nil, err
	}

	service.invalidateTree(ctx)
	return leaf, nil
}

// DeleteService soft-deletes a service; survivors keep a dense order.
func (service *Service) DeleteService(ctx context.Context, id string) error {
	if err := service.repository.SoftDeleteService(ctx, id); err != nil {
		return err
	}

	service.invalidateTree(ctx)
	return nil
}

// ReorderServices applies a complete new order for one category's live
// service set.
func (service *Service) ReorderServices(ctx context.Context, categoryID string, orderedIDs []string) error {
	if err := validateReorderPayload(orderedIDs); err != nil {
		return err
	}
	if err := service.repository.ReorderServices(ctx, categoryID, orderedIDs); err != nil {
		return err
	}

	service.invalidateTree(ctx)
	return nil
}

// ── Public Catalog ───────────────────────────────────────────────────────────

// CatalogTree returns the active catalog tree with every display text
// resolved for the requested language.
//
// Unsupported language codes fall back to the platform default instead of
// failing, so the endpoint is total. Results are cached per language.
func (service *Service) CatalogTree(ctx context.Context, language string) ([]*TreeCluster, error) {
	if !service.isSupported(language) {
		language = i18n.DefaultLanguage
	}

	if tree, ok := service.cache.Get(ctx, language); ok {
		return tree, nil
	}

	clusters, err := service.repository.Tree(ctx)
	if err != nil {
		return nil, err
	}

	tree := slice.Map(clusters, func(cluster *Cluster) *TreeCluster {
		return projectCluster(cluster, language)
	})

	service.cache.Set(ctx, language, tree)
	return tree, nil
}

// ProjectCategory resolves one category (with services) for a language.
// Used by the public category-by-slug endpoint.
func ProjectCategory(category *Category, language string) *TreeCategory {
	resolved := i18n.Resolve(category.Translations, language)
	return &TreeCategory{
		ID:          category.ID,
		Slug:        category.Slug,
		Icon:        category.Icon,
		Name:        resolved.Name,
		Description: resolved.Description,
		Services: slice.Map(category.Services, func(leaf *ServiceItem) *TreeService {
			return &TreeService{
				ID:   leaf.ID,
				Name: i18n.Resolve(leaf.Translations, language).Name,
			}
		}),
	}
}

func projectCluster(cluster *Cluster, language string) *TreeCluster {
	resolved := i18n.Resolve(cluster.Translations, language)
	return &TreeCluster{
		ID:          cluster.ID,
		Slug:        cluster.Slug,
		Icon:        cluster.Icon,
		Name:        resolved.Name,
		Description: resolved.Description,
		Categories: slice.Map(cluster.Categories, func(category *Category) *TreeCategory {
			return ProjectCategory(category, language)
		}),
	}
}

// ── Internals ────────────────────────────────────────────────────────────────

// buildTranslations validates admin translation input and converts it into
// domain records.
func (service *Service) buildTranslations(inputs []TranslationInput) ([]Translation, error) {
	v := &validate.Validator{}
	v.Custom("translations", len(inputs) == 0, "At least one translation is required")

	seen := make(map[string]bool, len(inputs))
	for _, input := range inputs {
		v.Language("translations.language_code", input.LanguageCode)
		v.Custom("translations.language_code", service.hasLanguages() && !service.isSupported(input.LanguageCode),
			"Language is not supported")
		v.Custom("translations.language_code", seen[input.LanguageCode], "Duplicate language code")
		v.Required("translations.name", input.Name).MaxLen("translations.name", input.Name, 200)
		seen[input.LanguageCode] = true
	}

	if err := v.Err(); err != nil {
		return nil, err
	}

	translations := make([]Translation, len(inputs))
	for i, input := range inputs {
		translations[i] = Translation{
			LanguageCode: input.LanguageCode,
			Name:         input.Name,
			Description:  input.Description,
		}
	}

	return translations, nil
}

func validateReorderPayload(orderedIDs []string) error {
	v := &validate.Validator{}
	v.Custom("ordered_ids", len(orderedIDs) == 0, "Ordered id list must not be empty")
	for _, id := range orderedIDs {
		v.UUID("ordered_ids", id)
		if v.HasErrors() {
			break
		}
	}
	return v.Err()
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

// invalidateTree drops all cached catalog trees after a taxonomy write.
func (service *Service) invalidateTree(ctx context.Context) {
	service.cache.Invalidate(ctx, service.languages)
}
