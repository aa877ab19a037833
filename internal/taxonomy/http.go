// Copyright (c) 2026 Meserio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// HTTP delivery layer of the taxonomy package.
//
// # Architecture
//
// Handlers parse and fast-fail request input, call the service layer, and
// render the standard response envelopes via [respond]. They contain no
// business logic or database queries. Role gating (admin vs public) happens
// at mount time in the API server, not here.
package taxonomy

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/meserio/internal/platform/request"
	"github.com/taibuivan/meserio/internal/platform/respond"
	"github.com/taibuivan/meserio/pkg/pagination"
)

// Handler implements the taxonomy HTTP endpoints.
type Handler struct {
	taxonomyService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{taxonomyService: service}
}

// PublicRoutes returns the visitor-facing catalog routes.
//
// # Endpoints
//   - GET /tree              : Full active catalog tree, resolved per language.
//   - GET /categories/{slug} : One live category with its services.
func (handler *Handler) PublicRoutes() chi.Router {
	router := chi.NewRouter()

	router.Get("/tree", handler.catalogTree)
	router.Get("/categories/{slug}", handler.categoryBySlug)

	return router
}

// AdminRoutes returns the taxonomy administration routes. The caller mounts
// them behind admin authorization middleware.
func (handler *Handler) AdminRoutes() chi.Router {
	router := chi.NewRouter()

	router.Get("/clusters", handler.listClusters)
	router.Post("/clusters", handler.createCluster)
	router.Post("/clusters/reorder", handler.reorderClusters)
	router.Get("/clusters/{clusterID}", handler.getCluster)
	router.Put("/clusters/{clusterID}", handler.updateCluster)
	router.Patch("/clusters/{clusterID}/active", handler.setClusterActive)

	router.Get("/categories", handler.listCategories)
	router.Post("/categories", handler.createCategory)
	router.Post("/categories/reorder", handler.reorderCategories)
	router.Get("/categories/{categoryID}", handler.getCategory)
	router.Put("/categories/{categoryID}", handler.updateCategory)
	router.Delete("/categories/{categoryID}", handler.deleteCategory)
	router.Post("/categories/{categoryID}/restore", handler.restoreCategory)
	router.Post("/categories/{categoryID}/move", handler.moveCategory)

	router.Post("/categories/{categoryID}/services", handler.createService)
	router.Post("/categories/{categoryID}/services/reorder", handler.reorderServices)
	router.Put("/services/{serviceID}", handler.updateService)
	router.Delete("/services/{serviceID}", handler.deleteService)

	return router
}

// ── Public Catalog ───────────────────────────────────────────────────────────

// catalogTree handles GET /api/v1/catalog/tree requests.
//
// The "lang" query parameter selects the display language; unsupported codes
// degrade to the platform default instead of failing.
func (handler *Handler) catalogTree(writer http.ResponseWriter, request *http.Request) {
	tree, err := handler.taxonomyService.CatalogTree(request.Context(), requestutil.Language(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, tree)
}

// categoryBySlug handles GET /api/v1/catalog/categories/{slug} requests.
func (handler *Handler) categoryBySlug(writer http.ResponseWriter, request *http.Request) {
	category, err := handler.taxonomyService.GetCategoryBySlug(request.Context(), requestutil.Param(request, "slug"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, ProjectCategory(category, requestutil.Language(request)))
}

// ── Clusters (admin) ─────────────────────────────────────────────────────────

func (handler *Handler) listClusters(writer http.ResponseWriter, request *http.Request) {
	clusters, err := handler.taxonomyService.ListClusters(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, clusters)
}

// createCluster handles POST /api/v1/admin/taxonomy/clusters requests.
//
// # Returns
//   - Writes HTTP 201 Created with the new cluster appended at the end of the order.
//   - Writes HTTP 400 Bad Request if the translation set is invalid.
func (handler *Handler) createCluster(writer http.ResponseWriter, request *http.Request) {
	var input ClusterInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	cluster, err := handler.taxonomyService.CreateCluster(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, cluster)
}

func (handler *Handler) getCluster(writer http.ResponseWriter, request *http.Request) {
	cluster, err := handler.taxonomyService.GetCluster(request.Context(), requestutil.ID(request, "clusterID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, cluster)
}

func (handler *Handler) updateCluster(writer http.ResponseWriter, request *http.Request) {
	var input ClusterInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	cluster, err := handler.taxonomyService.UpdateCluster(request.Context(), requestutil.ID(request, "clusterID"), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, cluster)
}

// setClusterActiveRequest toggles catalog visibility of a cluster.
type setClusterActiveRequest struct {
	Active bool `json:"active"`
}

func (handler *Handler) setClusterActive(writer http.ResponseWriter, request *http.Request) {
	var input setClusterActiveRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err := handler.taxonomyService.SetClusterActive(request.Context(), requestutil.ID(request, "clusterID"), input.Active)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// reorderRequest carries a complete new sibling order.
type reorderRequest struct {
	OrderedIDs []string `json:"ordered_ids"`
}

// reorderClusters handles POST /api/v1/admin/taxonomy/clusters/reorder.
//
// # Returns
//   - Writes HTTP 204 No Content when the full permutation is applied.
//   - Writes HTTP 409 Conflict (INCOMPLETE_REORDER) when the payload does not
//     match the live cluster set; the admin console should refresh and retry.
func (handler *Handler) reorderClusters(writer http.ResponseWriter, request *http.Request) {
	var input reorderRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.taxonomyService.ReorderClusters(request.Context(), input.OrderedIDs); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// ── Categories (admin) ───────────────────────────────────────────────────────

// listCategories handles GET /api/v1/admin/taxonomy/categories requests.
//
// # Query Parameters
//   - cluster_id      : Filter by owning cluster UUID; "none" selects the unassigned set.
//   - include_deleted : "true" also returns soft-deleted categories (audit view).
//   - page / limit    : Standard pagination.
func (handler *Handler) listCategories(writer http.ResponseWriter, request *http.Request) {
	filter := CategoryFilter{
		IncludeDeleted: request.URL.Query().Get("include_deleted") == "true",
	}
	if raw := request.URL.Query().Get("cluster_id"); raw != "" {
		filter.HasClusterFilter = true
		if raw != "none" {
			clusterID := raw
			filter.ClusterID = &clusterID
		}
	}

	params := pagination.FromRequest(request)
	categories, total, err := handler.taxonomyService.ListCategories(request.Context(), filter, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, categories, pagination.NewMeta(params.Page, params.Limit, total))
}

func (handler *Handler) createCategory(writer http.ResponseWriter, request *http.Request) {
	var input CategoryInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	category, err := handler.taxonomyService.CreateCategory(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, category)
}

func (handler *Handler) getCategory(writer http.ResponseWriter, request *http.Request) {
	includeDeleted := request.URL.Query().Get("include_deleted") == "true"
	category, err := handler.taxonomyService.GetCategory(request.Context(), requestutil.ID(request, "categoryID"), includeDeleted)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, category)
}

func (handler *Handler) updateCategory(writer http.ResponseWriter, request *http.Request) {
	var input CategoryInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	category, err := handler.taxonomyService.UpdateCategory(request.Context(), requestutil.ID(request, "categoryID"), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, category)
}

// deleteCategory handles DELETE /api/v1/admin/taxonomy/categories/{categoryID}.
//
// Soft delete: the category disappears from the catalog and its siblings
// close ranks, but historical data referencing it stays readable.
func (handler *Handler) deleteCategory(writer http.ResponseWriter, request *http.Request) {
	if err := handler.taxonomyService.DeleteCategory(request.Context(), requestutil.ID(request, "categoryID")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

func (handler *Handler) restoreCategory(writer http.ResponseWriter, request *http.Request) {
	if err := handler.taxonomyService.RestoreCategory(request.Context(), requestutil.ID(request, "categoryID")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// moveCategoryRequest reassigns a category to a cluster (null = unassigned).
type moveCategoryRequest struct {
	ClusterID *string `json:"cluster_id"`
}

func (handler *Handler) moveCategory(writer http.ResponseWriter, request *http.Request) {
	var input moveCategoryRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err := handler.taxonomyService.MoveCategory(request.Context(), requestutil.ID(request, "categoryID"), input.ClusterID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// reorderCategoriesRequest carries the target sibling set and its new order.
type reorderCategoriesRequest struct {
	ClusterID  *string  `json:"cluster_id"`
	OrderedIDs []string `json:"ordered_ids"`
}

func (handler *Handler) reorderCategories(writer http.ResponseWriter, request *http.Request) {
	var input reorderCategoriesRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err := handler.taxonomyService.ReorderCategories(request.Context(), input.ClusterID, input.OrderedIDs)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// ── Services (admin) ─────────────────────────────────────────────────────────

func (handler *Handler) createService(writer http.ResponseWriter, request *http.Request) {
	var input ServiceInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	leaf, err := handler.taxonomyService.CreateService(request.Context(), requestutil.ID(request, "categoryID"), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, leaf)
}

func (handler *Handler) updateService(writer http.ResponseWriter, request *http.Request) {
	var input ServiceInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	leaf, err := handler.taxonomyService.UpdateService(request.Context(), requestutil.ID(request, "serviceID"), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, leaf)
}

func (handler *Handler) deleteService(writer http.ResponseWriter, request *http.Request) {
	if err := handler.taxonomyService.DeleteService(request.Context(), requestutil.ID(request, "serviceID")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

func (handler *Handler) reorderServices(writer http.ResponseWriter, request *http.Request) {
	var input reorderRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err := handler.taxonomyService.ReorderServices(request.Context(), requestutil.ID(request, "categoryID"), input.OrderedIDs)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
