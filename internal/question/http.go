// Copyright (c) 2026 Meserio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// HTTP delivery layer of the question package.
package question

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/meserio/internal/platform/request"
	"github.com/taibuivan/meserio/internal/platform/respond"
)

// Handler implements the question HTTP endpoints.
type Handler struct {
	questionService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{questionService: service}
}

// FormRoutes returns the form rendering routes used by firm onboarding.
//
// # Endpoints
//   - GET /categories/{categoryID}/questions : Active form for one category,
//     universal questions first, resolved per language.
func (handler *Handler) FormRoutes() chi.Router {
	router := chi.NewRouter()

	router.Get("/categories/{categoryID}/questions", handler.formForCategory)

	return router
}

// AdminRoutes returns the question authoring routes. The caller mounts them
// behind moderator authorization middleware.
func (handler *Handler) AdminRoutes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.list)
	router.Post("/", handler.create)
	router.Post("/reorder", handler.reorder)
	router.Get("/{questionID}", handler.get)
	router.Put("/{questionID}", handler.update)
	router.Delete("/{questionID}", handler.delete)
	router.Post("/{questionID}/restore", handler.restore)
	router.Post("/{questionID}/activate", handler.activate)
	router.Post("/{questionID}/retire", handler.retire)

	return router
}

// ── Form Rendering ───────────────────────────────────────────────────────────

func (handler *Handler) formForCategory(writer http.ResponseWriter, request *http.Request) {
	form, err := handler.questionService.FormForCategory(
		request.Context(),
		requestutil.ID(request, "categoryID"),
		requestutil.Language(request),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, form)
}

// ── Authoring ────────────────────────────────────────────────────────────────

// list handles GET /api/v1/admin/questions requests.
//
// # Query Parameters
//   - scope           : "universal" or "category".
//   - category_id     : Filter category questions by owning category.
//   - status          : "draft", "active", or "retired".
//   - include_deleted : "true" also returns soft-deleted questions.
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	filter := Filter{
		IncludeDeleted: request.URL.Query().Get("include_deleted") == "true",
	}
	if raw := request.URL.Query().Get("scope"); raw != "" {
		scope := Scope(raw)
		filter.Scope = &scope
	}
	if raw := request.URL.Query().Get("category_id"); raw != "" {
		categoryID := raw
		filter.CategoryID = &categoryID
	}
	if raw := request.URL.Query().Get("status"); raw != "" {
		status := Status(raw)
		filter.Status = &status
	}

	questions, err := handler.questionService.List(request.Context(), filter)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, questions)
}

// create handles POST /api/v1/admin/questions requests.
//
// # Returns
//   - Writes HTTP 201 Created with the new draft question.
//   - Writes HTTP 422 (INVALID_SCHEMA) if options are sent for a free-form type.
//   - Writes HTTP 422 (INVALID_REFERENCE) if the target category does not exist.
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var input CreateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	q, err := handler.questionService.Create(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, q)
}

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	includeDeleted := request.URL.Query().Get("include_deleted") == "true"
	q, err := handler.questionService.Get(request.Context(), requestutil.ID(request, "questionID"), includeDeleted)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, q)
}

// update handles PUT /api/v1/admin/questions/{questionID} requests.
//
// The option list in the payload is reconciled against the stored options:
// see [Service.Update]. A stale option id fails the whole edit with 409.
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	var input UpdateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	q, err := handler.questionService.Update(request.Context(), requestutil.ID(request, "questionID"), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, q)
}

func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	if err := handler.questionService.Delete(request.Context(), requestutil.ID(request, "questionID")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

func (handler *Handler) restore(writer http.ResponseWriter, request *http.Request) {
	if err := handler.questionService.Restore(request.Context(), requestutil.ID(request, "questionID")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

func (handler *Handler) activate(writer http.ResponseWriter, request *http.Request) {
	if err := handler.questionService.Activate(request.Context(), requestutil.ID(request, "questionID")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

func (handler *Handler) retire(writer http.ResponseWriter, request *http.Request) {
	if err := handler.questionService.Retire(request.Context(), requestutil.ID(request, "questionID")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// reorderQuestionsRequest identifies a sibling set and its new order.
type reorderQuestionsRequest struct {
	Scope      Scope    `json:"scope"`
	CategoryID *string  `json:"category_id"`
	OrderedIDs []string `json:"ordered_ids"`
}

func (handler *Handler) reorder(writer http.ResponseWriter, request *http.Request) {
	var input reorderQuestionsRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err := handler.questionService.Reorder(request.Context(), input.Scope, input.CategoryID, input.OrderedIDs)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
