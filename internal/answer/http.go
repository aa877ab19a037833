// Copyright (c) 2026 Meserio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// HTTP delivery layer of the answer package.
package answer

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/meserio/internal/platform/request"
	"github.com/taibuivan/meserio/internal/platform/respond"
	"github.com/taibuivan/meserio/internal/platform/validate"
)

// Handler implements the answer HTTP endpoints.
type Handler struct {
	answerService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{answerService: service}
}

// FirmRoutes returns the authenticated firm-facing routes. The caller
// mounts them behind firm authorization middleware; the firm identity is
// always taken from the verified token, never from the payload.
//
// # Endpoints
//   - PUT /answers : Submit the full category form, all-or-nothing.
//   - GET /answers : The firm's raw stored answers, for form pre-filling.
func (handler *Handler) FirmRoutes() chi.Router {
	router := chi.NewRouter()

	router.Put("/answers", handler.submit)
	router.Get("/answers", handler.listOwn)

	return router
}

// PublicRoutes returns the visitor-facing profile routes.
func (handler *Handler) PublicRoutes() chi.Router {
	router := chi.NewRouter()

	router.Get("/{firmID}/profile", handler.profile)

	return router
}

// submitRequest is the payload of a full form submission.
type submitRequest struct {
	CategoryID string            `json:"category_id"`
	Answers    []SubmissionInput `json:"answers"`
}

// submit handles PUT /api/v1/firm/answers requests.
//
// # Returns
//   - Writes HTTP 200 OK with the stored answers.
//   - Writes HTTP 400 with one field error per missing required question.
//   - Writes HTTP 422 (INVALID_ANSWER_SHAPE / INVALID_REFERENCE) on shape or
//     membership violations; nothing is stored in that case.
func (handler *Handler) submit(writer http.ResponseWriter, request *http.Request) {
	firmID, err := requestutil.RequiredFirmID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input submitRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if input.CategoryID == "" {
		respond.Error(writer, request, validate.RequiredError("category_id", "is required"))
		return
	}

	answers, err := handler.answerService.Submit(request.Context(), firmID, input.CategoryID, input.Answers)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, answers)
}

func (handler *Handler) listOwn(writer http.ResponseWriter, request *http.Request) {
	firmID, err := requestutil.RequiredFirmID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	answers, err := handler.answerService.ListByFirm(request.Context(), firmID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, answers)
}

// profile handles GET /api/v1/catalog/firms/{firmID}/profile requests.
//
// # Query Parameters
//   - category_id : The firm's category, selecting which form to render.
//   - lang        : Display language, with the standard fallback chain.
func (handler *Handler) profile(writer http.ResponseWriter, request *http.Request) {
	categoryID := request.URL.Query().Get("category_id")
	if categoryID == "" {
		respond.Error(writer, request, validate.RequiredError("category_id", "is required"))
		return
	}

	profile, err := handler.answerService.Profile(
		request.Context(),
		requestutil.ID(request, "firmID"),
		categoryID,
		requestutil.Language(request),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}
