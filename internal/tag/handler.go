// AngelaMos | 2026
// handler.go

package tag

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/angelamos/researchhub/internal/core"
	"github.com/angelamos/researchhub/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, tagManagerOnly func(http.Handler) http.Handler,
) {
	r.Route("/tags", func(r chi.Router) {
		r.Get("/", h.ListTags)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Post("/", h.CreateTag)

			r.Group(func(r chi.Router) {
				r.Use(tagManagerOnly)
				r.Post("/{tagID}/approve", h.ApproveTag)
			})
		})
	})
}

func (h *Handler) CreateTag(w http.ResponseWriter, r *http.Request) {
	role := middleware.GetUserRole(r.Context())

	var req CreateTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	t, err := h.service.CreateTag(r.Context(), role, req)
	if err != nil {
		if core.IsAppError(err) {
			core.JSONError(w, err)
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, ToTagResponse(t))
}

func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")

	tags, err := h.service.ListTags(r.Context(), status)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, TagListResponse{Tags: ToTagResponseList(tags)})
}

func (h *Handler) ApproveTag(w http.ResponseWriter, r *http.Request) {
	tagID := chi.URLParam(r, "tagID")

	if err := h.service.ApproveTag(r.Context(), tagID); err != nil {
		if core.IsAppError(err) {
			core.JSONError(w, err)
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.NoContent(w)
}
