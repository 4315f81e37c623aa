// AngelaMos | 2026
// handler.go

package research

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

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
	authenticator, reviewerOnly func(http.Handler) http.Handler,
) {
	r.Route("/research", func(r chi.Router) {
		r.Use(authenticator)

		r.Post("/", h.CreateSubmission)
		r.Get("/mine", h.ListMySubmissions)
		r.Get("/{submissionID}", h.GetSubmission)
		r.Post("/{submissionID}/resubmit", h.Resubmit)

		r.Group(func(r chi.Router) {
			r.Use(reviewerOnly)
			r.Get("/pending", h.ListPending)
			r.Post("/{submissionID}/review", h.SubmitReview)
		})
	})
}

func (h *Handler) CreateSubmission(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req CreateSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	sub, err := h.service.CreateSubmission(r.Context(), userID, req)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, ToSubmissionResponse(sub))
}

func (h *Handler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	submissionID := chi.URLParam(r, "submissionID")
	reviewer := middleware.GetUser(r.Context())

	var req SubmitReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	rev, err := h.service.SubmitReview(r.Context(), submissionID, reviewer, req)
	if err != nil {
		if core.IsAppError(err) {
			core.JSONError(w, err)
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, ToReviewResponse(rev))
}

func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	params := ListPendingParams{
		Page:     queryInt(r, "page", 1),
		PageSize: queryInt(r, "page_size", 20),
	}

	subs, total, err := h.service.ListPending(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, SubmissionListResponse{
		Submissions: ToSubmissionResponseList(subs),
		Total:       total,
	})
}

func (h *Handler) GetSubmission(w http.ResponseWriter, r *http.Request) {
	submissionID := chi.URLParam(r, "submissionID")

	sub, reviews, err := h.service.GetSubmissionWithReviews(
		r.Context(), submissionID,
	)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "submission")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, SubmissionDetailResponse{
		SubmissionResponse: ToSubmissionResponse(sub),
		Reviews:            ToReviewResponseList(reviews),
	})
}

func (h *Handler) ListMySubmissions(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	subs, err := h.service.ListMySubmissions(r.Context(), userID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, SubmissionListResponse{
		Submissions: ToSubmissionResponseList(subs),
		Total:       len(subs),
	})
}

func (h *Handler) Resubmit(w http.ResponseWriter, r *http.Request) {
	submissionID := chi.URLParam(r, "submissionID")
	userID := middleware.GetUserID(r.Context())

	var req ResubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	sub, err := h.service.ResubmitAfterRevision(
		r.Context(), submissionID, userID, req,
	)
	if err != nil {
		if core.IsAppError(err) {
			core.JSONError(w, err)
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToSubmissionResponse(sub))
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
