// AngelaMos | 2026
// service.go

package research

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/angelamos/researchhub/internal/core"
	"github.com/angelamos/researchhub/internal/middleware"
	"github.com/angelamos/researchhub/internal/policy"
)

// Notifier delivers submitter notifications. Calls happen after the review
// transaction commits and are best-effort.
type Notifier interface {
	NotifyReviewOutcome(
		ctx context.Context,
		userID, submissionID, submissionTitle, action string,
	) error
}

type Service struct {
	repo     Repository
	notifier Notifier
	logger   *slog.Logger
	inTx     func(ctx context.Context, fn func(tx *sqlx.Tx) error) error
}

func NewService(
	repo Repository,
	db *sqlx.DB,
	notifier Notifier,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		inTx: func(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
			return core.InTx(ctx, db, fn)
		},
	}
}

// CreateSubmission enters a new submission into the review queue. Status is
// always pending at creation regardless of caller input.
func (s *Service) CreateSubmission(
	ctx context.Context,
	userID string,
	req CreateSubmissionRequest,
) (*Submission, error) {
	sub := &Submission{
		ID:       uuid.New().String(),
		UserID:   userID,
		Title:    req.Title,
		Abstract: req.Abstract,
		Year:     req.Year,
		FileURL:  req.FileURL,
		Status:   StatusPending,
	}
	if req.Supervisor != "" {
		sub.Supervisor = &req.Supervisor
	}

	if err := s.repo.CreateSubmission(ctx, sub); err != nil {
		return nil, err
	}

	if len(req.TagIDs) > 0 {
		if err := s.repo.AttachTags(ctx, sub.ID, req.TagIDs); err != nil {
			s.logger.WarnContext(ctx, "tag attach failed",
				slog.String("submission_id", sub.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	return sub, nil
}

// SubmitReview appends a review and moves the submission to the status
// the action dictates. Both writes happen in one transaction; if either
// fails, neither persists. The submitter notification fires only after
// a successful commit.
func (s *Service) SubmitReview(
	ctx context.Context,
	submissionID string,
	reviewer *middleware.AuthUser,
	req SubmitReviewRequest,
) (*Review, error) {
	if !ValidAction(req.Action) {
		return nil, core.ValidationError(
			"action must be one of: approve, reject, revision",
		)
	}

	sub, err := s.repo.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("submission")
		}
		return nil, err
	}

	if !policy.Allows(reviewer.Role, policy.CapReviewSubmissions) {
		return nil, core.ForbiddenError("review permission required")
	}

	rev := &Review{
		ID:           uuid.New().String(),
		SubmissionID: sub.ID,
		ReviewerID:   reviewer.ID,
		Action:       req.Action,
		Comments:     req.Comments,
		ReviewerName: reviewer.Name,
	}
	newStatus := StatusForAction(req.Action)

	err = s.inTx(ctx, func(tx *sqlx.Tx) error {
		txRepo := s.repo.WithTx(tx)

		if txErr := txRepo.AppendReview(ctx, rev); txErr != nil {
			return txErr
		}
		return txRepo.UpdateStatus(ctx, sub.ID, newStatus)
	})
	if err != nil {
		return nil, fmt.Errorf("submit review: %w", err)
	}

	if notifyErr := s.notifier.NotifyReviewOutcome(
		ctx, sub.UserID, sub.ID, sub.Title, req.Action,
	); notifyErr != nil {
		s.logger.WarnContext(ctx, "review notification failed",
			slog.String("submission_id", sub.ID),
			slog.String("error", notifyErr.Error()),
		)
	}

	return rev, nil
}

func (s *Service) ListPending(
	ctx context.Context,
	params ListPendingParams,
) ([]Submission, int, error) {
	params.Normalize()
	return s.repo.ListPending(ctx, params)
}

func (s *Service) GetSubmissionWithReviews(
	ctx context.Context,
	submissionID string,
) (*Submission, []Review, error) {
	sub, err := s.repo.GetByID(ctx, submissionID)
	if err != nil {
		return nil, nil, err
	}

	reviews, err := s.repo.ListReviews(ctx, submissionID)
	if err != nil {
		return nil, nil, err
	}

	return sub, reviews, nil
}

func (s *Service) ListMySubmissions(
	ctx context.Context,
	userID string,
) ([]Submission, error) {
	return s.repo.ListByUser(ctx, userID)
}

// ResubmitAfterRevision lets the owner of a revision_requested submission
// amend it and re-enter the pending queue.
func (s *Service) ResubmitAfterRevision(
	ctx context.Context,
	submissionID, userID string,
	req ResubmitRequest,
) (*Submission, error) {
	sub, err := s.repo.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("submission")
		}
		return nil, err
	}

	if sub.UserID != userID {
		return nil, core.ForbiddenError("not your submission")
	}
	if sub.Status != StatusRevisionRequested {
		return nil, core.ValidationError(
			"only submissions with requested revisions can be resubmitted",
		)
	}

	if req.Abstract != "" {
		sub.Abstract = req.Abstract
	}
	if req.FileURL != "" {
		sub.FileURL = req.FileURL
	}

	if err := s.repo.Resubmit(ctx, sub); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			// Status changed between read and update.
			return nil, core.ValidationError(
				"only submissions with requested revisions can be resubmitted",
			)
		}
		return nil, err
	}

	return sub, nil
}
