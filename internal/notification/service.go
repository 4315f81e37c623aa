// AngelaMos | 2026
// service.go

package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/angelamos/researchhub/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

var outcomeMessages = map[string]string{
	"approve":  "your submission %q was approved",
	"reject":   "your submission %q was rejected",
	"revision": "revisions were requested for your submission %q",
}

// NotifyReviewOutcome implements the research service's Notifier.
func (s *Service) NotifyReviewOutcome(
	ctx context.Context,
	userID, submissionID, submissionTitle, action string,
) error {
	format, ok := outcomeMessages[action]
	if !ok {
		format = "your submission %q was reviewed"
	}

	n := &Notification{
		ID:         uuid.New().String(),
		UserID:     userID,
		Type:       TypeReviewOutcome,
		Message:    fmt.Sprintf(format, submissionTitle),
		ResourceID: &submissionID,
	}

	return s.repo.Create(ctx, n)
}

func (s *Service) ListMine(
	ctx context.Context,
	userID string,
) ([]Notification, int, error) {
	notifications, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	return notifications, unread, nil
}

func (s *Service) MarkRead(ctx context.Context, id, userID string) error {
	if err := s.repo.MarkRead(ctx, id, userID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.NotFoundError("notification")
		}
		return err
	}
	return nil
}

func (s *Service) MarkAllRead(ctx context.Context, userID string) error {
	return s.repo.MarkAllRead(ctx, userID)
}
