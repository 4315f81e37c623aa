// AngelaMos | 2026
// service.go

package tag

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/angelamos/researchhub/internal/core"
	"github.com/angelamos/researchhub/internal/policy"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateTag inserts a suggested tag. Users with the manage_tags capability
// create approved core tags directly; everyone else's tags start pending.
func (s *Service) CreateTag(
	ctx context.Context,
	role string,
	req CreateTagRequest,
) (*Tag, error) {
	t := &Tag{
		ID:       uuid.New().String(),
		Name:     strings.ToLower(strings.TrimSpace(req.Name)),
		Category: req.Category,
		Type:     TypeSuggested,
		Status:   StatusPending,
	}
	if policy.Allows(role, policy.CapManageTags) {
		t.Type = TypeCore
		t.Status = StatusApproved
	}

	if err := s.repo.Create(ctx, t); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, core.DuplicateError("tag name")
		}
		return nil, err
	}

	return t, nil
}

func (s *Service) ListTags(ctx context.Context, status string) ([]Tag, error) {
	return s.repo.List(ctx, status)
}

func (s *Service) ApproveTag(ctx context.Context, id string) error {
	if err := s.repo.Approve(ctx, id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.NotFoundError("tag")
		}
		return err
	}
	return nil
}
