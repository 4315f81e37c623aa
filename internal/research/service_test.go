// AngelaMos | 2026
// service_test.go

package research

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/researchhub/internal/core"
	"github.com/angelamos/researchhub/internal/middleware"
	"github.com/angelamos/researchhub/internal/policy"
)

type fakeRepository struct {
	submissions map[string]*Submission
	reviews     []Review

	appendErr error
	statusErr error

	// failTx forces the transaction wrapper to report failure after fn
	// runs, exercising rollback behavior.
	failTx bool
}

var _ Repository = (*fakeRepository)(nil)

func newFakeRepository(subs ...*Submission) *fakeRepository {
	repo := &fakeRepository{submissions: map[string]*Submission{}}
	for _, s := range subs {
		cpy := *s
		repo.submissions[s.ID] = &cpy
	}
	return repo
}

func (f *fakeRepository) CreateSubmission(_ context.Context, sub *Submission) error {
	cpy := *sub
	cpy.CreatedAt = time.Now()
	f.submissions[sub.ID] = &cpy
	return nil
}

func (f *fakeRepository) AttachTags(_ context.Context, _ string, _ []string) error {
	return nil
}

func (f *fakeRepository) GetByID(_ context.Context, id string) (*Submission, error) {
	sub, ok := f.submissions[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cpy := *sub
	return &cpy, nil
}

func (f *fakeRepository) ListPending(
	_ context.Context,
	params ListPendingParams,
) ([]Submission, int, error) {
	pending := []Submission{}
	for _, sub := range f.submissions {
		if sub.Status == StatusPending {
			pending = append(pending, *sub)
		}
	}
	return pending, len(pending), nil
}

func (f *fakeRepository) ListByUser(_ context.Context, userID string) ([]Submission, error) {
	owned := []Submission{}
	for _, sub := range f.submissions {
		if sub.UserID == userID {
			owned = append(owned, *sub)
		}
	}
	return owned, nil
}

func (f *fakeRepository) ListReviews(_ context.Context, submissionID string) ([]Review, error) {
	history := []Review{}
	for _, rev := range f.reviews {
		if rev.SubmissionID == submissionID {
			history = append(history, rev)
		}
	}
	return history, nil
}

func (f *fakeRepository) Resubmit(_ context.Context, sub *Submission) error {
	stored, ok := f.submissions[sub.ID]
	if !ok || stored.Status != StatusRevisionRequested {
		return core.ErrNotFound
	}
	stored.Abstract = sub.Abstract
	stored.FileURL = sub.FileURL
	stored.Status = StatusPending
	sub.Status = StatusPending
	return nil
}

func (f *fakeRepository) WithTx(_ core.DBTX) Repository {
	return f
}

func (f *fakeRepository) AppendReview(_ context.Context, rev *Review) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	cpy := *rev
	cpy.CreatedAt = time.Now()
	f.reviews = append(f.reviews, cpy)
	return nil
}

func (f *fakeRepository) UpdateStatus(_ context.Context, submissionID, status string) error {
	if f.statusErr != nil {
		return f.statusErr
	}
	sub, ok := f.submissions[submissionID]
	if !ok {
		return core.ErrNotFound
	}
	sub.Status = status
	return nil
}

type fakeNotifier struct {
	calls []string
}

var _ Notifier = (*fakeNotifier)(nil)

func (n *fakeNotifier) NotifyReviewOutcome(
	_ context.Context,
	userID, submissionID, _, action string,
) error {
	n.calls = append(n.calls, userID+":"+submissionID+":"+action)
	return nil
}

func newTestService(repo *fakeRepository, notifier *fakeNotifier) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		logger:   slog.New(slog.DiscardHandler),
		inTx: func(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
			if err := fn(nil); err != nil {
				return err
			}
			if repo.failTx {
				return errors.New("commit failed")
			}
			return nil
		},
	}
}

func reviewer(role string) *middleware.AuthUser {
	return &middleware.AuthUser{
		ID:   "rev-1",
		Name: "Prof Reviewer",
		Role: role,
	}
}

func pendingSubmission(id, ownerID string) *Submission {
	return &Submission{
		ID:       id,
		UserID:   ownerID,
		Title:    "On Load Balancing",
		Abstract: "A study of request distribution strategies.",
		Year:     2026,
		FileURL:  "https://files.example.edu/s1.pdf",
		Status:   StatusPending,
	}
}

func TestSubmitReviewActionMapping(t *testing.T) {
	tests := []struct {
		action     string
		wantStatus string
	}{
		{ActionApprove, StatusApproved},
		{ActionReject, StatusRejected},
		{ActionRevision, StatusRevisionRequested},
	}

	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			repo := newFakeRepository(pendingSubmission("s1", "owner-1"))
			notifier := &fakeNotifier{}
			svc := newTestService(repo, notifier)

			rev, err := svc.SubmitReview(
				context.Background(),
				"s1",
				reviewer(policy.RoleContributor),
				SubmitReviewRequest{Action: tt.action, Comments: "noted"},
			)
			require.NoError(t, err)
			assert.Equal(t, tt.action, rev.Action)
			assert.Equal(t, "Prof Reviewer", rev.ReviewerName)
			assert.Equal(t, tt.wantStatus, repo.submissions["s1"].Status)
			assert.Equal(
				t,
				[]string{"owner-1:s1:" + tt.action},
				notifier.calls,
			)
		})
	}
}

func TestSubmitReviewInvalidAction(t *testing.T) {
	repo := newFakeRepository(pendingSubmission("s1", "owner-1"))
	svc := newTestService(repo, &fakeNotifier{})

	_, err := svc.SubmitReview(
		context.Background(),
		"s1",
		reviewer(policy.RoleContributor),
		SubmitReviewRequest{Action: "approved"},
	)
	require.Error(t, err)

	appErr, ok := core.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	assert.Equal(t, StatusPending, repo.submissions["s1"].Status)
	assert.Empty(t, repo.reviews)
}

func TestSubmitReviewMissingSubmission(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo, &fakeNotifier{})

	_, err := svc.SubmitReview(
		context.Background(),
		"missing",
		reviewer(policy.RoleContributor),
		SubmitReviewRequest{Action: ActionApprove},
	)
	require.Error(t, err)

	appErr, ok := core.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestSubmitReviewForbiddenForStudents(t *testing.T) {
	repo := newFakeRepository(pendingSubmission("s1", "owner-1"))
	notifier := &fakeNotifier{}
	svc := newTestService(repo, notifier)

	_, err := svc.SubmitReview(
		context.Background(),
		"s1",
		reviewer(policy.RoleStudent),
		SubmitReviewRequest{Action: ActionApprove},
	)
	require.Error(t, err)

	appErr, ok := core.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "FORBIDDEN", appErr.Code)

	// Nothing persisted and nobody notified.
	assert.Equal(t, StatusPending, repo.submissions["s1"].Status)
	assert.Empty(t, repo.reviews)
	assert.Empty(t, notifier.calls)
}

func TestSubmitReviewStatusFailureSkipsNotification(t *testing.T) {
	repo := newFakeRepository(pendingSubmission("s1", "owner-1"))
	repo.statusErr = errors.New("connection reset")
	notifier := &fakeNotifier{}
	svc := newTestService(repo, notifier)

	_, err := svc.SubmitReview(
		context.Background(),
		"s1",
		reviewer(policy.RoleContributor),
		SubmitReviewRequest{Action: ActionApprove},
	)
	require.Error(t, err)
	assert.Empty(t, notifier.calls)
}

func TestSubmitReviewCommitFailureSkipsNotification(t *testing.T) {
	repo := newFakeRepository(pendingSubmission("s1", "owner-1"))
	repo.failTx = true
	notifier := &fakeNotifier{}
	svc := newTestService(repo, notifier)

	_, err := svc.SubmitReview(
		context.Background(),
		"s1",
		reviewer(policy.RoleContributor),
		SubmitReviewRequest{Action: ActionApprove},
	)
	require.Error(t, err)
	assert.Empty(t, notifier.calls)
}

func TestDoubleReviewKeepsFullHistory(t *testing.T) {
	repo := newFakeRepository(pendingSubmission("s1", "owner-1"))
	svc := newTestService(repo, &fakeNotifier{})
	ctx := context.Background()

	_, err := svc.SubmitReview(
		ctx, "s1",
		reviewer(policy.RoleContributor),
		SubmitReviewRequest{Action: ActionRevision, Comments: "fix citations"},
	)
	require.NoError(t, err)
	assert.Equal(t, StatusRevisionRequested, repo.submissions["s1"].Status)

	_, err = svc.SubmitReview(
		ctx, "s1",
		reviewer(policy.RoleAdmin),
		SubmitReviewRequest{Action: ActionApprove, Comments: "all good now"},
	)
	require.NoError(t, err)

	// Status reflects the latest review; the trail keeps both.
	assert.Equal(t, StatusApproved, repo.submissions["s1"].Status)
	require.Len(t, repo.reviews, 2)
	assert.Equal(t, ActionRevision, repo.reviews[0].Action)
	assert.Equal(t, ActionApprove, repo.reviews[1].Action)
}

func TestCreateSubmissionStartsPending(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo, &fakeNotifier{})

	sub, err := svc.CreateSubmission(
		context.Background(),
		"owner-1",
		CreateSubmissionRequest{
			Title:    "On Load Balancing",
			Abstract: "A study of request distribution strategies.",
			Year:     2026,
			FileURL:  "https://files.example.edu/s1.pdf",
		},
	)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, sub.Status)
	assert.Equal(t, "owner-1", sub.UserID)
}

func TestResubmitAfterRevision(t *testing.T) {
	sub := pendingSubmission("s1", "owner-1")
	sub.Status = StatusRevisionRequested
	repo := newFakeRepository(sub)
	svc := newTestService(repo, &fakeNotifier{})

	updated, err := svc.ResubmitAfterRevision(
		context.Background(),
		"s1",
		"owner-1",
		ResubmitRequest{Abstract: "A revised study of request distribution."},
	)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, updated.Status)
	assert.Equal(t, StatusPending, repo.submissions["s1"].Status)
	assert.Equal(
		t,
		"A revised study of request distribution.",
		repo.submissions["s1"].Abstract,
	)
}

func TestResubmitByNonOwnerForbidden(t *testing.T) {
	sub := pendingSubmission("s1", "owner-1")
	sub.Status = StatusRevisionRequested
	repo := newFakeRepository(sub)
	svc := newTestService(repo, &fakeNotifier{})

	_, err := svc.ResubmitAfterRevision(
		context.Background(), "s1", "intruder", ResubmitRequest{},
	)
	require.Error(t, err)

	appErr, ok := core.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "FORBIDDEN", appErr.Code)
}

func TestResubmitWrongStatusRejected(t *testing.T) {
	sub := pendingSubmission("s1", "owner-1")
	sub.Status = StatusApproved
	repo := newFakeRepository(sub)
	svc := newTestService(repo, &fakeNotifier{})

	_, err := svc.ResubmitAfterRevision(
		context.Background(), "s1", "owner-1", ResubmitRequest{},
	)
	require.Error(t, err)

	appErr, ok := core.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestValidAction(t *testing.T) {
	assert.True(t, ValidAction(ActionApprove))
	assert.True(t, ValidAction(ActionReject))
	assert.True(t, ValidAction(ActionRevision))
	assert.False(t, ValidAction("approved"))
	assert.False(t, ValidAction("APPROVE"))
	assert.False(t, ValidAction(""))
}
