// AngelaMos | 2026
// dto.go

package research

import "time"

type CreateSubmissionRequest struct {
	Title      string   `json:"title"      validate:"required,min=3,max=255"`
	Abstract   string   `json:"abstract"   validate:"required,min=10"`
	Supervisor string   `json:"supervisor" validate:"omitempty,max=100"`
	Year       int      `json:"year"       validate:"required,min=1950,max=2100"`
	FileURL    string   `json:"file_url"   validate:"required,url"`
	TagIDs     []string `json:"tag_ids"    validate:"omitempty,dive,uuid"`
}

type SubmitReviewRequest struct {
	Action   string `json:"action"   validate:"required"`
	Comments string `json:"comments" validate:"omitempty,max=2000"`
}

type ResubmitRequest struct {
	Abstract string `json:"abstract" validate:"omitempty,min=10"`
	FileURL  string `json:"file_url" validate:"omitempty,url"`
}

type ListPendingParams struct {
	Page     int
	PageSize int
}

func (p *ListPendingParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListPendingParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

type SubmissionResponse struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Title      string    `json:"title"`
	Abstract   string    `json:"abstract"`
	Supervisor *string   `json:"supervisor,omitempty"`
	Year       int       `json:"year"`
	FileURL    string    `json:"file_url"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type ReviewResponse struct {
	ID           string    `json:"id"`
	SubmissionID string    `json:"submission_id"`
	ReviewerID   string    `json:"reviewer_id"`
	ReviewerName string    `json:"reviewer_name,omitempty"`
	Action       string    `json:"action"`
	Comments     string    `json:"comments,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type SubmissionDetailResponse struct {
	SubmissionResponse
	Reviews []ReviewResponse `json:"reviews"`
}

type SubmissionListResponse struct {
	Submissions []SubmissionResponse `json:"submissions"`
	Total       int                  `json:"total"`
}

func ToSubmissionResponse(s *Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:         s.ID,
		UserID:     s.UserID,
		Title:      s.Title,
		Abstract:   s.Abstract,
		Supervisor: s.Supervisor,
		Year:       s.Year,
		FileURL:    s.FileURL,
		Status:     s.Status,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}

func ToReviewResponse(rev *Review) ReviewResponse {
	return ReviewResponse{
		ID:           rev.ID,
		SubmissionID: rev.SubmissionID,
		ReviewerID:   rev.ReviewerID,
		ReviewerName: rev.ReviewerName,
		Action:       rev.Action,
		Comments:     rev.Comments,
		CreatedAt:    rev.CreatedAt,
	}
}

func ToSubmissionResponseList(subs []Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(subs))
	for _, s := range subs {
		responses = append(responses, ToSubmissionResponse(&s))
	}
	return responses
}

func ToReviewResponseList(reviews []Review) []ReviewResponse {
	responses := make([]ReviewResponse, 0, len(reviews))
	for _, rev := range reviews {
		responses = append(responses, ToReviewResponse(&rev))
	}
	return responses
}
