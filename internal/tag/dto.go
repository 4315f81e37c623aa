// AngelaMos | 2026
// dto.go

package tag

import "time"

type CreateTagRequest struct {
	Name     string `json:"name"     validate:"required,min=2,max=50"`
	Category string `json:"category" validate:"required,min=2,max=50"`
}

type TagResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type TagListResponse struct {
	Tags []TagResponse `json:"tags"`
}

func ToTagResponse(t *Tag) TagResponse {
	return TagResponse{
		ID:        t.ID,
		Name:      t.Name,
		Category:  t.Category,
		Type:      t.Type,
		Status:    t.Status,
		CreatedAt: t.CreatedAt,
	}
}

func ToTagResponseList(tags []Tag) []TagResponse {
	responses := make([]TagResponse, 0, len(tags))
	for _, t := range tags {
		responses = append(responses, ToTagResponse(&t))
	}
	return responses
}
