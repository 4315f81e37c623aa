// AngelaMos | 2026
// dto.go

package user

import (
	"time"
)

type UpdateProfileRequest struct {
	Name       *string `json:"name,omitempty"       validate:"omitempty,min=1,max=100"`
	Department *string `json:"department,omitempty" validate:"omitempty,max=100"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=student contributor admin"`
}

type UserResponse struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	MatricOrFacultyID *string    `json:"matric_or_faculty_id,omitempty"`
	Department        *string    `json:"department,omitempty"`
	Role              string     `json:"role"`
	AccountStatus     string     `json:"account_status"`
	IsVerified        bool       `json:"is_verified"`
	FirstLogin        *time.Time `json:"first_login,omitempty"`
	LastLogin         *time.Time `json:"last_login,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

type UserListResponse struct {
	Users []UserResponse `json:"users"`
	Total int            `json:"total"`
}

type ListUsersParams struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Search   string `json:"search"`
	Role     string `json:"role"`
	Status   string `json:"status"`
}

func (p *ListUsersParams) Normalize() {
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

func (p *ListUsersParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:                u.ID,
		Name:              u.Name,
		Email:             u.Email,
		MatricOrFacultyID: u.MatricOrFacultyID,
		Department:        u.Department,
		Role:              u.Role,
		AccountStatus:     u.AccountStatus,
		IsVerified:        u.IsVerified,
		FirstLogin:        u.FirstLogin,
		LastLogin:         u.LastLogin,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

func ToUserResponseList(users []User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, ToUserResponse(&u))
	}
	return responses
}
