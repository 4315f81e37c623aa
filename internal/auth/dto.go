// AngelaMos | 2026
// dto.go

package auth

import "github.com/angelamos/researchhub/internal/user"

type RegisterRequest struct {
	Name              string `json:"name"                 validate:"required,min=2,max=100"`
	Email             string `json:"email"                validate:"required,email"`
	MatricOrFacultyID string `json:"matric_or_faculty_id" validate:"omitempty,max=32"`
	Department        string `json:"department"           validate:"omitempty,max=100"`
	Password          string `json:"password"             validate:"required,min=8,max=128"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type VerifyEmailRequest struct {
	Token string `json:"token" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"        validate:"required,email"`
	Code        string `json:"code"         validate:"required,len=6,numeric"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=128"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=8,max=128"`
}

type TokenResponse struct {
	AccessToken string            `json:"access_token"`
	TokenType   string            `json:"token_type"`
	ExpiresIn   int               `json:"expires_in"`
	User        user.UserResponse `json:"user"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
