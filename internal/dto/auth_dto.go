package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/tausug-confession/confession-backend/internal/models"
)

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Username string `json:"username" validate:"required,min=3,max=50,username"`
	FullName string `json:"full_name" validate:"required,min=2,max=100"`
}

type AvatarRequest struct {
	AvatarURL string `json:"avatar_url" validate:"required,url,max=500"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest only touches the fields that are present.
type UpdateProfileRequest struct {
	FullName  *string `json:"full_name" validate:"omitempty,min=2,max=100"`
	Bio       *string `json:"bio" validate:"omitempty,max=500"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url,max=500"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// UserResponse is the caller's own view of their account.
type UserResponse struct {
	ID          uuid.UUID   `json:"id"`
	Email       string      `json:"email"`
	Username    string      `json:"username"`
	FullName    string      `json:"full_name"`
	Bio         string      `json:"bio"`
	AvatarURL   string      `json:"avatar_url"`
	Role        models.Role `json:"role"`
	LoginCount  int         `json:"login_count"`
	LastLoginAt *time.Time  `json:"last_login_at,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Username:    u.Username,
		FullName:    u.FullName,
		Bio:         u.Bio,
		AvatarURL:   u.AvatarURL,
		Role:        u.Role,
		LoginCount:  u.LoginCount,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

type ErrorResponse struct {
	Error   bool              `json:"error"`
	Message string            `json:"message"`
	Status  string            `json:"status,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type MessageResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type HealthResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	Timestamp   string `json:"timestamp"`
	Environment string `json:"environment"`
	Store       string `json:"store"`
	DB          string `json:"db"`
}

type DBStatusResponse struct {
	Status        string   `json:"status"`
	Message       string   `json:"message"`
	MissingTables []string `json:"missing_tables,omitempty"`
}
