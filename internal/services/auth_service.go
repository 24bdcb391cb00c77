package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/tausug-confession/confession-backend/internal/config"
	"github.com/tausug-confession/confession-backend/internal/dto"
	"github.com/tausug-confession/confession-backend/internal/models"
	"github.com/tausug-confession/confession-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
)

type AuthService struct {
	store *repository.Store
	cfg   *config.Config
	audit auditor
}

func NewAuthService(store *repository.Store, cfg *config.Config) *AuthService {
	return &AuthService{store: store, cfg: cfg, audit: auditor{store.Audit}}
}

func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Username = strings.TrimSpace(req.Username)
	req.FullName = strings.TrimSpace(req.FullName)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	if _, err := s.store.Users.FindByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, storeErr(err, nil, "lookup email")
	}
	if _, err := s.store.Users.FindByUsername(ctx, req.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, storeErr(err, nil, "lookup username")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, &Error{Kind: KindInternal, Message: "hash password", Err: err}
	}

	user := models.User{
		Email:    req.Email,
		Password: string(hash),
		Username: req.Username,
		FullName: req.FullName,
		Role:     models.RoleUser,
	}
	if err := s.store.Users.Create(ctx, &user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// lost a race with a concurrent registration
			return nil, newError(KindConflict, "Email or username already registered")
		}
		return nil, storeErr(err, nil, "create user")
	}

	s.audit.activity(ctx, user.ID, "user_registered", "user", user.ID, datatypes.JSONMap{
		"username": user.Username,
		"role":     string(user.Role),
	})
	slog.InfoContext(ctx, "user registered", "user_id", user.ID.String(), "username", user.Username)

	return s.authResponse(&user)
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.checkCredentials(ctx, req)
	if err != nil {
		return nil, err
	}
	s.recordLogin(ctx, user, "user_login")
	return s.authResponse(user)
}

// AdminLogin is an ordinary credential check that additionally requires the
// stored role to be admin.
func (s *AuthService) AdminLogin(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.checkCredentials(ctx, req)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleAdmin {
		slog.WarnContext(ctx, "admin login refused", "user_id", user.ID.String(), "role", string(user.Role))
		return nil, ErrAdminLoginDenied
	}
	s.recordLogin(ctx, user, "admin_login")
	return s.authResponse(user)
}

func (s *AuthService) checkCredentials(ctx context.Context, req *dto.LoginRequest) (*models.User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	user, err := s.store.Users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, storeErr(err, ErrInvalidCredentials, "lookup user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.IsBanned {
		return nil, suspended(user)
	}
	return user, nil
}

func (s *AuthService) recordLogin(ctx context.Context, user *models.User, action string) {
	now := time.Now().UTC()
	user.LoginCount++
	user.LastLoginAt = &now
	if err := s.store.Users.Save(ctx, user); err != nil {
		slog.ErrorContext(ctx, "login counter update failed", "user_id", user.ID.String(), "error", err)
	}
	s.audit.activity(ctx, user.ID, action, "user", user.ID, nil)
}

// Authenticate resolves the subject of an already verified token.
func (s *AuthService) Authenticate(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.store.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, storeErr(err, ErrInvalidToken, "load user")
	}
	if user.IsBanned {
		return nil, suspended(user)
	}
	return user, nil
}

func suspended(user *models.User) *Error {
	e := &Error{Kind: KindForbidden, Message: ErrAccountSuspended.Message}
	if user.BanReason != "" {
		e.Fields = map[string]string{"reason": user.BanReason}
	}
	return e
}

func (s *AuthService) Profile(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := s.store.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, storeErr(err, ErrUserNotFound, "load profile")
	}
	resp := dto.NewUserResponse(user)
	return &resp, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	user, err := s.store.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, storeErr(err, ErrUserNotFound, "load profile")
	}

	changed := []string{}
	if req.FullName != nil {
		user.FullName = strings.TrimSpace(*req.FullName)
		changed = append(changed, "full_name")
	}
	if req.Bio != nil {
		user.Bio = strings.TrimSpace(*req.Bio)
		changed = append(changed, "bio")
	}
	if req.AvatarURL != nil {
		user.AvatarURL = strings.TrimSpace(*req.AvatarURL)
		changed = append(changed, "avatar_url")
	}
	if err := s.store.Users.Save(ctx, user); err != nil {
		return nil, storeErr(err, ErrUserNotFound, "save profile")
	}
	s.audit.activity(ctx, user.ID, "profile_updated", "user", user.ID, datatypes.JSONMap{"fields": changed})

	resp := dto.NewUserResponse(user)
	return &resp, nil
}

// UpgradeToMember lets a plain user opt into publishing.
func (s *AuthService) UpgradeToMember(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := s.store.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, storeErr(err, ErrUserNotFound, "load profile")
	}
	if user.Role != models.RoleUser {
		return nil, ErrNotUpgradable
	}
	user.Role = models.RoleMember
	if err := s.store.Users.Save(ctx, user); err != nil {
		return nil, storeErr(err, ErrUserNotFound, "upgrade role")
	}
	s.audit.activity(ctx, user.ID, "role_upgraded", "user", user.ID, datatypes.JSONMap{
		"from_role": string(models.RoleUser),
		"to_role":   string(models.RoleMember),
	})
	resp := dto.NewUserResponse(user)
	return &resp, nil
}

// UpdateAvatar points the avatar at an externally hosted image.
func (s *AuthService) UpdateAvatar(ctx context.Context, userID uuid.UUID, req *dto.AvatarRequest) (*dto.UserResponse, error) {
	req.AvatarURL = strings.TrimSpace(req.AvatarURL)
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	return s.SetAvatar(ctx, userID, req.AvatarURL)
}

// SetAvatar stores the public URL of an avatar image.
func (s *AuthService) SetAvatar(ctx context.Context, userID uuid.UUID, url string) (*dto.UserResponse, error) {
	user, err := s.store.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, storeErr(err, ErrUserNotFound, "load profile")
	}
	user.AvatarURL = url
	if err := s.store.Users.Save(ctx, user); err != nil {
		return nil, storeErr(err, ErrUserNotFound, "save avatar")
	}
	s.audit.activity(ctx, user.ID, "avatar_updated", "user", user.ID, datatypes.JSONMap{"avatar_url": url})
	resp := dto.NewUserResponse(user)
	return &resp, nil
}

func (s *AuthService) authResponse(user *models.User) (*dto.AuthResponse, error) {
	token, err := s.GenerateToken(user.ID)
	if err != nil {
		return nil, &Error{Kind: KindInternal, Message: "sign token", Err: err}
	}
	return &dto.AuthResponse{Token: token, User: dto.NewUserResponse(user)}, nil
}

// GenerateToken signs an HS256 token whose subject is the user id. The role
// is not embedded; authentication re-reads the user row.
func (s *AuthService) GenerateToken(userID uuid.UUID) (string, error) {
	if s.cfg.JWTSecret == "" {
		return "", fmt.Errorf("jwt secret not configured")
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID.String(),
		"iat": now.Unix(),
		"exp": now.Add(s.cfg.JWTExpiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}
