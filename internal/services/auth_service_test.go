package services

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tausug-confession/confession-backend/internal/dto"
	"github.com/tausug-confession/confession-backend/internal/models"
)

func register(t *testing.T, f *fixture, email, username string) *dto.AuthResponse {
	t.Helper()
	resp, err := f.auth.Register(f.ctx, &dto.RegisterRequest{
		Email: email, Password: "secret1", Username: username, FullName: "Test Person",
	})
	require.NoError(t, err)
	return resp
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	reg := register(t, f, "  Alice@Example.com ", "alice")
	assert.Equal(t, "alice@example.com", reg.User.Email)
	assert.Equal(t, models.RoleUser, reg.User.Role)
	require.NotEmpty(t, reg.Token)

	stored, err := f.store.Users.FindByID(f.ctx, reg.User.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", stored.Password)

	login, err := f.auth.Login(f.ctx, &dto.LoginRequest{Email: "ALICE@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, 1, login.User.LoginCount)
	assert.NotNil(t, login.User.LastLoginAt)

	token, err := jwt.Parse(login.Token, func(*jwt.Token) (interface{}, error) {
		return []byte(f.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	require.NoError(t, err)
	sub, err := token.Claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID.String(), sub)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	f := newFixture(t)
	register(t, f, "alice@example.com", "alice")

	_, err := f.auth.Register(f.ctx, &dto.RegisterRequest{
		Email: "alice@example.com", Password: "secret1", Username: "alice2", FullName: "Alice Two",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.Equal(t, KindConflict, KindOf(err))

	_, err = f.auth.Register(f.ctx, &dto.RegisterRequest{
		Email: "other@example.com", Password: "secret1", Username: "alice", FullName: "Alice Two",
	})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	cases := map[string]dto.RegisterRequest{
		"email":     {Email: "not-an-email", Password: "secret1", Username: "alice", FullName: "Alice"},
		"password":  {Email: "a@example.com", Password: "short", Username: "alice", FullName: "Alice"},
		"username":  {Email: "a@example.com", Password: "secret1", Username: "al ice", FullName: "Alice"},
		"full_name": {Email: "a@example.com", Password: "secret1", Username: "alice", FullName: "A"},
	}
	for field, req := range cases {
		t.Run(field, func(t *testing.T) {
			_, err := f.auth.Register(f.ctx, &req)
			var se *Error
			require.ErrorAs(t, err, &se)
			assert.Equal(t, KindValidation, se.Kind)
			assert.Contains(t, se.Fields, field)
		})
	}
}

func TestLoginFailures(t *testing.T) {
	f := newFixture(t)
	register(t, f, "alice@example.com", "alice")

	_, err := f.auth.Login(f.ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.auth.Login(f.ctx, &dto.LoginRequest{Email: "nobody@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAdminLogin(t *testing.T) {
	f := newFixture(t)
	reg := register(t, f, "alice@example.com", "alice")

	_, err := f.auth.AdminLogin(f.ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrAdminLoginDenied)
	assert.Equal(t, KindAuthentication, KindOf(err))

	stored, err := f.store.Users.FindByID(f.ctx, reg.User.ID)
	require.NoError(t, err)
	stored.Role = models.RoleAdmin
	require.NoError(t, f.store.Users.Save(f.ctx, stored))

	resp, err := f.auth.AdminLogin(f.ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, resp.User.Role)
}

func TestUpgradeToMemberOnce(t *testing.T) {
	f := newFixture(t)
	reg := register(t, f, "alice@example.com", "alice")

	up, err := f.auth.UpgradeToMember(f.ctx, reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleMember, up.Role)

	_, err = f.auth.UpgradeToMember(f.ctx, reg.User.ID)
	assert.ErrorIs(t, err, ErrNotUpgradable)
}

func TestUpdateProfileOnlyTouchesPresentFields(t *testing.T) {
	f := newFixture(t)
	reg := register(t, f, "alice@example.com", "alice")

	bio := "  I write at night  "
	resp, err := f.auth.UpdateProfile(f.ctx, reg.User.ID, &dto.UpdateProfileRequest{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "I write at night", resp.Bio)
	assert.Equal(t, "Test Person", resp.FullName)

	bad := "not a url"
	_, err = f.auth.UpdateProfile(f.ctx, reg.User.ID, &dto.UpdateProfileRequest{AvatarURL: &bad})
	assert.Equal(t, KindValidation, KindOf(err))

	avatar, err := f.auth.UpdateAvatar(f.ctx, reg.User.ID, &dto.AvatarRequest{AvatarURL: "https://cdn.example.com/a.png"})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/a.png", avatar.AvatarURL)
}

func TestGenerateTokenNeedsSecret(t *testing.T) {
	f := newFixture(t)
	f.cfg.JWTSecret = ""
	_, err := f.auth.GenerateToken(f.user(t, "alice", models.RoleUser).ID)
	assert.Error(t, err)
}
