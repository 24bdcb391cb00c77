package handlers

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/tausug-confession/confession-backend/internal/dto"
	"github.com/tausug-confession/confession-backend/internal/middleware"
	"github.com/tausug-confession/confession-backend/internal/services"
)

var avatarExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

type AuthHandler struct {
	authService *services.AuthService
	uploadDir   string
	maxUpload   int64
}

func NewAuthHandler(authService *services.AuthService, uploadDir string, maxUpload int64) *AuthHandler {
	return &AuthHandler{authService: authService, uploadDir: uploadDir, maxUpload: maxUpload}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	resp, err := h.authService.Register(c.UserContext(), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	resp, err := h.authService.Login(c.UserContext(), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

func (h *AuthHandler) AdminLogin(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	resp, err := h.authService.AdminLogin(c.UserContext(), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	resp, err := h.authService.Profile(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	resp, err := h.authService.UpdateProfile(c.UserContext(), middleware.CurrentUser(c).ID, &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

func (h *AuthHandler) Upgrade(c *fiber.Ctx) error {
	resp, err := h.authService.UpgradeToMember(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Upgraded to member", Data: resp})
}

// Avatar accepts either a multipart "avatar" file, stored under the upload
// directory, or a JSON body naming an external image URL.
func (h *AuthHandler) Avatar(c *fiber.Ctx) error {
	userID := middleware.CurrentUser(c).ID

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		file, err := c.FormFile("avatar")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "avatar file is required",
			})
		}
		ext := strings.ToLower(filepath.Ext(file.Filename))
		if !avatarExtensions[ext] {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "avatar must be a jpg, png, gif or webp image",
			})
		}
		if h.maxUpload > 0 && file.Size > h.maxUpload {
			return c.Status(fiber.StatusRequestEntityTooLarge).JSON(dto.ErrorResponse{
				Error: true, Message: "avatar file is too large",
			})
		}

		dir := filepath.Join(h.uploadDir, "avatars")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fail(c, err)
		}
		name := uuid.NewString() + ext
		if err := c.SaveFile(file, filepath.Join(dir, name)); err != nil {
			return fail(c, err)
		}
		resp, err := h.authService.SetAvatar(c.UserContext(), userID, "/uploads/avatars/"+name)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(resp)
	}

	var req dto.AvatarRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	resp, err := h.authService.UpdateAvatar(c.UserContext(), userID, &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}
