package services

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"codequest/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"gorm.io/gorm"
)

type AuthService struct {
	DB    *gorm.DB
	Store *session.Store
}

func NewAuthService(db *gorm.DB, store *session.Store) *AuthService {
	return &AuthService{DB: db, Store: store}
}

// HashPassword is the legacy scheme carried over unchanged: a single unsalted
// SHA-256 hex digest. Known weakness, deliberately not redesigned here.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

type registerRequest struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Theme    string `json:"theme" form:"theme"`
}

// Register handles POST /register: creates the user plus their multiplayer
// stats row in one transaction and establishes a session.
func (s *AuthService) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if req.Theme == "" {
		req.Theme = models.ThemeCute
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "All fields are required",
		})
	}
	if !models.ValidTheme(req.Theme) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid theme",
		})
	}

	var existing models.User
	err := s.DB.Where("username = ? OR email = ?", req.Username, req.Email).
		First(&existing).Error
	if err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Username or email already exists",
		})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Registration failed. Please try again.",
		})
	}

	user := models.User{
		Username:        req.Username,
		Email:           req.Email,
		PasswordHash:    HashPassword(req.Password),
		ThemePreference: req.Theme,
		IsActive:        true,
	}
	if err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return tx.Create(&models.MultiplayerStats{
			UserID: user.ID,
			Rating: models.DefaultRating,
		}).Error
	}); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Registration failed. Please try again.",
		})
	}

	if err := s.establishSession(c, &user); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to create session",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status":  "success",
		"message": "Registration successful! Welcome to CodeQuest!",
		"user": fiber.Map{
			"id":               user.ID,
			"username":         user.Username,
			"theme_preference": user.ThemePreference,
		},
	})
}

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// Login handles POST /login. The username field also accepts the email.
func (s *AuthService) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if req.Username == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Please enter username and password",
		})
	}

	var user models.User
	err := s.DB.Where("username = ? OR email = ?", req.Username, req.Username).
		First(&user).Error
	if err != nil || user.PasswordHash != HashPassword(req.Password) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid username or password",
		})
	}

	now := time.Now()
	user.LastLogin = &now
	if err := s.DB.Save(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Login failed. Please try again.",
		})
	}

	if err := s.establishSession(c, &user); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to create session",
		})
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Login successful!",
		"user": fiber.Map{
			"id":               user.ID,
			"username":         user.Username,
			"theme_preference": user.ThemePreference,
		},
	})
}

// Logout handles GET /logout.
func (s *AuthService) Logout(c *fiber.Ctx) error {
	sess, err := s.Store.Get(c)
	if err == nil {
		_ = sess.Destroy()
	}
	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Logged out successfully",
	})
}

type updateThemeRequest struct {
	Theme string `json:"theme" form:"theme"`
}

// UpdateTheme handles POST /update_theme. An invalid theme is rejected with no
// change to the stored preference.
func (s *AuthService) UpdateTheme(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var req updateThemeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if !models.ValidTheme(req.Theme) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid theme",
		})
	}

	if err := s.DB.Model(&models.User{}).
		Where("id = ?", userID).
		Update("theme_preference", req.Theme).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to update theme",
		})
	}

	if sess, err := s.Store.Get(c); err == nil {
		sess.Set("theme", req.Theme)
		_ = sess.Save()
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"theme":  req.Theme,
	})
}

func (s *AuthService) establishSession(c *fiber.Ctx, user *models.User) error {
	sess, err := s.Store.Get(c)
	if err != nil {
		return err
	}
	sess.Set("user_id", user.ID)
	sess.Set("username", user.Username)
	sess.Set("theme", user.ThemePreference)
	return sess.Save()
}
