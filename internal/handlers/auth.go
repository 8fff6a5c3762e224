package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"catalogapi/internal/events"
	"catalogapi/internal/hash"
	"catalogapi/internal/logging"
	authmw "catalogapi/internal/middleware/auth"
	"catalogapi/internal/models"
	"catalogapi/internal/token"
	"catalogapi/internal/transport"
)

type AuthHandler struct {
	DB        *gorm.DB
	JWTSecret []byte
	Producer  *events.Producer
}

func CreateCookie(name, value, path string, exp time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  exp,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *AuthHandler) publish(c echo.Context, topic, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish failed", "topic", topic, "error", err)
	}
}

func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing username, email, or password")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	// Duplicates are checked up front so the client gets a precise 400
	// instead of a translated constraint violation.
	var existing models.User
	if err := h.DB.WithContext(ctx).Where("username = ?", req.Username).First(&existing).Error; err == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "username already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		l.Error("register failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not register user")
	}
	if err := h.DB.WithContext(ctx).Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		l.Error("register failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not register user")
	}

	passwordHash, err := hash.HashPassword(req.Password)
	if err != nil {
		l.Error("register failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not register user")
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
		IsAdmin:      req.IsAdmin,
	}
	if err := h.DB.WithContext(ctx).Create(&user).Error; err != nil {
		l.Error("register failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not register user")
	}

	h.publish(c, events.TopicUserEvents, fmt.Sprint(user.ID), map[string]any{
		"type":     "user_registered",
		"user_id":  user.ID,
		"username": user.Username,
	})

	l.Info("user registered", "user_id", user.ID)
	return c.JSON(http.StatusCreated, transport.NewUserView(&user))
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Username == "" && req.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing username or email")
	}
	if req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing password")
	}

	// Username first, email as fallback. Both lookup and password
	// failures produce the same message so neither check leaks.
	var user models.User
	found := false
	if req.Username != "" {
		if err := h.DB.WithContext(ctx).Where("username = ?", req.Username).First(&user).Error; err == nil {
			found = true
		}
	}
	if !found && req.Email != "" {
		if err := h.DB.WithContext(ctx).Where("email = ?", req.Email).First(&user).Error; err == nil {
			found = true
		}
	}
	if !found || !hash.CheckPassword(user.PasswordHash, req.Password) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
	}

	tok, err := token.Sign(user.ID, h.JWTSecret)
	if err != nil {
		l.Error("login failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not create token")
	}

	c.SetCookie(CreateCookie("accessToken", tok, "/", time.Now().Add(token.AccessTokenTTL)))

	h.publish(c, events.TopicUserEvents, fmt.Sprint(user.ID), map[string]any{
		"type":     "user_logged_in",
		"user_id":  user.ID,
		"username": user.Username,
	})

	l.Info("user logged in", "user_id", user.ID)
	return c.JSON(http.StatusOK, transport.LoginResponse{
		Token:   tok,
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
	})
}

// IsAdmin reports whether the authenticated caller has the admin flag.
func (h *AuthHandler) IsAdmin(c echo.Context) error {
	admin, err := authoriseAsAdmin(h.DB, authmw.UserID(c))
	if err != nil {
		logging.FromContext(c.Request().Context()).Error("admin check failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not check privileges")
	}
	return c.JSON(http.StatusOK, echo.Map{"is_admin": admin})
}

// authoriseAsAdmin reloads the caller's user row and tests the admin
// flag. A user row that no longer exists means not admin, not an error.
func authoriseAsAdmin(gdb *gorm.DB, userID uint) (bool, error) {
	var user models.User
	if err := gdb.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("load user %d: %w", userID, err)
	}
	return user.IsAdmin, nil
}
