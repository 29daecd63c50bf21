package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/stayora/hotel-booking-backend/internal/config"
	"github.com/stayora/hotel-booking-backend/internal/model"
	"github.com/stayora/hotel-booking-backend/internal/repository"
	"github.com/stayora/hotel-booking-backend/internal/utils"
)

// AuthHandler implements registration, login and the refresh-token
// flow. Manager accounts start inactive and cannot log in until an
// admin approves them.
type AuthHandler struct {
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
	Cfg    config.Config
}

func NewAuthHandler(users *repository.UserRepo, tokens *repository.TokenRepo, cfg config.Config) *AuthHandler {
	return &AuthHandler{Users: users, Tokens: tokens, Cfg: cfg}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Register creates a customer or manager account. The admin role can
// only be granted by an existing admin, never self-assigned here.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return respondFail(c, http.StatusBadRequest, "invalid request body")
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || len(req.Password) < 8 {
		return respondFail(c, http.StatusBadRequest, "name, email and a password of at least 8 characters are required")
	}
	role := strings.ToUpper(strings.TrimSpace(req.Role))
	if role == "" {
		role = model.RoleCustomer
	}
	if role != model.RoleCustomer && role != model.RoleManager {
		return respondFail(c, http.StatusBadRequest, "role must be CUSTOMER or MANAGER")
	}

	id, err := h.Users.Create(c.Request().Context(), req.Name, req.Email, req.Password, role, h.Cfg.BcryptCost)
	if err != nil {
		return respondErr(c, err)
	}

	msg := "registration successful"
	if role == model.RoleManager {
		msg = "registration received, awaiting admin approval"
	}
	return respondOK(c, http.StatusCreated, msg, echo.Map{"id": id})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    string `json:"expires_at"`
}

// Login verifies credentials and issues an access/refresh token pair.
// Inactive accounts are rejected regardless of password correctness.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return respondFail(c, http.StatusBadRequest, "invalid request body")
	}
	ctx := c.Request().Context()

	u, err := h.Users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if errors.Is(err, repository.ErrUserNotFound) {
		return respondFail(c, http.StatusUnauthorized, "invalid credentials")
	}
	if err != nil {
		return respondErr(c, err)
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return respondFail(c, http.StatusUnauthorized, "invalid credentials")
	}
	if !u.Active.Bool() {
		return respondFail(c, http.StatusForbidden, "account is not active")
	}
	return h.issuePair(c, u)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh rotates a refresh token: the presented token is revoked and a
// fresh pair is issued, so a token can be used at most once.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return respondFail(c, http.StatusBadRequest, "refresh_token is required")
	}
	ctx := c.Request().Context()

	hash := utils.HashRefreshRaw(req.RefreshToken)
	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if errors.Is(err, sql.ErrNoRows) {
		return respondFail(c, http.StatusUnauthorized, "invalid or expired refresh token")
	}
	if err != nil {
		return respondErr(c, err)
	}

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return respondErr(c, err)
	}
	if !u.Active.Bool() {
		_ = h.Tokens.RevokeAllForUser(ctx, userID)
		return respondFail(c, http.StatusForbidden, "account is not active")
	}
	if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
		return respondErr(c, err)
	}
	return h.issuePair(c, u)
}

// Logout revokes every active refresh token of the calling user.
func (h *AuthHandler) Logout(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return respondFail(c, http.StatusUnauthorized, "unauthorized")
	}
	if err := h.Tokens.RevokeAllForUser(c.Request().Context(), userID); err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, http.StatusOK, "logged out", nil)
}

// Me returns the calling user's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return respondFail(c, http.StatusUnauthorized, "unauthorized")
	}
	u, err := h.Users.GetByID(c.Request().Context(), userID)
	if err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, http.StatusOK, "profile", echo.Map{
		"id":     u.ID,
		"name":   u.Name,
		"email":  u.Email,
		"role":   u.Role,
		"active": u.Active.Bool(),
	})
}

func (h *AuthHandler) issuePair(c echo.Context, u model.User) error {
	ctx := c.Request().Context()
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return respondErr(c, err)
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return respondErr(c, err)
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return respondErr(c, err)
	}
	return respondOK(c, http.StatusOK, "authenticated", tokenPair{
		AccessToken:  access.Token,
		RefreshToken: refresh.Raw,
		ExpiresAt:    access.Exp.UTC().Format(time.RFC3339),
	})
}
