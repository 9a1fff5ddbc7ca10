package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/agroconnect/marketplace/internal/config"
	"github.com/agroconnect/marketplace/internal/domain/user"
	"github.com/agroconnect/marketplace/internal/security"
	"github.com/gin-gonic/gin"
)

type UserStore interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	Create(ctx context.Context, u user.User) error
	UpdatePassword(ctx context.Context, email, passwordHash string) error
}

type AuthHandler struct {
	users UserStore
	log   *slog.Logger
}

func NewAuthHandler(users UserStore, log *slog.Logger) *AuthHandler {
	return &AuthHandler{users: users, log: log}
}

// loginUser is the login payload shape. It deliberately carries the
// hashed password, matching the system's documented wire contract.
type loginUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		h.log.Error("hash password failed", "err", err)
		RespondInternal(ctx, "Server error")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	u := user.NewFromRegisterRequest(req, hash)

	err = h.users.Create(cctx, u)

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			RespondBadRequest(ctx, "email_taken", "User already exists", nil)
			return
		}

		h.log.Error("register failed", "err", err)
		RespondInternal(ctx, "Server error")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// short timeout for DB lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// same status and message as a wrong password, on purpose
			RespondUnAuthorized(ctx, "invalid_credentials", "Invalid credentials")
			return
		}

		h.log.Error("login lookup failed", "err", err)
		RespondInternal(ctx, "Server error")
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		RespondUnAuthorized(ctx, "invalid_credentials", "Invalid credentials")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user": loginUser{
			ID:        foundUser.ID,
			Name:      foundUser.Name,
			Email:     foundUser.Email,
			Password:  foundUser.PasswordHash,
			CreatedAt: foundUser.CreatedAt,
			UpdatedAt: foundUser.UpdatedAt,
		},
	})
}

// ForgotPassword resets a password for whoever knows the email. There is
// no further identity verification, that is the documented contract.
func (h *AuthHandler) ForgotPassword(ctx *gin.Context) {
	var req user.ForgotPasswordRequest

	if !BindJSON(ctx, &req) {
		return
	}

	hash, err := security.HashPassword(req.NewPassword)

	if err != nil {
		h.log.Error("hash password failed", "err", err)
		RespondInternal(ctx, "Server error")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	err = h.users.UpdatePassword(cctx, req.Email, hash)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		h.log.Error("password reset failed", "err", err)
		RespondInternal(ctx, "Server error")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Password has been reset successfully",
	})
}
