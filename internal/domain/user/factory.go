package user

import (
	"time"

	"github.com/google/uuid"
)

func NewFromRegisterRequest(req RegisterRequest, passwordHash string) User {
	now := time.Now().UTC()

	return User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
