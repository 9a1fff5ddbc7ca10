package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/agroconnect/marketplace/internal/domain/user"
	"github.com/agroconnect/marketplace/internal/http/handlers"
	"github.com/agroconnect/marketplace/internal/security"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Make sure Gin does not spam the console during the test

func init() {
	gin.SetMode(gin.TestMode)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Fake store implementation of the handlers.UserStore interface

type fakeUserStore struct {
	getByEmailFn     func(ctx context.Context, email string) (user.User, error)
	createFn         func(ctx context.Context, u user.User) error
	updatePasswordFn func(ctx context.Context, email, passwordHash string) error
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (user.User, error) {
	if f.getByEmailFn != nil {
		return f.getByEmailFn(ctx, email)
	}
	return user.User{}, user.ErrNotFound
}

func (f *fakeUserStore) Create(ctx context.Context, u user.User) error {
	if f.createFn != nil {
		return f.createFn(ctx, u)
	}
	return nil
}

func (f *fakeUserStore) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	if f.updatePasswordFn != nil {
		return f.updatePasswordFn(ctx, email, passwordHash)
	}
	return nil
}

// small helper function which returns the gin engine to mount one handler per test

func setupRouter(method, path string, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Handle(method, path, h)

	return r
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func TestRegisterHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		storeSetup     func(*fakeUserStore)
		wantStatusCode int
		wantMessage    string
	}{
		{
			name: "success",
			body: `{"name":"Amina Farmer","email":"amina@example.com","password":"plant-more-maize"}`,
			storeSetup: func(f *fakeUserStore) {
				f.createFn = func(ctx context.Context, u user.User) error {
					if u.ID == "" || u.PasswordHash == u.Email {
						return errors.New("factory did not run")
					}
					if u.PasswordHash == "plant-more-maize" {
						return errors.New("password stored in plaintext")
					}
					return nil
				}
			},
			wantStatusCode: http.StatusCreated,
			wantMessage:    "User registered successfully",
		},
		{
			name: "duplicate_email",
			body: `{"name":"Amina Farmer","email":"amina@example.com","password":"plant-more-maize"}`,
			storeSetup: func(f *fakeUserStore) {
				f.createFn = func(ctx context.Context, u user.User) error {
					return user.ErrEmailTaken
				}
			},
			wantStatusCode: http.StatusBadRequest,
			wantMessage:    "User already exists",
		},
		{
			name: "validation_error",
			body: `{"email":"not-an-email"}`,
			storeSetup: func(f *fakeUserStore) {
				f.createFn = func(ctx context.Context, u user.User) error {
					// an invalid payload must never reach the store
					return errors.New("store should not be called")
				}
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "store_error",
			body: `{"name":"Amina Farmer","email":"amina@example.com","password":"plant-more-maize"}`,
			storeSetup: func(f *fakeUserStore) {
				f.createFn = func(ctx context.Context, u user.User) error {
					return errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			store := &fakeUserStore{}

			if tt.storeSetup != nil {
				tt.storeSetup(store)
			}

			h := handlers.NewAuthHandler(store, testLogger())
			r := setupRouter(http.MethodPost, "/api/register", h.Register)

			w := postJSON(r, "/api/register", tt.body)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantMessage != "" {
				var resp struct {
					Message string `json:"message"`
				}
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("failed to unmarshal response: %v", err)
				}
				if resp.Message != tt.wantMessage {
					t.Fatalf("got message %q, want %q", resp.Message, tt.wantMessage)
				}
			}
		})
	}
}

func TestLoginHandler(t *testing.T) {
	now := time.Now().UTC()

	hash, err := security.HashPassword("correct-horse")
	if err != nil {
		t.Fatalf("failed to hash fixture password: %v", err)
	}

	known := user.User{
		ID:           uuid.NewString(),
		Name:         "Amina Farmer",
		Email:        "amina@example.com",
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	lookup := func(f *fakeUserStore) {
		f.getByEmailFn = func(ctx context.Context, email string) (user.User, error) {
			if email == known.Email {
				return known, nil
			}
			return user.User{}, user.ErrNotFound
		}
	}

	t.Run("success_includes_user_record", func(t *testing.T) {
		store := &fakeUserStore{}
		lookup(store)

		h := handlers.NewAuthHandler(store, testLogger())
		r := setupRouter(http.MethodPost, "/api/login", h.Login)

		w := postJSON(r, "/api/login", `{"email":"amina@example.com","password":"correct-horse"}`)

		if w.Code != http.StatusOK {
			t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
		}

		var resp struct {
			Message string `json:"message"`
			User    struct {
				ID       string `json:"id"`
				Email    string `json:"email"`
				Password string `json:"password"`
			} `json:"user"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}

		if resp.Message != "Login successful" {
			t.Fatalf("got message %q", resp.Message)
		}
		if resp.User.ID != known.ID || resp.User.Email != known.Email {
			t.Fatalf("user record not echoed: %+v", resp.User)
		}
		// documented wire contract: the hashed password rides along
		if resp.User.Password != hash {
			t.Fatalf("expected hashed password in login payload, got %q", resp.User.Password)
		}
	})

	t.Run("unknown_email_and_wrong_password_are_indistinguishable", func(t *testing.T) {
		store := &fakeUserStore{}
		lookup(store)

		h := handlers.NewAuthHandler(store, testLogger())
		r := setupRouter(http.MethodPost, "/api/login", h.Login)

		wUnknown := postJSON(r, "/api/login", `{"email":"nobody@example.com","password":"correct-horse"}`)
		wWrong := postJSON(r, "/api/login", `{"email":"amina@example.com","password":"wrong-horse"}`)

		if wUnknown.Code != http.StatusUnauthorized || wWrong.Code != http.StatusUnauthorized {
			t.Fatalf("got statuses %d and %d, want both %d", wUnknown.Code, wWrong.Code, http.StatusUnauthorized)
		}

		var a, b struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(wUnknown.Body.Bytes(), &a); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
		if err := json.Unmarshal(wWrong.Body.Bytes(), &b); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
		if a.Message != b.Message {
			t.Fatalf("messages differ: %q vs %q", a.Message, b.Message)
		}
		if a.Message != "Invalid credentials" {
			t.Fatalf("got message %q", a.Message)
		}
	})

	t.Run("store_error", func(t *testing.T) {
		store := &fakeUserStore{}
		store.getByEmailFn = func(ctx context.Context, email string) (user.User, error) {
			return user.User{}, errors.New("db error")
		}

		h := handlers.NewAuthHandler(store, testLogger())
		r := setupRouter(http.MethodPost, "/api/login", h.Login)

		w := postJSON(r, "/api/login", `{"email":"amina@example.com","password":"correct-horse"}`)

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusInternalServerError, w.Body.String())
		}
	})
}

func TestForgotPasswordHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		storeSetup     func(*fakeUserStore)
		wantStatusCode int
		wantMessage    string
	}{
		{
			name: "success",
			body: `{"email":"amina@example.com","newPassword":"fresh-start"}`,
			storeSetup: func(f *fakeUserStore) {
				f.updatePasswordFn = func(ctx context.Context, email, passwordHash string) error {
					if passwordHash == "fresh-start" {
						return errors.New("password stored in plaintext")
					}
					return nil
				}
			},
			wantStatusCode: http.StatusOK,
			wantMessage:    "Password has been reset successfully",
		},
		{
			name: "unknown_email",
			body: `{"email":"nobody@example.com","newPassword":"fresh-start"}`,
			storeSetup: func(f *fakeUserStore) {
				f.updatePasswordFn = func(ctx context.Context, email, passwordHash string) error {
					return user.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
			wantMessage:    "User not found",
		},
		{
			name:           "validation_error",
			body:           `{"email":"amina@example.com"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "store_error",
			body: `{"email":"amina@example.com","newPassword":"fresh-start"}`,
			storeSetup: func(f *fakeUserStore) {
				f.updatePasswordFn = func(ctx context.Context, email, passwordHash string) error {
					return errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			store := &fakeUserStore{}

			if tt.storeSetup != nil {
				tt.storeSetup(store)
			}

			h := handlers.NewAuthHandler(store, testLogger())
			r := setupRouter(http.MethodPost, "/api/forgot-password", h.ForgotPassword)

			w := postJSON(r, "/api/forgot-password", tt.body)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantMessage != "" {
				var resp struct {
					Message string `json:"message"`
				}
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("failed to unmarshal response: %v", err)
				}
				if resp.Message != tt.wantMessage {
					t.Fatalf("got message %q, want %q", resp.Message, tt.wantMessage)
				}
			}
		})
	}
}
