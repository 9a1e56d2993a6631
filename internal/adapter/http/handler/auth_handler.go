package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/iho/splitledger/internal/adapter/http/dto"
	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/usecase"
)

// UserService defines the behavior needed by AuthHandler and UserHandler.
type UserService interface {
	Register(ctx context.Context, input usecase.RegisterInput) (*domain.User, error)
	Authenticate(ctx context.Context, input usecase.AuthenticateInput) (*domain.User, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
}

// TokenIssuer signs bearer tokens for authenticated users.
type TokenIssuer interface {
	Generate(user *domain.User) (string, error)
	TokenDuration() time.Duration
}

// AuthRecorder counts login outcomes.
type AuthRecorder interface {
	RecordAuth(result string)
}

// AuthHandler handles signup and login.
type AuthHandler struct {
	users    UserService
	tokens   TokenIssuer
	recorder AuthRecorder
	now      func() time.Time
}

// NewAuthHandler creates a new AuthHandler. recorder may be nil.
func NewAuthHandler(users UserService, tokens TokenIssuer, recorder AuthRecorder) *AuthHandler {
	return &AuthHandler{
		users:    users,
		tokens:   tokens,
		recorder: recorder,
		now:      time.Now,
	}
}

// Signup registers a user and returns a token for them.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req dto.SignupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	user, err := h.users.Register(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(r.Context(), w, "failed to register user", err)
		return
	}

	resp, err := h.issue(user)
	if err != nil {
		writeDomainError(r.Context(), w, "failed to generate token", err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// Login exchanges a username and password for a token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.ToUseCaseInput())
	if err != nil {
		h.record("failure")
		writeDomainError(r.Context(), w, "login failed", err)
		return
	}
	h.record("success")

	resp, err := h.issue(user)
	if err != nil {
		writeDomainError(r.Context(), w, "failed to generate token", err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) issue(user *domain.User) (*dto.AuthResponse, error) {
	token, err := h.tokens.Generate(user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		Token:     token,
		ExpiresAt: h.now().Add(h.tokens.TokenDuration()).UTC(),
		User:      dto.UserFromDomain(user),
	}, nil
}

func (h *AuthHandler) record(result string) {
	if h.recorder != nil {
		h.recorder.RecordAuth(result)
	}
}
