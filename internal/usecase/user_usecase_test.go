package usecase_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/usecase"
	"github.com/iho/splitledger/internal/usecase/mocks"
)

func validRegistration() usecase.RegisterInput {
	return usecase.RegisterInput{
		Username:     "alice",
		Name:         "Alice",
		Email:        "Alice@Example.com",
		MobileNumber: "+15551234567",
		Password:     "correcthorse1",
	}
}

func TestUserUseCase_Register_Success(t *testing.T) {
	t.Parallel()

	store := mocks.NewStore()
	uc := usecase.NewUserUseCase(store.Users(), &mocks.SequenceIDs{})

	user, err := uc.Register(context.Background(), validRegistration())
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.HashedPassword != "" {
		t.Fatal("expected hashed password to be cleared in response")
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %s", user.Email)
	}

	stored, err := store.Users().GetByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("expected stored user, got %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.HashedPassword), []byte("correcthorse1")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestUserUseCase_Register_Duplicates(t *testing.T) {
	t.Parallel()

	store := mocks.NewStore()
	uc := usecase.NewUserUseCase(store.Users(), &mocks.SequenceIDs{})
	if _, err := uc.Register(context.Background(), validRegistration()); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}

	_, err := uc.Register(context.Background(), validRegistration())
	if !errors.Is(err, domain.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}

	other := validRegistration()
	other.Username = "alice2"
	_, err = uc.Register(context.Background(), other)
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestUserUseCase_Register_Validation(t *testing.T) {
	t.Parallel()

	uc := usecase.NewUserUseCase(mocks.NewStore().Users(), &mocks.SequenceIDs{})

	tests := []struct {
		name    string
		mutate  func(*usecase.RegisterInput)
		wantErr error
	}{
		{"bad username", func(in *usecase.RegisterInput) { in.Username = "a b" }, domain.ErrInvalidUsername},
		{"bad email", func(in *usecase.RegisterInput) { in.Email = "nope" }, domain.ErrInvalidEmail},
		{"bad mobile", func(in *usecase.RegisterInput) { in.MobileNumber = "12" }, domain.ErrInvalidMobile},
		{"weak password", func(in *usecase.RegisterInput) { in.Password = "short" }, domain.ErrPasswordTooWeak},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validRegistration()
			tt.mutate(&in)
			if _, err := uc.Register(context.Background(), in); !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestUserUseCase_Authenticate(t *testing.T) {
	t.Parallel()

	store := mocks.NewStore()
	uc := usecase.NewUserUseCase(store.Users(), &mocks.SequenceIDs{})
	if _, err := uc.Register(context.Background(), validRegistration()); err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	user, err := uc.Authenticate(context.Background(), usecase.AuthenticateInput{Username: "alice", Password: "correcthorse1"})
	if err != nil {
		t.Fatalf("expected authentication to succeed, got %v", err)
	}
	if user.HashedPassword != "" {
		t.Fatal("expected hashed password to be cleared")
	}

	if _, err := uc.Authenticate(context.Background(), usecase.AuthenticateInput{Username: "alice", Password: "wrong"}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	if _, err := uc.Authenticate(context.Background(), usecase.AuthenticateInput{Username: "bob", Password: "whatever1"}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestUserUseCase_Authenticate_StorageError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	repo := mocks.NewMockUserRepository(ctrl)
	repo.EXPECT().GetByUsername(gomock.Any(), "alice").Return(nil, errors.New("connection reset"))

	uc := usecase.NewUserUseCase(repo, &mocks.SequenceIDs{})
	_, err := uc.Authenticate(context.Background(), usecase.AuthenticateInput{Username: "alice", Password: "x"})
	if !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}
