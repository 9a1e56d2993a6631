package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iho/splitledger/internal/domain"
)

const userColumns = `id, username, name, email, mobile_number, hashed_password, created_at`

// UserRepository implements usecase.UserRepository.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Username, user.Name, user.Email, user.MobileNumber, user.HashedPassword,
		formatTime(user.CreatedAt))
	if err != nil {
		// SQLite reports "UNIQUE constraint failed: users.<column>".
		msg := err.Error()

		switch {
		case strings.Contains(msg, "users.username"):
			return domain.ErrUsernameTaken
		case strings.Contains(msg, "users.email"):
			return domain.ErrEmailTaken
		}
	}

	return err
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getBy(ctx, "id", id)
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getBy(ctx, "username", username)
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getBy(ctx, "email", email)
}

// ExistingIDs returns which of ids are registered users.
func (r *UserRepository) ExistingIDs(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM users WHERE id IN (`+placeholders(len(ids))+`) ORDER BY id`,
		stringArgs(ids)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var found []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}

		found = append(found, id)
	}

	return found, rows.Err()
}

// column is one of a fixed set of names, never user input.
func (r *UserRepository) getBy(ctx context.Context, column, value string) (*domain.User, error) {
	var (
		u         domain.User
		createdAt string
	)

	err := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+column+` = ?`, value).
		Scan(&u.ID, &u.Username, &u.Name, &u.Email, &u.MobileNumber, &u.HashedPassword, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}

		return nil, err
	}

	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}

	return &u, nil
}
