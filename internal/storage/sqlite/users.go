package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/divvyapp/divvy/internal/models"
)

// CreateUser inserts a new user into the database.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, display_name, password_hash, credits, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.DisplayName,
		user.PasswordHash,
		user.Credits.String(),
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByEmail retrieves a user by their email address.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, "email", email)
}

// GetUserByID retrieves a user by their ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx, "id", id)
}

func (s *SQLiteStore) getUser(ctx context.Context, column, value string) (*models.User, error) {
	query := fmt.Sprintf(`
		SELECT id, email, display_name, password_hash, credits, created_at, updated_at
		FROM users
		WHERE %s = ?
	`, column)

	user := &models.User{}
	var credits string
	err := s.db.QueryRowContext(ctx, query, value).Scan(
		&user.ID,
		&user.Email,
		&user.DisplayName,
		&user.PasswordHash,
		&credits,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil // User not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by %s: %w", column, err)
	}

	user.Credits, err = decimal.NewFromString(credits)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credits for user %s: %w", user.ID, err)
	}

	return user, nil
}

// GetUsersByEmails retrieves multiple users by their email addresses.
// Returns a map of email to User object. Emails without an account are
// omitted from the result.
func (s *SQLiteStore) GetUsersByEmails(ctx context.Context, emails []string) (map[string]*models.User, error) {
	if len(emails) == 0 {
		return make(map[string]*models.User), nil
	}

	query := `
		SELECT id, email, display_name, password_hash, credits, created_at, updated_at
		FROM users
		WHERE email IN (?` + repeatPlaceholder(len(emails)-1) + `)`

	args := make([]interface{}, len(emails))
	for i, email := range emails {
		args[i] = email
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get users by emails: %w", err)
	}
	defer rows.Close()

	users := make(map[string]*models.User)
	for rows.Next() {
		user := &models.User{}
		var credits string
		if err := rows.Scan(
			&user.ID,
			&user.Email,
			&user.DisplayName,
			&user.PasswordHash,
			&credits,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		user.Credits, err = decimal.NewFromString(credits)
		if err != nil {
			return nil, fmt.Errorf("failed to parse credits for user %s: %w", user.ID, err)
		}
		users[user.Email] = user
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

// repeatPlaceholder returns a string of ", ?" repeated n times.
// Used for building IN clauses with multiple placeholders.
func repeatPlaceholder(n int) string {
	if n <= 0 {
		return ""
	}
	result := ""
	for i := 0; i < n; i++ {
		result += ", ?"
	}
	return result
}
