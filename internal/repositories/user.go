package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/ndx/internal/models"
	"github.com/desertthunder/ndx/internal/shared"
)

// LibraryRepository reads and updates an existing navidrome.db.
type LibraryRepository struct {
	db *sql.DB
}

// NewLibraryRepository creates a new [LibraryRepository] with the given database connection
func NewLibraryRepository(db *sql.DB) *LibraryRepository {
	return &LibraryRepository{db: db}
}

// Users returns every Navidrome account ordered by user name.
func (r *LibraryRepository) Users(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, user_name FROM user ORDER BY user_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.UserName); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return users, nil
}

// SoleUser returns the only Navidrome account.
//
// Imported annotations belong to a single user, so zero or several accounts is an error.
func (r *LibraryRepository) SoleUser(ctx context.Context) (*models.User, error) {
	users, err := r.Users(ctx)
	if err != nil {
		return nil, err
	}

	switch len(users) {
	case 0:
		return nil, fmt.Errorf("%w: navidrome has no user accounts", shared.ErrUserNotFound)
	case 1:
		return &users[0], nil
	default:
		return nil, fmt.Errorf("%w: there needs to be exactly one navidrome user, found %d", shared.ErrInvalidInput, len(users))
	}
}
