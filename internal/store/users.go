package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/safar/artstore/internal/database"
	"github.com/safar/artstore/internal/models"
)

func CreateUser(ctx context.Context, q Querier, username, email string) (*models.User, error) {
	user := &models.User{}

	query := `
		INSERT INTO users (username, email, created_at)
		VALUES ($1, $2, NOW())
		RETURNING user_id, username, email, created_at`

	err := q.QueryRowContext(ctx, query, username, email).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

func GetUser(ctx context.Context, q Querier, id int64) (*models.User, error) {
	user := &models.User{}

	query := `
		SELECT user_id, username, email, created_at
		FROM users
		WHERE user_id = $1`

	err := q.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return user, nil
}

func UserExists(ctx context.Context, q Querier, id int64) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM users WHERE user_id = $1)",
		id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return exists, nil
}

// Users binds the user lookups to a connection pool.
type Users struct {
	db *sql.DB
}

func NewUsers(db *sql.DB) *Users {
	return &Users{db: db}
}

func (u *Users) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return GetUser(ctx, u.db, id)
}
