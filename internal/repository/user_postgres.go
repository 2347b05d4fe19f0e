package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jaekwang-park/todolist/internal/model"
)

const userColumns = `id, name, email, password_hash, cognito_sub, created_at`

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUser(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	query := `
		INSERT INTO users (name, email, password_hash, cognito_sub)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns

	row := r.db.QueryRowContext(ctx, query,
		user.Name, user.Email, user.PasswordHash, nullString(user.CognitoSub),
	)
	created, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return model.User{}, ErrDuplicate
		}
		return model.User{}, err
	}
	return created, nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, userID string) (model.User, error) {
	if !validUUID(userID) {
		return model.User{}, ErrNotFound
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, userID))
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresUserRepository) GetByCognitoSub(ctx context.Context, cognitoSub string) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE cognito_sub = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, cognitoSub))
}

func (r *PostgresUserRepository) GetOrCreate(ctx context.Context, cognitoSub, email, name string) (model.User, error) {
	query := `
		INSERT INTO users (cognito_sub, email, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (cognito_sub) DO UPDATE SET email = EXCLUDED.email
		RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRowContext(ctx, query, cognitoSub, email, name))
	if err != nil {
		if isUniqueViolation(err) {
			return model.User{}, ErrDuplicate
		}
		return model.User{}, err
	}
	return user, nil
}

func scanUser(row scannable) (model.User, error) {
	var u model.User
	var sub sql.NullString
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &sub, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to scan user: %w", err)
	}
	u.CognitoSub = sub.String
	return u, nil
}

var _ UserRepository = (*PostgresUserRepository)(nil)
