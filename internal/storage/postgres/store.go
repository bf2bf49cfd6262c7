package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/hongminglow/account-be/internal/models"
	"github.com/hongminglow/account-be/internal/storage"
)

//go:embed migrations/*.sql
var migrations embed.FS

const uniqueViolation = "23505"

// Ensure Store satisfies the storage.UserStore interface at compile time.
var _ storage.UserStore = (*Store)(nil)

// Store provides Postgres-backed persistence for users.
type Store struct {
	pool *pgxpool.Pool
}

// NewUserStore connects to Postgres and applies the embedded migrations.
func NewUserStore(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) migrate(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(s.pool)

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// CreateUser inserts a new user row.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	const query = `
		INSERT INTO users (username, password_hash, is_admin, current_token)
		VALUES ($1, $2, $3, $4)
		RETURNING id, username, password_hash, is_admin, current_token, created_at;
	`
	row := s.pool.QueryRow(ctx, query, user.Username, user.PasswordHash, user.IsAdmin, user.CurrentToken)
	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, err
	}
	return created, nil
}

// FindByUsername fetches a user by username.
func (s *Store) FindByUsername(ctx context.Context, username string) (models.User, error) {
	const query = `
	SELECT id, username, password_hash, is_admin, current_token, created_at
	FROM users
	WHERE username = $1;
	`
	return scanUser(s.pool.QueryRow(ctx, query, username))
}

// FindByID fetches a user by id. Ids that are not numeric cannot exist.
func (s *Store) FindByID(ctx context.Context, id string) (models.User, error) {
	numericID, err := parseID(id)
	if err != nil {
		return models.User{}, storage.ErrNotFound
	}
	const query = `
	SELECT id, username, password_hash, is_admin, current_token, created_at
	FROM users
	WHERE id = $1;
	`
	return scanUser(s.pool.QueryRow(ctx, query, numericID))
}

// SaveUser writes the current token back to the user's row.
func (s *Store) SaveUser(ctx context.Context, user models.User) error {
	numericID, err := parseID(user.ID)
	if err != nil {
		return storage.ErrNotFound
	}
	tag, err := s.pool.Exec(ctx, `UPDATE users SET current_token = $1 WHERE id = $2;`, user.CurrentToken, numericID)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func parseID(id string) (int64, error) {
	return strconv.ParseInt(id, 10, 64)
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	var id int64
	if err := row.Scan(&id, &user.Username, &user.PasswordHash, &user.IsAdmin, &user.CurrentToken, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, err
	}
	user.ID = strconv.FormatInt(id, 10)
	return user, nil
}
