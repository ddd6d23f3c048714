package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Bessima/botform-intake/internal/config/db"
	"github.com/Bessima/botform-intake/internal/customerror"
	"github.com/Bessima/botform-intake/internal/models"
	"github.com/Bessima/botform-intake/internal/retry"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type UserRepository struct {
	db *db.DB
}

type UserStorageRepositoryI interface {
	CreateUser(ctx context.Context, username, password string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

func NewUserRepository(dbObj *db.DB) *UserRepository {
	return &UserRepository{db: dbObj}
}

// CreateUser хеширует пароль и сохраняет пользователя.
func (repository *UserRepository) CreateUser(ctx context.Context, username, password string) (*models.User, error) {
	user := models.User{Username: username}
	if err := user.HashPassword(password); err != nil {
		return nil, fmt.Errorf("error generate password hash: %w", err)
	}

	query := `INSERT INTO users (username, password) VALUES ($1, $2) RETURNING id, username, password`
	created, err := retry.DoRetryWithResult(ctx, func() (*models.User, error) {
		return scanUser(repository.db.Pool.QueryRow(ctx, query, user.Username, user.PasswordHash))
	}, repository.db.Retry)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, customerror.NewUniqueViolationError(fmt.Sprintf("user %s already exists", username))
		}
		return nil, customerror.NewCommonPGError(err.Error())
	}
	return created, nil
}

func (repository *UserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT id, username, password FROM users WHERE username = $1`
	return repository.getUser(ctx, fmt.Sprintf("user %s not found", username), query, username)
}

func (repository *UserRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT id, username, password FROM users WHERE id = $1`
	return repository.getUser(ctx, fmt.Sprintf("user %d not found", id), query, id)
}

func (repository *UserRepository) getUser(ctx context.Context, notFound, query string, arg any) (*models.User, error) {
	user, err := retry.DoRetryWithResult(ctx, func() (*models.User, error) {
		return scanUser(repository.db.Pool.QueryRow(ctx, query, arg))
	}, repository.db.Retry)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, customerror.NewNotFoundError(notFound)
		}
		return nil, customerror.NewCommonPGError(err.Error())
	}
	return user, nil
}

func scanUser(row pgx.Row) (*models.User, error) {
	elem := models.User{}
	if err := row.Scan(&elem.ID, &elem.Username, &elem.PasswordHash); err != nil {
		return nil, err
	}
	return &elem, nil
}
