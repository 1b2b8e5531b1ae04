package repositories

import (
	"context"
	"errors"
	"fmt"

	"sourcing-system/internal/entities"
	apperrors "sourcing-system/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userFields = `id, fio, email, password_hash, role, company_name, created_at, updated_at`

type UserRepositoryInterface interface {
	FindByID(ctx context.Context, id string) (*entities.User, error)
	FindByEmail(ctx context.Context, email string) (*entities.User, error)
	Create(ctx context.Context, user *entities.User) error
}

type UserRepository struct {
	storage *pgxpool.Pool
}

func NewUserRepository(storage *pgxpool.Pool) UserRepositoryInterface {
	return &UserRepository{storage: storage}
}

func (r *UserRepository) scanUser(row pgx.Row) (*entities.User, error) {
	var u entities.User
	var role string
	err := row.Scan(&u.ID, &u.Fio, &u.Email, &u.PasswordHash, &role, &u.CompanyName, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("пользователь не найден")
		}
		return nil, fmt.Errorf("ошибка сканирования пользователя: %w", err)
	}
	normalized, ok := entities.NormalizeRole(role)
	if !ok {
		return nil, fmt.Errorf("в БД неизвестная роль %q у пользователя %s", role, u.ID)
	}
	u.Role = normalized
	return &u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entities.User, error) {
	query := `SELECT ` + userFields + ` FROM users WHERE id = $1`
	return r.scanUser(r.storage.QueryRow(ctx, query, id))
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	query := `SELECT ` + userFields + ` FROM users WHERE email = $1`
	return r.scanUser(r.storage.QueryRow(ctx, query, email))
}

func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	query := `
		INSERT INTO users (id, fio, email, password_hash, role, company_name)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.storage.Exec(ctx, query,
		user.ID, user.Fio, user.Email, user.PasswordHash, string(user.Role), user.CompanyName)
	if err != nil {
		return fmt.Errorf("ошибка создания пользователя: %w", err)
	}
	return nil
}
