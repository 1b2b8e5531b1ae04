package repositories

import (
	"context"
	"fmt"

	"sourcing-system/internal/entities"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PermissionRepositoryInterface interface {
	GetPermissionsForRole(ctx context.Context, role entities.Role) ([]string, error)
}

// PermissionRepository читает права роли из таблицы role_permissions,
// засеянной миграцией из authz.RolePermissions.
type PermissionRepository struct {
	storage *pgxpool.Pool
}

func NewPermissionRepository(storage *pgxpool.Pool) PermissionRepositoryInterface {
	return &PermissionRepository{storage: storage}
}

func (r *PermissionRepository) GetPermissionsForRole(ctx context.Context, role entities.Role) ([]string, error) {
	query := `SELECT permission FROM role_permissions WHERE role = $1`
	rows, err := r.storage.Query(ctx, query, string(role))
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения прав роли %s: %w", role, err)
	}
	defer rows.Close()

	var permissions []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("ошибка сканирования права: %w", err)
		}
		permissions = append(permissions, p)
	}
	return permissions, rows.Err()
}
