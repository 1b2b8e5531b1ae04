package services

import (
	"context"
	"errors"

	"sourcing-system/internal/authz"
	"sourcing-system/internal/entities"
	apperrors "sourcing-system/pkg/errors"
)

func errorIsNotFound(err error) bool {
	return errors.Is(err, apperrors.ErrNotFound)
}

// accessGuard - общая проверка доступа для сервисов workflow: загружает
// права роли актора и прогоняет RBAC+ABAC движок.
type accessGuard struct {
	permissionSvc PermissionServiceInterface
}

func newAccessGuard(permissionSvc PermissionServiceInterface) *accessGuard {
	return &accessGuard{permissionSvc: permissionSvc}
}

// authorize возвращает Forbidden, если актору нельзя применить permission
// к target. target может быть nil для операций без целевой сущности.
func (g *accessGuard) authorize(ctx context.Context, actor entities.Actor, permission string, target interface{}) error {
	permissions, err := g.permissionSvc.GetRolePermissions(ctx, actor.Role)
	if err != nil {
		return err
	}
	ok := authz.CanDo(permission, authz.Context{
		Actor:       actor,
		Permissions: permissions,
		Target:      target,
	})
	if !ok {
		return apperrors.NewForbidden("недостаточно прав для операции %s", permission)
	}
	return nil
}
