package utils

import (
	"context"

	"sourcing-system/internal/entities"
	apperrors "sourcing-system/pkg/errors"
	"sourcing-system/pkg/contextkeys"
)

// GetActorFromCtx достает явную личность вызывающего, положенную
// auth-middleware. Дальше по ядру Actor передается только параметром.
func GetActorFromCtx(ctx context.Context) (entities.Actor, error) {
	userID, ok := ctx.Value(contextkeys.UserIDKey).(string)
	if !ok || userID == "" {
		return entities.Actor{}, apperrors.ErrUnauthorized
	}
	role, ok := ctx.Value(contextkeys.UserRoleKey).(entities.Role)
	if !ok {
		return entities.Actor{}, apperrors.ErrUnauthorized
	}
	return entities.Actor{ID: userID, Role: role}, nil
}
