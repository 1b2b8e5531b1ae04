package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"sourcing-system/internal/entities"
	"sourcing-system/internal/repositories"

	"go.uber.org/zap"
)

type PermissionServiceInterface interface {
	// GetRolePermissions возвращает права роли в виде set-а для движка доступа.
	GetRolePermissions(ctx context.Context, role entities.Role) (map[string]bool, error)
	InvalidateRoleCache(ctx context.Context, role entities.Role) error
}

// PermissionService отдает права роли, кешируя их в Redis: права меняются
// редко, а читаются на каждом запросе.
type PermissionService struct {
	permissionRepo repositories.PermissionRepositoryInterface
	cacheRepo      repositories.CacheRepositoryInterface
	logger         *zap.Logger
	cacheTTL       time.Duration
}

func NewPermissionService(
	permissionRepo repositories.PermissionRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	logger *zap.Logger,
	cacheTTL time.Duration,
) PermissionServiceInterface {
	return &PermissionService{
		permissionRepo: permissionRepo,
		cacheRepo:      cacheRepo,
		logger:         logger,
		cacheTTL:       cacheTTL,
	}
}

func (s *PermissionService) GetRolePermissions(ctx context.Context, role entities.Role) (map[string]bool, error) {
	cacheKey := fmt.Sprintf("auth:permissions:role:%s", role)

	var names []string
	cached, errGet := s.cacheRepo.Get(ctx, cacheKey)
	if errGet == nil {
		if err := json.Unmarshal([]byte(cached), &names); err == nil {
			return toPermissionSet(names), nil
		}
		s.logger.Warn("PermissionService: битый кеш прав роли, перечитываем из БД",
			zap.String("role", string(role)), zap.String("key", cacheKey))
	}

	names, err := s.permissionRepo.GetPermissionsForRole(ctx, role)
	if err != nil {
		s.logger.Error("PermissionService: не удалось получить права роли из БД",
			zap.String("role", string(role)), zap.Error(err))
		return nil, err
	}

	if len(names) > 0 {
		if payload, errMarshal := json.Marshal(names); errMarshal == nil {
			if errSet := s.cacheRepo.Set(ctx, cacheKey, string(payload), s.cacheTTL); errSet != nil {
				s.logger.Error("PermissionService: не удалось закешировать права роли",
					zap.String("role", string(role)), zap.Error(errSet))
			}
		}
	}
	return toPermissionSet(names), nil
}

func (s *PermissionService) InvalidateRoleCache(ctx context.Context, role entities.Role) error {
	return s.cacheRepo.Del(ctx, fmt.Sprintf("auth:permissions:role:%s", role))
}

func toPermissionSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}
	return set
}
