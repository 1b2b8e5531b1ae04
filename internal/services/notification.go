package services

import (
	"context"

	"sourcing-system/internal/entities"
	"sourcing-system/internal/repositories"

	"go.uber.org/zap"
)

type NotificationServiceInterface interface {
	ListMine(ctx context.Context, actor entities.Actor, onlyUnread bool) ([]entities.Notification, error)
	MarkRead(ctx context.Context, actor entities.Actor, notificationID string) error
	History(ctx context.Context, actor entities.Actor, entityType, entityID string) ([]entities.WorkflowHistory, error)
}

type NotificationService struct {
	notificationRepo repositories.NotificationRepositoryInterface
	historyRepo      repositories.WorkflowHistoryRepositoryInterface
	logger           *zap.Logger
}

func NewNotificationService(
	notificationRepo repositories.NotificationRepositoryInterface,
	historyRepo repositories.WorkflowHistoryRepositoryInterface,
	logger *zap.Logger,
) NotificationServiceInterface {
	return &NotificationService{
		notificationRepo: notificationRepo,
		historyRepo:      historyRepo,
		logger:           logger,
	}
}

func (s *NotificationService) ListMine(ctx context.Context, actor entities.Actor, onlyUnread bool) ([]entities.Notification, error) {
	return s.notificationRepo.ListByUser(ctx, actor.ID, onlyUnread)
}

func (s *NotificationService) MarkRead(ctx context.Context, actor entities.Actor, notificationID string) error {
	return s.notificationRepo.MarkRead(ctx, actor.ID, notificationID)
}

func (s *NotificationService) History(ctx context.Context, actor entities.Actor, entityType, entityID string) ([]entities.WorkflowHistory, error) {
	return s.historyRepo.ListByEntity(ctx, entityType, entityID)
}
