package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"sourcing-system/internal/authz"
	"sourcing-system/internal/dto"
	"sourcing-system/internal/entities"
	"sourcing-system/internal/events"
	"sourcing-system/internal/repositories"
	apperrors "sourcing-system/pkg/errors"
	"sourcing-system/pkg/eventbus"

	"go.uber.org/zap"
)

type FeedbackServiceInterface interface {
	Submit(ctx context.Context, actor entities.Actor, orderID string, payload dto.SubmitFeedbackDTO) (*entities.Order, error)
	Edit(ctx context.Context, actor entities.Actor, orderID string, payload dto.SubmitFeedbackDTO) (*entities.Order, error)
	SupplierRating(ctx context.Context, actor entities.Actor, supplierID string) (*dto.SupplierRatingDTO, error)
}

// FeedbackService - отзывы по заказам. Один отзыв на заказ, редактирование
// только автором и только в пределах окна от момента создания; редактирование
// окно не сбрасывает.
type FeedbackService struct {
	orderRepo  repositories.OrderRepositoryInterface
	cacheRepo  repositories.CacheRepositoryInterface
	guard      *accessGuard
	bus        *eventbus.Bus
	logger     *zap.Logger
	editWindow time.Duration
	ratingTTL  time.Duration
	// now подменяется в тестах.
	now func() time.Time
}

func NewFeedbackService(
	orderRepo repositories.OrderRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	permissionSvc PermissionServiceInterface,
	bus *eventbus.Bus,
	logger *zap.Logger,
	editWindow time.Duration,
	ratingTTL time.Duration,
) FeedbackServiceInterface {
	return &FeedbackService{
		orderRepo:  orderRepo,
		cacheRepo:  cacheRepo,
		guard:      newAccessGuard(permissionSvc),
		bus:        bus,
		logger:     logger,
		editWindow: editWindow,
		ratingTTL:  ratingTTL,
		now:        time.Now,
	}
}

func validateRatings(payload dto.SubmitFeedbackDTO) error {
	ratings := []struct {
		field string
		value int
	}{
		{"overall", payload.Overall},
		{"quality", payload.Quality},
		{"communication", payload.Communication},
		{"value", payload.Value},
	}
	for _, r := range ratings {
		if r.value < 1 || r.value > 5 {
			return apperrors.NewValidation(r.field, "оценка должна быть целым числом от 1 до 5")
		}
	}
	if len([]rune(payload.Comment)) > 1000 {
		return apperrors.NewValidation("comment", "комментарий не длиннее 1000 символов")
	}
	return nil
}

func (s *FeedbackService) Submit(ctx context.Context, actor entities.Actor, orderID string, payload dto.SubmitFeedbackDTO) (*entities.Order, error) {
	order, err := s.orderRepo.Find(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.authorize(ctx, actor, authz.FeedbackSubmit, order); err != nil {
		return nil, err
	}
	// Подтверждение провайдера для отзыва не требуется.
	if order.Status != entities.OrderStatusApproved {
		return nil, apperrors.NewInvalidTransition(
			"отзыв оставляется только по одобренному заказу, заказ %s в %s", order.ID, order.Status)
	}
	if order.Feedback != nil {
		return nil, apperrors.NewAlreadyExists("по заказу %s отзыв уже оставлен", order.ID)
	}
	if err := validateRatings(payload); err != nil {
		return nil, err
	}

	order.Feedback = &entities.Feedback{
		Overall:       payload.Overall,
		Quality:       payload.Quality,
		Communication: payload.Communication,
		Value:         payload.Value,
		Comment:       payload.Comment,
		Anonymous:     payload.Anonymous,
		AuthorID:      actor.ID,
		CreatedAt:     s.now(),
	}
	if err := s.orderRepo.UpdateFeedback(ctx, nil, order); err != nil {
		return nil, err
	}
	s.invalidateRatingCache(ctx, order.SupplierID)

	s.bus.Publish(ctx, events.FeedbackSubmittedEvent{
		Order:         order,
		Actor:         actor,
		NotifyUserIDs: []string{order.SupplierID},
		Message:       "По заказу оставлен отзыв",
	})
	return order, nil
}

func (s *FeedbackService) Edit(ctx context.Context, actor entities.Actor, orderID string, payload dto.SubmitFeedbackDTO) (*entities.Order, error) {
	order, err := s.orderRepo.Find(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.authorize(ctx, actor, authz.FeedbackEdit, order); err != nil {
		return nil, err
	}
	if order.Feedback == nil {
		return nil, apperrors.NewNotFound("по заказу %s нет отзыва", order.ID)
	}
	// Обе проверки независимы: чужой отзыв нельзя править даже внутри окна.
	if order.Feedback.AuthorID != actor.ID {
		return nil, apperrors.NewForbidden("редактировать отзыв может только его автор")
	}
	if s.now().Sub(order.Feedback.CreatedAt) > s.editWindow {
		return nil, apperrors.NewEditWindowExpired(
			"окно редактирования отзыва (%s) истекло", s.editWindow)
	}
	if err := validateRatings(payload); err != nil {
		return nil, err
	}

	// Момент создания сохраняется: правка окно не продлевает.
	created := order.Feedback.CreatedAt
	order.Feedback = &entities.Feedback{
		Overall:       payload.Overall,
		Quality:       payload.Quality,
		Communication: payload.Communication,
		Value:         payload.Value,
		Comment:       payload.Comment,
		Anonymous:     payload.Anonymous,
		AuthorID:      actor.ID,
		CreatedAt:     created,
	}
	if err := s.orderRepo.UpdateFeedback(ctx, nil, order); err != nil {
		return nil, err
	}
	s.invalidateRatingCache(ctx, order.SupplierID)

	s.bus.Publish(ctx, events.FeedbackSubmittedEvent{
		Order:         order,
		Actor:         actor,
		Edited:        true,
		NotifyUserIDs: []string{order.SupplierID},
		Message:       "Отзыв по заказу отредактирован",
	})
	return order, nil
}

// SupplierRating - средний рейтинг поставщика по всем его заказам.
// Агрегат считается из БД и кешируется на короткий срок.
func (s *FeedbackService) SupplierRating(ctx context.Context, actor entities.Actor, supplierID string) (*dto.SupplierRatingDTO, error) {
	if err := s.guard.authorize(ctx, actor, authz.FeedbackView, nil); err != nil {
		return nil, err
	}

	cacheKey := supplierRatingCacheKey(supplierID)
	if cached, err := s.cacheRepo.Get(ctx, cacheKey); err == nil {
		var rating dto.SupplierRatingDTO
		if err := json.Unmarshal([]byte(cached), &rating); err == nil {
			return &rating, nil
		}
	}

	avg, count, err := s.orderRepo.SupplierRating(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	rating := &dto.SupplierRatingDTO{
		SupplierID:    supplierID,
		AverageRating: avg,
		FeedbackCount: count,
	}

	if payload, err := json.Marshal(rating); err == nil {
		if errSet := s.cacheRepo.Set(ctx, cacheKey, string(payload), s.ratingTTL); errSet != nil {
			s.logger.Warn("FeedbackService: не удалось закешировать рейтинг поставщика",
				zap.String("supplierID", supplierID), zap.Error(errSet))
		}
	}
	return rating, nil
}

func (s *FeedbackService) invalidateRatingCache(ctx context.Context, supplierID string) {
	if err := s.cacheRepo.Del(ctx, supplierRatingCacheKey(supplierID)); err != nil {
		s.logger.Warn("FeedbackService: не удалось сбросить кеш рейтинга",
			zap.String("supplierID", supplierID), zap.Error(err))
	}
}

func supplierRatingCacheKey(supplierID string) string {
	return fmt.Sprintf("rating:supplier:%s", supplierID)
}
