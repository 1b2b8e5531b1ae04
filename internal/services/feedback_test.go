package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"sourcing-system/internal/dto"
	"sourcing-system/internal/entities"
	apperrors "sourcing-system/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type feedbackFixture struct {
	svc       *FeedbackService
	orderRepo *fakeOrderRepo
	cacheRepo *fakeCacheRepo
	clock     time.Time
}

func newFeedbackFixture() *feedbackFixture {
	f := &feedbackFixture{
		orderRepo: newFakeOrderRepo(),
		cacheRepo: newFakeCacheRepo(),
		clock:     time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	svc := NewFeedbackService(
		f.orderRepo, f.cacheRepo, fakePermissions{},
		newTestBus(), zap.NewNop(), 24*time.Hour, 5*time.Minute)
	f.svc = svc.(*FeedbackService)
	f.svc.now = func() time.Time { return f.clock }
	return f
}

func (f *feedbackFixture) seedApprovedOrder(id, supplierID string) *entities.Order {
	order := &entities.Order{
		ID:          id,
		RequesterID: testRequester.ID,
		SupplierID:  supplierID,
		Status:      entities.OrderStatusApproved,
		Version:     1,
	}
	f.orderRepo.items[order.ID] = order
	return order
}

func validFeedbackPayload() dto.SubmitFeedbackDTO {
	return dto.SubmitFeedbackDTO{
		Overall:       5,
		Quality:       4,
		Communication: 5,
		Value:         4,
		Comment:       "Работа выполнена в срок",
	}
}

func TestSubmitFeedback_HappyPath(t *testing.T) {
	f := newFeedbackFixture()
	ctx := context.Background()
	f.seedApprovedOrder("order-1", testSupplier.ID)

	order, err := f.svc.Submit(ctx, testRequester, "order-1", validFeedbackPayload())
	require.NoError(t, err)
	require.NotNil(t, order.Feedback)
	assert.Equal(t, 5, order.Feedback.Overall)
	assert.Equal(t, testRequester.ID, order.Feedback.AuthorID)
	assert.Equal(t, f.clock, order.Feedback.CreatedAt)
}

func TestSubmitFeedback_OnlyApprovedOrder(t *testing.T) {
	f := newFeedbackFixture()
	ctx := context.Background()
	order := f.seedApprovedOrder("order-1", testSupplier.ID)
	order.Status = entities.OrderStatusPendingRPApproval

	_, err := f.svc.Submit(ctx, testRequester, "order-1", validFeedbackPayload())
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}

func TestSubmitFeedback_OnlyOnce(t *testing.T) {
	f := newFeedbackFixture()
	ctx := context.Background()
	f.seedApprovedOrder("order-1", testSupplier.ID)

	_, err := f.svc.Submit(ctx, testRequester, "order-1", validFeedbackPayload())
	require.NoError(t, err)

	_, err = f.svc.Submit(ctx, testRequester, "order-1", validFeedbackPayload())
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
}

func TestSubmitFeedback_OnlyRequesterOfRecord(t *testing.T) {
	f := newFeedbackFixture()
	ctx := context.Background()
	f.seedApprovedOrder("order-1", testSupplier.ID)

	stranger := entities.Actor{ID: "user-other", Role: entities.RoleRequester}
	_, err := f.svc.Submit(ctx, stranger, "order-1", validFeedbackPayload())
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	// У поставщика права feedback:submit нет вовсе.
	_, err = f.svc.Submit(ctx, testSupplier, "order-1", validFeedbackPayload())
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestSubmitFeedback_RatingValidationFailFast(t *testing.T) {
	f := newFeedbackFixture()
	ctx := context.Background()
	f.seedApprovedOrder("order-1", testSupplier.ID)

	payload := validFeedbackPayload()
	payload.Overall = 0
	payload.Quality = 6
	_, err := f.svc.Submit(ctx, testRequester, "order-1", payload)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.KindValidation, appErr.Kind)
	assert.Equal(t, "overall", appErr.Field)

	payload = validFeedbackPayload()
	payload.Quality = 6
	_, err = f.svc.Submit(ctx, testRequester, "order-1", payload)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "quality", appErr.Field)

	payload = validFeedbackPayload()
	payload.Comment = strings.Repeat("ы", 1001)
	_, err = f.svc.Submit(ctx, testRequester, "order-1", payload)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "comment", appErr.Field)
}

func TestEditFeedback_WithinWindowByAuthor(t *testing.T) {
	f := newFeedbackFixture()
	ctx := context.Background()
	f.seedApprovedOrder("order-1", testSupplier.ID)

	_, err := f.svc.Submit(ctx, testRequester, "order-1", validFeedbackPayload())
	require.NoError(t, err)
	created := f.clock

	f.clock = created.Add(23 * time.Hour)
	payload := validFeedbackPayload()
	payload.Overall = 3
	order, err := f.svc.Edit(ctx, testRequester, "order-1", payload)
	require.NoError(t, err)
	assert.Equal(t, 3, order.Feedback.Overall)
	// Момент создания сохранен: правка окно не продлевает.
	assert.Equal(t, created, order.Feedback.CreatedAt)
}

func TestEditFeedback_WindowNotExtendedByEdit(t *testing.T) {
	f := newFeedbackFixture()
	ctx := context.Background()
	f.seedApprovedOrder("order-1", testSupplier.ID)

	_, err := f.svc.Submit(ctx, testRequester, "order-1", validFeedbackPayload())
	require.NoError(t, err)
	created := f.clock

	f.clock = created.Add(23 * time.Hour)
	_, err = f.svc.Edit(ctx, testRequester, "order-1", validFeedbackPayload())
	require.NoError(t, err)

	// Через 25 часов от создания окно закрыто, даже после недавней правки.
	f.clock = created.Add(25 * time.Hour)
	_, err = f.svc.Edit(ctx, testRequester, "order-1", validFeedbackPayload())
	assert.ErrorIs(t, err, apperrors.ErrEditWindowExpired)
}

func TestEditFeedback_OnlyAuthorEvenWithinWindow(t *testing.T) {
	f := newFeedbackFixture()
	ctx := context.Background()
	f.seedApprovedOrder("order-1", testSupplier.ID)

	_, err := f.svc.Submit(ctx, testRequester, "order-1", validFeedbackPayload())
	require.NoError(t, err)

	// Подменяем автора на другого пользователя: окно открыто, но правит не автор.
	f.orderRepo.items["order-1"].Feedback.AuthorID = "user-other"
	_, err = f.svc.Edit(ctx, testRequester, "order-1", validFeedbackPayload())
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestEditFeedback_NoFeedbackYet(t *testing.T) {
	f := newFeedbackFixture()
	ctx := context.Background()
	f.seedApprovedOrder("order-1", testSupplier.ID)

	_, err := f.svc.Edit(ctx, testRequester, "order-1", validFeedbackPayload())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSupplierRating_Aggregate(t *testing.T) {
	f := newFeedbackFixture()
	ctx := context.Background()

	first := f.seedApprovedOrder("order-1", testSupplier.ID)
	first.Feedback = &entities.Feedback{Overall: 5, AuthorID: testRequester.ID, CreatedAt: f.clock}
	second := f.seedApprovedOrder("order-2", testSupplier.ID)
	second.Feedback = &entities.Feedback{Overall: 4, AuthorID: testRequester.ID, CreatedAt: f.clock}
	// Чужой заказ в агрегат не входит.
	foreign := f.seedApprovedOrder("order-3", "user-supplier-2")
	foreign.Feedback = &entities.Feedback{Overall: 1, AuthorID: testRequester.ID, CreatedAt: f.clock}

	rating, err := f.svc.SupplierRating(ctx, testRequester, testSupplier.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.5, rating.AverageRating)
	assert.Equal(t, 2, rating.FeedbackCount)

	// Повторный запрос идет из кеша.
	_, ok := f.cacheRepo.values[supplierRatingCacheKey(testSupplier.ID)]
	assert.True(t, ok)
	cached, err := f.svc.SupplierRating(ctx, testRequester, testSupplier.ID)
	require.NoError(t, err)
	assert.Equal(t, rating.AverageRating, cached.AverageRating)
}

func TestSubmitFeedback_InvalidatesRatingCache(t *testing.T) {
	f := newFeedbackFixture()
	ctx := context.Background()
	order := f.seedApprovedOrder("order-1", testSupplier.ID)
	order.Feedback = &entities.Feedback{Overall: 5, AuthorID: testRequester.ID, CreatedAt: f.clock}

	_, err := f.svc.SupplierRating(ctx, testRequester, testSupplier.ID)
	require.NoError(t, err)

	second := f.seedApprovedOrder("order-2", testSupplier.ID)
	_, err = f.svc.Submit(ctx, testRequester, second.ID, validFeedbackPayload())
	require.NoError(t, err)

	// Кеш сброшен, агрегат пересчитан по двум отзывам.
	rating, err := f.svc.SupplierRating(ctx, testRequester, testSupplier.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, rating.FeedbackCount)
}
