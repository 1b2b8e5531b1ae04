package services

import (
	"context"
	"testing"

	"sourcing-system/internal/dto"
	"sourcing-system/internal/entities"
	apperrors "sourcing-system/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type offerFixture struct {
	svc         OfferServiceInterface
	offerRepo   *fakeOfferRepo
	requestRepo *fakeRequestRepo
	request     *entities.ServiceRequest
}

func newOfferFixture() *offerFixture {
	f := &offerFixture{
		offerRepo:   newFakeOfferRepo(),
		requestRepo: newFakeRequestRepo(),
	}
	userRepo := newFakeUserRepo(&entities.User{
		ID:          testSupplier.ID,
		Fio:         "Кузнецов Дмитрий Олегович",
		Email:       "supplier@sourcing.local",
		Role:        entities.RoleSupplier,
		CompanyName: "ООО ТехКонсалт",
	})
	f.svc = NewOfferService(
		f.offerRepo, f.requestRepo, userRepo,
		fakeTxManager{}, fakePermissions{}, newTestBus(), zap.NewNop())

	f.request = &entities.ServiceRequest{
		ID:            "request-1",
		Title:         "Нужен Go-разработчик",
		Status:        entities.RequestStatusBidding,
		RequesterID:   testRequester.ID,
		ManDays:       40,
		BiddingActive: true,
		Version:       1,
	}
	f.requestRepo.items[f.request.ID] = f.request
	return f
}

func validOfferPayload() dto.SubmitOfferDTO {
	return dto.SubmitOfferDTO{
		Currency: "EUR",
		Candidates: []dto.CandidateDTO{{
			Role:                   "Backend Developer",
			ExperienceLevel:        "SENIOR",
			TechnologyLevel:        "EXPERT",
			DailyRate:              680,
			TravelCostPerOnsiteDay: 40,
			Relationship:           string(entities.RelationshipEmployee),
		}},
		StartDate:  "2024-03-01",
		EndDate:    "2024-03-05",
		OnsiteDays: 1,
	}
}

func TestSubmitOffer_ComputesTotalCost(t *testing.T) {
	f := newOfferFixture()
	ctx := context.Background()

	offer, err := f.svc.Submit(ctx, testSupplier, f.request.ID, validOfferPayload())
	require.NoError(t, err)
	// 5 дней окна включительно: 680×5 + 40×1.
	assert.Equal(t, 3440.0, offer.TotalCost)
	assert.Equal(t, "ООО ТехКонсалт", offer.SupplierName)
	assert.Equal(t, 1, offer.Version)
	// Пересчет по сохраненным полям дает то же значение.
	assert.Equal(t, offer.TotalCost, offer.ComputeTotalCost())
}

func TestSubmitOffer_RequestNotAcceptingOffers(t *testing.T) {
	f := newOfferFixture()
	ctx := context.Background()
	f.request.BiddingActive = false

	_, err := f.svc.Submit(ctx, testSupplier, f.request.ID, validOfferPayload())
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	f.request.BiddingActive = true
	f.request.Status = entities.RequestStatusDraft
	_, err = f.svc.Submit(ctx, testSupplier, f.request.ID, validOfferPayload())
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}

func TestSubmitOffer_FailFastReturnsFirstViolation(t *testing.T) {
	f := newOfferFixture()
	ctx := context.Background()

	// Несколько нарушений сразу: возвращается первое по порядку проверки.
	payload := validOfferPayload()
	payload.Currency = ""
	payload.Candidates[0].DailyRate = 0
	_, err := f.svc.Submit(ctx, testSupplier, f.request.ID, payload)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.KindValidation, appErr.Kind)
	assert.Equal(t, "currency", appErr.Field)

	payload = validOfferPayload()
	payload.Candidates[0].DailyRate = 0
	payload.Candidates[0].Relationship = "PARTNER"
	_, err = f.svc.Submit(ctx, testSupplier, f.request.ID, payload)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "candidates[0].daily_rate", appErr.Field)

	payload = validOfferPayload()
	payload.Candidates = nil
	_, err = f.svc.Submit(ctx, testSupplier, f.request.ID, payload)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "candidates", appErr.Field)
}

func TestSubmitOffer_SubcontractorCompanyRules(t *testing.T) {
	f := newOfferFixture()
	ctx := context.Background()

	// Субподрядчик без компании.
	payload := validOfferPayload()
	payload.Candidates[0].Relationship = string(entities.RelationshipSubcontractor)
	_, err := f.svc.Submit(ctx, testSupplier, f.request.ID, payload)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "candidates[0].subcontractor_company", appErr.Field)

	// Компания у сотрудника.
	payload = validOfferPayload()
	payload.Candidates[0].SubcontractorCompany = "ООО Субподряд"
	_, err = f.svc.Submit(ctx, testSupplier, f.request.ID, payload)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "candidates[0].subcontractor_company", appErr.Field)

	// Валидная пара.
	payload = validOfferPayload()
	payload.Candidates[0].Relationship = string(entities.RelationshipSubcontractor)
	payload.Candidates[0].SubcontractorCompany = "ООО Субподряд"
	offer, err := f.svc.Submit(ctx, testSupplier, f.request.ID, payload)
	require.NoError(t, err)
	assert.Equal(t, "ООО Субподряд", offer.Candidates[0].SubcontractorCompany.String)
}

func TestSubmitOffer_DateWindowValidation(t *testing.T) {
	f := newOfferFixture()
	ctx := context.Background()

	payload := validOfferPayload()
	payload.EndDate = "2024-02-01"
	_, err := f.svc.Submit(ctx, testSupplier, f.request.ID, payload)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "end_date", appErr.Field)

	payload = validOfferPayload()
	payload.StartDate = "01.03.2024"
	_, err = f.svc.Submit(ctx, testSupplier, f.request.ID, payload)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "start_date", appErr.Field)
}

func TestSubmitOffer_ResubmissionUpdatesExisting(t *testing.T) {
	f := newOfferFixture()
	ctx := context.Background()

	first, err := f.svc.Submit(ctx, testSupplier, f.request.ID, validOfferPayload())
	require.NoError(t, err)

	payload := validOfferPayload()
	payload.Candidates[0].DailyRate = 700
	second, err := f.svc.Submit(ctx, testSupplier, f.request.ID, payload)
	require.NoError(t, err)

	// Та же запись: ID сохранен, версия выросла, дубликата нет.
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Version+1, second.Version)
	assert.Equal(t, 700.0, second.Candidates[0].DailyRate)
	assert.Len(t, f.offerRepo.items, 1)
}

func TestMarkPreferred_SingleWinnerAndIdempotent(t *testing.T) {
	f := newOfferFixture()
	ctx := context.Background()

	first, err := f.svc.Submit(ctx, testSupplier, f.request.ID, validOfferPayload())
	require.NoError(t, err)
	otherSupplier := entities.Actor{ID: "user-supplier-2", Role: entities.RoleSupplier}
	second := seedSecondOffer(f, otherSupplier.ID)

	require.NoError(t, f.svc.MarkPreferred(ctx, testRequester, f.request.ID, first.ID))
	assert.True(t, f.offerRepo.items[first.ID].Preferred)
	assert.False(t, f.offerRepo.items[second.ID].Preferred)

	// Перенос флага на другую оферту снимает его с прежней.
	require.NoError(t, f.svc.MarkPreferred(ctx, testRequester, f.request.ID, second.ID))
	assert.False(t, f.offerRepo.items[first.ID].Preferred)
	assert.True(t, f.offerRepo.items[second.ID].Preferred)

	// Повтор - без ошибки и без изменений.
	require.NoError(t, f.svc.MarkPreferred(ctx, testRequester, f.request.ID, second.ID))
	assert.True(t, f.offerRepo.items[second.ID].Preferred)
}

func TestMarkPreferred_SyncsSelectionOnRequest(t *testing.T) {
	f := newOfferFixture()
	ctx := context.Background()

	offer, err := f.svc.Submit(ctx, testSupplier, f.request.ID, validOfferPayload())
	require.NoError(t, err)

	require.NoError(t, f.svc.MarkPreferred(ctx, testRequester, f.request.ID, offer.ID))
	// Флаг на оферте и выбор на заявке указывают на одну оферту.
	stored, err := f.requestRepo.Find(ctx, f.request.ID)
	require.NoError(t, err)
	assert.Equal(t, offer.ID, stored.SelectedOfferID.String)
	assert.True(t, f.offerRepo.items[offer.ID].Preferred)

	// Перенос флага переносит и выбор.
	second := seedSecondOffer(f, "user-supplier-2")
	require.NoError(t, f.svc.MarkPreferred(ctx, testRequester, f.request.ID, second.ID))
	stored, err = f.requestRepo.Find(ctx, f.request.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, stored.SelectedOfferID.String)
}

func TestMarkPreferred_OfferOfAnotherRequest(t *testing.T) {
	f := newOfferFixture()
	ctx := context.Background()

	stray := &entities.Offer{
		ID:         "offer-stray",
		RequestID:  "request-other",
		SupplierID: testSupplier.ID,
		Version:    1,
	}
	f.offerRepo.items[stray.ID] = stray

	err := f.svc.MarkPreferred(ctx, testRequester, f.request.ID, stray.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	stored, findErr := f.requestRepo.Find(ctx, f.request.ID)
	require.NoError(t, findErr)
	assert.False(t, stored.SelectedOfferID.Valid)
}

func seedSecondOffer(f *offerFixture, supplierID string) *entities.Offer {
	offer := &entities.Offer{
		ID:         "offer-second",
		RequestID:  f.request.ID,
		SupplierID: supplierID,
		Currency:   "EUR",
		Version:    1,
	}
	f.offerRepo.items[offer.ID] = offer
	return offer
}

func TestGrantFinalApproval_AtMostOnce(t *testing.T) {
	f := newOfferFixture()
	ctx := context.Background()

	offer, err := f.svc.Submit(ctx, testSupplier, f.request.ID, validOfferPayload())
	require.NoError(t, err)

	approved, err := f.svc.GrantFinalApproval(ctx, testPlanner, offer.ID)
	require.NoError(t, err)
	assert.True(t, approved.FinalApproved)

	_, err = f.svc.GrantFinalApproval(ctx, testPlanner, offer.ID)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
}

func TestGrantFinalApproval_RequiresPlanner(t *testing.T) {
	f := newOfferFixture()
	ctx := context.Background()

	offer, err := f.svc.Submit(ctx, testSupplier, f.request.ID, validOfferPayload())
	require.NoError(t, err)

	_, err = f.svc.GrantFinalApproval(ctx, testRequester, offer.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestListOffers_SupplierSeesOnlyOwn(t *testing.T) {
	f := newOfferFixture()
	ctx := context.Background()

	own, err := f.svc.Submit(ctx, testSupplier, f.request.ID, validOfferPayload())
	require.NoError(t, err)
	seedSecondOffer(f, "user-supplier-2")

	offers, err := f.svc.ListByRequest(ctx, testSupplier, f.request.ID)
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Equal(t, own.ID, offers[0].ID)

	// Заявитель видит все оферты заявки.
	offers, err = f.svc.ListByRequest(ctx, testRequester, f.request.ID)
	require.NoError(t, err)
	assert.Len(t, offers, 2)
}
