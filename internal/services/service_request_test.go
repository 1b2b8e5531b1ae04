package services

import (
	"context"
	"testing"
	"time"

	"sourcing-system/internal/dto"
	"sourcing-system/internal/entities"
	apperrors "sourcing-system/pkg/errors"
	"sourcing-system/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	testRequester = entities.Actor{ID: "user-requester", Role: entities.RoleRequester}
	testPlanner   = entities.Actor{ID: "user-planner", Role: entities.RoleResourcePlanner}
	testSupplier  = entities.Actor{ID: "user-supplier", Role: entities.RoleSupplier}
)

type requestFixture struct {
	svc         ServiceRequestServiceInterface
	requestRepo *fakeRequestRepo
	offerRepo   *fakeOfferRepo
	orderRepo   *fakeOrderRepo
}

func newRequestFixture() *requestFixture {
	f := &requestFixture{
		requestRepo: newFakeRequestRepo(),
		offerRepo:   newFakeOfferRepo(),
		orderRepo:   newFakeOrderRepo(),
	}
	f.svc = NewServiceRequestService(
		f.requestRepo, f.offerRepo, f.orderRepo,
		fakeTxManager{}, fakePermissions{}, newTestBus(), zap.NewNop())
	return f
}

func validCreatePayload() dto.CreateServiceRequestDTO {
	return dto.CreateServiceRequestDTO{
		Title:           "Нужен Go-разработчик на интеграцию",
		RequestType:     "TIME_AND_MATERIAL",
		Domain:          "Логистика",
		RoleRequired:    "Backend Developer",
		Technology:      "Go",
		ExperienceLevel: "SENIOR",
		ManDays:         40,
		OnsiteDays:      5,
		Location:        "Душанбе",
		MustHave:        []string{"PostgreSQL", "gRPC"},
	}
}

// seedOffer кладет готовую оферту напрямую в фейковый репозиторий.
func seedOffer(f *requestFixture, requestID, supplierID string, totalCost float64) *entities.Offer {
	start, _ := time.Parse("2006-01-02", "2024-03-01")
	end, _ := time.Parse("2006-01-02", "2024-03-05")
	offer := &entities.Offer{
		ID:           "offer-" + supplierID,
		RequestID:    requestID,
		SupplierID:   supplierID,
		SupplierName: "ООО ТехКонсалт",
		Currency:     "EUR",
		Candidates: []entities.Candidate{{
			ID:                     "cand-1",
			Role:                   "Backend Developer",
			ExperienceLevel:        "SENIOR",
			TechnologyLevel:        "EXPERT",
			DailyRate:              680,
			TravelCostPerOnsiteDay: 40,
			Relationship:           entities.RelationshipEmployee,
		}},
		StartDate:  start,
		EndDate:    end,
		OnsiteDays: 1,
		TotalCost:  totalCost,
		Version:    1,
	}
	f.offerRepo.items[offer.ID] = offer
	return offer
}

func TestServiceRequest_Lifecycle(t *testing.T) {
	f := newRequestFixture()
	ctx := context.Background()

	req, err := f.svc.Create(ctx, testRequester, validCreatePayload())
	require.NoError(t, err)
	assert.Equal(t, entities.RequestStatusDraft, req.Status)
	assert.Equal(t, testRequester.ID, req.RequesterID)
	assert.Equal(t, 1, req.Version)

	req, err = f.svc.SubmitForReview(ctx, testRequester, req.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.RequestStatusInReview, req.Status)

	req, err = f.svc.ApproveForBidding(ctx, testPlanner, req.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.RequestStatusApprovedForBidding, req.Status)
	assert.False(t, req.BiddingActive)

	req, err = f.svc.OpenBidding(ctx, testPlanner, req.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.RequestStatusBidding, req.Status)
	assert.True(t, req.BiddingActive)
}

func TestServiceRequest_SubmitTwiceFails(t *testing.T) {
	f := newRequestFixture()
	ctx := context.Background()

	req, err := f.svc.Create(ctx, testRequester, validCreatePayload())
	require.NoError(t, err)
	_, err = f.svc.SubmitForReview(ctx, testRequester, req.ID)
	require.NoError(t, err)

	_, err = f.svc.SubmitForReview(ctx, testRequester, req.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}

func TestServiceRequest_SubmitOnlyByOwner(t *testing.T) {
	f := newRequestFixture()
	ctx := context.Background()

	req, err := f.svc.Create(ctx, testRequester, validCreatePayload())
	require.NoError(t, err)

	other := entities.Actor{ID: "user-other", Role: entities.RoleRequester}
	_, err = f.svc.SubmitForReview(ctx, other, req.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestServiceRequest_ApproveRequiresPlannerRole(t *testing.T) {
	f := newRequestFixture()
	ctx := context.Background()

	req, err := f.svc.Create(ctx, testRequester, validCreatePayload())
	require.NoError(t, err)
	_, err = f.svc.SubmitForReview(ctx, testRequester, req.ID)
	require.NoError(t, err)

	_, err = f.svc.ApproveForBidding(ctx, testRequester, req.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestServiceRequest_RejectFromAnyNonTerminal(t *testing.T) {
	f := newRequestFixture()
	ctx := context.Background()

	req, err := f.svc.Create(ctx, testRequester, validCreatePayload())
	require.NoError(t, err)

	req, err = f.svc.Reject(ctx, testPlanner, req.ID, "дубль существующей заявки")
	require.NoError(t, err)
	assert.Equal(t, entities.RequestStatusRejected, req.Status)
	assert.Equal(t, "дубль существующей заявки", req.RejectedReason.String)

	// Терминальный статус дальше не двигается.
	_, err = f.svc.Reject(ctx, testPlanner, req.ID, "еще раз")
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	_, err = f.svc.SubmitForReview(ctx, testRequester, req.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}

func TestServiceRequest_RejectRequiresReason(t *testing.T) {
	f := newRequestFixture()
	ctx := context.Background()

	req, err := f.svc.Create(ctx, testRequester, validCreatePayload())
	require.NoError(t, err)

	_, err = f.svc.Reject(ctx, testPlanner, req.ID, "")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func openBiddingRequest(t *testing.T, f *requestFixture) *entities.ServiceRequest {
	t.Helper()
	ctx := context.Background()
	req, err := f.svc.Create(ctx, testRequester, validCreatePayload())
	require.NoError(t, err)
	_, err = f.svc.SubmitForReview(ctx, testRequester, req.ID)
	require.NoError(t, err)
	_, err = f.svc.ApproveForBidding(ctx, testPlanner, req.ID)
	require.NoError(t, err)
	req, err = f.svc.OpenBidding(ctx, testPlanner, req.ID)
	require.NoError(t, err)
	return req
}

func TestServiceRequest_SelectOffer(t *testing.T) {
	f := newRequestFixture()
	ctx := context.Background()
	req := openBiddingRequest(t, f)
	offer := seedOffer(f, req.ID, testSupplier.ID, 3440)

	req, err := f.svc.SelectOffer(ctx, testRequester, req.ID, offer.ID)
	require.NoError(t, err)
	assert.Equal(t, offer.ID, req.SelectedOfferID.String)
	// Статус заявки выбор не меняет.
	assert.Equal(t, entities.RequestStatusBidding, req.Status)
	assert.True(t, f.offerRepo.items[offer.ID].Preferred)
}

func TestServiceRequest_SelectOfferOfAnotherRequest(t *testing.T) {
	f := newRequestFixture()
	ctx := context.Background()
	req := openBiddingRequest(t, f)
	stray := seedOffer(f, "request-other", testSupplier.ID, 1000)

	_, err := f.svc.SelectOffer(ctx, testRequester, req.ID, stray.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestServiceRequest_SelectOfferOutsideBidding(t *testing.T) {
	f := newRequestFixture()
	ctx := context.Background()
	req, err := f.svc.Create(ctx, testRequester, validCreatePayload())
	require.NoError(t, err)
	offer := seedOffer(f, req.ID, testSupplier.ID, 3440)

	_, err = f.svc.SelectOffer(ctx, testRequester, req.ID, offer.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}

func TestServiceRequest_ConvertWithoutSelectionFails(t *testing.T) {
	f := newRequestFixture()
	ctx := context.Background()
	req := openBiddingRequest(t, f)

	_, err := f.svc.ConvertToOrder(ctx, testRequester, req.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}

func TestServiceRequest_ConvertSnapshotsOffer(t *testing.T) {
	f := newRequestFixture()
	ctx := context.Background()
	req := openBiddingRequest(t, f)
	offer := seedOffer(f, req.ID, testSupplier.ID, 3440)

	_, err := f.svc.SelectOffer(ctx, testRequester, req.ID, offer.ID)
	require.NoError(t, err)

	order, err := f.svc.ConvertToOrder(ctx, testRequester, req.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.OrderStatusPendingRPApproval, order.Status)
	assert.Equal(t, req.ID, order.SourceRequestID)
	assert.Equal(t, offer.ID, order.OfferID)
	assert.Equal(t, testRequester.ID, order.RequesterID)
	assert.Equal(t, testSupplier.ID, order.SupplierID)
	assert.Equal(t, 3440.0, order.ContractValue)
	// Снапшот ведущего кандидата.
	assert.Equal(t, "Backend Developer", order.SpecialistName)
	assert.Equal(t, 680.0, order.DailyRate)
	assert.Equal(t, entities.RelationshipEmployee, order.Relationship)

	stored, err := f.requestRepo.Find(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.RequestStatusOrdered, stored.Status)
	assert.False(t, stored.BiddingActive)

	// Повторная конверсия невозможна: заявка уже терминальна.
	_, err = f.svc.ConvertToOrder(ctx, testRequester, req.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}

// offerSvcOver собирает сервис оферт поверх тех же фейковых репозиториев,
// чтобы проверить связку markPreferred → convertToOrder.
func offerSvcOver(f *requestFixture) OfferServiceInterface {
	return NewOfferService(
		f.offerRepo, f.requestRepo, newFakeUserRepo(),
		fakeTxManager{}, fakePermissions{}, newTestBus(), zap.NewNop())
}

func TestServiceRequest_ConvertAfterMarkPreferredAlone(t *testing.T) {
	f := newRequestFixture()
	ctx := context.Background()
	req := openBiddingRequest(t, f)
	offer := seedOffer(f, req.ID, testSupplier.ID, 3440)

	// Пометка предпочтительной без отдельного selectOffer.
	require.NoError(t, offerSvcOver(f).MarkPreferred(ctx, testRequester, req.ID, offer.ID))

	order, err := f.svc.ConvertToOrder(ctx, testRequester, req.ID)
	require.NoError(t, err)
	assert.Equal(t, offer.ID, order.OfferID)
	assert.Equal(t, 3440.0, order.ContractValue)
}

func TestServiceRequest_ConvertFollowsPreferredTransfer(t *testing.T) {
	f := newRequestFixture()
	ctx := context.Background()
	req := openBiddingRequest(t, f)
	first := seedOffer(f, req.ID, testSupplier.ID, 3440)
	second := seedOffer(f, req.ID, "user-supplier-2", 3000)

	_, err := f.svc.SelectOffer(ctx, testRequester, req.ID, first.ID)
	require.NoError(t, err)
	// Перенос флага переносит и выбор: конверсия снимает снапшот
	// с актуальной предпочтительной оферты.
	require.NoError(t, offerSvcOver(f).MarkPreferred(ctx, testRequester, req.ID, second.ID))

	order, err := f.svc.ConvertToOrder(ctx, testRequester, req.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, order.OfferID)
	assert.Equal(t, 3000.0, order.ContractValue)
	assert.False(t, f.offerRepo.items[first.ID].Preferred)
	assert.True(t, f.offerRepo.items[second.ID].Preferred)
}

func TestServiceRequest_SupplierSeesOnlyBiddingRequests(t *testing.T) {
	f := newRequestFixture()
	ctx := context.Background()

	draft, err := f.svc.Create(ctx, testRequester, validCreatePayload())
	require.NoError(t, err)
	bidding := openBiddingRequest(t, f)

	list, total, err := f.svc.List(ctx, testSupplier, types.Filter{})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, bidding.ID, list[0].ID)
	assert.NotEqual(t, draft.ID, list[0].ID)
}
