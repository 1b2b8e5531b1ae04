package services

import (
	"context"
	"time"

	"sourcing-system/internal/authz"
	"sourcing-system/internal/entities"
	"sourcing-system/internal/repositories"
	apperrors "sourcing-system/pkg/errors"
	"sourcing-system/pkg/eventbus"
	"sourcing-system/pkg/types"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Фейки репозиториев для unit-тестов сервисов: вся доменная логика живет в
// сервисах и предикатах запросов, поэтому фейки воспроизводят контракт
// (копии при чтении, проверка версии при записи, занятие слота изменения),
// а не SQL.

type fakePermissions struct{}

func (fakePermissions) GetRolePermissions(_ context.Context, role entities.Role) (map[string]bool, error) {
	set := make(map[string]bool)
	for _, p := range authz.RolePermissions[role] {
		set[p] = true
	}
	return set, nil
}

func (fakePermissions) InvalidateRoleCache(context.Context, entities.Role) error { return nil }

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(_ context.Context, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}

func newTestBus() *eventbus.Bus { return eventbus.New(zap.NewNop()) }

// --- Сервисные заявки ---

type fakeRequestRepo struct {
	items map[string]*entities.ServiceRequest
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{items: map[string]*entities.ServiceRequest{}}
}

func (r *fakeRequestRepo) Create(_ context.Context, req *entities.ServiceRequest) error {
	req.Version = 1
	req.CreatedAt = time.Now()
	req.UpdatedAt = req.CreatedAt
	cp := *req
	r.items[req.ID] = &cp
	return nil
}

func (r *fakeRequestRepo) Find(_ context.Context, id string) (*entities.ServiceRequest, error) {
	it, ok := r.items[id]
	if !ok {
		return nil, apperrors.NewNotFound("сервисная заявка не найдена")
	}
	cp := *it
	return &cp, nil
}

func (r *fakeRequestRepo) List(_ context.Context, filter types.Filter) ([]entities.ServiceRequest, uint64, error) {
	out := make([]entities.ServiceRequest, 0)
	for _, it := range r.items {
		if statuses, ok := filter.Filter["status"].([]string); ok {
			match := false
			for _, s := range statuses {
				if string(it.Status) == s {
					match = true
				}
			}
			if !match {
				continue
			}
		}
		if requester, ok := filter.Filter["requester_id"].(string); ok && it.RequesterID != requester {
			continue
		}
		out = append(out, *it)
	}
	return out, uint64(len(out)), nil
}

func (r *fakeRequestRepo) Update(_ context.Context, _ repositories.Querier, req *entities.ServiceRequest) error {
	cur, ok := r.items[req.ID]
	if !ok {
		return apperrors.NewNotFound("сервисная заявка не найдена")
	}
	if cur.Version != req.Version {
		return apperrors.NewConcurrentModification("сервисная заявка", req.ID)
	}
	req.Version++
	cp := *req
	r.items[req.ID] = &cp
	return nil
}

// --- Оферты ---

type fakeOfferRepo struct {
	items map[string]*entities.Offer
}

func newFakeOfferRepo() *fakeOfferRepo {
	return &fakeOfferRepo{items: map[string]*entities.Offer{}}
}

func copyOffer(o *entities.Offer) *entities.Offer {
	cp := *o
	cp.Candidates = append([]entities.Candidate(nil), o.Candidates...)
	return &cp
}

func (r *fakeOfferRepo) Find(_ context.Context, id string) (*entities.Offer, error) {
	it, ok := r.items[id]
	if !ok {
		return nil, apperrors.NewNotFound("оферта не найдена")
	}
	return copyOffer(it), nil
}

func (r *fakeOfferRepo) FindByRequestAndSupplier(_ context.Context, requestID, supplierID string) (*entities.Offer, error) {
	for _, it := range r.items {
		if it.RequestID == requestID && it.SupplierID == supplierID {
			return copyOffer(it), nil
		}
	}
	return nil, apperrors.NewNotFound("оферта не найдена")
}

func (r *fakeOfferRepo) ListByRequest(_ context.Context, requestID string) ([]entities.Offer, error) {
	out := make([]entities.Offer, 0)
	for _, it := range r.items {
		if it.RequestID == requestID {
			out = append(out, *copyOffer(it))
		}
	}
	return out, nil
}

func (r *fakeOfferRepo) Create(_ context.Context, _ pgx.Tx, offer *entities.Offer) error {
	offer.Version = 1
	offer.CreatedAt = time.Now()
	offer.UpdatedAt = offer.CreatedAt
	r.items[offer.ID] = copyOffer(offer)
	return nil
}

func (r *fakeOfferRepo) Replace(_ context.Context, _ pgx.Tx, offer *entities.Offer) error {
	cur, ok := r.items[offer.ID]
	if !ok {
		return apperrors.NewNotFound("оферта не найдена")
	}
	if cur.Version != offer.Version {
		return apperrors.NewConcurrentModification("оферта", offer.ID)
	}
	offer.Version++
	offer.UpdatedAt = time.Now()
	r.items[offer.ID] = copyOffer(offer)
	return nil
}

func (r *fakeOfferRepo) SetPreferred(_ context.Context, _ pgx.Tx, requestID, offerID string) error {
	if _, ok := r.items[offerID]; !ok {
		return apperrors.NewNotFound("оферта не найдена")
	}
	for _, it := range r.items {
		if it.RequestID == requestID {
			it.Preferred = it.ID == offerID
		}
	}
	return nil
}

func (r *fakeOfferRepo) SetFinalApproved(_ context.Context, _ repositories.Querier, offerID string) error {
	it, ok := r.items[offerID]
	if !ok {
		return apperrors.NewNotFound("оферта не найдена")
	}
	if it.FinalApproved {
		return apperrors.NewAlreadyExists("оферта %s уже получила финальное одобрение", offerID)
	}
	it.FinalApproved = true
	return nil
}

// --- Заказы ---

type fakeOrderRepo struct {
	items map[string]*entities.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{items: map[string]*entities.Order{}}
}

func copyOrder(o *entities.Order) *entities.Order {
	cp := *o
	if o.Feedback != nil {
		fb := *o.Feedback
		cp.Feedback = &fb
	}
	return &cp
}

func (r *fakeOrderRepo) Find(_ context.Context, id string) (*entities.Order, error) {
	it, ok := r.items[id]
	if !ok {
		return nil, apperrors.NewNotFound("заказ не найден")
	}
	return copyOrder(it), nil
}

func (r *fakeOrderRepo) List(_ context.Context, filter types.Filter) ([]entities.Order, uint64, error) {
	out := make([]entities.Order, 0)
	for _, it := range r.items {
		if supplier, ok := filter.Filter["supplier_id"].(string); ok && it.SupplierID != supplier {
			continue
		}
		out = append(out, *copyOrder(it))
	}
	return out, uint64(len(out)), nil
}

func (r *fakeOrderRepo) Create(_ context.Context, _ pgx.Tx, order *entities.Order) error {
	order.Version = 1
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	r.items[order.ID] = copyOrder(order)
	return nil
}

func (r *fakeOrderRepo) Update(_ context.Context, _ repositories.Querier, order *entities.Order) error {
	cur, ok := r.items[order.ID]
	if !ok {
		return apperrors.NewNotFound("заказ не найден")
	}
	if cur.Version != order.Version {
		return apperrors.NewConcurrentModification("заказ", order.ID)
	}
	order.Version++
	// Отзыв и слот изменения этим методом не трогаются.
	order.Feedback = cur.Feedback
	order.PendingChangeID = cur.PendingChangeID
	r.items[order.ID] = copyOrder(order)
	return nil
}

func (r *fakeOrderRepo) SetPendingChange(_ context.Context, _ pgx.Tx, orderID, changeID string) error {
	it, ok := r.items[orderID]
	if !ok {
		return apperrors.NewNotFound("заказ не найден")
	}
	if it.PendingChangeID.Valid {
		return apperrors.NewChangePending(orderID)
	}
	it.PendingChangeID.SetValid(changeID)
	return nil
}

func (r *fakeOrderRepo) ClearPendingChange(_ context.Context, _ pgx.Tx, orderID string) error {
	it, ok := r.items[orderID]
	if !ok {
		return apperrors.NewNotFound("заказ не найден")
	}
	it.PendingChangeID.Valid = false
	return nil
}

func (r *fakeOrderRepo) UpdateFeedback(_ context.Context, _ repositories.Querier, order *entities.Order) error {
	cur, ok := r.items[order.ID]
	if !ok {
		return apperrors.NewNotFound("заказ не найден")
	}
	if cur.Version != order.Version {
		return apperrors.NewConcurrentModification("заказ", order.ID)
	}
	order.Version++
	cur.Version = order.Version
	fb := *order.Feedback
	cur.Feedback = &fb
	return nil
}

func (r *fakeOrderRepo) SupplierRating(_ context.Context, supplierID string) (float64, int, error) {
	var sum float64
	var count int
	for _, it := range r.items {
		if it.SupplierID == supplierID && it.Feedback != nil {
			sum += float64(it.Feedback.Overall)
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return sum / float64(count), count, nil
}

// --- Изменения заказов ---

type fakeChangeRepo struct {
	items map[string]*entities.ChangeRequest
}

func newFakeChangeRepo() *fakeChangeRepo {
	return &fakeChangeRepo{items: map[string]*entities.ChangeRequest{}}
}

func (r *fakeChangeRepo) Find(_ context.Context, id string) (*entities.ChangeRequest, error) {
	it, ok := r.items[id]
	if !ok {
		return nil, apperrors.NewNotFound("запрос на изменение не найден")
	}
	cp := *it
	return &cp, nil
}

func (r *fakeChangeRepo) ListByOrder(_ context.Context, orderID string) ([]entities.ChangeRequest, error) {
	out := make([]entities.ChangeRequest, 0)
	for _, it := range r.items {
		if it.OrderID == orderID {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (r *fakeChangeRepo) Create(_ context.Context, _ pgx.Tx, change *entities.ChangeRequest) error {
	change.CreatedAt = time.Now()
	cp := *change
	r.items[change.ID] = &cp
	return nil
}

func (r *fakeChangeRepo) Resolve(_ context.Context, _ pgx.Tx, change *entities.ChangeRequest) error {
	cur, ok := r.items[change.ID]
	if !ok {
		return apperrors.NewNotFound("запрос на изменение не найден")
	}
	if cur.Status != entities.ChangeStatusPending {
		return apperrors.NewInvalidTransition("изменение %s уже решено: %s", change.ID, cur.Status)
	}
	cp := *change
	r.items[change.ID] = &cp
	return nil
}

// --- Пользователи ---

type fakeUserRepo struct {
	items map[string]*entities.User
}

func newFakeUserRepo(users ...*entities.User) *fakeUserRepo {
	r := &fakeUserRepo{items: map[string]*entities.User{}}
	for _, u := range users {
		r.items[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*entities.User, error) {
	it, ok := r.items[id]
	if !ok {
		return nil, apperrors.NewNotFound("пользователь не найден")
	}
	cp := *it
	return &cp, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entities.User, error) {
	for _, it := range r.items {
		if it.Email == email {
			cp := *it
			return &cp, nil
		}
	}
	return nil, apperrors.NewNotFound("пользователь не найден")
}

func (r *fakeUserRepo) Create(_ context.Context, user *entities.User) error {
	cp := *user
	r.items[user.ID] = &cp
	return nil
}

// --- Кеш ---

type fakeCacheRepo struct {
	values map[string]string
}

func newFakeCacheRepo() *fakeCacheRepo {
	return &fakeCacheRepo{values: map[string]string{}}
}

func (r *fakeCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if s, ok := value.(string); ok {
		r.values[key] = s
	}
	return nil
}

func (r *fakeCacheRepo) Get(_ context.Context, key string) (string, error) {
	v, ok := r.values[key]
	if !ok {
		return "", apperrors.NewNotFound("ключ %s не найден в кеше", key)
	}
	return v, nil
}

func (r *fakeCacheRepo) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(r.values, k)
	}
	return nil
}
