// internal/authz/permissions.go
package authz

import "sourcing-system/internal/entities"

// --- СПИСОК ВСЕХ ПЕРМИШЕНОВ В СИСТЕМЕ ---

const (
	// Глобальные
	Superuser = "superuser"

	// Сервисные заявки (Service Requests)
	RequestsCreate      = "requests:create"
	RequestsView        = "requests:view"
	RequestsSubmit      = "requests:submit"
	RequestsApprove     = "requests:approve"
	RequestsOpenBidding = "requests:open_bidding"
	RequestsSelectOffer = "requests:select_offer"
	RequestsConvert     = "requests:convert"
	RequestsReject      = "requests:reject"

	// Оферты (Offers)
	OffersSubmit        = "offers:submit"
	OffersView          = "offers:view"
	OffersMarkPreferred = "offers:mark_preferred"
	OffersFinalApprove  = "offers:final_approve"

	// Заказы (Orders)
	OrdersView            = "orders:view"
	OrdersApprove         = "orders:approve"
	OrdersReject          = "orders:reject"
	OrdersConfirmProvider = "orders:confirm_provider"

	// Изменения заказов (Change Requests)
	ChangesProposeSubstitution = "changes:propose_substitution"
	ChangesProposeExtension    = "changes:propose_extension"
	ChangesApprove             = "changes:approve"
	ChangesReject              = "changes:reject"
	ChangesView                = "changes:view"

	// Отзывы (Feedback)
	FeedbackSubmit = "feedback:submit"
	FeedbackEdit   = "feedback:edit"
	FeedbackView   = "feedback:view"
)

// RolePermissions - какая роль что умеет. Источник истины для сидинга
// таблицы role_permissions и запасной вариант, если БД недоступна в тестах.
var RolePermissions = map[entities.Role][]string{
	entities.RoleRequester: {
		RequestsCreate, RequestsView, RequestsSubmit, RequestsSelectOffer,
		RequestsConvert, OffersView, OffersMarkPreferred, OrdersView,
		ChangesProposeSubstitution, ChangesProposeExtension, ChangesView,
		FeedbackSubmit, FeedbackEdit, FeedbackView,
	},
	entities.RoleSupplier: {
		RequestsView, OffersSubmit, OffersView, OrdersView,
		OrdersConfirmProvider, ChangesProposeSubstitution, ChangesView,
		FeedbackView,
	},
	entities.RoleResourcePlanner: {
		RequestsView, RequestsApprove, RequestsOpenBidding, RequestsReject,
		OffersView, OffersFinalApprove, OrdersView, OrdersApprove,
		OrdersReject, ChangesApprove, ChangesReject, ChangesView,
		FeedbackView,
	},
	entities.RoleAdmin: {Superuser},
}
