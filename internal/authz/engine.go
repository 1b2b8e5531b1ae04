package authz

import (
	"sourcing-system/internal/entities"
)

// Context - все, что нужно для решения о доступе: актор, его права
// и (опционально) целевая сущность.
type Context struct {
	Actor             entities.Actor
	Permissions       map[string]bool
	Target            interface{}
	CurrentPermission string
}

func (c *Context) HasPermission(permission string) bool {
	if c.Permissions == nil {
		return false
	}
	if c.Permissions[Superuser] {
		return true
	}
	return c.Permissions[permission]
}

// canAccessRequest — правила для сервисных заявок.
func canAccessRequest(ctx Context, target *entities.ServiceRequest) bool {
	switch ctx.CurrentPermission {
	case RequestsSubmit, RequestsSelectOffer, RequestsConvert:
		// Жизненным циклом своей заявки управляет только заявитель.
		return target.RequesterID == ctx.Actor.ID
	case RequestsView:
		// Поставщики видят только заявки в стадии торгов.
		if ctx.Actor.Role == entities.RoleSupplier {
			return target.Status.Biddable()
		}
		return true
	}
	// Approve/OpenBidding/Reject — ворота планировщика, без привязки к владельцу.
	return true
}

// canAccessOffer — правила для оферт.
func canAccessOffer(ctx Context, target *entities.Offer) bool {
	switch ctx.CurrentPermission {
	case OffersSubmit:
		// Переподача меняет только собственную оферту поставщика.
		return target.SupplierID == ctx.Actor.ID
	case OffersView:
		if ctx.Actor.Role == entities.RoleSupplier {
			return target.SupplierID == ctx.Actor.ID
		}
	}
	return true
}

// canAccessOrder — правила для заказов.
func canAccessOrder(ctx Context, target *entities.Order) bool {
	switch ctx.CurrentPermission {
	case OrdersConfirmProvider:
		// Подтверждение провайдера - только поставщик этого заказа.
		return target.SupplierID == ctx.Actor.ID
	case ChangesProposeSubstitution:
		// Замену предлагает заявитель-владелец или представитель поставщика.
		if ctx.Actor.Role == entities.RoleSupplier {
			return target.SupplierID == ctx.Actor.ID
		}
		if ctx.Actor.Role == entities.RoleRequester {
			return target.RequesterID == ctx.Actor.ID
		}
		return true
	case ChangesProposeExtension:
		// Продление - только заявитель-владелец заказа.
		if ctx.Actor.Role == entities.RoleRequester {
			return target.RequesterID == ctx.Actor.ID
		}
		return true
	case FeedbackSubmit, FeedbackEdit:
		// Отзыв оставляет только заявитель-владелец заказа.
		return target.RequesterID == ctx.Actor.ID
	case OrdersView, ChangesView, FeedbackView:
		if ctx.Actor.Role == entities.RoleSupplier {
			return target.SupplierID == ctx.Actor.ID
		}
		if ctx.Actor.Role == entities.RoleRequester {
			return target.RequesterID == ctx.Actor.ID
		}
	}
	return true
}

// CanDo - единая точка решения: сначала RBAC (есть ли право у роли),
// затем ABAC (можно ли применять его к этой цели).
func CanDo(permission string, ctx Context) bool {
	ctx.CurrentPermission = permission

	if !ctx.HasPermission(permission) {
		return false
	}

	if ctx.Target == nil {
		return true
	}

	switch target := ctx.Target.(type) {
	case *entities.ServiceRequest:
		return canAccessRequest(ctx, target)
	case *entities.Offer:
		return canAccessOffer(ctx, target)
	case *entities.Order:
		return canAccessOrder(ctx, target)
	}

	return true
}
