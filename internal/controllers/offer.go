package controllers

import (
	"net/http"

	"sourcing-system/internal/dto"
	"sourcing-system/internal/services"
	"sourcing-system/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type OfferController struct {
	offerService services.OfferServiceInterface
	logger       *zap.Logger
}

func NewOfferController(offerService services.OfferServiceInterface, logger *zap.Logger) *OfferController {
	return &OfferController{offerService: offerService, logger: logger}
}

func (c *OfferController) Submit(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	actor, err := utils.GetActorFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.SubmitOfferDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	offer, err := c.offerService.Submit(reqCtx, actor, ctx.Param("requestId"), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, dto.FromOffer(offer), "Оферта подана", http.StatusCreated)
}

func (c *OfferController) ListByRequest(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	actor, err := utils.GetActorFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	offers, err := c.offerService.ListByRequest(reqCtx, actor, ctx.Param("requestId"))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, dto.FromOffers(offers), "Список оферт получен", http.StatusOK)
}

func (c *OfferController) Find(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	actor, err := utils.GetActorFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	offer, err := c.offerService.Find(reqCtx, actor, ctx.Param("id"))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, dto.FromOffer(offer), "Оферта найдена", http.StatusOK)
}

func (c *OfferController) MarkPreferred(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	actor, err := utils.GetActorFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.offerService.MarkPreferred(reqCtx, actor, ctx.Param("requestId"), ctx.Param("id")); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Оферта помечена предпочтительной", http.StatusOK)
}

func (c *OfferController) GrantFinalApproval(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	actor, err := utils.GetActorFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	offer, err := c.offerService.GrantFinalApproval(reqCtx, actor, ctx.Param("id"))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, dto.FromOffer(offer), "Оферта финально одобрена", http.StatusOK)
}
