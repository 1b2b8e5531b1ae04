package controllers

import (
	"net/http"

	"sourcing-system/internal/dto"
	"sourcing-system/internal/services"
	"sourcing-system/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type ChangeRequestController struct {
	changeService services.ChangeRequestServiceInterface
	logger        *zap.Logger
}

func NewChangeRequestController(changeService services.ChangeRequestServiceInterface, logger *zap.Logger) *ChangeRequestController {
	return &ChangeRequestController{changeService: changeService, logger: logger}
}

func (c *ChangeRequestController) OpenSubstitution(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	actor, err := utils.GetActorFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.OpenSubstitutionDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	change, err := c.changeService.OpenSubstitution(reqCtx, actor, ctx.Param("orderId"), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, dto.FromChangeRequest(change), "Замена специалиста предложена", http.StatusCreated)
}

func (c *ChangeRequestController) OpenExtension(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	actor, err := utils.GetActorFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.OpenExtensionDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	change, err := c.changeService.OpenExtension(reqCtx, actor, ctx.Param("orderId"), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, dto.FromChangeRequest(change), "Продление предложено", http.StatusCreated)
}

func (c *ChangeRequestController) Approve(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	actor, err := utils.GetActorFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	change, err := c.changeService.Approve(reqCtx, actor, ctx.Param("id"))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, dto.FromChangeRequest(change), "Изменение одобрено", http.StatusOK)
}

func (c *ChangeRequestController) Reject(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	actor, err := utils.GetActorFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.RejectChangeDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	change, err := c.changeService.Reject(reqCtx, actor, ctx.Param("id"), payload.Reason)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, dto.FromChangeRequest(change), "Изменение отклонено", http.StatusOK)
}

func (c *ChangeRequestController) Find(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	actor, err := utils.GetActorFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	change, err := c.changeService.Find(reqCtx, actor, ctx.Param("id"))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, dto.FromChangeRequest(change), "Изменение найдено", http.StatusOK)
}

func (c *ChangeRequestController) ListByOrder(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	actor, err := utils.GetActorFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	list, err := c.changeService.ListByOrder(reqCtx, actor, ctx.Param("orderId"))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, dto.FromChangeRequests(list), "Список изменений получен", http.StatusOK)
}
