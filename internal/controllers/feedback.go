package controllers

import (
	"net/http"

	"sourcing-system/internal/dto"
	"sourcing-system/internal/services"
	"sourcing-system/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type FeedbackController struct {
	feedbackService services.FeedbackServiceInterface
	logger          *zap.Logger
}

func NewFeedbackController(feedbackService services.FeedbackServiceInterface, logger *zap.Logger) *FeedbackController {
	return &FeedbackController{feedbackService: feedbackService, logger: logger}
}

func (c *FeedbackController) Submit(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	actor, err := utils.GetActorFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.SubmitFeedbackDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	order, err := c.feedbackService.Submit(reqCtx, actor, ctx.Param("orderId"), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, dto.FromOrder(order), "Отзыв сохранен", http.StatusCreated)
}

func (c *FeedbackController) Edit(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	actor, err := utils.GetActorFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.SubmitFeedbackDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	order, err := c.feedbackService.Edit(reqCtx, actor, ctx.Param("orderId"), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, dto.FromOrder(order), "Отзыв отредактирован", http.StatusOK)
}

func (c *FeedbackController) SupplierRating(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	actor, err := utils.GetActorFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	rating, err := c.feedbackService.SupplierRating(reqCtx, actor, ctx.Param("supplierId"))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, rating, "Рейтинг поставщика получен", http.StatusOK)
}
