package routes

import (
	"sourcing-system/internal/controllers"
	"sourcing-system/internal/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func runFeedbackRouter(secureGroup *echo.Group, feedbackService services.FeedbackServiceInterface, logger *zap.Logger) {
	feedbackCtrl := controllers.NewFeedbackController(feedbackService, logger.Named("feedback"))
	{
		secureGroup.POST("/orders/:orderId/feedback", feedbackCtrl.Submit)
		secureGroup.PUT("/orders/:orderId/feedback", feedbackCtrl.Edit)
		secureGroup.GET("/suppliers/:supplierId/rating", feedbackCtrl.SupplierRating)
	}
}
