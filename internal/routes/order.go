package routes

import (
	"sourcing-system/internal/controllers"
	"sourcing-system/internal/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func runOrderRouter(secureGroup *echo.Group, orderService services.OrderServiceInterface, logger *zap.Logger) {
	orderCtrl := controllers.NewOrderController(orderService, logger.Named("orders"))
	{
		secureGroup.GET("/orders", orderCtrl.List)
		secureGroup.GET("/orders/:id", orderCtrl.Find)
		secureGroup.POST("/orders/:id/approve", orderCtrl.Approve)
		secureGroup.POST("/orders/:id/reject", orderCtrl.Reject)
		secureGroup.POST("/orders/:id/confirm", orderCtrl.ConfirmByProvider)
	}
}
