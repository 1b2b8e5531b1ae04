package routes

import (
	"sourcing-system/internal/controllers"
	"sourcing-system/internal/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func runNotificationRouter(secureGroup *echo.Group, notificationService services.NotificationServiceInterface, logger *zap.Logger) {
	notificationCtrl := controllers.NewNotificationController(notificationService, logger.Named("notifications"))
	{
		secureGroup.GET("/notifications", notificationCtrl.ListMine)
		secureGroup.POST("/notifications/:id/read", notificationCtrl.MarkRead)
		secureGroup.GET("/history/:entityType/:entityId", notificationCtrl.History)
	}
}
