package routes

import (
	"sourcing-system/internal/controllers"
	"sourcing-system/internal/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func runChangeRequestRouter(secureGroup *echo.Group, changeService services.ChangeRequestServiceInterface, logger *zap.Logger) {
	changeCtrl := controllers.NewChangeRequestController(changeService, logger.Named("changes"))
	{
		secureGroup.POST("/orders/:orderId/changes/substitution", changeCtrl.OpenSubstitution)
		secureGroup.POST("/orders/:orderId/changes/extension", changeCtrl.OpenExtension)
		secureGroup.GET("/orders/:orderId/changes", changeCtrl.ListByOrder)
		secureGroup.GET("/changes/:id", changeCtrl.Find)
		secureGroup.POST("/changes/:id/approve", changeCtrl.Approve)
		secureGroup.POST("/changes/:id/reject", changeCtrl.Reject)
	}
}
