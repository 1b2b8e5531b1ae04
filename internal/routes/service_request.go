package routes

import (
	"sourcing-system/internal/controllers"
	"sourcing-system/internal/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func runServiceRequestRouter(secureGroup *echo.Group, requestService services.ServiceRequestServiceInterface, logger *zap.Logger) {
	requestCtrl := controllers.NewServiceRequestController(requestService, logger.Named("requests"))
	{
		secureGroup.GET("/requests", requestCtrl.List)
		secureGroup.POST("/requests", requestCtrl.Create)
		secureGroup.GET("/requests/:id", requestCtrl.Find)
		secureGroup.POST("/requests/:id/submit", requestCtrl.SubmitForReview)
		secureGroup.POST("/requests/:id/approve", requestCtrl.ApproveForBidding)
		secureGroup.POST("/requests/:id/open-bidding", requestCtrl.OpenBidding)
		secureGroup.POST("/requests/:id/select-offer", requestCtrl.SelectOffer)
		secureGroup.POST("/requests/:id/convert", requestCtrl.ConvertToOrder)
		secureGroup.POST("/requests/:id/reject", requestCtrl.Reject)
	}
}
