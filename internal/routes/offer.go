package routes

import (
	"sourcing-system/internal/controllers"
	"sourcing-system/internal/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func runOfferRouter(secureGroup *echo.Group, offerService services.OfferServiceInterface, logger *zap.Logger) {
	offerCtrl := controllers.NewOfferController(offerService, logger.Named("offers"))
	{
		secureGroup.POST("/requests/:requestId/offers", offerCtrl.Submit)
		secureGroup.GET("/requests/:requestId/offers", offerCtrl.ListByRequest)
		secureGroup.POST("/requests/:requestId/offers/:id/prefer", offerCtrl.MarkPreferred)
		secureGroup.GET("/offers/:id", offerCtrl.Find)
		secureGroup.POST("/offers/:id/final-approve", offerCtrl.GrantFinalApproval)
	}
}
