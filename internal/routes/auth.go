package routes

import (
	"sourcing-system/internal/controllers"
	"sourcing-system/internal/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func runAuthRouter(api *echo.Group, secureGroup *echo.Group, authService services.AuthServiceInterface, logger *zap.Logger) {
	authCtrl := controllers.NewAuthController(authService, logger.Named("auth"))
	{
		api.POST("/auth/login", authCtrl.Login)
		api.POST("/auth/refresh", authCtrl.Refresh)
		secureGroup.GET("/auth/profile", authCtrl.Profile)
	}
}
