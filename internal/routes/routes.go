package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"sourcing-system/internal/listeners"
	"sourcing-system/internal/repositories"
	"sourcing-system/internal/services"
	"sourcing-system/pkg/config"
	"sourcing-system/pkg/eventbus"
	"sourcing-system/pkg/middleware"
	"sourcing-system/pkg/service"
)

// InitRouter собирает весь граф зависимостей и вешает маршруты.
func InitRouter(
	e *echo.Echo,
	dbConn *pgxpool.Pool,
	redisClient *redis.Client,
	jwtSvc service.JWTService,
	logger *zap.Logger,
	cfg *config.Config,
) {
	logger.Info("InitRouter: начало создания маршрутов")

	api := e.Group("/api")
	authMW := middleware.NewAuthMiddleware(jwtSvc, logger.Named("auth"))
	txManager := repositories.NewTxManager(dbConn)
	bus := eventbus.New(logger.Named("eventbus"))

	// --- Репозитории ---
	userRepo := repositories.NewUserRepository(dbConn)
	permissionRepo := repositories.NewPermissionRepository(dbConn)
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)
	requestRepo := repositories.NewServiceRequestRepository(dbConn)
	offerRepo := repositories.NewOfferRepository(dbConn)
	orderRepo := repositories.NewOrderRepository(dbConn)
	changeRepo := repositories.NewChangeRequestRepository(dbConn)
	historyRepo := repositories.NewWorkflowHistoryRepository(dbConn)
	notificationRepo := repositories.NewNotificationRepository(dbConn)

	// --- Сервисы ---
	permissionSvc := services.NewPermissionService(permissionRepo, cacheRepo, logger.Named("permissions"), cfg.Workflow.RolePermissionsCacheTTL)
	authService := services.NewAuthService(userRepo, jwtSvc, logger.Named("auth"))
	requestService := services.NewServiceRequestService(requestRepo, offerRepo, orderRepo, txManager, permissionSvc, bus, logger.Named("requests"))
	offerService := services.NewOfferService(offerRepo, requestRepo, userRepo, txManager, permissionSvc, bus, logger.Named("offers"))
	orderService := services.NewOrderService(orderRepo, permissionSvc, bus, logger.Named("orders"))
	changeService := services.NewChangeRequestService(changeRepo, orderRepo, txManager, permissionSvc, bus, logger.Named("changes"))
	feedbackService := services.NewFeedbackService(orderRepo, cacheRepo, permissionSvc, bus, logger.Named("feedback"),
		cfg.Workflow.FeedbackEditWindow, cfg.Workflow.SupplierRatingCacheTTL)
	notificationService := services.NewNotificationService(notificationRepo, historyRepo, logger.Named("notifications"))

	// --- Слушатели шины ---
	listeners.NewWorkflowListener(notificationRepo, historyRepo, logger.Named("listeners")).Register(bus)

	// --- Маршруты ---
	secureGroup := api.Group("", authMW.Auth)

	runAuthRouter(api, secureGroup, authService, logger)
	runServiceRequestRouter(secureGroup, requestService, logger)
	runOfferRouter(secureGroup, offerService, logger)
	runOrderRouter(secureGroup, orderService, logger)
	runChangeRequestRouter(secureGroup, changeService, logger)
	runFeedbackRouter(secureGroup, feedbackService, logger)
	runNotificationRouter(secureGroup, notificationService, logger)

	logger.Info("InitRouter: создание маршрутов завершено")
}
