package server

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/harbourbee/harbourbee-backend/internal/config"
	"github.com/harbourbee/harbourbee-backend/internal/handler"
	appmw "github.com/harbourbee/harbourbee-backend/internal/middleware"
	"github.com/harbourbee/harbourbee-backend/internal/payment"
	"github.com/harbourbee/harbourbee-backend/internal/repository"
	"github.com/harbourbee/harbourbee-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"
)

type Server struct {
	e *echo.Echo
}

func New(db *gorm.DB, cfg *config.Config, sha, buildTime string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		AllowOriginFunc: func(origin string) (bool, error) {
			low := strings.ToLower(origin)
			if strings.HasPrefix(low, "http://localhost:") || strings.HasPrefix(low, "http://127.0.0.1:") ||
				strings.HasPrefix(low, "https://localhost:") || strings.HasPrefix(low, "https://127.0.0.1:") {
				return true, nil
			}
			u, err := url.Parse(origin)
			if err != nil {
				return false, nil
			}
			if u.Scheme != "http" && u.Scheme != "https" {
				return false, nil
			}
			if strings.HasSuffix(u.Hostname(), "vercel.app") {
				return true, nil
			}
			return false, nil
		},
	}))

	userRepo := repository.NewUserRepository(db)
	assignmentRepo := repository.NewVesselAssignmentRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	exceptionRepo := repository.NewExceptionRepository(db)
	poolRepo := repository.NewPoolRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	gateway := payment.NewMockGateway()

	notifSvc := service.NewNotificationService(notifRepo, userRepo, assignmentRepo)
	exceptionSvc := service.NewExceptionService(exceptionRepo, userRepo, assignmentRepo)
	poolSvc := service.NewPoolService(poolRepo, orderRepo, userRepo, notifSvc, gateway, cfg.BaseDeliveryFee, cfg.FreeDeliveryThreshold)
	orderSvc := service.NewOrderService(orderRepo, userRepo, assignmentRepo, poolSvc, notifSvc, gateway)

	notifHandler := handler.NewNotificationHandler(notifSvc)
	exceptionHandler := handler.NewExceptionHandler(exceptionSvc)
	poolHandler := handler.NewPoolHandler(poolSvc)
	orderHandler := handler.NewOrderHandler(orderSvc)

	authMw, err := appmw.NewAuthMiddleware(context.Background())
	if err != nil {
		e.Logger.Fatalf("failed to init firebase auth: %v", err)
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"ok":         "true",
			"git_sha":    sha,
			"build_time": buildTime,
		})
	})

	api := e.Group("/api", authMw.RequireAuth)
	api.GET("/notifications", notifHandler.List)
	api.POST("/notifications/:id/read", notifHandler.MarkRead)
	api.GET("/exceptions", exceptionHandler.List)
	api.GET("/exceptions/defaults", exceptionHandler.Defaults)
	api.POST("/exceptions", exceptionHandler.Report)
	api.POST("/exceptions/:id/status", exceptionHandler.AdvanceStatus)
	api.POST("/orders", orderHandler.Create)
	api.POST("/orders/:id/checkout", orderHandler.Checkout)
	api.GET("/me/orders", orderHandler.ListMine)
	api.GET("/pools", poolHandler.List)
	api.GET("/pools/:id/progress", poolHandler.Progress)
	api.POST("/pools/:id/close", poolHandler.Close)
	api.POST("/pools/:id/dispatch", poolHandler.Dispatch)
	api.POST("/pools/:id/deliver", poolHandler.Deliver)
	api.POST("/pools/:id/cancel", poolHandler.Cancel)

	return &Server{e: e}
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}
