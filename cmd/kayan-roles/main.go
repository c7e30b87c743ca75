package main

import (
	"fmt"
	"log"

	"github.com/getkayan/kayan-roles/api"
	"github.com/getkayan/kayan-roles/core/config"
	"github.com/getkayan/kayan-roles/core/logger"
	"github.com/getkayan/kayan-roles/core/rbac"
	"github.com/getkayan/kayan-roles/kgorm"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// identityHeader carries the editor ID set by the session gateway in front
// of this service.
const identityHeader = "X-Kayan-Identity"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger.InitLogger(cfg.LogLevel)
	defer logger.Log.Sync()

	hierarchy := rbac.Hierarchy(cfg.Hierarchy())
	logger.Log.Info("Starting Kayan role service",
		zap.Int("port", cfg.Port),
		zap.String("db_type", cfg.DBType),
		zap.Int("hierarchy_roles", len(hierarchy)),
	)

	db, err := kgorm.Open(cfg.DBType, cfg.DSN, nil, false)
	if err != nil {
		logger.Log.Fatal("failed to initialize repository", zap.Error(err))
	}

	h := api.NewHandler(kgorm.NewRoleReader(db), hierarchy, cfg.MasterRole)

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Log.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
			)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if id := c.Request().Header.Get(identityHeader); id != "" {
				c.Set("identity_id", id)
			}
			return next(c)
		}
	})

	h.RegisterRoutes(e.Group("/api/v1"))

	logger.Log.Info("Server is starting", zap.Int("port", cfg.Port))
	if err := e.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil {
		logger.Log.Fatal("server failed to start", zap.Error(err))
	}
}
