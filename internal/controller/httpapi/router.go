package httpapi

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// NewRouter собирает echo-приложение с маршрутами и middleware
func NewRouter(schedules *ScheduleHandler, health *HealthHandler, logger *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(RequestID())
	e.Use(RequestLogger(logger))

	e.GET("/healthz", health.Healthz)

	v1 := e.Group("/api/v1")
	v1.POST("/schedules", schedules.Create)
	v1.GET("/schedules", schedules.List)
	v1.GET("/schedules/:id", schedules.Get)
	v1.PATCH("/schedules/:id", schedules.Update)
	v1.DELETE("/schedules/:id", schedules.Delete)

	return e
}
