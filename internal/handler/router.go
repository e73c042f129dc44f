package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/seoul-transit/service-route-search/internal/middleware"
)

// NewRouter builds the gin engine with the global middleware chain, the page
// templates and every route registered.
func NewRouter(log *zap.Logger, routes *RouteHandler, health *HealthHandler) (*gin.Engine, error) {
	router := gin.New()

	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	if err := LoadTemplates(router); err != nil {
		return nil, err
	}

	health.RegisterRoutes(router)
	routes.RegisterRoutes(&router.RouterGroup)

	return router, nil
}
