package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewRouter(handler *Handler, authMiddleware gin.HandlerFunc, env string) *gin.Engine {
	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"*"},
		ExposeHeaders:   []string{"Content-Type"},
		MaxAge:          12 * time.Hour,
	}))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", handler.register)
		authGroup.POST("/login", handler.login)
		authGroup.POST("/admin-login", handler.adminLogin)
	}

	protected := api.Group("")
	protected.Use(authMiddleware)
	{
		protected.POST("/routes", handler.createRoute)
		protected.GET("/routes", handler.listRoutes)
		protected.GET("/routes/stats", handler.routeStats)
		protected.GET("/routes/collector/:collectorId", handler.routesByCollector)
		protected.GET("/routes/:id", handler.getRoute)
		protected.PUT("/routes/:id", handler.updateRoute)
		protected.DELETE("/routes/:id", handler.deleteRoute)
		protected.PUT("/routes/:id/assign", handler.assignRoute)

		protected.PUT("/collections/routes/:routeId/start", handler.startRoute)
		protected.PUT("/collections/routes/:routeId/complete", handler.completeRoute)
		protected.GET("/collections/routes/:routeId/progress", handler.routeProgress)
		protected.PUT("/collections/bins/:binId/collect", handler.collectBin)
		protected.PUT("/collections/bins/:binId/skip", handler.skipBin)

		protected.GET("/bins", handler.listBins)
		protected.GET("/bins/stats", handler.binStats)
		protected.POST("/bins", handler.createBin)
		protected.GET("/bins/:id", handler.getBin)
		protected.PUT("/bins/:id", handler.updateBin)
		protected.DELETE("/bins/:id", handler.deleteBin)
		protected.PUT("/bins/:id/fill-level", handler.updateBinFillLevel)

		protected.GET("/users", handler.listUsers)
		protected.GET("/users/stats", handler.userStats)
		protected.GET("/users/:id", handler.getUser)
		protected.PUT("/users/:id", handler.updateUser)
		protected.PUT("/users/:id/role", handler.updateUserRole)
		protected.PUT("/users/:id/status", handler.updateUserStatus)
		protected.PUT("/users/:id/credits", handler.adjustUserCredits)
		protected.DELETE("/users/:id", handler.deleteUser)
	}

	return router
}
