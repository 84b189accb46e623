// router/router.go

package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dev-mohitbeniwal/warden/controller"
	"github.com/dev-mohitbeniwal/warden/middleware"
)

func SetupRouter(
	controllers *controller.Controllers,
	rateLimitRequests int,
	rateLimitDuration time.Duration,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.RateLimiter(rateLimitRequests, rateLimitDuration))
	router.Use(middleware.Auth())

	api := router.Group("/api/v1")

	controllers.Permission.RegisterRoutes(api)
	controllers.Role.RegisterRoutes(api)
	controllers.Role.RegisterSystemRoutes(api)
	controllers.Group.RegisterRoutes(api)
	controllers.UserGrant.RegisterRoutes(api)
	controllers.Access.RegisterRoutes(api)

	return router
}
