package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"user-registry/internal/adapter/gin/handler"
	"user-registry/internal/adapter/gin/middleware"
	grpcmiddleware "user-registry/internal/adapter/grpc/middleware"
)

// Options configures optional parts of the router.
type Options struct {
	// SwaggerFile is the OpenAPI document served under /swagger. Empty disables the UI.
	SwaggerFile string
	RateLimiter *grpcmiddleware.RateLimiter
}

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(
	api *handler.RegistryHandler,
	view *handler.ViewHandler,
	opts Options,
	log *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.SetHTMLTemplate(handler.Templates())

	// Global middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery(log))
	router.Use(middleware.Logger(log))
	router.Use(middleware.RateLimiter(opts.RateLimiter))

	router.GET("/health", api.Health)

	// HTML form
	router.GET("/", view.Index)
	form := router.Group("/form")
	{
		form.POST("/submit", view.Submit)
		form.POST("/new", view.New)
		form.POST("/edit/:id", view.Edit)
		form.POST("/delete/:id", view.Delete)
	}

	// API v1 routes
	v1 := router.Group("/v1")
	{
		v1.GET("/registry", api.GetSnapshot)
		v1.GET("/registry/events", api.Events)

		users := v1.Group("/users")
		{
			users.GET("", api.ListUsers)
			users.POST("", api.CreateUser)
			users.PUT("/:id", api.UpdateUser)
			users.DELETE("/:id", api.DeleteUser)
			users.POST("/:id/edit", api.BeginEdit)
		}

		draft := v1.Group("/draft")
		{
			draft.PUT("", api.SetDraft)
			draft.POST("/new", api.BeginCreate)
			draft.POST("/submit", api.Submit)
		}
	}

	if opts.SwaggerFile != "" {
		ui := gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/swagger/registry.swagger.json")))
		router.GET("/swagger/*any", func(c *gin.Context) {
			if c.Param("any") == "/registry.swagger.json" {
				c.File(opts.SwaggerFile)
				return
			}
			ui(c)
		})
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, handler.ErrorResponse{Error: "not_found", Message: "route not found"})
	})

	return router
}
