package vehicleservice

import (
	"go-garage/internal/middleware"
	"go-garage/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rbacService rbac.Service) {
	services := r.Group("/services")
	services.Use(middleware.AuthMiddleware())
	{
		services.GET("", middleware.RBACAuthorize(rbacService, "service", "read"), handler.GetAll)
		services.GET("/:id", middleware.RBACAuthorize(rbacService, "service", "read"), handler.GetById)
		services.POST("", middleware.RBACAuthorize(rbacService, "service", "create"), handler.Create)
		services.PUT("/:id", middleware.RBACAuthorize(rbacService, "service", "update"), handler.Update)
		services.DELETE("/:id", middleware.RBACAuthorize(rbacService, "service", "delete"), handler.Delete)
	}
}
