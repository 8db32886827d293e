package payment

import (
	"go-garage/internal/middleware"
	"go-garage/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	rdb ...*redis.Client,
) {
	var redisClient *redis.Client
	if len(rdb) > 0 {
		redisClient = rdb[0]
	}

	services := r.Group("/services")
	services.Use(middleware.AuthMiddleware())
	services.Use(middleware.ExtractUserID())
	{
		services.GET("/:id/payments", middleware.RBACAuthorize(rbacService, "payment", "read"), handler.GetByService)
		if redisClient != nil {
			services.POST(
				"/:id/payments",
				middleware.Idempotency(redisClient),
				middleware.RBACAuthorize(rbacService, "payment", "create"),
				handler.RecordForService,
			)
		} else {
			services.POST("/:id/payments", middleware.RBACAuthorize(rbacService, "payment", "create"), handler.RecordForService)
		}
	}

	vehicles := r.Group("/vehicles")
	vehicles.Use(middleware.AuthMiddleware())
	vehicles.Use(middleware.ExtractUserID())
	{
		if redisClient != nil {
			vehicles.POST(
				"/:vehicleId/payments",
				middleware.Idempotency(redisClient),
				middleware.RBACAuthorize(rbacService, "payment", "create"),
				handler.RecordForVehicle,
			)
		} else {
			vehicles.POST("/:vehicleId/payments", middleware.RBACAuthorize(rbacService, "payment", "create"), handler.RecordForVehicle)
		}
	}

	payments := r.Group("/payments")
	payments.Use(middleware.AuthMiddleware())
	payments.Use(middleware.ExtractUserID())
	{
		payments.PUT("/:id", middleware.RBACAuthorize(rbacService, "payment", "update"), handler.Update)
		payments.DELETE("/:id", middleware.RBACAuthorize(rbacService, "payment", "delete"), handler.Delete)
	}
}
