package payroll

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

	payrolls := r.Group("/payroll-runs")
	payrolls.Use(middleware.AuthMiddleware())
	payrolls.Use(middleware.ExtractUserID())
	{
		payrolls.GET("", middleware.RBACAuthorize(rbacService, "payroll", "read"), handler.GetAll)
		payrolls.GET("/:id", middleware.RBACAuthorize(rbacService, "payroll", "read"), handler.GetById)
		payrolls.POST("/preview", middleware.RBACAuthorize(rbacService, "payroll", "read"), handler.Preview)
		if redisClient != nil {
			payrolls.POST(
				"",
				middleware.Idempotency(redisClient),
				middleware.RBACAuthorize(rbacService, "payroll", "approve"),
				handler.Approve,
			)
		} else {
			payrolls.POST("", middleware.RBACAuthorize(rbacService, "payroll", "approve"), handler.Approve)
		}
	}
}
