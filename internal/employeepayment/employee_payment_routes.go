package employeepayment

import (
	"go-garage/internal/middleware"
	"go-garage/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rbacService rbac.Service) {
	employees := r.Group("/employees")
	employees.Use(middleware.AuthMiddleware())
	{
		employees.POST("/:id/advances", middleware.RBACAuthorize(rbacService, "employee_payment", "create"), handler.RecordAdvance)
		employees.POST("/:id/deductions", middleware.RBACAuthorize(rbacService, "employee_payment", "create"), handler.RecordDeduction)
		employees.GET("/:id/ledger", middleware.RBACAuthorize(rbacService, "employee_payment", "read"), handler.GetLedger)
		employees.GET("/:id/balance", middleware.RBACAuthorize(rbacService, "employee_payment", "read"), handler.GetBalance)
	}

	entries := r.Group("/employee-payments")
	entries.Use(middleware.AuthMiddleware())
	{
		entries.POST("/:id/confirm", middleware.RBACAuthorize(rbacService, "employee_payment", "confirm"), handler.Confirm)
	}
}
