package app

import (
	"database/sql"
	"path/filepath"

	"go-garage/internal/employee"
	"go-garage/internal/employeepayment"
	"go-garage/internal/messaging/kafka"
	"go-garage/internal/payment"
	"go-garage/internal/payroll"
	"go-garage/internal/rbac"
	"go-garage/internal/rbac/infra"
	"go-garage/internal/shared/counter"
	"go-garage/internal/vehicleservice"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	rbacRepo := rbac.NewRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)
	serviceRepo := vehicleservice.NewRepository(gormDB, db)
	paymentRepo := payment.NewRepository(gormDB, db)
	employeeRepo := employee.NewRepository(gormDB)
	ledgerRepo := employeepayment.NewRepository(gormDB, db)
	payrollRepo := payroll.NewRepository(gormDB, db)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer(filepath.Join("internal", "rbac", "infra", "model.conf"))
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer)

	// --- Services ---
	serviceManager := vehicleservice.NewServiceManager(db, serviceRepo)
	paymentAllocator := payment.NewAllocator(db, paymentRepo, serviceRepo, counterRepo, outboxRepo)
	employeeService := employee.NewService(db, employeeRepo, counterRepo, rdb)
	ledgerService := employeepayment.NewService(db, ledgerRepo, employeeRepo)
	payrollService := payroll.NewService(db, payrollRepo, employeeRepo, ledgerRepo, counterRepo, outboxRepo)

	// --- Handlers ---
	serviceHandler := vehicleservice.NewHandler(serviceManager)
	paymentHandler := payment.NewHandlerWithRedis(paymentAllocator, rdb)
	employeeHandler := employee.NewHandler(employeeService)
	ledgerHandler := employeepayment.NewHandler(ledgerService)
	payrollHandler := payroll.NewHandlerWithRedis(payrollService, rdb)
	rbacHandler := rbac.NewHandler(rbacService)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		vehicleservice.RegisterRoutes(api, serviceHandler, rbacService)
		payment.RegisterRoutes(api, paymentHandler, rbacService, rdb)
		employee.RegisterRoutes(api, employeeHandler, rbacService)
		employeepayment.RegisterRoutes(api, ledgerHandler, rbacService)
		payroll.RegisterRoutes(api, payrollHandler, rbacService, rdb)
	}

	rbac.RegisterRoutes(router, rbacHandler, rbacService)

	return nil
}
