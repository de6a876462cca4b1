package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-grain-trade/internal/handler"
	"go-grain-trade/internal/ledger"
	"go-grain-trade/internal/middleware"
	"go-grain-trade/internal/model"
	"go-grain-trade/internal/repository"
	"go-grain-trade/internal/service"
	"go-grain-trade/internal/ws"
	"go-grain-trade/pkg/database"
	"go-grain-trade/pkg/logging"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// Emit decimals as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true

	appLog := logging.GetLogger()

	// 2. Setup Database
	db := database.ConnectDB()
	if err := db.AutoMigrate(
		&model.User{}, &model.Privilege{}, &model.Role{},
		&model.Grain{}, &model.Godown{}, &model.BagInventory{},
		&model.Purchase{}, &model.PaymentHistory{},
		&model.Sale{}, &model.SaleGodownDetail{},
	); err != nil {
		log.Fatal("Failed to migrate database: ", err)
	}

	// 3. Seed default privileges, roles, and admin user
	seedPrivilegesRolesAndAdmin(db)

	// 4. Setup WebSocket Hub
	wsHub := ws.NewHub(appLog)
	go wsHub.Run()

	// 5. Dependency Injection (Wiring Layers)
	userRepo := repository.NewUserRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	grainRepo := repository.NewGrainRepo(db)
	godownRepo := repository.NewGodownRepo(db)
	purchaseRepo := repository.NewPurchaseRepo(db)
	saleRepo := repository.NewSaleRepo(db)
	inventoryRepo := repository.NewInventoryRepo(db)
	reportRepo := repository.NewReportRepo(db)

	stockLedger := ledger.New(db)

	authService := service.NewAuthService(userRepo)
	userService := service.NewUserService(userRepo, privilegeRepo, roleRepo)
	grainService := service.NewGrainService(grainRepo)
	godownService := service.NewGodownService(godownRepo)
	purchaseService := service.NewPurchaseService(purchaseRepo, grainRepo, godownRepo, stockLedger, db, wsHub)
	saleService := service.NewSaleService(saleRepo, grainRepo, stockLedger, db, wsHub)
	inventoryService := service.NewInventoryService(inventoryRepo, stockLedger)
	dashboardService := service.NewDashboardService(reportRepo)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(roleRepo, privilegeRepo)
	grainHandler := handler.NewGrainHandler(grainService)
	godownHandler := handler.NewGodownHandler(godownService)
	purchaseHandler := handler.NewPurchaseHandler(purchaseService)
	saleHandler := handler.NewSaleHandler(saleService)
	inventoryHandler := handler.NewInventoryHandler(inventoryService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Grain Trade Backoffice v1.0",
	})

	app.Use(fiberlogger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	// 7. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/reset-password", authHandler.ResetPassword)
	auth.Post("/validate-token", authHandler.ValidateToken)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(userRepo))

	// Dashboard
	protected.Get("/dashboard/summary", middleware.RequirePrivilege("report:view"), dashboardHandler.GetSummary)
	protected.Get("/dashboard/stock-movement", middleware.RequirePrivilege("report:view"), dashboardHandler.GetStockMovement)
	protected.Get("/dashboard/metrics", middleware.RequirePrivilege("report:view"), dashboardHandler.GetMetrics)

	// Grains
	protected.Get("/grains", grainHandler.GetGrains)
	protected.Post("/grains", middleware.RequirePrivilege("grain:manage"), grainHandler.CreateGrain)
	protected.Put("/grains/:id", middleware.RequirePrivilege("grain:manage"), grainHandler.UpdateGrain)
	protected.Delete("/grains/:id", middleware.RequirePrivilege("grain:manage"), grainHandler.DeleteGrain)

	// Godowns
	protected.Get("/godowns", godownHandler.GetGodowns)
	protected.Post("/godowns", middleware.RequirePrivilege("godown:manage"), godownHandler.CreateGodown)
	protected.Put("/godowns/:id", middleware.RequirePrivilege("godown:manage"), godownHandler.UpdateGodown)

	// Inventory
	protected.Get("/inventory", middleware.RequirePrivilege("inventory:view"), inventoryHandler.GetInventory)
	protected.Get("/inventory/low-stock", middleware.RequirePrivilege("inventory:view"), inventoryHandler.GetLowStock)
	protected.Get("/inventory/summary", middleware.RequirePrivilege("inventory:view"), inventoryHandler.GetSummary)
	protected.Get("/inventory/check", middleware.RequirePrivilege("inventory:view"), inventoryHandler.CheckAvailability)
	protected.Get("/inventory/godowns/:grainId", middleware.RequirePrivilege("inventory:view"), inventoryHandler.GetGodownStock)

	// Purchases
	protected.Get("/purchases", middleware.RequirePrivilege("purchase:view"), purchaseHandler.GetPurchases)
	protected.Get("/purchases/:id", middleware.RequirePrivilege("purchase:view"), purchaseHandler.GetPurchase)
	protected.Post("/purchases", middleware.RequirePrivilege("purchase:create"), purchaseHandler.CreatePurchase)
	protected.Put("/purchases/:id", middleware.RequirePrivilege("purchase:update"), purchaseHandler.UpdatePurchase)
	protected.Delete("/purchases/:id", middleware.RequirePrivilege("purchase:delete"), purchaseHandler.DeletePurchase)
	protected.Post("/purchases/:id/payment", middleware.RequirePrivilege("purchase:update"), purchaseHandler.RecordPayment)
	protected.Get("/purchases/:id/payments", middleware.RequirePrivilege("purchase:view"), purchaseHandler.GetPayments)

	// Sales
	protected.Get("/sales", middleware.RequirePrivilege("sale:view"), saleHandler.GetSales)
	protected.Get("/sales/:id", middleware.RequirePrivilege("sale:view"), saleHandler.GetSale)
	protected.Post("/sales", middleware.RequirePrivilege("sale:create"), saleHandler.CreateSale)
	protected.Put("/sales/:id", middleware.RequirePrivilege("sale:update"), saleHandler.UpdateSale)
	protected.Delete("/sales/:id", middleware.RequirePrivilege("sale:delete"), saleHandler.DeleteSale)
	protected.Post("/sales/:id/payment", middleware.RequirePrivilege("sale:update"), saleHandler.UpdatePaymentStatus)

	// User Management
	protected.Get("/users", userHandler.GetUsers)
	protected.Get("/users/:id", userHandler.GetUser)
	protected.Post("/users", middleware.RequirePrivilege("user:create"), userHandler.CreateUser)
	protected.Put("/users/:id", middleware.RequirePrivilege("user:update"), userHandler.UpdateUser)
	protected.Delete("/users/:id", middleware.RequirePrivilege("user:delete"), userHandler.DeleteUser)
	protected.Put("/users/:id/privileges", middleware.RequirePrivilege("user:update_privilege"), userHandler.UpdateUserPrivileges)

	// Roles
	protected.Get("/roles", roleHandler.GetRoles)
	protected.Get("/privileges", roleHandler.GetPrivileges)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful Shutdown
	go func() {
		port := os.Getenv("PORT")
		if port == "" {
			port = "3000"
		}
		if err := app.Listen(":" + port); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

// seedPrivilegesRolesAndAdmin creates default privileges, roles, and admin user if they don't exist
func seedPrivilegesRolesAndAdmin(db *gorm.DB) {
	privilegeRepo := repository.NewPrivilegeRepo(db)
	userRepo := repository.NewUserRepo(db)
	roleRepo := repository.NewRoleRepo(db)

	if err := privilegeRepo.SeedDefaults(); err != nil {
		log.Printf("Warning: Failed to seed privileges: %v", err)
	}
	if err := roleRepo.SeedDefaults(); err != nil {
		log.Printf("Warning: Failed to seed roles: %v", err)
	}

	allPrivileges, _ := privilegeRepo.FindAll()

	// ADMIN gets everything
	adminRole, err := roleRepo.FindByCode(model.RoleAdmin)
	if err == nil && len(adminRole.Privileges) == 0 {
		db.Model(&adminRole).Association("Privileges").Replace(allPrivileges)
		log.Println("ADMIN role assigned all privileges")
	}

	// MANAGER gets everything except user administration
	managerRole, err := roleRepo.FindByCode(model.RoleManager)
	if err == nil && len(managerRole.Privileges) == 0 {
		managerPrivileges, _ := privilegeRepo.FindByCodes(model.ManagerPrivilegeCodes)
		db.Model(&managerRole).Association("Privileges").Replace(managerPrivileges)
		log.Println("MANAGER role assigned trading privileges")
	}

	// STAFF gets view access plus sale entry
	staffRole, err := roleRepo.FindByCode(model.RoleStaff)
	if err == nil && len(staffRole.Privileges) == 0 {
		staffPrivileges, _ := privilegeRepo.FindByCodes(model.StaffPrivilegeCodes)
		db.Model(&staffRole).Association("Privileges").Replace(staffPrivileges)
		log.Println("STAFF role assigned limited privileges")
	}

	// Create default admin user with ADMIN role
	if _, err := userRepo.FindByEmail("admin@example.com"); err != nil {
		adminRole, _ := roleRepo.FindByCode(model.RoleAdmin)

		admin := &model.User{
			Email:      "admin@example.com",
			FullName:   "Administrator",
			RoleID:     &adminRole.ID,
			IsActive:   true,
			Privileges: adminRole.Privileges,
		}
		admin.CreatedBy = "system"
		admin.UpdatedBy = "system"

		password := os.Getenv("ADMIN_PASSWORD")
		if password == "" {
			password = "admin123"
		}
		if err := admin.SetPassword(password); err != nil {
			log.Printf("Warning: Failed to hash admin password: %v", err)
			return
		}
		if err := userRepo.Create(admin); err != nil {
			log.Printf("Warning: Failed to create admin user: %v", err)
		} else {
			log.Println("Admin user created: admin@example.com (ADMIN)")
		}
	}
}
