package main

import (
	"flag"
	"log"

	"go-grain-trade/internal/model"
	"go-grain-trade/internal/repository"
	"go-grain-trade/pkg/database"

	"github.com/joho/godotenv"
)

// Creates an ADMIN user directly, for bootstrapping a fresh database
// without starting the API.
func main() {
	email := flag.String("email", "admin@example.com", "admin email")
	password := flag.String("password", "admin123", "admin password")
	fullName := flag.String("name", "Administrator", "full name")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}

	db := database.ConnectDB()
	if err := db.AutoMigrate(&model.User{}, &model.Privilege{}, &model.Role{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	userRepo := repository.NewUserRepo(db)

	if err := privilegeRepo.SeedDefaults(); err != nil {
		log.Fatalf("Failed to seed privileges: %v", err)
	}
	if err := roleRepo.SeedDefaults(); err != nil {
		log.Fatalf("Failed to seed roles: %v", err)
	}

	adminRole, err := roleRepo.FindByCode(model.RoleAdmin)
	if err != nil {
		log.Fatalf("ADMIN role not found: %v", err)
	}
	if len(adminRole.Privileges) == 0 {
		allPrivileges, _ := privilegeRepo.FindAll()
		if err := db.Model(adminRole).Association("Privileges").Replace(allPrivileges); err != nil {
			log.Fatalf("Failed to assign privileges to ADMIN role: %v", err)
		}
		adminRole.Privileges = allPrivileges
	}

	if _, err := userRepo.FindByEmail(*email); err == nil {
		log.Fatalf("User %s already exists", *email)
	}

	admin := &model.User{
		Email:      *email,
		FullName:   *fullName,
		RoleID:     &adminRole.ID,
		IsActive:   true,
		Privileges: adminRole.Privileges,
	}
	admin.CreatedBy = "system"
	admin.UpdatedBy = "system"

	if err := admin.SetPassword(*password); err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}
	if err := userRepo.Create(admin); err != nil {
		log.Fatalf("Failed to create admin user: %v", err)
	}

	log.Printf("Admin user created: %s (ADMIN)", *email)
}
