package model

// Role represents user roles in the system
type Role struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Code        string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // ADMIN, MANAGER, STAFF
	Name        string      `gorm:"type:varchar(100)" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Privileges  []Privilege `gorm:"many2many:role_privileges;" json:"privileges,omitempty"`
}

// Role codes as constants
const (
	RoleAdmin   = "ADMIN"
	RoleManager = "MANAGER"
	RoleStaff   = "STAFF"
)

// DefaultRoles defines the default roles in the system
var DefaultRoles = []Role{
	{
		Code:        RoleAdmin,
		Name:        "Administrator",
		Description: "Full system access with all privileges",
	},
	{
		Code:        RoleManager,
		Name:        "Manager",
		Description: "Runs day-to-day trading: bills, inventory, reports",
	},
	{
		Code:        RoleStaff,
		Name:        "Staff",
		Description: "Read access plus sale bill entry",
	},
}

// ManagerPrivilegeCodes lists what a MANAGER may do: everything except
// user administration.
var ManagerPrivilegeCodes = []string{
	"grain:manage", "godown:manage",
	"inventory:view", "inventory:manage",
	"purchase:view", "purchase:create", "purchase:update", "purchase:delete",
	"sale:view", "sale:create", "sale:update", "sale:delete",
	"report:view",
}

// StaffPrivilegeCodes lists what a STAFF user may do.
var StaffPrivilegeCodes = []string{
	"inventory:view",
	"purchase:view",
	"sale:view", "sale:create",
}
