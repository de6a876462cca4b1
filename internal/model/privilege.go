package model

// Privilege represents a permission that can be assigned to users
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "purchase:create"
	Name string `gorm:"type:varchar(100)" json:"name"`                     // e.g., "Create Purchase Bill"
}

// Default privileges for the system
var DefaultPrivileges = []Privilege{
	// User management
	{Code: "user:view", Name: "View User"},
	{Code: "user:create", Name: "Create User"},
	{Code: "user:update", Name: "Update User"},
	{Code: "user:delete", Name: "Delete User"},
	{Code: "user:update_privilege", Name: "Update User Privileges"},
	// Master data
	{Code: "grain:manage", Name: "Manage Grains"},
	{Code: "godown:manage", Name: "Manage Godowns"},
	// Inventory
	{Code: "inventory:view", Name: "View Inventory"},
	{Code: "inventory:manage", Name: "Manage Inventory"},
	// Purchase bills
	{Code: "purchase:view", Name: "View Purchase"},
	{Code: "purchase:create", Name: "Create Purchase"},
	{Code: "purchase:update", Name: "Edit Purchase"},
	{Code: "purchase:delete", Name: "Delete Purchase"},
	// Sale bills
	{Code: "sale:view", Name: "View Sale"},
	{Code: "sale:create", Name: "Create Sale"},
	{Code: "sale:update", Name: "Edit Sale"},
	{Code: "sale:delete", Name: "Delete Sale"},
	// Reporting
	{Code: "report:view", Name: "View Reports"},
}
