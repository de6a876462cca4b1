package model

// Godown is a physical grain storage warehouse. Capacity is an optional bag
// limit used for utilization display, not a hard invariant.
type Godown struct {
	BaseModel
	Name     string `gorm:"type:varchar(100);not null" json:"name" validate:"required"`
	Location string `gorm:"type:varchar(200)" json:"location"`
	Capacity *int   `json:"capacity,omitempty"`
}
