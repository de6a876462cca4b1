package model

// Grain is a traded commodity (wheat, maize, ...). Referenced by purchases,
// sales and ledger rows, so deletion is blocked while any bill points at it.
type Grain struct {
	BaseModel
	Name string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name" validate:"required"`
}
