package model

import (
	"time"

	"github.com/google/uuid"
)

// BagInventory is the ledger's unit of truth: the authoritative bag count
// for one (grain, godown) pair. Exactly one row may exist per pair (enforced
// by the unique index); a missing row means zero bags. Rows are mutated only
// under a row lock inside the bill transaction and are never soft-deleted.
type BagInventory struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	GrainID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_grain_godown" json:"grain_id"`
	GodownID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_grain_godown" json:"godown_id"`
	NumberOfBags int       `gorm:"not null;default:0" json:"number_of_bags"`
	LastUpdated  time.Time `json:"last_updated"`

	Grain  *Grain  `gorm:"foreignKey:GrainID" json:"grain,omitempty"`
	Godown *Godown `gorm:"foreignKey:GodownID" json:"godown,omitempty"`
}

// TableName specifies the table name for GORM
func (BagInventory) TableName() string {
	return "bag_inventories"
}
