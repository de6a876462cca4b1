package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale records stock sold out of one or more godowns. The per-godown split
// lives in SaleGodownDetail rows whose bag counts must add up to
// NumberOfBags. Creating a sale debits each referenced BagInventory row;
// deleting it restores exactly the recorded split.
type Sale struct {
	BaseModel
	BillNumber   string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"bill_number"`
	GrainID      uuid.UUID `gorm:"type:uuid;not null;index" json:"grain_id" validate:"uuid_required"`
	Grain        *Grain    `gorm:"foreignKey:GrainID" json:"grain,omitempty" validate:"-"`
	BuyerName    string    `gorm:"type:varchar(100);not null" json:"buyer_name" validate:"required"`
	NumberOfBags int       `gorm:"not null" json:"number_of_bags" validate:"required,gt=0"`

	TotalWeight decimal.Decimal `gorm:"type:numeric;not null" json:"total_weight"` // kg
	RatePerKg   decimal.Decimal `gorm:"type:numeric;not null" json:"rate_per_kg"`
	TotalAmount decimal.Decimal `gorm:"type:numeric;not null" json:"total_amount"` // calculated

	TransportationMode string `gorm:"type:varchar(50)" json:"transportation_mode" validate:"required"`
	VehicleNumber      string `gorm:"type:varchar(20)" json:"vehicle_number" validate:"required"`
	DriverName         string `gorm:"type:varchar(100)" json:"driver_name" validate:"required"`
	LRNumber           string `gorm:"type:varchar(50)" json:"lr_number"`
	PONumber           string `gorm:"type:varchar(50)" json:"po_number"`
	BuyerGST           string `gorm:"type:varchar(20)" json:"buyer_gst"`

	SaleDate      time.Time     `gorm:"not null;index" json:"sale_date"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"payment_status"`

	GodownDetails []SaleGodownDetail `json:"godown_details,omitempty"`
}

// ComputeTotalAmount fills TotalAmount from weight and rate.
func (s *Sale) ComputeTotalAmount() {
	s.TotalAmount = s.TotalWeight.Mul(s.RatePerKg)
}

// DetailBags returns the sum of bags across the godown split.
func (s *Sale) DetailBags() int {
	total := 0
	for _, d := range s.GodownDetails {
		total += d.NumberOfBags
	}
	return total
}

// SaleGodownDetail is one leg of a sale's godown split.
type SaleGodownDetail struct {
	BaseModel
	SaleID       uuid.UUID `gorm:"type:uuid;not null;index" json:"sale_id"`
	GodownID     uuid.UUID `gorm:"type:uuid;not null;index" json:"godown_id" validate:"uuid_required"`
	Godown       *Godown   `gorm:"foreignKey:GodownID" json:"godown,omitempty" validate:"-"`
	NumberOfBags int       `gorm:"not null" json:"number_of_bags" validate:"required,gt=0"`
}

// TableName specifies the table name for GORM
func (SaleGodownDetail) TableName() string {
	return "sale_godown_details"
}
