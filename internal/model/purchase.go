package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentPending       PaymentStatus = "pending"
	PaymentPartiallyPaid PaymentStatus = "partially_paid"
	PaymentPaid          PaymentStatus = "paid"
)

// ValidPaymentStatus reports whether s is one of the known statuses.
func ValidPaymentStatus(s string) bool {
	switch PaymentStatus(s) {
	case PaymentPending, PaymentPartiallyPaid, PaymentPaid:
		return true
	}
	return false
}

// Purchase records stock bought into a single godown. Creating one credits
// the matching BagInventory row by the same bag count; deleting or editing
// it reverses that effect inside the same transaction.
type Purchase struct {
	BaseModel
	BillNumber   string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"bill_number"`
	GrainID      uuid.UUID `gorm:"type:uuid;not null;index" json:"grain_id" validate:"uuid_required"`
	Grain        *Grain    `gorm:"foreignKey:GrainID" json:"grain,omitempty" validate:"-"`
	GodownID     uuid.UUID `gorm:"type:uuid;not null;index" json:"godown_id" validate:"uuid_required"`
	Godown       *Godown   `gorm:"foreignKey:GodownID" json:"godown,omitempty" validate:"-"`
	NumberOfBags int       `gorm:"not null" json:"number_of_bags" validate:"required,gt=0"`

	WeightPerBag decimal.Decimal `gorm:"type:numeric;not null" json:"weight_per_bag"` // kg
	ExtraWeight  decimal.Decimal `gorm:"type:numeric" json:"extra_weight"`            // kg, loose grain on top of full bags
	RatePerKg    decimal.Decimal `gorm:"type:numeric;not null" json:"rate_per_kg"`
	TotalWeight  decimal.Decimal `gorm:"type:numeric;not null" json:"total_weight"` // calculated
	TotalAmount  decimal.Decimal `gorm:"type:numeric;not null" json:"total_amount"` // calculated

	PaymentStatus PaymentStatus   `gorm:"type:varchar(20);not null;default:'pending'" json:"payment_status"`
	PaidAmount    decimal.Decimal `gorm:"type:numeric;default:0" json:"paid_amount"`

	SupplierName string    `gorm:"type:varchar(200);not null" json:"supplier_name" validate:"required"`
	PurchaseDate time.Time `gorm:"not null;index" json:"purchase_date"`

	PaymentHistory []PaymentHistory `json:"payment_history,omitempty"`
}

// ComputeTotals fills TotalWeight and TotalAmount from the bag count,
// per-bag weight, extra weight and rate.
func (p *Purchase) ComputeTotals() {
	bags := decimal.NewFromInt(int64(p.NumberOfBags))
	p.TotalWeight = bags.Mul(p.WeightPerBag).Add(p.ExtraWeight)
	p.TotalAmount = p.TotalWeight.Mul(p.RatePerKg)
}

// Outstanding returns the unpaid remainder of the bill.
func (p *Purchase) Outstanding() decimal.Decimal {
	return p.TotalAmount.Sub(p.PaidAmount)
}

// PaymentHistory is the append-only ledger of partial payments against a
// purchase. Purchase.PaidAmount is the running sum of these rows and never
// exceeds Purchase.TotalAmount.
type PaymentHistory struct {
	BaseModel
	PurchaseID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"purchase_id"`
	Amount      decimal.Decimal `gorm:"type:numeric;not null" json:"amount"`
	Description string          `gorm:"type:text" json:"description"`
	PaymentDate time.Time       `gorm:"not null" json:"payment_date"`
}

// TableName specifies the table name for GORM
func (PaymentHistory) TableName() string {
	return "payment_histories"
}
