package service

import (
	"errors"
	"fmt"
	"time"

	"go-grain-trade/internal/ledger"
	"go-grain-trade/internal/model"
	"go-grain-trade/internal/repository"
	"go-grain-trade/internal/ws"
	"go-grain-trade/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrGrainNotFound    = errors.New("grain not found")
	ErrGodownNotFound   = errors.New("godown not found")
	ErrPurchaseNotFound = errors.New("purchase not found")
)

type CreatePurchaseRequest struct {
	GrainID      uuid.UUID       `json:"grain_id" validate:"uuid_required"`
	GodownID     uuid.UUID       `json:"godown_id" validate:"uuid_required"`
	NumberOfBags int             `json:"number_of_bags" validate:"required,gt=0"`
	WeightPerBag decimal.Decimal `json:"weight_per_bag"`
	ExtraWeight  decimal.Decimal `json:"extra_weight"`
	RatePerKg    decimal.Decimal `json:"rate_per_kg"`
	SupplierName string          `json:"supplier_name" validate:"required"`
	PurchaseDate time.Time       `json:"purchase_date"`
}

// UpdatePurchaseRequest carries partial edits; nil fields keep the stored
// value. Quantity or godown changes reverse the old ledger contribution and
// apply the new one in the same transaction.
type UpdatePurchaseRequest struct {
	SupplierName *string          `json:"supplier_name,omitempty"`
	PurchaseDate *time.Time       `json:"purchase_date,omitempty"`
	GodownID     *uuid.UUID       `json:"godown_id,omitempty"`
	NumberOfBags *int             `json:"number_of_bags,omitempty"`
	WeightPerBag *decimal.Decimal `json:"weight_per_bag,omitempty"`
	ExtraWeight  *decimal.Decimal `json:"extra_weight,omitempty"`
	RatePerKg    *decimal.Decimal `json:"rate_per_kg,omitempty"`
}

type RecordPaymentRequest struct {
	Status      string          `json:"status"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

type PurchaseService interface {
	Create(req *CreatePurchaseRequest, userID string) (*model.Purchase, error)
	Update(id uuid.UUID, req *UpdatePurchaseRequest, userID string) (*model.Purchase, error)
	Delete(id uuid.UUID, userID string) error
	RecordPayment(id uuid.UUID, req *RecordPaymentRequest, userID string) (*model.Purchase, error)
	GetAll() ([]model.Purchase, error)
	GetByID(id uuid.UUID) (*model.Purchase, error)
	GetPayments(id uuid.UUID) ([]model.PaymentHistory, error)
}

type purchaseService struct {
	purchaseRepo repository.PurchaseRepository
	grainRepo    repository.GrainRepository
	godownRepo   repository.GodownRepository
	ledger       *ledger.Ledger
	db           *gorm.DB
	wsHub        *ws.Hub
}

func NewPurchaseService(
	purchaseRepo repository.PurchaseRepository,
	grainRepo repository.GrainRepository,
	godownRepo repository.GodownRepository,
	lgr *ledger.Ledger,
	db *gorm.DB,
	hub *ws.Hub,
) PurchaseService {
	return &purchaseService{
		purchaseRepo: purchaseRepo,
		grainRepo:    grainRepo,
		godownRepo:   godownRepo,
		ledger:       lgr,
		db:           db,
		wsHub:        hub,
	}
}

func (s *purchaseService) Create(req *CreatePurchaseRequest, userID string) (*model.Purchase, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		return nil, fmt.Errorf("validation failed: field '%s' failed on tag '%s'", first.FailedField, first.Tag)
	}
	if !req.WeightPerBag.IsPositive() || !req.RatePerKg.IsPositive() {
		return nil, errors.New("weight_per_bag and rate_per_kg must be positive")
	}
	if req.ExtraWeight.IsNegative() {
		return nil, errors.New("extra_weight cannot be negative")
	}

	if _, err := s.grainRepo.FindByID(req.GrainID); err != nil {
		return nil, ErrGrainNotFound
	}
	if _, err := s.godownRepo.FindByID(req.GodownID); err != nil {
		return nil, ErrGodownNotFound
	}

	purchaseDate := req.PurchaseDate
	if purchaseDate.IsZero() {
		purchaseDate = time.Now().UTC()
	}

	purchase := &model.Purchase{
		GrainID:       req.GrainID,
		GodownID:      req.GodownID,
		NumberOfBags:  req.NumberOfBags,
		WeightPerBag:  req.WeightPerBag,
		ExtraWeight:   req.ExtraWeight,
		RatePerKg:     req.RatePerKg,
		SupplierName:  req.SupplierName,
		PurchaseDate:  purchaseDate,
		PaymentStatus: model.PaymentPending,
		PaidAmount:    decimal.Zero,
	}
	purchase.ComputeTotals()
	purchase.CreatedBy = userID
	purchase.UpdatedBy = userID

	err := s.db.Transaction(func(tx *gorm.DB) error {
		billNumber, err := repository.NextBillNumber(tx, "purchases", repository.PurchaseBillPrefix)
		if err != nil {
			return err
		}
		purchase.BillNumber = billNumber

		if err := tx.Create(purchase).Error; err != nil {
			return err
		}
		return s.ledger.Credit(tx, purchase.GrainID, purchase.GodownID, purchase.NumberOfBags)
	})
	if err != nil {
		return nil, err
	}

	s.wsHub.Publish("purchase_created", map[string]interface{}{
		"id":             purchase.ID,
		"bill_number":    purchase.BillNumber,
		"grain_id":       purchase.GrainID,
		"godown_id":      purchase.GodownID,
		"number_of_bags": purchase.NumberOfBags,
		"created_by":     userID,
	})
	return purchase, nil
}

// Update edits a purchase. The ledger delta is computed against the values
// stored before the edit: the old (grain, godown) pair is debited by the
// old bag count and the new pair credited by the new count, both inside one
// transaction. If the old contribution was already consumed the debit fails
// and the edit is rejected with ErrInventoryInUse.
func (s *purchaseService) Update(id uuid.UUID, req *UpdatePurchaseRequest, userID string) (*model.Purchase, error) {
	var updated *model.Purchase

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var purchase model.Purchase
		if err := tx.First(&purchase, "id = ?", id).Error; err != nil {
			return ErrPurchaseNotFound
		}

		oldGodownID := purchase.GodownID
		oldBags := purchase.NumberOfBags

		if req.SupplierName != nil {
			purchase.SupplierName = *req.SupplierName
		}
		if req.PurchaseDate != nil {
			purchase.PurchaseDate = *req.PurchaseDate
		}
		if req.GodownID != nil {
			if _, err := s.godownRepo.FindByID(*req.GodownID); err != nil {
				return ErrGodownNotFound
			}
			purchase.GodownID = *req.GodownID
		}
		if req.NumberOfBags != nil {
			if *req.NumberOfBags <= 0 {
				return errors.New("number_of_bags must be positive")
			}
			purchase.NumberOfBags = *req.NumberOfBags
		}
		if req.WeightPerBag != nil {
			if !req.WeightPerBag.IsPositive() {
				return errors.New("weight_per_bag must be positive")
			}
			purchase.WeightPerBag = *req.WeightPerBag
		}
		if req.ExtraWeight != nil {
			if req.ExtraWeight.IsNegative() {
				return errors.New("extra_weight cannot be negative")
			}
			purchase.ExtraWeight = *req.ExtraWeight
		}
		if req.RatePerKg != nil {
			if !req.RatePerKg.IsPositive() {
				return errors.New("rate_per_kg must be positive")
			}
			purchase.RatePerKg = *req.RatePerKg
		}
		purchase.ComputeTotals()
		purchase.UpdatedBy = userID

		if purchase.GodownID != oldGodownID || purchase.NumberOfBags != oldBags {
			if err := s.ledger.Debit(tx, purchase.GrainID, oldGodownID, oldBags); err != nil {
				if ledger.IsInsufficientStock(err) {
					return ledger.ErrInventoryInUse
				}
				return err
			}
			if err := s.ledger.Credit(tx, purchase.GrainID, purchase.GodownID, purchase.NumberOfBags); err != nil {
				return err
			}
		}

		if err := tx.Save(&purchase).Error; err != nil {
			return err
		}
		updated = &purchase
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.wsHub.Publish("purchase_updated", map[string]interface{}{
		"id":          updated.ID,
		"bill_number": updated.BillNumber,
		"updated_by":  userID,
	})
	return updated, nil
}

// Delete reverses the purchase's ledger contribution before removing the
// bill. If the credited bags were already sold the reversal would drive the
// counter negative, so the deletion fails with ErrInventoryInUse and no
// partial effects remain.
func (s *purchaseService) Delete(id uuid.UUID, userID string) error {
	var deleted model.Purchase

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var purchase model.Purchase
		if err := tx.First(&purchase, "id = ?", id).Error; err != nil {
			return ErrPurchaseNotFound
		}

		if err := s.ledger.Debit(tx, purchase.GrainID, purchase.GodownID, purchase.NumberOfBags); err != nil {
			if ledger.IsInsufficientStock(err) {
				return ledger.ErrInventoryInUse
			}
			return err
		}

		if err := tx.Where("purchase_id = ?", purchase.ID).Delete(&model.PaymentHistory{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&purchase).Update("deleted_by", userID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&purchase).Error; err != nil {
			return err
		}
		deleted = purchase
		return nil
	})
	if err != nil {
		return err
	}

	s.wsHub.Publish("purchase_deleted", map[string]interface{}{
		"id":          deleted.ID,
		"bill_number": deleted.BillNumber,
		"deleted_by":  userID,
	})
	return nil
}

// RecordPayment updates the bill's payment status, appending a
// PaymentHistory row for any amount received. The running paid amount can
// never exceed the bill total.
func (s *purchaseService) RecordPayment(id uuid.UUID, req *RecordPaymentRequest, userID string) (*model.Purchase, error) {
	if !model.ValidPaymentStatus(req.Status) {
		return nil, errors.New("invalid payment status")
	}

	var updated *model.Purchase
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var purchase model.Purchase
		if err := tx.First(&purchase, "id = ?", id).Error; err != nil {
			return ErrPurchaseNotFound
		}

		amount := req.Amount
		switch model.PaymentStatus(req.Status) {
		case model.PaymentPartiallyPaid:
			if !amount.IsPositive() {
				return errors.New("amount is required for partially paid status")
			}
			if amount.GreaterThanOrEqual(purchase.Outstanding()) {
				return errors.New("amount should be less than the outstanding total for partially paid status")
			}
		case model.PaymentPaid:
			// Settle whatever remains.
			amount = purchase.Outstanding()
		case model.PaymentPending:
			amount = decimal.Zero
		}

		if amount.IsPositive() {
			history := model.PaymentHistory{
				PurchaseID:  purchase.ID,
				Amount:      amount,
				Description: req.Description,
				PaymentDate: time.Now().UTC(),
			}
			history.CreatedBy = userID
			history.UpdatedBy = userID
			if err := tx.Create(&history).Error; err != nil {
				return err
			}
			purchase.PaidAmount = purchase.PaidAmount.Add(amount)
		}

		purchase.PaymentStatus = model.PaymentStatus(req.Status)
		purchase.UpdatedBy = userID
		if err := tx.Save(&purchase).Error; err != nil {
			return err
		}
		updated = &purchase
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *purchaseService) GetAll() ([]model.Purchase, error) {
	return s.purchaseRepo.FindAll()
}

func (s *purchaseService) GetByID(id uuid.UUID) (*model.Purchase, error) {
	return s.purchaseRepo.FindByID(id)
}

func (s *purchaseService) GetPayments(id uuid.UUID) ([]model.PaymentHistory, error) {
	if _, err := s.purchaseRepo.FindByID(id); err != nil {
		return nil, ErrPurchaseNotFound
	}
	return s.purchaseRepo.FindPayments(id)
}
