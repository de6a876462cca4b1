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
	"gorm.io/gorm/clause"
)

var (
	ErrSaleNotFound       = errors.New("sale not found")
	ErrDetailBagsMismatch = errors.New("godown details do not add up to the sale's bag count")
)

type SaleGodownDetailRequest struct {
	GodownID     uuid.UUID `json:"godown_id" validate:"uuid_required"`
	NumberOfBags int       `json:"number_of_bags" validate:"required,gt=0"`
}

type CreateSaleRequest struct {
	GrainID            uuid.UUID                 `json:"grain_id" validate:"uuid_required"`
	BuyerName          string                    `json:"buyer_name" validate:"required"`
	NumberOfBags       int                       `json:"number_of_bags" validate:"required,gt=0"`
	TotalWeight        decimal.Decimal           `json:"total_weight"`
	RatePerKg          decimal.Decimal           `json:"rate_per_kg"`
	GodownDetails      []SaleGodownDetailRequest `json:"godown_details" validate:"required,min=1,dive"`
	TransportationMode string                    `json:"transportation_mode" validate:"required"`
	VehicleNumber      string                    `json:"vehicle_number" validate:"required"`
	DriverName         string                    `json:"driver_name" validate:"required"`
	LRNumber           string                    `json:"lr_number"`
	PONumber           string                    `json:"po_number"`
	BuyerGST           string                    `json:"buyer_gst"`
	SaleDate           time.Time                 `json:"sale_date"`
}

// UpdateSaleRequest carries partial edits. When GodownDetails is non-nil it
// fully replaces the stored split: per-godown ledger deltas are computed
// against the previously stored detail rows, not the aggregate total.
type UpdateSaleRequest struct {
	BuyerName          *string                   `json:"buyer_name,omitempty"`
	SaleDate           *time.Time                `json:"sale_date,omitempty"`
	TransportationMode *string                   `json:"transportation_mode,omitempty"`
	VehicleNumber      *string                   `json:"vehicle_number,omitempty"`
	DriverName         *string                   `json:"driver_name,omitempty"`
	NumberOfBags       *int                      `json:"number_of_bags,omitempty"`
	TotalWeight        *decimal.Decimal          `json:"total_weight,omitempty"`
	RatePerKg          *decimal.Decimal          `json:"rate_per_kg,omitempty"`
	GodownDetails      []SaleGodownDetailRequest `json:"godown_details,omitempty"`
}

type SaleService interface {
	Create(req *CreateSaleRequest, userID string) (*model.Sale, error)
	Update(id uuid.UUID, req *UpdateSaleRequest, userID string) (*model.Sale, error)
	Delete(id uuid.UUID, userID string) error
	UpdatePaymentStatus(id uuid.UUID, status string, userID string) (*model.Sale, error)
	GetAll() ([]model.Sale, error)
	GetByID(id uuid.UUID) (*model.Sale, error)
}

type saleService struct {
	saleRepo  repository.SaleRepository
	grainRepo repository.GrainRepository
	ledger    *ledger.Ledger
	db        *gorm.DB
	wsHub     *ws.Hub
}

func NewSaleService(
	saleRepo repository.SaleRepository,
	grainRepo repository.GrainRepository,
	lgr *ledger.Ledger,
	db *gorm.DB,
	hub *ws.Hub,
) SaleService {
	return &saleService{
		saleRepo:  saleRepo,
		grainRepo: grainRepo,
		ledger:    lgr,
		db:        db,
		wsHub:     hub,
	}
}

// Create records a sale drawing stock from one or more godowns. Every
// godown leg is debited inside the same transaction; the first leg without
// enough stock aborts the whole sale, leaving every counter untouched.
func (s *saleService) Create(req *CreateSaleRequest, userID string) (*model.Sale, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		return nil, fmt.Errorf("validation failed: field '%s' failed on tag '%s'", first.FailedField, first.Tag)
	}
	if !req.TotalWeight.IsPositive() || !req.RatePerKg.IsPositive() {
		return nil, errors.New("total_weight and rate_per_kg must be positive")
	}
	if err := checkDetailSum(req.GodownDetails, req.NumberOfBags); err != nil {
		return nil, err
	}

	if _, err := s.grainRepo.FindByID(req.GrainID); err != nil {
		return nil, ErrGrainNotFound
	}

	saleDate := req.SaleDate
	if saleDate.IsZero() {
		saleDate = time.Now().UTC()
	}

	sale := &model.Sale{
		GrainID:            req.GrainID,
		BuyerName:          req.BuyerName,
		NumberOfBags:       req.NumberOfBags,
		TotalWeight:        req.TotalWeight,
		RatePerKg:          req.RatePerKg,
		TransportationMode: req.TransportationMode,
		VehicleNumber:      req.VehicleNumber,
		DriverName:         req.DriverName,
		LRNumber:           req.LRNumber,
		PONumber:           req.PONumber,
		BuyerGST:           req.BuyerGST,
		SaleDate:           saleDate,
		PaymentStatus:      model.PaymentPending,
	}
	sale.ComputeTotalAmount()
	sale.CreatedBy = userID
	sale.UpdatedBy = userID

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, detail := range req.GodownDetails {
			if err := s.ledger.Debit(tx, req.GrainID, detail.GodownID, detail.NumberOfBags); err != nil {
				return err
			}
		}

		billNumber, err := repository.NextBillNumber(tx, "sales", repository.SaleBillPrefix)
		if err != nil {
			return err
		}
		sale.BillNumber = billNumber

		if err := tx.Create(sale).Error; err != nil {
			return err
		}
		for _, detail := range req.GodownDetails {
			row := model.SaleGodownDetail{
				SaleID:       sale.ID,
				GodownID:     detail.GodownID,
				NumberOfBags: detail.NumberOfBags,
			}
			row.CreatedBy = userID
			row.UpdatedBy = userID
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
			sale.GodownDetails = append(sale.GodownDetails, row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.wsHub.Publish("sale_created", map[string]interface{}{
		"id":             sale.ID,
		"bill_number":    sale.BillNumber,
		"grain_id":       sale.GrainID,
		"number_of_bags": sale.NumberOfBags,
		"created_by":     userID,
	})
	return sale, nil
}

// Update edits a sale. When the godown split changes, each godown's ledger
// delta is computed against the stored SaleGodownDetail rows — not the
// sale's aggregate — because the distribution itself may have moved between
// godowns. Extra bags are debited (with the stock check), returned bags are
// credited, and detail rows are replaced, all in one transaction.
func (s *saleService) Update(id uuid.UUID, req *UpdateSaleRequest, userID string) (*model.Sale, error) {
	var updated *model.Sale

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var sale model.Sale
		if err := tx.Preload("GodownDetails").First(&sale, "id = ?", id).Error; err != nil {
			return ErrSaleNotFound
		}

		if req.BuyerName != nil {
			sale.BuyerName = *req.BuyerName
		}
		if req.SaleDate != nil {
			sale.SaleDate = *req.SaleDate
		}
		if req.TransportationMode != nil {
			sale.TransportationMode = *req.TransportationMode
		}
		if req.VehicleNumber != nil {
			sale.VehicleNumber = *req.VehicleNumber
		}
		if req.DriverName != nil {
			sale.DriverName = *req.DriverName
		}
		if req.NumberOfBags != nil {
			if *req.NumberOfBags <= 0 {
				return errors.New("number_of_bags must be positive")
			}
			sale.NumberOfBags = *req.NumberOfBags
		}
		if req.TotalWeight != nil {
			if !req.TotalWeight.IsPositive() {
				return errors.New("total_weight must be positive")
			}
			sale.TotalWeight = *req.TotalWeight
		}
		if req.RatePerKg != nil {
			if !req.RatePerKg.IsPositive() {
				return errors.New("rate_per_kg must be positive")
			}
			sale.RatePerKg = *req.RatePerKg
		}
		sale.ComputeTotalAmount()
		sale.UpdatedBy = userID

		if req.GodownDetails != nil {
			if err := checkDetailSum(req.GodownDetails, sale.NumberOfBags); err != nil {
				return err
			}
			if err := s.rebalanceDetails(tx, &sale, req.GodownDetails, userID); err != nil {
				return err
			}
		} else if sale.NumberOfBags != sale.DetailBags() {
			// Changing the total requires a matching split.
			return ErrDetailBagsMismatch
		}

		// Detail rows are managed explicitly above.
		if err := tx.Omit(clause.Associations).Save(&sale).Error; err != nil {
			return err
		}
		updated = &sale
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.wsHub.Publish("sale_updated", map[string]interface{}{
		"id":          updated.ID,
		"bill_number": updated.BillNumber,
		"updated_by":  userID,
	})
	return updated, nil
}

// rebalanceDetails reconciles the stored godown split against the requested
// one, adjusting the ledger by the per-godown difference.
func (s *saleService) rebalanceDetails(tx *gorm.DB, sale *model.Sale, details []SaleGodownDetailRequest, userID string) error {
	stored := make(map[uuid.UUID]*model.SaleGodownDetail, len(sale.GodownDetails))
	for i := range sale.GodownDetails {
		stored[sale.GodownDetails[i].GodownID] = &sale.GodownDetails[i]
	}

	seen := make(map[uuid.UUID]bool, len(details))
	for _, want := range details {
		if seen[want.GodownID] {
			return fmt.Errorf("godown %s appears twice in details", want.GodownID)
		}
		seen[want.GodownID] = true

		oldBags := 0
		if prev, ok := stored[want.GodownID]; ok {
			oldBags = prev.NumberOfBags
		}
		// Positive delta draws more stock, negative returns it.
		if err := s.ledger.Adjust(tx, sale.GrainID, want.GodownID, oldBags-want.NumberOfBags); err != nil {
			return err
		}

		if prev, ok := stored[want.GodownID]; ok {
			prev.NumberOfBags = want.NumberOfBags
			prev.UpdatedBy = userID
			if err := tx.Save(prev).Error; err != nil {
				return err
			}
		} else {
			row := model.SaleGodownDetail{
				SaleID:       sale.ID,
				GodownID:     want.GodownID,
				NumberOfBags: want.NumberOfBags,
			}
			row.CreatedBy = userID
			row.UpdatedBy = userID
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
	}

	// Godowns dropped from the split get their bags back.
	for godownID, prev := range stored {
		if seen[godownID] {
			continue
		}
		if err := s.ledger.Credit(tx, sale.GrainID, godownID, prev.NumberOfBags); err != nil {
			return err
		}
		if err := tx.Delete(prev).Error; err != nil {
			return err
		}
	}

	// Reload so the caller returns the fresh split.
	return tx.Where("sale_id = ?", sale.ID).Find(&sale.GodownDetails).Error
}

// Delete restores bags to exactly the godowns and amounts recorded in the
// sale's detail rows, then removes the sale. Crediting only increases
// counters, so deletion cannot fail the stock check.
func (s *saleService) Delete(id uuid.UUID, userID string) error {
	var deleted model.Sale

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var sale model.Sale
		if err := tx.Preload("GodownDetails").First(&sale, "id = ?", id).Error; err != nil {
			return ErrSaleNotFound
		}

		for _, detail := range sale.GodownDetails {
			if err := s.ledger.Credit(tx, sale.GrainID, detail.GodownID, detail.NumberOfBags); err != nil {
				return err
			}
		}

		if err := tx.Where("sale_id = ?", sale.ID).Delete(&model.SaleGodownDetail{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&sale).Update("deleted_by", userID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&sale).Error; err != nil {
			return err
		}
		deleted = sale
		return nil
	})
	if err != nil {
		return err
	}

	s.wsHub.Publish("sale_deleted", map[string]interface{}{
		"id":          deleted.ID,
		"bill_number": deleted.BillNumber,
		"deleted_by":  userID,
	})
	return nil
}

func (s *saleService) UpdatePaymentStatus(id uuid.UUID, status string, userID string) (*model.Sale, error) {
	if status != string(model.PaymentPending) && status != string(model.PaymentPaid) {
		return nil, errors.New("invalid status")
	}

	sale, err := s.saleRepo.FindByID(id)
	if err != nil {
		return nil, ErrSaleNotFound
	}

	if err := s.db.Model(&model.Sale{}).Where("id = ?", sale.ID).
		Updates(map[string]interface{}{
			"payment_status": status,
			"updated_by":     userID,
		}).Error; err != nil {
		return nil, err
	}
	sale.PaymentStatus = model.PaymentStatus(status)
	sale.UpdatedBy = userID
	return sale, nil
}

func (s *saleService) GetAll() ([]model.Sale, error) {
	return s.saleRepo.FindAll()
}

func (s *saleService) GetByID(id uuid.UUID) (*model.Sale, error) {
	return s.saleRepo.FindByID(id)
}

func checkDetailSum(details []SaleGodownDetailRequest, totalBags int) error {
	sum := 0
	for _, d := range details {
		sum += d.NumberOfBags
	}
	if sum != totalBags {
		return ErrDetailBagsMismatch
	}
	return nil
}
