package repository

import (
	"go-grain-trade/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PurchaseRepository interface {
	FindAll() ([]model.Purchase, error)
	FindByID(id uuid.UUID) (*model.Purchase, error)
	FindPayments(purchaseID uuid.UUID) ([]model.PaymentHistory, error)
}

type purchaseRepo struct {
	db *gorm.DB
}

func NewPurchaseRepo(db *gorm.DB) PurchaseRepository {
	return &purchaseRepo{db}
}

func (r *purchaseRepo) FindAll() ([]model.Purchase, error) {
	var purchases []model.Purchase
	err := r.db.Preload("Grain").Preload("Godown").
		Order("purchase_date DESC").
		Find(&purchases).Error
	return purchases, err
}

func (r *purchaseRepo) FindByID(id uuid.UUID) (*model.Purchase, error) {
	var purchase model.Purchase
	err := r.db.Preload("Grain").Preload("Godown").
		First(&purchase, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *purchaseRepo) FindPayments(purchaseID uuid.UUID) ([]model.PaymentHistory, error) {
	var payments []model.PaymentHistory
	err := r.db.Where("purchase_id = ?", purchaseID).
		Order("payment_date DESC").
		Find(&payments).Error
	return payments, err
}
