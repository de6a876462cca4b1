package repository

import (
	"go-grain-trade/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GrainRepository interface {
	FindAll() ([]model.Grain, error)
	FindByID(id uuid.UUID) (*model.Grain, error)
	FindByName(name string) (*model.Grain, error)
	Create(grain *model.Grain) error
	Update(grain *model.Grain) error
	Delete(id uuid.UUID, deletedBy string) error
	CountReferences(id uuid.UUID) (int64, error)
}

type grainRepo struct {
	db *gorm.DB
}

func NewGrainRepo(db *gorm.DB) GrainRepository {
	return &grainRepo{db}
}

func (r *grainRepo) FindAll() ([]model.Grain, error) {
	var grains []model.Grain
	err := r.db.Order("name ASC").Find(&grains).Error
	return grains, err
}

func (r *grainRepo) FindByID(id uuid.UUID) (*model.Grain, error) {
	var grain model.Grain
	if err := r.db.First(&grain, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &grain, nil
}

func (r *grainRepo) FindByName(name string) (*model.Grain, error) {
	var grain model.Grain
	if err := r.db.First(&grain, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &grain, nil
}

func (r *grainRepo) Create(grain *model.Grain) error {
	return r.db.Create(grain).Error
}

func (r *grainRepo) Update(grain *model.Grain) error {
	return r.db.Save(grain).Error
}

func (r *grainRepo) Delete(id uuid.UUID, deletedBy string) error {
	if err := r.db.Model(&model.Grain{}).Where("id = ?", id).Update("deleted_by", deletedBy).Error; err != nil {
		return err
	}
	return r.db.Delete(&model.Grain{}, "id = ?", id).Error
}

// CountReferences counts non-deleted purchases and sales pointing at the
// grain. A referenced grain must not be deleted.
func (r *grainRepo) CountReferences(id uuid.UUID) (int64, error) {
	var purchases, sales int64
	if err := r.db.Model(&model.Purchase{}).Where("grain_id = ?", id).Count(&purchases).Error; err != nil {
		return 0, err
	}
	if err := r.db.Model(&model.Sale{}).Where("grain_id = ?", id).Count(&sales).Error; err != nil {
		return 0, err
	}
	return purchases + sales, nil
}
