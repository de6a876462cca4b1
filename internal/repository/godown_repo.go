package repository

import (
	"go-grain-trade/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GodownUtilization is a godown with its current bag usage across all
// grains, for the available-capacity listing.
type GodownUtilization struct {
	Godown            model.Godown `json:"godown"`
	UsedBags          int          `json:"used_bags"`
	AvailableCapacity *int         `json:"available_capacity,omitempty"` // nil when no capacity declared
}

type GodownRepository interface {
	FindAll() ([]model.Godown, error)
	FindByID(id uuid.UUID) (*model.Godown, error)
	Create(godown *model.Godown) error
	Update(godown *model.Godown) error
	FindAllWithUtilization() ([]GodownUtilization, error)
}

type godownRepo struct {
	db *gorm.DB
}

func NewGodownRepo(db *gorm.DB) GodownRepository {
	return &godownRepo{db}
}

func (r *godownRepo) FindAll() ([]model.Godown, error) {
	var godowns []model.Godown
	err := r.db.Order("name ASC").Find(&godowns).Error
	return godowns, err
}

func (r *godownRepo) FindByID(id uuid.UUID) (*model.Godown, error) {
	var godown model.Godown
	if err := r.db.First(&godown, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &godown, nil
}

func (r *godownRepo) Create(godown *model.Godown) error {
	return r.db.Create(godown).Error
}

func (r *godownRepo) Update(godown *model.Godown) error {
	return r.db.Save(godown).Error
}

// FindAllWithUtilization returns every godown with the bags it currently
// holds. Capacity headroom is a soft warning for the UI, not an invariant.
func (r *godownRepo) FindAllWithUtilization() ([]GodownUtilization, error) {
	godowns, err := r.FindAll()
	if err != nil {
		return nil, err
	}

	type usageRow struct {
		GodownID uuid.UUID
		Used     int
	}
	var usage []usageRow
	err = r.db.Model(&model.BagInventory{}).
		Select("godown_id, COALESCE(SUM(number_of_bags), 0) as used").
		Group("godown_id").
		Scan(&usage).Error
	if err != nil {
		return nil, err
	}

	usedBy := make(map[uuid.UUID]int, len(usage))
	for _, u := range usage {
		usedBy[u.GodownID] = u.Used
	}

	result := make([]GodownUtilization, 0, len(godowns))
	for _, g := range godowns {
		item := GodownUtilization{Godown: g, UsedBags: usedBy[g.ID]}
		if g.Capacity != nil {
			avail := *g.Capacity - item.UsedBags
			item.AvailableCapacity = &avail
		}
		result = append(result, item)
	}
	return result, nil
}
