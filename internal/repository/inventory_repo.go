package repository

import (
	"errors"
	"time"

	"go-grain-trade/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// defaultBagWeightKg is the assumed weight of a standard bag, used only for
// display-level weight/value estimates on reporting paths.
const defaultBagWeightKg = 100

// InventoryRow is one (grain, godown) ledger row joined with display names.
type InventoryRow struct {
	GrainID      uuid.UUID `json:"grain_id"`
	GodownID     uuid.UUID `json:"godown_id"`
	GrainName    string    `json:"grain_name"`
	GodownName   string    `json:"godown_name"`
	NumberOfBags int       `json:"number_of_bags"`
	LastUpdated  time.Time `json:"last_updated"`
}

// GodownStock is a godown's available bags for one grain; godowns the grain
// was never stored in report zero.
type GodownStock struct {
	GodownID      uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	AvailableBags int       `json:"available_bags"`
}

// GrainStockSummary is a per-grain rollup with an estimated value based on
// the grain's most recent sale rate.
type GrainStockSummary struct {
	GrainName    string          `json:"grain_name"`
	NumberOfBags int             `json:"number_of_bags"`
	TotalWeight  int             `json:"total_weight"` // kg, estimated
	RatePerKg    decimal.Decimal `json:"rate_per_kg"`
	Value        decimal.Decimal `json:"value"`
}

// InventorySummary is the full stock rollup for the summary endpoint.
type InventorySummary struct {
	Inventory   []GrainStockSummary `json:"inventory"`
	TotalBags   int                 `json:"total_bags"`
	TotalWeight int                 `json:"total_weight"`
	TotalValue  decimal.Decimal     `json:"total_value"`
}

// InventoryRepository serves the read-only reporting paths. None of these
// queries take locks; staleness is acceptable for display.
type InventoryRepository interface {
	ListAll() ([]InventoryRow, error)
	LowStock(threshold int) ([]InventoryRow, error)
	GodownStock(grainID uuid.UUID) ([]GodownStock, error)
	Summary() (*InventorySummary, error)
}

type inventoryRepo struct {
	db *gorm.DB
}

func NewInventoryRepo(db *gorm.DB) InventoryRepository {
	return &inventoryRepo{db}
}

func (r *inventoryRepo) ListAll() ([]InventoryRow, error) {
	var rows []InventoryRow
	err := r.db.Model(&model.BagInventory{}).
		Select(`bag_inventories.grain_id, bag_inventories.godown_id,
			grains.name AS grain_name, godowns.name AS godown_name,
			bag_inventories.number_of_bags, bag_inventories.last_updated`).
		Joins("JOIN grains ON grains.id = bag_inventories.grain_id").
		Joins("JOIN godowns ON godowns.id = bag_inventories.godown_id").
		Order("grain_name ASC, godown_name ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *inventoryRepo) LowStock(threshold int) ([]InventoryRow, error) {
	var rows []InventoryRow
	err := r.db.Model(&model.BagInventory{}).
		Select(`bag_inventories.grain_id, bag_inventories.godown_id,
			grains.name AS grain_name, godowns.name AS godown_name,
			bag_inventories.number_of_bags, bag_inventories.last_updated`).
		Joins("JOIN grains ON grains.id = bag_inventories.grain_id").
		Joins("JOIN godowns ON godowns.id = bag_inventories.godown_id").
		Where("bag_inventories.number_of_bags < ?", threshold).
		Order("bag_inventories.number_of_bags ASC").
		Scan(&rows).Error
	return rows, err
}

// GodownStock lists every godown with the bags it holds of one grain, so
// the sale form can offer a complete godown picklist with zero-filled rows.
func (r *inventoryRepo) GodownStock(grainID uuid.UUID) ([]GodownStock, error) {
	var godowns []model.Godown
	if err := r.db.Order("name ASC").Find(&godowns).Error; err != nil {
		return nil, err
	}

	var inventories []model.BagInventory
	if err := r.db.Where("grain_id = ?", grainID).Find(&inventories).Error; err != nil {
		return nil, err
	}

	bagsBy := make(map[uuid.UUID]int, len(inventories))
	for _, inv := range inventories {
		bagsBy[inv.GodownID] = inv.NumberOfBags
	}

	result := make([]GodownStock, 0, len(godowns))
	for _, g := range godowns {
		result = append(result, GodownStock{
			GodownID:      g.ID,
			Name:          g.Name,
			AvailableBags: bagsBy[g.ID],
		})
	}
	return result, nil
}

func (r *inventoryRepo) Summary() (*InventorySummary, error) {
	type grainBags struct {
		GrainID   uuid.UUID
		GrainName string
		Bags      int
	}
	var perGrain []grainBags
	err := r.db.Model(&model.BagInventory{}).
		Select("bag_inventories.grain_id, grains.name AS grain_name, COALESCE(SUM(bag_inventories.number_of_bags), 0) AS bags").
		Joins("JOIN grains ON grains.id = bag_inventories.grain_id").
		Group("bag_inventories.grain_id, grains.name").
		Order("grain_name ASC").
		Scan(&perGrain).Error
	if err != nil {
		return nil, err
	}

	summary := &InventorySummary{
		Inventory:  make([]GrainStockSummary, 0, len(perGrain)),
		TotalValue: decimal.Zero,
	}
	for _, g := range perGrain {
		rate, err := r.latestSaleRate(g.GrainID)
		if err != nil {
			return nil, err
		}
		weight := g.Bags * defaultBagWeightKg
		value := decimal.NewFromInt(int64(weight)).Mul(rate)

		summary.Inventory = append(summary.Inventory, GrainStockSummary{
			GrainName:    g.GrainName,
			NumberOfBags: g.Bags,
			TotalWeight:  weight,
			RatePerKg:    rate,
			Value:        value,
		})
		summary.TotalBags += g.Bags
		summary.TotalWeight += weight
		summary.TotalValue = summary.TotalValue.Add(value)
	}
	return summary, nil
}

// latestSaleRate returns the grain's most recent sale rate, or zero when
// the grain has never been sold.
func (r *inventoryRepo) latestSaleRate(grainID uuid.UUID) (decimal.Decimal, error) {
	var sale model.Sale
	err := r.db.Where("grain_id = ?", grainID).
		Order("created_at DESC").
		First(&sale).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return sale.RatePerKg, nil
}
