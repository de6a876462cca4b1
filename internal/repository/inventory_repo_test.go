package repository

import (
	"testing"
	"time"

	"go-grain-trade/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedInventory(t *testing.T, db *gorm.DB) (model.Grain, model.Godown, model.Godown) {
	t.Helper()

	grain := model.Grain{Name: "Wheat"}
	require.NoError(t, db.Create(&grain).Error)
	godownA := model.Godown{Name: "Godown A"}
	require.NoError(t, db.Create(&godownA).Error)
	godownB := model.Godown{Name: "Godown B"}
	require.NoError(t, db.Create(&godownB).Error)

	require.NoError(t, db.Create(&model.BagInventory{
		GrainID:      grain.ID,
		GodownID:     godownA.ID,
		NumberOfBags: 120,
		LastUpdated:  time.Now(),
	}).Error)

	return grain, godownA, godownB
}

func TestListAllJoinsNames(t *testing.T) {
	db := openRepoTestDB(t)
	seedInventory(t, db)

	repo := NewInventoryRepo(db)
	rows, err := repo.ListAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Wheat", rows[0].GrainName)
	assert.Equal(t, "Godown A", rows[0].GodownName)
	assert.Equal(t, 120, rows[0].NumberOfBags)
}

func TestGodownStockZeroFillsUnstockedGodowns(t *testing.T) {
	db := openRepoTestDB(t)
	grain, _, _ := seedInventory(t, db)

	repo := NewInventoryRepo(db)
	stock, err := repo.GodownStock(grain.ID)
	require.NoError(t, err)
	require.Len(t, stock, 2, "every godown listed, stocked or not")

	byName := map[string]int{}
	for _, s := range stock {
		byName[s.Name] = s.AvailableBags
	}
	assert.Equal(t, 120, byName["Godown A"])
	assert.Equal(t, 0, byName["Godown B"])
}

func TestLowStockThreshold(t *testing.T) {
	db := openRepoTestDB(t)
	grain, _, godownB := seedInventory(t, db)

	require.NoError(t, db.Create(&model.BagInventory{
		GrainID:      grain.ID,
		GodownID:     godownB.ID,
		NumberOfBags: 8,
		LastUpdated:  time.Now(),
	}).Error)

	repo := NewInventoryRepo(db)
	rows, err := repo.LowStock(50)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Godown B", rows[0].GodownName)
	assert.Equal(t, 8, rows[0].NumberOfBags)
}

func TestSummaryUsesLatestSaleRate(t *testing.T) {
	db := openRepoTestDB(t)
	grain, _, _ := seedInventory(t, db)

	sale := model.Sale{
		BillNumber:         "SB-20260827-0001",
		GrainID:            grain.ID,
		BuyerName:          "Shree Mills",
		NumberOfBags:       10,
		TotalWeight:        decimal.NewFromInt(1000),
		RatePerKg:          decimal.NewFromInt(30),
		TotalAmount:        decimal.NewFromInt(30000),
		TransportationMode: "road",
		VehicleNumber:      "MH12AB1234",
		DriverName:         "Ramesh",
		SaleDate:           time.Now(),
		PaymentStatus:      model.PaymentPending,
	}
	require.NoError(t, db.Create(&sale).Error)

	repo := NewInventoryRepo(db)
	summary, err := repo.Summary()
	require.NoError(t, err)
	require.Len(t, summary.Inventory, 1)

	row := summary.Inventory[0]
	assert.Equal(t, "Wheat", row.GrainName)
	assert.Equal(t, 120, row.NumberOfBags)
	assert.Equal(t, 120*100, row.TotalWeight)
	assert.True(t, row.RatePerKg.Equal(decimal.NewFromInt(30)))
	assert.True(t, row.Value.Equal(decimal.NewFromInt(360000)))
	assert.Equal(t, 120, summary.TotalBags)
}
