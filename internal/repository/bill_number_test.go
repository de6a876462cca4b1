package repository

import (
	"fmt"
	"testing"
	"time"

	"go-grain-trade/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openRepoTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.Grain{}, &model.Godown{}, &model.BagInventory{},
		&model.Purchase{}, &model.Sale{}, &model.SaleGodownDetail{},
	))
	return db
}

func insertPurchase(t *testing.T, db *gorm.DB, billNumber string) *model.Purchase {
	t.Helper()
	p := &model.Purchase{
		BillNumber:    billNumber,
		GrainID:       uuid.New(),
		GodownID:      uuid.New(),
		NumberOfBags:  10,
		WeightPerBag:  decimal.NewFromInt(100),
		RatePerKg:     decimal.NewFromInt(20),
		TotalWeight:   decimal.NewFromInt(1000),
		TotalAmount:   decimal.NewFromInt(20000),
		PaymentStatus: model.PaymentPending,
		SupplierName:  "Supplier",
		PurchaseDate:  time.Now(),
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func TestNextBillNumberStartsAtOne(t *testing.T) {
	db := openRepoTestDB(t)

	got, err := NextBillNumber(db, "purchases", PurchaseBillPrefix)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("PB-%s-0001", time.Now().Format("20060102")), got)
}

func TestNextBillNumberIncrementsWithinDay(t *testing.T) {
	db := openRepoTestDB(t)
	datePart := time.Now().Format("20060102")

	insertPurchase(t, db, fmt.Sprintf("PB-%s-0001", datePart))
	insertPurchase(t, db, fmt.Sprintf("PB-%s-0007", datePart))

	got, err := NextBillNumber(db, "purchases", PurchaseBillPrefix)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("PB-%s-0008", datePart), got)
}

func TestNextBillNumberIgnoresOtherDaysAndPrefixes(t *testing.T) {
	db := openRepoTestDB(t)
	datePart := time.Now().Format("20060102")
	yesterday := time.Now().AddDate(0, 0, -1).Format("20060102")

	insertPurchase(t, db, fmt.Sprintf("PB-%s-0042", yesterday))

	got, err := NextBillNumber(db, "purchases", PurchaseBillPrefix)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("PB-%s-0001", datePart), got, "sequence restarts each day")

	// Sales carry their own sequence.
	got, err = NextBillNumber(db, "sales", SaleBillPrefix)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("SB-%s-0001", datePart), got)
}

// A deleted bill's number must never be reissued: the query runs unscoped,
// so soft-deleted rows still count.
func TestNextBillNumberSkipsDeletedBills(t *testing.T) {
	db := openRepoTestDB(t)
	datePart := time.Now().Format("20060102")

	p := insertPurchase(t, db, fmt.Sprintf("PB-%s-0003", datePart))
	require.NoError(t, db.Delete(p).Error)

	got, err := NextBillNumber(db, "purchases", PurchaseBillPrefix)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("PB-%s-0004", datePart), got)
}
