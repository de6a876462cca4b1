package service

import (
	"testing"

	"go-grain-trade/internal/ledger"
	"go-grain-trade/internal/model"
	"go-grain-trade/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testEnv wires the services against an isolated in-memory database. One
// connection makes SQLite serialize transactions like postgres row locks.
type testEnv struct {
	db        *gorm.DB
	ledger    *ledger.Ledger
	purchases PurchaseService
	sales     SaleService
	grain     model.Grain
	godownA   model.Godown
	godownB   model.Godown
}

func newTestEnv(t *testing.T) *testEnv {
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
		&model.Purchase{}, &model.PaymentHistory{},
		&model.Sale{}, &model.SaleGodownDetail{},
	))

	env := &testEnv{db: db, ledger: ledger.New(db)}

	env.grain = model.Grain{Name: "Wheat"}
	require.NoError(t, db.Create(&env.grain).Error)
	env.godownA = model.Godown{Name: "Godown A"}
	require.NoError(t, db.Create(&env.godownA).Error)
	env.godownB = model.Godown{Name: "Godown B"}
	require.NoError(t, db.Create(&env.godownB).Error)

	grainRepo := repository.NewGrainRepo(db)
	godownRepo := repository.NewGodownRepo(db)
	env.purchases = NewPurchaseService(repository.NewPurchaseRepo(db), grainRepo, godownRepo, env.ledger, db, nil)
	env.sales = NewSaleService(repository.NewSaleRepo(db), grainRepo, env.ledger, db, nil)

	return env
}

func (e *testEnv) stock(t *testing.T, godownID uuid.UUID) int {
	t.Helper()
	bags, err := e.ledger.Read(e.grain.ID, godownID)
	require.NoError(t, err)
	return bags
}

func (e *testEnv) createPurchase(t *testing.T, godownID uuid.UUID, bags int) *model.Purchase {
	t.Helper()
	p, err := e.purchases.Create(&CreatePurchaseRequest{
		GrainID:      e.grain.ID,
		GodownID:     godownID,
		NumberOfBags: bags,
		WeightPerBag: decimal.NewFromInt(100),
		RatePerKg:    decimal.NewFromInt(25),
		SupplierName: "Hari Om Traders",
	}, "tester")
	require.NoError(t, err)
	return p
}

func TestPurchaseCreateCreditsStock(t *testing.T) {
	env := newTestEnv(t)

	p := env.createPurchase(t, env.godownA.ID, 100)

	assert.Equal(t, 100, env.stock(t, env.godownA.ID))
	assert.Regexp(t, `^PB-\d{8}-0001$`, p.BillNumber)
	assert.Equal(t, model.PaymentPending, p.PaymentStatus)
	// 100 bags * 100 kg * 25/kg
	assert.True(t, p.TotalAmount.Equal(decimal.NewFromInt(250000)),
		"total amount %s", p.TotalAmount)

	p2 := env.createPurchase(t, env.godownA.ID, 20)
	assert.Regexp(t, `^PB-\d{8}-0002$`, p2.BillNumber)
	assert.Equal(t, 120, env.stock(t, env.godownA.ID))
}

func TestPurchaseExtraWeightInTotals(t *testing.T) {
	env := newTestEnv(t)

	p, err := env.purchases.Create(&CreatePurchaseRequest{
		GrainID:      env.grain.ID,
		GodownID:     env.godownA.ID,
		NumberOfBags: 10,
		WeightPerBag: decimal.NewFromInt(100),
		ExtraWeight:  decimal.NewFromInt(37),
		RatePerKg:    decimal.NewFromInt(2),
		SupplierName: "Hari Om Traders",
	}, "tester")
	require.NoError(t, err)

	assert.True(t, p.TotalWeight.Equal(decimal.NewFromInt(1037)))
	assert.True(t, p.TotalAmount.Equal(decimal.NewFromInt(2074)))
	// Only whole bags enter the ledger.
	assert.Equal(t, 10, env.stock(t, env.godownA.ID))
}

func TestPurchaseDeleteReversesStock(t *testing.T) {
	env := newTestEnv(t)

	p := env.createPurchase(t, env.godownA.ID, 100)
	require.NoError(t, env.purchases.Delete(p.ID, "tester"))

	assert.Equal(t, 0, env.stock(t, env.godownA.ID))
	_, err := env.purchases.GetByID(p.ID)
	assert.Error(t, err)
}

func TestPurchaseDeleteBlockedWhenStockConsumed(t *testing.T) {
	env := newTestEnv(t)

	p := env.createPurchase(t, env.godownA.ID, 100)

	_, err := env.sales.Create(&CreateSaleRequest{
		GrainID:            env.grain.ID,
		BuyerName:          "Shree Mills",
		NumberOfBags:       60,
		TotalWeight:        decimal.NewFromInt(6000),
		RatePerKg:          decimal.NewFromInt(30),
		GodownDetails:      []SaleGodownDetailRequest{{GodownID: env.godownA.ID, NumberOfBags: 60}},
		TransportationMode: "road",
		VehicleNumber:      "MH12AB1234",
		DriverName:         "Ramesh",
	}, "tester")
	require.NoError(t, err)

	err = env.purchases.Delete(p.ID, "tester")
	require.ErrorIs(t, err, ledger.ErrInventoryInUse)

	// Nothing changed: bill still there, stock untouched.
	assert.Equal(t, 40, env.stock(t, env.godownA.ID))
	_, err = env.purchases.GetByID(p.ID)
	assert.NoError(t, err)
}

func TestPurchaseUpdateMovesStockBetweenGodowns(t *testing.T) {
	env := newTestEnv(t)

	p := env.createPurchase(t, env.godownA.ID, 100)

	newGodown := env.godownB.ID
	updated, err := env.purchases.Update(p.ID, &UpdatePurchaseRequest{
		GodownID: &newGodown,
	}, "tester")
	require.NoError(t, err)

	assert.Equal(t, env.godownB.ID, updated.GodownID)
	assert.Equal(t, 0, env.stock(t, env.godownA.ID))
	assert.Equal(t, 100, env.stock(t, env.godownB.ID))
}

func TestPurchaseUpdateBlockedWhenOldStockConsumed(t *testing.T) {
	env := newTestEnv(t)

	p := env.createPurchase(t, env.godownA.ID, 100)

	_, err := env.sales.Create(&CreateSaleRequest{
		GrainID:            env.grain.ID,
		BuyerName:          "Shree Mills",
		NumberOfBags:       80,
		TotalWeight:        decimal.NewFromInt(8000),
		RatePerKg:          decimal.NewFromInt(30),
		GodownDetails:      []SaleGodownDetailRequest{{GodownID: env.godownA.ID, NumberOfBags: 80}},
		TransportationMode: "road",
		VehicleNumber:      "MH12AB1234",
		DriverName:         "Ramesh",
	}, "tester")
	require.NoError(t, err)

	// Only 20 bags remain of the original 100; the reversal cannot cover
	// the full old contribution.
	fewer := 50
	_, err = env.purchases.Update(p.ID, &UpdatePurchaseRequest{NumberOfBags: &fewer}, "tester")
	require.ErrorIs(t, err, ledger.ErrInventoryInUse)
	assert.Equal(t, 20, env.stock(t, env.godownA.ID))
}

func TestPurchaseUpdateBagCountRebalances(t *testing.T) {
	env := newTestEnv(t)

	p := env.createPurchase(t, env.godownA.ID, 100)

	more := 150
	updated, err := env.purchases.Update(p.ID, &UpdatePurchaseRequest{NumberOfBags: &more}, "tester")
	require.NoError(t, err)

	assert.Equal(t, 150, updated.NumberOfBags)
	assert.Equal(t, 150, env.stock(t, env.godownA.ID))
	// Totals recomputed from the new count.
	assert.True(t, updated.TotalWeight.Equal(decimal.NewFromInt(15000)))
}

func TestRecordPaymentRunningSum(t *testing.T) {
	env := newTestEnv(t)

	p := env.createPurchase(t, env.godownA.ID, 10) // total 25000

	p1, err := env.purchases.RecordPayment(p.ID, &RecordPaymentRequest{
		Status: "partially_paid",
		Amount: decimal.NewFromInt(10000),
	}, "tester")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPartiallyPaid, p1.PaymentStatus)
	assert.True(t, p1.PaidAmount.Equal(decimal.NewFromInt(10000)))

	// A partial payment must stay below the outstanding amount.
	_, err = env.purchases.RecordPayment(p.ID, &RecordPaymentRequest{
		Status: "partially_paid",
		Amount: decimal.NewFromInt(15000),
	}, "tester")
	require.Error(t, err)

	p2, err := env.purchases.RecordPayment(p.ID, &RecordPaymentRequest{Status: "paid"}, "tester")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPaid, p2.PaymentStatus)
	assert.True(t, p2.PaidAmount.Equal(p2.TotalAmount))
	assert.True(t, p2.Outstanding().IsZero())

	payments, err := env.purchases.GetPayments(p.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 2)
}

func TestCreatePurchaseValidation(t *testing.T) {
	env := newTestEnv(t)

	// Unknown grain.
	_, err := env.purchases.Create(&CreatePurchaseRequest{
		GrainID:      uuid.New(),
		GodownID:     env.godownA.ID,
		NumberOfBags: 10,
		WeightPerBag: decimal.NewFromInt(100),
		RatePerKg:    decimal.NewFromInt(25),
		SupplierName: "Hari Om Traders",
	}, "tester")
	assert.ErrorIs(t, err, ErrGrainNotFound)

	// Zero bags.
	_, err = env.purchases.Create(&CreatePurchaseRequest{
		GrainID:      env.grain.ID,
		GodownID:     env.godownA.ID,
		NumberOfBags: 0,
		WeightPerBag: decimal.NewFromInt(100),
		RatePerKg:    decimal.NewFromInt(25),
		SupplierName: "Hari Om Traders",
	}, "tester")
	assert.Error(t, err)

	// Non-positive rate.
	_, err = env.purchases.Create(&CreatePurchaseRequest{
		GrainID:      env.grain.ID,
		GodownID:     env.godownA.ID,
		NumberOfBags: 10,
		WeightPerBag: decimal.NewFromInt(100),
		RatePerKg:    decimal.Zero,
		SupplierName: "Hari Om Traders",
	}, "tester")
	assert.Error(t, err)
}
