package service

import (
	"testing"

	"go-grain-trade/internal/ledger"
	"go-grain-trade/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) createSale(t *testing.T, bags int, details []SaleGodownDetailRequest) *model.Sale {
	t.Helper()
	sale, err := e.sales.Create(&CreateSaleRequest{
		GrainID:            e.grain.ID,
		BuyerName:          "Shree Mills",
		NumberOfBags:       bags,
		TotalWeight:        decimal.NewFromInt(int64(bags) * 100),
		RatePerKg:          decimal.NewFromInt(30),
		GodownDetails:      details,
		TransportationMode: "road",
		VehicleNumber:      "MH12AB1234",
		DriverName:         "Ramesh",
	}, "tester")
	require.NoError(t, err)
	return sale
}

// Purchase 100, sell 60, fail to sell 50 with the exact shortfall reported,
// then deleting the sale restores the full 100.
func TestSaleLifecycleAgainstStock(t *testing.T) {
	env := newTestEnv(t)
	env.createPurchase(t, env.godownA.ID, 100)

	sale := env.createSale(t, 60, []SaleGodownDetailRequest{
		{GodownID: env.godownA.ID, NumberOfBags: 60},
	})
	assert.Regexp(t, `^SB-\d{8}-0001$`, sale.BillNumber)
	assert.Equal(t, 40, env.stock(t, env.godownA.ID))

	_, err := env.sales.Create(&CreateSaleRequest{
		GrainID:            env.grain.ID,
		BuyerName:          "Shree Mills",
		NumberOfBags:       50,
		TotalWeight:        decimal.NewFromInt(5000),
		RatePerKg:          decimal.NewFromInt(30),
		GodownDetails:      []SaleGodownDetailRequest{{GodownID: env.godownA.ID, NumberOfBags: 50}},
		TransportationMode: "road",
		VehicleNumber:      "MH12AB1234",
		DriverName:         "Ramesh",
	}, "tester")
	require.Error(t, err)

	var stockErr *ledger.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 40, stockErr.Available)
	assert.Equal(t, 50, stockErr.Requested)
	assert.Equal(t, 40, env.stock(t, env.godownA.ID))

	require.NoError(t, env.sales.Delete(sale.ID, "tester"))
	assert.Equal(t, 100, env.stock(t, env.godownA.ID))

	// Detail rows went with the sale.
	var details int64
	require.NoError(t, env.db.Model(&model.SaleGodownDetail{}).Count(&details).Error)
	assert.EqualValues(t, 0, details)
}

// A multi-godown sale where one leg lacks stock must leave every godown
// untouched.
func TestMultiGodownSaleAllOrNothing(t *testing.T) {
	env := newTestEnv(t)
	env.createPurchase(t, env.godownA.ID, 50)
	env.createPurchase(t, env.godownB.ID, 10)

	_, err := env.sales.Create(&CreateSaleRequest{
		GrainID:      env.grain.ID,
		BuyerName:    "Shree Mills",
		NumberOfBags: 70,
		TotalWeight:  decimal.NewFromInt(7000),
		RatePerKg:    decimal.NewFromInt(30),
		GodownDetails: []SaleGodownDetailRequest{
			{GodownID: env.godownA.ID, NumberOfBags: 50},
			{GodownID: env.godownB.ID, NumberOfBags: 20},
		},
		TransportationMode: "road",
		VehicleNumber:      "MH12AB1234",
		DriverName:         "Ramesh",
	}, "tester")
	require.Error(t, err)
	require.True(t, ledger.IsInsufficientStock(err))

	assert.Equal(t, 50, env.stock(t, env.godownA.ID))
	assert.Equal(t, 10, env.stock(t, env.godownB.ID))

	// Both legs covered: succeeds and debits each godown.
	sale := env.createSale(t, 55, []SaleGodownDetailRequest{
		{GodownID: env.godownA.ID, NumberOfBags: 50},
		{GodownID: env.godownB.ID, NumberOfBags: 5},
	})
	assert.Equal(t, 0, env.stock(t, env.godownA.ID))
	assert.Equal(t, 5, env.stock(t, env.godownB.ID))
	assert.Len(t, sale.GodownDetails, 2)
}

func TestSaleDetailSumMustMatchTotal(t *testing.T) {
	env := newTestEnv(t)
	env.createPurchase(t, env.godownA.ID, 100)

	_, err := env.sales.Create(&CreateSaleRequest{
		GrainID:            env.grain.ID,
		BuyerName:          "Shree Mills",
		NumberOfBags:       60,
		TotalWeight:        decimal.NewFromInt(6000),
		RatePerKg:          decimal.NewFromInt(30),
		GodownDetails:      []SaleGodownDetailRequest{{GodownID: env.godownA.ID, NumberOfBags: 40}},
		TransportationMode: "road",
		VehicleNumber:      "MH12AB1234",
		DriverName:         "Ramesh",
	}, "tester")
	require.ErrorIs(t, err, ErrDetailBagsMismatch)
	assert.Equal(t, 100, env.stock(t, env.godownA.ID))
}

// Editing the godown split adjusts each godown by its delta, credits the
// godowns dropped from the split, and debits new ones.
func TestSaleUpdateRebalancesSplit(t *testing.T) {
	env := newTestEnv(t)
	env.createPurchase(t, env.godownA.ID, 100)
	env.createPurchase(t, env.godownB.ID, 100)

	sale := env.createSale(t, 60, []SaleGodownDetailRequest{
		{GodownID: env.godownA.ID, NumberOfBags: 30},
		{GodownID: env.godownB.ID, NumberOfBags: 30},
	})
	assert.Equal(t, 70, env.stock(t, env.godownA.ID))
	assert.Equal(t, 70, env.stock(t, env.godownB.ID))

	// Shift the whole sale into godown A.
	bags := 60
	weight := decimal.NewFromInt(6000)
	updated, err := env.sales.Update(sale.ID, &UpdateSaleRequest{
		NumberOfBags: &bags,
		TotalWeight:  &weight,
		GodownDetails: []SaleGodownDetailRequest{
			{GodownID: env.godownA.ID, NumberOfBags: 60},
		},
	}, "tester")
	require.NoError(t, err)

	assert.Equal(t, 40, env.stock(t, env.godownA.ID))
	assert.Equal(t, 100, env.stock(t, env.godownB.ID))
	assert.Len(t, updated.GodownDetails, 1)
	assert.Equal(t, 60, updated.DetailBags())
}

func TestSaleUpdateInsufficientStockRollsBack(t *testing.T) {
	env := newTestEnv(t)
	env.createPurchase(t, env.godownA.ID, 100)

	sale := env.createSale(t, 60, []SaleGodownDetailRequest{
		{GodownID: env.godownA.ID, NumberOfBags: 60},
	})

	// Growing the sale to 150 needs 90 more than the 40 available.
	bags := 150
	weight := decimal.NewFromInt(15000)
	_, err := env.sales.Update(sale.ID, &UpdateSaleRequest{
		NumberOfBags: &bags,
		TotalWeight:  &weight,
		GodownDetails: []SaleGodownDetailRequest{
			{GodownID: env.godownA.ID, NumberOfBags: 150},
		},
	}, "tester")
	require.True(t, ledger.IsInsufficientStock(err))

	// Stock and stored split unchanged.
	assert.Equal(t, 40, env.stock(t, env.godownA.ID))
	stored, err := env.sales.GetByID(sale.ID)
	require.NoError(t, err)
	assert.Equal(t, 60, stored.DetailBags())
}

func TestSalePaymentStatus(t *testing.T) {
	env := newTestEnv(t)
	env.createPurchase(t, env.godownA.ID, 100)

	sale := env.createSale(t, 10, []SaleGodownDetailRequest{
		{GodownID: env.godownA.ID, NumberOfBags: 10},
	})
	assert.Equal(t, model.PaymentPending, sale.PaymentStatus)

	paid, err := env.sales.UpdatePaymentStatus(sale.ID, "paid", "tester")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPaid, paid.PaymentStatus)

	// Sales only flip between pending and paid.
	_, err = env.sales.UpdatePaymentStatus(sale.ID, "partially_paid", "tester")
	require.Error(t, err)
}
