package ledger

import (
	"sync"
	"testing"

	"go-grain-trade/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB gives each test an isolated in-memory database. A single
// connection makes SQLite serialize transactions the way row locks do on
// postgres.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&model.BagInventory{}))
	return db
}

func TestCreditCreatesRowAndAccumulates(t *testing.T) {
	db := openTestDB(t)
	l := New(db)
	grainID, godownID := uuid.New(), uuid.New()

	require.NoError(t, l.Credit(db, grainID, godownID, 100))

	bags, err := l.Read(grainID, godownID)
	require.NoError(t, err)
	assert.Equal(t, 100, bags)

	require.NoError(t, l.Credit(db, grainID, godownID, 25))
	bags, err = l.Read(grainID, godownID)
	require.NoError(t, err)
	assert.Equal(t, 125, bags)

	// Still exactly one row for the pair.
	var count int64
	require.NoError(t, db.Model(&model.BagInventory{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestDebitMissingRowReportsZeroAvailable(t *testing.T) {
	db := openTestDB(t)
	l := New(db)
	grainID, godownID := uuid.New(), uuid.New()

	err := l.Debit(db, grainID, godownID, 10)
	require.Error(t, err)
	require.True(t, IsInsufficientStock(err))

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 0, stockErr.Available)
	assert.Equal(t, 10, stockErr.Requested)
}

func TestDebitNeverGoesNegative(t *testing.T) {
	db := openTestDB(t)
	l := New(db)
	grainID, godownID := uuid.New(), uuid.New()

	require.NoError(t, l.Credit(db, grainID, godownID, 40))

	err := l.Debit(db, grainID, godownID, 50)
	require.Error(t, err)

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 40, stockErr.Available)
	assert.Equal(t, 50, stockErr.Requested)
	assert.Equal(t, godownID, stockErr.GodownID)

	// Failed debit must leave the counter untouched.
	bags, err := l.Read(grainID, godownID)
	require.NoError(t, err)
	assert.Equal(t, 40, bags)

	// Draining to exactly zero is allowed.
	require.NoError(t, l.Debit(db, grainID, godownID, 40))
	bags, err = l.Read(grainID, godownID)
	require.NoError(t, err)
	assert.Equal(t, 0, bags)
}

func TestDebitCreditConservation(t *testing.T) {
	db := openTestDB(t)
	l := New(db)
	grainID, godownID := uuid.New(), uuid.New()

	require.NoError(t, l.Credit(db, grainID, godownID, 100))
	require.NoError(t, l.Debit(db, grainID, godownID, 30))
	require.NoError(t, l.Credit(db, grainID, godownID, 30))

	bags, err := l.Read(grainID, godownID)
	require.NoError(t, err)
	assert.Equal(t, 100, bags)
}

func TestAdjustSignedDelta(t *testing.T) {
	db := openTestDB(t)
	l := New(db)
	grainID, godownID := uuid.New(), uuid.New()

	require.NoError(t, l.Adjust(db, grainID, godownID, 50))
	require.NoError(t, l.Adjust(db, grainID, godownID, -20))
	require.NoError(t, l.Adjust(db, grainID, godownID, 0))

	bags, err := l.Read(grainID, godownID)
	require.NoError(t, err)
	assert.Equal(t, 30, bags)

	err = l.Adjust(db, grainID, godownID, -31)
	require.True(t, IsInsufficientStock(err))
}

func TestInvalidAmountsRejected(t *testing.T) {
	db := openTestDB(t)
	l := New(db)
	grainID, godownID := uuid.New(), uuid.New()

	assert.Error(t, l.Credit(db, grainID, godownID, 0))
	assert.Error(t, l.Credit(db, grainID, godownID, -5))
	assert.Error(t, l.Debit(db, grainID, godownID, 0))
	assert.Error(t, l.Debit(db, grainID, godownID, -5))
}

// Two transactions compete for the last bags of the same pair; exactly one
// may win and the final counter reflects only the winner.
func TestConcurrentDebitsOnePairOneWinner(t *testing.T) {
	db := openTestDB(t)
	l := New(db)
	grainID, godownID := uuid.New(), uuid.New()

	require.NoError(t, l.Credit(db, grainID, godownID, 100))

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = db.Transaction(func(tx *gorm.DB) error {
				return l.Debit(tx, grainID, godownID, 60)
			})
		}(i)
	}
	wg.Wait()

	failures := 0
	for _, err := range results {
		if err != nil {
			require.True(t, IsInsufficientStock(err))
			failures++
		}
	}
	assert.Equal(t, 1, failures, "exactly one of the two debits must fail")

	bags, err := l.Read(grainID, godownID)
	require.NoError(t, err)
	assert.Equal(t, 40, bags)
}
