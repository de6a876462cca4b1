package ledger

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// On postgres a debit must hold SELECT ... FOR UPDATE on the counter row
// for the whole check-then-mutate sequence.
func TestDebitLocksRowOnPostgres(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		// Real calls always run on the bill's transaction; skip gorm's
		// implicit one so the mock sees only the ledger's statements.
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	grainID, godownID := uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT .* FROM "bag_inventories" WHERE .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "grain_id", "godown_id", "number_of_bags"}).
			AddRow(1, grainID.String(), godownID.String(), 80))
	mock.ExpectExec(`UPDATE "bag_inventories" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	l := New(db)
	require.NoError(t, l.Debit(db, grainID, godownID, 30))
	require.NoError(t, mock.ExpectationsWereMet())
}
