// Package ledger owns the authoritative bag count per (grain, godown) pair.
//
// Every mutation runs on a caller-supplied transaction and holds an
// exclusive row lock on the BagInventory row for the whole check-then-mutate
// sequence, so concurrent bills touching the same pair serialize while
// disjoint pairs never block each other. Any error aborts the enclosing
// transaction: a multi-godown sale either debits every pair or none.
package ledger

import (
	"errors"
	"fmt"
	"time"

	"go-grain-trade/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrInventoryInUse is returned when reversing a purchase whose bags have
// already been consumed by later sales, so the debit would drive the
// counter negative.
var ErrInventoryInUse = errors.New("cannot delete: inventory already used")

// InsufficientStockError reports a debit that exceeds the locked counter.
// The triggering transaction is rolled back in full; callers surface the
// godown and shortfall to the user and never retry automatically.
type InsufficientStockError struct {
	GrainID   uuid.UUID
	GodownID  uuid.UUID
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock in godown %s: available %d, requested %d",
		e.GodownID, e.Available, e.Requested)
}

// IsInsufficientStock reports whether err is an InsufficientStockError.
func IsInsufficientStock(err error) bool {
	var target *InsufficientStockError
	return errors.As(err, &target)
}

// Ledger serializes mutations of the per-(grain, godown) bag counters and
// enforces that no counter ever goes negative.
type Ledger struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// lockForUpdate adds SELECT ... FOR UPDATE to the query. SQLite (used in
// tests) has no row locks; its single writer already serializes
// transactions, so the clause is skipped there.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// Debit removes bags from the pair's counter. The row is locked before the
// availability check; if the counter (zero for a missing row) is below the
// requested amount the call fails with InsufficientStockError and performs
// no mutation. Must run inside the bill's transaction.
func (l *Ledger) Debit(tx *gorm.DB, grainID, godownID uuid.UUID, bags int) error {
	if bags <= 0 {
		return fmt.Errorf("ledger: debit of %d bags", bags)
	}

	var inv model.BagInventory
	err := lockForUpdate(tx).
		Where("grain_id = ? AND godown_id = ?", grainID, godownID).
		First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Never credited: zero stock.
		return &InsufficientStockError{GrainID: grainID, GodownID: godownID, Available: 0, Requested: bags}
	}
	if err != nil {
		return err
	}

	if inv.NumberOfBags < bags {
		return &InsufficientStockError{
			GrainID:   grainID,
			GodownID:  godownID,
			Available: inv.NumberOfBags,
			Requested: bags,
		}
	}

	return tx.Model(&model.BagInventory{}).
		Where("id = ?", inv.ID).
		Updates(map[string]interface{}{
			"number_of_bags": inv.NumberOfBags - bags,
			"last_updated":   time.Now().UTC(),
		}).Error
}

// Credit adds bags to the pair's counter, creating the row at zero first if
// it does not exist. Used by purchase creation and by sale deletion or
// reversal. Must run inside the bill's transaction.
func (l *Ledger) Credit(tx *gorm.DB, grainID, godownID uuid.UUID, bags int) error {
	if bags <= 0 {
		return fmt.Errorf("ledger: credit of %d bags", bags)
	}

	var inv model.BagInventory
	err := lockForUpdate(tx).
		Where("grain_id = ? AND godown_id = ?", grainID, godownID).
		First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// The unique (grain_id, godown_id) index turns a create race into a
		// constraint violation, which aborts the transaction.
		inv = model.BagInventory{
			GrainID:     grainID,
			GodownID:    godownID,
			LastUpdated: time.Now().UTC(),
		}
		if err := tx.Create(&inv).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	return tx.Model(&model.BagInventory{}).
		Where("id = ?", inv.ID).
		Updates(map[string]interface{}{
			"number_of_bags": inv.NumberOfBags + bags,
			"last_updated":   time.Now().UTC(),
		}).Error
}

// Adjust applies a signed delta: a credit when positive, a debit (with the
// non-negativity check) when negative, a no-op at zero. Cross-godown moves
// are expressed by the caller as a Debit from the old pair followed by a
// Credit to the new pair inside one transaction.
func (l *Ledger) Adjust(tx *gorm.DB, grainID, godownID uuid.UUID, delta int) error {
	switch {
	case delta > 0:
		return l.Credit(tx, grainID, godownID, delta)
	case delta < 0:
		return l.Debit(tx, grainID, godownID, -delta)
	}
	return nil
}

// Read returns the current counter without locking. Intended for display
// and reporting paths only; a missing row reads as zero.
func (l *Ledger) Read(grainID, godownID uuid.UUID) (int, error) {
	var inv model.BagInventory
	err := l.db.
		Where("grain_id = ? AND godown_id = ?", grainID, godownID).
		First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return inv.NumberOfBags, nil
}
