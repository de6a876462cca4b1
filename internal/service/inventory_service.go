package service

import (
	"go-grain-trade/internal/ledger"
	"go-grain-trade/internal/repository"

	"github.com/google/uuid"
)

// lowStockThreshold is the bag count under which a (grain, godown) pair
// shows up on the low-stock report.
const lowStockThreshold = 50

// AvailabilityCheck answers "can this sale go through" for one godown leg.
// It is advisory only: the authoritative check happens under the row lock
// when the sale is created.
type AvailabilityCheck struct {
	GrainID       uuid.UUID `json:"grain_id"`
	GodownID      uuid.UUID `json:"godown_id"`
	RequestedBags int       `json:"requested_bags"`
	AvailableBags int       `json:"available_bags"`
	Sufficient    bool      `json:"sufficient"`
}

type InventoryService interface {
	ListAll() ([]repository.InventoryRow, error)
	LowStock() ([]repository.InventoryRow, error)
	GodownStock(grainID uuid.UUID) ([]repository.GodownStock, error)
	Summary() (*repository.InventorySummary, error)
	CheckAvailability(grainID, godownID uuid.UUID, bags int) (*AvailabilityCheck, error)
}

type inventoryService struct {
	inventoryRepo repository.InventoryRepository
	ledger        *ledger.Ledger
}

func NewInventoryService(inventoryRepo repository.InventoryRepository, lgr *ledger.Ledger) InventoryService {
	return &inventoryService{
		inventoryRepo: inventoryRepo,
		ledger:        lgr,
	}
}

func (s *inventoryService) ListAll() ([]repository.InventoryRow, error) {
	return s.inventoryRepo.ListAll()
}

func (s *inventoryService) LowStock() ([]repository.InventoryRow, error) {
	return s.inventoryRepo.LowStock(lowStockThreshold)
}

func (s *inventoryService) GodownStock(grainID uuid.UUID) ([]repository.GodownStock, error) {
	return s.inventoryRepo.GodownStock(grainID)
}

func (s *inventoryService) Summary() (*repository.InventorySummary, error) {
	return s.inventoryRepo.Summary()
}

func (s *inventoryService) CheckAvailability(grainID, godownID uuid.UUID, bags int) (*AvailabilityCheck, error) {
	available, err := s.ledger.Read(grainID, godownID)
	if err != nil {
		return nil, err
	}
	return &AvailabilityCheck{
		GrainID:       grainID,
		GodownID:      godownID,
		RequestedBags: bags,
		AvailableBags: available,
		Sufficient:    available >= bags,
	}, nil
}
