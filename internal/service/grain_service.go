package service

import (
	"errors"
	"fmt"

	"go-grain-trade/internal/model"
	"go-grain-trade/internal/repository"
	"go-grain-trade/pkg/validator"

	"github.com/google/uuid"
)

var (
	ErrGrainNameExists = errors.New("grain with this name already exists")
	ErrGrainReferenced = errors.New("grain is referenced by existing bills and cannot be deleted")
)

type GrainRequest struct {
	Name string `json:"name" validate:"required"`
}

type GrainService interface {
	Create(req *GrainRequest, userID string) (*model.Grain, error)
	Update(id uuid.UUID, req *GrainRequest, userID string) (*model.Grain, error)
	Delete(id uuid.UUID, userID string) error
	GetAll() ([]model.Grain, error)
	GetByID(id uuid.UUID) (*model.Grain, error)
}

type grainService struct {
	grainRepo repository.GrainRepository
}

func NewGrainService(grainRepo repository.GrainRepository) GrainService {
	return &grainService{grainRepo: grainRepo}
}

func (s *grainService) Create(req *GrainRequest, userID string) (*model.Grain, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		return nil, fmt.Errorf("validation failed: field '%s' failed on tag '%s'", first.FailedField, first.Tag)
	}

	if existing, _ := s.grainRepo.FindByName(req.Name); existing != nil {
		return nil, ErrGrainNameExists
	}

	grain := &model.Grain{Name: req.Name}
	grain.CreatedBy = userID
	grain.UpdatedBy = userID

	if err := s.grainRepo.Create(grain); err != nil {
		return nil, err
	}
	return grain, nil
}

func (s *grainService) Update(id uuid.UUID, req *GrainRequest, userID string) (*model.Grain, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		return nil, fmt.Errorf("validation failed: field '%s' failed on tag '%s'", first.FailedField, first.Tag)
	}

	grain, err := s.grainRepo.FindByID(id)
	if err != nil {
		return nil, ErrGrainNotFound
	}

	if req.Name != grain.Name {
		if existing, _ := s.grainRepo.FindByName(req.Name); existing != nil {
			return nil, ErrGrainNameExists
		}
	}

	grain.Name = req.Name
	grain.UpdatedBy = userID
	if err := s.grainRepo.Update(grain); err != nil {
		return nil, err
	}
	return grain, nil
}

// Delete refuses to remove a grain that any bill still references, so
// history stays resolvable.
func (s *grainService) Delete(id uuid.UUID, userID string) error {
	if _, err := s.grainRepo.FindByID(id); err != nil {
		return ErrGrainNotFound
	}
	refs, err := s.grainRepo.CountReferences(id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return ErrGrainReferenced
	}
	return s.grainRepo.Delete(id, userID)
}

func (s *grainService) GetAll() ([]model.Grain, error) {
	return s.grainRepo.FindAll()
}

func (s *grainService) GetByID(id uuid.UUID) (*model.Grain, error) {
	grain, err := s.grainRepo.FindByID(id)
	if err != nil {
		return nil, ErrGrainNotFound
	}
	return grain, nil
}
