package service

import (
	"fmt"

	"go-grain-trade/internal/model"
	"go-grain-trade/internal/repository"
	"go-grain-trade/pkg/validator"

	"github.com/google/uuid"
)

type GodownRequest struct {
	Name     string `json:"name" validate:"required"`
	Location string `json:"location"`
	Capacity *int   `json:"capacity" validate:"omitempty,gt=0"`
}

type GodownService interface {
	Create(req *GodownRequest, userID string) (*model.Godown, error)
	Update(id uuid.UUID, req *GodownRequest, userID string) (*model.Godown, error)
	GetAll() ([]model.Godown, error)
	GetAllWithUtilization() ([]repository.GodownUtilization, error)
	GetByID(id uuid.UUID) (*model.Godown, error)
}

type godownService struct {
	godownRepo repository.GodownRepository
}

func NewGodownService(godownRepo repository.GodownRepository) GodownService {
	return &godownService{godownRepo: godownRepo}
}

func (s *godownService) Create(req *GodownRequest, userID string) (*model.Godown, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		return nil, fmt.Errorf("validation failed: field '%s' failed on tag '%s'", first.FailedField, first.Tag)
	}

	godown := &model.Godown{
		Name:     req.Name,
		Location: req.Location,
		Capacity: req.Capacity,
	}
	godown.CreatedBy = userID
	godown.UpdatedBy = userID

	if err := s.godownRepo.Create(godown); err != nil {
		return nil, err
	}
	return godown, nil
}

func (s *godownService) Update(id uuid.UUID, req *GodownRequest, userID string) (*model.Godown, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		return nil, fmt.Errorf("validation failed: field '%s' failed on tag '%s'", first.FailedField, first.Tag)
	}

	godown, err := s.godownRepo.FindByID(id)
	if err != nil {
		return nil, ErrGodownNotFound
	}

	godown.Name = req.Name
	godown.Location = req.Location
	godown.Capacity = req.Capacity
	godown.UpdatedBy = userID
	if err := s.godownRepo.Update(godown); err != nil {
		return nil, err
	}
	return godown, nil
}

func (s *godownService) GetAll() ([]model.Godown, error) {
	return s.godownRepo.FindAll()
}

func (s *godownService) GetAllWithUtilization() ([]repository.GodownUtilization, error) {
	return s.godownRepo.FindAllWithUtilization()
}

func (s *godownService) GetByID(id uuid.UUID) (*model.Godown, error) {
	godown, err := s.godownRepo.FindByID(id)
	if err != nil {
		return nil, ErrGodownNotFound
	}
	return godown, nil
}
