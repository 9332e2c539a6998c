package service

import (
	"context"

	"github.com/confinapp/backend-go/internal/domain"
	"github.com/confinapp/backend-go/internal/repository"
)

// PenService exposes the pen directory and occupancy reads. Allocation
// writes go through the lifecycle controller, which runs them inside the
// lot transactions.
type PenService struct {
	uow repository.UnitOfWork
}

func NewPenService(uow repository.UnitOfWork) *PenService {
	return &PenService{uow: uow}
}

func (s *PenService) Create(ctx context.Context, in domain.CreatePenInput) (*domain.Pen, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	pen := &domain.Pen{Code: in.Code, Capacity: in.Capacity, Status: domain.PenAvailable}
	if err := s.uow.Pens().Create(ctx, pen); err != nil {
		return nil, err
	}
	return pen, nil
}

func (s *PenService) List(ctx context.Context) ([]*domain.Pen, error) {
	return s.uow.Pens().List(ctx)
}

// Occupancy is a pure read of a pen's current load.
func (s *PenService) Occupancy(ctx context.Context, penID int64) (*domain.PenOccupancy, error) {
	pen, err := s.uow.Pens().GetByID(ctx, penID)
	if err != nil {
		return nil, err
	}
	active, err := s.uow.Pens().ActiveByPen(ctx, penID)
	if err != nil {
		return nil, err
	}
	occupied := 0
	for _, a := range active {
		occupied += a.Quantity
	}
	return &domain.PenOccupancy{
		PenID:     pen.ID,
		Capacity:  pen.Capacity,
		Occupied:  occupied,
		Available: pen.Capacity - occupied,
	}, nil
}
