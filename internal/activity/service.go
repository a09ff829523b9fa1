package activity

import (
	"context"
	"fmt"

	"github.com/qwerty-development/gym-webapp-sub000/internal/apperr"
)

type Service interface {
	CreateActivity(ctx context.Context, req CreateActivityRequest) (*Activity, error)
	ListActivities(ctx context.Context) ([]Activity, error)
	GetActivity(ctx context.Context, id int) (*Activity, error)
	CreateCoach(ctx context.Context, req CreateCoachRequest) (*Coach, error)
	ListCoaches(ctx context.Context) ([]Coach, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{
		repo: repo,
	}
}

func (s *service) CreateActivity(ctx context.Context, req CreateActivityRequest) (*Activity, error) {
	if req.Credits.IsNegative() {
		return nil, fmt.Errorf("%w: credits cannot be negative", apperr.ErrValidation)
	}
	if req.Capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity must be at least 1", apperr.ErrValidation)
	}
	return s.repo.CreateActivity(ctx, req.Name, req.Credits, req.Capacity, req.SemiPrivate)
}

func (s *service) ListActivities(ctx context.Context) ([]Activity, error) {
	return s.repo.ListActivities(ctx)
}

func (s *service) GetActivity(ctx context.Context, id int) (*Activity, error) {
	return s.repo.GetActivity(ctx, nil, id)
}

func (s *service) CreateCoach(ctx context.Context, req CreateCoachRequest) (*Coach, error) {
	return s.repo.CreateCoach(ctx, req.Name, req.Email)
}

func (s *service) ListCoaches(ctx context.Context) ([]Coach, error) {
	return s.repo.ListCoaches(ctx)
}
