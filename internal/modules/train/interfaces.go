package train

import (
	"context"

	"railway/internal/domain"
)

type TrainRepository interface {
	Create(ctx context.Context, t *domain.Train) error
	GetByID(ctx context.Context, id string) (*domain.Train, error)
	List(ctx context.Context) ([]domain.Train, error)
	Filter(ctx context.Context, keep func(*domain.Train) bool) ([]domain.Train, error)
	Update(ctx context.Context, id string, mutate func(*domain.Train) error) (*domain.Train, error)
	Delete(ctx context.Context, id string) error
}
