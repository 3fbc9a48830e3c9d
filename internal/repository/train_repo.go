package repository

import (
	"context"

	"railway/internal/domain"
	"railway/internal/storage"
)

type TrainRepository struct {
	trains *storage.Collection[domain.Train]
}

func NewTrainRepository(backend storage.Backend) *TrainRepository {
	return &TrainRepository{
		trains: storage.NewCollection(backend, KindTrains, func(t *domain.Train) string { return t.ID }),
	}
}

func (r *TrainRepository) Create(ctx context.Context, t *domain.Train) error {
	return r.trains.Insert(ctx, t)
}

func (r *TrainRepository) GetByID(ctx context.Context, id string) (*domain.Train, error) {
	return r.trains.Get(ctx, id)
}

func (r *TrainRepository) List(ctx context.Context) ([]domain.Train, error) {
	return r.trains.List(ctx)
}

func (r *TrainRepository) Filter(ctx context.Context, keep func(*domain.Train) bool) ([]domain.Train, error) {
	return r.trains.Filter(ctx, keep)
}

func (r *TrainRepository) Update(ctx context.Context, id string, mutate func(*domain.Train) error) (*domain.Train, error) {
	return r.trains.Update(ctx, id, mutate)
}

// AdjustSeats changes the availability of one class atomically.
func (r *TrainRepository) AdjustSeats(ctx context.Context, trainID, classCode string, delta int) (*domain.Train, error) {
	return r.trains.Update(ctx, trainID, func(t *domain.Train) error {
		return t.AdjustClass(classCode, delta)
	})
}

func (r *TrainRepository) Delete(ctx context.Context, id string) error {
	return r.trains.Delete(ctx, id)
}

func (r *TrainRepository) Count(ctx context.Context) (int, error) {
	return r.trains.Count(ctx)
}
