package booking

import (
	"context"

	"railway/internal/domain"
)

type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	GetByPNR(ctx context.Context, pnr string) (*domain.Booking, error)
	PNRExists(ctx context.Context, pnr string) (bool, error)
	List(ctx context.Context) ([]domain.Booking, error)
	Search(ctx context.Context, term string) ([]domain.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Booking, error)
	ListForJourney(ctx context.Context, trainID, classCode, date string) ([]domain.Booking, error)
	Update(ctx context.Context, id string, mutate func(*domain.Booking) error) (*domain.Booking, error)
	Delete(ctx context.Context, id string) error
}

// TrainRepository covers seat inventory only.
type TrainRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Train, error)
	AdjustSeats(ctx context.Context, trainID, classCode string, delta int) (*domain.Train, error)
}

// UserRepository confirms the booking owner still exists.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}
