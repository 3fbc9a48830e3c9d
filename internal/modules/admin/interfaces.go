package admin

import (
	"context"

	"railway/internal/domain"
	"railway/internal/modules/booking"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Search(ctx context.Context, term string) ([]domain.User, error)
	Update(ctx context.Context, id string, mutate func(*domain.User) error) (*domain.User, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

type TrainCounter interface {
	Count(ctx context.Context) (int, error)
}

// BookingService is the part of the booking module the console drives.
type BookingService interface {
	List(ctx context.Context) ([]domain.Booking, error)
	Search(ctx context.Context, term string) ([]domain.Booking, error)
	Get(ctx context.Context, id string, viewer booking.Viewer) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Booking, error)
	ChangeStatus(ctx context.Context, id string, status domain.BookingStatus) (*domain.Booking, error)
	Delete(ctx context.Context, id string) error
	BulkDelete(ctx context.Context, ids []string) (int, error)
	DeleteForUser(ctx context.Context, userID string) (int, error)
	Counts(ctx context.Context) (*booking.Counts, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}
