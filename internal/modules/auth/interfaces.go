package auth

import (
	"context"

	"railway/internal/domain"
)

// UserRepository lists only the methods the auth service uses.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// BookingLister feeds the profile stats.
type BookingLister interface {
	ListByUser(ctx context.Context, userID string) ([]domain.Booking, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}
