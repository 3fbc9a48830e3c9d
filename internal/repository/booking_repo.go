package repository

import (
	"context"
	"errors"

	"railway/internal/domain"
	"railway/internal/storage"
)

var bookingSearchFields = []string{"pnr", "from", "to", "train_name"}

type BookingRepository struct {
	bookings *storage.Collection[domain.Booking]
}

func NewBookingRepository(backend storage.Backend) *BookingRepository {
	return &BookingRepository{
		bookings: storage.NewCollection(backend, KindBookings, func(b *domain.Booking) string { return b.ID }),
	}
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	return r.bookings.Insert(ctx, b)
}

func (r *BookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	return r.bookings.Get(ctx, id)
}

func (r *BookingRepository) GetByPNR(ctx context.Context, pnr string) (*domain.Booking, error) {
	found, err := r.bookings.Filter(ctx, func(b *domain.Booking) bool { return b.PNR == pnr })
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, ErrNotFound
	}
	return &found[0], nil
}

func (r *BookingRepository) PNRExists(ctx context.Context, pnr string) (bool, error) {
	_, err := r.GetByPNR(ctx, pnr)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *BookingRepository) List(ctx context.Context) ([]domain.Booking, error) {
	return r.bookings.List(ctx)
}

// Search matches pnr, from, to and train name.
func (r *BookingRepository) Search(ctx context.Context, term string) ([]domain.Booking, error) {
	return r.bookings.Search(ctx, term, bookingSearchFields)
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	return r.bookings.Filter(ctx, func(b *domain.Booking) bool { return b.UserID == userID })
}

// ListForJourney returns every booking of a train, class and date regardless of status.
func (r *BookingRepository) ListForJourney(ctx context.Context, trainID, classCode, date string) ([]domain.Booking, error) {
	return r.bookings.Filter(ctx, func(b *domain.Booking) bool {
		return b.SameJourney(trainID, classCode, date)
	})
}

func (r *BookingRepository) Update(ctx context.Context, id string, mutate func(*domain.Booking) error) (*domain.Booking, error) {
	return r.bookings.Update(ctx, id, mutate)
}

func (r *BookingRepository) Delete(ctx context.Context, id string) error {
	return r.bookings.Delete(ctx, id)
}

func (r *BookingRepository) Count(ctx context.Context) (int, error) {
	return r.bookings.Count(ctx)
}
