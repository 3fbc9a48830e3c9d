package booking

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"railway/internal/domain"
	"railway/internal/events"
	"railway/internal/pkg/metrics"
	"railway/internal/pkg/utils"
	"railway/internal/repository"
)

const pnrAttempts = 20

type Service struct {
	bookings BookingRepository
	trains   TrainRepository
	users    UserRepository
	events   EventPublisher
	logger   *zap.Logger
	now      func() time.Time
	pnr      func() string

	// serializes seat allocation with the booking write that follows it
	mu sync.Mutex
}

func NewService(bookings BookingRepository, trains TrainRepository, users UserRepository, publisher EventPublisher, logger *zap.Logger) *Service {
	return &Service{
		bookings: bookings,
		trains:   trains,
		users:    users,
		events:   publisher,
		logger:   logger,
		now:      time.Now,
		pnr:      randomPNR,
	}
}

// StatusChange is published when an admin moves a booking between statuses.
type StatusChange struct {
	Booking *domain.Booking      `json:"booking"`
	From    domain.BookingStatus `json:"from"`
}

// Confirm books req for userID. When the class has fewer seats than
// passengers the booking is stored on the waiting list and no seats are taken.
func (s *Service) Confirm(ctx context.Context, userID string, req ConfirmRequest) (*domain.Booking, error) {
	if len(req.Passengers) == 0 || len(req.Passengers) > domain.MaxPassengers {
		return nil, ErrPassengerCount
	}
	now := s.now()
	day, err := utils.ParseDate(req.DepartureDate, now)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if req.DepartureDate < utils.Today(now) {
		return nil, ErrDateInPast
	}

	train, err := s.trains.GetByID(ctx, req.TrainID)
	if err != nil {
		return nil, mapTrainError(err)
	}
	class, err := train.Class(req.ClassCode)
	if err != nil {
		return nil, ErrClassNotFound
	}
	if !train.RunsOn(day.Weekday()) {
		return nil, ErrNotRunning
	}

	passengers := make([]domain.Passenger, 0, len(req.Passengers))
	for _, p := range req.Passengers {
		passengers = append(passengers, p.passenger())
	}
	count := len(passengers)

	s.mu.Lock()
	defer s.mu.Unlock()

	// checked under the lock so DeleteForUser cannot miss this booking
	if err := s.ownerExists(ctx, userID); err != nil {
		return nil, err
	}

	pnr, err := s.newPNR(ctx)
	if err != nil {
		return nil, err
	}

	status := domain.BookingConfirmed
	if _, err := s.trains.AdjustSeats(ctx, train.ID, class.Code, -count); err != nil {
		if !errors.Is(err, domain.ErrInsufficientSeats) {
			return nil, mapTrainError(err)
		}
		status = domain.BookingWaiting
	}

	b := &domain.Booking{
		ID:            uuid.NewString(),
		PNR:           pnr,
		UserID:        userID,
		TrainID:       train.ID,
		TrainNumber:   train.Number,
		TrainName:     train.Name,
		From:          train.From,
		To:            train.To,
		DepartureDate: req.DepartureDate,
		DepartureTime: train.DepartureTime,
		ArrivalTime:   train.ArrivalTime,
		ClassCode:     class.Code,
		ClassName:     class.Name,
		Fare:          class.Price * int64(count),
		Status:        status,
		Passengers:    passengers,
		BookingDate:   now.UTC(),
		UpdatedAt:     now.UTC(),
	}

	err = s.placePassengers(ctx, b, status)
	if err == nil {
		err = s.bookings.Create(ctx, b)
	}
	if err != nil {
		if status == domain.BookingConfirmed {
			s.restoreSeats(ctx, b)
		}
		return nil, err
	}

	metrics.RecordBooking(string(status), class.Code, count)
	s.logger.Info("booking created",
		zap.String("booking_id", b.ID),
		zap.String("pnr", b.PNR),
		zap.String("status", string(status)),
		zap.Int("passengers", count),
	)

	topic := events.TopicBookingConfirmed
	if status == domain.BookingWaiting {
		topic = events.TopicBookingWaiting
	}
	s.publish(ctx, topic, b)

	return b, nil
}

// ListForUser splits the user's bookings into upcoming, completed and
// cancelled journeys.
func (s *Service) ListForUser(ctx context.Context, userID string) (*MyBookings, error) {
	all, err := s.bookings.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := utils.Today(s.now())
	out := &MyBookings{
		Upcoming:  []domain.Booking{},
		Completed: []domain.Booking{},
		Cancelled: []domain.Booking{},
		Stats:     domain.CountBookings(all, today),
	}
	for _, b := range all {
		switch {
		case b.Status == domain.BookingCancelled:
			out.Cancelled = append(out.Cancelled, b)
		case b.Travelled(today):
			out.Completed = append(out.Completed, b)
		default:
			out.Upcoming = append(out.Upcoming, b)
		}
	}

	sort.SliceStable(out.Upcoming, func(i, j int) bool {
		return out.Upcoming[i].DepartureDate < out.Upcoming[j].DepartureDate
	})
	sort.SliceStable(out.Completed, func(i, j int) bool {
		return out.Completed[i].DepartureDate > out.Completed[j].DepartureDate
	})
	sort.SliceStable(out.Cancelled, func(i, j int) bool {
		return out.Cancelled[i].BookingDate.After(out.Cancelled[j].BookingDate)
	})
	return out, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	return s.bookings.ListByUser(ctx, userID)
}

func (s *Service) Get(ctx context.Context, id string, viewer Viewer) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, mapBookingError(err)
	}
	if !viewer.canSee(b) {
		return nil, ErrForbidden
	}
	return b, nil
}

func (s *Service) GetByPNR(ctx context.Context, pnr string, viewer Viewer) (*domain.Booking, error) {
	b, err := s.bookings.GetByPNR(ctx, pnr)
	if err != nil {
		return nil, mapBookingError(err)
	}
	if !viewer.canSee(b) {
		return nil, ErrForbidden
	}
	return b, nil
}

// Cancel cancels an upcoming booking and gives confirmed seats back to the train.
func (s *Service) Cancel(ctx context.Context, id string, viewer Viewer) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.Get(ctx, id, viewer)
	if err != nil {
		return nil, err
	}
	if b.Status == domain.BookingCancelled {
		return nil, ErrAlreadyCancelled
	}
	now := s.now()
	if b.Travelled(utils.Today(now)) {
		return nil, ErrJourneyCompleted
	}

	from := b.Status
	updated, err := s.bookings.Update(ctx, id, func(cur *domain.Booking) error {
		if cur.Status == domain.BookingCancelled {
			return ErrAlreadyCancelled
		}
		markCancelled(cur, now)
		return nil
	})
	if err != nil {
		return nil, mapBookingError(err)
	}

	if from == domain.BookingConfirmed {
		s.restoreSeats(ctx, updated)
	}

	metrics.RecordCancellation()
	s.logger.Info("booking cancelled",
		zap.String("booking_id", id),
		zap.String("pnr", updated.PNR),
		zap.String("by", viewer.UserID),
	)
	s.publish(ctx, events.TopicBookingCancelled, updated)

	return updated, nil
}

// ChangeStatus moves a booking to status on behalf of an admin. Confirming
// takes seats from the train and cancelling a confirmed booking returns them.
func (s *Service) ChangeStatus(ctx context.Context, id string, status domain.BookingStatus) (*domain.Booking, error) {
	if !status.Valid() {
		return nil, ErrInvalidTransition
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, mapBookingError(err)
	}
	from := b.Status
	if from == status {
		return b, nil
	}
	if !domain.CanTransition(from, status) {
		return nil, ErrInvalidTransition
	}
	if status == domain.BookingConfirmed && b.Travelled(utils.Today(s.now())) {
		return nil, ErrJourneyCompleted
	}

	if status == domain.BookingConfirmed {
		if _, err := s.trains.AdjustSeats(ctx, b.TrainID, b.ClassCode, -b.PassengerCount()); err != nil {
			if errors.Is(err, domain.ErrInsufficientSeats) {
				return nil, ErrNoSeats
			}
			return nil, mapTrainError(err)
		}
		if err := s.placePassengers(ctx, b, status); err != nil {
			s.restoreSeats(ctx, b)
			return nil, err
		}
	}

	now := s.now()
	updated, err := s.bookings.Update(ctx, id, func(cur *domain.Booking) error {
		if cur.Status != from {
			return ErrInvalidTransition
		}
		if status == domain.BookingCancelled {
			markCancelled(cur, now)
			return nil
		}
		cur.Status = status
		cur.CancelledAt = nil
		cur.Passengers = b.Passengers
		cur.UpdatedAt = now.UTC()
		return nil
	})
	if err != nil {
		if status == domain.BookingConfirmed {
			s.restoreSeats(ctx, b)
		}
		return nil, mapBookingError(err)
	}

	if from == domain.BookingConfirmed {
		s.restoreSeats(ctx, updated)
	}
	if status == domain.BookingCancelled {
		metrics.RecordCancellation()
	}

	s.logger.Info("booking status changed",
		zap.String("booking_id", id),
		zap.String("from", string(from)),
		zap.String("to", string(status)),
	)
	s.publish(ctx, events.TopicBookingStatus, StatusChange{Booking: updated, From: from})

	return updated, nil
}

// Delete removes a booking. Seats of a confirmed booking go back to the train.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.deleteLocked(ctx, id)
}

// BulkDelete deletes every known id and returns how many were removed.
// Unknown ids are skipped.
func (s *Service) BulkDelete(ctx context.Context, ids []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool, len(ids))
	deleted := 0
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		err := s.deleteLocked(ctx, id)
		if errors.Is(err, ErrBookingNotFound) {
			continue
		}
		if err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

// DeleteForUser removes all bookings of a user.
func (s *Service) DeleteForUser(ctx context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	owned, err := s.bookings.ListByUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, b := range owned {
		err := s.deleteLocked(ctx, b.ID)
		if errors.Is(err, ErrBookingNotFound) {
			continue
		}
		if err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Booking, error) {
	return s.bookings.List(ctx)
}

// Search matches PNR, stations and train name.
func (s *Service) Search(ctx context.Context, term string) ([]domain.Booking, error) {
	return s.bookings.Search(ctx, term)
}

// Counts tallies bookings by status. Revenue only counts confirmed fares.
func (s *Service) Counts(ctx context.Context) (*Counts, error) {
	all, err := s.bookings.List(ctx)
	if err != nil {
		return nil, err
	}

	c := &Counts{Total: len(all)}
	for _, b := range all {
		switch b.Status {
		case domain.BookingConfirmed:
			c.Confirmed++
			c.Revenue += b.Fare
		case domain.BookingWaiting:
			c.Waiting++
		case domain.BookingCancelled:
			c.Cancelled++
		}
	}
	return c, nil
}

// RenderTicket returns the printable HTML e-ticket of a booking.
func (s *Service) RenderTicket(ctx context.Context, id string, viewer Viewer) ([]byte, error) {
	b, err := s.Get(ctx, id, viewer)
	if err != nil {
		return nil, err
	}
	return renderTicket(b, s.now())
}

func (s *Service) deleteLocked(ctx context.Context, id string) error {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return mapBookingError(err)
	}
	if err := s.bookings.Delete(ctx, id); err != nil {
		return mapBookingError(err)
	}

	if b.Status == domain.BookingConfirmed {
		s.restoreSeats(ctx, b)
	}

	s.logger.Info("booking deleted", zap.String("booking_id", id), zap.String("pnr", b.PNR))
	s.publish(ctx, events.TopicBookingDeleted, b)
	return nil
}

// placePassengers assigns seats or waiting-list numbers to the passengers of
// b. Confirmed passengers get the lowest seat positions not held by another
// confirmed booking of the same journey. Waiting passengers are numbered after
// the highest waiting-list position ever given on the journey.
func (s *Service) placePassengers(ctx context.Context, b *domain.Booking, status domain.BookingStatus) error {
	journey, err := s.bookings.ListForJourney(ctx, b.TrainID, b.ClassCode, b.DepartureDate)
	if err != nil {
		return err
	}

	passengers := make([]domain.Passenger, len(b.Passengers))
	copy(passengers, b.Passengers)

	if status == domain.BookingWaiting {
		last := 0
		for _, other := range journey {
			if other.ID == b.ID {
				continue
			}
			for _, p := range other.Passengers {
				last = max(last, p.Waitlist)
			}
		}
		for i := range passengers {
			passengers[i].AssignWaitlist(last + i + 1)
		}
		b.Passengers = passengers
		return nil
	}

	taken := make(map[int]bool)
	for _, other := range journey {
		if other.ID == b.ID || other.Status != domain.BookingConfirmed {
			continue
		}
		for _, p := range other.Passengers {
			if p.Ordinal > 0 {
				taken[p.Ordinal] = true
			}
		}
	}

	next := 1
	for i := range passengers {
		for taken[next] {
			next++
		}
		passengers[i].AssignSeat(b.ClassCode, next)
		next++
	}
	b.Passengers = passengers
	return nil
}

func (s *Service) ownerExists(ctx context.Context, userID string) error {
	if s.users == nil {
		return nil
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func (s *Service) restoreSeats(ctx context.Context, b *domain.Booking) {
	_, err := s.trains.AdjustSeats(ctx, b.TrainID, b.ClassCode, b.PassengerCount())
	if err == nil {
		return
	}
	if errors.Is(err, repository.ErrNotFound) || errors.Is(err, domain.ErrClassNotFound) {
		s.logger.Warn("seats not restored, train or class no longer exists",
			zap.String("booking_id", b.ID),
			zap.String("train_id", b.TrainID),
			zap.String("class", b.ClassCode),
		)
		return
	}
	s.logger.Error("restore seats", zap.String("booking_id", b.ID), zap.Error(err))
}

func (s *Service) newPNR(ctx context.Context) (string, error) {
	for i := 0; i < pnrAttempts; i++ {
		pnr := s.pnr()
		exists, err := s.bookings.PNRExists(ctx, pnr)
		if err != nil {
			return "", err
		}
		if !exists {
			return pnr, nil
		}
	}
	return "", fmt.Errorf("no free PNR after %d attempts", pnrAttempts)
}

func (s *Service) publish(ctx context.Context, topic string, payload any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, topic, payload); err != nil {
		s.logger.Warn("publish event failed", zap.String("topic", topic), zap.Error(err))
	}
}

func markCancelled(b *domain.Booking, now time.Time) {
	at := now.UTC()
	b.Status = domain.BookingCancelled
	b.CancelledAt = &at
	b.UpdatedAt = at
}

// randomPNR returns "25" followed by seven random digits.
func randomPNR() string {
	return fmt.Sprintf("25%07d", rand.IntN(10_000_000))
}

func mapTrainError(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrTrainNotFound
	case errors.Is(err, domain.ErrClassNotFound):
		return ErrClassNotFound
	default:
		return err
	}
}

func mapBookingError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrBookingNotFound
	}
	return err
}
