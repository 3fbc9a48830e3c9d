package admin

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"railway/internal/domain"
	"railway/internal/events"
	"railway/internal/modules/booking"
	"railway/internal/repository"
)

var adminViewer = booking.Viewer{Admin: true}

type Service struct {
	users    UserRepository
	trains   TrainCounter
	bookings BookingService
	events   EventPublisher
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(
	users UserRepository,
	trains TrainCounter,
	bookings BookingService,
	publisher EventPublisher,
	logger *zap.Logger,
) *Service {
	return &Service{
		users:    users,
		trains:   trains,
		bookings: bookings,
		events:   publisher,
		logger:   logger,
		now:      time.Now,
	}
}

// -------------------- Statistics --------------------

func (s *Service) GetStatistics(ctx context.Context) (*StatisticsResponse, error) {
	totalUsers, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	totalTrains, err := s.trains.Count(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.bookings.Counts(ctx)
	if err != nil {
		return nil, err
	}

	return &StatisticsResponse{
		TotalUsers:  totalUsers,
		TotalTrains: totalTrains,
		Bookings:    counts,
	}, nil
}

// -------------------- Users --------------------

// ListUsers returns users matching q (name, username, email) with the number
// of bookings each one holds.
func (s *Service) ListUsers(ctx context.Context, q string) ([]UserSummary, error) {
	users, err := s.users.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	all, err := s.bookings.List(ctx)
	if err != nil {
		return nil, err
	}

	perUser := make(map[string]int, len(users))
	for _, b := range all {
		perUser[b.UserID]++
	}

	out := make([]UserSummary, 0, len(users))
	for i := range users {
		out = append(out, UserSummary{
			PublicUser:   users[i].Public(),
			BookingCount: perUser[users[i].ID],
		})
	}
	return out, nil
}

func (s *Service) GetUser(ctx context.Context, id string) (*UserDetail, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, mapUserError(err)
	}
	owned, err := s.bookings.ListByUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return &UserDetail{PublicUser: u.Public(), Bookings: owned}, nil
}

// UpdateUser edits name, email and role. Emails stay unique and an admin
// cannot demote themselves.
func (s *Service) UpdateUser(ctx context.Context, actorID, id string, req UpdateUserRequest) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	role := domain.UserRole(req.Role)

	existing, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil && existing.ID != id:
		return nil, ErrEmailTaken
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	updated, err := s.users.Update(ctx, id, func(u *domain.User) error {
		if u.ID == actorID && u.Role != role {
			return ErrSelfRoleChange
		}
		u.Name = strings.TrimSpace(req.Name)
		u.Email = email
		u.Role = role
		u.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		return nil, mapUserError(err)
	}

	s.logger.Info("user updated by admin",
		zap.String("user_id", id),
		zap.String("admin_id", actorID),
		zap.String("role", string(role)),
	)
	return updated, nil
}

// DeleteUser removes a user together with all of their bookings and returns
// how many bookings went with them.
func (s *Service) DeleteUser(ctx context.Context, actorID, id string) (int, error) {
	if actorID == id {
		return 0, ErrSelfDelete
	}

	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return 0, mapUserError(err)
	}

	// The account goes first: once it is gone Confirm refuses new bookings
	// for it, so the cascade below sees every booking the user will ever own.
	if err := s.users.Delete(ctx, id); err != nil {
		return 0, mapUserError(err)
	}
	removed, err := s.bookings.DeleteForUser(ctx, id)
	if err != nil {
		s.logger.Error("cascade bookings of deleted user", zap.String("user_id", id), zap.Error(err))
		return removed, err
	}

	s.logger.Info("user deleted",
		zap.String("user_id", id),
		zap.String("admin_id", actorID),
		zap.Int("bookings_removed", removed),
	)
	s.publish(ctx, events.TopicUserDeleted, u.Public())

	return removed, nil
}

// -------------------- Bookings --------------------

func (s *Service) ListBookings(ctx context.Context, q string) ([]domain.Booking, error) {
	if strings.TrimSpace(q) == "" {
		return s.bookings.List(ctx)
	}
	return s.bookings.Search(ctx, q)
}

func (s *Service) GetBooking(ctx context.Context, id string) (*domain.Booking, error) {
	return s.bookings.Get(ctx, id, adminViewer)
}

func (s *Service) ChangeBookingStatus(ctx context.Context, id string, status domain.BookingStatus) (*domain.Booking, error) {
	return s.bookings.ChangeStatus(ctx, id, status)
}

func (s *Service) DeleteBooking(ctx context.Context, id string) error {
	return s.bookings.Delete(ctx, id)
}

func (s *Service) BulkDeleteBookings(ctx context.Context, ids []string) (int, error) {
	return s.bookings.BulkDelete(ctx, ids)
}

func (s *Service) publish(ctx context.Context, topic string, payload any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, topic, payload); err != nil {
		s.logger.Warn("publish event failed", zap.String("topic", topic), zap.Error(err))
	}
}

func mapUserError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}
