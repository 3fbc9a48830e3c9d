package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"railway/internal/domain"
	"railway/internal/events"
	"railway/internal/pkg/jwt"
	"railway/internal/pkg/metrics"
	"railway/internal/pkg/utils"
	"railway/internal/repository"
	"railway/internal/session"
)

type Service struct {
	users    UserRepository
	bookings BookingLister
	jwt      *jwt.Service
	revoker  session.Revoker
	events   EventPublisher
	logger   *zap.Logger
	now      func() time.Time

	// serializes uniqueness checks with the insert that follows
	registerMu sync.Mutex
}

func NewService(
	users UserRepository,
	bookings BookingLister,
	jwtService *jwt.Service,
	revoker session.Revoker,
	publisher EventPublisher,
	logger *zap.Logger,
) *Service {
	return &Service{
		users:    users,
		bookings: bookings,
		jwt:      jwtService,
		revoker:  revoker,
		events:   publisher,
		logger:   logger,
		now:      time.Now,
	}
}

// Register creates a passenger account. It does not log the user in.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	s.registerMu.Lock()
	defer s.registerMu.Unlock()

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID), zap.String("username", user.Username))
	s.publish(ctx, events.TopicUserRegistered, user.Public())

	return user, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			metrics.RecordLogin(false)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := CheckPassword(req.Password, user.PasswordHash); err != nil {
		metrics.RecordLogin(false)
		return nil, ErrInvalidCredentials
	}

	token, exp, err := s.jwt.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}
	metrics.RecordLogin(true)

	return &LoginResponse{
		Token:     token,
		ExpiresAt: exp,
		User:      user.Public(),
	}, nil
}

// Logout revokes the presented token until it expires.
func (s *Service) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return nil
	}
	return s.revoker.Revoke(ctx, tokenID, expiresAt)
}

func (s *Service) Me(ctx context.Context, userID string) (*ProfileResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	bookings, err := s.bookings.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &ProfileResponse{
		PublicUser: user.Public(),
		Stats:      domain.CountBookings(bookings, utils.Today(s.now())),
	}, nil
}

func (s *Service) publish(ctx context.Context, topic string, payload any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, topic, payload); err != nil {
		s.logger.Warn("publish event failed", zap.String("topic", topic), zap.Error(err))
	}
}
