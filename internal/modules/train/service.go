package train

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"railway/internal/domain"
	"railway/internal/pkg/utils"
	"railway/internal/repository"
)

type Service struct {
	trains TrainRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewService(trains TrainRepository, logger *zap.Logger) *Service {
	return &Service{trains: trains, logger: logger, now: time.Now}
}

func (s *Service) List(ctx context.Context) ([]domain.Train, error) {
	return s.trains.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Train, error) {
	t, err := s.trains.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTrainNotFound
	}
	return t, err
}

// Search finds trains whose origin and destination contain the requested
// stations (case-insensitive) and that run on the journey date.
func (s *Service) Search(ctx context.Context, q SearchQuery) ([]SearchResult, error) {
	now := s.now()
	day, err := utils.ParseDate(q.Date, now)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if q.Date < utils.Today(now) {
		return nil, ErrDateInPast
	}

	from := strings.ToLower(strings.TrimSpace(q.From))
	to := strings.ToLower(strings.TrimSpace(q.To))
	passengers := q.Passengers
	if passengers <= 0 {
		passengers = 1
	}

	matches, err := s.trains.Filter(ctx, func(t *domain.Train) bool {
		if !strings.Contains(strings.ToLower(t.From), from) || !strings.Contains(strings.ToLower(t.To), to) {
			return false
		}
		if !t.RunsOn(day.Weekday()) {
			return false
		}
		if q.Class != "" {
			if _, err := t.Class(q.Class); err != nil {
				return false
			}
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(matches))
	for i := range matches {
		results = append(results, toSearchResult(&matches[i], passengers))
	}
	return results, nil
}

func (s *Service) Create(ctx context.Context, req TrainRequest) (*domain.Train, error) {
	if err := checkClasses(req.Classes); err != nil {
		return nil, err
	}
	if err := s.ensureNumberFree(ctx, req.Number, ""); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	t := &domain.Train{
		ID:        uuid.NewString(),
		CreatedAt: now,
	}
	applyRequest(t, req, now)

	if err := s.trains.Create(ctx, t); err != nil {
		return nil, err
	}
	s.logger.Info("train created", zap.String("train_id", t.ID), zap.String("number", t.Number))
	return t, nil
}

// Update replaces the timetable, classes and running days of a train.
func (s *Service) Update(ctx context.Context, id string, req TrainRequest) (*domain.Train, error) {
	if err := checkClasses(req.Classes); err != nil {
		return nil, err
	}
	if err := s.ensureNumberFree(ctx, req.Number, id); err != nil {
		return nil, err
	}

	t, err := s.trains.Update(ctx, id, func(t *domain.Train) error {
		applyRequest(t, req, s.now().UTC())
		return nil
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTrainNotFound
	}
	if err != nil {
		return nil, err
	}
	s.logger.Info("train updated", zap.String("train_id", id))
	return t, nil
}

// Delete removes the train. Existing bookings keep their copy of the journey.
func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.trains.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrTrainNotFound
	}
	if err == nil {
		s.logger.Info("train deleted", zap.String("train_id", id))
	}
	return err
}

func (s *Service) ensureNumberFree(ctx context.Context, number, exceptID string) error {
	number = strings.TrimSpace(number)
	clash, err := s.trains.Filter(ctx, func(t *domain.Train) bool {
		return t.Number == number && t.ID != exceptID
	})
	if err != nil {
		return err
	}
	if len(clash) > 0 {
		return ErrNumberTaken
	}
	return nil
}

func checkClasses(classes []ClassRequest) error {
	seen := make(map[string]bool, len(classes))
	for _, c := range classes {
		code := domain.NormalizeClassCode(c.Code)
		if seen[code] {
			return ErrDuplicateClass
		}
		seen[code] = true
	}
	return nil
}

func applyRequest(t *domain.Train, req TrainRequest, now time.Time) {
	t.Number = strings.TrimSpace(req.Number)
	t.Name = strings.TrimSpace(req.Name)
	t.From = strings.TrimSpace(req.From)
	t.To = strings.TrimSpace(req.To)
	t.DepartureTime = req.DepartureTime
	t.ArrivalTime = req.ArrivalTime
	t.Duration = req.Duration
	t.Distance = req.Distance
	t.Classes = req.classes()
	t.Days = req.days()
	t.UpdatedAt = now
}

func toSearchResult(t *domain.Train, passengers int) SearchResult {
	classes := make([]ClassAvailability, 0, len(t.Classes))
	for _, c := range t.Classes {
		classes = append(classes, ClassAvailability{
			Code:      c.Code,
			Name:      c.Name,
			Available: c.Available,
			Price:     c.Price,
			Status:    c.AvailabilityLabel(),
			Bookable:  c.Available >= passengers,
		})
	}

	return SearchResult{
		ID:            t.ID,
		Number:        t.Number,
		Name:          t.Name,
		From:          t.From,
		To:            t.To,
		DepartureTime: t.DepartureTime,
		ArrivalTime:   t.ArrivalTime,
		Duration:      t.Duration,
		Distance:      t.Distance,
		Days:          t.Days,
		Classes:       classes,
		MinFare:       t.MinFare(),
	}
}
