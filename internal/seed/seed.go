// Package seed loads the demo admin account and timetable.
package seed

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"railway/internal/domain"
	"railway/internal/repository"
	"railway/internal/storage"
)

const (
	AdminID       = "admin123"
	AdminUsername = "root"
	AdminEmail    = "admin@railways.com"
)

type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	Count(ctx context.Context) (int, error)
}

type TrainStore interface {
	Create(ctx context.Context, t *domain.Train) error
	Count(ctx context.Context) (int, error)
}

// EnsureSeeded creates the admin account when there are no users and the
// sample trains when there are no trains. Existing data is left alone.
func EnsureSeeded(ctx context.Context, users UserStore, trains TrainStore, adminPassword string, log *zap.Logger) error {
	now := time.Now().UTC()

	n, err := users.Count(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		admin := &domain.User{
			ID:           AdminID,
			Username:     AdminUsername,
			PasswordHash: string(hash),
			Name:         "Admin User",
			Email:        AdminEmail,
			Role:         domain.RoleAdmin,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := users.Create(ctx, admin); err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
		log.Info("admin account created", zap.String("username", AdminUsername))
	}

	n, err = trains.Count(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		for _, t := range Trains() {
			t.CreatedAt = now
			t.UpdatedAt = now
			if err := trains.Create(ctx, &t); err != nil {
				return fmt.Errorf("seed train %s: %w", t.Number, err)
			}
		}
		log.Info("sample trains created", zap.Int("count", len(Trains())))
	}

	return nil
}

// Reset removes every user, train and booking.
func Reset(ctx context.Context, backend storage.Backend) error {
	for _, kind := range []string{repository.KindBookings, repository.KindTrains, repository.KindUsers} {
		if err := backend.Truncate(ctx, kind); err != nil {
			return fmt.Errorf("reset %s: %w", kind, err)
		}
	}
	return nil
}

// Trains is the sample timetable.
func Trains() []domain.Train {
	daily := append([]string(nil), domain.Weekdays...)

	return []domain.Train{
		{
			ID: "train1", Number: "12301", Name: "Rajdhani Express",
			From: "New Delhi", To: "Mumbai Central",
			DepartureTime: "16:55", ArrivalTime: "08:15", Duration: "15h 20m", Distance: "1384 KM",
			Classes: []domain.TravelClass{
				{Code: "1A", Name: "AC First Class", Available: 12, Price: 3500},
				{Code: "2A", Name: "AC 2 Tier", Available: 46, Price: 2100},
				{Code: "3A", Name: "AC 3 Tier", Available: 64, Price: 1500},
			},
			Days: daily,
		},
		{
			ID: "train2", Number: "12259", Name: "Shatabdi Express",
			From: "New Delhi", To: "Lucknow",
			DepartureTime: "06:10", ArrivalTime: "12:40", Duration: "6h 30m", Distance: "513 KM",
			Classes: []domain.TravelClass{
				{Code: "EC", Name: "Executive Chair Car", Available: 56, Price: 1800},
				{Code: "CC", Name: "AC Chair Car", Available: 78, Price: 1000},
			},
			Days: []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat"},
		},
		{
			ID: "train3", Number: "12951", Name: "Mumbai Rajdhani",
			From: "Mumbai Central", To: "New Delhi",
			DepartureTime: "17:00", ArrivalTime: "08:35", Duration: "15h 35m", Distance: "1384 KM",
			Classes: []domain.TravelClass{
				{Code: "1A", Name: "AC First Class", Available: 10, Price: 3600},
				{Code: "2A", Name: "AC 2 Tier", Available: 48, Price: 2150},
				{Code: "3A", Name: "AC 3 Tier", Available: 72, Price: 1550},
			},
			Days: daily,
		},
		{
			ID: "train4", Number: "12002", Name: "Bhopal Shatabdi",
			From: "New Delhi", To: "Bhopal",
			DepartureTime: "06:15", ArrivalTime: "13:10", Duration: "6h 55m", Distance: "707 KM",
			Classes: []domain.TravelClass{
				{Code: "EC", Name: "Executive Chair Car", Available: 52, Price: 1700},
				{Code: "CC", Name: "AC Chair Car", Available: 82, Price: 950},
			},
			Days: daily,
		},
		{
			ID: "train5", Number: "12280", Name: "Taj Express",
			From: "New Delhi", To: "Agra Cantt",
			DepartureTime: "07:10", ArrivalTime: "10:05", Duration: "2h 55m", Distance: "195 KM",
			Classes: []domain.TravelClass{
				{Code: "CC", Name: "AC Chair Car", Available: 75, Price: 750},
				{Code: "2S", Name: "Second Sitting", Available: 120, Price: 250},
			},
			Days: daily,
		},
	}
}
