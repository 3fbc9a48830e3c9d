package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrClassNotFound     = errors.New("travel class not found")
	ErrInsufficientSeats = errors.New("not enough seats available")
)

// Weekdays in the order trains list their running days.
var Weekdays = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// Seat availability labels shown next to each class.
const (
	AvailabilityAvailable = "available"
	AvailabilityWaiting   = "waiting"
	AvailabilityFull      = "full"
)

type TravelClass struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	Available int    `json:"available"`
	Price     int64  `json:"price"`
}

func (c TravelClass) AvailabilityLabel() string {
	switch {
	case c.Available > 10:
		return AvailabilityAvailable
	case c.Available > 0:
		return AvailabilityWaiting
	default:
		return AvailabilityFull
	}
}

type Train struct {
	ID            string        `json:"id"`
	Number        string        `json:"number"`
	Name          string        `json:"name"`
	From          string        `json:"from"`
	To            string        `json:"to"`
	DepartureTime string        `json:"departure_time"`
	ArrivalTime   string        `json:"arrival_time"`
	Duration      string        `json:"duration"`
	Distance      string        `json:"distance"`
	Classes       []TravelClass `json:"classes"`
	Days          []string      `json:"days"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Class returns the class with the given code. An empty code selects the
// first class of the train.
func (t *Train) Class(code string) (*TravelClass, error) {
	if len(t.Classes) == 0 {
		return nil, ErrClassNotFound
	}
	code = NormalizeClassCode(code)
	if code == "" {
		return &t.Classes[0], nil
	}
	for i := range t.Classes {
		if t.Classes[i].Code == code {
			return &t.Classes[i], nil
		}
	}
	return nil, ErrClassNotFound
}

// AdjustClass changes the availability of a class by delta. A decrement that
// would go below zero fails with ErrInsufficientSeats and leaves t unchanged.
func (t *Train) AdjustClass(code string, delta int) error {
	class, err := t.Class(code)
	if err != nil {
		return err
	}
	if class.Available+delta < 0 {
		return ErrInsufficientSeats
	}
	class.Available += delta
	return nil
}

func (t *Train) RunsOn(day time.Weekday) bool {
	name := WeekdayName(day)
	for _, d := range t.Days {
		if d == name {
			return true
		}
	}
	return false
}

// MinFare is the lowest class price, or 0 for a train without classes.
func (t *Train) MinFare() int64 {
	var min int64
	for i, c := range t.Classes {
		if i == 0 || c.Price < min {
			min = c.Price
		}
	}
	return min
}

func WeekdayName(day time.Weekday) string {
	// time.Weekday starts at Sunday
	return Weekdays[(int(day)+6)%7]
}

// NormalizeClassCode trims and upper-cases a class code ("3a " -> "3A").
func NormalizeClassCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
