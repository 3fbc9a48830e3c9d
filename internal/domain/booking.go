package domain

import (
	"fmt"
	"time"
)

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingWaiting   BookingStatus = "waiting"
	BookingCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingConfirmed, BookingWaiting, BookingCancelled:
		return true
	}
	return false
}

// CanTransition reports whether a booking may move from one status to another.
// Nothing moves back into the waiting list.
func CanTransition(from, to BookingStatus) bool {
	if from == to {
		return true
	}
	switch to {
	case BookingConfirmed:
		return from == BookingWaiting || from == BookingCancelled
	case BookingCancelled:
		return from == BookingConfirmed || from == BookingWaiting
	default:
		return false
	}
}

// DateLayout is the wire and storage format of journey dates.
const DateLayout = "2006-01-02"

const (
	SeatsPerCoach = 72
	MaxPassengers = 6
)

type Passenger struct {
	Name       string `json:"name"`
	Age        int    `json:"age"`
	Gender     string `json:"gender"`
	Berth      string `json:"berth"`
	SeatNumber string `json:"seat_number"`
	Coach      string `json:"coach"`
	// Ordinal is the 1-based seat position within the journey, 0 when waitlisted.
	Ordinal int `json:"ordinal,omitempty"`
	// Waitlist is the waiting-list position given to the passenger. It is kept
	// after a seat is assigned so positions are never handed out twice.
	Waitlist int `json:"waitlist,omitempty"`
}

// AssignSeat places the passenger at the given 1-based ordinal of class code.
func (p *Passenger) AssignSeat(code string, ordinal int) {
	p.Ordinal = ordinal
	p.SeatNumber = fmt.Sprintf("%s-%d", code, (ordinal-1)%SeatsPerCoach+1)
	p.Coach = fmt.Sprintf("%s%d", code, (ordinal-1)/SeatsPerCoach+1)
}

// AssignWaitlist puts the passenger at position n of the waiting list.
func (p *Passenger) AssignWaitlist(n int) {
	p.Ordinal = 0
	p.Waitlist = n
	p.SeatNumber = fmt.Sprintf("WL-%d", n)
	p.Coach = "-"
}

type Booking struct {
	ID            string        `json:"id"`
	PNR           string        `json:"pnr"`
	UserID        string        `json:"user_id"`
	TrainID       string        `json:"train_id"`
	TrainNumber   string        `json:"train_number"`
	TrainName     string        `json:"train_name"`
	From          string        `json:"from"`
	To            string        `json:"to"`
	DepartureDate string        `json:"departure_date"`
	DepartureTime string        `json:"departure_time"`
	ArrivalTime   string        `json:"arrival_time"`
	ClassCode     string        `json:"class_code"`
	ClassName     string        `json:"class_name"`
	Fare          int64         `json:"fare"`
	Status        BookingStatus `json:"status"`
	Passengers    []Passenger   `json:"passengers"`
	BookingDate   time.Time     `json:"booking_date"`
	CancelledAt   *time.Time    `json:"cancelled_at,omitempty"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func (b *Booking) PassengerCount() int { return len(b.Passengers) }

// Travelled reports whether the journey date is before today (both DateLayout).
func (b *Booking) Travelled(today string) bool {
	return b.DepartureDate < today
}

// SameJourney reports whether b travels on the given train, class and date.
func (b *Booking) SameJourney(trainID, classCode, date string) bool {
	return b.TrainID == trainID && b.ClassCode == classCode && b.DepartureDate == date
}

// BookingStats counts a user's tickets the way the dashboard tabs group them.
type BookingStats struct {
	Total     int `json:"total"`
	Upcoming  int `json:"upcoming"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
	Waiting   int `json:"waiting"`
}

func CountBookings(bookings []Booking, today string) BookingStats {
	var s BookingStats
	for i := range bookings {
		b := &bookings[i]
		s.Total++
		switch {
		case b.Status == BookingCancelled:
			s.Cancelled++
		case b.Travelled(today):
			s.Completed++
		default:
			s.Upcoming++
		}
		if b.Status == BookingWaiting {
			s.Waiting++
		}
	}
	return s
}
