package booking

import "railway/internal/domain"

type PassengerRequest struct {
	Name   string `json:"name" validate:"required,min=3"`
	Age    int    `json:"age" validate:"required,min=1,max=120"`
	Gender string `json:"gender" validate:"omitempty,oneof=male female other"`
	Berth  string `json:"berth" validate:"omitempty,oneof=no-preference lower middle upper side-lower side-upper"`
}

// ConfirmRequest books one class of a train for up to six passengers.
// An empty class code selects the first class of the train.
type ConfirmRequest struct {
	TrainID       string             `json:"train_id" validate:"required"`
	ClassCode     string             `json:"class_code"`
	DepartureDate string             `json:"departure_date" validate:"required,datetime=2006-01-02"`
	Passengers    []PassengerRequest `json:"passengers" validate:"required,min=1,max=6,dive"`
}

type StatusRequest struct {
	Status string `json:"status" validate:"required,oneof=confirmed waiting cancelled"`
}

type BulkDeleteRequest struct {
	IDs []string `json:"ids" validate:"required,min=1"`
}

// MyBookings groups a passenger's tickets the way the dashboard tabs show them.
type MyBookings struct {
	Upcoming  []domain.Booking    `json:"upcoming"`
	Completed []domain.Booking    `json:"completed"`
	Cancelled []domain.Booking    `json:"cancelled"`
	Stats     domain.BookingStats `json:"stats"`
}

// Counts summarises all bookings for the admin dashboard.
type Counts struct {
	Total     int   `json:"total"`
	Confirmed int   `json:"confirmed"`
	Waiting   int   `json:"waiting"`
	Cancelled int   `json:"cancelled"`
	Revenue   int64 `json:"revenue"`
}

// Viewer is who is asking for a booking.
type Viewer struct {
	UserID string
	Admin  bool
}

func (v Viewer) canSee(b *domain.Booking) bool {
	return v.Admin || b.UserID == v.UserID
}

func (p PassengerRequest) passenger() domain.Passenger {
	gender := p.Gender
	if gender == "" {
		gender = "male"
	}
	berth := p.Berth
	if berth == "" {
		berth = "no-preference"
	}
	return domain.Passenger{
		Name:   p.Name,
		Age:    p.Age,
		Gender: gender,
		Berth:  berth,
	}
}
