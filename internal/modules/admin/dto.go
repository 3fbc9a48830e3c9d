package admin

import (
	"railway/internal/domain"
	"railway/internal/modules/booking"
)

// UserSummary is a row of the admin user table.
type UserSummary struct {
	domain.PublicUser
	BookingCount int `json:"booking_count"`
}

type UserDetail struct {
	domain.PublicUser
	Bookings []domain.Booking `json:"bookings"`
}

type UpdateUserRequest struct {
	Name  string `json:"name" validate:"required,min=3"`
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required,oneof=admin user"`
}

type StatisticsResponse struct {
	TotalUsers  int             `json:"total_users"`
	TotalTrains int             `json:"total_trains"`
	Bookings    *booking.Counts `json:"bookings"`
}
