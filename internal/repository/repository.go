package repository

import "railway/internal/storage"

// Record kinds in the document store.
const (
	KindUsers    = "users"
	KindTrains   = "trains"
	KindBookings = "bookings"
)

var (
	ErrNotFound  = storage.ErrNotFound
	ErrDuplicate = storage.ErrDuplicate
)
