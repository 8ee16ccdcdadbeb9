package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

const (
	MinPassengers = 1
	MaxPassengers = 4
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCancelled},
	BookingConfirmed: {BookingCompleted, BookingCancelled},
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Booking is a reservation on a route/bus. TotalPrice is frozen at creation.
type Booking struct {
	ID                 int64
	PublicID           uuid.UUID
	UserID             int64
	RouteID            int64
	BusID              int64
	DepartureDate      time.Time
	DepartureTime      string // HH:MM:SS
	NumberOfPassengers int
	PhoneNumber        string
	TotalPrice         decimal.Decimal
	Status             BookingStatus
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Departure combines the stored date and time of day in the date's location.
func (b Booking) Departure() time.Time {
	t, err := time.Parse("15:04:05", b.DepartureTime)
	if err != nil {
		return b.DepartureDate
	}
	d := b.DepartureDate
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), t.Second(), 0, d.Location())
}

// BookingDetail is a booking joined with the catalog and owner rows it references.
type BookingDetail struct {
	Booking
	RouteName       string
	FromStationName string
	ToStationName   string
	RoutePrice      decimal.Decimal
	BusNumber       string
	LicensePlate    string
	DriverName      string
	UserName        string
}

// CreateBookingInput is the service-level booking request. Date/time may be
// given as strings or, when DepartureAt is set, as a structured value.
type CreateBookingInput struct {
	RouteID            int64
	BusID              int64
	DepartureDate      string
	DepartureTime      string
	DepartureAt        *time.Time
	NumberOfPassengers int
	PhoneNumber        string
}

// BookingFilter narrows admin listings.
type BookingFilter struct {
	Status        BookingStatus
	DepartureDate string
	Page          int
	Limit         int
}
