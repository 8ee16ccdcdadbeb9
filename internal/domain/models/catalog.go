package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Station struct {
	ID          int64
	Name        string
	Latitude    decimal.Decimal
	Longitude   decimal.Decimal
	Description string
	IsActive    bool
	CreatedAt   time.Time
}

type StationInput struct {
	Name        string          `validate:"required,max=100"`
	Latitude    decimal.Decimal
	Longitude   decimal.Decimal
	Description string
	IsActive    *bool
}

type Route struct {
	ID                int64
	Name              string
	FromStationID     int64
	ToStationID       int64
	FromStationName   string
	ToStationName     string
	Distance          float64 // km
	EstimatedDuration int     // minutes
	Price             decimal.Decimal
	IsActive          bool
	CreatedAt         time.Time
}

type RouteInput struct {
	Name              string  `validate:"required,max=100"`
	FromStationID     int64   `validate:"required,gt=0"`
	ToStationID       int64   `validate:"required,gt=0"`
	Distance          float64 `validate:"gte=0"`
	EstimatedDuration int     `validate:"gte=0"`
	Price             decimal.Decimal
	IsActive          *bool
}

type BusStatus string

const (
	BusActive      BusStatus = "active"
	BusMaintenance BusStatus = "maintenance"
	BusInactive    BusStatus = "inactive"
)

func (s BusStatus) Valid() bool {
	switch s {
	case BusActive, BusMaintenance, BusInactive:
		return true
	}
	return false
}

type Bus struct {
	ID           int64
	BusNumber    string
	LicensePlate string
	Capacity     int
	DriverName   string
	DriverPhone  string
	Status       BusStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type BusInput struct {
	BusNumber    string `validate:"required,max=20"`
	LicensePlate string `validate:"required,max=20"`
	Capacity     int    `validate:"gte=1"`
	DriverName   string `validate:"required,max=100"`
	DriverPhone  string `validate:"required,max=15"`
	Status       BusStatus
}

type Schedule struct {
	ID            int64
	BusID         int64
	RouteID       int64
	BusNumber     string
	RouteName     string
	DepartureTime string // HH:MM:SS
	DayOfWeek     string
	IsActive      bool
	CreatedAt     time.Time
}

type ScheduleInput struct {
	BusID         int64  `validate:"required,gt=0"`
	RouteID       int64  `validate:"required,gt=0"`
	DepartureTime string `validate:"required"`
	DayOfWeek     string `validate:"required,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	IsActive      *bool
}

type Tracker struct {
	ID        int64
	DeviceID  string
	BusID     int64
	BusNumber string
	IsActive  bool
	LastPing  *time.Time
	CreatedAt time.Time
}

type TrackerInput struct {
	DeviceID string `validate:"required,max=50"`
	BusID    int64  `validate:"required,gt=0"`
	IsActive *bool
}
