package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Location is one GPS ping for a bus. Rows are append-only.
type Location struct {
	ID         int64
	BusID      int64
	Latitude   decimal.Decimal
	Longitude  decimal.Decimal
	Altitude   float64
	Speed      float64 // km/h
	Heading    float64 // degrees
	Accuracy   float64 // meters
	Satellites int
	Timestamp  time.Time
	CreatedAt  time.Time
}

// LocationInput is a raw tracker ping. Nil coordinates mean the field was absent.
type LocationInput struct {
	DeviceID   string `validate:"required,max=50"`
	Latitude   *decimal.Decimal
	Longitude  *decimal.Decimal
	Altitude   float64
	Speed      float64
	Heading    float64
	Accuracy   float64
	Satellites int
	Timestamp  time.Time
}

// BusPosition is the latest known location of a bus, used by the realtime feed.
type BusPosition struct {
	BusID     int64
	BusNumber string
	Location
}
