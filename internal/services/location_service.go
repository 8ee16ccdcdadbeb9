package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	intdb "campusbus/internal/db"
	"campusbus/internal/domain"
	"campusbus/internal/domain/models"
	"campusbus/internal/repositories"
	"campusbus/internal/utils"

	"github.com/shopspring/decimal"
)

// Coordinates are stored as DECIMAL(10,8) and DECIMAL(11,8).
const coordinatePlaces = 8

var (
	latitudeLimit  = decimal.NewFromInt(100)
	longitudeLimit = decimal.NewFromInt(1000)
)

// LocationService ingests GPS pings from trackers.
type LocationService struct {
	DB        *sql.DB
	Now       func() time.Time
	RequestID string
}

type IngestResult struct {
	Location  models.Location
	BusNumber string
	Notified  int
}

// Ingest resolves the device to its bus, updates the heartbeat, stores the
// ping and runs the approaching fan-out, all in one transaction. The device
// id is the only gate: unknown or inactive devices write nothing.
func (s LocationService) Ingest(ctx context.Context, in models.LocationInput) (IngestResult, error) {
	in.DeviceID = strings.TrimSpace(in.DeviceID)
	if err := validateInput(in); err != nil {
		return IngestResult{}, err
	}
	if err := checkCoordinate("latitude", in.Latitude, latitudeLimit); err != nil {
		return IngestResult{}, err
	}
	if err := checkCoordinate("longitude", in.Longitude, longitudeLimit); err != nil {
		return IngestResult{}, err
	}

	now := nowOrDefault(s.Now)
	ts := in.Timestamp
	if ts.IsZero() {
		ts = now
	}

	var out IngestResult
	err := intdb.WithTx(ctx, dbOrDefault(s.DB), func(tx *sql.Tx) error {
		trackers := repositories.TrackerRepository{DB: tx}
		tr, err := trackers.GetActiveByDevice(ctx, in.DeviceID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return domain.UnknownDeviceError{DeviceID: in.DeviceID}
			}
			return domain.InternalError{Err: err}
		}
		if err := trackers.Touch(ctx, tr.ID, now); err != nil {
			return domain.InternalError{Err: err}
		}

		loc := models.Location{
			BusID:      tr.BusID,
			Latitude:   *in.Latitude,
			Longitude:  *in.Longitude,
			Altitude:   in.Altitude,
			Speed:      in.Speed,
			Heading:    in.Heading,
			Accuracy:   in.Accuracy,
			Satellites: in.Satellites,
			Timestamp:  ts,
			CreatedAt:  now,
		}
		if err := (repositories.LocationRepository{DB: tx}).Insert(ctx, &loc); err != nil {
			return domain.InternalError{Err: err}
		}

		notifier := NotificationService{DB: s.DB, Now: s.Now, RequestID: s.RequestID}
		n, err := notifier.BusApproaching(ctx, tx, tr.BusID, tr.BusNumber)
		if err != nil {
			return domain.InternalError{Err: err}
		}
		out = IngestResult{Location: loc, BusNumber: tr.BusNumber, Notified: n}
		return nil
	})
	if err != nil {
		if domain.IsUnknownDevice(err) {
			utils.LogEvent(s.RequestID, "location", "ingest_rejected", "device_id="+in.DeviceID)
		}
		return IngestResult{}, domain.Internal(err)
	}

	utils.LogEvent(s.RequestID, "location", "ingest", fmt.Sprintf("bus=%s device_id=%s notified=%d", out.BusNumber, in.DeviceID, out.Notified))
	return out, nil
}

// checkCoordinate rejects values the location columns cannot hold, so they
// surface as field errors rather than a failed insert.
func checkCoordinate(field string, v *decimal.Decimal, limit decimal.Decimal) error {
	if v == nil {
		return domain.ValidationError{Field: field, Msg: "this field is required"}
	}
	if v.Abs().GreaterThanOrEqual(limit) {
		return domain.ValidationError{Field: field, Msg: "must be greater than -" + limit.String() + " and less than " + limit.String()}
	}
	if !v.Round(coordinatePlaces).Equal(*v) {
		return domain.ValidationError{Field: field, Msg: fmt.Sprintf("must have at most %d decimal places", coordinatePlaces)}
	}
	return nil
}
