package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"campusbus/internal/domain"
	"campusbus/internal/domain/models"
	"campusbus/internal/repositories"
)

const (
	recentWindow = time.Hour
	recentLimit  = 10
)

type TrackingView struct {
	Bus             models.Bus
	CurrentLocation *models.Location
	Recent          []models.Location
}

type TrackingService struct {
	DB  *sql.DB
	Now func() time.Time
}

// Track returns the latest location of an active bus plus at most ten pings
// from the last hour. Buses that are not active are reported as not found.
func (s TrackingService) Track(ctx context.Context, busID int64) (TrackingView, error) {
	db := dbOrDefault(s.DB)
	bus, err := repositories.BusRepository{DB: db}.GetByID(ctx, busID)
	if err != nil {
		return TrackingView{}, lookupErr(err, "bus")
	}
	if bus.Status != models.BusActive {
		return TrackingView{}, domain.NotFoundError{Resource: "bus"}
	}

	locs := repositories.LocationRepository{DB: db}
	view := TrackingView{Bus: bus, Recent: []models.Location{}}
	latest, err := locs.Latest(ctx, busID)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
	case err != nil:
		return TrackingView{}, domain.InternalError{Err: err}
	default:
		view.CurrentLocation = &latest
	}

	since := nowOrDefault(s.Now).Add(-recentWindow)
	recent, err := locs.Since(ctx, busID, since, recentLimit)
	if err != nil {
		return TrackingView{}, domain.InternalError{Err: err}
	}
	view.Recent = recent
	return view, nil
}
