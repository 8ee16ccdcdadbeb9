package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	intdb "campusbus/internal/db"
	"campusbus/internal/domain"
	"campusbus/internal/domain/models"
	"campusbus/internal/repositories"
	"campusbus/internal/utils"
)

// CatalogService manages stations, routes, buses, schedules and trackers.
type CatalogService struct {
	DB        *sql.DB
	Now       func() time.Time
	RequestID string
}

func (s CatalogService) db() *sql.DB { return dbOrDefault(s.DB) }

func (s CatalogService) now() time.Time { return nowOrDefault(s.Now) }

// BusView pairs a bus with its most recent location, if any.
type BusView struct {
	models.Bus
	CurrentLocation *models.Location
}

func (s CatalogService) ListStations(ctx context.Context) ([]models.Station, error) {
	list, err := repositories.StationRepository{DB: s.db()}.List(ctx)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	return list, nil
}

func (s CatalogService) GetStation(ctx context.Context, id int64) (models.Station, error) {
	st, err := repositories.StationRepository{DB: s.db()}.GetByID(ctx, id)
	if err != nil {
		return models.Station{}, lookupErr(err, "station")
	}
	return st, nil
}

func (s CatalogService) CreateStation(ctx context.Context, in models.StationInput) (models.Station, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(in); err != nil {
		return models.Station{}, err
	}
	id, err := repositories.StationRepository{DB: s.db()}.Insert(ctx, in, s.now())
	if err != nil {
		return models.Station{}, writeErr(err, "station")
	}
	utils.LogEvent(s.RequestID, "catalog", "create_station", in.Name)
	return s.GetStation(ctx, id)
}

func (s CatalogService) UpdateStation(ctx context.Context, id int64, in models.StationInput) (models.Station, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(in); err != nil {
		return models.Station{}, err
	}
	if err := (repositories.StationRepository{DB: s.db()}).Update(ctx, id, in); err != nil {
		return models.Station{}, writeErr(err, "station")
	}
	return s.GetStation(ctx, id)
}

// DeleteStation fails with a conflict while routes still reference the station.
func (s CatalogService) DeleteStation(ctx context.Context, id int64) error {
	if err := (repositories.StationRepository{DB: s.db()}).Delete(ctx, id); err != nil {
		if intdb.IsForeignKeyViolation(err) {
			return domain.ConflictError{Resource: "station", Msg: "station is used by a route", Err: err}
		}
		return writeErr(err, "station")
	}
	return nil
}

func validateRoute(in models.RouteInput) error {
	if err := validateInput(in); err != nil {
		return err
	}
	if in.FromStationID == in.ToStationID {
		return domain.ValidationError{Field: "to_station", Msg: "origin and destination must differ"}
	}
	if in.Price.IsNegative() {
		return domain.ValidationError{Field: "price", Msg: "must be greater than or equal to 0"}
	}
	return nil
}

func (s CatalogService) ListRoutes(ctx context.Context, activeOnly bool) ([]models.Route, error) {
	list, err := repositories.RouteRepository{DB: s.db()}.List(ctx, activeOnly)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	return list, nil
}

func (s CatalogService) GetRoute(ctx context.Context, id int64) (models.Route, error) {
	rt, err := repositories.RouteRepository{DB: s.db()}.GetByID(ctx, id)
	if err != nil {
		return models.Route{}, lookupErr(err, "route")
	}
	return rt, nil
}

func (s CatalogService) checkStations(ctx context.Context, in models.RouteInput) error {
	stations := repositories.StationRepository{DB: s.db()}
	if _, err := stations.GetByID(ctx, in.FromStationID); err != nil {
		return lookupErr(err, "from_station")
	}
	if _, err := stations.GetByID(ctx, in.ToStationID); err != nil {
		return lookupErr(err, "to_station")
	}
	return nil
}

func (s CatalogService) CreateRoute(ctx context.Context, in models.RouteInput) (models.Route, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateRoute(in); err != nil {
		return models.Route{}, err
	}
	if err := s.checkStations(ctx, in); err != nil {
		return models.Route{}, err
	}
	id, err := repositories.RouteRepository{DB: s.db()}.Insert(ctx, in, s.now())
	if err != nil {
		return models.Route{}, writeErr(err, "route")
	}
	utils.LogEvent(s.RequestID, "catalog", "create_route", in.Name+" price="+utils.FormatMoney(in.Price))
	return s.GetRoute(ctx, id)
}

// UpdateRoute changes the route price for future bookings only; existing
// bookings keep the total computed at creation.
func (s CatalogService) UpdateRoute(ctx context.Context, id int64, in models.RouteInput) (models.Route, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateRoute(in); err != nil {
		return models.Route{}, err
	}
	if err := s.checkStations(ctx, in); err != nil {
		return models.Route{}, err
	}
	if err := (repositories.RouteRepository{DB: s.db()}).Update(ctx, id, in); err != nil {
		return models.Route{}, writeErr(err, "route")
	}
	return s.GetRoute(ctx, id)
}

func (s CatalogService) withLocation(ctx context.Context, b models.Bus) (BusView, error) {
	v := BusView{Bus: b}
	loc, err := repositories.LocationRepository{DB: s.db()}.Latest(ctx, b.ID)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
	case err != nil:
		return BusView{}, domain.InternalError{Err: err}
	default:
		v.CurrentLocation = &loc
	}
	return v, nil
}

func (s CatalogService) ListBuses(ctx context.Context, status models.BusStatus, routeID int64) ([]BusView, error) {
	if status != "" && !status.Valid() {
		return nil, domain.ValidationError{Field: "status", Msg: "must be one of: active maintenance inactive"}
	}
	buses, err := repositories.BusRepository{DB: s.db()}.List(ctx, status, routeID)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	out := make([]BusView, 0, len(buses))
	for _, b := range buses {
		v, err := s.withLocation(ctx, b)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (s CatalogService) GetBus(ctx context.Context, id int64) (BusView, error) {
	b, err := repositories.BusRepository{DB: s.db()}.GetByID(ctx, id)
	if err != nil {
		return BusView{}, lookupErr(err, "bus")
	}
	return s.withLocation(ctx, b)
}

func normalizeBus(in models.BusInput) (models.BusInput, error) {
	in.BusNumber = strings.TrimSpace(in.BusNumber)
	in.LicensePlate = strings.TrimSpace(in.LicensePlate)
	in.DriverName = utils.NormalizeSpace(in.DriverName)
	in.DriverPhone = utils.NormalizePhone(in.DriverPhone)
	if in.Status == "" {
		in.Status = models.BusActive
	}
	if !in.Status.Valid() {
		return in, domain.ValidationError{Field: "status", Msg: "must be one of: active maintenance inactive"}
	}
	return in, validateInput(in)
}

func (s CatalogService) CreateBus(ctx context.Context, in models.BusInput) (BusView, error) {
	in, err := normalizeBus(in)
	if err != nil {
		return BusView{}, err
	}
	id, err := repositories.BusRepository{DB: s.db()}.Insert(ctx, in, s.now())
	if err != nil {
		return BusView{}, writeErr(err, "bus")
	}
	utils.LogEvent(s.RequestID, "catalog", "create_bus", in.BusNumber)
	return s.GetBus(ctx, id)
}

func (s CatalogService) UpdateBus(ctx context.Context, id int64, in models.BusInput) (BusView, error) {
	in, err := normalizeBus(in)
	if err != nil {
		return BusView{}, err
	}
	if err := (repositories.BusRepository{DB: s.db()}).Update(ctx, id, in, s.now()); err != nil {
		return BusView{}, writeErr(err, "bus")
	}
	return s.GetBus(ctx, id)
}

func (s CatalogService) ListSchedules(ctx context.Context, routeID int64) ([]models.Schedule, error) {
	list, err := repositories.ScheduleRepository{DB: s.db()}.List(ctx, routeID)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	return list, nil
}

func (s CatalogService) GetSchedule(ctx context.Context, id int64) (models.Schedule, error) {
	sc, err := repositories.ScheduleRepository{DB: s.db()}.GetByID(ctx, id)
	if err != nil {
		return models.Schedule{}, lookupErr(err, "schedule")
	}
	return sc, nil
}

func (s CatalogService) normalizeSchedule(ctx context.Context, in models.ScheduleInput) (models.ScheduleInput, error) {
	in.DayOfWeek = strings.ToLower(strings.TrimSpace(in.DayOfWeek))
	if err := validateInput(in); err != nil {
		return in, err
	}
	clock, err := utils.ParseClock(in.DepartureTime)
	if err != nil {
		return in, domain.ValidationError{Field: "departure_time", Msg: "time must be HH:MM or HH:MM:SS", Err: err}
	}
	in.DepartureTime = clock
	if _, err := (repositories.BusRepository{DB: s.db()}).GetByID(ctx, in.BusID); err != nil {
		return in, lookupErr(err, "bus")
	}
	if _, err := (repositories.RouteRepository{DB: s.db()}).GetByID(ctx, in.RouteID); err != nil {
		return in, lookupErr(err, "route")
	}
	return in, nil
}

func (s CatalogService) CreateSchedule(ctx context.Context, in models.ScheduleInput) (models.Schedule, error) {
	in, err := s.normalizeSchedule(ctx, in)
	if err != nil {
		return models.Schedule{}, err
	}
	id, err := repositories.ScheduleRepository{DB: s.db()}.Insert(ctx, in, s.now())
	if err != nil {
		return models.Schedule{}, writeErr(err, "schedule")
	}
	return s.GetSchedule(ctx, id)
}

func (s CatalogService) UpdateSchedule(ctx context.Context, id int64, in models.ScheduleInput) (models.Schedule, error) {
	in, err := s.normalizeSchedule(ctx, in)
	if err != nil {
		return models.Schedule{}, err
	}
	if err := (repositories.ScheduleRepository{DB: s.db()}).Update(ctx, id, in); err != nil {
		return models.Schedule{}, writeErr(err, "schedule")
	}
	return s.GetSchedule(ctx, id)
}

func (s CatalogService) DeleteSchedule(ctx context.Context, id int64) error {
	if err := (repositories.ScheduleRepository{DB: s.db()}).Delete(ctx, id); err != nil {
		return writeErr(err, "schedule")
	}
	return nil
}

func (s CatalogService) ListTrackers(ctx context.Context) ([]models.Tracker, error) {
	list, err := repositories.TrackerRepository{DB: s.db()}.List(ctx)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	return list, nil
}

// CreateTracker registers a device. device_id and bus_id are both unique, so
// a second tracker for the same bus is a conflict.
func (s CatalogService) CreateTracker(ctx context.Context, in models.TrackerInput) (models.Tracker, error) {
	in.DeviceID = strings.TrimSpace(in.DeviceID)
	if err := validateInput(in); err != nil {
		return models.Tracker{}, err
	}
	if _, err := (repositories.BusRepository{DB: s.db()}).GetByID(ctx, in.BusID); err != nil {
		return models.Tracker{}, lookupErr(err, "bus")
	}
	trackers := repositories.TrackerRepository{DB: s.db()}
	id, err := trackers.Insert(ctx, in, s.now())
	if err != nil {
		return models.Tracker{}, writeErr(err, "tracker")
	}
	utils.LogEvent(s.RequestID, "catalog", "create_tracker", in.DeviceID)
	t, err := trackers.GetByID(ctx, id)
	if err != nil {
		return models.Tracker{}, lookupErr(err, "tracker")
	}
	return t, nil
}

func (s CatalogService) UpdateTracker(ctx context.Context, id int64, in models.TrackerInput) (models.Tracker, error) {
	in.DeviceID = strings.TrimSpace(in.DeviceID)
	if err := validateInput(in); err != nil {
		return models.Tracker{}, err
	}
	trackers := repositories.TrackerRepository{DB: s.db()}
	if err := trackers.Update(ctx, id, in); err != nil {
		return models.Tracker{}, writeErr(err, "tracker")
	}
	t, err := trackers.GetByID(ctx, id)
	if err != nil {
		return models.Tracker{}, lookupErr(err, "tracker")
	}
	return t, nil
}
