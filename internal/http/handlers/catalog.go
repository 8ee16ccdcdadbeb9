package handlers

import (
	"net/http"
	"strings"

	"campusbus/internal/domain/models"
	"campusbus/internal/http/middleware"
	"campusbus/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func catalog(c *gin.Context) services.CatalogService {
	return services.CatalogService{RequestID: middleware.GetRequestID(c)}
}

// ===== stations =====

type stationRequest struct {
	Name        string          `json:"name"`
	Latitude    decimal.Decimal `json:"latitude"`
	Longitude   decimal.Decimal `json:"longitude"`
	Description string          `json:"description"`
	IsActive    *bool           `json:"is_active"`
}

func (r stationRequest) input() models.StationInput {
	return models.StationInput{
		Name:        r.Name,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
		Description: r.Description,
		IsActive:    r.IsActive,
	}
}

// GET /api/stations
func ListStations(c *gin.Context) {
	list, err := catalog(c).ListStations(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	out := make([]stationJSON, 0, len(list))
	for _, s := range list {
		out = append(out, toStation(s))
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/stations/:id
func GetStation(c *gin.Context) {
	id, ok := idParam(c, "id", "station")
	if !ok {
		return
	}
	st, err := catalog(c).GetStation(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toStation(st))
}

// POST /api/stations
func CreateStation(c *gin.Context) {
	var req stationRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	st, err := catalog(c).CreateStation(c.Request.Context(), req.input())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toStation(st))
}

// PUT /api/stations/:id
func UpdateStation(c *gin.Context) {
	id, ok := idParam(c, "id", "station")
	if !ok {
		return
	}
	var req stationRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	st, err := catalog(c).UpdateStation(c.Request.Context(), id, req.input())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toStation(st))
}

// DELETE /api/stations/:id
func DeleteStation(c *gin.Context) {
	id, ok := idParam(c, "id", "station")
	if !ok {
		return
	}
	if err := catalog(c).DeleteStation(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ===== routes =====

type routeRequest struct {
	Name              string          `json:"name"`
	FromStation       Stringish       `json:"from_station"`
	FromStationID     Stringish       `json:"from_station_id"`
	ToStation         Stringish       `json:"to_station"`
	ToStationID       Stringish       `json:"to_station_id"`
	Distance          float64         `json:"distance"`
	EstimatedDuration int             `json:"estimated_duration"`
	Price             decimal.Decimal `json:"price"`
	IsActive          *bool           `json:"is_active"`
}

func (r routeRequest) input() models.RouteInput {
	return models.RouteInput{
		Name:              strings.TrimSpace(r.Name),
		FromStationID:     firstSet(r.FromStation, r.FromStationID).Int64(),
		ToStationID:       firstSet(r.ToStation, r.ToStationID).Int64(),
		Distance:          r.Distance,
		EstimatedDuration: r.EstimatedDuration,
		Price:             r.Price,
		IsActive:          r.IsActive,
	}
}

// GET /api/routes returns active routes only.
func ListRoutes(c *gin.Context) {
	list, err := catalog(c).ListRoutes(c.Request.Context(), true)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	out := make([]routeJSON, 0, len(list))
	for _, r := range list {
		out = append(out, toRoute(r))
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/routes/:id
func GetRoute(c *gin.Context) {
	id, ok := idParam(c, "id", "route")
	if !ok {
		return
	}
	rt, err := catalog(c).GetRoute(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRoute(rt))
}

// POST /api/routes
func CreateRoute(c *gin.Context) {
	var req routeRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	rt, err := catalog(c).CreateRoute(c.Request.Context(), req.input())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toRoute(rt))
}

// PUT /api/routes/:id
func UpdateRoute(c *gin.Context) {
	id, ok := idParam(c, "id", "route")
	if !ok {
		return
	}
	var req routeRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	rt, err := catalog(c).UpdateRoute(c.Request.Context(), id, req.input())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRoute(rt))
}

// ===== buses =====

type busRequest struct {
	BusNumber    string           `json:"bus_number"`
	LicensePlate string           `json:"license_plate"`
	Capacity     int              `json:"capacity"`
	DriverName   string           `json:"driver_name"`
	DriverPhone  Stringish        `json:"driver_phone"`
	Status       models.BusStatus `json:"status"`
}

func (r busRequest) input() models.BusInput {
	return models.BusInput{
		BusNumber:    r.BusNumber,
		LicensePlate: r.LicensePlate,
		Capacity:     r.Capacity,
		DriverName:   r.DriverName,
		DriverPhone:  r.DriverPhone.String(),
		Status:       models.BusStatus(strings.ToLower(strings.TrimSpace(string(r.Status)))),
	}
}

// GET /api/buses?status=&route_id=
func ListBuses(c *gin.Context) {
	status := models.BusStatus(strings.ToLower(strings.TrimSpace(c.Query("status"))))
	list, err := catalog(c).ListBuses(c.Request.Context(), status, int64(queryInt(c, "route_id")))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	out := make([]busJSON, 0, len(list))
	for _, b := range list {
		out = append(out, toBusView(b))
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/buses/:id
func GetBus(c *gin.Context) {
	id, ok := idParam(c, "id", "bus")
	if !ok {
		return
	}
	v, err := catalog(c).GetBus(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBusView(v))
}

// POST /api/buses
func CreateBus(c *gin.Context) {
	var req busRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	v, err := catalog(c).CreateBus(c.Request.Context(), req.input())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toBusView(v))
}

// PUT /api/buses/:id
func UpdateBus(c *gin.Context) {
	id, ok := idParam(c, "id", "bus")
	if !ok {
		return
	}
	var req busRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	v, err := catalog(c).UpdateBus(c.Request.Context(), id, req.input())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBusView(v))
}

// ===== schedules =====

type scheduleRequest struct {
	Bus           Stringish `json:"bus"`
	BusID         Stringish `json:"bus_id"`
	Route         Stringish `json:"route"`
	RouteID       Stringish `json:"route_id"`
	DepartureTime string    `json:"departure_time"`
	DayOfWeek     string    `json:"day_of_week"`
	IsActive      *bool     `json:"is_active"`
}

func (r scheduleRequest) input() models.ScheduleInput {
	return models.ScheduleInput{
		BusID:         firstSet(r.Bus, r.BusID).Int64(),
		RouteID:       firstSet(r.Route, r.RouteID).Int64(),
		DepartureTime: strings.TrimSpace(r.DepartureTime),
		DayOfWeek:     r.DayOfWeek,
		IsActive:      r.IsActive,
	}
}

// GET /api/schedules?route_id=
func ListSchedules(c *gin.Context) {
	list, err := catalog(c).ListSchedules(c.Request.Context(), int64(queryInt(c, "route_id")))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	out := make([]scheduleJSON, 0, len(list))
	for _, s := range list {
		out = append(out, toSchedule(s))
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/schedules/:id
func GetSchedule(c *gin.Context) {
	id, ok := idParam(c, "id", "schedule")
	if !ok {
		return
	}
	sc, err := catalog(c).GetSchedule(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSchedule(sc))
}

// POST /api/schedules
func CreateSchedule(c *gin.Context) {
	var req scheduleRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	sc, err := catalog(c).CreateSchedule(c.Request.Context(), req.input())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toSchedule(sc))
}

// PUT /api/schedules/:id
func UpdateSchedule(c *gin.Context) {
	id, ok := idParam(c, "id", "schedule")
	if !ok {
		return
	}
	var req scheduleRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	sc, err := catalog(c).UpdateSchedule(c.Request.Context(), id, req.input())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSchedule(sc))
}

// DELETE /api/schedules/:id
func DeleteSchedule(c *gin.Context) {
	id, ok := idParam(c, "id", "schedule")
	if !ok {
		return
	}
	if err := catalog(c).DeleteSchedule(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ===== trackers =====

type trackerRequest struct {
	DeviceID Stringish `json:"device_id"`
	Bus      Stringish `json:"bus"`
	BusID    Stringish `json:"bus_id"`
	IsActive *bool     `json:"is_active"`
}

func (r trackerRequest) input() models.TrackerInput {
	return models.TrackerInput{
		DeviceID: r.DeviceID.String(),
		BusID:    firstSet(r.Bus, r.BusID).Int64(),
		IsActive: r.IsActive,
	}
}

// GET /api/trackers
func ListTrackers(c *gin.Context) {
	list, err := catalog(c).ListTrackers(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	out := make([]trackerJSON, 0, len(list))
	for _, t := range list {
		out = append(out, toTracker(t))
	}
	c.JSON(http.StatusOK, out)
}

// POST /api/trackers
func CreateTracker(c *gin.Context) {
	var req trackerRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	t, err := catalog(c).CreateTracker(c.Request.Context(), req.input())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toTracker(t))
}

// PUT /api/trackers/:id
func UpdateTracker(c *gin.Context) {
	id, ok := idParam(c, "id", "tracker")
	if !ok {
		return
	}
	var req trackerRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	t, err := catalog(c).UpdateTracker(c.Request.Context(), id, req.input())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTracker(t))
}
