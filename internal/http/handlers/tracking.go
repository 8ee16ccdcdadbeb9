package handlers

import (
	"net/http"
	"strings"
	"time"

	"campusbus/internal/domain/models"
	"campusbus/internal/http/middleware"
	"campusbus/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

type locationRequest struct {
	DeviceID   Stringish        `json:"device_id"`
	Latitude   *decimal.Decimal `json:"latitude"`
	Longitude  *decimal.Decimal `json:"longitude"`
	Altitude   float64          `json:"altitude"`
	Speed      float64          `json:"speed"`
	Heading    float64          `json:"heading"`
	Accuracy   float64          `json:"accuracy"`
	Satellites int              `json:"satellites"`
	Timestamp  *time.Time       `json:"timestamp"`
}

// POST /api/location/update is called by the GPS trackers. The device id is
// the only credential.
func UpdateLocation(c *gin.Context) {
	var req locationRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	in := models.LocationInput{
		DeviceID:   req.DeviceID.String(),
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		Altitude:   req.Altitude,
		Speed:      req.Speed,
		Heading:    req.Heading,
		Accuracy:   req.Accuracy,
		Satellites: req.Satellites,
	}
	if req.Timestamp != nil {
		in.Timestamp = *req.Timestamp
	}

	res, err := services.LocationService{RequestID: middleware.GetRequestID(c)}.Ingest(c.Request.Context(), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"status":     "success",
		"bus_number": res.BusNumber,
		"location":   toLocation(res.Location),
		"notified":   res.Notified,
	})
}

// GET /api/buses/:id/track
func TrackBus(c *gin.Context) {
	id, ok := idParam(c, "id", "bus")
	if !ok {
		return
	}
	v, err := services.TrackingService{}.Track(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTracking(v))
}

// GET /api/feeds/vehicle-positions serves GTFS-Realtime protobuf, or the
// protojson rendering with ?format=json.
func VehiclePositionsFeed(c *gin.Context) {
	fm, err := services.FeedService{}.VehiclePositions(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	if strings.EqualFold(c.Query("format"), "json") {
		b, err := protojson.Marshal(fm)
		if err != nil {
			RespondDomainError(c, err)
			return
		}
		c.Data(http.StatusOK, "application/json", b)
		return
	}
	b, err := proto.Marshal(fm)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/x-protobuf", b)
}
