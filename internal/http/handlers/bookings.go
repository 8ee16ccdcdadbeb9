package handlers

import (
	"net/http"
	"strings"

	"campusbus/internal/domain/models"
	"campusbus/internal/http/middleware"
	"campusbus/internal/services"

	"github.com/gin-gonic/gin"
)

func bookingService(c *gin.Context) services.BookingService {
	return services.BookingService{RequestID: middleware.GetRequestID(c)}
}

// createBookingRequest accepts the snake_case fields and the camelCase
// spellings used by the web client.
type createBookingRequest struct {
	Route   Stringish `json:"route"`
	RouteID Stringish `json:"route_id"`
	Bus     Stringish `json:"bus"`
	BusID   Stringish `json:"bus_id"`

	DepartureDate      Stringish `json:"departure_date"`
	DepartureDateCamel Stringish `json:"departureDate"`
	DepartureTime      Stringish `json:"departure_time"`
	DepartureTimeCamel Stringish `json:"departureTime"`

	Passengers      Stringish `json:"number_of_passengers"`
	PassengersCamel Stringish `json:"numberOfPassengers"`

	Phone      Stringish `json:"phone_number"`
	PhoneCamel Stringish `json:"phoneNumber"`
}

func (r createBookingRequest) input() models.CreateBookingInput {
	return models.CreateBookingInput{
		RouteID:            firstSet(r.Route, r.RouteID).Int64(),
		BusID:              firstSet(r.Bus, r.BusID).Int64(),
		DepartureDate:      firstSet(r.DepartureDate, r.DepartureDateCamel).String(),
		DepartureTime:      firstSet(r.DepartureTime, r.DepartureTimeCamel).String(),
		NumberOfPassengers: firstSet(r.Passengers, r.PassengersCamel).Int(),
		PhoneNumber:        firstSet(r.Phone, r.PhoneCamel).String(),
	}
}

// POST /api/bookings/create
func CreateBooking(c *gin.Context) {
	var req createBookingRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	b, err := bookingService(c).Create(c.Request.Context(), middleware.UserID(c), req.input())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toBooking(b))
}

// GET /api/bookings/user
func ListMyBookings(c *gin.Context) {
	list, err := bookingService(c).ListForUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingDetails(list))
}

// GET /api/bookings/:id
func GetBooking(c *gin.Context) {
	d, err := bookingService(c).GetForUser(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingDetail(d))
}

// POST /api/bookings/:id/cancel
func CancelBooking(c *gin.Context) {
	if err := bookingService(c).Cancel(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "booking cancelled successfully"})
}

// GET /api/bookings/:id/ticket returns the e-ticket inline.
func GetBookingTicket(c *gin.Context) {
	bookings := bookingService(c)
	svc := services.TicketService{
		RequestID: middleware.GetRequestID(c),
		Loader:    bookings.GetForUser,
	}
	pdf, filename, err := svc.GenerateTicket(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// GET /api/admin/bookings?status=&departure_date=&page=&limit=
func AdminListBookings(c *gin.Context) {
	f := models.BookingFilter{
		Status:        models.BookingStatus(strings.ToLower(strings.TrimSpace(c.Query("status")))),
		DepartureDate: strings.TrimSpace(c.Query("departure_date")),
		Page:          queryInt(c, "page"),
		Limit:         queryInt(c, "limit"),
	}
	list, page, err := bookingService(c).ListAll(c.Request.Context(), f)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": toBookingDetails(list), "pagination": page})
}

type statusRequest struct {
	Status string `json:"status"`
}

// PUT /api/admin/bookings/:id/status
func AdminUpdateBookingStatus(c *gin.Context) {
	var req statusRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	next := models.BookingStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	b, err := bookingService(c).UpdateStatus(c.Request.Context(), c.Param("id"), next)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBooking(b))
}

// GET /api/admin/analytics
func AdminAnalytics(c *gin.Context) {
	sum, err := services.AnalyticsService{}.Summary(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAnalytics(sum))
}
