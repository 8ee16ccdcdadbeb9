package handlers

import (
	"time"

	"campusbus/internal/domain/models"
	"campusbus/internal/services"
	"campusbus/internal/utils"

	"github.com/shopspring/decimal"
)

// Response shapes. Only the fields listed here leave the API; password
// hashes and internal ids stay behind.

type stationJSON struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Latitude    decimal.Decimal `json:"latitude"`
	Longitude   decimal.Decimal `json:"longitude"`
	Description string          `json:"description"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
}

func toStation(s models.Station) stationJSON {
	return stationJSON{
		ID:          s.ID,
		Name:        s.Name,
		Latitude:    s.Latitude,
		Longitude:   s.Longitude,
		Description: s.Description,
		IsActive:    s.IsActive,
		CreatedAt:   s.CreatedAt,
	}
}

type routeJSON struct {
	ID                int64           `json:"id"`
	Name              string          `json:"name"`
	FromStation       int64           `json:"from_station"`
	ToStation         int64           `json:"to_station"`
	FromStationName   string          `json:"from_station_name"`
	ToStationName     string          `json:"to_station_name"`
	Distance          float64         `json:"distance"`
	EstimatedDuration int             `json:"estimated_duration"`
	Price             decimal.Decimal `json:"price"`
	IsActive          bool            `json:"is_active"`
	CreatedAt         time.Time       `json:"created_at"`
}

func toRoute(r models.Route) routeJSON {
	return routeJSON{
		ID:                r.ID,
		Name:              r.Name,
		FromStation:       r.FromStationID,
		ToStation:         r.ToStationID,
		FromStationName:   r.FromStationName,
		ToStationName:     r.ToStationName,
		Distance:          r.Distance,
		EstimatedDuration: r.EstimatedDuration,
		Price:             r.Price,
		IsActive:          r.IsActive,
		CreatedAt:         r.CreatedAt,
	}
}

type currentLocationJSON struct {
	Latitude  decimal.Decimal `json:"latitude"`
	Longitude decimal.Decimal `json:"longitude"`
	Timestamp time.Time       `json:"timestamp"`
	Speed     float64         `json:"speed"`
}

type busJSON struct {
	ID              int64                `json:"id"`
	BusNumber       string               `json:"bus_number"`
	LicensePlate    string               `json:"license_plate"`
	Capacity        int                  `json:"capacity"`
	DriverName      string               `json:"driver_name"`
	DriverPhone     string               `json:"driver_phone"`
	Status          models.BusStatus     `json:"status"`
	CurrentLocation *currentLocationJSON `json:"current_location"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

func toBus(b models.Bus, loc *models.Location) busJSON {
	out := busJSON{
		ID:           b.ID,
		BusNumber:    b.BusNumber,
		LicensePlate: b.LicensePlate,
		Capacity:     b.Capacity,
		DriverName:   b.DriverName,
		DriverPhone:  b.DriverPhone,
		Status:       b.Status,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
	if loc != nil {
		out.CurrentLocation = &currentLocationJSON{
			Latitude:  loc.Latitude,
			Longitude: loc.Longitude,
			Timestamp: loc.Timestamp,
			Speed:     loc.Speed,
		}
	}
	return out
}

func toBusView(v services.BusView) busJSON { return toBus(v.Bus, v.CurrentLocation) }

type scheduleJSON struct {
	ID            int64     `json:"id"`
	Bus           int64     `json:"bus"`
	Route         int64     `json:"route"`
	BusNumber     string    `json:"bus_number"`
	RouteName     string    `json:"route_name"`
	DepartureTime string    `json:"departure_time"`
	DayOfWeek     string    `json:"day_of_week"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

func toSchedule(s models.Schedule) scheduleJSON {
	return scheduleJSON{
		ID:            s.ID,
		Bus:           s.BusID,
		Route:         s.RouteID,
		BusNumber:     s.BusNumber,
		RouteName:     s.RouteName,
		DepartureTime: s.DepartureTime,
		DayOfWeek:     s.DayOfWeek,
		IsActive:      s.IsActive,
		CreatedAt:     s.CreatedAt,
	}
}

type trackerJSON struct {
	ID        int64      `json:"id"`
	DeviceID  string     `json:"device_id"`
	Bus       int64      `json:"bus"`
	BusNumber string     `json:"bus_number"`
	IsActive  bool       `json:"is_active"`
	LastPing  *time.Time `json:"last_ping"`
	CreatedAt time.Time  `json:"created_at"`
}

func toTracker(t models.Tracker) trackerJSON {
	return trackerJSON{
		ID:        t.ID,
		DeviceID:  t.DeviceID,
		Bus:       t.BusID,
		BusNumber: t.BusNumber,
		IsActive:  t.IsActive,
		LastPing:  t.LastPing,
		CreatedAt: t.CreatedAt,
	}
}

type locationJSON struct {
	ID         int64           `json:"id"`
	Bus        int64           `json:"bus"`
	Latitude   decimal.Decimal `json:"latitude"`
	Longitude  decimal.Decimal `json:"longitude"`
	Altitude   float64         `json:"altitude"`
	Speed      float64         `json:"speed"`
	Heading    float64         `json:"heading"`
	Accuracy   float64         `json:"accuracy"`
	Satellites int             `json:"satellites"`
	Timestamp  time.Time       `json:"timestamp"`
}

func toLocation(l models.Location) locationJSON {
	return locationJSON{
		ID:         l.ID,
		Bus:        l.BusID,
		Latitude:   l.Latitude,
		Longitude:  l.Longitude,
		Altitude:   l.Altitude,
		Speed:      l.Speed,
		Heading:    l.Heading,
		Accuracy:   l.Accuracy,
		Satellites: l.Satellites,
		Timestamp:  l.Timestamp,
	}
}

func toLocations(ls []models.Location) []locationJSON {
	out := make([]locationJSON, 0, len(ls))
	for _, l := range ls {
		out = append(out, toLocation(l))
	}
	return out
}

type trackingJSON struct {
	Bus             busJSON        `json:"bus"`
	CurrentLocation *locationJSON  `json:"current_location"`
	RecentLocations []locationJSON `json:"recent_locations"`
}

func toTracking(v services.TrackingView) trackingJSON {
	out := trackingJSON{
		Bus:             toBus(v.Bus, v.CurrentLocation),
		RecentLocations: toLocations(v.Recent),
	}
	if v.CurrentLocation != nil {
		cur := toLocation(*v.CurrentLocation)
		out.CurrentLocation = &cur
	}
	return out
}

type routeDetailsJSON struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	FromStation string          `json:"from_station"`
	ToStation   string          `json:"to_station"`
	Price       decimal.Decimal `json:"price"`
}

type busDetailsJSON struct {
	ID           int64  `json:"id"`
	BusNumber    string `json:"bus_number"`
	LicensePlate string `json:"license_plate"`
	DriverName   string `json:"driver_name"`
}

type bookingJSON struct {
	BookingID          string               `json:"booking_id"`
	Route              int64                `json:"route"`
	Bus                int64                `json:"bus"`
	RouteDetails       *routeDetailsJSON    `json:"route_details,omitempty"`
	BusDetails         *busDetailsJSON      `json:"bus_details,omitempty"`
	UserName           string               `json:"user_name,omitempty"`
	DepartureDate      string               `json:"departure_date"`
	DepartureTime      string               `json:"departure_time"`
	NumberOfPassengers int                  `json:"number_of_passengers"`
	PhoneNumber        string               `json:"phone_number"`
	TotalPrice         decimal.Decimal      `json:"total_price"`
	Status             models.BookingStatus `json:"status"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`
}

func toBooking(b models.Booking) bookingJSON {
	return bookingJSON{
		BookingID:          b.PublicID.String(),
		Route:              b.RouteID,
		Bus:                b.BusID,
		DepartureDate:      utils.FormatDate(b.DepartureDate),
		DepartureTime:      b.DepartureTime,
		NumberOfPassengers: b.NumberOfPassengers,
		PhoneNumber:        b.PhoneNumber,
		TotalPrice:         b.TotalPrice,
		Status:             b.Status,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
}

func toBookingDetail(d models.BookingDetail) bookingJSON {
	out := toBooking(d.Booking)
	out.RouteDetails = &routeDetailsJSON{
		ID:          d.RouteID,
		Name:        d.RouteName,
		FromStation: d.FromStationName,
		ToStation:   d.ToStationName,
		Price:       d.RoutePrice,
	}
	out.BusDetails = &busDetailsJSON{
		ID:           d.BusID,
		BusNumber:    d.BusNumber,
		LicensePlate: d.LicensePlate,
		DriverName:   d.DriverName,
	}
	out.UserName = d.UserName
	return out
}

func toBookingDetails(ds []models.BookingDetail) []bookingJSON {
	out := make([]bookingJSON, 0, len(ds))
	for _, d := range ds {
		out = append(out, toBookingDetail(d))
	}
	return out
}

type notificationJSON struct {
	ID               int64                   `json:"id"`
	Title            string                  `json:"title"`
	Message          string                  `json:"message"`
	NotificationType models.NotificationType `json:"notification_type"`
	Booking          *int64                  `json:"booking"`
	IsRead           bool                    `json:"is_read"`
	CreatedAt        time.Time               `json:"created_at"`
}

func toNotification(n models.Notification) notificationJSON {
	return notificationJSON{
		ID:               n.ID,
		Title:            n.Title,
		Message:          n.Message,
		NotificationType: n.Type,
		Booking:          n.BookingID,
		IsRead:           n.IsRead,
		CreatedAt:        n.CreatedAt,
	}
}

type userJSON struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	StudentID   string    `json:"student_id"`
	PhoneNumber string    `json:"phone_number"`
	IsStudent   bool      `json:"is_student"`
	IsAdmin     bool      `json:"is_admin"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}

func toUser(u models.User) userJSON {
	return userJSON{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		StudentID:   u.StudentID,
		PhoneNumber: u.PhoneNumber,
		IsStudent:   u.IsStudent,
		IsAdmin:     u.IsAdmin,
		Role:        u.Role(),
		CreatedAt:   u.CreatedAt,
	}
}

type tokenJSON struct {
	Access  string   `json:"access"`
	Refresh string   `json:"refresh"`
	User    userJSON `json:"user"`
}

func toTokens(p services.TokenPair) tokenJSON {
	return tokenJSON{Access: p.Access, Refresh: p.Refresh, User: toUser(p.User)}
}

type dailyCountJSON struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type routeDemandJSON struct {
	Route string `json:"route"`
	Count int    `json:"count"`
}

type analyticsJSON struct {
	TodayBookings int               `json:"today_bookings"`
	LastSevenDays []dailyCountJSON  `json:"last_seven_days"`
	RouteDemand   []routeDemandJSON `json:"route_demand"`
}

func toAnalytics(s services.AnalyticsSummary) analyticsJSON {
	out := analyticsJSON{
		TodayBookings: s.TodayBookings,
		LastSevenDays: make([]dailyCountJSON, 0, len(s.LastSevenDays)),
		RouteDemand:   make([]routeDemandJSON, 0, len(s.RouteDemand)),
	}
	for _, d := range s.LastSevenDays {
		out.LastSevenDays = append(out.LastSevenDays, dailyCountJSON{Date: d.Date, Count: d.Count})
	}
	for _, r := range s.RouteDemand {
		out.RouteDemand = append(out.RouteDemand, routeDemandJSON{Route: r.Name, Count: r.Count})
	}
	return out
}
