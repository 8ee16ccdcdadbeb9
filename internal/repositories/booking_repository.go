package repositories

import (
	"context"
	"strings"
	"time"

	intdb "campusbus/internal/db"
	"campusbus/internal/domain/models"

	"github.com/google/uuid"
)

type BookingRepository struct {
	DB intdb.Querier
}

const bookingColumns = `b.id, b.booking_id, b.user_id, b.route_id, b.bus_id,
	b.departure_date, b.departure_time, b.number_of_passengers, b.phone_number,
	b.total_price, b.status, b.created_at, b.updated_at`

const bookingDetailSelect = `SELECT ` + bookingColumns + `,
	r.name, fs.name, ts.name, r.price,
	bu.bus_number, bu.license_plate, bu.driver_name,
	TRIM(CONCAT(u.first_name, ' ', u.last_name))
FROM bookings b
JOIN routes r ON r.id = b.route_id
JOIN bus_stations fs ON fs.id = r.from_station_id
JOIN bus_stations ts ON ts.id = r.to_station_id
JOIN buses bu ON bu.id = b.bus_id
JOIN users u ON u.id = b.user_id`

func scanBooking(s rowScanner, extra ...any) (models.Booking, error) {
	var b models.Booking
	var status string
	dest := []any{
		&b.ID, &b.PublicID, &b.UserID, &b.RouteID, &b.BusID,
		&b.DepartureDate, &b.DepartureTime, &b.NumberOfPassengers, &b.PhoneNumber,
		&b.TotalPrice, &status, &b.CreatedAt, &b.UpdatedAt,
	}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return models.Booking{}, notFound(err)
	}
	b.Status = models.BookingStatus(status)
	return b, nil
}

func scanBookingDetail(s rowScanner) (models.BookingDetail, error) {
	var d models.BookingDetail
	b, err := scanBooking(s,
		&d.RouteName, &d.FromStationName, &d.ToStationName, &d.RoutePrice,
		&d.BusNumber, &d.LicensePlate, &d.DriverName,
		&d.UserName,
	)
	if err != nil {
		return models.BookingDetail{}, err
	}
	d.Booking = b
	return d, nil
}

// Insert stores a new booking and fills in its internal id.
func (r BookingRepository) Insert(ctx context.Context, b *models.Booking) error {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO bookings (booking_id, user_id, route_id, bus_id, departure_date, departure_time,
			number_of_passengers, phone_number, total_price, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, b.PublicID.String(), b.UserID, b.RouteID, b.BusID, b.DepartureDate.Format("2006-01-02"), b.DepartureTime,
		b.NumberOfPassengers, b.PhoneNumber, b.TotalPrice.StringFixed(2), string(b.Status), b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = id
	return nil
}

// GetForUser looks a booking up by public id, scoped to its owner. With
// forUpdate the row is locked until the surrounding transaction ends.
func (r BookingRepository) GetForUser(ctx context.Context, publicID uuid.UUID, userID int64, forUpdate bool) (models.Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings b WHERE b.booking_id = ? AND b.user_id = ? LIMIT 1`
	if forUpdate {
		q += ` FOR UPDATE`
	}
	return scanBooking(r.DB.QueryRowContext(ctx, q, publicID.String(), userID))
}

func (r BookingRepository) GetByPublicID(ctx context.Context, publicID uuid.UUID, forUpdate bool) (models.Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings b WHERE b.booking_id = ? LIMIT 1`
	if forUpdate {
		q += ` FOR UPDATE`
	}
	return scanBooking(r.DB.QueryRowContext(ctx, q, publicID.String()))
}

func (r BookingRepository) UpdateStatus(ctx context.Context, id int64, status models.BookingStatus, now time.Time) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?`, string(status), now, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r BookingRepository) GetDetailForUser(ctx context.Context, publicID uuid.UUID, userID int64) (models.BookingDetail, error) {
	row := r.DB.QueryRowContext(ctx, bookingDetailSelect+` WHERE b.booking_id = ? AND b.user_id = ? LIMIT 1`, publicID.String(), userID)
	return scanBookingDetail(row)
}

// ListForUser returns the user's bookings newest first.
func (r BookingRepository) ListForUser(ctx context.Context, userID int64) ([]models.BookingDetail, error) {
	rows, err := r.DB.QueryContext(ctx, bookingDetailSelect+` WHERE b.user_id = ? ORDER BY b.created_at DESC, b.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.BookingDetail{}
	for rows.Next() {
		d, err := scanBookingDetail(rows)
		if err != nil {
			return out, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// List returns one page of all bookings plus the unpaged total.
func (r BookingRepository) List(ctx context.Context, f models.BookingFilter, limit, offset int) ([]models.BookingDetail, int, error) {
	where := []string{}
	args := []any{}
	if f.Status != "" {
		where = append(where, "b.status = ?")
		args = append(args, string(f.Status))
	}
	if f.DepartureDate != "" {
		where = append(where, "b.departure_date = ?")
		args = append(args, f.DepartureDate)
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings b`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.DB.QueryContext(ctx, bookingDetailSelect+clause+` ORDER BY b.created_at DESC, b.id DESC LIMIT ? OFFSET ?`,
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []models.BookingDetail{}
	for rows.Next() {
		d, err := scanBookingDetail(rows)
		if err != nil {
			return out, total, err
		}
		out = append(out, d)
	}
	return out, total, rows.Err()
}

// ConfirmedRider is the minimum needed to notify the owner of a booking.
type ConfirmedRider struct {
	BookingID int64
	UserID    int64
}

// ListConfirmedForBusOnDate returns confirmed bookings for a bus departing on date.
func (r BookingRepository) ListConfirmedForBusOnDate(ctx context.Context, busID int64, date time.Time) ([]ConfirmedRider, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, user_id
		FROM bookings
		WHERE bus_id = ? AND departure_date = ? AND status = ?
		ORDER BY id ASC
	`, busID, date.Format("2006-01-02"), string(models.BookingConfirmed))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ConfirmedRider{}
	for rows.Next() {
		var c ConfirmedRider
		if err := rows.Scan(&c.BookingID, &c.UserID); err != nil {
			return out, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CountActiveByDate counts non-cancelled bookings per departure date in [from, to].
func (r BookingRepository) CountActiveByDate(ctx context.Context, from, to time.Time) (map[string]int, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT DATE_FORMAT(departure_date, '%Y-%m-%d'), COUNT(*)
		FROM bookings
		WHERE departure_date BETWEEN ? AND ? AND status <> ?
		GROUP BY departure_date
	`, from.Format("2006-01-02"), to.Format("2006-01-02"), string(models.BookingCancelled))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var day string
		var n int
		if err := rows.Scan(&day, &n); err != nil {
			return out, err
		}
		out[day] = n
	}
	return out, rows.Err()
}

type RouteDemand struct {
	Name  string
	Count int
}

// RouteDemand counts non-cancelled bookings per route name.
func (r BookingRepository) RouteDemand(ctx context.Context) ([]RouteDemand, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT COALESCE(NULLIF(r.name, ''), 'Unknown Route'), COUNT(*)
		FROM bookings b
		LEFT JOIN routes r ON r.id = b.route_id
		WHERE b.status <> ?
		GROUP BY 1
		ORDER BY 2 DESC, 1 ASC
	`, string(models.BookingCancelled))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []RouteDemand{}
	for rows.Next() {
		var d RouteDemand
		if err := rows.Scan(&d.Name, &d.Count); err != nil {
			return out, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
