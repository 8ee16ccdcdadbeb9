package services

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"campusbus/internal/domain"
	"campusbus/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	fixedNow    = time.Date(2024, 1, 15, 8, 0, 0, 0, time.Local)
	fixedID     = uuid.MustParse("6f1c2b7e-9d1a-4c53-8e2f-0b4f7a9d3c21")
	bookingCols = []string{"id", "booking_id", "user_id", "route_id", "bus_id", "departure_date", "departure_time",
		"number_of_passengers", "phone_number", "total_price", "status", "created_at", "updated_at"}
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func fixedClock() time.Time { return fixedNow }

func routeRows(id int64, price string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "from_station_id", "to_station_id", "from_name", "to_name",
		"distance", "estimated_duration", "price", "is_active", "created_at"}).
		AddRow(id, "Campus Loop", 1, 2, "Main Gate", "Library", 3.5, 15, price, true, fixedNow)
}

func busRows(id int64, status string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "bus_number", "license_plate", "capacity", "driver_name", "driver_phone",
		"status", "created_at", "updated_at"}).
		AddRow(id, "BUS-01", "B 1234 XY", 30, "Driver", "0811", status, fixedNow, fixedNow)
}

func bookingRow(status string) *sqlmock.Rows {
	return sqlmock.NewRows(bookingCols).
		AddRow(42, fixedID.String(), 7, 1, 2, fixedNow, "09:00:00", 2, "0800123", "5.00", status, fixedNow, fixedNow)
}

func newBookingService(db *sql.DB) BookingService {
	return BookingService{DB: db, Now: fixedClock, NewID: func() uuid.UUID { return fixedID }}
}

func expectCreate(mock sqlmock.Sqlmock, passengers int, total string) {
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM routes r")).WithArgs(1).WillReturnRows(routeRows(1, "2.50"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM buses bu WHERE bu.id = ?")).WithArgs(2).WillReturnRows(busRows(2, "active"))
	mock.ExpectExec("INSERT INTO bookings").
		WithArgs(fixedID.String(), 7, 1, 2, "2024-01-15", "09:00:00", passengers, "0800123", total, "pending",
			sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectExec("INSERT INTO notifications").
		WithArgs(7, "Booking Confirmed", sqlmock.AnyArg(), "booking_confirmed", 42, 0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
}

func bookingInput(passengers int, clock string) models.CreateBookingInput {
	return models.CreateBookingInput{
		RouteID:            1,
		BusID:              2,
		DepartureDate:      "2024-01-15",
		DepartureTime:      clock,
		NumberOfPassengers: passengers,
		PhoneNumber:        "0800123",
	}
}

func TestCreateBookingFreezesTotalAndNotifies(t *testing.T) {
	db, mock := newMock(t)
	expectCreate(mock, 3, "7.50")

	b, err := newBookingService(db).Create(context.Background(), 7, bookingInput(3, "09:00"))
	if err != nil {
		t.Fatalf("create error: %v", err)
	}
	if b.TotalPrice.StringFixed(2) != "7.50" {
		t.Fatalf("total = %s, want 7.50", b.TotalPrice.StringFixed(2))
	}
	if b.Status != models.BookingPending || b.ID != 42 || b.PublicID != fixedID {
		t.Fatalf("unexpected booking: %+v", b)
	}

	// a later price change touches only the route row
	mock.ExpectQuery(regexp.QuoteMeta("FROM bus_stations WHERE id = ?")).WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "latitude", "longitude", "description", "is_active", "created_at"}).
			AddRow(1, "Main Gate", "1.0", "2.0", "", true, fixedNow))
	mock.ExpectQuery(regexp.QuoteMeta("FROM bus_stations WHERE id = ?")).WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "latitude", "longitude", "description", "is_active", "created_at"}).
			AddRow(2, "Library", "1.0", "2.0", "", true, fixedNow))
	mock.ExpectExec("UPDATE routes SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM routes r")).WithArgs(1).WillReturnRows(routeRows(1, "9.00"))

	price := decimal.RequireFromString("9.00")
	_, err = CatalogService{DB: db, Now: fixedClock}.UpdateRoute(context.Background(), 1, models.RouteInput{
		Name: "Campus Loop", FromStationID: 1, ToStationID: 2, Price: price,
	})
	if err != nil {
		t.Fatalf("update route error: %v", err)
	}
	if b.TotalPrice.StringFixed(2) != "7.50" {
		t.Fatalf("booking total changed to %s", b.TotalPrice.StringFixed(2))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateBookingClockForms(t *testing.T) {
	for _, clock := range []string{"09:00", "09:00:00"} {
		db, mock := newMock(t)
		expectCreate(mock, 2, "5.00")

		b, err := newBookingService(db).Create(context.Background(), 7, bookingInput(2, clock))
		if err != nil {
			t.Fatalf("%s: create error: %v", clock, err)
		}
		want := time.Date(2024, 1, 15, 9, 0, 0, 0, time.Local)
		if got := b.Departure(); !got.Equal(want) {
			t.Fatalf("%s: departure = %v, want %v", clock, got, want)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("%s: unmet expectations: %v", clock, err)
		}
	}
}

func TestCreateBookingPassengerBounds(t *testing.T) {
	for _, n := range []int{0, 5, -1} {
		db, mock := newMock(t)
		_, err := newBookingService(db).Create(context.Background(), 7, bookingInput(n, "09:00"))
		var ve domain.ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("passengers=%d: expected validation error, got %v", n, err)
		}
		if ve.Field != "number_of_passengers" {
			t.Fatalf("passengers=%d: field = %q", n, ve.Field)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("passengers=%d: unexpected db use: %v", n, err)
		}
	}

	for n := models.MinPassengers; n <= models.MaxPassengers; n++ {
		db, mock := newMock(t)
		total := decimal.RequireFromString("2.50").Mul(decimal.NewFromInt(int64(n)))
		expectCreate(mock, n, total.StringFixed(2))
		if _, err := newBookingService(db).Create(context.Background(), 7, bookingInput(n, "09:00")); err != nil {
			t.Fatalf("passengers=%d: create error: %v", n, err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("passengers=%d: unmet expectations: %v", n, err)
		}
	}
}

func TestCreateBookingRejectsBadDate(t *testing.T) {
	db, _ := newMock(t)
	in := bookingInput(1, "09:00")
	in.DepartureDate = "15/01/2024"
	if _, err := newBookingService(db).Create(context.Background(), 7, in); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	in = bookingInput(1, "9am")
	if _, err := newBookingService(db).Create(context.Background(), 7, in); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateBookingUnknownRoute(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM routes r")).WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := newBookingService(db).Create(context.Background(), 7, bookingInput(1, "09:00"))
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateBookingNotificationFailureRollsBack(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM routes r")).WithArgs(1).WillReturnRows(routeRows(1, "2.50"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM buses bu WHERE bu.id = ?")).WithArgs(2).WillReturnRows(busRows(2, "active"))
	mock.ExpectExec("INSERT INTO bookings").WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectExec("INSERT INTO notifications").WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	_, err := newBookingService(db).Create(context.Background(), 7, bookingInput(1, "09:00"))
	if !domain.IsInternal(err) {
		t.Fatalf("expected internal error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCancelBookingWritesOneNotification(t *testing.T) {
	for _, status := range []string{"pending", "confirmed"} {
		db, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("WHERE b.booking_id = ? AND b.user_id = ? LIMIT 1 FOR UPDATE")).
			WithArgs(fixedID.String(), 7).WillReturnRows(bookingRow(status))
		mock.ExpectExec(regexp.QuoteMeta("UPDATE bookings SET status = ?")).
			WithArgs("cancelled", sqlmock.AnyArg(), 42).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO notifications").
			WithArgs(7, "Booking Cancelled", sqlmock.AnyArg(), "booking_cancelled", 42, 0, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		if err := newBookingService(db).Cancel(context.Background(), 7, fixedID.String()); err != nil {
			t.Fatalf("%s: cancel error: %v", status, err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("%s: unmet expectations: %v", status, err)
		}
	}
}

func TestCancelBookingNotificationFailureRollsBack(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE b.booking_id = ? AND b.user_id = ? LIMIT 1 FOR UPDATE")).
		WithArgs(fixedID.String(), 7).WillReturnRows(bookingRow("pending"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE bookings SET status = ?")).
		WithArgs("cancelled", sqlmock.AnyArg(), 42).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO notifications").WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	err := newBookingService(db).Cancel(context.Background(), 7, fixedID.String())
	if !domain.IsInternal(err) {
		t.Fatalf("expected internal error, got %v", err)
	}
	// the status update is undone with the failed notification
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCancelTerminalBookingFails(t *testing.T) {
	for _, status := range []string{"completed", "cancelled"} {
		db, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).WithArgs(fixedID.String(), 7).WillReturnRows(bookingRow(status))
		mock.ExpectRollback()

		err := newBookingService(db).Cancel(context.Background(), 7, fixedID.String())
		if !domain.IsInvalidStateTransition(err) {
			t.Fatalf("%s: expected invalid transition, got %v", status, err)
		}
		// no UPDATE and no notification were expected
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("%s: unmet expectations: %v", status, err)
		}
	}
}

func TestCancelOtherUsersBookingIsNotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).WithArgs(fixedID.String(), 8).
		WillReturnRows(sqlmock.NewRows(bookingCols))
	mock.ExpectRollback()

	err := newBookingService(db).Cancel(context.Background(), 8, fixedID.String())
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if domain.IsInvalidStateTransition(err) {
		t.Fatalf("foreign booking leaked its state")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCancelMalformedIDIsNotFound(t *testing.T) {
	db, mock := newMock(t)
	if err := newBookingService(db).Cancel(context.Background(), 7, "not-a-uuid"); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected db use: %v", err)
	}
}

func TestUpdateStatusConfirmDoesNotNotify(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE b.booking_id = ? LIMIT 1 FOR UPDATE")).
		WithArgs(fixedID.String()).WillReturnRows(bookingRow("pending"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE bookings SET status = ?")).
		WithArgs("confirmed", sqlmock.AnyArg(), 42).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	b, err := newBookingService(db).UpdateStatus(context.Background(), fixedID.String(), models.BookingConfirmed)
	if err != nil {
		t.Fatalf("update status error: %v", err)
	}
	if b.Status != models.BookingConfirmed {
		t.Fatalf("status = %s", b.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateStatusRejectsBackwardMove(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).WithArgs(fixedID.String()).WillReturnRows(bookingRow("confirmed"))
	mock.ExpectRollback()

	_, err := newBookingService(db).UpdateStatus(context.Background(), fixedID.String(), models.BookingPending)
	if !domain.IsInvalidStateTransition(err) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListAllRejectsUnknownStatus(t *testing.T) {
	db, _ := newMock(t)
	_, _, err := newBookingService(db).ListAll(context.Background(), models.BookingFilter{Status: "lost"})
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
