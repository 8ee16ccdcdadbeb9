package services

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"campusbus/internal/domain"
	"campusbus/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
)

func trackerRow() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "device_id", "bus_id", "bus_number", "is_active", "last_ping", "created_at"}).
		AddRow(3, "dev-1", 5, "BUS-05", true, nil, fixedNow)
}

func riderRows(k int) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "user_id"})
	for i := 1; i <= k; i++ {
		rows.AddRow(100+i, 10+i)
	}
	return rows
}

// expectPing sets up one accepted ping for bus 5 with k confirmed bookings today.
func expectPing(mock sqlmock.Sqlmock, k int, ts time.Time) {
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM bus_trackers t")).WithArgs("dev-1").WillReturnRows(trackerRow())
	mock.ExpectExec(regexp.QuoteMeta("UPDATE bus_trackers SET last_ping = ?")).
		WithArgs(fixedNow, 3).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO bus_locations").
		WithArgs(5, "-6.2", "106.8", 0.0, 30.0, 90.0, 5.0, 8, ts, fixedNow).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id")).
		WithArgs(5, "2024-01-15", "confirmed").WillReturnRows(riderRows(k))
	for i := 1; i <= k; i++ {
		mock.ExpectExec("INSERT INTO notifications").
			WithArgs(10+i, "Bus Approaching!", "Bus BUS-05 is approaching your pickup station.", "bus_approaching", 100+i, 0, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(int64(i), 1))
	}
	mock.ExpectCommit()
}

func coord(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func ping(ts time.Time) models.LocationInput {
	return models.LocationInput{
		DeviceID:   "dev-1",
		Latitude:   coord("-6.2"),
		Longitude:  coord("106.8"),
		Speed:      30,
		Heading:    90,
		Accuracy:   5,
		Satellites: 8,
		Timestamp:  ts,
	}
}

func TestIngestFansOutOncePerPing(t *testing.T) {
	db, mock := newMock(t)
	svc := LocationService{DB: db, Now: fixedClock}
	ts := fixedNow.Add(-time.Minute)

	const k = 3
	expectPing(mock, k, ts)
	expectPing(mock, k, ts)

	total := 0
	for i := 0; i < 2; i++ {
		res, err := svc.Ingest(context.Background(), ping(ts))
		if err != nil {
			t.Fatalf("ping %d: ingest error: %v", i, err)
		}
		if res.Notified != k {
			t.Fatalf("ping %d: notified = %d, want %d", i, res.Notified, k)
		}
		if res.Location.BusID != 5 || res.BusNumber != "BUS-05" {
			t.Fatalf("ping %d: wrong bus: %+v", i, res)
		}
		total += res.Notified
	}
	if total != 2*k {
		t.Fatalf("total notifications = %d, want %d", total, 2*k)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestIngestAcceptsOlderTimestamp(t *testing.T) {
	db, mock := newMock(t)
	old := fixedNow.AddDate(0, 0, -3)
	expectPing(mock, 0, old)

	res, err := LocationService{DB: db, Now: fixedClock}.Ingest(context.Background(), ping(old))
	if err != nil {
		t.Fatalf("ingest error: %v", err)
	}
	if !res.Location.Timestamp.Equal(old) || res.Notified != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestIngestDefaultsTimestampToNow(t *testing.T) {
	db, mock := newMock(t)
	expectPing(mock, 0, fixedNow)

	if _, err := (LocationService{DB: db, Now: fixedClock}).Ingest(context.Background(), ping(time.Time{})); err != nil {
		t.Fatalf("ingest error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestIngestUnknownDeviceWritesNothing(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM bus_trackers t")).WithArgs("dev-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := LocationService{DB: db, Now: fixedClock}.Ingest(context.Background(), ping(fixedNow))
	if !domain.IsUnknownDevice(err) {
		t.Fatalf("expected unknown device, got %v", err)
	}
	if err.Error() != "invalid device ID or inactive tracker" {
		t.Fatalf("message = %q", err.Error())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestIngestRequiresDeviceID(t *testing.T) {
	db, mock := newMock(t)
	in := ping(fixedNow)
	in.DeviceID = "  "
	if _, err := (LocationService{DB: db}).Ingest(context.Background(), in); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected db use: %v", err)
	}
}

func TestIngestRequiresCoordinates(t *testing.T) {
	db, mock := newMock(t)
	svc := LocationService{DB: db, Now: fixedClock}

	noLat := ping(fixedNow)
	noLat.Latitude = nil
	noLong := ping(fixedNow)
	noLong.Longitude = nil

	for field, in := range map[string]models.LocationInput{"latitude": noLat, "longitude": noLong} {
		_, err := svc.Ingest(context.Background(), in)
		var ve domain.ValidationError
		if !errors.As(err, &ve) || ve.Field != field {
			t.Fatalf("missing %s: got %v", field, err)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected db use: %v", err)
	}
}

func TestIngestRejectsCoordinatesOutsideColumn(t *testing.T) {
	db, mock := newMock(t)
	svc := LocationService{DB: db, Now: fixedClock}

	cases := []struct {
		field, lat, long string
	}{
		{"latitude", "123.5", "106.8"},
		{"latitude", "-100", "106.8"},
		{"latitude", "-6.123456789", "106.8"},
		{"longitude", "-6.2", "1000"},
		{"longitude", "-6.2", "106.000000001"},
	}
	for _, tc := range cases {
		in := ping(fixedNow)
		in.Latitude = coord(tc.lat)
		in.Longitude = coord(tc.long)
		_, err := svc.Ingest(context.Background(), in)
		var ve domain.ValidationError
		if !errors.As(err, &ve) || ve.Field != tc.field {
			t.Fatalf("lat=%s long=%s: expected %s validation error, got %v", tc.lat, tc.long, tc.field, err)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected db use: %v", err)
	}
}

func TestIngestAcceptsCoordinateEdges(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM bus_trackers t")).WithArgs("dev-1").WillReturnRows(trackerRow())
	mock.ExpectExec(regexp.QuoteMeta("UPDATE bus_trackers SET last_ping = ?")).
		WithArgs(fixedNow, 3).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO bus_locations").
		WithArgs(5, "99.12345678", "-999.12345678", 0.0, 30.0, 90.0, 5.0, 8, fixedNow, fixedNow).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id")).
		WithArgs(5, "2024-01-15", "confirmed").WillReturnRows(riderRows(0))
	mock.ExpectCommit()

	in := ping(fixedNow)
	in.Latitude = coord("99.12345678")
	in.Longitude = coord("-999.12345678")
	if _, err := (LocationService{DB: db, Now: fixedClock}).Ingest(context.Background(), in); err != nil {
		t.Fatalf("ingest error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
