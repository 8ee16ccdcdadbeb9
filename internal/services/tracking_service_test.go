package services

import (
	"context"
	"regexp"
	"testing"
	"time"

	"campusbus/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
)

var locationCols = []string{"id", "bus_id", "latitude", "longitude", "altitude", "speed", "heading", "accuracy", "satellites", "timestamp", "created_at"}

func TestTrackReturnsCurrentAndRecent(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM buses bu WHERE bu.id = ?")).WithArgs(5).WillReturnRows(busRows(5, "active"))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY timestamp DESC, id DESC LIMIT 1")).WithArgs(5).
		WillReturnRows(sqlmock.NewRows(locationCols).AddRow(9, 5, "-6.2", "106.8", 0.0, 20.0, 45.0, 3.0, 7, fixedNow, fixedNow))
	mock.ExpectQuery(regexp.QuoteMeta("timestamp >= ?")).WithArgs(5, fixedNow.Add(-time.Hour), 10).
		WillReturnRows(sqlmock.NewRows(locationCols).
			AddRow(9, 5, "-6.2", "106.8", 0.0, 20.0, 45.0, 3.0, 7, fixedNow, fixedNow).
			AddRow(8, 5, "-6.1", "106.7", 0.0, 18.0, 40.0, 3.0, 7, fixedNow.Add(-10*time.Minute), fixedNow))

	view, err := TrackingService{DB: db, Now: fixedClock}.Track(context.Background(), 5)
	if err != nil {
		t.Fatalf("track error: %v", err)
	}
	if view.CurrentLocation == nil || view.CurrentLocation.ID != 9 {
		t.Fatalf("current location = %+v", view.CurrentLocation)
	}
	if len(view.Recent) != 2 {
		t.Fatalf("recent = %d", len(view.Recent))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTrackWithoutLocations(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM buses bu WHERE bu.id = ?")).WithArgs(5).WillReturnRows(busRows(5, "active"))
	mock.ExpectQuery(regexp.QuoteMeta("LIMIT 1")).WithArgs(5).WillReturnRows(sqlmock.NewRows(locationCols))
	mock.ExpectQuery(regexp.QuoteMeta("timestamp >= ?")).WillReturnRows(sqlmock.NewRows(locationCols))

	view, err := TrackingService{DB: db, Now: fixedClock}.Track(context.Background(), 5)
	if err != nil {
		t.Fatalf("track error: %v", err)
	}
	if view.CurrentLocation != nil || len(view.Recent) != 0 {
		t.Fatalf("expected empty view, got %+v", view)
	}
}

func TestTrackInactiveBusIsNotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM buses bu WHERE bu.id = ?")).WithArgs(5).WillReturnRows(busRows(5, "maintenance"))

	if _, err := (TrackingService{DB: db}).Track(context.Background(), 5); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestVehiclePositionsFeed(t *testing.T) {
	db, mock := newMock(t)
	cols := append(append([]string{}, locationCols...), "bus_number")
	mock.ExpectQuery(regexp.QuoteMeta("FROM bus_locations l")).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(9, 5, "-6.2", "106.8", 0.0, 36.0, 45.0, 3.0, 7, fixedNow, fixedNow, "BUS-05"))

	fm, err := FeedService{DB: db, Now: fixedClock}.VehiclePositions(context.Background())
	if err != nil {
		t.Fatalf("feed error: %v", err)
	}
	if fm.GetHeader().GetIncrementality() != gtfsrtpb.FeedHeader_FULL_DATASET {
		t.Fatalf("incrementality = %v", fm.GetHeader().GetIncrementality())
	}
	if fm.GetHeader().GetTimestamp() != uint64(fixedNow.Unix()) {
		t.Fatalf("header timestamp = %d", fm.GetHeader().GetTimestamp())
	}
	if len(fm.GetEntity()) != 1 {
		t.Fatalf("entities = %d", len(fm.GetEntity()))
	}
	vp := fm.GetEntity()[0].GetVehicle()
	if vp.GetVehicle().GetId() != "5" || vp.GetVehicle().GetLabel() != "BUS-05" {
		t.Fatalf("vehicle = %+v", vp.GetVehicle())
	}
	if vp.GetPosition().GetSpeed() != 10 {
		t.Fatalf("speed m/s = %v", vp.GetPosition().GetSpeed())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
