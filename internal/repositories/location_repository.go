package repositories

import (
	"context"
	"time"

	intdb "campusbus/internal/db"
	"campusbus/internal/domain/models"
)

type LocationRepository struct {
	DB intdb.Querier
}

const locationColumns = `id, bus_id, latitude, longitude, altitude, speed, heading, accuracy, satellites, timestamp, created_at`

func scanLocation(s rowScanner, extra ...any) (models.Location, error) {
	var l models.Location
	dest := []any{&l.ID, &l.BusID, &l.Latitude, &l.Longitude, &l.Altitude, &l.Speed, &l.Heading, &l.Accuracy, &l.Satellites, &l.Timestamp, &l.CreatedAt}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return models.Location{}, notFound(err)
	}
	return l, nil
}

// Insert appends a location row. Older timestamps are stored as-is.
func (r LocationRepository) Insert(ctx context.Context, l *models.Location) error {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO bus_locations (bus_id, latitude, longitude, altitude, speed, heading, accuracy, satellites, timestamp, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, l.BusID, l.Latitude.String(), l.Longitude.String(), l.Altitude, l.Speed, l.Heading, l.Accuracy, l.Satellites, l.Timestamp, l.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	l.ID = id
	return nil
}

// Latest returns the most recent location by timestamp.
func (r LocationRepository) Latest(ctx context.Context, busID int64) (models.Location, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+locationColumns+` FROM bus_locations WHERE bus_id = ? ORDER BY timestamp DESC, id DESC LIMIT 1`, busID)
	return scanLocation(row)
}

// Since returns up to limit locations with timestamp >= since, newest first.
func (r LocationRepository) Since(ctx context.Context, busID int64, since time.Time, limit int) ([]models.Location, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+locationColumns+`
		FROM bus_locations
		WHERE bus_id = ? AND timestamp >= ?
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`, busID, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Location{}
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return out, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// LatestPerBus returns the newest location of every bus that has one.
func (r LocationRepository) LatestPerBus(ctx context.Context) ([]models.BusPosition, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT l.id, l.bus_id, l.latitude, l.longitude, l.altitude, l.speed, l.heading, l.accuracy, l.satellites, l.timestamp, l.created_at,
			bu.bus_number
		FROM bus_locations l
		JOIN buses bu ON bu.id = l.bus_id
		WHERE l.id = (
			SELECT l2.id FROM bus_locations l2
			WHERE l2.bus_id = l.bus_id
			ORDER BY l2.timestamp DESC, l2.id DESC
			LIMIT 1
		)
		ORDER BY bu.bus_number ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.BusPosition{}
	for rows.Next() {
		var p models.BusPosition
		l, err := scanLocation(rows, &p.BusNumber)
		if err != nil {
			return out, err
		}
		p.Location = l
		p.BusID = l.BusID
		out = append(out, p)
	}
	return out, rows.Err()
}
