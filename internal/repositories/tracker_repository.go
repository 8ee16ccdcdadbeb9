package repositories

import (
	"context"
	"database/sql"
	"time"

	intdb "campusbus/internal/db"
	"campusbus/internal/domain/models"
)

type TrackerRepository struct {
	DB intdb.Querier
}

const trackerSelect = `SELECT t.id, t.device_id, t.bus_id, bu.bus_number, t.is_active, t.last_ping, t.created_at
FROM bus_trackers t
JOIN buses bu ON bu.id = t.bus_id`

func scanTracker(s rowScanner) (models.Tracker, error) {
	var t models.Tracker
	var lastPing sql.NullTime
	if err := s.Scan(&t.ID, &t.DeviceID, &t.BusID, &t.BusNumber, &t.IsActive, &lastPing, &t.CreatedAt); err != nil {
		return models.Tracker{}, notFound(err)
	}
	if lastPing.Valid {
		v := lastPing.Time
		t.LastPing = &v
	}
	return t, nil
}

// GetActiveByDevice resolves a device to its tracker. Inactive trackers are
// reported as ErrNotFound.
func (r TrackerRepository) GetActiveByDevice(ctx context.Context, deviceID string) (models.Tracker, error) {
	row := r.DB.QueryRowContext(ctx, trackerSelect+` WHERE t.device_id = ? AND t.is_active = 1 LIMIT 1`, deviceID)
	return scanTracker(row)
}

func (r TrackerRepository) GetByID(ctx context.Context, id int64) (models.Tracker, error) {
	return scanTracker(r.DB.QueryRowContext(ctx, trackerSelect+` WHERE t.id = ? LIMIT 1`, id))
}

func (r TrackerRepository) List(ctx context.Context) ([]models.Tracker, error) {
	rows, err := r.DB.QueryContext(ctx, trackerSelect+` ORDER BY t.device_id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Tracker{}
	for rows.Next() {
		t, err := scanTracker(rows)
		if err != nil {
			return out, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r TrackerRepository) Touch(ctx context.Context, id int64, at time.Time) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE bus_trackers SET last_ping = ? WHERE id = ?`, at, id)
	return err
}

func (r TrackerRepository) Insert(ctx context.Context, in models.TrackerInput, now time.Time) (int64, error) {
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO bus_trackers (device_id, bus_id, is_active, created_at)
		VALUES (?, ?, ?, ?)
	`, in.DeviceID, in.BusID, boolInt(active), now)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r TrackerRepository) Update(ctx context.Context, id int64, in models.TrackerInput) error {
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	res, err := r.DB.ExecContext(ctx, `UPDATE bus_trackers SET device_id = ?, bus_id = ?, is_active = ? WHERE id = ?`,
		in.DeviceID, in.BusID, boolInt(active), id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
