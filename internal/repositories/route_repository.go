package repositories

import (
	"context"
	"time"

	intdb "campusbus/internal/db"
	"campusbus/internal/domain/models"
)

type RouteRepository struct {
	DB intdb.Querier
}

const routeSelect = `SELECT r.id, r.name, r.from_station_id, r.to_station_id, fs.name, ts.name,
	r.distance, r.estimated_duration, r.price, r.is_active, r.created_at
FROM routes r
JOIN bus_stations fs ON fs.id = r.from_station_id
JOIN bus_stations ts ON ts.id = r.to_station_id`

func scanRoute(s rowScanner) (models.Route, error) {
	var rt models.Route
	if err := s.Scan(&rt.ID, &rt.Name, &rt.FromStationID, &rt.ToStationID, &rt.FromStationName, &rt.ToStationName,
		&rt.Distance, &rt.EstimatedDuration, &rt.Price, &rt.IsActive, &rt.CreatedAt); err != nil {
		return models.Route{}, notFound(err)
	}
	return rt, nil
}

func (r RouteRepository) List(ctx context.Context, activeOnly bool) ([]models.Route, error) {
	q := routeSelect
	if activeOnly {
		q += ` WHERE r.is_active = 1`
	}
	rows, err := r.DB.QueryContext(ctx, q+` ORDER BY r.name ASC, r.id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Route{}
	for rows.Next() {
		rt, err := scanRoute(rows)
		if err != nil {
			return out, err
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

// GetByID reads a route without locking; concurrent price edits may race
// with booking creation.
func (r RouteRepository) GetByID(ctx context.Context, id int64) (models.Route, error) {
	return scanRoute(r.DB.QueryRowContext(ctx, routeSelect+` WHERE r.id = ? LIMIT 1`, id))
}

func (r RouteRepository) Insert(ctx context.Context, in models.RouteInput, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO routes (name, from_station_id, to_station_id, distance, estimated_duration, price, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, in.Name, in.FromStationID, in.ToStationID, in.Distance, in.EstimatedDuration, in.Price.StringFixed(2),
		boolInt(activeOrDefault(in.IsActive)), now)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r RouteRepository) Update(ctx context.Context, id int64, in models.RouteInput) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE routes SET name = ?, from_station_id = ?, to_station_id = ?, distance = ?,
			estimated_duration = ?, price = ?, is_active = ?
		WHERE id = ?
	`, in.Name, in.FromStationID, in.ToStationID, in.Distance, in.EstimatedDuration, in.Price.StringFixed(2),
		boolInt(activeOrDefault(in.IsActive)), id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
