package repositories

import (
	"context"
	"time"

	intdb "campusbus/internal/db"
	"campusbus/internal/domain/models"
)

type ScheduleRepository struct {
	DB intdb.Querier
}

const scheduleSelect = `SELECT s.id, s.bus_id, s.route_id, bu.bus_number, r.name, s.departure_time, s.day_of_week, s.is_active, s.created_at
FROM bus_schedules s
JOIN buses bu ON bu.id = s.bus_id
JOIN routes r ON r.id = s.route_id`

func scanSchedule(s rowScanner) (models.Schedule, error) {
	var sc models.Schedule
	if err := s.Scan(&sc.ID, &sc.BusID, &sc.RouteID, &sc.BusNumber, &sc.RouteName, &sc.DepartureTime, &sc.DayOfWeek, &sc.IsActive, &sc.CreatedAt); err != nil {
		return models.Schedule{}, notFound(err)
	}
	return sc, nil
}

func (r ScheduleRepository) List(ctx context.Context, routeID int64) ([]models.Schedule, error) {
	q := scheduleSelect
	args := []any{}
	if routeID > 0 {
		q += ` WHERE s.route_id = ?`
		args = append(args, routeID)
	}
	rows, err := r.DB.QueryContext(ctx, q+` ORDER BY s.departure_time ASC, s.id ASC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Schedule{}
	for rows.Next() {
		sc, err := scanSchedule(rows)
		if err != nil {
			return out, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

func (r ScheduleRepository) GetByID(ctx context.Context, id int64) (models.Schedule, error) {
	return scanSchedule(r.DB.QueryRowContext(ctx, scheduleSelect+` WHERE s.id = ? LIMIT 1`, id))
}

// Insert expects in.DepartureTime already normalized to HH:MM:SS.
func (r ScheduleRepository) Insert(ctx context.Context, in models.ScheduleInput, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO bus_schedules (bus_id, route_id, departure_time, day_of_week, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, in.BusID, in.RouteID, in.DepartureTime, in.DayOfWeek, boolInt(activeOrDefault(in.IsActive)), now)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r ScheduleRepository) Update(ctx context.Context, id int64, in models.ScheduleInput) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE bus_schedules SET bus_id = ?, route_id = ?, departure_time = ?, day_of_week = ?, is_active = ?
		WHERE id = ?
	`, in.BusID, in.RouteID, in.DepartureTime, in.DayOfWeek, boolInt(activeOrDefault(in.IsActive)), id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r ScheduleRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM bus_schedules WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
