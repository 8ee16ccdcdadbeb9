package repositories

import (
	"context"
	"time"

	intdb "campusbus/internal/db"
	"campusbus/internal/domain/models"
)

type BusRepository struct {
	DB intdb.Querier
}

const busColumns = `bu.id, bu.bus_number, bu.license_plate, bu.capacity, bu.driver_name, bu.driver_phone, bu.status, bu.created_at, bu.updated_at`

func scanBus(s rowScanner) (models.Bus, error) {
	var b models.Bus
	var status string
	if err := s.Scan(&b.ID, &b.BusNumber, &b.LicensePlate, &b.Capacity, &b.DriverName, &b.DriverPhone, &status, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return models.Bus{}, notFound(err)
	}
	b.Status = models.BusStatus(status)
	return b, nil
}

// List filters by status and, when routeID > 0, by buses with an active
// schedule on that route.
func (r BusRepository) List(ctx context.Context, status models.BusStatus, routeID int64) ([]models.Bus, error) {
	q := `SELECT ` + busColumns + ` FROM buses bu`
	args := []any{}
	where := ""
	if routeID > 0 {
		q = `SELECT DISTINCT ` + busColumns + ` FROM buses bu JOIN bus_schedules s ON s.bus_id = bu.id`
		where = ` WHERE s.route_id = ? AND s.is_active = 1`
		args = append(args, routeID)
	}
	if status != "" {
		if where == "" {
			where = ` WHERE bu.status = ?`
		} else {
			where += ` AND bu.status = ?`
		}
		args = append(args, string(status))
	}

	rows, err := r.DB.QueryContext(ctx, q+where+` ORDER BY bu.bus_number ASC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Bus{}
	for rows.Next() {
		b, err := scanBus(rows)
		if err != nil {
			return out, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r BusRepository) GetByID(ctx context.Context, id int64) (models.Bus, error) {
	return scanBus(r.DB.QueryRowContext(ctx, `SELECT `+busColumns+` FROM buses bu WHERE bu.id = ? LIMIT 1`, id))
}

func (r BusRepository) Insert(ctx context.Context, in models.BusInput, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO buses (bus_number, license_plate, capacity, driver_name, driver_phone, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, in.BusNumber, in.LicensePlate, in.Capacity, in.DriverName, in.DriverPhone, string(in.Status), now, now)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r BusRepository) Update(ctx context.Context, id int64, in models.BusInput, now time.Time) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE buses SET bus_number = ?, license_plate = ?, capacity = ?, driver_name = ?, driver_phone = ?,
			status = ?, updated_at = ?
		WHERE id = ?
	`, in.BusNumber, in.LicensePlate, in.Capacity, in.DriverName, in.DriverPhone, string(in.Status), now, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
