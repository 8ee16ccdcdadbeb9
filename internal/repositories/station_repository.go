package repositories

import (
	"context"
	"time"

	intdb "campusbus/internal/db"
	"campusbus/internal/domain/models"
)

func activeOrDefault(p *bool) bool {
	if p == nil {
		return true
	}
	return *p
}

type StationRepository struct {
	DB intdb.Querier
}

const stationColumns = `id, name, latitude, longitude, description, is_active, created_at`

func scanStation(s rowScanner) (models.Station, error) {
	var st models.Station
	if err := s.Scan(&st.ID, &st.Name, &st.Latitude, &st.Longitude, &st.Description, &st.IsActive, &st.CreatedAt); err != nil {
		return models.Station{}, notFound(err)
	}
	return st, nil
}

func (r StationRepository) List(ctx context.Context) ([]models.Station, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+stationColumns+` FROM bus_stations ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Station{}
	for rows.Next() {
		st, err := scanStation(rows)
		if err != nil {
			return out, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (r StationRepository) GetByID(ctx context.Context, id int64) (models.Station, error) {
	return scanStation(r.DB.QueryRowContext(ctx, `SELECT `+stationColumns+` FROM bus_stations WHERE id = ? LIMIT 1`, id))
}

func (r StationRepository) Insert(ctx context.Context, in models.StationInput, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO bus_stations (name, latitude, longitude, description, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, in.Name, in.Latitude.String(), in.Longitude.String(), in.Description, boolInt(activeOrDefault(in.IsActive)), now)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r StationRepository) Update(ctx context.Context, id int64, in models.StationInput) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE bus_stations SET name = ?, latitude = ?, longitude = ?, description = ?, is_active = ?
		WHERE id = ?
	`, in.Name, in.Latitude.String(), in.Longitude.String(), in.Description, boolInt(activeOrDefault(in.IsActive)), id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r StationRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM bus_stations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
