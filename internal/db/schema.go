package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
)

type QueryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func HasTable(ctx context.Context, q QueryRower, table string) bool {
	var name sql.NullString
	err := q.QueryRowContext(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = DATABASE()
		  AND table_name = ?
		LIMIT 1
	`, table).Scan(&name)
	if err != nil {
		return false
	}
	return name.Valid && name.String != ""
}

type tableDDL struct {
	name string
	ddl  string
}

// Order matters: referenced tables come first.
var schema = []tableDDL{
	{"users", `
CREATE TABLE IF NOT EXISTS users (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	username VARCHAR(150) NOT NULL,
	email VARCHAR(254) NOT NULL,
	password_hash VARCHAR(255) NOT NULL,
	first_name VARCHAR(150) NOT NULL DEFAULT '',
	last_name VARCHAR(150) NOT NULL DEFAULT '',
	student_id VARCHAR(20) NULL,
	phone_number VARCHAR(15) NOT NULL DEFAULT '',
	is_student TINYINT(1) NOT NULL DEFAULT 1,
	is_admin TINYINT(1) NOT NULL DEFAULT 0,
	is_active TINYINT(1) NOT NULL DEFAULT 1,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	UNIQUE KEY uniq_username (username),
	UNIQUE KEY uniq_email (email),
	UNIQUE KEY uniq_student_id (student_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`},
	{"bus_stations", `
CREATE TABLE IF NOT EXISTS bus_stations (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	name VARCHAR(100) NOT NULL,
	latitude DECIMAL(10,8) NOT NULL,
	longitude DECIMAL(11,8) NOT NULL,
	description TEXT NOT NULL,
	is_active TINYINT(1) NOT NULL DEFAULT 1,
	created_at DATETIME NOT NULL,
	KEY idx_name (name)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`},
	{"buses", `
CREATE TABLE IF NOT EXISTS buses (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	bus_number VARCHAR(20) NOT NULL,
	license_plate VARCHAR(20) NOT NULL,
	capacity INT UNSIGNED NOT NULL,
	driver_name VARCHAR(100) NOT NULL,
	driver_phone VARCHAR(15) NOT NULL,
	status VARCHAR(20) NOT NULL DEFAULT 'active',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	UNIQUE KEY uniq_bus_number (bus_number),
	UNIQUE KEY uniq_license_plate (license_plate)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`},
	{"bus_trackers", `
CREATE TABLE IF NOT EXISTS bus_trackers (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	device_id VARCHAR(50) NOT NULL,
	bus_id BIGINT NOT NULL,
	is_active TINYINT(1) NOT NULL DEFAULT 1,
	last_ping DATETIME NULL,
	created_at DATETIME NOT NULL,
	UNIQUE KEY uniq_device (device_id),
	UNIQUE KEY uniq_bus (bus_id),
	CONSTRAINT fk_tracker_bus FOREIGN KEY (bus_id) REFERENCES buses(id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`},
	{"bus_locations", `
CREATE TABLE IF NOT EXISTS bus_locations (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	bus_id BIGINT NOT NULL,
	latitude DECIMAL(10,8) NOT NULL,
	longitude DECIMAL(11,8) NOT NULL,
	altitude DOUBLE NOT NULL DEFAULT 0,
	speed DOUBLE NOT NULL DEFAULT 0,
	heading DOUBLE NOT NULL DEFAULT 0,
	accuracy DOUBLE NOT NULL DEFAULT 0,
	satellites INT NOT NULL DEFAULT 0,
	timestamp DATETIME NOT NULL,
	created_at DATETIME NOT NULL,
	KEY idx_bus_timestamp (bus_id, timestamp),
	CONSTRAINT fk_location_bus FOREIGN KEY (bus_id) REFERENCES buses(id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`},
	{"routes", `
CREATE TABLE IF NOT EXISTS routes (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	name VARCHAR(100) NOT NULL,
	from_station_id BIGINT NOT NULL,
	to_station_id BIGINT NOT NULL,
	distance DOUBLE NOT NULL,
	estimated_duration INT UNSIGNED NOT NULL,
	price DECIMAL(8,2) NOT NULL,
	is_active TINYINT(1) NOT NULL DEFAULT 1,
	created_at DATETIME NOT NULL,
	KEY idx_name (name),
	CONSTRAINT fk_route_from FOREIGN KEY (from_station_id) REFERENCES bus_stations(id),
	CONSTRAINT fk_route_to FOREIGN KEY (to_station_id) REFERENCES bus_stations(id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`},
	{"bus_schedules", `
CREATE TABLE IF NOT EXISTS bus_schedules (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	bus_id BIGINT NOT NULL,
	route_id BIGINT NOT NULL,
	departure_time TIME NOT NULL,
	day_of_week VARCHAR(20) NOT NULL,
	is_active TINYINT(1) NOT NULL DEFAULT 1,
	created_at DATETIME NOT NULL,
	KEY idx_route (route_id),
	CONSTRAINT fk_schedule_bus FOREIGN KEY (bus_id) REFERENCES buses(id) ON DELETE CASCADE,
	CONSTRAINT fk_schedule_route FOREIGN KEY (route_id) REFERENCES routes(id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`},
	{"bookings", `
CREATE TABLE IF NOT EXISTS bookings (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	booking_id CHAR(36) NOT NULL,
	user_id BIGINT NOT NULL,
	route_id BIGINT NOT NULL,
	bus_id BIGINT NOT NULL,
	departure_date DATE NOT NULL,
	departure_time TIME NOT NULL,
	number_of_passengers INT UNSIGNED NOT NULL,
	phone_number VARCHAR(15) NOT NULL,
	total_price DECIMAL(10,2) NOT NULL,
	status VARCHAR(20) NOT NULL DEFAULT 'pending',
	created_at DATETIME(6) NOT NULL,
	updated_at DATETIME(6) NOT NULL,
	UNIQUE KEY uniq_booking_id (booking_id),
	KEY idx_user_created (user_id, created_at),
	KEY idx_bus_date_status (bus_id, departure_date, status),
	CONSTRAINT fk_booking_user FOREIGN KEY (user_id) REFERENCES users(id),
	CONSTRAINT fk_booking_route FOREIGN KEY (route_id) REFERENCES routes(id),
	CONSTRAINT fk_booking_bus FOREIGN KEY (bus_id) REFERENCES buses(id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`},
	// booking_id is a weak reference: indexed, no foreign key, no cascade.
	{"notifications", `
CREATE TABLE IF NOT EXISTS notifications (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	user_id BIGINT NOT NULL,
	title VARCHAR(200) NOT NULL,
	message TEXT NOT NULL,
	notification_type VARCHAR(30) NOT NULL,
	booking_id BIGINT NULL,
	is_read TINYINT(1) NOT NULL DEFAULT 0,
	created_at DATETIME(6) NOT NULL,
	KEY idx_user_created (user_id, created_at),
	KEY idx_booking (booking_id),
	CONSTRAINT fk_notification_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`},
}

// EnsureSchema creates missing tables. Existing tables are left untouched.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("db not available")
	}
	for _, t := range schema {
		if HasTable(ctx, db, t.name) {
			continue
		}
		if _, err := db.ExecContext(ctx, t.ddl); err != nil {
			return fmt.Errorf("create table %s: %w", t.name, err)
		}
		log.Printf("[SCHEMA] created table %s", t.name)
	}
	return nil
}
