package repositories

import (
	"context"
	"database/sql"
	"strings"
	"time"

	intdb "campusbus/internal/db"
	"campusbus/internal/domain/models"
)

type UserRepository struct {
	DB intdb.Querier
}

const userColumns = `id, username, email, password_hash, first_name, last_name, student_id, phone_number,
	is_student, is_admin, is_active, created_at, updated_at`

func scanUser(s rowScanner) (models.User, error) {
	var u models.User
	var studentID sql.NullString
	if err := s.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &studentID, &u.PhoneNumber,
		&u.IsStudent, &u.IsAdmin, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return models.User{}, notFound(err)
	}
	u.StudentID = studentID.String
	return u, nil
}

func (r UserRepository) GetByID(ctx context.Context, id int64) (models.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ? LIMIT 1`, id))
}

// GetByLogin matches either email or username.
func (r UserRepository) GetByLogin(ctx context.Context, login string) (models.User, error) {
	login = strings.TrimSpace(login)
	return scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ? OR username = ? LIMIT 1`, login, login))
}

func (r UserRepository) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE email = ? OR username = ?`, email, username).Scan(&n)
	return n > 0, err
}

// Insert stores u and fills in its id. An empty student id is stored as NULL
// so the unique index only applies to real ids.
func (r UserRepository) Insert(ctx context.Context, u *models.User) error {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO users (username, email, password_hash, first_name, last_name, student_id, phone_number,
			is_student, is_admin, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName, intdb.NullIfEmpty(u.StudentID), u.PhoneNumber,
		boolInt(u.IsStudent), boolInt(u.IsAdmin), boolInt(u.IsActive), u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = id
	return nil
}

// UpdateProfile applies only the fields present in upd.
func (r UserRepository) UpdateProfile(ctx context.Context, id int64, upd models.ProfileUpdate, now time.Time) error {
	sets := []string{}
	args := []any{}
	if upd.FirstName != nil {
		sets = append(sets, "first_name = ?")
		args = append(args, strings.TrimSpace(*upd.FirstName))
	}
	if upd.LastName != nil {
		sets = append(sets, "last_name = ?")
		args = append(args, strings.TrimSpace(*upd.LastName))
	}
	if upd.PhoneNumber != nil {
		sets = append(sets, "phone_number = ?")
		args = append(args, strings.TrimSpace(*upd.PhoneNumber))
	}
	if upd.StudentID != nil {
		sets = append(sets, "student_id = ?")
		args = append(args, intdb.NullIfEmpty(strings.TrimSpace(*upd.StudentID)))
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, now, id)
	res, err := r.DB.ExecContext(ctx, `UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
