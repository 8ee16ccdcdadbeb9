package repositories

import (
	"context"
	"database/sql"

	intdb "campusbus/internal/db"
	"campusbus/internal/domain/models"
)

type NotificationRepository struct {
	DB intdb.Querier
}

// Insert stores n and fills in its id.
func (r NotificationRepository) Insert(ctx context.Context, n *models.Notification) error {
	var bookingID any
	if n.BookingID != nil {
		bookingID = *n.BookingID
	}
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO notifications (user_id, title, message, notification_type, booking_id, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, n.UserID, n.Title, n.Message, string(n.Type), bookingID, boolInt(n.IsRead), n.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = id
	return nil
}

func (r NotificationRepository) ListForUser(ctx context.Context, userID int64) ([]models.Notification, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, user_id, title, message, notification_type, booking_id, is_read, created_at
		FROM notifications
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		var typ string
		var bookingID sql.NullInt64
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &typ, &bookingID, &n.IsRead, &n.CreatedAt); err != nil {
			return out, err
		}
		n.Type = models.NotificationType(typ)
		if bookingID.Valid {
			v := bookingID.Int64
			n.BookingID = &v
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead flags one notification of the user as read. ErrNotFound when the
// id does not belong to the user.
func (r NotificationRepository) MarkRead(ctx context.Context, userID, id int64) error {
	var exists int
	err := r.DB.QueryRowContext(ctx, `SELECT 1 FROM notifications WHERE id = ? AND user_id = ? LIMIT 1`, id, userID).Scan(&exists)
	if err != nil {
		return notFound(err)
	}
	_, err = r.DB.ExecContext(ctx, `UPDATE notifications SET is_read = 1 WHERE id = ? AND user_id = ?`, id, userID)
	return err
}

func (r NotificationRepository) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `UPDATE notifications SET is_read = 1 WHERE user_id = ? AND is_read = 0`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r NotificationRepository) Delete(ctx context.Context, userID, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM notifications WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r NotificationRepository) UnreadCount(ctx context.Context, userID int64) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = 0`, userID).Scan(&n)
	return n, err
}
