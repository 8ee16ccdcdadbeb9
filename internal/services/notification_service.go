package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	intdb "campusbus/internal/db"
	"campusbus/internal/domain"
	"campusbus/internal/domain/models"
	"campusbus/internal/repositories"
	"campusbus/internal/utils"
)

// NotificationService writes notification rows for booking and location
// events, and serves the per-user notification inbox.
type NotificationService struct {
	DB        *sql.DB
	Now       func() time.Time
	RequestID string
}

func (s NotificationService) db() *sql.DB { return dbOrDefault(s.DB) }

func (s NotificationService) now() time.Time { return nowOrDefault(s.Now) }

func (s NotificationService) insert(ctx context.Context, q intdb.Querier, userID int64, bookingID int64, typ models.NotificationType, title, msg string) error {
	bid := bookingID
	n := models.Notification{
		UserID:    userID,
		Title:     title,
		Message:   msg,
		Type:      typ,
		BookingID: &bid,
		CreatedAt: s.now(),
	}
	return repositories.NotificationRepository{DB: q}.Insert(ctx, &n)
}

// BookingConfirmed records the confirmation sent right after a booking is created.
func (s NotificationService) BookingConfirmed(ctx context.Context, q intdb.Querier, b models.Booking, routeName string) error {
	return s.insert(ctx, q, b.UserID, b.ID, models.NotificationBookingConfirmed,
		"Booking Confirmed",
		fmt.Sprintf("Your booking for route %s has been confirmed.", routeName))
}

func (s NotificationService) BookingCancelled(ctx context.Context, q intdb.Querier, b models.Booking) error {
	return s.insert(ctx, q, b.UserID, b.ID, models.NotificationBookingCancelled,
		"Booking Cancelled",
		fmt.Sprintf("Your booking %s has been cancelled.", b.PublicID))
}

// BusApproaching notifies every confirmed booking on busID departing today.
// It runs on every accepted ping with no proximity test and no dedup, so N
// pings produce N notifications per booking.
func (s NotificationService) BusApproaching(ctx context.Context, q intdb.Querier, busID int64, busNumber string) (int, error) {
	today := utils.LocalDate(s.now())
	riders, err := repositories.BookingRepository{DB: q}.ListConfirmedForBusOnDate(ctx, busID, today)
	if err != nil {
		return 0, err
	}
	msg := fmt.Sprintf("Bus %s is approaching your pickup station.", busNumber)
	for _, r := range riders {
		if err := s.insert(ctx, q, r.UserID, r.BookingID, models.NotificationBusApproaching, "Bus Approaching!", msg); err != nil {
			return 0, err
		}
	}
	return len(riders), nil
}

func (s NotificationService) repo() repositories.NotificationRepository {
	return repositories.NotificationRepository{DB: s.db()}
}

func (s NotificationService) List(ctx context.Context, userID int64) ([]models.Notification, error) {
	list, err := s.repo().ListForUser(ctx, userID)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	return list, nil
}

func (s NotificationService) MarkRead(ctx context.Context, userID, id int64) error {
	if err := s.repo().MarkRead(ctx, userID, id); err != nil {
		return lookupErr(err, "notification")
	}
	return nil
}

func (s NotificationService) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	n, err := s.repo().MarkAllRead(ctx, userID)
	if err != nil {
		return 0, domain.InternalError{Err: err}
	}
	utils.LogEvent(s.RequestID, "notification", "mark_all_read", "user_id="+strconv.FormatInt(userID, 10)+" updated="+strconv.FormatInt(n, 10))
	return n, nil
}

func (s NotificationService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.repo().Delete(ctx, userID, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return domain.NotFoundError{Resource: "notification", Err: err}
		}
		return domain.InternalError{Err: err}
	}
	return nil
}

func (s NotificationService) UnreadCount(ctx context.Context, userID int64) (int, error) {
	n, err := s.repo().UnreadCount(ctx, userID)
	if err != nil {
		return 0, domain.InternalError{Err: err}
	}
	return n, nil
}
