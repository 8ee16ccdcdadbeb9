package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	intdb "campusbus/internal/db"
	"campusbus/internal/domain"
	"campusbus/internal/domain/models"
	"campusbus/internal/repositories"
	"campusbus/internal/utils"

	"github.com/google/uuid"
)

// BookingService creates, lists and cancels bookings. Every write that also
// emits a notification runs in a single transaction.
type BookingService struct {
	DB        *sql.DB
	Now       func() time.Time
	NewID     func() uuid.UUID
	RequestID string
}

func (s BookingService) db() *sql.DB { return dbOrDefault(s.DB) }

func (s BookingService) now() time.Time { return nowOrDefault(s.Now) }

func (s BookingService) newID() uuid.UUID {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.New()
}

func (s BookingService) notifications() NotificationService {
	return NotificationService{DB: s.DB, Now: s.Now, RequestID: s.RequestID}
}

// parseDeparture accepts either the structured value or the two string forms.
func parseDeparture(in models.CreateBookingInput) (time.Time, string, error) {
	if in.DepartureAt != nil && strings.TrimSpace(in.DepartureDate) == "" && strings.TrimSpace(in.DepartureTime) == "" {
		at := in.DepartureAt.In(time.Local)
		return utils.DateOnly(at), utils.ClockOf(at), nil
	}
	if strings.TrimSpace(in.DepartureDate) == "" {
		return time.Time{}, "", domain.ValidationError{Field: "departure_date", Msg: "this field is required"}
	}
	date, err := utils.ParseDate(in.DepartureDate)
	if err != nil {
		return time.Time{}, "", domain.ValidationError{Field: "departure_date", Msg: "date must be YYYY-MM-DD", Err: err}
	}
	if strings.TrimSpace(in.DepartureTime) == "" {
		return time.Time{}, "", domain.ValidationError{Field: "departure_time", Msg: "this field is required"}
	}
	clock, err := utils.ParseClock(in.DepartureTime)
	if err != nil {
		return time.Time{}, "", domain.ValidationError{Field: "departure_time", Msg: "time must be HH:MM or HH:MM:SS", Err: err}
	}
	return date, clock, nil
}

func validateBookingInput(in models.CreateBookingInput) error {
	if in.NumberOfPassengers < models.MinPassengers || in.NumberOfPassengers > models.MaxPassengers {
		return domain.ValidationError{
			Field: "number_of_passengers",
			Msg:   fmt.Sprintf("must be between %d and %d", models.MinPassengers, models.MaxPassengers),
		}
	}
	if in.RouteID <= 0 {
		return domain.ValidationError{Field: "route", Msg: "this field is required"}
	}
	if in.BusID <= 0 {
		return domain.ValidationError{Field: "bus", Msg: "this field is required"}
	}
	phone := utils.NormalizePhone(in.PhoneNumber)
	if phone == "" {
		return domain.ValidationError{Field: "phone_number", Msg: "this field is required"}
	}
	if len(phone) > 15 {
		return domain.ValidationError{Field: "phone_number", Msg: "must be at most 15 characters"}
	}
	return nil
}

// Create books a route/bus for userID. The total price is the route price at
// this moment times the passenger count and never changes afterwards. Not
// idempotent: identical requests create separate bookings.
func (s BookingService) Create(ctx context.Context, userID int64, in models.CreateBookingInput) (models.Booking, error) {
	if err := validateBookingInput(in); err != nil {
		return models.Booking{}, err
	}
	date, clock, err := parseDeparture(in)
	if err != nil {
		return models.Booking{}, err
	}

	var booking models.Booking
	err = intdb.WithTx(ctx, s.db(), func(tx *sql.Tx) error {
		route, err := repositories.RouteRepository{DB: tx}.GetByID(ctx, in.RouteID)
		if err != nil {
			return lookupErr(err, "route")
		}
		if _, err := (repositories.BusRepository{DB: tx}).GetByID(ctx, in.BusID); err != nil {
			return lookupErr(err, "bus")
		}

		now := s.now()
		booking = models.Booking{
			PublicID:           s.newID(),
			UserID:             userID,
			RouteID:            route.ID,
			BusID:              in.BusID,
			DepartureDate:      date,
			DepartureTime:      clock,
			NumberOfPassengers: in.NumberOfPassengers,
			PhoneNumber:        utils.NormalizePhone(in.PhoneNumber),
			TotalPrice:         utils.LineTotal(route.Price, in.NumberOfPassengers),
			Status:             models.BookingPending,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if err := (repositories.BookingRepository{DB: tx}).Insert(ctx, &booking); err != nil {
			return domain.InternalError{Err: err}
		}
		if err := s.notifications().BookingConfirmed(ctx, tx, booking, route.Name); err != nil {
			return domain.InternalError{Err: err}
		}
		return nil
	})
	if err != nil {
		return models.Booking{}, domain.Internal(err)
	}

	utils.LogEvent(s.RequestID, "booking", "create", fmt.Sprintf("booking_id=%s user_id=%d total=%s", booking.PublicID, userID, utils.FormatMoney(booking.TotalPrice)))
	return booking, nil
}

// parsePublicID treats a malformed id like an unknown one.
func parsePublicID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, domain.NotFoundError{Resource: "booking", Err: err}
	}
	return id, nil
}

// Cancel moves the user's own booking to cancelled and records one
// cancellation notification. Bookings of other users are reported as not found.
func (s BookingService) Cancel(ctx context.Context, userID int64, publicID string) error {
	id, err := parsePublicID(publicID)
	if err != nil {
		return err
	}

	err = intdb.WithTx(ctx, s.db(), func(tx *sql.Tx) error {
		repo := repositories.BookingRepository{DB: tx}
		b, err := repo.GetForUser(ctx, id, userID, true)
		if err != nil {
			return lookupErr(err, "booking")
		}
		return s.transition(ctx, tx, b, models.BookingCancelled)
	})
	if err != nil {
		return domain.Internal(err)
	}

	utils.LogEvent(s.RequestID, "booking", "cancel", fmt.Sprintf("booking_id=%s user_id=%d", id, userID))
	return nil
}

// transition persists b.Status -> next and emits the notification that goes
// with it. Only cancellation notifies the owner.
func (s BookingService) transition(ctx context.Context, tx *sql.Tx, b models.Booking, next models.BookingStatus) error {
	if !b.Status.CanTransitionTo(next) {
		return domain.InvalidStateTransitionError{From: string(b.Status), To: string(next)}
	}
	if err := (repositories.BookingRepository{DB: tx}).UpdateStatus(ctx, b.ID, next, s.now()); err != nil {
		return domain.InternalError{Err: err}
	}
	if next == models.BookingCancelled {
		b.Status = next
		if err := s.notifications().BookingCancelled(ctx, tx, b); err != nil {
			return domain.InternalError{Err: err}
		}
	}
	return nil
}

// UpdateStatus is the administrative path for confirm/complete (and cancel).
func (s BookingService) UpdateStatus(ctx context.Context, publicID string, next models.BookingStatus) (models.Booking, error) {
	if !next.Valid() {
		return models.Booking{}, domain.ValidationError{Field: "status", Msg: "must be one of: pending confirmed completed cancelled"}
	}
	id, err := parsePublicID(publicID)
	if err != nil {
		return models.Booking{}, err
	}

	var out models.Booking
	err = intdb.WithTx(ctx, s.db(), func(tx *sql.Tx) error {
		b, err := repositories.BookingRepository{DB: tx}.GetByPublicID(ctx, id, true)
		if err != nil {
			return lookupErr(err, "booking")
		}
		if err := s.transition(ctx, tx, b, next); err != nil {
			return err
		}
		b.Status = next
		out = b
		return nil
	})
	if err != nil {
		return models.Booking{}, domain.Internal(err)
	}

	utils.LogEvent(s.RequestID, "booking", "update_status", fmt.Sprintf("booking_id=%s status=%s", id, next))
	return out, nil
}

// ListForUser returns the user's bookings newest first.
func (s BookingService) ListForUser(ctx context.Context, userID int64) ([]models.BookingDetail, error) {
	list, err := repositories.BookingRepository{DB: s.db()}.ListForUser(ctx, userID)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	return list, nil
}

func (s BookingService) GetForUser(ctx context.Context, userID int64, publicID string) (models.BookingDetail, error) {
	id, err := parsePublicID(publicID)
	if err != nil {
		return models.BookingDetail{}, err
	}
	d, err := repositories.BookingRepository{DB: s.db()}.GetDetailForUser(ctx, id, userID)
	if err != nil {
		return models.BookingDetail{}, lookupErr(err, "booking")
	}
	return d, nil
}

func (s BookingService) ListAll(ctx context.Context, f models.BookingFilter) ([]models.BookingDetail, domain.Pagination, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, domain.Pagination{}, domain.ValidationError{Field: "status", Msg: "unknown status"}
	}
	if f.DepartureDate != "" {
		if _, err := utils.ParseDate(f.DepartureDate); err != nil {
			return nil, domain.Pagination{}, domain.ValidationError{Field: "departure_date", Msg: "date must be YYYY-MM-DD", Err: err}
		}
	}
	page := domain.NormalizePagination(f.Page, f.Limit)
	list, total, err := repositories.BookingRepository{DB: s.db()}.List(ctx, f, page.PageSize, page.Offset())
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, page, err
		}
		return nil, page, domain.InternalError{Err: err}
	}
	page.Total = total
	return list, page, nil
}
