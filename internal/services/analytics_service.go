package services

import (
	"context"
	"database/sql"
	"time"

	"campusbus/internal/domain"
	"campusbus/internal/repositories"
	"campusbus/internal/utils"
)

type DailyCount struct {
	Date  string
	Count int
}

type AnalyticsSummary struct {
	TodayBookings int
	LastSevenDays []DailyCount
	RouteDemand   []repositories.RouteDemand
}

// AnalyticsService aggregates non-cancelled bookings for the admin dashboard.
type AnalyticsService struct {
	DB  *sql.DB
	Now func() time.Time
}

// Summary reports today's count, a zero-filled series for the seven days
// ending today (oldest first) and per-route demand.
func (s AnalyticsService) Summary(ctx context.Context) (AnalyticsSummary, error) {
	repo := repositories.BookingRepository{DB: dbOrDefault(s.DB)}
	today := utils.LocalDate(nowOrDefault(s.Now))
	from := today.AddDate(0, 0, -6)

	counts, err := repo.CountActiveByDate(ctx, from, today)
	if err != nil {
		return AnalyticsSummary{}, domain.InternalError{Err: err}
	}
	out := AnalyticsSummary{LastSevenDays: make([]DailyCount, 0, 7)}
	for d := from; !d.After(today); d = d.AddDate(0, 0, 1) {
		key := utils.FormatDate(d)
		out.LastSevenDays = append(out.LastSevenDays, DailyCount{Date: key, Count: counts[key]})
	}
	out.TodayBookings = counts[utils.FormatDate(today)]

	demand, err := repo.RouteDemand(ctx)
	if err != nil {
		return AnalyticsSummary{}, domain.InternalError{Err: err}
	}
	out.RouteDemand = demand
	return out, nil
}
