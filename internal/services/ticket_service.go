package services

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strings"

	"campusbus/internal/domain/models"
	"campusbus/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// TicketService renders a booking e-ticket as PDF.
type TicketService struct {
	DB        *sql.DB
	RequestID string
	Loader    func(ctx context.Context, userID int64, publicID string) (models.BookingDetail, error)
}

// GenerateTicket renders the caller's own booking. Foreign or unknown ids
// are reported as not found.
func (s TicketService) GenerateTicket(ctx context.Context, userID int64, publicID string) ([]byte, string, error) {
	d, err := s.load(ctx, userID, publicID)
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(s.RequestID, "ticket", "generate", "booking_id="+d.PublicID.String())
	return buildTicketPDF(d)
}

func (s TicketService) load(ctx context.Context, userID int64, publicID string) (models.BookingDetail, error) {
	if s.Loader != nil {
		return s.Loader(ctx, userID, publicID)
	}
	return BookingService{DB: s.DB, RequestID: s.RequestID}.GetForUser(ctx, userID, publicID)
}

func buildTicketPDF(d models.BookingDetail) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Bus E-Ticket", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "CAMPUS BUS E-TICKET")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Booking ID     : %s", d.PublicID),
		fmt.Sprintf("Passenger      : %s", safe(d.UserName, "-")),
		fmt.Sprintf("Phone          : %s", safe(d.PhoneNumber, "-")),
		fmt.Sprintf("Route          : %s (%s -> %s)", safe(d.RouteName, "-"), safe(d.FromStationName, "-"), safe(d.ToStationName, "-")),
		fmt.Sprintf("Departure      : %s %s", utils.FormatDate(d.DepartureDate), timeHM(d.DepartureTime)),
		fmt.Sprintf("Bus            : %s (%s)", safe(d.BusNumber, "-"), safe(d.LicensePlate, "-")),
		fmt.Sprintf("Driver         : %s", safe(d.DriverName, "-")),
		fmt.Sprintf("Passengers     : %d", d.NumberOfPassengers),
		fmt.Sprintf("Total          : %s", utils.FormatMoney(d.TotalPrice)),
		fmt.Sprintf("Status         : %s", strings.ToUpper(string(d.Status))),
	}
	for _, s := range lines {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, fmt.Sprintf("Valid for %d passenger(s). Please show this ticket when boarding.", d.NumberOfPassengers), "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("TICKET_%s.pdf", safeFilenamePart(d.PublicID.String()))
	return buf.Bytes(), filename, nil
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func timeHM(v string) string {
	v = strings.TrimSpace(v)
	if len(v) >= 5 {
		return v[:5]
	}
	return v
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
