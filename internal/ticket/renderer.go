// Package ticket renders booking e-tickets as PDF documents.
package ticket

import (
	"bytes"
	"fmt"
	"time"

	"github.com/flight-booking-engine/internal/domain/booking"
	"github.com/flight-booking-engine/internal/domain/flight"
	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

const (
	dateLayout = "Monday, 2 January 2006"
	timeLayout = "15:04"
	lineHeight = 7.0
	footerText = "This is an electronically generated ticket and does not require a physical signature."
)

// Document is everything printed on an e-ticket
type Document struct {
	TicketNumber string
	Status       booking.Status
	BookedAt     time.Time
	Passenger    booking.Passenger
	Flight       flight.Snapshot
	Price        decimal.Decimal
}

// FromBooking combines a booking with the flight details it was made on
func FromBooking(b *booking.Booking, details flight.Snapshot) Document {
	return Document{
		TicketNumber: b.TicketNumber,
		Status:       b.Status,
		BookedAt:     b.CreatedAt,
		Passenger:    b.Passenger,
		Flight:       details,
		Price:        b.Price,
	}
}

// FileName is the attachment name offered to the client
func (d Document) FileName() string {
	return fmt.Sprintf("ticket-%s.pdf", d.TicketNumber)
}

// Renderer lays out tickets on A4 pages
type Renderer struct {
	compress bool
}

func NewRenderer() *Renderer {
	return &Renderer{compress: true}
}

// Render produces the PDF bytes for one ticket
func (r *Renderer) Render(doc Document) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(r.compress)
	pdf.SetTitle("Flight E-Ticket "+doc.TicketNumber, false)
	pdf.SetCreator("flight-booking", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, "Flight E-Ticket", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "B", 12)
	if doc.Status == booking.StatusConfirmed {
		pdf.SetTextColor(72, 187, 120)
	} else {
		pdf.SetTextColor(229, 62, 62)
	}
	pdf.CellFormat(0, lineHeight, string(doc.Status), "", 1, "R", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	section(pdf, "Ticket Information")
	line(pdf, "Ticket Number: "+doc.TicketNumber)
	line(pdf, "Booking Date: "+doc.BookedAt.UTC().Format(dateLayout))
	pdf.Ln(4)

	section(pdf, "Flight Information")
	line(pdf, "Airline: "+string(doc.Flight.Airline))
	line(pdf, "Flight Number: "+doc.Flight.FlightNumber)
	pdf.Ln(4)

	section(pdf, "Route Information")
	endpoint(pdf, "From", "Departure", doc.Flight.Origin, doc.Flight.DepartureTime)
	endpoint(pdf, "To", "Arrival", doc.Flight.Destination, doc.Flight.ArrivalTime)
	line(pdf, "Duration: "+formatDuration(doc.Flight.ArrivalTime.Sub(doc.Flight.DepartureTime)))
	pdf.Ln(4)

	section(pdf, "Passenger Details")
	line(pdf, "Name: "+doc.Passenger.Name)
	line(pdf, "Email: "+doc.Passenger.Email)
	line(pdf, "Phone: "+doc.Passenger.Phone)
	pdf.Ln(4)

	section(pdf, "Price Details")
	line(pdf, "Total Price: INR "+doc.Price.StringFixed(2))
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 5, footerText, "", "C", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render ticket %s: %w", doc.TicketNumber, err)
	}
	return buf.Bytes(), nil
}

func section(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "BU", 14)
	pdf.CellFormat(0, 9, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
}

func line(pdf *fpdf.Fpdf, text string) {
	pdf.CellFormat(0, lineHeight, text, "", 1, "L", false, 0, "")
}

func endpoint(pdf *fpdf.Fpdf, label, event string, a flight.Airport, at time.Time) {
	line(pdf, fmt.Sprintf("%s: %s (%s)", label, a.City, a.Code))
	line(pdf, "Airport: "+a.Name)
	at = at.UTC()
	line(pdf, fmt.Sprintf("%s: %s at %s UTC", event, at.Format(dateLayout), at.Format(timeLayout)))
	pdf.Ln(2)
}

// formatDuration prints whole hours and minutes, e.g. "2h 5m"
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}
