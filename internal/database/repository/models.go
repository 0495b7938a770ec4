package repository

import "time"

// BookingKind separates site-visit requests from paid reservations.
type BookingKind string

const (
	KindSiteVisit BookingKind = "site-visit"
	KindReserved  BookingKind = "reserved"
)

// Booking represents a bookings row.
type Booking struct {
	ID            string
	PlotKey       string
	PlotTitle     string
	CustomerName  string
	Phone         string
	Email         string
	Kind          BookingKind
	BookingAmount float64
	TotalPrice    float64
	Schedule      *string
	BookedOn      time.Time
}

// StatusLabel is the badge shown on My Bookings.
func (b Booking) StatusLabel() string {
	if b.Kind == KindReserved {
		return "Confirmed"
	}
	return "Pending"
}

// Payment represents a payments row.
type Payment struct {
	ID            string
	BookingID     string
	TransactionID string
	Method        string
	Amount        float64
	PaidAt        time.Time
}

// Appointment represents an appointments row.
type Appointment struct {
	ID           string
	PlotKey      string
	CustomerName string
	Date         string
	TimeSlot     string
	Purpose      string
	Notes        string
	CreatedAt    time.Time
}
