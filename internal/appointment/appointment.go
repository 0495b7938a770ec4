// Package appointment validates and builds office appointments booked after a
// plot has been chosen.
package appointment

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/jask/plotbook/internal/plots"
)

// DateLayout is the calendar date format accepted by the form.
const DateLayout = "2006-01-02"

// TimeSlots are the bookable office hours. The lunch hour is not offered.
var TimeSlots = []string{
	"09:00 AM",
	"10:00 AM",
	"11:00 AM",
	"12:00 PM",
	"02:00 PM",
	"03:00 PM",
	"04:00 PM",
	"05:00 PM",
}

// Purpose is why the customer is visiting.
type Purpose string

const (
	PurposeSiteVisit     Purpose = "site-visit"
	PurposeDocumentation Purpose = "documentation"
	PurposePayment       Purpose = "payment"
	PurposeConsultation  Purpose = "consultation"
)

// Purposes lists the purposes in display order.
func Purposes() []Purpose {
	return []Purpose{PurposeSiteVisit, PurposeDocumentation, PurposePayment, PurposeConsultation}
}

func (p Purpose) Label() string {
	switch p {
	case PurposeSiteVisit:
		return "Site Visit"
	case PurposeDocumentation:
		return "Documentation"
	case PurposePayment:
		return "Payment Discussion"
	case PurposeConsultation:
		return "General Consultation"
	default:
		return string(p)
	}
}

var (
	ErrMissingDateTime = errors.New("please select both date and time")
	ErrUnknownSlot     = errors.New("unknown time slot")
	ErrUnknownPurpose  = errors.New("unknown appointment purpose")
	ErrBadDate         = errors.New("date must be YYYY-MM-DD")
)

// Form is the raw user input.
type Form struct {
	Date    string
	Time    string
	Purpose Purpose
	Notes   string
}

// Validate reports the first problem with f.
func (f Form) Validate() error {
	date := strings.TrimSpace(f.Date)
	slot := strings.TrimSpace(f.Time)
	if date == "" || slot == "" {
		return ErrMissingDateTime
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return fmt.Errorf("%w: %q", ErrBadDate, date)
	}
	if !slices.Contains(TimeSlots, slot) {
		return fmt.Errorf("%w: %q", ErrUnknownSlot, slot)
	}
	if f.Purpose != "" && !slices.Contains(Purposes(), f.Purpose) {
		return fmt.Errorf("%w: %q", ErrUnknownPurpose, f.Purpose)
	}
	return nil
}

// Appointment is the confirmed booking shown on the success screen.
type Appointment struct {
	Date         string
	TimeSlot     string
	Purpose      Purpose
	Notes        string
	Offer        plots.Offer
	CustomerName string
	CreatedAt    time.Time
}

// Build validates f and produces the appointment. An empty purpose defaults to
// a site visit.
func Build(f Form, offer plots.Offer, customer string, now time.Time) (Appointment, error) {
	if err := f.Validate(); err != nil {
		return Appointment{}, err
	}
	purpose := f.Purpose
	if purpose == "" {
		purpose = PurposeSiteVisit
	}
	return Appointment{
		Date:         strings.TrimSpace(f.Date),
		TimeSlot:     strings.TrimSpace(f.Time),
		Purpose:      purpose,
		Notes:        strings.TrimSpace(f.Notes),
		Offer:        offer,
		CustomerName: strings.TrimSpace(customer),
		CreatedAt:    now,
	}, nil
}
