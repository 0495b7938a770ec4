package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jask/plotbook/internal/appointment"
	"github.com/jask/plotbook/internal/database"
	"github.com/jask/plotbook/internal/database/repository"
	"github.com/jask/plotbook/internal/nav"
	"github.com/jask/plotbook/internal/payment"
	"github.com/jask/plotbook/internal/plots"
)

// BookingService persists the outcome of each step of the booking flow so it
// shows up on My Bookings after a restart.
type BookingService struct {
	DB           *sql.DB
	Bookings     *repository.BookingRepo
	Payments     *repository.PaymentRepo
	Appointments *repository.AppointmentRepo
	Now          func() time.Time
	Log          *zap.Logger
}

func (s *BookingService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return database.Now()
}

func (s *BookingService) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

// RecordSiteVisit stores a site-visit request and returns the booking id.
func (s *BookingService) RecordSiteVisit(ctx context.Context, offer plots.Offer, b nav.BookingData) (string, error) {
	row := s.bookingRow(offer, b, repository.KindSiteVisit)
	if err := s.Bookings.Insert(ctx, row); err != nil {
		return "", fmt.Errorf("record site visit %s: %w", offer.Key, err)
	}
	s.logger().Info("site visit recorded", zap.String("booking", row.ID), zap.String("plot", offer.Key))
	return row.ID, nil
}

// RecordReservation stores the reservation and its token payment atomically.
func (s *BookingService) RecordReservation(ctx context.Context, offer plots.Offer, b nav.BookingData, r payment.Receipt) (string, error) {
	if strings.TrimSpace(r.TransactionID) == "" {
		return "", fmt.Errorf("record reservation %s: missing transaction id", offer.Key)
	}
	row := s.bookingRow(offer, b, repository.KindReserved)
	row.BookingAmount = r.Amount
	paidAt := r.Timestamp.UTC()
	if r.Timestamp.IsZero() {
		paidAt = row.BookedOn
	}
	err := database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		if err := s.Bookings.WithTx(tx).Insert(ctx, row); err != nil {
			return err
		}
		return s.Payments.WithTx(tx).Insert(ctx, repository.Payment{
			ID:            uuid.NewString(),
			BookingID:     row.ID,
			TransactionID: r.TransactionID,
			Method:        string(r.Method),
			Amount:        r.Amount,
			PaidAt:        paidAt,
		})
	})
	if err != nil {
		return "", fmt.Errorf("record reservation %s: %w", offer.Key, err)
	}
	s.logger().Info("reservation recorded",
		zap.String("booking", row.ID), zap.String("plot", offer.Key), zap.String("txn", r.TransactionID))
	return row.ID, nil
}

// ScheduleRemaining stores the date the balance will be paid.
func (s *BookingService) ScheduleRemaining(ctx context.Context, bookingID, date string) error {
	if bookingID == "" {
		return fmt.Errorf("schedule remaining: no booking")
	}
	if err := s.Bookings.UpdateSchedule(ctx, bookingID, date); err != nil {
		return fmt.Errorf("schedule remaining %s: %w", bookingID, err)
	}
	return nil
}

// RecordAppointment stores a confirmed appointment.
func (s *BookingService) RecordAppointment(ctx context.Context, a appointment.Appointment) error {
	createdAt := a.CreatedAt.UTC()
	if a.CreatedAt.IsZero() {
		createdAt = s.now()
	}
	err := s.Appointments.Insert(ctx, repository.Appointment{
		ID:           uuid.NewString(),
		PlotKey:      a.Offer.Key,
		CustomerName: a.CustomerName,
		Date:         a.Date,
		TimeSlot:     a.TimeSlot,
		Purpose:      string(a.Purpose),
		Notes:        a.Notes,
		CreatedAt:    createdAt,
	})
	if err != nil {
		return fmt.Errorf("record appointment %s: %w", a.Offer.Key, err)
	}
	return nil
}

// List returns all bookings newest first.
func (s *BookingService) List(ctx context.Context) ([]repository.Booking, error) {
	return s.Bookings.List(ctx)
}

func (s *BookingService) bookingRow(offer plots.Offer, b nav.BookingData, kind repository.BookingKind) repository.Booking {
	b = b.Normalize()
	return repository.Booking{
		ID:            uuid.NewString(),
		PlotKey:       offer.Key,
		PlotTitle:     offer.Title,
		CustomerName:  b.FullName,
		Phone:         b.Phone,
		Email:         b.Email,
		Kind:          kind,
		BookingAmount: offer.TokenAmount,
		TotalPrice:    offer.Price,
		BookedOn:      s.now(),
	}
}
