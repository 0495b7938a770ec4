package service

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/plotbook/internal/appointment"
	"github.com/jask/plotbook/internal/database"
	"github.com/jask/plotbook/internal/database/repository"
	"github.com/jask/plotbook/internal/nav"
	"github.com/jask/plotbook/internal/payment"
	"github.com/jask/plotbook/internal/plots"
)

var serviceNow = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func newBookingService(t *testing.T) (*BookingService, *sql.DB) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, database.RunMigrations(dbPath))
	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return &BookingService{
		DB:           db,
		Bookings:     repository.NewBookingRepo(db),
		Payments:     repository.NewPaymentRepo(db),
		Appointments: repository.NewAppointmentRepo(db),
		Now:          func() time.Time { return serviceNow },
	}, db
}

var (
	testOffer   = plots.Offer{Key: "SO002-4", Title: "Sub Plot 4", Price: 3_000_000, TokenAmount: 300_000}
	testBooking = nav.BookingData{FullName: " Asha Rao ", Email: "asha@example.com", Phone: "9876543210"}
)

func TestRecordSiteVisit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newBookingService(t)

	id, err := svc.RecordSiteVisit(ctx, testOffer, testBooking)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	b := list[0]
	require.Equal(t, id, b.ID)
	require.Equal(t, "Asha Rao", b.CustomerName)
	require.Equal(t, repository.KindSiteVisit, b.Kind)
	require.Equal(t, 3_000_000.0, b.TotalPrice)
	require.Equal(t, 300_000.0, b.BookingAmount, "token due is kept for display")
	require.True(t, serviceNow.Equal(b.BookedOn))
}

func TestRecordReservationWritesPayment(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newBookingService(t)

	r := payment.Receipt{Method: payment.MethodUPI, Amount: 300_000, TransactionID: "TXN42", Timestamp: serviceNow, PlotKey: testOffer.Key}
	id, err := svc.RecordReservation(ctx, testOffer, testBooking, r)
	require.NoError(t, err)

	got, err := svc.Bookings.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, repository.KindReserved, got.Kind)
	require.Equal(t, 300_000.0, got.BookingAmount)

	pays, err := svc.Payments.ListForBooking(ctx, id)
	require.NoError(t, err)
	require.Len(t, pays, 1)
	require.Equal(t, "upi", pays[0].Method)
	require.Equal(t, "TXN42", pays[0].TransactionID)

	// A duplicate transaction id aborts the whole reservation.
	_, err = svc.RecordReservation(ctx, testOffer, testBooking, r)
	require.Error(t, err)
	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = svc.RecordReservation(ctx, testOffer, testBooking, payment.Receipt{})
	require.ErrorContains(t, err, "missing transaction id")
}

func TestScheduleRemaining(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newBookingService(t)

	id, err := svc.RecordReservation(ctx, testOffer, testBooking,
		payment.Receipt{Method: payment.MethodCard, Amount: 1, TransactionID: "TXN1", Timestamp: serviceNow})
	require.NoError(t, err)
	require.NoError(t, svc.ScheduleRemaining(ctx, id, "2026-12-01"))

	got, err := svc.Bookings.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "2026-12-01", *got.Schedule)

	require.Error(t, svc.ScheduleRemaining(ctx, "", "2026-12-01"))
}

func TestRecordAppointment(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newBookingService(t)

	a, err := appointment.Build(appointment.Form{Date: "2026-10-21", Time: "11:00 AM", Purpose: appointment.PurposeConsultation},
		testOffer, "Asha Rao", serviceNow)
	require.NoError(t, err)
	require.NoError(t, svc.RecordAppointment(ctx, a))

	list, err := svc.Appointments.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "consultation", list[0].Purpose)
	require.Equal(t, testOffer.Key, list[0].PlotKey)
}

func TestMaintenanceReset(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, db := newBookingService(t)

	_, err := svc.RecordReservation(ctx, testOffer, testBooking,
		payment.Receipt{Method: payment.MethodCard, Amount: 1, TransactionID: "TXN1", Timestamp: serviceNow})
	require.NoError(t, err)
	a, err := appointment.Build(appointment.Form{Date: "2026-10-21", Time: "11:00 AM"}, testOffer, "", serviceNow)
	require.NoError(t, err)
	require.NoError(t, svc.RecordAppointment(ctx, a))

	m := &MaintenanceService{DB: db}
	require.NoError(t, m.Reset(ctx))

	for _, table := range []string{"bookings", "payments", "appointments"} {
		var n int
		require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n))
		require.Zero(t, n, table)
	}

	require.Error(t, (&MaintenanceService{}).Reset(ctx))
}
