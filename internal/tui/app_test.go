package tui

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/jask/plotbook/internal/config"
	"github.com/jask/plotbook/internal/database"
	"github.com/jask/plotbook/internal/database/repository"
	"github.com/jask/plotbook/internal/nav"
	"github.com/jask/plotbook/internal/payment"
	"github.com/jask/plotbook/internal/plots"
	"github.com/jask/plotbook/internal/prefs"
	"github.com/jask/plotbook/internal/service"
	"github.com/jask/plotbook/internal/testdata"
)

func testConfig() config.Config {
	return config.Config{
		UI: config.UIConfig{StartScreen: "maps", CurrencySymbol: "₹", Timezone: "UTC", OnboardingDelay: time.Millisecond},
		Payment: config.PaymentConfig{
			TickInterval:  time.Millisecond,
			Step:          10,
			SuccessDelay:  time.Millisecond,
			ScheduleDelay: time.Millisecond,
		},
	}
}

func newFlowApp(t *testing.T, start nav.Screen, db *sql.DB) *App {
	t.Helper()
	prefs.Dir = t.TempDir()
	t.Cleanup(func() { prefs.Dir = "" })

	cat, err := plots.Load("")
	require.NoError(t, err)
	hyd, ok := cat.Location("hyderabad")
	require.True(t, ok)
	ctrl := nav.New(nav.Options{Start: start, Statuses: cat.InitialStatuses(), Center: hyd.Center})

	var services Services
	if db != nil {
		services = Services{
			Bookings: &service.BookingService{
				DB:           db,
				Bookings:     repository.NewBookingRepo(db),
				Payments:     repository.NewPaymentRepo(db),
				Appointments: repository.NewAppointmentRepo(db),
			},
			Maintenance: &service.MaintenanceService{DB: db},
		}
	}
	a := New(context.Background(), testConfig(), cat, ctrl, services, time.UTC, nil)
	flowDrainCmd(t, a, a.Init())
	flowApplyMsg(t, a, tea.WindowSizeMsg{Width: 120, Height: 40})
	return a
}

func flowDB(t *testing.T) *sql.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "flow.db")
	require.NoError(t, database.RunMigrations(dbPath))
	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func flowKey(k string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func flowApplyMsg(t *testing.T, a *App, msg tea.Msg) {
	t.Helper()
	_, cmd := a.Update(msg)
	flowDrainCmd(t, a, cmd)
}

func flowPress(t *testing.T, a *App, k string) {
	t.Helper()
	flowApplyMsg(t, a, flowKey(k))
}

func flowSpecial(t *testing.T, a *App, kt tea.KeyType) {
	t.Helper()
	flowApplyMsg(t, a, tea.KeyMsg{Type: kt})
}

func flowType(t *testing.T, a *App, input string) {
	t.Helper()
	for _, r := range input {
		flowPress(t, a, string(r))
	}
}

// flowDrainCmd runs cmd and feeds every resulting message back into the app,
// expanding batches, until the chain goes quiet.
func flowDrainCmd(t *testing.T, a *App, cmd tea.Cmd) {
	t.Helper()
	for i := 0; cmd != nil && i < 64; i++ {
		msg := cmd()
		switch m := msg.(type) {
		case nil, tea.QuitMsg:
			return
		case tea.BatchMsg:
			for _, c := range m {
				flowDrainCmd(t, a, c)
			}
			return
		}
		_, cmd = a.Update(msg)
	}
	if cmd != nil {
		t.Fatal("command chain exceeded max depth")
	}
}

func fillBooking(t *testing.T, a *App) {
	t.Helper()
	flowType(t, a, "Asha Rao")
	flowSpecial(t, a, tea.KeyTab)
	flowType(t, a, "asha@example.com")
	flowSpecial(t, a, tea.KeyTab)
	flowType(t, a, "9876543210")
}

func TestFlowMapsToPaymentSuccessAndSchedule(t *testing.T) {
	db := flowDB(t)
	a := newFlowApp(t, nav.Maps, db)

	flowSpecial(t, a, tea.KeyEnter)
	picked := a.ctrl.Plot()
	require.NotNil(t, picked)
	require.Equal(t, nav.Maps, a.ctrl.Screen())

	flowPress(t, a, "b")
	require.Equal(t, nav.Booking, a.ctrl.Screen())
	require.Contains(t, a.View(), picked.Title)

	fillBooking(t, a)
	flowSpecial(t, a, tea.KeyCtrlP)
	require.Equal(t, nav.Payment, a.ctrl.Screen())
	require.NotNil(t, a.session)

	flowSpecial(t, a, tea.KeyEnter)
	require.Equal(t, nav.PaymentSuccess, a.ctrl.Screen())
	require.Equal(t, plots.StatusReserved, a.ctrl.Status(picked.ID))
	receipt := a.ctrl.PaymentData()
	require.NotNil(t, receipt)
	require.True(t, strings.HasPrefix(receipt.TransactionID, "TXN"))
	require.Equal(t, picked.TokenAmount, receipt.Amount)
	require.Contains(t, a.View(), receipt.TransactionID)
	require.NotEmpty(t, a.reservationID)

	flowType(t, a, "2026-11-15")
	flowSpecial(t, a, tea.KeyEnter)
	require.Equal(t, nav.Ventures, a.ctrl.Screen(), "schedule confirmation returns to ventures")

	got, err := repository.NewBookingRepo(db).Get(context.Background(), a.reservationID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, repository.KindReserved, got.Kind)
	require.Equal(t, picked.ID, got.PlotKey)
	require.NotNil(t, got.Schedule)
	require.Equal(t, "2026-11-15", *got.Schedule)

	pays, err := repository.NewPaymentRepo(db).ListForBooking(context.Background(), got.ID)
	require.NoError(t, err)
	require.Len(t, pays, 1)
	require.Equal(t, receipt.TransactionID, pays[0].TransactionID)
}

func TestFlowBookingBlockedWithoutRequiredFields(t *testing.T) {
	a := newFlowApp(t, nav.Ventures, nil)
	flowSpecial(t, a, tea.KeyEnter)
	require.Equal(t, nav.Booking, a.ctrl.Screen())

	flowType(t, a, "Asha")
	flowSpecial(t, a, tea.KeyCtrlB)
	require.Equal(t, nav.Booking, a.ctrl.Screen())
	require.Contains(t, a.status, "please fill all required fields")
	require.Equal(t, plots.StatusUnset, a.ctrl.Status("SO001"))
}

func TestFlowSiteVisitAppointmentAndReset(t *testing.T) {
	db := flowDB(t)
	a := newFlowApp(t, nav.Ventures, db)

	flowSpecial(t, a, tea.KeyEnter)
	require.Equal(t, nav.Booking, a.ctrl.Screen())
	fillBooking(t, a)
	flowSpecial(t, a, tea.KeyCtrlB)
	require.Equal(t, nav.Appointment, a.ctrl.Screen())
	require.Equal(t, plots.StatusBooked, a.ctrl.Status("SO001"))

	flowSpecial(t, a, tea.KeyCtrlS)
	require.Equal(t, nav.Appointment, a.ctrl.Screen())
	require.Nil(t, a.ctrl.AppointmentData())
	require.Contains(t, a.status, "please select both date and time")

	flowType(t, a, "2026-10-20")
	flowSpecial(t, a, tea.KeyCtrlS)
	require.Equal(t, nav.Appointment, a.ctrl.Screen(), "time is still missing")

	flowSpecial(t, a, tea.KeyTab)
	flowSpecial(t, a, tea.KeyRight)
	flowSpecial(t, a, tea.KeyCtrlS)
	require.Equal(t, nav.AppointmentSuccess, a.ctrl.Screen())
	appt := a.ctrl.AppointmentData()
	require.NotNil(t, appt)
	require.Equal(t, "09:00 AM", appt.TimeSlot)
	require.Equal(t, "Asha Rao", appt.CustomerName)
	require.Contains(t, a.View(), "Appointment Confirmed")

	list, err := repository.NewAppointmentRepo(db).List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	bookings, err := repository.NewBookingRepo(db).List(context.Background())
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	require.Equal(t, repository.KindSiteVisit, bookings[0].Kind)

	flowSpecial(t, a, tea.KeyEnter)
	require.Equal(t, nav.Ventures, a.ctrl.Screen())
	require.Nil(t, a.ctrl.Plot())
	require.Nil(t, a.ctrl.Booking())
	require.Nil(t, a.ctrl.AppointmentData())
}

func TestFlowEscFollowsBackTable(t *testing.T) {
	a := newFlowApp(t, nav.Ventures, nil)
	flowSpecial(t, a, tea.KeyEnter)
	require.Equal(t, nav.Booking, a.ctrl.Screen())

	flowSpecial(t, a, tea.KeyEsc)
	require.Equal(t, nav.Ventures, a.ctrl.Screen())
	require.Nil(t, a.ctrl.Plot())

	flowSpecial(t, a, tea.KeyEsc)
	require.Equal(t, nav.Maps, a.ctrl.Screen())
}

func TestFlowLeavingPaymentDropsTicks(t *testing.T) {
	a := newFlowApp(t, nav.Ventures, nil)
	flowSpecial(t, a, tea.KeyEnter)
	fillBooking(t, a)
	flowSpecial(t, a, tea.KeyCtrlP)
	require.Equal(t, nav.Payment, a.ctrl.Screen())
	session := a.session

	// Start processing but hold on to the tick instead of running it.
	_, tick := a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, tick)

	flowSpecial(t, a, tea.KeyEsc)
	require.Equal(t, nav.Booking, a.ctrl.Screen())
	require.True(t, session.Cancelled())
	require.Nil(t, a.session)

	flowDrainCmd(t, a, tick)
	require.Equal(t, nav.Booking, a.ctrl.Screen())
	require.Zero(t, session.Progress())
	require.Nil(t, a.ctrl.PaymentData())
}

func TestFlowExternalSignals(t *testing.T) {
	a := newFlowApp(t, nav.Ventures, nil)

	flowApplyMsg(t, a, BackMsg{})
	require.Equal(t, nav.Maps, a.ctrl.Screen())

	siddipet := plots.LatLng{Lat: 18.1025, Lng: 78.8826}
	flowApplyMsg(t, a, LocationMsg{Position: siddipet})
	require.Equal(t, nav.Maps, a.ctrl.Screen())
	require.Equal(t, siddipet, *a.ctrl.UserLocation())
	require.Equal(t, "SO005", a.nearby[0].ID)
	require.Contains(t, a.View(), "You are at")
}

func TestFlowTakenSubPlotIsRefused(t *testing.T) {
	a := newFlowApp(t, nav.Ventures, nil)
	flowSpecial(t, a, tea.KeyRight)
	flowSpecial(t, a, tea.KeyRight)
	require.Equal(t, 1, a.subCursor)

	flowSpecial(t, a, tea.KeyEnter)
	require.Equal(t, nav.Ventures, a.ctrl.Screen())
	require.Contains(t, a.status, "no longer available")

	flowSpecial(t, a, tea.KeyLeft)
	flowSpecial(t, a, tea.KeyEnter)
	require.Equal(t, nav.Booking, a.ctrl.Screen())
	require.NotNil(t, a.ctrl.SubPlot())
	require.Equal(t, "SO001-1", a.ctrl.SubPlot().ID)
	require.Contains(t, a.View(), "Sub Plot 1")
}

func TestFlowHomeSearchRemembersCity(t *testing.T) {
	a := newFlowApp(t, nav.Home, nil)
	flowType(t, a, "siddipet")
	require.Len(t, a.locations, 1)

	flowSpecial(t, a, tea.KeyEnter)
	require.Equal(t, nav.Maps, a.ctrl.Screen())
	require.Equal(t, "siddipet", a.ctrl.Location().ID)
	require.Equal(t, "SO005", a.nearby[0].ID)

	saved, err := prefs.LoadLocation()
	require.NoError(t, err)
	require.NotNil(t, saved)
	require.Equal(t, "siddipet", saved.ID)
}

func TestFlowMyBookingsClearHistory(t *testing.T) {
	db := flowDB(t)
	require.NoError(t, testdata.Seed(context.Background(), testdata.Repos{
		Bookings: repository.NewBookingRepo(db),
		Payments: repository.NewPaymentRepo(db),
	}))
	a := newFlowApp(t, nav.Maps, db)

	flowPress(t, a, "m")
	require.Equal(t, nav.MyBookings, a.ctrl.Screen())
	require.Len(t, a.bookings, 2)
	require.Contains(t, a.View(), "Confirmed")

	flowPress(t, a, "x")
	require.True(t, a.confirmReset)
	require.Contains(t, a.View(), "Clear booking history?")

	flowPress(t, a, "n")
	require.False(t, a.confirmReset)
	require.Len(t, a.bookings, 2)

	flowPress(t, a, "x")
	flowPress(t, a, "y")
	require.Empty(t, a.bookings)
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM bookings`).Scan(&n))
	require.Zero(t, n)

	flowSpecial(t, a, tea.KeyEsc)
	require.Equal(t, nav.Maps, a.ctrl.Screen())
}

func TestRenderPopupKeepsBaseAround(t *testing.T) {
	base := strings.Repeat("x", 20) + "\n" + strings.Repeat("y", 20) + "\n" + strings.Repeat("z", 20)
	out := renderPopup(base, "hi", 20, 9)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 9)
	require.Equal(t, strings.Repeat("x", 20), lines[0])
	require.Contains(t, out, "hi")
}

func TestFlowScheduleWaitsForItsReservation(t *testing.T) {
	db := flowDB(t)
	a := newFlowApp(t, nav.Ventures, db)
	bookings := repository.NewBookingRepo(db)

	flowSpecial(t, a, tea.KeyEnter)
	fillBooking(t, a)
	flowSpecial(t, a, tea.KeyCtrlB)
	require.Equal(t, nav.Appointment, a.ctrl.Screen())
	list, err := bookings.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	siteVisitID := list[0].ID

	flowSpecial(t, a, tea.KeyEsc)
	require.Equal(t, nav.Booking, a.ctrl.Screen())
	flowSpecial(t, a, tea.KeyCtrlP)
	require.Equal(t, nav.Payment, a.ctrl.Screen())
	require.Empty(t, a.reservationID)

	// Run the payment by hand so the reservation write can be held back.
	_, _ = a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	for a.session.Step() != payment.StepSuccess {
		_, _ = a.Update(paymentTickMsg{seq: a.paySeq})
	}
	_, held := a.Update(paymentDoneMsg{seq: a.paySeq})
	require.NotNil(t, held)
	require.Equal(t, nav.PaymentSuccess, a.ctrl.Screen())

	flowType(t, a, "2026-11-15")
	flowSpecial(t, a, tea.KeyEnter)
	require.Equal(t, nav.Ventures, a.ctrl.Screen())
	require.Equal(t, "2026-11-15", a.pendingSchedule)

	siteVisit, err := bookings.Get(context.Background(), siteVisitID)
	require.NoError(t, err)
	require.Nil(t, siteVisit.Schedule, "the site visit row must not pick up the payment date")

	flowDrainCmd(t, a, held)
	require.NotEmpty(t, a.reservationID)
	require.Empty(t, a.pendingSchedule)

	reserved, err := bookings.Get(context.Background(), a.reservationID)
	require.NoError(t, err)
	require.Equal(t, repository.KindReserved, reserved.Kind)
	require.NotNil(t, reserved.Schedule)
	require.Equal(t, "2026-11-15", *reserved.Schedule)

	siteVisit, err = bookings.Get(context.Background(), siteVisitID)
	require.NoError(t, err)
	require.Nil(t, siteVisit.Schedule)
}

func TestFlowStaleReservationIsNotBound(t *testing.T) {
	a := newFlowApp(t, nav.Ventures, nil)
	a.reserveSeq = 3
	a.pendingSchedule = "2026-11-15"

	flowApplyMsg(t, a, bookingSavedMsg{id: "old", kind: repository.KindReserved, seq: 2})
	require.Empty(t, a.reservationID)
	require.Equal(t, "2026-11-15", a.pendingSchedule)

	flowApplyMsg(t, a, bookingSavedMsg{id: "visit", kind: repository.KindSiteVisit, seq: 3})
	require.Empty(t, a.reservationID)
}

func TestFlowNothingSelectedBlocksSubmission(t *testing.T) {
	for _, s := range []nav.Screen{nav.Booking, nav.Payment, nav.PaymentSuccess, nav.Appointment} {
		t.Run(s.String(), func(t *testing.T) {
			a := newFlowApp(t, s, nil)
			require.Contains(t, a.View(), "No plot selected")

			if s == nav.Booking {
				fillBooking(t, a)
			}
			for _, kt := range []tea.KeyType{tea.KeyCtrlB, tea.KeyCtrlP, tea.KeyCtrlS, tea.KeyEnter} {
				flowSpecial(t, a, kt)
				require.Equal(t, s, a.ctrl.Screen(), "key %v", kt)
			}
			require.Nil(t, a.ctrl.Booking())
			require.Nil(t, a.ctrl.PaymentData())
			require.Nil(t, a.ctrl.AppointmentData())
			require.Nil(t, a.session)
			require.Equal(t, plots.StatusUnset, a.ctrl.Status("SO001"))
			require.Contains(t, a.View(), "No plot selected")
		})
	}
}

func TestFlowReservedPlotCannotBePaidAgain(t *testing.T) {
	db := flowDB(t)
	a := newFlowApp(t, nav.Ventures, db)
	flowSpecial(t, a, tea.KeyEnter)
	fillBooking(t, a)
	flowSpecial(t, a, tea.KeyCtrlP)
	flowSpecial(t, a, tea.KeyEnter)
	require.Equal(t, nav.PaymentSuccess, a.ctrl.Screen())
	require.Equal(t, plots.StatusReserved, a.ctrl.Status("SO001"))

	flowSpecial(t, a, tea.KeyEsc)
	require.Equal(t, nav.Payment, a.ctrl.Screen())
	require.Nil(t, a.session)
	require.Contains(t, a.status, "no longer available")
	require.Contains(t, a.View(), "no longer available")

	flowSpecial(t, a, tea.KeyEnter)
	require.Nil(t, a.session)
	require.Equal(t, nav.Payment, a.ctrl.Screen())

	flowSpecial(t, a, tea.KeyEsc)
	require.Equal(t, nav.Booking, a.ctrl.Screen())
	flowSpecial(t, a, tea.KeyCtrlP)
	require.Equal(t, nav.Booking, a.ctrl.Screen())
	require.Contains(t, a.status, "no longer available")

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM bookings WHERE kind = 'reserved'`).Scan(&n))
	require.Equal(t, 1, n)
}

func TestFlowOnboardingSignUpPrefillsBooking(t *testing.T) {
	a := newFlowApp(t, nav.Maps, nil)
	a.StartOnboarding()
	require.Contains(t, a.View(), "Welcome to PlotBook")

	flowPress(t, a, "m")
	require.Equal(t, nav.Maps, a.ctrl.Screen(), "screens stay locked until onboarding ends")
	require.NotNil(t, a.onboarding)

	flowPress(t, a, "s")
	require.Contains(t, a.View(), "Create your account")
	flowType(t, a, "Asha Rao")
	flowSpecial(t, a, tea.KeyTab)
	flowType(t, a, "asha@example.com")
	flowSpecial(t, a, tea.KeyTab)
	flowType(t, a, "secret")
	flowSpecial(t, a, tea.KeyEnter)

	require.Nil(t, a.onboarding)
	require.Equal(t, nav.Maps, a.ctrl.Screen())
	saved, err := prefs.LoadOnboarding()
	require.NoError(t, err)
	require.NotNil(t, saved)
	require.True(t, saved.Completed)
	require.Equal(t, "signup", saved.Method)
	require.Equal(t, "Asha Rao", saved.Name)
	require.Equal(t, "asha@example.com", saved.Email)

	raw, err := os.ReadFile(filepath.Join(prefs.Dir, "onboarding.json"))
	require.NoError(t, err)
	require.NotContains(t, string(raw), "secret")

	flowSpecial(t, a, tea.KeyEnter)
	flowPress(t, a, "b")
	require.Equal(t, nav.Booking, a.ctrl.Screen())
	require.Equal(t, "Asha Rao", a.bookingInputs[0].Value())
	require.Equal(t, "asha@example.com", a.bookingInputs[1].Value())
}

func TestFlowOnboardingBackAndSkip(t *testing.T) {
	a := newFlowApp(t, nav.Home, nil)
	a.StartOnboarding()

	flowSpecial(t, a, tea.KeyEsc)
	require.NotNil(t, a.onboarding)
	require.Equal(t, onboardWelcome, a.onboarding.step)

	flowPress(t, a, "l")
	require.Contains(t, a.View(), "Welcome Back!")
	flowApplyMsg(t, a, BackMsg{})
	require.Equal(t, onboardWelcome, a.onboarding.step)
	require.Equal(t, nav.Home, a.ctrl.Screen(), "back during onboarding never reaches the controller")

	flowSpecial(t, a, tea.KeyEnter)
	require.Nil(t, a.onboarding)
	require.Equal(t, nav.Home, a.ctrl.Screen())
	require.Contains(t, a.View(), "Choose your city")

	saved, err := prefs.LoadOnboarding()
	require.NoError(t, err)
	require.Equal(t, "skip", saved.Method)
	require.Empty(t, saved.Name)
}
