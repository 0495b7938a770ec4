package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/jask/plotbook/internal/config"
	"github.com/jask/plotbook/internal/database/repository"
	"github.com/jask/plotbook/internal/nav"
	"github.com/jask/plotbook/internal/payment"
	"github.com/jask/plotbook/internal/plots"
	"github.com/jask/plotbook/internal/prefs"
	"github.com/jask/plotbook/internal/service"
)

// App renders the screen the controller is on and turns keys into events.
type App struct {
	ctx      context.Context
	cfg      config.Config
	catalog  *plots.Catalog
	ctrl     *nav.Controller
	services Services
	log      *zap.Logger
	tz       *time.Location
	currency string

	keys   keyMap
	help   help.Model
	width  int
	height int
	status string

	// home
	search    textinput.Model
	locations []plots.Location
	locCursor int

	// maps
	nearby     []plots.Plot
	plotCursor int

	// ventures; subCursor -1 means the whole plot
	ventCursor int
	subCursor  int

	// booking form
	bookingInputs []textinput.Model
	bookingFocus  int

	// payment
	session     *payment.Session
	paySeq      int
	methodIdx   int
	cardInputs  []textinput.Model
	cardFocus   int
	progressBar progress.Model

	// payment-success; a schedule entered before the reservation row exists
	// waits in pendingSchedule
	scheduleInput   textinput.Model
	scheduleSeq     int
	reserveSeq      int
	reservationID   string
	pendingSchedule string

	// appointment
	apptDate   textinput.Model
	apptNotes  textinput.Model
	slotIdx    int
	purposeIdx int
	apptFocus  int

	// mybookings
	bookings      []repository.Booking
	bookingCursor int
	confirmReset  bool

	// welcome flow shown before the first screen; nil once done
	onboarding   *onboarding
	profileName  string
	profileEmail string
}

// Services are optional; without them the flow runs purely in memory.
type Services struct {
	Bookings    *service.BookingService
	Maintenance *service.MaintenanceService
}

func New(ctx context.Context, cfg config.Config, catalog *plots.Catalog, ctrl *nav.Controller, services Services, tz *time.Location, log *zap.Logger) *App {
	if tz == nil {
		tz = time.Local
	}
	if log == nil {
		log = zap.NewNop()
	}
	a := &App{
		ctx:         ctx,
		cfg:         cfg,
		catalog:     catalog,
		ctrl:        ctrl,
		services:    services,
		log:         log,
		tz:          tz,
		currency:    cfg.UI.CurrencySymbol,
		keys:        defaultKeys(),
		help:        help.New(),
		subCursor:   -1,
		slotIdx:     -1,
		progressBar: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
	a.search = newInput("Search city or area", 40)
	a.bookingInputs = newBookingInputs()
	a.cardInputs = newCardInputs()
	a.scheduleInput = newInput("YYYY-MM-DD", 10)
	a.apptDate = newInput("YYYY-MM-DD", 10)
	a.apptNotes = newInput("Anything we should know?", 200)
	a.locations = catalog.SearchLocations("")
	a.refreshNearby()
	return a
}

func (a *App) Init() tea.Cmd {
	if a.onboarding != nil {
		return nil
	}
	return a.enter(a.ctrl.Screen())
}

// messages
type statusMsg string

type errMsg struct{ error }

type bookingsMsg []repository.Booking

type bookingSavedMsg struct {
	id   string
	kind repository.BookingKind
	seq  int
}

type paymentTickMsg struct{ seq int }

type paymentDoneMsg struct{ seq int }

type scheduleElapsedMsg struct{ seq int }

// BackMsg is a back-button press from outside the terminal.
type BackMsg struct{}

// LocationMsg is a position reported by the native map picker.
type LocationMsg struct{ Position plots.LatLng }

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		a.help.Width = m.Width
	case tea.KeyMsg:
		return a, a.handleKey(m)
	case BackMsg:
		if a.onboarding != nil {
			a.onboardingBack()
			return a, nil
		}
		return a, a.back()
	case onboardingDoneMsg:
		return a, a.onOnboardingDone()
	case LocationMsg:
		cmd := a.dispatch(nav.ExternalLocation{Position: m.Position})
		a.refreshNearby()
		return a, cmd
	case paymentTickMsg:
		return a, a.onPaymentTick(m)
	case paymentDoneMsg:
		return a, a.onPaymentDone(m)
	case scheduleElapsedMsg:
		if m.seq != a.scheduleSeq || a.ctrl.Screen() != nav.PaymentSuccess {
			return a, nil
		}
		return a, a.dispatch(nav.ScheduleElapsed{})
	case bookingsMsg:
		a.bookings = []repository.Booking(m)
		if a.bookingCursor >= len(a.bookings) {
			a.bookingCursor = 0
		}
	case bookingSavedMsg:
		return a, a.onBookingSaved(m)
	case statusMsg:
		a.status = string(m)
	case errMsg:
		a.log.Error("background command failed", zap.Error(m.error))
		a.status = "error: " + m.Error()
	}
	return a, nil
}

func (a *App) handleKey(m tea.KeyMsg) tea.Cmd {
	if key.Matches(m, a.keys.Quit) {
		return tea.Quit
	}
	if a.onboarding != nil {
		return a.handleOnboardingKey(m)
	}
	if a.confirmReset {
		return a.handleConfirmResetKey(m)
	}
	if key.Matches(m, a.keys.Back) {
		return a.back()
	}
	switch a.ctrl.Screen() {
	case nav.Home:
		return a.handleHomeKey(m)
	case nav.Maps:
		return a.handleMapsKey(m)
	case nav.Ventures:
		return a.handleVenturesKey(m)
	case nav.Booking:
		return a.handleBookingKey(m)
	case nav.Payment:
		return a.handlePaymentKey(m)
	case nav.PaymentSuccess:
		return a.handlePaymentSuccessKey(m)
	case nav.Appointment:
		return a.handleAppointmentKey(m)
	case nav.AppointmentSuccess:
		return a.handleAppointmentSuccessKey(m)
	case nav.MyBookings:
		return a.handleMyBookingsKey(m)
	}
	return nil
}

func (a *App) back() tea.Cmd {
	return a.dispatch(nav.Back{})
}

// dispatch feeds ev to the controller and runs the leave/enter hooks when the
// screen changes. Blocked events become a status line alert.
func (a *App) dispatch(ev nav.Event) tea.Cmd {
	cmd, _ := a.try(ev)
	return cmd
}

func (a *App) try(ev nav.Event) (tea.Cmd, bool) {
	tr, err := a.ctrl.Dispatch(ev)
	if err != nil {
		if !errors.Is(err, nav.ErrInvalidTransition) {
			a.status = alertText(err)
		}
		return nil, false
	}
	a.status = ""
	if tr.From == tr.To {
		return nil, true
	}
	a.leave(tr.From)
	return a.enter(tr.To), true
}

func alertText(err error) string {
	msg := err.Error()
	if msg == "" {
		return ""
	}
	return "⚠ " + msg
}

// leave tears down per-screen state. Leaving the payment screen cancels the
// session so in-flight ticks are dropped.
func (a *App) leave(s nav.Screen) {
	switch s {
	case nav.Payment:
		if a.session != nil {
			a.session.Cancel()
			a.log.Debug("payment session cancelled", zap.Int("progress", a.session.Progress()))
		}
		a.session = nil
		a.paySeq++
	case nav.PaymentSuccess:
		a.scheduleSeq++
		a.scheduleInput.Blur()
	case nav.MyBookings:
		a.confirmReset = false
	}
}

func (a *App) enter(s nav.Screen) tea.Cmd {
	switch s {
	case nav.Home:
		a.search.SetValue("")
		a.locations = a.catalog.SearchLocations("")
		a.locCursor = 0
		return a.search.Focus()
	case nav.Maps:
		a.refreshNearby()
	case nav.Ventures:
		a.subCursor = -1
	case nav.Booking:
		a.resetBookingForm()
		return a.focusBooking(0)
	case nav.Payment:
		a.reserveSeq++
		a.reservationID, a.pendingSchedule = "", ""
		offer, ok := a.ctrl.Selection()
		if !ok {
			return nil
		}
		if a.ctrl.Status(offer.Key) == plots.StatusReserved {
			a.status = alertText(fmt.Errorf("%w: %s", nav.ErrUnavailable, offer.Key))
			return nil
		}
		a.session = payment.NewSession(offer.Key, offer.TokenAmount, a.cfg.Payment.Step, time.Now)
		a.methodIdx = 0
		for i := range a.cardInputs {
			a.cardInputs[i].SetValue("")
		}
		return a.focusCard(0)
	case nav.PaymentSuccess:
		a.scheduleInput.SetValue("")
		return a.scheduleInput.Focus()
	case nav.Appointment:
		a.apptDate.SetValue("")
		a.apptNotes.SetValue("")
		a.slotIdx, a.purposeIdx = -1, 0
		return a.focusAppointment(0)
	case nav.MyBookings:
		return a.loadBookings()
	}
	return nil
}

func (a *App) refreshNearby() {
	a.nearby = a.catalog.PlotsNear(a.ctrl.Center())
	if a.plotCursor >= len(a.nearby) {
		a.plotCursor = 0
	}
}

// payment lifecycle

func (a *App) paymentTick(seq int) tea.Cmd {
	return tea.Tick(a.cfg.Payment.TickInterval, func(time.Time) tea.Msg { return paymentTickMsg{seq: seq} })
}

func (a *App) onPaymentTick(m paymentTickMsg) tea.Cmd {
	if m.seq != a.paySeq || a.session == nil {
		return nil
	}
	if a.session.Advance() {
		seq := a.paySeq
		return tea.Tick(a.cfg.Payment.SuccessDelay, func(time.Time) tea.Msg { return paymentDoneMsg{seq: seq} })
	}
	if !a.session.Active() {
		return nil
	}
	return a.paymentTick(a.paySeq)
}

func (a *App) onPaymentDone(m paymentDoneMsg) tea.Cmd {
	if m.seq != a.paySeq || a.session == nil || !a.session.Done() {
		return nil
	}
	receipt := *a.session.Receipt()
	offer, _ := a.ctrl.Selection()
	var booking nav.BookingData
	if b := a.ctrl.Booking(); b != nil {
		booking = *b
	}
	cmd := a.dispatch(nav.PaymentCompleted{Receipt: receipt})
	if a.ctrl.Screen() != nav.PaymentSuccess {
		return cmd
	}
	return tea.Batch(cmd, a.saveReservation(offer, booking, receipt))
}

// persistence commands

func (a *App) loadBookings() tea.Cmd {
	if a.services.Bookings == nil {
		return nil
	}
	return func() tea.Msg {
		list, err := a.services.Bookings.List(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		return bookingsMsg(list)
	}
}

func (a *App) saveSiteVisit(offer plots.Offer, b nav.BookingData) tea.Cmd {
	if a.services.Bookings == nil {
		return nil
	}
	return func() tea.Msg {
		id, err := a.services.Bookings.RecordSiteVisit(a.ctx, offer, b)
		if err != nil {
			return errMsg{err}
		}
		return bookingSavedMsg{id: id, kind: repository.KindSiteVisit}
	}
}

func (a *App) saveReservation(offer plots.Offer, b nav.BookingData, r payment.Receipt) tea.Cmd {
	if a.services.Bookings == nil {
		return nil
	}
	seq := a.reserveSeq
	return func() tea.Msg {
		id, err := a.services.Bookings.RecordReservation(a.ctx, offer, b, r)
		if err != nil {
			return errMsg{err}
		}
		return bookingSavedMsg{id: id, kind: repository.KindReserved, seq: seq}
	}
}

// onBookingSaved binds the current payment's reservation row and flushes a
// schedule that was entered before the row landed. Rows from earlier payments
// are ignored.
func (a *App) onBookingSaved(m bookingSavedMsg) tea.Cmd {
	a.log.Debug("booking saved", zap.String("id", m.id), zap.String("kind", string(m.kind)))
	if m.kind != repository.KindReserved || m.seq != a.reserveSeq {
		return nil
	}
	a.reservationID = m.id
	if a.pendingSchedule == "" {
		return nil
	}
	date := a.pendingSchedule
	a.pendingSchedule = ""
	return a.saveSchedule(m.id, date)
}

// scheduleRemaining stores date against this payment's reservation, or holds
// it until the reservation has been written.
func (a *App) scheduleRemaining(date string) tea.Cmd {
	if a.reservationID == "" {
		a.pendingSchedule = date
		return nil
	}
	return a.saveSchedule(a.reservationID, date)
}

func (a *App) saveSchedule(id, date string) tea.Cmd {
	if a.services.Bookings == nil || id == "" {
		return nil
	}
	return func() tea.Msg {
		if err := a.services.Bookings.ScheduleRemaining(a.ctx, id, date); err != nil {
			return errMsg{err}
		}
		return nil
	}
}

func (a *App) saveAppointment() tea.Cmd {
	appt := a.ctrl.AppointmentData()
	if a.services.Bookings == nil || appt == nil {
		return nil
	}
	saved := *appt
	return func() tea.Msg {
		if err := a.services.Bookings.RecordAppointment(a.ctx, saved); err != nil {
			return errMsg{err}
		}
		return nil
	}
}

func (a *App) resetHistory() tea.Cmd {
	return func() tea.Msg {
		if a.services.Maintenance == nil {
			return errMsg{fmt.Errorf("maintenance not configured")}
		}
		if err := a.services.Maintenance.Reset(a.ctx); err != nil {
			return errMsg{err}
		}
		return bookingsMsg(nil)
	}
}

func (a *App) rememberLocation(loc plots.Location) tea.Cmd {
	return func() tea.Msg {
		err := prefs.SaveLocation(prefs.LastLocation{
			ID:       loc.ID,
			Name:     loc.Name,
			Lat:      loc.Center.Lat,
			Lng:      loc.Center.Lng,
			PickedAt: time.Now().UTC(),
		})
		if err != nil {
			a.log.Warn("remember location", zap.Error(err))
		}
		return nil
	}
}

// styles
var (
	accentColor  = lipgloss.Color("#1e88e5")
	titleStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff9800")).Bold(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#4caf50")).Bold(true)
	takenStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#e53935"))
	bookedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff9800"))
	focusedStyle = lipgloss.NewStyle().Foreground(accentColor).Bold(true)
)
