package nav

import (
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jask/plotbook/internal/appointment"
	"github.com/jask/plotbook/internal/payment"
	"github.com/jask/plotbook/internal/plots"
)

var (
	ErrInvalidTransition = errors.New("event not allowed on this screen")
	ErrNoPlotSelected    = errors.New("no plot selected")
	ErrUnavailable       = errors.New("plot is no longer available")
	ErrMissingDate       = errors.New("please select a payment date")
	ErrInvalidLocation   = errors.New("location out of range")
)

// Transition describes one applied event.
type Transition struct {
	From  Screen
	To    Screen
	Event string
}

// Options configures a Controller. Zero values are usable.
type Options struct {
	Start Screen
	// Statuses seeds the booked/reserved markers. The map is copied.
	Statuses map[string]plots.Status
	// Location is the city restored from a previous session, if any.
	Location *plots.Location
	// Center is the initial map centre. Zero falls back to Location's centre.
	Center     plots.LatLng
	OnLocation func(plots.LatLng)
	Now        func() time.Time
	Logger     *zap.Logger
}

// Controller owns the current screen and everything that flows between
// screens. It is not safe for concurrent use; the UI serialises all events.
type Controller struct {
	screen   Screen
	location *plots.Location
	center   plots.LatLng
	user     *plots.LatLng

	plot    *plots.Plot
	subPlot *plots.SubPlot

	booking     *BookingData
	receipt     *payment.Receipt
	appointment *appointment.Appointment
	scheduled   string

	statuses map[string]plots.Status

	onLocation func(plots.LatLng)
	now        func() time.Time
	log        *zap.Logger
}

func New(opts Options) *Controller {
	c := &Controller{
		screen:     opts.Start,
		center:     opts.Center,
		statuses:   map[string]plots.Status{},
		onLocation: opts.OnLocation,
		now:        opts.Now,
		log:        opts.Logger,
	}
	if !c.screen.Valid() {
		c.screen = Maps
	}
	maps.Copy(c.statuses, opts.Statuses)
	if opts.Location != nil {
		loc := *opts.Location
		c.location = &loc
		if c.center == (plots.LatLng{}) {
			c.center = loc.Center
		}
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	return c
}

func (c *Controller) Screen() Screen                 { return c.screen }
func (c *Controller) Location() *plots.Location      { return c.location }
func (c *Controller) Center() plots.LatLng           { return c.center }
func (c *Controller) UserLocation() *plots.LatLng    { return c.user }
func (c *Controller) Plot() *plots.Plot              { return c.plot }
func (c *Controller) SubPlot() *plots.SubPlot        { return c.subPlot }
func (c *Controller) Booking() *BookingData          { return c.booking }
func (c *Controller) PaymentData() *payment.Receipt  { return c.receipt }
func (c *Controller) ScheduledDate() string          { return c.scheduled }
func (c *Controller) Status(key string) plots.Status { return c.statuses[key] }

func (c *Controller) AppointmentData() *appointment.Appointment { return c.appointment }

// Statuses returns a copy of every plot status set so far.
func (c *Controller) Statuses() map[string]plots.Status {
	return maps.Clone(c.statuses)
}

// Selection is the effective offer: the sub-plot when one is chosen, else the
// plot. ok is false when nothing is selected.
func (c *Controller) Selection() (plots.Offer, bool) {
	switch {
	case c.subPlot != nil:
		return c.subPlot.Offer(), true
	case c.plot != nil:
		return c.plot.Offer(), true
	default:
		return plots.Offer{}, false
	}
}

// Dispatch applies ev to the current screen. On error nothing changes.
func (c *Controller) Dispatch(ev Event) (Transition, error) {
	from := c.screen
	name := EventName(ev)
	to, err := c.apply(ev)
	if err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			c.log.Debug("event ignored", zap.String("screen", from.String()), zap.String("event", name))
		} else {
			c.log.Info("event blocked", zap.String("screen", from.String()), zap.String("event", name), zap.Error(err))
		}
		return Transition{From: from, To: from, Event: name}, err
	}
	c.screen = to
	c.log.Debug("transition", zap.String("from", from.String()), zap.String("to", to.String()), zap.String("event", name))
	return Transition{From: from, To: to, Event: name}, nil
}

func (c *Controller) apply(ev Event) (Screen, error) {
	// Back and location updates are accepted everywhere.
	switch e := ev.(type) {
	case Back:
		rule := backRuleFor(c.screen)
		c.clear(rule.clear)
		return rule.to, nil
	case ExternalLocation:
		if !e.Position.Valid() {
			return c.screen, fmt.Errorf("%w: %s", ErrInvalidLocation, e.Position)
		}
		pos := e.Position
		c.user = &pos
		c.center = pos
		if c.onLocation != nil {
			c.onLocation(pos)
		}
		return c.screen, nil
	}

	switch c.screen {
	case Home:
		if e, ok := ev.(SelectLocation); ok {
			loc := e.Location
			c.location = &loc
			c.center = loc.Center
			return Maps, nil
		}
	case Maps:
		switch e := ev.(type) {
		case SelectPlot:
			p := e.Plot
			c.plot, c.subPlot = &p, nil
			return Maps, nil
		case ClearSelection:
			c.clear(clearSelection)
			return Maps, nil
		case ProceedToBooking:
			if c.plot == nil {
				return c.screen, ErrNoPlotSelected
			}
			return Booking, nil
		case OpenVentures:
			return Ventures, nil
		case OpenMyBookings:
			return MyBookings, nil
		case GoHome:
			return Home, nil
		}
	case Ventures:
		switch e := ev.(type) {
		case ChoosePlot:
			if c.statuses[e.Plot.ID].Taken() {
				return c.screen, fmt.Errorf("%w: %s", ErrUnavailable, e.Plot.ID)
			}
			p := e.Plot
			c.plot, c.subPlot = &p, nil
			return Booking, nil
		case ChooseSubPlot:
			if !strings.HasPrefix(e.SubPlot.ID, e.Plot.ID+"-") {
				return c.screen, fmt.Errorf("sub-plot %s does not belong to %s", e.SubPlot.ID, e.Plot.ID)
			}
			if c.statuses[e.SubPlot.ID].Taken() {
				return c.screen, fmt.Errorf("%w: %s", ErrUnavailable, e.SubPlot.ID)
			}
			p := e.Plot
			sp := plots.DeriveSubPlot(p, e.SubPlot)
			c.plot, c.subPlot = &p, &sp
			return Booking, nil
		}
	case Booking:
		switch e := ev.(type) {
		case BookSiteVisit:
			key, err := c.checkBooking(e.Booking)
			if err != nil {
				return c.screen, err
			}
			b := e.Booking.Normalize()
			c.booking = &b
			if c.statuses[key] != plots.StatusReserved {
				c.statuses[key] = plots.StatusBooked
			}
			return Appointment, nil
		case PayAndReserve:
			key, err := c.checkBooking(e.Booking)
			if err != nil {
				return c.screen, err
			}
			if c.statuses[key] == plots.StatusReserved {
				return c.screen, fmt.Errorf("%w: %s", ErrUnavailable, key)
			}
			b := e.Booking.Normalize()
			c.booking = &b
			return Payment, nil
		}
	case Payment:
		if e, ok := ev.(PaymentCompleted); ok {
			offer, ok := c.Selection()
			if !ok {
				return c.screen, ErrNoPlotSelected
			}
			if c.statuses[offer.Key] == plots.StatusReserved {
				return c.screen, fmt.Errorf("%w: %s", ErrUnavailable, offer.Key)
			}
			r := e.Receipt
			if r.PlotKey == "" {
				r.PlotKey = offer.Key
			}
			c.receipt = &r
			c.statuses[offer.Key] = plots.StatusReserved
			return PaymentSuccess, nil
		}
	case PaymentSuccess:
		switch e := ev.(type) {
		case ScheduleRemaining:
			date := strings.TrimSpace(e.Date)
			if date == "" {
				return c.screen, ErrMissingDate
			}
			if _, err := time.Parse(appointment.DateLayout, date); err != nil {
				return c.screen, fmt.Errorf("%w: %q", appointment.ErrBadDate, date)
			}
			c.scheduled = date
			return PaymentSuccess, nil
		case ScheduleElapsed:
			if c.scheduled == "" {
				return c.screen, ErrInvalidTransition
			}
			return Ventures, nil
		case OpenAppointment:
			return Appointment, nil
		}
	case Appointment:
		if e, ok := ev.(SubmitAppointment); ok {
			offer, ok := c.Selection()
			if !ok {
				return c.screen, ErrNoPlotSelected
			}
			customer := ""
			if c.booking != nil {
				customer = c.booking.FullName
			}
			a, err := appointment.Build(e.Form, offer, customer, c.now())
			if err != nil {
				return c.screen, err
			}
			c.appointment = &a
			return AppointmentSuccess, nil
		}
	case AppointmentSuccess:
		if _, ok := ev.(Reset); ok {
			c.clear(clearAll)
			return Ventures, nil
		}
	}
	return c.screen, ErrInvalidTransition
}

func (c *Controller) checkBooking(b BookingData) (string, error) {
	offer, ok := c.Selection()
	if !ok {
		return "", ErrNoPlotSelected
	}
	if err := b.Validate(); err != nil {
		return "", err
	}
	return offer.Key, nil
}

func (c *Controller) clear(m clearMask) {
	if m&clearSelection != 0 {
		c.plot, c.subPlot = nil, nil
	}
	if m&clearBooking != 0 {
		c.booking = nil
	}
	if m&clearPayment != 0 {
		c.receipt = nil
	}
	if m&clearAppointment != 0 {
		c.appointment = nil
	}
	if m&clearSchedule != 0 {
		c.scheduled = ""
	}
}
