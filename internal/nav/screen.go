// Package nav holds the screen state machine that drives the booking flow.
package nav

import "fmt"

// Screen identifies the active view. Exactly one is active at a time.
type Screen int

const (
	Home Screen = iota
	Maps
	Ventures
	Booking
	Payment
	PaymentSuccess
	Appointment
	AppointmentSuccess
	MyBookings
)

var screenNames = [...]string{
	Home:               "home",
	Maps:               "maps",
	Ventures:           "ventures",
	Booking:            "booking",
	Payment:            "payment",
	PaymentSuccess:     "payment-success",
	Appointment:        "appointment",
	AppointmentSuccess: "appointment-success",
	MyBookings:         "mybookings",
}

// Screens returns every screen in declaration order.
func Screens() []Screen {
	out := make([]Screen, len(screenNames))
	for i := range screenNames {
		out[i] = Screen(i)
	}
	return out
}

func (s Screen) String() string {
	if s.Valid() {
		return screenNames[s]
	}
	return fmt.Sprintf("screen(%d)", int(s))
}

// Valid reports whether s is one of the nine known screens.
func (s Screen) Valid() bool {
	return s >= 0 && int(s) < len(screenNames)
}

// ParseScreen maps a screen name back to its value.
func ParseScreen(name string) (Screen, error) {
	for i, n := range screenNames {
		if n == name {
			return Screen(i), nil
		}
	}
	return 0, fmt.Errorf("unknown screen %q", name)
}

// backRule is one row of the fixed back-button table.
type backRule struct {
	to    Screen
	clear clearMask
}

type clearMask uint8

const (
	clearSelection clearMask = 1 << iota
	clearBooking
	clearPayment
	clearAppointment
	clearSchedule

	clearAll = clearSelection | clearBooking | clearPayment | clearAppointment | clearSchedule
)

// backTable is stack-less: the target depends only on the current screen,
// never on how the user got there. mybookings always returns to maps even when
// it was opened from elsewhere.
var backTable = map[Screen]backRule{
	Ventures:           {to: Maps},
	Booking:            {to: Ventures, clear: clearSelection},
	Payment:            {to: Booking},
	PaymentSuccess:     {to: Payment},
	Appointment:        {to: Booking},
	AppointmentSuccess: {to: Ventures, clear: clearAll},
	MyBookings:         {to: Maps},
}

var defaultBack = backRule{to: Ventures}

// BackTarget is the screen the back button leads to from s.
func BackTarget(s Screen) Screen {
	return backRuleFor(s).to
}

func backRuleFor(s Screen) backRule {
	if r, ok := backTable[s]; ok {
		return r
	}
	return defaultBack
}
