package nav

import (
	"github.com/jask/plotbook/internal/appointment"
	"github.com/jask/plotbook/internal/payment"
	"github.com/jask/plotbook/internal/plots"
)

// Event is a user intent or external signal fed to Controller.Dispatch.
type Event interface {
	eventName() string
}

type (
	// SelectLocation picks a city on the home screen.
	SelectLocation struct{ Location plots.Location }
	// SelectPlot highlights a plot on the map.
	SelectPlot struct{ Plot plots.Plot }
	// ClearSelection drops the highlighted plot.
	ClearSelection struct{}
	// ProceedToBooking opens the booking form for the highlighted plot.
	ProceedToBooking struct{}
	OpenVentures     struct{}
	OpenMyBookings   struct{}
	GoHome           struct{}
	// ChoosePlot books a whole plot from the ventures list.
	ChoosePlot struct{ Plot plots.Plot }
	// ChooseSubPlot books one quarter of a plot from the ventures list.
	ChooseSubPlot struct {
		Plot    plots.Plot
		SubPlot plots.SubPlotRecord
	}
	BookSiteVisit struct{ Booking BookingData }
	PayAndReserve struct{ Booking BookingData }
	// PaymentCompleted is emitted by the payment view once its session succeeds.
	PaymentCompleted struct{ Receipt payment.Receipt }
	// ScheduleRemaining records when the balance will be paid.
	ScheduleRemaining struct{ Date string }
	// ScheduleElapsed fires after the scheduling confirmation has been shown.
	ScheduleElapsed   struct{}
	OpenAppointment   struct{}
	SubmitAppointment struct{ Form appointment.Form }
	// Reset leaves the appointment confirmation and starts over.
	Reset struct{}
	// Back is the hardware back button.
	Back struct{}
	// ExternalLocation is a position reported by a native map picker.
	ExternalLocation struct{ Position plots.LatLng }
)

func (SelectLocation) eventName() string    { return "select-location" }
func (SelectPlot) eventName() string        { return "select-plot" }
func (ClearSelection) eventName() string    { return "clear-selection" }
func (ProceedToBooking) eventName() string  { return "proceed-to-booking" }
func (OpenVentures) eventName() string      { return "open-ventures" }
func (OpenMyBookings) eventName() string    { return "open-mybookings" }
func (GoHome) eventName() string            { return "go-home" }
func (ChoosePlot) eventName() string        { return "choose-plot" }
func (ChooseSubPlot) eventName() string     { return "choose-subplot" }
func (BookSiteVisit) eventName() string     { return "book-site-visit" }
func (PayAndReserve) eventName() string     { return "pay-and-reserve" }
func (PaymentCompleted) eventName() string  { return "payment-completed" }
func (ScheduleRemaining) eventName() string { return "schedule-remaining" }
func (ScheduleElapsed) eventName() string   { return "schedule-elapsed" }
func (OpenAppointment) eventName() string   { return "open-appointment" }
func (SubmitAppointment) eventName() string { return "submit-appointment" }
func (Reset) eventName() string             { return "reset" }
func (Back) eventName() string              { return "back" }
func (ExternalLocation) eventName() string  { return "external-location" }

// EventName returns the stable name used in logs.
func EventName(ev Event) string {
	if ev == nil {
		return "<nil>"
	}
	return ev.eventName()
}
