package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/plotbook/internal/appointment"
	"github.com/jask/plotbook/internal/nav"
	"github.com/jask/plotbook/internal/payment"
)

func newInput(placeholder string, limit int) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.Prompt = ""
	in.Width = 40
	in.Cursor.SetMode(cursor.CursorStatic)
	return in
}

var bookingLabels = []string{
	"Full Name *",
	"Email *",
	"Phone *",
	"Address",
	"Occupation",
	"PAN Number",
	"Aadhar Number",
}

func newBookingInputs() []textinput.Model {
	placeholders := []string{
		"Enter your full name",
		"Enter your email",
		"Enter your phone number",
		"Enter your address",
		"Enter your occupation",
		"ABCDE1234F",
		"12 digit Aadhar number",
	}
	limits := []int{80, 120, 15, 200, 80, 10, 12}
	out := make([]textinput.Model, len(placeholders))
	for i, p := range placeholders {
		out[i] = newInput(p, limits[i])
	}
	return out
}

const (
	cardNumberField = iota
	cardExpiryField
	cardCVVField
	cardNameField
)

func newCardInputs() []textinput.Model {
	number := newInput("1234 5678 9012 3456", 19)
	expiry := newInput("MM/YY", 5)
	cvv := newInput("123", 3)
	cvv.EchoMode = textinput.EchoPassword
	name := newInput("Name on card", 60)
	return []textinput.Model{number, expiry, cvv, name}
}

func focusOnly(inputs []textinput.Model, idx int) tea.Cmd {
	var cmd tea.Cmd
	for i := range inputs {
		if i == idx {
			cmd = inputs[i].Focus()
			continue
		}
		inputs[i].Blur()
	}
	return cmd
}

func cycle(idx, delta, n int) int {
	if n == 0 {
		return 0
	}
	return ((idx+delta)%n + n) % n
}

// home

func (a *App) handleHomeKey(m tea.KeyMsg) tea.Cmd {
	switch m.String() {
	case "up":
		if a.locCursor > 0 {
			a.locCursor--
		}
		return nil
	case "down":
		if a.locCursor < len(a.locations)-1 {
			a.locCursor++
		}
		return nil
	case "enter":
		if len(a.locations) == 0 {
			a.status = "no matching city"
			return nil
		}
		loc := a.locations[a.locCursor]
		cmd, ok := a.try(nav.SelectLocation{Location: loc})
		if !ok {
			return cmd
		}
		return tea.Batch(cmd, a.rememberLocation(loc))
	}
	var cmd tea.Cmd
	a.search, cmd = a.search.Update(m)
	a.locations = a.catalog.SearchLocations(a.search.Value())
	if a.locCursor >= len(a.locations) {
		a.locCursor = 0
	}
	return cmd
}

// maps

func (a *App) handleMapsKey(m tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(m, a.keys.Up):
		if a.plotCursor > 0 {
			a.plotCursor--
		}
	case key.Matches(m, a.keys.Down):
		if a.plotCursor < len(a.nearby)-1 {
			a.plotCursor++
		}
	case key.Matches(m, a.keys.Enter):
		if len(a.nearby) > 0 {
			return a.dispatch(nav.SelectPlot{Plot: a.nearby[a.plotCursor]})
		}
	case key.Matches(m, a.keys.Book):
		return a.dispatch(nav.ProceedToBooking{})
	case key.Matches(m, a.keys.Ventures):
		return a.dispatch(nav.OpenVentures{})
	case key.Matches(m, a.keys.MyBookings):
		return a.dispatch(nav.OpenMyBookings{})
	case key.Matches(m, a.keys.Home):
		return a.dispatch(nav.GoHome{})
	case key.Matches(m, a.keys.Clear):
		return a.dispatch(nav.ClearSelection{})
	}
	return nil
}

// ventures

func (a *App) handleVenturesKey(m tea.KeyMsg) tea.Cmd {
	list := a.catalog.Plots()
	if len(list) == 0 {
		return nil
	}
	p := list[a.ventCursor]
	switch {
	case key.Matches(m, a.keys.Up):
		if a.ventCursor > 0 {
			a.ventCursor--
			a.subCursor = -1
		}
	case key.Matches(m, a.keys.Down):
		if a.ventCursor < len(list)-1 {
			a.ventCursor++
			a.subCursor = -1
		}
	case key.Matches(m, a.keys.Left):
		if a.subCursor > -1 {
			a.subCursor--
		}
	case key.Matches(m, a.keys.Right):
		if a.subCursor < len(p.SubPlots)-1 {
			a.subCursor++
		}
	case key.Matches(m, a.keys.Enter):
		if a.subCursor < 0 {
			return a.dispatch(nav.ChoosePlot{Plot: p})
		}
		return a.dispatch(nav.ChooseSubPlot{Plot: p, SubPlot: p.SubPlots[a.subCursor]})
	}
	return nil
}

// booking

func (a *App) resetBookingForm() {
	values := []string{a.profileName, a.profileEmail}
	if b := a.ctrl.Booking(); b != nil {
		values = []string{b.FullName, b.Email, b.Phone, b.Address, b.Occupation, b.PAN, b.Aadhar}
	}
	for i := range a.bookingInputs {
		v := ""
		if i < len(values) {
			v = values[i]
		}
		a.bookingInputs[i].SetValue(v)
	}
}

func (a *App) focusBooking(idx int) tea.Cmd {
	a.bookingFocus = idx
	return focusOnly(a.bookingInputs, idx)
}

func (a *App) bookingData() nav.BookingData {
	v := func(i int) string { return a.bookingInputs[i].Value() }
	return nav.BookingData{
		FullName:   v(0),
		Email:      v(1),
		Phone:      v(2),
		Address:    v(3),
		Occupation: v(4),
		PAN:        v(5),
		Aadhar:     v(6),
	}
}

func (a *App) handleBookingKey(m tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(m, a.keys.NextField):
		return a.focusBooking(cycle(a.bookingFocus, 1, len(a.bookingInputs)))
	case key.Matches(m, a.keys.PrevField):
		return a.focusBooking(cycle(a.bookingFocus, -1, len(a.bookingInputs)))
	case key.Matches(m, a.keys.SiteVisit):
		offer, _ := a.ctrl.Selection()
		data := a.bookingData()
		cmd, ok := a.try(nav.BookSiteVisit{Booking: data})
		if !ok {
			return cmd
		}
		a.status = fmt.Sprintf("Site visit booked for %s", offer.Title)
		return tea.Batch(cmd, a.saveSiteVisit(offer, data.Normalize()))
	case key.Matches(m, a.keys.Pay):
		return a.dispatch(nav.PayAndReserve{Booking: a.bookingData()})
	}
	var cmd tea.Cmd
	in := &a.bookingInputs[a.bookingFocus]
	*in, cmd = in.Update(m)
	switch a.bookingFocus {
	case 5:
		in.SetValue(strings.ToUpper(in.Value()))
	case 6:
		in.SetValue(digitsOnly(in.Value()))
	}
	return cmd
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// payment

func (a *App) focusCard(idx int) tea.Cmd {
	a.cardFocus = idx
	return focusOnly(a.cardInputs, idx)
}

func (a *App) handlePaymentKey(m tea.KeyMsg) tea.Cmd {
	if a.session == nil || a.session.Step() != payment.StepMethod {
		return nil
	}
	methods := payment.Methods()
	switch {
	case key.Matches(m, a.keys.Left):
		a.methodIdx = cycle(a.methodIdx, -1, len(methods))
		a.session.SetMethod(methods[a.methodIdx])
		return nil
	case key.Matches(m, a.keys.Right):
		a.methodIdx = cycle(a.methodIdx, 1, len(methods))
		a.session.SetMethod(methods[a.methodIdx])
		return nil
	case key.Matches(m, a.keys.NextField):
		return a.focusCard(cycle(a.cardFocus, 1, len(a.cardInputs)))
	case key.Matches(m, a.keys.PrevField):
		return a.focusCard(cycle(a.cardFocus, -1, len(a.cardInputs)))
	case key.Matches(m, a.keys.Enter):
		if !a.session.Start() {
			return nil
		}
		a.paySeq++
		focusOnly(a.cardInputs, -1)
		return a.paymentTick(a.paySeq)
	}
	if a.session.Method() != payment.MethodCard {
		return nil
	}
	var cmd tea.Cmd
	in := &a.cardInputs[a.cardFocus]
	*in, cmd = in.Update(m)
	switch a.cardFocus {
	case cardNumberField:
		in.SetValue(payment.FormatCardNumber(in.Value()))
	case cardExpiryField:
		in.SetValue(payment.FormatExpiry(in.Value()))
	case cardCVVField:
		in.SetValue(digitsOnly(in.Value()))
	}
	in.CursorEnd()
	return cmd
}

// payment-success

func (a *App) handlePaymentSuccessKey(m tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(m, a.keys.Appointment):
		return a.dispatch(nav.OpenAppointment{})
	case key.Matches(m, a.keys.Enter):
		date := strings.TrimSpace(a.scheduleInput.Value())
		if _, ok := a.try(nav.ScheduleRemaining{Date: date}); !ok {
			return nil
		}
		a.scheduleSeq++
		seq := a.scheduleSeq
		a.status = fmt.Sprintf("Remaining payment scheduled for %s", date)
		return tea.Batch(
			a.scheduleRemaining(date),
			tea.Tick(a.cfg.Payment.ScheduleDelay, func(time.Time) tea.Msg { return scheduleElapsedMsg{seq: seq} }),
		)
	}
	var cmd tea.Cmd
	a.scheduleInput, cmd = a.scheduleInput.Update(m)
	return cmd
}

// appointment

const (
	apptDateField = iota
	apptSlotField
	apptPurposeField
	apptNotesField
	apptFieldCount
)

func (a *App) focusAppointment(idx int) tea.Cmd {
	a.apptFocus = idx
	a.apptDate.Blur()
	a.apptNotes.Blur()
	switch idx {
	case apptDateField:
		return a.apptDate.Focus()
	case apptNotesField:
		return a.apptNotes.Focus()
	}
	return nil
}

func (a *App) appointmentForm() appointment.Form {
	f := appointment.Form{
		Date:    a.apptDate.Value(),
		Purpose: appointment.Purposes()[a.purposeIdx],
		Notes:   a.apptNotes.Value(),
	}
	if a.slotIdx >= 0 {
		f.Time = appointment.TimeSlots[a.slotIdx]
	}
	return f
}

func (a *App) handleAppointmentKey(m tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(m, a.keys.NextField):
		return a.focusAppointment(cycle(a.apptFocus, 1, apptFieldCount))
	case key.Matches(m, a.keys.PrevField):
		return a.focusAppointment(cycle(a.apptFocus, -1, apptFieldCount))
	case key.Matches(m, a.keys.Submit):
		cmd, ok := a.try(nav.SubmitAppointment{Form: a.appointmentForm()})
		if !ok {
			return cmd
		}
		return tea.Batch(cmd, a.saveAppointment())
	}
	switch a.apptFocus {
	case apptSlotField:
		switch {
		case key.Matches(m, a.keys.Left):
			if a.slotIdx < 0 {
				a.slotIdx = len(appointment.TimeSlots) - 1
			} else {
				a.slotIdx = cycle(a.slotIdx, -1, len(appointment.TimeSlots))
			}
		case key.Matches(m, a.keys.Right):
			a.slotIdx = cycle(a.slotIdx, 1, len(appointment.TimeSlots))
		}
		return nil
	case apptPurposeField:
		switch {
		case key.Matches(m, a.keys.Left):
			a.purposeIdx = cycle(a.purposeIdx, -1, len(appointment.Purposes()))
		case key.Matches(m, a.keys.Right):
			a.purposeIdx = cycle(a.purposeIdx, 1, len(appointment.Purposes()))
		}
		return nil
	case apptNotesField:
		var cmd tea.Cmd
		a.apptNotes, cmd = a.apptNotes.Update(m)
		return cmd
	}
	var cmd tea.Cmd
	a.apptDate, cmd = a.apptDate.Update(m)
	return cmd
}

func (a *App) handleAppointmentSuccessKey(m tea.KeyMsg) tea.Cmd {
	if key.Matches(m, a.keys.Reset) {
		return a.dispatch(nav.Reset{})
	}
	return nil
}

// mybookings

func (a *App) handleMyBookingsKey(m tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(m, a.keys.Up):
		if a.bookingCursor > 0 {
			a.bookingCursor--
		}
	case key.Matches(m, a.keys.Down):
		if a.bookingCursor < len(a.bookings)-1 {
			a.bookingCursor++
		}
	case key.Matches(m, a.keys.ClearData):
		if a.services.Maintenance == nil {
			a.status = "booking history is not stored"
			return nil
		}
		a.confirmReset = true
	}
	return nil
}

func (a *App) handleConfirmResetKey(m tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(m, a.keys.Confirm):
		a.confirmReset = false
		a.bookingCursor = 0
		a.status = "booking history cleared"
		return a.resetHistory()
	case key.Matches(m, a.keys.Cancel):
		a.confirmReset = false
	}
	return nil
}
