package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/jask/plotbook/internal/appointment"
	"github.com/jask/plotbook/internal/database/repository"
	"github.com/jask/plotbook/internal/nav"
	"github.com/jask/plotbook/internal/payment"
	"github.com/jask/plotbook/internal/plots"
)

func (a *App) View() string {
	if a.onboarding != nil {
		return a.renderOnboarding()
	}
	var body string
	switch a.ctrl.Screen() {
	case nav.Home:
		body = a.renderHome()
	case nav.Maps:
		body = a.renderMaps()
	case nav.Ventures:
		body = a.renderVentures()
	case nav.Booking:
		body = a.renderBooking()
	case nav.Payment:
		body = a.renderPayment()
	case nav.PaymentSuccess:
		body = a.renderPaymentSuccess()
	case nav.Appointment:
		body = a.renderAppointment()
	case nav.AppointmentSuccess:
		body = a.renderAppointmentSuccess()
	case nav.MyBookings:
		body = a.renderMyBookings()
	}
	if a.status != "" {
		body += "\n" + a.statusLine()
	}
	body += "\n" + a.help.ShortHelpView(a.helpBindings())
	if a.confirmReset {
		return renderPopup(body, titleStyle.Render("Clear booking history?")+"\nThis deletes every saved booking,\npayment and appointment.\n\n[y] Yes  [n] No", a.width, a.height)
	}
	return body
}

func (a *App) statusLine() string {
	if strings.HasPrefix(a.status, "⚠") || strings.HasPrefix(a.status, "error:") {
		return warnStyle.Render(a.status)
	}
	return mutedStyle.Render(a.status)
}

func (a *App) helpBindings() []key.Binding {
	k := a.keys
	switch a.ctrl.Screen() {
	case nav.Home:
		return []key.Binding{k.Up, k.Enter, k.Back, k.Quit}
	case nav.Maps:
		return []key.Binding{k.Up, k.Enter, k.Book, k.Ventures, k.MyBookings, k.Home, k.Clear, k.Quit}
	case nav.Ventures:
		return []key.Binding{k.Up, k.Left, k.Enter, k.Back, k.Quit}
	case nav.Booking:
		return []key.Binding{k.NextField, k.SiteVisit, k.Pay, k.Back, k.Quit}
	case nav.Payment:
		return []key.Binding{k.Left, k.NextField, k.Enter, k.Back, k.Quit}
	case nav.PaymentSuccess:
		return []key.Binding{k.Enter, k.Appointment, k.Back, k.Quit}
	case nav.Appointment:
		return []key.Binding{k.NextField, k.Left, k.Submit, k.Back, k.Quit}
	case nav.AppointmentSuccess:
		return []key.Binding{k.Reset, k.Back, k.Quit}
	case nav.MyBookings:
		return []key.Binding{k.Up, k.ClearData, k.Back, k.Quit}
	}
	return []key.Binding{k.Back, k.Quit}
}

func (a *App) money(v float64) string { return plots.FormatINR(a.currency, v) }

func (a *App) lakhs(v float64) string { return plots.FormatLakhs(a.currency, v) }

func (a *App) noSelection() string {
	return warnStyle.Render("⚠ No plot selected. Go back and pick a plot first.")
}

func field(label string, in textinput.Model, focused bool) string {
	marker := "  "
	l := label
	if focused {
		marker = "▶ "
		l = focusedStyle.Render(label)
	}
	return fmt.Sprintf("%s%-16s %s", marker, l, in.View())
}

func (a *App) renderHome() string {
	out := titleStyle.Render("Choose your city") + "\n"
	out += "Search: " + a.search.View() + "\n\n"
	if len(a.locations) == 0 {
		out += mutedStyle.Render("  no matching city") + "\n"
	}
	for i, l := range a.locations {
		marker := " "
		if i == a.locCursor {
			marker = "▶"
		}
		out += fmt.Sprintf("%s %-12s %-10s %3d plots  %2d projects\n", marker, l.Name, l.State, l.PlotsAvailable, l.ProjectsAvailable)
		if i == a.locCursor && len(l.Areas) > 0 {
			out += mutedStyle.Render("    "+strings.Join(l.Areas, ", ")) + "\n"
		}
	}
	return strings.TrimRight(out, "\n")
}

func (a *App) renderMaps() string {
	title := "Plots near " + a.ctrl.Center().String()
	if loc := a.ctrl.Location(); loc != nil {
		title = "Plots near " + loc.Name
	}
	out := titleStyle.Render(title) + "\n"
	if u := a.ctrl.UserLocation(); u != nil {
		out += mutedStyle.Render("You are at "+u.String()) + "\n"
	}
	selected := ""
	if p := a.ctrl.Plot(); p != nil {
		selected = p.ID
	}
	for i, p := range a.nearby {
		marker := " "
		if i == a.plotCursor {
			marker = "▶"
		}
		pin := " "
		if p.ID == selected {
			pin = "●"
		}
		dist := plots.DistanceKm(a.ctrl.Center(), p.Coordinates)
		out += fmt.Sprintf("%s%s %-6s %-44s %8s %6.1f km %s\n", marker, pin, p.ID, p.Title, a.lakhs(p.Price), dist, a.statusBadge(p.ID))
	}
	if p := a.ctrl.Plot(); p != nil {
		out += "\n" + headerStyle.Render(p.Title) + "\n"
		out += fmt.Sprintf("%s  ·  %s\nPrice %s  ·  Token %s\n", p.Location, p.Area, a.money(p.Price), a.money(p.TokenAmount))
		if len(p.Amenities) > 0 {
			out += mutedStyle.Render(strings.Join(p.Amenities, " · ")) + "\n"
		}
	}
	return strings.TrimRight(out, "\n")
}

func (a *App) statusBadge(id string) string {
	s := a.ctrl.Status(id)
	switch s {
	case plots.StatusReserved:
		return takenStyle.Render(s.Label())
	case plots.StatusBooked:
		return bookedStyle.Render(s.Label())
	default:
		return ""
	}
}

func (a *App) renderVentures() string {
	out := titleStyle.Render("Ventures") + "\n"
	for i, p := range a.catalog.Plots() {
		marker := " "
		if i == a.ventCursor {
			marker = "▶"
		}
		out += fmt.Sprintf("%s %-6s %-44s %8s  token %8s %s\n", marker, p.ID, p.Title, a.lakhs(p.Price), a.lakhs(p.TokenAmount), a.statusBadge(p.ID))
		if i != a.ventCursor {
			continue
		}
		whole := "[whole plot]"
		if a.subCursor < 0 {
			whole = focusedStyle.Render(whole)
		}
		parts := []string{whole}
		for j, rec := range p.SubPlots {
			sp := plots.DeriveSubPlot(p, rec)
			label := fmt.Sprintf("%s %s %s", rec.ID, rec.Measurement, a.lakhs(sp.Price))
			if badge := a.ctrl.Status(rec.ID); badge.Taken() {
				label += " " + badge.Label()
			}
			if j == a.subCursor {
				label = focusedStyle.Render("[" + label + "]")
			} else if a.ctrl.Status(rec.ID).Taken() {
				label = takenStyle.Render(label)
			}
			parts = append(parts, label)
		}
		out += "    " + strings.Join(parts, "  ") + "\n"
	}
	return strings.TrimRight(out, "\n")
}

func (a *App) renderOffer(offer plots.Offer) string {
	out := headerStyle.Render(offer.Title) + "\n"
	if offer.Location != "" {
		out += mutedStyle.Render(offer.Location) + "\n"
	}
	out += fmt.Sprintf("Total Price     %s\nToken Amount    %s\nRemaining       %s\n",
		a.money(offer.Price), a.money(offer.TokenAmount), a.money(offer.Remaining()))
	return out
}

func (a *App) renderBooking() string {
	out := titleStyle.Render("Book Your Plot") + "\n"
	offer, ok := a.ctrl.Selection()
	if !ok {
		return out + a.noSelection()
	}
	out += a.renderOffer(offer) + "\n"
	for i, in := range a.bookingInputs {
		out += field(bookingLabels[i], in, i == a.bookingFocus) + "\n"
	}
	return strings.TrimRight(out, "\n")
}

func (a *App) renderPayment() string {
	out := titleStyle.Render("Payment") + "\n"
	offer, ok := a.ctrl.Selection()
	if !ok {
		return out + a.noSelection()
	}
	if a.session == nil {
		return out + a.renderOffer(offer) + "\n" + warnStyle.Render(alertText(fmt.Errorf("%w: %s", nav.ErrUnavailable, offer.Key)))
	}
	out += a.renderOffer(offer) + "\n"
	switch a.session.Step() {
	case payment.StepMethod:
		var methods []string
		for _, m := range payment.Methods() {
			label := m.Label()
			if m == a.session.Method() {
				label = focusedStyle.Render("(•) " + label)
			} else {
				label = "( ) " + label
			}
			methods = append(methods, label)
		}
		out += "Method: " + strings.Join(methods, "   ") + "\n\n"
		if a.session.Method() == payment.MethodCard {
			labels := []string{"Card Number", "Expiry", "CVV", "Card Holder"}
			for i, in := range a.cardInputs {
				out += field(labels[i], in, i == a.cardFocus) + "\n"
			}
		} else {
			out += mutedStyle.Render("You will confirm the payment in your "+a.session.Method().Label()+" app.") + "\n"
		}
		out += fmt.Sprintf("\nPress enter to pay %s", a.money(a.session.Amount()))
	case payment.StepProcessing:
		out += "Processing payment...\n" + a.progressBar.ViewAs(a.session.Percent())
	case payment.StepSuccess:
		out += okStyle.Render("✓ Payment successful") + "\n" + a.progressBar.ViewAs(1)
		if r := a.session.Receipt(); r != nil {
			out += "\nTransaction " + r.TransactionID
		}
	}
	return out
}

func (a *App) renderPaymentSuccess() string {
	out := okStyle.Render("✓ Payment Successful") + "\n"
	offer, ok := a.ctrl.Selection()
	r := a.ctrl.PaymentData()
	if !ok || r == nil {
		return out + a.noSelection()
	}
	out += fmt.Sprintf("%s is reserved for you.\n\n", offer.Title)
	out += fmt.Sprintf("Transaction ID  %s\nMethod          %s\nAmount Paid     %s\nPaid At         %s\nRemaining       %s\n\n",
		r.TransactionID, r.Method.Label(), a.money(r.Amount), r.Timestamp.In(a.tz).Format("02 Jan 2006 03:04 PM"), a.money(offer.Remaining()))
	if d := a.ctrl.ScheduledDate(); d != "" {
		out += okStyle.Render("Remaining payment scheduled for "+d) + "\n"
		out += mutedStyle.Render("Returning to ventures...")
		return out
	}
	out += "Schedule remaining payment: " + a.scheduleInput.View()
	return out
}

func (a *App) renderAppointment() string {
	out := titleStyle.Render("Book Appointment") + "\n"
	offer, ok := a.ctrl.Selection()
	if !ok {
		return out + a.noSelection()
	}
	out += headerStyle.Render(offer.Title) + "\n"
	if b := a.ctrl.Booking(); b != nil {
		out += mutedStyle.Render("Customer: "+b.FullName) + "\n"
	}
	out += "\n" + field("Date *", a.apptDate, a.apptFocus == apptDateField) + "\n"

	var slots []string
	for i, s := range appointment.TimeSlots {
		if i == a.slotIdx {
			s = focusedStyle.Render("[" + s + "]")
		}
		slots = append(slots, s)
	}
	out += focusMarker(a.apptFocus == apptSlotField) + fmt.Sprintf("%-16s %s\n", "Time *", strings.Join(slots, " "))

	purpose := appointment.Purposes()[a.purposeIdx]
	out += focusMarker(a.apptFocus == apptPurposeField) + fmt.Sprintf("%-16s ‹ %s ›\n", "Purpose", purpose.Label())
	out += field("Notes", a.apptNotes, a.apptFocus == apptNotesField)
	return out
}

func focusMarker(focused bool) string {
	if focused {
		return "▶ "
	}
	return "  "
}

func (a *App) renderAppointmentSuccess() string {
	out := okStyle.Render("✓ Appointment Confirmed") + "\n"
	appt := a.ctrl.AppointmentData()
	if appt == nil {
		return out + a.noSelection()
	}
	out += fmt.Sprintf("\nPlot       %s\nDate       %s\nTime       %s\nPurpose    %s\n",
		appt.Offer.Title, appt.Date, appt.TimeSlot, appt.Purpose.Label())
	if appt.CustomerName != "" {
		out += fmt.Sprintf("Customer   %s\n", appt.CustomerName)
	}
	if appt.Notes != "" {
		out += fmt.Sprintf("Notes      %s\n", appt.Notes)
	}
	out += mutedStyle.Render("\nWe will contact you to confirm the visit.")
	return out
}

func (a *App) renderMyBookings() string {
	out := titleStyle.Render("My Bookings") + "\n"
	if len(a.bookings) == 0 {
		return out + mutedStyle.Render("No bookings yet.")
	}
	for i, b := range a.bookings {
		marker := " "
		if i == a.bookingCursor {
			marker = "▶"
		}
		status := okStyle.Render(b.StatusLabel())
		if b.Kind != repository.KindReserved {
			status = bookedStyle.Render(b.StatusLabel())
		}
		out += fmt.Sprintf("%s %-8s %-44s token %10s  %s  %s\n", marker, b.PlotKey, b.PlotTitle, a.money(b.BookingAmount), b.BookedOn.In(a.tz).Format("2006-01-02"), status)
		if i == a.bookingCursor && b.Schedule != nil {
			out += mutedStyle.Render("    balance due "+*b.Schedule) + "\n"
		}
	}
	return strings.TrimRight(out, "\n")
}
