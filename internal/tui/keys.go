package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit        key.Binding
	Back        key.Binding
	Up          key.Binding
	Down        key.Binding
	Left        key.Binding
	Right       key.Binding
	Enter       key.Binding
	NextField   key.Binding
	PrevField   key.Binding
	Book        key.Binding
	Ventures    key.Binding
	MyBookings  key.Binding
	Home        key.Binding
	Clear       key.Binding
	SiteVisit   key.Binding
	Pay         key.Binding
	Appointment key.Binding
	Submit      key.Binding
	Reset       key.Binding
	ClearData   key.Binding
	Confirm     key.Binding
	Cancel      key.Binding
	Login       key.Binding
	SignUp      key.Binding
	Skip        key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Quit:        key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Back:        key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/↓", "move")),
		Down:        key.NewBinding(key.WithKeys("down", "j")),
		Left:        key.NewBinding(key.WithKeys("left"), key.WithHelp("←/→", "change")),
		Right:       key.NewBinding(key.WithKeys("right")),
		Enter:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		NextField:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		PrevField:   key.NewBinding(key.WithKeys("shift+tab")),
		Book:        key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "book")),
		Ventures:    key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "ventures")),
		MyBookings:  key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "my bookings")),
		Home:        key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "change city")),
		Clear:       key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear")),
		SiteVisit:   key.NewBinding(key.WithKeys("ctrl+b"), key.WithHelp("ctrl+b", "book site visit")),
		Pay:         key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "pay & reserve")),
		Appointment: key.NewBinding(key.WithKeys("ctrl+a"), key.WithHelp("ctrl+a", "book appointment")),
		Submit:      key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "confirm")),
		Reset:       key.NewBinding(key.WithKeys("enter", "r"), key.WithHelp("enter", "done")),
		ClearData:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear history")),
		Confirm:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		Cancel:      key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "no")),
		Login:       key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "log in")),
		SignUp:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sign up")),
		Skip:        key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "skip for now")),
	}
}
