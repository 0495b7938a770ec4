package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jask/plotbook/internal/prefs"
)

type onboardingStep int

const (
	onboardWelcome onboardingStep = iota
	onboardLogin
	onboardSignup
)

func (s onboardingStep) method() string {
	switch s {
	case onboardLogin:
		return "login"
	case onboardSignup:
		return "signup"
	default:
		return "skip"
	}
}

// onboarding is the welcome, log in and sign up flow. Accounts are not
// checked anywhere; submitting either form only waits a moment and moves on.
type onboarding struct {
	step    onboardingStep
	labels  []string
	inputs  []textinput.Model
	focus   int
	loading bool
}

type onboardingDoneMsg struct{}

// StartOnboarding shows the welcome flow before the first screen.
func (a *App) StartOnboarding() {
	a.onboarding = &onboarding{}
}

// SetProfile prefills the booking form with details from a past sign up.
func (a *App) SetProfile(name, email string) {
	a.profileName, a.profileEmail = name, email
}

func (o *onboarding) value(label string) string {
	for i, l := range o.labels {
		if l == label {
			return strings.TrimSpace(o.inputs[i].Value())
		}
	}
	return ""
}

func (a *App) openOnboardingForm(step onboardingStep) tea.Cmd {
	o := a.onboarding
	o.step = step
	o.labels = []string{"Email", "Password"}
	if step == onboardSignup {
		o.labels = []string{"Full Name", "Email", "Password"}
	}
	o.inputs = make([]textinput.Model, len(o.labels))
	for i, l := range o.labels {
		o.inputs[i] = newInput(l, 120)
		if l == "Password" {
			o.inputs[i].EchoMode = textinput.EchoPassword
		}
	}
	o.focus = 0
	return focusOnly(o.inputs, 0)
}

func (a *App) onboardingBack() {
	o := a.onboarding
	if o.loading || o.step == onboardWelcome {
		return
	}
	o.step, o.labels, o.inputs, o.focus = onboardWelcome, nil, nil, 0
}

func (a *App) handleOnboardingKey(m tea.KeyMsg) tea.Cmd {
	o := a.onboarding
	if o.loading {
		return nil
	}
	if o.step == onboardWelcome {
		switch {
		case key.Matches(m, a.keys.SignUp):
			return a.openOnboardingForm(onboardSignup)
		case key.Matches(m, a.keys.Login):
			return a.openOnboardingForm(onboardLogin)
		case key.Matches(m, a.keys.Skip):
			return a.finishOnboarding()
		}
		return nil
	}
	switch {
	case key.Matches(m, a.keys.Back):
		a.onboardingBack()
		return nil
	case key.Matches(m, a.keys.NextField):
		o.focus = cycle(o.focus, 1, len(o.inputs))
		return focusOnly(o.inputs, o.focus)
	case key.Matches(m, a.keys.PrevField):
		o.focus = cycle(o.focus, -1, len(o.inputs))
		return focusOnly(o.inputs, o.focus)
	case key.Matches(m, a.keys.Enter):
		o.loading = true
		focusOnly(o.inputs, -1)
		return tea.Tick(a.cfg.UI.OnboardingDelay, func(time.Time) tea.Msg { return onboardingDoneMsg{} })
	}
	var cmd tea.Cmd
	o.inputs[o.focus], cmd = o.inputs[o.focus].Update(m)
	return cmd
}

func (a *App) onOnboardingDone() tea.Cmd {
	if a.onboarding == nil || !a.onboarding.loading {
		return nil
	}
	return a.finishOnboarding()
}

// finishOnboarding records the flow as done and opens the first screen.
func (a *App) finishOnboarding() tea.Cmd {
	o := a.onboarding
	done := prefs.Onboarding{
		Completed:   true,
		Method:      o.step.method(),
		Name:        o.value("Full Name"),
		Email:       o.value("Email"),
		CompletedAt: time.Now().UTC(),
	}
	a.onboarding = nil
	a.SetProfile(done.Name, done.Email)
	a.log.Info("onboarding finished", zap.String("method", done.Method))
	return tea.Batch(a.saveOnboarding(done), a.enter(a.ctrl.Screen()))
}

func (a *App) saveOnboarding(done prefs.Onboarding) tea.Cmd {
	return func() tea.Msg {
		if err := prefs.SaveOnboarding(done); err != nil {
			// The user still gets in; the welcome flow just shows again next time.
			a.log.Warn("save onboarding", zap.Error(err))
		}
		return nil
	}
}

func (a *App) renderOnboarding() string {
	o := a.onboarding
	var out string
	switch o.step {
	case onboardWelcome:
		out = titleStyle.Render("Welcome to PlotBook") + "\n"
		out += mutedStyle.Render("Find, book and reserve plots across Telangana.") + "\n\n"
		out += "[s] Sign up   [l] Log in   [enter] Skip for now"
		return out
	case onboardLogin:
		out = titleStyle.Render("Welcome Back!") + "\n\n"
	case onboardSignup:
		out = titleStyle.Render("Create your account") + "\n\n"
	}
	for i, in := range o.inputs {
		out += field(o.labels[i], in, i == o.focus) + "\n"
	}
	if o.loading {
		return out + "\n" + mutedStyle.Render("Signing you in...")
	}
	return out + "\n" + a.help.ShortHelpView([]key.Binding{a.keys.NextField, a.keys.Enter, a.keys.Back, a.keys.Quit})
}
