// Package payment simulates the token payment. No gateway is contacted: a
// session advances a progress counter on each tick and, at 100%, mints a
// display-only receipt.
package payment

import (
	"fmt"
	"strings"
	"time"
)

// Method is the payment instrument picked by the user.
type Method string

const (
	MethodCard       Method = "card"
	MethodUPI        Method = "upi"
	MethodNetBanking Method = "netbanking"
)

// Methods lists the selectable methods in display order.
func Methods() []Method {
	return []Method{MethodCard, MethodUPI, MethodNetBanking}
}

func (m Method) Label() string {
	switch m {
	case MethodCard:
		return "Card"
	case MethodUPI:
		return "UPI"
	case MethodNetBanking:
		return "Net Banking"
	default:
		return string(m)
	}
}

// Step is the phase of a payment session.
type Step int

const (
	StepMethod Step = iota
	StepProcessing
	StepSuccess
)

func (s Step) String() string {
	switch s {
	case StepMethod:
		return "method-selection"
	case StepProcessing:
		return "processing"
	case StepSuccess:
		return "success"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// Receipt is the client-side record of a completed simulated payment.
type Receipt struct {
	Method        Method
	Amount        float64
	TransactionID string
	Timestamp     time.Time
	PlotKey       string
}

// NewTransactionID builds the display id shown on the receipt. It carries no
// meaning beyond the wall clock.
func NewTransactionID(at time.Time) string {
	return fmt.Sprintf("TXN%d", at.UnixMilli())
}

const (
	DefaultStep = 10
	complete    = 100
)

// Session is one pass through method-selection -> processing -> success. It is
// owned by the payment view and cancelled when the view goes away.
type Session struct {
	plotKey   string
	amount    float64
	method    Method
	step      Step
	progress  int
	increment int
	cancelled bool
	receipt   *Receipt
	now       func() time.Time
}

// NewSession prepares a session for paying amount towards plotKey.
// increment <= 0 falls back to DefaultStep; a nil clock uses time.Now.
func NewSession(plotKey string, amount float64, increment int, now func() time.Time) *Session {
	if increment <= 0 {
		increment = DefaultStep
	}
	if now == nil {
		now = time.Now
	}
	return &Session{plotKey: plotKey, amount: amount, method: MethodCard, increment: increment, now: now}
}

func (s *Session) Step() Step        { return s.step }
func (s *Session) Progress() int     { return s.progress }
func (s *Session) Method() Method    { return s.method }
func (s *Session) Amount() float64   { return s.amount }
func (s *Session) Cancelled() bool   { return s.cancelled }
func (s *Session) Receipt() *Receipt { return s.receipt }
func (s *Session) Percent() float64  { return float64(s.progress) / complete }
func (s *Session) Active() bool      { return !s.cancelled && s.step == StepProcessing }
func (s *Session) Done() bool        { return s.step == StepSuccess }
func (s *Session) Increment() int    { return s.increment }
func (s *Session) PlotKey() string   { return s.plotKey }

func (s *Session) SetMethod(m Method) {
	if s.step != StepMethod {
		return
	}
	s.method = m
}

// Start moves the session into processing at 0%. It is a no-op unless the
// session is still selecting a method.
func (s *Session) Start() bool {
	if s.cancelled || s.step != StepMethod {
		return false
	}
	LoadCheckout()
	s.step = StepProcessing
	s.progress = 0
	return true
}

// Advance applies one timer tick. It returns true when this tick completed the
// payment. Ticks after cancellation or completion are ignored.
func (s *Session) Advance() bool {
	if !s.Active() {
		return false
	}
	s.progress += s.increment
	if s.progress < complete {
		return false
	}
	s.progress = complete
	s.step = StepSuccess
	at := s.now()
	s.receipt = &Receipt{
		Method:        s.method,
		Amount:        s.amount,
		TransactionID: NewTransactionID(at),
		Timestamp:     at,
		PlotKey:       s.plotKey,
	}
	return true
}

// Cancel stops the session; pending ticks become no-ops.
func (s *Session) Cancel() {
	s.cancelled = true
}

// LoadCheckout stands in for loading a third-party checkout widget.
func LoadCheckout() {}

// FormatCardNumber strips non-digits and groups the first sixteen digits in fours.
func FormatCardNumber(raw string) string {
	digits := onlyDigits(raw)
	if len(digits) > 16 {
		digits = digits[:16]
	}
	var parts []string
	for i := 0; i < len(digits); i += 4 {
		end := min(i+4, len(digits))
		parts = append(parts, digits[i:end])
	}
	return strings.Join(parts, " ")
}

// FormatExpiry turns typed digits into MM/YY.
func FormatExpiry(raw string) string {
	digits := onlyDigits(raw)
	if len(digits) > 4 {
		digits = digits[:4]
	}
	if len(digits) < 2 {
		return digits
	}
	return digits[:2] + "/" + digits[2:]
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
