package nav

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// BookingData is what the customer typed on the booking form.
type BookingData struct {
	FullName   string
	Email      string
	Phone      string
	Address    string
	Occupation string
	PAN        string
	Aadhar     string
}

var ErrIncompleteBooking = errors.New("please fill all required fields")

var (
	panPattern    = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
	aadharPattern = regexp.MustCompile(`^[0-9]{12}$`)
)

// Normalize trims every field and upper-cases the PAN.
func (b BookingData) Normalize() BookingData {
	b.FullName = strings.TrimSpace(b.FullName)
	b.Email = strings.TrimSpace(b.Email)
	b.Phone = strings.TrimSpace(b.Phone)
	b.Address = strings.TrimSpace(b.Address)
	b.Occupation = strings.TrimSpace(b.Occupation)
	b.PAN = strings.ToUpper(strings.TrimSpace(b.PAN))
	b.Aadhar = strings.TrimSpace(b.Aadhar)
	return b
}

// Validate checks the required fields. PAN and Aadhar are optional but must be
// well formed when given.
func (b BookingData) Validate() error {
	b = b.Normalize()
	var missing []string
	if b.FullName == "" {
		missing = append(missing, "full name")
	}
	if b.Email == "" {
		missing = append(missing, "email")
	}
	if b.Phone == "" {
		missing = append(missing, "phone")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrIncompleteBooking, strings.Join(missing, ", "))
	}
	if !strings.Contains(b.Email, "@") {
		return fmt.Errorf("%w: email looks invalid", ErrIncompleteBooking)
	}
	if b.PAN != "" && !panPattern.MatchString(b.PAN) {
		return fmt.Errorf("%w: PAN must look like ABCDE1234F", ErrIncompleteBooking)
	}
	if b.Aadhar != "" && !aadharPattern.MatchString(b.Aadhar) {
		return fmt.Errorf("%w: Aadhar must be 12 digits", ErrIncompleteBooking)
	}
	return nil
}
