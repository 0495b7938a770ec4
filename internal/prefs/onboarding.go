package prefs

import "time"

const onboardingFile = "onboarding.json"

// Onboarding marks the welcome flow as done. Passwords are never stored.
type Onboarding struct {
	Completed   bool      `json:"completed"`
	Method      string    `json:"method"`
	Name        string    `json:"name,omitempty"`
	Email       string    `json:"email,omitempty"`
	CompletedAt time.Time `json:"completed_at"`
}

func SaveOnboarding(o Onboarding) error {
	return writeJSON(onboardingFile, o)
}

// LoadOnboarding returns nil when the welcome flow has never finished.
func LoadOnboarding() (*Onboarding, error) {
	var o Onboarding
	ok, err := readJSON(onboardingFile, &o)
	if err != nil || !ok {
		return nil, err
	}
	return &o, nil
}
