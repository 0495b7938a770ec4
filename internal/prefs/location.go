package prefs

import "time"

const locationFile = "location.json"

// LastLocation is the city picked on the home screen in a previous session.
type LastLocation struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Lat      float64   `json:"lat"`
	Lng      float64   `json:"lng"`
	PickedAt time.Time `json:"picked_at"`
}

func SaveLocation(loc LastLocation) error {
	return writeJSON(locationFile, loc)
}

// LoadLocation returns nil when nothing has been saved yet.
func LoadLocation() (*LastLocation, error) {
	var loc LastLocation
	ok, err := readJSON(locationFile, &loc)
	if err != nil || !ok {
		return nil, err
	}
	return &loc, nil
}
