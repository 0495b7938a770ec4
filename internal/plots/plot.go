package plots

import (
	"fmt"
	"strings"
)

// LatLng is a WGS84 coordinate pair.
type LatLng struct {
	Lat float64
	Lng float64
}

// Valid reports whether the pair is inside the WGS84 range.
func (ll LatLng) Valid() bool {
	return ll.Lat >= -90 && ll.Lat <= 90 && ll.Lng >= -180 && ll.Lng <= 180
}

func (ll LatLng) String() string {
	return fmt.Sprintf("%.4f, %.4f", ll.Lat, ll.Lng)
}

// Location is a city the user can pick on the home screen.
type Location struct {
	ID                string
	Name              string
	State             string
	Center            LatLng
	PlotsAvailable    int
	ProjectsAvailable int
	Areas             []string
}

// Plot is immutable reference data for a sellable unit of land.
type Plot struct {
	ID          string
	Title       string
	Location    string
	Area        string
	Price       float64
	TokenAmount float64
	Amenities   []string
	Images      []string
	Description string
	Coordinates LatLng
	SubPlots    []SubPlotRecord
}

// SubPlotRecord is the raw sub-plot entry as stored in the catalogue.
type SubPlotRecord struct {
	ID          string
	Measurement string
	Coordinates LatLng
}

// SubPlot is a quarter-share of a parent plot, built when the sub-plot is selected.
type SubPlot struct {
	ID          string
	ParentID    string
	Measurement string
	Title       string
	Location    string
	Price       float64
	TokenAmount float64
	Amenities   []string
	Images      []string
	Description string
	Coordinates LatLng
}

// subPlotShare is the divisor applied to the parent's price and token amount.
const subPlotShare = 4

// DeriveSubPlot builds the SubPlot for rec. Prices keep full float precision;
// rounding is left to presentation.
func DeriveSubPlot(parent Plot, rec SubPlotRecord) SubPlot {
	return SubPlot{
		ID:          rec.ID,
		ParentID:    parent.ID,
		Measurement: rec.Measurement,
		Title:       fmt.Sprintf("%s - Sub Plot %s", parent.Title, subPlotSuffix(rec.ID)),
		Location:    parent.Location,
		Price:       parent.Price / subPlotShare,
		TokenAmount: parent.TokenAmount / subPlotShare,
		Amenities:   parent.Amenities,
		Images:      parent.Images,
		Description: parent.Description,
		Coordinates: rec.Coordinates,
	}
}

func subPlotSuffix(id string) string {
	parts := strings.Split(id, "-")
	return parts[len(parts)-1]
}

// Offer is whatever the user is currently buying: a whole plot or a sub-plot.
type Offer struct {
	Key         string
	Title       string
	Location    string
	Price       float64
	TokenAmount float64
}

// Remaining is the amount due after the token payment.
func (o Offer) Remaining() float64 {
	return o.Price - o.TokenAmount
}

func (p Plot) Offer() Offer {
	return Offer{Key: p.ID, Title: p.Title, Location: p.Location, Price: p.Price, TokenAmount: p.TokenAmount}
}

func (s SubPlot) Offer() Offer {
	return Offer{Key: s.ID, Title: s.Title, Location: s.Location, Price: s.Price, TokenAmount: s.TokenAmount}
}

// SubPlot looks up a raw sub-plot record by id.
func (p Plot) SubPlot(id string) (SubPlotRecord, bool) {
	for _, sp := range p.SubPlots {
		if sp.ID == id {
			return sp, true
		}
	}
	return SubPlotRecord{}, false
}

// Status is the booking lifecycle marker of a plot or sub-plot.
type Status string

const (
	StatusUnset    Status = ""
	StatusBooked   Status = "booked"
	StatusReserved Status = "reserved"
)

// ParseStatus accepts the catalogue spellings; "available" and "" both mean unset.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "available", "unset":
		return StatusUnset, nil
	case "booked":
		return StatusBooked, nil
	case "reserved":
		return StatusReserved, nil
	default:
		return StatusUnset, fmt.Errorf("unknown plot status %q", s)
	}
}

// Taken reports whether the plot can no longer be chosen.
func (s Status) Taken() bool {
	return s == StatusBooked || s == StatusReserved
}

func (s Status) Label() string {
	switch s {
	case StatusBooked:
		return "BOOKED FOR VISIT"
	case StatusReserved:
		return "RESERVED"
	default:
		return "AVAILABLE"
	}
}
