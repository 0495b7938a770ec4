package plots

import (
	_ "embed"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/agnivade/levenshtein"
)

//go:embed data/catalog.toml
var defaultCatalog string

type catalogFile struct {
	Locations []locationRow `toml:"locations"`
	Plots     []plotRow     `toml:"plots"`
}

type locationRow struct {
	ID                string    `toml:"id"`
	Name              string    `toml:"name"`
	State             string    `toml:"state"`
	Coordinates       []float64 `toml:"coordinates"`
	PlotsAvailable    int       `toml:"plots_available"`
	ProjectsAvailable int       `toml:"projects_available"`
	Areas             []string  `toml:"areas"`
}

type plotRow struct {
	ID          string       `toml:"id"`
	Title       string       `toml:"title"`
	Location    string       `toml:"location"`
	Area        string       `toml:"area"`
	Price       float64      `toml:"price"`
	TokenAmount float64      `toml:"token_amount"`
	Amenities   []string     `toml:"amenities"`
	Coordinates []float64    `toml:"coordinates"`
	Images      []string     `toml:"images"`
	Description string       `toml:"description"`
	SubPlots    []subPlotRow `toml:"sub_plots"`
}

type subPlotRow struct {
	ID          string    `toml:"id"`
	Measurement string    `toml:"measurement"`
	Coordinates []float64 `toml:"coordinates"`
	Status      string    `toml:"status"`
}

// Catalog holds the locations and plots offered by the app.
type Catalog struct {
	locations []Location
	plots     []Plot
	byID      map[string]int
	statuses  map[string]Status
}

// Load reads the catalogue at path, or the embedded default when path is empty.
func Load(path string) (*Catalog, error) {
	var f catalogFile
	if strings.TrimSpace(path) == "" {
		if _, err := toml.Decode(defaultCatalog, &f); err != nil {
			return nil, fmt.Errorf("decode embedded catalog: %w", err)
		}
	} else {
		if _, err := toml.DecodeFile(path, &f); err != nil {
			return nil, fmt.Errorf("decode catalog %s: %w", path, err)
		}
	}
	return build(f)
}

// Parse decodes a catalogue from TOML text.
func Parse(data string) (*Catalog, error) {
	var f catalogFile
	if _, err := toml.Decode(data, &f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return build(f)
}

func build(f catalogFile) (*Catalog, error) {
	c := &Catalog{byID: map[string]int{}, statuses: map[string]Status{}}
	for _, row := range f.Locations {
		center, err := toLatLng(row.Coordinates)
		if err != nil {
			return nil, fmt.Errorf("location %s: %w", row.ID, err)
		}
		c.locations = append(c.locations, Location{
			ID:                row.ID,
			Name:              row.Name,
			State:             row.State,
			Center:            center,
			PlotsAvailable:    row.PlotsAvailable,
			ProjectsAvailable: row.ProjectsAvailable,
			Areas:             row.Areas,
		})
	}
	seen := map[string]struct{}{}
	for _, row := range f.Plots {
		if row.ID == "" {
			return nil, fmt.Errorf("plot %q: missing id", row.Title)
		}
		if _, dup := seen[row.ID]; dup {
			return nil, fmt.Errorf("plot %s: duplicate id", row.ID)
		}
		seen[row.ID] = struct{}{}
		if row.Price <= 0 {
			return nil, fmt.Errorf("plot %s: price must be positive", row.ID)
		}
		if row.TokenAmount < 0 || row.TokenAmount > row.Price {
			return nil, fmt.Errorf("plot %s: token amount out of range", row.ID)
		}
		coords, err := toLatLng(row.Coordinates)
		if err != nil {
			return nil, fmt.Errorf("plot %s: %w", row.ID, err)
		}
		p := Plot{
			ID:          row.ID,
			Title:       row.Title,
			Location:    row.Location,
			Area:        row.Area,
			Price:       row.Price,
			TokenAmount: row.TokenAmount,
			Amenities:   row.Amenities,
			Images:      row.Images,
			Description: row.Description,
			Coordinates: coords,
		}
		for _, sp := range row.SubPlots {
			if !strings.HasPrefix(sp.ID, row.ID+"-") {
				return nil, fmt.Errorf("plot %s: sub-plot %q must be prefixed with the plot id", row.ID, sp.ID)
			}
			if _, dup := seen[sp.ID]; dup {
				return nil, fmt.Errorf("sub-plot %s: duplicate id", sp.ID)
			}
			seen[sp.ID] = struct{}{}
			spCoords, err := toLatLng(sp.Coordinates)
			if err != nil {
				return nil, fmt.Errorf("sub-plot %s: %w", sp.ID, err)
			}
			status, err := ParseStatus(sp.Status)
			if err != nil {
				return nil, fmt.Errorf("sub-plot %s: %w", sp.ID, err)
			}
			if status != StatusUnset {
				c.statuses[sp.ID] = status
			}
			p.SubPlots = append(p.SubPlots, SubPlotRecord{ID: sp.ID, Measurement: sp.Measurement, Coordinates: spCoords})
		}
		c.byID[p.ID] = len(c.plots)
		c.plots = append(c.plots, p)
	}
	return c, nil
}

func toLatLng(v []float64) (LatLng, error) {
	if len(v) != 2 {
		return LatLng{}, fmt.Errorf("coordinates need [lat, lng], got %d values", len(v))
	}
	ll := LatLng{Lat: v[0], Lng: v[1]}
	if !ll.Valid() {
		return LatLng{}, fmt.Errorf("coordinates %v out of range", v)
	}
	return ll, nil
}

func (c *Catalog) Plots() []Plot { return c.plots }

func (c *Catalog) Locations() []Location { return c.locations }

// Plot returns the plot with the given id.
func (c *Catalog) Plot(id string) (Plot, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return Plot{}, false
	}
	return c.plots[idx], true
}

// Location returns the location with the given id.
func (c *Catalog) Location(id string) (Location, bool) {
	for _, l := range c.locations {
		if l.ID == id {
			return l, true
		}
	}
	return Location{}, false
}

// InitialStatuses returns a fresh copy of the seeded booked/reserved markers.
func (c *Catalog) InitialStatuses() map[string]Status {
	out := make(map[string]Status, len(c.statuses))
	for k, v := range c.statuses {
		out[k] = v
	}
	return out
}

// maxTypoDistance bounds the edit distance accepted by SearchLocations.
const maxTypoDistance = 2

// SearchLocations filters locations by name, state or area. Exact substring hits
// come first, then names within a small edit distance of the query.
func (c *Catalog) SearchLocations(query string) []Location {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return c.locations
	}
	type hit struct {
		loc  Location
		dist int
	}
	var hits []hit
	for _, l := range c.locations {
		if locationContains(l, q) {
			hits = append(hits, hit{loc: l, dist: -1})
			continue
		}
		best := levenshtein.ComputeDistance(q, strings.ToLower(l.Name))
		for _, a := range l.Areas {
			if d := levenshtein.ComputeDistance(q, strings.ToLower(a)); d < best {
				best = d
			}
		}
		if best <= maxTypoDistance {
			hits = append(hits, hit{loc: l, dist: best})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].dist < hits[j].dist })
	out := make([]Location, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.loc)
	}
	return out
}

func locationContains(l Location, q string) bool {
	if strings.Contains(strings.ToLower(l.Name), q) || strings.Contains(strings.ToLower(l.State), q) {
		return true
	}
	for _, a := range l.Areas {
		if strings.Contains(strings.ToLower(a), q) {
			return true
		}
	}
	return false
}

// PlotsNear returns all plots ordered by distance from center, nearest first.
func (c *Catalog) PlotsNear(center LatLng) []Plot {
	out := make([]Plot, len(c.plots))
	copy(out, c.plots)
	sort.SliceStable(out, func(i, j int) bool {
		return DistanceKm(center, out[i].Coordinates) < DistanceKm(center, out[j].Coordinates)
	})
	return out
}

const earthRadiusKm = 6371.0

// DistanceKm is the great-circle distance between a and b.
func DistanceKm(a, b LatLng) float64 {
	rad := math.Pi / 180
	dLat := (b.Lat - a.Lat) * rad
	dLng := (b.Lng - a.Lng) * rad
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*rad)*math.Cos(b.Lat*rad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}
