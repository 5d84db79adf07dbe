// Package location resolves which supported region a query or address
// belongs to. MiniQuest serves two metro areas; everything else is
// rejected with guidance rather than silently searched.
package location

import (
	"fmt"
	"strings"
)

// Region is one of the supported service areas.
type Region int

const (
	RegionBoston Region = iota
	RegionBayArea
)

// Label returns the canonical display location for the region.
func (r Region) Label() string {
	switch r {
	case RegionBayArea:
		return "San Francisco Bay Area, CA"
	default:
		return "Boston, MA"
	}
}

func (r Region) String() string {
	switch r {
	case RegionBayArea:
		return "bay_area"
	default:
		return "boston"
	}
}

// State is the current working location.
type State struct {
	DisplayLocation string
	Region          Region
	ManualOverride  bool
}

// ValidationError is returned when a manual address matches neither
// supported region.
type ValidationError struct {
	Address string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("address %q is outside the supported regions (%s and %s)",
		e.Address, RegionBoston.Label(), RegionBayArea.Label())
}

// Resolver tracks the working location and detects region switches from
// query text. A manual override freezes the state until it is cleared.
type Resolver struct {
	state State

	bostonKeywords  []string
	bayAreaKeywords []string

	bostonAddresses  []string
	bayAreaAddresses []string
}

// NewResolver creates a resolver starting in the given region.
func NewResolver(initial Region) *Resolver {
	return &Resolver{
		state: State{
			DisplayLocation: initial.Label(),
			Region:          initial,
		},
		bostonKeywords: []string{
			"boston", "cambridge", "somerville", "brookline",
			"back bay", "beacon hill", "north end", "south end",
			"fenway", "seaport", "charlestown", "harvard", "mit",
			"jamaica plain", "allston",
		},
		bayAreaKeywords: []string{
			"san francisco", "bay area", "oakland", "berkeley",
			"palo alto", "san jose", "mountain view", "sausalito",
			"mission district", "soma", "golden gate", "fisherman's wharf",
			"north beach", "haight", "presidio",
		},
		bostonAddresses: []string{
			"boston", "cambridge", "somerville", "brookline", "quincy",
			"newton", "medford", "charlestown", "dorchester",
		},
		bayAreaAddresses: []string{
			"san francisco", "oakland", "berkeley", "palo alto",
			"san jose", "mountain view", "daly city", "sausalito",
			"san mateo", "fremont",
		},
	}
}

// State returns the current working location.
func (r *Resolver) State() State {
	return r.state
}

// DetectRegion scans the query for region keywords. The region switches
// only when keywords from exactly one region are present; ambiguous or
// keyword-free queries keep the active region.
func (r *Resolver) DetectRegion(query string) Region {
	q := strings.ToLower(query)

	boston := countMatches(q, r.bostonKeywords)
	bayArea := countMatches(q, r.bayAreaKeywords)

	switch {
	case boston > 0 && bayArea == 0:
		return RegionBoston
	case bayArea > 0 && boston == 0:
		return RegionBayArea
	default:
		return r.state.Region
	}
}

// ApplyRegion moves the working location to the region's canonical
// label. It is a no-op while a manual override is active.
func (r *Resolver) ApplyRegion(region Region) State {
	if r.state.ManualOverride {
		return r.state
	}
	r.state.Region = region
	r.state.DisplayLocation = region.Label()
	return r.state
}

// Resolve detects the region for the query and applies it.
func (r *Resolver) Resolve(query string) State {
	return r.ApplyRegion(r.DetectRegion(query))
}

// ValidateManualAddress checks a user-entered address against the
// accepted place names of both regions, with a ", MA" / ", CA" state
// suffix accepted as a fallback hint for towns not on the city lists.
// Matching is case-insensitive on the trimmed text.
func (r *Resolver) ValidateManualAddress(text string) (Region, error) {
	addr := strings.ToLower(strings.TrimSpace(text))
	if addr == "" {
		return 0, &ValidationError{Address: strings.TrimSpace(text)}
	}

	if countMatches(addr, r.bostonAddresses) > 0 || hasStateHint(addr, "ma") {
		return RegionBoston, nil
	}
	if countMatches(addr, r.bayAreaAddresses) > 0 || hasStateHint(addr, "ca") {
		return RegionBayArea, nil
	}
	return 0, &ValidationError{Address: strings.TrimSpace(text)}
}

// hasStateHint reports whether the lowercased address carries the state
// abbreviation as a ", xx" component, with or without a trailing zip.
func hasStateHint(addr, state string) bool {
	return strings.HasSuffix(addr, ", "+state) || strings.Contains(addr, ", "+state+" ")
}

// SetManualAddress validates the address and, on success, freezes the
// working location to the raw text until ResetToAutoDetect.
func (r *Resolver) SetManualAddress(text string) (State, error) {
	region, err := r.ValidateManualAddress(text)
	if err != nil {
		return r.state, err
	}
	r.state = State{
		DisplayLocation: strings.TrimSpace(text),
		Region:          region,
		ManualOverride:  true,
	}
	return r.state, nil
}

// ResetToAutoDetect clears the manual override and restores the
// canonical label of the last detected region.
func (r *Resolver) ResetToAutoDetect() State {
	r.state = State{
		DisplayLocation: r.state.Region.Label(),
		Region:          r.state.Region,
	}
	return r.state
}

// MatchRegion reports which region a place name belongs to, for mapping
// geolocation results onto the service areas.
func (r *Resolver) MatchRegion(place string) (Region, bool) {
	p := strings.ToLower(place)
	if countMatches(p, r.bostonAddresses) > 0 {
		return RegionBoston, true
	}
	if countMatches(p, r.bayAreaAddresses) > 0 {
		return RegionBayArea, true
	}
	return 0, false
}

// countMatches counts how many patterns appear in the text.
func countMatches(text string, patterns []string) int {
	count := 0
	for _, pattern := range patterns {
		if strings.Contains(text, pattern) {
			count++
		}
	}
	return count
}
