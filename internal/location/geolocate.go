package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Geolocation failure reasons.
const (
	ReasonDenied      = "denied"
	ReasonTimeout     = "timeout"
	ReasonUnavailable = "unavailable"
	ReasonUnsupported = "unsupported"
	ReasonNoMatch     = "nomatch"
)

// GeolocateError is a typed failure from the startup location lookup.
type GeolocateError struct {
	Reason string
	Err    error
}

func (e *GeolocateError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("geolocation failed (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("geolocation failed (%s)", e.Reason)
}

func (e *GeolocateError) Unwrap() error { return e.Err }

// Place is a resolved device location.
type Place struct {
	City   string `json:"city"`
	Region string `json:"regionName"`
}

// Geolocator is a best-effort client for an IP geolocation service.
// It is consulted once at startup; per-query resolution never touches
// the network.
type Geolocator struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// NewGeolocator creates a new geolocation client.
func NewGeolocator(baseURL string, timeout time.Duration) *Geolocator {
	return &Geolocator{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// Locate looks up the device's city and region. Every failure is
// reported as a *GeolocateError with a stable reason.
func (g *Geolocator) Locate(ctx context.Context) (*Place, error) {
	if g.baseURL == "" {
		return nil, &GeolocateError{Reason: ReasonUnsupported}
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/json", g.baseURL)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, &GeolocateError{Reason: ReasonUnavailable, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &GeolocateError{Reason: ReasonTimeout, Err: err}
		}
		return nil, &GeolocateError{Reason: ReasonUnavailable, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests {
		return nil, &GeolocateError{Reason: ReasonDenied, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &GeolocateError{Reason: ReasonUnavailable, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var place Place
	if err := json.NewDecoder(resp.Body).Decode(&place); err != nil {
		return nil, &GeolocateError{Reason: ReasonUnavailable, Err: err}
	}

	if place.City == "" && place.Region == "" {
		return nil, &GeolocateError{Reason: ReasonNoMatch}
	}

	return &place, nil
}
