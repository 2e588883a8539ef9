package geo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

var (
	ErrUnavailable = errors.New("position unavailable")
)

// Locator produces a single position fix
type Locator interface {
	Locate(ctx context.Context) (Point, error)
}

// LocatorFunc adapts a function to the Locator interface
type LocatorFunc func(ctx context.Context) (Point, error)

func (f LocatorFunc) Locate(ctx context.Context) (Point, error) {
	return f(ctx)
}

// StaticLocator always reports the same point
type StaticLocator Point

func (s StaticLocator) Locate(ctx context.Context) (Point, error) {
	return Point(s), nil
}

// QueryLocator reads a client-reported fix from the lat and lng query parameters
type QueryLocator struct {
	Request *http.Request
}

// Locate parses the fix; a request carrying neither parameter is reported as unavailable
func (q QueryLocator) Locate(ctx context.Context) (Point, error) {
	if q.Request == nil {
		return Point{}, ErrUnavailable
	}

	query := q.Request.URL.Query()
	latStr := strings.TrimSpace(query.Get("lat"))
	lngStr := strings.TrimSpace(query.Get("lng"))
	if latStr == "" && lngStr == "" {
		return Point{}, ErrUnavailable
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return Point{}, fmt.Errorf("%w: latitude %q", ErrInvalidPosition, latStr)
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return Point{}, fmt.Errorf("%w: longitude %q", ErrInvalidPosition, lngStr)
	}

	p := Point{Lat: lat, Lng: lng}
	if err := p.Validate(); err != nil {
		return Point{}, err
	}
	return p, nil
}

// Fix is the outcome of a one-shot position request
type Fix struct {
	Point    Point  `json:"location"`
	Fallback bool   `json:"fallback"`
	Warning  string `json:"warning,omitempty"`
}

// Resolve requests a single fix from locator. Any failure, including a nil
// locator or a cancelled context, yields the fallback point with a warning.
// There is no retry.
func Resolve(ctx context.Context, locator Locator, fallback Point) Fix {
	if locator == nil {
		return Fix{Point: fallback, Fallback: true, Warning: "geolocation is not supported; using default location"}
	}

	p, err := locator.Locate(ctx)
	if err == nil {
		err = p.Validate()
	}
	if err != nil {
		warning := "unable to retrieve your location; using default location"
		if errors.Is(err, ErrUnavailable) {
			warning = "location not provided; using default location"
		}
		return Fix{Point: fallback, Fallback: true, Warning: warning}
	}

	return Fix{Point: p}
}
