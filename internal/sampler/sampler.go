// Package sampler samples the horizon track of a fixed celestial position
// over one observation day.
package sampler

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/star/uptimeplot/internal/transform"
)

// ErrInvalidCoordinate is returned for right ascensions outside [0, 360),
// declinations outside [-90, 90] or non-finite values.
var ErrInvalidCoordinate = errors.New("invalid celestial coordinate")

// Sample is one point of a track. Hour is elapsed UTC hours for UTC
// series and local sidereal hours for sidereal series.
type Sample struct {
	Hour      float64
	Azimuth   float64 // degrees, [0, 360)
	Elevation float64 // degrees
}

// Series is the track of one target over a Grid.
type Series struct {
	// UTC is in grid order.
	UTC []Sample
	// Sidereal holds the same az/el tagged with local sidereal time,
	// sorted ascending by hour.
	Sidereal []Sample
}

// Sampler produces series through a transform.Resolver.
type Sampler struct {
	resolver transform.Resolver
}

// New creates a Sampler backed by r.
func New(r transform.Resolver) *Sampler {
	return &Sampler{resolver: r}
}

// Sample resolves eq at every instant of g for observer obs.
func (s *Sampler) Sample(eq transform.Equatorial, g Grid, obs transform.ObserverPosition) (Series, error) {
	if err := validate(eq); err != nil {
		return Series{}, err
	}

	utc := make([]Sample, g.Len())
	sidereal := make([]Sample, g.Len())
	for i, t := range g.Times {
		hz := s.resolver.Horizontal(eq, t, obs)
		utc[i] = Sample{Hour: g.Hours[i], Azimuth: hz.AzimuthDeg, Elevation: hz.ElevationDeg}
		sidereal[i] = Sample{Hour: s.resolver.LocalSiderealTime(t, obs), Azimuth: hz.AzimuthDeg, Elevation: hz.ElevationDeg}
	}
	SortSidereal(sidereal)

	return Series{UTC: utc, Sidereal: sidereal}, nil
}

// Sun resolves the Sun at every instant of g for observer obs.
func (s *Sampler) Sun(g Grid, obs transform.ObserverPosition) []Sample {
	out := make([]Sample, g.Len())
	for i, t := range g.Times {
		hz := s.resolver.Sun(t, obs)
		out[i] = Sample{Hour: g.Hours[i], Azimuth: hz.AzimuthDeg, Elevation: hz.ElevationDeg}
	}
	return out
}

// SortSidereal sorts samples by hour, then azimuth, then elevation.
// Local sidereal time wraps once during a UTC day, so the raw order jumps
// back to zero part way through.
func SortSidereal(samples []Sample) {
	slices.SortFunc(samples, func(a, b Sample) int {
		if c := cmp.Compare(a.Hour, b.Hour); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Azimuth, b.Azimuth); c != 0 {
			return c
		}
		return cmp.Compare(a.Elevation, b.Elevation)
	})
}

func validate(eq transform.Equatorial) error {
	switch {
	case math.IsNaN(eq.RADeg) || math.IsInf(eq.RADeg, 0) || eq.RADeg < 0 || eq.RADeg >= 360:
		return fmt.Errorf("%w: right ascension %v deg", ErrInvalidCoordinate, eq.RADeg)
	case math.IsNaN(eq.DecDeg) || eq.DecDeg < -90 || eq.DecDeg > 90:
		return fmt.Errorf("%w: declination %v deg", ErrInvalidCoordinate, eq.DecDeg)
	}
	return nil
}
