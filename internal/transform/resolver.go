// Package transform provides the coordinate machinery behind the uptime plots:
// time scales, WGS-84 geodesy for antenna positions, and resolvers that turn a
// fixed celestial position into horizon coordinates for an observer.
//
// Two resolvers are provided. MeeusResolver precesses catalogue (J2000)
// coordinates to the equinox of date and uses apparent sidereal time from
// github.com/soniakeys/meeus. VectorResolver rotates the catalogue direction
// through IAU-82 GMST into the topocentric SEZ frame and ignores precession,
// nutation and polar motion, which costs a few tenths of a degree over a few
// decades from J2000.
//
// Reference: Meeus, "Astronomical Algorithms", Ch. 12, 13, 21, 25;
// Vallado, "Fundamentals of Astrodynamics and Applications", Ch. 3-4.
package transform

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/coord"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/precess"
	"github.com/soniakeys/meeus/v3/sidereal"
	"github.com/soniakeys/meeus/v3/solar"
	"github.com/soniakeys/unit"
)

// ErrUnknownResolver is returned by ResolverByName for unsupported names.
var ErrUnknownResolver = errors.New("unknown resolver")

// Equatorial is a catalogue position in decimal degrees, equinox J2000.
type Equatorial struct {
	RADeg  float64 // [0, 360)
	DecDeg float64 // [-90, 90]
}

// Horizontal is a direction in the observer's local horizon frame.
type Horizontal struct {
	AzimuthDeg   float64 // 0 = North, clockwise, [0, 360)
	ElevationDeg float64 // 0 = horizon, 90 = zenith
}

// Resolver resolves sky positions for an observer at an instant.
// Implementations must be pure: equal inputs give equal outputs.
type Resolver interface {
	// Horizontal returns the horizon coordinates of a fixed catalogue position.
	Horizontal(eq Equatorial, t time.Time, obs ObserverPosition) Horizontal
	// Sun returns the horizon coordinates of the Sun.
	Sun(t time.Time, obs ObserverPosition) Horizontal
	// LocalSiderealTime returns the local sidereal time in hours [0, 24).
	LocalSiderealTime(t time.Time, obs ObserverPosition) float64
}

// ResolverByName returns the resolver registered under name ("meeus" or "vector").
func ResolverByName(name string) (Resolver, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "meeus":
		return MeeusResolver{}, nil
	case "vector":
		return VectorResolver{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownResolver, name)
	}
}

// MeeusResolver resolves positions with apparent sidereal time and
// precession to the equinox of date.
type MeeusResolver struct{}

func (MeeusResolver) Horizontal(eq Equatorial, t time.Time, obs ObserverPosition) Horizontal {
	jd := julian.TimeToJD(t.UTC())
	α, δ := precessToDate(eq, jd)
	return eqToHorizontal(α, δ, jd, obs)
}

// OfDate precesses a J2000 position to the mean equinox of t.
func OfDate(eq Equatorial, t time.Time) (unit.RA, unit.Angle) {
	return precessToDate(eq, julian.TimeToJD(t.UTC()))
}

func precessToDate(eq Equatorial, jd float64) (unit.RA, unit.Angle) {
	from := &coord.Equatorial{RA: unit.RAFromDeg(eq.RADeg), Dec: unit.AngleFromDeg(eq.DecDeg)}
	to := precess.Position(from, &coord.Equatorial{}, 2000, base.JDEToJulianYear(jd), 0, 0)
	return to.RA, to.Dec
}

func (MeeusResolver) Sun(t time.Time, obs ObserverPosition) Horizontal {
	jd := julian.TimeToJD(t.UTC())
	α, δ := solar.ApparentEquatorial(jd)
	return eqToHorizontal(α, δ, jd, obs)
}

func (MeeusResolver) LocalSiderealTime(t time.Time, obs ObserverPosition) float64 {
	st := sidereal.Apparent(julian.TimeToJD(t.UTC()))
	return wrap(st.Hour()+obs.LonRad*12/math.Pi, 24)
}

// eqToHorizontal applies Meeus (13.5) and (13.6). Meeus counts longitude
// positive west and azimuth from the south, so both are flipped here.
func eqToHorizontal(α unit.RA, δ unit.Angle, jd float64, obs ObserverPosition) Horizontal {
	st := sidereal.Apparent(jd)
	A, h := coord.EqToHz(α, δ, unit.Angle(obs.LatRad), unit.Angle(-obs.LonRad), st)
	return Horizontal{
		AzimuthDeg:   normalizeDeg(A.Deg() + 180),
		ElevationDeg: h.Deg(),
	}
}

// VectorResolver resolves positions by rotating direction vectors with
// mean sidereal time only.
type VectorResolver struct{}

func (VectorResolver) Horizontal(eq Equatorial, t time.Time, obs ObserverPosition) Horizontal {
	return directionToHorizontal(eq.RADeg, eq.DecDeg, GMST(t), obs)
}

func (VectorResolver) Sun(t time.Time, obs ObserverPosition) Horizontal {
	α, δ := solar.ApparentEquatorial(JulianDate(t))
	return directionToHorizontal(α.Deg(), δ.Deg(), GMST(t), obs)
}

func (VectorResolver) LocalSiderealTime(t time.Time, obs ObserverPosition) float64 {
	return LocalMeanSiderealHours(t, obs.LonRad)
}

func directionToHorizontal(raDeg, decDeg, gmst float64, obs ObserverPosition) Horizontal {
	ecef := EquatorialToECEF(raDeg, decDeg, gmst)
	return obs.LookAngles(ecef[0], ecef[1], ecef[2])
}
