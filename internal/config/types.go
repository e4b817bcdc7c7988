package config

import (
	"math"
	"slices"
	"time"

	"github.com/soniakeys/unit"

	"github.com/star/uptimeplot/internal/transform"
)

// Antenna is an observing site given by its geocentric position.
type Antenna struct {
	Name    string
	X, Y, Z float64 // meters, ECEF
}

// Observer returns the antenna as a transform observer.
func (a Antenna) Observer() transform.ObserverPosition {
	return transform.ObserverFromECEF(a.X, a.Y, a.Z)
}

// Target is a celestial source with J2000 coordinates in sexagesimal fields.
type Target struct {
	Name  string
	Label string // second column of the target line, not used in calculations

	RAH, RAM, RAS float64

	// DecNeg is taken from the text of the degree field so "-00" is negative.
	DecNeg           bool
	DecD, DecM, DecS float64
}

// RA returns the right ascension.
func (t Target) RA() unit.RA {
	return unit.RAFromHour(t.RAH + t.RAM/60 + t.RAS/3600)
}

// Dec returns the declination.
func (t Target) Dec() unit.Angle {
	d := unit.AngleFromDeg(math.Abs(t.DecD) + t.DecM/60 + t.DecS/3600)
	if t.DecNeg {
		return -d
	}
	return d
}

// Equatorial returns the target position in decimal degrees.
func (t Target) Equatorial() transform.Equatorial {
	return transform.Equatorial{RADeg: t.RA().Deg(), DecDeg: t.Dec().Deg()}
}

// SkippedLine records a line the parser ignored.
type SkippedLine struct {
	Line    int
	Section string
	Reason  string
}

// Config is the parsed configuration file. It is immutable; accessors
// return copies.
type Config struct {
	antennas []Antenna
	dates    []time.Time
	targets  []Target
	skipped  []SkippedLine
}

// New builds a Config from already parsed collections. Every collection
// must be non-empty.
func New(antennas []Antenna, dates []time.Time, targets []Target) (*Config, error) {
	switch {
	case len(antennas) == 0:
		return nil, ErrNoAntennas
	case len(dates) == 0:
		return nil, ErrNoDates
	case len(targets) == 0:
		return nil, ErrNoTargets
	}
	return &Config{
		antennas: slices.Clone(antennas),
		dates:    slices.Clone(dates),
		targets:  slices.Clone(targets),
	}, nil
}

// Antennas returns the antennas in file order.
func (c *Config) Antennas() []Antenna { return slices.Clone(c.antennas) }

// Dates returns the observation dates (00:00 UTC) in file order.
func (c *Config) Dates() []time.Time { return slices.Clone(c.dates) }

// Targets returns the targets in file order.
func (c *Config) Targets() []Target { return slices.Clone(c.targets) }

// Skipped returns the lines the parser ignored inside a section.
func (c *Config) Skipped() []SkippedLine { return slices.Clone(c.skipped) }
