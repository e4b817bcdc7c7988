// Package passes finds the intervals during which a target stands above an
// elevation mask, and its rise, transit and set times for a day.
package passes

import (
	"time"

	"github.com/soniakeys/meeus/v3/globe"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/rise"
	"github.com/soniakeys/meeus/v3/sidereal"
	"github.com/soniakeys/unit"
	"gonum.org/v1/gonum/floats"

	"github.com/star/uptimeplot/internal/sampler"
	"github.com/star/uptimeplot/internal/transform"
)

// Window is one interval during which a target is above the mask.
type Window struct {
	StartTime        time.Time     `yaml:"start_time"`
	MaxElevationTime time.Time     `yaml:"max_elevation_time"`
	EndTime          time.Time     `yaml:"end_time"`
	Duration         time.Duration `yaml:"duration"`
	MaxElevation     float64       `yaml:"max_elevation"`
	AzimuthAtMax     float64       `yaml:"azimuth_at_max"`
	StartAzimuth     float64       `yaml:"start_azimuth"`
	EndAzimuth       float64       `yaml:"end_azimuth"`
	// OpenStart and OpenEnd mark windows cut by the edges of the day.
	OpenStart bool `yaml:"open_start,omitempty"`
	OpenEnd   bool `yaml:"open_end,omitempty"`
}

// Visibility classifies a target's day.
type Visibility string

const (
	RisesAndSets Visibility = "rises and sets"
	AlwaysUp     Visibility = "always up"
	NeverUp      Visibility = "never up"
)

// Events holds the approximate rise, transit and set times of a day.
// Rise and Set are zero unless Visibility is RisesAndSets.
type Events struct {
	Visibility Visibility `yaml:"visibility"`
	Rise       time.Time  `yaml:"rise,omitempty"`
	Transit    time.Time  `yaml:"transit"`
	Set        time.Time  `yaml:"set,omitempty"`
}

// Request holds the parameters for one target on one day.
type Request struct {
	Target       transform.Equatorial
	Observer     transform.ObserverPosition
	Grid         sampler.Grid
	UTC          []sampler.Sample // the target's UTC series on Grid
	MinElevation float64          // degrees
}

const (
	fineStep     = time.Second // resolution of refined crossing times
	peakRefineIt = 40
)

// Predictor refines windows found on a sampled series with a resolver.
type Predictor struct {
	resolver transform.Resolver
}

// NewPredictor creates a Predictor backed by r.
func NewPredictor(r transform.Resolver) *Predictor {
	return &Predictor{resolver: r}
}

// Windows returns the above-mask windows of req in time order.
// The sampled series gives a coarse scan; each crossing is then bisected
// down to fineStep with the resolver.
func (p *Predictor) Windows(req Request) []Window {
	var (
		windows []Window
		cur     *Window
		peakIdx int
	)

	for i, s := range req.UTC {
		above := s.Elevation >= req.MinElevation
		switch {
		case above && cur == nil:
			cur = &Window{OpenStart: i == 0}
			if i == 0 {
				cur.StartTime = req.Grid.Times[0]
			} else {
				cur.StartTime = p.crossing(req, req.Grid.Times[i-1], req.Grid.Times[i], true)
			}
			cur.StartAzimuth = p.elevation(req, cur.StartTime).AzimuthDeg
			peakIdx = i
		case above:
			if s.Elevation > req.UTC[peakIdx].Elevation {
				peakIdx = i
			}
		case cur != nil:
			cur.EndTime = p.crossing(req, req.Grid.Times[i-1], req.Grid.Times[i], false)
			cur.EndAzimuth = p.elevation(req, cur.EndTime).AzimuthDeg
			windows = append(windows, p.close(req, cur, peakIdx))
			cur = nil
		}
	}
	if cur != nil {
		last := len(req.UTC) - 1
		cur.OpenEnd = true
		cur.EndTime = req.Grid.Times[last]
		cur.EndAzimuth = req.UTC[last].Azimuth
		windows = append(windows, p.close(req, cur, peakIdx))
	}
	return windows
}

func (p *Predictor) close(req Request, w *Window, peakIdx int) Window {
	w.MaxElevationTime, w.MaxElevation, w.AzimuthAtMax = p.refinePeak(req, peakIdx, w.StartTime, w.EndTime)
	w.Duration = w.EndTime.Sub(w.StartTime)
	return *w
}

// crossing bisects (below, above) or (above, below) down to fineStep.
// It returns the first instant above the mask for a rising edge and the
// last instant above it for a setting edge.
func (p *Predictor) crossing(req Request, t0, t1 time.Time, rising bool) time.Time {
	for t1.Sub(t0) > fineStep {
		mid := t0.Add(t1.Sub(t0) / 2)
		above := p.elevation(req, mid).ElevationDeg >= req.MinElevation
		if above == rising {
			t1 = mid
		} else {
			t0 = mid
		}
	}
	if rising {
		return t1
	}
	return t0
}

// refinePeak runs a ternary search around the highest sample, clamped to
// the window.
func (p *Predictor) refinePeak(req Request, idx int, start, end time.Time) (time.Time, float64, float64) {
	lo := req.Grid.Times[max(idx-1, 0)]
	hi := req.Grid.Times[min(idx+1, len(req.Grid.Times)-1)]
	if lo.Before(start) {
		lo = start
	}
	if hi.After(end) {
		hi = end
	}

	for i := 0; i < peakRefineIt && hi.Sub(lo) > fineStep; i++ {
		third := hi.Sub(lo) / 3
		m1, m2 := lo.Add(third), hi.Add(-third)
		if p.elevation(req, m1).ElevationDeg < p.elevation(req, m2).ElevationDeg {
			lo = m1
		} else {
			hi = m2
		}
	}

	best := lo.Add(hi.Sub(lo) / 2)
	hz := p.elevation(req, best)
	// The refined point never reports lower than the sample it started from.
	if s := req.UTC[idx]; s.Elevation > hz.ElevationDeg {
		return req.Grid.Times[idx], s.Elevation, s.Azimuth
	}
	return best, hz.ElevationDeg, hz.AzimuthDeg
}

func (p *Predictor) elevation(req Request, t time.Time) transform.Horizontal {
	return p.resolver.Horizontal(req.Target, t, req.Observer)
}

// RiseTransitSet returns the approximate rise, transit and set times on
// the grid's date using Meeus ch. 15, with the request's mask as the
// standard altitude.
func RiseTransitSet(req Request) Events {
	day := req.Grid.Date
	th0 := sidereal.Apparent0UT(julian.TimeToJD(day))
	// meeus counts longitude positive west.
	pos := globe.Coord{Lat: unit.Angle(req.Observer.LatRad), Lon: unit.Angle(-req.Observer.LonRad)}
	h0 := unit.AngleFromDeg(req.MinElevation)

	// Noon of the day is close enough as the equinox for the whole day.
	α, δ := transform.OfDate(req.Target, day.Add(12*time.Hour))
	tRise, tTransit, tSet, err := rise.ApproxTimes(pos, h0, th0, α, δ)
	if err != nil {
		// Circumpolar either way; the upper transit is still defined.
		tTransit = unit.TimeFromRad(α.Rad()+pos.Lon.Rad()) - th0
	}

	ev := Events{Transit: day.Add(secondsOfDay(tTransit))}
	if err != nil {
		elevations := make([]float64, len(req.UTC))
		for i, s := range req.UTC {
			elevations[i] = s.Elevation
		}
		ev.Visibility = NeverUp
		if len(elevations) > 0 && floats.Min(elevations) >= req.MinElevation {
			ev.Visibility = AlwaysUp
		}
		return ev
	}

	ev.Visibility = RisesAndSets
	ev.Rise = day.Add(secondsOfDay(tRise))
	ev.Set = day.Add(secondsOfDay(tSet))
	return ev
}

// siderealRate is sidereal seconds per UT second.
const siderealRate = 1.00273790935

// secondsOfDay turns an ApproxTimes result, which counts sidereal time
// from 0h UT, into elapsed UT.
func secondsOfDay(t unit.Time) time.Duration {
	return time.Duration(t.Mod1().Sec() / siderealRate * float64(time.Second)).Round(time.Second)
}
