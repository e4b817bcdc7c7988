package passes

import (
	"math"
	"testing"
	"time"

	"github.com/star/uptimeplot/internal/sampler"
	"github.com/star/uptimeplot/internal/transform"
)

var mizusawa = transform.ObserverFromECEF(-3857244.97, 3108782.92, 4003899.16)

func request(t *testing.T, eq transform.Equatorial, minEl float64) Request {
	t.Helper()
	grid := sampler.NewGrid(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	series, err := sampler.New(transform.MeeusResolver{}).Sample(eq, grid, mizusawa)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	return Request{Target: eq, Observer: mizusawa, Grid: grid, UTC: series.UTC, MinElevation: minEl}
}

func TestWindows(t *testing.T) {
	tests := []struct {
		name    string
		target  transform.Equatorial
		minEl   float64
		windows int // -1 for "at least one"
	}{
		{"circumpolar", transform.Equatorial{RADeg: 37.95, DecDeg: 89.26}, 0, 1},
		{"never rises", transform.Equatorial{RADeg: 100, DecDeg: -80}, 0, 0},
		{"below mask", transform.Equatorial{RADeg: 266.4168, DecDeg: -29.0078}, 30, 0},
		{"rises and sets", transform.Equatorial{RADeg: 266.4168, DecDeg: -29.0078}, 0, -1},
	}

	p := NewPredictor(transform.MeeusResolver{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := request(t, tt.target, tt.minEl)
			got := p.Windows(req)
			if tt.windows >= 0 && len(got) != tt.windows {
				t.Fatalf("got %d windows, want %d", len(got), tt.windows)
			}
			if tt.windows < 0 && len(got) == 0 {
				t.Fatal("expected at least one window")
			}
		})
	}
}

func TestWindows_Circumpolar(t *testing.T) {
	req := request(t, transform.Equatorial{RADeg: 37.95, DecDeg: 89.26}, 0)
	w := NewPredictor(transform.MeeusResolver{}).Windows(req)[0]

	if !w.OpenStart || !w.OpenEnd {
		t.Errorf("window should be open at both ends: %+v", w)
	}
	if w.Duration != 24*time.Hour {
		t.Errorf("Duration = %v, want 24h", w.Duration)
	}
}

func TestWindows_Edges(t *testing.T) {
	req := request(t, transform.Equatorial{RADeg: 266.4168, DecDeg: -29.0078}, 5)
	r := transform.MeeusResolver{}
	windows := NewPredictor(r).Windows(req)

	for i, w := range windows {
		if !w.StartTime.Before(w.EndTime) {
			t.Errorf("window %d: start %v not before end %v", i, w.StartTime, w.EndTime)
		}
		if w.Duration != w.EndTime.Sub(w.StartTime) {
			t.Errorf("window %d: Duration %v does not match edges", i, w.Duration)
		}
		if w.MaxElevationTime.Before(w.StartTime) || w.MaxElevationTime.After(w.EndTime) {
			t.Errorf("window %d: peak %v outside window", i, w.MaxElevationTime)
		}
		if !w.OpenStart {
			el := r.Horizontal(req.Target, w.StartTime, mizusawa).ElevationDeg
			if math.Abs(el-5) > 0.01 {
				t.Errorf("window %d: elevation at start = %.4f, want 5", i, el)
			}
		}
		if !w.OpenEnd {
			el := r.Horizontal(req.Target, w.EndTime, mizusawa).ElevationDeg
			if math.Abs(el-5) > 0.01 {
				t.Errorf("window %d: elevation at end = %.4f, want 5", i, el)
			}
		}

		// No sample inside the window may be higher than the reported peak.
		for j, s := range req.UTC {
			tm := req.Grid.Times[j]
			if tm.Before(w.StartTime) || tm.After(w.EndTime) {
				continue
			}
			if s.Elevation > w.MaxElevation+1e-9 {
				t.Errorf("window %d: sample %d at %.3f deg above peak %.3f", i, j, s.Elevation, w.MaxElevation)
			}
		}
	}
}

func TestWindows_PeakElevation(t *testing.T) {
	dec := -29.0078
	req := request(t, transform.Equatorial{RADeg: 266.4168, DecDeg: dec}, 0)
	windows := NewPredictor(transform.MeeusResolver{}).Windows(req)

	best := 0.0
	for _, w := range windows {
		best = math.Max(best, w.MaxElevation)
	}
	// Culmination altitude is 90 - |lat - dec|, less a little for precession.
	lat := mizusawa.LatRad * 180 / math.Pi
	want := 90 - math.Abs(lat-dec)
	if math.Abs(best-want) > 0.3 {
		t.Errorf("peak elevation = %.3f, want about %.3f", best, want)
	}
}

func TestRiseTransitSet(t *testing.T) {
	tests := []struct {
		name   string
		target transform.Equatorial
		want   Visibility
	}{
		{"circumpolar", transform.Equatorial{RADeg: 37.95, DecDeg: 89.26}, AlwaysUp},
		{"never rises", transform.Equatorial{RADeg: 100, DecDeg: -80}, NeverUp},
		{"rises and sets", transform.Equatorial{RADeg: 266.4168, DecDeg: -29.0078}, RisesAndSets},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := RiseTransitSet(request(t, tt.target, 0))
			if ev.Visibility != tt.want {
				t.Fatalf("Visibility = %q, want %q", ev.Visibility, tt.want)
			}
			if tt.want != RisesAndSets {
				if !ev.Rise.IsZero() || !ev.Set.IsZero() {
					t.Errorf("Rise/Set should be zero: %+v", ev)
				}
			}
		})
	}
}

func TestRiseTransitSet_AgreesWithResolver(t *testing.T) {
	req := request(t, transform.Equatorial{RADeg: 266.4168, DecDeg: -29.0078}, 0)
	ev := RiseTransitSet(req)
	r := transform.MeeusResolver{}

	for name, tm := range map[string]time.Time{"rise": ev.Rise, "set": ev.Set} {
		el := r.Horizontal(req.Target, tm, mizusawa).ElevationDeg
		if math.Abs(el) > 1 {
			t.Errorf("%s at %v: elevation %.3f, want about 0", name, tm, el)
		}
	}

	transit := r.Horizontal(req.Target, ev.Transit, mizusawa)
	before := r.Horizontal(req.Target, ev.Transit.Add(-10*time.Minute), mizusawa)
	after := r.Horizontal(req.Target, ev.Transit.Add(10*time.Minute), mizusawa)
	if transit.ElevationDeg < before.ElevationDeg || transit.ElevationDeg < after.ElevationDeg {
		t.Errorf("transit at %v is not a local maximum: %.3f vs %.3f/%.3f",
			ev.Transit, transit.ElevationDeg, before.ElevationDeg, after.ElevationDeg)
	}
}

func TestRiseTransitSet_TransitMatchesPeak(t *testing.T) {
	tests := []struct {
		name   string
		target transform.Equatorial
	}{
		{"SgrA*", transform.Equatorial{RADeg: 266.4168, DecDeg: -29.0078}},
		{"3C273", transform.Equatorial{RADeg: 187.2779, DecDeg: 2.0524}},
		{"Vela", transform.Equatorial{RADeg: 128.8358, DecDeg: -45.1764}},
	}

	p := NewPredictor(transform.MeeusResolver{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := request(t, tt.target, 0)
			ev := RiseTransitSet(req)

			var peak time.Time
			for _, w := range p.Windows(req) {
				if w.OpenStart || w.OpenEnd {
					continue
				}
				if !ev.Transit.Before(w.StartTime) && !ev.Transit.After(w.EndTime) {
					peak = w.MaxElevationTime
				}
			}
			if peak.IsZero() {
				t.Fatalf("transit %v is not inside a closed window", ev.Transit)
			}
			// Catalogue coordinates would put the transit a minute or more
			// away from the plotted culmination.
			if d := ev.Transit.Sub(peak).Abs(); d > 30*time.Second {
				t.Errorf("transit %v is %v from the culmination at %v", ev.Transit, d, peak)
			}
		})
	}
}
