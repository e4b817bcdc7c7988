package transform

import (
	"errors"
	"math"
	"testing"
	"time"
)

// Mizusawa VERA antenna, geocentric meters.
var mizusawa = ObserverFromECEF(-3857244.97, 3108782.92, 4003899.16)

func resolvers() map[string]Resolver {
	return map[string]Resolver{
		"meeus":  MeeusResolver{},
		"vector": VectorResolver{},
	}
}

// separationDeg returns the great-circle angle between two horizon directions.
func separationDeg(a, b Horizontal) float64 {
	const d2r = math.Pi / 180
	sa, ca := math.Sincos(a.ElevationDeg * d2r)
	sb, cb := math.Sincos(b.ElevationDeg * d2r)
	c := sa*sb + ca*cb*math.Cos((a.AzimuthDeg-b.AzimuthDeg)*d2r)
	return math.Acos(math.Max(-1, math.Min(1, c))) / d2r
}

func TestResolver_Zenith(t *testing.T) {
	// At J2000.0 the catalogue equinox is the equinox of date, so a target
	// whose RA equals the local sidereal time and whose Dec equals the
	// geodetic latitude sits at the zenith.
	at := time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)
	latDeg := mizusawa.LatRad * 180 / math.Pi

	for name, r := range resolvers() {
		t.Run(name, func(t *testing.T) {
			eq := Equatorial{RADeg: r.LocalSiderealTime(at, mizusawa) * 15, DecDeg: latDeg}
			hz := r.Horizontal(eq, at, mizusawa)
			if math.Abs(hz.ElevationDeg-90) > 0.05 {
				t.Errorf("zenith elevation = %.4f deg, want ~90", hz.ElevationDeg)
			}
		})
	}
}

func TestResolver_Ranges(t *testing.T) {
	targets := []Equatorial{
		{RADeg: 83.633, DecDeg: 22.0145},   // Crab
		{RADeg: 187.2779, DecDeg: 2.0524},  // 3C273
		{RADeg: 0, DecDeg: -90},            // south pole
		{RADeg: 359.999, DecDeg: 89.264},   // Polaris-ish
		{RADeg: 266.4168, DecDeg: -29.0078}, // Sgr A*
	}
	start := time.Date(2023, 7, 8, 0, 0, 0, 0, time.UTC)

	for name, r := range resolvers() {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 48; i++ {
				at := start.Add(time.Duration(i) * 30 * time.Minute)
				for _, eq := range targets {
					hz := r.Horizontal(eq, at, mizusawa)
					if hz.AzimuthDeg < 0 || hz.AzimuthDeg >= 360 {
						t.Fatalf("%v at %v: azimuth %.6f out of [0, 360)", eq, at, hz.AzimuthDeg)
					}
					if hz.ElevationDeg < -90 || hz.ElevationDeg > 90 {
						t.Fatalf("%v at %v: elevation %.6f out of [-90, 90]", eq, at, hz.ElevationDeg)
					}
				}
				lst := r.LocalSiderealTime(at, mizusawa)
				if lst < 0 || lst >= 24 {
					t.Fatalf("LST %.6f out of [0, 24)", lst)
				}
			}
		})
	}
}

func TestResolver_CelestialPoleElevation(t *testing.T) {
	// The north celestial pole stands at the observer's latitude all day.
	latDeg := mizusawa.LatRad * 180 / math.Pi
	at := time.Date(2000, 1, 1, 3, 0, 0, 0, time.UTC)

	for name, r := range resolvers() {
		t.Run(name, func(t *testing.T) {
			hz := r.Horizontal(Equatorial{RADeg: 0, DecDeg: 90}, at, mizusawa)
			if math.Abs(hz.ElevationDeg-latDeg) > 0.05 {
				t.Errorf("pole elevation = %.4f, want %.4f", hz.ElevationDeg, latDeg)
			}
			if hz.AzimuthDeg > 0.5 && hz.AzimuthDeg < 359.5 {
				t.Errorf("pole azimuth = %.4f, want ~0", hz.AzimuthDeg)
			}
		})
	}
}

func TestResolver_Agreement(t *testing.T) {
	eq := Equatorial{RADeg: 83.633, DecDeg: 22.0145}
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 24; i++ {
		at := start.Add(time.Duration(i) * time.Hour)
		m := MeeusResolver{}.Horizontal(eq, at, mizusawa)
		v := VectorResolver{}.Horizontal(eq, at, mizusawa)
		// Precession since J2000 accounts for roughly a third of a degree.
		if sep := separationDeg(m, v); sep > 0.6 {
			t.Errorf("%v: meeus %+v vs vector %+v differ by %.3f deg", at, m, v, sep)
		}

		lm := MeeusResolver{}.LocalSiderealTime(at, mizusawa)
		lv := VectorResolver{}.LocalSiderealTime(at, mizusawa)
		diff := math.Abs(lm - lv)
		if diff > 12 {
			diff = 24 - diff
		}
		// Equation of the equinoxes stays within about a second of time.
		if diff*3600 > 1.5 {
			t.Errorf("%v: apparent and mean LST differ by %.3fs", at, diff*3600)
		}
	}
}

func TestResolver_Sun(t *testing.T) {
	equator := NewObserverPosition(0, 0, 0)
	noon := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	midnight := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)

	for name, r := range resolvers() {
		t.Run(name, func(t *testing.T) {
			if el := r.Sun(noon, equator).ElevationDeg; el < 85 {
				t.Errorf("equinox noon sun elevation at (0, 0) = %.2f, want > 85", el)
			}
			if el := r.Sun(midnight, equator).ElevationDeg; el > -85 {
				t.Errorf("equinox midnight sun elevation at (0, 0) = %.2f, want < -85", el)
			}
		})
	}
}

func TestResolver_Deterministic(t *testing.T) {
	eq := Equatorial{RADeg: 187.2779, DecDeg: 2.0524}
	at := time.Date(2023, 7, 8, 13, 17, 0, 0, time.UTC)

	for name, r := range resolvers() {
		t.Run(name, func(t *testing.T) {
			if a, b := r.Horizontal(eq, at, mizusawa), r.Horizontal(eq, at, mizusawa); a != b {
				t.Errorf("repeated Horizontal differ: %+v vs %+v", a, b)
			}
		})
	}
}

func TestResolverByName(t *testing.T) {
	tests := []struct {
		name    string
		want    Resolver
		wantErr bool
	}{
		{"meeus", MeeusResolver{}, false},
		{"", MeeusResolver{}, false},
		{" Vector ", VectorResolver{}, false},
		{"astropy", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolverByName(tt.name)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownResolver) {
					t.Fatalf("err = %v, want ErrUnknownResolver", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ResolverByName(%q) = %T, want %T", tt.name, got, tt.want)
			}
		})
	}
}
