package main

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	sexa "github.com/soniakeys/sexagesimal"
	"github.com/soniakeys/unit"
	"github.com/spf13/pflag"

	"github.com/star/uptimeplot/internal/passes"
	"github.com/star/uptimeplot/internal/sampler"
	"github.com/star/uptimeplot/internal/transform"
)

// diag prints the track of one target from one antenna on one date with
// both resolvers side by side, then the visibility windows.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	x := pflag.Float64("x", -3857244.97, "antenna ECEF x (m)")
	y := pflag.Float64("y", 3108782.92, "antenna ECEF y (m)")
	z := pflag.Float64("z", 4003899.16, "antenna ECEF z (m)")
	raDeg := pflag.Float64("ra", 187.2779, "right ascension (deg, J2000)")
	decDeg := pflag.Float64("dec", 2.0524, "declination (deg, J2000)")
	dateStr := pflag.String("date", time.Now().UTC().Format("2006-01-02"), "observation date")
	every := pflag.Int("every", 10, "print every n-th sample")
	minEl := pflag.Float64("min-elevation", 0, "elevation mask (deg)")
	pflag.Parse()

	date, err := time.Parse("2006-01-02", *dateStr)
	if err != nil {
		logger.Error("invalid date", "date", *dateStr, "error", err)
		os.Exit(1)
	}
	if *every < 1 {
		*every = 1
	}

	if !transform.PlausibleAntenna(*x, *y, *z) {
		logger.Warn("antenna position is not near the Earth's surface", "x", *x, "y", *y, "z", *z)
	}
	obs := transform.ObserverFromECEF(*x, *y, *z)
	eq := transform.Equatorial{RADeg: *raDeg, DecDeg: *decDeg}
	grid := sampler.NewGrid(date)

	meeus, err := sampler.New(transform.MeeusResolver{}).Sample(eq, grid, obs)
	if err != nil {
		logger.Error("sampling failed", "error", err)
		os.Exit(1)
	}
	vector, err := sampler.New(transform.VectorResolver{}).Sample(eq, grid, obs)
	if err != nil {
		logger.Error("sampling failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Observer: lat=%.5f° lon=%.5f° alt=%.1fm\n",
		obs.LatRad*180/math.Pi, obs.LonRad*180/math.Pi, obs.AltM)
	fmt.Printf("Target:   RA %v  Dec %v\n",
		sexa.FmtRA(unit.RAFromDeg(*raDeg)), sexa.FmtAngle(unit.AngleFromDeg(*decDeg)))
	fmt.Printf("Date:     %s\n\n", grid.Date.Format("2006-01-02"))

	fmt.Println("  hour     meeus az/el          vector az/el         diff")
	worst := 0.0
	for i := range grid.Times {
		m, v := meeus.UTC[i], vector.UTC[i]
		d := math.Hypot(angleDiff(m.Azimuth, v.Azimuth)*math.Cos(m.Elevation*math.Pi/180), m.Elevation-v.Elevation)
		worst = math.Max(worst, d)
		if i%*every != 0 {
			continue
		}
		fmt.Printf("%6.2f  %8.3f %8.3f    %8.3f %8.3f    %6.3f°\n",
			m.Hour, m.Azimuth, m.Elevation, v.Azimuth, v.Elevation, d)
	}
	fmt.Printf("\nLargest resolver difference: %.3f°\n", worst)

	req := passes.Request{Target: eq, Observer: obs, Grid: grid, UTC: meeus.UTC, MinElevation: *minEl}
	ev := passes.RiseTransitSet(req)
	fmt.Printf("\nVisibility: %s\n", ev.Visibility)
	if ev.Visibility == passes.RisesAndSets {
		fmt.Printf("  rise    %s\n  set     %s\n", ev.Rise.Format(time.TimeOnly), ev.Set.Format(time.TimeOnly))
	}
	fmt.Printf("  transit %s\n", ev.Transit.Format(time.TimeOnly))

	windows := passes.NewPredictor(transform.MeeusResolver{}).Windows(req)
	fmt.Printf("\nWindows above %.1f°: %d\n", *minEl, len(windows))
	for j, w := range windows {
		fmt.Printf("  %d: %s - %s  max %.1f° at %s (az %.1f°)  %v\n", j,
			w.StartTime.Format(time.TimeOnly), w.EndTime.Format(time.TimeOnly),
			w.MaxElevation, w.MaxElevationTime.Format(time.TimeOnly), w.AzimuthAtMax, w.Duration)
	}
}

func angleDiff(a, b float64) float64 {
	return math.Mod(a-b+540, 360) - 180
}
