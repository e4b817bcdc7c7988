// Package driver runs the batch: for every antenna and date of a config it
// samples the targets and writes the figures of that pair.
package driver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/star/uptimeplot/internal/chart"
	"github.com/star/uptimeplot/internal/config"
	"github.com/star/uptimeplot/internal/metrics"
	"github.com/star/uptimeplot/internal/output"
	"github.com/star/uptimeplot/internal/passes"
	"github.com/star/uptimeplot/internal/sampler"
	"github.com/star/uptimeplot/internal/transform"
)

// MaxTargetsPerFigure is the number of targets drawn on one figure. Later
// targets are left off that figure.
const MaxTargetsPerFigure = 18

// Options controls what a run writes.
type Options struct {
	OutputDir    string
	ResolverName string // recorded in the summary
	WriteCSV     bool
	WriteSummary bool
	MinElevation float64 // degrees, mask for the summary windows
	DPI          int
}

// Report describes a finished or interrupted run.
type Report struct {
	Figures  int      // (antenna, date) pairs completed
	Files    []string // paths written, in order
	Dropped  int      // target placements left off full figures
	Duration time.Duration
}

// Driver renders every (antenna, date) pair of a config.
type Driver struct {
	resolver  transform.Resolver
	sampler   *sampler.Sampler
	predictor *passes.Predictor
	renderer  *chart.Renderer
	layout    output.Layout
	opts      Options
	logger    *slog.Logger
	now       func() time.Time
}

// New creates a Driver computing positions with r.
func New(r transform.Resolver, opts Options, logger *slog.Logger) *Driver {
	return &Driver{
		resolver:  r,
		sampler:   sampler.New(r),
		predictor: passes.NewPredictor(r),
		renderer:  chart.NewRenderer(opts.DPI),
		layout:    output.NewLayout(opts.OutputDir),
		opts:      opts,
		logger:    logger,
		now:       time.Now,
	}
}

// Run processes antennas in order and, for each, dates in order. The
// context is checked between pairs. Any sampling, rendering or write
// error stops the run.
func (d *Driver) Run(ctx context.Context, cfg *config.Config) (Report, error) {
	start := d.now()
	var rep Report
	defer func() {
		rep.Duration = d.now().Sub(start)
		metrics.ObserveRun(rep.Duration)
	}()

	for _, s := range cfg.Skipped() {
		metrics.ConfigLineSkipped(s.Section)
	}

	targets := cfg.Targets()
	for _, ant := range cfg.Antennas() {
		if !transform.PlausibleAntenna(ant.X, ant.Y, ant.Z) {
			d.logger.Warn("antenna position is not near the Earth's surface",
				"antenna", ant.Name, "x", ant.X, "y", ant.Y, "z", ant.Z)
		}

		for _, date := range cfg.Dates() {
			if err := ctx.Err(); err != nil {
				return rep, fmt.Errorf("run interrupted: %w", err)
			}
			if err := d.figure(ant, date, targets, &rep); err != nil {
				return rep, err
			}
			rep.Figures++
		}
	}

	d.logger.Info("run complete", "figures", rep.Figures, "files", len(rep.Files), "dropped_targets", rep.Dropped)
	return rep, nil
}

func (d *Driver) figure(ant config.Antenna, date time.Time, targets []config.Target, rep *Report) error {
	day := date.Format(output.DateLayout)
	logger := d.logger.With("antenna", ant.Name, "date", day)

	obs := ant.Observer()
	grid := sampler.NewGrid(date)

	var dropped []string
	if n := len(targets) - MaxTargetsPerFigure; n > 0 {
		for _, t := range targets[MaxTargetsPerFigure:] {
			logger.Warn("figure is full, target left off", "target", t.Name, "max_targets", MaxTargetsPerFigure)
			dropped = append(dropped, t.Name)
		}
		targets = targets[:MaxTargetsPerFigure]
		rep.Dropped += n
		metrics.TargetsDropped(n)
	}

	fig := chart.Figure{Antenna: ant.Name, Date: grid.Date, Sun: d.sampler.Sun(grid, obs)}
	metrics.SamplesComputed(grid.Len())

	for i, t := range targets {
		series, err := d.sampler.Sample(t.Equatorial(), grid, obs)
		if err != nil {
			return fmt.Errorf("sampling %s for %s on %s: %w", t.Name, ant.Name, day, err)
		}
		metrics.SamplesComputed(grid.Len())
		fig.Targets = append(fig.Targets, chart.Trace{Name: t.Name, Color: chart.Palette(i), Series: series})
	}

	files := []file{
		{output.KindAzEl, func(w io.Writer) error { return d.renderer.AzEl(w, fig) }},
		{output.KindPolar, func(w io.Writer) error { return d.renderer.Polar(w, fig) }},
		{output.KindLST, func(w io.Writer) error { return d.renderer.Sidereal(w, fig) }},
	}
	if d.opts.WriteCSV {
		files = append(files, file{output.KindData, func(w io.Writer) error {
			return output.WriteCSV(w, grid.Hours, columns(fig))
		}})
	}
	if d.opts.WriteSummary {
		s := d.summary(ant, grid, obs, targets, fig)
		s.Dropped = dropped
		files = append(files, file{output.KindSummary, func(w io.Writer) error {
			return output.WriteSummary(w, s)
		}})
	}

	for _, f := range files {
		path := d.layout.Path(f.kind, date, ant.Name)
		if err := output.WriteFile(path, f.write); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		metrics.FileWritten(string(f.kind))
		rep.Files = append(rep.Files, path)
		logger.Debug("wrote file", "kind", f.kind, "path", path)
	}

	logger.Info("figure written", "targets", len(fig.Targets), "dir", d.layout.Dir(date, ant.Name))
	return nil
}

// file is one output of a figure.
type file struct {
	kind  output.Kind
	write func(io.Writer) error
}

func columns(fig chart.Figure) []output.Column {
	cols := make([]output.Column, len(fig.Targets))
	for i, tr := range fig.Targets {
		cols[i] = output.Column{Name: tr.Name, Samples: tr.Series.UTC}
	}
	return cols
}

func (d *Driver) summary(ant config.Antenna, grid sampler.Grid, obs transform.ObserverPosition, targets []config.Target, fig chart.Figure) output.Summary {
	s := output.Summary{
		Antenna:      ant.Name,
		Date:         grid.Date.Format(output.DateLayout),
		Resolver:     d.opts.ResolverName,
		MinElevation: d.opts.MinElevation,
		Latitude:     obs.LatRad * 180 / math.Pi,
		Longitude:    obs.LonRad * 180 / math.Pi,
		Altitude:     obs.AltM,
		GeneratedAt:  d.now().UTC().Truncate(time.Second),
	}

	for i, t := range targets {
		req := passes.Request{
			Target:       t.Equatorial(),
			Observer:     obs,
			Grid:         grid,
			UTC:          fig.Targets[i].Series.UTC,
			MinElevation: d.opts.MinElevation,
		}
		s.Targets = append(s.Targets, output.NewTargetSummary(t.Name, t.RA(), t.Dec(),
			passes.RiseTransitSet(req), d.predictor.Windows(req)))
	}
	return s
}
