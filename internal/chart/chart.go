// Package chart renders the three figures of one antenna and date as PNG:
// az/el against UTC, a polar sky track and az/el against local sidereal
// time.
package chart

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"strconv"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/star/uptimeplot/internal/sampler"
)

// Trace is one target drawn on a figure.
type Trace struct {
	Name   string
	Color  color.Color
	Series sampler.Series
}

// Figure is everything drawn for one (antenna, date) pair.
type Figure struct {
	Antenna string
	Date    time.Time
	Targets []Trace
	Sun     []sampler.Sample // UTC series; nil to leave it out
}

const (
	// DefaultDPI is the resolution of the rendered PNGs.
	DefaultDPI = 100

	stackedWidth  = 12 * vg.Inch
	stackedHeight = 9 * vg.Inch
	polarWidth    = 8 * vg.Inch
	polarHeight   = 9 * vg.Inch

	sunName = "sun"
)

var lineWidth = vg.Points(1.2)

// Renderer draws figures. The zero value is not usable; call NewRenderer.
type Renderer struct {
	dpi int
}

// NewRenderer creates a Renderer writing PNGs at dpi dots per inch.
func NewRenderer(dpi int) *Renderer {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &Renderer{dpi: dpi}
}

// AzEl writes the az/el vs UTC figure, Sun included, to w.
func (r *Renderer) AzEl(w io.Writer, fig Figure) error {
	xlabel := fig.Date.Format("2006-01-02") + " UT"
	return r.stacked(w, fig, xlabel, func(s sampler.Series) []sampler.Sample { return s.UTC }, fig.Sun)
}

// Sidereal writes the az/el vs local sidereal time figure to w.
func (r *Renderer) Sidereal(w io.Writer, fig Figure) error {
	xlabel := "LST in " + fig.Antenna
	return r.stacked(w, fig, xlabel, func(s sampler.Series) []sampler.Sample { return s.Sidereal }, nil)
}

func (r *Renderer) stacked(w io.Writer, fig Figure, xlabel string, pick func(sampler.Series) []sampler.Sample, sun []sampler.Sample) error {
	az, el, err := stackedPanels(fig, xlabel, pick, sun)
	if err != nil {
		return err
	}

	img := vgimg.NewWith(vgimg.UseWH(stackedWidth, stackedHeight), vgimg.UseDPI(r.dpi))
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      2,
		Cols:      1,
		PadX:      vg.Millimeter,
		PadY:      vg.Millimeter * 3,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 4,
	}
	canvases := plot.Align([][]*plot.Plot{{az}, {el}}, tiles, dc)
	az.Draw(canvases[0][0])
	el.Draw(canvases[1][0])

	return writePNG(w, img)
}

// stackedPanels builds the AZ and EL panels of a figure with every track
// added and the axes pinned to 0..24 h, 0..360 and 0..90 deg.
func stackedPanels(fig Figure, xlabel string, pick func(sampler.Series) []sampler.Sample, sun []sampler.Sample) (az, el *plot.Plot, err error) {
	az = newPanel("AZ (deg)", 360, 45)
	el = newPanel("EL (deg)", 90, 10)
	az.Title.Text = fmt.Sprintf("%s  %s", fig.Antenna, fig.Date.Format("2006-01-02"))
	el.X.Label.Text = xlabel

	add := func(name string, c color.Color, samples []sampler.Sample) error {
		azLines, err := lines(hourXY(samples, azimuth, true), c)
		if err != nil {
			return fmt.Errorf("%s azimuth: %w", name, err)
		}
		elLines, err := lines(hourXY(samples, elevation, false), c)
		if err != nil {
			return fmt.Errorf("%s elevation: %w", name, err)
		}
		for _, l := range azLines {
			az.Add(l)
		}
		for _, l := range elLines {
			el.Add(l)
		}
		if len(azLines) > 0 {
			az.Legend.Add(name, azLines[0])
		}
		return nil
	}

	for _, tr := range fig.Targets {
		if err := add(tr.Name, tr.Color, pick(tr.Series)); err != nil {
			return nil, nil, err
		}
	}
	if sun != nil {
		if err := add(sunName, SunColor, sun); err != nil {
			return nil, nil, err
		}
	}

	// Add widens the ranges to the data, so the limits go on last.
	// Lines are clipped to the data area.
	pinRange(az, 360)
	pinRange(el, 90)
	return az, el, nil
}

// newPanel builds a 0..24 h panel whose y ticks run from 0 to ymax.
func newPanel(ylabel string, ymax, ystep float64) *plot.Plot {
	p := plot.New()
	p.X.Tick.Marker = ticks(0, 24, 1)
	p.Y.Tick.Marker = ticks(0, ymax, ystep)
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.TextStyle.Font.Size = vg.Points(8)
	return p
}

func pinRange(p *plot.Plot, ymax float64) {
	p.X.Min, p.X.Max = 0, 24
	p.Y.Min, p.Y.Max = 0, ymax
}

func ticks(lo, hi, step float64) plot.ConstantTicks {
	var ts []plot.Tick
	for i := 0; ; i++ {
		v := lo + float64(i)*step
		if v > hi+step/1e6 {
			break
		}
		ts = append(ts, plot.Tick{Value: v, Label: strconv.FormatFloat(v, 'f', -1, 64)})
	}
	return ts
}

func azimuth(s sampler.Sample) float64   { return s.Azimuth }
func elevation(s sampler.Sample) float64 { return s.Elevation }

// hourXY splits samples into continuous runs of (hour, y). A run is cut
// where hours go backwards and, with cutWrap, where the azimuth wraps
// through north so no line crosses the panel.
func hourXY(samples []sampler.Sample, y func(sampler.Sample) float64, cutWrap bool) []plotter.XYs {
	var (
		runs []plotter.XYs
		cur  plotter.XYs
	)
	for i, s := range samples {
		if i > 0 && (s.Hour < samples[i-1].Hour || cutWrap && math.Abs(s.Azimuth-samples[i-1].Azimuth) > 180) {
			runs = append(runs, cur)
			cur = nil
		}
		cur = append(cur, plotter.XY{X: s.Hour, Y: y(s)})
	}
	if len(cur) > 0 {
		runs = append(runs, cur)
	}
	return runs
}

func lines(runs []plotter.XYs, c color.Color) ([]*plotter.Line, error) {
	out := make([]*plotter.Line, 0, len(runs))
	for _, xys := range runs {
		l, err := plotter.NewLine(xys)
		if err != nil {
			return nil, err
		}
		l.LineStyle.Color = c
		l.LineStyle.Width = lineWidth
		out = append(out, l)
	}
	return out, nil
}

func writePNG(w io.Writer, img *vgimg.Canvas) error {
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(w); err != nil {
		return fmt.Errorf("encoding png: %w", err)
	}
	return nil
}
