package chart

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/star/uptimeplot/internal/sampler"
)

const (
	ringStep    = 10 // degrees of elevation between rings
	spokeStep   = 30 // degrees of azimuth between spokes
	circlePts   = 181
	labelRange  = 97
	polarExtent = 100
)

var gridColor = color.Gray{Y: 0xc0}

// Polar writes the sky track figure to w. The zenith is at the centre and
// the horizon at the outer ring (radius 90 - el); azimuth 0 is at the top
// and increases clockwise. Parts of a track below the horizon are not
// drawn.
func (r *Renderer) Polar(w io.Writer, fig Figure) error {
	p := plot.New()
	p.HideAxes()
	p.Title.Text = fmt.Sprintf("%s  %s", fig.Antenna, fig.Date.Format("2006-01-02"))
	p.Legend.Top = true
	p.Legend.Left = true
	p.Legend.TextStyle.Font.Size = vg.Points(8)

	if err := addPolarGrid(p); err != nil {
		return err
	}

	add := func(name string, c color.Color, samples []sampler.Sample) error {
		ls, err := lines(skyXY(samples), c)
		if err != nil {
			return fmt.Errorf("%s sky track: %w", name, err)
		}
		for _, l := range ls {
			p.Add(l)
		}
		if len(ls) > 0 {
			p.Legend.Add(name, ls[0])
		}
		return nil
	}
	for _, tr := range fig.Targets {
		if err := add(tr.Name, tr.Color, tr.Series.UTC); err != nil {
			return err
		}
	}
	if fig.Sun != nil {
		if err := add(sunName, SunColor, fig.Sun); err != nil {
			return err
		}
	}

	p.X.Min, p.X.Max = -polarExtent, polarExtent
	p.Y.Min, p.Y.Max = -polarExtent, polarExtent

	img := vgimg.NewWith(vgimg.UseWH(polarWidth, polarHeight), vgimg.UseDPI(r.dpi))
	// Keep the drawing area square so rings stay circular.
	margin := (polarHeight - polarWidth) / 2
	p.Draw(draw.Crop(draw.New(img), 0, 0, margin, -margin))

	return writePNG(w, img)
}

// Project maps a horizontal position onto the polar chart plane.
func Project(azDeg, elDeg float64) (x, y float64) {
	rad := 90 - elDeg
	s, c := math.Sincos(azDeg * math.Pi / 180)
	return rad * s, rad * c
}

// skyXY splits samples into runs above the horizon.
func skyXY(samples []sampler.Sample) []plotter.XYs {
	var (
		runs []plotter.XYs
		cur  plotter.XYs
	)
	for _, s := range samples {
		if s.Elevation < 0 {
			if len(cur) > 0 {
				runs = append(runs, cur)
				cur = nil
			}
			continue
		}
		x, y := Project(s.Azimuth, s.Elevation)
		cur = append(cur, plotter.XY{X: x, Y: y})
	}
	if len(cur) > 0 {
		runs = append(runs, cur)
	}
	return runs
}

func addPolarGrid(p *plot.Plot) error {
	var (
		ringXY plotter.XYs
		labels plotter.XYLabels
	)

	for el := 0; el < 90; el += ringStep {
		circle := make(plotter.XYs, circlePts)
		for i := range circle {
			az := 360 * float64(i) / float64(circlePts-1)
			circle[i].X, circle[i].Y = Project(az, float64(el))
		}
		l, err := plotter.NewLine(circle)
		if err != nil {
			return fmt.Errorf("polar ring: %w", err)
		}
		l.LineStyle.Color = gridColor
		l.LineStyle.Width = vg.Points(0.5)
		p.Add(l)

		x, y := Project(22.5, float64(el))
		ringXY = append(ringXY, plotter.XY{X: x, Y: y})
		labels.Labels = append(labels.Labels, strconv.Itoa(el))
	}

	for az := 0; az < 360; az += spokeStep {
		x, y := Project(float64(az), 0)
		l, err := plotter.NewLine(plotter.XYs{{X: 0, Y: 0}, {X: x, Y: y}})
		if err != nil {
			return fmt.Errorf("polar spoke: %w", err)
		}
		l.LineStyle.Color = gridColor
		l.LineStyle.Width = vg.Points(0.5)
		p.Add(l)
	}

	for i, name := range []string{"N", "E", "S", "W"} {
		s, c := math.Sincos(float64(i) * math.Pi / 2)
		ringXY = append(ringXY, plotter.XY{X: labelRange * s, Y: labelRange * c})
		labels.Labels = append(labels.Labels, name)
	}

	labels.XYs = ringXY
	lbl, err := plotter.NewLabels(labels)
	if err != nil {
		return fmt.Errorf("polar labels: %w", err)
	}
	for i := range lbl.TextStyle {
		lbl.TextStyle[i].XAlign = text.XCenter
		lbl.TextStyle[i].YAlign = text.YCenter
	}
	p.Add(lbl)
	return nil
}
