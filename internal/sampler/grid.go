package sampler

import (
	"time"

	"gonum.org/v1/gonum/floats"
)

const (
	// Points is the number of samples in one day.
	Points = 240
	// Window is the span covered by a grid.
	Window = 24 * time.Hour
)

// Grid is the set of sample instants for one observation date: Points
// evenly spaced instants from 00:00 UTC to 24:00 UTC inclusive.
// One grid is shared by every series drawn on the same figure.
type Grid struct {
	Date  time.Time   // 00:00 UTC of the observation date
	Hours []float64   // elapsed hours since Date
	Times []time.Time // Date + Hours
}

// NewGrid builds the sampling grid for the day starting at date's UTC midnight.
func NewGrid(date time.Time) Grid {
	d := date.UTC()
	midnight := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)

	hours := floats.Span(make([]float64, Points), 0, Window.Hours())
	times := make([]time.Time, Points)
	for i, h := range hours {
		times[i] = midnight.Add(time.Duration(h * float64(time.Hour)))
	}
	return Grid{Date: midnight, Hours: hours, Times: times}
}

// Len returns the number of sample instants.
func (g Grid) Len() int { return len(g.Times) }
