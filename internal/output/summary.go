package output

import (
	"fmt"
	"io"
	"time"

	sexa "github.com/soniakeys/sexagesimal"
	"github.com/soniakeys/unit"
	"gopkg.in/yaml.v3"

	"github.com/star/uptimeplot/internal/passes"
)

// Summary describes one figure: where it was computed, which targets made
// it on and when each of them is up.
type Summary struct {
	Antenna      string          `yaml:"antenna"`
	Date         string          `yaml:"date"`
	Resolver     string          `yaml:"resolver"`
	MinElevation float64         `yaml:"min_elevation"`
	Latitude     float64         `yaml:"latitude"`
	Longitude    float64         `yaml:"longitude"`
	Altitude     float64         `yaml:"altitude_m"`
	GeneratedAt  time.Time       `yaml:"generated_at"`
	Targets      []TargetSummary `yaml:"targets"`
	Dropped      []string        `yaml:"dropped,omitempty"`
}

// TargetSummary is one target's entry in a Summary.
type TargetSummary struct {
	Name    string          `yaml:"name"`
	RA      string          `yaml:"ra"`
	Dec     string          `yaml:"dec"`
	Events  passes.Events   `yaml:"events"`
	Windows []passes.Window `yaml:"windows"`
}

// NewTargetSummary formats ra and dec sexagesimally.
func NewTargetSummary(name string, ra unit.RA, dec unit.Angle, ev passes.Events, windows []passes.Window) TargetSummary {
	if windows == nil {
		windows = []passes.Window{}
	}
	return TargetSummary{
		Name:    name,
		RA:      fmt.Sprintf("%.2v", sexa.FmtRA(ra)),
		Dec:     fmt.Sprintf("%.1v", sexa.FmtAngle(dec)),
		Events:  ev,
		Windows: windows,
	}
}

// WriteSummary encodes s as YAML.
func WriteSummary(w io.Writer, s Summary) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}
	return nil
}
