package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/star/uptimeplot/internal/sampler"
)

// Column is one target's UTC series in the data export.
type Column struct {
	Name    string
	Samples []sampler.Sample
}

// WriteCSV writes a header of Time,<name>_az,<name>_el,... and one row per
// entry of hours. Time is printed with two decimals and az/el with one.
// A column shorter than hours leaves its cells empty.
func WriteCSV(w io.Writer, hours []float64, columns []Column) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, 1+2*len(columns))
	header = append(header, "Time")
	for _, c := range columns {
		header = append(header, c.Name+"_az", c.Name+"_el")
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	row := make([]string, len(header))
	for i, h := range hours {
		row[0] = strconv.FormatFloat(h, 'f', 2, 64)
		for j, c := range columns {
			az, el := "", ""
			if i < len(c.Samples) {
				az = strconv.FormatFloat(c.Samples[i].Azimuth, 'f', 1, 64)
				el = strconv.FormatFloat(c.Samples[i].Elevation, 'f', 1, 64)
			}
			row[1+2*j], row[2+2*j] = az, el
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv row %d: %w", i, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}
