// Package config reads the flat uptimeplot configuration file: antennas,
// observation dates and targets, each in its own flagged section.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

var (
	ErrNoAntennas  = errors.New("no antenna specified for the observation")
	ErrNoDates     = errors.New("no observation date specified")
	ErrNoTargets   = errors.New("no target specified for the observation")
	ErrInvalidDate = errors.New("invalid observation date")
)

// DateLayout is the date format of the DATE section.
const DateLayout = "2006-01-02"

type section int

const (
	sectionNone section = iota
	sectionAntenna
	sectionDate
	sectionTarget
)

func (s section) String() string {
	switch s {
	case sectionAntenna:
		return "antenna"
	case sectionDate:
		return "date"
	case sectionTarget:
		return "target"
	default:
		return "none"
	}
}

// markers maps each section flag to the section it opens. End flags map to
// sectionNone.
var markers = map[string]section{
	"ANTENNA-FLAG-ST": sectionAntenna,
	"ANTENNA-FLAG-ED": sectionNone,
	"DATE-FLAG-ST":    sectionDate,
	"DATE-FLAG-ED":    sectionNone,
	"TARGET-FLAG-ST":  sectionTarget,
	"TARGET-FLAG-ED":  sectionNone,
}

// Load opens path and parses it.
func Load(path string, logger *slog.Logger) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	defer f.Close()
	return Parse(f, logger)
}

// Parse reads the sectioned configuration format from r.
// Malformed antenna and target lines are skipped with a warning log; an
// unparseable date or an empty section is an error.
func Parse(r io.Reader, logger *slog.Logger) (*Config, error) {
	var (
		cur      = sectionNone
		antennas []Antenna
		dates    []time.Time
		targets  []Target
		skipped  []SkippedLine

		antennaIdx = make(map[string]int)
		targetIdx  = make(map[string]int)
	)

	skip := func(lineNo int, reason string) {
		logger.Warn("skipping malformed config line", "line", lineNo, "section", cur.String(), "reason", reason)
		skipped = append(skipped, SkippedLine{Line: lineNo, Section: cur.String(), Reason: reason})
	}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if next, ok := markers[fields[0]]; ok {
			cur = next
			continue
		}
		if strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch cur {
		case sectionAntenna:
			a, err := parseAntenna(fields)
			if err != nil {
				skip(lineNo, err.Error())
				continue
			}
			// Repeated names replace the earlier entry in place.
			if i, ok := antennaIdx[a.Name]; ok {
				logger.Warn("antenna redefined", "line", lineNo, "antenna", a.Name)
				antennas[i] = a
				continue
			}
			antennaIdx[a.Name] = len(antennas)
			antennas = append(antennas, a)

		case sectionDate:
			d, err := time.ParseInLocation(DateLayout, fields[0], time.UTC)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w %q: %w", lineNo, ErrInvalidDate, fields[0], err)
			}
			dates = append(dates, d)

		case sectionTarget:
			t, err := parseTarget(fields)
			if err != nil {
				skip(lineNo, err.Error())
				continue
			}
			if i, ok := targetIdx[t.Name]; ok {
				logger.Warn("target redefined", "line", lineNo, "target", t.Name)
				targets[i] = t
				continue
			}
			targetIdx[t.Name] = len(targets)
			targets = append(targets, t)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg, err := New(antennas, dates, targets)
	if err != nil {
		return nil, err
	}
	cfg.skipped = skipped
	return cfg, nil
}

// parseAntenna parses "<name> <x> <y> <z>".
func parseAntenna(fields []string) (Antenna, error) {
	if len(fields) != 4 {
		return Antenna{}, fmt.Errorf("antenna line needs 4 fields, got %d", len(fields))
	}
	xyz, err := parseFloats(fields[1:4])
	if err != nil {
		return Antenna{}, err
	}
	return Antenna{Name: fields[0], X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
}

// parseTarget parses "<name> <label> <ra_h> <ra_m> <ra_s> <dec_d> <dec_m> <dec_s>".
// Fields after the eighth are ignored.
func parseTarget(fields []string) (Target, error) {
	if len(fields) < 8 {
		return Target{}, fmt.Errorf("target line needs 8 fields, got %d", len(fields))
	}
	v, err := parseFloats(fields[2:8])
	if err != nil {
		return Target{}, err
	}
	return Target{
		Name:   fields[0],
		Label:  fields[1],
		RAH:    v[0],
		RAM:    v[1],
		RAS:    v[2],
		DecNeg: strings.HasPrefix(fields[5], "-"),
		DecD:   v[3],
		DecM:   v[4],
		DecS:   v[5],
	}, nil
}

func parseFloats(fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", f)
		}
		out[i] = v
	}
	return out, nil
}
