package settings

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

var testLogger = slog.New(slog.NewJSONHandler(io.Discard, nil))

func TestLoad_Defaults(t *testing.T) {
	s, err := Load(nil, testLogger)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s != Defaults() {
		t.Errorf("Load(nil) = %+v, want %+v", s, Defaults())
	}
}

func TestLoad_Flags(t *testing.T) {
	s, err := Load([]string{
		"--config", "obs.config",
		"--output-dir", "/tmp/out",
		"--yes",
		"--open=false",
		"--resolver", "vector",
		"--csv=false",
		"--min-elevation", "15",
		"--log-format", "json",
	}, testLogger)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := Defaults()
	want.ConfigPath = "obs.config"
	want.OutputDir = "/tmp/out"
	want.Yes = true
	want.Open = false
	want.Resolver = "vector"
	want.CSV = false
	want.MinElevation = 15
	want.LogFormat = "json"
	if s != want {
		t.Errorf("Load = %+v, want %+v", s, want)
	}
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("UPTIMEPLOT_OUTPUT_DIR", "envout")
	t.Setenv("UPTIMEPLOT_SUMMARY", "false")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "JSON")

	s, err := Load(nil, testLogger)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.OutputDir != "envout" {
		t.Errorf("OutputDir = %q, want envout", s.OutputDir)
	}
	if s.Summary {
		t.Error("Summary should be disabled by env")
	}
	if s.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", s.LogLevel)
	}
	if s.LogFormat != "json" {
		t.Errorf("LogFormat = %q, want json", s.LogFormat)
	}
}

func TestLoad_FlagBeatsEnv(t *testing.T) {
	t.Setenv("UPTIMEPLOT_RESOLVER", "vector")
	s, err := Load([]string{"--resolver", "meeus"}, testLogger)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Resolver != "meeus" {
		t.Errorf("Resolver = %q, want meeus", s.Resolver)
	}
}

func TestLoad_SettingsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uptimeplot.yaml")
	content := "output-dir: fromfile\nmin-elevation: 20\nmetrics-file: run.prom\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := Load([]string{"--settings", path, "--output-dir", "fromflag"}, testLogger)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.OutputDir != "fromflag" {
		t.Errorf("OutputDir = %q, flag should win over file", s.OutputDir)
	}
	if s.MinElevation != 20 {
		t.Errorf("MinElevation = %v, want 20", s.MinElevation)
	}
	if s.MetricsFile != "run.prom" {
		t.Errorf("MetricsFile = %q, want run.prom", s.MetricsFile)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"--nope"}},
		{"bad bool", []string{"--csv=maybe"}},
		{"missing settings file", []string{"--settings", filepath.Join(os.TempDir(), "does-not-exist.yaml")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(tt.args, testLogger); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoad_Help(t *testing.T) {
	_, err := Load([]string{"-h"}, testLogger)
	if !errors.Is(err, pflag.ErrHelp) {
		t.Errorf("err = %v, want pflag.ErrHelp", err)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	s, err := Load([]string{
		"--resolver", "astropy",
		"--min-elevation", "120",
		"--log-level", "loud",
		"--log-format", "xml",
	}, logger)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	def := Defaults()
	if s.Resolver != def.Resolver || s.MinElevation != def.MinElevation ||
		s.LogLevel != def.LogLevel || s.LogFormat != def.LogFormat {
		t.Errorf("invalid values not replaced: %+v", s)
	}
	if n := strings.Count(logs.String(), "level=WARN"); n != 4 {
		t.Errorf("got %d warnings, want 4:\n%s", n, logs.String())
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		level, format string
		debug         bool
		json          bool
	}{
		{"debug", "json", true, true},
		{"info", "text", false, false},
		{"bogus", "bogus", false, false},
		{"WARN", "JSON", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.level+"/"+tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			l := NewLogger(&buf, tt.level, tt.format)
			if got := l.Enabled(context.Background(), slog.LevelDebug); got != tt.debug {
				t.Errorf("debug enabled = %v, want %v", got, tt.debug)
			}
			l.Error("hello")
			if got := strings.HasPrefix(buf.String(), "{"); got != tt.json {
				t.Errorf("json output = %v, want %v: %s", got, tt.json, buf.String())
			}
		})
	}
}
