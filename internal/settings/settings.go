// Package settings resolves the runtime settings of the uptimeplot command
// from flags, UPTIMEPLOT_* environment variables and an optional settings
// file, in that order of precedence.
package settings

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable except LOG_LEVEL and
// LOG_FORMAT.
const EnvPrefix = "UPTIMEPLOT"

// Settings holds everything the command needs besides the config file
// contents.
type Settings struct {
	ConfigPath   string
	OutputDir    string
	SettingsFile string
	Edit         bool
	Yes          bool
	Open         bool
	Browser      string
	Resolver     string
	CSV          bool
	Summary      bool
	MinElevation float64
	MetricsFile  string
	LogLevel     string
	LogFormat    string
}

// Defaults returns the settings used when nothing overrides them.
func Defaults() Settings {
	return Settings{
		ConfigPath: "uptimeplot.config",
		OutputDir:  "uptimeplot_output",
		Open:       true,
		Resolver:   "meeus",
		CSV:        true,
		Summary:    true,
		LogLevel:   "info",
		LogFormat:  "text",
	}
}

// Load parses args (without the program name) and resolves the settings.
// Out-of-range values are logged and replaced by their defaults. A flag
// parse error or an unreadable settings file is returned;
// pflag.ErrHelp is returned unwrapped when -h was given.
func Load(args []string, logger *slog.Logger) (Settings, error) {
	def := Defaults()

	fs := pflag.NewFlagSet("uptimeplot", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.String("config", def.ConfigPath, "flat config file listing antennas, dates and targets")
	fs.String("output-dir", def.OutputDir, "root directory of the generated files")
	fs.String("settings", "", "optional settings file (toml, yaml or json)")
	fs.Bool("edit", def.Edit, "open the config file in an editor before running")
	fs.Bool("yes", def.Yes, "skip the confirmation prompt")
	fs.Bool("open", def.Open, "open the output directory in a file browser when done")
	fs.String("browser", "", "file browser command (default depends on the platform)")
	fs.String("resolver", def.Resolver, "position resolver: meeus or vector")
	fs.Bool("csv", def.CSV, "write the sampled positions as CSV")
	fs.Bool("summary", def.Summary, "write a YAML summary with rise/set times")
	fs.Float64("min-elevation", def.MinElevation, "elevation mask in degrees for the summary windows")
	fs.String("metrics-file", "", "write prometheus metrics to this textfile at exit")
	fs.String("log-level", def.LogLevel, "debug, info, warn or error")
	fs.String("log-format", def.LogFormat, "text or json")

	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return def, err
		}
		return def, fmt.Errorf("parsing flags: %w", err)
	}

	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		return def, fmt.Errorf("binding flags: %w", err)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	// The log variables are shared with other tools and carry no prefix.
	for key, env := range map[string]string{"log-level": "LOG_LEVEL", "log-format": "LOG_FORMAT"} {
		if err := v.BindEnv(key, env); err != nil {
			return def, fmt.Errorf("binding %s to %s: %w", key, env, err)
		}
	}

	if path := v.GetString("settings"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return def, fmt.Errorf("reading settings file %s: %w", path, err)
		}
		logger.Info("settings file loaded", "path", path)
	}

	s := Settings{
		ConfigPath:   v.GetString("config"),
		OutputDir:    v.GetString("output-dir"),
		SettingsFile: v.GetString("settings"),
		Edit:         v.GetBool("edit"),
		Yes:          v.GetBool("yes"),
		Open:         v.GetBool("open"),
		Browser:      v.GetString("browser"),
		Resolver:     strings.ToLower(v.GetString("resolver")),
		CSV:          v.GetBool("csv"),
		Summary:      v.GetBool("summary"),
		MinElevation: v.GetFloat64("min-elevation"),
		MetricsFile:  v.GetString("metrics-file"),
		LogLevel:     strings.ToLower(v.GetString("log-level")),
		LogFormat:    strings.ToLower(v.GetString("log-format")),
	}

	if s.ConfigPath == "" {
		logger.Warn("empty config path, using default", "default", def.ConfigPath)
		s.ConfigPath = def.ConfigPath
	}
	if s.OutputDir == "" {
		logger.Warn("empty output dir, using default", "default", def.OutputDir)
		s.OutputDir = def.OutputDir
	}
	if s.Resolver != "meeus" && s.Resolver != "vector" {
		logger.Warn("invalid resolver value, using default", "value", s.Resolver, "default", def.Resolver)
		s.Resolver = def.Resolver
	}
	if s.MinElevation < -90 || s.MinElevation > 90 {
		logger.Warn("invalid min-elevation value, using default", "value", s.MinElevation, "default", def.MinElevation)
		s.MinElevation = def.MinElevation
	}
	if _, ok := levels[s.LogLevel]; !ok {
		logger.Warn("invalid log level, using default", "value", s.LogLevel, "default", def.LogLevel)
		s.LogLevel = def.LogLevel
	}
	if s.LogFormat != "text" && s.LogFormat != "json" {
		logger.Warn("invalid log format, using default", "value", s.LogFormat, "default", def.LogFormat)
		s.LogFormat = def.LogFormat
	}

	return s, nil
}

var levels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// NewLogger builds a slog logger writing to w with the given level and
// format (text or json). Unknown values fall back to info and text.
func NewLogger(w io.Writer, level, format string) *slog.Logger {
	lvl, ok := levels[strings.ToLower(level)]
	if !ok {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var h slog.Handler
	if strings.ToLower(format) == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

// BootstrapLogger builds the logger used while settings are loaded, from
// LOG_LEVEL and LOG_FORMAT only.
func BootstrapLogger() *slog.Logger {
	return NewLogger(os.Stderr, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
}

// Logger builds the logger described by s.
func (s Settings) Logger(w io.Writer) *slog.Logger {
	return NewLogger(w, s.LogLevel, s.LogFormat)
}
