package app

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

type fileConfig struct {
	TZ        string                `toml:"tz"`
	Output    string                `toml:"output"`
	Fields    string                `toml:"fields"`
	WeekStart string                `toml:"week_start"`
	Axis      string                `toml:"axis"`
	From      string                `toml:"from"`
	To        string                `toml:"to"`
	Timeout   string                `toml:"timeout"`
	Profile   string                `toml:"profile"`
	Profiles  map[string]fileConfig `toml:"profiles"`
}

const projectConfigName = ".acgrid.toml"

// resolveGlobalOptions layers defaults, user config, project config, an
// explicit config file, ACGRID_* environment variables and changed flags, in
// that order.
func resolveGlobalOptions(cmd *cobra.Command, defaults *globalOptions) (*globalOptions, error) {
	resolved := *defaults

	profile := firstNonEmpty(env("ACGRID_PROFILE"), defaults.Profile)
	if flagValueChanged(cmd, "profile") {
		profile = defaults.Profile
	}
	if profile == "" {
		profile = "default"
	}
	resolved.Profile = profile

	userPath := defaultUserConfigPath()
	configPath := firstNonEmpty(env("ACGRID_CONFIG"), userPath)
	if flagValueChanged(cmd, "config") {
		configPath = defaults.Config
	}

	if cfg, ok := readConfigFile(userPath); ok {
		applyFileConfig(&resolved, cfg, profile)
	}
	if cfg, ok := readConfigFile(projectConfigName); ok {
		applyFileConfig(&resolved, cfg, profile)
	}
	if configPath != "" && configPath != userPath && configPath != projectConfigName {
		if cfg, ok := readConfigFile(configPath); ok {
			applyFileConfig(&resolved, cfg, profile)
		}
	}

	applyEnv(&resolved)
	applyFlags(cmd, &resolved, defaults)

	if resolved.Config == "" {
		resolved.Config = configPath
	}
	return &resolved, nil
}

func applyFileConfig(dst *globalOptions, cfg fileConfig, profile string) {
	if p, ok := cfg.Profiles[profile]; ok {
		cfg = mergeFileConfig(cfg, p)
	}
	setIfNotEmpty(&dst.TZ, cfg.TZ)
	setIfNotEmpty(&dst.Fields, cfg.Fields)
	setIfNotEmpty(&dst.WeekStart, cfg.WeekStart)
	setIfNotEmpty(&dst.Axis, cfg.Axis)
	setIfNotEmpty(&dst.From, cfg.From)
	setIfNotEmpty(&dst.To, cfg.To)
	if d, err := time.ParseDuration(strings.TrimSpace(cfg.Timeout)); err == nil {
		dst.Timeout = d
	}
	applyOutputMode(dst, cfg.Output)
}

func mergeFileConfig(base, overlay fileConfig) fileConfig {
	setIfNotEmpty(&base.TZ, overlay.TZ)
	setIfNotEmpty(&base.Output, overlay.Output)
	setIfNotEmpty(&base.Fields, overlay.Fields)
	setIfNotEmpty(&base.WeekStart, overlay.WeekStart)
	setIfNotEmpty(&base.Axis, overlay.Axis)
	setIfNotEmpty(&base.From, overlay.From)
	setIfNotEmpty(&base.To, overlay.To)
	setIfNotEmpty(&base.Timeout, overlay.Timeout)
	setIfNotEmpty(&base.Profile, overlay.Profile)
	return base
}

func applyEnv(dst *globalOptions) {
	setIfNotEmpty(&dst.TZ, env("ACGRID_TIMEZONE"))
	setIfNotEmpty(&dst.Fields, env("ACGRID_FIELDS"))
	setIfNotEmpty(&dst.WeekStart, env("ACGRID_WEEK_START"))
	setIfNotEmpty(&dst.Axis, env("ACGRID_AXIS"))
	setIfNotEmpty(&dst.From, env("ACGRID_FROM"))
	setIfNotEmpty(&dst.To, env("ACGRID_TO"))
	if v := env("ACGRID_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Timeout = d
		}
	}
	if v := env("ACGRID_VERBOSE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			dst.Verbose = b
		}
	}
	applyOutputMode(dst, env("ACGRID_OUTPUT"))
}

func applyOutputMode(dst *globalOptions, mode string) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "json":
		dst.JSON, dst.JSONL, dst.Plain = true, false, false
	case "jsonl":
		dst.JSON, dst.JSONL, dst.Plain = false, true, false
	case "plain":
		dst.JSON, dst.JSONL, dst.Plain = false, false, true
	}
}

func applyFlags(cmd *cobra.Command, dst, fromFlags *globalOptions) {
	copyIfChanged(cmd, "json", func() { dst.JSON = fromFlags.JSON })
	copyIfChanged(cmd, "jsonl", func() { dst.JSONL = fromFlags.JSONL })
	copyIfChanged(cmd, "plain", func() { dst.Plain = fromFlags.Plain })
	copyIfChanged(cmd, "fields", func() { dst.Fields = fromFlags.Fields })
	copyIfChanged(cmd, "quiet", func() { dst.Quiet = fromFlags.Quiet })
	copyIfChanged(cmd, "verbose", func() { dst.Verbose = fromFlags.Verbose })
	copyIfChanged(cmd, "no-color", func() { dst.NoColor = fromFlags.NoColor })
	copyIfChanged(cmd, "profile", func() { dst.Profile = fromFlags.Profile })
	copyIfChanged(cmd, "config", func() { dst.Config = fromFlags.Config })
	copyIfChanged(cmd, "tz", func() { dst.TZ = fromFlags.TZ })
	copyIfChanged(cmd, "week-start", func() { dst.WeekStart = fromFlags.WeekStart })
	copyIfChanged(cmd, "axis", func() { dst.Axis = fromFlags.Axis })
	copyIfChanged(cmd, "from", func() { dst.From = fromFlags.From })
	copyIfChanged(cmd, "to", func() { dst.To = fromFlags.To })
	copyIfChanged(cmd, "timeout", func() { dst.Timeout = fromFlags.Timeout })
	copyIfChanged(cmd, "schema-version", func() { dst.SchemaVersion = fromFlags.SchemaVersion })

	// A single explicit output flag beats env and config; conflicting flags
	// survive so buildContext can reject them.
	modeSet := 0
	var last string
	for _, name := range []string{"json", "jsonl", "plain"} {
		if flagValueChanged(cmd, name) && flagBool(cmd, name) {
			modeSet++
			last = name
		}
	}
	if modeSet == 1 {
		applyOutputMode(dst, last)
	}
}

func flagBool(cmd *cobra.Command, name string) bool {
	f := cmd.Flags().Lookup(name)
	if f == nil {
		f = cmd.InheritedFlags().Lookup(name)
	}
	if f == nil {
		return false
	}
	b, err := strconv.ParseBool(f.Value.String())
	return err == nil && b
}

func copyIfChanged(cmd *cobra.Command, name string, fn func()) {
	if flagValueChanged(cmd, name) {
		fn()
	}
}

func flagValueChanged(cmd *cobra.Command, name string) bool {
	if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
		return true
	}
	if f := cmd.InheritedFlags().Lookup(name); f != nil && f.Changed {
		return true
	}
	return false
}

func readConfigFile(path string) (fileConfig, bool) {
	if strings.TrimSpace(path) == "" {
		return fileConfig{}, false
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, false
	}
	var cfg fileConfig
	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return fileConfig{}, false
	}
	return cfg, true
}

func defaultUserConfigPath() string {
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, "acgrid", "config.toml")
	}
	home := strings.TrimSpace(os.Getenv("HOME"))
	if home == "" {
		return ""
	}
	return filepath.Join(home, ".config", "acgrid", "config.toml")
}

func setIfNotEmpty(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func env(k string) string { return strings.TrimSpace(os.Getenv(k)) }

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
