package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/xdg"
	"github.com/pelletier/go-toml/v2"
)

// Duration wraps time.Duration for TOML string parsing.
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Config represents the complete monitor-switcher configuration.
type Config struct {
	MonitoredDevices []string      `toml:"monitored_devices"`
	DisconnectCmds   []string      `toml:"disconnect_cmds"`
	ConnectCmds      []string      `toml:"connect_cmds"`
	Watcher          WatcherConfig `toml:"watcher"`
	Tool             ToolConfig    `toml:"tool"`
	Notify           NotifyConfig  `toml:"notify"`
	Status           StatusConfig  `toml:"status"`

	// path is the file the config was loaded from.
	path string
}

// WatcherConfig tunes debouncing and event delivery.
type WatcherConfig struct {
	Cooldown    Duration `toml:"cooldown"`
	SettleDelay Duration `toml:"settle_delay"`
	// PollInterval > 0 replaces native hardware notifications with polling.
	PollInterval Duration `toml:"poll_interval"`
}

// ToolConfig names the monitor control tool.
type ToolConfig struct {
	Name string `toml:"name"`
	// Timeout bounds one invocation. nil means the default; zero disables.
	Timeout *Duration `toml:"timeout"`
}

// NotifyConfig enables desktop notifications on transitions.
type NotifyConfig struct {
	Enabled bool `toml:"enabled"`
}

// StatusConfig sets where the JSON status snapshot is written.
type StatusConfig struct {
	File string `toml:"file"`
}

// Dir returns the directory holding the config file.
func (c *Config) Dir() string {
	if c.path == "" {
		return ""
	}
	return filepath.Dir(c.path)
}

// CommandTimeout returns the per-command tool timeout.
func (t ToolConfig) CommandTimeout() time.Duration {
	if t.Timeout == nil {
		return time.Duration(DefaultToolTimeout)
	}
	return time.Duration(*t.Timeout)
}

// DefaultPath returns the XDG location used by -init.
// On Unix, checks $XDG_CONFIG_HOME first, then falls back to ~/.config.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, configFile), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName, configFile), nil
}

// Resolve picks the config file to load: the explicit path if given, then
// config.toml next to the executable, then the XDG config directories.
func Resolve(path string) (string, error) {
	if path != "" {
		return path, nil
	}

	if exe, err := os.Executable(); err == nil {
		local := filepath.Join(filepath.Dir(exe), configFile)
		if _, err := os.Stat(local); err == nil {
			return local, nil
		}
	}

	paths := xdg.Paths{
		Override:  os.Getenv(OverrideEnv),
		XDGSuffix: appName,
	}
	found, err := paths.ConfigFile(configFile)
	if err != nil {
		return "", fmt.Errorf("no config file found (run with -init to create one): %w", err)
	}
	return found, nil
}

// Load reads and parses a config file from the given path.
// If path is empty, it is resolved with Resolve.
func Load(path string) (*Config, error) {
	path, err := Resolve(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file: %w", err)
	}

	cfg := &Config{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config file: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	cfg.path = path
	return cfg, nil
}

// applyDefaults sets default values for optional fields.
func applyDefaults(cfg *Config) {
	if cfg.Watcher.Cooldown == 0 {
		cfg.Watcher.Cooldown = DefaultCooldown
	}
	if cfg.Watcher.SettleDelay == 0 {
		cfg.Watcher.SettleDelay = DefaultSettleDelay
	}
	if cfg.Tool.Name == "" {
		cfg.Tool.Name = DefaultToolName
	}
	if cfg.Tool.Timeout == nil {
		d := DefaultToolTimeout
		cfg.Tool.Timeout = &d
	}
}

// validate checks that required fields are present.
func validate(cfg *Config) error {
	var errs []error

	if len(cfg.MonitoredDevices) == 0 {
		errs = append(errs, errors.New("monitored_devices must list at least one VID_xxxx&PID_yyyy token"))
	}
	if cfg.DisconnectCmds == nil {
		errs = append(errs, errors.New("disconnect_cmds is required"))
	}
	if cfg.ConnectCmds == nil {
		errs = append(errs, errors.New("connect_cmds is required"))
	}
	if cfg.Watcher.Cooldown < 0 {
		errs = append(errs, errors.New("watcher.cooldown must not be negative"))
	}
	if cfg.Watcher.SettleDelay < 0 {
		errs = append(errs, errors.New("watcher.settle_delay must not be negative"))
	}
	if cfg.Watcher.PollInterval < 0 {
		errs = append(errs, errors.New("watcher.poll_interval must not be negative"))
	}
	if cfg.Tool.Timeout != nil && *cfg.Tool.Timeout < 0 {
		errs = append(errs, errors.New("tool.timeout must not be negative"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
