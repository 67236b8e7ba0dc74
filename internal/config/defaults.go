package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	appName    = "monitor-switcher"
	configFile = "config.toml"

	// OverrideEnv names a directory searched for config.toml before the
	// XDG config directories.
	OverrideEnv = "MONITOR_SWITCHER_CONFIG"
)

// Default values for optional config fields.
const (
	DefaultCooldown    = Duration(2 * time.Second)
	DefaultSettleDelay = Duration(500 * time.Millisecond)
	DefaultToolTimeout = Duration(30 * time.Second)
	DefaultToolName    = "ControlMyMonitor.exe"
)

// ExampleConfig is the template for -init with documentation comments.
const ExampleConfig = `# monitor-switcher configuration

# Required: USB devices whose presence means "this machine owns the desk".
# Run monitor-switcher -list to see the tokens of connected devices.
monitored_devices = ["VID_046D&PID_C52B"]

# Required: tool arguments run, in order, when every monitored device is gone.
disconnect_cmds = [
  '/SetValue "\\.\DISPLAY1\Monitor0" 60 15',
]

# Required: tool arguments run, in order, when a monitored device returns.
connect_cmds = [
  '/SetValue "\\.\DISPLAY1\Monitor0" 60 17',
]

[watcher]
# Notifications arriving this soon after a completed check are dropped.
cooldown = "2s"

# Wait this long after a notification before checking devices.
settle_delay = "500ms"

# Poll for device changes instead of using OS notifications ("0s" = off).
poll_interval = "0s"

[tool]
# Monitor control tool. A relative name is looked up next to this file first.
name = "ControlMyMonitor.exe"

# Kill a single tool invocation after this long ("0s" = wait forever).
timeout = "30s"

[notify]
# Show a desktop notification when input is switched.
enabled = false

[status]
# JSON status snapshot. Empty uses $XDG_RUNTIME_DIR/monitor-switcher.json.
file = ""
`

// GenerateExampleConfig writes the example config to the given path.
// If path is empty, it uses the default XDG path. An existing file is
// never overwritten.
// Returns the path where the file was written.
func GenerateExampleConfig(path string) (string, error) {
	if path == "" {
		defaultPath, err := DefaultPath()
		if err != nil {
			return "", err
		}
		path = defaultPath
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("cannot create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("config file already exists: %s", path)
		}
		return "", fmt.Errorf("cannot write config file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(ExampleConfig); err != nil {
		return "", fmt.Errorf("cannot write config file: %w", err)
	}
	return path, nil
}
