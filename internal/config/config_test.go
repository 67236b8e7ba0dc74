package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
monitored_devices = ["VID_046D&PID_085C", "PID_C52B&VID_046D"]
disconnect_cmds = ['/SetValue "\\.\DISPLAY1\Monitor0" 60 15', '/SetValue "\\.\DISPLAY2\Monitor0" 60 15']
connect_cmds = ['/SetValue "\\.\DISPLAY1\Monitor0" 60 17']

[watcher]
cooldown = "3s"
settle_delay = "250ms"
poll_interval = "1s"

[tool]
name = "/opt/cmm/ControlMyMonitor.exe"
timeout = "10s"

[notify]
enabled = true

[status]
file = "/run/user/1000/ms.json"
`
	path := writeTempConfig(t, content)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cfg.MonitoredDevices) != 2 {
		t.Errorf("monitored_devices len = %d, want 2", len(cfg.MonitoredDevices))
	}
	if len(cfg.DisconnectCmds) != 2 {
		t.Errorf("disconnect_cmds len = %d, want 2", len(cfg.DisconnectCmds))
	}
	if want := `/SetValue "\\.\DISPLAY1\Monitor0" 60 17`; cfg.ConnectCmds[0] != want {
		t.Errorf("connect_cmds[0] = %q, want %q", cfg.ConnectCmds[0], want)
	}

	if cfg.Watcher.Cooldown != Duration(3*time.Second) {
		t.Errorf("watcher.cooldown = %v, want 3s", time.Duration(cfg.Watcher.Cooldown))
	}
	if cfg.Watcher.SettleDelay != Duration(250*time.Millisecond) {
		t.Errorf("watcher.settle_delay = %v, want 250ms", time.Duration(cfg.Watcher.SettleDelay))
	}
	if cfg.Watcher.PollInterval != Duration(time.Second) {
		t.Errorf("watcher.poll_interval = %v, want 1s", time.Duration(cfg.Watcher.PollInterval))
	}

	if cfg.Tool.Name != "/opt/cmm/ControlMyMonitor.exe" {
		t.Errorf("tool.name = %q", cfg.Tool.Name)
	}
	if cfg.Tool.CommandTimeout() != 10*time.Second {
		t.Errorf("tool.timeout = %v, want 10s", cfg.Tool.CommandTimeout())
	}
	if !cfg.Notify.Enabled {
		t.Error("notify.enabled = false, want true")
	}
	if cfg.Status.File != "/run/user/1000/ms.json" {
		t.Errorf("status.file = %q", cfg.Status.File)
	}

	if cfg.Dir() != filepath.Dir(path) {
		t.Errorf("Dir() = %q, want %q", cfg.Dir(), filepath.Dir(path))
	}
}

func TestLoad_Defaults(t *testing.T) {
	content := `
monitored_devices = ["VID_046D&PID_085C"]
disconnect_cmds = ["a"]
connect_cmds = ["b"]
`
	path := writeTempConfig(t, content)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Watcher.Cooldown != DefaultCooldown {
		t.Errorf("cooldown = %v, want default %v", cfg.Watcher.Cooldown, DefaultCooldown)
	}
	if cfg.Watcher.SettleDelay != DefaultSettleDelay {
		t.Errorf("settle_delay = %v, want default %v", cfg.Watcher.SettleDelay, DefaultSettleDelay)
	}
	if cfg.Watcher.PollInterval != 0 {
		t.Errorf("poll_interval = %v, want 0", cfg.Watcher.PollInterval)
	}
	if cfg.Tool.Name != DefaultToolName {
		t.Errorf("tool.name = %q, want default %q", cfg.Tool.Name, DefaultToolName)
	}
	if cfg.Tool.CommandTimeout() != time.Duration(DefaultToolTimeout) {
		t.Errorf("tool.timeout = %v, want default %v", cfg.Tool.CommandTimeout(), time.Duration(DefaultToolTimeout))
	}
	if cfg.Notify.Enabled {
		t.Error("notify.enabled = true, want false")
	}
}

func TestLoad_ZeroTimeoutDisables(t *testing.T) {
	content := `
monitored_devices = ["VID_046D&PID_085C"]
disconnect_cmds = ["a"]
connect_cmds = ["b"]

[tool]
timeout = "0s"
`
	cfg, err := Load(writeTempConfig(t, content))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Tool.CommandTimeout() != 0 {
		t.Errorf("tool.timeout = %v, want 0", cfg.Tool.CommandTimeout())
	}
}

func TestLoad_MissingMonitoredDevices(t *testing.T) {
	content := `
disconnect_cmds = ["a"]
connect_cmds = ["b"]
`
	_, err := Load(writeTempConfig(t, content))
	if err == nil {
		t.Fatal("expected error for missing monitored_devices")
	}
	if !strings.Contains(err.Error(), "monitored_devices") {
		t.Errorf("error %q does not name monitored_devices", err)
	}
}

func TestLoad_MissingCommandLists(t *testing.T) {
	content := `
monitored_devices = ["VID_046D&PID_085C"]
`
	_, err := Load(writeTempConfig(t, content))
	if err == nil {
		t.Fatal("expected error for missing command lists")
	}
	for _, field := range []string{"disconnect_cmds", "connect_cmds"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("error %q does not name %s", err, field)
		}
	}
}

func TestLoad_NegativeDuration(t *testing.T) {
	content := `
monitored_devices = ["VID_046D&PID_085C"]
disconnect_cmds = ["a"]
connect_cmds = ["b"]

[watcher]
cooldown = "-1s"
`
	if _, err := Load(writeTempConfig(t, content)); err == nil {
		t.Fatal("expected error for negative cooldown")
	}
}

func TestLoad_BadDuration(t *testing.T) {
	content := `
monitored_devices = ["VID_046D&PID_085C"]
disconnect_cmds = ["a"]
connect_cmds = ["b"]

[watcher]
cooldown = "soon"
`
	if _, err := Load(writeTempConfig(t, content)); err == nil {
		t.Fatal("expected error for unparseable duration")
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/config.toml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want os.ErrNotExist in chain", err)
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	content := `this is not valid toml {{{`
	path := writeTempConfig(t, content)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for invalid TOML")
	}
}

func TestResolve_ExplicitPath(t *testing.T) {
	got, err := Resolve("/some/where/config.toml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "/some/where/config.toml" {
		t.Errorf("Resolve() = %q, want explicit path", got)
	}
}

func TestResolve_OverrideDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(ExampleConfig), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(OverrideEnv, dir)

	got, err := Resolve("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != path {
		t.Errorf("Resolve() = %q, want %q", got, path)
	}
}

func TestGenerateExampleConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "monitor-switcher", "config.toml")

	result, err := GenerateExampleConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result != path {
		t.Errorf("returned path = %q, want %q", result, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("cannot read generated file: %v", err)
	}

	if string(data) != ExampleConfig {
		t.Error("generated config does not match ExampleConfig")
	}

	// Verify the generated config is valid and loadable
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("generated config is not loadable: %v", err)
	}
	if cfg.MonitoredDevices[0] != "VID_046D&PID_C52B" {
		t.Errorf("example monitored_devices[0] = %q", cfg.MonitoredDevices[0])
	}
	if want := `/SetValue "\\.\DISPLAY1\Monitor0" 60 15`; cfg.DisconnectCmds[0] != want {
		t.Errorf("example disconnect_cmds[0] = %q, want %q", cfg.DisconnectCmds[0], want)
	}
}

func TestGenerateExampleConfig_ExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	if err := os.WriteFile(path, []byte("existing"), 0644); err != nil {
		t.Fatalf("cannot create existing file: %v", err)
	}

	_, err := GenerateExampleConfig(path)
	if err == nil {
		t.Fatal("expected error for existing file")
	}

	data, _ := os.ReadFile(path)
	if string(data) != "existing" {
		t.Error("existing config was overwritten")
	}
}

func TestDefaultPath_XDGConfigHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/xdg/config")

	path, err := DefaultPath()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := filepath.Join("/custom/xdg/config", "monitor-switcher", "config.toml")
	if path != expected {
		t.Errorf("path = %q, want %q", path, expected)
	}
}

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("cannot write temp config: %v", err)
	}
	return path
}
