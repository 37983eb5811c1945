package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/paddleworks/slalomboard/internal/testutil/testlog"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		EnvProviderKind, EnvProviderAddress, EnvWebListen,
		EnvLookupBaseURL, EnvSettingsPath,
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultsValidate(t *testing.T) {
	testlog.Start(t)
	clearEnv(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if cfg.Provider.Kind != ProviderTiming {
		t.Fatalf("default kind: %s", cfg.Provider.Kind)
	}
	if cfg.Transport.BackoffFloor != time.Second || cfg.Transport.BackoffCap != 30*time.Second {
		t.Fatalf("default backoff window: %v..%v", cfg.Transport.BackoffFloor, cfg.Transport.BackoffCap)
	}
	if cfg.Scoreboard.HighlightWindow != 3*time.Second || cfg.Scoreboard.DepartWindow != 3*time.Second {
		t.Fatalf("default windows: %+v", cfg.Scoreboard)
	}
}

func TestLoadOverlaysPartialFile(t *testing.T) {
	testlog.Start(t)
	clearEnv(t)
	path := writeConfig(t, `
[provider]
kind = "Replay"
recording_path = "captures/finals.ndjson"
replay_speed = 4.0

[scoreboard]
highlight_window = "1500ms"

[web]
cors_origins = ["https://board.example.org", " "]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Provider.Kind != ProviderReplay {
		t.Fatalf("kind not normalized: %s", cfg.Provider.Kind)
	}
	if cfg.Provider.RecordingPath != "captures/finals.ndjson" || cfg.Provider.ReplaySpeed != 4.0 {
		t.Fatalf("replay fields: %+v", cfg.Provider)
	}
	if cfg.Scoreboard.HighlightWindow != 1500*time.Millisecond {
		t.Fatalf("highlight window: %v", cfg.Scoreboard.HighlightWindow)
	}
	// Untouched sections keep their defaults.
	if cfg.Scoreboard.DepartWindow != 3*time.Second {
		t.Fatalf("depart window overwritten: %v", cfg.Scoreboard.DepartWindow)
	}
	if cfg.Web.ListenAddr != ":8130" {
		t.Fatalf("web listen overwritten: %s", cfg.Web.ListenAddr)
	}
	if len(cfg.Web.CORSOrigins) != 1 || cfg.Web.CORSOrigins[0] != "https://board.example.org" {
		t.Fatalf("cors origins: %v", cfg.Web.CORSOrigins)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	testlog.Start(t)
	clearEnv(t)
	path := writeConfig(t, `
[provider]
address = "192.168.1.50:8128"
`)
	t.Setenv(EnvProviderAddress, "10.0.0.5:9000")
	t.Setenv(EnvWebListen, ":9130")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Provider.Address != "10.0.0.5:9000" {
		t.Fatalf("env did not win: %s", cfg.Provider.Address)
	}
	if cfg.Web.ListenAddr != ":9130" {
		t.Fatalf("web listen: %s", cfg.Web.ListenAddr)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	testlog.Start(t)
	clearEnv(t)
	cases := []struct {
		name string
		body string
		want string
	}{
		{
			name: "unknown kind",
			body: "[provider]\nkind = \"carrier\"\n",
			want: "unknown provider kind",
		},
		{
			name: "replay without recording",
			body: "[provider]\nkind = \"replay\"\n",
			want: "recording_path required",
		},
		{
			name: "gateway without address",
			body: "[provider]\nkind = \"gateway\"\naddress = \"\"\n",
			want: "address required",
		},
		{
			name: "bad duration",
			body: "[provider]\ndial_timeout = \"fast\"\n",
			want: "parse provider.dial_timeout",
		},
		{
			name: "backoff cap below floor",
			body: "[transport]\nbackoff_floor = \"10s\"\nbackoff_cap = \"2s\"\n",
			want: "backoff_cap",
		},
	}
	for _, tc := range cases {
		path := writeConfig(t, tc.body)
		_, err := Load(path)
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: error %q does not mention %q", tc.name, err, tc.want)
		}
	}
}

func TestLoadRelayOverlay(t *testing.T) {
	testlog.Start(t)
	path := writeConfig(t, `
upstream_address = "timing.venue.lan:8128"
capture_path = "captures/heats.ndjson"
capture_note = "semifinal heats"

[transport]
backoff_cap = "10s"
`)
	cfg, err := LoadRelay(path)
	if err != nil {
		t.Fatalf("load relay: %v", err)
	}
	if cfg.UpstreamAddress != "timing.venue.lan:8128" {
		t.Fatalf("upstream: %s", cfg.UpstreamAddress)
	}
	if cfg.ListenAddr != ":8129" {
		t.Fatalf("listen default lost: %s", cfg.ListenAddr)
	}
	if cfg.CapturePath != "captures/heats.ndjson" || cfg.CaptureNote != "semifinal heats" {
		t.Fatalf("capture fields: %+v", cfg)
	}
	if cfg.Transport.BackoffCap != 10*time.Second || cfg.Transport.BackoffFloor != time.Second {
		t.Fatalf("transport overlay: %+v", cfg.Transport)
	}
}

func TestLoadMockOverlay(t *testing.T) {
	testlog.Start(t)
	path := writeConfig(t, "tick = \"100ms\"\nloop = false\n")
	cfg, err := LoadMock(path)
	if err != nil {
		t.Fatalf("load mock: %v", err)
	}
	if cfg.Tick != 100*time.Millisecond || cfg.Loop {
		t.Fatalf("mock overlay: %+v", cfg)
	}
	if cfg.ListenAddr != ":8128" {
		t.Fatalf("mock listen default lost: %s", cfg.ListenAddr)
	}
}

func TestTemplatesLoadCleanly(t *testing.T) {
	testlog.Start(t)
	clearEnv(t)
	dir := t.TempDir()

	boardPath := filepath.Join(dir, "board.toml")
	if err := WriteTemplate(boardPath, "board", false); err != nil {
		t.Fatalf("write board template: %v", err)
	}
	if _, err := Load(boardPath); err != nil {
		t.Fatalf("board template does not load: %v", err)
	}

	relayPath := filepath.Join(dir, "relay.toml")
	if err := WriteTemplate(relayPath, "relay", false); err != nil {
		t.Fatalf("write relay template: %v", err)
	}
	if _, err := LoadRelay(relayPath); err != nil {
		t.Fatalf("relay template does not load: %v", err)
	}

	mockPath := filepath.Join(dir, "mock.toml")
	if err := WriteTemplate(mockPath, "mock", false); err != nil {
		t.Fatalf("write mock template: %v", err)
	}
	if _, err := LoadMock(mockPath); err != nil {
		t.Fatalf("mock template does not load: %v", err)
	}

	if err := WriteTemplate(boardPath, "board", false); err == nil {
		t.Fatalf("overwrite without force must fail")
	}
	if err := WriteTemplate(boardPath, "board", true); err != nil {
		t.Fatalf("forced overwrite: %v", err)
	}
	if _, err := Template("carrier"); err == nil {
		t.Fatalf("unknown template kind must fail")
	}
}

func TestConvertMappings(t *testing.T) {
	cfg := DefaultConfig()
	backoff := cfg.Transport.Backoff()
	if backoff.InitialDelay != cfg.Transport.BackoffFloor ||
		backoff.MaxDelay != cfg.Transport.BackoffCap ||
		backoff.Multiplier != cfg.Transport.BackoffMultiplier {
		t.Fatalf("backoff mapping: %+v", backoff)
	}
	if cfg.Transport.Limits().MaxPayloadBytes != cfg.Transport.MaxPayloadBytes {
		t.Fatalf("limits mapping")
	}
	opts := cfg.Scoreboard.Options()
	if opts.HighlightWindow != cfg.Scoreboard.HighlightWindow || opts.DepartWindow != cfg.Scoreboard.DepartWindow {
		t.Fatalf("options mapping: %+v", opts)
	}
}
