package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog/log"
)

// RelayConfig drives relayctl: one upstream timing link fanned out as
// JSON envelopes to downstream line-oriented clients.
type RelayConfig struct {
	UpstreamAddress string
	ListenAddr      string
	DialTimeout     time.Duration
	Transport       TransportConfig
	// CapturePath enables recording; every relayed event is appended
	// to the file at this path.
	CapturePath string
	CaptureNote string
}

// MockConfig drives mockctl, the scripted timing server.
type MockConfig struct {
	ListenAddr string
	// Tick paces the script; one document per tick.
	Tick  time.Duration
	Loop  bool
	Title string
}

func DefaultRelayConfig() RelayConfig {
	return RelayConfig{
		UpstreamAddress: "127.0.0.1:8128",
		ListenAddr:      ":8129",
		DialTimeout:     5 * time.Second,
		Transport:       DefaultConfig().Transport,
	}
}

func DefaultMockConfig() MockConfig {
	return MockConfig{
		ListenAddr: ":8128",
		Tick:       750 * time.Millisecond,
		Loop:       true,
		Title:      "Slalom Demo",
	}
}

type relayFile struct {
	UpstreamAddress string        `toml:"upstream_address"`
	Listen          string        `toml:"listen"`
	DialTimeout     string        `toml:"dial_timeout"`
	Transport       transportFile `toml:"transport"`
	CapturePath     string        `toml:"capture_path"`
	CaptureNote     string        `toml:"capture_note"`
}

type mockFile struct {
	Listen string `toml:"listen"`
	Tick   string `toml:"tick"`
	Loop   bool   `toml:"loop"`
	Title  string `toml:"title"`
}

// LoadRelay builds the relayctl configuration: defaults, then the TOML
// file when path is non-empty.
func LoadRelay(path string) (RelayConfig, error) {
	cfg := DefaultRelayConfig()
	if path != "" {
		var raw relayFile
		meta, err := toml.DecodeFile(path, &raw)
		if err != nil {
			return RelayConfig{}, fmt.Errorf("load relay config: %w", err)
		}
		if meta.IsDefined("upstream_address") {
			cfg.UpstreamAddress = strings.TrimSpace(raw.UpstreamAddress)
		}
		if meta.IsDefined("listen") {
			cfg.ListenAddr = strings.TrimSpace(raw.Listen)
		}
		if err := overlayDuration(meta, &cfg.DialTimeout, raw.DialTimeout, "dial_timeout"); err != nil {
			return RelayConfig{}, err
		}
		if err := overlayTransport(meta, raw.Transport, &cfg.Transport); err != nil {
			return RelayConfig{}, err
		}
		if meta.IsDefined("capture_path") {
			cfg.CapturePath = strings.TrimSpace(raw.CapturePath)
		}
		if meta.IsDefined("capture_note") {
			cfg.CaptureNote = strings.TrimSpace(raw.CaptureNote)
		}
	}
	if err := ValidateRelay(cfg); err != nil {
		return RelayConfig{}, err
	}
	log.Info().
		Str("upstream", cfg.UpstreamAddress).
		Str("listen", cfg.ListenAddr).
		Bool("capture", cfg.CapturePath != "").
		Msg("relay config loaded")
	return cfg, nil
}

// LoadMock builds the mockctl configuration: defaults, then the TOML
// file when path is non-empty.
func LoadMock(path string) (MockConfig, error) {
	cfg := DefaultMockConfig()
	if path != "" {
		var raw mockFile
		meta, err := toml.DecodeFile(path, &raw)
		if err != nil {
			return MockConfig{}, fmt.Errorf("load mock config: %w", err)
		}
		if meta.IsDefined("listen") {
			cfg.ListenAddr = strings.TrimSpace(raw.Listen)
		}
		if err := overlayDuration(meta, &cfg.Tick, raw.Tick, "tick"); err != nil {
			return MockConfig{}, err
		}
		if meta.IsDefined("loop") {
			cfg.Loop = raw.Loop
		}
		if meta.IsDefined("title") {
			cfg.Title = strings.TrimSpace(raw.Title)
		}
	}
	if err := ValidateMock(cfg); err != nil {
		return MockConfig{}, err
	}
	return cfg, nil
}

// ValidateRelay rejects configurations relayctl cannot run with.
func ValidateRelay(cfg RelayConfig) error {
	if strings.TrimSpace(cfg.UpstreamAddress) == "" {
		return fmt.Errorf("relay config missing upstream_address")
	}
	if strings.TrimSpace(cfg.ListenAddr) == "" {
		return fmt.Errorf("relay config missing listen")
	}
	if cfg.DialTimeout <= 0 {
		return fmt.Errorf("dial_timeout must be positive")
	}
	return validateTransport(cfg.Transport)
}

// ValidateMock rejects configurations mockctl cannot run with.
func ValidateMock(cfg MockConfig) error {
	if strings.TrimSpace(cfg.ListenAddr) == "" {
		return fmt.Errorf("mock config missing listen")
	}
	if cfg.Tick <= 0 {
		return fmt.Errorf("tick must be positive")
	}
	return nil
}
