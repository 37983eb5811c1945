package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/paddleworks/slalomboard/internal/scoreboard"
	"github.com/paddleworks/slalomboard/internal/transport"
)

// Provider kinds accepted by Load.
const (
	ProviderTiming  = "timing"
	ProviderGateway = "gateway"
	ProviderReplay  = "replay"
)

// Environment overrides, applied after the file overlay. A .env file
// in the working directory is loaded first when present.
const (
	EnvProviderKind    = "SLALOMBOARD_PROVIDER_KIND"
	EnvProviderAddress = "SLALOMBOARD_PROVIDER_ADDRESS"
	EnvWebListen       = "SLALOMBOARD_WEB_LISTEN"
	EnvLookupBaseURL   = "SLALOMBOARD_LOOKUP_BASE_URL"
	EnvSettingsPath    = "SLALOMBOARD_SETTINGS_PATH"
)

// Config drives boardctl.
type Config struct {
	Provider   ProviderConfig
	Transport  TransportConfig
	Scoreboard ScoreboardConfig
	Results    ResultsConfig
	Web        WebConfig
	Settings   SettingsConfig
}

// ProviderConfig selects the upstream event source.
type ProviderConfig struct {
	Kind          string
	Address       string
	DialTimeout   time.Duration
	RecordingPath string
	ReplaySpeed   float64
	ReplayLoop    bool
}

// TransportConfig tunes the reconnect policy and frame limits shared by
// the live providers.
type TransportConfig struct {
	BackoffFloor      time.Duration
	BackoffCap        time.Duration
	BackoffMultiplier float64
	MaxPayloadBytes   uint64
}

// ScoreboardConfig tunes the display windows.
type ScoreboardConfig struct {
	HighlightWindow time.Duration
	DepartWindow    time.Duration
}

// ResultsConfig enables the best-of-two merge when LookupBaseURL is
// set; empty leaves second runs displayed as single runs.
type ResultsConfig struct {
	LookupBaseURL string
	LookupTimeout time.Duration
}

// WebConfig shapes the HTTP surface.
type WebConfig struct {
	ListenAddr  string
	CORSOrigins []string
}

// SettingsConfig locates the asset-settings store.
type SettingsConfig struct {
	Path string
}

// DefaultConfig is a runnable baseline: timing provider against a local
// mock, production backoff and windows.
func DefaultConfig() Config {
	backoff := transport.DefaultBackoff()
	windows := scoreboard.DefaultOptions()
	return Config{
		Provider: ProviderConfig{
			Kind:        ProviderTiming,
			Address:     "127.0.0.1:8128",
			DialTimeout: 5 * time.Second,
			ReplaySpeed: 1.0,
		},
		Transport: TransportConfig{
			BackoffFloor:      backoff.InitialDelay,
			BackoffCap:        backoff.MaxDelay,
			BackoffMultiplier: backoff.Multiplier,
			MaxPayloadBytes:   transport.DefaultLimits().MaxPayloadBytes,
		},
		Scoreboard: ScoreboardConfig{
			HighlightWindow: windows.HighlightWindow,
			DepartWindow:    windows.DepartWindow,
		},
		Results: ResultsConfig{
			LookupTimeout: 5 * time.Second,
		},
		Web: WebConfig{
			ListenAddr:  ":8130",
			CORSOrigins: []string{"http://localhost:3000"},
		},
		Settings: SettingsConfig{
			Path: "slalomboard.db",
		},
	}
}

// Load builds the boardctl configuration: defaults, the TOML file when
// path is non-empty, then environment overrides.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		var raw boardFile
		meta, err := toml.DecodeFile(path, &raw)
		if err != nil {
			return Config{}, fmt.Errorf("load board config: %w", err)
		}
		if err := overlayBoard(meta, raw, &cfg); err != nil {
			return Config{}, err
		}
	}
	loadDotenv()
	applyEnv(&cfg)
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	log.Info().
		Str("provider", cfg.Provider.Kind).
		Str("web_listen", cfg.Web.ListenAddr).
		Msg("board config loaded")
	return cfg, nil
}

type boardFile struct {
	Provider   providerFile   `toml:"provider"`
	Transport  transportFile  `toml:"transport"`
	Scoreboard scoreboardFile `toml:"scoreboard"`
	Results    resultsFile    `toml:"results"`
	Web        webFile        `toml:"web"`
	Settings   settingsFile   `toml:"settings"`
}

type providerFile struct {
	Kind          string  `toml:"kind"`
	Address       string  `toml:"address"`
	DialTimeout   string  `toml:"dial_timeout"`
	RecordingPath string  `toml:"recording_path"`
	ReplaySpeed   float64 `toml:"replay_speed"`
	ReplayLoop    bool    `toml:"replay_loop"`
}

type transportFile struct {
	BackoffFloor      string  `toml:"backoff_floor"`
	BackoffCap        string  `toml:"backoff_cap"`
	BackoffMultiplier float64 `toml:"backoff_multiplier"`
	MaxPayloadBytes   uint64  `toml:"max_payload_bytes"`
}

type scoreboardFile struct {
	HighlightWindow string `toml:"highlight_window"`
	DepartWindow    string `toml:"depart_window"`
}

type resultsFile struct {
	LookupBaseURL string `toml:"lookup_base_url"`
	LookupTimeout string `toml:"lookup_timeout"`
}

type webFile struct {
	Listen      string   `toml:"listen"`
	CORSOrigins []string `toml:"cors_origins"`
}

type settingsFile struct {
	Path string `toml:"path"`
}

func overlayBoard(meta toml.MetaData, raw boardFile, cfg *Config) error {
	if meta.IsDefined("provider", "kind") {
		cfg.Provider.Kind = strings.ToLower(strings.TrimSpace(raw.Provider.Kind))
	}
	if meta.IsDefined("provider", "address") {
		cfg.Provider.Address = strings.TrimSpace(raw.Provider.Address)
	}
	if err := overlayDuration(meta, &cfg.Provider.DialTimeout, raw.Provider.DialTimeout, "provider", "dial_timeout"); err != nil {
		return err
	}
	if meta.IsDefined("provider", "recording_path") {
		cfg.Provider.RecordingPath = strings.TrimSpace(raw.Provider.RecordingPath)
	}
	if meta.IsDefined("provider", "replay_speed") {
		cfg.Provider.ReplaySpeed = raw.Provider.ReplaySpeed
	}
	if meta.IsDefined("provider", "replay_loop") {
		cfg.Provider.ReplayLoop = raw.Provider.ReplayLoop
	}

	if err := overlayTransport(meta, raw.Transport, &cfg.Transport); err != nil {
		return err
	}

	if err := overlayDuration(meta, &cfg.Scoreboard.HighlightWindow, raw.Scoreboard.HighlightWindow, "scoreboard", "highlight_window"); err != nil {
		return err
	}
	if err := overlayDuration(meta, &cfg.Scoreboard.DepartWindow, raw.Scoreboard.DepartWindow, "scoreboard", "depart_window"); err != nil {
		return err
	}

	if meta.IsDefined("results", "lookup_base_url") {
		cfg.Results.LookupBaseURL = strings.TrimSpace(raw.Results.LookupBaseURL)
	}
	if err := overlayDuration(meta, &cfg.Results.LookupTimeout, raw.Results.LookupTimeout, "results", "lookup_timeout"); err != nil {
		return err
	}

	if meta.IsDefined("web", "listen") {
		cfg.Web.ListenAddr = strings.TrimSpace(raw.Web.Listen)
	}
	if meta.IsDefined("web", "cors_origins") {
		cfg.Web.CORSOrigins = normalizeOrigins(raw.Web.CORSOrigins)
	}

	if meta.IsDefined("settings", "path") {
		cfg.Settings.Path = strings.TrimSpace(raw.Settings.Path)
	}
	return nil
}

func overlayTransport(meta toml.MetaData, raw transportFile, cfg *TransportConfig) error {
	if err := overlayDuration(meta, &cfg.BackoffFloor, raw.BackoffFloor, "transport", "backoff_floor"); err != nil {
		return err
	}
	if err := overlayDuration(meta, &cfg.BackoffCap, raw.BackoffCap, "transport", "backoff_cap"); err != nil {
		return err
	}
	if meta.IsDefined("transport", "backoff_multiplier") {
		cfg.BackoffMultiplier = raw.BackoffMultiplier
	}
	if meta.IsDefined("transport", "max_payload_bytes") {
		cfg.MaxPayloadBytes = raw.MaxPayloadBytes
	}
	return nil
}

func overlayDuration(meta toml.MetaData, dst *time.Duration, raw string, keys ...string) error {
	if !meta.IsDefined(keys...) {
		return nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("parse %s: %w", strings.Join(keys, "."), err)
	}
	*dst = d
	return nil
}

func normalizeOrigins(in []string) []string {
	out := make([]string, 0, len(in))
	for _, origin := range in {
		v := strings.TrimSpace(origin)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}

func loadDotenv() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env not found, using process environment")
	}
}

func getenv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func applyEnv(cfg *Config) {
	if v := getenv(EnvProviderKind); v != "" {
		cfg.Provider.Kind = strings.ToLower(v)
	}
	if v := getenv(EnvProviderAddress); v != "" {
		cfg.Provider.Address = v
	}
	if v := getenv(EnvWebListen); v != "" {
		cfg.Web.ListenAddr = v
	}
	if v := getenv(EnvLookupBaseURL); v != "" {
		cfg.Results.LookupBaseURL = v
	}
	if v := getenv(EnvSettingsPath); v != "" {
		cfg.Settings.Path = v
	}
}

// Validate rejects configurations boardctl cannot run with.
func Validate(cfg Config) error {
	switch cfg.Provider.Kind {
	case ProviderTiming, ProviderGateway:
		if strings.TrimSpace(cfg.Provider.Address) == "" {
			return fmt.Errorf("provider.address required for %s provider", cfg.Provider.Kind)
		}
	case ProviderReplay:
		if strings.TrimSpace(cfg.Provider.RecordingPath) == "" {
			return fmt.Errorf("provider.recording_path required for replay provider")
		}
	default:
		return fmt.Errorf("unknown provider kind: %q", cfg.Provider.Kind)
	}
	if cfg.Provider.DialTimeout <= 0 {
		return fmt.Errorf("provider.dial_timeout must be positive")
	}
	if cfg.Provider.ReplaySpeed <= 0 {
		return fmt.Errorf("provider.replay_speed must be positive")
	}
	if err := validateTransport(cfg.Transport); err != nil {
		return err
	}
	if cfg.Scoreboard.HighlightWindow <= 0 || cfg.Scoreboard.DepartWindow <= 0 {
		return fmt.Errorf("scoreboard windows must be positive")
	}
	if cfg.Results.LookupTimeout <= 0 {
		return fmt.Errorf("results.lookup_timeout must be positive")
	}
	if strings.TrimSpace(cfg.Web.ListenAddr) == "" {
		return fmt.Errorf("web.listen required")
	}
	return nil
}

func validateTransport(cfg TransportConfig) error {
	if cfg.BackoffFloor <= 0 {
		return fmt.Errorf("transport.backoff_floor must be positive")
	}
	if cfg.BackoffCap < cfg.BackoffFloor {
		return fmt.Errorf("transport.backoff_cap must be >= backoff_floor")
	}
	if cfg.BackoffMultiplier < 1.0 {
		return fmt.Errorf("transport.backoff_multiplier must be >= 1.0")
	}
	return nil
}
