package testlog

import (
	"os"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const EnvLogLevel = "SLALOMBOARD_TEST_LOG_LEVEL"

var configureOnce sync.Once

// Start configures the global logger for tests (once) and tags the
// current test in the stream.
func Start(t *testing.T) {
	t.Helper()
	configureOnce.Do(configure)
	log.Debug().Str("test", t.Name()).Msg("test start")
}

func configure() {
	level := zerolog.DebugLevel
	if raw := os.Getenv(EnvLogLevel); raw != "" {
		if parsed, err := zerolog.ParseLevel(raw); err == nil {
			level = parsed
		}
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true}
	log.Logger = zerolog.New(writer).Level(level).With().Logger()
}
