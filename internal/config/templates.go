package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "board":
		return boardTemplate, nil
	case "relay":
		return relayTemplate, nil
	case "mock":
		return mockTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const boardTemplate = `[provider]
kind = "timing" # timing | gateway | replay
address = "127.0.0.1:8128"
dial_timeout = "5s"
recording_path = ""
replay_speed = 1.0
replay_loop = false

[transport]
backoff_floor = "1s"
backoff_cap = "30s"
backoff_multiplier = 2.0
max_payload_bytes = 8388608

[scoreboard]
highlight_window = "3s"
depart_window = "3s"

[results]
lookup_base_url = ""
lookup_timeout = "5s"

[web]
listen = ":8130"
cors_origins = ["http://localhost:3000"]

[settings]
path = "slalomboard.db"
`

const relayTemplate = `upstream_address = "127.0.0.1:8128"
listen = ":8129"
dial_timeout = "5s"
capture_path = ""
capture_note = ""

[transport]
backoff_floor = "1s"
backoff_cap = "30s"
backoff_multiplier = 2.0
max_payload_bytes = 8388608
`

const mockTemplate = `listen = ":8128"
tick = "750ms"
loop = true
title = "Slalom Demo"
`
