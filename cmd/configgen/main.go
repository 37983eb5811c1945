package main

import (
	"flag"
	"log"

	"github.com/paddleworks/slalomboard/internal/config"
)

func main() {
	kind := flag.String("kind", "board", "config kind: board|relay|mock")
	output := flag.String("output", "", "output path for config template")
	validate := flag.Bool("validate", false, "validate an existing config file")
	input := flag.String("input", "", "config path for validation (defaults to per-kind cmd path)")
	force := flag.Bool("force", false, "overwrite existing config file")
	flag.Parse()

	if *validate {
		path := *input
		if path == "" {
			path = defaultPath(*kind)
		}

		switch *kind {
		case "board":
			if _, err := config.Load(path); err != nil {
				log.Fatal(err)
			}
		case "relay":
			if _, err := config.LoadRelay(path); err != nil {
				log.Fatal(err)
			}
		case "mock":
			if _, err := config.LoadMock(path); err != nil {
				log.Fatal(err)
			}
		default:
			log.Fatalf("unknown kind: %s", *kind)
		}
		log.Printf("Validated %s config at %s", *kind, path)
		return
	}

	target := *output
	if target == "" {
		target = defaultPath(*kind)
	}

	if err := config.WriteTemplate(target, *kind, *force); err != nil {
		log.Fatal(err)
	}
	log.Printf("Wrote %s config template to %s", *kind, target)
}

func defaultPath(kind string) string {
	switch kind {
	case "board":
		return "cmd/boardctl/config.toml"
	case "relay":
		return "cmd/relayctl/config.toml"
	case "mock":
		return "cmd/mockctl/config.toml"
	default:
		log.Fatalf("unknown kind: %s", kind)
		return ""
	}
}
