package configs

import (
	"flag"
	"log"
	"os"

	"github.com/hilthontt/breakout/internal/infrastructure/env"
)

// DetermineConfigPath returns "" when no file is found; Load then runs on
// defaults and environment overrides only.
func DetermineConfigPath() string {
	var configPath string

	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	if configPath == "" {
		configPath = env.GetString("BREAKOUT_CONFIG", "")
	}

	if configPath == "" {
		candidates := []string{
			"./config.yaml",
			"./config.yml",
			"./tmp/config.yaml",
			"../../config.yaml", // local dev from cmd/http
			"/etc/breakout/config.yaml",
			"/app/config.yaml",
		}

		for _, p := range candidates {
			if _, err := os.Stat(p); err == nil {
				configPath = p
				break
			}
		}
	}

	if configPath == "" {
		log.Println("config file not found, running on defaults. Use --config or BREAKOUT_CONFIG env")
	}

	return configPath
}
