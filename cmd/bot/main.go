package main

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"

	corecmd "repairbot/core/cmd"
	"repairbot/internal/app"
)

func main() {
	// Local dev convenience; a missing .env is not an error.
	_ = godotenv.Load()

	err := corecmd.Run(corecmd.Options{
		ConfigEnvVar:      "CONFIG_PATH",
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return app.LoadConfig(path)
		},
		Bootstrap: func(cfg corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			appCfg, ok := cfg.(*app.Config)
			if !ok {
				return nil, fmt.Errorf("unexpected config type %T", cfg)
			}
			return app.New(appCfg)
		},
	})
	if err != nil {
		log.Fatalf("bot exited: %v", err)
	}
}
