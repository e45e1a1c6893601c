package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/Jacobbrewer1/satla/cmd/bot/config"
	"github.com/Jacobbrewer1/satla/pkg/logging"
)

func main() {
	a, err := InitializeApp()
	if err != nil {
		log.Fatalln(err)
	}

	cfg, err := config.Parse(a.Logger)
	if err != nil {
		a.Error("Error parsing configuration", slog.String(logging.KeyError, err.Error()))
		os.Exit(1)
	}

	a.Info("Starting application")
	if err := a.Run(cfg); err != nil {
		a.Error("Error running application", slog.String(logging.KeyError, err.Error()))
		os.Exit(1)
	}
}
