package main

import (
	"flag"
	"log/slog"
	"os"

	"lgpsreport/internal/app"
)

func main() {
	configFile := flag.String("config", "", "configuration file")
	flag.Parse()

	application, err := app.NewApplication(*configFile)
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("Application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
