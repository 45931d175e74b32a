// Command feedgen generates the feed once, stores it and prints its URL.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Sternrassler/tweakwise-feed/internal/app"
	"github.com/Sternrassler/tweakwise-feed/internal/config"
	"github.com/Sternrassler/tweakwise-feed/pkg/logging"
)

func main() {
	configFile := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.Log.Level),
		Pretty: cfg.Log.Pretty,
	})
	logger := logging.NewLogger("feedgen")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize")
	}

	result, err := a.Job.Run(ctx)
	a.Close()
	if err != nil {
		logger.Error().Err(err).Msg("Feed run failed")
		os.Exit(1)
	}

	fmt.Println(result.URL)
}
