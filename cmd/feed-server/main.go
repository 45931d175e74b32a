package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Sternrassler/tweakwise-feed/internal/app"
	"github.com/Sternrassler/tweakwise-feed/internal/config"
	"github.com/Sternrassler/tweakwise-feed/pkg/feed"
	"github.com/Sternrassler/tweakwise-feed/pkg/logging"
	"github.com/Sternrassler/tweakwise-feed/pkg/metrics"
	"github.com/Sternrassler/tweakwise-feed/pkg/sink"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// runner executes one feed run. *feed.Job implements it.
type runner interface {
	Run(ctx context.Context) (*feed.Result, error)
}

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
	logger := logging.NewLogger("feed-server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize")
	}
	defer a.Close()

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           newMux(a.Job, a.Sink, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if err := serve(ctx, srv, logger); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
	logger.Info().Msg("Server stopped")
}

// serve runs srv until ctx is cancelled, then shuts it down gracefully.
func serve(ctx context.Context, srv *http.Server, logger zerolog.Logger) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("addr", srv.Addr).Msg("Starting feed server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newMux(job runner, reader sink.Reader, logger zerolog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.Handle("POST /feed", feedHandler(job, logger))
	if reader != nil {
		mux.Handle("GET /feeds/{name}", sink.Handler(reader))
	}
	return mux
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

type feedResponse struct {
	RunID      string `json:"run_id"`
	URL        string `json:"xmlUrl"`
	Categories int    `json:"categories"`
	Items      int    `json:"items"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// feedHandler runs one job per request. Runs never overlap; a request that
// arrives while one is in flight gets 409.
func feedHandler(job runner, logger zerolog.Logger) http.HandlerFunc {
	var mu sync.Mutex

	return func(w http.ResponseWriter, r *http.Request) {
		if !mu.TryLock() {
			writeJSON(w, http.StatusConflict, errorResponse{Error: "a feed run is already in progress"})
			return
		}
		defer mu.Unlock()

		result, err := job.Run(r.Context())
		if err != nil {
			logger.Error().Err(err).Msg("Feed run failed")
			writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
			return
		}

		writeJSON(w, http.StatusOK, feedResponse{
			RunID:      result.RunID,
			URL:        result.URL,
			Categories: result.Categories,
			Items:      result.Items,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
