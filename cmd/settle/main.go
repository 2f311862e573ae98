/*
main.go - Application entry point

PURPOSE:
  Runs one settlement pass: read the transaction stream from the file
  given as the positional argument, apply it shard by shard, and print
  the final account table to stdout. Optionally persists the table to a
  SQLite report file and/or stays up serving the HTTP API.

USAGE:
  settle [flags] <transactions.csv>

COMMAND-LINE FLAGS:
  -config  Path to a YAML config file (optional; env vars with the
           SETTLE_ prefix override it)
  -shards  Shard count override (0 = value from config, default 3)
  -db      SQLite report path ("" disables the sink)
  -serve   Keep the process up after ingestion and serve the API
  -addr    Listen address override for -serve

EXIT BEHAVIOR:
  The first malformed input record aborts the run with a non-zero exit
  and no account table is printed. Well-formed-but-invalid transactions
  never fail the run; they are simply absent from the final balances.

SEE ALSO:
  - engine/engine.go: The ingestion pipeline
  - api/server.go: The serving mode surface
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/settlement-engine/api"
	"github.com/warp/settlement-engine/config"
	"github.com/warp/settlement-engine/engine"
	"github.com/warp/settlement-engine/logger"
	"github.com/warp/settlement-engine/shard"
	"github.com/warp/settlement-engine/store/sqlite"
)

func main() {
	// Flags
	configPath := flag.String("config", "", "path to YAML config file")
	shards := flag.Int("shards", 0, "shard count override (0 = from config)")
	reportDB := flag.String("db", "", "SQLite report path (empty disables)")
	serve := flag.Bool("serve", false, "serve the HTTP API after ingestion")
	addr := flag.String("addr", "", "listen address override for -serve")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <transactions.csv>\n", os.Args[0])
		os.Exit(2)
	}
	inputPath := flag.Arg(0)

	// Configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *shards > 0 {
		cfg.Engine.Shards = *shards
	}
	if *reportDB != "" {
		cfg.Report.Database = *reportDB
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	// Engine
	router := shard.NewRouter(cfg.Engine.Shards)
	if err := router.Validate(); err != nil {
		log.Fatal().Err(err).Int("shards", cfg.Engine.Shards).Msg("invalid shard configuration")
	}
	processor := engine.NewProcessor(router, log)

	// Ingest
	input, err := os.Open(inputPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", inputPath).Msg("failed to open input")
	}

	log.Info().
		Str("input", inputPath).
		Int("shards", cfg.Engine.Shards).
		Msg("starting settlement pass")

	err = processor.Process(context.Background(), input)
	input.Close()
	if err != nil {
		log.Fatal().Err(err).Msg("ingestion failed")
	}

	// Account table to stdout
	if err := processor.WriteReport(os.Stdout); err != nil {
		log.Fatal().Err(err).Msg("failed to write report")
	}

	// Optional SQLite sink
	if cfg.Report.Database != "" {
		sink, err := sqlite.New(cfg.Report.Database)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.Report.Database).Msg("failed to open report database")
		}
		err = sink.SaveReport(context.Background(), router.Snapshots(), processor.Stats())
		if cerr := sink.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			log.Fatal().Err(err).Msg("failed to save report database")
		}
		log.Info().Str("path", cfg.Report.Database).Msg("report database written")
	}

	if !*serve {
		return
	}

	// Serving mode
	listenAddr := cfg.Server.Addr()
	if *addr != "" {
		listenAddr = *addr
	}

	handler := api.NewHandler(processor, log)
	server := &http.Server{
		Addr:         listenAddr,
		Handler:      api.NewRouter(handler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", listenAddr).Msg("serving account API")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("stopped")
}
