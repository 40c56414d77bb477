package main

import (
	"context"
	"flag"
	"graph-diag/cmd"
	"graph-diag/internal/checkpoint"
	"graph-diag/internal/config"
	"graph-diag/internal/storage"
	"io"
	"log"
	"log/slog"
	"os"
)

func main() {
	cmd.LoadEnvFile()

	cfg, err := config.LoadInspectConfig()
	if err != nil {
		log.Fatalf("error parsing config: %v", err)
	}
	if flag.NArg() > 0 {
		cfg.CheckpointPath = flag.Arg(0)
	}
	cmd.SetupLogging(cfg.LogLevel)

	var progress io.Writer
	if cfg.ShowProgress {
		progress = os.Stderr
	}

	store, key, err := storage.ResolveLocation(cfg.CheckpointPath, cfg.S3, progress)
	if err != nil {
		log.Fatalf("error resolving checkpoint location: %v", err)
	}
	slog.Info("inspecting checkpoint", "location", cfg.CheckpointPath)

	inspector := checkpoint.NewInspector(store, checkpoint.LoadFile, os.Stdout)
	if !inspector.Run(context.Background(), key) {
		os.Exit(1)
	}
}
