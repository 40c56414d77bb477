package main

import (
	"context"
	"flag"
	"fmt"
	"graph-diag/cmd"
	"graph-diag/internal/config"
	"graph-diag/internal/graph"
	"graph-diag/internal/probe"
	"graph-diag/pkg/api"
	"log"
	"log/slog"
	"os"
)

func main() {
	cmd.LoadEnvFile()

	cfg, err := config.LoadProbeConfig()
	if err != nil {
		log.Fatalf("error parsing config: %v", err)
	}
	if flag.NArg() > 0 {
		cfg.EdgesFile = flag.Arg(0)
	}
	cmd.SetupLogging(cfg.LogLevel)

	edges := graph.SampleTree()
	if cfg.EdgesFile != "" {
		edges, err = graph.LoadEdges(cfg.EdgesFile)
		if err != nil {
			log.Fatalf("error loading graph: %v", err)
		}
	}
	slog.Info("probing classifier", "url", cfg.ClassifyURL, "timeout", cfg.Timeout, "edges", len(edges))

	if !run(context.Background(), cfg, edges) {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.ProbeConfig, edges []api.Edge) bool {
	fmt.Println("Testing backend connection...")

	client := probe.NewClassifierClient(cfg.ClassifyURL, cfg.Timeout)
	return probe.NewProber(client, cfg.ClassifyURL, os.Stdout).Run(ctx, edges)
}
