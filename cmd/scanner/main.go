package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/auditscan/auditscan/internal/bootstrap"
	"github.com/auditscan/auditscan/internal/config"
)

func main() {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	docs, err := app.Loader.Load(ctx, cfg.InputDir)
	if err != nil {
		log.Fatalf("load documents from %s: %v", cfg.InputDir, err)
	}
	if len(docs) == 0 {
		log.Printf("no supported documents found in %s", cfg.InputDir)
	}

	bundle, err := app.RunUC.Run(ctx, docs)
	if err != nil {
		log.Fatalf("scan run error: %v", err)
	}

	if err := writeReport(cfg.OutputPath, bundle); err != nil {
		log.Fatalf("write report to %s: %v", cfg.OutputPath, err)
	}
	log.Printf("report written to %s (run %s, coverage %.1f%%)",
		cfg.OutputPath, bundle.RunID, bundle.Verification.CoveragePercentage)
}

func writeReport(path string, bundle any) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
