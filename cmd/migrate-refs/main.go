// Command migrate-refs rewrites resume references that still hold remote
// object-store URLs into storage keys the delivery endpoints can serve.
//
// Usage:
//
//	migrate-refs [-dry-run] [-fetch] [-timeout 30s]
//
// Without -fetch an application is relinked only when the object named by the
// URL's last path segment already exists in storage.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/artem13815/recruitment/pkg/application"
	"github.com/artem13815/recruitment/pkg/config"
	pgrepo "github.com/artem13815/recruitment/pkg/repository/postgres"
	"github.com/artem13815/recruitment/pkg/storage/files"
	"github.com/artem13815/recruitment/pkg/storage/postgres"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "report what would change without writing")
	fetch := flag.Bool("fetch", false, "download objects that are not in storage yet")
	timeout := flag.Duration("timeout", 30*time.Second, "per-download timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" || cfg.DatabaseURL == config.MemoryDatabase {
		log.Fatal("DATABASE_URL must point at PostgreSQL")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("postgres connect: %v", err)
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	store, err := files.New(ctx, cfg.Storage, files.Policy{MaxBytes: cfg.Resume.MaxBytes, Extensions: cfg.Resume.Extensions})
	if err != nil {
		log.Fatalf("init storage: %v", err)
	}

	opts := application.MigrateOptions{DryRun: *dryRun}
	if *fetch {
		opts.Fetcher = application.NewHTTPFetcher(*timeout)
	}
	results, err := application.MigrateLegacyReferences(ctx, pgrepo.NewApplicationRepository(pool), store, opts)
	if err != nil && len(results) == 0 {
		log.Fatalf("migration: %v", err)
	}

	var done, failed int
	for _, r := range results {
		if r.Err != nil {
			failed++
			log.Printf("✗ %s: %s: %v", r.ApplicationID, r.From, r.Err)
			continue
		}
		done++
		log.Printf("✓ %s: %s %s -> %s", r.ApplicationID, r.Action, r.From, r.To)
	}
	if len(results) == 0 {
		log.Printf("no legacy references found")
	}
	log.Printf("migrated %d/%d (dry run: %v)", done, len(results), *dryRun)
	if err != nil {
		log.Fatalf("migration interrupted: %v", err)
	}
	if failed > 0 {
		os.Exit(1)
	}
}
