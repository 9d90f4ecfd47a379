// Утилита управления схемой northwind: применяет, откатывает и показывает
// состояние встроенных SQL-миграций.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/northwind/internal/storage/postgres"
)

const runTimeout = 30 * time.Second

func main() {
	action := flag.String("action", "up", "up | down | status")
	steps := flag.Int("steps", 0, "how many migrations to run (up: 0 = all, down: 0 = 1)")
	dsn := flag.String("dsn", "", "PostgreSQL DSN; defaults to NW_POSTGRES_DSN")
	flag.Parse()

	target := strings.TrimSpace(*dsn)
	if target == "" {
		target = strings.TrimSpace(os.Getenv("NW_POSTGRES_DSN"))
	}
	if target == "" {
		die("no DSN: pass -dsn or set NW_POSTGRES_DSN")
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	store, err := postgres.Open(ctx, target)
	if err != nil {
		die("connect to postgres: %v", err)
	}
	defer store.Close()

	switch strings.ToLower(strings.TrimSpace(*action)) {
	case "up":
		if err := store.MigrateUp(ctx, *steps); err != nil {
			die("migrate up: %v", err)
		}
		report(ctx, store, "migrated up")
	case "down":
		if err := store.MigrateDown(ctx, *steps); err != nil {
			die("migrate down: %v", err)
		}
		report(ctx, store, "rolled back")
	case "status":
		report(ctx, store, "schema status")
	default:
		die("unknown action %q (want up, down or status)", *action)
	}
}

func report(ctx context.Context, store *postgres.Store, prefix string) {
	version, applied, err := store.MigrationStatus(ctx)
	if err != nil {
		die("read migration status: %v", err)
	}
	fmt.Printf("%s: schema at version %d, %d migration(s) applied\n", prefix, version, applied)
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "migrate: "+format+"\n", args...)
	os.Exit(1)
}
