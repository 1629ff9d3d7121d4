package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"vitrine/internal/config"
	"vitrine/internal/db"
	"vitrine/internal/logger"
	"vitrine/internal/migrate"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "migrate"})
	_ = godotenv.Load()

	cmd := flag.String("cmd", "up", "migration command: up|down|version")
	steps := flag.Int("steps", 1, "number of migrations to roll back for -cmd=down")
	flag.Parse()

	cfg, err := config.LoadDatabase()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	logg = logger.New(logger.Options{ServiceName: "migrate", Level: logger.ParseLevel(cfg.LogLevel)})
	ctx := logg.WithField(context.Background(), "cmd", *cmd)

	pool, err := db.Connect(ctx, cfg.DBDSN)
	if err != nil {
		logg.Error(ctx, "failed to connect database", err)
		os.Exit(1)
	}
	defer pool.Close()

	switch *cmd {
	case "up":
		err = migrate.Apply(ctx, pool)
	case "down":
		err = migrate.Rollback(ctx, pool, *steps)
	case "version":
		var (
			version uint
			dirty   bool
		)
		version, dirty, err = migrate.Version(ctx, pool)
		if err == nil {
			fmt.Printf("version %d (dirty=%t)\n", version, dirty)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown -cmd %q\n", *cmd)
		pool.Close()
		os.Exit(2)
	}
	if err != nil {
		logg.Error(ctx, "migration failed", err)
		pool.Close()
		os.Exit(1)
	}
	logg.Info(ctx, "migrate done")
}
