package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	var dsn, migrationsPath, migrationsTable string
	var steps int

	flag.StringVar(&dsn, "dsn", os.Getenv("DATABASE_URL"), "postgres connection string")
	flag.StringVar(&migrationsPath, "migrations-path", "./migrations", "path to migrations")
	flag.StringVar(&migrationsTable, "migrations-table", "schema_migrations", "name of migrations table")
	flag.IntVar(&steps, "steps", 0, "apply n migrations (negative rolls back); 0 migrates all the way up")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if dsn == "" {
		log.Error("dsn is required")
		os.Exit(1)
	}

	if err := run(log, dsn, migrationsPath, migrationsTable, steps); err != nil {
		log.Error("migration failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(log *slog.Logger, dsn, migrationsPath, migrationsTable string, steps int) error {
	m, err := migrate.New(
		"file://"+migrationsPath,
		fmt.Sprintf("%s&x-migrations-table=%s", withQuery(dsn), migrationsTable),
	)
	if err != nil {
		return fmt.Errorf("init migrator: %w", err)
	}
	defer m.Close()

	if steps != 0 {
		err = m.Steps(steps)
	} else {
		err = m.Up()
	}

	if err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("no migrations to apply")
			return nil
		}
		return err
	}

	log.Info("migrations applied", slog.String("path", migrationsPath), slog.Int("steps", steps))
	return nil
}

// withQuery makes sure dsn has a query string to append options to.
func withQuery(dsn string) string {
	if strings.Contains(dsn, "?") {
		return dsn
	}
	return dsn + "?"
}
