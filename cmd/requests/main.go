package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"prayer_bot/internal/storage"
	"prayer_bot/migrations"
)

func main() {
	dbPath := flag.String("db", envOrDefault("DATABASE_PATH", "./data/prayers.db"), "path to sqlite database")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	ctx := context.Background()
	var err error
	switch cmd := args[0]; cmd {
	case "partitions":
		err = listPartitions(ctx, *dbPath)
	case "list":
		if len(args) < 2 {
			log.Fatal("usage: requests list <partition>")
		}
		err = listRequests(ctx, *dbPath, args[1])
	case "migrate-up", "migrate-down", "migrate-status":
		err = migrate(*dbPath, cmd)
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("%s: %v", args[0], err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: requests [-db path] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  partitions        List log partitions")
	fmt.Fprintln(os.Stderr, "  list <partition>  Show the requests recorded in a partition")
	fmt.Fprintln(os.Stderr, "  migrate-up        Migrate to the latest schema version")
	fmt.Fprintln(os.Stderr, "  migrate-down      Roll back one schema version")
	fmt.Fprintln(os.Stderr, "  migrate-status    Show migration status")
}

// openExisting opens the log at dbPath. Unlike storage.NewSQLite it refuses
// to create a new database when the path is wrong.
func openExisting(dbPath string) (*storage.SQLite, error) {
	info, err := os.Stat(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open log %s: %w", dbPath, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("open log %s: is a directory", dbPath)
	}
	return storage.NewSQLite(dbPath)
}

func listPartitions(ctx context.Context, dbPath string) error {
	store, err := openExisting(dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	names, err := store.ListPartitions(ctx)
	if err != nil {
		return err
	}
	for _, n := range names {
		fmt.Println(n)
	}
	return nil
}

func listRequests(ctx context.Context, dbPath, partition string) error {
	store, err := openExisting(dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	records, err := store.ListRequests(ctx, partition)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SUBMITTED\tNAME\tREQUEST")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.SubmittedAt, r.Name, r.Request)
	}
	return w.Flush()
}

func migrate(dbPath, cmd string) error {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := migrations.Setup(); err != nil {
		return err
	}
	goose.SetLogger(log.New(os.Stdout, "", 0))

	switch cmd {
	case "migrate-up":
		return goose.Up(db, ".")
	case "migrate-down":
		return goose.Down(db, ".")
	default:
		return goose.Status(db, ".")
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
