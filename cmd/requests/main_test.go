package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"prayer_bot/internal/storage"
)

func TestOpenExistingMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "typo.db")

	if _, err := openExisting(path); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("database must not be created, stat: %v", err)
	}
}

func TestOpenExistingDirectory(t *testing.T) {
	if _, err := openExisting(t.TempDir()); err == nil {
		t.Fatal("expected error for a directory")
	}
}

func TestOpenExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prayers.db")
	ctx := context.Background()

	seed, err := storage.NewSQLite(path)
	if err != nil {
		t.Fatalf("create db: %v", err)
	}
	if err := seed.EnsurePartition(ctx, "March 2026"); err != nil {
		t.Fatalf("ensure partition: %v", err)
	}
	_ = seed.Close()

	store, err := openExisting(path)
	if err != nil {
		t.Fatalf("open existing: %v", err)
	}
	defer func() { _ = store.Close() }()

	names, err := store.ListPartitions(ctx)
	if err != nil {
		t.Fatalf("list partitions: %v", err)
	}
	if diff := cmp.Diff([]string{"March 2026"}, names); diff != "" {
		t.Errorf("partitions mismatch (-want +got):\n%s", diff)
	}
}
