package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"prayer_bot/internal/model"
)

var ignoreRecordID = cmpopts.IgnoreFields(Record{}, "ID")

func newTestDB(t *testing.T) *SQLite {
	t.Helper()
	s, err := NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("new sqlite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestEnsurePartitionIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	for i := 0; i < 3; i++ {
		if err := s.EnsurePartition(ctx, "March 2026"); err != nil {
			t.Fatalf("ensure partition #%d: %v", i, err)
		}
	}
	if err := s.EnsurePartition(ctx, "Prayer Requests"); err != nil {
		t.Fatalf("ensure second partition: %v", err)
	}

	got, err := s.ListPartitions(ctx)
	if err != nil {
		t.Fatalf("list partitions: %v", err)
	}
	want := []string{"March 2026", "Prayer Requests"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("partitions mismatch (-want +got):\n%s", diff)
	}
}

func TestEnsurePartitionRejectsEmptyName(t *testing.T) {
	s := newTestDB(t)
	if err := s.EnsurePartition(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty partition name")
	}
}

func TestAppendRow(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	if err := s.EnsurePartition(ctx, "March 2026"); err != nil {
		t.Fatalf("ensure partition: %v", err)
	}
	rows := [][]string{
		{"2026-03-08 10:00:00", "Asha", "please pray for my mother"},
		{"2026-03-08 10:01:30", "Ravi", "need prayer for my job"},
	}
	for _, row := range rows {
		if err := s.AppendRow(ctx, "March 2026", row); err != nil {
			t.Fatalf("append row: %v", err)
		}
	}

	got, err := s.ListRequests(ctx, "March 2026")
	if err != nil {
		t.Fatalf("list requests: %v", err)
	}
	want := []Record{
		{Partition: "March 2026", SubmittedAt: "2026-03-08 10:00:00", Name: "Asha", Request: "please pray for my mother"},
		{Partition: "March 2026", SubmittedAt: "2026-03-08 10:01:30", Name: "Ravi", Request: "need prayer for my job"},
	}
	if diff := cmp.Diff(want, got, ignoreRecordID); diff != "" {
		t.Errorf("requests mismatch (-want +got):\n%s", diff)
	}
	if got[0].ID >= got[1].ID {
		t.Errorf("ids not increasing: %d, %d", got[0].ID, got[1].ID)
	}
}

func TestAppendRowUnknownPartition(t *testing.T) {
	s := newTestDB(t)
	err := s.AppendRow(context.Background(), "Nope", []string{"ts", "name", "text"})
	if !errors.Is(err, model.ErrPartitionNotFound) {
		t.Fatalf("expected ErrPartitionNotFound, got %v", err)
	}
}

func TestAppendRowWrongWidth(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)
	if err := s.EnsurePartition(ctx, "P"); err != nil {
		t.Fatalf("ensure partition: %v", err)
	}
	if err := s.AppendRow(ctx, "P", []string{"only", "two"}); err == nil {
		t.Fatal("expected error for a two-column row")
	}
}

func TestListRequestsIsolatesPartitions(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)
	for _, p := range []string{"A", "B"} {
		if err := s.EnsurePartition(ctx, p); err != nil {
			t.Fatalf("ensure %s: %v", p, err)
		}
	}
	if err := s.AppendRow(ctx, "A", []string{"t", "n", "r"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := s.ListRequests(ctx, "B")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if diff := cmp.Diff(0, len(got)); diff != "" {
		t.Errorf("partition B should be empty (-want +got):\n%s", diff)
	}
}

type recordingSink struct {
	partitions []string
	rows       [][]string
	err        error
}

func (r *recordingSink) EnsurePartition(_ context.Context, p string) error {
	r.partitions = append(r.partitions, p)
	return r.err
}

func (r *recordingSink) AppendRow(_ context.Context, _ string, row []string) error {
	r.rows = append(r.rows, row)
	return r.err
}

func TestTeeWritesEverySink(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	failing := &recordingSink{err: boom}
	ok := &recordingSink{}
	tee := Tee{failing, ok}

	if err := tee.EnsurePartition(ctx, "P"); !errors.Is(err, boom) {
		t.Fatalf("expected joined boom error, got %v", err)
	}
	if err := tee.AppendRow(ctx, "P", []string{"a", "b", "c"}); !errors.Is(err, boom) {
		t.Fatalf("expected joined boom error, got %v", err)
	}

	if diff := cmp.Diff([]string{"P"}, ok.partitions); diff != "" {
		t.Errorf("second sink partitions mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([][]string{{"a", "b", "c"}}, ok.rows); diff != "" {
		t.Errorf("second sink rows mismatch (-want +got):\n%s", diff)
	}
	if err := (Tee{ok}).AppendRow(ctx, "P", nil); err != nil {
		t.Errorf("healthy tee returned %v", err)
	}
}
