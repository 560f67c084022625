// Package storage defines the append-only request log and its implementations.
package storage

import (
	"context"
	"errors"
)

// Sink is an append-only store of rows partitioned by name.
type Sink interface {
	// EnsurePartition creates the partition if it does not exist. It is idempotent.
	EnsurePartition(ctx context.Context, partition string) error
	// AppendRow appends one row to an existing partition.
	AppendRow(ctx context.Context, partition string, row []string) error
}

// Tee writes to every sink in order. Each sink is attempted even when an
// earlier one fails; the failures are joined.
type Tee []Sink

// EnsurePartition ensures the partition exists in every sink.
func (t Tee) EnsurePartition(ctx context.Context, partition string) error {
	var errs []error
	for _, s := range t {
		if err := s.EnsurePartition(ctx, partition); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// AppendRow appends the row to every sink.
func (t Tee) AppendRow(ctx context.Context, partition string, row []string) error {
	var errs []error
	for _, s := range t {
		if err := s.AppendRow(ctx, partition, row); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
