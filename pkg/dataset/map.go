package dataset

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

const DefaultBatchSize = 1000

// BatchFunc maps one batch. It must return exactly one record per input
// record; returning an error aborts the whole Map.
type BatchFunc func(ctx context.Context, batch []Record) ([]Record, error)

type mapOptions struct {
	batchSize   int
	concurrency int
}

// MapOption tunes Map.
type MapOption func(*mapOptions)

// WithBatchSize sets the number of records per batch. Values below 1 are ignored.
func WithBatchSize(n int) MapOption {
	return func(o *mapOptions) {
		if n > 0 {
			o.batchSize = n
		}
	}
}

// WithConcurrency bounds the number of batches in flight. Values below 1 are ignored.
func WithConcurrency(n int) MapOption {
	return func(o *mapOptions) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// Map applies fn to disjoint batches in parallel and reassembles the results
// in input order.
func (d *Dataset) Map(ctx context.Context, fn BatchFunc, opts ...MapOption) (*Dataset, error) {
	o := mapOptions{batchSize: DefaultBatchSize, concurrency: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(&o)
	}

	numBatches := (len(d.records) + o.batchSize - 1) / o.batchSize
	results := make([][]Record, numBatches)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)

	for i := 0; i < numBatches; i++ {
		i := i
		from := i * o.batchSize
		to := min(from+o.batchSize, len(d.records))
		batch := d.records[from:to:to]

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out, err := fn(ctx, batch)
			if err != nil {
				return fmt.Errorf("batch %d: %w", i, err)
			}
			if len(out) != len(batch) {
				return fmt.Errorf("batch %d: mapped %d records into %d", i, len(batch), len(out))
			}
			results[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]Record, 0, len(d.records))
	for _, r := range results {
		out = append(out, r...)
	}
	return &Dataset{records: out}, nil
}
