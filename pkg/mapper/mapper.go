// Package mapper holds the record operators that move file payloads between
// the local filesystem and an object store. Both operators rewrite a single
// configured field leaf by leaf, keep its nesting intact and never let one
// leaf's failure escape into the batch.
package mapper

import (
	"context"
	"time"

	"github.com/data-juicer/dj-agent/pkg/afero"
	"github.com/data-juicer/dj-agent/pkg/dataset"
	"github.com/data-juicer/dj-agent/pkg/logging"
)

// Mapper transforms one record. Process never fails: problems are reported
// per leaf and the affected leaves keep their input value.
type Mapper interface {
	Name() string
	Process(ctx context.Context, rec dataset.Record) (dataset.Record, *Report)
}

type options struct {
	fs      afero.Fs
	logger  logging.Interface
	metrics *Metrics
}

// Option configures a mapper.
type Option func(*options)

// WithFs sets the local filesystem. Defaults to the host filesystem.
func WithFs(fs afero.Fs) Option {
	return func(o *options) { o.fs = fs }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger logging.Interface) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetrics enables outcome and latency metrics.
func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func newOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.fs == nil {
		o.fs = afero.NewOsFs()
	}
	if o.logger == nil {
		o.logger = logging.NewNopLogger()
	}
	return o
}

// BatchFunc adapts m to dataset.Map. Reports are merged into summary when
// it is non-nil.
func BatchFunc(m Mapper, summary *Summary) dataset.BatchFunc {
	return func(ctx context.Context, batch []dataset.Record) ([]dataset.Record, error) {
		out := make([]dataset.Record, len(batch))
		for i, rec := range batch {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			var report *Report
			out[i], report = m.Process(ctx, rec)
			if summary != nil {
				summary.Add(report)
			}
		}
		return out, nil
	}
}

// leafTracker logs, counts and reports leaf outcomes for one operator.
type leafTracker struct {
	operator string
	logger   logging.Interface
	metrics  *Metrics
}

func (t leafTracker) log(id any, leaf string) logging.Interface {
	return t.logger.WithField("operator", t.operator).
		WithField("record", id).
		WithField("leaf", leaf)
}

func (t leafTracker) skipped(r *Report, o Outcome, id any, leaf, msg string) {
	r.record(o)
	t.metrics.observe(t.operator, o)
	t.log(id, leaf).WithField("outcome", o.String()).Debug(msg)
}

func (t leafTracker) transferred(r *Report, id any, leaf, result string, start time.Time) {
	r.record(Transferred)
	t.metrics.observe(t.operator, Transferred)
	t.metrics.observeTransfer(t.operator, Transferred, start)
	t.log(id, leaf).WithField("result", result).
		WithField("duration", time.Since(start).String()).
		Debug("Transferred")
}

// failed records the failure. A zero start means no store call was made.
func (t leafTracker) failed(r *Report, id any, leaf string, err error, start time.Time) {
	r.fail(&LeafError{Operator: t.operator, RecordID: id, Leaf: leaf, Err: err})
	t.metrics.observe(t.operator, Failed)
	if !start.IsZero() {
		t.metrics.observeTransfer(t.operator, Failed, start)
	}
	t.log(id, leaf).WithError(err).Error("Leaf transfer failed, keeping original value")
}
