package mapper

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/data-juicer/dj-agent/pkg/afero"
	"github.com/data-juicer/dj-agent/pkg/constants"
	"github.com/data-juicer/dj-agent/pkg/dataset"
	"github.com/data-juicer/dj-agent/pkg/storage"
)

// S3DownloadFileMapper replaces object-store URLs in a field with local
// paths (disk mode) or with the object bytes (memory mode).
type S3DownloadFileMapper struct {
	cfg     S3DownloadConfig
	store   storage.ObjectStore
	fs      afero.Fs
	tracker leafTracker
}

var _ Mapper = (*S3DownloadFileMapper)(nil)

// NewS3DownloadFileMapper validates cfg and, in disk mode, creates SaveDir.
func NewS3DownloadFileMapper(cfg S3DownloadConfig, store storage.ObjectStore, opts ...Option) (*S3DownloadFileMapper, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s config: %w", constants.S3DownloadOperator, err)
	}
	if store == nil {
		return nil, errors.New("object store is required")
	}
	cfg.IDField = idFieldOrDefault(cfg.IDField)

	o := newOptions(opts)
	if cfg.SaveDir != "" {
		if err := o.fs.MkdirAll(cfg.SaveDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating save_dir %s: %w", cfg.SaveDir, err)
		}
	}

	return &S3DownloadFileMapper{
		cfg:   cfg,
		store: store,
		fs:    o.fs,
		tracker: leafTracker{
			operator: constants.S3DownloadOperator,
			logger:   o.logger,
			metrics:  o.metrics,
		},
	}, nil
}

func (m *S3DownloadFileMapper) Name() string { return constants.S3DownloadOperator }

// outputField is where memory-mode payloads go.
func (m *S3DownloadFileMapper) outputField() string {
	if m.cfg.SaveField != "" {
		return m.cfg.SaveField
	}
	return m.cfg.DownloadField
}

// Process rewrites the download field of rec. rec itself is not modified.
func (m *S3DownloadFileMapper) Process(ctx context.Context, rec dataset.Record) (dataset.Record, *Report) {
	report := newReport()
	value, ok := rec[m.cfg.DownloadField]
	if !ok {
		return rec, report
	}
	id := rec[m.cfg.IDField]

	out := rec.Clone()
	if m.cfg.SaveDir != "" {
		out[m.cfg.DownloadField] = Walk(value, func(leaf string) any {
			return m.downloadToDir(ctx, report, id, leaf)
		})
	} else {
		out[m.outputField()] = Walk(value, func(leaf string) any {
			return m.downloadToMemory(ctx, report, id, leaf)
		})
	}
	return out, report
}

func (m *S3DownloadFileMapper) downloadToDir(ctx context.Context, report *Report, id any, leaf string) any {
	uri, err := storage.ParseURI(leaf)
	if err != nil {
		m.tracker.skipped(report, SkippedAlreadyLocal, id, leaf, "Not an object-store URL, leaving as is")
		return leaf
	}

	target := filepath.Join(m.cfg.SaveDir, uri.Basename())
	if m.cfg.ResumeDownload {
		// Presence only: a truncated file from an earlier run is kept as complete.
		if exists, _ := afero.Exists(m.fs, target); exists {
			m.tracker.skipped(report, SkippedExists, id, leaf, "Target already exists locally, resuming")
			return target
		}
	}

	start := time.Now()
	if err := m.store.DownloadToFile(ctx, uri.Bucket, uri.Key, target); err != nil {
		m.tracker.failed(report, id, leaf, fmt.Errorf("%w: %w", ErrTransport, err), start)
		return leaf
	}
	m.tracker.transferred(report, id, leaf, target, start)
	return target
}

func (m *S3DownloadFileMapper) downloadToMemory(ctx context.Context, report *Report, id any, leaf string) any {
	uri, err := storage.ParseURI(leaf)
	if err != nil {
		m.tracker.skipped(report, SkippedAlreadyLocal, id, leaf, "Not an object-store URL, leaving as is")
		return leaf
	}

	start := time.Now()
	data, err := m.store.GetObject(ctx, uri.Bucket, uri.Key)
	if err != nil {
		m.tracker.failed(report, id, leaf, fmt.Errorf("%w: %w", ErrTransport, err), start)
		return leaf
	}
	m.tracker.transferred(report, id, leaf, fmt.Sprintf("%d bytes", len(data)), start)
	return data
}
