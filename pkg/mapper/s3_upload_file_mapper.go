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

// S3UploadFileMapper uploads the local files named in a field and replaces
// each path with the s3:// URL of its object.
type S3UploadFileMapper struct {
	cfg     S3UploadConfig
	store   storage.ObjectStore
	fs      afero.Fs
	tracker leafTracker
}

var _ Mapper = (*S3UploadFileMapper)(nil)

func NewS3UploadFileMapper(cfg S3UploadConfig, store storage.ObjectStore, opts ...Option) (*S3UploadFileMapper, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s config: %w", constants.S3UploadOperator, err)
	}
	if store == nil {
		return nil, errors.New("object store is required")
	}
	cfg.IDField = idFieldOrDefault(cfg.IDField)

	o := newOptions(opts)
	return &S3UploadFileMapper{
		cfg:   cfg,
		store: store,
		fs:    o.fs,
		tracker: leafTracker{
			operator: constants.S3UploadOperator,
			logger:   o.logger,
			metrics:  o.metrics,
		},
	}, nil
}

func (m *S3UploadFileMapper) Name() string { return constants.S3UploadOperator }

// Process rewrites the upload field of rec. rec itself is not modified.
func (m *S3UploadFileMapper) Process(ctx context.Context, rec dataset.Record) (dataset.Record, *Report) {
	report := newReport()
	value, ok := rec[m.cfg.UploadField]
	if !ok {
		return rec, report
	}
	id := rec[m.cfg.IDField]

	out := rec.Clone()
	out[m.cfg.UploadField] = Walk(value, func(leaf string) any {
		return m.upload(ctx, report, id, leaf)
	})
	return out, report
}

// objectKey is prefix + basename. Distinct files sharing a basename map to
// the same key.
func (m *S3UploadFileMapper) objectKey(localPath string) string {
	return m.cfg.Prefix + filepath.Base(localPath)
}

func (m *S3UploadFileMapper) upload(ctx context.Context, report *Report, id any, leaf string) any {
	if storage.IsRemoteURI(leaf) {
		m.tracker.skipped(report, SkippedAlreadyRemote, id, leaf, "Already an object-store URL, leaving as is")
		return leaf
	}
	if !afero.IsRegularFile(m.fs, leaf) {
		m.tracker.failed(report, id, leaf, ErrSourceAbsent, time.Time{})
		return leaf
	}

	key := m.objectKey(leaf)
	url := storage.ObjectURI{Bucket: m.cfg.Bucket, Key: key}.String()

	if m.cfg.SkipExisting {
		_, err := m.store.HeadObject(ctx, m.cfg.Bucket, key)
		switch {
		case err == nil:
			m.tracker.skipped(report, SkippedExists, id, leaf, "Object already exists, skipping upload")
			return url
		case storage.IsNotFound(err):
			// upload below
		default:
			// Any other head failure counts as present so the object is never
			// uploaded twice. This also hides permission and network errors.
			m.tracker.log(id, leaf).WithError(err).
				Warn("Existence check failed, treating object as present")
			m.tracker.skipped(report, SkippedExists, id, leaf, "Object assumed to exist, skipping upload")
			return url
		}
	}

	start := time.Now()
	if err := m.store.UploadFile(ctx, leaf, m.cfg.Bucket, key); err != nil {
		m.tracker.failed(report, id, leaf, fmt.Errorf("%w: %w", ErrTransport, err), start)
		return leaf
	}
	m.tracker.transferred(report, id, leaf, url, start)

	if m.cfg.RemoveLocal {
		if err := m.fs.Remove(leaf); err != nil {
			m.tracker.log(id, leaf).WithError(err).Warn("Uploaded but failed to remove local file")
		}
	}
	return url
}
