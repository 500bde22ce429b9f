// Package exporter writes a dataset to local or S3 files in one of a closed
// set of formats, split into size-bounded shards.
package exporter

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/data-juicer/dj-agent/pkg/afero"
	"github.com/data-juicer/dj-agent/pkg/constants"
	"github.com/data-juicer/dj-agent/pkg/dataset"
	"github.com/data-juicer/dj-agent/pkg/logging"
	"github.com/data-juicer/dj-agent/pkg/storage"
)

const (
	minRecommendedShardSize int64 = 1 << 20 // 1 MiB
	maxRecommendedShardSize int64 = 1 << 40 // 1 TiB
)

type Exporter struct {
	config Config
	format Format
	remote *storage.ObjectURI

	fs     afero.Fs
	store  storage.ObjectStore
	logger logging.Interface
}

type Option func(*Exporter)

func WithFs(fs afero.Fs) Option {
	return func(e *Exporter) { e.fs = fs }
}

// WithStore sets the store used for s3:// export paths.
func WithStore(store storage.ObjectStore) Option {
	return func(e *Exporter) { e.store = store }
}

func WithLogger(logger logging.Interface) Option {
	return func(e *Exporter) { e.logger = logger }
}

func New(cfg Config, opts ...Option) (*Exporter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid export config: %w", err)
	}
	e := &Exporter{config: cfg}
	for _, opt := range opts {
		opt(e)
	}
	if e.fs == nil {
		e.fs = afero.NewOsFs()
	}
	if e.logger == nil {
		e.logger = logging.NewNopLogger()
	}

	format, err := e.resolveFormat()
	if err != nil {
		return nil, err
	}
	e.format = format

	if storage.IsRemoteURI(cfg.ExportPath) {
		uri, err := storage.ParseURI(cfg.ExportPath)
		if err != nil {
			return nil, err
		}
		if e.store == nil {
			return nil, fmt.Errorf("export path %s needs an object store", cfg.ExportPath)
		}
		e.remote = &uri
	}

	e.checkShardSize()
	return e, nil
}

// Format returns the resolved export format.
func (e *Exporter) Format() Format { return e.format }

func (e *Exporter) resolveFormat() (Format, error) {
	if e.config.ExportType != "" {
		return ParseFormat(e.config.ExportType)
	}
	suffix := strings.TrimPrefix(path.Ext(e.config.ExportPath), ".")
	if suffix == "" {
		e.logger.WithField("export_path", e.config.ExportPath).
			Warnf("Export path has no suffix, exporting as %s", FormatJSONL)
		return FormatJSONL, nil
	}
	if suffix == "tar" {
		return FormatWebDataset, nil
	}
	return ParseFormat(suffix)
}

func (e *Exporter) checkShardSize() {
	size := e.config.ExportShardSize
	switch {
	case size == 0:
	case size < minRecommendedShardSize:
		e.logger.Warnf("Export shard size %s is below %s, expect many small files",
			humanize.IBytes(uint64(size)), humanize.IBytes(uint64(minRecommendedShardSize)))
	case size >= maxRecommendedShardSize:
		e.logger.Warnf("Export shard size %s is at or above %s, single files may be unwieldy",
			humanize.IBytes(uint64(size)), humanize.IBytes(uint64(maxRecommendedShardSize)))
	}
}

// PlanShards splits rows into ceil(totalBytes/shardBytes) shards, capped by
// the row count, and returns the shard count with the rows per file. A
// non-positive shardBytes means one shard.
func PlanShards(totalBytes int64, rows int, shardBytes int64) (numShards, rowsPerFile int) {
	if rows <= 0 {
		return 0, 0
	}
	numShards = 1
	if shardBytes > 0 {
		numShards = int((totalBytes + shardBytes - 1) / shardBytes)
	}
	numShards = max(1, min(numShards, rows))
	return numShards, max(1, rows/numShards)
}

// prune drops the bookkeeping columns the config does not keep.
func (e *Exporter) prune(ds *dataset.Dataset) *dataset.Dataset {
	var drop []string
	if !e.config.KeepStatsInResDS {
		drop = append(drop, constants.StatsField, constants.MetaField)
	}
	if !e.config.KeepHashesInResDS {
		drop = append(drop, constants.HashFields...)
	}
	if len(drop) == 0 {
		return ds
	}
	return ds.DropColumns(drop...)
}

// shardName returns base with "-NNNNN" before the extension when there is more
// than one shard, and with the format extension in any case.
func (e *Exporter) shardName(base string, idx, total int) string {
	stem := strings.TrimSuffix(base, path.Ext(base))
	if total > 1 {
		stem = fmt.Sprintf("%s-%05d", stem, idx)
	}
	return stem + e.format.Extension()
}

// Export writes ds and returns the written paths or object URLs in shard
// order. An empty dataset produces no files.
func (e *Exporter) Export(ctx context.Context, ds *dataset.Dataset) ([]string, error) {
	ds = e.prune(ds)
	numShards, rowsPerFile := PlanShards(ds.SizeBytes(), ds.Count(), e.config.ExportShardSize)
	if numShards == 0 {
		e.logger.Warn("Nothing to export, dataset is empty")
		return nil, nil
	}

	localBase := e.config.ExportPath
	if e.remote != nil {
		dir, err := afero.TempDir(e.fs, "", "dj-export-")
		if err != nil {
			return nil, fmt.Errorf("failed to create staging directory: %w", err)
		}
		defer func() {
			if err := e.fs.RemoveAll(dir); err != nil {
				e.logger.WithError(err).Warnf("Failed to clean up staging directory %s", dir)
			}
		}()
		localBase = filepath.Join(dir, e.remote.Basename())
	}
	if dir := filepath.Dir(localBase); dir != "" {
		if err := e.fs.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create export directory %s: %w", dir, err)
		}
	}

	e.logger.WithField("format", e.format).
		WithField("records", ds.Count()).
		WithField("shards", numShards).
		Infof("Exporting dataset to %s", e.config.ExportPath)

	out := make([]string, 0, numShards)
	for i := 0; i < numShards; i++ {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		from := i * rowsPerFile
		to := from + rowsPerFile
		if i == numShards-1 {
			to = ds.Count()
		}

		local := filepath.Join(filepath.Dir(localBase), e.shardName(filepath.Base(localBase), i, numShards))
		if err := e.writeShard(local, ds.Slice(from, to).ToList(), from); err != nil {
			return out, err
		}
		if e.remote == nil {
			out = append(out, local)
			continue
		}

		key := path.Join(path.Dir(e.remote.Key), filepath.Base(local))
		if err := e.store.UploadFile(ctx, local, e.remote.Bucket, key); err != nil {
			return out, fmt.Errorf("failed to upload shard %d: %w", i, err)
		}
		out = append(out, storage.ObjectURI{Bucket: e.remote.Bucket, Key: key}.String())
		if err := e.fs.Remove(local); err != nil {
			e.logger.WithError(err).Warnf("Failed to remove staged shard %s", local)
		}
	}
	return out, nil
}

func (e *Exporter) writeShard(local string, records []dataset.Record, firstIndex int) error {
	pending, err := afero.CreatePending(e.fs, local)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", local, err)
	}
	err = formats[e.format].write(pending, records, writeOptions{
		firstIndex:   firstIndex,
		fieldMapping: e.config.FieldMapping,
	})
	if err != nil {
		pending.Abort()
		return fmt.Errorf("failed to write %s: %w", local, err)
	}
	if err := pending.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", local, err)
	}
	return nil
}

