// Package common holds the read, map and export pipeline every dj-agent
// command runs.
package common

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/data-juicer/dj-agent/pkg/afero"
	"github.com/data-juicer/dj-agent/pkg/dataset"
	"github.com/data-juicer/dj-agent/pkg/exporter"
	"github.com/data-juicer/dj-agent/pkg/logging"
	"github.com/data-juicer/dj-agent/pkg/mapper"
)

const metricsShutdownTimeout = 5 * time.Second

// Pipeline reads the input dataset, optionally maps it and exports the result.
type Pipeline struct {
	config   Config
	exporter *exporter.Exporter

	fs       afero.Fs
	logger   logging.Interface
	registry *prometheus.Registry
}

// Result describes a finished run.
type Result struct {
	RunID   string
	Records int
	Outputs []string
	Summary *mapper.Summary
}

func NewPipeline(config *Config) (*Pipeline, error) {
	exp, err := exporter.New(config.Export,
		exporter.WithFs(config.Fs),
		exporter.WithStore(config.Store),
		exporter.WithLogger(config.Logger.WithField("component", "exporter")),
	)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		config:   *config,
		exporter: exp,
		fs:       config.Fs,
		logger:   config.Logger,
		registry: config.Registry,
	}, nil
}

// Run processes the dataset with m, which may be nil for a plain export.
// Per-leaf failures do not fail the run; they are logged and returned in the
// summary.
func (p *Pipeline) Run(ctx context.Context, m mapper.Mapper) (*Result, error) {
	result := &Result{RunID: uuid.NewString(), Summary: &mapper.Summary{}}
	logger := p.logger.WithField("run_id", result.RunID)

	stopMetrics, err := p.serveMetrics(logger)
	if err != nil {
		return nil, err
	}
	defer stopMetrics()

	logger.Infof("Loading dataset from %s", p.config.Dataset.InputPath)
	ds, err := dataset.ReadJSONFile(p.fs, p.config.Dataset.InputPath)
	if err != nil {
		return nil, err
	}
	result.Records = ds.Count()

	if m != nil {
		start := time.Now()
		logger.WithField("operator", m.Name()).Infof("Processing %d records", ds.Count())
		ds, err = ds.Map(ctx, mapper.BatchFunc(m, result.Summary),
			dataset.WithBatchSize(p.config.Dataset.BatchSize),
			dataset.WithConcurrency(p.config.Dataset.Concurrency),
		)
		if err != nil {
			return nil, fmt.Errorf("%s failed: %w", m.Name(), err)
		}
		p.logSummary(logger.WithField("operator", m.Name()), result.Summary, time.Since(start))
	}

	result.Outputs, err = p.exporter.Export(ctx, ds)
	if err != nil {
		return nil, fmt.Errorf("export failed: %w", err)
	}
	logger.WithField("files", len(result.Outputs)).Infof("Exported %d records to %s", ds.Count(), p.config.Export.ExportPath)
	return result, nil
}

func (p *Pipeline) logSummary(logger logging.Interface, s *mapper.Summary, elapsed time.Duration) {
	for _, o := range mapper.Outcomes {
		logger = logger.WithField(o.String(), s.Count(o))
	}
	logger.WithField("elapsed", elapsed.String()).Info("Run summary")

	if err := s.Err(); err != nil {
		logger.WithError(err).Warnf("%d leaves kept their original value after failing", len(s.Failures()))
	}
}

// serveMetrics exposes the registry on the configured address and returns a
// function stopping the server.
func (p *Pipeline) serveMetrics(logger logging.Interface) (func(), error) {
	addr := p.config.Metrics.ListenAddress
	if addr == "" {
		return func() {}, nil
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen for metrics on %s: %w", addr, err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{}))
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("Metrics server stopped")
		}
	}()
	logger.Infof("Serving metrics on %s/metrics", ln.Addr())

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.WithError(err).Warn("Failed to stop metrics server")
		}
	}, nil
}
