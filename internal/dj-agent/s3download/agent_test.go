package s3download

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/data-juicer/dj-agent/internal/dj-agent/common"
	"github.com/data-juicer/dj-agent/pkg/afero"
	"github.com/data-juicer/dj-agent/pkg/logging"
	"github.com/data-juicer/dj-agent/pkg/mapper"
	"github.com/data-juicer/dj-agent/pkg/storage"
	testingPkg "github.com/data-juicer/dj-agent/pkg/testing"
)

type fixture struct {
	v        *viper.Viper
	fs       afero.Fs
	store    *testingPkg.MockObjectStore
	registry *prometheus.Registry
	params   downloadParams
}

func newFixture(t *testing.T, settings map[string]any) fixture {
	t.Helper()
	v := viper.New()
	for k, val := range settings {
		v.Set(k, val)
	}
	f := fixture{v: v, fs: afero.NewMemMapFs(), store: &testingPkg.MockObjectStore{}, registry: prometheus.NewRegistry()}

	pipelineConfig, err := common.NewConfig(
		common.WithViper(v),
		common.WithLogger(logging.NewTestLogger()),
		common.WithFs(f.fs),
		common.WithStore(f.store),
		common.WithRegistry(f.registry),
	)
	require.NoError(t, err)
	pipeline, err := common.NewPipeline(pipelineConfig)
	require.NoError(t, err)

	f.params = downloadParams{
		Logger:   logging.NewTestLogger(),
		Fs:       f.fs,
		Store:    f.store,
		Metrics:  mapper.NewMetrics(f.registry),
		Pipeline: pipeline,
	}
	return f
}

func TestConfig(t *testing.T) {
	f := newFixture(t, map[string]any{
		"download.download_field":  "images",
		"download.save_dir":        "/cache",
		"download.resume_download": true,
		"export.export_path":       "/out.jsonl",
	})

	config, err := NewConfig(WithViper(f.v), WithAppParams(f.params))
	require.NoError(t, err)
	require.NoError(t, config.Validate())
	assert.Equal(t, mapper.S3DownloadConfig{
		DownloadField:  "images",
		SaveDir:        "/cache",
		ResumeDownload: true,
	}, config.Download)

	_, err = NewConfig(WithViper(nil))
	assert.Error(t, err)

	config, err = NewConfig(WithViper(viper.New()), WithAppParams(f.params))
	require.NoError(t, err)
	assert.Error(t, config.Validate(), "download_field is required")

	config, err = NewConfig(WithViper(f.v))
	require.NoError(t, err)
	assert.Error(t, config.Validate(), "dependencies are required")
}

func TestAgent_Start(t *testing.T) {
	f := newFixture(t, map[string]any{
		"dataset.input_path":       "/data/in.jsonl",
		"download.download_field":  "images",
		"download.save_dir":        "/cache",
		"download.resume_download": true,
		"export.export_path":       "/data/out.jsonl",
	})
	require.NoError(t, afero.WriteFile(f.fs, "/data/in.jsonl", []byte(
		`{"id":1,"images":["s3://bkt/a.png","/local/b.png"]}`+"\n"+
			`{"id":2,"images":["s3://bkt/gone.png"]}`+"\n"), 0o644))

	f.store.On("DownloadToFile", mock.Anything, "bkt", "a.png", "/cache/a.png").
		Run(func(args mock.Arguments) {
			_ = afero.WriteFile(f.fs, args.String(3), []byte("png"), 0o644)
		}).Return(nil).Once()
	f.store.On("DownloadToFile", mock.Anything, "bkt", "gone.png", "/cache/gone.png").
		Return(storage.ErrNotFound).Once()

	config, err := NewConfig(WithViper(f.v), WithAppParams(f.params))
	require.NoError(t, err)
	agent, err := NewAgent(config, f.params.Pipeline)
	require.NoError(t, err)

	result, err := agent.Start(context.Background())
	require.NoError(t, err)
	f.store.AssertExpectations(t)

	assert.Equal(t, 1, result.Summary.Count(mapper.Transferred))
	assert.Equal(t, 1, result.Summary.Count(mapper.SkippedAlreadyLocal))
	assert.Equal(t, 1, result.Summary.Count(mapper.Failed))
	assert.Error(t, result.Summary.Err())

	got, err := afero.ReadFile(f.fs, "/data/out.jsonl")
	require.NoError(t, err)
	assert.Equal(t,
		`{"id":1,"images":["/cache/a.png","/local/b.png"]}`+"\n"+
			`{"id":2,"images":["s3://bkt/gone.png"]}`+"\n",
		string(got))

	count, err := testutil.GatherAndCount(f.registry, "dj_transfer_leaves_total")
	require.NoError(t, err)
	assert.Equal(t, 3, count, "one series per outcome seen")
}
