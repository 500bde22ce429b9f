package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/data-juicer/dj-agent/pkg/afero"
)

// forbiddenBucket answers every request with 403 AccessDenied.
const forbiddenBucket = "forbidden"

// fakeS3 is a path-style S3 endpoint holding objects in memory.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	gets    int
	puts    []string
}

func newFakeS3(t *testing.T) (*fakeS3, *httptest.Server) {
	t.Helper()
	f := &fakeS3{objects: map[string][]byte{}}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeS3) put(bucket, key string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[bucket+"/"+key] = data
}

func (f *fakeS3) object(bucket, key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[bucket+"/"+key]
	return data, ok
}

func (f *fakeS3) getCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gets
}

func (f *fakeS3) putKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.puts...)
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/")
	bucket, _, _ := strings.Cut(path, "/")

	if bucket == forbiddenBucket {
		writeError(w, r, http.StatusForbidden, "AccessDenied")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		data, ok := f.objects[path]
		if !ok {
			writeError(w, r, http.StatusNotFound, "NoSuchKey")
			return
		}
		if r.Method == http.MethodGet {
			f.gets++
		}
		w.Header().Set("ETag", fmt.Sprintf("%q", "etag-"+path))
		http.ServeContent(w, r, path, time.Time{}, bytes.NewReader(data))
	case http.MethodPut:
		data, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		f.objects[path] = data
		f.puts = append(f.puts, path)
		w.Header().Set("ETag", fmt.Sprintf("%q", "etag-"+path))
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code string) {
	if r.Method == http.MethodHead {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>%s</Code><Message>%s</Message></Error>`, code, code)
}

func newTestStore(t *testing.T, srv *httptest.Server, fs afero.Fs) *Store {
	t.Helper()
	cfg, err := NewConfig(
		WithRegion("us-east-1"),
		WithEndpoint(srv.URL, true),
		WithCredentials("AKIDEXAMPLE", "SECRETEXAMPLE", ""),
	)
	require.NoError(t, err)

	store, err := New(context.Background(), cfg, fs)
	require.NoError(t, err)
	return store
}
