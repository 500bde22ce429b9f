package exporter

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/data-juicer/dj-agent/pkg/dataset"
)

// ErrUnsupportedFormat is returned for formats without a writer.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Format is an export file format.
type Format string

const (
	FormatJSON       Format = "json"
	FormatJSONL      Format = "jsonl"
	FormatCSV        Format = "csv"
	FormatParquet    Format = "parquet"
	FormatWebDataset Format = "webdataset"
)

// writeFunc serializes one shard.
type writeFunc func(w io.Writer, records []dataset.Record, opts writeOptions) error

type writeOptions struct {
	// firstIndex is the dataset position of records[0].
	firstIndex   int
	fieldMapping map[string]string
}

type formatSpec struct {
	ext   string
	write writeFunc
}

// formats binds every supported format to its writer. json and jsonl both
// produce JSON lines.
var formats = map[Format]formatSpec{
	FormatJSON:       {ext: ".json", write: writeJSONLines},
	FormatJSONL:      {ext: ".jsonl", write: writeJSONLines},
	FormatCSV:        {ext: ".csv", write: writeCSV},
	FormatParquet:    {ext: ".parquet", write: writeParquet},
	FormatWebDataset: {ext: ".tar", write: writeWebDataset},
}

// ParseFormat resolves a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := formats[f]; !ok {
		return "", fmt.Errorf("%w: %q (supported: json, jsonl, csv, parquet, webdataset)", ErrUnsupportedFormat, s)
	}
	return f, nil
}

// Extension is the file extension shards of this format are written with.
func (f Format) Extension() string {
	return formats[f].ext
}
