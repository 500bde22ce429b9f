package exporter

import (
	"archive/tar"
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/data-juicer/dj-agent/pkg/constants"
	"github.com/data-juicer/dj-agent/pkg/dataset"
)

// Non-ASCII text is written as is.
var json = jsoniter.Config{
	EscapeHTML:             false,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
}.Froze()

func writeJSONLines(w io.Writer, records []dataset.Record, _ writeOptions) error {
	bw := bufio.NewWriter(w)
	for _, r := range records {
		b, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("encoding record: %w", err)
		}
		if _, err := bw.Write(append(b, '\n')); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// writeCSV writes a header of the sorted field union. Strings are written
// verbatim, nested values as JSON and missing fields as empty cells.
func writeCSV(w io.Writer, records []dataset.Record, _ writeOptions) error {
	cols := dataset.FromList(records).Columns()

	cw := csv.NewWriter(w)
	if err := cw.Write(cols); err != nil {
		return err
	}
	row := make([]string, len(cols))
	for _, r := range records {
		for i, c := range cols {
			cell, err := cellString(r[c])
			if err != nil {
				return fmt.Errorf("encoding field %s: %w", c, err)
			}
			row[i] = cell
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func cellString(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case fmt.Stringer:
		return t.String(), nil
	}
	b, err := json.Marshal(v)
	return string(b), err
}

// writeWebDataset writes one tar member per field named <key>.<ext>, where
// key comes from __key__ or the record position and ext is the field name
// unless fieldMapping renames it.
func writeWebDataset(w io.Writer, records []dataset.Record, opts writeOptions) error {
	tw := tar.NewWriter(w)
	for i, r := range records {
		key := fmt.Sprintf("%09d", opts.firstIndex+i)
		if k, ok := r[constants.WebDatasetKeyField].(string); ok && k != "" {
			key = k
		}

		fields := make([]string, 0, len(r))
		for f := range r {
			if f != constants.WebDatasetKeyField {
				fields = append(fields, f)
			}
		}
		sort.Strings(fields)

		for _, f := range fields {
			if r[f] == nil {
				continue
			}
			payload, err := memberPayload(r[f])
			if err != nil {
				return fmt.Errorf("sample %s field %s: %w", key, f, err)
			}
			ext := f
			if mapped, ok := opts.fieldMapping[f]; ok && mapped != "" {
				ext = mapped
			}
			hdr := &tar.Header{
				Name:    key + "." + ext,
				Mode:    0o644,
				Size:    int64(len(payload)),
				ModTime: time.Unix(0, 0),
			}
			if err := tw.WriteHeader(hdr); err != nil {
				return err
			}
			if _, err := tw.Write(payload); err != nil {
				return err
			}
		}
	}
	return tw.Close()
}

func memberPayload(v any) ([]byte, error) {
	switch t := v.(type) {
	case []byte:
		return t, nil
	case string:
		return []byte(t), nil
	}
	return json.Marshal(v)
}
