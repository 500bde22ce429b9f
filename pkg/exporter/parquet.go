package exporter

import (
	"errors"
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"

	"github.com/data-juicer/dj-agent/pkg/dataset"
)

// writeParquet writes every field of the shard as an optional string
// column. Values are encoded the way writeCSV encodes cells, and missing or
// nil fields are stored as nulls.
func writeParquet(w io.Writer, records []dataset.Record, _ writeOptions) error {
	cols := dataset.FromList(records).Columns()
	if len(cols) == 0 {
		return errors.New("records have no fields")
	}

	group := make(parquet.Group, len(cols))
	for _, c := range cols {
		group[c] = parquet.Optional(parquet.String())
	}
	schema := parquet.NewSchema("dataset", group)

	index := make([]int, len(cols))
	for i, c := range cols {
		leaf, ok := schema.Lookup(c)
		if !ok {
			return fmt.Errorf("column %s missing from schema", c)
		}
		index[i] = leaf.ColumnIndex
	}

	pw := parquet.NewWriter(w, schema)
	rows := make([]parquet.Row, 0, len(records))
	for _, r := range records {
		row := make(parquet.Row, len(cols))
		for i, c := range cols {
			v, ok := r[c]
			if !ok || v == nil {
				row[index[i]] = parquet.NullValue().Level(0, 0, index[i])
				continue
			}
			cell, err := cellString(v)
			if err != nil {
				return fmt.Errorf("encoding field %s: %w", c, err)
			}
			row[index[i]] = parquet.ByteArrayValue([]byte(cell)).Level(0, 1, index[i])
		}
		rows = append(rows, row)
	}
	if _, err := pw.WriteRows(rows); err != nil {
		return err
	}
	return pw.Close()
}
