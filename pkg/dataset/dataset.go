// Package dataset is the in-process record dataset the agents run mappers
// over and hand to the exporter.
package dataset

import (
	"sort"

	jsoniter "github.com/json-iterator/go"
)

// json decodes numbers as json.Number so integer ids survive a round trip.
var json = jsoniter.Config{
	EscapeHTML:             false,
	SortMapKeys:            true,
	UseNumber:              true,
	ValidateJsonRawMessage: true,
}.Froze()

// Record maps field names to values. Values are whatever JSON decoding
// produces: strings, json.Number, bools, nil, []any and map[string]any.
type Record map[string]any

// Clone returns a shallow copy. Field values are shared.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Dataset is an ordered, immutable list of records.
type Dataset struct {
	records []Record
}

// FromList wraps records. The slice is copied; the records are not.
func FromList(records []Record) *Dataset {
	return &Dataset{records: append([]Record(nil), records...)}
}

// ToList returns the records in order.
func (d *Dataset) ToList() []Record {
	return append([]Record(nil), d.records...)
}

func (d *Dataset) Count() int { return len(d.records) }

// Columns returns the sorted union of field names over all records.
func (d *Dataset) Columns() []string {
	seen := map[string]struct{}{}
	for _, r := range d.records {
		for k := range r {
			seen[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// DropColumns returns a dataset without the named fields. Records that carry
// none of them are shared with the receiver.
func (d *Dataset) DropColumns(cols ...string) *Dataset {
	if len(cols) == 0 {
		return d
	}

	out := make([]Record, len(d.records))
	for i, r := range d.records {
		out[i] = r
		for _, c := range cols {
			if _, ok := r[c]; ok {
				out[i] = without(r, cols)
				break
			}
		}
	}
	return &Dataset{records: out}
}

func without(r Record, cols []string) Record {
	out := r.Clone()
	for _, c := range cols {
		delete(out, c)
	}
	return out
}

// SizeBytes estimates the serialized size as the JSON lines length of all
// records. Unencodable records count as zero.
func (d *Dataset) SizeBytes() int64 {
	var total int64
	for _, r := range d.records {
		b, err := json.Marshal(r)
		if err != nil {
			continue
		}
		total += int64(len(b)) + 1
	}
	return total
}

// Slice returns records [from, to) as a new dataset.
func (d *Dataset) Slice(from, to int) *Dataset {
	if from < 0 {
		from = 0
	}
	if to > len(d.records) {
		to = len(d.records)
	}
	if from >= to {
		return &Dataset{}
	}
	return &Dataset{records: d.records[from:to:to]}
}
