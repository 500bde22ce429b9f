package dataset

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/data-juicer/dj-agent/pkg/afero"
)

const maxLineBytes = 64 << 20

// ReadJSON reads either JSON lines (one object per line, blank lines
// skipped) or a single top-level JSON array of objects.
func ReadJSON(r io.Reader) (*Dataset, error) {
	br := bufio.NewReader(r)
	if first, err := peekNonSpace(br); err != nil {
		if err == io.EOF {
			return &Dataset{}, nil
		}
		return nil, err
	} else if first == '[' {
		var records []Record
		if err := json.NewDecoder(br).Decode(&records); err != nil {
			return nil, fmt.Errorf("decoding JSON array: %w", err)
		}
		return &Dataset{records: records}, nil
	}

	scanner := bufio.NewScanner(br)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	records := []Record{}
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if rec == nil {
			return nil, fmt.Errorf("line %d: expected a JSON object", line)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading JSON lines: %w", err)
	}
	return &Dataset{records: records}, nil
}

// ReadJSONFile reads path from fs with ReadJSON.
func ReadJSONFile(fs afero.Fs, path string) (*Dataset, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	ds, err := ReadJSON(f)
	if err != nil {
		return nil, fmt.Errorf("reading dataset %s: %w", path, err)
	}
	return ds, nil
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return b, br.UnreadByte()
	}
}
