package mapper

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceAbsent means the local file named by an upload leaf does not exist.
	ErrSourceAbsent = errors.New("local source file does not exist")

	// ErrTransport wraps any store failure during get, download or upload.
	ErrTransport = errors.New("object store transfer failed")
)

// LeafError describes one failed leaf. The leaf itself was left unchanged in
// the output record.
type LeafError struct {
	Operator string
	RecordID any
	Leaf     string
	Err      error
}

func (e *LeafError) Error() string {
	return fmt.Sprintf("%s: record %v: leaf %q: %v", e.Operator, e.RecordID, e.Leaf, e.Err)
}

func (e *LeafError) Unwrap() error { return e.Err }
