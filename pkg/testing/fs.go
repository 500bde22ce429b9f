package testing

import (
	spfafero "github.com/spf13/afero"

	"github.com/data-juicer/dj-agent/pkg/afero"
)

// ReadOnlyFs wraps base so every write or removal fails.
func ReadOnlyFs(base afero.Fs) afero.Fs {
	return spfafero.NewReadOnlyFs(base)
}
