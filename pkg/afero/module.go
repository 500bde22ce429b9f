package afero

import (
	"go.uber.org/fx"
)

// Module provides the host filesystem as an afero.Fs.
var Module fx.Option = fx.Provide(NewOsFs)
