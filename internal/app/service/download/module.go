package download

import "go.uber.org/fx"

// Module exposes the download access gateway via Fx.
var Module = fx.Options(
	fx.Provide(New),
)
