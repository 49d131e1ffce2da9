package store

import "go.uber.org/fx"

// Module exposes the store service via Fx.
var Module = fx.Options(
	fx.Provide(New),
)
