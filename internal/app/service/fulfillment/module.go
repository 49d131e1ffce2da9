package fulfillment

import "go.uber.org/fx"

// Module exposes the order fulfillment engine via Fx.
var Module = fx.Options(
	fx.Provide(NewEngine),
)
