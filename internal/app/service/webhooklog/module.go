package webhooklog

import "go.uber.org/fx"

// Module exposes the webhook audit log service via Fx.
var Module = fx.Options(
	fx.Provide(New),
)
