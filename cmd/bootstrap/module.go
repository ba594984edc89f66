package bootstrap

import (
	"spa-storefront/cmd/bootstrap/components"

	"go.uber.org/fx"
)

var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	JWTModule,
	CacheModule,
	components.PersistenceModule,
	EventsModule,
	components.UseCaseModule,
	components.HandlerModule,
)
