//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"
)

func InitializeApplication() (*Application, func(), error) {
	wire.Build(
		ConfigSet,
		LoggerSet,
		MetricsSet,
		AdminAuthSet,
		HandlerSet,
		ServerSet,
		wire.Struct(new(Application), "*"),
	)
	return nil, nil, nil
}
