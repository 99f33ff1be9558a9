//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
)

var EngineSet = wire.NewSet(
	NewConfigProvider,
	NewMetricsRegistry,
	NewMetrics,
	NewFetcher,
	NewNormalizer,
	NewChatModel,
	NewEngine,
)

var AppSet = wire.NewSet(
	EngineSet,
	NewAPIServer,
	wire.Struct(new(ApplicationOptions), "*"),
	NewApplication,
)
