//go:build wireinject
// +build wireinject

package app

import (
	"context"

	"github.com/google/wire"
	"go.uber.org/zap"

	"toolscout/internal/infra/recommend"
)

func InitializeApplication(ctx context.Context, cfg ServeConfig, logger *zap.Logger) (*Application, error) {
	wire.Build(AppSet)
	return nil, nil
}

func InitializeEngine(ctx context.Context, cfg ServeConfig, logger *zap.Logger) (*recommend.Engine, error) {
	wire.Build(EngineSet)
	return nil, nil
}
