//go:build wireinject

package app

import (
	"context"

	"github.com/google/wire"

	jgcfg "jongga/internal/config"
)

func buildAppWithWire(ctx context.Context, cfg *jgcfg.Config) (*App, error) {
	wire.Build(
		provideAppBuilder,
		wire.Bind(new(appBuilderDeps), new(*AppBuilder)),
		provideAppFromBuilder,
	)
	return nil, nil
}

type appBuilderDeps interface {
	Build(context.Context) (*App, error)
}

func provideAppFromBuilder(b appBuilderDeps, ctx context.Context) (*App, error) {
	return b.Build(ctx)
}

func provideAppBuilder(cfg *jgcfg.Config) *AppBuilder {
	return NewAppBuilder(cfg)
}
