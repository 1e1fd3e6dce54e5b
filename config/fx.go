package config

import (
	"go.uber.org/fx"

	"github.com/ByLCY/certify/certificate"
	"github.com/ByLCY/certify/fonts"
	"github.com/ByLCY/certify/logger"
	"github.com/ByLCY/certify/record"
	"github.com/ByLCY/certify/server"
)

// Module 提供已解析的 Config 及各组件需要的子配置。
func Module(cfg Config) fx.Option {
	return fx.Module("config",
		fx.Supply(cfg),
		fx.Provide(
			func(c Config) logger.Config { return c.Log },
			func(c Config) fonts.Options { return c.FontOptions() },
			func(c Config) record.Options { return c.StoreOptions() },
			func(c Config) certificate.Options { return c.CertificateOptions() },
			func(c Config) server.Options { return c.ServerOptions() },
		),
	)
}
