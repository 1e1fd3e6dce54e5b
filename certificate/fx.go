package certificate

import (
	"go.uber.org/fx"

	"github.com/ByLCY/certify/background"
	"github.com/ByLCY/certify/fonts"
	"github.com/ByLCY/certify/record"
)

// Module 提供 *Service。
var Module = fx.Module("certificate",
	fx.Provide(NewFromFx),
)

// Params 是 Service 的依赖。
type Params struct {
	fx.In

	Store       record.Store
	Registry    *fonts.Registry
	Backgrounds *background.Set
	Options     Options
}

// NewFromFx 从 fx 依赖创建服务。
func NewFromFx(p Params) *Service {
	return NewService(p.Store, p.Registry, p.Backgrounds, p.Options)
}
