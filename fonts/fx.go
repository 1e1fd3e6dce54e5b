package fonts

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module 在启动时加载一次字体注册表，失败时中止启动。
var Module = fx.Module("fonts",
	fx.Provide(NewFromFx),
)

// NewFromFx 加载注册表并记录每个逻辑字体的来源家族名。
func NewFromFx(opts Options, log *zap.Logger) (*Registry, error) {
	reg, err := Load(opts)
	if err != nil {
		return nil, err
	}
	for _, name := range reg.Names() {
		face, _ := reg.Resolve(name)
		log.Debug("font loaded", zap.String("name", string(name)), zap.String("family", face.Family), zap.Int("bytes", len(face.Program)))
	}
	return reg, nil
}
