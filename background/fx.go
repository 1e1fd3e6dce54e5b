package background

import "go.uber.org/fx"

// Module 提供启动时解码好的背景集合。
var Module = fx.Module("background",
	fx.Provide(Load),
)
