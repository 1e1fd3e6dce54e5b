package fonts

import (
	"github.com/go-fonts/dejavu/dejavuserif"
	"github.com/go-fonts/dejavu/dejavuserifbold"
	"github.com/go-fonts/dejavu/dejavuserifitalic"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// builtinPrograms 为每个逻辑字体提供内置的 TrueType 程序。
// 正文使用 Go 无衬线字体，衬线与签名使用 DejaVu Serif 家族。
var builtinPrograms = map[Name][]byte{
	BodyRegular:  goregular.TTF,
	BodyBold:     gobold.TTF,
	SerifRegular: dejavuserif.TTF,
	SerifBold:    dejavuserifbold.TTF,
	Script:       dejavuserifitalic.TTF,
}

// builtinStyles 记录每个逻辑字体的样式标记（与 PDF 后端的 "B"/"I" 约定一致）。
var builtinStyles = map[Name]string{
	BodyRegular:  "",
	BodyBold:     "B",
	SerifRegular: "",
	SerifBold:    "B",
	Script:       "I",
}
