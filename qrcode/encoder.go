// Package qrcode 将验证地址编码为二维码并栅格化为 8 位灰度 PNG。
package qrcode

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"

	"github.com/ByLCY/certify/apperr"
)

// 默认参数：M 级纠错，每个模块 8 像素，4 个模块的静区。
// 65pt 的印刷尺寸下约 300dpi，足够手机扫描。
const (
	DefaultModulePx  = 8
	DefaultQuietZone = 4
)

// Level 是纠错等级。
type Level = qr.ErrorCorrectionLevel

const (
	LevelL = qr.L
	LevelM = qr.M
	LevelQ = qr.Q
	LevelH = qr.H
)

// Encoder 描述二维码的编码与栅格化参数。
// ModulePx、QuietZone 为零时取默认值；Level 的零值是 LevelL，需要 M 级时用 New。
type Encoder struct {
	Level     Level
	ModulePx  int
	QuietZone int
}

// Image 是编码结果。
type Image struct {
	Content string
	PNG     []byte
	Modules int // 每边模块数（不含静区）
	SizePx  int // 每边像素数（含静区）
}

var errEmptyContent = errors.New("content is empty")

// New 返回默认参数的编码器。
func New() *Encoder {
	return &Encoder{Level: LevelM, ModulePx: DefaultModulePx, QuietZone: DefaultQuietZone}
}

// Encode 编码 content。相同输入产生逐字节相同的 PNG。
// 输入为空或超出二维码容量时返回 *apperr.CodeGenerationError。
func (e *Encoder) Encode(content string) (Image, error) {
	if content == "" {
		return Image{}, &apperr.CodeGenerationError{Content: content, Err: errEmptyContent}
	}
	modulePx, quiet := e.params()

	code, err := qr.Encode(content, e.Level, qr.Auto)
	if err != nil {
		return Image{}, &apperr.CodeGenerationError{Content: content, Err: err}
	}
	modules := code.Bounds().Dx()
	offset := quiet * modulePx
	size := modules*modulePx + 2*offset

	// Scale 按整数倍放大，目标尺寸恰为模块数的整数倍时不会产生额外边距
	scaled, err := barcode.Scale(code, modules*modulePx, modules*modulePx)
	if err != nil {
		return Image{}, &apperr.CodeGenerationError{Content: content, Err: fmt.Errorf("scale to %dpx: %w", modules*modulePx, err)}
	}

	// 白底 8 位灰度画布，码图画在静区之内；PDF 后端不接受 16 位 PNG
	gray := image.NewGray(image.Rect(0, 0, size, size))
	draw.Draw(gray, gray.Bounds(), image.White, image.Point{}, draw.Src)
	dst := image.Rect(offset, offset, offset+modules*modulePx, offset+modules*modulePx)
	draw.Draw(gray, dst, scaled, scaled.Bounds().Min, draw.Src)

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, gray); err != nil {
		return Image{}, &apperr.CodeGenerationError{Content: content, Err: fmt.Errorf("png encode: %w", err)}
	}
	return Image{Content: content, PNG: buf.Bytes(), Modules: modules, SizePx: size}, nil
}

func (e *Encoder) params() (int, int) {
	modulePx := e.ModulePx
	if modulePx <= 0 {
		modulePx = DefaultModulePx
	}
	quiet := e.QuietZone
	if quiet <= 0 {
		quiet = DefaultQuietZone
	}
	return modulePx, quiet
}
