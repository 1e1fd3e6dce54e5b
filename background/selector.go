// Package background 维护证书背景图：样式标签到内置 PNG 的固定映射，未知标签回退到默认样式。
package background

import (
	"bytes"
	"embed"
	"fmt"
	"image"
	_ "image/png"

	"github.com/ByLCY/certify/apperr"
)

//go:embed templates/*.png
var templateFS embed.FS

// Style 是封闭的背景样式枚举。
type Style int

const (
	StyleO1 Style = iota // 默认样式
	StyleO2
)

// DefaultStyle 是未知或缺省标签使用的样式。
const DefaultStyle = StyleO1

var styles = []Style{StyleO1, StyleO2}

func (s Style) String() string {
	switch s {
	case StyleO2:
		return "O2"
	default:
		return "O1"
	}
}

func (s Style) path() string {
	switch s {
	case StyleO2:
		return "templates/certificate-bg-2.png"
	default:
		return "templates/certificate-bg-1.png"
	}
}

// ParseStyle 将记录中的样式标签映射为 Style。标签区分大小写，
// 无法识别时返回 DefaultStyle。
func ParseStyle(tag string) Style {
	switch tag {
	case "O1":
		return StyleO1
	case "O2":
		return StyleO2
	default:
		return DefaultStyle
	}
}

// Image 是一张已校验的背景图。
type Image struct {
	Style  Style
	Format string // "png"
	Bytes  []byte
	Width  int // 像素
	Height int
}

// Set 保存全部背景图，构造后只读。
type Set struct {
	images map[Style]Image
}

// Load 读取并解码所有内置背景，任一失败返回 *apperr.ConfigurationError。
func Load() (*Set, error) {
	set := &Set{images: make(map[Style]Image, len(styles))}
	for _, st := range styles {
		data, err := templateFS.ReadFile(st.path())
		if err != nil {
			return nil, &apperr.ConfigurationError{Resource: "background " + st.String(), Err: err}
		}
		img, err := decode(st, data)
		if err != nil {
			return nil, &apperr.ConfigurationError{Resource: "background " + st.String(), Err: err}
		}
		set.images[st] = img
	}
	return set, nil
}

// Select 返回标签对应的背景，从不失败。
func (s *Set) Select(tag string) Image {
	return s.Get(ParseStyle(tag))
}

// Get 按样式返回背景，未加载的样式回退到 DefaultStyle。
func (s *Set) Get(style Style) Image {
	if img, ok := s.images[style]; ok {
		return img
	}
	return s.images[DefaultStyle]
}

func decode(st Style, data []byte) (Image, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Image{}, fmt.Errorf("解码背景图失败: %w", err)
	}
	if format != "png" {
		return Image{}, fmt.Errorf("背景图格式 %s 不受支持", format)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Image{}, fmt.Errorf("背景图尺寸无效: %dx%d", cfg.Width, cfg.Height)
	}
	return Image{Style: st, Format: format, Bytes: data, Width: cfg.Width, Height: cfg.Height}, nil
}
