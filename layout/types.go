package layout

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ByLCY/certify/fonts"
)

// 该文件定义版式表：一页证书上按绘制顺序排列的元素。
// 坐标统一为 pt，原点在页面左上角，y 轴向下。

// A4 横向页面尺寸（pt）。
const (
	A4LandscapeWidth  = 841.89
	A4LandscapeHeight = 595.28
)

// Table 是纯数据的版式描述，交给渲染器一次性绘制。
type Table struct {
	Page  Page   `json:"page"`
	Items []Item `json:"items"`
}

// Page 记录页面尺寸（pt）。
type Page struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Point 是页面坐标中的一个点（pt）。
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect 是左上角坐标加宽高（pt）。
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right 返回矩形右边界。
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom 返回矩形下边界。
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Overlaps 判断两个矩形是否有面积重叠。
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.Right() && o.X < r.Right() && r.Y < o.Bottom() && o.Y < r.Bottom()
}

// Contains 判断 o 是否完全落在 r 内。
func (r Rect) Contains(o Rect) bool {
	return o.X >= r.X && o.Y >= r.Y && o.Right() <= r.Right() && o.Bottom() <= r.Bottom()
}

// Inset 向外（d 为负时向内）扩展矩形四边。
func (r Rect) Inset(d float64) Rect {
	return Rect{X: r.X - d, Y: r.Y - d, Width: r.Width + 2*d, Height: r.Height + 2*d}
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Hex 返回 #rrggbb 形式。
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseColor 解析 #rgb / #rrggbb / #rrggbbaa（忽略 alpha）。
func ParseColor(value string) (Color, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(value), "#")
	var parts [3]string
	switch len(raw) {
	case 3:
		for i := range parts {
			parts[i] = strings.Repeat(string(raw[i]), 2)
		}
	case 6, 8:
		parts = [3]string{raw[0:2], raw[2:4], raw[4:6]}
	default:
		return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
	var rgb [3]int
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("颜色值 %s 无法解析: %w", value, err)
		}
		rgb[i] = int(n)
	}
	return Color{R: rgb[0], G: rgb[1], B: rgb[2]}, nil
}

// MustColor 用于包内常量颜色，解析失败直接 panic。
func MustColor(value string) Color {
	c, err := ParseColor(value)
	if err != nil {
		panic(err)
	}
	return c
}

// Align 表示文本相对锚点的水平对齐方式。
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Offset 根据已测量的文本宽度返回绘制起点相对锚点的 x 偏移。
func (a Align) Offset(width float64) float64 {
	switch a {
	case AlignCenter:
		return -width / 2
	case AlignRight:
		return -width
	default:
		return 0
	}
}

// Kind 区分版式表中的元素类型。
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
	KindLink  Kind = "link"
)

// Item 是版式表中的一个元素，只有本包定义的三种类型可以实现。
type Item interface {
	Kind() Kind
	validate() error
}

// TextRun 是一段单行文本，锚点为基线位置。
type TextRun struct {
	Content string     `json:"content"`
	Font    fonts.Name `json:"font"`
	SizePt  float64    `json:"sizePt"`
	Color   Color      `json:"color"`
	Anchor  Point      `json:"anchor"`
	Align   Align      `json:"align,omitempty"`
}

// ImagePlacement 把一张位图放到页面上的矩形区域。
type ImagePlacement struct {
	Name   string `json:"name"`
	Format string `json:"format"`
	Bytes  []byte `json:"-"`
	Rect   Rect   `json:"rect"`
}

// LinkRegion 是可点击的 URI 区域。
type LinkRegion struct {
	Rect Rect   `json:"rect"`
	URL  string `json:"url"`
}

func (TextRun) Kind() Kind        { return KindText }
func (ImagePlacement) Kind() Kind { return KindImage }
func (LinkRegion) Kind() Kind     { return KindLink }

func (t TextRun) validate() error {
	if t.Font == "" {
		return errors.New("text run has no font")
	}
	if t.SizePt <= 0 {
		return fmt.Errorf("text run %q: font size %.2f must be positive", t.Content, t.SizePt)
	}
	return nil
}

func (p ImagePlacement) validate() error {
	if p.Name == "" || len(p.Bytes) == 0 {
		return fmt.Errorf("image %q has no data", p.Name)
	}
	if p.Rect.Width <= 0 || p.Rect.Height <= 0 {
		return fmt.Errorf("image %q: size %.2fx%.2f must be positive", p.Name, p.Rect.Width, p.Rect.Height)
	}
	return nil
}

func (l LinkRegion) validate() error {
	if l.URL == "" {
		return errors.New("link region has no url")
	}
	if l.Rect.Width <= 0 || l.Rect.Height <= 0 {
		return fmt.Errorf("link region: size %.2fx%.2f must be positive", l.Rect.Width, l.Rect.Height)
	}
	return nil
}

// Validate 检查页面尺寸与每个元素。
func (t *Table) Validate() error {
	if t == nil {
		return errors.New("layout: nil table")
	}
	if t.Page.Width <= 0 || t.Page.Height <= 0 {
		return fmt.Errorf("layout: page size %.2fx%.2f must be positive", t.Page.Width, t.Page.Height)
	}
	for i, item := range t.Items {
		if item == nil {
			return fmt.Errorf("layout: item %d is nil", i)
		}
		if err := item.validate(); err != nil {
			return fmt.Errorf("layout: item %d: %w", i, err)
		}
	}
	return nil
}

// Fonts 返回版式表引用的全部字体（按首次出现顺序）。
func (t *Table) Fonts() []fonts.Name {
	var out []fonts.Name
	seen := map[fonts.Name]bool{}
	for _, item := range t.Items {
		run, ok := item.(TextRun)
		if !ok || seen[run.Font] {
			continue
		}
		seen[run.Font] = true
		out = append(out, run.Font)
	}
	return out
}

// Texts 返回全部文本元素。
func (t *Table) Texts() []TextRun {
	var out []TextRun
	for _, item := range t.Items {
		if run, ok := item.(TextRun); ok {
			out = append(out, run)
		}
	}
	return out
}

// Images 返回全部图片元素。
func (t *Table) Images() []ImagePlacement {
	var out []ImagePlacement
	for _, item := range t.Items {
		if img, ok := item.(ImagePlacement); ok {
			out = append(out, img)
		}
	}
	return out
}

// Links 返回全部链接区域。
func (t *Table) Links() []LinkRegion {
	var out []LinkRegion
	for _, item := range t.Items {
		if link, ok := item.(LinkRegion); ok {
			out = append(out, link)
		}
	}
	return out
}
