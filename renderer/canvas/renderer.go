// Package canvasrenderer 使用 github.com/tdewolff/canvas 把版式表栅格化为 PNG 预览图。
package canvasrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	xdraw "golang.org/x/image/draw"

	"github.com/ByLCY/certify/fonts"
	"github.com/ByLCY/certify/layout"
	"github.com/ByLCY/certify/renderer"
)

// DefaultDPMM 是预览图的默认分辨率（每毫米像素数，约 96 dpi）。
const DefaultDPMM = 96 / 25.4

const linkStrokeWidth = 0.3 // mm

// Renderer draws layout tables via github.com/tdewolff/canvas.
type Renderer struct {
	reg       *fonts.Registry
	dpmm      float64
	showLinks bool

	fontMu       sync.Mutex
	fontFamilies map[fonts.Name]*fontFamilyEntry
}

var _ renderer.Renderer = (*Renderer)(nil)

type fontFamilyEntry struct {
	family *canvas.FontFamily
	style  canvas.FontStyle
}

// Options configures the canvas renderer.
type Options struct {
	DPMM      float64 // <=0 时使用 DefaultDPMM
	ShowLinks bool    // 在预览中描出链接区域
}

// NewRenderer creates a preview renderer backed by the shared font registry.
func NewRenderer(reg *fonts.Registry, opts Options) *Renderer {
	dpmm := opts.DPMM
	if dpmm <= 0 {
		dpmm = DefaultDPMM
	}
	return &Renderer{
		reg:          reg,
		dpmm:         dpmm,
		showLinks:    opts.ShowLinks,
		fontFamilies: map[fonts.Name]*fontFamilyEntry{},
	}
}

// Render renders the table into a PNG byte slice.
func (r *Renderer) Render(tbl *layout.Table) ([]byte, error) {
	c, err := r.Canvas(tbl)
	if err != nil {
		return nil, err
	}
	img := rasterizer.Draw(c, canvas.DPMM(r.dpmm), canvas.DefaultColorSpace)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("编码预览图失败: %w", err)
	}
	return buf.Bytes(), nil
}

// Canvas 把版式表绘制到一张新画布上（单位 mm）。
func (r *Renderer) Canvas(tbl *layout.Table) (*canvas.Canvas, error) {
	if err := tbl.Validate(); err != nil {
		return nil, err
	}
	c := canvas.New(toMm(tbl.Page.Width), toMm(tbl.Page.Height))
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与版式表保持左上角为原点

	for i, item := range tbl.Items {
		var err error
		switch it := item.(type) {
		case layout.TextRun:
			err = r.drawText(ctx, it)
		case layout.ImagePlacement:
			err = r.drawImage(ctx, it)
		case layout.LinkRegion:
			if r.showLinks {
				r.drawLink(ctx, it)
			}
		}
		if err != nil {
			return nil, fmt.Errorf("绘制第 %d 个元素失败: %w", i, err)
		}
	}
	return c, nil
}

func (r *Renderer) drawText(ctx *canvas.Context, run layout.TextRun) error {
	// 字体面按 pt 创建，坐标换算为 mm。
	face, err := r.fontFace(run.Font, run.SizePt, run.Color)
	if err != nil {
		return err
	}
	var textAlign canvas.TextAlign
	switch run.Align {
	case layout.AlignCenter:
		textAlign = canvas.Center
	case layout.AlignRight:
		textAlign = canvas.Right
	default:
		textAlign = canvas.Left
	}
	line := canvas.NewTextLine(face, run.Content, textAlign)
	ctx.DrawText(toMm(run.Anchor.X), toMm(run.Anchor.Y), line)
	return nil
}

func (r *Renderer) drawImage(ctx *canvas.Context, p layout.ImagePlacement) error {
	img, _, err := image.Decode(bytes.NewReader(p.Bytes))
	if err != nil {
		return fmt.Errorf("解码图片 %s 失败: %w", p.Name, err)
	}
	// 与 PDF 一致，图片按两个方向分别拉伸以填满矩形
	fitted := fitImage(img, toMm(p.Rect.Width)*r.dpmm, toMm(p.Rect.Height)*r.dpmm)
	dpmm := float64(fitted.Bounds().Dx()) / toMm(p.Rect.Width)
	ctx.DrawImage(toMm(p.Rect.X), toMm(p.Rect.Y), fitted, canvas.DPMM(dpmm))
	return nil
}

// fitImage 把 img 重采样为 w×h 像素（四舍五入，至少 1 像素）。
func fitImage(img image.Image, w, h float64) image.Image {
	wPx := max(1, int(math.Round(w)))
	hPx := max(1, int(math.Round(h)))
	if b := img.Bounds(); b.Dx() == wPx && b.Dy() == hPx {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, wPx, hPx))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}

func (r *Renderer) drawLink(ctx *canvas.Context, link layout.LinkRegion) {
	ctx.SetFillColor(canvas.Transparent)
	ctx.SetStrokeColor(canvas.Hex("#1e88e5"))
	ctx.SetStrokeWidth(linkStrokeWidth)
	ctx.DrawPath(toMm(link.Rect.X), toMm(link.Rect.Y), canvas.Rectangle(toMm(link.Rect.Width), toMm(link.Rect.Height)))
}

func (r *Renderer) fontFace(name fonts.Name, sizePt float64, col layout.Color) (*canvas.FontFace, error) {
	family, style, err := r.ensureFontFamily(name)
	if err != nil {
		return nil, err
	}
	return family.Face(sizePt, colorFromLayout(col), style, canvas.FontNormal), nil
}

func (r *Renderer) ensureFontFamily(name fonts.Name) (*canvas.FontFamily, canvas.FontStyle, error) {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if entry, ok := r.fontFamilies[name]; ok {
		return entry.family, entry.style, nil
	}
	face, err := r.reg.Resolve(name)
	if err != nil {
		return nil, canvas.FontRegular, err
	}
	style := parseFontStyle(face.Style)
	family := canvas.NewFontFamily(string(name))
	if err := family.LoadFont(face.Program, 0, style); err != nil {
		return nil, canvas.FontRegular, fmt.Errorf("加载字体 %s 失败: %w", name, err)
	}
	r.fontFamilies[name] = &fontFamilyEntry{family: family, style: style}
	return family, style, nil
}

// parseFontStyle 把 "B"/"I"/"BI" 风格标记转换为 canvas 的字体风格。
func parseFontStyle(style string) canvas.FontStyle {
	result := canvas.FontRegular
	for _, ch := range style {
		switch ch {
		case 'B', 'b':
			result = canvas.FontBold | (result & canvas.FontItalic)
		case 'I', 'i':
			result |= canvas.FontItalic
		}
	}
	return result
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.Hex(c.Hex())
}

// toMm 将点(pt)转换为毫米(mm)。
func toMm(pt float64) float64 { return layout.Pt(pt).ToMM() }
