package canvasrenderer

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/certify/fonts"
	"github.com/ByLCY/certify/layout"
)

func newTestRenderer(t *testing.T, opts Options) *Renderer {
	t.Helper()
	reg, err := fonts.Load(fonts.Options{})
	if err != nil {
		t.Fatalf("加载字体失败: %v", err)
	}
	return NewRenderer(reg, opts)
}

func textTable(font fonts.Name) *layout.Table {
	return &layout.Table{
		Page: layout.Page{Width: layout.A4LandscapeWidth, Height: layout.A4LandscapeHeight},
		Items: []layout.Item{
			layout.TextRun{
				Content: "Jane Doe",
				Font:    font,
				SizePt:  45,
				Color:   layout.MustColor("#dfa734"),
				Anchor:  layout.Point{X: layout.A4LandscapeWidth / 2, Y: layout.CmToPt(11.2)},
				Align:   layout.AlignCenter,
			},
			layout.LinkRegion{Rect: layout.Rect{X: 10, Y: 10, Width: 20, Height: 20}, URL: "https://example.com"},
		},
	}
}

func TestRenderProducesPageSizedPNG(t *testing.T) {
	r := newTestRenderer(t, Options{DPMM: 2, ShowLinks: true})
	out, err := r.Render(textTable(fonts.Script))
	if err != nil {
		t.Fatalf("渲染失败: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("输出不是 PNG: %v", err)
	}
	wantW := layout.A4LandscapeWidth * layout.PtToMm * 2
	wantH := layout.A4LandscapeHeight * layout.PtToMm * 2
	b := img.Bounds()
	if math.Abs(float64(b.Dx())-wantW) > 1 || math.Abs(float64(b.Dy())-wantH) > 1 {
		t.Fatalf("预览尺寸错误: %dx%d，期望约 %.0fx%.0f", b.Dx(), b.Dy(), wantW, wantH)
	}
}

func TestCanvasSizeInMillimetres(t *testing.T) {
	r := newTestRenderer(t, Options{})
	c, err := r.Canvas(textTable(fonts.BodyRegular))
	if err != nil {
		t.Fatalf("绘制失败: %v", err)
	}
	if math.Abs(c.W-297) > 0.01 || math.Abs(c.H-210) > 0.01 {
		t.Fatalf("画布尺寸错误: %gx%g mm", c.W, c.H)
	}
}

func TestRenderUnknownFont(t *testing.T) {
	r := newTestRenderer(t, Options{})
	if _, err := r.Render(textTable("fantasy")); err == nil {
		t.Fatalf("未注册字体应返回错误")
	}
}

func TestParseFontStyle(t *testing.T) {
	cases := map[string]canvas.FontStyle{
		"":   canvas.FontRegular,
		"B":  canvas.FontBold,
		"I":  canvas.FontRegular | canvas.FontItalic,
		"BI": canvas.FontBold | canvas.FontItalic,
	}
	for in, want := range cases {
		if got := parseFontStyle(in); got != want {
			t.Fatalf("parseFontStyle(%q) = %v，期望 %v", in, got, want)
		}
	}
}

func solidPNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("编码测试图片失败: %v", err)
	}
	return buf.Bytes()
}

func TestRenderStretchesImageToRect(t *testing.T) {
	r := newTestRenderer(t, Options{DPMM: 2})
	red := color.RGBA{R: 0xff, A: 0xff}
	tbl := &layout.Table{
		Page: layout.Page{Width: 200, Height: 200},
		Items: []layout.Item{layout.ImagePlacement{
			Name:   "wide",
			Format: "png",
			Bytes:  solidPNG(t, 40, 10, red),
			Rect:   layout.Rect{Width: 100, Height: 100},
		}},
	}
	out, err := r.Render(tbl)
	if err != nil {
		t.Fatalf("渲染失败: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("输出不是 PNG: %v", err)
	}
	// 100pt 约 70px；宽高比 4:1 的图片必须被拉伸到整个正方形
	side := int(layout.Pt(100).ToMM() * 2)
	for _, p := range []image.Point{{side / 2, 5}, {side / 2, side - 5}, {5, side / 2}, {side - 5, side - 5}} {
		c := color.NRGBAModel.Convert(img.At(p.X, p.Y)).(color.NRGBA)
		if c.R < 0xf0 || c.G > 0x10 || c.A < 0xf0 {
			t.Fatalf("(%d,%d) 应为图片像素，实际 %v", p.X, p.Y, c)
		}
	}
	outside := color.NRGBAModel.Convert(img.At(side+10, side+10)).(color.NRGBA)
	if outside.A != 0 {
		t.Fatalf("矩形外不应有图片像素，实际 %v", outside)
	}
}

func TestFitImageSize(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 40, 10))
	got := fitImage(src, 70.4, 70.6).Bounds()
	if got.Dx() != 70 || got.Dy() != 71 {
		t.Fatalf("重采样尺寸错误: %v", got)
	}
	if fitImage(src, 40, 10) != image.Image(src) {
		t.Fatalf("尺寸相同时不应重采样")
	}
}

func TestColorFromLayout(t *testing.T) {
	got := color.RGBAModel.Convert(colorFromLayout(layout.MustColor("#dfa734"))).(color.RGBA)
	if got != (color.RGBA{R: 0xdf, G: 0xa7, B: 0x34, A: 0xff}) {
		t.Fatalf("颜色转换错误: %v", got)
	}
}
