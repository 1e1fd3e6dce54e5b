package pdf

import (
	"bytes"
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"unicode/utf16"

	"github.com/ByLCY/certify/apperr"
	"github.com/ByLCY/certify/background"
	"github.com/ByLCY/certify/fonts"
	"github.com/ByLCY/certify/layout"
	"github.com/ByLCY/certify/qrcode"
	"github.com/ByLCY/certify/record"
)

var jane = record.Record{
	FirstName:  "Jane",
	LastName:   "Doe",
	CourseName: "Intro to Robotics",
	IssuedDate: "2025-06-06",
	Style:      "O2",
}

func newAssembler(t *testing.T, opts Options) *Assembler {
	t.Helper()
	reg, err := fonts.Load(fonts.Options{})
	if err != nil {
		t.Fatalf("加载字体失败: %v", err)
	}
	return NewAssembler(reg, opts)
}

func certificateTable(t *testing.T, rec record.Record, id string) *layout.Table {
	t.Helper()
	set, err := background.Load()
	if err != nil {
		t.Fatalf("加载背景失败: %v", err)
	}
	link, err := layout.VerificationURL("", id)
	if err != nil {
		t.Fatalf("生成验证地址失败: %v", err)
	}
	code, err := qrcode.New().Encode(link)
	if err != nil {
		t.Fatalf("生成二维码失败: %v", err)
	}
	tbl, err := layout.Certificate(layout.CertificateInput{
		Record:          rec,
		Identifier:      id,
		VerificationURL: link,
		Background:      set.Select(rec.Style),
		Code:            code,
	})
	if err != nil {
		t.Fatalf("构建版式失败: %v", err)
	}
	return tbl
}

func utf16be(s string) []byte {
	var out []byte
	for _, u := range utf16.Encode([]rune(s)) {
		out = append(out, byte(u>>8), byte(u))
	}
	return out
}

func TestAssembleCertificate(t *testing.T) {
	a := newAssembler(t, Options{})
	doc, err := a.Assemble(certificateTable(t, jane, "abc123"))
	if err != nil {
		t.Fatalf("组装失败: %v", err)
	}

	if got := doc.Count(layout.KindText); got != 10 {
		t.Fatalf("期望 10 次文本绘制，实际 %d", got)
	}
	distinct := map[string]bool{}
	for _, op := range doc.Ops {
		if op.Kind == layout.KindText {
			distinct[op.Content] = true
		}
	}
	if len(distinct) < 6 || !distinct["Jane Doe"] {
		t.Fatalf("文本内容错误: %v", distinct)
	}
	if len(doc.Images) != 2 || doc.Images[0] != "background-O2" || doc.Images[1] != "qrcode" {
		t.Fatalf("图片资源错误: %v", doc.Images)
	}
	if doc.Count(layout.KindLink) != 1 {
		t.Fatalf("期望 1 个链接注释，实际 %d", doc.Count(layout.KindLink))
	}
	last := doc.Ops[len(doc.Ops)-1]
	if last.Kind != layout.KindLink || !strings.Contains(last.Content, "abc123") {
		t.Fatalf("最后一个操作应为链接注释: %+v", last)
	}

	out, err := doc.Bytes()
	if err != nil {
		t.Fatalf("序列化失败: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatalf("输出不是 PDF")
	}
	if n := bytes.Count(out, []byte("<</Type /Page\n")); n != 1 {
		t.Fatalf("期望 1 页，实际 %d", n)
	}
	for _, want := range []string{
		"/Count 1\n",
		"/MediaBox [0 0 841.89 595.28]",
		"/Subtype /Link",
		"/URI (https://academy.natthapach.com/student/portfoilo?id=abc123)",
	} {
		if !bytes.Contains(out, []byte(want)) {
			t.Fatalf("输出缺少 %q", want)
		}
	}
	if n := bytes.Count(out, []byte(" Tj ET")); n != 10 {
		t.Fatalf("内容流中期望 10 段文本，实际 %d", n)
	}
	if !bytes.Contains(out, utf16be("Jane Doe")) {
		t.Fatalf("内容流中找不到 Jane Doe")
	}

	again, err := doc.Bytes()
	if err != nil || !bytes.Equal(out, again) {
		t.Fatalf("重复调用 Bytes 结果不一致")
	}
}

func TestAssembleDeterministic(t *testing.T) {
	for _, compress := range []bool{false, true} {
		a := newAssembler(t, Options{Compress: compress, Title: "Certificate", Creator: "certify"})
		first, err := a.Render(certificateTable(t, jane, "abc123"))
		if err != nil {
			t.Fatalf("首次渲染失败: %v", err)
		}
		second, err := a.Render(certificateTable(t, jane, "abc123"))
		if err != nil {
			t.Fatalf("再次渲染失败: %v", err)
		}
		if !bytes.Equal(first, second) {
			t.Fatalf("compress=%v 时相同输入的输出不一致", compress)
		}
		if !bytes.Contains(first, []byte("/CreationDate (D:20000101000000")) {
			t.Fatalf("创建时间未固定")
		}
	}
}

var (
	linkRectPattern = regexp.MustCompile(`/Subtype /Link /Rect \[([-0-9.]+) ([-0-9.]+) ([-0-9.]+) ([-0-9.]+)\]`)
	imagePattern    = regexp.MustCompile(`q ([0-9.]+) 0 0 ([0-9.]+) ([-0-9.]+) ([-0-9.]+) cm /I\S+ Do Q`)
)

func parseFloats(t *testing.T, groups []string) []float64 {
	t.Helper()
	out := make([]float64, len(groups))
	for i, g := range groups {
		v, err := strconv.ParseFloat(g, 64)
		if err != nil {
			t.Fatalf("无法解析数字 %q: %v", g, err)
		}
		out[i] = v
	}
	return out
}

// 从输出字节中解析链接注释与二维码图片的 PDF 坐标，二者必须重叠。
func TestLinkOverlapsCodeImage(t *testing.T) {
	a := newAssembler(t, Options{})
	out, err := a.Render(certificateTable(t, jane, "abc123"))
	if err != nil {
		t.Fatalf("渲染失败: %v", err)
	}

	m := linkRectPattern.FindSubmatch(out)
	if m == nil {
		t.Fatalf("找不到链接注释")
	}
	var groups []string
	for _, g := range m[1:] {
		groups = append(groups, string(g))
	}
	v := parseFloats(t, groups)
	link := layout.Rect{
		X:      math.Min(v[0], v[2]),
		Y:      math.Min(v[1], v[3]),
		Width:  math.Abs(v[2] - v[0]),
		Height: math.Abs(v[3] - v[1]),
	}

	var code *layout.Rect
	for _, im := range imagePattern.FindAllSubmatch(out, -1) {
		var gs []string
		for _, g := range im[1:] {
			gs = append(gs, string(g))
		}
		f := parseFloats(t, gs)
		if math.Abs(f[0]-layout.CodeSizePt) < 0.01 {
			code = &layout.Rect{X: f[2], Y: f[3], Width: f[0], Height: f[1]}
		}
	}
	if code == nil {
		t.Fatalf("找不到二维码图片的放置矩阵")
	}
	if !link.Overlaps(*code) {
		t.Fatalf("链接区域 %+v 与二维码 %+v 不重叠", link, *code)
	}
	if !link.Contains(*code) {
		t.Fatalf("链接区域 %+v 应完整覆盖二维码 %+v", link, *code)
	}

	// 二维码位于页面下半部分：PDF 坐标 y 应较小。
	if code.Y > layout.A4LandscapeHeight/2 {
		t.Fatalf("二维码 y 轴未翻转: %+v", *code)
	}
}

func TestAlignment(t *testing.T) {
	a := newAssembler(t, Options{})
	anchor := layout.Point{X: 400, Y: 300}
	tbl := &layout.Table{
		Page: layout.Page{Width: layout.A4LandscapeWidth, Height: layout.A4LandscapeHeight},
		Items: []layout.Item{
			layout.TextRun{Content: "Intro to Robotics", Font: fonts.BodyRegular, SizePt: 16, Anchor: anchor, Align: layout.AlignCenter},
			layout.TextRun{Content: "Intro to Robotics", Font: fonts.BodyRegular, SizePt: 16, Anchor: anchor, Align: layout.AlignRight},
			layout.TextRun{Content: "Intro to Robotics", Font: fonts.BodyRegular, SizePt: 16, Anchor: anchor, Align: layout.AlignLeft},
		},
	}
	doc, err := a.Assemble(tbl)
	if err != nil {
		t.Fatalf("组装失败: %v", err)
	}
	center, right, left := doc.Ops[0].Rect, doc.Ops[1].Rect, doc.Ops[2].Rect
	if center.Width <= 0 {
		t.Fatalf("文本宽度应为正数: %g", center.Width)
	}
	if math.Abs(center.X+center.Width/2-anchor.X) > 1e-6 {
		t.Fatalf("居中文本未以锚点为中心: %+v", center)
	}
	if math.Abs(right.Right()-anchor.X) > 1e-6 {
		t.Fatalf("右对齐文本未以锚点为右边界: %+v", right)
	}
	if math.Abs(left.X-anchor.X) > 1e-6 {
		t.Fatalf("左对齐文本未以锚点为起点: %+v", left)
	}
	// 基线 y=300（自上而下）翻转后文本框底边为 595.28-300。
	if math.Abs(center.Y-(layout.A4LandscapeHeight-anchor.Y)) > 1e-6 {
		t.Fatalf("文本基线翻转错误: %+v", center)
	}
}

func TestAssembleMissingFont(t *testing.T) {
	a := newAssembler(t, Options{})
	tbl := certificateTable(t, jane, "abc123")
	tbl.Items = append(tbl.Items, layout.TextRun{Content: "x", Font: "fantasy", SizePt: 10})
	doc, err := a.Assemble(tbl)
	if doc != nil {
		t.Fatalf("出错时不应返回文档")
	}
	var asmErr *apperr.AssemblyError
	if !errors.As(err, &asmErr) || asmErr.Stage != "fonts" {
		t.Fatalf("期望 fonts 阶段的 AssemblyError，实际 %v", err)
	}
	if !apperr.IsConfiguration(err) {
		t.Fatalf("缺失字体应保留 ConfigurationError: %v", err)
	}
}

func TestAssembleRejectsInvalidTable(t *testing.T) {
	a := newAssembler(t, Options{})
	if _, err := a.Assemble(&layout.Table{}); !apperr.IsAssembly(err) {
		t.Fatalf("空页面应返回 AssemblyError，实际 %v", err)
	}

	tbl := certificateTable(t, jane, "abc123")
	bg := tbl.Images()[0]
	bg.Bytes = tbl.Images()[1].Bytes
	tbl.Items = append(tbl.Items, bg)
	if _, err := a.Assemble(tbl); !apperr.IsAssembly(err) {
		t.Fatalf("同名图片数据不同时应返回 AssemblyError，实际 %v", err)
	}
}

func TestToPDF(t *testing.T) {
	r := layout.Rect{X: 10, Y: 20, Width: 30, Height: 40}
	got := ToPDF(r, 100)
	if got != (layout.Rect{X: 10, Y: 40, Width: 30, Height: 40}) {
		t.Fatalf("ToPDF 结果错误: %+v", got)
	}
	if twice := ToPDF(got, 100); twice != r {
		t.Fatalf("翻转两次应还原: %+v", twice)
	}
	full := layout.Rect{Width: 841.89, Height: 595.28}
	if got := ToPDF(full, 595.28); got != full {
		t.Fatalf("整页矩形翻转后应不变: %+v", got)
	}
}
