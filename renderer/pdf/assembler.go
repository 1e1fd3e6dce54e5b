// Package pdf 使用 codeberg.org/go-pdf/fpdf 把版式表组装为单页 PDF。
package pdf

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"time"

	"codeberg.org/go-pdf/fpdf"

	"github.com/ByLCY/certify/apperr"
	"github.com/ByLCY/certify/fonts"
	"github.com/ByLCY/certify/layout"
	"github.com/ByLCY/certify/renderer"
)

// DefaultTimestamp 固定 CreationDate/ModDate，使相同输入产生相同字节。
var DefaultTimestamp = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Options 控制 PDF 输出。
type Options struct {
	Compress  bool
	Timestamp time.Time // 为零值时使用 DefaultTimestamp
	Title     string
	Author    string
	Creator   string
}

// Assembler 持有共享的只读字体注册表，可并发使用。
type Assembler struct {
	reg  *fonts.Registry
	opts Options
}

var _ renderer.Renderer = (*Assembler)(nil)

// NewAssembler 创建组装器。
func NewAssembler(reg *fonts.Registry, opts Options) *Assembler {
	if opts.Timestamp.IsZero() {
		opts.Timestamp = DefaultTimestamp
	}
	return &Assembler{reg: reg, opts: opts}
}

// Render 实现 renderer.Renderer。
func (a *Assembler) Render(tbl *layout.Table) ([]byte, error) {
	doc, err := a.Assemble(tbl)
	if err != nil {
		return nil, err
	}
	return doc.Bytes()
}

// Assemble 按版式表顺序绘制全部元素。任何错误都不会返回部分文档。
func (a *Assembler) Assemble(tbl *layout.Table) (*Document, error) {
	if err := tbl.Validate(); err != nil {
		return nil, &apperr.AssemblyError{Stage: "validate", Err: err}
	}

	// 先解析全部字体，缺失时不做任何绘制。
	names := tbl.Fonts()
	faces := make(map[fonts.Name]fonts.Typeface, len(names))
	for _, name := range names {
		face, err := a.reg.Resolve(name)
		if err != nil {
			return nil, &apperr.AssemblyError{Stage: "fonts", Err: err}
		}
		faces[name] = face
	}

	pdf := fpdf.New("L", "pt", "A4", "")
	if w, h := pdf.GetPageSize(); w != tbl.Page.Width || h != tbl.Page.Height {
		pdf = fpdf.NewCustom(&fpdf.InitType{
			OrientationStr: "P",
			UnitStr:        "pt",
			Size:           fpdf.SizeType{Wd: tbl.Page.Width, Ht: tbl.Page.Height},
		})
	}
	pdf.SetCompression(a.opts.Compress)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(a.opts.Timestamp)
	pdf.SetModificationDate(a.opts.Timestamp)
	if a.opts.Title != "" {
		pdf.SetTitle(a.opts.Title, true)
	}
	if a.opts.Author != "" {
		pdf.SetAuthor(a.opts.Author, true)
	}
	if a.opts.Creator != "" {
		pdf.SetCreator(a.opts.Creator, true)
	}
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)

	doc := &Document{Page: tbl.Page, Fonts: names, pdf: pdf}
	for _, name := range names {
		face := faces[name]
		pdf.AddUTF8FontFromBytes(string(name), face.Style, face.Program)
		if err := pdf.Error(); err != nil {
			return nil, &apperr.AssemblyError{Stage: "fonts", Err: fmt.Errorf("embed %s: %w", name, err)}
		}
	}
	pdf.AddPage()

	registered := map[string][]byte{}
	for i, item := range tbl.Items {
		var (
			op  Op
			err error
		)
		switch it := item.(type) {
		case layout.ImagePlacement:
			op, err = a.drawImage(pdf, it, registered, tbl.Page.Height)
			if err == nil && !slices.Contains(doc.Images, it.Name) {
				doc.Images = append(doc.Images, it.Name)
			}
		case layout.TextRun:
			op, err = a.drawText(pdf, it, faces[it.Font], tbl.Page.Height)
		case layout.LinkRegion:
			pdf.LinkString(it.Rect.X, it.Rect.Y, it.Rect.Width, it.Rect.Height, it.URL)
			op = Op{Kind: layout.KindLink, Content: it.URL, Rect: ToPDF(it.Rect, tbl.Page.Height)}
		default:
			err = fmt.Errorf("unsupported item %T", item)
		}
		if err == nil {
			err = pdf.Error()
		}
		if err != nil {
			return nil, &apperr.AssemblyError{Stage: fmt.Sprintf("item %d", i), Err: err}
		}
		doc.Ops = append(doc.Ops, op)
	}
	return doc, nil
}

func (a *Assembler) drawImage(pdf *fpdf.Fpdf, p layout.ImagePlacement, registered map[string][]byte, pageHeight float64) (Op, error) {
	opts := fpdf.ImageOptions{ImageType: strings.ToUpper(p.Format)}
	if prev, ok := registered[p.Name]; ok {
		if !bytes.Equal(prev, p.Bytes) {
			return Op{}, fmt.Errorf("image name %q reused with different data", p.Name)
		}
	} else {
		pdf.RegisterImageOptionsReader(p.Name, opts, bytes.NewReader(p.Bytes))
		if err := pdf.Error(); err != nil {
			return Op{}, fmt.Errorf("register image %s: %w", p.Name, err)
		}
		registered[p.Name] = p.Bytes
	}
	pdf.ImageOptions(p.Name, p.Rect.X, p.Rect.Y, p.Rect.Width, p.Rect.Height, false, opts, 0, "")
	return Op{Kind: layout.KindImage, Name: p.Name, Rect: ToPDF(p.Rect, pageHeight)}, nil
}

func (a *Assembler) drawText(pdf *fpdf.Fpdf, run layout.TextRun, face fonts.Typeface, pageHeight float64) (Op, error) {
	pdf.SetFont(string(run.Font), face.Style, run.SizePt)
	pdf.SetTextColor(run.Color.R, run.Color.G, run.Color.B)
	width := pdf.GetStringWidth(run.Content)
	x := run.Anchor.X + run.Align.Offset(width)
	pdf.Text(x, run.Anchor.Y, run.Content)

	// 记录的矩形以基线为底、字号为高，仅用于检查与调试。
	box := layout.Rect{X: x, Y: run.Anchor.Y - run.SizePt, Width: width, Height: run.SizePt}
	return Op{Kind: layout.KindText, Name: string(run.Font), Content: run.Content, Rect: ToPDF(box, pageHeight)}, nil
}
