package pdf

import (
	"bytes"
	"sync"

	"codeberg.org/go-pdf/fpdf"

	"github.com/ByLCY/certify/apperr"
	"github.com/ByLCY/certify/fonts"
	"github.com/ByLCY/certify/layout"
)

// Op 记录一次绘制操作，矩形为 PDF 坐标（左下角原点）。
type Op struct {
	Kind    layout.Kind `json:"kind"`
	Name    string      `json:"name,omitempty"` // 字体或图片名称
	Content string      `json:"content,omitempty"`
	Rect    layout.Rect `json:"rect"`
}

// Document 是一次组装得到的内存文档，每个请求单独创建。
type Document struct {
	Page   layout.Page
	Fonts  []fonts.Name
	Images []string
	Ops    []Op

	pdf  *fpdf.Fpdf
	once sync.Once
	data []byte
	err  error
}

// Bytes 序列化文档。多次调用返回同一份数据。
func (d *Document) Bytes() ([]byte, error) {
	d.once.Do(func() {
		var buf bytes.Buffer
		if err := d.pdf.Output(&buf); err != nil {
			d.err = &apperr.AssemblyError{Stage: "output", Err: err}
			return
		}
		d.data = buf.Bytes()
		d.pdf = nil
	})
	return d.data, d.err
}

// Count 返回指定类型的操作数量。
func (d *Document) Count(kind layout.Kind) int {
	n := 0
	for _, op := range d.Ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}
