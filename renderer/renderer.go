package renderer

import "github.com/ByLCY/certify/layout"

// Renderer 将版式表输出为最终文件，例如 PDF 或 PNG 预览图。
// Render 返回生成的二进制数据以及可能的错误。
type Renderer interface {
	Render(tbl *layout.Table) ([]byte, error)
}
