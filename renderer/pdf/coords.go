package pdf

import "github.com/ByLCY/certify/layout"

// 版式表使用左上角原点、y 向下；PDF 使用左下角原点、y 向上。

// ToPDF 把版式坐标中的矩形翻转为 PDF 坐标，返回矩形的 X/Y 为左下角。
func ToPDF(r layout.Rect, pageHeight float64) layout.Rect {
	return layout.Rect{X: r.X, Y: pageHeight - (r.Y + r.Height), Width: r.Width, Height: r.Height}
}
