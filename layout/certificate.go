package layout

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/ByLCY/certify/background"
	"github.com/ByLCY/certify/binding"
	"github.com/ByLCY/certify/fonts"
	"github.com/ByLCY/certify/qrcode"
	"github.com/ByLCY/certify/record"
)

// DefaultVerifyBaseURL 是二维码与链接共用的验证地址前缀。
const DefaultVerifyBaseURL = "https://academy.natthapach.com/student/portfoilo"

// 二维码尺寸与链接区域留白。
const (
	CodeSizePt = 65.0
	LinkPadCm  = 0.1
)

// 证书固定版式。锚点以 cm 书写，x 为 0 表示页面水平中线。
var certificateTexts = []struct {
	template string
	font     fonts.Name
	size     float64
	color    string
	xCm      float64
	yCm      float64
}{
	{"CERTIFICATE", fonts.BodyBold, 54.2, "#242424", 0, 5.29},
	{"Of Accomplishment", fonts.BodyRegular, 21, "#103a74", 0, 6.84},
	{"This certificate is presented to", fonts.BodyRegular, 16, "#242424", 0, 8.93},
	{"${full_name}", fonts.Script, 45, "#dfa734", 0, 11.2},
	{"For completed in the ${course_name}", fonts.BodyRegular, 16, "#3b3a3a", 0, 13.48},
	{"held by Arako Academy issue on ${issued_on}", fonts.BodyRegular, 16, "#3b3a3a", 0, 14.25},
	{"Natthapach A.", fonts.Script, 35, "#103a74", 0, 16},
	{"Natthapach Anuwattananon", fonts.SerifBold, 14.4, "#3b3a3a", 0, 16.91},
	{"INNOVATION INSTRUCTOR", fonts.SerifRegular, 15, "#3b3a3a", 0, 17.83},
	{"Portfolio", fonts.SerifRegular, 14, "#3b3a3a", 25.93, 15.93},
}

// 二维码左上角（cm）。
const (
	codeXCm = 24.78
	codeYCm = 16.04
)

// CertificateInput 汇集构建证书版式所需的全部数据。
type CertificateInput struct {
	Record          record.Record
	Identifier      string
	VerificationURL string
	Background      background.Image
	Code            qrcode.Image
}

// Certificate 按固定顺序构建证书版式表：
// 背景、文本、二维码、链接区域。不做任何绘制。
func Certificate(in CertificateInput) (*Table, error) {
	if len(in.Background.Bytes) == 0 {
		return nil, errors.New("layout: background image is empty")
	}
	if len(in.Code.PNG) == 0 {
		return nil, errors.New("layout: code image is empty")
	}
	if in.VerificationURL == "" {
		return nil, errors.New("layout: verification url is empty")
	}

	data, err := templateData(in)
	if err != nil {
		return nil, err
	}

	page := Page{Width: A4LandscapeWidth, Height: A4LandscapeHeight}
	half := page.Width / 2
	tbl := &Table{Page: page}

	tbl.Items = append(tbl.Items, ImagePlacement{
		Name:   "background-" + in.Background.Style.String(),
		Format: in.Background.Format,
		Bytes:  in.Background.Bytes,
		Rect:   Rect{Width: page.Width, Height: page.Height},
	})

	var caption TextRun
	for _, row := range certificateTexts {
		content, err := binding.InterpolateStrict(row.template, data)
		if err != nil {
			return nil, fmt.Errorf("layout: %w", err)
		}
		x := half
		if row.xCm != 0 {
			x = Cm(row.xCm).ToPT()
		}
		run := TextRun{
			Content: strings.Join(strings.Fields(content), " "),
			Font:    row.font,
			SizePt:  row.size,
			Color:   MustColor(row.color),
			Anchor:  Point{X: x, Y: Cm(row.yCm).ToPT()},
			Align:   AlignCenter,
		}
		caption = run // 最后一行是二维码说明
		tbl.Items = append(tbl.Items, run)
	}

	code := ImagePlacement{
		Name:   "qrcode",
		Format: "png",
		Bytes:  in.Code.PNG,
		Rect:   Rect{X: Cm(codeXCm).ToPT(), Y: Cm(codeYCm).ToPT(), Width: CodeSizePt, Height: CodeSizePt},
	}
	tbl.Items = append(tbl.Items, code, LinkRegion{
		Rect: linkRect(code.Rect, caption),
		URL:  in.VerificationURL,
	})
	return tbl, nil
}

// linkRect 由二维码矩形推导点击区域：四周留白，并向上覆盖说明文字。
func linkRect(code Rect, caption TextRun) Rect {
	r := code.Inset(CmToPt(LinkPadCm))
	top := caption.Anchor.Y - caption.SizePt
	if top < r.Y {
		r.Height += r.Y - top
		r.Y = top
	}
	return r
}

func templateData(in CertificateInput) (map[string]any, error) {
	data, err := binding.Fields(in.Record)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	data["identifier"] = in.Identifier
	data["full_name"] = in.Record.FullName()
	data["issued_on"] = in.Record.IssuedOn()
	return data, nil
}

// VerificationURL 拼出 <base>?id=<id>。base 为空时使用 DefaultVerifyBaseURL。
func VerificationURL(base, id string) (string, error) {
	if strings.TrimSpace(id) == "" {
		return "", errors.New("layout: empty identifier")
	}
	if base == "" {
		base = DefaultVerifyBaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("layout: verify base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("layout: verify base url %q must be absolute", base)
	}
	q := u.Query()
	q.Set("id", id)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
