// Package certificate 串联记录查询、二维码、背景选择、版式与 PDF 组装，
// 为每个请求生成一份完整的证书文档。
package certificate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/ByLCY/certify/background"
	"github.com/ByLCY/certify/fonts"
	"github.com/ByLCY/certify/layout"
	"github.com/ByLCY/certify/logger"
	"github.com/ByLCY/certify/qrcode"
	"github.com/ByLCY/certify/record"
	canvasrenderer "github.com/ByLCY/certify/renderer/canvas"
	"github.com/ByLCY/certify/renderer/pdf"
)

// 输出内容类型。
const (
	ContentTypePDF = "application/pdf"
	ContentTypePNG = "image/png"
)

// ErrMissingID 表示请求没有提供记录标识。
var ErrMissingID = errors.New("certificate: missing identifier")

// Artifact 是一次生成的输出。
type Artifact struct {
	Identifier  string
	Filename    string
	ContentType string
	Bytes       []byte
}

// Options 是服务的可调参数。
type Options struct {
	VerifyBaseURL string
	PDF           pdf.Options
	Preview       canvasrenderer.Options
}

// Service 是无状态的证书生成入口，共享的注册表与背景集合只读使用。
type Service struct {
	store       record.Store
	backgrounds *background.Set
	encoder     *qrcode.Encoder
	assembler   *pdf.Assembler
	preview     *canvasrenderer.Renderer
	verifyBase  string
	tracer      trace.Tracer
}

// NewService 创建服务。
func NewService(store record.Store, reg *fonts.Registry, backgrounds *background.Set, opts Options) *Service {
	if opts.PDF.Title == "" {
		opts.PDF.Title = "Certificate of Accomplishment"
	}
	if opts.PDF.Creator == "" {
		opts.PDF.Creator = "certify"
	}
	return &Service{
		store:       store,
		backgrounds: backgrounds,
		encoder:     qrcode.New(),
		assembler:   pdf.NewAssembler(reg, opts.PDF),
		preview:     canvasrenderer.NewRenderer(reg, opts.Preview),
		verifyBase:  opts.VerifyBaseURL,
		tracer:      otel.Tracer("certify/certificate"),
	}
}

// Record 返回标识对应的原始记录。
func (s *Service) Record(ctx context.Context, id string) (record.Record, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return record.Record{}, ErrMissingID
	}
	ctx, span := s.tracer.Start(ctx, "record.get", trace.WithAttributes(attribute.String("certificate.id", id)))
	defer span.End()

	rec, err := s.store.Get(ctx, id)
	if err != nil {
		fail(span, err)
		return record.Record{}, err
	}
	return rec, nil
}

// Table 查询记录并构建版式表。
func (s *Service) Table(ctx context.Context, id string) (*layout.Table, error) {
	rec, err := s.Record(ctx, id)
	if err != nil {
		return nil, err
	}
	id = strings.TrimSpace(id)
	log := logger.FromContext(ctx).With(zap.String("certificate_id", id))

	link, err := layout.VerificationURL(s.verifyBase, id)
	if err != nil {
		return nil, err
	}

	_, span := s.tracer.Start(ctx, "qrcode.encode")
	code, err := s.encoder.Encode(link)
	if err != nil {
		fail(span, err)
		span.End()
		return nil, err
	}
	span.SetAttributes(attribute.Int("qrcode.modules", code.Modules))
	span.End()

	bg := s.backgrounds.Select(rec.Style)
	_, span = s.tracer.Start(ctx, "layout.build", trace.WithAttributes(attribute.String("background.style", bg.Style.String())))
	defer span.End()
	tbl, err := layout.Certificate(layout.CertificateInput{
		Record:          rec,
		Identifier:      id,
		VerificationURL: link,
		Background:      bg,
		Code:            code,
	})
	if err != nil {
		fail(span, err)
		return nil, err
	}
	log.Debug("layout built",
		zap.String("background", bg.Style.String()),
		zap.Int("items", len(tbl.Items)),
		zap.Float64("page_width", tbl.Page.Width),
		zap.Float64("page_height", tbl.Page.Height),
	)
	return tbl, nil
}

// Generate 生成证书 PDF。任何阶段失败都不会返回部分文档。
func (s *Service) Generate(ctx context.Context, id string) (*Artifact, error) {
	tbl, err := s.Table(ctx, id)
	if err != nil {
		return nil, err
	}
	id = strings.TrimSpace(id)

	_, span := s.tracer.Start(ctx, "pdf.assemble")
	defer span.End()
	doc, err := s.assembler.Assemble(tbl)
	if err != nil {
		fail(span, err)
		return nil, err
	}
	data, err := doc.Bytes()
	if err != nil {
		fail(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("pdf.bytes", len(data)), attribute.Int("pdf.ops", len(doc.Ops)))
	logger.FromContext(ctx).Info("certificate generated", zap.String("certificate_id", id), zap.Int("bytes", len(data)))

	return &Artifact{
		Identifier:  id,
		Filename:    Filename(id),
		ContentType: ContentTypePDF,
		Bytes:       data,
	}, nil
}

// Preview 生成与 PDF 同一版式的 PNG 预览图。
func (s *Service) Preview(ctx context.Context, id string) (*Artifact, error) {
	tbl, err := s.Table(ctx, id)
	if err != nil {
		return nil, err
	}
	id = strings.TrimSpace(id)

	_, span := s.tracer.Start(ctx, "preview.render")
	defer span.End()
	data, err := s.preview.Render(tbl)
	if err != nil {
		fail(span, err)
		return nil, fmt.Errorf("render preview: %w", err)
	}
	return &Artifact{
		Identifier:  id,
		Filename:    "document-" + id + ".png",
		ContentType: ContentTypePNG,
		Bytes:       data,
	}, nil
}

// Filename 返回下载文件名。
func Filename(id string) string {
	return "document-" + id + ".pdf"
}

func fail(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
