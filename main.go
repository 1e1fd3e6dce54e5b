package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/ByLCY/certify/background"
	"github.com/ByLCY/certify/certificate"
	"github.com/ByLCY/certify/config"
	"github.com/ByLCY/certify/fonts"
	"github.com/ByLCY/certify/layout"
	"github.com/ByLCY/certify/logger"
	"github.com/ByLCY/certify/record"
	"github.com/ByLCY/certify/server"
)

func main() {
	cfg, err := config.Parse(os.Args[1:], os.Getenv, os.Stderr)
	if err != nil {
		log.Fatalf("解析参数失败: %v", err)
	}

	if cfg.Mode() == config.ModeRender {
		if err := render(context.Background(), cfg); err != nil {
			log.Fatalf("生成证书失败: %v", err)
		}
		fmt.Printf("已生成 PDF：%s\n", cfg.Out)
		return
	}

	gin.SetMode(gin.ReleaseMode)
	fx.New(
		config.Module(cfg),
		logger.Module,
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fonts.Module,
		background.Module,
		record.Module,
		certificate.Module,
		server.Module,
	).Run()
}

// render 单次渲染一张证书并写入文件，按需输出版式 JSON 与 PNG 预览。
func render(ctx context.Context, cfg config.Config) error {
	zl, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer zl.Sync()
	zap.ReplaceGlobals(zl)

	store, err := record.Open(cfg.StoreOptions(), zl)
	if err != nil {
		return err
	}
	defer record.Close(store)

	reg, err := fonts.Load(cfg.FontOptions())
	if err != nil {
		return err
	}
	backgrounds, err := background.Load()
	if err != nil {
		return err
	}
	svc := certificate.NewService(store, reg, backgrounds, cfg.CertificateOptions())

	if cfg.Debug != "" {
		tbl, err := svc.Table(ctx, cfg.ID)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(cfg.Debug), 0o755); err != nil {
			return fmt.Errorf("创建调试目录失败: %w", err)
		}
		if err := layout.WriteDebugJSON(tbl, cfg.Debug); err != nil {
			return fmt.Errorf("输出调试 JSON 失败: %w", err)
		}
	}

	art, err := svc.Generate(ctx, cfg.ID)
	if err != nil {
		return err
	}
	if err := writeFile(cfg.Out, art.Bytes); err != nil {
		return err
	}

	if cfg.Preview != "" {
		preview, err := svc.Preview(ctx, cfg.ID)
		if err != nil {
			return err
		}
		if err := writeFile(cfg.Preview, preview.Bytes); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("写入文件 %s 失败: %w", path, err)
	}
	return nil
}
