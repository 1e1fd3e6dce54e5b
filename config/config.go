// Package config 解析命令行参数，每个参数都可以由环境变量提供默认值。
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ByLCY/certify/certificate"
	"github.com/ByLCY/certify/fonts"
	"github.com/ByLCY/certify/layout"
	"github.com/ByLCY/certify/logger"
	"github.com/ByLCY/certify/record"
	"github.com/ByLCY/certify/server"
)

// 环境变量名。
const (
	EnvAddr           = "CERTIFY_ADDR"
	EnvRedisURL       = "REDIS_URL"
	EnvRedisCommand   = "CERTIFY_REDIS_COMMAND"
	EnvRecords        = "CERTIFY_RECORDS"
	EnvFontDir        = "CERTIFY_FONT_DIR"
	EnvVerifyBaseURL  = "CERTIFY_VERIFY_BASE_URL"
	EnvLogLevel       = "CERTIFY_LOG_LEVEL"
	EnvLogFormat      = "CERTIFY_LOG_FORMAT"
	EnvRequestTimeout = "CERTIFY_REQUEST_TIMEOUT"
	EnvLogHeaders     = "CERTIFY_LOG_HEADERS"
)

// 默认值。
const (
	DefaultAddr           = ":8080"
	DefaultRequestTimeout = 30 * time.Second
)

// Config 汇总服务与命令行渲染两种模式的全部配置。
type Config struct {
	Addr           string
	RedisURL       string
	RedisCommand   string
	RecordsFile    string
	FontDir        string
	VerifyBaseURL  string
	RequestTimeout time.Duration
	Log            logger.Config
	LogHeaders     bool

	// 单次渲染模式
	ID      string
	Out     string
	Debug   string
	Preview string
}

// Mode 表示进程的运行方式。
type Mode int

const (
	ModeServe Mode = iota
	ModeRender
)

// Mode 根据是否指定 -id 返回运行方式。
func (c Config) Mode() Mode {
	if c.ID != "" {
		return ModeRender
	}
	return ModeServe
}

// Parse 解析 args（不含程序名）。getenv 为 nil 时不读取环境变量。
func Parse(args []string, getenv func(string) string, output io.Writer) (Config, error) {
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	env := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	timeout := DefaultRequestTimeout
	if raw := env(EnvRequestTimeout, ""); raw != "" {
		d, err := parseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvRequestTimeout, err)
		}
		timeout = d
	}

	logHeaders := false
	if raw := env(EnvLogHeaders, ""); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvLogHeaders, err)
		}
		logHeaders = b
	}

	var cfg Config
	fs := flag.NewFlagSet("certify", flag.ContinueOnError)
	if output != nil {
		fs.SetOutput(output)
	}
	serve := fs.Bool("serve", false, "以 HTTP 服务方式运行（未指定 -id 时的默认行为）")
	fs.StringVar(&cfg.Addr, "addr", env(EnvAddr, DefaultAddr), "HTTP 监听地址")
	fs.StringVar(&cfg.RedisURL, "redis", env(EnvRedisURL, ""), "Redis 地址，例如 redis://localhost:6379/0")
	fs.StringVar(&cfg.RedisCommand, "redis-command", env(EnvRedisCommand, record.CommandJSONGet), "读取记录的 Redis 命令：JSON.GET 或 GET")
	fs.StringVar(&cfg.RecordsFile, "records", env(EnvRecords, ""), "记录 JSON 文件，设置后不再使用 Redis")
	fs.StringVar(&cfg.FontDir, "fonts", env(EnvFontDir, ""), "覆盖内置字体的目录（<name>.ttf）")
	fs.StringVar(&cfg.VerifyBaseURL, "verify-base-url", env(EnvVerifyBaseURL, layout.DefaultVerifyBaseURL), "二维码验证地址前缀")
	fs.DurationVar(&cfg.RequestTimeout, "timeout", timeout, "单个请求的超时时间")
	fs.StringVar(&cfg.Log.Level, "log-level", env(EnvLogLevel, "info"), "日志级别")
	fs.StringVar(&cfg.Log.Format, "log-format", env(EnvLogFormat, "json"), "日志格式：json 或 console")
	fs.BoolVar(&cfg.LogHeaders, "log-headers", logHeaders, "访问日志中记录脱敏后的请求头")
	fs.StringVar(&cfg.ID, "id", "", "只渲染一张证书的记录 ID")
	fs.StringVar(&cfg.Out, "out", "", "PDF 输出路径（配合 -id）")
	fs.StringVar(&cfg.Debug, "debug", "", "版式调试 JSON 输出路径（配合 -id）")
	fs.StringVar(&cfg.Preview, "preview", "", "PNG 预览输出路径（配合 -id）")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if *serve && cfg.ID != "" {
		return Config{}, errors.New("-serve 与 -id 不能同时使用")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate 检查参数组合。
func (c Config) Validate() error {
	if c.RecordsFile == "" && c.RedisURL == "" {
		return fmt.Errorf("需要指定记录来源：-records 或 -redis（%s / %s）", EnvRecords, EnvRedisURL)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("请求超时必须为正数，实际 %s", c.RequestTimeout)
	}
	if c.Mode() == ModeRender && c.Out == "" {
		return errors.New("-id 需要同时指定 -out")
	}
	if c.Mode() == ModeServe && c.Addr == "" {
		return errors.New("监听地址不能为空")
	}
	return nil
}

// FontOptions 返回字体注册表的加载参数。
func (c Config) FontOptions() fonts.Options {
	return fonts.Options{Dir: c.FontDir}
}

// StoreOptions 返回记录存储参数。
func (c Config) StoreOptions() record.Options {
	return record.Options{
		File:  c.RecordsFile,
		Redis: record.RedisOptions{URL: c.RedisURL, Command: c.RedisCommand},
	}
}

// CertificateOptions 返回证书服务参数。
func (c Config) CertificateOptions() certificate.Options {
	return certificate.Options{VerifyBaseURL: c.VerifyBaseURL}
}

// ServerOptions 返回 HTTP 服务参数。
func (c Config) ServerOptions() server.Options {
	return server.Options{Addr: c.Addr, RequestTimeout: c.RequestTimeout, LogHeaders: c.LogHeaders}
}

// parseDuration 接受 Go 时长格式，也接受纯数字秒数。
func parseDuration(raw string) (time.Duration, error) {
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(raw)
}
