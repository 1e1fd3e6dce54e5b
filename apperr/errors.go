// Package apperr 定义证书服务的错误分类：记录不存在、启动配置错误、二维码生成错误与文档组装错误。
package apperr

import (
	"errors"
	"fmt"
)

// ErrNotFound 表示标识符没有对应的记录。
var ErrNotFound = errors.New("record not found")

// ConfigurationError 表示启动阶段加载字体或背景等必需资源失败，服务不应继续启动。
type ConfigurationError struct {
	Resource string
	Err      error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: resource %s: %v", e.Resource, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// CodeGenerationError 表示验证地址无法编码为二维码。
type CodeGenerationError struct {
	Content string
	Err     error
}

func (e *CodeGenerationError) Error() string {
	return fmt.Sprintf("qrcode: encode %d bytes: %v", len(e.Content), e.Err)
}

func (e *CodeGenerationError) Unwrap() error { return e.Err }

// AssemblyError 表示组装文档时资源缺失或底层 PDF 写入失败。
// 出现该错误时不会返回任何文档字节。
type AssemblyError struct {
	Stage string
	Err   error
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("assemble %s: %v", e.Stage, e.Err)
}

func (e *AssemblyError) Unwrap() error { return e.Err }

// IsNotFound 判断 err 链中是否包含 ErrNotFound。
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsConfiguration 判断 err 链中是否包含 ConfigurationError。
func IsConfiguration(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// IsCodeGeneration 判断 err 链中是否包含 CodeGenerationError。
func IsCodeGeneration(err error) bool {
	var target *CodeGenerationError
	return errors.As(err, &target)
}

// IsAssembly 判断 err 链中是否包含 AssemblyError。
func IsAssembly(err error) bool {
	var target *AssemblyError
	return errors.As(err, &target)
}
