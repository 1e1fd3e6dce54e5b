// Package fonts 提供进程级只读的字体注册表：启动时加载一次，之后只读共享。
package fonts

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/image/font/sfnt"

	"github.com/ByLCY/certify/apperr"
)

// Name 是字体的逻辑名称，取值为下列常量之一。
type Name string

const (
	BodyRegular  Name = "body-regular"
	BodyBold     Name = "body-bold"
	SerifRegular Name = "serif-regular"
	SerifBold    Name = "serif-bold"
	Script       Name = "script"
)

// Required 列出证书版式需要的全部逻辑字体。
var Required = []Name{BodyRegular, BodyBold, SerifRegular, SerifBold, Script}

// Typeface 是一个可嵌入的字体程序。
type Typeface struct {
	Name    Name
	Program []byte
	Style   string // "", "B", "I"
	Family  string // 字体文件 name 表中的家族名，仅用于日志与调试
}

// Options 控制字体来源。
// Dir 非空时优先读取 Dir/<name>.ttf；Files 可为单个逻辑字体指定文件路径。
type Options struct {
	Dir   string
	Files map[Name]string
}

// Registry 保存已校验的字体，构造后不再修改，可被多个请求并发读取。
type Registry struct {
	faces map[Name]Typeface
	names []Name
}

var (
	errNotTrueType = errors.New("font program has no TrueType outlines (CFF/collection fonts cannot be embedded)")
	errEmpty       = errors.New("font program is empty")
)

// Load 加载并校验所有必需字体。任一字体失败都会返回 *apperr.ConfigurationError。
func Load(opts Options) (*Registry, error) {
	r := &Registry{faces: make(map[Name]Typeface, len(Required))}
	for _, name := range Required {
		program, src, err := readProgram(name, opts)
		if err != nil {
			return nil, &apperr.ConfigurationError{Resource: "font " + string(name), Err: err}
		}
		family, err := validate(program)
		if err != nil {
			return nil, &apperr.ConfigurationError{Resource: fmt.Sprintf("font %s (%s)", name, src), Err: err}
		}
		r.faces[name] = Typeface{
			Name:    name,
			Program: program,
			Style:   builtinStyles[name],
			Family:  family,
		}
		r.names = append(r.names, name)
	}
	sort.Slice(r.names, func(i, j int) bool { return r.names[i] < r.names[j] })
	return r, nil
}

// Resolve 返回逻辑字体对应的程序；不存在时返回 *apperr.ConfigurationError。
func (r *Registry) Resolve(name Name) (Typeface, error) {
	if r == nil {
		return Typeface{}, &apperr.ConfigurationError{Resource: "font " + string(name), Err: errors.New("registry not initialised")}
	}
	face, ok := r.faces[name]
	if !ok {
		return Typeface{}, &apperr.ConfigurationError{Resource: "font " + string(name), Err: errors.New("not registered")}
	}
	return face, nil
}

// Names 返回已注册的逻辑字体名（按字典序）。
func (r *Registry) Names() []Name {
	if r == nil {
		return nil
	}
	out := make([]Name, len(r.names))
	copy(out, r.names)
	return out
}

func readProgram(name Name, opts Options) ([]byte, string, error) {
	if path, ok := opts.Files[name]; ok && strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, path, fmt.Errorf("读取字体文件 %s 失败: %w", path, err)
		}
		return data, path, nil
	}
	if opts.Dir != "" {
		path := filepath.Join(opts.Dir, string(name)+".ttf")
		data, err := os.ReadFile(path)
		if err == nil {
			return data, path, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, path, fmt.Errorf("读取字体文件 %s 失败: %w", path, err)
		}
	}
	data, ok := builtinPrograms[name]
	if !ok {
		return nil, "builtin:" + string(name), fmt.Errorf("没有内置字体 %s", name)
	}
	return data, "builtin:" + string(name), nil
}

// validate 要求字体为 TrueType（glyf）轮廓并能被 sfnt 解析，返回家族名。
func validate(program []byte) (string, error) {
	if len(program) < 12 {
		return "", errEmpty
	}
	switch binary.BigEndian.Uint32(program[:4]) {
	case 0x00010000, 0x74727565: // 1.0, "true"
	default:
		return "", errNotTrueType
	}
	f, err := sfnt.Parse(program)
	if err != nil {
		return "", fmt.Errorf("解析字体失败: %w", err)
	}
	if f.NumGlyphs() == 0 {
		return "", errors.New("font program has no glyphs")
	}
	var buf sfnt.Buffer
	family, err := f.Name(&buf, sfnt.NameIDFamily)
	if err != nil {
		// 缺少 name 表不影响嵌入
		return "", nil
	}
	return strings.TrimSpace(family), nil
}
