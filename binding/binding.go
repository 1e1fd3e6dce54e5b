// Package binding 负责把 ${path.to.value} 形式的占位符替换为数据中的值，
// 用于把记录字段填入版式表中的文本模板。
package binding

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// InterpolateStrict 将文本中的 ${path.to.value} 替换为 data 中的值。
// 无法解析的占位符原样保留，并通过错误列出。
func InterpolateStrict(text string, data any) (string, error) {
	out, missing := interpolate(text, data)
	if len(missing) > 0 {
		return out, fmt.Errorf("binding: 无法解析占位符 %s", strings.Join(missing, ", "))
	}
	return out, nil
}

// Fields 把任意可 JSON 序列化的值转换为 map，供 InterpolateStrict 使用。
// 字段名沿用 json tag。
func Fields(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("binding: 序列化数据失败: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("binding: 数据必须是对象: %w", err)
	}
	return out, nil
}

func interpolate(text string, data any) (string, []string) {
	var missing []string
	out := exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		path := strings.TrimSpace(groups[1])
		if path == "" || data == nil {
			missing = append(missing, match)
			return match
		}
		val, ok := resolvePath(data, path)
		if !ok || val == nil {
			missing = append(missing, match)
			return match
		}
		return fmt.Sprint(val)
	})
	return out, missing
}

// resolvePath 依次下钻 path 中的键与下标，例如 course.tags[1]。
func resolvePath(data any, path string) (any, bool) {
	steps, ok := splitPath(path)
	if !ok {
		return nil, false
	}
	current := data
	for _, st := range steps {
		if current, ok = st.apply(current); !ok {
			return nil, false
		}
	}
	return current, true
}

// step 是路径中的一级：键名或数组下标。
type step struct {
	key   string
	index int
	isIdx bool
}

func (s step) apply(v any) (any, bool) {
	if s.isIdx {
		arr, ok := v.([]any)
		if !ok || s.index < 0 || s.index >= len(arr) {
			return nil, false
		}
		return arr[s.index], true
	}
	switch m := v.(type) {
	case map[string]any:
		val, ok := m[s.key]
		return val, ok
	case map[string]string:
		val, ok := m[s.key]
		return val, ok
	}
	return nil, false
}

func splitPath(path string) ([]step, bool) {
	var steps []step
	for _, segment := range strings.Split(path, ".") {
		key, rest, _ := strings.Cut(segment, "[")
		if key != "" {
			steps = append(steps, step{key: key})
		}
		for rest != "" {
			raw, tail, found := strings.Cut(rest, "]")
			if !found {
				return nil, false
			}
			n, err := strconv.Atoi(raw)
			if err != nil {
				return nil, false
			}
			steps = append(steps, step{index: n, isIdx: true})
			rest = strings.TrimPrefix(tail, "[")
		}
	}
	return steps, true
}
