package layout

import (
	"encoding/json"
	"os"
)

// debugItem 在 JSON 中附带元素类型，便于区分三种元素。
type debugItem struct {
	Kind Kind `json:"kind"`
	Item Item `json:"item"`
}

// MarshalDebugJSON 将版式表编码为带缩进的 JSON。图片只输出名称与位置。
func MarshalDebugJSON(tbl *Table) ([]byte, error) {
	items := make([]debugItem, 0, len(tbl.Items))
	for _, item := range tbl.Items {
		items = append(items, debugItem{Kind: item.Kind(), Item: item})
	}
	return json.MarshalIndent(struct {
		Page  Page        `json:"page"`
		Items []debugItem `json:"items"`
	}{tbl.Page, items}, "", "  ")
}

// WriteDebugJSON 将版式表输出为 JSON，便于调试或可视化。
func WriteDebugJSON(tbl *Table, path string) error {
	if tbl == nil {
		return nil
	}
	data, err := MarshalDebugJSON(tbl)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
