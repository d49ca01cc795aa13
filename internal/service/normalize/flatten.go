package normalize

import (
	"fmt"
	"strings"
)

// FlattenHeader 把连续表头块（0..N 行）折叠为每列一个名称：
//   - 逐列自上而下收集非空且不等于正上方单元格的值，用分隔符连接
//   - 与正上方单元格相同的值视为隐式跨行标记，不参与连接
//   - 折叠后为空的列用位置占位名 column_<n>（1 基）
//   - 重名列自左向右追加 _2、_3 … 去重
//
// 输出长度恒等于列数，所有名称非空且互不相同。
func FlattenHeader(headerRows [][]string, columnCount int, separator string) []string {
	if separator == "" {
		separator = "_"
	}

	names := make([]string, columnCount)
	for col := 0; col < columnCount; col++ {
		parts := make([]string, 0, len(headerRows))
		above := ""
		for _, row := range headerRows {
			v := ""
			if col < len(row) {
				v = strings.TrimSpace(row[col])
			}
			if v != "" && v != above {
				parts = append(parts, v)
			}
			above = v
		}
		name := strings.TrimSpace(strings.Join(parts, separator))
		if name == "" {
			name = fmt.Sprintf("column_%d", col+1)
		}
		names[col] = name
	}

	return dedupeNames(names)
}

// dedupeNames 自左向右为重名列追加 _2、_3 …，保证追加后的名称仍然唯一
func dedupeNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, len(names))
	for i, name := range names {
		candidate := name
		for n := 2; seen[candidate]; n++ {
			candidate = fmt.Sprintf("%s_%d", name, n)
		}
		seen[candidate] = true
		out[i] = candidate
	}
	return out
}
