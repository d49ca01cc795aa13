package model

import (
	"strconv"
	"time"
)

// ColumnType 列的语义类型
type ColumnType string

const (
	ColumnNumeric     ColumnType = "numeric"
	ColumnTemporal    ColumnType = "temporal"
	ColumnCategorical ColumnType = "categorical"
	ColumnIdentifier  ColumnType = "identifier"
	ColumnText        ColumnType = "text"
)

// Column 规整表中的一列
type Column struct {
	Name    string     `json:"name"`
	Type    ColumnType `json:"type"`
	Ordinal int        `json:"ordinal"`
}

// Value 规整表中的单个值；Missing 为显式缺失标记
type Value struct {
	Missing bool      `json:"missing,omitempty"`
	Number  float64   `json:"number,omitempty"`
	Time    time.Time `json:"time,omitempty"`
	Text    string    `json:"text,omitempty"`
}

// MissingValue 缺失值
func MissingValue() Value { return Value{Missing: true} }

// NumberValue 数值
func NumberValue(f float64) Value { return Value{Number: f} }

// TimeValue 时间值
func TimeValue(t time.Time) Value { return Value{Time: t} }

// TextValue 文本值
func TextValue(s string) Value { return Value{Text: s} }

// Render 按列类型渲染为规范字符串；缺失值返回空串
func (v Value) Render(t ColumnType) string {
	if v.Missing {
		return ""
	}
	switch t {
	case ColumnNumeric:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case ColumnTemporal:
		if v.Time.Hour() == 0 && v.Time.Minute() == 0 && v.Time.Second() == 0 {
			return v.Time.Format("2006-01-02")
		}
		return v.Time.Format("2006-01-02 15:04:05")
	default:
		return v.Text
	}
}

// NormalizedTable 规整后的二维表：列目录 + 按行存放的类型化值
// 创建后不可变；每行的值个数恒等于列数
type NormalizedTable struct {
	SourceFile string    `json:"source_file"`
	SheetName  string    `json:"sheet_name"`
	Columns    []Column  `json:"columns"`
	Values     [][]Value `json:"values"`
}

// ColumnNames 按序返回全部列名
func (t *NormalizedTable) ColumnNames() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// RowCount 数据行数
func (t *NormalizedTable) RowCount() int { return len(t.Values) }
