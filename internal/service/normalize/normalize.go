package normalize

import (
	"strconv"
	"strings"
	"time"

	"github.com/liup3424/excelAgent/internal/model"
)

// Options 规整选项
type Options struct {
	TypeThreshold    float64  // 类型推断胜出所需的解析成功率，默认 0.9
	CategoricalRatio float64  // 判定分类列的去重值占比上限，默认 0.5
	DatePatterns     []string // 时间解析模式，按序尝试
	Separator        string   // 表头连接分隔符，默认 "_"
}

// DefaultDatePatterns 默认时间解析模式
func DefaultDatePatterns() []string {
	return []string{
		"2006-01-02 15:04:05",
		"2006-01-02",
		"2006/01/02",
		"01/02/2006",
		"2006-01",
		"2006年1月2日",
		"2006年1月",
	}
}

// DefaultOptions 默认规整选项
func DefaultOptions() Options {
	return Options{
		TypeThreshold:    0.9,
		CategoricalRatio: 0.5,
		DatePatterns:     DefaultDatePatterns(),
		Separator:        "_",
	}
}

// Normalizer 表规整器：去标签行、套用折叠表头、裁剪空行空列、
// 推断列类型并把值强制转换为该类型
type Normalizer struct {
	opts Options
}

// NewNormalizer 创建规整器
func NewNormalizer(opts Options) *Normalizer {
	if opts.TypeThreshold <= 0 {
		opts.TypeThreshold = 0.9
	}
	if opts.CategoricalRatio <= 0 {
		opts.CategoricalRatio = 0.5
	}
	if len(opts.DatePatterns) == 0 {
		opts.DatePatterns = DefaultDatePatterns()
	}
	if opts.Separator == "" {
		opts.Separator = "_"
	}
	return &Normalizer{opts: opts}
}

// Normalize 按行角色把展开后的网格规整为类型化二维表。
// 零数据行是合法结果，不是错误。
func (n *Normalizer) Normalize(grid *model.Grid, roles []model.RowRole) (*model.NormalizedTable, error) {
	headerRows := make([][]string, 0, 2)
	dataRows := make([][]string, 0, grid.Rows)
	for r := 0; r < grid.Rows && r < len(roles); r++ {
		switch roles[r] {
		case model.RowHeader:
			headerRows = append(headerRows, grid.RowValues(r))
		case model.RowData:
			dataRows = append(dataRows, grid.RowValues(r))
		}
	}

	dataRows = trimEmptyRows(dataRows)
	left, right := columnSpan(headerRows, dataRows, grid.Cols)
	width := right - left + 1
	if width <= 0 {
		// 整张表全空：返回零列零行的合法空表
		return &model.NormalizedTable{
			SourceFile: grid.SourceFile,
			SheetName:  grid.SheetName,
			Columns:    []model.Column{},
			Values:     [][]model.Value{},
		}, nil
	}

	clippedHeader := clipColumns(headerRows, left, width)
	clippedData := clipColumns(dataRows, left, width)

	names := FlattenHeader(clippedHeader, width, n.opts.Separator)

	columns := make([]model.Column, width)
	values := make([][]model.Value, len(clippedData))
	for i := range values {
		values[i] = make([]model.Value, width)
	}

	for col := 0; col < width; col++ {
		raw := make([]string, len(clippedData))
		for i, row := range clippedData {
			raw[i] = row[col]
		}
		colType := n.inferColumnType(raw)
		columns[col] = model.Column{Name: names[col], Type: colType, Ordinal: col}
		for i, s := range raw {
			values[i][col] = n.coerce(s, colType)
		}
	}

	return &model.NormalizedTable{
		SourceFile: grid.SourceFile,
		SheetName:  grid.SheetName,
		Columns:    columns,
		Values:     values,
	}, nil
}

// inferColumnType 按 时间 → 数值 → 标识符 → 分类 → 文本 的优先级推断列类型，
// 非空值解析成功率超过阈值即胜出
func (n *Normalizer) inferColumnType(raw []string) model.ColumnType {
	nonEmpty := make([]string, 0, len(raw))
	for _, s := range raw {
		if strings.TrimSpace(s) != "" {
			nonEmpty = append(nonEmpty, strings.TrimSpace(s))
		}
	}
	if len(nonEmpty) == 0 {
		return model.ColumnText
	}

	total := float64(len(nonEmpty))

	temporal := 0
	for _, s := range nonEmpty {
		if _, ok := n.parseTemporal(s); ok {
			temporal++
		}
	}
	if float64(temporal)/total > n.opts.TypeThreshold {
		return model.ColumnTemporal
	}

	// 等宽纯数字编码若先按数值解析会丢失前导零语义，标识符判定前置
	if isIdentifierColumn(nonEmpty, n.opts.TypeThreshold) {
		return model.ColumnIdentifier
	}

	numeric := 0
	for _, s := range nonEmpty {
		if _, ok := parseNumeric(s); ok {
			numeric++
		}
	}
	if float64(numeric)/total > n.opts.TypeThreshold {
		return model.ColumnNumeric
	}

	distinct := make(map[string]struct{}, len(nonEmpty))
	for _, s := range nonEmpty {
		distinct[s] = struct{}{}
	}
	if float64(len(distinct))/total <= n.opts.CategoricalRatio {
		return model.ColumnCategorical
	}

	return model.ColumnText
}

// coerce 把单元格值转换为列类型；无法解析的单值落为显式缺失标记，不让整列报错
func (n *Normalizer) coerce(s string, t model.ColumnType) model.Value {
	s = strings.TrimSpace(s)
	if s == "" {
		return model.MissingValue()
	}
	switch t {
	case model.ColumnTemporal:
		if v, ok := n.parseTemporal(s); ok {
			return model.TimeValue(v)
		}
		return model.MissingValue()
	case model.ColumnNumeric:
		if v, ok := parseNumeric(s); ok {
			return model.NumberValue(v)
		}
		return model.MissingValue()
	default:
		return model.TextValue(s)
	}
}

// parseTemporal 按配置的模式顺序尝试解析时间
func (n *Normalizer) parseTemporal(s string) (time.Time, bool) {
	for _, pattern := range n.opts.DatePatterns {
		if t, err := time.Parse(pattern, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseNumeric 本地化宽松数值解析：容忍千分位分隔符、单个前后缀货币符号或百分号。
// 带前导零的整数串被拒绝，留给标识符推断。
func parseNumeric(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSuffix(s, "%")
	for _, sym := range []string{"¥", "￥", "$", "€", "£"} {
		if strings.HasPrefix(s, sym) {
			s = strings.TrimPrefix(s, sym)
			break
		}
		if strings.HasSuffix(s, sym) {
			s = strings.TrimSuffix(s, sym)
			break
		}
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	digits := strings.TrimPrefix(s, "-")
	if len(digits) > 1 && digits[0] == '0' && !strings.Contains(digits, ".") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// isIdentifierColumn 标识符启发：看起来是数字但没有算术意义，
// 即带前导零的纯数字，或整列等宽纯数字编码（宽度 ≥ 6）
func isIdentifierColumn(nonEmpty []string, threshold float64) bool {
	leadingZero := 0
	allDigits := true
	uniformWidth := len(nonEmpty[0])
	for _, s := range nonEmpty {
		if !isAllDigits(s) {
			allDigits = false
		} else if len(s) > 1 && s[0] == '0' {
			leadingZero++
		}
		if len(s) != uniformWidth {
			uniformWidth = -1
		}
	}
	if float64(leadingZero)/float64(len(nonEmpty)) > threshold {
		return true
	}
	return allDigits && uniformWidth >= 6
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}

// trimEmptyRows 去掉首尾的全空数据行
func trimEmptyRows(rows [][]string) [][]string {
	start, end := 0, len(rows)
	for start < end && rowEmpty(rows[start]) {
		start++
	}
	for end > start && rowEmpty(rows[end-1]) {
		end--
	}
	return rows[start:end]
}

func rowEmpty(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// columnSpan 求表头与数据行共同的非空列区间，去掉首尾全空列
func columnSpan(headerRows, dataRows [][]string, cols int) (int, int) {
	left, right := -1, -1
	colEmpty := func(c int) bool {
		for _, row := range headerRows {
			if c < len(row) && strings.TrimSpace(row[c]) != "" {
				return false
			}
		}
		for _, row := range dataRows {
			if c < len(row) && strings.TrimSpace(row[c]) != "" {
				return false
			}
		}
		return true
	}
	for c := 0; c < cols; c++ {
		if !colEmpty(c) {
			if left < 0 {
				left = c
			}
			right = c
		}
	}
	if left < 0 {
		return 0, -1
	}
	return left, right
}

// clipColumns 截取行的 [left, left+width) 列区间，短行补空
func clipColumns(rows [][]string, left, width int) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		clipped := make([]string, width)
		for c := 0; c < width; c++ {
			if left+c < len(row) {
				clipped[c] = row[left+c]
			}
		}
		out[i] = clipped
	}
	return out
}
