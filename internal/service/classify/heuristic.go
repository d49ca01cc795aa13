package classify

import (
	"context"
	"strconv"
	"strings"

	"github.com/liup3424/excelAgent/internal/model"
)

// Heuristic 确定性的规则分类策略：
//   - 填充率低、全为文本且无数值的行视为标签行
//   - 紧贴第一段数据行之上、由较短文本构成的连续行视为表头行
//   - 其余为数据行
type Heuristic struct{}

// NewHeuristic 创建规则分类策略
func NewHeuristic() *Heuristic { return &Heuristic{} }

// Name 策略名
func (h *Heuristic) Name() string { return "heuristic" }

type rowStat struct {
	filled  int
	numeric int
	textLen int
}

func (s rowStat) fillRatio(cols int) float64 {
	if cols == 0 {
		return 0
	}
	return float64(s.filled) / float64(cols)
}

func (s rowStat) avgTextLen() int {
	if s.filled == 0 {
		return 0
	}
	return s.textLen / s.filled
}

// ClassifyRows 对样本行分类
func (h *Heuristic) ClassifyRows(_ context.Context, sample [][]string, columnCount int) ([]model.RowRole, error) {
	n := len(sample)
	roles := make([]model.RowRole, n)
	stats := make([]rowStat, n)

	for i, row := range sample {
		for _, v := range row {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			stats[i].filled++
			stats[i].textLen += len([]rune(v))
			if looksNumeric(v) {
				stats[i].numeric++
			}
		}
	}

	// 第一段数据行：含数值且填充率不太低的首行
	firstData := -1
	for i := range stats {
		if stats[i].numeric > 0 && stats[i].fillRatio(columnCount) >= 0.4 {
			firstData = i
			break
		}
	}

	if firstData < 0 {
		// 无明显数据行：首个非空行当表头，其后全部视为数据
		headerSeen := false
		for i := range stats {
			switch {
			case stats[i].filled == 0 && !headerSeen:
				roles[i] = model.RowLabel
			case !headerSeen:
				roles[i] = model.RowHeader
				headerSeen = true
			default:
				roles[i] = model.RowData
			}
		}
		return roles, nil
	}

	// 从第一段数据行向上收表头：无数值、非空、文本较短且不像标签行
	headerStart := firstData
	for i := firstData - 1; i >= 0; i-- {
		if !headerLike(stats[i], columnCount) {
			break
		}
		headerStart = i
	}

	for i := range roles {
		switch {
		case i < headerStart:
			roles[i] = model.RowLabel
		case i < firstData:
			roles[i] = model.RowHeader
		default:
			roles[i] = model.RowData
		}
	}
	return roles, nil
}

// headerLike 表头行候选：非空、无数值、平均文本不超过 40 字符、且填充率不属于典型标签行
func headerLike(s rowStat, columnCount int) bool {
	if s.filled == 0 || s.numeric > 0 {
		return false
	}
	if s.avgTextLen() > 40 {
		return false
	}
	// 单格长文本的典型标签行
	if s.fillRatio(columnCount) <= 0.34 && s.avgTextLen() > 12 {
		return false
	}
	return true
}

// looksNumeric 宽松数值判断：容忍千分位分隔符与单个货币/百分号
func looksNumeric(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSuffix(s, "%")
	for _, sym := range []string{"¥", "￥", "$", "€", "£"} {
		s = strings.TrimPrefix(s, sym)
		s = strings.TrimSuffix(s, sym)
	}
	if s == "" {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
