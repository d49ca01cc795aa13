package classify

import (
	"context"
	"fmt"

	"github.com/liup3424/excelAgent/internal/model"
)

// DefaultSampleRows 送给分类策略的默认样本行数
const DefaultSampleRows = 15

// Chain 带回退的分类链：优先主策略（通常为外部模型），失败则回退到规则策略，
// 回退从不静默，以运行级警告形式返回。两种策略的输出都会经过同一个
// 连续性修正：表头行必须构成紧贴第一段数据行之上的连续块。
type Chain struct {
	primary    Strategy
	fallback   Strategy
	sampleRows int
}

// NewChain 创建分类链；primary 可为 nil（只用规则策略）
func NewChain(primary Strategy, fallback Strategy, sampleRows int) *Chain {
	if sampleRows <= 0 {
		sampleRows = DefaultSampleRows
	}
	return &Chain{primary: primary, fallback: fallback, sampleRows: sampleRows}
}

// Classify 对整个网格产出每行角色，并返回修正/回退产生的警告
func (c *Chain) Classify(ctx context.Context, grid *model.Grid) ([]model.RowRole, []string, error) {
	limit := c.sampleRows
	if limit > grid.Rows {
		limit = grid.Rows
	}
	sample := make([][]string, limit)
	for i := 0; i < limit; i++ {
		sample[i] = grid.RowValues(i)
	}

	var warnings []string

	strategy := c.primary
	if strategy == nil {
		strategy = c.fallback
	}

	roles, err := strategy.ClassifyRows(ctx, sample, grid.Cols)
	if err != nil && strategy != c.fallback {
		warnings = append(warnings,
			fmt.Sprintf("classification strategy %q failed, fell back to %q: %v",
				strategy.Name(), c.fallback.Name(), err))
		roles, err = c.fallback.ClassifyRows(ctx, sample, grid.Cols)
	}
	if err != nil {
		return nil, warnings, err
	}

	// 样本之外的行一律视为数据行
	full := make([]model.RowRole, grid.Rows)
	copy(full, roles)
	for i := len(roles); i < grid.Rows; i++ {
		full[i] = model.RowData
	}

	repaired, changed := RepairContiguity(full)
	if changed {
		warnings = append(warnings, "non-contiguous header block repaired by convex hull")
	}

	return repaired, warnings, nil
}

// RepairContiguity 连续性修正：取策略返回的表头行下标的凸包，
// 把凸包内夹着的标签/数据行重新标为表头。修正本身会被上层记录，不是静默失败。
func RepairContiguity(roles []model.RowRole) ([]model.RowRole, bool) {
	first, last := -1, -1
	for i, role := range roles {
		if role == model.RowHeader {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return roles, false
	}

	out := make([]model.RowRole, len(roles))
	copy(out, roles)
	changed := false
	for i := first; i <= last; i++ {
		if out[i] != model.RowHeader {
			out[i] = model.RowHeader
			changed = true
		}
	}
	return out, changed
}
