package resolve

import (
	"context"
	"strings"

	"github.com/agext/levenshtein"

	"github.com/liup3424/excelAgent/internal/lineage"
	"github.com/liup3424/excelAgent/internal/model"
)

// Options 解析选项
type Options struct {
	SimilarityThreshold float64 // 相似度阈值，默认 0.6
}

// DefaultOptions 默认解析选项
func DefaultOptions() Options {
	return Options{SimilarityThreshold: 0.6}
}

// Resolver 把查询实体映射到规整表的具体列。
// 匹配顺序：精确名称匹配 → 相似度匹配 → 角色回退；
// 三段都未命中时产出“未解析”绑定，这是一等合法结果而非错误。
type Resolver struct {
	opts Options
}

// NewResolver 创建解析器
func NewResolver(opts Options) *Resolver {
	if opts.SimilarityThreshold <= 0 {
		opts.SimilarityThreshold = 0.6
	}
	return &Resolver{opts: opts}
}

// Resolve 按序解析实体列表，成功的绑定写入血缘作用域（scope 可为 nil）。
// 取消只发生在实体之间：被取消的查询不会为进行中的实体落任何血缘记录。
func (r *Resolver) Resolve(ctx context.Context, table *model.NormalizedTable, entities []model.Entity, scope *lineage.Scope) ([]model.ColumnBinding, error) {
	bindings := make([]model.ColumnBinding, 0, len(entities))
	bound := make(map[int]bool)

	for _, entity := range entities {
		if err := ctx.Err(); err != nil {
			return bindings, err
		}

		binding := r.resolveOne(table, entity, bound)
		bindings = append(bindings, binding)

		if binding.Resolved {
			bound[binding.Ordinal] = true
			if scope != nil {
				scope.Record(binding.Column, entity.Label, binding.Rule)
			}
		}
	}

	return bindings, nil
}

// resolveOne 解析单个实体
func (r *Resolver) resolveOne(table *model.NormalizedTable, entity model.Entity, bound map[int]bool) model.ColumnBinding {
	label := strings.TrimSpace(entity.Label)

	// 第一段：大小写不敏感的精确名称匹配
	for _, col := range table.Columns {
		if strings.EqualFold(label, col.Name) {
			return model.ColumnBinding{
				Entity:     entity,
				Column:     col.Name,
				Ordinal:    col.Ordinal,
				Resolved:   true,
				Confidence: 1.0,
				Rule:       model.RuleExact,
			}
		}
	}

	// 第二段：归一化 token 相似度，阈值之上取最高分，平分取最左列
	bestScore := 0.0
	bestIdx := -1
	for _, col := range table.Columns {
		score := similarity(label, col.Name)
		if score > bestScore {
			bestScore = score
			bestIdx = col.Ordinal
		}
	}
	if bestIdx >= 0 && bestScore >= r.opts.SimilarityThreshold {
		return model.ColumnBinding{
			Entity:     entity,
			Column:     table.Columns[bestIdx].Name,
			Ordinal:    bestIdx,
			Resolved:   true,
			Confidence: bestScore,
			Rule:       model.RuleSimilarity,
		}
	}

	// 第三段：角色回退，按声明角色找第一个类型匹配且未被占用的列
	if col, ok := roleFallback(table, entity.Role, bound); ok {
		return model.ColumnBinding{
			Entity:     entity,
			Column:     col.Name,
			Ordinal:    col.Ordinal,
			Resolved:   true,
			Confidence: 0.5,
			Rule:       model.RuleRole,
		}
	}

	return model.ColumnBinding{
		Entity:  entity,
		Ordinal: -1,
		Rule:    model.RuleUnresolved,
	}
}

// roleFallback 角色回退：metric→数值列，time→时间列，
// dimension→分类列（次选标识符列），identifier→标识符列（次选分类列）
func roleFallback(table *model.NormalizedTable, role model.EntityRole, bound map[int]bool) (model.Column, bool) {
	var wanted []model.ColumnType
	switch role {
	case model.RoleMetric:
		wanted = []model.ColumnType{model.ColumnNumeric}
	case model.RoleTime:
		wanted = []model.ColumnType{model.ColumnTemporal}
	case model.RoleDimension:
		wanted = []model.ColumnType{model.ColumnCategorical, model.ColumnIdentifier}
	case model.RoleIdentifier:
		wanted = []model.ColumnType{model.ColumnIdentifier, model.ColumnCategorical}
	default:
		return model.Column{}, false
	}

	for _, t := range wanted {
		for _, col := range table.Columns {
			if col.Type == t && !bound[col.Ordinal] {
				return col, true
			}
		}
	}
	return model.Column{}, false
}

// similarity 综合相似度：整串编辑距离相似度、token 集合重合率、
// 最佳 token 对相似度三者取最大值
func similarity(a, b string) float64 {
	ta := tokens(a)
	tb := tokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	score := levenshtein.Similarity(strings.Join(ta, " "), strings.Join(tb, " "), nil)

	if overlap := tokenOverlap(ta, tb); overlap > score {
		score = overlap
	}

	for _, x := range ta {
		for _, y := range tb {
			if s := levenshtein.Similarity(x, y, nil); s > score {
				score = s
			}
		}
	}
	return score
}

// tokenOverlap token 集合的 Jaccard 重合率
func tokenOverlap(a, b []string) float64 {
	set := make(map[string]bool, len(a))
	for _, t := range a {
		set[t] = true
	}
	inter := 0
	union := len(set)
	seen := make(map[string]bool, len(b))
	for _, t := range b {
		if seen[t] {
			continue
		}
		seen[t] = true
		if set[t] {
			inter++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// tokens 归一化分词：小写、非字母数字一律作为分隔符
func tokens(s string) []string {
	s = strings.ToLower(s)
	return strings.FieldsFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r >= 0x4e00 && r <= 0x9fff)
	})
}
