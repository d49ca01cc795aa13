package classify

import (
	"context"

	"github.com/liup3424/excelAgent/internal/model"
)

// Strategy 行角色分类策略
// 输入是前 K 行的文本样本和列数，输出对样本中每行给出一个角色
type Strategy interface {
	Name() string
	ClassifyRows(ctx context.Context, sample [][]string, columnCount int) ([]model.RowRole, error)
}
