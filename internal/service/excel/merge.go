package excel

import "github.com/liup3424/excelAgent/internal/model"

// ExpandMerges 把合并区域展开为新网格：区域内每个单元格持有锚点值并标记 FromMerge，
// 区域外单元格原样保留。区域重叠说明源格式自相矛盾，返回 MalformedMergeError。
// 空锚点按空值传播，不丢弃，保证下游空白检测不受影响。
func ExpandMerges(grid *model.Grid) (*model.Grid, error) {
	for i := 0; i < len(grid.Merges); i++ {
		for j := i + 1; j < len(grid.Merges); j++ {
			if grid.Merges[i].Overlaps(grid.Merges[j]) {
				return nil, &model.MalformedMergeError{
					SheetName: grid.SheetName,
					A:         grid.Merges[i],
					B:         grid.Merges[j],
				}
			}
		}
	}

	out := grid.Clone()
	for _, region := range grid.Merges {
		kind := grid.At(region.TopRow, region.LeftCol).Kind
		if region.Anchor == "" {
			kind = model.CellEmpty
		} else if kind == model.CellEmpty {
			kind = model.CellText
		}
		for r := region.TopRow; r <= region.BottomRow && r < out.Rows; r++ {
			for c := region.LeftCol; c <= region.RightCol && c < out.Cols; c++ {
				if r < 0 || c < 0 {
					continue
				}
				out.Cells[r][c].Value = region.Anchor
				out.Cells[r][c].Kind = kind
				out.Cells[r][c].FromMerge = true
			}
		}
	}

	return out, nil
}
