package excel

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/liup3424/excelAgent/internal/model"
)

// Loader 把 Excel sheet 读成可寻址的单元格网格（含合并区域元数据）
type Loader struct {
	file *excelize.File
	path string
}

// Open 打开 Excel 文件
func Open(path string) (*Loader, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel: %w", err)
	}
	return &Loader{file: file, path: path}, nil
}

// OpenReader 从 reader 打开 Excel（上传场景）
func OpenReader(reader io.Reader, path string) (*Loader, error) {
	file, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel: %w", err)
	}
	return &Loader{file: file, path: path}, nil
}

// NewLoader 包装一个已打开的工作簿（测试与协调器复用）
func NewLoader(file *excelize.File, path string) *Loader {
	return &Loader{file: file, path: path}
}

// Path 源文件路径
func (l *Loader) Path() string { return l.path }

// Sheets 工作表名列表
func (l *Loader) Sheets() []string {
	if l.file == nil {
		return nil
	}
	return l.file.GetSheetList()
}

// LoadGrid 读取单个 sheet 为网格；零行或零列返回 EmptySheetError
func (l *Loader) LoadGrid(sheetName string) (*model.Grid, error) {
	if l.file == nil {
		return nil, fmt.Errorf("no file loaded")
	}

	rows, err := l.file.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheetName, err)
	}

	cols := 0
	for _, row := range rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	if len(rows) == 0 || cols == 0 {
		return nil, &model.EmptySheetError{SourceFile: l.path, SheetName: sheetName}
	}

	grid := model.NewGrid(l.path, sheetName, len(rows), cols)
	for r, row := range rows {
		for c, value := range row {
			value = strings.TrimSpace(value)
			if value == "" {
				continue
			}
			grid.Set(r, c, value, l.cellKind(sheetName, r, c, value))
		}
	}

	merges, err := l.loadMergeRegions(sheetName)
	if err != nil {
		return nil, err
	}
	grid.Merges = merges

	return grid, nil
}

// cellKind 根据 excelize 的单元格类型推断原始值类型
func (l *Loader) cellKind(sheetName string, row, col int, value string) model.CellKind {
	axis, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return model.CellText
	}
	ct, err := l.file.GetCellType(sheetName, axis)
	if err != nil {
		return model.CellText
	}
	switch ct {
	case excelize.CellTypeNumber:
		return model.CellNumber
	case excelize.CellTypeBool:
		return model.CellBool
	case excelize.CellTypeDate:
		return model.CellDate
	default:
		if value == "" {
			return model.CellEmpty
		}
		return model.CellText
	}
}

// loadMergeRegions 读取 sheet 的合并区域，坐标转为 0 基
func (l *Loader) loadMergeRegions(sheetName string) ([]model.MergeRegion, error) {
	mergeCells, err := l.file.GetMergeCells(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read merge cells of %q: %w", sheetName, err)
	}

	regions := make([]model.MergeRegion, 0, len(mergeCells))
	for _, mc := range mergeCells {
		startCol, startRow, err := excelize.CellNameToCoordinates(mc.GetStartAxis())
		if err != nil {
			continue
		}
		endCol, endRow, err := excelize.CellNameToCoordinates(mc.GetEndAxis())
		if err != nil {
			continue
		}
		regions = append(regions, model.MergeRegion{
			TopRow:    startRow - 1,
			LeftCol:   startCol - 1,
			BottomRow: endRow - 1,
			RightCol:  endCol - 1,
			Anchor:    strings.TrimSpace(mc.GetCellValue()),
		})
	}

	return regions, nil
}

// Close 关闭工作簿
func (l *Loader) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
