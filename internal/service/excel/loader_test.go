package excel_test

import (
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/liup3424/excelAgent/internal/model"
	"github.com/liup3424/excelAgent/internal/service/excel"
)

func buildWorkbook(t *testing.T, fill func(f *excelize.File)) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	fill(f)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestLoadGridWithMergeRegion(t *testing.T) {
	f := buildWorkbook(t, func(f *excelize.File) {
		f.SetSheetName("Sheet1", "销售")
		f.SetCellValue("销售", "A1", "Region")
		f.SetCellValue("销售", "B1", "Sales")
		f.SetCellValue("销售", "A2", "North")
		f.SetCellValue("销售", "B2", "100")
		f.SetCellValue("销售", "B3", "200")
		f.SetCellValue("销售", "B4", "300")
		f.MergeCell("销售", "A2", "A4")
	})

	loader := excel.NewLoader(f, "sales.xlsx")
	grid, err := loader.LoadGrid("销售")
	if err != nil {
		t.Fatalf("load grid: %v", err)
	}

	if grid.Rows != 4 || grid.Cols != 2 {
		t.Fatalf("grid size = %dx%d, want 4x2", grid.Rows, grid.Cols)
	}
	if got := grid.At(0, 0).Value; got != "Region" {
		t.Fatalf("A1 = %q, want Region", got)
	}
	if got := grid.At(1, 0).Value; got != "North" {
		t.Fatalf("A2 = %q, want North", got)
	}
	// 合并区域内非锚点单元格在展开前保持为空
	if got := grid.At(2, 0); got.Kind != model.CellEmpty || got.Value != "" {
		t.Fatalf("A3 before expand = %+v, want empty", got)
	}

	if len(grid.Merges) != 1 {
		t.Fatalf("merge regions = %d, want 1", len(grid.Merges))
	}
	m := grid.Merges[0]
	if m.TopRow != 1 || m.LeftCol != 0 || m.BottomRow != 3 || m.RightCol != 0 {
		t.Fatalf("merge region = %+v, want rows 1-3 col 0", m)
	}
	if m.Anchor != "North" {
		t.Fatalf("merge anchor = %q, want North", m.Anchor)
	}
}

func TestLoadGridEmptySheet(t *testing.T) {
	f := buildWorkbook(t, func(f *excelize.File) {
		f.NewSheet("空表")
	})

	loader := excel.NewLoader(f, "sales.xlsx")
	_, err := loader.LoadGrid("空表")

	var emptyErr *model.EmptySheetError
	if !errors.As(err, &emptyErr) {
		t.Fatalf("expected EmptySheetError, got %v", err)
	}
	if emptyErr.SheetName != "空表" || emptyErr.SourceFile != "sales.xlsx" {
		t.Fatalf("unexpected error fields: %+v", emptyErr)
	}
}

func TestLoadGridTrimsWhitespace(t *testing.T) {
	f := buildWorkbook(t, func(f *excelize.File) {
		f.SetCellValue("Sheet1", "A1", "  地区  ")
		f.SetCellValue("Sheet1", "B1", "销售额")
	})

	loader := excel.NewLoader(f, "sales.xlsx")
	grid, err := loader.LoadGrid("Sheet1")
	if err != nil {
		t.Fatalf("load grid: %v", err)
	}
	if got := grid.At(0, 0).Value; got != "地区" {
		t.Fatalf("A1 = %q, want trimmed 地区", got)
	}
}

func TestSheetsListsWorkbookOrder(t *testing.T) {
	f := buildWorkbook(t, func(f *excelize.File) {
		f.SetSheetName("Sheet1", "一")
		f.NewSheet("二")
		f.SetCellValue("一", "A1", "x")
		f.SetCellValue("二", "A1", "y")
	})

	loader := excel.NewLoader(f, "book.xlsx")
	sheets := loader.Sheets()
	if len(sheets) != 2 || sheets[0] != "一" || sheets[1] != "二" {
		t.Fatalf("sheets = %v, want [一 二]", sheets)
	}
}
