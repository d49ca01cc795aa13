package excel_test

import (
	"errors"
	"testing"

	"github.com/liup3424/excelAgent/internal/model"
	"github.com/liup3424/excelAgent/internal/service/excel"
)

func TestExpandMergesFillsRegionWithAnchor(t *testing.T) {
	grid := model.NewGrid("sales.xlsx", "销售", 4, 2)
	grid.Set(0, 0, "Region", model.CellText)
	grid.Set(0, 1, "Sales", model.CellText)
	grid.Set(1, 0, "North", model.CellText)
	grid.Set(1, 1, "100", model.CellNumber)
	grid.Set(2, 1, "200", model.CellNumber)
	grid.Set(3, 1, "300", model.CellNumber)
	grid.Merges = []model.MergeRegion{
		{TopRow: 1, LeftCol: 0, BottomRow: 3, RightCol: 0, Anchor: "North"},
	}

	out, err := excel.ExpandMerges(grid)
	if err != nil {
		t.Fatalf("expand merges: %v", err)
	}

	for r := 1; r <= 3; r++ {
		cell := out.At(r, 0)
		if cell.Value != "North" {
			t.Fatalf("row %d col 0 = %q, want North", r, cell.Value)
		}
		if !cell.FromMerge {
			t.Fatalf("row %d col 0 not marked FromMerge", r)
		}
		if cell.Kind != model.CellText {
			t.Fatalf("row %d col 0 kind = %s, want text", r, cell.Kind)
		}
	}

	// 区域外单元格不受影响
	if cell := out.At(1, 1); cell.Value != "100" || cell.FromMerge {
		t.Fatalf("cell (1,1) = %+v, want untouched 100", cell)
	}
	// 原网格不被修改
	if grid.At(2, 0).Value != "" {
		t.Fatalf("source grid mutated")
	}
}

func TestExpandMergesEmptyAnchorPropagatesEmpty(t *testing.T) {
	grid := model.NewGrid("sales.xlsx", "销售", 3, 1)
	grid.Merges = []model.MergeRegion{
		{TopRow: 0, LeftCol: 0, BottomRow: 2, RightCol: 0, Anchor: ""},
	}

	out, err := excel.ExpandMerges(grid)
	if err != nil {
		t.Fatalf("expand merges: %v", err)
	}
	for r := 0; r < 3; r++ {
		cell := out.At(r, 0)
		if cell.Value != "" || cell.Kind != model.CellEmpty {
			t.Fatalf("row %d = %+v, want propagated empty", r, cell)
		}
		if !cell.FromMerge {
			t.Fatalf("row %d should still be marked FromMerge", r)
		}
	}
}

func TestExpandMergesOverlapIsMalformed(t *testing.T) {
	grid := model.NewGrid("sales.xlsx", "销售", 4, 4)
	grid.Merges = []model.MergeRegion{
		{TopRow: 0, LeftCol: 0, BottomRow: 2, RightCol: 2, Anchor: "a"},
		{TopRow: 1, LeftCol: 1, BottomRow: 3, RightCol: 3, Anchor: "b"},
	}

	_, err := excel.ExpandMerges(grid)
	var malformed *model.MalformedMergeError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedMergeError, got %v", err)
	}
	if malformed.SheetName != "销售" {
		t.Fatalf("error sheet = %q, want 销售", malformed.SheetName)
	}
}

func TestExpandMergesDisjointRegionsOK(t *testing.T) {
	grid := model.NewGrid("sales.xlsx", "销售", 4, 4)
	grid.Set(0, 0, "a", model.CellText)
	grid.Set(2, 2, "b", model.CellText)
	grid.Merges = []model.MergeRegion{
		{TopRow: 0, LeftCol: 0, BottomRow: 1, RightCol: 1, Anchor: "a"},
		{TopRow: 2, LeftCol: 2, BottomRow: 3, RightCol: 3, Anchor: "b"},
	}

	out, err := excel.ExpandMerges(grid)
	if err != nil {
		t.Fatalf("expand merges: %v", err)
	}
	if out.At(1, 1).Value != "a" || out.At(3, 3).Value != "b" {
		t.Fatalf("disjoint regions not both expanded")
	}
}
