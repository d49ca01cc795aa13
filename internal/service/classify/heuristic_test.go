package classify_test

import (
	"context"
	"testing"

	"github.com/liup3424/excelAgent/internal/model"
	"github.com/liup3424/excelAgent/internal/service/classify"
)

func TestHeuristicLabelHeaderData(t *testing.T) {
	sample := [][]string{
		{"2024年度华东地区销售统计报表", "", "", ""},
		{"地区", "季度", "销售额", "占比"},
		{"华东", "Q1", "1,200", "30%"},
		{"华东", "Q2", "1,500", "35%"},
	}

	h := classify.NewHeuristic()
	roles, err := h.ClassifyRows(context.Background(), sample, 4)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}

	want := []model.RowRole{model.RowLabel, model.RowHeader, model.RowData, model.RowData}
	for i := range want {
		if roles[i] != want[i] {
			t.Fatalf("row %d role = %s, want %s (all: %v)", i, roles[i], want[i], roles)
		}
	}
}

func TestHeuristicMultiRowHeader(t *testing.T) {
	sample := [][]string{
		{"Region", "Region", "Sales"},
		{"", "Q1", "Q2"},
		{"North", "100", "200"},
	}

	h := classify.NewHeuristic()
	roles, err := h.ClassifyRows(context.Background(), sample, 3)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}

	want := []model.RowRole{model.RowHeader, model.RowHeader, model.RowData}
	for i := range want {
		if roles[i] != want[i] {
			t.Fatalf("row %d role = %s, want %s", i, roles[i], want[i])
		}
	}
}

func TestHeuristicNoDataRowsFallsBackToFirstNonEmpty(t *testing.T) {
	sample := [][]string{
		{"", ""},
		{"Name", "City"},
		{"alice", "beijing"},
		{"bob", "shanghai"},
	}

	h := classify.NewHeuristic()
	roles, err := h.ClassifyRows(context.Background(), sample, 2)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}

	want := []model.RowRole{model.RowLabel, model.RowHeader, model.RowData, model.RowData}
	for i := range want {
		if roles[i] != want[i] {
			t.Fatalf("row %d role = %s, want %s", i, roles[i], want[i])
		}
	}
}

func TestHeuristicCurrencyAndPercentCountAsNumeric(t *testing.T) {
	sample := [][]string{
		{"商品", "金额"},
		{"A", "¥1,200.50"},
		{"B", "85%"},
	}

	h := classify.NewHeuristic()
	roles, err := h.ClassifyRows(context.Background(), sample, 2)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if roles[0] != model.RowHeader {
		t.Fatalf("row 0 = %s, want header", roles[0])
	}
	if roles[1] != model.RowData || roles[2] != model.RowData {
		t.Fatalf("currency/percent rows should be data, got %v", roles)
	}
}
