package classify_test

import (
	"context"
	"strings"
	"testing"

	"github.com/liup3424/excelAgent/internal/model"
	"github.com/liup3424/excelAgent/internal/service/classify"
)

// stubStrategy 返回固定角色或固定错误的测试替身
type stubStrategy struct {
	name  string
	roles []model.RowRole
	err   error
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) ClassifyRows(_ context.Context, sample [][]string, _ int) ([]model.RowRole, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]model.RowRole, len(sample))
	for i := range out {
		if i < len(s.roles) {
			out[i] = s.roles[i]
		} else {
			out[i] = model.RowData
		}
	}
	return out, nil
}

func buildGrid(t *testing.T, rows [][]string) *model.Grid {
	t.Helper()
	cols := 0
	for _, row := range rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	grid := model.NewGrid("test.xlsx", "Sheet1", len(rows), cols)
	for r, row := range rows {
		for c, v := range row {
			if v != "" {
				grid.Set(r, c, v, model.CellText)
			}
		}
	}
	return grid
}

func TestChainFallsBackWithWarning(t *testing.T) {
	primary := &stubStrategy{
		name: "remote",
		err:  &model.ClassificationError{Strategy: "remote", Reason: "boom"},
	}

	grid := buildGrid(t, [][]string{
		{"地区", "销售额"},
		{"华东", "100"},
		{"华南", "200"},
	})

	chain := classify.NewChain(primary, classify.NewHeuristic(), 15)
	roles, warnings, err := chain.Classify(context.Background(), grid)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}

	if len(warnings) != 1 || !strings.Contains(warnings[0], "fell back") {
		t.Fatalf("expected fallback warning, got %v", warnings)
	}
	want := []model.RowRole{model.RowHeader, model.RowData, model.RowData}
	for i := range want {
		if roles[i] != want[i] {
			t.Fatalf("row %d role = %s, want %s", i, roles[i], want[i])
		}
	}
}

func TestChainBothStrategiesFail(t *testing.T) {
	primary := &stubStrategy{name: "remote", err: &model.ClassificationError{Strategy: "remote", Reason: "boom"}}
	fallback := &stubStrategy{name: "broken", err: &model.ClassificationError{Strategy: "broken", Reason: "boom"}}

	grid := buildGrid(t, [][]string{{"a"}, {"b"}})
	chain := classify.NewChain(primary, fallback, 15)

	_, warnings, err := chain.Classify(context.Background(), grid)
	if err == nil {
		t.Fatalf("expected error when both strategies fail")
	}
	if len(warnings) == 0 {
		t.Fatalf("fallback attempt should still leave a warning")
	}
}

func TestChainRowsBeyondSampleAreData(t *testing.T) {
	primary := &stubStrategy{name: "fixed", roles: []model.RowRole{model.RowHeader, model.RowData}}
	grid := buildGrid(t, [][]string{
		{"h1"}, {"d1"}, {"d2"}, {"d3"}, {"d4"},
	})

	chain := classify.NewChain(primary, classify.NewHeuristic(), 2)
	roles, _, err := chain.Classify(context.Background(), grid)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if len(roles) != 5 {
		t.Fatalf("roles length = %d, want 5", len(roles))
	}
	for i := 1; i < 5; i++ {
		if roles[i] != model.RowData {
			t.Fatalf("row %d role = %s, want data", i, roles[i])
		}
	}
}

func TestChainRepairsNonContiguousHeader(t *testing.T) {
	primary := &stubStrategy{
		name:  "fixed",
		roles: []model.RowRole{model.RowHeader, model.RowData, model.RowHeader, model.RowData},
	}
	grid := buildGrid(t, [][]string{{"a"}, {"b"}, {"c"}, {"d"}})

	chain := classify.NewChain(primary, classify.NewHeuristic(), 15)
	roles, warnings, err := chain.Classify(context.Background(), grid)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}

	found := false
	for _, w := range warnings {
		if strings.Contains(w, "convex hull") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected convex hull warning, got %v", warnings)
	}
	want := []model.RowRole{model.RowHeader, model.RowHeader, model.RowHeader, model.RowData}
	for i := range want {
		if roles[i] != want[i] {
			t.Fatalf("row %d role = %s, want %s", i, roles[i], want[i])
		}
	}
}

func TestRepairContiguity(t *testing.T) {
	cases := []struct {
		name    string
		in      []model.RowRole
		want    []model.RowRole
		changed bool
	}{
		{
			name:    "already contiguous",
			in:      []model.RowRole{model.RowLabel, model.RowHeader, model.RowHeader, model.RowData},
			want:    []model.RowRole{model.RowLabel, model.RowHeader, model.RowHeader, model.RowData},
			changed: false,
		},
		{
			name:    "gap relabeled",
			in:      []model.RowRole{model.RowHeader, model.RowLabel, model.RowHeader, model.RowData},
			want:    []model.RowRole{model.RowHeader, model.RowHeader, model.RowHeader, model.RowData},
			changed: true,
		},
		{
			name:    "no header rows",
			in:      []model.RowRole{model.RowData, model.RowData},
			want:    []model.RowRole{model.RowData, model.RowData},
			changed: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, changed := classify.RepairContiguity(tc.in)
			if changed != tc.changed {
				t.Fatalf("changed = %v, want %v", changed, tc.changed)
			}
			for i := range tc.want {
				if got[i] != tc.want[i] {
					t.Fatalf("row %d = %s, want %s", i, got[i], tc.want[i])
				}
			}
		})
	}
}
