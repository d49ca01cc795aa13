package classify_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/liup3424/excelAgent/internal/model"
	"github.com/liup3424/excelAgent/internal/service/classify"
)

func TestRemoteClassifyRows(t *testing.T) {
	var gotColumnCount int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ColumnCount int        `json:"column_count"`
			Rows        [][]string `json:"rows"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		gotColumnCount = req.ColumnCount
		json.NewEncoder(w).Encode(map[string]any{
			"labels": []int{1},
			"header": []int{2},
		})
	}))
	defer srv.Close()

	r := classify.NewRemote(srv.URL, time.Second)
	sample := [][]string{
		{"报表标题", ""},
		{"地区", "销售额"},
		{"华东", "100"},
	}
	roles, err := r.ClassifyRows(context.Background(), sample, 2)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}

	if gotColumnCount != 2 {
		t.Fatalf("request column_count = %d, want 2", gotColumnCount)
	}
	want := []model.RowRole{model.RowLabel, model.RowHeader, model.RowData}
	for i := range want {
		if roles[i] != want[i] {
			t.Fatalf("row %d role = %s, want %s", i, roles[i], want[i])
		}
	}
}

func TestRemoteIndexOutOfRange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"header": []int{9}})
	}))
	defer srv.Close()

	r := classify.NewRemote(srv.URL, time.Second)
	_, err := r.ClassifyRows(context.Background(), [][]string{{"a"}, {"b"}}, 1)

	var cErr *model.ClassificationError
	if !errors.As(err, &cErr) {
		t.Fatalf("expected ClassificationError, got %v", err)
	}
	if cErr.Timeout {
		t.Fatalf("out-of-range index must not be reported as timeout")
	}
}

func TestRemoteErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	r := classify.NewRemote(srv.URL, time.Second)
	_, err := r.ClassifyRows(context.Background(), [][]string{{"a"}}, 1)

	var cErr *model.ClassificationError
	if !errors.As(err, &cErr) {
		t.Fatalf("expected ClassificationError, got %v", err)
	}
}

func TestRemoteTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	r := classify.NewRemote(srv.URL, 30*time.Millisecond)
	_, err := r.ClassifyRows(context.Background(), [][]string{{"a"}}, 1)

	var cErr *model.ClassificationError
	if !errors.As(err, &cErr) {
		t.Fatalf("expected ClassificationError, got %v", err)
	}
	if !cErr.Timeout {
		t.Fatalf("expected timeout flag on %v", cErr)
	}
}

func TestRemoteMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	r := classify.NewRemote(srv.URL, time.Second)
	_, err := r.ClassifyRows(context.Background(), [][]string{{"a"}}, 1)

	var cErr *model.ClassificationError
	if !errors.As(err, &cErr) {
		t.Fatalf("expected ClassificationError, got %v", err)
	}
}
