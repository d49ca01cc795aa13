package lineage

import (
	"fmt"
	"sync"

	"github.com/liup3424/excelAgent/internal/model"
)

// Recorder 血缘记录器：按查询作用域累积只追加的 LineageEntry。
// 并发查询各持独立作用域，互不交叉；任何条目一经写入不再修改或删除。
type Recorder struct {
	mu     sync.RWMutex
	scopes map[string]*Scope
	order  []string
}

// Scope 单个查询的血缘作用域，序号在作用域内单调递增
type Scope struct {
	mu      sync.Mutex
	queryID string
	file    string
	sheet   string
	entries []model.LineageEntry
}

// NewRecorder 创建血缘记录器
func NewRecorder() *Recorder {
	return &Recorder{scopes: make(map[string]*Scope)}
}

// Begin 为新查询开启作用域；同一 queryID 重复开启是调用方错误
func (r *Recorder) Begin(queryID, sourceFile, sheetName string) (*Scope, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.scopes[queryID]; exists {
		return nil, fmt.Errorf("lineage scope for query %q already exists", queryID)
	}
	scope := &Scope{queryID: queryID, file: sourceFile, sheet: sheetName}
	r.scopes[queryID] = scope
	r.order = append(r.order, queryID)
	return scope, nil
}

// Record 追加一条血缘记录
func (s *Scope) Record(columnName, entityLabel string, rule model.MatchRule) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, model.LineageEntry{
		Seq:         len(s.entries) + 1,
		SourceFile:  s.file,
		SheetName:   s.sheet,
		ColumnName:  columnName,
		EntityLabel: entityLabel,
		Rule:        rule,
	})
}

// QueryID 作用域所属查询
func (s *Scope) QueryID() string { return s.queryID }

// Entries 按插入顺序返回某查询的全部血缘记录（副本）
func (r *Recorder) Entries(queryID string) ([]model.LineageEntry, bool) {
	r.mu.RLock()
	scope, ok := r.scopes[queryID]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}

	scope.mu.Lock()
	defer scope.mu.Unlock()
	out := make([]model.LineageEntry, len(scope.entries))
	copy(out, scope.entries)
	return out, true
}

// QueryIDs 按开启顺序返回全部查询 ID
func (r *Recorder) QueryIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
