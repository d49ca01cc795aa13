package catalog

import (
	"sync"

	"github.com/liup3424/excelAgent/internal/model"
)

// Key 表目录键：来源文件 + sheet 名
type Key struct {
	SourceFile string
	SheetName  string
}

// Catalog 规整表目录：进程内唯一长生命周期对象，由各 worker 共享句柄。
// 注册是预处理流水线唯一的同步点，按键原子插入，重复注册是错误而非覆盖。
type Catalog struct {
	mu     sync.RWMutex
	tables map[Key]*model.NormalizedTable
	order  []Key
}

// New 创建表目录
func New() *Catalog {
	return &Catalog{tables: make(map[Key]*model.NormalizedTable)}
}

// Register 原子注册一张规整表；同键重复注册返回 DuplicateTableError
func (c *Catalog) Register(table *model.NormalizedTable) error {
	key := Key{SourceFile: table.SourceFile, SheetName: table.SheetName}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.tables[key]; exists {
		return &model.DuplicateTableError{SourceFile: table.SourceFile, SheetName: table.SheetName}
	}
	c.tables[key] = table
	c.order = append(c.order, key)
	return nil
}

// Get 按键读取规整表
func (c *Catalog) Get(sourceFile, sheetName string) (*model.NormalizedTable, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	table, ok := c.tables[Key{SourceFile: sourceFile, SheetName: sheetName}]
	return table, ok
}

// List 按注册顺序返回全部规整表
func (c *Catalog) List() []*model.NormalizedTable {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*model.NormalizedTable, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, c.tables[key])
	}
	return out
}

// Len 已注册表数量
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tables)
}

// Clear 显式销毁：清空目录，进程退出前调用
func (c *Catalog) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tables = make(map[Key]*model.NormalizedTable)
	c.order = nil
}
