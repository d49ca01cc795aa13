package model

import "fmt"

// MalformedMergeError 合并区域相互重叠，源文件自相矛盾，该 sheet 级致命错误
type MalformedMergeError struct {
	SheetName string
	A, B      MergeRegion
}

func (e *MalformedMergeError) Error() string {
	return fmt.Sprintf("sheet %q: merge regions overlap: (%d,%d)-(%d,%d) and (%d,%d)-(%d,%d)",
		e.SheetName,
		e.A.TopRow, e.A.LeftCol, e.A.BottomRow, e.A.RightCol,
		e.B.TopRow, e.B.LeftCol, e.B.BottomRow, e.B.RightCol)
}

// EmptySheetError sheet 无行或无列，跳过该 sheet 并记录警告
type EmptySheetError struct {
	SourceFile string
	SheetName  string
}

func (e *EmptySheetError) Error() string {
	return fmt.Sprintf("sheet %q in %q is empty", e.SheetName, e.SourceFile)
}

// DuplicateTableError 同一 (file, sheet) 重复注册，注册冲突直接上抛
type DuplicateTableError struct {
	SourceFile string
	SheetName  string
}

func (e *DuplicateTableError) Error() string {
	return fmt.Sprintf("table for %q / %q is already registered", e.SourceFile, e.SheetName)
}

// ClassificationError 外部分类策略失败（超时或响应畸形），由回退策略本地恢复
type ClassificationError struct {
	Strategy string
	Reason   string
	Timeout  bool
}

func (e *ClassificationError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("classification strategy %q timed out: %s", e.Strategy, e.Reason)
	}
	return fmt.Sprintf("classification strategy %q failed: %s", e.Strategy, e.Reason)
}
