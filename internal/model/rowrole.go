package model

// RowRole 行角色：标签行、表头行、数据行
type RowRole string

const (
	RowLabel  RowRole = "label"
	RowHeader RowRole = "header"
	RowData   RowRole = "data"
)
