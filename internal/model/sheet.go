package model

import "time"

// Sheet 处理状态
const (
	SheetStatusNormalized = "normalized"
	SheetStatusSkipped    = "skipped"
	SheetStatusError      = "error"
)

// SheetResult 单个 sheet 的预处理结果
type SheetResult struct {
	SheetName   string        `json:"sheet_name"`
	Status      string        `json:"status"` // normalized/skipped/error
	RowCount    int           `json:"row_count"`
	ColumnCount int           `json:"column_count"`
	Errors      []string      `json:"errors,omitempty"`
	Warnings    []string      `json:"warnings,omitempty"`
	Duration    time.Duration `json:"duration"`
}

// RunReport 单次文件预处理的汇总报告
// 每个被跳过或回退处理的 sheet 都必须带原因出现在报告里
type RunReport struct {
	Filename         string        `json:"filename"`
	TotalSheets      int           `json:"total_sheets"`
	NormalizedSheets int           `json:"normalized_sheets"`
	SkippedSheets    int           `json:"skipped_sheets"`
	ErrorSheets      int           `json:"error_sheets"`
	Sheets           []SheetResult `json:"sheets"`
	Duration         time.Duration `json:"duration"`
}
