package model

// LineageEntry 血缘记录：某次解析触及了哪个来源列、由哪条规则产生
// 只追加，创建后不再修改
type LineageEntry struct {
	Seq         int       `json:"seq"`
	SourceFile  string    `json:"source_file"`
	SheetName   string    `json:"sheet_name"`
	ColumnName  string    `json:"column_name"`
	EntityLabel string    `json:"entity_label"`
	Rule        MatchRule `json:"rule"`
}
