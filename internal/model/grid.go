package model

// CellKind 单元格原始值类型
type CellKind string

const (
	CellEmpty  CellKind = "empty"
	CellText   CellKind = "text"
	CellNumber CellKind = "number"
	CellDate   CellKind = "date"
	CellBool   CellKind = "bool"
)

// Cell 网格中的单个单元格
type Cell struct {
	Row       int      `json:"row"`
	Col       int      `json:"col"`
	Value     string   `json:"value"`
	Kind      CellKind `json:"kind"`
	FromMerge bool     `json:"from_merge"` // 值由合并区域锚点填充
}

// MergeRegion 合并单元格区域，锚点为左上角，坐标从 0 开始
type MergeRegion struct {
	TopRow    int    `json:"top_row"`
	LeftCol   int    `json:"left_col"`
	BottomRow int    `json:"bottom_row"`
	RightCol  int    `json:"right_col"`
	Anchor    string `json:"anchor"`
}

// Contains 判断坐标是否落在区域内
func (m MergeRegion) Contains(row, col int) bool {
	return row >= m.TopRow && row <= m.BottomRow && col >= m.LeftCol && col <= m.RightCol
}

// Overlaps 判断两个区域是否重叠
func (m MergeRegion) Overlaps(other MergeRegion) bool {
	if m.RightCol < other.LeftCol || other.RightCol < m.LeftCol {
		return false
	}
	if m.BottomRow < other.TopRow || other.BottomRow < m.TopRow {
		return false
	}
	return true
}

// Grid 单个 sheet 的完整单元格网格及其合并区域元数据
type Grid struct {
	SourceFile string
	SheetName  string
	Rows       int
	Cols       int
	Cells      [][]Cell
	Merges     []MergeRegion
}

// NewGrid 创建指定尺寸的空网格
func NewGrid(sourceFile, sheetName string, rows, cols int) *Grid {
	cells := make([][]Cell, rows)
	for r := range cells {
		cells[r] = make([]Cell, cols)
		for c := range cells[r] {
			cells[r][c] = Cell{Row: r, Col: c, Kind: CellEmpty}
		}
	}
	return &Grid{
		SourceFile: sourceFile,
		SheetName:  sheetName,
		Rows:       rows,
		Cols:       cols,
		Cells:      cells,
	}
}

// At 读取单元格，越界返回空单元格
func (g *Grid) At(row, col int) Cell {
	if row < 0 || row >= g.Rows || col < 0 || col >= g.Cols {
		return Cell{Row: row, Col: col, Kind: CellEmpty}
	}
	return g.Cells[row][col]
}

// Set 写入单元格值
func (g *Grid) Set(row, col int, value string, kind CellKind) {
	if row < 0 || row >= g.Rows || col < 0 || col >= g.Cols {
		return
	}
	g.Cells[row][col].Value = value
	g.Cells[row][col].Kind = kind
}

// RowValues 读取整行字符串值
func (g *Grid) RowValues(row int) []string {
	out := make([]string, g.Cols)
	for c := 0; c < g.Cols; c++ {
		out[c] = g.At(row, c).Value
	}
	return out
}

// Clone 深拷贝网格，合并区域元数据一并复制
func (g *Grid) Clone() *Grid {
	out := NewGrid(g.SourceFile, g.SheetName, g.Rows, g.Cols)
	for r := 0; r < g.Rows; r++ {
		copy(out.Cells[r], g.Cells[r])
	}
	out.Merges = make([]MergeRegion, len(g.Merges))
	copy(out.Merges, g.Merges)
	return out
}
