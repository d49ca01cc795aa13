package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/liup3424/excelAgent/internal/model"
)

// 时间值的存储格式；RFC3339Nano 保证往返无损
const temporalStoreFormat = time.RFC3339Nano

// SaveTable 持久化一张规整表：列目录（名称/类型/序号）与全部值，
// 缺失标记存为 NULL，反序列化后与原表逐值相等。
// 同键已存在时返回 DuplicateTableError。
func (s *Store) SaveTable(table *model.NormalizedTable) error {
	var exists int
	err := s.db.QueryRow(`
		SELECT COUNT(1) FROM normalized_tables WHERE source_file = ? AND sheet_name = ?
	`, table.SourceFile, table.SheetName).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check table existence: %w", err)
	}
	if exists > 0 {
		return &model.DuplicateTableError{SourceFile: table.SourceFile, SheetName: table.SheetName}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		INSERT INTO normalized_tables (source_file, sheet_name, row_count)
		VALUES (?, ?, ?)
	`, table.SourceFile, table.SheetName, table.RowCount())
	if err != nil {
		return fmt.Errorf("failed to insert table: %w", err)
	}
	tableID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get table id: %w", err)
	}

	colStmt, err := tx.Prepare(`
		INSERT INTO table_columns (table_id, ordinal, name, col_type) VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare column insert: %w", err)
	}
	defer colStmt.Close()
	for _, col := range table.Columns {
		if _, err := colStmt.Exec(tableID, col.Ordinal, col.Name, string(col.Type)); err != nil {
			return fmt.Errorf("failed to insert column %q: %w", col.Name, err)
		}
	}

	cellStmt, err := tx.Prepare(`
		INSERT INTO table_cells (table_id, row_idx, col_idx, value) VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare cell insert: %w", err)
	}
	defer cellStmt.Close()
	for r, row := range table.Values {
		for c, v := range row {
			var stored any
			if !v.Missing {
				stored = encodeValue(v, table.Columns[c].Type)
			}
			if _, err := cellStmt.Exec(tableID, r, c, stored); err != nil {
				return fmt.Errorf("failed to insert cell (%d,%d): %w", r, c, err)
			}
		}
	}

	return tx.Commit()
}

// LoadTable 按键加载规整表；不存在返回 sql.ErrNoRows
func (s *Store) LoadTable(sourceFile, sheetName string) (*model.NormalizedTable, error) {
	var tableID int64
	var rowCount int
	err := s.db.QueryRow(`
		SELECT id, row_count FROM normalized_tables WHERE source_file = ? AND sheet_name = ?
	`, sourceFile, sheetName).Scan(&tableID, &rowCount)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT ordinal, name, col_type FROM table_columns WHERE table_id = ? ORDER BY ordinal
	`, tableID)
	if err != nil {
		return nil, fmt.Errorf("failed to load columns: %w", err)
	}
	defer rows.Close()

	columns := make([]model.Column, 0)
	for rows.Next() {
		var col model.Column
		var colType string
		if err := rows.Scan(&col.Ordinal, &col.Name, &colType); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}
		col.Type = model.ColumnType(colType)
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	values := make([][]model.Value, rowCount)
	for i := range values {
		values[i] = make([]model.Value, len(columns))
		for j := range values[i] {
			values[i][j] = model.MissingValue()
		}
	}

	cellRows, err := s.db.Query(`
		SELECT row_idx, col_idx, value FROM table_cells WHERE table_id = ? ORDER BY row_idx, col_idx
	`, tableID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cells: %w", err)
	}
	defer cellRows.Close()

	for cellRows.Next() {
		var r, c int
		var stored sql.NullString
		if err := cellRows.Scan(&r, &c, &stored); err != nil {
			return nil, fmt.Errorf("failed to scan cell: %w", err)
		}
		if r < 0 || r >= rowCount || c < 0 || c >= len(columns) {
			continue
		}
		if !stored.Valid {
			values[r][c] = model.MissingValue()
			continue
		}
		v, err := decodeValue(stored.String, columns[c].Type)
		if err != nil {
			return nil, fmt.Errorf("failed to decode cell (%d,%d): %w", r, c, err)
		}
		values[r][c] = v
	}
	if err := cellRows.Err(); err != nil {
		return nil, err
	}

	return &model.NormalizedTable{
		SourceFile: sourceFile,
		SheetName:  sheetName,
		Columns:    columns,
		Values:     values,
	}, nil
}

// ListTables 按创建顺序返回已持久化的 (file, sheet) 键
func (s *Store) ListTables() ([][2]string, error) {
	rows, err := s.db.Query(`SELECT source_file, sheet_name FROM normalized_tables ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([][2]string, 0)
	for rows.Next() {
		var file, sheet string
		if err := rows.Scan(&file, &sheet); err != nil {
			return nil, err
		}
		out = append(out, [2]string{file, sheet})
	}
	return out, rows.Err()
}

func encodeValue(v model.Value, t model.ColumnType) string {
	switch t {
	case model.ColumnNumeric:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case model.ColumnTemporal:
		return v.Time.Format(temporalStoreFormat)
	default:
		return v.Text
	}
}

func decodeValue(stored string, t model.ColumnType) (model.Value, error) {
	switch t {
	case model.ColumnNumeric:
		f, err := strconv.ParseFloat(stored, 64)
		if err != nil {
			return model.Value{}, err
		}
		return model.NumberValue(f), nil
	case model.ColumnTemporal:
		ts, err := time.Parse(temporalStoreFormat, stored)
		if err != nil {
			return model.Value{}, err
		}
		return model.TimeValue(ts), nil
	default:
		return model.TextValue(stored), nil
	}
}
