package store

import (
	"fmt"

	"github.com/liup3424/excelAgent/internal/model"
)

// SaveLineage 持久化一个查询作用域的血缘记录（只追加）
func (s *Store) SaveLineage(queryID string, entries []model.LineageEntry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO lineage_entries (query_id, seq, source_file, sheet_name, column_name, entity_label, rule)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare lineage insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.Exec(queryID, e.Seq, e.SourceFile, e.SheetName, e.ColumnName, e.EntityLabel, string(e.Rule)); err != nil {
			return fmt.Errorf("failed to insert lineage entry %d: %w", e.Seq, err)
		}
	}

	return tx.Commit()
}

// LoadLineage 按插入顺序加载某查询的血缘记录
func (s *Store) LoadLineage(queryID string) ([]model.LineageEntry, error) {
	rows, err := s.db.Query(`
		SELECT seq, source_file, sheet_name, column_name, entity_label, rule
		FROM lineage_entries WHERE query_id = ? ORDER BY seq
	`, queryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.LineageEntry, 0)
	for rows.Next() {
		var e model.LineageEntry
		var rule string
		if err := rows.Scan(&e.Seq, &e.SourceFile, &e.SheetName, &e.ColumnName, &e.EntityLabel, &rule); err != nil {
			return nil, err
		}
		e.Rule = model.MatchRule(rule)
		out = append(out, e)
	}
	return out, rows.Err()
}
