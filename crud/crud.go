// Package crud builds primary-key addressed INSERT, UPDATE, and DELETE
// statements from plain field mappings. It performs no SQL assembly of its
// own; every helper returns a configured builder, ready for ToSQL against
// any dialect.
package crud

import (
	"github.com/dropbox/godropbox/errors"

	"github.com/jardisPsr/dbquery"
)

// InsertRow builds an INSERT of one row from a field mapping. Fields render
// in sorted order. An empty table name or mapping is an invalid argument.
func InsertRow(table string, data map[string]any) (*dbquery.InsertBuilder, error) {
	if table == "" {
		return nil, errors.New("crud: table is required")
	}
	if len(data) == 0 {
		return nil, errors.New("crud: data mapping is empty")
	}
	return dbquery.Insert().Into(table).SetMultiple(data), nil
}

// UpdateByPK builds an UPDATE of the row addressed by the primary key. The
// mapping must not contain the primary-key column itself: an update that
// both addresses and rewrites the key is ambiguous and is rejected.
func UpdateByPK(table string, data map[string]any, pkName string, pkValue any) (*dbquery.UpdateBuilder, error) {
	if table == "" {
		return nil, errors.New("crud: table is required")
	}
	if len(data) == 0 {
		return nil, errors.New("crud: data mapping is empty")
	}
	if pkName == "" {
		return nil, errors.New("crud: primary key name is required")
	}
	if pkValue == nil {
		return nil, errors.New("crud: primary key value is required")
	}
	if _, ok := data[pkName]; ok {
		return nil, errors.Newf("crud: data mapping contains primary key column %q", pkName)
	}
	return dbquery.Update(table).SetMultiple(data).Where(pkName).Equals(pkValue), nil
}

// DeleteByPK builds a DELETE of the row addressed by the primary key.
func DeleteByPK(table, pkName string, pkValue any) (*dbquery.DeleteBuilder, error) {
	if table == "" {
		return nil, errors.New("crud: table is required")
	}
	if pkName == "" {
		return nil, errors.New("crud: primary key name is required")
	}
	if pkValue == nil {
		return nil, errors.New("crud: primary key value is required")
	}
	return dbquery.Delete().From(table).Where(pkName).Equals(pkValue), nil
}
