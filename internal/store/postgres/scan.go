package postgres

import (
	"database/sql"
	"encoding/json"

	"github.com/alfredjeanlab/quotewidget/internal/model"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// scanPref scans a single row into a model.Pref.
// The row must contain columns in the order defined by prefColumns.
func scanPref(row scannable) (*model.Pref, error) {
	var p model.Pref
	var value []byte
	err := row.Scan(&p.Key, &p.WidgetID, &value, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Value = json.RawMessage(value)
	return &p, nil
}

// scanPrefs scans multiple rows into a slice of model.Pref pointers.
func scanPrefs(rows *sql.Rows) ([]*model.Pref, error) {
	var prefs []*model.Pref
	for rows.Next() {
		p, err := scanPref(rows)
		if err != nil {
			return nil, err
		}
		prefs = append(prefs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return prefs, nil
}

// scanWidgets scans multiple rows into a slice of model.Widget pointers.
func scanWidgets(rows *sql.Rows) ([]*model.Widget, error) {
	var widgets []*model.Widget
	for rows.Next() {
		var w model.Widget
		if err := rows.Scan(&w.ID, &w.PlacedAt); err != nil {
			return nil, err
		}
		widgets = append(widgets, &w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return widgets, nil
}
