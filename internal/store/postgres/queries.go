package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alfredjeanlab/quotewidget/internal/model"
)

// prefColumns is the column list used for SELECT statements on the prefs table.
const prefColumns = `key, widget_id, value, created_at, updated_at`

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func queryGetPref(ctx context.Context, db executor, key string) (*model.Pref, error) {
	row := db.QueryRowContext(ctx, `SELECT `+prefColumns+` FROM prefs WHERE key = $1`, key)
	return scanPref(row)
}

func queryHasPref(ctx context.Context, db executor, key string) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM prefs WHERE key = $1)`, key).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func querySetPref(ctx context.Context, db executor, p *model.Pref) error {
	return db.QueryRowContext(ctx, `
		INSERT INTO prefs (key, widget_id, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = $3, updated_at = NOW()
		RETURNING created_at, updated_at`,
		p.Key, p.WidgetID, []byte(p.Value),
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func queryDeletePref(ctx context.Context, db executor, key string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM prefs WHERE key = $1`, key)
	return err
}

func queryListPrefs(ctx context.Context, db executor, widgetID int) ([]*model.Pref, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+prefColumns+`
		FROM prefs WHERE widget_id = $1
		ORDER BY key`, widgetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPrefs(rows)
}

func queryListAllPrefs(ctx context.Context, db executor) ([]*model.Pref, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+prefColumns+`
		FROM prefs ORDER BY widget_id, key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPrefs(rows)
}

func queryDeleteWidgetPrefs(ctx context.Context, db executor, widgetID int) (int, error) {
	if widgetID == model.DefaultWidgetID {
		return 0, fmt.Errorf("refusing to purge the default bucket")
	}
	res, err := db.ExecContext(ctx, `DELETE FROM prefs WHERE widget_id = $1`, widgetID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}

func queryPlaceWidget(ctx context.Context, db executor, w *model.Widget) error {
	// The no-op update makes RETURNING yield the original placed_at on conflict.
	return db.QueryRowContext(ctx, `
		INSERT INTO widgets (id)
		VALUES ($1)
		ON CONFLICT (id) DO UPDATE SET id = EXCLUDED.id
		RETURNING placed_at`,
		w.ID,
	).Scan(&w.PlacedAt)
}

func queryRemoveWidget(ctx context.Context, db executor, id int) error {
	res, err := db.ExecContext(ctx, `DELETE FROM widgets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func queryListWidgets(ctx context.Context, db executor) ([]*model.Widget, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, placed_at FROM widgets ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWidgets(rows)
}
