package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/alfredjeanlab/quotewidget/internal/model"
	"github.com/alfredjeanlab/quotewidget/internal/store"
)

// newMockDB creates a sqlmock database with automatic cleanup and expectation checking.
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unfulfilled expectations: %v", err)
		}
		db.Close()
	})
	return db, mock
}

var prefRowColumns = []string{"key", "widget_id", "value", "created_at", "updated_at"}

func TestQuerySetPref(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	pref := &model.Pref{Key: "font_size_5", WidgetID: 5, Value: json.RawMessage(`18`)}
	mock.ExpectQuery("INSERT INTO prefs").
		WithArgs("font_size_5", 5, []byte(`18`)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	if err := querySetPref(context.Background(), db, pref); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pref.CreatedAt.IsZero() || pref.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps to be set")
	}
}

func TestQueryGetPref(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	mock.ExpectQuery("SELECT .+ FROM prefs WHERE key = \\$1").WithArgs("font_family_0").
		WillReturnRows(sqlmock.NewRows(prefRowColumns).
			AddRow("font_family_0", 0, []byte(`"serif"`), now, now))

	pref, err := queryGetPref(context.Background(), db, "font_family_0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pref.Key != "font_family_0" || pref.WidgetID != 0 {
		t.Fatalf("got key=%q widget=%d", pref.Key, pref.WidgetID)
	}
	if string(pref.Value) != `"serif"` {
		t.Fatalf("got value=%s", pref.Value)
	}
}

func TestQueryGetPref_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT .+ FROM prefs WHERE key = \\$1").WithArgs("font_family_9").
		WillReturnError(sql.ErrNoRows)

	if _, err := queryGetPref(context.Background(), db, "font_family_9"); err != sql.ErrNoRows {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestQueryHasPref(t *testing.T) {
	for _, tc := range []struct {
		name   string
		exists bool
	}{
		{"present", true},
		{"absent", false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			mock.ExpectQuery("SELECT EXISTS").WithArgs("refresh_interval_3").
				WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(tc.exists))

			got, err := queryHasPref(context.Background(), db, "refresh_interval_3")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.exists {
				t.Fatalf("got %v, want %v", got, tc.exists)
			}
		})
	}
}

func TestQueryDeletePref_Absent(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("DELETE FROM prefs WHERE key = \\$1").WithArgs("text_color_4").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := queryDeletePref(context.Background(), db, "text_color_4"); err != nil {
		t.Fatalf("removing an absent key should succeed, got %v", err)
	}
}

func TestQueryListPrefs(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	mock.ExpectQuery("SELECT .+ FROM prefs WHERE widget_id = \\$1").WithArgs(7).
		WillReturnRows(sqlmock.NewRows(prefRowColumns).
			AddRow("font_family_7", 7, []byte(`"serif"`), now, now).
			AddRow("font_size_7", 7, []byte(`20`), now, now))

	prefs, err := queryListPrefs(context.Background(), db, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prefs) != 2 {
		t.Fatalf("expected 2 prefs, got %d", len(prefs))
	}
	if prefs[1].Key != "font_size_7" {
		t.Fatalf("unexpected key order: %q", prefs[1].Key)
	}
}

func TestQueryListAllPrefs(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	mock.ExpectQuery("SELECT .+ FROM prefs ORDER BY widget_id, key").
		WillReturnRows(sqlmock.NewRows(prefRowColumns).
			AddRow("font_family_0", 0, []byte(`"serif"`), now, now).
			AddRow("font_family_2", 2, []byte(`"monospace"`), now, now))

	prefs, err := queryListAllPrefs(context.Background(), db)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prefs) != 2 || prefs[0].WidgetID != 0 || prefs[1].WidgetID != 2 {
		t.Fatalf("unexpected prefs: %+v", prefs)
	}
}

func TestQueryDeleteWidgetPrefs(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("DELETE FROM prefs WHERE widget_id = \\$1").WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 11))

	n, err := queryDeleteWidgetPrefs(context.Background(), db, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 11 {
		t.Fatalf("expected 11 removed, got %d", n)
	}
}

func TestQueryDeleteWidgetPrefs_DefaultBucketRefused(t *testing.T) {
	db, _ := newMockDB(t)
	if _, err := queryDeleteWidgetPrefs(context.Background(), db, model.DefaultWidgetID); err == nil {
		t.Fatal("expected error when purging the default bucket")
	}
}

func TestQueryPlaceWidget(t *testing.T) {
	db, mock := newMockDB(t)
	placed := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery("INSERT INTO widgets").WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"placed_at"}).AddRow(placed))

	w := &model.Widget{ID: 5}
	if err := queryPlaceWidget(context.Background(), db, w); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !w.PlacedAt.Equal(placed) {
		t.Fatalf("got placed_at=%v", w.PlacedAt)
	}
}

func TestQueryRemoveWidget_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("DELETE FROM widgets WHERE id = \\$1").WithArgs(42).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := queryRemoveWidget(context.Background(), db, 42); err != sql.ErrNoRows {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestQueryListWidgets(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	mock.ExpectQuery("SELECT id, placed_at FROM widgets ORDER BY id").
		WillReturnRows(sqlmock.NewRows([]string{"id", "placed_at"}).
			AddRow(3, now).
			AddRow(8, now))

	widgets, err := queryListWidgets(context.Background(), db)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(widgets) != 2 || widgets[0].ID != 3 || widgets[1].ID != 8 {
		t.Fatalf("unexpected widgets: %+v", widgets)
	}
}

func TestRunInTransaction_Commit(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO prefs").
		WithArgs("text_color_type_5", 5, []byte(`"device"`)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectExec("DELETE FROM prefs WHERE key = \\$1").WithArgs("text_color_5").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	s := NewWithDB(db)
	err := s.RunInTransaction(context.Background(), func(tx store.Store) error {
		if err := tx.SetPref(context.Background(), &model.Pref{
			Key: "text_color_type_5", WidgetID: 5, Value: json.RawMessage(`"device"`),
		}); err != nil {
			return err
		}
		return tx.DeletePref(context.Background(), "text_color_5")
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunInTransaction_Rollback(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	s := NewWithDB(db)
	err := s.RunInTransaction(context.Background(), func(tx store.Store) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}
