// Package sqlite implements the store.Store interface on an embedded SQLite
// database through gorm. It is intended for single-device deployments where
// running PostgreSQL is not practical.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/alfredjeanlab/quotewidget/internal/model"
	"github.com/alfredjeanlab/quotewidget/internal/store"
)

// prefRecord is the gorm model for the prefs table.
type prefRecord struct {
	Key       string `gorm:"primaryKey"`
	WidgetID  int    `gorm:"not null;index"`
	Value     string `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (prefRecord) TableName() string { return "prefs" }

// widgetRecord is the gorm model for the widgets table.
type widgetRecord struct {
	ID       int `gorm:"primaryKey;autoIncrement:false"`
	PlacedAt time.Time
}

func (widgetRecord) TableName() string { return "widgets" }

// SQLiteStore implements store.Store backed by a SQLite file.
type SQLiteStore struct {
	db   *gorm.DB
	inTx bool
}

// Compile-time check that SQLiteStore implements store.Store.
var _ store.Store = (*SQLiteStore)(nil)

// New opens (creating if needed) the SQLite database at path and migrates it.
func New(path string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000", path)

	gormLogger := logger.New(
		slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// A single connection avoids "database is locked" under concurrent writers.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := db.AutoMigrate(&prefRecord{}, &widgetRecord{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database. It is a no-op inside a transaction.
func (s *SQLiteStore) Close() error {
	if s.inTx {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *SQLiteStore) GetPref(ctx context.Context, key string) (*model.Pref, error) {
	var rec prefRecord
	if err := s.db.WithContext(ctx).First(&rec, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}
	return rec.toModel(), nil
}

func (s *SQLiteStore) HasPref(ctx context.Context, key string) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&prefRecord{}).Where("key = ?", key).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLiteStore) SetPref(ctx context.Context, pref *model.Pref) error {
	db := s.db.WithContext(ctx)
	var rec prefRecord
	err := db.First(&rec, "key = ?", pref.Key).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		rec = prefRecord{Key: pref.Key, WidgetID: pref.WidgetID, Value: string(pref.Value)}
		if err := db.Create(&rec).Error; err != nil {
			return fmt.Errorf("insert pref %s: %w", pref.Key, err)
		}
	case err != nil:
		return err
	default:
		rec.Value = string(pref.Value)
		if err := db.Save(&rec).Error; err != nil {
			return fmt.Errorf("update pref %s: %w", pref.Key, err)
		}
	}
	pref.CreatedAt = rec.CreatedAt
	pref.UpdatedAt = rec.UpdatedAt
	return nil
}

func (s *SQLiteStore) DeletePref(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("key = ?", key).Delete(&prefRecord{}).Error
}

func (s *SQLiteStore) ListPrefs(ctx context.Context, widgetID int) ([]*model.Pref, error) {
	var recs []prefRecord
	if err := s.db.WithContext(ctx).Where("widget_id = ?", widgetID).Order("key").Find(&recs).Error; err != nil {
		return nil, err
	}
	return prefsToModel(recs), nil
}

func (s *SQLiteStore) ListAllPrefs(ctx context.Context) ([]*model.Pref, error) {
	var recs []prefRecord
	if err := s.db.WithContext(ctx).Order("widget_id").Order("key").Find(&recs).Error; err != nil {
		return nil, err
	}
	return prefsToModel(recs), nil
}

func (s *SQLiteStore) DeleteWidgetPrefs(ctx context.Context, widgetID int) (int, error) {
	if widgetID == model.DefaultWidgetID {
		return 0, fmt.Errorf("refusing to purge the default bucket")
	}
	res := s.db.WithContext(ctx).Where("widget_id = ?", widgetID).Delete(&prefRecord{})
	if res.Error != nil {
		return 0, res.Error
	}
	return int(res.RowsAffected), nil
}

func (s *SQLiteStore) PlaceWidget(ctx context.Context, widget *model.Widget) error {
	db := s.db.WithContext(ctx)
	var rec widgetRecord
	err := db.First(&rec, "id = ?", widget.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		rec = widgetRecord{ID: widget.ID, PlacedAt: time.Now().UTC()}
		err = db.Create(&rec).Error
	}
	if err != nil {
		return fmt.Errorf("place widget %d: %w", widget.ID, err)
	}
	widget.PlacedAt = rec.PlacedAt
	return nil
}

func (s *SQLiteStore) RemoveWidget(ctx context.Context, id int) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&widgetRecord{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *SQLiteStore) ListWidgets(ctx context.Context) ([]*model.Widget, error) {
	var recs []widgetRecord
	if err := s.db.WithContext(ctx).Order("id").Find(&recs).Error; err != nil {
		return nil, err
	}
	widgets := make([]*model.Widget, len(recs))
	for i, r := range recs {
		widgets[i] = &model.Widget{ID: r.ID, PlacedAt: r.PlacedAt}
	}
	return widgets, nil
}

// RunInTransaction runs fn inside a gorm transaction. Calls made on a store
// that is already transactional reuse the open transaction.
func (s *SQLiteStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&SQLiteStore{db: tx, inTx: true})
	})
}

func (r prefRecord) toModel() *model.Pref {
	return &model.Pref{
		Key:       r.Key,
		WidgetID:  r.WidgetID,
		Value:     json.RawMessage(r.Value),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func prefsToModel(recs []prefRecord) []*model.Pref {
	prefs := make([]*model.Pref, len(recs))
	for i, r := range recs {
		prefs[i] = r.toModel()
	}
	return prefs
}
