package store

import (
	"context"

	"github.com/alfredjeanlab/quotewidget/internal/model"
)

// Store defines the persistence interface for widget preferences and the
// registry of placed widgets.
type Store interface {
	// Preferences
	GetPref(ctx context.Context, key string) (*model.Pref, error) // sql.ErrNoRows when absent
	HasPref(ctx context.Context, key string) (bool, error)
	SetPref(ctx context.Context, pref *model.Pref) error
	DeletePref(ctx context.Context, key string) error // no error when absent
	ListPrefs(ctx context.Context, widgetID int) ([]*model.Pref, error)
	ListAllPrefs(ctx context.Context) ([]*model.Pref, error)
	DeleteWidgetPrefs(ctx context.Context, widgetID int) (int, error) // returns number of removed keys

	// Placed widgets
	PlaceWidget(ctx context.Context, widget *model.Widget) error
	RemoveWidget(ctx context.Context, id int) error
	ListWidgets(ctx context.Context) ([]*model.Widget, error)

	// Transaction support
	RunInTransaction(ctx context.Context, fn func(tx Store) error) error

	// Lifecycle
	Close() error
}
