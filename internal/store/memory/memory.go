// Package memory implements store.Store in process memory. It backs
// `qw preview` and the unit tests of packages built on top of the store.
package memory

import (
	"context"
	"database/sql"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/alfredjeanlab/quotewidget/internal/model"
	"github.com/alfredjeanlab/quotewidget/internal/store"
)

// MemoryStore is a mutex-guarded in-memory store. Transactions work on a
// private copy that replaces the live maps on commit.
type MemoryStore struct {
	mu      *sync.Mutex
	prefs   map[string]*model.Pref
	widgets map[int]*model.Widget
	inTx    bool

	// FailWrites makes every mutating call fail; used to exercise error paths.
	FailWrites bool
}

// Compile-time check that MemoryStore implements store.Store.
var _ store.Store = (*MemoryStore)(nil)

// New returns an empty store.
func New() *MemoryStore {
	return &MemoryStore{
		mu:      &sync.Mutex{},
		prefs:   make(map[string]*model.Pref),
		widgets: make(map[int]*model.Widget),
	}
}

func (s *MemoryStore) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *MemoryStore) checkWrite(op string) error {
	if s.FailWrites {
		return fmt.Errorf("%s: store is read-only", op)
	}
	return nil
}

func (s *MemoryStore) GetPref(_ context.Context, key string) (*model.Pref, error) {
	defer s.lock()()
	p, ok := s.prefs[key]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (s *MemoryStore) HasPref(_ context.Context, key string) (bool, error) {
	defer s.lock()()
	_, ok := s.prefs[key]
	return ok, nil
}

func (s *MemoryStore) SetPref(_ context.Context, pref *model.Pref) error {
	if err := s.checkWrite("set " + pref.Key); err != nil {
		return err
	}
	defer s.lock()()
	now := time.Now().UTC()
	cp := *pref
	if old, ok := s.prefs[pref.Key]; ok {
		cp.CreatedAt = old.CreatedAt
	} else {
		cp.CreatedAt = now
	}
	cp.UpdatedAt = now
	s.prefs[pref.Key] = &cp
	pref.CreatedAt, pref.UpdatedAt = cp.CreatedAt, cp.UpdatedAt
	return nil
}

func (s *MemoryStore) DeletePref(_ context.Context, key string) error {
	if err := s.checkWrite("delete " + key); err != nil {
		return err
	}
	defer s.lock()()
	delete(s.prefs, key)
	return nil
}

func (s *MemoryStore) ListPrefs(_ context.Context, widgetID int) ([]*model.Pref, error) {
	defer s.lock()()
	var out []*model.Pref
	for _, p := range s.prefs {
		if p.WidgetID == widgetID {
			cp := *p
			out = append(out, &cp)
		}
	}
	slices.SortFunc(out, func(a, b *model.Pref) int { return strings.Compare(a.Key, b.Key) })
	return out, nil
}

func (s *MemoryStore) ListAllPrefs(_ context.Context) ([]*model.Pref, error) {
	defer s.lock()()
	out := make([]*model.Pref, 0, len(s.prefs))
	for _, p := range s.prefs {
		cp := *p
		out = append(out, &cp)
	}
	slices.SortFunc(out, func(a, b *model.Pref) int {
		if a.WidgetID != b.WidgetID {
			return a.WidgetID - b.WidgetID
		}
		return strings.Compare(a.Key, b.Key)
	})
	return out, nil
}

func (s *MemoryStore) DeleteWidgetPrefs(_ context.Context, widgetID int) (int, error) {
	if widgetID == model.DefaultWidgetID {
		return 0, fmt.Errorf("refusing to purge the default bucket")
	}
	if err := s.checkWrite(fmt.Sprintf("purge widget %d", widgetID)); err != nil {
		return 0, err
	}
	defer s.lock()()
	n := 0
	for k, p := range s.prefs {
		if p.WidgetID == widgetID {
			delete(s.prefs, k)
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) PlaceWidget(_ context.Context, widget *model.Widget) error {
	if err := s.checkWrite(fmt.Sprintf("place widget %d", widget.ID)); err != nil {
		return err
	}
	defer s.lock()()
	if w, ok := s.widgets[widget.ID]; ok {
		widget.PlacedAt = w.PlacedAt
		return nil
	}
	widget.PlacedAt = time.Now().UTC()
	cp := *widget
	s.widgets[widget.ID] = &cp
	return nil
}

func (s *MemoryStore) RemoveWidget(_ context.Context, id int) error {
	if err := s.checkWrite(fmt.Sprintf("remove widget %d", id)); err != nil {
		return err
	}
	defer s.lock()()
	if _, ok := s.widgets[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.widgets, id)
	return nil
}

func (s *MemoryStore) ListWidgets(_ context.Context) ([]*model.Widget, error) {
	defer s.lock()()
	out := make([]*model.Widget, 0, len(s.widgets))
	for _, id := range slices.Sorted(maps.Keys(s.widgets)) {
		cp := *s.widgets[id]
		out = append(out, &cp)
	}
	return out, nil
}

// RunInTransaction runs fn against a copy of the current state and publishes
// the copy only when fn returns nil.
func (s *MemoryStore) RunInTransaction(_ context.Context, fn func(tx store.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &MemoryStore{
		mu:         s.mu,
		prefs:      maps.Clone(s.prefs),
		widgets:    maps.Clone(s.widgets),
		inTx:       true,
		FailWrites: s.FailWrites,
	}
	if err := fn(tx); err != nil {
		return err
	}
	s.prefs = tx.prefs
	s.widgets = tx.widgets
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
