// Package prefs provides typed, SharedPreferences-style access to the
// namespaced key-value preferences held in a store.Store.
//
// Reads return the caller's default when a key is absent or holds a value of
// the wrong type. Store failures are returned to the caller. Writes are staged
// on an Editor and committed together in a single transaction.
package prefs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/alfredjeanlab/quotewidget/internal/model"
	"github.com/alfredjeanlab/quotewidget/internal/store"
)

// Prefs reads and writes typed preference values.
type Prefs struct {
	store store.Store
}

// New returns a Prefs backed by s.
func New(s store.Store) *Prefs {
	return &Prefs{store: s}
}

// Contains reports whether key is present.
func (p *Prefs) Contains(ctx context.Context, key string) (bool, error) {
	ok, err := p.store.HasPref(ctx, key)
	if err != nil {
		return false, fmt.Errorf("check %s: %w", key, err)
	}
	return ok, nil
}

// GetString returns the string stored at key, or def.
func (p *Prefs) GetString(ctx context.Context, key, def string) (string, error) {
	return get(ctx, p.store, key, def)
}

// GetInt returns the integer stored at key, or def.
func (p *Prefs) GetInt(ctx context.Context, key string, def int) (int, error) {
	return get(ctx, p.store, key, def)
}

// GetFloat returns the float stored at key, or def.
func (p *Prefs) GetFloat(ctx context.Context, key string, def float64) (float64, error) {
	return get(ctx, p.store, key, def)
}

// GetBool returns the boolean stored at key, or def.
func (p *Prefs) GetBool(ctx context.Context, key string, def bool) (bool, error) {
	return get(ctx, p.store, key, def)
}

func get[T any](ctx context.Context, s store.Store, key string, def T) (T, error) {
	pref, err := s.GetPref(ctx, key)
	if errors.Is(err, sql.ErrNoRows) {
		return def, nil
	}
	if err != nil {
		return def, fmt.Errorf("read %s: %w", key, err)
	}
	var v T
	if err := json.Unmarshal(pref.Value, &v); err != nil {
		slog.Warn("preference has unexpected type, using default", "key", key, "value", string(pref.Value), "err", err)
		return def, nil
	}
	return v, nil
}

// Edit starts a batch of staged changes.
func (p *Prefs) Edit() *Editor {
	return &Editor{store: p.store}
}

type op struct {
	key    string
	value  json.RawMessage
	remove bool
}

// Editor stages puts and removes. Nothing is written until Commit.
// Later operations on the same key win.
type Editor struct {
	store store.Store
	ops   []op
	err   error
}

// PutString stages a string value.
func (e *Editor) PutString(key, v string) *Editor { return e.put(key, v) }

// PutInt stages an integer value.
func (e *Editor) PutInt(key string, v int) *Editor { return e.put(key, v) }

// PutFloat stages a float value.
func (e *Editor) PutFloat(key string, v float64) *Editor { return e.put(key, v) }

// PutBool stages a boolean value.
func (e *Editor) PutBool(key string, v bool) *Editor { return e.put(key, v) }

// Remove stages the removal of key. Removing an absent key is not an error.
func (e *Editor) Remove(key string) *Editor {
	e.ops = append(e.ops, op{key: key, remove: true})
	return e
}

func (e *Editor) put(key string, v any) *Editor {
	raw, err := json.Marshal(v)
	if err != nil && e.err == nil {
		e.err = fmt.Errorf("encode %s: %w", key, err)
	}
	e.ops = append(e.ops, op{key: key, value: raw})
	return e
}

// Len returns the number of staged operations.
func (e *Editor) Len() int {
	return len(e.ops)
}

// Commit applies every staged operation atomically. Either all of them are
// persisted or none are.
func (e *Editor) Commit(ctx context.Context) error {
	if e.err != nil {
		return e.err
	}
	if len(e.ops) == 0 {
		return nil
	}
	return e.store.RunInTransaction(ctx, func(tx store.Store) error {
		for _, o := range e.ops {
			if o.remove {
				if err := tx.DeletePref(ctx, o.key); err != nil {
					return fmt.Errorf("remove %s: %w", o.key, err)
				}
				continue
			}
			_, widgetID, ok := model.SplitPrefKey(o.key)
			if !ok {
				return fmt.Errorf("put %s: key is not namespaced by widget id", o.key)
			}
			if err := tx.SetPref(ctx, &model.Pref{Key: o.key, WidgetID: widgetID, Value: o.value}); err != nil {
				return fmt.Errorf("put %s: %w", o.key, err)
			}
		}
		return nil
	})
}
