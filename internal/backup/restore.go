package backup

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/alfredjeanlab/quotewidget/internal/model"
	"github.com/alfredjeanlab/quotewidget/internal/store"
)

// RestoreStats counts what ImportJSONL wrote.
type RestoreStats struct {
	Widgets int `json:"widgets"`
	Prefs   int `json:"prefs"`
}

// rawRecord is record with its payload left undecoded.
type rawRecord struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ImportJSONL reads an export produced by ExportJSONL and writes its widgets
// and preferences to the store in one transaction. Existing keys are
// overwritten; keys absent from the export are left alone.
func ImportJSONL(ctx context.Context, s store.Store, r io.Reader) (RestoreStats, error) {
	var stats RestoreStats

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return stats, fmt.Errorf("read header: %w", err)
		}
		return stats, errors.New("empty backup")
	}
	var h header
	if err := json.Unmarshal(sc.Bytes(), &h); err != nil {
		return stats, fmt.Errorf("decode header: %w", err)
	}
	if h.Type != "header" || h.Version != FormatVersion {
		return stats, fmt.Errorf("unsupported backup header type=%q version=%q", h.Type, h.Version)
	}

	var widgets []*model.Widget
	var prefs []*model.Pref
	line := 1
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var rec rawRecord
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			return stats, fmt.Errorf("line %d: %w", line, err)
		}
		switch rec.Type {
		case "widget":
			var w model.Widget
			if err := json.Unmarshal(rec.Data, &w); err != nil {
				return stats, fmt.Errorf("line %d: decode widget: %w", line, err)
			}
			widgets = append(widgets, &w)
		case "pref":
			var p model.Pref
			if err := json.Unmarshal(rec.Data, &p); err != nil {
				return stats, fmt.Errorf("line %d: decode pref: %w", line, err)
			}
			_, id, ok := model.SplitPrefKey(p.Key)
			if !ok {
				return stats, fmt.Errorf("line %d: malformed pref key %q", line, p.Key)
			}
			p.WidgetID = id
			prefs = append(prefs, &p)
		default:
			return stats, fmt.Errorf("line %d: unknown record type %q", line, rec.Type)
		}
	}
	if err := sc.Err(); err != nil {
		return stats, fmt.Errorf("read backup: %w", err)
	}

	err := s.RunInTransaction(ctx, func(tx store.Store) error {
		for _, w := range widgets {
			if err := tx.PlaceWidget(ctx, w); err != nil {
				return fmt.Errorf("place widget %d: %w", w.ID, err)
			}
		}
		for _, p := range prefs {
			if err := tx.SetPref(ctx, p); err != nil {
				return fmt.Errorf("set pref %s: %w", p.Key, err)
			}
		}
		return nil
	})
	if err != nil {
		return stats, err
	}
	stats.Widgets = len(widgets)
	stats.Prefs = len(prefs)
	return stats, nil
}
