package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/alfredjeanlab/quotewidget/internal/store"
)

// FormatVersion is written to and required in every export header.
const FormatVersion = "1"

// header is the first JSONL record written by ExportJSONL. It carries no
// export time, so an unchanged store exports to identical bytes.
type header struct {
	Version     string `json:"version"`
	Type        string `json:"type"`
	WidgetCount int    `json:"widget_count"`
	PrefCount   int    `json:"pref_count"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// ExportJSONL writes every placed widget and every preference from the store
// as JSONL to w. Widgets are sorted by id and preferences by key, so two
// exports of the same state are byte-identical.
func ExportJSONL(ctx context.Context, s store.Store, w io.Writer) error {
	widgets, err := s.ListWidgets(ctx)
	if err != nil {
		return fmt.Errorf("list widgets: %w", err)
	}
	sort.Slice(widgets, func(i, j int) bool {
		return widgets[i].ID < widgets[j].ID
	})

	prefs, err := s.ListAllPrefs(ctx)
	if err != nil {
		return fmt.Errorf("list prefs: %w", err)
	}
	sort.Slice(prefs, func(i, j int) bool {
		return prefs[i].Key < prefs[j].Key
	})

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(header{
		Version:     FormatVersion,
		Type:        "header",
		WidgetCount: len(widgets),
		PrefCount:   len(prefs),
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	for _, wd := range widgets {
		if err := enc.Encode(record{Type: "widget", Data: wd}); err != nil {
			return fmt.Errorf("encode widget %d: %w", wd.ID, err)
		}
	}

	for _, p := range prefs {
		if err := enc.Encode(record{Type: "pref", Data: p}); err != nil {
			return fmt.Errorf("encode pref %s: %w", p.Key, err)
		}
	}

	return nil
}
