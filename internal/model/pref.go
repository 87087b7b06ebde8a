package model

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Pref is one namespaced preference record. Keys use the format
// "{field}_{widgetID}" (e.g. "font_size_5", "text_color_type_0").
type Pref struct {
	Key       string          `json:"key"`
	WidgetID  int             `json:"widget_id"`
	Value     json.RawMessage `json:"value"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// PrefKey builds the namespaced key for field in widgetID's bucket.
func PrefKey(field string, widgetID int) string {
	return field + "_" + strconv.Itoa(widgetID)
}

// SplitPrefKey splits a namespaced key into its field and widget id.
// ok is false when the key has no numeric suffix.
func SplitPrefKey(key string) (field string, widgetID int, ok bool) {
	i := strings.LastIndexByte(key, '_')
	if i <= 0 || i == len(key)-1 {
		return "", 0, false
	}
	id, err := strconv.Atoi(key[i+1:])
	if err != nil || id < 0 {
		return "", 0, false
	}
	return key[:i], id, true
}
