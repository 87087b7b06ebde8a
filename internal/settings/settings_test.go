package settings

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/alfredjeanlab/quotewidget/internal/argb"
	"github.com/alfredjeanlab/quotewidget/internal/model"
	"github.com/alfredjeanlab/quotewidget/internal/store/memory"
	"github.com/alfredjeanlab/quotewidget/internal/theme"
)

func ptr[T any](v T) *T { return &v }

type nightPlatform struct{}

func (nightPlatform) Attribute(string) (argb.Color, error) { return 0, theme.ErrUnresolved }
func (nightPlatform) NightMode() bool                      { return true }

func newTestResolver(t *testing.T) (*Resolver, *memory.MemoryStore) {
	t.Helper()
	s := memory.New()
	return New(s, nil), s
}

func mustPatch(t *testing.T, r *Resolver, id int, p model.SettingsPatch) {
	t.Helper()
	if err := r.ApplyPatch(context.Background(), id, &p); err != nil {
		t.Fatalf("ApplyPatch(%d): %v", id, err)
	}
}

func TestGet_EmptyStoreReturnsDefaults(t *testing.T) {
	r, _ := newTestResolver(t)
	got, err := r.Get(context.Background(), 3)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if want := model.DefaultSettings(); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v\nwant %+v", got, want)
	}
}

func TestGet_UnconfiguredWidgetMatchesDefaultBucket(t *testing.T) {
	r, _ := newTestResolver(t)
	ctx := context.Background()
	mustPatch(t, r, 0, model.SettingsPatch{
		FontFamily:        ptr("serif"),
		FontSize:          ptr(22),
		FontWeight:        ptr(model.WeightBold),
		TextColor:         ptr("#FF336699"),
		BackgroundColor:   ptr("device"),
		BackgroundType:    ptr(model.BackgroundTranslucent),
		BackgroundOpacity: ptr(0.4),
		BorderRadius:      ptr(30),
		RefreshInterval:   ptr(15),
		AutoTheme:         ptr(true),
	})

	def, err := r.Get(ctx, 0)
	if err != nil {
		t.Fatalf("Get(0): %v", err)
	}
	for _, id := range []int{1, 5, 99} {
		got, err := r.Get(ctx, id)
		if err != nil {
			t.Fatalf("Get(%d): %v", id, err)
		}
		if !reflect.DeepEqual(got, def) {
			t.Errorf("widget %d: got %+v, want %+v", id, got, def)
		}
	}
}

func TestGet_WholeBucketSelection(t *testing.T) {
	r, _ := newTestResolver(t)
	ctx := context.Background()
	mustPatch(t, r, 0, model.SettingsPatch{FontSize: ptr(30), BorderRadius: ptr(40)})
	mustPatch(t, r, 4, model.SettingsPatch{FontFamily: ptr("monospace")})

	got, err := r.Get(ctx, 4)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.FontFamily != "monospace" {
		t.Errorf("FontFamily = %q", got.FontFamily)
	}
	// The widget bucket was selected, so absent fields use hardcoded defaults.
	if got.FontSize != model.DefaultFontSize {
		t.Errorf("FontSize = %d, want %d", got.FontSize, model.DefaultFontSize)
	}
	if got.BorderRadius != model.DefaultBorderRadius {
		t.Errorf("BorderRadius = %d, want %d", got.BorderRadius, model.DefaultBorderRadius)
	}
}

func TestGet_WidgetWithoutProbeKeyUsesDefaults(t *testing.T) {
	r, _ := newTestResolver(t)
	ctx := context.Background()
	mustPatch(t, r, 0, model.SettingsPatch{FontSize: ptr(30)})
	mustPatch(t, r, 4, model.SettingsPatch{FontSize: ptr(10)})

	got, err := r.Get(ctx, 4)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.FontSize != 30 {
		t.Fatalf("FontSize = %d, want bucket 0's 30", got.FontSize)
	}
}

func TestGet_FontWeightFallsBackToDefaultBucket(t *testing.T) {
	r, _ := newTestResolver(t)
	ctx := context.Background()
	mustPatch(t, r, 0, model.SettingsPatch{FontWeight: ptr(model.FontWeight("800"))})
	mustPatch(t, r, 2, model.SettingsPatch{FontFamily: ptr("serif")})

	got, err := r.Get(ctx, 2)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.FontWeight != "800" {
		t.Fatalf("FontWeight = %q, want 800", got.FontWeight)
	}
}

func TestRefreshInterval_ScheduleProbe(t *testing.T) {
	r, _ := newTestResolver(t)
	ctx := context.Background()
	mustPatch(t, r, 0, model.SettingsPatch{RefreshInterval: ptr(30)})
	mustPatch(t, r, 8, model.SettingsPatch{FontFamily: ptr("serif")})
	mustPatch(t, r, 9, model.SettingsPatch{RefreshInterval: ptr(5)})

	for _, tc := range []struct {
		id   int
		want time.Duration
	}{
		{8, 30 * time.Minute},
		{9, 5 * time.Minute},
		{12, 30 * time.Minute},
	} {
		got, err := r.RefreshInterval(ctx, tc.id)
		if err != nil {
			t.Fatalf("RefreshInterval(%d): %v", tc.id, err)
		}
		if got != tc.want {
			t.Errorf("RefreshInterval(%d) = %v, want %v", tc.id, got, tc.want)
		}
	}
}

func TestApplyPatch_DeviceColorRemovesCustomValue(t *testing.T) {
	r, s := newTestResolver(t)
	ctx := context.Background()
	mustPatch(t, r, 6, model.SettingsPatch{TextColor: ptr("#FF112233")})
	if ok, _ := s.HasPref(ctx, "text_color_6"); !ok {
		t.Fatal("expected custom value to be stored")
	}

	mustPatch(t, r, 6, model.SettingsPatch{TextColor: ptr("device")})
	if ok, _ := s.HasPref(ctx, "text_color_6"); ok {
		t.Fatal("custom value should be removed in device mode")
	}
	typ, err := s.GetPref(ctx, "text_color_type_6")
	if err != nil {
		t.Fatalf("GetPref: %v", err)
	}
	if string(typ.Value) != `"device"` {
		t.Fatalf("text_color_type_6 = %s", typ.Value)
	}
}

func TestApplyPatch_InvalidColorStoresDefault(t *testing.T) {
	r, _ := newTestResolver(t)
	ctx := context.Background()
	mustPatch(t, r, 0, model.SettingsPatch{TextColor: ptr("not-a-colour"), BackgroundColor: ptr("#XYZ")})

	got, err := r.Get(ctx, 0)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.TextColor != model.CustomColor(argb.Black) {
		t.Errorf("TextColor = %v, want black", got.TextColor)
	}
	if got.BackgroundColor != model.CustomColor(argb.White) {
		t.Errorf("BackgroundColor = %v, want white", got.BackgroundColor)
	}
}

func TestApplyPatch_Validation(t *testing.T) {
	r, s := newTestResolver(t)
	err := r.ApplyPatch(context.Background(), 1, &model.SettingsPatch{
		FontFamily:        ptr("serif"),
		BackgroundOpacity: ptr(1.5),
	})
	var ve *model.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ok, _ := s.HasPref(context.Background(), "font_family_1"); ok {
		t.Fatal("nothing should be written when validation fails")
	}
}

func TestApplyPatch_StoreFailureSurfaces(t *testing.T) {
	r, s := newTestResolver(t)
	s.FailWrites = true
	if err := r.ApplyPatch(context.Background(), 1, &model.SettingsPatch{FontSize: ptr(12)}); err == nil {
		t.Fatal("expected store failure to surface")
	}
}

func TestResolve_DeviceColors(t *testing.T) {
	s := memory.New()
	r := New(s, nightPlatform{})
	ctx := context.Background()
	mustPatch(t, r, 0, model.SettingsPatch{TextColor: ptr("device"), BackgroundColor: ptr("device")})

	rs, err := r.Resolve(ctx, 3)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if rs.TextColor != argb.White {
		t.Errorf("TextColor = %s, want white", rs.TextColor)
	}
	if rs.BackgroundColor != argb.NearBlack {
		t.Errorf("BackgroundColor = %s, want #FF1F1F1F", rs.BackgroundColor)
	}
	if !rs.UsedDefaultBucket() {
		t.Error("expected default bucket to be used")
	}
}

func TestSeed(t *testing.T) {
	r, s := newTestResolver(t)
	ctx := context.Background()
	mustPatch(t, r, 0, model.SettingsPatch{FontSize: ptr(18), RefreshInterval: ptr(20)})

	if err := r.Seed(ctx, 11); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	got, err := r.Get(ctx, 11)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.FontSize != 18 || got.RefreshIntervalMinutes != 20 {
		t.Errorf("seeded values = %+v", got)
	}
	if !got.TextColor.IsDevice() || !got.BackgroundColor.IsDevice() {
		t.Errorf("colour modes should default to device, got %v / %v", got.TextColor, got.BackgroundColor)
	}
	if ok, _ := s.HasPref(ctx, "font_weight_11"); ok {
		t.Error("font_weight should not be seeded")
	}

	// A second seed keeps values written since.
	mustPatch(t, r, 11, model.SettingsPatch{FontSize: ptr(40)})
	if err := r.Seed(ctx, 11); err != nil {
		t.Fatalf("Seed again: %v", err)
	}
	if got, _ := r.Get(ctx, 11); got.FontSize != 40 {
		t.Errorf("FontSize = %d after reseed, want 40", got.FontSize)
	}

	if err := r.Seed(ctx, 0); !errors.Is(err, ErrDefaultBucket) {
		t.Errorf("Seed(0) = %v, want ErrDefaultBucket", err)
	}
}

func TestPurge(t *testing.T) {
	r, s := newTestResolver(t)
	ctx := context.Background()
	mustPatch(t, r, 0, model.SettingsPatch{FontFamily: ptr("serif"), FontSize: ptr(16)})
	if err := r.Seed(ctx, 7); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	before, _ := s.ListPrefs(ctx, 0)

	n, err := r.Purge(ctx, 7)
	if err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if n == 0 {
		t.Fatal("expected keys to be removed")
	}
	if left, _ := s.ListPrefs(ctx, 7); len(left) != 0 {
		t.Fatalf("widget 7 still has %d keys", len(left))
	}
	after, _ := s.ListPrefs(ctx, 0)
	if len(after) != len(before) {
		t.Fatalf("default bucket changed: %d keys before, %d after", len(before), len(after))
	}

	if _, err := r.Purge(ctx, 0); !errors.Is(err, ErrDefaultBucket) {
		t.Fatalf("Purge(0) = %v, want ErrDefaultBucket", err)
	}
}
