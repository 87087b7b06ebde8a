package quotes

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/alfredjeanlab/quotewidget/internal/model"
)

func TestEmbeddedCorpus(t *testing.T) {
	qs, err := Embedded().Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(qs) < 10 {
		t.Fatalf("expected a real corpus, got %d quotes", len(qs))
	}
}

func TestParse_Errors(t *testing.T) {
	for _, tc := range []struct {
		name string
		data string
	}{
		{"not json", `{`},
		{"empty", `[]`},
		{"missing author", `[{"text":"a"}]`},
		{"wrong shape", `{"text":"a","author":"b"}`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse([]byte(tc.data)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestPicker_FallbackOnFailure(t *testing.T) {
	p := NewPicker(LoaderFunc(func(context.Context) ([]model.Quote, error) {
		return nil, errors.New("disk on fire")
	}))
	q, ok := p.Pick(context.Background())
	if ok {
		t.Fatal("expected fallback")
	}
	if q != model.FallbackQuote {
		t.Fatalf("got %+v, want fallback", q)
	}
	if q.Text != "The only way to do great work is to love what you do." || q.Author != "Steve Jobs" {
		t.Fatalf("fallback quote changed: %+v", q)
	}
}

func TestPicker_EmptyCorpusFallsBack(t *testing.T) {
	p := NewPicker(LoaderFunc(func(context.Context) ([]model.Quote, error) { return nil, nil }))
	if q, ok := p.Pick(context.Background()); ok || q != model.FallbackQuote {
		t.Fatalf("got %+v, %v", q, ok)
	}
}

func TestPicker_CachesOnlySuccess(t *testing.T) {
	calls := 0
	p := NewPicker(LoaderFunc(func(context.Context) ([]model.Quote, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("transient")
		}
		return []model.Quote{{Text: "a", Author: "b"}}, nil
	}))
	ctx := context.Background()

	if _, ok := p.Pick(ctx); ok {
		t.Fatal("first pick should fall back")
	}
	for range 3 {
		if q, ok := p.Pick(ctx); !ok || q.Text != "a" {
			t.Fatalf("got %+v, %v", q, ok)
		}
	}
	if calls != 2 {
		t.Fatalf("loader called %d times, want 2", calls)
	}
}

func TestPicker_UsesIndex(t *testing.T) {
	corpus := []model.Quote{{Text: "a", Author: "x"}, {Text: "b", Author: "y"}, {Text: "c", Author: "z"}}
	var gotN int
	p := NewPicker(LoaderFunc(func(context.Context) ([]model.Quote, error) { return corpus, nil })).
		WithRand(func(n int) int { gotN = n; return 2 })

	q, ok := p.Pick(context.Background())
	if !ok || q.Text != "c" {
		t.Fatalf("got %+v, %v", q, ok)
	}
	if gotN != 3 {
		t.Fatalf("index drawn over %d, want 3", gotN)
	}
}

func TestFileLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quotes.json")
	if err := os.WriteFile(path, []byte(`[{"text":"t","author":"a"}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	qs, err := FileLoader{Path: path}.Load(context.Background())
	if err != nil || len(qs) != 1 {
		t.Fatalf("Load = %v, %v", qs, err)
	}
	if _, err := (FileLoader{Path: filepath.Join(t.TempDir(), "missing.json")}).Load(context.Background()); err == nil {
		t.Fatal("expected error for missing file")
	}
}

type fakeGetter struct {
	body string
	err  error
	in   *s3.GetObjectInput
}

func (f *fakeGetter) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.in = in
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewBufferString(f.body))}, nil
}

func TestS3Loader(t *testing.T) {
	g := &fakeGetter{body: `[{"text":"t","author":"a"}]`}
	l := &S3Loader{client: g, bucket: "corpora", key: "quotes.json"}

	qs, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(qs) != 1 || qs[0].Author != "a" {
		t.Fatalf("got %+v", qs)
	}
	if *g.in.Bucket != "corpora" || *g.in.Key != "quotes.json" {
		t.Fatalf("requested %s/%s", *g.in.Bucket, *g.in.Key)
	}

	g.err = errors.New("access denied")
	if _, err := l.Load(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
