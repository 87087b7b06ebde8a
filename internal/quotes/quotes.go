// Package quotes loads the quote corpus and picks a quote per render.
package quotes

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"strings"
	"sync"

	"github.com/alfredjeanlab/quotewidget/internal/model"
)

//go:embed quotes.json
var embeddedCorpus []byte

// ErrEmptyCorpus is returned when a corpus decodes to zero quotes.
var ErrEmptyCorpus = errors.New("quote corpus is empty")

// Loader returns the full corpus.
type Loader interface {
	Load(ctx context.Context) ([]model.Quote, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context) ([]model.Quote, error)

// Load calls f(ctx).
func (f LoaderFunc) Load(ctx context.Context) ([]model.Quote, error) {
	return f(ctx)
}

// Parse decodes a JSON array of {"text", "author"} objects. Every entry must
// carry both fields.
func Parse(data []byte) ([]model.Quote, error) {
	var qs []model.Quote
	if err := json.Unmarshal(data, &qs); err != nil {
		return nil, fmt.Errorf("decode corpus: %w", err)
	}
	if len(qs) == 0 {
		return nil, ErrEmptyCorpus
	}
	for i, q := range qs {
		if strings.TrimSpace(q.Text) == "" || strings.TrimSpace(q.Author) == "" {
			return nil, fmt.Errorf("decode corpus: entry %d is missing text or author", i)
		}
	}
	return qs, nil
}

// Embedded returns a Loader for the corpus compiled into the binary.
func Embedded() Loader {
	return LoaderFunc(func(context.Context) ([]model.Quote, error) {
		return Parse(embeddedCorpus)
	})
}

// FileLoader reads the corpus from a JSON file on disk.
type FileLoader struct {
	Path string
}

// Load reads and parses the file.
func (l FileLoader) Load(context.Context) ([]model.Quote, error) {
	data, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	return Parse(data)
}

// Picker selects a uniformly random quote. The corpus is loaded on first use
// and kept once a load succeeds; a failed load is retried on the next pick.
// Any failure yields model.FallbackQuote.
type Picker struct {
	loader Loader
	intn   func(n int) int

	mu     sync.Mutex
	corpus []model.Quote
}

// NewPicker returns a Picker drawing from loader.
func NewPicker(loader Loader) *Picker {
	return &Picker{loader: loader, intn: rand.IntN}
}

// WithRand returns a copy of the picker that draws indexes from intn.
func (p *Picker) WithRand(intn func(n int) int) *Picker {
	return &Picker{loader: p.loader, intn: intn}
}

// Pick returns a random quote and whether it came from the corpus.
func (p *Picker) Pick(ctx context.Context) (model.Quote, bool) {
	corpus, err := p.load(ctx)
	if err != nil {
		return model.FallbackQuote, false
	}
	return corpus[p.intn(len(corpus))], true
}

// Len returns the number of quotes in the cached corpus, loading it if needed.
func (p *Picker) Len(ctx context.Context) (int, error) {
	corpus, err := p.load(ctx)
	if err != nil {
		return 0, err
	}
	return len(corpus), nil
}

func (p *Picker) load(ctx context.Context) ([]model.Quote, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.corpus != nil {
		return p.corpus, nil
	}
	if p.loader == nil {
		return nil, errors.New("no corpus loader configured")
	}
	qs, err := p.loader.Load(ctx)
	if err == nil && len(qs) == 0 {
		err = ErrEmptyCorpus
	}
	if err != nil {
		slog.Warn("quote corpus unavailable, using fallback quote", "err", err)
		return nil, err
	}
	p.corpus = qs
	return qs, nil
}
