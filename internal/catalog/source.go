package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
)

//go:embed data/catalog.json
var embedded []byte

type document struct {
	Lakes   []Lake    `json:"lakes"`
	Species []Species `json:"species"`
}

// Parse decodes a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	if len(doc.Lakes) == 0 {
		return nil, ErrEmptyCatalog
	}
	return New(doc.Lakes, doc.Species), nil
}

// EmbeddedSource serves the dataset compiled into the binary.
type EmbeddedSource struct{}

func (EmbeddedSource) Load(_ context.Context) (*Catalog, error) {
	return Parse(embedded)
}

// FallbackSource loads from primary and falls back to secondary when the
// primary fails or comes back empty.
type FallbackSource struct {
	primary   Source
	secondary Source
	log       *slog.Logger
}

func NewFallbackSource(primary, secondary Source, log *slog.Logger) *FallbackSource {
	return &FallbackSource{
		primary:   primary,
		secondary: secondary,
		log:       log.With("component", "catalog.fallback"),
	}
}

func (f *FallbackSource) Load(ctx context.Context) (*Catalog, error) {
	c, err := f.primary.Load(ctx)
	if err == nil && c != nil && c.Len() > 0 {
		return c, nil
	}
	if err != nil {
		f.log.Warn("primary catalog failed, using fallback", "err", err)
	} else {
		f.log.Warn("primary catalog is empty, using fallback")
	}

	c, err = f.secondary.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading fallback catalog: %w", err)
	}
	return c, nil
}
