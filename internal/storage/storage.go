package storage

import (
	"fmt"
	"strings"

	"github.com/samvad-hq/geekfeed/internal/domain"
)

// Package storage provides the local curated-item store behind the local sources.

// Store keeps curated items grouped by collection, in insertion order.
type Store interface {
	Close() error
	Items(collection string, limit int) ([]domain.RawItem, error)
	PutItems(collection string, items []domain.RawItem) error
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	// MaxItemsPerCollection drops the oldest items once a collection grows past it.
	MaxItemsPerCollection int
}

const defaultMaxItemsPerCollection = 500

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.MaxItemsPerCollection <= 0 {
		opts.MaxItemsPerCollection = defaultMaxItemsPerCollection
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                                { return nil }
func (noopStore) Items(string, int) ([]domain.RawItem, error) { return []domain.RawItem{}, nil }
func (noopStore) PutItems(string, []domain.RawItem) error     { return fmt.Errorf("storage is disabled") }
