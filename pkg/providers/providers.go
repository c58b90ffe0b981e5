package providers

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/samvad-hq/geekfeed/internal/domain"
	"gopkg.in/yaml.v3"
)

// Package providers holds the source catalog (YAML/JSON) and the connectors
// that fetch each source.

//go:embed catalog.yaml
var defaultCatalog []byte

// Provider is one catalog entry.
type Provider struct {
	ID            string         `json:"id" yaml:"id"`
	Name          string         `json:"name" yaml:"name"`
	Type          string         `json:"type" yaml:"type"`
	URL           string         `json:"url" yaml:"url"`
	SourceURL     string         `json:"source_url" yaml:"source_url"`
	Enabled       *bool          `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	TimeoutMs     int            `json:"timeout_ms" yaml:"timeout_ms"`
	Language      string         `json:"language" yaml:"language"`
	DefaultTags   []string       `json:"default_tags" yaml:"default_tags"`
	DefaultBadges []string       `json:"default_badges" yaml:"default_badges"`
	CredentialEnv []string       `json:"credential_env" yaml:"credential_env"`
	Config        map[string]any `json:"config" yaml:"config"`
}

// IsEnabled reports whether the entry takes part in unfiltered aggregation.
func (p Provider) IsEnabled() bool {
	return p.Enabled == nil || *p.Enabled
}

// Timeout returns the per-source timeout, or fallback when unset.
func (p Provider) Timeout(fallback time.Duration) time.Duration {
	if p.TimeoutMs <= 0 {
		return fallback
	}
	return time.Duration(p.TimeoutMs) * time.Millisecond
}

// Ref is the source reference attached to normalized items.
func (p Provider) Ref() domain.SourceRef {
	return domain.SourceRef{ID: p.ID, Name: p.Name, Type: p.Type, URL: p.URL}
}

// Registry is an immutable, ordered catalog. Catalog order is significant: it
// decides which source wins when two sources publish the same url.
type Registry struct {
	providers []Provider
	index     map[string]int
}

type registryFile struct {
	Providers []Provider `json:"providers" yaml:"providers"`
}

var knownTypes = map[string]struct{}{
	domain.SourceTypeRSS:     {},
	domain.SourceTypeNewsAPI: {},
	domain.SourceTypeGraphQL: {},
	domain.SourceTypeLocal:   {},
	domain.SourceTypeSitemap: {},
}

// DefaultRegistry returns the built-in catalog.
func DefaultRegistry() (*Registry, error) {
	return ParseRegistry(defaultCatalog, ".yaml")
}

// LoadRegistry loads the catalog from path, or the built-in catalog when path is empty.
func LoadRegistry(path string) (*Registry, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultRegistry()
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open providers file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read providers file: %w", err)
	}

	return ParseRegistry(raw, filepath.Ext(path))
}

// ParseRegistry decodes, sanitizes and validates a catalog document.
func ParseRegistry(data []byte, ext string) (*Registry, error) {
	file, err := parseRegistryFile(data, ext)
	if err != nil {
		return nil, err
	}
	if len(file.Providers) == 0 {
		return nil, errors.New("providers file contains no providers entries")
	}

	reg := &Registry{
		providers: make([]Provider, 0, len(file.Providers)),
		index:     make(map[string]int, len(file.Providers)),
	}
	for i := range file.Providers {
		p := sanitizeProvider(file.Providers[i])
		if err := validateProvider(p); err != nil {
			return nil, fmt.Errorf("provider[%d]: %w", i, err)
		}
		key := strings.ToLower(p.ID)
		if _, exists := reg.index[key]; exists {
			return nil, fmt.Errorf("duplicate provider id %q", p.ID)
		}
		reg.index[key] = len(reg.providers)
		reg.providers = append(reg.providers, p)
	}
	return reg, nil
}

// All returns every entry in catalog order.
func (r *Registry) All() []Provider {
	if r == nil {
		return nil
	}
	out := make([]Provider, len(r.providers))
	copy(out, r.providers)
	return out
}

// Enabled returns the enabled entries in catalog order.
func (r *Registry) Enabled() []Provider {
	if r == nil {
		return nil
	}
	out := make([]Provider, 0, len(r.providers))
	for _, p := range r.providers {
		if p.IsEnabled() {
			out = append(out, p)
		}
	}
	return out
}

// ByID looks an entry up case-insensitively.
func (r *Registry) ByID(id string) (Provider, bool) {
	if r == nil {
		return Provider{}, false
	}
	i, ok := r.index[strings.ToLower(strings.TrimSpace(id))]
	if !ok {
		return Provider{}, false
	}
	return r.providers[i], true
}

// Select resolves the active set for a request. With no ids it is every
// enabled entry; otherwise it is every entry whose id matches one of ids,
// disabled or not. Catalog order is kept either way.
func (r *Registry) Select(ids []string) []Provider {
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if key := strings.ToLower(strings.TrimSpace(id)); key != "" {
			wanted[key] = struct{}{}
		}
	}
	if len(wanted) == 0 {
		return r.Enabled()
	}
	if r == nil {
		return nil
	}

	out := make([]Provider, 0, len(wanted))
	for _, p := range r.providers {
		if _, ok := wanted[strings.ToLower(p.ID)]; ok {
			out = append(out, p)
		}
	}
	return out
}

// IDs lists every entry id in catalog order.
func (r *Registry) IDs() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.providers))
	for _, p := range r.providers {
		out = append(out, p.ID)
	}
	return out
}

func parseRegistryFile(data []byte, ext string) (registryFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   unmarshalFn
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	var errs []error
	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		file, err := unmarshalRegistry(d.name, data, d.fn)
		if err == nil {
			return file, nil
		}
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return registryFile{}, errors.Join(errs...)
	}
	return registryFile{}, errors.New("providers file format not recognized (expected YAML or JSON)")
}

type unmarshalFn func([]byte, any) error

func unmarshalRegistry(name string, data []byte, fn unmarshalFn) (registryFile, error) {
	var file registryFile
	if err := fn(data, &file); err != nil {
		return registryFile{}, fmt.Errorf("decode %s providers: %w", name, err)
	}
	return file, nil
}

func sanitizeProvider(p Provider) Provider {
	p.ID = strings.TrimSpace(p.ID)
	p.Name = strings.TrimSpace(p.Name)
	p.Type = strings.ToLower(strings.TrimSpace(p.Type))
	p.URL = strings.TrimSpace(p.URL)
	p.SourceURL = strings.TrimSpace(p.SourceURL)
	p.Language = strings.TrimSpace(p.Language)
	p.DefaultTags = trimAll(p.DefaultTags)
	p.DefaultBadges = trimAll(p.DefaultBadges)
	p.CredentialEnv = trimAll(p.CredentialEnv)

	if p.Config == nil {
		p.Config = map[string]any{}
	}
	if p.URL == "" {
		p.URL = p.SourceURL
	}
	return p
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func validateProvider(p Provider) error {
	if p.ID == "" {
		return errors.New("id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("name is required for provider %q", p.ID)
	}
	if p.Type == "" {
		return fmt.Errorf("type is required for provider %q", p.ID)
	}
	if _, ok := knownTypes[p.Type]; !ok {
		return fmt.Errorf("unknown type %q for provider %q", p.Type, p.ID)
	}
	if p.SourceURL == "" && p.Type != domain.SourceTypeLocal {
		return fmt.Errorf("source_url is required for provider %q", p.ID)
	}
	if p.TimeoutMs < 0 {
		return fmt.Errorf("timeout_ms must not be negative for provider %q", p.ID)
	}
	return nil
}
