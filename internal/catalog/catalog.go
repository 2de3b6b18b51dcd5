// Package catalog holds the configured taxonomy of document types. The
// catalog is loaded once at startup and immutable afterwards; configured
// order is preserved because both prompt construction and report ordering
// depend on it.
package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/auditscan/auditscan/internal/core/domain"
)

// DocumentType is one configured category. Examples are ordered and used
// as few-shot exemplars in classification prompts.
type DocumentType struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	Required    bool     `yaml:"required" json:"required"`
	Examples    []string `yaml:"examples" json:"examples,omitempty"`
}

type Catalog struct {
	types   []DocumentType
	byID    map[string]int
	version string
}

type configFile struct {
	DocumentTypes []DocumentType `yaml:"document_types"`
}

// LoadFile reads the catalog from a YAML file. Any defect here is fatal to
// the run: a scan without a trustworthy catalog is meaningless.
func LoadFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.WrapError(domain.ErrConfig, "read catalog file", err)
	}
	return Parse(raw)
}

// Parse builds a catalog from raw YAML and validates it.
func Parse(raw []byte) (*Catalog, error) {
	var cfg configFile
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, domain.WrapError(domain.ErrConfig, "decode catalog yaml", err)
	}
	return New(cfg.DocumentTypes)
}

// New validates the type list and builds an immutable catalog.
func New(types []DocumentType) (*Catalog, error) {
	if len(types) == 0 {
		return nil, domain.WrapError(domain.ErrConfig, "build catalog", errors.New("no document types configured"))
	}

	byID := make(map[string]int, len(types))
	for i, t := range types {
		id := strings.TrimSpace(t.ID)
		if id == "" {
			return nil, domain.WrapError(domain.ErrConfig, "build catalog", fmt.Errorf("document type at index %d has empty id", i))
		}
		if id == domain.TypeUnknown {
			return nil, domain.WrapError(domain.ErrConfig, "build catalog", fmt.Errorf("type id %q is reserved", domain.TypeUnknown))
		}
		if strings.TrimSpace(t.Name) == "" {
			return nil, domain.WrapError(domain.ErrConfig, "build catalog", fmt.Errorf("document type %q has empty name", id))
		}
		if _, dup := byID[id]; dup {
			return nil, domain.WrapError(domain.ErrConfig, "build catalog", fmt.Errorf("duplicate type id %q", id))
		}
		byID[id] = i
	}

	return &Catalog{
		types:   types,
		byID:    byID,
		version: fingerprint(types),
	}, nil
}

// Get returns the type for id, or domain.ErrNotFound.
func (c *Catalog) Get(id string) (DocumentType, error) {
	i, ok := c.byID[id]
	if !ok {
		return DocumentType{}, domain.WrapError(domain.ErrNotFound, "catalog get", fmt.Errorf("type id %q", id))
	}
	return c.types[i], nil
}

// Contains reports whether id names a configured type.
func (c *Catalog) Contains(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// All returns every type in configured order. The slice is shared; callers
// must not mutate it.
func (c *Catalog) All() []DocumentType {
	return c.types
}

// Required returns required types in configured order.
func (c *Catalog) Required() []DocumentType {
	var req []DocumentType
	for _, t := range c.types {
		if t.Required {
			req = append(req, t)
		}
	}
	return req
}

func (c *Catalog) Len() int { return len(c.types) }

// Version is a stable fingerprint of the configured taxonomy, used to key
// cached classification results so a catalog edit invalidates them.
func (c *Catalog) Version() string { return c.version }

func fingerprint(types []DocumentType) string {
	h := sha256.New()
	for _, t := range types {
		fmt.Fprintf(h, "%s\x1f%s\x1f%s\x1f%t\x1f", t.ID, t.Name, t.Description, t.Required)
		for _, ex := range t.Examples {
			fmt.Fprintf(h, "%s\x1f", ex)
		}
		fmt.Fprint(h, "\x1e")
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
