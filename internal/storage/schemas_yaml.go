package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"intervaltimer/internal/core/model"

	"gopkg.in/yaml.v3"
)

const (
	schemasFileName       = "schemas.yaml"
	schemaDocumentVersion = 1
)

// ErrSchemaNotFound is returned when no stored schema matches a lookup.
var ErrSchemaNotFound = errors.New("schema not found")

type schemaDocument struct {
	Version int            `yaml:"version"`
	Schemas []model.Schema `yaml:"schemas"`
}

// SchemaStore persists workout schemas in a single YAML document.
type SchemaStore struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewSchemaStore returns a store backed by schemas.yaml inside dir.
func NewSchemaStore(dir string) *SchemaStore {
	return &SchemaStore{
		path: filepath.Join(dir, schemasFileName),
		now:  time.Now,
	}
}

// Path returns the backing file.
func (store *SchemaStore) Path() string {
	return store.path
}

// List returns every stored schema in insertion order.
func (store *SchemaStore) List() ([]model.Schema, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	document, err := store.readLocked()
	if err != nil {
		return nil, err
	}
	return document.Schemas, nil
}

// Get returns the schema with the given id.
func (store *SchemaStore) Get(id string) (model.Schema, error) {
	schemas, err := store.List()
	if err != nil {
		return model.Schema{}, err
	}
	for _, schema := range schemas {
		if schema.ID == id {
			return schema, nil
		}
	}
	return model.Schema{}, fmt.Errorf("get %q: %w", id, ErrSchemaNotFound)
}

// Find resolves a schema by id, id prefix or case-insensitive name.
func (store *SchemaStore) Find(ref string) (model.Schema, error) {
	schemas, err := store.List()
	if err != nil {
		return model.Schema{}, err
	}
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.Schema{}, fmt.Errorf("find schema: %w", ErrSchemaNotFound)
	}

	var matches []model.Schema
	for _, schema := range schemas {
		if schema.ID == ref {
			return schema, nil
		}
		if strings.EqualFold(schema.Name, ref) || strings.HasPrefix(schema.ID, ref) {
			matches = append(matches, schema)
		}
	}
	switch len(matches) {
	case 0:
		return model.Schema{}, fmt.Errorf("find %q: %w", ref, ErrSchemaNotFound)
	case 1:
		return matches[0], nil
	default:
		return model.Schema{}, fmt.Errorf("find %q: %d schemas match", ref, len(matches))
	}
}

// Save validates the schema and inserts or replaces it. UpdatedAt is always
// stamped and CreatedAt is set on insert.
func (store *SchemaStore) Save(schema model.Schema) (model.Schema, error) {
	schema.EnsureIDs()
	if err := schema.Validate(); err != nil {
		return model.Schema{}, fmt.Errorf("save schema: %w", err)
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	document, err := store.readLocked()
	if err != nil {
		return model.Schema{}, err
	}

	schema.UpdatedAt = store.now().UTC()
	replaced := false
	for index := range document.Schemas {
		if document.Schemas[index].ID == schema.ID {
			if schema.CreatedAt.IsZero() {
				schema.CreatedAt = document.Schemas[index].CreatedAt
			}
			document.Schemas[index] = schema
			replaced = true
			break
		}
	}
	if !replaced {
		schema.CreatedAt = schema.UpdatedAt
		document.Schemas = append(document.Schemas, schema)
	}

	if err := store.writeLocked(document); err != nil {
		return model.Schema{}, err
	}
	return schema, nil
}

// Delete removes the schema with the given id.
func (store *SchemaStore) Delete(id string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	document, err := store.readLocked()
	if err != nil {
		return err
	}

	kept := document.Schemas[:0]
	for _, schema := range document.Schemas {
		if schema.ID != id {
			kept = append(kept, schema)
		}
	}
	if len(kept) == len(document.Schemas) {
		return fmt.Errorf("delete %q: %w", id, ErrSchemaNotFound)
	}
	document.Schemas = kept
	return store.writeLocked(document)
}

func (store *SchemaStore) readLocked() (schemaDocument, error) {
	document := schemaDocument{Version: schemaDocumentVersion}

	rawData, err := os.ReadFile(store.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return document, nil
		}
		return document, fmt.Errorf("read schemas file: %w", err)
	}
	if err := yaml.Unmarshal(rawData, &document); err != nil {
		return document, fmt.Errorf("parse schemas yaml: %w", err)
	}
	if document.Version > schemaDocumentVersion {
		return document, fmt.Errorf("parse schemas yaml: unsupported version %d", document.Version)
	}
	document.Version = schemaDocumentVersion
	return document, nil
}

func (store *SchemaStore) writeLocked(document schemaDocument) error {
	document.Version = schemaDocumentVersion
	if document.Schemas == nil {
		document.Schemas = []model.Schema{}
	}
	serialized, err := yaml.Marshal(document)
	if err != nil {
		return fmt.Errorf("marshal schemas yaml: %w", err)
	}
	if err := writeFileAtomic(store.path, serialized, 0o644); err != nil {
		return fmt.Errorf("write schemas file: %w", err)
	}
	return nil
}
