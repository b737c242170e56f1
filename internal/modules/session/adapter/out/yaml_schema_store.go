package out

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"thermolab/internal/modules/session/domain"
	sessionout "thermolab/internal/modules/session/port/out"
	apperrors "thermolab/internal/platform/errors"
)

//go:embed schemas/*.yaml
var builtinSchemas embed.FS

type schemaFile struct {
	Schemas []domain.Schema `yaml:"schemas"`
}

// YAMLSchemaStore serves the built-in form variants plus any defined in an
// extra YAML file. A schema in the extra file replaces a built-in one with the
// same id.
type YAMLSchemaStore struct {
	schemas map[string]domain.Schema
}

func NewYAMLSchemaStore(extraPath string) (sessionout.SchemaStore, error) {
	store := &YAMLSchemaStore{schemas: map[string]domain.Schema{}}

	entries, err := fs.ReadDir(builtinSchemas, "schemas")
	if err != nil {
		return nil, fmt.Errorf("read built-in schemas: %w", err)
	}
	for _, entry := range entries {
		raw, err := builtinSchemas.ReadFile("schemas/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read built-in schema %s: %w", entry.Name(), err)
		}
		if err := store.load(raw, entry.Name()); err != nil {
			return nil, err
		}
	}

	if extraPath = strings.TrimSpace(extraPath); extraPath != "" {
		raw, err := os.ReadFile(extraPath)
		if err != nil {
			return nil, fmt.Errorf("read schema file: %w", err)
		}
		if err := store.load(raw, extraPath); err != nil {
			return nil, err
		}
	}
	return store, nil
}

// load accepts either a document with a top-level schemas list or a single
// schema document.
func (s *YAMLSchemaStore) load(raw []byte, source string) error {
	decoded, err := decodeSchemas(raw)
	if err != nil {
		return fmt.Errorf("decode %s: %w", source, err)
	}
	if len(decoded) == 0 {
		return fmt.Errorf("%w: %s defines no schemas", apperrors.ErrInvalidInput, source)
	}
	for _, schema := range decoded {
		if err := schema.Validate(); err != nil {
			return fmt.Errorf("%s: %w", source, err)
		}
		s.schemas[schema.ID] = schema
	}
	return nil
}

func decodeSchemas(raw []byte) ([]domain.Schema, error) {
	file := schemaFile{}
	decoder := yaml.NewDecoder(bytes.NewReader(raw))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err == nil {
		return file.Schemas, nil
	} else if errors.Is(err, io.EOF) {
		return nil, nil
	}

	single := domain.Schema{}
	decoder = yaml.NewDecoder(bytes.NewReader(raw))
	decoder.KnownFields(true)
	if err := decoder.Decode(&single); err != nil {
		return nil, err
	}
	return []domain.Schema{single}, nil
}

func (s *YAMLSchemaStore) List(_ context.Context) ([]domain.Schema, error) {
	out := make([]domain.Schema, 0, len(s.schemas))
	for _, schema := range s.schemas {
		out = append(out, schema)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *YAMLSchemaStore) Get(_ context.Context, id string) (domain.Schema, error) {
	schema, ok := s.schemas[strings.TrimSpace(id)]
	if !ok {
		return domain.Schema{}, fmt.Errorf("%w: %q", apperrors.ErrUnknownSchema, id)
	}
	return schema, nil
}
