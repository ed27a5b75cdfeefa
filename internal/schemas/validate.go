// Package schemas validates the published JSON artifacts against embedded
// JSON Schemas before they are written.
package schemas

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// Artifact names accepted by Validate.
const (
	Articles     = "articles"
	ArticlesByID = "articles_by_id"
	Stats        = "stats"
)

//go:embed article.schema.json stats.schema.json
var files embed.FS

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Artifact string
	Errors   []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s validation failed:\n", ve.Artifact))
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

var (
	loadOnce sync.Once
	loaded   map[string]*gojsonschema.Schema
	loadErr  error
)

func load() (map[string]*gojsonschema.Schema, error) {
	loadOnce.Do(func() {
		article, err := files.ReadFile("article.schema.json")
		if err != nil {
			loadErr = err
			return
		}
		stats, err := files.ReadFile("stats.schema.json")
		if err != nil {
			loadErr = err
			return
		}

		sources := map[string]string{
			Articles: fmt.Sprintf(`{
  "type": "object",
  "required": ["articles"],
  "properties": {"articles": {"type": "array", "items": %s}},
  "additionalProperties": false
}`, article),
			ArticlesByID: fmt.Sprintf(`{"type": "object", "additionalProperties": %s}`, article),
			Stats:        string(stats),
		}

		loaded = make(map[string]*gojsonschema.Schema, len(sources))
		for name, src := range sources {
			schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
			if err != nil {
				loadErr = fmt.Errorf("failed to load %s schema: %w", name, err)
				return
			}
			loaded[name] = schema
		}
	})
	return loaded, loadErr
}

// Validate checks a serialized artifact against its schema. It returns a
// *ValidationError when the document does not conform.
func Validate(artifact string, doc []byte) error {
	all, err := load()
	if err != nil {
		return err
	}
	schema, ok := all[artifact]
	if !ok {
		return fmt.Errorf("unknown artifact %q", artifact)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("failed to load %s document: %w", artifact, err)
	}
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Artifact: artifact,
		Errors:   make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}
