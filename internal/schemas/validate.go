// Package schemas validates JSON documents against the embedded JSON Schemas:
// generated FAQPage markup and the CLI input files.
package schemas

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed defs/*.json
var defs embed.FS

// Embedded schema names.
const (
	FAQPage         = "faq_page"
	Candidates      = "candidates"
	ConflictGroup   = "conflict_group"
	StrikeZoneInput = "strike_zone_input"
)

// ErrUnknownSchema is returned for a name with no embedded definition.
var ErrUnknownSchema = errors.New("unknown schema")

// ErrNotJSON is returned when the document does not parse as JSON.
var ErrNotJSON = errors.New("document is not valid JSON")

// Violation is one schema rule a document broke.
type Violation struct {
	Field   string
	Message string
}

// ValidationError lists every violation of one schema.
type ValidationError struct {
	Schema     string
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.Field + ": " + v.Message
	}
	return fmt.Sprintf("%s: %d violation(s): %s", e.Schema, len(e.Violations), strings.Join(parts, "; "))
}

var compiled sync.Map // name -> *gojsonschema.Schema

func load(name string) (*gojsonschema.Schema, error) {
	if s, ok := compiled.Load(name); ok {
		return s.(*gojsonschema.Schema), nil
	}
	data, err := defs.ReadFile("defs/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("%w %q", ErrUnknownSchema, name)
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	s, _ := compiled.LoadOrStore(name, schema)
	return s.(*gojsonschema.Schema), nil
}

// Validate checks a JSON document against the named embedded schema.
func Validate(name, doc string) error {
	schema, err := load(name)
	if err != nil {
		return err
	}
	result, err := schema.Validate(gojsonschema.NewStringLoader(doc))
	if err != nil {
		return fmt.Errorf("%s: %w: %v", name, ErrNotJSON, err)
	}
	if result.Valid() {
		return nil
	}

	verr := &ValidationError{Schema: name}
	for _, re := range result.Errors() {
		field := re.Field()
		if field == "" || field == gojsonschema.STRING_CONTEXT_ROOT {
			field = "(root)"
		}
		verr.Violations = append(verr.Violations, Violation{Field: field, Message: re.Description()})
	}
	return verr
}

// ValidateFile checks the JSON file at path against the named embedded schema.
func ValidateFile(name, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Validate(name, string(data))
}
