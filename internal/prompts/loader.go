// Package prompts holds the embedded prompt templates used for remediation.
// Each JSON file maps a key to a text/template body.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"text/template"
)

//go:embed *.json
var files embed.FS

// Set is the parsed templates of one prompt file.
type Set struct {
	name string
	root *template.Template
}

var loaded sync.Map // filename -> *Set

// Load parses filename once and returns its templates. A reference to a
// field the data does not have fails at render time.
func Load(filename string) (*Set, error) {
	if s, ok := loaded.Load(filename); ok {
		return s.(*Set), nil
	}

	data, err := files.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}
	var bodies map[string]string
	if err := json.Unmarshal(data, &bodies); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
	}

	root := template.New(filename).Option("missingkey=error")
	for key, body := range bodies {
		if _, err := root.New(key).Parse(body); err != nil {
			return nil, fmt.Errorf("prompt %s/%s: %w", filename, key, err)
		}
	}
	s, _ := loaded.LoadOrStore(filename, &Set{name: filename, root: root})
	return s.(*Set), nil
}

// Render executes the template stored under key.
func (s *Set) Render(key string, data any) (string, error) {
	t := s.root.Lookup(key)
	if t == nil {
		return "", fmt.Errorf("prompt key %q not found in %s", key, s.name)
	}
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render prompt %s/%s: %w", s.name, key, err)
	}
	return b.String(), nil
}

// Keys lists the prompt keys in the set, sorted.
func (s *Set) Keys() []string {
	var keys []string
	for _, t := range s.root.Templates() {
		if t.Name() != s.name {
			keys = append(keys, t.Name())
		}
	}
	sort.Strings(keys)
	return keys
}
