// Package prompts provides a loader and renderer for the externalized LLM
// prompt templates. Prompts are stored as JSON files and embedded at compile
// time; the catalog shape is validated with JSON Schema on first load.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed *.json
var promptFiles embed.FS

// catalogSchema constrains a prompt file to a non-empty object of
// string-valued templates. The catalog is part of the external interface, so
// a malformed file is a build defect caught at first load rather than at the
// first model call.
const catalogSchema = `{
  "type": "object",
  "minProperties": 1,
  "additionalProperties": {"type": "string", "minLength": 1}
}`

// cache stores parsed prompt files to avoid repeated JSON parsing
var (
	cache   = make(map[string]map[string]string)
	cacheMu sync.RWMutex
)

// placeholderRe matches {{.Name}} template placeholders.
var placeholderRe = regexp.MustCompile(`\{\{\.([A-Za-z][A-Za-z0-9]*)\}\}`)

// MissingVariableError reports a template placeholder with no bound value.
// This is a programmer error in the calling code, not a runtime condition to
// recover from.
type MissingVariableError struct {
	Template string
	Variable string
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("template %q: no value bound for placeholder {{.%s}}", e.Template, e.Variable)
}

// Get retrieves a prompt by filename and key.
// The filename should not include the path (e.g., "refinement.json").
// Returns an error if the file or key is not found.
func Get(filename, key string) (string, error) {
	templates, err := loadFile(filename)
	if err != nil {
		return "", err
	}

	prompt, exists := templates[key]
	if !exists {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}

	return prompt, nil
}

// MustGet retrieves a prompt by filename and key, panicking if not found.
// Use this for prompts that are required at initialization time.
func MustGet(filename, key string) string {
	prompt, err := Get(filename, key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return prompt
}

// Render substitutes {{.Key}} placeholders in template with values from data
// and verifies that no placeholder is left unbound. The name is only used in
// error reporting.
func Render(name, template string, data map[string]string) (string, error) {
	result := template
	for key, value := range data {
		placeholder := fmt.Sprintf("{{.%s}}", key)
		result = strings.ReplaceAll(result, placeholder, value)
	}

	if match := placeholderRe.FindStringSubmatch(result); match != nil {
		return "", &MissingVariableError{Template: name, Variable: match[1]}
	}

	return result, nil
}

// loadFile loads, validates, and caches a prompt file.
func loadFile(filename string) (map[string]string, error) {
	// Check cache first
	cacheMu.RLock()
	if templates, exists := cache[filename]; exists {
		cacheMu.RUnlock()
		return templates, nil
	}
	cacheMu.RUnlock()

	// Load from embedded filesystem
	data, err := promptFiles.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}

	if err := validateCatalog(filename, data); err != nil {
		return nil, err
	}

	var templates map[string]string
	if err := json.Unmarshal(data, &templates); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
	}

	// Cache the result
	cacheMu.Lock()
	cache[filename] = templates
	cacheMu.Unlock()

	return templates, nil
}

// validateCatalog checks a prompt file against the catalog schema.
func validateCatalog(filename string, data []byte) error {
	schemaLoader := gojsonschema.NewStringLoader(catalogSchema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("failed to validate prompt file %s: %w", filename, err)
	}
	if !result.Valid() {
		var sb strings.Builder
		for _, desc := range result.Errors() {
			fmt.Fprintf(&sb, "; %s", desc.String())
		}
		return fmt.Errorf("prompt file %s is malformed%s", filename, sb.String())
	}
	return nil
}

// ClearCache clears the prompt cache. Useful for testing.
func ClearCache() {
	cacheMu.Lock()
	cache = make(map[string]map[string]string)
	cacheMu.Unlock()
}

// List returns all available prompt keys in a file.
func List(filename string) ([]string, error) {
	templates, err := loadFile(filename)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(templates))
	for key := range templates {
		keys = append(keys, key)
	}
	return keys, nil
}
