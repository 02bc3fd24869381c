// Package types defines the shared data model for the job description
// refinement workflow: field sets, answer maps, and round tags.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// CanonicalFields lists the twelve job description fields in the order they
// appear in the extraction contract. The names are used verbatim as JSON
// object keys in both directions of the model exchange.
var CanonicalFields = []string{
	"Job Title",
	"Job Summary",
	"Key Responsibilities",
	"Required Skills",
	"Preferred Qualifications",
	"Experience Required",
	"Work Environment and Conditions",
	"Salary and Benefits",
	"Company Overview",
	"Application Instructions",
	"Equal Opportunity Statement",
	"Additional Information",
}

// ErrorKey is the sentinel key used when a model reply could not be parsed.
const ErrorKey = "error"

// ErrorValue is the sentinel value stored under ErrorKey.
const ErrorValue = "Response is not valid JSON"

// FieldSet maps job description field names to text values. A FieldSet
// containing only ErrorKey signals a non-fatal parse failure; the session
// continues with the sentinel rather than aborting.
type FieldSet map[string]string

// NewErrorFieldSet returns the sentinel FieldSet for an unparseable reply.
func NewErrorFieldSet() FieldSet {
	return FieldSet{ErrorKey: ErrorValue}
}

// IsError reports whether the FieldSet is the parse-failure sentinel.
func (fs FieldSet) IsError() bool {
	_, ok := fs[ErrorKey]
	return ok && len(fs) == 1
}

// Missing returns the canonical fields that are absent or blank.
func (fs FieldSet) Missing() []string {
	var missing []string
	for _, name := range CanonicalFields {
		if strings.TrimSpace(fs[name]) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// Complete reports whether every canonical field has a non-blank value.
func (fs FieldSet) Complete() bool {
	return len(fs.Missing()) == 0
}

// MarshalJSON serializes the FieldSet with a stable key order: canonical
// fields first (in catalog order), then any extra keys sorted. Stable output
// keeps prompts deterministic and round-trips exact.
func (fs FieldSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	first := true
	writePair := func(key, value string) error {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		k, err := json.Marshal(key)
		if err != nil {
			return err
		}
		v, err := json.Marshal(value)
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
		return nil
	}

	seen := make(map[string]bool, len(fs))
	for _, name := range CanonicalFields {
		if value, ok := fs[name]; ok {
			if err := writePair(name, value); err != nil {
				return nil, err
			}
			seen[name] = true
		}
	}

	extras := make([]string, 0, len(fs))
	for key := range fs {
		if !seen[key] {
			extras = append(extras, key)
		}
	}
	sort.Strings(extras)
	for _, key := range extras {
		if err := writePair(key, fs[key]); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ToJSON returns the pretty-printed stable serialization used in prompts.
func (fs FieldSet) ToJSON() string {
	compact, err := fs.MarshalJSON()
	if err != nil {
		return "{}"
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", "  "); err != nil {
		return string(compact)
	}
	return out.String()
}

// ParseFieldSet parses a JSON object into a FieldSet. Values that are not
// strings are coerced: arrays are joined with newlines, anything else is kept
// as its raw JSON text. Models frequently return list-valued fields
// (responsibilities, skills) and the workflow must tolerate them.
func ParseFieldSet(data []byte) (FieldSet, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	fs := make(FieldSet, len(raw))
	for key, value := range raw {
		fs[key] = coerceValue(value)
	}
	return fs, nil
}

func coerceValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		parts := make([]string, 0, len(list))
		for _, item := range list {
			parts = append(parts, coerceValue(item))
		}
		return strings.Join(parts, "\n")
	}

	var null any
	if err := json.Unmarshal(raw, &null); err == nil && null == nil {
		return ""
	}

	return string(bytes.TrimSpace(raw))
}

// Summary returns a short human-readable description of the FieldSet,
// used in progress output.
func (fs FieldSet) Summary() string {
	if fs.IsError() {
		return "extraction failed: " + fs[ErrorKey]
	}
	filled := len(CanonicalFields) - len(fs.Missing())
	return fmt.Sprintf("%d/%d fields populated", filled, len(CanonicalFields))
}
