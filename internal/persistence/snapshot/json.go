package snapshot

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"gridadventure/internal/sim/state"
)

//go:embed state.schema.json
var stateSchemaJSON string

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func stateSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("state.schema.json", stateSchemaJSON)
	})
	return schema, schemaErr
}

// Document is the JSON interchange form of a state file.
type Document struct {
	Version int          `json:"version"`
	Level   string       `json:"level,omitempty"`
	State   *state.State `json:"state"`
}

// ValidateJSON checks raw against the embedded state document schema.
func ValidateJSON(raw []byte) error {
	s, err := stateSchema()
	if err != nil {
		return fmt.Errorf("compile state schema: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	return nil
}

func EncodeJSON(w io.Writer, s *state.State, level string) error {
	n := s.Clone()
	n.Normalize()
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Document{Version: Version, Level: level, State: n})
}

// DecodeJSON reads a JSON state document, validating it against the schema
// before decoding.
func DecodeJSON(r io.Reader) (*state.State, string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, "", err
	}
	if err := ValidateJSON(raw); err != nil {
		return nil, "", err
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, "", fmt.Errorf("decode state: %w", err)
	}
	if doc.Version != Version {
		return nil, "", fmt.Errorf("%w: %d", ErrUnsupportedVersion, doc.Version)
	}
	doc.State.Normalize()
	return doc.State, doc.Level, nil
}
