package ipc

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

const schemaBase = "https://drone-core.local/schemas/"

// Validator checks inbound payloads against the embedded JSON schemas
// before any handler sees them.
type Validator struct {
	schemas map[string]*jsonschema.Schema
}

// NewValidator compiles the schema for every inbound envelope type.
func NewValidator() (*Validator, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020

	types := []string{TypeHello, TypeUnitEvent}
	for _, t := range types {
		raw, err := schemaFS.ReadFile("schemas/" + t + ".schema.json")
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", t, err)
		}
		if err := c.AddResource(schemaBase+t+".schema.json", bytes.NewReader(raw)); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", t, err)
		}
	}

	v := &Validator{schemas: make(map[string]*jsonschema.Schema, len(types))}
	for _, t := range types {
		s, err := c.Compile(schemaBase + t + ".schema.json")
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", t, err)
		}
		v.schemas[t] = s
	}
	return v, nil
}

// Validate checks env.Data. Envelope types without a schema pass.
func (v *Validator) Validate(env Envelope) error {
	s, ok := v.schemas[env.Type]
	if !ok {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(env.Data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("%s: decode payload: %w", env.Type, err)
	}
	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("%s: %w", env.Type, err)
	}
	return nil
}
