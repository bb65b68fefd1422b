package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema.json
var schemaJSON []byte

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		var doc interface{}
		if err := json.Unmarshal(schemaJSON, &doc); err != nil {
			compileErr = fmt.Errorf("embedded config schema is invalid JSON: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		const resourceURL = "francegen://terrain-config.schema.json"
		if err := compiler.AddResource(resourceURL, bytes.NewReader(schemaJSON)); err != nil {
			compileErr = fmt.Errorf("loading embedded config schema: %w", err)
			return
		}
		compiled, compileErr = compiler.Compile(resourceURL)
	})
	return compiled, compileErr
}

// Validate checks raw config JSON bytes against the embedded terrain
// config JSON Schema.
func Validate(data []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return err
	}
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return err
	}
	return nil
}
