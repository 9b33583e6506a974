package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// JSON schemas for request bodies, keyed by endpoint.
const (
	eventSchema = `
{ "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "Input event in display coordinates",
  "type": "object",
  "properties": {
    "trigger": { "description": "input trigger, e.g. \"SPACE button1\"", "type": "string", "minLength": 1 },
    "phase": { "enum": ["init", "drag", "end", "click", "scroll", "move"] },
    "x": { "type": "number" },
    "y": { "type": "number" },
    "rotation": { "description": "wheel rotation for scroll events", "type": "number" },
    "horizontal": { "type": "boolean" }
  },
  "required": ["trigger", "phase", "x", "y"]
}`

	strokeSchema = `
{ "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "Brush drag along a display space path",
  "type": "object",
  "properties": {
    "path": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "array",
        "minItems": 2,
        "maxItems": 2,
        "items": { "type": "number" }
      }
    }
  },
  "required": ["path"]
}`

	radiusSchema = `
{ "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "Brush radius",
  "type": "object",
  "properties": {
    "radius": { "type": "integer", "minimum": 0 }
  },
  "required": ["radius"]
}`

	activeSchema = `
{ "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "Active fragment painted by the paint action",
  "type": "object",
  "properties": {
    "label": { "type": "integer", "minimum": 0 }
  },
  "required": ["label"]
}`

	sendSchema = `
{ "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "Send the painted label under a display coordinate to the solver",
  "type": "object",
  "properties": {
    "x": { "type": "number" },
    "y": { "type": "number" },
    "wait": { "description": "block until the solver notification completes", "type": "boolean" }
  },
  "required": ["x", "y"]
}`
)

func compileSchemas() (map[string]*jsonschema.Schema, error) {
	sources := map[string]string{
		"event.json":  eventSchema,
		"stroke.json": strokeSchema,
		"radius.json": radiusSchema,
		"active.json": activeSchema,
		"send.json":   sendSchema,
	}
	schemas := make(map[string]*jsonschema.Schema, len(sources))
	for name, src := range sources {
		sch, err := jsonschema.CompileString(name, src)
		if err != nil {
			return nil, fmt.Errorf("unable to compile json schema %s: %v", name, err)
		}
		schemas[name] = sch
	}
	return schemas, nil
}

// decodeRequest validates the request body against the named schema and
// unmarshals it into v.
func (s *Server) decodeRequest(r *http.Request, schema string, v interface{}) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return fmt.Errorf("unable to read request body: %v", err)
	}
	var doc interface{}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("malformed JSON request: %v", err)
	}
	sch, found := s.schemas[schema]
	if !found {
		return fmt.Errorf("no schema %q", schema)
	}
	if err := sch.Validate(doc); err != nil {
		return err
	}
	dec = json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	return dec.Decode(v)
}
