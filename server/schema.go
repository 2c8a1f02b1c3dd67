package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const maxBodyBytes = 1 << 20

const editRequestSchema = `{
	"type": "object",
	"required": ["prompt", "fullText"],
	"properties": {
		"prompt": {"type": "string"},
		"selectedText": {"type": "string"},
		"fullText": {"type": "string"}
	}
}`

const createDocumentSchema = `{
	"type": "object",
	"required": ["kind", "fields"],
	"properties": {
		"kind": {"enum": ["document", "epic", "user_story", "use_case", "functional_requirement"]},
		"fields": {
			"type": "object",
			"minProperties": 1,
			"additionalProperties": {"type": "string"}
		}
	},
	"additionalProperties": false
}`

const patchDocumentSchema = `{
	"type": "object",
	"required": ["fields"],
	"properties": {
		"fields": {
			"type": "object",
			"minProperties": 1,
			"additionalProperties": {"type": "string"}
		}
	},
	"additionalProperties": false
}`

const suggestionEventSchema = `{
	"type": "object",
	"required": ["kind"],
	"properties": {
		"kind": {"enum": ["submit", "accept", "reject"]},
		"payload": {
			"type": "object",
			"properties": {
				"prompt": {"type": "string"},
				"selectedText": {"type": "string"},
				"fullText": {"type": "string"}
			}
		}
	},
	"if": {"properties": {"kind": {"const": "submit"}}},
	"then": {"required": ["payload"]}
}`

// schemas holds the compiled request body schemas.
type schemas struct {
	edit            *jsonschema.Schema
	createDocument  *jsonschema.Schema
	patchDocument   *jsonschema.Schema
	suggestionEvent *jsonschema.Schema
}

func compileSchemas() (*schemas, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020

	sources := map[string]string{
		"edit":             editRequestSchema,
		"create-document":  createDocumentSchema,
		"patch-document":   patchDocumentSchema,
		"suggestion-event": suggestionEventSchema,
	}
	for name, src := range sources {
		if err := c.AddResource(schemaURL(name), strings.NewReader(src)); err != nil {
			return nil, fmt.Errorf("schema %s load failed: %w", name, err)
		}
	}

	compiled := make(map[string]*jsonschema.Schema, len(sources))
	for name := range sources {
		s, err := c.Compile(schemaURL(name))
		if err != nil {
			return nil, fmt.Errorf("schema %s compile failed: %w", name, err)
		}
		compiled[name] = s
	}

	return &schemas{
		edit:            compiled["edit"],
		createDocument:  compiled["create-document"],
		patchDocument:   compiled["patch-document"],
		suggestionEvent: compiled["suggestion-event"],
	}, nil
}

func schemaURL(name string) string {
	return fmt.Sprintf("https://docs-ai.schemas.local/%s.schema.json", name)
}

// badRequestError is a body that failed to parse or validate.
type badRequestError struct {
	err error
}

func (e *badRequestError) Error() string {
	return "invalid request body: " + e.err.Error()
}

func (e *badRequestError) Unwrap() error {
	return e.err
}

// decodeBody validates the JSON body against schema, then decodes it into dst.
func decodeBody(w http.ResponseWriter, r *http.Request, schema *jsonschema.Schema, dst any) error {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return &badRequestError{err: err}
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return &badRequestError{err: err}
	}
	if err := schema.Validate(doc); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return &badRequestError{err: errors.New(leafMessage(verr))}
		}
		return &badRequestError{err: err}
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return &badRequestError{err: err}
	}
	return nil
}

// leafMessage returns the most specific validation failure.
func leafMessage(verr *jsonschema.ValidationError) string {
	for len(verr.Causes) > 0 {
		verr = verr.Causes[0]
	}
	location := verr.InstanceLocation
	if location == "" {
		location = "/"
	}
	return fmt.Sprintf("%s: %s", location, verr.Message)
}
