package services

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const (
	schemaAssessment      = "assessment"
	schemaAssessmentPatch = "assessment_patch"
	schemaBase            = "schema://talentflow/"
)

// schemaCache caches compiled schemas by name.
var schemaCache sync.Map // map[string]*jsonschema.Schema

// ValidateAssessmentPayload checks a full assessment document before it is decoded.
func ValidateAssessmentPayload(raw []byte) error {
	return validatePayload(schemaAssessment, raw)
}

// ValidateAssessmentPatch checks a partial update document.
func ValidateAssessmentPatch(raw []byte) error {
	return validatePayload(schemaAssessmentPatch, raw)
}

func validatePayload(name string, raw []byte) error {
	parsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return NewInvalidError("invalid JSON: " + err.Error())
	}
	compiled, err := compiledSchema(name)
	if err != nil {
		return fmt.Errorf("compile schema %q: %w", name, err)
	}
	if err := compiled.Validate(parsed); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return NewInvalidError(describeSchemaError(verr))
		}
		return NewInvalidError(err.Error())
	}
	return nil
}

// compiledSchema returns a cached compiled schema or compiles and caches it.
// All embedded documents are registered so cross-file refs resolve.
func compiledSchema(name string) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(name); ok {
		return cached.(*jsonschema.Schema), nil
	}
	c := jsonschema.NewCompiler()
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		b, err := schemaFS.ReadFile("schemas/" + e.Name())
		if err != nil {
			return nil, err
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(b))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", e.Name(), err)
		}
		if err := c.AddResource(schemaBase+e.Name(), doc); err != nil {
			return nil, fmt.Errorf("add resource: %w", err)
		}
	}
	compiled, err := c.Compile(schemaBase + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	schemaCache.Store(name, compiled)
	return compiled, nil
}

var schemaPrinter = message.NewPrinter(language.English)

// describeSchemaError reports the deepest failing location, which is the
// one a builder user can act on.
func describeSchemaError(verr *jsonschema.ValidationError) string {
	leaf := verr
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}
	loc := "/" + strings.Join(leaf.InstanceLocation, "/")
	return fmt.Sprintf("%s: %s", loc, leaf.ErrorKind.LocalizedString(schemaPrinter))
}
