// Package contract holds the OpenAPI description of the backend surface the
// client consumes and validates responses against it.
package contract

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed api.yaml
var apiSpec []byte

// Spec returns the embedded OpenAPI document as YAML.
func Spec() []byte {
	return apiSpec
}

// Validator checks response bodies against the embedded OpenAPI document.
type Validator struct {
	doc *openapi3.T
}

// NewValidator loads and validates the embedded OpenAPI document.
func NewValidator() (*Validator, error) {
	return Load(apiSpec)
}

// Load builds a validator from an OpenAPI document.
func Load(data []byte) (*Validator, error) {
	loader := openapi3.NewLoader()

	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI spec: %w", err)
	}

	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI spec: %w", err)
	}

	return &Validator{doc: doc}, nil
}

// ValidateResponse checks body against the schema declared for the response
// of method on route with the given status. Routes or statuses the document
// does not describe are accepted.
func (v *Validator) ValidateResponse(method, route string, status int, body []byte) error {
	op := v.operation(method, route)
	if op == nil {
		return nil
	}

	ref := op.Responses.Status(status)
	if ref == nil || ref.Value == nil {
		return nil
	}
	media := ref.Value.Content.Get("application/json")
	if media == nil || media.Schema == nil || media.Schema.Value == nil {
		return nil
	}

	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		return fmt.Errorf("response is not JSON: %w", err)
	}

	if err := media.Schema.Value.VisitJSON(value); err != nil {
		return fmt.Errorf("%s %s: %w", method, route, err)
	}
	return nil
}

// Operations lists the described endpoints as "METHOD /path", sorted.
func (v *Validator) Operations() []string {
	var ops []string
	for path, item := range v.doc.Paths.Map() {
		for method := range item.Operations() {
			ops = append(ops, strings.ToUpper(method)+" "+path)
		}
	}
	sort.Strings(ops)
	return ops
}

func (v *Validator) operation(method, route string) *openapi3.Operation {
	if v.doc.Paths == nil {
		return nil
	}
	item := v.doc.Paths.Find(route)
	if item == nil {
		return nil
	}
	return item.GetOperation(strings.ToUpper(method))
}
