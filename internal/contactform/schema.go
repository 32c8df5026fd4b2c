package contactform

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// SchemaID identifies the published contact schema.
const SchemaID = "https://schemas.chef-site.local/contact-submission.schema.json"

// SchemaJSON renders rules as a draft 2020-12 JSON Schema and verifies that
// the document compiles. Messages travel in the "x-messages" annotation so
// the browser can show the same text as the server.
func SchemaJSON(rules []Rule) ([]byte, error) {
	properties := make(map[string]interface{}, len(rules))
	required := make([]string, 0, len(rules))

	for _, rule := range rules {
		property := map[string]interface{}{"type": "string"}
		messages := map[string]string{}

		if rule.MinLength > 0 {
			property["minLength"] = rule.MinLength
			messages["minLength"] = rule.MinMessage
			required = append(required, string(rule.Field))
		}
		if rule.MaxLength != Unbounded {
			property["maxLength"] = rule.MaxLength
			messages["maxLength"] = rule.MaxMessage
		}
		if rule.Format == FormatEmail {
			property["pattern"] = EmailPattern
			messages["pattern"] = rule.FormatMessage
			required = append(required, string(rule.Field))
		}

		property["x-messages"] = messages
		properties[string(rule.Field)] = property
	}

	document := map[string]interface{}{
		"$schema":    "https://json-schema.org/draft/2020-12/schema",
		"$id":        SchemaID,
		"title":      "ContactSubmission",
		"type":       "object",
		"properties": properties,
		"required":   required,
	}

	raw, err := json.Marshal(document)
	if err != nil {
		return nil, fmt.Errorf("encode contact schema: %w", err)
	}

	if _, err := CompileSchema(raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// CompileSchema compiles a document produced by SchemaJSON.
func CompileSchema(raw []byte) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(SchemaID, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("load contact schema: %w", err)
	}

	schema, err := compiler.Compile(SchemaID)
	if err != nil {
		return nil, fmt.Errorf("compile contact schema: %w", err)
	}
	return schema, nil
}
