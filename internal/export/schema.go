package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildProductJSONSchema returns the product document schema (draft 2020-12
// subset) as a generic map. Every field is required on the wire; optional
// scalars are empty strings and optional lists are empty arrays.
func BuildProductJSONSchema() map[string]any {
	props := map[string]any{
		"nome":             map[string]any{"type": "string", "minLength": 1},
		"preco":            map[string]any{"type": "string", "pattern": `^$|^R\$ \d{1,3}(\.\d{3})*,\d{2}$`},
		"codigo_comercial": stringListProp(),
		"cores":            stringListProp(),
		"materiais":        stringListProp(),
		"categoria":        map[string]any{"type": "string"},
		"descricao":        map[string]any{"type": "string"},
		"imagem":           map[string]any{"type": "string", "pattern": `^$|^data:image/`},
		"pagina":           map[string]any{"type": "integer", "minimum": 0},
	}
	required := []string{
		"nome", "preco", "codigo_comercial", "cores", "materiais",
		"categoria", "descricao", "imagem", "pagina",
	}

	return map[string]any{
		"type": "array",
		"items": map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"properties":           props,
			"required":             required,
		},
	}
}

func stringListProp() map[string]any {
	return map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "string", "minLength": 1},
	}
}

// validateDocument validates a rendered product document against the schema.
func validateDocument(data []byte) error {
	b, err := json.Marshal(BuildProductJSONSchema())
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("products.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("products.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal document: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("document does not match schema: %w", err)
	}
	return nil
}
