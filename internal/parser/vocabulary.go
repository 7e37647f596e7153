package parser

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/preyalameta02/balance-sheet-analysis/constants"
)

//go:embed tables.json
var defaultTables []byte

// Vocabulary is the fixed classification and unit-conversion table set.
// It is loaded once at startup and is immutable afterwards, so a single
// instance is safe for concurrent reuse across uploads.
type Vocabulary struct {
	CanonicalUnit string        `json:"canonical_unit"`
	Metrics       []MetricEntry `json:"metrics"`
	Units         []UnitEntry   `json:"units"`
}

// MetricEntry maps surface-form phrases to one canonical metric tag.
// Table order is the classifier's priority order: entries listed earlier win,
// so more specific phrases must precede generic ones.
type MetricEntry struct {
	Metric  constants.MetricType `json:"metric"`
	Phrases []string             `json:"phrases"`
}

// UnitEntry maps unit aliases to the factor converting one such unit into the
// canonical unit (Crore). Factors are decimal strings to keep rescaling exact.
type UnitEntry struct {
	Unit    string   `json:"unit"`
	Aliases []string `json:"aliases"`
	ToCrore string   `json:"to_crore"`
}

// tablesSchema constrains vocabulary files. Malformed tables are a startup
// error, never a per-request one.
func tablesSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"canonical_unit", "metrics", "units"},
		"properties": map[string]any{
			"canonical_unit": map[string]any{"type": "string", "minLength": 1},
			"metrics": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []any{"metric", "phrases"},
					"properties": map[string]any{
						"metric": map[string]any{"type": "string", "minLength": 1},
						"phrases": map[string]any{
							"type":     "array",
							"minItems": 1,
							"items":    map[string]any{"type": "string", "minLength": 1},
						},
					},
				},
			},
			"units": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []any{"unit", "aliases", "to_crore"},
					"properties": map[string]any{
						"unit": map[string]any{"type": "string", "minLength": 1},
						"aliases": map[string]any{
							"type":     "array",
							"minItems": 1,
							"items":    map[string]any{"type": "string", "minLength": 1},
						},
						"to_crore": map[string]any{
							"type":    "string",
							"pattern": `^\d+(\.\d+)?$`,
						},
					},
				},
			},
		},
	}
}

// LoadVocabulary reads and validates the metric/unit tables. An empty path
// loads the built-in tables; a non-empty path loads an operator override.
func LoadVocabulary(path string) (*Vocabulary, error) {
	data := defaultTables
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read vocabulary file: %w", err)
		}
		data = b
	}

	if err := validateAgainstSchema(tablesSchema(), data); err != nil {
		return nil, fmt.Errorf("vocabulary tables: %w", err)
	}

	var v Vocabulary
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode vocabulary tables: %w", err)
	}

	for _, m := range v.Metrics {
		if _, ok := constants.ParseMetricType(string(m.Metric)); !ok {
			return nil, fmt.Errorf("vocabulary tables: unknown metric tag %q", m.Metric)
		}
	}
	return &v, nil
}

// validateAgainstSchema validates "data" against "schemaMap".
func validateAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
