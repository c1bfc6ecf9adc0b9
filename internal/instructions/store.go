package instructions

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// CustomerConfig is a named bundle of customer-specific extraction settings.
// It is read-only at request time.
type CustomerConfig struct {
	CustomerNumber   string            `json:"customer_number"`
	Name             string            `json:"name"`
	AdditionalFields []string          `json:"additional_fields,omitempty"`
	SpecialRules     []string          `json:"special_rules,omitempty"`
	FieldMappings    map[string]string `json:"field_mappings,omitempty"`
}

// customerSchema validates customer config files on load so a malformed file
// surfaces as an explicit error instead of a silently empty block.
var customerSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"properties": map[string]any{
		"customer_number": map[string]any{"type": "string", "minLength": 1},
		"name":            map[string]any{"type": "string", "minLength": 1},
		"additional_fields": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
		"special_rules": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
		"field_mappings": map[string]any{
			"type":                 "object",
			"additionalProperties": map[string]any{"type": "string"},
		},
	},
	"required": []string{"customer_number", "name"},
}

// Store loads customer configs from JSON files named <CUSTOMER>.json under a
// directory. Keys are uppercased customer numbers.
type Store struct {
	dir    string
	schema *jsonschema.Schema
	logger *slog.Logger
}

func NewStore(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	schema, err := compileSchema(customerSchema)
	if err != nil {
		return nil, fmt.Errorf("compile customer schema: %w", err)
	}
	return &Store{dir: dir, schema: schema, logger: logger}, nil
}

// Get returns the config for a customer number, or (nil, nil) when no config
// file exists. Customer numbers are case-insensitive.
func (s *Store) Get(customerNumber string) (*CustomerConfig, error) {
	key := strings.ToUpper(strings.TrimSpace(customerNumber))
	if key == "" {
		return nil, nil
	}
	path := filepath.Join(s.dir, key+".json")

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Warn("customers.config_not_found", "customer", key)
			return nil, nil
		}
		return nil, fmt.Errorf("read customer config %s: %w", key, err)
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode customer config %s: %w", key, err)
	}
	if err := s.schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("customer config %s does not match schema: %w", key, err)
	}

	var cfg CustomerConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal customer config %s: %w", key, err)
	}
	return &cfg, nil
}

// List returns every valid customer config in the directory, sorted by
// customer number. Invalid files are logged and skipped.
func (s *Store) List() ([]CustomerConfig, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read customer config dir: %w", err)
	}

	var out []CustomerConfig
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		key := strings.TrimSuffix(e.Name(), ".json")
		cfg, err := s.Get(key)
		if err != nil {
			s.logger.Warn("customers.skip_invalid", "file", e.Name(), "error", err)
			continue
		}
		if cfg != nil {
			out = append(out, *cfg)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CustomerNumber < out[j].CustomerNumber })
	return out, nil
}

func compileSchema(schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("customer.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	return compiler.Compile("customer.json")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
