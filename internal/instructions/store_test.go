package instructions

import (
	"strings"
	"testing"
)

func TestStore_GetIsCaseInsensitive(t *testing.T) {
	store := testStore(t, map[string]string{
		"CUST99.json": `{"customer_number": "CUST99", "name": "Customer 99"}`,
	})

	for _, key := range []string{"CUST99", "cust99", " Cust99 "} {
		cfg, err := store.Get(key)
		if err != nil {
			t.Fatalf("Get(%q): %v", key, err)
		}
		if cfg == nil || cfg.Name != "Customer 99" {
			t.Errorf("Get(%q) = %+v", key, cfg)
		}
	}
}

func TestStore_GetMissingIsNilNotError(t *testing.T) {
	store := testStore(t, nil)
	cfg, err := store.Get("ABSENT")
	if err != nil {
		t.Fatalf("missing config must not be an error: %v", err)
	}
	if cfg != nil {
		t.Errorf("expected nil config, got %+v", cfg)
	}
}

func TestStore_GetRejectsSchemaViolations(t *testing.T) {
	store := testStore(t, map[string]string{
		"BAD1.json": `{"name": "missing customer number"}`,
		"BAD2.json": `{"customer_number": "BAD2", "name": "x", "unknown_key": true}`,
		"BAD3.json": `{"customer_number": "BAD3", "name": "x", "special_rules": "not an array"}`,
	})

	for _, key := range []string{"BAD1", "BAD2", "BAD3"} {
		if _, err := store.Get(key); err == nil {
			t.Errorf("%s: expected schema error", key)
		} else if !strings.Contains(err.Error(), "schema") {
			t.Errorf("%s: expected schema error, got %v", key, err)
		}
	}
}

func TestStore_ListSkipsInvalidAndSorts(t *testing.T) {
	store := testStore(t, map[string]string{
		"ZED01.json":   `{"customer_number": "ZED01", "name": "Zed"}`,
		"ALPHA1.json":  `{"customer_number": "ALPHA1", "name": "Alpha"}`,
		"BROKEN.json":  `{"name": "no number"}`,
		"notjson.yaml": `customer_number: NOPE`,
	})

	configs, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(configs) != 2 {
		t.Fatalf("expected 2 valid configs, got %d", len(configs))
	}
	if configs[0].CustomerNumber != "ALPHA1" || configs[1].CustomerNumber != "ZED01" {
		t.Errorf("expected sorted order, got %v", configs)
	}
}
