package instructions

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// defaultFields are already covered by the baseline schema; requesting them
// again via extract_fields must not produce an "also extract" directive.
var defaultFields = map[string]struct{}{
	"line_items": {}, "item_number": {}, "sku": {}, "description": {},
	"hts_code": {}, "country_of_origin": {}, "quantity": {}, "unit_price": {},
	"total_value": {}, "value": {}, "weight": {}, "net_weight": {},
	"gross_weight": {}, "unit_of_measure": {},
}

// BuildParams carries the per-request inputs for instruction assembly.
type BuildParams struct {
	CustomerNumber     string
	CustomInstructions string
	ExtractFields      []string
	PageCount          int  // 0 or 1 means no page directive
	ClearCache         bool // appends a uniqueness token so the agent cannot serve a cached run
}

// Build assembles the instruction string in fixed order: page-count directive,
// baseline, customer block, custom block, additional-fields block, cache token.
// It is deterministic for fixed inputs except for the cache-busting token.
// The only side effect is the read-only customer-config lookup.
func Build(p BuildParams, store *Store, logger *slog.Logger) string {
	if logger == nil {
		logger = slog.Default()
	}

	var b strings.Builder

	// The agent has an observed failure mode of silently stopping after page 1
	// on multi-page documents. A single mention proved insufficient, so the
	// directive enumerates every page and repeats itself.
	if p.PageCount > 1 {
		b.WriteString(pageDirective(p.PageCount))
		logger.Info("instructions.page_directive", "pages", p.PageCount)
	}

	b.WriteString(Baseline)

	if p.CustomerNumber != "" && store != nil {
		cfg, err := store.Get(p.CustomerNumber)
		switch {
		case err != nil:
			logger.Error("instructions.customer_lookup_error", "customer", p.CustomerNumber, "error", err)
		case cfg == nil:
			logger.Warn("instructions.customer_not_found", "customer", p.CustomerNumber)
		default:
			b.WriteString(customerBlock(cfg))
			logger.Info("instructions.customer_applied", "customer", p.CustomerNumber)
		}
	}

	if custom := strings.TrimSpace(p.CustomInstructions); custom != "" {
		b.WriteString("\n\n=== CUSTOM INSTRUCTIONS ===\n\n")
		b.WriteString(custom)
		b.WriteString("\n")
	}

	if extra := extraFields(p.ExtractFields); len(extra) > 0 {
		b.WriteString("\n\n=== ADDITIONAL FIELDS ===\n\nAlso extract: ")
		b.WriteString(strings.Join(extra, ", "))
		b.WriteString("\n")
	}

	if p.ClearCache {
		fmt.Fprintf(&b, "\n\n[IMPORTANT: Process this document fresh - do not use cached results. Token: %d-%s]",
			time.Now().UnixMilli(), uuid.New().String())
	}

	return b.String()
}

func pageDirective(pages int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[CRITICAL] THIS DOCUMENT HAS %d PAGES [CRITICAL]\n\n", pages)
	fmt.Fprintf(&b, "YOU MUST PROCESS ALL %d PAGES.\n\nDO NOT STOP AFTER PAGE 1.\n\n", pages)
	b.WriteString("YOU MUST EXTRACT LINE ITEMS FROM:\n")
	for i := 1; i <= pages; i++ {
		fmt.Fprintf(&b, "- Page %d\n", i)
	}
	b.WriteString("\nIF YOU ONLY EXTRACT ITEMS FROM PAGE 1 AND STOP, YOU HAVE FAILED COMPLETELY.\n\n")
	fmt.Fprintf(&b, "COUNT THE PAGES: This PDF has %d pages total.\n", pages)
	fmt.Fprintf(&b, "PROCESS ALL %d PAGES BEFORE OUTPUTTING JSON.\n\n", pages)
	return b.String()
}

func customerBlock(cfg *CustomerConfig) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n\n=== CUSTOMER-SPECIFIC INSTRUCTIONS (%s) ===\n\n", cfg.Name)

	if len(cfg.AdditionalFields) > 0 {
		b.WriteString("ADDITIONAL FIELDS TO EXTRACT:\n")
		for _, f := range cfg.AdditionalFields {
			fmt.Fprintf(&b, "- %s\n", f)
		}
		b.WriteString("\n")
	}
	if len(cfg.SpecialRules) > 0 {
		b.WriteString("SPECIAL RULES:\n")
		for _, r := range cfg.SpecialRules {
			fmt.Fprintf(&b, "- %s\n", r)
		}
		b.WriteString("\n")
	}
	if len(cfg.FieldMappings) > 0 {
		b.WriteString("FIELD NAME MAPPINGS:\n")
		for _, old := range sortedKeys(cfg.FieldMappings) {
			fmt.Fprintf(&b, "- %q should be mapped to %q\n", old, cfg.FieldMappings[old])
		}
		b.WriteString("\n")
	}
	return b.String()
}

func extraFields(fields []string) []string {
	var out []string
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if _, ok := defaultFields[strings.ToLower(f)]; ok {
			continue
		}
		out = append(out, f)
	}
	return out
}
