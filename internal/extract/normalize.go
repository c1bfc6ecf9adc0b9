package extract

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

// Source-key aliases per target field, tried in order. The upstream agent is
// not consistent about casing or naming, so resolution is one generic
// first-present lookup over these tables instead of per-field chains.
var fieldAliases = map[string][]string{
	"item_number":       {"item_number", "item", "line_number"},
	"sku":               {"sku", "part_number", "SKU", "sku_number"},
	"description":       {"description", "DESCRIPTION", "desc", "product_description"},
	"hts_code":          {"hts_code", "commodity_code", "commodity", "hts", "HTS", "tariff_code", "harmonized_code", "hs_code"},
	"country_of_origin": {"country_of_origin", "origin_country", "COUNTRY_OF_ORIGIN", "coo", "origin"},
	"package_count":     {"package_count", "packages", "NO_OF_PACKAGE", "pkg_count"},
	"quantity":          {"quantity", "qty", "QUANTITY", "q"},
	"net_weight":        {"net_weight", "net_wt", "NET_WEIGHT", "weight_net"},
	"gross_weight":      {"gross_weight", "gross_wt", "GROSS_WEIGHT", "weight_gross", "weight"},
	"unit_price":        {"unit_price", "price", "UNIT_PRICE", "price_per_unit", "unit_cost"},
	"value":             {"value", "VALUE", "total", "amount", "total_value"},
	"unit_of_measure":   {"unit_of_measure", "uom", "QTY_UNIT", "unit", "measure"},
}

// confidenceFields are the per-field confidence keys retained from upstream.
var confidenceFields = []string{
	"sku", "description", "hts_code", "country_of_origin",
	"quantity", "unit_price", "value", "net_weight", "gross_weight",
}

// validationCheckNames are the recognized validation check keys; anything
// else from upstream is dropped.
var validationCheckNames = []string{
	"completeness_check", "data_type_check", "currency_check",
	"calculation_check", "sku_check", "hts_format_check",
	"coo_format_check", "weight_check",
}

var validationStatuses = map[string]struct{}{
	"passed": {}, "warning": {}, "failed": {},
}

var (
	rePureDigits    = regexp.MustCompile(`^\d+$`)
	reRowLabel      = regexp.MustCompile(`(?i)^(item|line|row|#)\s*\d+$`)
	rePlaceholder   = regexp.MustCompile(`(?i)^ITEM-\d+$`)
	reCurrencyStart = regexp.MustCompile(`^[$€£¥]`)
)

// DocumentContext carries document-level hints used during normalization.
type DocumentContext struct {
	Currency        string // currency symbol prefix for computed values
	CountryOfOrigin string // global COO statement, applied when a line has none
}

// Normalize maps raw extracted items onto the canonical LineItem schema and
// returns the items plus an aggregate confidence/validation summary for the
// result metadata. Pure function, no I/O.
func Normalize(rawItems []map[string]any, docCtx DocumentContext, logger *slog.Logger) ([]LineItem, map[string]any) {
	if logger == nil {
		logger = slog.Default()
	}

	items := make([]LineItem, 0, len(rawItems))
	for i, raw := range rawItems {
		items = append(items, normalizeItem(raw, i, docCtx, logger))
	}
	return items, summarize(items)
}

func normalizeItem(raw map[string]any, index int, docCtx DocumentContext, logger *slog.Logger) LineItem {
	item := LineItem{}

	item.ItemNumber = asString(firstPresent(raw, "item_number"))
	if item.ItemNumber == "" {
		item.ItemNumber = strconv.Itoa(index + 1)
	}

	item.SKU = normalizeSKU(asString(firstPresent(raw, "sku")), index, logger)
	item.Description = asString(firstPresent(raw, "description"))

	item.HTSCode = asString(firstPresent(raw, "hts_code"))
	if item.HTSCode == "" {
		item.HTSCode = "N/A"
	}

	item.CountryOfOrigin = asString(firstPresent(raw, "country_of_origin"))
	if item.CountryOfOrigin == "" {
		item.CountryOfOrigin = docCtx.CountryOfOrigin
	}
	if item.CountryOfOrigin == "" {
		item.CountryOfOrigin = "N/A"
	}

	item.PackageCount = asString(firstPresent(raw, "package_count"))

	// Valid source strings are kept verbatim to preserve their exact
	// formatting ("2.00" stays "2.00").
	var qty, price float64
	item.Quantity, qty = numericString(firstPresent(raw, "quantity"), 1, true)
	item.UnitPrice, price = numericString(firstPresent(raw, "unit_price"), 0, false)

	item.NetWeight = nonNegative(asFloat(firstPresent(raw, "net_weight"), 0))
	item.GrossWeight = nonNegative(asFloat(firstPresent(raw, "gross_weight"), 0))

	item.Value = normalizeValue(raw, qty, price, docCtx.Currency)

	item.UnitOfMeasure = asString(firstPresent(raw, "unit_of_measure"))
	if item.UnitOfMeasure == "" {
		item.UnitOfMeasure = "EA"
	}

	if conf, ok := boundedConfidence(raw["confidence_score"]); ok {
		item.ConfidenceScore = &conf
	} else if conf, ok := boundedConfidence(raw["confidence"]); ok {
		item.ConfidenceScore = &conf
	} else if raw["confidence_score"] != nil {
		logger.Warn("extract.normalize.invalid_confidence", "item", index+1, "value", raw["confidence_score"])
	}

	item.FieldConfidence = normalizeFieldConfidence(raw["field_confidence"])
	item.ValidationStatus = normalizeValidationStatus(raw["validation_status"], index, logger)
	item.ValidationChecks = normalizeValidationChecks(raw["validation_checks"])

	return item
}

// normalizeSKU enforces the placeholder policy: a pure-digit string, a
// row-label like "Item 3", a value equal to the item's own position (plain or
// zero-padded), or a synthesized "ITEM-N" all become the empty string. The
// system never invents a SKU.
func normalizeSKU(raw string, index int, logger *slog.Logger) string {
	sku := strings.TrimSpace(raw)
	if sku == "" {
		return ""
	}
	switch {
	case rePureDigits.MatchString(sku),
		reRowLabel.MatchString(sku),
		sku == strconv.Itoa(index+1),
		sku == fmt.Sprintf("%02d", index+1):
		logger.Warn("extract.normalize.sequential_sku_rejected", "item", index+1, "sku", sku)
		return ""
	case rePlaceholder.MatchString(sku):
		logger.Debug("extract.normalize.placeholder_sku_rejected", "item", index+1, "sku", sku)
		return ""
	}
	return sku
}

// normalizeValue preserves an upstream total verbatim when it already carries
// a currency prefix; otherwise quantity x unit_price formatted to two
// decimals with the document currency (default "$").
func normalizeValue(raw map[string]any, qty, price float64, currency string) string {
	if currency == "" {
		currency = "$"
	}

	original := firstPresent(raw, "value")
	if s, ok := original.(string); ok && reCurrencyStart.MatchString(s) {
		return s
	}

	total := nonNegative(asFloat(original, 0))
	if total == 0 {
		total = qty * price
	}
	return fmt.Sprintf("%s%.2f", currency, total)
}

func normalizeFieldConfidence(v any) map[string]float64 {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	out := map[string]float64{}
	for _, field := range confidenceFields {
		raw := m[field+"_confidence"]
		if raw == nil {
			raw = m[field]
		}
		if raw == nil {
			raw = m[strings.ToUpper(field)]
		}
		if conf, ok := boundedConfidence(raw); ok {
			out[field+"_confidence"] = conf
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func normalizeValidationStatus(v any, index int, logger *slog.Logger) string {
	if v == nil {
		return ""
	}
	status := strings.ToLower(asString(v))
	if _, ok := validationStatuses[status]; ok {
		return status
	}
	logger.Warn("extract.normalize.invalid_validation_status", "item", index+1, "value", v)
	return ""
}

func normalizeValidationChecks(v any) map[string]string {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	out := map[string]string{}
	for _, name := range validationCheckNames {
		if raw, ok := m[name]; ok && raw != nil {
			status := strings.ToLower(asString(raw))
			if _, ok := validationStatuses[status]; ok {
				out[name] = status
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// summarize computes the aggregate confidence and validation counts attached
// to the result metadata, not to individual items.
func summarize(items []LineItem) map[string]any {
	summary := map[string]any{
		"total_items": len(items),
	}

	var confs []float64
	var statuses []string
	for _, it := range items {
		if it.ConfidenceScore != nil {
			confs = append(confs, *it.ConfidenceScore)
		}
		if it.ValidationStatus != "" {
			statuses = append(statuses, it.ValidationStatus)
		}
	}
	summary["items_with_confidence"] = len(confs)
	summary["items_with_validation"] = len(statuses)

	if len(confs) > 0 {
		var sum float64
		var high, medium, low int
		for _, c := range confs {
			sum += c
			switch {
			case c >= 0.90:
				high++
			case c >= 0.70:
				medium++
			default:
				low++
			}
		}
		summary["confidence_summary"] = map[string]any{
			"average_confidence":      sum / float64(len(confs)),
			"high_confidence_items":   high,
			"medium_confidence_items": medium,
			"low_confidence_items":    low,
		}
	}

	if len(statuses) > 0 {
		var passed, warning, failed int
		for _, s := range statuses {
			switch s {
			case "passed":
				passed++
			case "warning":
				warning++
			case "failed":
				failed++
			}
		}
		summary["validation_summary"] = map[string]any{
			"passed_items":  passed,
			"warning_items": warning,
			"failed_items":  failed,
		}
	}
	return summary
}

// firstPresent resolves a target field from its alias table: the first alias
// present with a non-nil, non-empty value wins.
func firstPresent(raw map[string]any, target string) any {
	for _, key := range fieldAliases[target] {
		if v, ok := raw[key]; ok && v != nil {
			if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
				continue
			}
			return v
		}
	}
	return nil
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return formatNumber(t)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", t))
	}
}

func asFloat(v any, fallback float64) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		s := strings.TrimSpace(t)
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
		return fallback
	default:
		return fallback
	}
}

// numericString resolves a numeric-as-string field: a source string that
// parses to a valid number is kept verbatim; a numeric source is rendered;
// anything else falls back. requirePositive rejects zero and negatives
// (quantity), otherwise only negatives are rejected (unit_price).
func numericString(v any, fallback float64, requirePositive bool) (string, float64) {
	valid := func(f float64) bool {
		if requirePositive {
			return f > 0
		}
		return f >= 0
	}

	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if f, err := strconv.ParseFloat(s, 64); err == nil && valid(f) {
			return s, f
		}
	case float64:
		if valid(t) {
			return formatNumber(t), t
		}
	}
	return formatNumber(fallback), fallback
}

// boundedConfidence accepts a confidence score only when it is numeric and
// inside [0, 1].
func boundedConfidence(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if f < 0 || f > 1 {
		return 0, false
	}
	return f, true
}

func nonNegative(f float64) float64 {
	if f < 0 {
		return 0
	}
	return f
}

// formatNumber renders a float the way it would naturally be written: no
// trailing zeros, no exponent.
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
