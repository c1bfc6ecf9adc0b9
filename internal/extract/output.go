package extract

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"
)

// resultNodeName is the workflow node whose output carries the line items.
const resultNodeName = "Run-Classified-Workflow"

// RawOutput is the located, parsed, page-merged output of a terminal run.
// Zero items with a Note is a legitimate outcome distinct from a protocol
// failure; ExtractOutput never returns an error for "nothing found".
type RawOutput struct {
	Items     []map[string]any
	Metadata  map[string]any
	OtherData map[string]any
	Note      string
}

// ExtractOutput locates the payload inside a terminal response body and
// flattens it into one ordered item list. The agent's output shape is not
// stable, so location and item collection each run an ordered matcher chain
// rather than nested conditionals.
func ExtractOutput(body map[string]any, logger *slog.Logger) RawOutput {
	if logger == nil {
		logger = slog.Default()
	}

	located := locateOutput(body)
	if located == nil {
		logger.Warn("extract.output.not_located", "keys", topKeys(body))
		return RawOutput{Note: "no output found in agent response"}
	}

	parsed := parseOutput(located, logger)

	for _, collect := range itemCollectors {
		if out, ok := collect(parsed); ok {
			logger.Info("extract.output.items_found", "count", len(out.Items))
			return out
		}
	}

	// Output located but no recognizable item container. Keep whatever
	// metadata is visible so the caller can diagnose.
	logger.Warn("extract.output.no_items", "output_type", typeName(parsed))
	out := RawOutput{Note: "no line items found in agent response; the document may not contain line items or the agent did not extract them"}
	if m, ok := parsed.(map[string]any); ok {
		out.Metadata = m
	}
	return out
}

// outputLocators are tried in order; the first non-nil result wins.
var outputLocators = []func(map[string]any) any{
	nodeOutput,
	rootField("output"),
	rootField("final_display_output"),
}

func locateOutput(body map[string]any) any {
	for _, locate := range outputLocators {
		if v := locate(body); v != nil {
			return v
		}
	}
	return nil
}

// nodeOutput digs into the workflow nodes array: prefer the node by known
// name, else the last node, else the first node carrying any output. Within
// the node, final_display_output wins over text.
func nodeOutput(body map[string]any) any {
	nodes, ok := body["nodes"].([]any)
	if !ok || len(nodes) == 0 {
		return nil
	}

	var chosen map[string]any
	for _, n := range nodes {
		if m, ok := n.(map[string]any); ok {
			if name, _ := m["name"].(string); name == resultNodeName {
				chosen = m
				break
			}
		}
	}
	if chosen == nil {
		if m, ok := nodes[len(nodes)-1].(map[string]any); ok {
			chosen = m
		}
	}
	if chosen == nil || chosen["output"] == nil {
		for _, n := range nodes {
			if m, ok := n.(map[string]any); ok && m["output"] != nil {
				chosen = m
				break
			}
		}
	}
	if chosen == nil {
		return nil
	}

	out, ok := chosen["output"].(map[string]any)
	if !ok {
		return chosen["output"]
	}
	if v := out["final_display_output"]; v != nil {
		return v
	}
	if v := out["text"]; v != nil {
		return v
	}
	return nil
}

func rootField(key string) func(map[string]any) any {
	return func(body map[string]any) any {
		return body[key]
	}
}

// parseOutput turns a string payload into structured data. Strict parse
// first; on failure undo one layer of escaping to recover double-encoded
// JSON; on failure keep the raw string so downstream fails explicitly
// instead of silently dropping data.
func parseOutput(v any, logger *slog.Logger) any {
	s, ok := v.(string)
	if !ok {
		return v
	}

	var parsed any
	if err := json.Unmarshal([]byte(s), &parsed); err == nil {
		return parsed
	}

	unescaped := strings.NewReplacer(`\"`, `"`, `\n`, "\n", `\\`, `\`).Replace(s)
	if err := json.Unmarshal([]byte(unescaped), &parsed); err == nil {
		logger.Debug("extract.output.parsed_after_unescape", "chars", len(s))
		return parsed
	}

	logger.Warn("extract.output.unparseable_string", "chars", len(s), "preview", preview(s, 200))
	return s
}

// itemCollectors are tried in order against the parsed output. Each returns
// (result, true) when it recognizes the shape.
var itemCollectors = []func(any) (RawOutput, bool){
	collectPages,
	collectFlat,
	collectDirectArray,
}

// collectPages merges an array of page objects. Item numbers are rewritten
// sequentially across the whole merged sequence, not per page, and
// metadata/other_data merge last-write-wins.
func collectPages(v any) (RawOutput, bool) {
	pages, ok := v.([]any)
	if !ok || len(pages) == 0 {
		return RawOutput{}, false
	}
	// A page without content (blank cover page) must not disqualify the
	// shape; later pages still carry items.
	first, ok := pages[0].(map[string]any)
	if !ok {
		return RawOutput{}, false
	}
	if _, hasContent := first["content"]; !hasContent {
		if _, hasNumber := first["page_number"]; !hasNumber {
			return RawOutput{}, false
		}
	}

	out := RawOutput{
		Metadata:  map[string]any{},
		OtherData: map[string]any{},
	}
	counter := 1
	pageNumbers := make([]any, 0, len(pages))

	for i, p := range pages {
		page, ok := p.(map[string]any)
		if !ok {
			continue
		}
		pageNumbers = append(pageNumbers, pageNumber(page, i))

		content, ok := page["content"].(map[string]any)
		var pageItems []any
		if ok {
			if items, ok := content["items"].([]any); ok {
				pageItems = items
			} else if items, ok := content["line_items"].([]any); ok {
				pageItems = items
			}
			mergeInto(out.Metadata, content["metadata"])
			mergeInto(out.OtherData, content["other_data"])
		} else if items, ok := page["content"].([]any); ok {
			pageItems = items
		}

		for _, it := range pageItems {
			item, ok := it.(map[string]any)
			if !ok {
				continue
			}
			renumbered := make(map[string]any, len(item)+1)
			for k, val := range item {
				renumbered[k] = val
			}
			renumbered["item_number"] = strconv.Itoa(counter)
			counter++
			out.Items = append(out.Items, renumbered)
		}
	}

	out.Metadata["total_pages_processed"] = len(pages)
	out.Metadata["total_items_extracted"] = len(out.Items)
	out.Metadata["pages_with_line_items"] = pageNumbers
	if len(out.Items) == 0 {
		out.Note = "no line items found across " + strconv.Itoa(len(pages)) + " page(s)"
	}
	return out, true
}

// collectFlat handles a flat object with line_items or items at the root.
func collectFlat(v any) (RawOutput, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return RawOutput{}, false
	}
	var items []any
	if arr, ok := m["line_items"].([]any); ok {
		items = arr
	} else if arr, ok := m["items"].([]any); ok {
		items = arr
	} else {
		return RawOutput{}, false
	}

	out := RawOutput{
		Metadata:  anyMap(m["metadata"]),
		OtherData: anyMap(m["other_data"]),
	}
	for _, it := range items {
		if item, ok := it.(map[string]any); ok {
			out.Items = append(out.Items, item)
		}
	}
	if len(out.Items) == 0 {
		out.Note = "line item container present but empty"
	}
	return out, true
}

// collectDirectArray treats the output itself as the item list when the
// first element looks item-shaped.
func collectDirectArray(v any) (RawOutput, bool) {
	arr, ok := v.([]any)
	if !ok || len(arr) == 0 {
		return RawOutput{}, false
	}
	first, ok := arr[0].(map[string]any)
	if !ok {
		return RawOutput{}, false
	}
	if _, hasSKU := first["sku"]; !hasSKU {
		if _, hasDesc := first["description"]; !hasDesc {
			return RawOutput{}, false
		}
	}

	out := RawOutput{Metadata: map[string]any{}, OtherData: map[string]any{}}
	for _, it := range arr {
		if item, ok := it.(map[string]any); ok {
			out.Items = append(out.Items, item)
		}
	}
	return out, true
}

func pageNumber(page map[string]any, index int) any {
	if n, ok := page["page_number"]; ok {
		return n
	}
	return index + 1
}

func mergeInto(dst map[string]any, src any) {
	if m, ok := src.(map[string]any); ok {
		for k, v := range m {
			dst[k] = v
		}
	}
}

func anyMap(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func topKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
		if len(keys) == 20 {
			break
		}
	}
	return keys
}

func typeName(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return "other"
	}
}

// preview truncates to at most n bytes without splitting a UTF-8 rune.
func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
