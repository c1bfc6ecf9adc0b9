package extract

// Request is the input to one pipeline invocation. Immutable once built.
type Request struct {
	Document           []byte
	DocumentType       string
	CustomerNumber     string
	CustomInstructions string
	ExtractFields      []string
	ClearCache         bool
}

// LineItem is the canonical normalized form returned to callers. Numeric-ish
// fields stay strings to preserve leading zeros and exact formatting; weights
// are numbers in kg.
type LineItem struct {
	ItemNumber       string             `json:"item_number"`
	SKU              string             `json:"sku"`
	Description      string             `json:"description"`
	HTSCode          string             `json:"hts_code"`
	CountryOfOrigin  string             `json:"country_of_origin"`
	PackageCount     string             `json:"package_count,omitempty"`
	Quantity         string             `json:"quantity"`
	NetWeight        float64            `json:"net_weight"`
	GrossWeight      float64            `json:"gross_weight"`
	UnitPrice        string             `json:"unit_price"`
	Value            string             `json:"value"`
	UnitOfMeasure    string             `json:"unit_of_measure"`
	ConfidenceScore  *float64           `json:"confidence_score,omitempty"`
	FieldConfidence  map[string]float64 `json:"field_confidence,omitempty"`
	ValidationStatus string             `json:"validation_status,omitempty"`
	ValidationChecks map[string]string  `json:"validation_checks,omitempty"`
}

// Result is the final output of the pipeline.
type Result struct {
	LineItems []LineItem     `json:"line_items"`
	Metadata  map[string]any `json:"metadata"`
	OtherData map[string]any `json:"other_data"`
	RunID     string         `json:"run_id,omitempty"`
	Status    string         `json:"status,omitempty"`
	Note      string         `json:"note,omitempty"`
}
