package instructions

// Baseline is the instruction block sent with every extraction request. It
// describes the full target schema, the currency-symbol policy, SKU detection
// rules, country-of-origin inference priority, and multi-language header
// synonyms. Customer and one-off blocks are appended after it by Build.
const Baseline = `Extract structured data from commercial invoices with comprehensive coverage and precision.

=== COMPREHENSIVE FIELD COVERAGE ===

PARTIES:
- shipper: { name, address: { street, city, state, postal_code, country }, contact: { phone, email } }
- consignee: { name, address: { street, city, state, postal_code, country }, contact: { phone, email } }
- seller: { name, address, tax_id }
- buyer: { name, address, tax_id }

ROUTING:
- port_of_loading, port_of_discharge, place_of_delivery
- carrier, vessel_flight, bill_of_lading
- container_numbers: Array of container IDs

FINANCIALS:
- invoice_number, invoice_date, payment_terms
- currency: Currency code (USD, EUR, etc.)
- bank_information: { bank_name, account_number, swift_code }
- totals: subtotal, tax, freight, insurance, gross_invoice_value — all strings WITH currency symbol (e.g., "$476.00")

=== LINE ITEMS ===

CRITICAL: EXTRACT EVERY SINGLE LINE ITEM FROM ALL PAGES.
- DO NOT STOP after a few items. If the invoice has 50 items, extract all 50.
- Process ALL text from ALL pages.
- Sequential numbering must be continuous (1, 2, 3...).

LINE ITEM FIELDS (all as STRINGS to preserve leading zeros):
- item_number: String (e.g., "1", "2", "3")
- sku: String - ONLY use ACTUAL part numbers (e.g., "COMP001", "214N53").
  If no part number exists, leave SKU EMPTY (empty string "").
  NEVER use sequential numbers like "1", "2", "Item 1" as SKU.
- description: Complete product description
- hts_code: String preserving leading zeros (e.g., "0123.45.6789").
  NOTE: "Commodity Code" is the same field as HTS Code.
- country_of_origin: 2-letter ISO code (use the inference priority below)
- quantity: String (e.g., "100") - REMOVE currency symbols and units
- unit_price: String (e.g., "45.20") - REMOVE currency symbols
- value: String WITH currency symbol (e.g., "$226.00") - PRESERVE currency
- net_weight: Number in kg (recognize "Kilos Netos"/"Peso Neto")
- gross_weight: Number in kg (recognize "Kilos Brutos"/"Peso Bruto")
- unit_of_measure: String (default "EA")

=== CURRENCY SYMBOL RULES ===

REMOVE currency symbols from quantity ("100" not "100 PCS") and unit_price ("45.20" not "$45.20").
PRESERVE currency symbols in value, subtotal, gross_invoice_value and all totals fields.

=== COUNTRY OF ORIGIN INFERENCE ===

Priority order:
1. Explicit COO on the line item (highest priority)
2. Global COO statement ("Country of Origin: Germany" applies to all items)
3. Infer from shipper/seller address ("Guadalupe, N.L., Mexico" means "MX")
4. "N/A" only as a last resort

=== SKU DETECTION RULES ===

USE actual part numbers: "COMP001", "214N53", "ABC-12345". They contain letters or are complex alphanumeric.
Look for headers: Part No., P/N, SKU, Article No., Material No., Product Code.
NEVER USE: "1", "2", "3" (row counters), "Item 1" (row labels), "001" (sequential numbering).
If no part number exists, use the empty string "".

=== MULTI-LANGUAGE SUPPORT ===

Recognize column headers in Spanish ("Descripción", "Cantidad", "Kilos Brutos"),
Portuguese ("Descrição", "Quantidade", "Peso Bruto"), German ("Beschreibung", "Menge",
"Bruttogewicht"), French ("Description", "Quantité", "Poids Brut") and common Chinese invoice terms.

Recognize synonyms automatically:
- Part Number = P/N = SKU = Material # = Product Code = Article No.
- Quantity = Qty = QTY = Shipped Qty = No. of units = Cantidad
- Unit Price = U/P = Price/Unit = Rate = Unit Cost = Precio Unitario
- HTS Code = Commodity Code = HS Code = Tariff Code = Harmonized Code

=== CONFIDENCE SCORING ===

For each extracted line item provide:
- confidence_score: overall confidence (0.0-1.0, 1.0 = highest)
- field_confidence: per-field confidence (sku_confidence, description_confidence,
  hts_code_confidence, country_of_origin_confidence, quantity_confidence,
  unit_price_confidence, value_confidence, net_weight_confidence, gross_weight_confidence)

Guidelines: 0.90-1.00 data clearly visible and unambiguous; 0.70-0.89 visible with some
ambiguity; 0.50-0.69 inferred or partially visible; below 0.50 significant uncertainty.

=== VALIDATION CHECKS ===

For each line item include:
- validation_status: "passed", "warning" or "failed"
- validation_checks: completeness_check, data_type_check, currency_check,
  calculation_check, sku_check, hts_format_check, coo_format_check, weight_check —
  each "passed", "warning" or "failed"

Rules to check: SKU is an actual part number or empty string; numeric fields are strings
(except weights); currency symbols removed from quantity/unit_price and preserved in value;
HTS codes preserve leading zeros; country codes are 2 letters or "N/A"; no null values;
value = quantity x unit_price within 0.01 tolerance.

=== OUTPUT FORMAT ===

Return valid JSON with all party information, routing details, financial totals, and a
line_items array containing ALL items from ALL pages, each with the fields above.
Always return valid JSON.`
