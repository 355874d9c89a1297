package extract

// FieldKey identifies one recognized field of a payment notification.
// Labels found in mail bodies are mapped onto these keys by a Schema;
// anything outside the recognized set is discarded at extraction time.
type FieldKey int

const (
	KeyExternalRef FieldKey = iota
	KeySenderID
	KeyCounterpartyID
	KeyCounterpartyName
	KeyAmount
	KeyOccurredAt

	numFieldKeys
)

func (k FieldKey) String() string {
	switch k {
	case KeyExternalRef:
		return "external_ref"
	case KeySenderID:
		return "sender_id"
	case KeyCounterpartyID:
		return "counterparty_id"
	case KeyCounterpartyName:
		return "counterparty_name"
	case KeyAmount:
		return "amount"
	case KeyOccurredAt:
		return "occurred_at"
	}
	return "unknown"
}

// Schema describes one notification template: which HTML elements carry
// transaction fields, which text qualifies or disqualifies an element,
// and how body labels map onto field keys. The transaction and expense
// templates are the same pipeline over differently labelled roles.
type Schema struct {
	// Marker selects the elements holding key:value lines.
	Marker string

	// RequiredTag must appear in an element's text; elements without it
	// are rejected whole.
	RequiredTag string

	// FailedTag disqualifies an element; failed payments never surface.
	FailedTag string

	Labels map[string]FieldKey
}

// UPISchema matches the bank's UPI transaction alerts.
func UPISchema() Schema {
	return Schema{
		Marker:      "span.gmailmsg",
		RequiredTag: "UPI Ref. No.",
		FailedTag:   "Transaction Status: FAILED",
		Labels: map[string]FieldKey{
			"UPI Ref. No.":     KeyExternalRef,
			"From VPA":         KeySenderID,
			"To VPA":           KeyCounterpartyID,
			"Payee Name":       KeyCounterpartyName,
			"Amount":           KeyAmount,
			"Transaction Date": KeyOccurredAt,
		},
	}
}

// ExpenseSchema matches the expense-report variant of the same alerts,
// where the counter-party is labelled as the payee's payer/payee pair.
func ExpenseSchema() Schema {
	s := UPISchema()
	s.Labels = map[string]FieldKey{
		"UPI Ref. No.":     KeyExternalRef,
		"Payer VPA":        KeySenderID,
		"Payee VPA":        KeyCounterpartyID,
		"Payee Name":       KeyCounterpartyName,
		"Amount":           KeyAmount,
		"Transaction Date": KeyOccurredAt,
	}
	return s
}

// SchemaByName resolves the configured template name, defaulting to UPI.
func SchemaByName(name string) Schema {
	if name == "expense" {
		return ExpenseSchema()
	}
	return UPISchema()
}
