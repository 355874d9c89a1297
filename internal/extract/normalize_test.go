package extract

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func validFields() Fields {
	return Fields{
		KeyExternalRef:      "401422121258",
		KeySenderID:         "owner@okbank",
		KeyCounterpartyID:   "alice@okbank",
		KeyCounterpartyName: "Alice",
		KeyAmount:           "50.00",
		KeyOccurredAt:       "2024-01-01T10:00:00Z",
	}
}

func TestNormalizeCompleteGroup(t *testing.T) {
	n := NewNormalizer("02/01/2006 15:04:05")

	rec, ok := n.Normalize(validFields(), time.Time{})
	if !ok {
		t.Fatal("expected a record")
	}
	if rec.ExternalRef != "401422121258" {
		t.Errorf("external_ref = %q", rec.ExternalRef)
	}
	if !rec.Amount.Equal(decimal.RequireFromString("50.00")) {
		t.Errorf("amount = %s, want 50.00", rec.Amount)
	}
	want := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	if !rec.OccurredAt.Equal(want) {
		t.Errorf("occurred_at = %v, want %v", rec.OccurredAt, want)
	}
}

func TestNormalizePreservesLeadingZeros(t *testing.T) {
	fields := validFields()
	fields[KeyExternalRef] = "0042"

	n := NewNormalizer("")
	rec, ok := n.Normalize(fields, time.Time{})
	if !ok {
		t.Fatal("expected a record")
	}
	if rec.ExternalRef != "0042" {
		t.Errorf("external_ref = %q, leading zeros must survive", rec.ExternalRef)
	}
}

func TestNormalizeDropsIncompleteGroups(t *testing.T) {
	n := NewNormalizer("")

	for key := FieldKey(0); key < numFieldKeys; key++ {
		fields := validFields()
		delete(fields, key)
		if _, ok := n.Normalize(fields, time.Time{}); ok {
			t.Errorf("record produced with %s missing", key)
		}

		fields = validFields()
		fields[key] = "   "
		if _, ok := n.Normalize(fields, time.Time{}); ok {
			t.Errorf("record produced with blank %s", key)
		}
	}
}

func TestNormalizeDropsBadAmount(t *testing.T) {
	fields := validFields()
	fields[KeyAmount] = "fifty rupees"

	n := NewNormalizer("")
	if _, ok := n.Normalize(fields, time.Time{}); ok {
		t.Fatal("record produced from an unparseable amount")
	}
}

func TestNormalizeAcceptsGroupedAmount(t *testing.T) {
	fields := validFields()
	fields[KeyAmount] = "1,250.75"

	n := NewNormalizer("")
	rec, ok := n.Normalize(fields, time.Time{})
	if !ok {
		t.Fatal("expected a record")
	}
	if !rec.Amount.Equal(decimal.RequireFromString("1250.75")) {
		t.Errorf("amount = %s, want 1250.75", rec.Amount)
	}
}

func TestNormalizeParsesConfiguredLayout(t *testing.T) {
	fields := validFields()
	fields[KeyOccurredAt] = "02/01/2024 15:04:05"

	n := NewNormalizer("02/01/2006 15:04:05")
	rec, ok := n.Normalize(fields, time.Time{})
	if !ok {
		t.Fatal("expected a record")
	}
	want := time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)
	if !rec.OccurredAt.Equal(want) {
		t.Errorf("occurred_at = %v, want %v", rec.OccurredAt, want)
	}
}

func TestNormalizeFallsBackToMessageDate(t *testing.T) {
	fields := validFields()
	fields[KeyOccurredAt] = "yesterday-ish"

	msgDate := time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC)
	n := NewNormalizer("02/01/2006 15:04:05")
	rec, ok := n.Normalize(fields, msgDate)
	if !ok {
		t.Fatal("expected a record")
	}
	if !rec.OccurredAt.Equal(msgDate) {
		t.Errorf("occurred_at = %v, want message date %v", rec.OccurredAt, msgDate)
	}
}

func TestNormalizeDropsUnparseableDate(t *testing.T) {
	fields := validFields()
	fields[KeyOccurredAt] = "yesterday-ish"

	n := NewNormalizer("02/01/2006 15:04:05")
	if _, ok := n.Normalize(fields, time.Time{}); ok {
		t.Fatal("record produced with no usable timestamp")
	}
}
