package extract

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Record is one fully typed payment notification. Every field is present
// and non-empty; partial records are never produced. OccurredAt is UTC.
// ExternalRef stays a string so leading zeros and large reference
// numbers survive untouched.
type Record struct {
	ExternalRef      string
	SenderID         string
	CounterpartyID   string
	CounterpartyName string
	Amount           decimal.Decimal
	OccurredAt       time.Time
}

type Normalizer struct {
	layout string
}

// NewNormalizer builds a normalizer whose fallback timestamp layout
// matches the deployment's message templates (day/month/year).
func NewNormalizer(layout string) *Normalizer {
	return &Normalizer{layout: layout}
}

// Normalize converts one field group into a typed record. msgDate is the
// message's header date, used when the group carries no parseable
// timestamp of its own. The second return is false when the group cannot
// yield a complete record; normalization never fails a run.
func (n *Normalizer) Normalize(fields Fields, msgDate time.Time) (Record, bool) {
	for key := FieldKey(0); key < numFieldKeys; key++ {
		if strings.TrimSpace(fields[key]) == "" {
			return Record{}, false
		}
	}

	amount, err := decimal.NewFromString(strings.ReplaceAll(fields[KeyAmount], ",", ""))
	if err != nil {
		return Record{}, false
	}

	occurredAt, ok := n.parseTime(fields[KeyOccurredAt], msgDate)
	if !ok {
		return Record{}, false
	}

	return Record{
		ExternalRef:      fields[KeyExternalRef],
		SenderID:         fields[KeySenderID],
		CounterpartyID:   fields[KeyCounterpartyID],
		CounterpartyName: fields[KeyCounterpartyName],
		Amount:           amount,
		OccurredAt:       occurredAt,
	}, true
}

func (n *Normalizer) parseTime(value string, msgDate time.Time) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), true
	}
	if n.layout != "" {
		if t, err := time.Parse(n.layout, value); err == nil {
			return t.UTC(), true
		}
	}
	if !msgDate.IsZero() {
		return msgDate.UTC(), true
	}
	return time.Time{}, false
}
