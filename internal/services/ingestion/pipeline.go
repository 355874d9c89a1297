package ingestion

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"upi-ledger-backend/internal/extract"
	"upi-ledger-backend/internal/models"
)

// ResolveCounterparties picks, per external counterparty id, the display
// name of the batch's most recent record (ties broken by batch order,
// first seen wins), upserts the counterparty table and returns the
// external id → surrogate id mapping read back from the store.
//
// The upsert overwrites display names unconditionally. Within a run the
// recency ranking keeps names fresh; across runs a later run over older
// cached messages can regress a stored name. Known limitation.
func (s *Service) ResolveCounterparties(batch Batch) (map[string]uuid.UUID, error) {
	latest := make(map[string]extract.Record)
	var order []string
	for _, rec := range batch.Records {
		best, seen := latest[rec.CounterpartyID]
		if !seen {
			latest[rec.CounterpartyID] = rec
			order = append(order, rec.CounterpartyID)
			continue
		}
		if rec.OccurredAt.After(best.OccurredAt) {
			latest[rec.CounterpartyID] = rec
		}
	}

	now := time.Now().UTC()
	rows := make([]models.Counterparty, 0, len(order))
	for _, externalID := range order {
		rows = append(rows, models.Counterparty{
			ID:          uuid.New(),
			ExternalID:  externalID,
			DisplayName: latest[externalID].CounterpartyName,
			UserID:      batch.UserID,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	if err := s.counterparties.Upsert(rows); err != nil {
		return nil, fmt.Errorf("upsert counterparties: %w", err)
	}

	stored, err := s.counterparties.FindByExternalIDs(batch.UserID, order)
	if err != nil {
		return nil, fmt.Errorf("read back counterparties: %w", err)
	}

	mapping := make(map[string]uuid.UUID, len(stored))
	for _, row := range stored {
		mapping[row.ExternalID] = row.ID
	}

	var missing []string
	for _, externalID := range order {
		if _, ok := mapping[externalID]; !ok {
			missing = append(missing, externalID)
		}
	}
	if len(missing) > 0 {
		return nil, &ResolutionError{Missing: missing}
	}

	return mapping, nil
}

// BuildTransactions classifies each record as incoming or outgoing
// against the owner's identifiers, attaches the resolved counterparty
// and emits the upsert-ready rows. A record whose counterparty is absent
// from the mapping is an invariant violation and fails the run.
func (s *Service) BuildTransactions(batch Batch, mapping map[string]uuid.UUID) ([]models.Transaction, error) {
	now := time.Now().UTC()
	rows := make([]models.Transaction, 0, len(batch.Records))
	// A single upsert statement cannot touch the same conflict key
	// twice, so duplicate references collapse to the last occurrence.
	byRef := make(map[string]int)
	for _, rec := range batch.Records {
		counterpartyID, ok := mapping[rec.CounterpartyID]
		if !ok {
			return nil, fmt.Errorf("counterparty %q missing from resolution mapping", rec.CounterpartyID)
		}

		amount := rec.Amount
		if s.ownIDs != nil && s.ownIDs.MatchString(rec.CounterpartyID) {
			// Money moved out of the tracked account.
			amount = amount.Neg()
		}

		row := models.Transaction{
			ID:             uuid.New(),
			ExternalRef:    rec.ExternalRef,
			Amount:         amount,
			SenderID:       rec.SenderID,
			CounterpartyID: counterpartyID,
			OccurredAt:     rec.OccurredAt,
			UserID:         batch.UserID,
			CreatedAt:      now,
			UpdatedAt:      now,
		}

		if i, seen := byRef[rec.ExternalRef]; seen {
			rows[i] = row
			continue
		}
		byRef[rec.ExternalRef] = len(rows)
		rows = append(rows, row)
	}
	return rows, nil
}
