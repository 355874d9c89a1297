package ingestion

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoTransactions is returned by IncrementalSync when the user has no
// stored transactions to take a sync cursor from.
var ErrNoTransactions = errors.New("no transactions found")

// ResolutionError means the store read-back after a counterparty upsert
// omitted external ids that were just written. The store is in an
// inconsistent state; the run must not continue.
type ResolutionError struct {
	Missing []string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("counterparty read-back missing external ids: %s", strings.Join(e.Missing, ", "))
}
