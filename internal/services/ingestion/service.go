package ingestion

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"upi-ledger-backend/internal/extract"
	"upi-ledger-backend/internal/logger"
	"upi-ledger-backend/internal/mailbox"
	"upi-ledger-backend/internal/models"
)

// CounterpartyStore persists counterparty identities.
type CounterpartyStore interface {
	Upsert(rows []models.Counterparty) error
	FindByExternalIDs(userID uuid.UUID, externalIDs []string) ([]models.Counterparty, error)
	DeleteByUser(userID uuid.UUID) error
}

// TransactionStore persists transactions.
type TransactionStore interface {
	Upsert(rows []models.Transaction) error
	CountByUser(userID uuid.UUID) (int64, error)
	LatestOccurredAt(userID uuid.UUID) (*time.Time, error)
	DeleteByUser(userID uuid.UUID) error
}

// RunStore records ingestion run audit rows.
type RunStore interface {
	Save(run *models.IngestionRun) error
}

type Config struct {
	OwnIDs       []string
	FetchWorkers int
}

// Service runs the mail-to-transaction pipeline: assemble a batch from
// the mailbox, resolve counterparties, build sign-normalized
// transactions and upsert them.
type Service struct {
	mail           mailbox.Source
	extractor      *extract.Extractor
	normalizer     *extract.Normalizer
	counterparties CounterpartyStore
	transactions   TransactionStore
	runs           RunStore
	ownIDs         *regexp.Regexp
	fetchWorkers   int
	log            *logger.Entry
}

func NewService(
	mail mailbox.Source,
	extractor *extract.Extractor,
	normalizer *extract.Normalizer,
	counterparties CounterpartyStore,
	transactions TransactionStore,
	runs RunStore,
	cfg Config,
) *Service {
	var ownIDs *regexp.Regexp
	if len(cfg.OwnIDs) > 0 {
		quoted := make([]string, len(cfg.OwnIDs))
		for i, id := range cfg.OwnIDs {
			quoted[i] = regexp.QuoteMeta(id)
		}
		ownIDs = regexp.MustCompile(strings.Join(quoted, "|"))
	}

	workers := cfg.FetchWorkers
	if workers <= 0 {
		workers = 1
	}

	return &Service{
		mail:           mail,
		extractor:      extractor,
		normalizer:     normalizer,
		counterparties: counterparties,
		transactions:   transactions,
		runs:           runs,
		ownIDs:         ownIDs,
		fetchWorkers:   workers,
		log:            logger.GetLogger().WithComponent("ingestion"),
	}
}

// Batch is the ordered record set of one ingestion run, scoped to one
// user. Order matters only for deterministic tie-breaking during
// counterparty resolution.
type Batch struct {
	UserID  uuid.UUID
	Records []extract.Record
}

type Summary struct {
	Messages       int `json:"messages"`
	Records        int `json:"records"`
	Counterparties int `json:"counterparties"`
}

// Run executes one full pipeline pass for the user, recording an
// IngestionRun audit row around it. An empty mailbox result is success
// with zero records, not an error.
func (s *Service) Run(userID uuid.UUID, since *time.Time, mode string) (*Summary, error) {
	run := &models.IngestionRun{
		ID:        uuid.New(),
		UserID:    userID,
		Mode:      mode,
		Status:    "running",
		StartedAt: time.Now().UTC(),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.runs.Save(run); err != nil {
		return nil, fmt.Errorf("record run: %w", err)
	}

	summary, err := s.execute(userID, since)

	now := time.Now().UTC()
	run.CompletedAt = &now
	if err != nil {
		run.Status = "failed"
		run.Details, _ = json.Marshal(map[string]string{"error": err.Error()})
	} else {
		run.Status = "completed"
		run.MessageCount = summary.Messages
		run.RecordCount = summary.Records
		run.Details, _ = json.Marshal(summary)
	}
	if serr := s.runs.Save(run); serr != nil {
		s.log.WithError(serr).Warn("failed to finalize ingestion run row")
	}

	return summary, err
}

func (s *Service) execute(userID uuid.UUID, since *time.Time) (*Summary, error) {
	ids, err := s.mail.ListMessageIDs(since)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	batch := s.Assemble(userID, ids)
	if len(batch.Records) == 0 {
		return &Summary{Messages: len(ids)}, nil
	}

	mapping, err := s.ResolveCounterparties(batch)
	if err != nil {
		return nil, err
	}

	txs, err := s.BuildTransactions(batch, mapping)
	if err != nil {
		return nil, err
	}

	if err := s.transactions.Upsert(txs); err != nil {
		return nil, fmt.Errorf("upsert transactions: %w", err)
	}

	return &Summary{
		Messages:       len(ids),
		Records:        len(txs),
		Counterparties: len(mapping),
	}, nil
}

// Assemble fetches and extracts every message and concatenates the
// normalized records, in message-id order, into one batch. Messages are
// independent, so fetch and extraction run in parallel; a message that
// cannot be fetched or decoded is skipped, never fatal. Resolution and
// building only start once the whole batch is assembled, because name
// tie-breaking and sign classification are batch-global.
func (s *Service) Assemble(userID uuid.UUID, ids []uint32) Batch {
	results := make([][]extract.Record, len(ids))

	var g errgroup.Group
	g.SetLimit(s.fetchWorkers)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			raw, err := s.mail.FetchMessage(id)
			if err != nil {
				s.log.WithError(err).WithFields(logger.Fields{"id": id}).Warn("skipping unfetchable message")
				return nil
			}
			if raw == nil {
				return nil
			}

			groups, msgDate, err := s.extractor.Extract(raw)
			if err != nil {
				s.log.WithError(err).WithFields(logger.Fields{"id": id}).Warn("skipping undecodable message")
				return nil
			}

			var records []extract.Record
			for _, fields := range groups {
				if rec, ok := s.normalizer.Normalize(fields, msgDate); ok {
					records = append(records, rec)
				}
			}
			results[i] = records
			return nil
		})
	}
	_ = g.Wait()

	batch := Batch{UserID: userID}
	for _, records := range results {
		batch.Records = append(batch.Records, records...)
	}
	return batch
}

// FullRefresh wipes the user's transactions and counterparties and
// re-ingests the whole mailbox.
func (s *Service) FullRefresh(userID uuid.UUID) (*Summary, error) {
	if err := s.transactions.DeleteByUser(userID); err != nil {
		return nil, fmt.Errorf("clear transactions: %w", err)
	}
	if err := s.counterparties.DeleteByUser(userID); err != nil {
		return nil, fmt.Errorf("clear counterparties: %w", err)
	}
	return s.Run(userID, nil, "full")
}

// IncrementalSync ingests messages dated on or after the day of the
// user's most recent stored transaction. Returns ErrNoTransactions when
// there is no cursor to sync from.
func (s *Service) IncrementalSync(userID uuid.UUID) (*Summary, error) {
	latest, err := s.transactions.LatestOccurredAt(userID)
	if err != nil {
		return nil, fmt.Errorf("latest transaction: %w", err)
	}
	if latest == nil {
		return nil, ErrNoTransactions
	}

	since := latest.UTC().Truncate(24 * time.Hour)
	return s.Run(userID, &since, "incremental")
}

func (s *Service) TransactionCount(userID uuid.UUID) (int64, error) {
	return s.transactions.CountByUser(userID)
}
