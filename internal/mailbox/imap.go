package mailbox

import (
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"

	"upi-ledger-backend/internal/config"
	"upi-ledger-backend/internal/logger"
)

// IMAPSource reads messages from one IMAP mailbox over TLS.
type IMAPSource struct {
	client  *client.Client
	mailbox string
	log     *logger.Entry
}

func DialIMAP(cfg config.IMAPConfig) (*IMAPSource, error) {
	c, err := client.DialTLS(cfg.Addr, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", cfg.Addr, err)
	}
	if err := c.Login(cfg.Username, cfg.Password); err != nil {
		c.Logout()
		return nil, fmt.Errorf("login %s: %w", cfg.Username, err)
	}

	return &IMAPSource{
		client:  c,
		mailbox: cfg.Mailbox,
		log:     logger.GetLogger().WithComponent("mailbox"),
	}, nil
}

func (s *IMAPSource) ListMessageIDs(since *time.Time) ([]uint32, error) {
	if _, err := s.client.Select(s.mailbox, true); err != nil {
		return nil, fmt.Errorf("select %s: %w", s.mailbox, err)
	}

	criteria := imap.NewSearchCriteria()
	if since != nil {
		criteria.Since = *since
	}

	ids, err := s.client.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", s.mailbox, err)
	}
	return ids, nil
}

func (s *IMAPSource) FetchMessage(id uint32) ([]byte, error) {
	seqset := new(imap.SeqSet)
	seqset.AddNum(id)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{section.FetchItem()}

	messages := make(chan *imap.Message, 1)
	done := make(chan error, 1)
	go func() {
		done <- s.client.Fetch(seqset, items, messages)
	}()

	var raw []byte
	for msg := range messages {
		body := msg.GetBody(section)
		if body == nil {
			continue
		}
		b, err := io.ReadAll(body)
		if err != nil {
			s.log.WithError(err).WithFields(logger.Fields{"id": id}).Warn("unreadable message body")
			continue
		}
		raw = b
	}

	if err := <-done; err != nil {
		return nil, fmt.Errorf("fetch message %d: %w", id, err)
	}
	return raw, nil
}

func (s *IMAPSource) Close() error {
	return s.client.Logout()
}
