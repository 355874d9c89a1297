package mailbox

import "time"

// Source lists and fetches raw mail messages. Message ids are opaque to
// callers; whatever the backend uses, an id obtained from
// ListMessageIDs can be passed to FetchMessage within the same run.
type Source interface {
	// ListMessageIDs returns the ids of candidate messages, optionally
	// restricted to messages dated on or after since.
	ListMessageIDs(since *time.Time) ([]uint32, error)

	// FetchMessage returns the raw bytes of one message, or nil when the
	// message is absent.
	FetchMessage(id uint32) ([]byte, error)
}
