package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/emersion/go-message"
	gomail "github.com/emersion/go-message/mail"

	"upi-ledger-backend/internal/logger"
)

// ErrMalformedMessage means the raw bytes could not be parsed as a mail
// message at all. Missing or garbled fields inside an otherwise valid
// message are never an error; they degrade to fewer extracted fields.
var ErrMalformedMessage = errors.New("malformed mail message")

var (
	lineBreakRe = regexp.MustCompile(`<br\s*/?>`)
	markupRe    = regexp.MustCompile(`<[^>]*>`)
)

// Fields holds the recognized label values of one marker element.
type Fields map[FieldKey]string

type Extractor struct {
	schema Schema
	log    *logger.Entry
}

func NewExtractor(schema Schema) *Extractor {
	return &Extractor{
		schema: schema,
		log:    logger.GetLogger().WithComponent("extract"),
	}
}

// Extract walks every body part of one raw mail message and returns the
// field group of each qualifying marker element, along with the
// message's Date header normalized to UTC.
func (e *Extractor) Extract(raw []byte) ([]Fields, time.Time, error) {
	ent, err := message.Read(bytes.NewReader(raw))
	if err != nil && !message.IsUnknownCharset(err) {
		return nil, time.Time{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}

	var msgDate time.Time
	hdr := gomail.Header{Header: ent.Header}
	if d, derr := hdr.Date(); derr == nil && !d.IsZero() {
		msgDate = d.UTC()
	} else {
		e.log.Debug("message has no parseable Date header")
	}

	var groups []Fields
	walkParts(ent, func(body []byte) {
		groups = append(groups, e.scanPart(body, msgDate)...)
	})
	return groups, msgDate, nil
}

// walkParts visits the decoded body of every leaf part. Parts whose
// bodies cannot be decoded are skipped.
func walkParts(ent *message.Entity, fn func(body []byte)) {
	if mr := ent.MultipartReader(); mr != nil {
		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				// Truncated multipart; keep whatever was readable.
				break
			}
			walkParts(part, fn)
		}
		return
	}

	body, err := io.ReadAll(ent.Body)
	if err != nil || len(body) == 0 {
		return
	}
	fn(body)
}

// scanPart parses one body as HTML and collects fields from each marker
// element that carries the required tag and no failed-status tag.
func (e *Extractor) scanPart(body []byte, msgDate time.Time) []Fields {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	var groups []Fields
	doc.Find(e.schema.Marker).Each(func(_ int, sel *goquery.Selection) {
		text := sel.Text()
		if !strings.Contains(text, e.schema.RequiredTag) {
			return
		}
		if strings.Contains(text, e.schema.FailedTag) {
			return
		}

		markup, err := goquery.OuterHtml(sel)
		if err != nil {
			return
		}

		fields := Fields{}
		for _, line := range lineBreakRe.Split(markup, -1) {
			line = strings.TrimSpace(line)
			// A candidate line is plain text with a key:value separator.
			if strings.HasPrefix(line, "<") || !strings.Contains(line, ":") {
				continue
			}

			kv := strings.SplitN(line, ":", 2)
			key, ok := e.schema.Labels[strings.TrimSpace(kv[0])]
			if !ok {
				continue
			}
			if _, dup := fields[key]; dup {
				continue
			}

			fields[key] = strings.TrimSpace(markupRe.ReplaceAllString(kv[1], ""))
		}

		// The body's own date string is unreliable; the message Date
		// header is authoritative and replaces it outright.
		if len(fields) > 0 && !msgDate.IsZero() {
			fields[KeyOccurredAt] = msgDate.Format(time.RFC3339)
		}

		if len(fields) > 0 {
			groups = append(groups, fields)
		}
	})
	return groups
}
