// Package mailio owns the mail surface of the pipeline: parsing the
// inbound message, choosing the answering assistant, composing the
// reply, and moving mail over SMTP and IMAP.
package mailio

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-message"
	"github.com/emersion/go-message/mail"
)

// Inbound is one parsed incoming email.
type Inbound struct {
	// Sender is the decoded From header, display name included.
	Sender string

	// Recipient is the decoded To header.
	Recipient string

	// Subject is the decoded subject, "No subject" when missing.
	Subject string

	// Body is the text content: concatenated text/plain parts, or text
	// extracted from the first text/html part when no plain part exists.
	Body string
}

// Parse extracts sender, recipient, subject, and text body from a raw
// RFC 5322 message.
//
// mail.CreateReader and NextPart may return both a usable value AND an
// error when the message uses an unknown charset. Those are tolerated:
// slightly garbled text still makes a workable prompt.
func Parse(raw []byte) (*Inbound, error) {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil && !message.IsUnknownCharset(err) {
		return nil, fmt.Errorf("read message: %w", err)
	}
	if mr == nil {
		return nil, fmt.Errorf("read message: %w", err)
	}

	in := &Inbound{}
	in.Sender, _ = mr.Header.Text("From")
	in.Recipient, _ = mr.Header.Text("To")
	if subject, err := mr.Header.Subject(); err == nil && subject != "" {
		in.Subject = subject
	} else {
		in.Subject = "No subject"
	}

	var plain strings.Builder
	var htmlPart string

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil && !message.IsUnknownCharset(err) {
			// Structural damage past this point; keep what we have.
			break
		}
		if part == nil {
			continue
		}

		var ctype string
		switch h := part.Header.(type) {
		case *mail.InlineHeader:
			ctype, _, _ = h.ContentType()
		default:
			// Attachments never contribute to the prompt.
			continue
		}

		switch ctype {
		case "text/plain":
			b, err := io.ReadAll(part.Body)
			if err != nil {
				continue
			}
			plain.Write(b)
		case "text/html":
			if htmlPart != "" {
				continue
			}
			b, err := io.ReadAll(part.Body)
			if err != nil {
				continue
			}
			htmlPart = string(b)
		}
	}

	body := strings.TrimSpace(plain.String())
	if body == "" && htmlPart != "" {
		body = htmlToText(htmlPart)
	}
	in.Body = body

	return in, nil
}
