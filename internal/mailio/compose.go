package mailio

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/yuin/goldmark"
)

// FallbackSender is the From address used when an assistant has no
// sender configured. Mail still needs a syntactically valid envelope.
const FallbackSender = "no_sender_found@douxx.tech"

// ComposeOptions describes one outbound reply.
type ComposeOptions struct {
	// From is the assistant's sender address. Empty falls back to
	// FallbackSender.
	From string

	// To is the reply recipient, usually the original From header.
	To string

	// Subject is the original message subject. The reply subject
	// becomes "Re: {Subject}", or "Automatic response" when empty.
	Subject string

	// Body is the reply text. It is sent verbatim as text/plain and
	// rendered as markdown for the text/html part.
	Body string

	// Signature is an optional HTML footer line for the HTML part.
	Signature string
}

// Compose builds the complete RFC 5322 reply as a multipart/alternative
// message with text/plain and text/html parts.
func Compose(opts ComposeOptions) ([]byte, error) {
	from := opts.From
	if from == "" {
		from = FallbackSender
	}
	subject := "Automatic response"
	if opts.Subject != "" {
		subject = "Re: " + opts.Subject
	}

	var h mail.Header
	h.SetDate(time.Now())
	if err := h.GenerateMessageID(); err != nil {
		return nil, fmt.Errorf("generate message-id: %w", err)
	}
	h.SetSubject(subject)

	fromAddr, err := mail.ParseAddress(from)
	if err != nil {
		return nil, fmt.Errorf("parse from address %q: %w", from, err)
	}
	h.SetAddressList("From", []*mail.Address{fromAddr})

	toAddr, err := mail.ParseAddress(opts.To)
	if err != nil {
		return nil, fmt.Errorf("parse to address %q: %w", opts.To, err)
	}
	h.SetAddressList("To", []*mail.Address{toAddr})

	var buf bytes.Buffer
	mw, err := mail.CreateWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("create mail writer: %w", err)
	}

	tw, err := mw.CreateInline()
	if err != nil {
		return nil, fmt.Errorf("create inline writer: %w", err)
	}

	var ph mail.InlineHeader
	ph.Set("Content-Type", "text/plain; charset=utf-8")
	pw, err := tw.CreatePart(ph)
	if err != nil {
		return nil, fmt.Errorf("create plain part: %w", err)
	}
	if _, err := io.WriteString(pw, opts.Body); err != nil {
		return nil, fmt.Errorf("write plain part: %w", err)
	}
	if err := pw.Close(); err != nil {
		return nil, fmt.Errorf("close plain part: %w", err)
	}

	htmlContent, err := htmlReply(opts.Body, opts.Signature)
	if err != nil {
		return nil, fmt.Errorf("render html part: %w", err)
	}

	var hh mail.InlineHeader
	hh.Set("Content-Type", "text/html; charset=utf-8")
	hw, err := tw.CreatePart(hh)
	if err != nil {
		return nil, fmt.Errorf("create html part: %w", err)
	}
	if _, err := io.WriteString(hw, htmlContent); err != nil {
		return nil, fmt.Errorf("write html part: %w", err)
	}
	if err := hw.Close(); err != nil {
		return nil, fmt.Errorf("close html part: %w", err)
	}

	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("close inline writer: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close mail writer: %w", err)
	}

	return buf.Bytes(), nil
}

// htmlReply renders the reply text as markdown inside a minimal HTML
// envelope, with the assistant signature as a muted footer.
func htmlReply(body, signature string) (string, error) {
	var rendered bytes.Buffer
	if err := goldmark.Convert([]byte(body), &rendered); err != nil {
		return "", err
	}

	footer := ""
	if signature != "" {
		footer = fmt.Sprintf("<hr>\n<p style=\"color: #888888; font-size: 12px;\">%s</p>\n", signature)
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html><head><meta charset="utf-8"></head>
<body style="font-family: sans-serif; font-size: 14px; line-height: 1.5;">
%s%s</body></html>`, rendered.String(), footer), nil
}
