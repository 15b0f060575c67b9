package mailio

import (
	"testing"
)

// plainMessage is a single-part plain text message.
const plainMessage = "From: Alice <alice@example.com>\r\n" +
	"To: marvin@douxx.tech\r\n" +
	"Subject: Quick question\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"Hello, are you there?\r\n"

// multiPlainMessage carries two text/plain parts; their contents
// concatenate in order.
const multiPlainMessage = "From: alice@example.com\r\n" +
	"To: marvin@douxx.tech\r\n" +
	"Subject: Split\r\n" +
	"MIME-Version: 1.0\r\n" +
	"Content-Type: multipart/mixed; boundary=\"m\"\r\n" +
	"\r\n" +
	"--m\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"First part.\r\n" +
	"--m\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"Second part.\r\n" +
	"--m--\r\n"

// alternativeMessage has both plain and HTML bodies; the plain part
// wins and the HTML part is ignored.
const alternativeMessage = "From: alice@example.com\r\n" +
	"To: marvin@douxx.tech\r\n" +
	"Subject: Both\r\n" +
	"MIME-Version: 1.0\r\n" +
	"Content-Type: multipart/alternative; boundary=\"alt\"\r\n" +
	"\r\n" +
	"--alt\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"Plain body\r\n" +
	"--alt\r\n" +
	"Content-Type: text/html; charset=utf-8\r\n" +
	"\r\n" +
	"<p>HTML body</p>\r\n" +
	"--alt--\r\n"

// htmlOnlyMessage has no text/plain part at all.
const htmlOnlyMessage = "From: alice@example.com\r\n" +
	"To: marvin@douxx.tech\r\n" +
	"Subject: Newsletter\r\n" +
	"Content-Type: text/html; charset=utf-8\r\n" +
	"\r\n" +
	"<html><body><p>Hello there!</p><p>Second &amp; final.</p></body></html>\r\n"

// attachmentMessage mixes a text body with a binary attachment.
const attachmentMessage = "From: alice@example.com\r\n" +
	"To: marvin@douxx.tech\r\n" +
	"Subject: With file\r\n" +
	"MIME-Version: 1.0\r\n" +
	"Content-Type: multipart/mixed; boundary=\"f\"\r\n" +
	"\r\n" +
	"--f\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"See attached.\r\n" +
	"--f\r\n" +
	"Content-Type: application/octet-stream\r\n" +
	"Content-Disposition: attachment; filename=\"data.bin\"\r\n" +
	"\r\n" +
	"BINARYBYTES\r\n" +
	"--f--\r\n"

func TestParsePlain(t *testing.T) {
	in, err := Parse([]byte(plainMessage))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if in.Sender != "Alice <alice@example.com>" {
		t.Errorf("Sender = %q", in.Sender)
	}
	if in.Recipient != "marvin@douxx.tech" {
		t.Errorf("Recipient = %q", in.Recipient)
	}
	if in.Subject != "Quick question" {
		t.Errorf("Subject = %q", in.Subject)
	}
	if in.Body != "Hello, are you there?" {
		t.Errorf("Body = %q", in.Body)
	}
}

func TestParseConcatenatesPlainParts(t *testing.T) {
	in, err := Parse([]byte(multiPlainMessage))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if in.Body != "First part.Second part." {
		t.Errorf("Body = %q, want both parts concatenated", in.Body)
	}
}

func TestParsePrefersPlainOverHTML(t *testing.T) {
	in, err := Parse([]byte(alternativeMessage))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if in.Body != "Plain body" {
		t.Errorf("Body = %q, want the plain part only", in.Body)
	}
}

func TestParseHTMLOnly(t *testing.T) {
	in, err := Parse([]byte(htmlOnlyMessage))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if in.Body != "Hello there!\n\nSecond & final." {
		t.Errorf("Body = %q, want text extracted from HTML", in.Body)
	}
}

func TestParseSkipsAttachments(t *testing.T) {
	in, err := Parse([]byte(attachmentMessage))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if in.Body != "See attached." {
		t.Errorf("Body = %q, attachment bytes must not leak in", in.Body)
	}
}

func TestParseMissingSubject(t *testing.T) {
	raw := "From: alice@example.com\r\n" +
		"To: marvin@douxx.tech\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"No subject line here.\r\n"

	in, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if in.Subject != "No subject" {
		t.Errorf("Subject = %q, want the placeholder", in.Subject)
	}
}

func TestParseUnknownCharset(t *testing.T) {
	raw := "From: alice@example.com\r\n" +
		"To: marvin@douxx.tech\r\n" +
		"Subject: Odd encoding\r\n" +
		"Content-Type: text/plain; charset=x-made-up\r\n" +
		"\r\n" +
		"Unknown charset body.\r\n"

	in, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse must tolerate unknown charsets: %v", err)
	}
	if in.Body != "Unknown charset body." {
		t.Errorf("Body = %q, want raw content preserved", in.Body)
	}
}

func TestParseEncodedFromHeader(t *testing.T) {
	raw := "From: =?utf-8?q?Andr=C3=A9?= <andre@example.com>\r\n" +
		"To: marvin@douxx.tech\r\n" +
		"Subject: Hi\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"Bonjour.\r\n"

	in, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if in.Sender != "André <andre@example.com>" {
		t.Errorf("Sender = %q, want the decoded display name", in.Sender)
	}
}
