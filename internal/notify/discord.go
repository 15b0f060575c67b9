// Package notify posts processing summaries to a Discord webhook.
// Delivery is best effort: an empty webhook URL disables it, and
// failures surface as plain errors the caller can log and move past.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/douxx-tech/marechan/internal/httpkit"
)

const embedColor = 0x2196F3

// Summary describes one processed email for the notification embed.
type Summary struct {
	// Assistant is the configured assistant name, lowercase.
	Assistant string

	// Sender is the original From header of the processed email.
	Sender string

	// Subject is the original subject line.
	Subject string

	// Response is the reply text that was sent back.
	Response string

	// TranscriptPath is the session transcript attached to the
	// notification; TranscriptName is its upload filename.
	TranscriptPath string
	TranscriptName string
}

// Notifier posts summaries to a Discord webhook.
type Notifier struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a Notifier for the given webhook URL. An empty URL
// produces a Notifier whose Send is a logged no-op.
func New(webhookURL string, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Notifier{
		webhookURL: webhookURL,
		httpClient: httpkit.NewClient(),
		logger:     logger,
	}
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type embed struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Color       int          `json:"color"`
	Fields      []embedField `json:"fields"`
	Timestamp   string       `json:"timestamp"`
}

type webhookPayload struct {
	Content string  `json:"content"`
	Embeds  []embed `json:"embeds"`
}

// Send posts the summary with the session transcript attached.
// Returns nil without sending when no webhook is configured.
func (n *Notifier) Send(ctx context.Context, s Summary) error {
	if n.webhookURL == "" {
		n.logger.Info("discord webhook not configured, notification skipped")
		return nil
	}

	transcript, err := os.Open(s.TranscriptPath)
	if err != nil {
		return fmt.Errorf("open transcript: %w", err)
	}
	defer transcript.Close()

	now := time.Now()
	name := capitalize(s.Assistant)

	payload := webhookPayload{
		Content: fmt.Sprintf("📧 **New email processed by %s** | %s", name, now.Format("02/01/2006 15:04:05")),
		Embeds: []embed{{
			Title:       "New response from " + name,
			Description: fmt.Sprintf("%s replied to an email from **%s**", name, displayName(s.Sender)),
			Color:       embedColor,
			Fields: []embedField{
				{Name: "Subject", Value: s.Subject, Inline: true},
				{Name: "Assistant", Value: name, Inline: true},
				{Name: "Response", Value: responseField(s.Response)},
			},
			Timestamp: now.Format(time.RFC3339),
		}},
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("payload_json", string(payloadJSON)); err != nil {
		return fmt.Errorf("write payload field: %w", err)
	}

	// Discord expects the attachment in a part named "file".
	fh := make(textproto.MIMEHeader)
	fh.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, s.TranscriptName))
	fh.Set("Content-Type", "text/plain")
	fw, err := mw.CreatePart(fh)
	if err != nil {
		return fmt.Errorf("create transcript part: %w", err)
	}
	if _, err := io.Copy(fw, transcript); err != nil {
		return fmt.Errorf("attach transcript: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("finish multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, &body)
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	n.logger.Info("sending notification to discord", "assistant", s.Assistant)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post to discord: %w", err)
	}
	defer httpkit.DrainAndClose(resp.Body, 4096)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errBody := httpkit.ReadErrorBody(resp.Body, 512)
		return fmt.Errorf("discord webhook error %d: %s", resp.StatusCode, errBody)
	}

	n.logger.Info("notification sent to discord", "status", resp.StatusCode)
	return nil
}

// capitalize upper-cases the first rune and lower-cases the rest,
// turning a configured assistant key into a display name.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return string(unicode.ToUpper(r[0])) + strings.ToLower(string(r[1:]))
}

// displayName extracts the human part of a From header. "Alice
// <alice@example.com>" becomes "Alice"; a bare address stays as is.
func displayName(sender string) string {
	if sender == "" {
		return "Unknown"
	}
	if i := strings.IndexByte(sender, '<'); i >= 0 {
		return strings.TrimSpace(sender[:i])
	}
	return sender
}

// responseField shortens the reply preview shown in the embed.
func responseField(msg string) string {
	if msg == "" {
		return "No response"
	}
	if r := []rune(msg); len(r) > 250 {
		return string(r[:250]) + "..."
	}
	return msg
}
