// Package llm is the client for the AI completion endpoint.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/douxx-tech/marechan/internal/httpkit"
)

// Reply texts for API-level failures. The pipeline mails an apology
// rather than staying silent, so only transport errors surface as
// errors to the caller.
const (
	emptyReply   = "Sorry, I couldn't process your request."
	failedReply  = "Sorry, the AI couldn't process your message correctly."
	statusReply  = "Error communicating with the AI: %d"
	garbledReply = "Error processing AI response: %s"
)

// Client queries the completion API.
type Client struct {
	apiURL     string
	timeoutSec int
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a completion client. timeoutSec bounds the whole HTTP
// exchange and is also forwarded to the endpoint, which uses it as its
// own generation deadline.
func New(apiURL string, timeoutSec int, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		apiURL:     apiURL,
		timeoutSec: timeoutSec,
		httpClient: httpkit.NewClient(httpkit.WithTimeout(time.Duration(timeoutSec) * time.Second)),
		logger:     logger,
	}
}

// apiResponse is the endpoint's reply envelope.
type apiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Ask sends the assembled prompt and the email body to the completion
// endpoint and returns the text to mail back. The sender address is
// spliced in between them so the model knows who it is replying to.
func (c *Client) Ask(ctx context.Context, prompt, sender, body string) (string, error) {
	content := fmt.Sprintf("%s Reminder: You are talking to the sender (%s) of this mail! %s",
		prompt, sender, body)

	q := url.Values{}
	q.Set("content", content)
	q.Set("timeout", strconv.Itoa(c.timeoutSec))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	c.logger.Info("calling AI API", "content_bytes", len(content))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer httpkit.DrainAndClose(resp.Body, 4096)

	c.logger.Info("AI API responded", "status", resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		return fmt.Sprintf(statusReply, resp.StatusCode), nil
	}

	var ar apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		c.logger.Error("AI response unreadable", "error", err)
		return fmt.Sprintf(garbledReply, err), nil
	}
	if !ar.Success {
		return failedReply, nil
	}
	if ar.Message == "" {
		return emptyReply, nil
	}
	return ar.Message, nil
}
