package mailio

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"

	"github.com/douxx-tech/marechan/internal/config"
)

// maxMessageBytes caps how much of one message Fetch buffers. The
// remainder of the IMAP literal is drained to keep the stream in sync.
const maxMessageBytes = 5 * 1024 * 1024

// Fetch connects to the configured mailbox and retrieves the oldest
// unseen message, marking it \Seen. Returns nil bytes and nil error
// when no unseen mail is waiting.
func Fetch(ctx context.Context, cfg config.IMAPConfig, logger *slog.Logger) ([]byte, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	logger.Debug("connecting to IMAP server", "host", cfg.Host, "port", cfg.Port)

	client, err := imapclient.DialTLS(addr, &imapclient.Options{
		TLSConfig: &tls.Config{ServerName: cfg.Host},
	})
	if err != nil {
		return nil, fmt.Errorf("dial IMAP %s: %w", addr, err)
	}
	defer client.Close()

	if err := client.Login(cfg.Username, cfg.Password).Wait(); err != nil {
		return nil, fmt.Errorf("login as %s: %w", cfg.Username, err)
	}
	defer func() {
		_ = client.Logout().Wait()
	}()

	if _, err := client.Select(cfg.Mailbox, nil).Wait(); err != nil {
		return nil, fmt.Errorf("select %s: %w", cfg.Mailbox, err)
	}

	criteria := &imap.SearchCriteria{NotFlag: []imap.Flag{imap.FlagSeen}}
	searchData, err := client.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("search unseen: %w", err)
	}

	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		logger.Info("no unseen messages", "mailbox", cfg.Mailbox)
		return nil, nil
	}

	// Oldest first: answer mail in arrival order, one message per run.
	uid := uids[0]
	uidSet := imap.UIDSet{}
	uidSet.AddNum(uid)

	fetchOpts := &imap.FetchOptions{
		UID: true,
		BodySection: []*imap.FetchItemBodySection{
			{Peek: false}, // fetching the body marks the message \Seen
		},
	}

	fetchCmd := client.Fetch(uidSet, fetchOpts)

	var raw []byte
	if msg := fetchCmd.Next(); msg != nil {
		for {
			item := msg.Next()
			if item == nil {
				break
			}
			data, ok := item.(imapclient.FetchItemDataBodySection)
			if !ok || data.Literal == nil {
				continue
			}
			// Consume the literal immediately; msg.Next() advances past
			// unread literals and would lose the body data.
			var readErr error
			raw, readErr = io.ReadAll(io.LimitReader(data.Literal, maxMessageBytes))
			_, _ = io.Copy(io.Discard, data.Literal)
			if readErr != nil {
				_ = fetchCmd.Close()
				return nil, fmt.Errorf("read message UID %d: %w", uid, readErr)
			}
		}
	}

	if err := fetchCmd.Close(); err != nil {
		return nil, fmt.Errorf("fetch message UID %d: %w", uid, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("message UID %d has no body", uid)
	}

	logger.Info("fetched unseen message", "mailbox", cfg.Mailbox, "uid", uint32(uid), "bytes", len(raw))
	return raw, nil
}
