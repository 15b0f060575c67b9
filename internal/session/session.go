// Package session owns the per-run logging surface: the shared
// append-only run log, the raw inbound email log, and a per-run
// transcript file that the webhook notifier attaches to its summary.
// One Session is opened per invocation and closed when the run ends.
package session

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/douxx-tech/marechan/internal/config"
)

// Markers written around raw emails in the shared raw-email log.
const (
	rawBeginMarker = "==== NEW EMAIL BEGIN ====\n"
	rawEndMarker   = "\n==== EMAIL END ====\n\n"
)

// Markers used in the per-run transcript copy.
const (
	transcriptRawBegin = "==== RAW EMAIL BEGIN ====\n"
	transcriptRawEnd   = "\n==== RAW EMAIL END ====\n\n"
)

// Session is a single invocation's logging context.
type Session struct {
	id             string
	logger         *slog.Logger
	runLog         *os.File
	transcript     *os.File
	transcriptPath string
	rawLogPath     string
}

// Open creates the log directories and files for one run and builds a
// slog.Logger that writes every record to both the shared run log and
// the per-run transcript.
func Open(cfg config.GeneralConfig) (*Session, error) {
	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	for _, dir := range []string{filepath.Dir(cfg.LogFile), filepath.Dir(cfg.RawEmailLog), cfg.TempLogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir %s: %w", dir, err)
		}
	}

	id := uuid.NewString()
	name := fmt.Sprintf("marechan_%s_%s.txt", time.Now().Format("20060102_150405"), id)

	runLog, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open run log: %w", err)
	}

	transcriptPath := filepath.Join(cfg.TempLogDir, name)
	transcript, err := os.OpenFile(transcriptPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		runLog.Close()
		return nil, fmt.Errorf("open transcript: %w", err)
	}

	handler := slog.NewTextHandler(io.MultiWriter(runLog, transcript), &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: config.ReplaceLogLevelNames,
	})

	s := &Session{
		id:             id,
		logger:         slog.New(handler).With("session", shortID(id)),
		runLog:         runLog,
		transcript:     transcript,
		transcriptPath: transcriptPath,
		rawLogPath:     cfg.RawEmailLog,
	}
	s.logger.Debug("session opened", "transcript", transcriptPath)
	return s, nil
}

// Logger returns the run logger. Records land in the shared run log
// and the per-run transcript.
func (s *Session) Logger() *slog.Logger {
	return s.logger
}

// ID returns the session's UUID.
func (s *Session) ID() string {
	return s.id
}

// TranscriptPath returns the per-run transcript file path.
func (s *Session) TranscriptPath() string {
	return s.transcriptPath
}

// TranscriptName returns the transcript's base filename, used as the
// attachment name on webhook notifications.
func (s *Session) TranscriptName() string {
	return filepath.Base(s.transcriptPath)
}

// LogRawEmail appends the raw inbound message to the shared raw-email
// log and to the transcript, each between begin/end markers. Failures
// are logged and swallowed; an unloggable email never stops the run.
func (s *Session) LogRawEmail(raw []byte) {
	rawLog, err := os.OpenFile(s.rawLogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		s.logger.Error("raw email log unavailable", "path", s.rawLogPath, "error", err)
	} else {
		_, err = fmt.Fprintf(rawLog, "%s%s%s", rawBeginMarker, raw, rawEndMarker)
		rawLog.Close()
		if err != nil {
			s.logger.Error("raw email log write failed", "path", s.rawLogPath, "error", err)
		}
	}

	if _, err := fmt.Fprintf(s.transcript, "%s%s%s", transcriptRawBegin, raw, transcriptRawEnd); err != nil {
		s.logger.Error("transcript raw email write failed", "error", err)
		return
	}
	s.logger.Info("raw email logged", "path", s.rawLogPath, "bytes", len(raw))
}

// Close releases the session's file handles. The transcript file stays
// on disk for the notifier to attach.
func (s *Session) Close() error {
	err := s.transcript.Close()
	if cerr := s.runLog.Close(); err == nil {
		err = cerr
	}
	return err
}

// shortID trims a UUID to its first segment for log readability.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
