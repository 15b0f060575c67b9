package session

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/douxx-tech/marechan/internal/config"
)

func testGeneral(t *testing.T) config.GeneralConfig {
	t.Helper()
	dir := t.TempDir()
	return config.GeneralConfig{
		LogFile:     filepath.Join(dir, "logs", "marechan.log"),
		RawEmailLog: filepath.Join(dir, "logs", "raw_email.log"),
		TempLogDir:  filepath.Join(dir, "tmp"),
		LogLevel:    "debug",
	}
}

func TestOpen_WritesBothLogs(t *testing.T) {
	cfg := testGeneral(t)
	s, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	defer s.Close()

	s.Logger().Info("email received", "length", 42)

	run, err := os.ReadFile(cfg.LogFile)
	if err != nil {
		t.Fatalf("read run log: %v", err)
	}
	if !strings.Contains(string(run), "email received") {
		t.Errorf("run log missing record:\n%s", run)
	}

	transcript, err := os.ReadFile(s.TranscriptPath())
	if err != nil {
		t.Fatalf("read transcript: %v", err)
	}
	if !strings.Contains(string(transcript), "email received") {
		t.Errorf("transcript missing record:\n%s", transcript)
	}
	if !strings.Contains(string(transcript), "length=42") {
		t.Errorf("transcript missing attrs:\n%s", transcript)
	}
}

func TestOpen_TranscriptName(t *testing.T) {
	s, err := Open(testGeneral(t))
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	defer s.Close()

	name := s.TranscriptName()
	if !strings.HasPrefix(name, "marechan_") {
		t.Errorf("transcript name %q should start with marechan_", name)
	}
	if !strings.HasSuffix(name, ".txt") {
		t.Errorf("transcript name %q should end with .txt", name)
	}
	if !strings.Contains(name, s.ID()) {
		t.Errorf("transcript name %q should contain session id %q", name, s.ID())
	}
}

func TestOpen_BadLogLevel(t *testing.T) {
	cfg := testGeneral(t)
	cfg.LogLevel = "shouty"
	if _, err := Open(cfg); err == nil {
		t.Fatal("Open with invalid log level should error")
	}
}

func TestLogRawEmail(t *testing.T) {
	cfg := testGeneral(t)
	s, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	defer s.Close()

	raw := []byte("From: someone@example.com\r\nSubject: hi\r\n\r\nhello")
	s.LogRawEmail(raw)

	rawLog, err := os.ReadFile(cfg.RawEmailLog)
	if err != nil {
		t.Fatalf("read raw email log: %v", err)
	}
	got := string(rawLog)
	if !strings.Contains(got, "==== NEW EMAIL BEGIN ====") {
		t.Errorf("raw log missing begin marker:\n%s", got)
	}
	if !strings.Contains(got, "Subject: hi") {
		t.Errorf("raw log missing email body:\n%s", got)
	}
	if !strings.Contains(got, "==== EMAIL END ====") {
		t.Errorf("raw log missing end marker:\n%s", got)
	}

	transcript, _ := os.ReadFile(s.TranscriptPath())
	if !strings.Contains(string(transcript), "==== RAW EMAIL BEGIN ====") {
		t.Errorf("transcript missing raw begin marker:\n%s", transcript)
	}
}

func TestLogRawEmail_AppendsAcrossSessions(t *testing.T) {
	cfg := testGeneral(t)

	for i := 0; i < 2; i++ {
		s, err := Open(cfg)
		if err != nil {
			t.Fatalf("Open error: %v", err)
		}
		s.LogRawEmail([]byte("message body"))
		s.Close()
	}

	rawLog, _ := os.ReadFile(cfg.RawEmailLog)
	if got := strings.Count(string(rawLog), "==== NEW EMAIL BEGIN ===="); got != 2 {
		t.Errorf("raw log should hold 2 emails, found %d markers", got)
	}
}
