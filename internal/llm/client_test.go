package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAskSuccess(t *testing.T) {
	var gotContent, gotTimeout string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContent = r.URL.Query().Get("content")
		gotTimeout = r.URL.Query().Get("timeout")
		w.Write([]byte(`{"success": true, "message": "Hello from the model!"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 45, nil)
	got, err := c.Ask(context.Background(), "Reply nicely:", "alice@example.com", "How are you?")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if got != "Hello from the model!" {
		t.Errorf("Ask = %q, want model message", got)
	}

	wantContent := "Reply nicely: Reminder: You are talking to the sender (alice@example.com) of this mail! How are you?"
	if gotContent != wantContent {
		t.Errorf("content param = %q, want %q", gotContent, wantContent)
	}
	if gotTimeout != "45" {
		t.Errorf("timeout param = %q, want %q", gotTimeout, "45")
	}
}

func TestAskEmptyMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true, "message": ""}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 10, nil)
	got, err := c.Ask(context.Background(), "p", "s@example.com", "b")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if got != emptyReply {
		t.Errorf("Ask = %q, want %q", got, emptyReply)
	}
}

func TestAskModelFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": false, "message": "internal model error"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 10, nil)
	got, err := c.Ask(context.Background(), "p", "s@example.com", "b")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if got != failedReply {
		t.Errorf("Ask = %q, want %q", got, failedReply)
	}
}

func TestAskHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, 10, nil)
	got, err := c.Ask(context.Background(), "p", "s@example.com", "b")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if got != "Error communicating with the AI: 500" {
		t.Errorf("Ask = %q, want status reply", got)
	}
}

func TestAskGarbledResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("this is not json"))
	}))
	defer srv.Close()

	c := New(srv.URL, 10, nil)
	got, err := c.Ask(context.Background(), "p", "s@example.com", "b")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if !strings.HasPrefix(got, "Error processing AI response: ") {
		t.Errorf("Ask = %q, want decode-error reply", got)
	}
}

func TestAskTransportError(t *testing.T) {
	srv := httptest.NewServer(nil)
	url := srv.URL
	srv.Close()

	c := New(url, 10, nil)
	if _, err := c.Ask(context.Background(), "p", "s@example.com", "b"); err == nil {
		t.Fatal("Ask against a dead server succeeded, want error")
	}
}
