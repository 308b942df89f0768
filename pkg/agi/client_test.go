package agi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// fakeRuntime is a scriptable stand-in for the hosted AGI API.
type fakeRuntime struct {
	t *testing.T

	createBody string

	// One element per poll iteration.
	messageBatches [][]map[string]interface{}
	statuses       []string

	messageCalls int
	statusCalls  int
	sentMessages []string
	afterIds     []string
	deleted      []string
}

func (f *fakeRuntime) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /sessions", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			f.t.Errorf("Authorization = %q", got)
		}
		io.WriteString(w, f.createBody)
	})

	mux.HandleFunc("POST /sessions/{id}/message", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		json.NewDecoder(r.Body).Decode(&payload)
		f.sentMessages = append(f.sentMessages, payload["message"])
		io.WriteString(w, "{}")
	})

	mux.HandleFunc("GET /sessions/{id}/messages", func(w http.ResponseWriter, r *http.Request) {
		f.afterIds = append(f.afterIds, r.URL.Query().Get("after_id"))
		batch := []map[string]interface{}{}
		if f.messageCalls < len(f.messageBatches) {
			batch = f.messageBatches[f.messageCalls]
		}
		f.messageCalls++
		json.NewEncoder(w).Encode(map[string]interface{}{"messages": batch})
	})

	mux.HandleFunc("GET /sessions/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		status := "running"
		if f.statusCalls < len(f.statuses) {
			status = f.statuses[f.statusCalls]
		}
		f.statusCalls++
		json.NewEncoder(w).Encode(map[string]string{"status": status})
	})

	mux.HandleFunc("DELETE /sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.deleted = append(f.deleted, r.PathValue("id"))
	})

	return mux
}

func newTestClient(t *testing.T, f *fakeRuntime) (*Client, *httptest.Server) {
	t.Helper()
	f.t = t
	server := httptest.NewServer(f.handler())
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		BaseURL:       server.URL,
		APIKey:        "test-key",
		PollInterval:  time.Millisecond,
		StatusTimeout: 2 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client, server
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "http://localhost"})
	if err == nil {
		t.Fatal("expected error for missing API key")
	}
}

func TestCreateSessionIdVariants(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantId     string
		wantViewer string
		wantErr    bool
	}{
		{name: "session_id", body: `{"session_id":"s-1","vnc_url":"http://v/1"}`, wantId: "s-1", wantViewer: "http://v/1"},
		{name: "id", body: `{"id":"s-2"}`, wantId: "s-2"},
		{name: "sessionId camel", body: `{"sessionId":"s-3","vncUrl":"http://v/3"}`, wantId: "s-3", wantViewer: "http://v/3"},
		{name: "missing id", body: `{"unexpected":true}`, wantErr: true},
		{name: "empty body", body: ``, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, &fakeRuntime{createBody: tt.body})
			session, err := client.CreateSession(context.Background())
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateSession: %v", err)
			}
			if session.SessionId != tt.wantId {
				t.Errorf("SessionId = %q, want %q", session.SessionId, tt.wantId)
			}
			if session.ViewerUrl != tt.wantViewer {
				t.Errorf("ViewerUrl = %q, want %q", session.ViewerUrl, tt.wantViewer)
			}
		})
	}
}

func TestRunReturnsDoneContentOnFirstPoll(t *testing.T) {
	fake := &fakeRuntime{
		messageBatches: [][]map[string]interface{}{
			{{"id": 1, "type": "DONE", "content": "the answer"}},
		},
	}
	client, _ := newTestClient(t, fake)

	got, err := client.Run(context.Background(), &Session{SessionId: "s-1"}, "question")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got != "the answer" {
		t.Errorf("Run = %q, want %q", got, "the answer")
	}
	// DONE short-circuits; the status endpoint is never consulted.
	if fake.statusCalls != 0 {
		t.Errorf("statusCalls = %d, want 0", fake.statusCalls)
	}
}

func TestRunSerializesStructuredDoneContent(t *testing.T) {
	fake := &fakeRuntime{
		messageBatches: [][]map[string]interface{}{
			{{"id": 1, "type": "DONE", "content": map[string]interface{}{"text": "hi", "confidence": "low"}}},
		},
	}
	client, _ := newTestClient(t, fake)

	got, err := client.Run(context.Background(), &Session{SessionId: "s-1"}, "question")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	var decoded map[string]string
	if err := json.Unmarshal([]byte(got), &decoded); err != nil {
		t.Fatalf("DONE content is not JSON: %q", got)
	}
	if decoded["text"] != "hi" || decoded["confidence"] != "low" {
		t.Errorf("decoded = %v", decoded)
	}
}

func TestRunAdvancesAfterIdCursor(t *testing.T) {
	fake := &fakeRuntime{
		messageBatches: [][]map[string]interface{}{
			{{"id": 3, "type": "LOG", "content": "working"}, {"id": 5, "type": "LOG", "content": "still working"}},
			{{"id": 7, "type": "DONE", "content": "done"}},
		},
	}
	client, _ := newTestClient(t, fake)

	if _, err := client.Run(context.Background(), &Session{SessionId: "s-1"}, "q"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(fake.afterIds) < 2 || fake.afterIds[0] != "0" || fake.afterIds[1] != "5" {
		t.Errorf("afterIds = %v, want [0 5]", fake.afterIds)
	}
}

func TestRunFailsOnErrorMessage(t *testing.T) {
	fake := &fakeRuntime{
		messageBatches: [][]map[string]interface{}{
			{{"id": 1, "type": "ERROR", "content": "boom"}},
		},
	}
	client, _ := newTestClient(t, fake)

	_, err := client.Run(context.Background(), &Session{SessionId: "s-1"}, "q")
	var sessionErr *SessionError
	if !errors.As(err, &sessionErr) {
		t.Fatalf("err = %v, want SessionError", err)
	}
	if !strings.Contains(sessionErr.Detail, "boom") {
		t.Errorf("Detail = %q, want it to carry the error content", sessionErr.Detail)
	}
}

func TestRunFailsOnFailedStatus(t *testing.T) {
	fake := &fakeRuntime{statuses: []string{"failed"}}
	client, _ := newTestClient(t, fake)

	_, err := client.Run(context.Background(), &Session{SessionId: "s-1"}, "q")
	var sessionErr *SessionError
	if !errors.As(err, &sessionErr) {
		t.Fatalf("err = %v, want SessionError", err)
	}
}

func TestRunWaitingForInputReturnsLastText(t *testing.T) {
	fake := &fakeRuntime{
		messageBatches: [][]map[string]interface{}{
			{{"id": 1, "type": "AGENT", "content": "Which environment are you deploying to?"}},
		},
		statuses: []string{"waiting_for_input"},
	}
	client, _ := newTestClient(t, fake)

	got, err := client.Run(context.Background(), &Session{SessionId: "s-1"}, "q")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got != "Which environment are you deploying to?" {
		t.Errorf("Run = %q", got)
	}
}

func TestRunWaitingForInputFallback(t *testing.T) {
	fake := &fakeRuntime{statuses: []string{"waiting_for_input"}}
	client, _ := newTestClient(t, fake)

	got, err := client.Run(context.Background(), &Session{SessionId: "s-1"}, "q")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got != ClarificationFallback {
		t.Errorf("Run = %q, want fallback clarification", got)
	}
}

func TestRunTimesOutWithLastStatus(t *testing.T) {
	fake := &fakeRuntime{statuses: []string{"running", "running", "running"}}
	client, server := newTestClient(t, fake)
	_ = server

	// Shrink the deadline so the test completes quickly.
	client.statusTimeout = 20 * time.Millisecond

	_, err := client.Run(context.Background(), &Session{SessionId: "s-1"}, "q")
	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("err = %v, want TimeoutError", err)
	}
	if timeoutErr.LastStatus["status"] != "running" {
		t.Errorf("LastStatus = %v, want last observed status payload", timeoutErr.LastStatus)
	}
}

func TestRunWrapsPromptWithDocumentContext(t *testing.T) {
	fake := &fakeRuntime{
		messageBatches: [][]map[string]interface{}{
			{{"id": 1, "type": "DONE", "content": "ok"}},
		},
	}
	client, _ := newTestClient(t, fake)

	session := &Session{SessionId: "s-1"}
	if err := client.AttachDocument(session, "page one text"); err != nil {
		t.Fatalf("AttachDocument: %v", err)
	}

	if _, err := client.Run(context.Background(), session, "what is on page one?"); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(fake.sentMessages) != 1 {
		t.Fatalf("sentMessages = %d, want 1", len(fake.sentMessages))
	}
	sent := fake.sentMessages[0]
	if !strings.Contains(sent, "DOCUMENT CONTEXT:\npage one text") {
		t.Errorf("message does not embed the document: %q", sent)
	}
	if !strings.Contains(sent, "what is on page one?") {
		t.Errorf("message does not embed the question: %q", sent)
	}
}

func TestRunSendsRawPromptWithoutDocument(t *testing.T) {
	fake := &fakeRuntime{
		messageBatches: [][]map[string]interface{}{
			{{"id": 1, "type": "DONE", "content": "ok"}},
		},
	}
	client, _ := newTestClient(t, fake)

	if _, err := client.Run(context.Background(), &Session{SessionId: "s-1"}, "plain question"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if fake.sentMessages[0] != "plain question" {
		t.Errorf("message = %q, want raw prompt", fake.sentMessages[0])
	}
}

func TestAttachDocumentTruncates(t *testing.T) {
	client, _ := newTestClient(t, &fakeRuntime{})
	client.maxDocChars = 10

	session := &Session{SessionId: "s-1"}
	if err := client.AttachDocument(session, "0123456789ABCDEF"); err != nil {
		t.Fatalf("AttachDocument: %v", err)
	}

	want := "0123456789" + "\n\n[TRUNCATED]"
	if got := session.DocumentText(); got != want {
		t.Errorf("DocumentText = %q, want %q", got, want)
	}
}

func TestAttachDocumentTwiceRejected(t *testing.T) {
	client, _ := newTestClient(t, &fakeRuntime{})

	session := &Session{SessionId: "s-1"}
	if err := client.AttachDocument(session, "first"); err != nil {
		t.Fatalf("first attach: %v", err)
	}
	if err := client.AttachDocument(session, "second"); !errors.Is(err, ErrDocumentAttached) {
		t.Errorf("second attach err = %v, want ErrDocumentAttached", err)
	}
}

func TestDeleteWithoutSessionIdIsNoOp(t *testing.T) {
	fake := &fakeRuntime{}
	client, _ := newTestClient(t, fake)

	if err := client.Delete(context.Background(), &Session{}); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := client.Delete(context.Background(), nil); err != nil {
		t.Fatalf("Delete nil: %v", err)
	}
	if len(fake.deleted) != 0 {
		t.Errorf("deleted = %v, want no remote calls", fake.deleted)
	}
}

func TestDeleteCallsRemote(t *testing.T) {
	fake := &fakeRuntime{}
	client, _ := newTestClient(t, fake)

	if err := client.Delete(context.Background(), &Session{SessionId: "s-9"}); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(fake.deleted) != 1 || fake.deleted[0] != "s-9" {
		t.Errorf("deleted = %v, want [s-9]", fake.deleted)
	}
}

func TestRequestErrorCarriesStatusAndBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "upstream exploded")
	}))
	defer server.Close()

	client, err := NewClient(Config{BaseURL: server.URL, APIKey: "test-key"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	_, err = client.CreateSession(context.Background())
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("err = %v, want RequestError", err)
	}
	if reqErr.Status != http.StatusBadGateway || reqErr.Body != "upstream exploded" {
		t.Errorf("RequestError = %+v", reqErr)
	}
}
