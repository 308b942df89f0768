package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"onboarding-ai-be/internal/constant"
	"onboarding-ai-be/internal/dto"
	"onboarding-ai-be/internal/pkg/logger"
	"onboarding-ai-be/internal/repository/memory"
	"onboarding-ai-be/pkg/agi"
	"onboarding-ai-be/pkg/history"
	"onboarding-ai-be/pkg/intent"
	"onboarding-ai-be/pkg/intercom"
)

type fakeRuntime struct {
	runOutput    string
	runErr       error
	createErr    error
	runCalls     int
	deleteCalls  int
	nextId       int
	attachedText string
}

func (f *fakeRuntime) CreateSession(ctx context.Context) (*agi.Session, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextId++
	return &agi.Session{SessionId: fmt.Sprintf("sess-%d", f.nextId), AgentName: "agi-0"}, nil
}

func (f *fakeRuntime) AttachDocument(session *agi.Session, text string) error {
	f.attachedText = text
	return nil
}

func (f *fakeRuntime) Run(ctx context.Context, session *agi.Session, prompt string) (string, error) {
	f.runCalls++
	if f.runErr != nil {
		return "", f.runErr
	}
	return f.runOutput, nil
}

func (f *fakeRuntime) Delete(ctx context.Context, session *agi.Session) error {
	f.deleteCalls++
	return nil
}

type fakeTicketer struct {
	err   error
	calls int
	gaps  []intercom.DocGap
}

func (f *fakeTicketer) CreateDocGap(ctx context.Context, gap intercom.DocGap) (string, error) {
	f.calls++
	f.gaps = append(f.gaps, gap)
	if f.err != nil {
		return "", f.err
	}
	return "conv-42", nil
}

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }
func (nopLogger) GetLogs(level string, limit, offset int) ([]logger.LogEntry, error) {
	return nil, nil
}
func (nopLogger) GetLogById(id string) (*logger.LogEntry, error) { return nil, nil }

func newTestService(runtime *fakeRuntime, ticketer *fakeTicketer) IChatbotService {
	histories := memory.NewQueryHistoryRepository(history.Config{})
	classifier := intent.NewClassifier(histories, intent.DefaultRepeatCountThreshold)
	return NewChatbotService(
		runtime,
		ticketer,
		memory.NewAgentSessionRepository(),
		histories,
		classifier,
		nil, // no DB
		nil, // no internal bus
		nil, // no broker
		nopLogger{},
	)
}

func uploadSession(t *testing.T, svc IChatbotService) string {
	t.Helper()
	res, err := svc.UploadDocument(context.Background(), "guide.txt", []byte("Step one: create an account."))
	if err != nil {
		t.Fatalf("UploadDocument: %v", err)
	}
	return res.SessionId
}

func TestAskConfidentAnswer(t *testing.T) {
	runtime := &fakeRuntime{
		runOutput: `{"text":"Click the profile icon.","sources":["guide.txt"],"confidence":"high"}`,
	}
	ticketer := &fakeTicketer{}
	svc := newTestService(runtime, ticketer)
	sessionId := uploadSession(t, svc)

	res, err := svc.Ask(context.Background(), &dto.AskRequest{
		SessionId: sessionId,
		UserId:    "u1",
		Question:  "How do I change my avatar?",
	})
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if res.Answer != "Click the profile icon." {
		t.Errorf("answer = %q", res.Answer)
	}
	if res.Intent != intent.DocumentQA {
		t.Errorf("intent = %q, want %q", res.Intent, intent.DocumentQA)
	}
	if ticketer.calls != 0 {
		t.Errorf("confident answer should not open tickets, got %d", ticketer.calls)
	}
}

func TestAskDocGapEscalates(t *testing.T) {
	runtime := &fakeRuntime{
		runOutput: `{"text":"Not sure.","sources":[],"confidence":"low","decision_reason":"no_relevant_docs"}`,
	}
	ticketer := &fakeTicketer{}
	svc := newTestService(runtime, ticketer)
	sessionId := uploadSession(t, svc)

	res, err := svc.Ask(context.Background(), &dto.AskRequest{
		SessionId: sessionId,
		UserId:    "u1",
		Question:  "How do I export audit logs?",
	})
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if ticketer.calls != 1 {
		t.Fatalf("expected exactly one ticket, got %d", ticketer.calls)
	}
	if !strings.Contains(res.Answer, "conv-42") {
		t.Errorf("answer should carry the conversation id: %q", res.Answer)
	}
	if ticketer.gaps[0].DecisionReason != "no_relevant_docs" {
		t.Errorf("gap reason = %q", ticketer.gaps[0].DecisionReason)
	}
}

func TestAskDocGapTicketingFailureDegrades(t *testing.T) {
	runtime := &fakeRuntime{
		runOutput: `{"text":"Not sure.","confidence":"low"}`,
	}
	ticketer := &fakeTicketer{err: errors.New("intercom down")}
	svc := newTestService(runtime, ticketer)
	sessionId := uploadSession(t, svc)

	res, err := svc.Ask(context.Background(), &dto.AskRequest{
		SessionId: sessionId,
		UserId:    "u1",
		Question:  "How do I export audit logs?",
	})
	if err != nil {
		t.Fatalf("ticketing outage must not fail the ask: %v", err)
	}
	if res.Answer != constant.DocGapEscalationFailed {
		t.Errorf("answer = %q, want degraded message", res.Answer)
	}
}

func TestAskRepeatedQuestionShortCircuits(t *testing.T) {
	runtime := &fakeRuntime{
		runOutput: `{"text":"Try the settings page.","sources":["guide.txt"],"confidence":"high"}`,
	}
	ticketer := &fakeTicketer{}
	svc := newTestService(runtime, ticketer)
	sessionId := uploadSession(t, svc)

	question := "How do I finish configuring billing?"
	var res *dto.AskResponse
	var err error
	for i := 0; i < 3; i++ {
		res, err = svc.Ask(context.Background(), &dto.AskRequest{
			SessionId: sessionId,
			UserId:    "u1",
			Question:  question,
		})
		if err != nil {
			t.Fatalf("Ask %d: %v", i, err)
		}
	}

	if res.Intent != intent.OnboardingHelp {
		t.Fatalf("third identical ask should classify as onboarding help, got %q", res.Intent)
	}
	if res.Answer != constant.OnboardingAcknowledgement {
		t.Errorf("answer = %q", res.Answer)
	}
	if runtime.runCalls != 2 {
		t.Errorf("agent should not run on the short-circuited ask, runCalls = %d", runtime.runCalls)
	}
	if ticketer.calls != 1 {
		t.Errorf("stuck user should open one ticket, got %d", ticketer.calls)
	}
}

func TestAskHistoryIsPerUser(t *testing.T) {
	runtime := &fakeRuntime{
		runOutput: `{"text":"ok","sources":["guide.txt"],"confidence":"high"}`,
	}
	ticketer := &fakeTicketer{}
	svc := newTestService(runtime, ticketer)
	sessionId := uploadSession(t, svc)

	question := "How do I finish configuring billing?"
	for _, userId := range []string{"u1", "u2", "u3"} {
		res, err := svc.Ask(context.Background(), &dto.AskRequest{
			SessionId: sessionId,
			UserId:    userId,
			Question:  question,
		})
		if err != nil {
			t.Fatalf("Ask(%s): %v", userId, err)
		}
		if res.Intent != intent.DocumentQA {
			t.Errorf("different users must not share repeat counts, intent = %q", res.Intent)
		}
	}
}

func TestAskUnknownSession(t *testing.T) {
	svc := newTestService(&fakeRuntime{}, &fakeTicketer{})

	_, err := svc.Ask(context.Background(), &dto.AskRequest{
		SessionId: "missing",
		UserId:    "u1",
		Question:  "anything at all here",
	})
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestAskAgentErrorPropagates(t *testing.T) {
	runtime := &fakeRuntime{runErr: &agi.SessionError{Detail: "crashed"}}
	svc := newTestService(runtime, &fakeTicketer{})
	sessionId := uploadSession(t, svc)

	_, err := svc.Ask(context.Background(), &dto.AskRequest{
		SessionId: sessionId,
		UserId:    "u1",
		Question:  "this is a normal question",
	})
	var sessionErr *agi.SessionError
	if !errors.As(err, &sessionErr) {
		t.Fatalf("err = %v, want *agi.SessionError", err)
	}
}

func TestUploadMalformedPDFDegrades(t *testing.T) {
	runtime := &fakeRuntime{
		runOutput: `{"text":"ok","sources":["x"],"confidence":"high"}`,
	}
	svc := newTestService(runtime, &fakeTicketer{})

	// Extraction of a broken PDF yields no text; the session must still be
	// created with an empty document context.
	res, err := svc.UploadDocument(context.Background(), "broken.pdf", []byte("%PDF-1.7 this is not a valid pdf body"))
	if err != nil {
		t.Fatalf("UploadDocument: %v", err)
	}
	if res.SessionId == "" {
		t.Fatal("expected a session id for a malformed upload")
	}
	if runtime.attachedText != "" {
		t.Errorf("attached text = %q, want empty context", runtime.attachedText)
	}

	// The session is usable; the agent answers from the raw prompt.
	if _, err := svc.Ask(context.Background(), &dto.AskRequest{
		SessionId: res.SessionId,
		UserId:    "u1",
		Question:  "What does this document say?",
	}); err != nil {
		t.Fatalf("Ask on empty-context session: %v", err)
	}
	if runtime.runCalls != 1 {
		t.Errorf("runCalls = %d, want 1", runtime.runCalls)
	}
}

func TestDeleteSession(t *testing.T) {
	runtime := &fakeRuntime{runOutput: "plain answer"}
	svc := newTestService(runtime, &fakeTicketer{})
	sessionId := uploadSession(t, svc)

	if err := svc.DeleteSession(context.Background(), sessionId); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if runtime.deleteCalls != 1 {
		t.Errorf("remote delete calls = %d, want 1", runtime.deleteCalls)
	}

	_, err := svc.Ask(context.Background(), &dto.AskRequest{
		SessionId: sessionId,
		UserId:    "u1",
		Question:  "question after deletion",
	})
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("ask after delete: err = %v, want ErrSessionNotFound", err)
	}

	// Deleting a session twice is a no-op.
	if err := svc.DeleteSession(context.Background(), sessionId); err != nil {
		t.Fatalf("second DeleteSession: %v", err)
	}
}

func TestAskPlainTextAnswer(t *testing.T) {
	runtime := &fakeRuntime{runOutput: "The answer is on page three."}
	ticketer := &fakeTicketer{}
	svc := newTestService(runtime, ticketer)
	sessionId := uploadSession(t, svc)

	res, err := svc.Ask(context.Background(), &dto.AskRequest{
		SessionId: sessionId,
		UserId:    "u1",
		Question:  "Where is the answer located?",
	})
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	// A plain-text answer has no sources, which reads as a doc gap.
	if ticketer.calls != 1 {
		t.Errorf("plain answers without sources should escalate, calls = %d", ticketer.calls)
	}
	if !strings.Contains(res.Answer, "conv-42") {
		t.Errorf("answer = %q", res.Answer)
	}
}
