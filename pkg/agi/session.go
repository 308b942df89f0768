package agi

import (
	"errors"
	"sync"
)

// ErrDocumentAttached is returned when a second document attach is attempted
// on the same session. The document context is set once, before the first
// question, and only read afterwards.
var ErrDocumentAttached = errors.New("document already attached to session")

// Session identifies one remote conversational context on the AGI service.
// The credential never leaves the client; the session only carries the
// server-assigned identifier plus the locally attached document context.
type Session struct {
	SessionId string
	AgentName string
	ViewerUrl string

	docMu        sync.Mutex
	documentText string
	docSet       bool
}

// DocumentText returns the attached document context, or "" when none is set.
func (s *Session) DocumentText() string {
	s.docMu.Lock()
	defer s.docMu.Unlock()
	return s.documentText
}

func (s *Session) setDocumentText(text string) error {
	s.docMu.Lock()
	defer s.docMu.Unlock()
	if s.docSet {
		return ErrDocumentAttached
	}
	s.documentText = text
	s.docSet = true
	return nil
}
