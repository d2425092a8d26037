// Package session carries per-agent conversation state through the
// governance pipeline: the working directory a tool call is scoped to,
// the active intent bound at handshake time, and optional metadata used
// to attribute mutations in the trace ledger.
package session

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// AgentMetadata describes the AI contributor attributed in ledger
// records.
type AgentMetadata struct {
	ModelIdentifier string
	ModelVersion    string
	AgentRole       string
	WorkerID        string
	SupervisorID    string
}

// Session is per-agent conversation state. A session with no active
// intent must deny all mutating tools.
type Session struct {
	ID         string
	WorkingDir string

	TaskID     string
	InstanceID string

	Agent AgentMetadata

	mu           sync.RWMutex
	activeIntent string
	messages     []string

	logger *slog.Logger
}

// New creates a session bound to the given working directory.
func New(workingDir string, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.New().String()
	logger.Debug("creating session", "session_id", id, "working_dir", workingDir)
	return &Session{
		ID:         id,
		WorkingDir: workingDir,
		logger:     logger,
	}
}

// ActiveIntent returns the currently bound intent id, or "" if none.
func (s *Session) ActiveIntent() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeIntent
}

// SetActiveIntent binds an intent id to the session. Called by the
// handshake once an intent has been selected.
func (s *Session) SetActiveIntent(intentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger.Debug("binding active intent", "session_id", s.ID, "intent_id", intentID)
	s.activeIntent = intentID
}

// HasActiveIntent reports whether an intent is bound.
func (s *Session) HasActiveIntent() bool {
	return s.ActiveIntent() != ""
}

// PushMessage appends a text segment the agent will see on its next
// turn. The sink is filled only by callers of PushMessage; the
// PushResult capability the Hook Engine uses is a separate interface
// and does not write here.
func (s *Session) PushMessage(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, text)
}

// PendingMessages returns and clears the accumulated message sink.
func (s *Session) PendingMessages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.messages
	s.messages = nil
	return out
}

// ConversationURL builds the roo://task/... URL used to link a ledger
// record back to the originating conversation.
func (s *Session) ConversationURL() string {
	if s.TaskID == "" {
		return "roo://task/unknown"
	}
	if s.InstanceID == "" {
		return "roo://task/" + s.TaskID
	}
	return "roo://task/" + s.TaskID + "/instance/" + s.InstanceID
}
