package widget

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"
	"whisp.dev/chat-widget/internal/localstore"
)

// Durable keys, scoped to the origin by the underlying store.
const (
	KeyChatHistory   = "whisp_chat_history"
	KeyFormCompleted = "whisp_form_completed"
	KeyLeadID        = "whisp_lead_id"
)

// RestoreLimit is how many of the most recent messages a restore keeps.
const RestoreLimit = 10

// Session is the persisted lead state. FormCompleted implies a LeadID.
type Session struct {
	LeadID        string
	FormCompleted bool
}

// TranscriptStore persists the session and the transcript in a local store.
type TranscriptStore struct {
	store localstore.Store
}

func NewTranscriptStore(store localstore.Store) *TranscriptStore {
	return &TranscriptStore{store: store}
}

// LoadSession returns the saved session. A lead id without the completion
// flag, or the flag without an id, yields an empty session.
func (t *TranscriptStore) LoadSession(ctx context.Context) (Session, error) {
	leadID, _, err := t.store.Get(ctx, KeyLeadID)
	if err != nil {
		return Session{}, &PersistenceError{Key: KeyLeadID, Err: err}
	}
	flag, _, err := t.store.Get(ctx, KeyFormCompleted)
	if err != nil {
		return Session{}, &PersistenceError{Key: KeyFormCompleted, Err: err}
	}

	completed := flag == "true"
	if leadID == "" || !completed {
		if leadID != "" || flag != "" {
			logrus.WithFields(logrus.Fields{"lead_id": leadID, "form_completed": flag}).Warn("Inconsistent saved session, starting from the form")
		}
		return Session{}, nil
	}
	return Session{LeadID: leadID, FormCompleted: true}, nil
}

// SaveSession records a completed submission.
func (t *TranscriptStore) SaveSession(ctx context.Context, leadID string) error {
	if err := t.store.Set(ctx, KeyLeadID, leadID); err != nil {
		return &PersistenceError{Key: KeyLeadID, Err: err}
	}
	if err := t.store.Set(ctx, KeyFormCompleted, "true"); err != nil {
		return &PersistenceError{Key: KeyFormCompleted, Err: err}
	}
	return nil
}

// LoadTranscript returns the last RestoreLimit saved messages. A missing
// or malformed transcript restores as empty.
func (t *TranscriptStore) LoadTranscript(ctx context.Context) ([]Message, error) {
	raw, ok, err := t.store.Get(ctx, KeyChatHistory)
	if err != nil {
		return nil, &PersistenceError{Key: KeyChatHistory, Err: err}
	}
	if !ok || raw == "" {
		return nil, nil
	}

	var messages []Message
	if err := json.Unmarshal([]byte(raw), &messages); err != nil {
		logrus.WithError(err).Warn("Saved chat history is malformed, starting empty")
		return nil, nil
	}
	if len(messages) > RestoreLimit {
		messages = messages[len(messages)-RestoreLimit:]
	}
	return messages, nil
}

// SaveTranscript writes the whole in-memory transcript.
func (t *TranscriptStore) SaveTranscript(ctx context.Context, messages []Message) error {
	if messages == nil {
		messages = []Message{}
	}
	data, err := json.Marshal(messages)
	if err != nil {
		return &PersistenceError{Key: KeyChatHistory, Err: err}
	}
	if err := t.store.Set(ctx, KeyChatHistory, string(data)); err != nil {
		return &PersistenceError{Key: KeyChatHistory, Err: err}
	}
	return nil
}
