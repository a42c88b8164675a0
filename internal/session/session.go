// Package session holds per-conversation state and its repository.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"vacancybot/internal/vacancy"
)

type Status string

const (
	StatusCollecting        Status = "collecting"
	StatusPendingGeneration Status = "pending_generation"
	StatusCompleted         Status = "completed"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Session is owned by exactly one conversation and mutated once per
// turn by the orchestrator.
type Session struct {
	ID         string          `json:"id"`
	Record     vacancy.Vacancy `json:"record"`
	Transcript []Message       `json:"transcript"`
	LastAsked  string          `json:"last_asked,omitempty"`
	// Skipped lists field paths the user declined to answer; they keep
	// their unfilled default but are not asked about again.
	Skipped   []string  `json:"skipped,omitempty"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func New() *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		Status:    StatusCollecting,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MarkSkipped records that the field path was declined. Duplicates are
// collapsed.
func (s *Session) MarkSkipped(path string) {
	for _, p := range s.Skipped {
		if p == path {
			return
		}
	}
	s.Skipped = append(s.Skipped, path)
}

// SkippedSet returns the skipped paths as a lookup set.
func (s *Session) SkippedSet() map[string]bool {
	if len(s.Skipped) == 0 {
		return nil
	}
	set := make(map[string]bool, len(s.Skipped))
	for _, p := range s.Skipped {
		set[p] = true
	}
	return set
}

// DefaultTranscriptLimit bounds the transcript kept per session.
const DefaultTranscriptLimit = 50

// Append adds messages to the transcript, dropping the oldest entries
// beyond limit (0 means DefaultTranscriptLimit).
func (s *Session) Append(limit int, msgs ...Message) {
	if limit <= 0 {
		limit = DefaultTranscriptLimit
	}
	for _, m := range msgs {
		if m.Text == "" {
			continue
		}
		s.Transcript = append(s.Transcript, m)
	}
	if overflow := len(s.Transcript) - limit; overflow > 0 {
		s.Transcript = append([]Message(nil), s.Transcript[overflow:]...)
	}
}

// Repository is the injected session store contract.
type Repository interface {
	Get(ctx context.Context, id string) (*Session, bool, error)
	Put(ctx context.Context, sess *Session) error
	Delete(ctx context.Context, id string) error
}
