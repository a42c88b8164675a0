// Package flow sequences one conversation turn: skip detection, field
// extraction, record merge, next-field selection and the terminal
// document-generation step.
package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bytedance/sonic"
	einoschema "github.com/cloudwego/eino/schema"

	"vacancybot/internal/ai/classify"
	"vacancybot/internal/ai/extract"
	"vacancybot/internal/ai/phrase"
	"vacancybot/internal/docgen"
	"vacancybot/internal/session"
	"vacancybot/internal/vacancy"
	"vacancybot/internal/webhook"
)

// CompletedMessage is returned for any turn on an already-completed session.
const CompletedMessage = "This vacancy is already done. Start a new conversation to create another one."

type Config struct {
	Schema          *vacancy.Schema
	Extractor       extract.Extractor
	Skip            classify.SkipClassifier
	Confirm         classify.ConfirmClassifier
	Phraser         phrase.Phraser
	Docs            *docgen.Generator
	Sessions        session.Repository
	Sink            webhook.Sink // optional
	TranscriptLimit int
}

type Flow struct {
	schema          *vacancy.Schema
	schemaJSON      string
	extractor       extract.Extractor
	skip            classify.SkipClassifier
	confirm         classify.ConfirmClassifier
	phraser         phrase.Phraser
	docs            *docgen.Generator
	sessions        session.Repository
	sink            webhook.Sink
	transcriptLimit int
	locks           session.KeyedMutex
}

func New(cfg Config) (*Flow, error) {
	if cfg.Schema == nil || cfg.Extractor == nil || cfg.Skip == nil ||
		cfg.Confirm == nil || cfg.Phraser == nil || cfg.Docs == nil || cfg.Sessions == nil {
		return nil, fmt.Errorf("flow: missing required dependency")
	}
	schemaJSON, err := cfg.Schema.JSONString()
	if err != nil {
		return nil, fmt.Errorf("reflect record schema: %w", err)
	}
	return &Flow{
		schema:          cfg.Schema,
		schemaJSON:      schemaJSON,
		extractor:       cfg.Extractor,
		skip:            cfg.Skip,
		confirm:         cfg.Confirm,
		phraser:         cfg.Phraser,
		docs:            cfg.Docs,
		sessions:        cfg.Sessions,
		sink:            cfg.Sink,
		transcriptLimit: cfg.TranscriptLimit,
	}, nil
}

// Result is the outcome of one turn.
type Result struct {
	SessionID            string
	Message              string
	IsComplete           bool
	Record               *vacancy.Vacancy
	CompletionPercentage int
	WebhookSuccess       *bool
	// Done reports that the session generated its document and accepts
	// no further input.
	Done bool
}

// Turn processes one user message for the given session, creating the
// session when the id is absent or unknown. Turns for one session are
// serialized; turns across sessions run independently.
func (f *Flow) Turn(ctx context.Context, sessionID, message string) (*Result, error) {
	sessionID = strings.TrimSpace(sessionID)
	message = strings.TrimSpace(message)

	sess, fresh, err := f.loadOrCreate(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	unlock := f.locks.Lock(sess.ID)
	defer unlock()
	if !fresh {
		// Re-read under the lock: another turn may have advanced the session.
		if current, ok, gErr := f.sessions.Get(ctx, sess.ID); gErr == nil && ok {
			sess = current
		}
	}

	if fresh && message == "" {
		sess.Append(f.transcriptLimit, session.Message{Role: session.RoleAssistant, Text: phrase.Welcome})
		if err := f.sessions.Put(ctx, sess); err != nil {
			return nil, err
		}
		return f.result(sess, phrase.Welcome, nil), nil
	}

	sess.Append(f.transcriptLimit, session.Message{Role: session.RoleUser, Text: message})

	var res *Result
	switch sess.Status {
	case session.StatusCompleted:
		res = f.result(sess, CompletedMessage, nil)
	case session.StatusPendingGeneration:
		res, err = f.handlePending(ctx, sess, message)
	default:
		res, err = f.handleCollecting(ctx, sess, message)
	}
	if err != nil {
		return nil, err
	}

	if err := f.sessions.Put(ctx, sess); err != nil {
		return nil, err
	}
	return res, nil
}

// ErrSessionNotFound is returned by Generate for an unknown session id.
var ErrSessionNotFound = errors.New("session not found")

// IncompleteError reports the mandatory fields still missing when a
// forced generation is requested too early.
type IncompleteError struct {
	Missing []vacancy.FieldDescriptor
}

func (e *IncompleteError) Error() string {
	names := make([]string, len(e.Missing))
	for i, fd := range e.Missing {
		names[i] = fd.DisplayName
	}
	return "vacancy is missing required fields: " + strings.Join(names, ", ")
}

// Generate forces document generation for the session, bypassing the
// confirmation dialogue. All mandatory fields must already be filled.
func (f *Flow) Generate(ctx context.Context, sessionID string) (*Result, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, ErrSessionNotFound
	}
	unlock := f.locks.Lock(sessionID)
	defer unlock()

	sess, ok, err := f.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !ok {
		return nil, ErrSessionNotFound
	}
	if sess.Status == session.StatusCompleted {
		return f.result(sess, CompletedMessage, nil), nil
	}
	if missing := f.schema.MissingRequired(sess.Record); len(missing) > 0 {
		return nil, &IncompleteError{Missing: missing}
	}

	res := f.complete(ctx, sess)
	if err := f.sessions.Put(ctx, sess); err != nil {
		return nil, err
	}
	return res, nil
}

// GenerateFromRecord produces the document for an explicit record with
// no session involved. All mandatory fields must be filled.
func (f *Flow) GenerateFromRecord(ctx context.Context, rec vacancy.Vacancy) (*Result, error) {
	if missing := f.schema.MissingRequired(rec); len(missing) > 0 {
		return nil, &IncompleteError{Missing: missing}
	}
	message, webhookSuccess := f.produceDocument(ctx, rec)
	return &Result{
		Message:              message,
		IsComplete:           true,
		Record:               &rec,
		CompletionPercentage: 100,
		WebhookSuccess:       webhookSuccess,
		Done:                 true,
	}, nil
}

func (f *Flow) loadOrCreate(ctx context.Context, id string) (*session.Session, bool, error) {
	if id != "" {
		sess, ok, err := f.sessions.Get(ctx, id)
		if err != nil {
			return nil, false, fmt.Errorf("load session: %w", err)
		}
		if ok {
			return sess, false, nil
		}
	}
	return session.New(), true, nil
}

func (f *Flow) handleCollecting(ctx context.Context, sess *session.Session, message string) (*Result, error) {
	if message == "" {
		// Nothing to analyze; just move the conversation along.
		return f.advance(ctx, sess)
	}

	if skipDec := f.detectSkip(ctx, sess, message); skipDec != nil {
		merged, err := f.schema.Merge(sess.Record, nil, skipDec)
		if err != nil {
			slog.Debug("skip merge failed", "field", skipDec.TargetField, "error", err)
		} else {
			sess.Record = merged
			sess.MarkSkipped(skipDec.TargetField)
		}
		return f.advance(ctx, sess)
	}

	res, err := f.extractor.Extract(ctx, &extract.Request{
		Schema:        f.schemaJSON,
		Record:        sess.Record,
		History:       f.einoHistory(sess),
		Utterance:     message,
		MissingFields: f.schema.MissingRequired(sess.Record),
	})
	if err != nil {
		// Capability failure: record unchanged, the turn still produces a
		// deterministic question instead of blocking the conversation.
		slog.Debug("extraction failed", "error", err)
		return f.advance(ctx, sess)
	}
	if res.Status == vacancy.ExtractionClarificationNeeded {
		commentary := res.Commentary
		if commentary == "" {
			commentary = extract.GenericClarification
		}
		sess.Append(f.transcriptLimit, session.Message{Role: session.RoleAssistant, Text: commentary})
		return f.result(sess, commentary, nil), nil
	}

	base := f.schema.AutoFill(sess.Record, message)
	merged, err := f.schema.Merge(base, res, nil)
	if err != nil {
		slog.Debug("merge failed", "error", err)
		merged = base
	}
	sess.Record = merged

	return f.advance(ctx, sess)
}

// advance runs the completion and next-field selection step and phrases
// the outgoing message.
func (f *Flow) advance(ctx context.Context, sess *session.Session) (*Result, error) {
	next, err := f.schema.SelectNextExcluding(sess.Record, sess.LastAsked, sess.SkippedSet())
	if err != nil {
		return nil, fmt.Errorf("select next field: %w", err)
	}
	if next == nil && !f.schema.IsComplete(sess.Record) {
		// Every remaining unfilled field was skipped, but mandatory ones
		// cannot stay empty. Re-ask the first missing one.
		if missing := f.schema.MissingRequired(sess.Record); len(missing) > 0 {
			next = &missing[0]
		}
	}

	if next != nil {
		question := f.phraseQuestion(ctx, *next, sess.Record)
		sess.LastAsked = next.Path
		sess.Append(f.transcriptLimit, session.Message{Role: session.RoleAssistant, Text: question})
		return f.result(sess, question, nil), nil
	}

	sess.Status = session.StatusPendingGeneration
	sess.LastAsked = ""
	msg := phrase.ConfirmPrompt
	if summary := f.schema.Summary(sess.Record); summary != "" {
		msg = "Here is what I have so far:\n" + summary + "\n\n" + phrase.ConfirmPrompt
	}
	sess.Append(f.transcriptLimit, session.Message{Role: session.RoleAssistant, Text: msg})
	return f.result(sess, msg, nil), nil
}

func (f *Flow) handlePending(ctx context.Context, sess *session.Session, message string) (*Result, error) {
	if message == "" {
		sess.Append(f.transcriptLimit, session.Message{Role: session.RoleAssistant, Text: phrase.ConfirmPrompt})
		return f.result(sess, phrase.ConfirmPrompt, nil), nil
	}

	intent, err := f.confirm.ClassifyConfirm(ctx, &classify.ConfirmRequest{
		Summary:   f.schema.Summary(sess.Record),
		Question:  phrase.ConfirmPrompt,
		Utterance: message,
	})
	if err != nil {
		slog.Debug("confirmation classification failed", "error", err)
		// Classification is unavailable; mandatory completeness is the
		// authoritative signal and it held when we entered this state.
		if f.schema.IsComplete(sess.Record) {
			return f.complete(ctx, sess), nil
		}
		intent = classify.ConfirmNo
	}
	if intent == classify.ConfirmYes {
		return f.complete(ctx, sess), nil
	}

	// Not a confirmation; the message may carry corrections or additions.
	res, exErr := f.extractor.Extract(ctx, &extract.Request{
		Schema:        f.schemaJSON,
		Record:        sess.Record,
		History:       f.einoHistory(sess),
		Utterance:     message,
		MissingFields: f.schema.MissingRequired(sess.Record),
	})
	if exErr == nil && res.Status == vacancy.ExtractionSuccess {
		base := f.schema.AutoFill(sess.Record, message)
		merged, mErr := f.schema.Merge(base, res, nil)
		if mErr == nil && !recordsEqual(sess.Record, merged) {
			sess.Record = merged
			sess.Status = session.StatusCollecting
			return f.advance(ctx, sess)
		}
	}
	if exErr == nil && res.Status == vacancy.ExtractionClarificationNeeded && res.Commentary != "" {
		sess.Append(f.transcriptLimit, session.Message{Role: session.RoleAssistant, Text: res.Commentary})
		return f.result(sess, res.Commentary, nil), nil
	}

	sess.Append(f.transcriptLimit, session.Message{Role: session.RoleAssistant, Text: phrase.ConfirmPrompt})
	return f.result(sess, phrase.ConfirmPrompt, nil), nil
}

func (f *Flow) complete(ctx context.Context, sess *session.Session) *Result {
	msg, webhookSuccess := f.produceDocument(ctx, sess.Record)
	sess.Status = session.StatusCompleted
	sess.LastAsked = ""
	sess.Append(f.transcriptLimit, session.Message{Role: session.RoleAssistant, Text: msg})
	return f.result(sess, msg, webhookSuccess)
}

// produceDocument generates the document and forwards it to the sink
// when one is configured. Sink failure softens the message but never
// fails generation.
func (f *Flow) produceDocument(ctx context.Context, rec vacancy.Vacancy) (string, *bool) {
	document := f.docs.Generate(ctx, rec)
	var webhookSuccess *bool
	msg := document
	if f.sink != nil {
		ok := f.sink.Notify(ctx, rec, document)
		webhookSuccess = &ok
		if !ok {
			msg = document + "\n\nNote: the vacancy could not be forwarded to the configured endpoint."
		}
	}
	return msg, webhookSuccess
}

func (f *Flow) detectSkip(ctx context.Context, sess *session.Session, message string) *vacancy.SkipDecision {
	if sess.LastAsked == "" {
		return nil
	}
	fd, ok := f.schema.Lookup(sess.LastAsked)
	if !ok {
		return nil
	}
	intent, err := f.skip.ClassifySkip(ctx, &classify.SkipRequest{
		Field:     fd,
		Question:  lastAssistantText(sess),
		Utterance: message,
	})
	if err != nil {
		// Skipping requires positive classification; a failed call means fill.
		slog.Debug("skip classification failed", "field", fd.Path, "error", err)
		return nil
	}
	if intent != classify.IntentSkip {
		return nil
	}
	return classify.SkipDecisionFor(fd)
}

func (f *Flow) phraseQuestion(ctx context.Context, fd vacancy.FieldDescriptor, rec vacancy.Vacancy) string {
	question, err := f.phraser.PhraseQuestion(ctx, fd, rec)
	if err == nil && strings.TrimSpace(question) != "" {
		return question
	}
	slog.Debug("question phrasing failed", "field", fd.Path, "error", err)
	question, _ = phrase.LocalPhraser{}.PhraseQuestion(ctx, fd, rec)
	return question
}

func (f *Flow) result(sess *session.Session, message string, webhookSuccess *bool) *Result {
	rec := sess.Record
	return &Result{
		SessionID:            sess.ID,
		Message:              message,
		IsComplete:           f.schema.IsComplete(rec),
		Record:               &rec,
		CompletionPercentage: f.schema.CompletionPercentage(rec),
		WebhookSuccess:       webhookSuccess,
		Done:                 sess.Status == session.StatusCompleted,
	}
}

// einoHistory converts the transcript, minus the utterance being
// processed, into chat messages for the extraction prompt.
func (f *Flow) einoHistory(sess *session.Session) []*einoschema.Message {
	transcript := sess.Transcript
	if n := len(transcript); n > 0 && transcript[n-1].Role == session.RoleUser {
		transcript = transcript[:n-1]
	}
	history := make([]*einoschema.Message, 0, len(transcript))
	for _, m := range transcript {
		switch m.Role {
		case session.RoleUser:
			history = append(history, einoschema.UserMessage(m.Text))
		case session.RoleAssistant:
			history = append(history, einoschema.AssistantMessage(m.Text, nil))
		}
	}
	return history
}

func lastAssistantText(sess *session.Session) string {
	for i := len(sess.Transcript) - 1; i >= 0; i-- {
		if sess.Transcript[i].Role == session.RoleAssistant {
			return sess.Transcript[i].Text
		}
	}
	return ""
}

func recordsEqual(a, b vacancy.Vacancy) bool {
	aj, errA := sonic.Marshal(a)
	bj, errB := sonic.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return string(aj) == string(bj)
}
