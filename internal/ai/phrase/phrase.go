// Package phrase turns a field descriptor into the next user-visible
// question. The LLM path makes questions conversational; a deterministic
// per-field fallback keeps the dialogue moving when the call fails.
package phrase

import (
	"context"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"vacancybot/internal/vacancy"
)

// Welcome is the static prompt for a fresh session with no message.
const Welcome = "Hi! I'll help you put together a job vacancy. Tell me about the position you're hiring for, for example: \"Frontend developer, React, 3 years of experience\"."

// ConfirmPrompt is asked once every field of the current pass is filled.
const ConfirmPrompt = "Great, I have everything I need. Should I generate the job description now, or would you like to add anything?"

type Phraser interface {
	PhraseQuestion(ctx context.Context, field vacancy.FieldDescriptor, rec vacancy.Vacancy) (string, error)
}

// DefaultSystemPromptTemplate may contain a single "%s" placeholder for
// the reply language.
const DefaultSystemPromptTemplate = `You are a friendly assistant helping a recruiter describe a job vacancy step by step.

Phrase one short, natural question asking for the given field. Acknowledge context from the record already collected when it helps, but ask about exactly one field and nothing else. No lists, no bullet points. Reply in %s.`

type ToolBasedPhraser struct {
	lang      string
	chatModel model.ToolCallingChatModel
}

type Option func(*ToolBasedPhraser)

// WithLang sets the language used by the system prompt template.
func WithLang(lang string) Option {
	return func(p *ToolBasedPhraser) {
		p.lang = lang
	}
}

func NewToolBasedPhraser(chatModel model.ToolCallingChatModel, opts ...Option) *ToolBasedPhraser {
	p := &ToolBasedPhraser{lang: "English", chatModel: chatModel}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

func (p *ToolBasedPhraser) PhraseQuestion(ctx context.Context, field vacancy.FieldDescriptor, rec vacancy.Vacancy) (string, error) {
	recordJSON, err := sonic.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("marshal record: %w", err)
	}

	sections := []string{
		fmt.Sprintf("# Collected so far:\n```json\n%s\n```", string(recordJSON)),
		fmt.Sprintf("# Ask about:\n%s [%s]: %s", field.DisplayName, field.Path, field.Description),
	}
	if len(field.EnumOptions) > 0 {
		sections = append(sections, fmt.Sprintf("# Allowed values:\n%s", strings.Join(field.EnumOptions, ", ")))
	}

	messages := []*schema.Message{
		schema.SystemMessage(fmt.Sprintf(DefaultSystemPromptTemplate, p.lang)),
		schema.UserMessage(strings.Join(sections, "\n\n")),
	}

	response, err := p.chatModel.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("LLM call failed: %w", err)
	}
	question := strings.TrimSpace(response.Content)
	if question == "" {
		return "", fmt.Errorf("empty question from model for %s", field.Path)
	}
	return question, nil
}

// LocalPhraser returns the schema-driven static question text.
type LocalPhraser struct{}

func (LocalPhraser) PhraseQuestion(ctx context.Context, field vacancy.FieldDescriptor, rec vacancy.Vacancy) (string, error) {
	if field.Question != "" {
		return field.Question, nil
	}
	return fmt.Sprintf("Please provide: %s.", field.DisplayName), nil
}

// FailbackPhraser tries each phraser in order and returns the first
// non-erroring question.
type FailbackPhraser struct {
	phrasers []Phraser
}

func NewFailbackPhraser(phrasers ...Phraser) *FailbackPhraser {
	return &FailbackPhraser{phrasers: phrasers}
}

func (p *FailbackPhraser) PhraseQuestion(ctx context.Context, field vacancy.FieldDescriptor, rec vacancy.Vacancy) (string, error) {
	var lastErr error
	for _, phraser := range p.phrasers {
		question, err := phraser.PhraseQuestion(ctx, field, rec)
		if err == nil {
			return question, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("all phrasers failed: %w", lastErr)
}
