// Package extract wraps the text-understanding capability that turns one
// user utterance plus context into a candidate record update. It never
// mutates conversation state itself.
package extract

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"vacancybot/internal/ai/structured"
	"vacancybot/internal/vacancy"
)

const (
	extractToolName        = "extract_vacancy_fields"
	extractToolDescription = "Report vacancy fields mentioned in the user's latest message, or ask for clarification. Only include information the user explicitly provided."

	// GenericClarification is the commentary substituted when the
	// capability's output cannot be parsed at all.
	GenericClarification = "Sorry, I didn't quite get that. Could you rephrase?"
)

// Request carries everything the capability needs for one utterance.
type Request struct {
	Schema        string
	Record        vacancy.Vacancy
	History       []*schema.Message
	Utterance     string
	MissingFields []vacancy.FieldDescriptor
}

type Extractor interface {
	Extract(ctx context.Context, req *Request) (*vacancy.ExtractionResult, error)
}

type extractArgs struct {
	Status     string          `json:"status" jsonschema:"required,enum=success,enum=clarification_needed,description=Whether fields were understood or a clarification is needed"`
	Record     vacancy.Vacancy `json:"record" jsonschema:"description=Full copy of the vacancy record with every field the user has provided so far; leave fields the user never mentioned empty"`
	Commentary string          `json:"commentary,omitempty" jsonschema:"description=Clarifying question for the user when status is clarification_needed"`
}

type ToolBasedExtractor struct {
	chain *structured.Chain[*Request, extractArgs]
}

func NewToolBasedExtractor(chatModel model.ToolCallingChatModel) (*ToolBasedExtractor, error) {
	chain, err := structured.NewChain[*Request, extractArgs](
		chatModel,
		buildExtractPrompt,
		extractToolName,
		extractToolDescription,
	)
	if err != nil {
		return nil, err
	}
	return &ToolBasedExtractor{chain: chain}, nil
}

// Extract returns a clarification result, not an error, when the model
// answered but its output could not be parsed; the record must stay
// unchanged in that case rather than failing the turn.
func (e *ToolBasedExtractor) Extract(ctx context.Context, req *Request) (*vacancy.ExtractionResult, error) {
	result, err := e.chain.Invoke(ctx, req)
	if err != nil {
		if structured.IsParseError(err) {
			return &vacancy.ExtractionResult{
				Status:     vacancy.ExtractionClarificationNeeded,
				Commentary: GenericClarification,
			}, nil
		}
		return nil, fmt.Errorf("extraction call failed: %w", err)
	}

	out := &vacancy.ExtractionResult{
		Status:     vacancy.ExtractionSuccess,
		Record:     result.Record,
		Commentary: result.Commentary,
	}
	if result.Status == string(vacancy.ExtractionClarificationNeeded) {
		out.Status = vacancy.ExtractionClarificationNeeded
		if out.Commentary == "" {
			out.Commentary = GenericClarification
		}
	}
	return out, nil
}

func buildExtractPrompt(ctx context.Context, req *Request) ([]*schema.Message, error) {
	userPrompt, err := FormatRequest(req)
	if err != nil {
		return nil, fmt.Errorf("format extraction request: %w", err)
	}

	systemPrompt := fmt.Sprintf(`You are an assistant collecting a structured job vacancy through conversation.

Analyze the user's latest message together with the current record and call %s with the result. Rules:
- Only report information the user explicitly provided; never invent values.
- Return the full record: keep every previously collected value and add the new ones. Leave fields the user never mentioned empty.
- Match enum fields to their allowed values exactly.
- If the message is too ambiguous to extract anything and is about the vacancy, set status to clarification_needed and phrase a short clarifying question in commentary.`, extractToolName)

	messages := []*schema.Message{schema.SystemMessage(systemPrompt)}
	messages = append(messages, req.History...)
	messages = append(messages, schema.UserMessage(userPrompt))
	return messages, nil
}
