package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/google/go-cmp/cmp"

	"vacancybot/internal/vacancy"
)

// scriptedChatModel replays a canned response, standing in for the real
// backend so parse handling can be exercised without network calls.
type scriptedChatModel struct {
	response *schema.Message
	err      error
}

func (m *scriptedChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	return m.response, m.err
}

func (m *scriptedChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}

func (m *scriptedChatModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	return m, nil
}

func toolCallMessage(arguments string) *schema.Message {
	return &schema.Message{
		Role: schema.Assistant,
		ToolCalls: []schema.ToolCall{{
			Function: schema.FunctionCall{
				Name:      extractToolName,
				Arguments: arguments,
			},
		}},
	}
}

func newScriptedExtractor(t *testing.T, response *schema.Message) *ToolBasedExtractor {
	t.Helper()
	ex, err := NewToolBasedExtractor(&scriptedChatModel{response: response})
	if err != nil {
		t.Fatalf("NewToolBasedExtractor: %v", err)
	}
	return ex
}

func TestExtractValidToolCall(t *testing.T) {
	ex := newScriptedExtractor(t, toolCallMessage(
		`{"status": "success", "record": {"title": "Go Developer"}}`,
	))

	result, err := ex.Extract(context.Background(), &Request{Utterance: "I need a Go developer"})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if result.Status != vacancy.ExtractionSuccess {
		t.Fatalf("status = %q, want success", result.Status)
	}
	if result.Record.Title != "Go Developer" {
		t.Fatalf("title = %q, want Go Developer", result.Record.Title)
	}
}

// Responses that arrive but cannot be decoded must come back as a
// clarification request with an empty record, never as an error.
func TestExtractUnparsableResponseAsksForClarification(t *testing.T) {
	cases := []struct {
		name     string
		response *schema.Message
	}{
		{
			name:     "empty response",
			response: &schema.Message{Role: schema.Assistant},
		},
		{
			name:     "prose instead of tool call",
			response: schema.AssistantMessage("Sure! Let me know which role you are hiring for.", nil),
		},
		{
			name:     "tool arguments with wrong types",
			response: toolCallMessage(`{"status": 42, "record": "not an object"`),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ex := newScriptedExtractor(t, tc.response)

			result, err := ex.Extract(context.Background(), &Request{Utterance: "hello"})
			if err != nil {
				t.Fatalf("Extract: %v", err)
			}
			if result.Status != vacancy.ExtractionClarificationNeeded {
				t.Fatalf("status = %q, want clarification_needed", result.Status)
			}
			if result.Commentary != GenericClarification {
				t.Fatalf("commentary = %q, want generic clarification", result.Commentary)
			}
			if diff := cmp.Diff(vacancy.Vacancy{}, result.Record); diff != "" {
				t.Fatalf("record should stay empty (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtractModelFailureIsAnError(t *testing.T) {
	ex, err := NewToolBasedExtractor(&scriptedChatModel{err: errors.New("connection refused")})
	if err != nil {
		t.Fatalf("NewToolBasedExtractor: %v", err)
	}

	if _, err := ex.Extract(context.Background(), &Request{Utterance: "hello"}); err == nil {
		t.Fatal("expected transport failure to surface as an error")
	}
}
