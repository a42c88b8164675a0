// Package structured runs a chat model with a single forced tool call and
// decodes the tool arguments into a typed result.
package structured

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
	"github.com/kaptinlin/jsonrepair"
)

// ErrParse marks responses that arrived but could not be decoded into the
// expected shape, as opposed to transport or model failures.
var ErrParse = errors.New("malformed structured response")

func IsParseError(err error) bool {
	return errors.Is(err, ErrParse)
}

type PromptBuilder[TInput any] func(ctx context.Context, input TInput) ([]*schema.Message, error)

type Chain[TInput, TOutput any] struct {
	PromptBuilder PromptBuilder[TInput]
	ChatModel     model.ToolCallingChatModel
	ToolInfo      *schema.ToolInfo
}

func NewChain[TInput, TOutput any](
	chatModel model.ToolCallingChatModel,
	promptBuilder PromptBuilder[TInput],
	toolName string,
	toolDesc string,
) (*Chain[TInput, TOutput], error) {
	toolInfo, err := utils.GoStruct2ToolInfo[TOutput](toolName, toolDesc)
	if err != nil {
		return nil, fmt.Errorf("convert tool info failed: %w", err)
	}
	return &Chain[TInput, TOutput]{
		PromptBuilder: promptBuilder,
		ChatModel:     chatModel,
		ToolInfo:      toolInfo,
	}, nil
}

func (s *Chain[TInput, TOutput]) Invoke(ctx context.Context, input TInput) (*TOutput, error) {
	messages, err := s.PromptBuilder(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("build prompt failed: %w", err)
	}

	response, err := s.ChatModel.Generate(ctx, messages,
		model.WithTools([]*schema.ToolInfo{s.ToolInfo}),
		model.WithToolChoice(schema.ToolChoiceForced, s.ToolInfo.Name),
	)
	if err != nil {
		return nil, fmt.Errorf("call model failed: %w", err)
	}

	raw := ""
	if len(response.ToolCalls) > 0 {
		raw = response.ToolCalls[0].Function.Arguments
	} else {
		// Some backends reply with plain JSON content despite the forced
		// tool choice; try the content before giving up.
		raw = StripCodeFence(response.Content)
	}
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: empty response content", ErrParse)
	}

	var result TOutput
	if err := UnmarshalLenient([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return &result, nil
}

// StripCodeFence removes a wrapping markdown code fence, with or without
// a language tag, leaving the inner payload.
func StripCodeFence(s string) string {
	out := strings.TrimSpace(s)
	if !strings.HasPrefix(out, "```") {
		return out
	}
	out = strings.TrimPrefix(out, "```")
	if i := strings.Index(out, "\n"); i >= 0 {
		out = out[i+1:]
	}
	out = strings.TrimSuffix(strings.TrimSpace(out), "```")
	return strings.TrimSpace(out)
}

// UnmarshalLenient decodes JSON, attempting a jsonrepair pass when the
// payload is malformed (truncated braces, trailing commas, single quotes).
func UnmarshalLenient(data []byte, v any) error {
	err := sonic.Unmarshal(data, v)
	if err == nil {
		return nil
	}
	fixed, repairErr := jsonrepair.JSONRepair(string(data))
	if repairErr != nil {
		return err
	}
	return sonic.Unmarshal([]byte(fixed), v)
}
