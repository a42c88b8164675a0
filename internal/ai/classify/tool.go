package classify

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"vacancybot/internal/ai/structured"
)

const (
	skipToolName        = "classify_skip_intent"
	skipToolDescription = "Decide whether the user refused to answer the pending field (skip) or is providing information (fill)."

	confirmToolName        = "classify_confirmation"
	confirmToolDescription = "Decide whether the user confirmed generating the job description (yes) or not (no)."
)

type skipArgs struct {
	Intent string `json:"intent" jsonschema:"required,enum=skip,enum=fill,description=Whether the user refused to answer the pending field"`
}

type ToolBasedSkipClassifier struct {
	chain *structured.Chain[*SkipRequest, skipArgs]
}

func NewToolBasedSkipClassifier(chatModel model.ToolCallingChatModel) (*ToolBasedSkipClassifier, error) {
	chain, err := structured.NewChain[*SkipRequest, skipArgs](
		chatModel,
		buildSkipPrompt,
		skipToolName,
		skipToolDescription,
	)
	if err != nil {
		return nil, err
	}
	return &ToolBasedSkipClassifier{chain: chain}, nil
}

func (c *ToolBasedSkipClassifier) ClassifySkip(ctx context.Context, req *SkipRequest) (SkipIntent, error) {
	result, err := c.chain.Invoke(ctx, req)
	if err != nil {
		return IntentFill, err
	}
	if result.Intent == string(IntentSkip) {
		return IntentSkip, nil
	}
	// Anything else, including an empty or unexpected label, means fill.
	return IntentFill, nil
}

func buildSkipPrompt(ctx context.Context, req *SkipRequest) ([]*schema.Message, error) {
	systemPrompt := fmt.Sprintf(`You are an assistant for a vacancy-filling robot.

The assistant just asked the user about one specific field. Decide whether the user's reply is a refusal to provide that field.

- skip: the user explicitly declines to answer this field (e.g. "skip it", "no, that's all", "doesn't matter", "none").
- fill: anything else, including answers, questions, digressions, or ambiguous replies. Do not interpret bare negations such as "don't skip" or "no idea yet, let me think" as skip.

Call the '%s' tool with the result.`, skipToolName)

	userPrompt := strings.Join([]string{
		fmt.Sprintf("# Pending field:\n%s [%s]: %s", req.Field.DisplayName, req.Field.Path, req.Field.Description),
		fmt.Sprintf("# Assistant question:\n%s", req.Question),
		fmt.Sprintf("# User reply:\n%s", req.Utterance),
	}, "\n\n")

	return []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(userPrompt),
	}, nil
}

type confirmArgs struct {
	Answer string `json:"answer" jsonschema:"required,enum=yes,enum=no,description=Whether the user confirmed generating the document"`
}

type ToolBasedConfirmClassifier struct {
	chain *structured.Chain[*ConfirmRequest, confirmArgs]
}

func NewToolBasedConfirmClassifier(chatModel model.ToolCallingChatModel) (*ToolBasedConfirmClassifier, error) {
	chain, err := structured.NewChain[*ConfirmRequest, confirmArgs](
		chatModel,
		buildConfirmPrompt,
		confirmToolName,
		confirmToolDescription,
	)
	if err != nil {
		return nil, err
	}
	return &ToolBasedConfirmClassifier{chain: chain}, nil
}

func (c *ToolBasedConfirmClassifier) ClassifyConfirm(ctx context.Context, req *ConfirmRequest) (ConfirmIntent, error) {
	result, err := c.chain.Invoke(ctx, req)
	if err != nil {
		return ConfirmNo, err
	}
	if result.Answer == string(ConfirmYes) {
		return ConfirmYes, nil
	}
	return ConfirmNo, nil
}

func buildConfirmPrompt(ctx context.Context, req *ConfirmRequest) ([]*schema.Message, error) {
	systemPrompt := fmt.Sprintf(`You are an assistant for a vacancy-filling robot.

All required fields are collected and the assistant asked whether to generate the job description now. Decide the user's answer.

- yes: the user clearly wants the document generated now (e.g. "yes, go ahead", "generate it", "looks good, proceed").
- no: everything else, including corrections, additional details, or hesitation. Do not interpret bare affirmations in an unrelated context as yes.

Call the '%s' tool with the result.`, confirmToolName)

	sections := []string{}
	if req.Summary != "" {
		sections = append(sections, fmt.Sprintf("# Vacancy summary:\n%s", req.Summary))
	}
	sections = append(sections,
		fmt.Sprintf("# Assistant question:\n%s", req.Question),
		fmt.Sprintf("# User reply:\n%s", req.Utterance),
	)

	return []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(strings.Join(sections, "\n\n")),
	}, nil
}
