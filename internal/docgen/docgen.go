// Package docgen turns a completed vacancy record into a job-description
// document. From the caller's point of view generation always succeeds:
// when the capability fails, a deterministic fallback built from the
// record's own values is returned instead.
package docgen

import (
	"context"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"vacancybot/internal/logger"
	"vacancybot/internal/vacancy"
)

// ContentGenerator is the narrow prose-generation capability contract;
// both the chat-model and gemini backends satisfy it.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// ChatModelGenerator adapts an eino chat model to ContentGenerator.
type ChatModelGenerator struct {
	chatModel model.ToolCallingChatModel
}

func NewChatModelGenerator(chatModel model.ToolCallingChatModel) *ChatModelGenerator {
	return &ChatModelGenerator{chatModel: chatModel}
}

func (g *ChatModelGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	response, err := g.chatModel.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		return "", fmt.Errorf("LLM call failed: %w", err)
	}
	return response.Content, nil
}

type Generator struct {
	schema *vacancy.Schema
	gen    ContentGenerator
	logger *zap.Logger
}

func New(s *vacancy.Schema, gen ContentGenerator, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{schema: s, gen: gen, logger: logger}
}

const generatePromptTemplate = `Write a polished job description based on the structured vacancy record below. Use short sections: About the role, Responsibilities, Requirements, Nice to have, and Conditions where the data supports them. Do not invent facts that are not in the record. Plain text, no markdown headers.

Vacancy record JSON:
%s`

// Generate returns the document text. It never returns an error: on
// capability failure it logs and composes the fallback from the
// record's mandatory fields.
func (g *Generator) Generate(ctx context.Context, rec vacancy.Vacancy) string {
	if g.gen != nil {
		recordJSON, err := sonic.Marshal(rec)
		if err == nil {
			text, genErr := g.gen.GenerateContent(ctx, fmt.Sprintf(generatePromptTemplate, string(recordJSON)))
			if genErr == nil && strings.TrimSpace(text) != "" {
				g.logger.Debug("document generated",
					zap.String("preview", logger.TruncateForLog(text, 200)))
				return strings.TrimSpace(text)
			}
			if genErr != nil {
				g.logger.Warn("document generation failed, using fallback", zap.Error(genErr))
			}
		} else {
			g.logger.Warn("marshal record for generation failed", zap.Error(err))
		}
	}
	return g.Fallback(rec)
}

// Fallback is the deterministic minimal document.
func (g *Generator) Fallback(rec vacancy.Vacancy) string {
	var sb strings.Builder
	title := strings.TrimSpace(rec.Title)
	if title == "" {
		title = "Open position"
	}
	sb.WriteString(title)
	sb.WriteString("\n\n")
	if summary := g.schema.Summary(rec); summary != "" {
		sb.WriteString(summary)
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
