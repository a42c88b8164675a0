package extract

import (
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"

	"vacancybot/internal/vacancy"
)

// FormatRequest renders the extraction context as a sectioned markdown
// prompt: current date, record JSON, schema, missing fields, utterance.
func FormatRequest(req *Request) (string, error) {
	recordJSON, err := sonic.Marshal(req.Record)
	if err != nil {
		return "", err
	}

	sections := []string{
		fmt.Sprintf("# Current Date:\n%s", time.Now().Format(time.RFC3339)),
		fmt.Sprintf("# Vacancy record JSON:\n```json\n%s\n```", string(recordJSON)),
	}
	if req.Schema != "" {
		sections = append(sections, fmt.Sprintf("# Vacancy record schema JSON:\n```json\n%s\n```", req.Schema))
	}
	if s := formatMissingFieldsSection(req.MissingFields); s != "" {
		sections = append(sections, s)
	}
	if req.Utterance != "" {
		sections = append(sections, fmt.Sprintf("# Latest user message:\n%s", req.Utterance))
	}
	return strings.Join(sections, "\n\n"), nil
}

func formatMissingFieldsSection(fields []vacancy.FieldDescriptor) string {
	if len(fields) == 0 {
		return ""
	}
	var buf strings.Builder
	buf.WriteString("# Missing required fields:\n")
	table := tablewriter.NewTable(&buf, tablewriter.WithRenderer(renderer.NewMarkdown()))
	table.Header("Field", "Path", "Description")
	for _, field := range fields {
		_ = table.Append(field.DisplayName, field.Path, field.Description)
	}
	_ = table.Render()
	return buf.String()
}
