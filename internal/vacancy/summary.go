package vacancy

import (
	"fmt"
	"strconv"
	"strings"
)

// Summary renders every filled field as a "Name: value" line in
// canonical order, for confirmation prompts and fallback documents.
func (s *Schema) Summary(rec Vacancy) string {
	doc, err := docOf(rec)
	if err != nil {
		return ""
	}
	var sb strings.Builder
	for _, fd := range s.fields {
		value := valueAt(doc, fd.Path)
		if IsUnfilled(fd.Kind, value) {
			continue
		}
		sb.WriteString(fd.DisplayName)
		sb.WriteString(": ")
		sb.WriteString(formatValue(value))
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		if v {
			return "yes"
		}
		return "no"
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, formatValue(item))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprintf("%v", v)
	}
}
