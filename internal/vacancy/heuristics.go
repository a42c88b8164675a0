package vacancy

import (
	"regexp"
	"strconv"
	"strings"
)

var yearsPattern = regexp.MustCompile(`(?i)(\d+)\s*\+?\s*(?:years?|yrs?)`)

// technologyKeywords are matched case-insensitively as whole words in the
// raw utterance and collected into core skills.
var technologyKeywords = []string{
	"React", "Angular", "Vue", "TypeScript", "JavaScript",
	"Go", "Golang", "Python", "Java", "Kotlin", "Swift",
	"Rust", "C++", "C#", "PHP", "Ruby",
	"PostgreSQL", "MySQL", "MongoDB", "Redis", "Kafka",
	"Docker", "Kubernetes", "Terraform", "AWS", "GCP", "Azure",
}

var departmentByTitleKeyword = []struct {
	keyword    string
	department string
}{
	{"developer", "Engineering"},
	{"engineer", "Engineering"},
	{"programmer", "Engineering"},
	{"designer", "Design"},
	{"analyst", "Analytics"},
	{"scientist", "Data"},
	{"recruiter", "HR"},
	{"marketer", "Marketing"},
	{"manager", "Management"},
}

// AutoFill applies cheap pattern-based inference from the raw utterance:
// a title keyword sets the department, "<number> years" fills the minimum
// experience, recognized technology names fill core skills. A value is
// written only when the field is currently unfilled, so it can never
// override explicit data; callers apply AutoFill before the extraction
// merge so a same-turn extracted value wins too.
func (s *Schema) AutoFill(current Vacancy, utterance string) Vacancy {
	out := current
	lower := strings.ToLower(utterance)

	if out.Department == "" && out.Title != "" {
		title := strings.ToLower(out.Title)
		for _, m := range departmentByTitleKeyword {
			if strings.Contains(title, m.keyword) {
				out.Department = m.department
				break
			}
		}
	}

	if out.ExperienceFrom == nil {
		if m := yearsPattern.FindStringSubmatch(utterance); m != nil {
			if years, err := strconv.ParseFloat(m[1], 64); err == nil {
				out.ExperienceFrom = &years
			}
		}
	}

	if len(out.CoreSkills) == 0 {
		var skills []string
		for _, kw := range technologyKeywords {
			if containsWord(lower, strings.ToLower(kw)) {
				skills = append(skills, kw)
			}
		}
		if len(skills) > 0 {
			out.CoreSkills = skills
		}
	}

	return out
}

func containsWord(haystack, word string) bool {
	idx := 0
	for {
		i := strings.Index(haystack[idx:], word)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(word)
		beforeOK := start == 0 || !isWordChar(haystack[start-1])
		afterOK := end == len(haystack) || !isWordChar(haystack[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}
