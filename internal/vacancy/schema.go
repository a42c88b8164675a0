package vacancy

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/eino-contrib/jsonschema"
)

type FieldKind string

const (
	KindString  FieldKind = "string"
	KindNumber  FieldKind = "number"
	KindBoolean FieldKind = "boolean"
	KindEnum    FieldKind = "enum"
	KindArray   FieldKind = "array"
)

// FieldDescriptor describes one leaf of the record. The ordered sequence
// of descriptors defines both the canonical fill order and the schema
// handed to the extraction capability.
type FieldDescriptor struct {
	Path        string    `json:"path"`
	DisplayName string    `json:"display_name"`
	Kind        FieldKind `json:"kind"`
	EnumOptions []string  `json:"enum_options,omitempty"`
	Required    bool      `json:"required"`
	Description string    `json:"description,omitempty"`
	// Question is the deterministic fallback asked when phrasing fails.
	Question string `json:"-"`
}

// SkipDefault is the value substituted when the user skips the field.
func (d FieldDescriptor) SkipDefault() any {
	switch d.Kind {
	case KindBoolean:
		return false
	case KindArray:
		return []string{}
	case KindNumber:
		return nil
	default:
		return ""
	}
}

// Schema is the immutable ordered field definition of the vacancy record.
type Schema struct {
	fields []FieldDescriptor
	index  map[string]int
}

func New(fields []FieldDescriptor) *Schema {
	index := make(map[string]int, len(fields))
	for i, f := range fields {
		index[f.Path] = i
	}
	return &Schema{fields: fields, index: index}
}

// Default returns the vacancy field schema in canonical fill order.
func Default() *Schema {
	return New([]FieldDescriptor{
		{Path: "title", DisplayName: "Job title", Kind: KindString, Required: true,
			Description: "Name of the position, e.g. Frontend Developer",
			Question:    "What is the job title for this vacancy?"},
		{Path: "department", DisplayName: "Department", Kind: KindString, Required: true,
			Description: "Department or team the hire joins",
			Question:    "Which department or team is this position in?"},
		{Path: "domain", DisplayName: "Domain", Kind: KindString, Required: true,
			Description: "Business or technical domain, e.g. fintech, e-commerce",
			Question:    "What business or technical domain does the role belong to?"},
		{Path: "employmentType", DisplayName: "Employment type", Kind: KindEnum,
			EnumOptions: []string{"full-time", "part-time", "contract", "internship"},
			Description: "Type of employment contract",
			Question:    "What is the employment type: full-time, part-time, contract or internship?"},
		{Path: "workFormat", DisplayName: "Work format", Kind: KindEnum,
			EnumOptions: []string{"remote", "hybrid", "office"},
			Description: "Where the work happens",
			Question:    "Is the role remote, hybrid or office-based?"},
		{Path: "location.country", DisplayName: "Country", Kind: KindString,
			Description: "Country of the position",
			Question:    "In which country is the position located?"},
		{Path: "location.city", DisplayName: "City", Kind: KindString,
			Description: "City of the position",
			Question:    "In which city is the position located?"},
		{Path: "coreSkills", DisplayName: "Core skills", Kind: KindArray, Required: true,
			Description: "Must-have skills and technologies",
			Question:    "What are the must-have skills for this role?"},
		{Path: "secondarySkills", DisplayName: "Secondary skills", Kind: KindArray,
			Description: "Nice-to-have skills and technologies",
			Question:    "Are there any nice-to-have skills worth mentioning?"},
		{Path: "experienceFrom", DisplayName: "Minimum experience", Kind: KindNumber, Required: true,
			Description: "Minimum years of relevant experience",
			Question:    "How many years of experience are required at minimum?"},
		{Path: "experienceTo", DisplayName: "Maximum experience", Kind: KindNumber,
			Description: "Maximum years of relevant experience",
			Question:    "Is there an upper bound on years of experience?"},
		{Path: "salary.from", DisplayName: "Salary from", Kind: KindNumber,
			Description: "Lower salary bound",
			Question:    "What is the lower bound of the salary range?"},
		{Path: "salary.to", DisplayName: "Salary to", Kind: KindNumber,
			Description: "Upper salary bound",
			Question:    "What is the upper bound of the salary range?"},
		{Path: "salary.currency", DisplayName: "Salary currency", Kind: KindString,
			Description: "Salary currency code",
			Question:    "In which currency is the salary quoted?"},
		{Path: "relocationSupport", DisplayName: "Relocation support", Kind: KindBoolean,
			Description: "Whether the company supports relocation",
			Question:    "Does the company offer relocation support?"},
		{Path: "education", DisplayName: "Education", Kind: KindString,
			Description: "Education requirement",
			Question:    "Is a particular education level required?"},
		{Path: "languages", DisplayName: "Languages", Kind: KindArray,
			Description: "Required spoken languages",
			Question:    "Are any spoken languages required?"},
		{Path: "description", DisplayName: "Additional notes", Kind: KindString,
			Description: "Anything else about the role",
			Question:    "Anything else you would like to add about the role?"},
	})
}

// Fields returns the descriptors in canonical order.
func (s *Schema) Fields() []FieldDescriptor {
	return s.fields
}

func (s *Schema) Lookup(path string) (FieldDescriptor, bool) {
	i, ok := s.index[path]
	if !ok {
		return FieldDescriptor{}, false
	}
	return s.fields[i], true
}

// JSONString reflects the record struct into a JSON Schema document for
// the extraction prompt.
func (s *Schema) JSONString() (string, error) {
	sch := jsonschema.Reflect(&Vacancy{})
	sch.Title = "Vacancy"
	sch.Description = "Structured job posting collected through conversation."
	data, err := sonic.Marshal(sch)
	if err != nil {
		return "", fmt.Errorf("marshal JSON schema: %w", err)
	}
	return string(data), nil
}
