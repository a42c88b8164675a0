package vacancy

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
)

// Location is the nested place-of-work group of a vacancy.
type Location struct {
	Country string `json:"country,omitempty" jsonschema:"description=Country where the position is located"`
	City    string `json:"city,omitempty" jsonschema:"description=City where the position is located"`
}

// Salary is the nested compensation group of a vacancy.
type Salary struct {
	From     *float64 `json:"from,omitempty" jsonschema:"description=Lower salary bound"`
	To       *float64 `json:"to,omitempty" jsonschema:"description=Upper salary bound"`
	Currency string   `json:"currency,omitempty" jsonschema:"description=Salary currency code"`
}

// Vacancy is the structured job-posting record built up over a conversation.
// Scalar fields that must distinguish "not provided" from a legitimate
// falsy value (false, 0) are pointers.
type Vacancy struct {
	Title             string   `json:"title,omitempty" jsonschema:"description=Job title"`
	Department        string   `json:"department,omitempty" jsonschema:"description=Department or team"`
	Domain            string   `json:"domain,omitempty" jsonschema:"description=Business or technical domain"`
	EmploymentType    string   `json:"employmentType,omitempty" jsonschema:"enum=full-time,enum=part-time,enum=contract,enum=internship,description=Employment type"`
	WorkFormat        string   `json:"workFormat,omitempty" jsonschema:"enum=remote,enum=hybrid,enum=office,description=Work format"`
	Location          Location `json:"location" jsonschema:"description=Place of work"`
	CoreSkills        []string `json:"coreSkills,omitempty" jsonschema:"description=Must-have skills"`
	SecondarySkills   []string `json:"secondarySkills,omitempty" jsonschema:"description=Nice-to-have skills"`
	ExperienceFrom    *float64 `json:"experienceFrom,omitempty" jsonschema:"description=Minimum years of experience"`
	ExperienceTo      *float64 `json:"experienceTo,omitempty" jsonschema:"description=Maximum years of experience"`
	Salary            Salary   `json:"salary" jsonschema:"description=Compensation range"`
	RelocationSupport *bool    `json:"relocationSupport,omitempty" jsonschema:"description=Whether relocation support is offered"`
	Education         string   `json:"education,omitempty" jsonschema:"description=Education requirement"`
	Languages         []string `json:"languages,omitempty" jsonschema:"description=Required spoken languages"`
	Description       string   `json:"description,omitempty" jsonschema:"description=Free-form notes about the role"`
}

// docOf round-trips a record through JSON into a generic tree so field
// values can be addressed by dot path regardless of struct shape.
func docOf(v Vacancy) (map[string]any, error) {
	data, err := sonic.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	var doc map[string]any
	if err := sonic.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	return doc, nil
}

func recordOf(doc map[string]any) (Vacancy, error) {
	var v Vacancy
	data, err := sonic.Marshal(doc)
	if err != nil {
		return v, fmt.Errorf("marshal doc: %w", err)
	}
	if err := sonic.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("unmarshal doc: %w", err)
	}
	return v, nil
}

// valueAt walks a dot path into the tree. Missing segments yield nil.
func valueAt(doc map[string]any, path string) any {
	var cur any = doc
	for _, seg := range strings.Split(path, ".") {
		node, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur, ok = node[seg]
		if !ok {
			return nil
		}
	}
	return cur
}

// pointerPath converts a dot path to a JSON Pointer.
func pointerPath(dot string) string {
	return "/" + strings.ReplaceAll(dot, ".", "/")
}

// IsUnfilled reports whether a value counts as "not yet collected".
// nil, blank strings and empty arrays are unfilled sentinels, except for
// boolean fields where an explicit false is a filled value.
func IsUnfilled(kind FieldKind, value any) bool {
	if value == nil {
		return true
	}
	if kind == KindBoolean {
		return false
	}
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	case []string:
		return len(v) == 0
	}
	return false
}
