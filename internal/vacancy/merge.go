package vacancy

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	jsonpatch "github.com/evanphx/json-patch/v5"
)

type ExtractionStatus string

const (
	ExtractionSuccess             ExtractionStatus = "success"
	ExtractionClarificationNeeded ExtractionStatus = "clarification_needed"
)

// ExtractionResult is the candidate update produced by the extraction
// capability for one user utterance. Record is a full copy of the schema
// shape, not a sparse patch; the merge policy re-validates which parts
// may actually change.
type ExtractionResult struct {
	Status     ExtractionStatus
	Record     Vacancy
	Commentary string
}

// SkipDecision is the outcome of skip classification for the pending field.
type SkipDecision struct {
	ShouldSkip   bool
	TargetField  string
	DefaultValue any
}

type operation struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value"`
}

// Merge combines the current record with an extraction result and an
// optional skip decision into a new record. Precedence:
//
//  1. A positive skip sets exactly the target field to its default and
//     ignores the extraction result entirely for this turn.
//  2. A successful extraction overwrites only with filled values; an
//     unfilled extracted value never erases existing data (monotonic fill).
//  3. A clarification result leaves the record unchanged.
//
// The current record is never mutated; a new value is returned.
func (s *Schema) Merge(current Vacancy, extracted *ExtractionResult, skip *SkipDecision) (Vacancy, error) {
	if skip != nil && skip.ShouldSkip {
		return s.applySkip(current, skip)
	}
	if extracted == nil || extracted.Status != ExtractionSuccess {
		return current, nil
	}

	extractedDoc, err := docOf(extracted.Record)
	if err != nil {
		return current, err
	}
	pruned := s.pruneExtracted("", extractedDoc)
	if len(pruned) == 0 {
		return current, nil
	}

	currentJSON, err := sonic.Marshal(current)
	if err != nil {
		return current, fmt.Errorf("marshal current record: %w", err)
	}
	patchJSON, err := sonic.Marshal(pruned)
	if err != nil {
		return current, fmt.Errorf("marshal merge patch: %w", err)
	}
	mergedJSON, err := jsonpatch.MergePatch(currentJSON, patchJSON)
	if err != nil {
		return current, fmt.Errorf("apply merge patch: %w", err)
	}
	return recordFromJSON(mergedJSON)
}

func (s *Schema) applySkip(current Vacancy, skip *SkipDecision) (Vacancy, error) {
	fd, ok := s.Lookup(skip.TargetField)
	if !ok {
		return current, fmt.Errorf("skip target %q is not a schema field", skip.TargetField)
	}
	value := skip.DefaultValue
	if value == nil && fd.Kind != KindNumber {
		value = fd.SkipDefault()
	}

	currentJSON, err := sonic.Marshal(current)
	if err != nil {
		return current, fmt.Errorf("marshal current record: %w", err)
	}

	op := operation{Op: "replace", Path: pointerPath(fd.Path), Value: value}
	var doc any
	if err := sonic.Unmarshal(currentJSON, &doc); err == nil && !jsonPathExists(doc, op.Path) {
		op.Op = "add"
	}

	patchJSON, err := sonic.Marshal([]operation{op})
	if err != nil {
		return current, fmt.Errorf("marshal skip patch: %w", err)
	}
	patch, err := jsonpatch.DecodePatch(patchJSON)
	if err != nil {
		return current, fmt.Errorf("decode skip patch: %w", err)
	}
	modified, err := patch.Apply(currentJSON)
	if err != nil {
		return current, fmt.Errorf("apply skip patch: %w", err)
	}
	return recordFromJSON(modified)
}

func recordFromJSON(data []byte) (Vacancy, error) {
	var out Vacancy
	if err := sonic.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("unmarshal merged record: %w", err)
	}
	return out, nil
}

// pruneExtracted keeps only filled values at known schema paths, so a
// sparse or sloppy extraction can neither erase existing data nor
// introduce paths outside the schema.
func (s *Schema) pruneExtracted(prefix string, doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	for key, value := range doc {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		if value == nil {
			continue
		}
		if nested, ok := value.(map[string]any); ok {
			if !s.isGroup(path) {
				continue
			}
			kept := s.pruneExtracted(path, nested)
			if len(kept) > 0 {
				out[key] = kept
			}
			continue
		}
		fd, ok := s.Lookup(path)
		if !ok {
			continue
		}
		if IsUnfilled(fd.Kind, value) {
			continue
		}
		out[key] = value
	}
	return out
}

func (s *Schema) isGroup(path string) bool {
	marker := path + "."
	for _, fd := range s.fields {
		if strings.HasPrefix(fd.Path, marker) {
			return true
		}
	}
	return false
}

func jsonPathExists(doc any, path string) bool {
	if path == "" {
		return true
	}
	if !strings.HasPrefix(path, "/") {
		return false
	}
	cur := doc
	for _, token := range strings.Split(path[1:], "/") {
		token = strings.ReplaceAll(token, "~1", "/")
		token = strings.ReplaceAll(token, "~0", "~")
		switch node := cur.(type) {
		case map[string]any:
			value, ok := node[token]
			if !ok {
				return false
			}
			cur = value
		case []any:
			index, err := strconv.Atoi(token)
			if err != nil || index < 0 || index >= len(node) {
				return false
			}
			cur = node[index]
		default:
			return false
		}
	}
	return true
}
