package vacancy

// SelectNext returns the next unfilled field to ask about, or nil when
// nothing remains. The scan is a ring search: it starts right after
// lastAsked (when set) and wraps, so a field the user just answered is
// not immediately re-asked and every field is eventually visited even
// when answers arrive out of order.
func (s *Schema) SelectNext(rec Vacancy, lastAsked string) (*FieldDescriptor, error) {
	return s.SelectNextExcluding(rec, lastAsked, nil)
}

// SelectNextExcluding is SelectNext with a set of paths to pass over.
// Skipped fields keep their unfilled sentinel value but must not be
// re-asked on ring wrap-around.
func (s *Schema) SelectNextExcluding(rec Vacancy, lastAsked string, exclude map[string]bool) (*FieldDescriptor, error) {
	doc, err := docOf(rec)
	if err != nil {
		return nil, err
	}

	start := 0
	if i, ok := s.index[lastAsked]; ok {
		start = i + 1
	}

	n := len(s.fields)
	for k := 0; k < n; k++ {
		fd := s.fields[(start+k)%n]
		if exclude[fd.Path] {
			continue
		}
		if IsUnfilled(fd.Kind, valueAt(doc, fd.Path)) {
			out := fd
			return &out, nil
		}
	}
	return nil, nil
}

// MissingRequired returns the mandatory fields that are still unfilled,
// in canonical order.
func (s *Schema) MissingRequired(rec Vacancy) []FieldDescriptor {
	doc, err := docOf(rec)
	if err != nil {
		return nil
	}
	var missing []FieldDescriptor
	for _, fd := range s.fields {
		if fd.Required && IsUnfilled(fd.Kind, valueAt(doc, fd.Path)) {
			missing = append(missing, fd)
		}
	}
	return missing
}

// IsComplete is the authoritative completion signal: true iff every
// mandatory field is filled. Optional fields do not gate completion.
func (s *Schema) IsComplete(rec Vacancy) bool {
	return len(s.MissingRequired(rec)) == 0
}

// CompletionPercentage reports required-field progress as 0..100.
func (s *Schema) CompletionPercentage(rec Vacancy) int {
	total := 0
	for _, fd := range s.fields {
		if fd.Required {
			total++
		}
	}
	if total == 0 {
		return 100
	}
	filled := total - len(s.MissingRequired(rec))
	return filled * 100 / total
}
