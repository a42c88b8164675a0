package vacancy

import (
	"testing"
)

func float(v float64) *float64 { return &v }

func boolp(v bool) *bool { return &v }

func fullyFilled() Vacancy {
	return Vacancy{
		Title:             "Backend Developer",
		Department:        "Engineering",
		Domain:            "Fintech",
		EmploymentType:    "full-time",
		WorkFormat:        "remote",
		Location:          Location{Country: "Germany", City: "Berlin"},
		CoreSkills:        []string{"Go"},
		SecondarySkills:   []string{"Kafka"},
		ExperienceFrom:    float(3),
		ExperienceTo:      float(6),
		Salary:            Salary{From: float(100000), To: float(130000), Currency: "EUR"},
		RelocationSupport: boolp(false),
		Education:         "BSc",
		Languages:         []string{"English"},
		Description:       "Payments team.",
	}
}

func TestSelectNextFirstUnfilledInOrder(t *testing.T) {
	s := Default()
	rec := Vacancy{Title: "Frontend Developer"}

	next, err := s.SelectNext(rec, "")
	if err != nil {
		t.Fatalf("SelectNext: %v", err)
	}
	if next == nil || next.Path != "department" {
		t.Fatalf("expected department, got %+v", next)
	}
}

func TestSelectNextIdempotent(t *testing.T) {
	s := Default()
	rec := Vacancy{Title: "Backend Developer", Department: "Engineering"}

	first, err := s.SelectNext(rec, "title")
	if err != nil {
		t.Fatalf("SelectNext: %v", err)
	}
	second, err := s.SelectNext(rec, "title")
	if err != nil {
		t.Fatalf("SelectNext: %v", err)
	}
	if first == nil || second == nil || first.Path != second.Path {
		t.Fatalf("selection not idempotent: %+v vs %+v", first, second)
	}
}

func TestSelectNextExcludingSkipsDeclinedFields(t *testing.T) {
	s := Default()
	rec := Vacancy{Title: "Backend Developer"}

	next, err := s.SelectNextExcluding(rec, "title", map[string]bool{"department": true})
	if err != nil {
		t.Fatalf("SelectNextExcluding: %v", err)
	}
	if next == nil || next.Path != "domain" {
		t.Fatalf("expected domain past the excluded department, got %+v", next)
	}
}

func TestSelectNextExcludingAllRemainingReturnsNil(t *testing.T) {
	s := Default()
	rec := fullyFilled()
	rec.SecondarySkills = nil
	rec.Languages = nil

	next, err := s.SelectNextExcluding(rec, "description", map[string]bool{
		"secondarySkills": true,
		"languages":       true,
	})
	if err != nil {
		t.Fatalf("SelectNextExcluding: %v", err)
	}
	if next != nil {
		t.Fatalf("expected nil when every unfilled field is excluded, got %+v", next)
	}
}

func TestSelectNextRingCoverage(t *testing.T) {
	s := Default()
	rec := Vacancy{}
	fields := s.Fields()
	k := 3
	last := fields[k].Path

	seen := make(map[string]int)
	for i := 0; i < len(fields); i++ {
		next, err := s.SelectNext(rec, last)
		if err != nil {
			t.Fatalf("SelectNext: %v", err)
		}
		if next == nil {
			t.Fatalf("step %d: expected a field on an all-unfilled record", i)
		}
		seen[next.Path]++
		last = next.Path
	}

	if len(seen) != len(fields) {
		t.Fatalf("ring visited %d distinct fields, want %d", len(seen), len(fields))
	}
	for path, count := range seen {
		if count != 1 {
			t.Errorf("field %s visited %d times, want 1", path, count)
		}
	}
}

func TestSelectNextRotatesPastLastAsked(t *testing.T) {
	s := Default()
	rec := Vacancy{}

	next, err := s.SelectNext(rec, "title")
	if err != nil {
		t.Fatalf("SelectNext: %v", err)
	}
	if next == nil || next.Path == "title" {
		t.Fatalf("ring search re-asked the last asked field: %+v", next)
	}
}

func TestBooleanFalseCountsAsFilled(t *testing.T) {
	s := Default()
	rec := Vacancy{RelocationSupport: boolp(false)}

	next, err := s.SelectNext(rec, "salary.currency")
	if err != nil {
		t.Fatalf("SelectNext: %v", err)
	}
	if next != nil && next.Path == "relocationSupport" {
		t.Fatal("explicit false must count as filled")
	}
}

func TestZeroNumberCountsAsFilled(t *testing.T) {
	s := Default()
	rec := Vacancy{ExperienceFrom: float(0)}

	missing := s.MissingRequired(rec)
	for _, fd := range missing {
		if fd.Path == "experienceFrom" {
			t.Fatal("explicit 0 must count as filled")
		}
	}
}

func TestIsCompleteIgnoresOptionalFields(t *testing.T) {
	s := Default()
	rec := Vacancy{
		Title:          "Frontend Developer",
		Department:     "Engineering",
		Domain:         "e-commerce",
		CoreSkills:     []string{"React"},
		ExperienceFrom: float(3),
	}

	if !s.IsComplete(rec) {
		t.Fatal("record with all required fields must be complete")
	}

	// Optional fields remain unfilled, so the ring search still has work.
	next, err := s.SelectNext(rec, "")
	if err != nil {
		t.Fatalf("SelectNext: %v", err)
	}
	if next == nil {
		t.Fatal("optional fields should still be selectable after completion")
	}

	rec.Title = ""
	if s.IsComplete(rec) {
		t.Fatal("record missing a required field must not be complete")
	}
}

func TestCompletionPercentage(t *testing.T) {
	s := Default()

	if got := s.CompletionPercentage(Vacancy{}); got != 0 {
		t.Fatalf("empty record: got %d, want 0", got)
	}

	rec := Vacancy{
		Title:          "Frontend Developer",
		Department:     "Engineering",
		Domain:         "e-commerce",
		CoreSkills:     []string{"React"},
		ExperienceFrom: float(3),
	}
	if got := s.CompletionPercentage(rec); got != 100 {
		t.Fatalf("complete record: got %d, want 100", got)
	}

	rec.Domain = ""
	got := s.CompletionPercentage(rec)
	if got <= 0 || got >= 100 {
		t.Fatalf("partial record: got %d, want value strictly between 0 and 100", got)
	}
}

func TestWhitespaceOnlyStringIsUnfilled(t *testing.T) {
	s := Default()
	rec := Vacancy{Title: "   "}

	missing := s.MissingRequired(rec)
	found := false
	for _, fd := range missing {
		if fd.Path == "title" {
			found = true
		}
	}
	if !found {
		t.Fatal("whitespace-only title must count as unfilled")
	}
}
