package vacancy

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAutoFillExperienceFromYearsPhrase(t *testing.T) {
	s := Default()

	out := s.AutoFill(Vacancy{}, "Frontend developer, React, 3 years")
	if out.ExperienceFrom == nil || *out.ExperienceFrom != 3 {
		t.Fatalf("expected experienceFrom=3, got %#v", out.ExperienceFrom)
	}
}

func TestAutoFillSkillsFromKeywords(t *testing.T) {
	s := Default()

	out := s.AutoFill(Vacancy{}, "We need React and TypeScript, maybe Docker too")
	want := []string{"React", "TypeScript", "Docker"}
	if diff := cmp.Diff(want, out.CoreSkills); diff != "" {
		t.Fatalf("skills mismatch (-want +got):\n%s", diff)
	}
}

func TestAutoFillDepartmentFromTitle(t *testing.T) {
	s := Default()

	out := s.AutoFill(Vacancy{Title: "Senior Backend Developer"}, "anything")
	if out.Department != "Engineering" {
		t.Fatalf("expected Engineering, got %q", out.Department)
	}
}

func TestAutoFillNeverOverridesFilledFields(t *testing.T) {
	s := Default()
	current := Vacancy{
		Title:          "Frontend Developer",
		Department:     "Product",
		CoreSkills:     []string{"Vue"},
		ExperienceFrom: float(5),
	}

	out := s.AutoFill(current, "React developer with 3 years")
	if out.Department != "Product" {
		t.Fatal("heuristic overrode an explicit department")
	}
	if *out.ExperienceFrom != 5 {
		t.Fatal("heuristic overrode an explicit experience value")
	}
	if diff := cmp.Diff([]string{"Vue"}, out.CoreSkills); diff != "" {
		t.Fatalf("heuristic overrode explicit skills:\n%s", diff)
	}
}

func TestAutoFillNoMatchLeavesRecordUnchanged(t *testing.T) {
	s := Default()

	out := s.AutoFill(Vacancy{}, "hello there")
	if diff := cmp.Diff(Vacancy{}, out); diff != "" {
		t.Fatalf("unexpected change (-want +got):\n%s", diff)
	}
}

func TestWordBoundaryMatching(t *testing.T) {
	s := Default()

	// "Go" must not match inside "algorithms".
	out := s.AutoFill(Vacancy{}, "knowledge of algorithms required")
	if len(out.CoreSkills) != 0 {
		t.Fatalf("false positive keyword match: %v", out.CoreSkills)
	}
}
