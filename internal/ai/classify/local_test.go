package classify

import (
	"context"
	"errors"
	"testing"

	"vacancybot/internal/vacancy"
)

type erroringSkipClassifier struct{}

func (erroringSkipClassifier) ClassifySkip(ctx context.Context, req *SkipRequest) (SkipIntent, error) {
	return IntentFill, errors.New("model unavailable")
}

func TestLocalSkipClassifierExactMatch(t *testing.T) {
	c := NewLocalSkipClassifier()
	ctx := context.Background()

	intent, err := c.ClassifySkip(ctx, &SkipRequest{Utterance: "  Skip it "})
	if err != nil || intent != IntentSkip {
		t.Fatalf("got %v, %v; want skip", intent, err)
	}

	// Substring matches must not trigger a skip.
	intent, err = c.ClassifySkip(ctx, &SkipRequest{Utterance: "don't skip this one"})
	if err != nil || intent != IntentFill {
		t.Fatalf("got %v, %v; want fill for a negation", intent, err)
	}
}

func TestFailbackSkipDefaultsToFill(t *testing.T) {
	c := NewFailbackSkipClassifier(erroringSkipClassifier{})

	intent, err := c.ClassifySkip(context.Background(), &SkipRequest{Utterance: "skip"})
	if intent != IntentFill {
		t.Fatalf("all-failing chain must yield fill, got %v (err=%v)", intent, err)
	}
	if err == nil {
		t.Fatal("expected the last error to be surfaced")
	}
}

func TestFailbackSkipUsesNextClassifier(t *testing.T) {
	c := NewFailbackSkipClassifier(erroringSkipClassifier{}, NewLocalSkipClassifier())

	intent, err := c.ClassifySkip(context.Background(), &SkipRequest{Utterance: "skip"})
	if err != nil || intent != IntentSkip {
		t.Fatalf("got %v, %v; want skip from fallback classifier", intent, err)
	}
}

func TestLocalConfirmClassifier(t *testing.T) {
	c := NewLocalConfirmClassifier()
	ctx := context.Background()

	answer, _ := c.ClassifyConfirm(ctx, &ConfirmRequest{Utterance: "go ahead"})
	if answer != ConfirmYes {
		t.Fatalf("got %v, want yes", answer)
	}
	answer, _ = c.ClassifyConfirm(ctx, &ConfirmRequest{Utterance: "actually, the salary is 5000"})
	if answer != ConfirmNo {
		t.Fatalf("got %v, want no", answer)
	}
}

func TestSkipDecisionForKinds(t *testing.T) {
	cases := []struct {
		kind vacancy.FieldKind
		want any
	}{
		{vacancy.KindBoolean, false},
		{vacancy.KindNumber, nil},
		{vacancy.KindString, ""},
		{vacancy.KindEnum, ""},
	}
	for _, tc := range cases {
		d := SkipDecisionFor(vacancy.FieldDescriptor{Path: "x", Kind: tc.kind})
		if !d.ShouldSkip || d.TargetField != "x" {
			t.Fatalf("bad decision %+v", d)
		}
		if got := d.DefaultValue; got != tc.want {
			t.Fatalf("kind %s: default %#v, want %#v", tc.kind, got, tc.want)
		}
	}

	d := SkipDecisionFor(vacancy.FieldDescriptor{Path: "skills", Kind: vacancy.KindArray})
	arr, ok := d.DefaultValue.([]string)
	if !ok || len(arr) != 0 {
		t.Fatalf("array default must be an empty sequence, got %#v", d.DefaultValue)
	}
}
