// Package classify holds the narrow binary classifiers the turn handler
// branches on. The state machine never inspects raw model text; each
// classifier decodes a closed enum at the adapter boundary.
package classify

import (
	"context"

	"vacancybot/internal/vacancy"
)

type SkipIntent string

const (
	IntentSkip SkipIntent = "skip"
	IntentFill SkipIntent = "fill"
)

type ConfirmIntent string

const (
	ConfirmYes ConfirmIntent = "yes"
	ConfirmNo  ConfirmIntent = "no"
)

// SkipRequest describes the pending field and the utterance to classify.
type SkipRequest struct {
	Field     vacancy.FieldDescriptor
	Question  string
	Utterance string
}

// SkipClassifier decides whether the utterance is a refusal to answer the
// pending field. Implementations must default to IntentFill on any
// ambiguity; skipping requires positive classification.
type SkipClassifier interface {
	ClassifySkip(ctx context.Context, req *SkipRequest) (SkipIntent, error)
}

// ConfirmRequest carries the record summary and the utterance to classify
// as confirmation-to-generate or not.
type ConfirmRequest struct {
	Summary   string
	Question  string
	Utterance string
}

type ConfirmClassifier interface {
	ClassifyConfirm(ctx context.Context, req *ConfirmRequest) (ConfirmIntent, error)
}

// SkipDecisionFor builds the type-correct skip decision for a field.
func SkipDecisionFor(fd vacancy.FieldDescriptor) *vacancy.SkipDecision {
	return &vacancy.SkipDecision{
		ShouldSkip:   true,
		TargetField:  fd.Path,
		DefaultValue: fd.SkipDefault(),
	}
}
