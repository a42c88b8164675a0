package classify

import (
	"context"
	"strings"
)

// LocalSkipClassifier matches the whole normalized utterance against
// keyword lists. Exact match only: substring matching misreads negations
// like "don't skip".
type LocalSkipClassifier struct {
	SkipKeywords []string
}

func NewLocalSkipClassifier() *LocalSkipClassifier {
	return &LocalSkipClassifier{
		SkipKeywords: []string{
			"skip", "skip it", "pass", "none", "no", "nope",
			"no, that's all", "that's all", "doesn't matter", "next",
		},
	}
}

func (c *LocalSkipClassifier) ClassifySkip(ctx context.Context, req *SkipRequest) (SkipIntent, error) {
	normalized := strings.ToLower(strings.TrimSpace(req.Utterance))
	for _, keyword := range c.SkipKeywords {
		if normalized == keyword {
			return IntentSkip, nil
		}
	}
	return IntentFill, nil
}

type LocalConfirmClassifier struct {
	YesKeywords []string
}

func NewLocalConfirmClassifier() *LocalConfirmClassifier {
	return &LocalConfirmClassifier{
		YesKeywords: []string{
			"yes", "yep", "yeah", "ok", "okay", "sure",
			"go ahead", "generate", "confirm", "do it", "looks good",
		},
	}
}

func (c *LocalConfirmClassifier) ClassifyConfirm(ctx context.Context, req *ConfirmRequest) (ConfirmIntent, error) {
	normalized := strings.ToLower(strings.TrimSpace(req.Utterance))
	for _, keyword := range c.YesKeywords {
		if normalized == keyword {
			return ConfirmYes, nil
		}
	}
	return ConfirmNo, nil
}

// FailbackSkipClassifier tries each classifier in order and returns the
// first non-erroring result. When every classifier fails the answer is
// fill: a skip is never inferred from a failure.
type FailbackSkipClassifier struct {
	classifiers []SkipClassifier
}

func NewFailbackSkipClassifier(classifiers ...SkipClassifier) *FailbackSkipClassifier {
	return &FailbackSkipClassifier{classifiers: classifiers}
}

func (c *FailbackSkipClassifier) ClassifySkip(ctx context.Context, req *SkipRequest) (SkipIntent, error) {
	var lastErr error
	for _, classifier := range c.classifiers {
		intent, err := classifier.ClassifySkip(ctx, req)
		if err == nil {
			return intent, nil
		}
		lastErr = err
	}
	return IntentFill, lastErr
}

type FailbackConfirmClassifier struct {
	classifiers []ConfirmClassifier
}

func NewFailbackConfirmClassifier(classifiers ...ConfirmClassifier) *FailbackConfirmClassifier {
	return &FailbackConfirmClassifier{classifiers: classifiers}
}

func (c *FailbackConfirmClassifier) ClassifyConfirm(ctx context.Context, req *ConfirmRequest) (ConfirmIntent, error) {
	var lastErr error
	for _, classifier := range c.classifiers {
		answer, err := classifier.ClassifyConfirm(ctx, req)
		if err == nil {
			return answer, nil
		}
		lastErr = err
	}
	return ConfirmNo, lastErr
}
