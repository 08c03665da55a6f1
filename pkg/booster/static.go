package booster

import (
	"context"
	"errors"
	"sync"
)

// ErrNoVerdict is returned by StaticClassifier for texts it has no answer for.
var ErrNoVerdict = errors.New("no verdict")

// ClassifierFunc adapts a function to the Classifier interface.
type ClassifierFunc func(ctx context.Context, text string, labels []string) (Verdict, error)

// Classify implements Classifier.
func (f ClassifierFunc) Classify(ctx context.Context, text string, labels []string) (Verdict, error) {
	return f(ctx, text, labels)
}

// StaticClassifier answers from a fixed table keyed by normalized text.
// It backs the classifier.verdicts config table and records how often each
// text was asked about.
type StaticClassifier struct {
	verdicts map[string]Verdict
	calls    map[string]int
	mu       sync.Mutex
}

// NewStaticClassifier creates a StaticClassifier over verdicts.
func NewStaticClassifier(verdicts map[string]Verdict) *StaticClassifier {
	s := &StaticClassifier{
		verdicts: make(map[string]Verdict, len(verdicts)),
		calls:    make(map[string]int),
	}
	for text, v := range verdicts {
		s.verdicts[NormalizeText(text)] = v
	}
	return s
}

// Classify implements Classifier.
func (s *StaticClassifier) Classify(_ context.Context, text string, _ []string) (Verdict, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	text = NormalizeText(text)
	s.calls[text]++
	v, ok := s.verdicts[text]
	if !ok {
		return Verdict{}, ErrNoVerdict
	}
	return v, nil
}

// Override answers from fixed when it holds a verdict for the text and falls
// through to next otherwise. A nil next leaves fixed as the only source.
func Override(fixed *StaticClassifier, next Classifier) Classifier {
	if next == nil {
		return fixed
	}
	return ClassifierFunc(func(ctx context.Context, text string, labels []string) (Verdict, error) {
		v, err := fixed.Classify(ctx, text, labels)
		if !errors.Is(err, ErrNoVerdict) {
			return v, err
		}
		return next.Classify(ctx, text, labels)
	})
}

// Calls returns how many times text was classified.
func (s *StaticClassifier) Calls(text string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[NormalizeText(text)]
}

// TotalCalls returns the number of Classify calls.
func (s *StaticClassifier) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int
	for _, c := range s.calls {
		n += c
	}
	return n
}
