package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/cloo-solutions/recallai/internal/domain"
	"github.com/cloo-solutions/recallai/internal/openai"
	"github.com/cloo-solutions/recallai/internal/telemetry"
)

// CompletionInterface defines the interface for LLM completion calls
type CompletionInterface interface {
	Complete(ctx context.Context, req openai.CompletionRequest) (string, error)
}

// quickVerdict is the deterministic tier's tri-state result.
type quickVerdict int

const (
	quickQuestion quickVerdict = iota
	quickNotQuestion
	quickUncertain
)

// Obvious questions: explicit question marks, leading question words.
var definiteQuestionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\?$`),
	regexp.MustCompile(`(?i)^(how do|how does|how can|how to|what is|what are|where is|where can|when did|when does|why is|why does|who is|who can)`),
}

// Obvious non-questions: greetings, reactions, mentions, emoji shortcodes.
var definiteNonQuestionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(lol|haha|thanks|thank you|ok|okay|sure|yes|no|yep|nope|cool|nice|great|awesome|done|got it|makes sense|sounds good)$`),
	regexp.MustCompile(`(?i)^(hey|hi|hello|morning|afternoon|evening|night|bye|goodbye|later|cheers|brb|afk|gtg)`),
	regexp.MustCompile(`^@\w+`),
	regexp.MustCompile(`^:\w+:$`),
}

// Phrasings that may or may not be questions; these need the model.
var uncertainPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)anyone`),
	regexp.MustCompile(`(?i)help`),
	regexp.MustCompile(`(?i)wondering`),
	regexp.MustCompile(`(?i)looking for`),
	regexp.MustCompile(`(?i)does.*know`),
	regexp.MustCompile(`(?i)can.*tell`),
	regexp.MustCompile(`(?i)need to`),
	regexp.MustCompile(`(?i)trying to`),
}

const classifierSystemPrompt = `You are a text classifier. Determine if the following message is asking a question or seeking information that could be answered from a knowledge base.

Respond with ONLY "YES" or "NO".

YES if:
- The person is asking for information, help, or clarification
- They want to know something (even without a question mark)
- They're seeking guidance or looking for answers

NO if:
- It's a statement, greeting, or reaction
- It's sharing information rather than seeking it
- It's a command or instruction`

const (
	// minClassifiableLength is the raw length below which text is
	// dismissed without any pattern matching.
	minClassifiableLength = 3
	// shortTextLength is the trimmed length below which unmatched text
	// is assumed not to be a question.
	shortTextLength = 15

	classifierMaxTokens = 5
)

// ClassifierService decides whether a piece of text is a question using a
// cascade: cheap deterministic tiers first, then an LLM tiebreak only for
// genuinely ambiguous text. Classification fails closed: any model error
// yields a non-question verdict rather than an error to the caller.
type ClassifierService struct {
	completions CompletionInterface
}

// NewClassifierService creates a new ClassifierService. completions may be
// nil, in which case uncertain text is classified as not a question.
func NewClassifierService(completions CompletionInterface) *ClassifierService {
	return &ClassifierService{completions: completions}
}

// Classify runs the cascade over the given text.
func (s *ClassifierService) Classify(ctx context.Context, text string) domain.Verdict {
	ctx, span := telemetry.StartSpan(ctx, "ClassifierService.Classify", telemetry.SpanAttributes{
		Operation: "classify",
	})
	defer span.End()

	if len(text) < minClassifiableLength {
		return domain.Verdict{IsQuestion: false, Confidence: domain.ConfidenceHigh, Method: domain.MethodLength}
	}

	switch quickClassify(text) {
	case quickQuestion:
		return domain.Verdict{IsQuestion: true, Confidence: domain.ConfidenceHigh, Method: domain.MethodRegex}
	case quickNotQuestion:
		return domain.Verdict{IsQuestion: false, Confidence: domain.ConfidenceHigh, Method: domain.MethodRegex}
	}

	return s.classifyWithModel(ctx, text)
}

// quickClassify is the deterministic tier. Non-question patterns are
// checked before question patterns so greetings like "hey?" don't slip
// through as questions.
func quickClassify(text string) quickVerdict {
	trimmed := strings.TrimSpace(text)

	for _, p := range definiteNonQuestionPatterns {
		if p.MatchString(trimmed) {
			return quickNotQuestion
		}
	}

	for _, p := range definiteQuestionPatterns {
		if p.MatchString(trimmed) {
			return quickQuestion
		}
	}

	for _, p := range uncertainPatterns {
		if p.MatchString(trimmed) {
			return quickUncertain
		}
	}

	if len(trimmed) < shortTextLength {
		return quickNotQuestion
	}

	return quickUncertain
}

func (s *ClassifierService) classifyWithModel(ctx context.Context, text string) domain.Verdict {
	if s.completions == nil {
		return domain.Verdict{IsQuestion: false, Confidence: domain.ConfidenceLow, Method: domain.MethodError}
	}

	answer, err := s.completions.Complete(ctx, openai.CompletionRequest{
		System:      classifierSystemPrompt,
		User:        text,
		MaxTokens:   classifierMaxTokens,
		Temperature: 0,
	})
	if err != nil {
		telemetry.CaptureError(ctx, err)
		return domain.Verdict{IsQuestion: false, Confidence: domain.ConfidenceLow, Method: domain.MethodError}
	}

	isQuestion := strings.ToUpper(strings.TrimSpace(answer)) == "YES"
	return domain.Verdict{IsQuestion: isQuestion, Confidence: domain.ConfidenceMedium, Method: domain.MethodAI}
}
