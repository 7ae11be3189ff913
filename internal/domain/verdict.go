package domain

// Confidence expresses how sure the classifier is about its verdict.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ClassifyMethod identifies which cascade tier produced a verdict.
type ClassifyMethod string

const (
	MethodLength ClassifyMethod = "length"
	MethodRegex  ClassifyMethod = "regex"
	MethodAI     ClassifyMethod = "ai"
	MethodError  ClassifyMethod = "error"
)

// Verdict is the classifier's final answer for one piece of text.
type Verdict struct {
	IsQuestion bool
	Confidence Confidence
	Method     ClassifyMethod
}
