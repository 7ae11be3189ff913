package domain

import (
	"strconv"
	"time"
)

// SourceKind identifies where a knowledge hit came from.
type SourceKind string

const (
	SourceKindMessage       SourceKind = "message"
	SourceKindDocumentation SourceKind = "documentation"
)

// ContextBucketWindow is the time bucket used to deduplicate message hits
// from the same conversation burst, and the radius of the context window
// fetched around a hit.
const ContextBucketWindow = 30 * time.Minute

// KnowledgeHit is a single ranked result from the combined hybrid search.
// Hits are request-scoped and never persisted.
type KnowledgeHit struct {
	ID            string
	Content       string
	SourceKind    SourceKind
	ChannelID     string
	ChannelName   string
	UserID        string
	Username      string
	CreatedAt     time.Time
	Similarity    float32
	RecencyScore  float32
	CombinedScore float32
}

// BucketKey returns the dedup key for a message hit: its channel combined
// with the 30-minute bucket its timestamp falls into. Two hits from the
// same channel within the same bucket describe the same conversation burst
// and must produce a single chunk.
func (h *KnowledgeHit) BucketKey() string {
	bucket := h.CreatedAt.Unix() / int64(ContextBucketWindow.Seconds())
	return h.ChannelID + "/" + strconv.FormatInt(bucket, 10)
}

// KnowledgeChunk is a deduplicated, context-expanded unit of evidence: a
// cluster of context messages for message hits, or a single documentation
// hit. Chunks are request-scoped.
type KnowledgeChunk struct {
	ChannelID   string
	ChannelName string
	Messages    []ContextMessage
	Timestamp   time.Time
	SourceKind  SourceKind
}

// SearchMetadata describes the provenance of a search's hits, computed over
// the full ranked hit list before the chunk cap applies.
type SearchMetadata struct {
	HasDocumentation   bool
	HasMessages        bool
	DocumentationCount int
	MessageCount       int
}

// SourceType labels which corpora contributed to an answer.
type SourceType string

const (
	SourceTypeMessages      SourceType = "messages"
	SourceTypeDocumentation SourceType = "documentation"
	SourceTypeCombined      SourceType = "combined"
)

// SourceTypeFor derives the answer provenance label from search metadata.
func SourceTypeFor(meta SearchMetadata) SourceType {
	switch {
	case meta.HasDocumentation && meta.HasMessages:
		return SourceTypeCombined
	case meta.HasDocumentation:
		return SourceTypeDocumentation
	default:
		return SourceTypeMessages
	}
}
