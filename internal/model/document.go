package model

// SourceType classifies where a corpus passage comes from.
const (
	SourceTypePrimary  = "primary_source"
	SourceTypeOfficial = "official"
	SourceTypeDerived  = "derived"
)

// DocumentMetadata carries the citation fields attached to a stored passage.
type DocumentMetadata struct {
	Source           string `json:"source"`
	DocumentTitle    string `json:"document"`
	Page             string `json:"page,omitempty"`
	Topic            string `json:"topic,omitempty"`
	CredibilityScore int    `json:"credibility_score"`
	SourceType       string `json:"source_type"`
	URL              string `json:"url,omitempty"`
}

// Document is an immutable stored passage. Text is never mutated after
// insertion; the corpus is only ever replaced wholesale.
type Document struct {
	ID       string           `json:"id"`
	Text     string           `json:"text"`
	Metadata DocumentMetadata `json:"metadata"`
}

// ScoredDocument pairs a retrieved document with its relevance score.
type ScoredDocument struct {
	Document Document
	Score    float64
}

// Citation is the response-facing reference derived from a retrieved
// document's metadata.
type Citation struct {
	Source      string `json:"source"`
	Document    string `json:"document"`
	Credibility int    `json:"credibility"`
	Type        string `json:"type"`
	URL         string `json:"url"`
}
