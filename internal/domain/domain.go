package domain

type StoryID int64

// Story is one aggregated top story. Text and Summary are empty when
// extraction or summarization failed but are always serialized.
type Story struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Score   int    `json:"score"`
	Text    string `json:"text"`
	Summary string `json:"summary"`
}
