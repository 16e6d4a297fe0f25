package model

// HighlightColor is the marker color of a highlight.
type HighlightColor string

const (
	ColorYellow HighlightColor = "yellow"
	ColorGreen  HighlightColor = "green"
	ColorBlue   HighlightColor = "blue"
	ColorPink   HighlightColor = "pink"
	ColorOrange HighlightColor = "orange"
)

// Valid reports whether c is one of the known highlight colors.
func (c HighlightColor) Valid() bool {
	switch c {
	case ColorYellow, ColorGreen, ColorBlue, ColorPink, ColorOrange:
		return true
	}
	return false
}

// Anchor locates a highlight within an article's rendered content. Offsets
// are character positions into the concatenated text content of the
// paragraph-like element at ParagraphIndex, not into the raw HTML.
type Anchor struct {
	ParagraphIndex int `json:"paragraphIndex"`
	StartOffset    int `json:"startOffset"`
	EndOffset      int `json:"endOffset"`
}

// Valid reports whether the anchor describes a non-empty forward range.
func (a Anchor) Valid() bool {
	return a.ParagraphIndex >= 0 && a.StartOffset >= 0 && a.EndOffset > a.StartOffset
}

// Highlight is a position-anchored text marking within an article. Text is
// the exact substring captured at creation time and doubles as a fallback
// anchor when positions go stale.
type Highlight struct {
	ID        string         `json:"id"`
	ArticleID string         `json:"articleId"`
	Text      string         `json:"text"`
	Color     HighlightColor `json:"color"`
	Note      string         `json:"note"`
	Tags      []string       `json:"tags"`

	// Position tracking
	ParagraphIndex int `json:"paragraphIndex"`
	StartOffset    int `json:"startOffset"`
	EndOffset      int `json:"endOffset"`

	// Collections
	CollectionID *string `json:"collectionId"` // nil = not in a collection

	Timestamp    string `json:"timestamp"`
	LastModified string `json:"lastModified"`
	UserID       string `json:"userId"`
}

// Anchor returns the highlight's position triple.
func (h *Highlight) Anchor() Anchor {
	return Anchor{
		ParagraphIndex: h.ParagraphIndex,
		StartOffset:    h.StartOffset,
		EndOffset:      h.EndOffset,
	}
}

// NewHighlightParams holds parameters for creating a new Highlight.
type NewHighlightParams struct {
	ArticleID string
	Text      string
	Color     HighlightColor
	Anchor    Anchor
	UserID    string
}

// NewHighlight creates a Highlight with generated ID and timestamps.
func NewHighlight(params NewHighlightParams) Highlight {
	color := params.Color
	if !color.Valid() {
		color = ColorYellow
	}

	now := Now()
	return Highlight{
		ID:             NewID(),
		ArticleID:      params.ArticleID,
		Text:           params.Text,
		Color:          color,
		Note:           "",
		Tags:           []string{},
		ParagraphIndex: params.Anchor.ParagraphIndex,
		StartOffset:    params.Anchor.StartOffset,
		EndOffset:      params.Anchor.EndOffset,
		CollectionID:   nil,
		Timestamp:      now,
		LastModified:   now,
		UserID:         params.UserID,
	}
}
