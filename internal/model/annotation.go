package model

// Annotation is a whole-paragraph note on an article. It anchors by
// paragraph index only, with no character offsets.
type Annotation struct {
	ID             string `json:"id"`
	ArticleID      string `json:"articleId"`
	ParagraphIndex int    `json:"paragraphIndex"`
	Text           string `json:"text"`
	CreatedAt      string `json:"createdAt"`
	LastModified   string `json:"lastModified"`
	UserID         string `json:"userId"`
}

// NewAnnotationParams holds parameters for creating a new Annotation.
type NewAnnotationParams struct {
	ArticleID      string
	ParagraphIndex int
	Text           string
	UserID         string
}

// NewAnnotation creates an Annotation with generated ID and timestamps.
func NewAnnotation(params NewAnnotationParams) Annotation {
	now := Now()
	return Annotation{
		ID:             NewID(),
		ArticleID:      params.ArticleID,
		ParagraphIndex: params.ParagraphIndex,
		Text:           params.Text,
		CreatedAt:      now,
		LastModified:   now,
		UserID:         params.UserID,
	}
}
