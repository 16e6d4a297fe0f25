package model_test

import (
	"testing"
	"time"

	"gotest.tools/v3/assert"

	"github.com/nikbrunner/marginalia/internal/model"
)

func TestNormalizeTags(t *testing.T) {
	assert.DeepEqual(t, model.NormalizeTags([]string{"Go", "go", " Databases ", "", "GO"}), []string{"go", "databases"})
	assert.DeepEqual(t, model.NormalizeTags(nil), []string{})
}

func TestNewArticle_Defaults(t *testing.T) {
	a := model.NewArticle(model.NewArticleParams{URL: "https://example.com", Title: "T"})

	assert.Assert(t, a.ID != "")
	assert.Equal(t, a.ReadingTime, 1) // clamped up from zero
	assert.Equal(t, a.SyncStatus, model.SyncPending)
	assert.Equal(t, a.DateAdded, a.LastModified)
	assert.Assert(t, a.Tags != nil)
	assert.Assert(t, !a.IsRead && !a.IsFavorite && !a.IsArchived)
}

func TestAnchorValid(t *testing.T) {
	assert.Assert(t, model.Anchor{ParagraphIndex: 0, StartOffset: 0, EndOffset: 1}.Valid())
	assert.Assert(t, !model.Anchor{ParagraphIndex: 0, StartOffset: 5, EndOffset: 5}.Valid())
	assert.Assert(t, !model.Anchor{ParagraphIndex: 0, StartOffset: 5, EndOffset: 4}.Valid())
	assert.Assert(t, !model.Anchor{ParagraphIndex: -1, StartOffset: 0, EndOffset: 1}.Valid())
	assert.Assert(t, !model.Anchor{ParagraphIndex: 0, StartOffset: -1, EndOffset: 1}.Valid())
}

func TestNewHighlight_InvalidColorFallsBack(t *testing.T) {
	h := model.NewHighlight(model.NewHighlightParams{
		ArticleID: "a",
		Text:      "x",
		Color:     model.HighlightColor("magenta"),
		Anchor:    model.Anchor{EndOffset: 1},
	})
	assert.Equal(t, h.Color, model.ColorYellow)
}

func TestArticlePatch_Apply(t *testing.T) {
	folderID := "f1"
	a := model.NewArticle(model.NewArticleParams{URL: "https://example.com", Title: "Old", FolderID: &folderID})

	title := "New"
	read := true
	patch := model.ArticlePatch{Title: &title, IsRead: &read, Tags: []string{"Go", "go"}}
	patch.Apply(&a)

	assert.Equal(t, a.Title, "New")
	assert.Assert(t, a.IsRead)
	assert.DeepEqual(t, a.Tags, []string{"go"})
	assert.Assert(t, a.FolderID != nil) // untouched without ClearFolder

	model.ArticlePatch{ClearFolder: true}.Apply(&a)
	assert.Assert(t, a.FolderID == nil)
}

func TestHighlightPatch_ClearCollection(t *testing.T) {
	collectionID := "c1"
	h := model.NewHighlight(model.NewHighlightParams{ArticleID: "a", Text: "x", Anchor: model.Anchor{EndOffset: 1}})
	model.HighlightPatch{CollectionID: &collectionID}.Apply(&h)
	assert.Assert(t, h.CollectionID != nil)

	model.HighlightPatch{ClearCollection: true}.Apply(&h)
	assert.Assert(t, h.CollectionID == nil)
}

func TestTimeFormat_LexicographicOrderIsChronological(t *testing.T) {
	earlier := model.FormatTime(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	later := model.FormatTime(time.Date(2026, 1, 2, 3, 4, 5, 900*int(time.Millisecond), time.UTC))
	assert.Assert(t, earlier < later)

	parsed, err := model.ParseTime(later)
	assert.NilError(t, err)
	assert.Equal(t, model.FormatTime(parsed), later)

	_, err = model.ParseTime("not a timestamp")
	assert.Assert(t, err != nil)
}

func TestNewReadingSession_Duration(t *testing.T) {
	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	sess := model.NewReadingSession("a", start, start.Add(12*time.Second))
	assert.Equal(t, sess.Duration, int64(12000))
	assert.Equal(t, sess.EndTime-sess.StartTime, sess.Duration)
}
