package picker

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/marginalia/internal/model"
	"github.com/nikbrunner/marginalia/internal/search"
)

func results(titles ...string) []search.Result {
	out := make([]search.Result, len(titles))
	for i, title := range titles {
		a := model.NewArticle(model.NewArticleParams{
			URL:   "https://example.com/" + title,
			Title: title,
		})
		out[i] = search.Result{Article: &a}
	}
	return out
}

func key(p Picker, msg tea.KeyMsg) Picker {
	m, _ := p.Update(msg)
	return m.(Picker)
}

func TestPicker_SelectSecond(t *testing.T) {
	p := New(results("First", "Second"), "query")

	p = key(p, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	p = key(p, tea.KeyMsg{Type: tea.KeyEnter})

	selected := p.SelectedArticle()
	if selected == nil || selected.Title != "Second" {
		t.Fatalf("expected Second selected, got %v", selected)
	}
	if p.Cancelled() {
		t.Error("expected not cancelled")
	}
}

func TestPicker_Cancel(t *testing.T) {
	p := New(results("First"), "query")

	p = key(p, tea.KeyMsg{Type: tea.KeyEsc})

	if !p.Cancelled() {
		t.Error("expected cancelled")
	}
	if p.SelectedArticle() != nil {
		t.Error("expected no selection after cancel")
	}
}

func TestPicker_ViewShowsArticleDetails(t *testing.T) {
	a := model.NewArticle(model.NewArticleParams{
		URL:         "https://example.com/go",
		Title:       "Go Concurrency Patterns",
		SiteName:    "go.dev",
		ReadingTime: 12,
		Tags:        []string{"go"},
	})
	a.IsFavorite = true
	a.IsRead = true
	p := New([]search.Result{{Article: &a}}, "go")

	view := p.View()
	for _, want := range []string{"Go Concurrency Patterns", "12m", "read", "go.dev", "#go", "*", "https://example.com/go"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}

func TestPicker_CursorClamped(t *testing.T) {
	p := New(results("Only"), "query")

	p = key(p, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	p = key(p, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")})
	p = key(p, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")})
	p = key(p, tea.KeyMsg{Type: tea.KeyEnter})

	if selected := p.SelectedArticle(); selected == nil || selected.Title != "Only" {
		t.Fatalf("expected the only result selected, got %v", selected)
	}
}
