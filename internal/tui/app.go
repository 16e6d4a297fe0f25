// Package tui is the interactive terminal frontend: a filterable article
// list and a paragraph-based reader that records reading sessions.
package tui

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/net/html"

	"github.com/nikbrunner/marginalia/internal/anchor"
	"github.com/nikbrunner/marginalia/internal/content"
	"github.com/nikbrunner/marginalia/internal/model"
	"github.com/nikbrunner/marginalia/internal/recommend"
	"github.com/nikbrunner/marginalia/internal/session"
	"github.com/nikbrunner/marginalia/internal/storage"
)

type mode int

const (
	modeList mode = iota
	modeReading
)

var filterCycle = []storage.Filter{
	storage.FilterAll,
	storage.FilterUnread,
	storage.FilterFavorites,
	storage.FilterArchived,
}

// App is the main bubbletea model.
type App struct {
	store   *storage.Store
	tracker *session.Tracker
	userID  string
	keys    KeyMap
	styles  Styles

	mode     mode
	filter   int // index into filterCycle
	articles []model.Article
	cursor   int

	reading  model.Article
	viewport viewport.Model

	status string
	width  int
	height int
}

// AppParams holds parameters for creating a new App.
type AppParams struct {
	Store  *storage.Store
	UserID string
	Keys   *KeyMap // optional, uses default if nil
	Styles *Styles // optional, uses default if nil
}

// NewApp creates a new App with the given parameters.
func NewApp(params AppParams) App {
	keys := DefaultKeyMap()
	if params.Keys != nil {
		keys = *params.Keys
	}
	styles := DefaultStyles()
	if params.Styles != nil {
		styles = *params.Styles
	}

	app := App{
		store:   params.Store,
		tracker: session.NewTracker(params.Store),
		userID:  params.UserID,
		keys:    keys,
		styles:  styles,
		width:   80,
		height:  24,
	}
	app.refresh()
	return app
}

// refresh reloads the article list for the active filter.
func (a *App) refresh() {
	articles, err := a.store.ListArticles(storage.ArticleQuery{
		UserID: a.userID,
		Filter: filterCycle[a.filter],
	})
	if err != nil {
		a.status = err.Error()
		return
	}
	a.articles = articles
	if a.cursor >= len(a.articles) {
		a.cursor = len(a.articles) - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

func (a App) Init() tea.Cmd {
	return nil
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.viewport.Width = msg.Width - 4
		a.viewport.Height = msg.Height - 4
		return a, nil

	case tea.KeyMsg:
		if a.mode == modeReading {
			return a.updateReading(msg)
		}
		return a.updateList(msg)
	}
	return a, nil
}

func (a App) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a.status = ""

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Down):
		if a.cursor < len(a.articles)-1 {
			a.cursor++
		}

	case key.Matches(msg, a.keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}

	case key.Matches(msg, a.keys.Filter):
		a.filter = (a.filter + 1) % len(filterCycle)
		a.cursor = 0
		a.refresh()

	case key.Matches(msg, a.keys.Open):
		if article, ok := a.selected(); ok {
			a.openReader(article)
		}

	case key.Matches(msg, a.keys.Favorite):
		if article, ok := a.selected(); ok {
			if err := a.store.ToggleFavorite(article.ID); err != nil {
				a.status = err.Error()
			}
			a.refresh()
		}

	case key.Matches(msg, a.keys.Archive):
		if article, ok := a.selected(); ok {
			if err := a.store.ToggleArchive(article.ID); err != nil {
				a.status = err.Error()
			}
			a.refresh()
		}

	case key.Matches(msg, a.keys.MarkRead):
		if article, ok := a.selected(); ok {
			if err := a.store.MarkAsRead(article.ID); err != nil {
				a.status = err.Error()
			}
			a.refresh()
		}

	case key.Matches(msg, a.keys.CopyURL):
		if article, ok := a.selected(); ok {
			if err := clipboard.WriteAll(article.URL); err != nil {
				a.status = "clipboard unavailable"
			} else {
				a.status = "copied " + article.URL
			}
		}
	}

	return a, nil
}

func (a App) updateReading(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Quit):
		a.closeReader()
		return a, tea.Quit

	case key.Matches(msg, a.keys.Back):
		a.closeReader()
		a.mode = modeList
		a.refresh()
		return a, nil
	}

	var cmd tea.Cmd
	a.viewport, cmd = a.viewport.Update(msg)
	return a, cmd
}

func (a *App) openReader(article model.Article) {
	a.reading = article
	a.viewport = viewport.New(a.width-4, a.height-4)
	a.viewport.SetContent(a.renderArticle(article))
	a.mode = modeReading
	a.tracker.Start(article.ID)
}

// closeReader stops the session clock; short reads are discarded by the
// store, so leaving immediately costs nothing.
func (a *App) closeReader() {
	if _, _, err := a.tracker.Stop(); err != nil {
		a.status = err.Error()
	}
}

// renderArticle lays article paragraphs out as wrapped text with the
// saved highlights marked, followed by related unread articles.
func (a *App) renderArticle(article model.Article) string {
	doc, err := content.ParseDocument(article.Content)
	if err != nil {
		return article.Excerpt
	}
	if highlights, err := a.store.ListHighlights(article.ID); err == nil {
		anchor.Apply(doc, highlights)
	}

	width := a.width - 8
	if width < 20 {
		width = 20
	}

	var out strings.Builder
	for _, p := range doc.Paragraphs() {
		out.WriteString(wrapRuns(paragraphRuns(p), width, a.styles.Highlight))
		out.WriteString("\n\n")
	}
	if out.Len() == 0 {
		return article.Excerpt
	}

	out.WriteString(a.renderRelated(article))
	return out.String()
}

// renderRelated lists up to five unread articles similar to the current
// one, so the reader view doubles as a jumping-off point.
func (a *App) renderRelated(article model.Article) string {
	all, err := a.store.AllArticles(a.userID)
	if err != nil {
		return ""
	}
	related := recommend.Related(article, all)
	if len(related) == 0 {
		return ""
	}

	var out strings.Builder
	out.WriteString(a.styles.Meta.Render("Related"))
	out.WriteByte('\n')
	for _, r := range related {
		out.WriteString(fmt.Sprintf("  %s (%s)\n", r.Article.Title, readingTimeLabel(r.Article.ReadingTime)))
	}
	return out.String()
}

// textRun is a stretch of paragraph text with uniform highlight state.
type textRun struct {
	text   string
	marked bool
}

// paragraphRuns flattens a paragraph into runs, tagging text carried by
// highlight markers.
func paragraphRuns(p *html.Node) []textRun {
	var runs []textRun
	var visit func(n *html.Node, marked bool)
	visit = func(n *html.Node, marked bool) {
		if n.Type == html.TextNode {
			if n.Data != "" {
				runs = append(runs, textRun{text: n.Data, marked: marked})
			}
			return
		}
		if anchor.MarkID(n) != "" {
			marked = true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c, marked)
		}
	}
	for c := p.FirstChild; c != nil; c = c.NextSibling {
		visit(c, false)
	}
	return runs
}

// wrapRuns word-wraps runs to width, styling marked stretches. Width
// accounting uses the unstyled rune count, so escape sequences never
// push a line over. A word cut by a marker boundary stays on one line.
func wrapRuns(runs []textRun, width int, mark lipgloss.Style) string {
	type token struct {
		text        string
		marked      bool
		spaceBefore bool
	}

	var tokens []token
	pendingSpace := false
	for _, r := range runs {
		leading := strings.TrimLeftFunc(r.text, unicode.IsSpace) != r.text
		trailing := strings.TrimRightFunc(r.text, unicode.IsSpace) != r.text
		fields := strings.Fields(r.text)
		if len(fields) == 0 {
			if r.text != "" {
				pendingSpace = true
			}
			continue
		}
		for i, f := range fields {
			tokens = append(tokens, token{
				text:        f,
				marked:      r.marked,
				spaceBefore: i > 0 || pendingSpace || leading,
			})
		}
		pendingSpace = trailing
	}

	var out strings.Builder
	lineLen := 0
	for _, tok := range tokens {
		w := len([]rune(tok.text))
		if lineLen > 0 && tok.spaceBefore {
			if lineLen+1+w > width {
				out.WriteByte('\n')
				lineLen = 0
			} else {
				out.WriteByte(' ')
				lineLen++
			}
		}
		if tok.marked {
			out.WriteString(mark.Render(tok.text))
		} else {
			out.WriteString(tok.text)
		}
		lineLen += w
	}
	return out.String()
}

func (a App) selected() (model.Article, bool) {
	if a.cursor < 0 || a.cursor >= len(a.articles) {
		return model.Article{}, false
	}
	return a.articles[a.cursor], true
}

func filterLabel(f storage.Filter) string {
	switch f {
	case storage.FilterUnread:
		return "Unread"
	case storage.FilterFavorites:
		return "Favorites"
	case storage.FilterArchived:
		return "Archived"
	}
	return "Library"
}

func readingTimeLabel(minutes int) string {
	return fmt.Sprintf("%dm", minutes)
}
