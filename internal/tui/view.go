package tui

import (
	"fmt"
	"strings"
)

func (a App) View() string {
	if a.mode == modeReading {
		return a.viewReading()
	}
	return a.viewList()
}

func (a App) viewList() string {
	var b strings.Builder

	title := fmt.Sprintf("%s (%d)", filterLabel(filterCycle[a.filter]), len(a.articles))
	b.WriteString(a.styles.Title.Render(title))
	b.WriteString("\n\n")

	if len(a.articles) == 0 {
		b.WriteString(a.styles.Empty.Render("nothing here"))
		b.WriteString("\n")
	}

	visible := a.height - 7
	if visible < 1 {
		visible = 1
	}
	start := 0
	if a.cursor >= visible {
		start = a.cursor - visible + 1
	}

	for i := start; i < len(a.articles) && i < start+visible; i++ {
		b.WriteString(a.renderItem(i))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if a.status != "" {
		b.WriteString(a.styles.Status.Render(a.status))
		b.WriteString("\n")
	}
	b.WriteString(a.styles.Help.Render("j/k move · enter read · tab filter · f favorite · a archive · r mark read · Y copy url · q quit"))

	return a.styles.App.Render(b.String())
}

func (a App) renderItem(i int) string {
	article := a.articles[i]

	marker := " "
	if article.IsFavorite {
		marker = a.styles.Favorite.Render("*")
	}

	meta := fmt.Sprintf("  %s · %s", article.SiteName, readingTimeLabel(article.ReadingTime))
	if len(article.Tags) > 0 {
		meta += " · " + a.styles.Tag.Render(strings.Join(article.Tags, ","))
	}

	line := marker + " " + article.Title + a.styles.Meta.Render(meta)

	switch {
	case i == a.cursor:
		return a.styles.ItemSelected.Render(marker + " " + article.Title + meta)
	case article.IsRead:
		return a.styles.ItemRead.Render(line)
	default:
		return a.styles.Item.Render(line)
	}
}

func (a App) viewReading() string {
	var b strings.Builder
	b.WriteString(a.styles.ReaderTitle.Render(a.reading.Title))
	b.WriteString("\n")
	b.WriteString(a.styles.Meta.Render("  " + a.reading.URL))
	b.WriteString("\n\n")
	b.WriteString(a.styles.Reader.Render(a.viewport.View()))
	b.WriteString("\n")
	b.WriteString(a.styles.Help.Render("j/k scroll · esc back · q quit"))
	return b.String()
}
