package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds all lipgloss styles for the TUI.
type Styles struct {
	App          lipgloss.Style
	Title        lipgloss.Style
	Item         lipgloss.Style
	ItemSelected lipgloss.Style
	ItemRead     lipgloss.Style
	Meta         lipgloss.Style
	Tag          lipgloss.Style
	Favorite     lipgloss.Style
	Reader       lipgloss.Style
	ReaderTitle  lipgloss.Style
	Highlight    lipgloss.Style
	Status       lipgloss.Style
	Help         lipgloss.Style
	Empty        lipgloss.Style
}

// DefaultStyles returns the default style configuration.
// Grayscale with a single desaturated teal accent.
func DefaultStyles() Styles {
	primary := lipgloss.AdaptiveColor{Light: "#505050", Dark: "#A0A0A0"}
	subtle := lipgloss.AdaptiveColor{Light: "#888888", Dark: "#606060"}
	accent := lipgloss.AdaptiveColor{Light: "#4A7070", Dark: "#5F8787"}
	warm := lipgloss.AdaptiveColor{Light: "#8A6D3B", Dark: "#AF8750"}

	return Styles{
		App: lipgloss.NewStyle().
			PaddingTop(1).
			PaddingLeft(2).
			PaddingRight(2),

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent),

		Item: lipgloss.NewStyle().
			Foreground(primary).
			PaddingLeft(1),

		ItemSelected: lipgloss.NewStyle().
			PaddingLeft(1).
			Background(accent).
			Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1A1A1A"}),

		ItemRead: lipgloss.NewStyle().
			Foreground(subtle).
			PaddingLeft(1),

		Meta: lipgloss.NewStyle().
			Foreground(subtle),

		Tag: lipgloss.NewStyle().
			Foreground(accent),

		Favorite: lipgloss.NewStyle().
			Foreground(warm),

		Reader: lipgloss.NewStyle().
			PaddingLeft(2).
			PaddingRight(2),

		ReaderTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			PaddingLeft(2),

		Highlight: lipgloss.NewStyle().
			Background(warm).
			Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1A1A1A"}),

		Status: lipgloss.NewStyle().
			Foreground(warm),

		Help: lipgloss.NewStyle().
			Foreground(subtle),

		Empty: lipgloss.NewStyle().
			Foreground(subtle).
			Italic(true).
			PaddingLeft(1),
	}
}
