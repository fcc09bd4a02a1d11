package ui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/booklib/internal/books"
)

// RenderBookList renders the visible slice of bs, keeping cursor on screen.
// cursor < 0 renders without a highlighted row.
func RenderBookList(bs []books.Book, cursor, width, height int) string {
	if len(bs) == 0 {
		return HelpStyle.Render("No books yet. Add one above, or press ctrl+r for a random classic.")
	}

	availableHeight := height
	if availableHeight < 1 {
		availableHeight = 1
	}
	offset := calcScrollOffset(len(bs), cursor, availableHeight)

	var b strings.Builder
	for i := offset; i < len(bs) && i-offset < availableHeight; i++ {
		b.WriteString(renderBookLine(bs[i], i == cursor, width))
		b.WriteString("\n")
	}
	return b.String()
}

// calcScrollOffset returns the first row to draw so that cursor is visible.
func calcScrollOffset(total, cursor, availableHeight int) int {
	if total == 0 || cursor < 0 {
		return 0
	}
	if cursor >= total {
		cursor = total - 1
	}
	if cursor >= availableHeight {
		return cursor - availableHeight + 1
	}
	return 0
}

// renderBookLine renders one row: favorite mark, title, author, source badge.
func renderBookLine(b books.Book, selected bool, width int) string {
	mark := "  "
	if b.IsFavorite {
		mark = FavoriteMark.Render("★ ")
	}
	badge := SourceBadge.Render(string(b.Source))

	// Room for the title after mark, " by ", author, badge and item padding.
	room := width - 2 - lipgloss.Width(badge) - 4 - utf8.RuneCountInString(b.Author) - 2
	title := b.Title
	if room > 0 {
		title = truncateRunes(title, room)
	}

	if selected {
		return SelectedItem.Render(mark+title+" by "+b.Author) + badge
	}
	return NormalItem.Render(mark+title+AuthorText.Render(" by "+b.Author)) + badge
}

// truncateRunes shortens s to at most n runes, ending with "..." when cut.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

// RenderStatusBar renders the bottom status bar with key hints for the active mode.
func RenderStatusBar(m mode, cursor, shown, total, width int, loading string) string {
	// Left side: position info or loading indicator
	var position string
	switch {
	case loading != "":
		position = " " + loading + LoadingText.Render(" fetching...") + " "
	case m == modeList && shown > 0:
		position = fmt.Sprintf(" %d/%d ", cursor+1, shown)
	default:
		position = fmt.Sprintf(" %d books ", total)
	}

	var keys []string
	switch m {
	case modeForm:
		keys = []string{
			StatusBarKey.Render("tab") + StatusBarText.Render(":field"),
			StatusBarKey.Render("enter") + StatusBarText.Render(":add"),
			StatusBarKey.Render("ctrl+r") + StatusBarText.Render(":random"),
			StatusBarKey.Render("ctrl+a") + StatusBarText.Render(":api"),
			StatusBarKey.Render("esc") + StatusBarText.Render(":list"),
		}
	case modeList:
		keys = []string{
			StatusBarKey.Render("j/k") + StatusBarText.Render(":nav"),
			StatusBarKey.Render("f") + StatusBarText.Render(":fav"),
			StatusBarKey.Render("d") + StatusBarText.Render(":delete"),
			StatusBarKey.Render("/") + StatusBarText.Render(":filter"),
			StatusBarKey.Render("esc") + StatusBarText.Render(":form"),
			StatusBarKey.Render("q") + StatusBarText.Render(":quit"),
		}
	case modeFilter:
		keys = []string{
			StatusBarKey.Render("enter") + StatusBarText.Render(":done"),
			StatusBarKey.Render("tab") + StatusBarText.Render(":title/author"),
			StatusBarKey.Render("ctrl+f") + StatusBarText.Render(":favorites"),
			StatusBarKey.Render("ctrl+x") + StatusBarText.Render(":reset"),
		}
	}
	keys = append(keys, StatusBarKey.Render("ctrl+d")+StatusBarText.Render(":debug"))
	keyHints := strings.Join(keys, " ")

	// Calculate padding to fill width
	padding := width - lipgloss.Width(position) - lipgloss.Width(keyHints)
	if padding < 0 {
		padding = 0
	}

	bar := position + strings.Repeat(" ", padding) + keyHints
	return StatusBar.Width(width).Render(bar)
}

// RenderFilterBar renders the active filters and the match count.
func RenderFilterBar(title, author string, onlyFavorite bool, shown, total, width int) string {
	prompt := FilterBarPrompt.Render("/")
	by := FilterBarPrompt.Render("  by ")
	fav := ""
	if onlyFavorite {
		fav = FavoriteMark.Render(" ★ only")
	}
	count := FilterBarCount.Render(fmt.Sprintf(" %d/%d", shown, total))

	content := prompt + title + by + author + fav + count
	padding := width - lipgloss.Width(content) - 2 // -2 for bar padding
	if padding < 0 {
		padding = 0
	}
	return FilterBar.Width(width).Render(content + strings.Repeat(" ", padding))
}
