package ui

import "github.com/charmbracelet/lipgloss"

// Colors used in the application.
var (
	colorPrimary   = lipgloss.Color("62")  // Purple
	colorSecondary = lipgloss.Color("241") // Gray
	colorMuted     = lipgloss.Color("240") // Darker gray
	colorHighlight = lipgloss.Color("212") // Pink
	colorSuccess   = lipgloss.Color("78")  // Green
	colorFavorite  = lipgloss.Color("220") // Gold
	colorError     = lipgloss.Color("196") // Red
)

// TitleStyle for the app header.
var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight).
	Padding(0, 1)

// SectionHeader style for the "Add a book" and "Books" headings.
var SectionHeader = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorPrimary).
	MarginTop(1).
	Padding(0, 1)

// FieldLabel style for form labels.
var FieldLabel = lipgloss.NewStyle().
	Foreground(colorSecondary).
	Width(9).
	PaddingLeft(1)

// FieldLabelActive style for the label of the focused field.
var FieldLabelActive = FieldLabel.
	Foreground(colorHighlight).
	Bold(true)

// SelectedItem style for the currently highlighted book.
var SelectedItem = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 1)

// NormalItem style for unselected books.
var NormalItem = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Padding(0, 1)

// AuthorText style for the "by <author>" part of a row.
var AuthorText = lipgloss.NewStyle().
	Foreground(colorSecondary)

// FavoriteMark style for the favorite star.
var FavoriteMark = lipgloss.NewStyle().
	Foreground(colorFavorite).
	Bold(true)

// SourceBadge style for the manual/random/api tag.
var SourceBadge = lipgloss.NewStyle().
	Foreground(colorPrimary).
	Background(lipgloss.Color("236")).
	Padding(0, 1).
	MarginLeft(1)

// StatusBar style for the bottom status bar.
var StatusBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// StatusBarKey style for key hints in status bar.
var StatusBarKey = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// StatusBarText style for descriptive text in status bar.
var StatusBarText = lipgloss.NewStyle().
	Foreground(colorSecondary)

// LoadingText style for the "fetching" indicator next to the spinner.
var LoadingText = lipgloss.NewStyle().
	Foreground(colorSuccess)

// ToastStyle for the transient error toast.
var ToastStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(colorError).
	Bold(true).
	Padding(0, 1)

// HelpStyle for help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(colorMuted).
	Padding(1, 2)

// FilterBar style for the filter input bar.
var FilterBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("240")).
	Padding(0, 1)

// FilterBarPrompt style for the "/" prompt.
var FilterBarPrompt = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// FilterBarCount style for the filtered count.
var FilterBarCount = lipgloss.NewStyle().
	Foreground(colorSecondary)

// DebugPanel style for the debug overlay box.
var DebugPanel = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorPrimary).
	Padding(1, 2)

// DebugHeaderStyle for section headings inside the debug overlay.
var DebugHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight)
