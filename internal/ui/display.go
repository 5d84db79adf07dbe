package ui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"

	"miniquest/internal/chat"
	"miniquest/internal/quest"
	"miniquest/internal/saved"
)

// Display renders the chat surface: transcript blocks, the live
// progress line, suggestions, and transient notices.
type Display struct {
	width        int
	showProgress bool
	renderer     *glamour.TermRenderer
}

// NewDisplay creates a new display.
func NewDisplay(showProgress bool) *Display {
	width := terminalWidth()

	// Create markdown renderer
	renderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-10),
	)

	return &Display{
		width:        width,
		showProgress: showProgress,
		renderer:     renderer,
	}
}

// Color codes
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
)

// ClearScreen clears the terminal.
func (d *Display) ClearScreen() {
	fmt.Print("\033[2J\033[H")
}

// PrintWelcome displays the welcome message.
func (d *Display) PrintWelcome(location string) {
	d.ClearScreen()
	fmt.Printf("%s%sminiquest%s - local adventure planning\n", colorBold, colorCyan, colorReset)
	fmt.Printf("%sLocation:%s %s\n", colorGray, colorReset, location)
	fmt.Printf("%sCommands:%s /exit | /new | /history | /load <n> | /delete <n> | /location <addr> | /auto | /save <n> | /saved | /clear\n", colorGray, colorReset)
	fmt.Println()
}

// PrintSeparator prints a visual separator.
func (d *Display) PrintSeparator() {
	line := strings.Repeat("─", min(d.width, 80))
	fmt.Printf("%s%s%s\n", colorDim, line, colorReset)
}

// PrintPrompt displays the user input prompt.
func (d *Display) PrintPrompt() {
	fmt.Printf("\n%s%s❯%s ", colorBold, colorGreen, colorReset)
}

// PrintUserMessage displays a user message with timestamp.
func (d *Display) PrintUserMessage(msg chat.Message) {
	fmt.Printf("\n%s┌─ You · %s%s\n", colorGray, Timestamp(msg.Timestamp), colorReset)
	fmt.Printf("%s│%s %s\n", colorGray, colorReset, msg.Content)
	fmt.Printf("%s└%s\n", colorGray, colorReset)
}

// PrintAssistantMessage renders an assistant message as markdown.
func (d *Display) PrintAssistantMessage(msg chat.Message) {
	fmt.Printf("\n%s┌─ MiniQuest · %s%s\n", colorGray, Timestamp(msg.Timestamp), colorReset)

	content := strings.TrimRight(msg.Content, "\n")
	if d.renderer != nil {
		if rendered, err := d.renderer.Render(msg.Content); err == nil {
			content = strings.TrimRight(rendered, "\n")
		}
	}
	for _, line := range strings.Split(content, "\n") {
		fmt.Printf("%s│%s %s\n", colorGray, colorReset, line)
	}
	fmt.Printf("%s└%s\n", colorGray, colorReset)
}

// PrintProgress renders one progress update as a single status line.
func (d *Display) PrintProgress(update quest.ProgressUpdate) {
	if !d.showProgress {
		return
	}

	marker := "·"
	switch update.Status {
	case quest.StatusComplete:
		marker = "✓"
	case quest.StatusError:
		marker = "✗"
	case quest.StatusClarificationNeeded:
		marker = "?"
	}

	fmt.Printf("%s  %s %s %s [%s]%s\n",
		colorDim, marker, progressBar(update.Progress), update.Message, update.Agent, colorReset)
}

// progressBar renders a ten-segment bar for a 0..1 fraction.
func progressBar(fraction float64) string {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	filled := int(fraction * 10)
	return strings.Repeat("█", filled) + strings.Repeat("░", 10-filled)
}

// PrintSuggestions lists follow-up suggestions the user can type.
func (d *Display) PrintSuggestions(suggestions []string) {
	if len(suggestions) == 0 {
		return
	}
	fmt.Printf("%sSuggestions:%s\n", colorGray, colorReset)
	for i, s := range suggestions {
		fmt.Printf("  %s%d.%s %s\n", colorGray, i+1, colorReset, s)
	}
}

// PrintConversationList shows saved conversations for /history.
func (d *Display) PrintConversationList(conversations []chat.ConversationMetadata) {
	if len(conversations) == 0 {
		d.PrintInfo("No saved conversations yet")
		return
	}
	d.PrintSeparator()
	for i, conv := range conversations {
		fmt.Printf("%s%2d.%s %s %s(%d messages · %s · %s)%s\n",
			colorBold, i+1, colorReset, conv.Preview,
			colorGray, conv.MessageCount, conv.Location,
			conv.UpdatedAt.Format("Jan 2 15:04"), colorReset)
	}
	d.PrintSeparator()
}

// PrintSavedList shows saved adventures for /saved.
func (d *Display) PrintSavedList(adventures []saved.SavedAdventure) {
	if len(adventures) == 0 {
		d.PrintInfo("No saved adventures yet")
		return
	}
	d.PrintSeparator()
	for i, sa := range adventures {
		fmt.Printf("%s%2d.%s %s %s(saved %s)%s\n",
			colorBold, i+1, colorReset, sa.Adventure.Title,
			colorGray, sa.SavedAt.Format("Jan 2"), colorReset)
	}
	d.PrintSeparator()
}

// PrintInfo displays an info message.
func (d *Display) PrintInfo(msg string) {
	fmt.Printf("%sℹ %s%s\n", colorCyan, msg, colorReset)
}

// PrintWarning displays a warning message.
func (d *Display) PrintWarning(msg string) {
	fmt.Printf("%s⚠ %s%s\n", colorYellow, msg, colorReset)
}

// PrintError displays an error message.
func (d *Display) PrintError(err error) {
	fmt.Printf("%s✗ Error: %v%s\n", colorRed, err, colorReset)
}

// PrintSuccess displays a success message.
func (d *Display) PrintSuccess(msg string) {
	fmt.Printf("%s✓ %s%s\n", colorGreen, msg, colorReset)
}

// PrintGoodbye displays the goodbye message.
func (d *Display) PrintGoodbye() {
	fmt.Printf("\n%s%sHappy adventuring! 👋%s\n", colorBold, colorCyan, colorReset)
}

func terminalWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return 80
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Timestamp formats a message time for transcript headers.
func Timestamp(t time.Time) string {
	return t.Format("15:04:05")
}
