package selector

import (
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
)

const (
	accentColorConstant             = "78"
	normalColorConstant             = "252"
	dimColorConstant                = "240"
	filterPlaceholderConstant       = "Type to filter..."
	filterCharacterLimitConstant    = 100
	filterWidthConstant             = 40
	defaultVisibleRowsConstant      = 12
	cursorMarkerConstant            = "> "
	blankMarkerConstant             = "  "
	checkedBoxConstant              = "[x] "
	uncheckedBoxConstant            = "[ ] "
	descriptionIndentConstant       = "  "
	noMatchesMessageConstant        = "  No matches found"
	scrollIndicatorTemplateConstant = "\n  %d/%d"
	multipleHelpConstant            = "↑/↓ navigate • space toggle • ctrl+a toggle all • enter confirm • esc cancel"
	singleHelpConstant              = "↑/↓ navigate • enter select • esc cancel"
	chosenCountTemplateConstant     = "%d of %d selected"
)

var (
	titleStyle       = lipgloss.NewStyle().Bold(true)
	highlightedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(accentColorConstant)).Bold(true)
	normalStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color(normalColorConstant))
	dimStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color(dimColorConstant))
	cursorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color(accentColorConstant))
)

func newFilterInput() textinput.Model {
	filterInput := textinput.New()
	filterInput.Placeholder = filterPlaceholderConstant
	filterInput.CharLimit = filterCharacterLimitConstant
	filterInput.Width = filterWidthConstant
	filterInput.PromptStyle = cursorStyle
	filterInput.TextStyle = lipgloss.NewStyle()
	filterInput.Focus()
	return filterInput
}
