package selector

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// singleSelectModel lists items and picks the one under the cursor.
type singleSelectModel struct {
	title       string
	items       []Item
	visible     []int
	cursor      int
	filterInput textinput.Model
	chosen      int
	cancelled   bool
	maxHeight   int
}

func newSingleSelectModel(title string, items []Item) singleSelectModel {
	return singleSelectModel{
		title:       title,
		items:       items,
		visible:     filterItems(items, ""),
		filterInput: newFilterInput(),
		chosen:      -1,
		maxHeight:   defaultVisibleRowsConstant,
	}
}

func (model singleSelectModel) Init() tea.Cmd {
	return textinput.Blink
}

func (model singleSelectModel) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	if keyMessage, isKey := message.(tea.KeyMsg); isKey {
		switch keyMessage.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			model.cancelled = true
			return model, tea.Quit
		case tea.KeyEnter:
			if model.cursor < len(model.visible) {
				model.chosen = model.visible[model.cursor]
			}
			return model, tea.Quit
		case tea.KeyUp, tea.KeyCtrlP:
			if model.cursor > 0 {
				model.cursor--
			}
			return model, nil
		case tea.KeyDown, tea.KeyCtrlN:
			if model.cursor < len(model.visible)-1 {
				model.cursor++
			}
			return model, nil
		}
	}

	previousQuery := model.filterInput.Value()
	var command tea.Cmd
	model.filterInput, command = model.filterInput.Update(message)
	if model.filterInput.Value() != previousQuery {
		model.visible = filterItems(model.items, model.filterInput.Value())
		model.cursor = 0
	}
	return model, command
}

func (model singleSelectModel) result() Result {
	if model.cancelled || model.chosen < 0 {
		return Result{Cancelled: true}
	}
	return Result{Indices: []int{model.chosen}}
}

func (model singleSelectModel) View() string {
	var builder strings.Builder

	builder.WriteString(titleStyle.Render(model.title))
	builder.WriteString("\n")
	builder.WriteString(model.filterInput.View())
	builder.WriteString("\n\n")

	if len(model.visible) == 0 {
		builder.WriteString(dimStyle.Render(noMatchesMessageConstant))
		builder.WriteString("\n")
	}

	start, end := visibleWindow(len(model.visible), model.cursor, model.maxHeight)
	for row := start; row < end; row++ {
		item := model.items[model.visible[row]]
		if row == model.cursor {
			builder.WriteString(cursorStyle.Render(cursorMarkerConstant))
			builder.WriteString(highlightedStyle.Render(item.Label))
		} else {
			builder.WriteString(blankMarkerConstant)
			builder.WriteString(normalStyle.Render(item.Label))
		}
		if len(item.Description) > 0 {
			builder.WriteString(descriptionIndentConstant)
			builder.WriteString(dimStyle.Render(item.Description))
		}
		builder.WriteString("\n")
	}
	if len(model.visible) > model.maxHeight {
		builder.WriteString(dimStyle.Render(fmt.Sprintf(scrollIndicatorTemplateConstant, model.cursor+1, len(model.visible))))
		builder.WriteString("\n")
	}

	builder.WriteString("\n")
	builder.WriteString(dimStyle.Render(singleHelpConstant))
	return builder.String()
}
