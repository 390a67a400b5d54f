package selector

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// multiSelectModel lists items with a checkbox each; every item starts checked.
type multiSelectModel struct {
	title       string
	items       []Item
	visible     []int
	chosen      []bool
	cursor      int
	filterInput textinput.Model
	confirmed   bool
	cancelled   bool
	maxHeight   int
}

func newMultiSelectModel(title string, items []Item) multiSelectModel {
	chosen := make([]bool, len(items))
	for index := range chosen {
		chosen[index] = true
	}
	return multiSelectModel{
		title:       title,
		items:       items,
		visible:     filterItems(items, ""),
		chosen:      chosen,
		filterInput: newFilterInput(),
		maxHeight:   defaultVisibleRowsConstant,
	}
}

func (model multiSelectModel) Init() tea.Cmd {
	return textinput.Blink
}

func (model multiSelectModel) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	if keyMessage, isKey := message.(tea.KeyMsg); isKey {
		switch keyMessage.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			model.cancelled = true
			return model, tea.Quit
		case tea.KeyEnter:
			model.confirmed = true
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
		case tea.KeySpace:
			if model.cursor < len(model.visible) {
				itemIndex := model.visible[model.cursor]
				model.chosen[itemIndex] = !model.chosen[itemIndex]
			}
			return model, nil
		case tea.KeyCtrlA:
			model.toggleVisible()
			return model, nil
		}
	}

	previousQuery := model.filterInput.Value()
	var command tea.Cmd
	model.filterInput, command = model.filterInput.Update(message)
	if model.filterInput.Value() != previousQuery {
		model.visible = filterItems(model.items, model.filterInput.Value())
		if model.cursor >= len(model.visible) {
			model.cursor = max(0, len(model.visible)-1)
		}
	}
	return model, command
}

// toggleVisible checks every visible item unless all of them already are, in which case it clears them.
func (model multiSelectModel) toggleVisible() {
	allChosen := true
	for _, itemIndex := range model.visible {
		if !model.chosen[itemIndex] {
			allChosen = false
			break
		}
	}
	for _, itemIndex := range model.visible {
		model.chosen[itemIndex] = !allChosen
	}
}

func (model multiSelectModel) chosenIndices() []int {
	indices := make([]int, 0, len(model.items))
	for itemIndex, chosen := range model.chosen {
		if chosen {
			indices = append(indices, itemIndex)
		}
	}
	return indices
}

func (model multiSelectModel) result() Result {
	if !model.confirmed || model.cancelled {
		return Result{Cancelled: true}
	}
	return Result{Indices: model.chosenIndices()}
}

func (model multiSelectModel) View() string {
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
		checkbox := uncheckedBoxConstant
		if model.chosen[model.visible[row]] {
			checkbox = checkedBoxConstant
		}

		if row == model.cursor {
			builder.WriteString(cursorStyle.Render(cursorMarkerConstant))
			builder.WriteString(highlightedStyle.Render(checkbox + item.Label))
		} else {
			builder.WriteString(blankMarkerConstant)
			builder.WriteString(normalStyle.Render(checkbox + item.Label))
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
	builder.WriteString(dimStyle.Render(fmt.Sprintf(chosenCountTemplateConstant, len(model.chosenIndices()), len(model.items))))
	builder.WriteString("\n")
	builder.WriteString(dimStyle.Render(multipleHelpConstant))
	return builder.String()
}
