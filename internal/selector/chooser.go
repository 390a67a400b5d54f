package selector

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
)

const (
	defaultMultiplePromptConstant   = "Select items"
	defaultSinglePromptConstant     = "Select an item"
	unexpectedModelTemplateConstant = "unexpected selector model %T"
)

// Chooser offers both single and multiple choice.
type Chooser interface {
	MultiChooser
	SingleChooser
}

// Prompts titles the choice screens.
type Prompts struct {
	Multiple string
	Single   string
}

func (prompts Prompts) withDefaults() Prompts {
	if len(prompts.Multiple) == 0 {
		prompts.Multiple = defaultMultiplePromptConstant
	}
	if len(prompts.Single) == 0 {
		prompts.Single = defaultSinglePromptConstant
	}
	return prompts
}

// NewChooser returns a TerminalChooser when both streams are terminals and a LineChooser otherwise.
func NewChooser(input io.Reader, output io.Writer, prompts Prompts) Chooser {
	if IsTerminal(input) && IsTerminal(output) {
		return NewTerminalChooser(input, output, prompts)
	}
	return NewLineChooser(input, output, prompts)
}

// IsTerminal reports whether stream is backed by a terminal device.
func IsTerminal(stream any) bool {
	file, isFile := stream.(*os.File)
	if !isFile || file == nil {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}

// TerminalChooser runs a full-screen bubbletea list.
type TerminalChooser struct {
	input   io.Reader
	output  io.Writer
	prompts Prompts
}

// NewTerminalChooser constructs a TerminalChooser over the provided streams.
func NewTerminalChooser(input io.Reader, output io.Writer, prompts Prompts) *TerminalChooser {
	return &TerminalChooser{input: input, output: output, prompts: prompts.withDefaults()}
}

// ChooseMultiple lets the user uncheck items; every item starts checked.
func (chooser *TerminalChooser) ChooseMultiple(executionContext context.Context, items []Item) (Result, error) {
	if len(items) == 0 {
		return Result{}, ErrNoItems
	}
	finalModel, runError := chooser.run(executionContext, newMultiSelectModel(chooser.prompts.Multiple, items))
	if runError != nil {
		return Result{}, runError
	}
	model, isMultiSelect := finalModel.(multiSelectModel)
	if !isMultiSelect {
		return Result{}, fmt.Errorf(unexpectedModelTemplateConstant, finalModel)
	}
	return model.result(), nil
}

// ChooseOne lets the user pick a single item.
func (chooser *TerminalChooser) ChooseOne(executionContext context.Context, items []Item) (Result, error) {
	if len(items) == 0 {
		return Result{}, ErrNoItems
	}
	finalModel, runError := chooser.run(executionContext, newSingleSelectModel(chooser.prompts.Single, items))
	if runError != nil {
		return Result{}, runError
	}
	model, isSingleSelect := finalModel.(singleSelectModel)
	if !isSingleSelect {
		return Result{}, fmt.Errorf(unexpectedModelTemplateConstant, finalModel)
	}
	return model.result(), nil
}

func (chooser *TerminalChooser) run(executionContext context.Context, model tea.Model) (tea.Model, error) {
	programOptions := []tea.ProgramOption{tea.WithContext(executionContext)}
	if chooser.input != nil {
		programOptions = append(programOptions, tea.WithInput(chooser.input))
	}
	if chooser.output != nil {
		programOptions = append(programOptions, tea.WithOutput(chooser.output))
	}
	return tea.NewProgram(model, programOptions...).Run()
}
