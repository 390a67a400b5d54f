package selector

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

const (
	itemLineTemplateConstant                = "  %d) %s\n"
	itemLineWithDescriptionTemplateConstant = "  %d) %s  %s\n"
	multiplePromptTemplateConstant          = "%s [all] (numbers separated by spaces or commas, 'none' to cancel): "
	singlePromptTemplateConstant            = "%s (number, empty to cancel): "
	selectionSeparatorsConstant             = ", "
	invalidSelectionTemplateConstant        = "invalid selection %q: choose numbers between 1 and %d"
	promptHeaderTemplateConstant            = "%s:\n"
	cancelKeywordNoneConstant               = "none"
	cancelKeywordQuitConstant               = "q"
)

// InvalidSelectionError reports line input that does not name listed items.
type InvalidSelectionError struct {
	Input     string
	ItemCount int
}

// Error describes the invalid selection.
func (selectionError InvalidSelectionError) Error() string {
	return fmt.Sprintf(invalidSelectionTemplateConstant, selectionError.Input, selectionError.ItemCount)
}

// LineChooser prints a numbered list and reads the answer from a line of input.
type LineChooser struct {
	reader  *bufio.Reader
	writer  io.Writer
	prompts Prompts
}

// NewLineChooser constructs a LineChooser over the provided streams.
func NewLineChooser(input io.Reader, output io.Writer, prompts Prompts) *LineChooser {
	if output == nil {
		output = io.Discard
	}
	return &LineChooser{reader: bufio.NewReader(input), writer: output, prompts: prompts.withDefaults()}
}

// ChooseMultiple accepts an empty line as every item and closed input as cancellation.
func (chooser *LineChooser) ChooseMultiple(_ context.Context, items []Item) (Result, error) {
	if len(items) == 0 {
		return Result{}, ErrNoItems
	}
	if writeError := chooser.writeItems(chooser.prompts.Multiple, items); writeError != nil {
		return Result{}, writeError
	}
	if _, writeError := fmt.Fprintf(chooser.writer, multiplePromptTemplateConstant, chooser.prompts.Multiple); writeError != nil {
		return Result{}, writeError
	}

	response, closed, readError := chooser.readLine()
	if readError != nil {
		return Result{}, readError
	}
	if closed && len(response) == 0 {
		return Result{Cancelled: true}, nil
	}

	switch strings.ToLower(response) {
	case "":
		indices := make([]int, len(items))
		for index := range items {
			indices[index] = index
		}
		return Result{Indices: indices}, nil
	case cancelKeywordNoneConstant, cancelKeywordQuitConstant:
		return Result{Cancelled: true}, nil
	}

	indices, parseError := parseSelection(response, len(items))
	if parseError != nil {
		return Result{}, parseError
	}
	return Result{Indices: indices}, nil
}

// ChooseOne reads a single item number; an empty answer cancels.
func (chooser *LineChooser) ChooseOne(_ context.Context, items []Item) (Result, error) {
	if len(items) == 0 {
		return Result{}, ErrNoItems
	}
	if writeError := chooser.writeItems(chooser.prompts.Single, items); writeError != nil {
		return Result{}, writeError
	}
	if _, writeError := fmt.Fprintf(chooser.writer, singlePromptTemplateConstant, chooser.prompts.Single); writeError != nil {
		return Result{}, writeError
	}

	response, _, readError := chooser.readLine()
	if readError != nil {
		return Result{}, readError
	}
	if len(response) == 0 || strings.EqualFold(response, cancelKeywordQuitConstant) {
		return Result{Cancelled: true}, nil
	}

	indices, parseError := parseSelection(response, len(items))
	if parseError != nil {
		return Result{}, parseError
	}
	if len(indices) != 1 {
		return Result{}, InvalidSelectionError{Input: response, ItemCount: len(items)}
	}
	return Result{Indices: indices}, nil
}

func (chooser *LineChooser) writeItems(title string, items []Item) error {
	if _, writeError := fmt.Fprintf(chooser.writer, promptHeaderTemplateConstant, title); writeError != nil {
		return writeError
	}
	for index, item := range items {
		var writeError error
		if len(item.Description) > 0 {
			_, writeError = fmt.Fprintf(chooser.writer, itemLineWithDescriptionTemplateConstant, index+1, item.Label, item.Description)
		} else {
			_, writeError = fmt.Fprintf(chooser.writer, itemLineTemplateConstant, index+1, item.Label)
		}
		if writeError != nil {
			return writeError
		}
	}
	return nil
}

// readLine returns the trimmed line and whether the input was exhausted.
func (chooser *LineChooser) readLine() (string, bool, error) {
	response, readError := chooser.reader.ReadString('\n')
	if readError != nil && !errors.Is(readError, io.EOF) {
		return "", false, readError
	}
	return strings.TrimSpace(response), errors.Is(readError, io.EOF), nil
}

// parseSelection converts 1-based item numbers into sorted, distinct 0-based indices.
func parseSelection(response string, itemCount int) ([]int, error) {
	fields := strings.FieldsFunc(response, func(character rune) bool {
		return strings.ContainsRune(selectionSeparatorsConstant, character)
	})
	seen := make(map[int]struct{}, len(fields))
	indices := make([]int, 0, len(fields))
	for _, field := range fields {
		number, conversionError := strconv.Atoi(field)
		if conversionError != nil || number < 1 || number > itemCount {
			return nil, InvalidSelectionError{Input: response, ItemCount: itemCount}
		}
		if _, duplicate := seen[number-1]; duplicate {
			continue
		}
		seen[number-1] = struct{}{}
		indices = append(indices, number-1)
	}
	if len(indices) == 0 {
		return nil, InvalidSelectionError{Input: response, ItemCount: itemCount}
	}
	sort.Ints(indices)
	return indices, nil
}
