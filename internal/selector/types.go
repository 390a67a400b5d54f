package selector

import (
	"context"
	"errors"
)

const (
	noItemsMessageConstant = "nothing to choose from"
)

// ErrNoItems indicates a chooser was invoked with an empty item list.
var ErrNoItems = errors.New(noItemsMessageConstant)

// Item is a single choosable entry.
type Item struct {
	Label       string
	Description string
}

// Result carries the chosen item indices in presentation order.
// A cancelled result carries no indices and is not an error.
type Result struct {
	Indices   []int
	Cancelled bool
}

// MultiChooser lets the user choose any subset of items. Every item starts selected.
type MultiChooser interface {
	ChooseMultiple(executionContext context.Context, items []Item) (Result, error)
}

// SingleChooser lets the user choose exactly one item.
type SingleChooser interface {
	ChooseOne(executionContext context.Context, items []Item) (Result, error)
}
