package selector

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

type itemSource []Item

func (source itemSource) String(index int) string { return source[index].Label }
func (source itemSource) Len() int                 { return len(source) }

// filterItems returns the indices of items matching query, best match first.
// An empty query keeps every item in its original order.
func filterItems(items []Item, query string) []int {
	trimmedQuery := strings.TrimSpace(query)
	if len(trimmedQuery) == 0 {
		indices := make([]int, len(items))
		for index := range items {
			indices[index] = index
		}
		return indices
	}

	matches := fuzzy.FindFrom(trimmedQuery, itemSource(items))
	indices := make([]int, 0, len(matches))
	for _, match := range matches {
		indices = append(indices, match.Index)
	}
	return indices
}

// visibleWindow returns the slice bounds keeping cursor inside a window of at most height rows.
func visibleWindow(total int, cursor int, height int) (int, int) {
	if total <= height {
		return 0, total
	}
	start := cursor - height/2
	if start < 0 {
		start = 0
	}
	end := start + height
	if end > total {
		end = total
		start = end - height
	}
	return start, end
}
