package flags

import (
	"fmt"
	"strings"
)

const (
	choiceListSeparatorConstant = ", "
	choiceUsageTemplateConstant = "%s (one of: %s)"
)

// FormatChoiceUsage appends the accepted values to a flag description. Values are trimmed,
// lowercased, and listed once in their first-seen order.
func FormatChoiceUsage(description string, choices ...string) string {
	acceptedValues := make([]string, 0, len(choices))
	seenValues := make(map[string]struct{}, len(choices))
	for _, choice := range choices {
		normalizedChoice := strings.ToLower(strings.TrimSpace(choice))
		if len(normalizedChoice) == 0 {
			continue
		}
		if _, seen := seenValues[normalizedChoice]; seen {
			continue
		}
		seenValues[normalizedChoice] = struct{}{}
		acceptedValues = append(acceptedValues, normalizedChoice)
	}

	trimmedDescription := strings.TrimSpace(description)
	if len(acceptedValues) == 0 {
		return trimmedDescription
	}
	return fmt.Sprintf(choiceUsageTemplateConstant, strings.TrimSuffix(trimmedDescription, "."), strings.Join(acceptedValues, choiceListSeparatorConstant))
}
