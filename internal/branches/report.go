package branches

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/temirov/gitx/internal/branchstate"
	"github.com/temirov/gitx/internal/prune"
)

const (
	reportWouldDeleteTemplateConstant   = "Would delete %s:\n"
	reportDeletedTemplateConstant       = "Deleted %s:\n"
	reportFailedTemplateConstant        = "Failed to delete %s:\n"
	reportKeptTemplateConstant          = "Kept %s:\n"
	reportNameLineTemplateConstant      = "  %s\n"
	reportReasonLineTemplateConstant    = "  %s: %s\n"
	reportNothingToPruneConstant        = "No branches to prune\n"
	reportNothingDeletedConstant        = "No branches deleted\n"
	reportCancelledConstant             = "Pruning cancelled; no branches deleted\n"
	reportUnavailableConstant           = "Pull request data unavailable; branches with open pull requests could not be excluded"
	reportReasonSeparatorConstant       = "; "
	branchCountSingularTemplateConstant = "%d branch"
	branchCountPluralTemplateConstant   = "%d branches"
	deletedColorConstant                = "78"
	failedColorConstant                 = "203"
	warningColorConstant                = "214"
)

// ReportRenderer writes prune reports, keeping simulated, completed, and failed deletions apart.
type ReportRenderer struct {
	output       io.Writer
	deletedStyle lipgloss.Style
	failedStyle  lipgloss.Style
	warningStyle lipgloss.Style
	plainStyle   lipgloss.Style
}

// NewReportRenderer constructs a ReportRenderer; colors are used only when output is a terminal.
func NewReportRenderer(output io.Writer) ReportRenderer {
	styleRenderer := lipgloss.NewRenderer(output)
	return ReportRenderer{
		output:       output,
		deletedStyle: styleRenderer.NewStyle().Foreground(lipgloss.Color(deletedColorConstant)),
		failedStyle:  styleRenderer.NewStyle().Foreground(lipgloss.Color(failedColorConstant)),
		warningStyle: styleRenderer.NewStyle().Foreground(lipgloss.Color(warningColorConstant)),
		plainStyle:   styleRenderer.NewStyle(),
	}
}

// Render writes the report.
func (renderer ReportRenderer) Render(report prune.Report, enrichment branchstate.PullRequestEnrichment) {
	if !enrichment.Available {
		fmt.Fprintln(renderer.output, renderer.warningStyle.Render(reportUnavailableConstant))
	}

	switch {
	case report.Cancelled:
		fmt.Fprint(renderer.output, reportCancelledConstant)
	case report.Simulated && len(report.WouldDelete) == 0:
		fmt.Fprint(renderer.output, reportNothingToPruneConstant)
	case report.Simulated:
		fmt.Fprintf(renderer.output, reportWouldDeleteTemplateConstant, countBranches(len(report.WouldDelete)))
		renderer.writeNames(report.WouldDelete, renderer.plainStyle)
	case report.Attempted == 0:
		fmt.Fprint(renderer.output, reportNothingDeletedConstant)
	}

	if len(report.Deleted) > 0 {
		fmt.Fprintf(renderer.output, reportDeletedTemplateConstant, countBranches(len(report.Deleted)))
		renderer.writeNames(report.Deleted, renderer.deletedStyle)
	}
	if len(report.Failed) > 0 {
		fmt.Fprintf(renderer.output, reportFailedTemplateConstant, countBranches(len(report.Failed)))
		for _, failure := range report.Failed {
			fmt.Fprintf(renderer.output, reportReasonLineTemplateConstant, renderer.failedStyle.Render(failure.Branch), failure.Reason)
		}
	}
	if len(report.Excluded) > 0 {
		fmt.Fprintf(renderer.output, reportKeptTemplateConstant, countBranches(len(report.Excluded)))
		for _, exclusion := range report.Excluded {
			fmt.Fprintf(renderer.output, reportReasonLineTemplateConstant, exclusion.Branch, strings.Join(exclusion.Reasons, reportReasonSeparatorConstant))
		}
	}
}

func (renderer ReportRenderer) writeNames(names []string, style lipgloss.Style) {
	for _, name := range names {
		fmt.Fprintf(renderer.output, reportNameLineTemplateConstant, style.Render(name))
	}
}

func countBranches(count int) string {
	if count == 1 {
		return fmt.Sprintf(branchCountSingularTemplateConstant, count)
	}
	return fmt.Sprintf(branchCountPluralTemplateConstant, count)
}
