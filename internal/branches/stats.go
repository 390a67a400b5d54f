package branches

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/temirov/gitx/internal/branchstate"
)

const (
	currentMarkerConstant              = "●"
	relationMergedTextConstant         = "Merged"
	relationUnmergedTemplateConstant   = "Not merged (%d ahead)"
	relationDivergedTemplateConstant   = "Diverged (%d ahead, %d behind)"
	relationUnknownTextConstant        = "Unknown"
	pullRequestNoneTextConstant        = "none"
	pullRequestUnavailableTextConstant = "unavailable"
	pullRequestTemplateConstant        = "#%d %s"
	upstreamGoneTemplateConstant       = "%s (gone)"
	noUpstreamTextConstant             = "No remote tracking"
	lastCommitTemplateConstant         = "%s %s"
	lastActivityLayoutConstant         = "2006-01-02"
	truncationTailConstant             = "…"
	lastCommitMaximumWidthConstant     = 60
	statsTitleTemplateConstant         = "Branch statistics against %s"
	statsUnavailableTemplateConstant   = "Pull request data unavailable: %v"
	statsUnavailableNoCauseConstant    = "Pull request data unavailable"
	noBranchesMessageConstant          = "No branches found\n"
	detachedHeadMessageConstant        = "HEAD is detached; no branch is checked out"
	enrichmentAvailableConstant        = "available"
	enrichmentUnavailableConstant      = "unavailable"
	unsupportedFormatTemplateConstant  = "unsupported output format %q"
	statsRenderErrorTemplateConstant   = "render branch statistics: %w"
	currentMarkerColorConstant         = "78"
	mutedColorConstant                 = "240"
	tableHeaderCurrentConstant         = ""
	tableHeaderBranchConstant          = "Branch"
	tableHeaderRelationConstant        = "Relation"
	tableHeaderPullRequestConstant     = "Pull request"
	tableHeaderUpstreamConstant        = "Upstream"
	tableHeaderLastCommitConstant      = "Last commit"
	tableColumnPaddingConstant         = "  "
)

// OutputFormat selects how statistics are written.
type OutputFormat string

// Output formats.
const (
	OutputFormatTable OutputFormat = OutputFormat("table")
	OutputFormatYAML  OutputFormat = OutputFormat("yaml")
)

// SupportedOutputFormats lists the accepted --format values.
func SupportedOutputFormats() []string {
	return []string{string(OutputFormatTable), string(OutputFormatYAML)}
}

// ParseOutputFormat validates a format name.
func ParseOutputFormat(value string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(strings.TrimSpace(value))) {
	case OutputFormatTable:
		return OutputFormatTable, nil
	case OutputFormatYAML:
		return OutputFormatYAML, nil
	default:
		return "", fmt.Errorf(unsupportedFormatTemplateConstant, value)
	}
}

// StatsDocument is the machine-readable form of a resolution.
type StatsDocument struct {
	Reference    string       `yaml:"reference"`
	Repository   string       `yaml:"repository,omitempty"`
	PullRequests string       `yaml:"pull_requests"`
	DetachedHead bool         `yaml:"detached_head,omitempty"`
	Branches     []StatsEntry `yaml:"branches"`
}

// StatsEntry describes one branch in a StatsDocument.
type StatsEntry struct {
	Name         string            `yaml:"name"`
	Current      bool              `yaml:"current"`
	Relation     string            `yaml:"relation"`
	Ahead        int               `yaml:"ahead"`
	Behind       int               `yaml:"behind"`
	Upstream     string            `yaml:"upstream,omitempty"`
	UpstreamGone bool              `yaml:"upstream_gone,omitempty"`
	LastActivity string            `yaml:"last_activity,omitempty"`
	HeadCommit   string            `yaml:"head_commit,omitempty"`
	Subject      string            `yaml:"subject,omitempty"`
	PullRequest  *StatsPullRequest `yaml:"pull_request,omitempty"`
}

// StatsPullRequest describes the pull request of a StatsEntry.
type StatsPullRequest struct {
	Number int    `yaml:"number"`
	State  string `yaml:"state"`
	URL    string `yaml:"url,omitempty"`
	Title  string `yaml:"title,omitempty"`
}

// NewStatsDocument converts a resolution into its machine-readable form.
func NewStatsDocument(resolution branchstate.Resolution) StatsDocument {
	document := StatsDocument{
		Reference:    resolution.Reference,
		Repository:   resolution.Enrichment.Repository,
		PullRequests: enrichmentUnavailableConstant,
		DetachedHead: resolution.DetachedHead,
		Branches:     make([]StatsEntry, 0, len(resolution.Statuses)),
	}
	if resolution.Enrichment.Available {
		document.PullRequests = enrichmentAvailableConstant
	}

	for _, status := range resolution.Statuses {
		entry := StatsEntry{
			Name:         status.Branch.Name,
			Current:      status.Branch.IsCurrent,
			Relation:     string(status.MergeRelation),
			Ahead:        status.Ahead,
			Behind:       status.Behind,
			Upstream:     status.Branch.Upstream,
			UpstreamGone: status.Branch.UpstreamGone,
			HeadCommit:   status.Branch.HeadCommit,
			Subject:      status.Branch.Subject,
		}
		if !status.Branch.LastActivity.IsZero() {
			entry.LastActivity = status.Branch.LastActivity.Format(lastActivityLayoutConstant)
		}
		if status.PullRequest != nil {
			entry.PullRequest = &StatsPullRequest{
				Number: status.PullRequest.Number,
				State:  string(status.PullRequest.State),
				URL:    status.PullRequest.URL,
				Title:  status.PullRequest.Title,
			}
		}
		document.Branches = append(document.Branches, entry)
	}
	return document
}

// StatsRenderer writes resolutions in a chosen format.
type StatsRenderer struct {
	output io.Writer
	format OutputFormat
}

// NewStatsRenderer constructs a StatsRenderer.
func NewStatsRenderer(output io.Writer, format OutputFormat) StatsRenderer {
	return StatsRenderer{output: output, format: format}
}

// Render writes the resolution.
func (renderer StatsRenderer) Render(resolution branchstate.Resolution) error {
	switch renderer.format {
	case OutputFormatYAML:
		return renderer.renderYAML(resolution)
	case OutputFormatTable, "":
		renderer.renderTable(resolution)
		return nil
	default:
		return fmt.Errorf(unsupportedFormatTemplateConstant, renderer.format)
	}
}

func (renderer StatsRenderer) renderYAML(resolution branchstate.Resolution) error {
	encoder := yaml.NewEncoder(renderer.output)
	encoder.SetIndent(2)
	if encodeError := encoder.Encode(NewStatsDocument(resolution)); encodeError != nil {
		return fmt.Errorf(statsRenderErrorTemplateConstant, encodeError)
	}
	if closeError := encoder.Close(); closeError != nil {
		return fmt.Errorf(statsRenderErrorTemplateConstant, closeError)
	}
	return nil
}

func (renderer StatsRenderer) renderTable(resolution branchstate.Resolution) {
	styleRenderer := lipgloss.NewRenderer(renderer.output)
	titleStyle := styleRenderer.NewStyle().Bold(true)
	currentStyle := styleRenderer.NewStyle().Foreground(lipgloss.Color(currentMarkerColorConstant)).Bold(true)
	mutedStyle := styleRenderer.NewStyle().Foreground(lipgloss.Color(mutedColorConstant))

	fmt.Fprintln(renderer.output, titleStyle.Render(fmt.Sprintf(statsTitleTemplateConstant, resolution.Reference)))
	if resolution.DetachedHead {
		fmt.Fprintln(renderer.output, mutedStyle.Render(detachedHeadMessageConstant))
	}
	if !resolution.Enrichment.Available {
		if resolution.Enrichment.Failure != nil {
			fmt.Fprintln(renderer.output, mutedStyle.Render(fmt.Sprintf(statsUnavailableTemplateConstant, resolution.Enrichment.Failure)))
		} else {
			fmt.Fprintln(renderer.output, mutedStyle.Render(statsUnavailableNoCauseConstant))
		}
	}
	if len(resolution.Statuses) == 0 {
		fmt.Fprint(renderer.output, noBranchesMessageConstant)
		return
	}

	table := tablewriter.NewWriter(renderer.output)
	table.SetHeader([]string{
		tableHeaderCurrentConstant,
		tableHeaderBranchConstant,
		tableHeaderRelationConstant,
		tableHeaderPullRequestConstant,
		tableHeaderUpstreamConstant,
		tableHeaderLastCommitConstant,
	})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetColumnSeparator("")
	table.SetCenterSeparator("")
	table.SetRowSeparator("")
	table.SetTablePadding(tableColumnPaddingConstant)
	table.SetNoWhiteSpace(true)

	for _, status := range resolution.Statuses {
		marker := ""
		if status.Branch.IsCurrent {
			marker = currentStyle.Render(currentMarkerConstant)
		}
		table.Append([]string{
			marker,
			status.Branch.Name,
			describeRelation(status),
			describePullRequest(status, resolution.Enrichment.Available),
			describeUpstream(status.Branch),
			describeLastCommit(status.Branch),
		})
	}
	table.Render()
}

func describeRelation(status branchstate.BranchStatus) string {
	switch status.MergeRelation {
	case branchstate.MergeRelationMerged:
		return relationMergedTextConstant
	case branchstate.MergeRelationUnmerged:
		return fmt.Sprintf(relationUnmergedTemplateConstant, status.Ahead)
	case branchstate.MergeRelationDiverged:
		return fmt.Sprintf(relationDivergedTemplateConstant, status.Ahead, status.Behind)
	default:
		return relationUnknownTextConstant
	}
}

func describePullRequest(status branchstate.BranchStatus, enrichmentAvailable bool) string {
	if !enrichmentAvailable {
		return pullRequestUnavailableTextConstant
	}
	if status.PullRequest == nil {
		return pullRequestNoneTextConstant
	}
	return fmt.Sprintf(pullRequestTemplateConstant, status.PullRequest.Number, status.PullRequest.State)
}

func describeUpstream(branch branchstate.Branch) string {
	if !branch.HasUpstream() {
		return noUpstreamTextConstant
	}
	if branch.UpstreamGone {
		return fmt.Sprintf(upstreamGoneTemplateConstant, branch.Upstream)
	}
	return branch.Upstream
}

func describeLastCommit(branch branchstate.Branch) string {
	description := strings.TrimSpace(fmt.Sprintf(lastCommitTemplateConstant, branch.HeadCommit, branch.Subject))
	return runewidth.Truncate(description, lastCommitMaximumWidthConstant, truncationTailConstant)
}
