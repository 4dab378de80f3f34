package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/konst007/chgk/internal/engine/types"
	"github.com/konst007/chgk/internal/tui/colors"
)

const logo = "ЧГК"

func (m RootModel) View() string {
	width := m.width
	if width < MinWidth {
		width = MinWidth
	}

	sections := []string{
		m.renderHeader(width),
		m.renderSlot(width),
		m.renderProgress(),
	}
	if m.status != "" {
		sections = append(sections, StatusStyle.Render(m.status))
	}
	sections = append(sections, m.help.View(m.keys))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m RootModel) renderHeader(width int) string {
	title := gradientText(logo, colors.ProgressStart, colors.ProgressEnd) + " " + PaneTitleStyle.Render("random question")

	endpoint := ""
	if rt := m.fetcher.Runtime(); rt != nil {
		endpoint = rt.GetURL()
	} else {
		endpoint = types.DefaultEndpoint
	}
	room := width - lipgloss.Width(title) - 2
	if room < 8 {
		return title
	}
	return title + "  " + EndpointStyle.Render(truncate(endpoint, room))
}

func (m RootModel) renderSlot(width int) string {
	style := PaneStyle
	var body string

	switch m.slot {
	case slotQuestion:
		body = QuestionStyle.Render(m.text)
	case slotFailure:
		style = ErrorPaneStyle
		body = FailureStyle.Render(m.text)
	case slotOffline:
		style = ErrorPaneStyle
		body = FailureStyle.Render(types.ErrConnectivity.Error())
	default:
		body = PlaceholderStyle.Render("press r for a question")
	}
	if m.fetching {
		style = ActivePaneStyle
	}

	// Width excludes the border
	return style.Width(width - 2).Render(body)
}

func (m RootModel) renderProgress() string {
	label := stageLabel(m.fetching, m.staged, m.stage, m.percent, m.slot)
	return label + "  " + m.progress.View()
}

// stageLabel describes where the current fetch is, or how the last one ended.
func stageLabel(fetching, staged bool, stage types.Stage, percent int, slot slotKind) string {
	if !fetching {
		switch slot {
		case slotQuestion:
			return StageDoneStyle.Render("done")
		case slotFailure, slotOffline:
			return StageErrorStyle.Render("failed")
		default:
			return StageIdleStyle.Render("idle")
		}
	}
	if !staged {
		return StageFetchingStyle.Render("connecting")
	}

	switch stage {
	case types.StageConnectSuccess:
		return StageFetchingStyle.Render("connected")
	case types.StageStreamAcquired:
		return StageFetchingStyle.Render("receiving")
	case types.StageParseInProgress:
		return StageFetchingStyle.Render(fmt.Sprintf("parsing %d%%", types.ClampPercent(percent)))
	case types.StageParseComplete:
		return StageDoneStyle.Render("done")
	default:
		return StageErrorStyle.Render("failed")
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:max(n, 0)])
	}
	return string(r[:n-1]) + "…"
}
