package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/konst007/chgk/internal/clipboard"
	"github.com/konst007/chgk/internal/engine/events"
	"github.com/konst007/chgk/internal/engine/types"
	"github.com/konst007/chgk/internal/utils"
)

const statusTTL = 3 * time.Second

// Update handles messages and updates the model
func (m RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.progress.Width = progressWidth(msg.Width)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case fetchRequestedMsg:
		return m.startFetch()

	case events.StageMsg:
		listen := listenForActivity(m.events)
		if !m.fetching {
			// Left over from a cancelled fetch
			return m, listen
		}
		m.staged = true
		m.stage = msg.Stage
		m.percent = msg.Percent
		if msg.Stage == types.StageError {
			return m, listen
		}
		return m, tea.Batch(listen, m.progress.SetPercent(stageFraction(msg.Stage, msg.Percent)))

	case events.OutcomeMsg:
		m.fetching = false
		out := msg.Outcome
		var cmds []tea.Cmd
		cmds = append(cmds, listenForActivity(m.events))
		switch {
		case out.IsSuccess():
			m.slot = slotQuestion
			m.text = out.Value
			if m.opts.CopyOnFetch {
				cmds = append(cmds, copyCmd(m.text))
			}
		case out.HasPayload():
			m.slot = slotFailure
			m.text = out.Reason()
		default:
			m.slot = slotOffline
			m.text = ""
		}
		utils.Debug("tui: fetch finished: %s", out.Kind)
		return m, tea.Batch(cmds...)

	case events.ResultMsg:
		m.fetching = false
		m.slot = slotQuestion
		m.text = msg.Text
		return m, listenForActivity(m.events)

	case events.FinishMsg:
		m.fetching = false
		m.slot = slotOffline
		m.text = ""
		return m, listenForActivity(m.events)

	case progress.FrameMsg:
		pm, cmd := m.progress.Update(msg)
		if p, ok := pm.(progress.Model); ok {
			m.progress = p
		}
		return m, cmd

	case copyResultMsg:
		if msg.err != nil {
			return m.setStatus(fmt.Sprintf("copy failed: %v", msg.err))
		}
		return m.setStatus("copied to clipboard")

	case endpointMsg:
		if msg.url == "" {
			return m.setStatus("no http(s) URL on the clipboard")
		}
		rt := m.fetcher.Runtime()
		if rt == nil {
			rt = &types.RuntimeConfig{}
		}
		rt.URL = msg.url
		m.fetcher.SetRuntime(rt)
		return m.setStatus("endpoint: " + msg.url)

	case SettingsReloadedMsg:
		m.fetcher.SetRuntime(msg.Runtime)
		m.opts.CopyOnFetch = msg.CopyOnFetch
		return m.setStatus("settings reloaded")

	case clearStatusMsg:
		if msg.id == m.statusID {
			m.status = ""
		}
		return m, nil
	}

	return m, nil
}

func (m RootModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.fetcher.Finish()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Fetch):
		return m.startFetch()

	case key.Matches(msg, m.keys.Cancel):
		if !m.fetching {
			return m, nil
		}
		m.fetcher.Finish()
		m.fetching = false
		return m.setStatus("fetch cancelled")

	case key.Matches(msg, m.keys.Copy):
		if m.slot != slotQuestion || m.text == "" {
			return m.setStatus("nothing to copy")
		}
		return m, copyCmd(m.text)

	case key.Matches(msg, m.keys.Endpoint):
		return m, func() tea.Msg { return endpointMsg{url: clipboard.ReadURL()} }

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}
	return m, nil
}

func (m RootModel) startFetch() (tea.Model, tea.Cmd) {
	if m.fetcher.Downloading() {
		return m.setStatus("a question is already on its way")
	}
	m.fetcher.Start()
	m.fetching = true
	m.staged = false
	m.percent = 0
	m.status = ""
	return m, m.progress.SetPercent(0)
}

func (m RootModel) setStatus(s string) (tea.Model, tea.Cmd) {
	m.statusID++
	m.status = s
	id := m.statusID
	return m, tea.Tick(statusTTL, func(time.Time) tea.Msg { return clearStatusMsg{id: id} })
}

func copyCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return copyResultMsg{err: clipboard.CopyText(text)}
	}
}

// stageFraction maps a stage to overall progress. Parsing takes the bulk of
// the bar since that is where the body is read.
func stageFraction(stage types.Stage, percent int) float64 {
	switch stage {
	case types.StageConnectSuccess:
		return 0.1
	case types.StageStreamAcquired:
		return 0.2
	case types.StageParseInProgress:
		return 0.2 + 0.8*float64(types.ClampPercent(percent))/100
	case types.StageParseComplete:
		return 1
	default:
		return 0
	}
}

func progressWidth(termWidth int) int {
	w := termWidth - ProgressPad - 24
	if w > 60 {
		w = 60
	}
	if w < 10 {
		w = 10
	}
	return w
}
