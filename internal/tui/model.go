package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/konst007/chgk/internal/engine/types"
	"github.com/konst007/chgk/internal/tui/colors"
)

// Fetcher is the part of core.Controller the UI drives.
type Fetcher interface {
	Start()
	Finish()
	Downloading() bool
	Runtime() *types.RuntimeConfig
	SetRuntime(rt *types.RuntimeConfig)
}

// Options tune the root model.
type Options struct {
	AutoStart   bool
	CopyOnFetch bool
}

// slotKind is what the display slot currently shows.
type slotKind int

const (
	slotEmpty slotKind = iota
	slotQuestion
	slotFailure
	slotOffline
)

type RootModel struct {
	width  int
	height int

	fetcher Fetcher
	events  <-chan any
	opts    Options

	// Fetch progress
	fetching bool
	staged   bool // a stage arrived for the current fetch
	stage    types.Stage
	percent  int
	progress progress.Model

	// Display slot
	slot slotKind
	text string

	status   string
	statusID int

	keys KeyMap
	help help.Model
}

// InitialRootModel builds the root model. events is the channel a
// core.ChannelListener writes to.
func InitialRootModel(f Fetcher, events <-chan any, opts Options) RootModel {
	p := progress.New(
		progress.WithGradient(colors.ProgressStart, colors.ProgressEnd),
		progress.WithoutPercentage(),
	)
	p.Width = progressWidth(DefaultWidth)

	return RootModel{
		width:    DefaultWidth,
		fetcher:  f,
		events:   events,
		opts:     opts,
		progress: p,
		keys:     Keys,
		help:     help.New(),
	}
}

// fetchRequestedMsg asks Update to start a fetch.
type fetchRequestedMsg struct{}

// SettingsReloadedMsg carries a new runtime config from the settings watcher.
type SettingsReloadedMsg struct {
	Runtime     *types.RuntimeConfig
	CopyOnFetch bool
}

type copyResultMsg struct{ err error }

type endpointMsg struct{ url string }

type clearStatusMsg struct{ id int }

func (m RootModel) Init() tea.Cmd {
	cmds := []tea.Cmd{listenForActivity(m.events)}
	if m.opts.AutoStart {
		cmds = append(cmds, func() tea.Msg { return fetchRequestedMsg{} })
	}
	return tea.Batch(cmds...)
}

func listenForActivity(sub <-chan any) tea.Cmd {
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-sub
		if !ok {
			return nil
		}
		return msg
	}
}
