package core

import (
	"sync"

	"github.com/konst007/chgk/internal/engine/events"
	"github.com/konst007/chgk/internal/engine/types"
)

// ChannelListener turns listener callbacks into events messages on a channel,
// for hosts built around a message loop such as the TUI. Every send blocks
// until the consumer takes it or Close is called, so stages arrive in order
// and none are dropped. The consumer must keep reading until it calls Close.
type ChannelListener struct {
	ch      chan<- any
	network func() types.NetworkInfo

	done      chan struct{}
	closeOnce sync.Once
}

// NewChannelListener sends events on ch. network supplies the connectivity
// snapshot; nil reports no network.
func NewChannelListener(ch chan<- any, network func() types.NetworkInfo) *ChannelListener {
	return &ChannelListener{
		ch:      ch,
		network: network,
		done:    make(chan struct{}),
	}
}

// Close unblocks any pending send. Later events are discarded.
func (l *ChannelListener) Close() {
	l.closeOnce.Do(func() { close(l.done) })
}

func (l *ChannelListener) UpdateFromDownload(result string) {
	l.send(events.ResultMsg{Text: result})
}

func (l *ChannelListener) OnOutcome(out types.Outcome) {
	l.send(events.OutcomeMsg{Outcome: out})
}

func (l *ChannelListener) FinishDownloading() {
	l.send(events.FinishMsg{})
}

func (l *ChannelListener) OnProgressUpdate(stage types.Stage, percent int) {
	l.send(events.StageMsg{Stage: stage, Percent: percent})
}

func (l *ChannelListener) ActiveNetworkInfo() types.NetworkInfo {
	if l.network == nil {
		return types.NetworkInfo{}
	}
	return l.network()
}

func (l *ChannelListener) send(msg any) {
	select {
	case l.ch <- msg:
	case <-l.done:
	}
}
