package events

import (
	"github.com/konst007/chgk/internal/engine/types"
)

// StageMsg reports a stage transition of the active fetch.
type StageMsg struct {
	Stage   types.Stage
	Percent int
}

// ResultMsg carries the text delivered to the display slot: the question on
// success or the failure reason.
type ResultMsg struct {
	Text string
}

// OutcomeMsg carries the structured result of a fetch.
type OutcomeMsg struct {
	Outcome types.Outcome
}

// FinishMsg is sent when a fetch ends without anything to display.
type FinishMsg struct{}
