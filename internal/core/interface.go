package core

import (
	"github.com/konst007/chgk/internal/engine/types"
)

// Listener is the host-side capability a Controller reports to. Stage
// updates and the terminal notification arrive on the task's worker
// goroutine; implementations must not block for long.
type Listener interface {
	// UpdateFromDownload receives the question text on success, or the
	// failure reason.
	UpdateFromDownload(result string)

	// ActiveNetworkInfo is consulted before each fetch.
	ActiveNetworkInfo() types.NetworkInfo

	// OnProgressUpdate receives stage transitions in order, strictly before
	// the terminal notification.
	OnProgressUpdate(stage types.Stage, percent int)

	// FinishDownloading is called when a fetch ends with nothing to show,
	// e.g. when there is no network.
	FinishDownloading()
}

// OutcomeListener is optionally implemented by listeners that want the
// structured result instead of the collapsed string. When present, OnOutcome
// replaces UpdateFromDownload.
type OutcomeListener interface {
	OnOutcome(out types.Outcome)
}
