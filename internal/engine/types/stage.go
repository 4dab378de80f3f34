package types

import "fmt"

// Stage is a discrete lifecycle marker emitted while a fetch runs.
// The numeric values are the wire-level progress codes.
type Stage int

const (
	StageError           Stage = -1
	StageConnectSuccess  Stage = 0
	StageStreamAcquired  Stage = 1
	StageParseInProgress Stage = 2
	StageParseComplete   Stage = 3
)

func (s Stage) String() string {
	switch s {
	case StageError:
		return "error"
	case StageConnectSuccess:
		return "connected"
	case StageStreamAcquired:
		return "stream acquired"
	case StageParseInProgress:
		return "parsing"
	case StageParseComplete:
		return "parsed"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// HasProgress reports whether the stage carries a meaningful percentage.
func (s Stage) HasProgress() bool {
	return s == StageStreamAcquired || s == StageParseInProgress || s == StageParseComplete
}

// Progress is one stage notification. Percent is advisory (0-100).
type Progress struct {
	Stage   Stage
	Percent int
}

// ClampPercent bounds p to [0, 100].
func ClampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// TaskState is the lifecycle state of a single fetch task.
type TaskState int32

const (
	TaskIdle TaskState = iota
	TaskConnecting
	TaskConnected
	TaskStreaming
	TaskCompleted
	TaskCancelled
	TaskFailed
)

func (s TaskState) String() string {
	switch s {
	case TaskIdle:
		return "idle"
	case TaskConnecting:
		return "connecting"
	case TaskConnected:
		return "connected"
	case TaskStreaming:
		return "streaming"
	case TaskCompleted:
		return "completed"
	case TaskCancelled:
		return "cancelled"
	case TaskFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether no further transitions are possible.
func (s TaskState) IsTerminal() bool {
	return s == TaskCompleted || s == TaskCancelled || s == TaskFailed
}
