package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutcome_Success(t *testing.T) {
	o := Success("Q1")

	assert.True(t, o.IsSuccess())
	assert.False(t, o.IsFailure())
	assert.Equal(t, "Q1", o.Text())
	assert.Empty(t, o.Reason())
	assert.True(t, o.HasPayload())
	assert.NoError(t, o.Err)
}

func TestOutcome_Failure(t *testing.T) {
	o := Failure(&TransportError{StatusCode: 404})

	assert.True(t, o.IsFailure())
	assert.Empty(t, o.Value)
	assert.Equal(t, "HTTP error code: 404", o.Reason())
	assert.Equal(t, "HTTP error code: 404", o.Text())
	assert.True(t, o.HasPayload())
}

func TestOutcome_FailureNilErrNeverEmpty(t *testing.T) {
	o := Failure(nil)

	assert.True(t, o.IsFailure())
	assert.ErrorIs(t, o.Err, ErrTransport)
}

func TestOutcome_ConnectivityHasNoPayload(t *testing.T) {
	o := Failure(&ConnectivityError{Info: NetworkInfo{}})

	assert.True(t, o.IsFailure())
	assert.Empty(t, o.Reason())
	assert.False(t, o.HasPayload())
}

func TestOutcome_Cancelled(t *testing.T) {
	o := Cancelled()

	assert.True(t, o.IsCancelled())
	assert.False(t, o.HasPayload())
	assert.Equal(t, "cancelled", o.Kind.String())
}

func TestNetworkInfo_Eligible(t *testing.T) {
	tests := []struct {
		name string
		info NetworkInfo
		want bool
	}{
		{"disconnected", NetworkInfo{Connected: false, Type: TransportWiFi}, false},
		{"wired", NetworkInfo{Connected: true, Type: TransportWired}, true},
		{"wifi", NetworkInfo{Connected: true, Type: TransportWiFi}, true},
		{"mobile", NetworkInfo{Connected: true, Type: TransportMobile}, true},
		{"other", NetworkInfo{Connected: true, Type: TransportOther}, false},
		{"none but connected", NetworkInfo{Connected: true, Type: TransportNone}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.info.Eligible())
		})
	}
}

func TestStage_Codes(t *testing.T) {
	assert.Equal(t, -1, int(StageError))
	assert.Equal(t, 0, int(StageConnectSuccess))
	assert.Equal(t, 1, int(StageStreamAcquired))
	assert.Equal(t, 2, int(StageParseInProgress))
	assert.Equal(t, 3, int(StageParseComplete))
	assert.False(t, StageConnectSuccess.HasProgress())
	assert.True(t, StageParseInProgress.HasProgress())
}

func TestClampPercent(t *testing.T) {
	assert.Equal(t, 0, ClampPercent(-5))
	assert.Equal(t, 42, ClampPercent(42))
	assert.Equal(t, 100, ClampPercent(250))
}

func TestTaskState_IsTerminal(t *testing.T) {
	for _, s := range []TaskState{TaskCompleted, TaskCancelled, TaskFailed} {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []TaskState{TaskIdle, TaskConnecting, TaskConnected, TaskStreaming} {
		if s.IsTerminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestErrorsWrap(t *testing.T) {
	err := errors.New("boom")
	wrapped := &StructuralError{Line: 3, Msg: "unexpected root", Err: err}

	assert.ErrorIs(t, wrapped, ErrParse)
	assert.ErrorIs(t, wrapped, ErrStructural)
	assert.ErrorIs(t, wrapped, err)
	assert.Contains(t, wrapped.Error(), "line 3")
}
