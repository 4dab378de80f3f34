package core

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/konst007/chgk/internal/engine/types"
)

const oneQuestion = `<search><question><Question>Q1</Question><Answer>A1</Answer></question></search>`

type fakeListener struct {
	mu       sync.Mutex
	network  types.NetworkInfo
	log      []string
	stages   []types.Stage
	results  []string
	finished int
	onStage  func(types.Stage)

	done chan struct{}
}

func newFakeListener() *fakeListener {
	return &fakeListener{
		network: types.NetworkInfo{Connected: true, Type: types.TransportWired, Interface: "eth0"},
		done:    make(chan struct{}, 10),
	}
}

func (f *fakeListener) UpdateFromDownload(result string) {
	f.mu.Lock()
	f.results = append(f.results, result)
	f.log = append(f.log, "result")
	f.mu.Unlock()
	f.done <- struct{}{}
}

func (f *fakeListener) ActiveNetworkInfo() types.NetworkInfo {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.network
}

func (f *fakeListener) OnProgressUpdate(stage types.Stage, percent int) {
	f.mu.Lock()
	f.stages = append(f.stages, stage)
	f.log = append(f.log, "stage")
	hook := f.onStage
	f.mu.Unlock()
	if hook != nil {
		hook(stage)
	}
}

func (f *fakeListener) FinishDownloading() {
	f.mu.Lock()
	f.finished++
	f.log = append(f.log, "finish")
	f.mu.Unlock()
	f.done <- struct{}{}
}

func (f *fakeListener) wait(t *testing.T) {
	t.Helper()
	select {
	case <-f.done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for terminal notification")
	}
}

func (f *fakeListener) snapshot() (stages []types.Stage, results []string, finished int, log []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]types.Stage(nil), f.stages...), append([]string(nil), f.results...), f.finished, append([]string(nil), f.log...)
}

type outcomeListener struct {
	*fakeListener
	outcomes chan types.Outcome
}

func (o *outcomeListener) OnOutcome(out types.Outcome) {
	o.outcomes <- out
}

func serve(t *testing.T, h http.HandlerFunc) (*httptest.Server, *types.RuntimeConfig) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv, &types.RuntimeConfig{URL: srv.URL}
}

func TestController_Success(t *testing.T) {
	_, rt := serve(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, oneQuestion)
	})

	l := newFakeListener()
	c := NewController(l, rt)
	defer c.Shutdown()

	c.Start()
	assert.True(t, c.Downloading())
	l.wait(t)

	stages, results, finished, log := l.snapshot()
	assert.Equal(t, []string{"Q1"}, results)
	assert.Zero(t, finished)
	assert.Equal(t, types.StageConnectSuccess, stages[0])
	assert.Equal(t, types.StageParseComplete, stages[len(stages)-1])
	assert.Equal(t, "result", log[len(log)-1], "terminal notification must come last")
	assert.False(t, c.Downloading())
}

func TestController_DoubleStartRunsOneTask(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	_, rt := serve(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		fmt.Fprint(w, oneQuestion)
	})

	l := newFakeListener()
	c := NewController(l, rt)
	defer c.Shutdown()

	c.Start()
	c.Start()
	c.Start()
	assert.True(t, c.Downloading())

	close(release)
	l.wait(t)

	_, results, _, _ := l.snapshot()
	assert.Equal(t, []string{"Q1"}, results)
	assert.Equal(t, int32(1), hits.Load())
}

func TestController_NoConnectivity(t *testing.T) {
	var hits atomic.Int32
	_, rt := serve(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	})

	l := newFakeListener()
	l.network = types.NetworkInfo{}
	c := NewController(l, rt)
	defer c.Shutdown()

	c.Start()
	l.wait(t)

	stages, results, finished, _ := l.snapshot()
	assert.Empty(t, stages)
	assert.Empty(t, results)
	assert.Equal(t, 1, finished)
	assert.False(t, c.Downloading())
	assert.Equal(t, int32(0), hits.Load())
}

func TestController_HTTPError(t *testing.T) {
	_, rt := serve(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	l := newFakeListener()
	c := NewController(l, rt)
	defer c.Shutdown()

	c.Start()
	l.wait(t)

	stages, results, _, _ := l.snapshot()
	assert.Equal(t, []string{"HTTP error code: 404"}, results)
	assert.Equal(t, []types.Stage{types.StageConnectSuccess, types.StageError}, stages)
}

func TestController_OutcomeListener(t *testing.T) {
	_, rt := serve(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	l := &outcomeListener{fakeListener: newFakeListener(), outcomes: make(chan types.Outcome, 1)}
	c := NewController(l, rt)
	defer c.Shutdown()

	c.Start()
	select {
	case out := <-l.outcomes:
		require.True(t, out.IsFailure())
		assert.Equal(t, "HTTP error code: 503", out.Reason())
		assert.Equal(t, types.KindTransport, types.KindOf(out.Err))
	case <-time.After(5 * time.Second):
		t.Fatal("no outcome delivered")
	}

	_, results, _, _ := l.snapshot()
	assert.Empty(t, results, "OnOutcome replaces UpdateFromDownload")
}

func TestController_CancelAfterStreamAcquired(t *testing.T) {
	release := make(chan struct{})
	_, rt := serve(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<search><question><Question>`)
		w.(http.Flusher).Flush()
		select {
		case <-r.Context().Done():
		case <-release:
		}
	})
	defer close(release)

	l := newFakeListener()
	c := NewController(l, rt)
	l.onStage = func(s types.Stage) {
		if s == types.StageStreamAcquired {
			c.Cancel()
		}
	}

	c.Start()
	require.Eventually(t, func() bool {
		stages, _, _, _ := l.snapshot()
		return len(stages) >= 2
	}, 5*time.Second, 10*time.Millisecond)

	assert.True(t, c.Downloading(), "Cancel leaves the downloading flag set")
	require.NoError(t, c.Shutdown())

	stages, results, finished, _ := l.snapshot()
	assert.Equal(t, []types.Stage{types.StageConnectSuccess, types.StageStreamAcquired}, stages)
	assert.Empty(t, results)
	assert.Zero(t, finished)
}

func TestController_FinishAllowsRestart(t *testing.T) {
	var hits atomic.Int32
	_, rt := serve(t, func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			<-r.Context().Done()
			return
		}
		fmt.Fprint(w, oneQuestion)
	})

	l := newFakeListener()
	c := NewController(l, rt)
	defer c.Shutdown()

	c.Start()
	require.Eventually(t, func() bool { return hits.Load() == 1 }, 5*time.Second, 10*time.Millisecond)

	c.Finish()
	assert.False(t, c.Downloading())

	c.Start()
	l.wait(t)

	_, results, finished, _ := l.snapshot()
	assert.Equal(t, []string{"Q1"}, results, "the superseded task must not deliver")
	assert.Zero(t, finished)
	assert.Equal(t, int32(2), hits.Load())
}

func TestController_DetachSilencesListener(t *testing.T) {
	release := make(chan struct{})
	_, rt := serve(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
		fmt.Fprint(w, oneQuestion)
	})

	l := newFakeListener()
	c := NewController(l, rt)

	c.Start()
	c.Detach()
	close(release)
	require.NoError(t, c.Shutdown())

	_, results, finished, _ := l.snapshot()
	assert.Empty(t, results)
	assert.Zero(t, finished)

	c.Start()
	assert.False(t, c.Downloading(), "a detached controller does not start")
}

func TestController_DetachWaitsForCallback(t *testing.T) {
	_, rt := serve(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, oneQuestion)
	})

	entered := make(chan struct{})
	release := make(chan struct{})
	l := newFakeListener()
	l.onStage = func(s types.Stage) {
		if s == types.StageConnectSuccess {
			close(entered)
			<-release
		}
	}
	c := NewController(l, rt)
	c.Start()

	select {
	case <-entered:
	case <-time.After(5 * time.Second):
		t.Fatal("no stage delivered")
	}

	detached := make(chan struct{})
	go func() {
		c.Detach()
		close(detached)
	}()

	select {
	case <-detached:
		t.Fatal("Detach returned while a listener call was running")
	case <-time.After(100 * time.Millisecond):
	}

	close(release)
	select {
	case <-detached:
	case <-time.After(5 * time.Second):
		t.Fatal("Detach did not return")
	}
	_, _, _, before := l.snapshot()

	require.NoError(t, c.Shutdown())
	_, _, _, after := l.snapshot()
	assert.Equal(t, before, after, "nothing may reach the listener after Detach")
}

func TestController_SetRuntime(t *testing.T) {
	first, rt := serve(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	second, _ := serve(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, oneQuestion)
	})
	require.NotEqual(t, first.URL, second.URL)

	l := newFakeListener()
	c := NewController(l, rt)
	defer c.Shutdown()

	c.SetRuntime(&types.RuntimeConfig{URL: second.URL, ReadTimeout: time.Second})
	assert.Equal(t, second.URL, c.Runtime().URL)

	c.Start()
	l.wait(t)

	_, results, _, _ := l.snapshot()
	assert.Equal(t, []string{"Q1"}, results)
}

func TestController_WithHTTPClient(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, oneQuestion)
	}))
	defer srv.Close()

	l := newFakeListener()
	c := NewController(l, &types.RuntimeConfig{URL: srv.URL}, WithHTTPClient(srv.Client()))
	defer c.Shutdown()

	c.Start()
	l.wait(t)

	_, results, _, _ := l.snapshot()
	assert.Equal(t, []string{"Q1"}, results)
}
