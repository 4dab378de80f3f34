package fetch

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/konst007/chgk/internal/engine/decoder"
	"github.com/konst007/chgk/internal/engine/types"
	"github.com/konst007/chgk/internal/utils"
)

// Reporter receives stage updates from the worker goroutine.
type Reporter func(types.Progress)

// NetworkInfoFunc returns the current network snapshot.
type NetworkInfoFunc func() types.NetworkInfo

// errCancelled is internal; a cancelled task returns types.Cancelled().
var errCancelled = errors.New("fetch cancelled")

// Task is a single fetch of one random question. A Task runs once.
type Task struct {
	id      string
	url     string
	runtime *types.RuntimeConfig

	// Client defaults to NewClient(runtime) when nil.
	Client *http.Client
	// NetworkInfo is consulted before any I/O. Nil means always connected.
	NetworkInfo NetworkInfoFunc
	// Report receives stage updates. May be nil.
	Report Reporter
	// OnCancelled runs once on the worker when a cancelled run unwinds.
	OnCancelled func()

	state     atomic.Int32
	cancelled atomic.Bool
	started   atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc
}

// NewTask creates an idle task for url. An empty url uses the runtime endpoint.
func NewTask(url string, rt *types.RuntimeConfig) *Task {
	if url == "" {
		url = rt.GetURL()
	}
	ctx, cancel := context.WithCancel(context.Background())
	t := &Task{
		id:      uuid.New().String(),
		url:     url,
		runtime: rt.Clone(),
		ctx:     ctx,
		cancel:  cancel,
	}
	t.state.Store(int32(types.TaskIdle))
	return t
}

func (t *Task) ID() string  { return t.id }
func (t *Task) URL() string { return t.url }

// State returns the task's lifecycle state.
func (t *Task) State() types.TaskState {
	return types.TaskState(t.state.Load())
}

// Cancel requests cooperative cancellation. It is safe from any goroutine
// and idempotent. In-flight I/O is aborted.
func (t *Task) Cancel() {
	if t.cancelled.CompareAndSwap(false, true) {
		utils.Debug("fetch[%s]: cancel requested", t.shortID())
		t.cancel()
	}
}

// IsCancelled reports whether Cancel has been called.
func (t *Task) IsCancelled() bool {
	return t.cancelled.Load()
}

// Run performs the fetch on the calling goroutine and returns its outcome.
// Errors never escape as panics; every failure is a Failure outcome.
func (t *Task) Run(parent context.Context) (out types.Outcome) {
	if !t.started.CompareAndSwap(false, true) {
		return types.Failure(&types.TransportError{Err: errors.New("fetch: task already started")})
	}

	ctx, stop := context.WithCancel(parent)
	defer stop()
	unregister := context.AfterFunc(t.ctx, stop)
	defer unregister()

	defer func() {
		if r := recover(); r != nil {
			utils.Debug("fetch[%s]: panic: %v", t.shortID(), r)
			out = t.fail(ctx, &types.TransportError{Err: fmt.Errorf("fetch: panic: %v", r)})
		}
	}()

	if t.stopped(ctx) {
		return t.finishCancelled()
	}

	t.setState(types.TaskConnecting)

	info := types.NetworkInfo{Connected: true, Type: types.TransportWired}
	if t.NetworkInfo != nil {
		info = t.NetworkInfo()
	}
	if !info.Eligible() {
		utils.Debug("fetch[%s]: no eligible network (%+v)", t.shortID(), info)
		t.setState(types.TaskFailed)
		return types.Failure(&types.ConnectivityError{Info: info})
	}

	text, err := t.fetch(ctx)
	if t.stopped(ctx) {
		return t.finishCancelled()
	}
	if err != nil {
		return t.fail(ctx, err)
	}

	t.setState(types.TaskCompleted)
	utils.Debug("fetch[%s]: completed (%d chars)", t.shortID(), len(text))
	return types.Success(text)
}

func (t *Task) fetch(ctx context.Context) (string, error) {
	reqCtx, abort := context.WithCancel(ctx)
	defer abort()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, t.url, nil)
	if err != nil {
		return "", &types.TransportError{Err: fmt.Errorf("fetch: new request: %w", err)}
	}
	req.Header.Set("Accept", "application/xml, text/xml;q=0.9, */*;q=0.1")

	client := t.Client
	if client == nil {
		client = NewClient(t.runtime)
	}
	// Runs after the body is closed, so the connection never outlives the task
	defer client.CloseIdleConnections()

	utils.Debug("fetch[%s]: GET %s", t.shortID(), t.url)
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	body := newIdleTimeoutReader(resp.Body, t.runtime.GetReadTimeout(), abort)
	defer body.Close()

	t.setState(types.TaskConnected)
	t.emit(ctx, types.StageConnectSuccess, 0)

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(body, 4*types.KB))
		return "", &types.TransportError{StatusCode: resp.StatusCode}
	}

	t.setState(types.TaskStreaming)
	t.emit(ctx, types.StageStreamAcquired, 0)

	info := inspectHeader(resp.Header)
	if !info.LooksLikeXML() {
		utils.Debug("fetch[%s]: unexpected content type %q, parsing anyway", t.shortID(), info.MediaType)
	}

	br := bufio.NewReaderSize(body, 4*types.KB)
	if err := sniffBinary(br); err != nil {
		return "", err
	}

	counter := &countingReader{r: br}
	total := resp.ContentLength
	dec := decoder.NewStreamDecoder(counter,
		decoder.WithCharset(info.Charset),
		decoder.WithRecordHook(func(int) {
			t.emit(ctx, types.StageParseInProgress, percentOf(counter.Count(), total))
		}),
	)

	records, err := dec.Decode()
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "", &types.TransportError{Err: types.ErrNoContent}
	}
	if t.stopped(ctx) {
		return "", errCancelled
	}

	t.emit(ctx, types.StageParseComplete, 100)
	return records[0].Text, nil
}

func (t *Task) fail(ctx context.Context, err error) types.Outcome {
	err = classify(err)
	utils.Debug("fetch[%s]: failed: %v", t.shortID(), err)
	t.emit(ctx, types.StageError, 0)
	t.setState(types.TaskFailed)
	return types.Failure(err)
}

func (t *Task) finishCancelled() types.Outcome {
	t.setState(types.TaskCancelled)
	utils.Debug("fetch[%s]: cancelled", t.shortID())
	if t.OnCancelled != nil {
		t.OnCancelled()
	}
	return types.Cancelled()
}

// emit drops updates once the task is cancelled.
func (t *Task) emit(ctx context.Context, stage types.Stage, percent int) {
	if t.Report == nil || t.stopped(ctx) {
		return
	}
	t.Report(types.Progress{Stage: stage, Percent: types.ClampPercent(percent)})
}

// stopped is true after Cancel or once the caller's context is done. The
// read-timeout abort only cancels the request context, never ctx.
func (t *Task) stopped(ctx context.Context) bool {
	return t.cancelled.Load() || ctx.Err() != nil
}

func (t *Task) setState(s types.TaskState) {
	t.state.Store(int32(s))
}

func (t *Task) shortID() string {
	if len(t.id) > 8 {
		return t.id[:8]
	}
	return t.id
}

// classify folds arbitrary errors into the types taxonomy.
func classify(err error) error {
	switch {
	case errors.Is(err, types.ErrConnectivity),
		errors.Is(err, types.ErrTransport),
		errors.Is(err, types.ErrParse):
		return err
	}
	return &types.TransportError{Err: err}
}
