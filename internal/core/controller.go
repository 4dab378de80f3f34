package core

import (
	"context"
	"net/http"
	"sync"

	"github.com/konst007/chgk/internal/engine/fetch"
	"github.com/konst007/chgk/internal/engine/types"
	"github.com/konst007/chgk/internal/utils"
)

// Option configures a Controller.
type Option func(*Controller)

// WithHTTPClient makes every task use hc instead of a client built from the
// runtime config.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Controller) {
		c.client = hc
	}
}

// Controller owns at most one active fetch and relays its progress and
// result to the registered Listener.
type Controller struct {
	mu sync.Mutex
	// deliverMu is held across every listener call so Detach can wait out
	// a delivery in flight. Lock order is deliverMu, then mu.
	deliverMu sync.Mutex

	listener    Listener
	runtime     *types.RuntimeConfig
	client      *http.Client
	current     *fetch.Task
	downloading bool

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewController creates an idle controller reporting to l.
func NewController(l Listener, rt *types.RuntimeConfig, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		listener: l,
		runtime:  rt.Clone(),
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start begins a fetch unless one is already in progress. Any leftover task
// is cancelled and discarded first.
func (c *Controller) Start() {
	c.mu.Lock()
	if c.downloading {
		c.mu.Unlock()
		utils.Debug("controller: start ignored, fetch in progress")
		return
	}
	if c.listener == nil || c.ctx.Err() != nil {
		c.mu.Unlock()
		utils.Debug("controller: start ignored, controller detached")
		return
	}

	c.downloading = true
	if c.current != nil {
		c.current.Cancel()
		c.current = nil
	}

	task := fetch.NewTask("", c.runtime)
	task.Client = c.client
	task.NetworkInfo = c.networkInfo
	task.Report = func(p types.Progress) { c.progress(task, p) }
	c.current = task
	c.wg.Add(1)
	c.mu.Unlock()

	utils.Debug("controller: starting task %s -> %s", task.ID(), task.URL())
	go c.run(task)
}

// Cancel stops the current task without resetting the downloading flag.
// Hosts pair it with Finish, or use Finish directly. A listener call already
// in progress when Cancel runs still completes; use Detach to wait for it.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelCurrentLocked()
}

// Finish cancels the current task and marks the controller idle.
func (c *Controller) Finish() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelCurrentLocked()
	c.downloading = false
}

// Downloading reports whether a fetch is in progress.
func (c *Controller) Downloading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.downloading
}

// SetRuntime replaces the endpoint and timeouts used by subsequent tasks.
func (c *Controller) SetRuntime(rt *types.RuntimeConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runtime = rt.Clone()
}

// Runtime returns a copy of the active runtime config.
func (c *Controller) Runtime() *types.RuntimeConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runtime.Clone()
}

// Detach drops the listener and cancels any running task. It waits for a
// listener call in progress, and nothing is delivered after it returns.
// Detach must not be called from inside a listener callback.
func (c *Controller) Detach() {
	c.deliverMu.Lock()
	defer c.deliverMu.Unlock()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listener = nil
	c.cancelCurrentLocked()
	c.downloading = false
}

// Shutdown detaches the listener and waits for worker goroutines to exit.
func (c *Controller) Shutdown() error {
	c.Detach()
	c.cancel()
	c.wg.Wait()
	return nil
}

func (c *Controller) cancelCurrentLocked() {
	if c.current == nil {
		return
	}
	utils.Debug("controller: cancelling task %s", c.current.ID())
	c.current.Cancel()
	c.current = nil
}

func (c *Controller) run(task *fetch.Task) {
	defer c.wg.Done()
	c.deliver(task, task.Run(c.ctx))
}

// deliver routes a terminal outcome to the listener. Outcomes from tasks that
// are no longer current are dropped, and a cancelled task delivers nothing.
func (c *Controller) deliver(task *fetch.Task, out types.Outcome) {
	if out.IsCancelled() {
		return
	}

	c.deliverMu.Lock()
	defer c.deliverMu.Unlock()

	c.mu.Lock()
	if c.current != task {
		c.mu.Unlock()
		utils.Debug("controller: dropping %s outcome of stale task %s", out.Kind, task.ID())
		return
	}
	c.current = nil
	c.downloading = false
	l := c.listener
	c.mu.Unlock()

	if l == nil {
		return
	}

	if !out.HasPayload() {
		l.FinishDownloading()
		return
	}
	if ol, ok := l.(OutcomeListener); ok {
		ol.OnOutcome(out)
		return
	}
	l.UpdateFromDownload(out.Text())
}

func (c *Controller) progress(task *fetch.Task, p types.Progress) {
	c.deliverMu.Lock()
	defer c.deliverMu.Unlock()

	c.mu.Lock()
	current := c.current == task
	l := c.listener
	c.mu.Unlock()

	if !current || l == nil {
		return
	}
	l.OnProgressUpdate(p.Stage, p.Percent)
}

func (c *Controller) networkInfo() types.NetworkInfo {
	c.mu.Lock()
	l := c.listener
	c.mu.Unlock()

	if l == nil {
		return types.NetworkInfo{}
	}
	return l.ActiveNetworkInfo()
}
